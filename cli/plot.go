package cli

import (
	"image/color"
	"math"
	"time"

	"github.com/golang/geo/r2"
	"github.com/pkg/errors"
	"github.com/urfave/cli/v2"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"

	"go.viam.com/sslmotion/config"
	"go.viam.com/sslmotion/motionplan"
	"go.viam.com/sslmotion/spatialmath"
)

const circleSegments = 48

var (
	fieldColor     = color.RGBA{R: 40, G: 120, B: 40, A: 255}
	obstacleColor  = color.RGBA{R: 200, G: 60, B: 60, A: 255}
	edgeColor      = color.RGBA{R: 170, G: 170, B: 170, A: 255}
	candidateColor = color.RGBA{R: 230, G: 160, B: 30, A: 255}
	winnerColor    = color.RGBA{R: 30, G: 80, B: 220, A: 255}
	robotColor     = color.RGBA{R: 90, G: 90, B: 90, A: 255}
	ballColor      = color.RGBA{R: 255, G: 130, B: 0, A: 255}
)

// PlotAction explores a scenario and renders every search tree, every candidate path and the
// chosen path over the field to a PNG file.
func PlotAction(c *cli.Context) error {
	cfg, sc, err := loadInputs(c)
	if err != nil {
		return err
	}
	req := sc.PlanRequest(cfg, time.Now())
	exp, err := newPlanner(c, cfg).Explore(c.Context, req)
	if err != nil {
		return err
	}
	p, err := renderExploration(cfg, req, exp)
	if err != nil {
		return err
	}
	size := cfg.Field.Bounds().Size()
	width := 10 * vg.Inch
	if err := p.Save(width, width*vg.Length(size.Y/size.X), c.String(flagOut)); err != nil {
		return errors.Wrap(err, "saving plot")
	}
	printf(c.App.Writer, "wrote %s", c.String(flagOut))
	return nil
}

func renderExploration(cfg *config.Config, req motionplan.Request, exp *motionplan.Exploration) (*plot.Plot, error) {
	p := plot.New()
	p.Title.Text = "robot " + req.Robot.String()
	p.X.Label.Text = "x (m)"
	p.Y.Label.Text = "y (m)"
	bounds := cfg.Field.Bounds()
	p.X.Min, p.X.Max = bounds.X.Lo, bounds.X.Hi
	p.Y.Min, p.Y.Max = bounds.Y.Lo, bounds.Y.Hi

	half := r2.Point{X: cfg.Field.Length / 2, Y: cfg.Field.Width / 2}
	if err := addPolyline(p, rectOutline(r2.RectFromPoints(half.Mul(-1), half)), fieldColor, 1, nil); err != nil {
		return nil, err
	}
	for _, o := range req.Obstacles {
		if err := addPolyline(p, obstacleOutline(o), obstacleColor, 1, nil); err != nil {
			return nil, err
		}
	}

	for _, cand := range exp.Candidates {
		for _, e := range cand.Edges {
			if err := addPolyline(p, []r2.Point{e.Start, e.End}, edgeColor, 0.5, nil); err != nil {
				return nil, err
			}
		}
	}
	for _, cand := range exp.Candidates {
		if cand.Winner {
			continue
		}
		if err := addPolyline(p, cand.Points, candidateColor, 1, []vg.Length{vg.Points(3), vg.Points(3)}); err != nil {
			return nil, err
		}
	}
	if exp.Path != nil {
		if err := addPolyline(p, exp.Path.Points(), winnerColor, 2.5, nil); err != nil {
			return nil, err
		}
	}

	for _, o := range req.Others {
		circle := spatialmath.Circle{Center: o.Pose.Point, Radius: cfg.Field.RobotRadius}
		if err := addPolyline(p, circleOutline(circle), robotColor, 1.5, nil); err != nil {
			return nil, err
		}
	}
	if req.Ball != nil {
		if err := addMarker(p, req.Ball.Position, ballColor, draw.CircleGlyph{}); err != nil {
			return nil, err
		}
	}
	if err := addMarker(p, req.Start.Pose.Point, winnerColor, draw.BoxGlyph{}); err != nil {
		return nil, err
	}
	if err := addMarker(p, req.Goal.Point, winnerColor, draw.CrossGlyph{}); err != nil {
		return nil, err
	}
	return p, nil
}

func toXYs(points []r2.Point) plotter.XYs {
	xys := make(plotter.XYs, 0, len(points))
	for _, pt := range points {
		xys = append(xys, plotter.XY{X: pt.X, Y: pt.Y})
	}
	return xys
}

func addPolyline(p *plot.Plot, points []r2.Point, c color.Color, width float64, dashes []vg.Length) error {
	if len(points) < 2 {
		return nil
	}
	line, err := plotter.NewLine(toXYs(points))
	if err != nil {
		return err
	}
	line.Color = c
	line.Width = vg.Points(width)
	line.Dashes = dashes
	p.Add(line)
	return nil
}

func addMarker(p *plot.Plot, at r2.Point, c color.Color, shape draw.GlyphDrawer) error {
	s, err := plotter.NewScatter(toXYs([]r2.Point{at}))
	if err != nil {
		return err
	}
	s.GlyphStyle.Color = c
	s.GlyphStyle.Shape = shape
	s.GlyphStyle.Radius = vg.Points(4)
	p.Add(s)
	return nil
}

func obstacleOutline(o spatialmath.Obstacle) []r2.Point {
	switch o.Kind() {
	case spatialmath.CircleObstacle:
		return circleOutline(o.Circle())
	case spatialmath.RectObstacle:
		return rectOutline(o.Rect())
	default:
		return nil
	}
}

func circleOutline(c spatialmath.Circle) []r2.Point {
	points := make([]r2.Point, 0, circleSegments+1)
	for i := 0; i <= circleSegments; i++ {
		points = append(points, c.Center.Add(spatialmath.FromPolar(2*math.Pi*float64(i)/circleSegments, c.Radius)))
	}
	return points
}

func rectOutline(r r2.Rect) []r2.Point {
	return []r2.Point{r.Lo(), {X: r.X.Hi, Y: r.Y.Lo}, r.Hi(), {X: r.X.Lo, Y: r.Y.Hi}, r.Lo()}
}
