package cli

import (
	"encoding/json"
	"fmt"
	"math/rand"
	"time"

	"github.com/aybabtme/uniplot/histogram"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/montanaflynn/stats"
	"github.com/pkg/errors"
	"github.com/urfave/cli/v2"

	"go.viam.com/sslmotion/config"
	"go.viam.com/sslmotion/motionplan"
	"go.viam.com/sslmotion/spatialmath"
)

const histogramWidth = 40

func newPlanner(c *cli.Context, cfg *config.Config) *motionplan.Planner {
	return motionplan.NewPlanner(config.NewStore(cfg), rand.New(rand.NewSource(c.Int64(flagSeed))), newLogger(c))
}

// remaining is the distance left between the end of path and the goal.
func remaining(path *motionplan.Path, goal spatialmath.Pose) float64 {
	if len(path.Waypoints) == 0 {
		return spatialmath.Distance(path.Final.Point, goal.Point)
	}
	return spatialmath.Distance(path.Waypoints[len(path.Waypoints)-1].Point, goal.Point)
}

// PlanAction plans one path for a scenario and prints it.
func PlanAction(c *cli.Context) error {
	cfg, sc, err := loadInputs(c)
	if err != nil {
		return err
	}
	req := sc.PlanRequest(cfg, time.Now())
	path, err := newPlanner(c, cfg).Plan(c.Context, req)
	if err != nil {
		return err
	}

	if c.Bool(flagJSON) {
		enc := json.NewEncoder(c.App.Writer)
		enc.SetIndent("", "  ")
		return enc.Encode(path)
	}
	if req.Goal != sc.Goal {
		printf(c.App.Writer, "goal moved to (%.3f, %.3f)", req.Goal.Point.X, req.Goal.Point.Y)
	}
	for i, wp := range path.Waypoints {
		printf(c.App.Writer, "%3d  (%7.3f, %7.3f)  theta %6.3f  v (%6.3f, %6.3f)",
			i, wp.Point.X, wp.Point.Y, wp.Theta, wp.Velocity.X, wp.Velocity.Y)
	}
	printf(c.App.Writer, "%d waypoints, length %.3f m, %.3f m short of the goal",
		len(path.Waypoints), path.Length(), remaining(path, req.Goal))
	return nil
}

// BenchAction plans a scenario many times from the same state and summarizes the results.
func BenchAction(c *cli.Context) error {
	cfg, sc, err := loadInputs(c)
	if err != nil {
		return err
	}
	runs := c.Int(flagRuns)
	if runs < 1 {
		return errors.Errorf("--%s must be at least 1", flagRuns)
	}
	req := sc.PlanRequest(cfg, time.Now())
	planner := newPlanner(c, cfg)
	success := motionplan.SuccessDistance(cfg.Planner, spatialmath.Distance(req.Start.Pose.Point, req.Goal.Point))

	var latencies, lengths stats.Float64Data
	reached := 0
	for i := 0; i < runs; i++ {
		// each run plans from scratch
		planner.Forget(req.Robot)
		start := time.Now()
		path, err := planner.Plan(c.Context, req)
		if err != nil {
			return err
		}
		latencies = append(latencies, float64(time.Since(start).Microseconds())/1000)
		lengths = append(lengths, path.Length())
		if remaining(path, req.Goal) < success {
			reached++
		}
	}

	summary, err := summarize(latencies)
	if err != nil {
		return err
	}
	meanLength, err := lengths.Mean()
	if err != nil {
		return err
	}
	t := table.NewWriter()
	style := table.StyleLight
	style.Format.Header = text.FormatDefault
	t.SetStyle(style)
	t.AppendHeader(table.Row{"Runs", "Reached", "Mean ms", "P50 ms", "P95 ms", "Max ms", "Mean length m"})
	t.AppendRow(table.Row{
		runs,
		fmt.Sprintf("%.1f%%", 100*float64(reached)/float64(runs)),
		fmt.Sprintf("%.3f", summary.mean),
		fmt.Sprintf("%.3f", summary.median),
		fmt.Sprintf("%.3f", summary.p95),
		fmt.Sprintf("%.3f", summary.max),
		fmt.Sprintf("%.3f", meanLength),
	})
	printf(c.App.Writer, "%s", t.Render())

	if bins := c.Int(flagBins); bins > 0 {
		printf(c.App.Writer, "latency ms")
		return histogram.Fprint(c.App.Writer, histogram.Hist(bins, latencies), histogram.Linear(histogramWidth))
	}
	return nil
}

type latencySummary struct {
	mean, median, p95, max float64
}

func summarize(data stats.Float64Data) (latencySummary, error) {
	var s latencySummary
	var err error
	if s.mean, err = data.Mean(); err != nil {
		return s, err
	}
	if s.median, err = data.Median(); err != nil {
		return s, err
	}
	if s.p95, err = data.Percentile(95); err != nil {
		return s, err
	}
	if s.max, err = data.Max(); err != nil {
		return s, err
	}
	return s, nil
}
