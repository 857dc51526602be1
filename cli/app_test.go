package cli

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/golang/geo/r2"
	"go.viam.com/test"

	"go.viam.com/sslmotion/config"
	"go.viam.com/sslmotion/motionplan"
	"go.viam.com/sslmotion/spatialmath"
	"go.viam.com/sslmotion/worldstate"
)

var blue2 = worldstate.RobotID{Team: worldstate.Blue, ID: 2}

func writeScenario(t *testing.T, sc Scenario) string {
	t.Helper()
	data, err := json.Marshal(sc)
	test.That(t, err, test.ShouldBeNil)
	path := filepath.Join(t.TempDir(), "scenario.json")
	test.That(t, os.WriteFile(path, data, 0o600), test.ShouldBeNil)
	return path
}

func testScenario() Scenario {
	return Scenario{
		Robot: worldstate.RobotState{ID: blue2, Pose: spatialmath.NewPose(-2, 0, 0)},
		Goal:  spatialmath.NewPose(2, 0.5, 1),
		Others: []worldstate.RobotState{
			{ID: worldstate.RobotID{Team: worldstate.Yellow, ID: 1}, Pose: spatialmath.NewPose(0, 0.2, 0)},
		},
		Ball: &worldstate.BallState{Position: r2.Point{X: 1, Y: -1}},
		Obstacles: []spatialmath.Obstacle{
			spatialmath.NewRectObstacle(r2.RectFromPoints(r2.Point{X: -0.5, Y: 1}, r2.Point{X: 0.5, Y: 1.2})),
		},
		AvoidBall: true,
	}
}

func runApp(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	err := NewApp(&out, &errOut).Run(append([]string{"sslmotion"}, args...))
	return out.String(), errOut.String(), err
}

func TestPlanCommand(t *testing.T) {
	path := writeScenario(t, testScenario())

	out, _, err := runApp(t, "plan", path)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, out, test.ShouldContainSubstring, "waypoints, length")

	out, _, err = runApp(t, "--seed", "4", "plan", "--json", path)
	test.That(t, err, test.ShouldBeNil)
	var planned motionplan.Path
	test.That(t, json.Unmarshal([]byte(out), &planned), test.ShouldBeNil)
	test.That(t, planned.Robot, test.ShouldResemble, blue2)
	test.That(t, planned.Final, test.ShouldNotBeNil)
	test.That(t, planned.Final.Pose, test.ShouldResemble, testScenario().Goal)
	test.That(t, planned.Waypoints, test.ShouldNotBeEmpty)

	_, _, err = runApp(t, "plan")
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, err.Error(), test.ShouldContainSubstring, "scenario")
}

func TestBenchCommand(t *testing.T) {
	path := writeScenario(t, testScenario())
	out, _, err := runApp(t, "bench", "--runs", "5", path)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, out, test.ShouldContainSubstring, "P95 ms")
	test.That(t, out, test.ShouldNotContainSubstring, "P95 MS")
	test.That(t, out, test.ShouldContainSubstring, "latency ms")

	out, _, err = runApp(t, "bench", "--runs", "3", "--bins", "0", path)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, out, test.ShouldContainSubstring, "Mean length m")
	test.That(t, out, test.ShouldNotContainSubstring, "latency ms")

	_, _, err = runApp(t, "bench", "--runs", "0", path)
	test.That(t, err, test.ShouldNotBeNil)
}

func TestPlotCommand(t *testing.T) {
	path := writeScenario(t, testScenario())
	image := filepath.Join(t.TempDir(), "plan.png")
	_, _, err := runApp(t, "plot", "--out", image, path)
	test.That(t, err, test.ShouldBeNil)

	data, err := os.ReadFile(image)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, bytes.HasPrefix(data, []byte("\x89PNG")), test.ShouldBeTrue)
}

func TestSimulateCommand(t *testing.T) {
	path := writeScenario(t, testScenario())
	out, _, err := runApp(t, "simulate", "--ticks", "5", "--tick", "1ms", path)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, out, test.ShouldContainSubstring, "paths planned")
}

func TestNextSnapshotLeavesPreviousAlone(t *testing.T) {
	sc := testScenario()
	prev := sc.Snapshot()
	prev.Time = time.Unix(100, 0)
	moved := prev.Robots[0]
	moved.Pose = spatialmath.NewPose(-1.9, 0.1, 0.2)

	next := nextSnapshot(prev, moved, 10*time.Millisecond)
	test.That(t, prev.Robots[0].Pose, test.ShouldResemble, sc.Robot.Pose)
	test.That(t, prev.Robots[0].LastObserved.IsZero(), test.ShouldBeTrue)
	test.That(t, next.Robots[0].Pose, test.ShouldResemble, moved.Pose)
	test.That(t, next.Robots[0].LastObserved, test.ShouldResemble, time.Unix(100, 0).Add(10*time.Millisecond))
	test.That(t, next.Time, test.ShouldResemble, next.Robots[0].LastObserved)
	test.That(t, next.Robots[1:], test.ShouldResemble, prev.Robots[1:])
	test.That(t, &next.Robots[0], test.ShouldNotEqual, &prev.Robots[0])
}

func TestConfigCommands(t *testing.T) {
	out, _, err := runApp(t, "defaults")
	test.That(t, err, test.ShouldBeNil)
	parsed, err := config.Parse([]byte(out))
	test.That(t, err, test.ShouldBeNil)
	test.That(t, parsed, test.ShouldResemble, config.Default())

	dir := t.TempDir()
	good := filepath.Join(dir, "good.json")
	test.That(t, os.WriteFile(good, []byte(`{"planner": {"candidates": 2}}`), 0o600), test.ShouldBeNil)
	out, _, err = runApp(t, "validate", good)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, out, test.ShouldContainSubstring, "is valid")

	bad := filepath.Join(dir, "bad.json")
	test.That(t, os.WriteFile(bad, []byte(`{"planner": {"candidates": 0, "no_such_key": 1}}`), 0o600), test.ShouldBeNil)
	_, _, err = runApp(t, "validate", bad)
	test.That(t, err, test.ShouldNotBeNil)

	// a configuration applies to every command
	_, _, err = runApp(t, "--config", good, "plan", writeScenario(t, testScenario()))
	test.That(t, err, test.ShouldBeNil)
	_, _, err = runApp(t, "--config", bad, "plan", writeScenario(t, testScenario()))
	test.That(t, err, test.ShouldNotBeNil)
}

func TestSchemaCommand(t *testing.T) {
	out, _, err := runApp(t, "schema")
	test.That(t, err, test.ShouldBeNil)
	var doc map[string]interface{}
	test.That(t, json.Unmarshal([]byte(out), &doc), test.ShouldBeNil)
	test.That(t, out, test.ShouldContainSubstring, `"max_tree_size"`)
}

func TestLogFile(t *testing.T) {
	path := writeScenario(t, testScenario())
	logPath := filepath.Join(t.TempDir(), "sslmotion.log")
	_, _, err := runApp(t, "--debug", "--log-file", logPath, "plan", path)
	test.That(t, err, test.ShouldBeNil)

	data, err := os.ReadFile(logPath)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, string(data), test.ShouldContainSubstring, "planned")

	// the appender is not carried over to later runs
	_, _, err = runApp(t, "plan", path)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, app.Metadata[metaLogAppender], test.ShouldBeNil)
}

func TestLoadScenario(t *testing.T) {
	sc, err := LoadScenario(writeScenario(t, testScenario()))
	test.That(t, err, test.ShouldBeNil)
	test.That(t, sc.Obstacles, test.ShouldHaveLength, 1)
	test.That(t, sc.Snapshot().Robots, test.ShouldHaveLength, 2)

	cfg := config.Default()
	req := sc.PlanRequest(cfg, sc.Snapshot().Time)
	test.That(t, req.Robot, test.ShouldResemble, blue2)
	test.That(t, req.Ball, test.ShouldNotBeNil)
	// both defense areas plus the scenario rectangle
	test.That(t, req.Obstacles, test.ShouldHaveLength, 7)

	dup := testScenario()
	dup.Others = append(dup.Others, worldstate.RobotState{ID: blue2})
	_, err = LoadScenario(writeScenario(t, dup))
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, err.Error(), test.ShouldContainSubstring, "duplicate")

	invalid := testScenario()
	invalid.Robot.ID.ID = worldstate.MaxRobotID
	_, err = LoadScenario(writeScenario(t, invalid))
	test.That(t, err, test.ShouldNotBeNil)

	broken := filepath.Join(t.TempDir(), "broken.json")
	test.That(t, os.WriteFile(broken, []byte("{"), 0o600), test.ShouldBeNil)
	_, err = LoadScenario(broken)
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, strings.Contains(err.Error(), "parsing scenario"), test.ShouldBeTrue)
}

func TestSummarize(t *testing.T) {
	data := make([]float64, 0, 100)
	for i := 1; i <= 100; i++ {
		data = append(data, float64(i))
	}
	s, err := summarize(data)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, s.mean, test.ShouldAlmostEqual, 50.5)
	test.That(t, s.median, test.ShouldAlmostEqual, 50.5)
	test.That(t, s.p95, test.ShouldAlmostEqual, 95)
	test.That(t, s.max, test.ShouldEqual, 100)

	_, err = summarize(nil)
	test.That(t, err, test.ShouldNotBeNil)
}
