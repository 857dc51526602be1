package worldstate

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/golang/geo/r2"
	"go.viam.com/test"

	"go.viam.com/sslmotion/spatialmath"
)

func TestSnapshotLookup(t *testing.T) {
	blue0 := RobotID{Team: Blue, ID: 0}
	yellow0 := RobotID{Team: Yellow, ID: 0}
	snap := Snapshot{Robots: []RobotState{
		{ID: blue0, Pose: spatialmath.NewPose(1, 2, 0)},
		{ID: yellow0, Pose: spatialmath.NewPose(-1, 0, 0)},
		{ID: RobotID{Team: Blue, ID: 3}},
	}}

	r, ok := snap.Robot(blue0)
	test.That(t, ok, test.ShouldBeTrue)
	test.That(t, r.Pose.Point, test.ShouldResemble, r2.Point{X: 1, Y: 2})

	_, ok = snap.Robot(RobotID{Team: Yellow, ID: 5})
	test.That(t, ok, test.ShouldBeFalse)

	others := snap.Others(blue0)
	test.That(t, others, test.ShouldHaveLength, 2)
	test.That(t, others[0].ID, test.ShouldResemble, yellow0)
}

func TestRobotID(t *testing.T) {
	test.That(t, RobotID{Team: Yellow, ID: 15}.Valid(), test.ShouldBeTrue)
	test.That(t, RobotID{Team: Yellow, ID: MaxRobotID}.Valid(), test.ShouldBeFalse)
	test.That(t, RobotID{Team: Team(7), ID: 1}.Valid(), test.ShouldBeFalse)
	test.That(t, RobotID{Team: Blue, ID: 4}.String(), test.ShouldEqual, "blue-4")
	test.That(t, Blue.Opponent(), test.ShouldEqual, Yellow)

	var id RobotID
	test.That(t, json.Unmarshal([]byte(`{"team":"Yellow","id":3}`), &id), test.ShouldBeNil)
	test.That(t, id, test.ShouldResemble, RobotID{Team: Yellow, ID: 3})
	test.That(t, json.Unmarshal([]byte(`{"team":"red","id":3}`), &id), test.ShouldNotBeNil)
}

func TestFreshAndExtrapolation(t *testing.T) {
	now := time.Unix(100, 0)
	robots := []RobotState{
		{ID: RobotID{ID: 0}, LastObserved: now.Add(-10 * time.Millisecond)},
		{ID: RobotID{ID: 1}, LastObserved: now.Add(-2 * time.Second)},
		{ID: RobotID{ID: 2}},
	}
	fresh := Fresh(robots, now, time.Second)
	test.That(t, fresh, test.ShouldHaveLength, 2)
	test.That(t, fresh[1].ID.ID, test.ShouldEqual, 2)
	test.That(t, Fresh(robots, now, 0), test.ShouldHaveLength, 3)

	r := RobotState{Pose: spatialmath.NewPose(1, 1, 0), Velocity: r2.Point{X: 2}}
	test.That(t, r.PositionAt(0.5), test.ShouldResemble, r2.Point{X: 2, Y: 1})
	b := BallState{Position: r2.Point{}, Velocity: r2.Point{Y: -1}}
	test.That(t, b.PositionAt(2), test.ShouldResemble, r2.Point{Y: -2})
}
