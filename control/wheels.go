package control

import (
	"math"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// WheelSpeeds holds one signed speed per wheel, front-left first, counter-clockwise.
type WheelSpeeds [4]float64

// wheelAngles are the wheel mounting angles in degrees, measured from the robot's forward axis.
var wheelAngles = [4]float64{45, 135, 225, 315}

// IsZero reports whether every wheel is stopped.
func (w WheelSpeeds) IsZero() bool {
	return w == WheelSpeeds{}
}

// Norm returns the euclidean norm of the four speeds.
func (w WheelSpeeds) Norm() float64 {
	return floats.Norm(w[:], 2)
}

// WheelMatrix returns the 4x3 matrix mapping a robot-frame velocity (vx, vy, omega) to wheel
// speeds for wheels mounted arm metres from the center.
func WheelMatrix(arm float64) *mat.Dense {
	data := make([]float64, 0, 12)
	for _, deg := range wheelAngles {
		s, c := math.Sincos(deg * math.Pi / 180)
		data = append(data, -s, c, arm)
	}
	return mat.NewDense(4, 3, data)
}

// Project converts a robot-frame velocity to wheel speeds.
func Project(m mat.Matrix, vx, vy, omega float64) WheelSpeeds {
	var out mat.VecDense
	out.MulVec(m, mat.NewVecDense(3, []float64{vx, vy, omega}))
	var ws WheelSpeeds
	for i := range ws {
		ws[i] = out.AtVec(i)
	}
	return ws
}

// BodyVelocity recovers the least-squares robot-frame velocity that produces ws.
func BodyVelocity(m mat.Matrix, ws WheelSpeeds) (vx, vy, omega float64, err error) {
	var x mat.Dense
	if err := x.Solve(m, mat.NewDense(4, 1, ws[:])); err != nil {
		return 0, 0, 0, errors.Wrap(err, "wheel matrix is singular")
	}
	return x.At(0, 0), x.At(1, 0), x.At(2, 0), nil
}

// rateLimit moves from last toward want, scaling the whole change so that no wheel changes by
// more than maxDelta.
func rateLimit(last, want WheelSpeeds, maxDelta float64) WheelSpeeds {
	delta := make([]float64, 4)
	floats.SubTo(delta, want[:], last[:])
	largest := math.Max(floats.Max(delta), -floats.Min(delta))
	if largest <= maxDelta {
		return want
	}
	floats.Scale(maxDelta/largest, delta)
	var out WheelSpeeds
	floats.AddTo(out[:], last[:], delta)
	return out
}
