package kdtree

import (
	"math"
	"math/rand"
	"sort"
	"testing"

	"github.com/golang/geo/r2"
	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"go.viam.com/test"

	"go.viam.com/sslmotion/spatialmath"
)

var fieldBound = spatialmath.NewRect(r2.Point{X: -6, Y: -4.5}, r2.Point{X: 6, Y: 4.5})

func randomPoint(rnd *rand.Rand, spread float64) r2.Point {
	return r2.Point{X: (rnd.Float64()*2 - 1) * spread, Y: (rnd.Float64()*2 - 1) * spread}
}

func bruteNearest(points []r2.Point, p r2.Point) float64 {
	best := math.Inf(1)
	for _, q := range points {
		best = math.Min(best, spatialmath.DistanceSquared(p, q))
	}
	return best
}

func TestEmptyTree(t *testing.T) {
	tree := New[int](fieldBound)
	_, ok := tree.Nearest(r2.Point{})
	test.That(t, ok, test.ShouldBeFalse)
	test.That(t, tree.NearestK(r2.Point{}, 3), test.ShouldBeEmpty)
	test.That(t, tree.Len(), test.ShouldEqual, 0)
}

func TestNearestMatchesBruteForce(t *testing.T) {
	rnd := rand.New(rand.NewSource(1))
	for trial := 0; trial < 20; trial++ {
		tree := New[int](fieldBound)
		// Points span twice the bound so some land outside it.
		points := make([]r2.Point, 0, 500)
		for i := 0; i < 500; i++ {
			p := randomPoint(rnd, 12)
			if i%7 == 0 {
				// clustered points exercise deep, unbalanced splits
				p = r2.Point{X: 1 + rnd.Float64()*1e-3, Y: 1 + rnd.Float64()*1e-3}
			}
			points = append(points, p)
			tree.Insert(p, i)
		}
		test.That(t, tree.Len(), test.ShouldEqual, len(points))

		for q := 0; q < 200; q++ {
			query := randomPoint(rnd, 20)
			got, ok := tree.Nearest(query)
			test.That(t, ok, test.ShouldBeTrue)
			test.That(t, spatialmath.DistanceSquared(got.Point, query), test.ShouldEqual, bruteNearest(points, query))
			test.That(t, points[got.Value], test.ShouldResemble, got.Point)
		}
	}
}

func TestNearestKMatchesBruteForce(t *testing.T) {
	rnd := rand.New(rand.NewSource(2))
	tree := New[int](fieldBound)
	points := make([]r2.Point, 0, 300)
	for i := 0; i < 300; i++ {
		p := randomPoint(rnd, 8)
		points = append(points, p)
		tree.Insert(p, i)
	}

	for _, k := range []int{1, 5, 12, 40} {
		for q := 0; q < 50; q++ {
			query := randomPoint(rnd, 10)
			got := tree.NearestK(query, k)
			test.That(t, got, test.ShouldHaveLength, k)

			gotDists := make([]float64, 0, k)
			for _, e := range got {
				gotDists = append(gotDists, spatialmath.DistanceSquared(e.Point, query))
			}
			wantDists := make([]float64, 0, len(points))
			for _, p := range points {
				wantDists = append(wantDists, spatialmath.DistanceSquared(p, query))
			}
			sort.Float64s(gotDists)
			sort.Float64s(wantDists)
			if diff := cmp.Diff(wantDists[:k], gotDists, cmpopts.EquateApprox(0, 1e-12)); diff != "" {
				t.Fatalf("k=%d query=%v mismatch (-want +got):\n%s", k, query, diff)
			}
		}
	}

	test.That(t, tree.NearestK(r2.Point{}, 1000), test.ShouldHaveLength, 300)
	test.That(t, tree.NearestK(r2.Point{}, 0), test.ShouldBeEmpty)
}

func TestDuplicatePointsStopAtMaxDepth(t *testing.T) {
	tree := New[int](fieldBound)
	for i := 0; i < 200; i++ {
		tree.Insert(r2.Point{X: 0.5, Y: 0.5}, i)
	}
	test.That(t, tree.Len(), test.ShouldEqual, 200)
	got := tree.NearestK(r2.Point{X: 3, Y: 3}, 20)
	test.That(t, got, test.ShouldHaveLength, 20)
	for _, e := range got {
		test.That(t, e.Point, test.ShouldResemble, r2.Point{X: 0.5, Y: 0.5})
	}
}
