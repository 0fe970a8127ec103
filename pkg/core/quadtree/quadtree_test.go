package quadtree

import (
	"math"
	"slices"
	"testing"
)

type pt struct{ x, y float64 }

func pos(p *pt) (float64, float64) { return p.x, p.y }

func items(tr *Tree[*pt]) []*pt {
	var out []*pt
	tr.Visit(func(q *Quad[*pt], _, _, _, _ float64) bool {
		if q.HasItem {
			out = append(out, q.Item)
		}
		return false
	})
	return out
}

func grid(n int) []*pt {
	var pts []*pt
	for i := range n {
		for j := range n {
			pts = append(pts, &pt{float64(i), float64(j)})
		}
	}
	return pts
}

func TestNewHoldsEveryItem(t *testing.T) {
	tests := []struct {
		name string
		pts  []*pt
	}{
		{"empty", nil},
		{"single", []*pt{{1, 1}}},
		{"grid", grid(8)},
		{"coincident", []*pt{{3, 3}, {3, 3}, {3, 3.001}, {5, 5}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tr := New(tt.pts, pos)
			got := items(tr)
			if len(got) != len(tt.pts) || tr.Len() != len(tt.pts) {
				t.Fatalf("visited %d items, Len %d, want %d", len(got), tr.Len(), len(tt.pts))
			}
			for _, p := range tt.pts {
				if !slices.Contains(got, p) {
					t.Errorf("item %v missing", *p)
				}
			}
		})
	}
}

func TestBoundsAreSquare(t *testing.T) {
	tr := New([]*pt{{0, 0}, {10, 2}}, pos)
	x1, y1, x2, y2 := tr.Bounds()
	if x1 != 0 || y1 != 0 || x2 != 10 || y2 != 10 {
		t.Errorf("Bounds() = %v %v %v %v, want 0 0 10 10", x1, y1, x2, y2)
	}
}

func TestNaNSkipped(t *testing.T) {
	tr := New([]*pt{{math.NaN(), 1}, {2, 2}}, pos)
	if tr.Len() != 1 {
		t.Errorf("Len() = %d, want 1", tr.Len())
	}
	if tr.Add(&pt{1, math.NaN()}) {
		t.Error("Add accepted NaN")
	}
}

func TestVisitPrunes(t *testing.T) {
	pts := grid(10)
	tr := New(pts, pos)
	qx1, qy1, qx2, qy2 := 2.0, 2.0, 3.0, 3.0

	var found []*pt
	seen := 0
	tr.Visit(func(q *Quad[*pt], x1, y1, x2, y2 float64) bool {
		if q.HasItem {
			seen++
			p := q.Item
			if p.x >= qx1 && p.x <= qx2 && p.y >= qy1 && p.y <= qy2 {
				found = append(found, p)
			}
		}
		return Disjoint(x1, y1, x2, y2, qx1, qy1, qx2, qy2)
	})

	if len(found) != 4 {
		t.Errorf("found %d points in query box, want 4", len(found))
	}
	if seen >= len(pts)/2 {
		t.Errorf("visited %d of %d items, pruning ineffective", seen, len(pts))
	}
}

func TestItemsMoveAfterBuild(t *testing.T) {
	a := &pt{0, 0}
	tr := New([]*pt{a, {4, 4}}, pos)
	a.x = 100
	if got := items(tr); !slices.Contains(got, a) {
		t.Error("moved item no longer reachable")
	}
}

func TestDisjoint(t *testing.T) {
	tests := []struct {
		name string
		a, b [4]float64
		want bool
	}{
		{"overlap", [4]float64{0, 0, 2, 2}, [4]float64{1, 1, 3, 3}, false},
		{"touching", [4]float64{0, 0, 1, 1}, [4]float64{1, 1, 2, 2}, false},
		{"left", [4]float64{0, 0, 1, 1}, [4]float64{2, 0, 3, 1}, true},
		{"below", [4]float64{0, 5, 1, 6}, [4]float64{0, 0, 1, 1}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a, b := tt.a, tt.b
			if got := Disjoint(a[0], a[1], a[2], a[3], b[0], b[1], b[2], b[3]); got != tt.want {
				t.Errorf("Disjoint() = %v, want %v", got, tt.want)
			}
		})
	}
}
