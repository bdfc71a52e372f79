package compose

import (
	"image"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func defaultLayout() Layout {
	return Layout{Width: 1280, Height: 720, Margin: 25, TextOffset: DefaultTextOffset}
}

func TestCornersAreCongruentRightTriangles(t *testing.T) {
	layouts := []Layout{
		defaultLayout(),
		{Width: 1000, Height: 1000, Margin: 40},
		{Width: 300, Height: 200, Margin: 10},
		{Width: 640, Height: 1136, Margin: 12.5},
	}

	for _, l := range layouts {
		for i, tri := range l.Corners() {
			a, b, ok := tri.Legs()
			if !ok {
				t.Errorf("%dx%d m=%g: %s corner is not a right triangle: %v", l.Width, l.Height, l.Margin, Corner(i), tri)
				continue
			}
			if a != l.Margin || b != l.Margin {
				t.Errorf("%dx%d m=%g: %s corner legs = %g, %g; want %g", l.Width, l.Height, l.Margin, Corner(i), a, b, l.Margin)
			}
		}
	}
}

func TestCornersStayInsideCanvas(t *testing.T) {
	sizes := []image.Point{{1280, 720}, {720, 1280}, {100, 100}, {61, 33}}

	for _, size := range sizes {
		limit := float64(min(size.X, size.Y)) / 2
		for m := 0.5; m < limit; m += 0.5 {
			l := Layout{Width: size.X, Height: size.Y, Margin: m}
			canvas := l.Canvas()
			for i, tri := range l.Corners() {
				for _, p := range tri {
					if p.X < canvas.Min.X || p.X > canvas.Max.X || p.Y < canvas.Min.Y || p.Y > canvas.Max.Y {
						t.Fatalf("%v m=%g: %s vertex %v outside canvas", size, m, Corner(i), p)
					}
				}
			}
		}
	}
}

func TestBottomRightCornerUsesHeight(t *testing.T) {
	got := defaultLayout().Corners()[BottomRight]
	want := Triangle{{1230, 695}, {1255, 670}, {1255, 695}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("bottom-right corner mismatch (-want +got):\n%s", diff)
	}
}

func TestCornerVertices(t *testing.T) {
	got := defaultLayout().Corners()
	want := [4]Triangle{
		BottomLeft:  {{25, 670}, {25, 695}, {50, 695}},
		TopRight:    {{1230, 25}, {1255, 25}, {1255, 50}},
		TopLeft:     {{25, 25}, {50, 25}, {25, 50}},
		BottomRight: {{1230, 695}, {1255, 670}, {1255, 695}},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Corners() mismatch (-want +got):\n%s", diff)
	}
}

func TestBandsPaintOrder(t *testing.T) {
	got := defaultLayout().Bands()
	want := [4]Band{
		{Edge: EdgeLeft, Role: RoleNear, Rect: Rect{Min: Point{25, 25}, Max: Point{50, 695}}},
		{Edge: EdgeRight, Role: RoleFar, Rect: Rect{Min: Point{1230, 25}, Max: Point{1255, 695}}},
		{Edge: EdgeTop, Role: RoleNear, Rect: Rect{Min: Point{25, 25}, Max: Point{1255, 50}}},
		{Edge: EdgeBottom, Role: RoleFar, Rect: Rect{Min: Point{25, 670}, Max: Point{1255, 695}}},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Bands() mismatch (-want +got):\n%s", diff)
	}
}

func TestInnerAndCanvas(t *testing.T) {
	l := defaultLayout()
	if got := l.Canvas().Image(); got != image.Rect(0, 0, 1280, 720) {
		t.Errorf("Canvas() = %v", got)
	}
	if got := l.Inner().Image(); got != image.Rect(25, 25, 1255, 695) {
		t.Errorf("Inner() = %v", got)
	}
}

func TestRectImageDoesNotFlip(t *testing.T) {
	r := Rect{Min: Point{10, 10}, Max: Point{5, 20}}
	if !r.Empty() {
		t.Errorf("inverted rect should be empty, got %v", r.Image())
	}
}

func TestTextOrigin(t *testing.T) {
	got := defaultLayout().TextOrigin(200, 100)
	want := Point{X: 540, Y: 295}
	if got != want {
		t.Errorf("TextOrigin() = %v, want %v", got, want)
	}
}

func TestDegenerate(t *testing.T) {
	tests := []struct {
		layout Layout
		want   bool
	}{
		{defaultLayout(), false},
		{Layout{Width: 100, Height: 100, Margin: 50}, true},
		{Layout{Width: 100, Height: 100, Margin: 0}, true},
		{Layout{Width: 100, Height: 60, Margin: 29.5}, false},
	}
	for _, tt := range tests {
		if got := tt.layout.Degenerate(); got != tt.want {
			t.Errorf("%+v Degenerate() = %v, want %v", tt.layout, got, tt.want)
		}
	}
}

func TestTriangleLegsRejectsNonRight(t *testing.T) {
	tilted := Triangle{{0, 0}, {10, 0}, {5, 5}}
	if _, _, ok := tilted.Legs(); ok {
		t.Error("right angle that is not axis-aligned reported as corner triangle")
	}
	scalene := Triangle{{0, 0}, {10, 0}, {3, 7}}
	if _, _, ok := scalene.Legs(); ok {
		t.Error("triangle without right angle reported as right")
	}
}
