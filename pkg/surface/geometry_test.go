package surface

import "testing"

func TestParsePoints(t *testing.T) {
	tests := []struct {
		name    string
		points  string
		want    Rect
		wantErr bool
	}{
		{"box", "110,-90 10,-90 10,-50 110,-50 110,-90", Rect{10, -90, 110, -50}, false},
		{"extra whitespace", "  0,0\n5,5\t", Rect{0, 0, 5, 5}, false},
		{"empty", "", Rect{}, true},
		{"missing comma", "1 2", Rect{}, true},
		{"bad number", "a,1", Rect{}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParsePoints(tt.points)
			if (err != nil) != tt.wantErr {
				t.Fatalf("error = %v, wantErr %v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ParsePoints() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestRectPoints(t *testing.T) {
	got := RectPoints(Rect{MinX: 10, MinY: -90, MaxX: 150.5, MaxY: -0.001})
	want := "10,-90 150.5,-90 150.5,0 10,0"
	if got != want {
		t.Errorf("RectPoints() = %q, want %q", got, want)
	}
	r, err := ParsePoints(got)
	if err != nil || r.Width() != 140.5 {
		t.Errorf("round trip = %+v, %v", r, err)
	}
}

func TestFormatNum(t *testing.T) {
	tests := map[float64]string{
		0:       "0",
		1.5:     "1.5",
		2.006:   "2.01",
		-0.0001: "0",
		100:     "100",
	}
	for in, want := range tests {
		if got := FormatNum(in); got != want {
			t.Errorf("FormatNum(%v) = %q, want %q", in, got, want)
		}
	}
}
