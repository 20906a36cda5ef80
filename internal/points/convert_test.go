package points

import "testing"

func TestPointsToBahtFloors(t *testing.T) {
	cases := []struct {
		points int
		rate   int
		want   int
	}{
		{250, 100, 2},
		{199, 100, 1},
		{99, 100, 0},
		{100, 100, 1},
		{0, 100, 0},
		{-5, 100, 0},
		{250, 0, 0},
	}
	for _, tc := range cases {
		if got := PointsToBaht(tc.points, tc.rate); got != tc.want {
			t.Errorf("PointsToBaht(%d, %d) = %d, want %d", tc.points, tc.rate, got, tc.want)
		}
	}
}

func TestBahtToPoints(t *testing.T) {
	if got := BahtToPoints(3, 100); got != 300 {
		t.Fatalf("BahtToPoints(3, 100) = %d, want 300", got)
	}
	if got := BahtToPoints(0, 100); got != 0 {
		t.Fatalf("BahtToPoints(0, 100) = %d, want 0", got)
	}
}

func TestConversionRoundTripIsLossy(t *testing.T) {
	// 250 points -> 2 baht -> 200 points: the 50-point remainder stays behind.
	rate := 100
	baht := PointsToBaht(250, rate)
	back := BahtToPoints(baht, rate)
	if back != 200 {
		t.Fatalf("round trip = %d, want 200", back)
	}
	if back > 250 {
		t.Fatal("round trip must never exceed the original points")
	}
}
