package ta

import (
	"math"
	"testing"
)

func TestSMA(t *testing.T) {
	closes := []float64{1, 2, 3, 4, 5}
	if got := SMA(closes, 3); got != 4 {
		t.Errorf("SMA(3) = %v, want 4", got)
	}
	if got := SMA(closes, 6); !math.IsNaN(got) {
		t.Errorf("SMA with too few points = %v, want NaN", got)
	}
}

func TestMovingAverage(t *testing.T) {
	closes := []float64{10, 20, 30, 40}
	ma := MovingAverage(closes, 2)

	if len(ma) != len(closes) {
		t.Fatalf("expected %d points, got %d", len(closes), len(ma))
	}
	if ma[0].IsKnown() {
		t.Error("first point should be unknown for a 2-period average")
	}
	want := []float64{15, 25, 35}
	for i, w := range want {
		got, ok := ma[i+1].Get()
		if !ok || got != w {
			t.Errorf("ma[%d] = %v (known=%v), want %v", i+1, got, ok, w)
		}
	}
}

func TestMovingAverageAgreesWithSMA(t *testing.T) {
	closes := []float64{3, 1, 4, 1, 5, 9, 2, 6, 5, 3, 5}
	ma := MovingAverage(closes, 7)
	for i := 6; i < len(closes); i++ {
		got, _ := ma[i].Get()
		want := SMA(closes[:i+1], 7)
		if math.Abs(got-want) > 1e-9 {
			t.Errorf("index %d: rolling %v != SMA %v", i, got, want)
		}
	}
}

func TestMovingAverageShortSeries(t *testing.T) {
	for _, v := range MovingAverage([]float64{1, 2}, 30) {
		if v.IsKnown() {
			t.Fatal("expected all unknown when series is shorter than the window")
		}
	}
}

func TestExtremes(t *testing.T) {
	hi, lo, ok := Extremes([]float64{5, 9, 1, 7})
	if !ok || hi != 9 || lo != 1 {
		t.Errorf("Extremes = %v %v %v", hi, lo, ok)
	}
	if _, _, ok := Extremes(nil); ok {
		t.Error("expected ok=false for empty input")
	}
}
