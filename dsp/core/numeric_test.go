package core

import (
	"math"
	"testing"
)

func TestClamp(t *testing.T) {
	tests := []struct {
		name     string
		value    float64
		min      float64
		max      float64
		expected float64
	}{
		{name: "inside", value: -12, min: -60, max: -1, expected: -12},
		{name: "below", value: -75, min: -60, max: -1, expected: -60},
		{name: "above", value: 3, min: -60, max: -1, expected: -1},
		{name: "swapped", value: 2, min: 1, max: 0, expected: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Clamp(tt.value, tt.min, tt.max)
			if got != tt.expected {
				t.Fatalf("Clamp() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestDBConversions(t *testing.T) {
	linear := DBToLinear(-6)
	db := LinearToDB(linear)
	if math.Abs(db+6) > 1e-10 {
		t.Fatalf("LinearToDB(DBToLinear(-6)) = %v, want -6", db)
	}
	if !math.IsInf(LinearToDB(0), -1) {
		t.Fatal("expected -Inf for zero")
	}
	if !math.IsNaN(LinearToDB(-1)) {
		t.Fatal("expected NaN for negative amplitude")
	}
}

func TestRatioDB(t *testing.T) {
	tests := []struct {
		name     string
		num, den float64
		want     float64
	}{
		{name: "tenfold", num: 1, den: 0.1, want: 20},
		{name: "equal", num: 0.3, den: 0.3, want: 0},
		{name: "zero denominator floored", num: 1e-3, den: 0, want: 60},
		{name: "both zero", num: 0, den: 0, want: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := RatioDB(tt.num, tt.den, 0)
			if math.Abs(got-tt.want) > 1e-9 {
				t.Fatalf("RatioDB(%v, %v) = %v, want %v", tt.num, tt.den, got, tt.want)
			}
		})
	}
}

func TestIsFinite(t *testing.T) {
	if !IsFinite(1.5) {
		t.Fatal("1.5 should be finite")
	}
	for _, v := range []float64{math.NaN(), math.Inf(1), math.Inf(-1)} {
		if IsFinite(v) {
			t.Fatalf("%v reported finite", v)
		}
	}
}
