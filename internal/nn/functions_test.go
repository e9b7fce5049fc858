package nn

import "testing"

func TestSatClampsToBounds(t *testing.T) {
	cases := []struct {
		value, max, min, want float64
	}{
		{0.5, 1, 0, 0.5},
		{1.5, 1, 0, 1},
		{-0.2, 1, 0, 0},
		{0.05, 0.5, 0.1, 0.1},
	}
	for _, tc := range cases {
		if got := Sat(tc.value, tc.max, tc.min); got != tc.want {
			t.Fatalf("sat(%f, %f, %f) = %f, want %f", tc.value, tc.max, tc.min, got, tc.want)
		}
	}
}

func TestStdOfConstantSeriesIsZero(t *testing.T) {
	got, err := Std([]float64{0.4, 0.4, 0.4})
	if err != nil {
		t.Fatalf("std: %v", err)
	}
	if got != 0 {
		t.Fatalf("std of constant series = %f, want 0", got)
	}
}

func TestStdPopulationFormula(t *testing.T) {
	got, err := Std([]float64{0, 2})
	if err != nil {
		t.Fatalf("std: %v", err)
	}
	if got != 1 {
		t.Fatalf("std([0 2]) = %f, want 1", got)
	}

	if _, err := Std(nil); err == nil {
		t.Fatal("expected error for empty input")
	}
}
