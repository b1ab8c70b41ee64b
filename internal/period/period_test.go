package period

import (
	"testing"
	"time"
)

func TestBounds(t *testing.T) {
	from, to, err := Bounds(2, 2024)
	if err != nil {
		t.Fatalf("bounds: %v", err)
	}
	wantFrom := time.Date(2024, time.February, 1, 0, 0, 0, 0, time.UTC)
	wantTo := time.Date(2024, time.March, 1, 0, 0, 0, 0, time.UTC)
	if !from.Equal(wantFrom) || !to.Equal(wantTo) {
		t.Fatalf("bounds = [%v, %v), want [%v, %v)", from, to, wantFrom, wantTo)
	}
}

func TestBoundsInvalid(t *testing.T) {
	for _, tc := range []struct{ month, year int }{
		{0, 2024},
		{13, 2024},
		{1, 0},
		{-1, 2024},
	} {
		if _, _, err := Bounds(tc.month, tc.year); err != ErrInvalid {
			t.Fatalf("Bounds(%d, %d) err = %v, want ErrInvalid", tc.month, tc.year, err)
		}
	}
}

func TestDays(t *testing.T) {
	cases := []struct {
		month, year int
		want        int
	}{
		{2, 2024, 29},
		{2, 2023, 28},
		{2, 2000, 29},
		{2, 1900, 28},
		{1, 2025, 31},
		{4, 2025, 30},
		{12, 2025, 31},
	}
	for _, tc := range cases {
		got, err := Days(tc.month, tc.year)
		if err != nil {
			t.Fatalf("Days(%d, %d): %v", tc.month, tc.year, err)
		}
		if got != tc.want {
			t.Fatalf("Days(%d, %d) = %d, want %d", tc.month, tc.year, got, tc.want)
		}
	}
}
