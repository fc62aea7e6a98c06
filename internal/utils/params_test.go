package utils

import (
	"errors"
	"testing"
)

func TestAtoiDefault(t *testing.T) {
	cases := map[string]int{"42": 42, " 7 ": 7, "": 10, "x": 10, "-3": -3}
	for in, want := range cases {
		if got := AtoiDefault(in, 10); got != want {
			t.Fatalf("AtoiDefault(%q) = %d; want %d", in, got, want)
		}
	}
}

func TestLimit(t *testing.T) {
	cases := []struct {
		in   string
		want int
	}{
		{"", 12},
		{"5", 5},
		{"0", 1},
		{"-4", 1},
		{"1000", 100},
		{"abc", 12},
	}
	for _, tc := range cases {
		if got := Limit(tc.in, 12, 100); got != tc.want {
			t.Fatalf("Limit(%q) = %d; want %d", tc.in, got, tc.want)
		}
	}
}

func TestParseID(t *testing.T) {
	if id, err := ParseID("17"); err != nil || id != 17 {
		t.Fatalf("ParseID(17) = %d, %v", id, err)
	}
	for _, bad := range []string{"", "0", "-1", "abc", "1.5"} {
		if _, err := ParseID(bad); !errors.Is(err, ErrInvalidID) {
			t.Fatalf("ParseID(%q) err = %v", bad, err)
		}
	}
}
