package domain

import "testing"

func TestFold_TrimsButFoldCaseKeepsSpaces(t *testing.T) {
	cases := []struct {
		in, fold, foldCase string
	}{
		{" Cheese Cake ", "cheese cake", " cheese cake "},
		{"БОРЩ", "борщ", "борщ"},
		{" ", "", " "},
		{"", "", ""},
	}
	for _, tc := range cases {
		if got := Fold(tc.in); got != tc.fold {
			t.Fatalf("Fold(%q) = %q; want %q", tc.in, got, tc.fold)
		}
		if got := FoldCase(tc.in); got != tc.foldCase {
			t.Fatalf("FoldCase(%q) = %q; want %q", tc.in, got, tc.foldCase)
		}
	}
}
