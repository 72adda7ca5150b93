package chunker

import "testing"

func TestEstimateTokens(t *testing.T) {
	cases := []struct {
		text string
		want int
	}{
		{"", 0},
		{"a", 1},
		{"abcd", 1},
		{"abcde", 2},
		{"12345678", 2},
	}
	for _, tc := range cases {
		if got := EstimateTokens(tc.text); got != tc.want {
			t.Errorf("EstimateTokens(%q) = %d, want %d", tc.text, got, tc.want)
		}
	}
}

func TestEstimateTokens_Monotonic(t *testing.T) {
	prev := 0
	s := ""
	for i := 0; i < 64; i++ {
		s += "x"
		got := EstimateTokens(s)
		if got < prev {
			t.Fatalf("estimate decreased at length %d: %d < %d", i+1, got, prev)
		}
		prev = got
	}
}
