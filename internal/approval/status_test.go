package approval

import "testing"

func TestParseDecision(t *testing.T) {
	cases := []struct {
		raw  string
		want int
		ok   bool
	}{
		{"accepted", StatusAccepted, true},
		{"Accepted", StatusAccepted, true},
		{"  APPROVE  ", StatusAccepted, true},
		{"approved", StatusAccepted, true},
		{"rejected", StatusRejected, true},
		{"Reject", StatusRejected, true},
		{"pending", 0, false},
		{"", 0, false},
		{"maybe", 0, false},
	}
	for _, tc := range cases {
		got, ok := ParseDecision(tc.raw)
		if got != tc.want || ok != tc.ok {
			t.Fatalf("ParseDecision(%q) = (%d, %v), want (%d, %v)", tc.raw, got, ok, tc.want, tc.ok)
		}
	}
}

func TestIsTerminal(t *testing.T) {
	if IsTerminal(StatusPending) {
		t.Fatal("pending must not be terminal")
	}
	if !IsTerminal(StatusAccepted) || !IsTerminal(StatusRejected) {
		t.Fatal("decided statuses must be terminal")
	}
}
