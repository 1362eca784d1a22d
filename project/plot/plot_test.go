package plot

import (
	"testing"

	"github.com/guineawheek/clipcrab/detect"
)

func TestRobustCenter(t *testing.T) {
	got := robustCenter([]int64{1_000_000, 2_000_000, 3_000_000})
	if got != 2_000_000 {
		t.Errorf("robustCenter = %v, want 2000000", got)
	}
	if got := robustCenter(nil); got != 0 {
		t.Errorf("robustCenter(nil) = %v, want 0", got)
	}
}

func TestSanitize(t *testing.T) {
	cases := []struct {
		key  detect.MatchKey
		want string
	}{
		{detect.Qualification(7), "Qualification_7"},
		{detect.PlayoffMatch(3, 2), "Playoff_Match_3_Tiebreaker"},
	}
	for _, c := range cases {
		if got := sanitize(c.key); got != c.want {
			t.Errorf("sanitize(%v) = %q, want %q", c.key, got, c.want)
		}
	}
}
