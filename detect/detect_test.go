package detect

import "testing"

func TestMatchKeyRoundTrip(t *testing.T) {
	cases := []MatchKey{
		Qualification(1),
		Qualification(42),
		PlayoffMatch(3, 1),
		PlayoffMatch(3, 2),
		PlayoffMatch(3, 3),
		PlayoffMatch(12, 5),
	}
	for _, want := range cases {
		s := want.String()
		got, err := ParseMatchKey(s)
		if err != nil {
			t.Fatalf("ParseMatchKey(%q): %v", s, err)
		}
		if got != want {
			t.Errorf("round trip of %q: got %+v, want %+v", s, got, want)
		}
	}
}

func TestMatchKeyStringForms(t *testing.T) {
	cases := []struct {
		key  MatchKey
		want string
	}{
		{Qualification(7), "Qualification 7"},
		{PlayoffMatch(3, 1), "Playoff Match 3"},
		{PlayoffMatch(3, 2), "Playoff Match 3 Tiebreaker"},
		{PlayoffMatch(3, 3), "Playoff Match 3 Tiebreaker 2"},
	}
	for _, c := range cases {
		if got := c.key.String(); got != c.want {
			t.Errorf("String() = %q, want %q", got, c.want)
		}
	}
}

func TestParseMatchKeyTolerance(t *testing.T) {
	cases := []struct {
		in   string
		want MatchKey
	}{
		{"Match 3", PlayoffMatch(3, 1)},
		{"Playoff Match 3", PlayoffMatch(3, 1)},
		{"Match 3 Tiebreaker", PlayoffMatch(3, 2)},
		{"Match 3 Tiebreaker 2", PlayoffMatch(3, 3)},
		{"Match 3 Some Extra Token", PlayoffMatch(3, 1)},
		{"qualification 9", Qualification(9)},
	}
	for _, c := range cases {
		got, err := ParseMatchKey(c.in)
		if err != nil {
			t.Fatalf("ParseMatchKey(%q): %v", c.in, err)
		}
		if got != c.want {
			t.Errorf("ParseMatchKey(%q) = %+v, want %+v", c.in, got, c.want)
		}
	}
}

func TestParseMatchKeyErrors(t *testing.T) {
	for _, in := range []string{"", "Qualification", "Nonsense 5"} {
		if _, err := ParseMatchKey(in); err == nil {
			t.Errorf("ParseMatchKey(%q): want error, got nil", in)
		}
	}
}

func TestMatchKeyOrdering(t *testing.T) {
	ordered := []MatchKey{
		Qualification(1),
		Qualification(2),
		Qualification(99),
		PlayoffMatch(1, 1),
		PlayoffMatch(1, 2),
		PlayoffMatch(2, 1),
	}
	for i := 0; i < len(ordered)-1; i++ {
		a, b := ordered[i], ordered[i+1]
		if !a.Less(b) {
			t.Errorf("expected %+v < %+v", a, b)
		}
		if b.Less(a) {
			t.Errorf("expected %+v to not be < %+v", b, a)
		}
	}
}
