package qr

import "testing"

func TestParseQualification(t *testing.T) {
	got, err := Parse("https://ftc.events/ACME2025/qualifications/12/results")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	want := FTCEventsQR{EventCode: "ACME2025", Playoff: false, Num: 12}
	if got != want {
		t.Errorf("Parse = %+v, want %+v", got, want)
	}
}

func TestParsePlayoff(t *testing.T) {
	got, err := Parse("https://ftc.events/ACME2025/playoffs/3/2/results")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	want := FTCEventsQR{EventCode: "ACME2025", Playoff: true, Num: 3, Tiebreaker: 2}
	if got != want {
		t.Errorf("Parse = %+v, want %+v", got, want)
	}
}

func TestParseRejectsWrongHost(t *testing.T) {
	if _, err := Parse("https://example.com/ACME2025/qualifications/12"); err == nil {
		t.Error("Parse with wrong host: want error, got nil")
	}
}

func TestParseRejectsMalformedPath(t *testing.T) {
	cases := []string{
		"https://ftc.events/ACME2025",
		"https://ftc.events/ACME2025/playoffs/3",
		"https://ftc.events/ACME2025/unknown/3",
	}
	for _, in := range cases {
		if _, err := Parse(in); err == nil {
			t.Errorf("Parse(%q): want error, got nil", in)
		}
	}
}
