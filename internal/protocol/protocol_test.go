package protocol

import "testing"

func TestParseExpect(t *testing.T) {
	cases := map[string]MatchResult{
		"MATCH":        Match,
		"match":        Match,
		"NO_MATCH":     NoMatch,
		"UNCERTAIN":    Uncertain,
		"":             Uncertain,
		"   ":          Uncertain,
		"garbage":      Uncertain,
		"MATCH\nmore":  Match,
		"NO_MATCH\nx":  NoMatch,
	}
	for input, want := range cases {
		if got := ParseExpect(input); got != want {
			t.Errorf("ParseExpect(%q) = %v, want %v", input, got, want)
		}
	}
}

func TestParseCoordinate_Found(t *testing.T) {
	c := ParseCoordinate("400,300")
	if !c.Found || c.X != 400 || c.Y != 300 {
		t.Fatalf("got %+v", c)
	}
}

func TestParseCoordinate_FoundWithWhitespace(t *testing.T) {
	c := ParseCoordinate("  400 , 300  \nextra")
	if !c.Found || c.X != 400 || c.Y != 300 {
		t.Fatalf("got %+v", c)
	}
}

func TestParseCoordinate_Empty(t *testing.T) {
	c := ParseCoordinate("")
	if c.Found || c.ErrorDetail != "Empty response" {
		t.Fatalf("got %+v", c)
	}
}

func TestParseCoordinate_NotFoundWithDetail(t *testing.T) {
	c := ParseCoordinate("NOT_FOUND: button is hidden behind a dialog")
	if c.Found || c.ErrorDetail != "button is hidden behind a dialog" {
		t.Fatalf("got %+v", c)
	}
}

func TestParseCoordinate_NotFoundNoDetailFallsBackToDefault(t *testing.T) {
	c := ParseCoordinate("NOT_FOUND")
	if c.Found || c.ErrorDetail != "Element not found" {
		t.Fatalf("got %+v", c)
	}
}

func TestParseCoordinate_NotFoundDetailOnFollowingLine(t *testing.T) {
	c := ParseCoordinate("NOT_FOUND\nthe save icon is off-screen")
	if c.Found || c.ErrorDetail != "the save icon is off-screen" {
		t.Fatalf("got %+v", c)
	}
}

func TestParseCoordinate_Garbage(t *testing.T) {
	c := ParseCoordinate("somewhere on the left")
	if c.Found {
		t.Fatalf("got %+v", c)
	}
	if c.ErrorDetail != "Could not parse coordinates from: somewhere on the left" {
		t.Fatalf("detail = %q", c.ErrorDetail)
	}
}

func TestParseExtract(t *testing.T) {
	if e := ParseExtract("  42.00  "); !e.Found || e.Empty || e.Value != "42.00" {
		t.Fatalf("got %+v", e)
	}
	if e := ParseExtract("EMPTY"); !e.Found || !e.Empty {
		t.Fatalf("got %+v", e)
	}
	if e := ParseExtract("NOT_FOUND"); e.Found {
		t.Fatalf("got %+v", e)
	}
	if e := ParseExtract(""); e.Found {
		t.Fatalf("got %+v", e)
	}
	if e := ParseExtract("   \n  "); e.Found {
		t.Fatalf("got %+v", e)
	}
}

func TestParseBoolean(t *testing.T) {
	if !ParseBoolean("YES") {
		t.Fatalf("expected YES to parse true")
	}
	if !ParseBoolean("yes\nbecause the dialog is open") {
		t.Fatalf("expected case-insensitive YES to parse true")
	}
	if ParseBoolean("NO") {
		t.Fatalf("expected NO to parse false")
	}
	if ParseBoolean("") {
		t.Fatalf("expected empty to parse false")
	}
	if ParseBoolean("maybe") {
		t.Fatalf("expected garbage to parse false")
	}
}
