package cts

import "testing"

func TestParsePassage_Single(t *testing.T) {
	tests := []struct {
		input    string
		book     string
		line     string
		display  string
	}{
		{"1.25", "1", "25", "1.25"},
		{"7", "", "7", "7"},
		{"12.1089", "12", "1089", "12.1089"},
		{"pr.3", "pr", "3", "pr.3"},
		{"25a", "", "25a", "25a"},
	}
	for _, tt := range tests {
		p, err := ParsePassage(tt.input)
		if err != nil {
			t.Errorf("ParsePassage(%q): %v", tt.input, err)
			continue
		}
		if p.End != nil {
			t.Errorf("ParsePassage(%q): unexpected range", tt.input)
		}
		if p.Start.Book != tt.book || p.Start.Line != tt.line {
			t.Errorf("ParsePassage(%q) = {%q %q}, want {%q %q}",
				tt.input, p.Start.Book, p.Start.Line, tt.book, tt.line)
		}
		if p.Start.Reference() != tt.display {
			t.Errorf("Reference() = %q, want %q", p.Start.Reference(), tt.display)
		}
	}
}

func TestParsePassage_Range(t *testing.T) {
	p, err := ParsePassage("1.25-2.3")
	if err != nil {
		t.Fatal(err)
	}
	if p.End == nil {
		t.Fatal("expected a range")
	}
	if p.Start.Reference() != "1.25" || p.End.Reference() != "2.3" {
		t.Errorf("unexpected endpoints: %s, %s", p.Start.Reference(), p.End.Reference())
	}
	if p.String() != "1.25-2.3" {
		t.Errorf("String() = %q", p.String())
	}
}

func TestParsePassage_BareLineRange(t *testing.T) {
	p, err := ParsePassage("7-19")
	if err != nil {
		t.Fatal(err)
	}
	if p.Start.Book != "" || p.Start.Line != "7" {
		t.Errorf("unexpected start: %+v", p.Start)
	}
	if p.End == nil || p.End.Line != "19" {
		t.Errorf("unexpected end: %+v", p.End)
	}
}

func TestParsePassage_Invalid(t *testing.T) {
	for _, input := range []string{"", ".", "-", "1..2", "1.2-"} {
		if _, err := ParsePassage(input); err == nil {
			t.Errorf("expected error for %q", input)
		}
	}
}

func TestParseRef(t *testing.T) {
	r, err := ParseRef("1.25")
	if err != nil {
		t.Fatal(err)
	}
	if r.Book != "1" || r.Line != "25" {
		t.Errorf("unexpected ref: %+v", r)
	}
}

func TestParseRef_RejectsRange(t *testing.T) {
	if _, err := ParseRef("1.25-1.30"); err == nil {
		t.Error("expected error for range input")
	}
}
