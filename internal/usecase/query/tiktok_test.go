package query

import (
	"strings"
	"testing"
)

func TestFormulateTikTok_CapAndOrder(t *testing.T) {
	qs := FormulateTikTok("food", "Tripoli, Lebanon", []string{"shawarma"})
	if len(qs) != MaxTikTokQueries {
		t.Fatalf("got %d queries, want %d", len(qs), MaxTikTokQueries)
	}
	want := []string{
		"#tripoli #food #tripolicreator",
		"#tripoli #food #tripoliblogger",
		"#tripoli #foodblogger #foodcreator",
		"Tripoli food blogger",
		"Tripoli food content creator",
		"Tripoli food influencer",
		"food blogger Tripoli",
		"food creator Tripoli",
		"Tripoli food vlog",
		"Tripoli food vlogger",
	}
	for i, q := range qs {
		if q.Text != want[i] {
			t.Errorf("query %d = %q, want %q", i, q.Text, want[i])
		}
	}
}

func TestFormulateTikTok_CityOnly(t *testing.T) {
	qs := FormulateTikTok("", "Tripoli", nil)
	if len(qs) != 3 {
		t.Fatalf("got %d queries, want 3: %+v", len(qs), qs)
	}
	if qs[0].Text != "#tripolifoodiecreator" || qs[2].Text != "#tripolifoodies creator" {
		t.Errorf("queries = %+v", qs)
	}
}

func TestFormulateTikTok_Arabic(t *testing.T) {
	qs := FormulateTikTok("", "بيروت", nil)
	if len(qs) != 5 {
		t.Fatalf("got %d queries, want 5: %+v", len(qs), qs)
	}
	if !strings.HasSuffix(qs[4].Text, "مدون") {
		t.Errorf("last query = %q", qs[4].Text)
	}
}

func TestFormulateTikTok_NoCity(t *testing.T) {
	if qs := FormulateTikTok("food", "", []string{"x"}); len(qs) != 0 {
		t.Fatalf("expected no queries without a city, got %+v", qs)
	}
}
