package keyboards

import (
	"strings"
	"testing"
	"time"
)

func TestSymptomMenuShape(t *testing.T) {
	m := SymptomMenu()
	selectable := 0
	for _, row := range m.Rows {
		for _, opt := range row {
			if opt.Selectable {
				selectable++
			}
		}
	}
	if selectable != 3 {
		t.Fatalf("expected 3 selectable symptoms, got %d", selectable)
	}
	for _, id := range []string{SymptomNone, SymptomNoIdea, SymptomNext} {
		if !m.Has(id) {
			t.Fatalf("menu is missing terminal option %s", id)
		}
	}
}

func TestSymptomTerminal(t *testing.T) {
	for _, data := range []string{SymptomNone, SymptomNoIdea, SymptomNext} {
		if !SymptomTerminal(data) {
			t.Fatalf("%s should be terminal", data)
		}
	}
	if SymptomTerminal("symptom_fever") {
		t.Fatal("symptom_fever is not terminal")
	}
}

func TestFirstResponseMenuCarriesUTCTimes(t *testing.T) {
	now := time.Date(2020, 4, 1, 10, 0, 0, 0, time.UTC)
	m := FirstResponseMenu(now)

	first := m.Rows[0][0]
	if first.ID != "eta_10:30" {
		t.Fatalf("30-minute option = %s, want eta_10:30", first.ID)
	}
	if !m.Has(EtaLater) || !m.Has(EtaNever) {
		t.Fatal("menu must always offer eta_later and eta_never")
	}
}

func TestDayGridMenu(t *testing.T) {
	now := time.Date(2020, 4, 1, 20, 0, 0, 0, time.UTC)
	loc := time.FixedZone("EET", 3*60*60)
	m := DayGridMenu(now, loc)

	if len(m.Rows) == 0 {
		t.Fatal("expected at least one row")
	}
	for i, row := range m.Rows {
		if len(row) > 4 {
			t.Fatalf("row %d has %d options, max is 4", i, len(row))
		}
	}

	first := m.Rows[0][0]
	if first.ID != "eta_20:30" {
		t.Fatalf("first slot callback = %s, want eta_20:30", first.ID)
	}
	if first.Label != "23:30" {
		t.Fatalf("first slot label = %s, want local 23:30", first.Label)
	}
	if !strings.HasPrefix(first.ID, "eta_") {
		t.Fatalf("callback data must carry the eta_ prefix: %s", first.ID)
	}
}
