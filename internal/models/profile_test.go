package models

import (
	"fmt"
	"testing"

	"pgregory.net/rapid"
)

func TestNewProfileKeepsLocalPhone(t *testing.T) {
	p := NewRegistrationProfile(1, "Ana", "Popescu", "+37379000000", "+373")
	if p.Phone != "+37379000000" {
		t.Fatalf("expected local phone kept, got %q", p.Phone)
	}
	if p.PhoneForeign != "" {
		t.Fatalf("expected no foreign phone, got %q", p.PhoneForeign)
	}
}

func TestNewProfileMovesForeignPhone(t *testing.T) {
	p := NewRegistrationProfile(1, "Ana", "", "+4917612345678", "+373")
	if p.Phone != "" {
		t.Fatalf("expected local phone cleared, got %q", p.Phone)
	}
	if p.PhoneForeign != "+4917612345678" {
		t.Fatalf("expected foreign phone recorded, got %q", p.PhoneForeign)
	}

	// The next questions must walk the regular order and eventually re-ask
	// for a local phone, never for the foreign one again.
	p.LastName = "Popescu"
	p.Availability = "4"
	p.Activities = []string{"assist_delivery"}
	field, ok := p.NextField()
	if !ok || field != FieldPhone {
		t.Fatalf("expected next field %s, got %s (ok=%v)", FieldPhone, field, ok)
	}
}

func TestNextFieldFollowsDeclarationOrder(t *testing.T) {
	p := &RegistrationProfile{ChatID: 1}
	var asked []string
	for {
		field, ok := p.NextField()
		if !ok {
			break
		}
		asked = append(asked, field)
		if field == FieldActivities {
			p.Activities = []string{"assist_phone"}
			continue
		}
		p.SetField(field, "answer")
	}

	if len(asked) != len(FieldOrder) {
		t.Fatalf("asked %d questions, want %d", len(asked), len(FieldOrder))
	}
	for i, f := range FieldOrder {
		if asked[i] != f {
			t.Fatalf("question %d was %s, want %s", i, asked[i], f)
		}
	}
	if !p.Complete() {
		t.Fatal("profile should be complete after all answers")
	}
}

func TestPropertyAnswersFillInOrder(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		p := &RegistrationProfile{ChatID: 1}

		// Pre-answer a random subset; the rest must be asked in order.
		if rapid.Bool().Draw(t, "haveFirst") {
			p.FirstName = "A"
		}
		if rapid.Bool().Draw(t, "haveLast") {
			p.LastName = "B"
		}
		if rapid.Bool().Draw(t, "haveActivities") {
			p.Activities = []string{"assist_transport"}
		}

		answers := 0
		prevIdx := -1
		for !p.Complete() {
			field, ok := p.NextField()
			if !ok {
				t.Fatal("NextField returned ok=false on incomplete profile")
			}
			idx := fieldIndex(field)
			if idx <= prevIdx {
				t.Fatalf("field %s asked out of order", field)
			}
			prevIdx = idx
			if field == FieldActivities {
				p.ToggleActivity("assist_delivery")
			} else {
				p.SetField(field, fmt.Sprintf("answer-%d", answers))
			}
			answers++
		}

		if answers > len(FieldOrder) {
			t.Fatalf("asked %d questions for %d fields", answers, len(FieldOrder))
		}
	})
}

func fieldIndex(field string) int {
	for i, f := range FieldOrder {
		if f == field {
			return i
		}
	}
	return -1
}

func TestToggleActivityIsIdempotentPair(t *testing.T) {
	p := &RegistrationProfile{ChatID: 1}
	p.ToggleActivity("assist_transport")
	p.ToggleActivity("assist_delivery")
	p.ToggleActivity("assist_transport")
	if len(p.Activities) != 1 || p.Activities[0] != "assist_delivery" {
		t.Fatalf("unexpected activities: %v", p.Activities)
	}
}
