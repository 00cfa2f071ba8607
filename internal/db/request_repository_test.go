package db

import (
	"errors"
	"testing"

	"github.com/ajubot/volunteer-bot/internal/models"
	_ "modernc.org/sqlite"
)

func sampleRequest(id string) *models.AssistanceRequest {
	lat, lon := 47.02, 28.83
	return &models.AssistanceRequest{
		ID:          id,
		Beneficiary: "Maria",
		Address:     "Armeneasca 35",
		Needs:       []string{"groceries", "meds"},
		Volunteers:  []int64{100, 200},
		Latitude:    &lat,
		Longitude:   &lon,
		Remarks:     []string{"hard of hearing"},
	}
}

func TestRequestGetMissingReturnsNotFound(t *testing.T) {
	queue, cleanup := setupTestDB(t)
	defer cleanup()

	repo := NewRequestRepository(queue)
	_, err := repo.Get("nope")
	if !errors.Is(err, ErrRequestNotFound) {
		t.Fatalf("expected ErrRequestNotFound, got %v", err)
	}
}

func TestRequestPutGetRoundTrip(t *testing.T) {
	queue, cleanup := setupTestDB(t)
	defer cleanup()

	repo := NewRequestRepository(queue)
	if err := repo.Put(sampleRequest("req-1")); err != nil {
		t.Fatal(err)
	}

	out, err := repo.Get("req-1")
	if err != nil {
		t.Fatal(err)
	}
	if out.Beneficiary != "Maria" || out.Address != "Armeneasca 35" {
		t.Fatalf("snapshot fields lost: %+v", out)
	}
	if len(out.Needs) != 2 || out.Needs[1] != "meds" {
		t.Fatalf("needs lost: %v", out.Needs)
	}
	if len(out.Volunteers) != 2 || out.Volunteers[0] != 100 {
		t.Fatalf("volunteers lost: %v", out.Volunteers)
	}
	if !out.HasLocation() {
		t.Fatal("location lost")
	}
	if out.Wellbeing != nil || out.WouldReturn != nil {
		t.Fatal("survey fields should start unanswered")
	}
}

func TestRequestPutOverwritesExisting(t *testing.T) {
	queue, cleanup := setupTestDB(t)
	defer cleanup()

	repo := NewRequestRepository(queue)
	if err := repo.Put(sampleRequest("req-1")); err != nil {
		t.Fatal(err)
	}

	updated := sampleRequest("req-1")
	updated.Address = "Stefan cel Mare 1"
	updated.Volunteers = []int64{300}
	if err := repo.Put(updated); err != nil {
		t.Fatal(err)
	}

	out, err := repo.Get("req-1")
	if err != nil {
		t.Fatal(err)
	}
	if out.Address != "Stefan cel Mare 1" || len(out.Volunteers) != 1 {
		t.Fatalf("overwrite did not win: %+v", out)
	}
}

func TestRequestSurveyFieldsRoundTrip(t *testing.T) {
	queue, cleanup := setupTestDB(t)
	defer cleanup()

	repo := NewRequestRepository(queue)
	req := sampleRequest("req-2")
	wellbeing := 3
	wouldReturn := true
	req.Assignee = 100
	req.Amount = "127.50"
	req.Symptoms = []string{"symptom_cough"}
	req.Wellbeing = &wellbeing
	req.WouldReturn = &wouldReturn
	req.FurtherComments = "ring twice"
	if err := repo.Put(req); err != nil {
		t.Fatal(err)
	}

	out, err := repo.Get("req-2")
	if err != nil {
		t.Fatal(err)
	}
	if out.Assignee != 100 || out.Amount != "127.50" {
		t.Fatalf("assignee/amount lost: %+v", out)
	}
	if out.Wellbeing == nil || *out.Wellbeing != 3 {
		t.Fatalf("wellbeing lost: %v", out.Wellbeing)
	}
	if out.WouldReturn == nil || !*out.WouldReturn {
		t.Fatalf("would_return lost: %v", out.WouldReturn)
	}
	if len(out.Symptoms) != 1 || out.Symptoms[0] != "symptom_cough" {
		t.Fatalf("symptoms lost: %v", out.Symptoms)
	}
}

func TestRequestDelete(t *testing.T) {
	queue, cleanup := setupTestDB(t)
	defer cleanup()

	repo := NewRequestRepository(queue)
	if err := repo.Put(sampleRequest("req-3")); err != nil {
		t.Fatal(err)
	}
	if err := repo.Delete("req-3"); err != nil {
		t.Fatal(err)
	}
	if _, err := repo.Get("req-3"); !errors.Is(err, ErrRequestNotFound) {
		t.Fatalf("expected ErrRequestNotFound after delete, got %v", err)
	}
}

func TestRegistrationRepository(t *testing.T) {
	queue, cleanup := setupTestDB(t)
	defer cleanup()

	repo := NewRegistrationRepository(queue)
	if _, err := repo.Get(5); !errors.Is(err, ErrRegistrationNotFound) {
		t.Fatalf("expected ErrRegistrationNotFound, got %v", err)
	}

	p := models.NewRegistrationProfile(5, "Ion", "", "+4915112345", "+373")
	p.Activities = []string{"assist_delivery"}
	if err := repo.Save(p); err != nil {
		t.Fatal(err)
	}

	out, err := repo.Get(5)
	if err != nil {
		t.Fatal(err)
	}
	if out.Phone != "" || out.PhoneForeign != "+4915112345" {
		t.Fatalf("foreign phone rule lost on round trip: %+v", out)
	}
	if len(out.Activities) != 1 || out.Activities[0] != "assist_delivery" {
		t.Fatalf("activities lost: %v", out.Activities)
	}

	if err := repo.Delete(5); err != nil {
		t.Fatal(err)
	}
	if _, err := repo.Get(5); !errors.Is(err, ErrRegistrationNotFound) {
		t.Fatalf("expected ErrRegistrationNotFound after delete, got %v", err)
	}
}
