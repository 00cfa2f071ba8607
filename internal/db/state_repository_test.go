package db

import (
	"database/sql"
	"fmt"
	"testing"

	"github.com/ajubot/volunteer-bot/internal/fsm"
	"github.com/ajubot/volunteer-bot/internal/models"
	_ "modernc.org/sqlite"
)

var testDBCounter int

func setupTestDB(t *testing.T) (*DBQueue, func()) {
	t.Helper()
	testDBCounter++
	dsn := fmt.Sprintf("file:dbtest%d?mode=memory&cache=shared", testDBCounter)
	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		t.Fatal(err)
	}
	if err := InitSchema(sqlDB); err != nil {
		t.Fatal(err)
	}
	queue := NewDBQueueForTest(sqlDB)
	return queue, func() {
		queue.Close()
		sqlDB.Close()
	}
}

func TestStateGetReturnsDefaultForUnknownChat(t *testing.T) {
	queue, cleanup := setupTestDB(t)
	defer cleanup()

	repo := NewStateRepository(queue)
	state, err := repo.Get(42)
	if err != nil {
		t.Fatal(err)
	}
	if state.ChatID != 42 {
		t.Fatalf("expected chat id 42, got %d", state.ChatID)
	}
	if state.Step != fsm.StepAwaitingPhone {
		t.Fatalf("expected default step %s, got %s", fsm.StepAwaitingPhone, state.Step)
	}
}

func TestStateSaveRoundTrip(t *testing.T) {
	queue, cleanup := setupTestDB(t)
	defer cleanup()

	repo := NewStateRepository(queue)
	menu := &models.Menu{
		Kind: models.MenuKindSymptoms,
		Rows: [][]models.MenuOption{
			{{ID: "symptom_fever", Label: "Fever", Selectable: true, Selected: true}},
		},
	}
	in := &models.VolunteerState{
		ChatID:           7,
		Step:             fsm.StepAwaitingExitSurvey,
		CurrentRequestID: "req-1",
		SymptomMenu:      menu,
	}
	if err := repo.Save(in); err != nil {
		t.Fatal(err)
	}

	out, err := repo.Get(7)
	if err != nil {
		t.Fatal(err)
	}
	if out.Step != fsm.StepAwaitingExitSurvey {
		t.Fatalf("step = %s", out.Step)
	}
	if out.CurrentRequestID != "req-1" {
		t.Fatalf("current request = %q", out.CurrentRequestID)
	}
	if out.SymptomMenu == nil || !out.SymptomMenu.Rows[0][0].Selected {
		t.Fatal("symptom menu snapshot lost")
	}
	if out.ActivityMenu != nil {
		t.Fatal("unexpected activity menu snapshot")
	}
}

func TestStateSaveIsUpsert(t *testing.T) {
	queue, cleanup := setupTestDB(t)
	defer cleanup()

	repo := NewStateRepository(queue)
	state := &models.VolunteerState{ChatID: 9, Step: fsm.StepAvailable}
	if err := repo.Save(state); err != nil {
		t.Fatal(err)
	}
	state.Step = fsm.StepRequestSent
	state.ReviewedRequestID = "req-2"
	if err := repo.Save(state); err != nil {
		t.Fatal(err)
	}

	out, err := repo.Get(9)
	if err != nil {
		t.Fatal(err)
	}
	if out.Step != fsm.StepRequestSent || out.ReviewedRequestID != "req-2" {
		t.Fatalf("unexpected state after upsert: %+v", out)
	}
}

func TestStateKnown(t *testing.T) {
	queue, cleanup := setupTestDB(t)
	defer cleanup()

	repo := NewStateRepository(queue)
	known, err := repo.Known(1)
	if err != nil {
		t.Fatal(err)
	}
	if known {
		t.Fatal("chat 1 should be unknown")
	}

	if err := repo.Save(&models.VolunteerState{ChatID: 1, Step: fsm.StepAvailable}); err != nil {
		t.Fatal(err)
	}
	known, err = repo.Known(1)
	if err != nil {
		t.Fatal(err)
	}
	if !known {
		t.Fatal("chat 1 should be known after save")
	}
}
