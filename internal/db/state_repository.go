package db

import (
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/ajubot/volunteer-bot/internal/fsm"
	"github.com/ajubot/volunteer-bot/internal/models"
)

// StateRepository persists per-volunteer conversation state. Get never
// fails on a missing row: an unknown chat starts in the awaiting-phone step.
type StateRepository struct {
	queue *DBQueue
}

func NewStateRepository(queue *DBQueue) *StateRepository {
	return &StateRepository{queue: queue}
}

func (r *StateRepository) Get(chatID int64) (*models.VolunteerState, error) {
	result, err := r.queue.Execute(func(db *sql.DB) (interface{}, error) {
		row := db.QueryRow(`
			SELECT chat_id, step, current_request_id, reviewed_request_id, symptom_menu, activity_menu, updated_at
			FROM volunteer_state WHERE chat_id = ?
		`, chatID)

		var state models.VolunteerState
		var symptomMenu, activityMenu string
		err := row.Scan(&state.ChatID, &state.Step, &state.CurrentRequestID,
			&state.ReviewedRequestID, &symptomMenu, &activityMenu, &state.UpdatedAt)
		if err == sql.ErrNoRows {
			return &models.VolunteerState{ChatID: chatID, Step: fsm.StepAwaitingPhone}, nil
		}
		if err != nil {
			return nil, err
		}
		if state.SymptomMenu, err = decodeMenu(symptomMenu); err != nil {
			return nil, fmt.Errorf("decode symptom menu for %d: %w", chatID, err)
		}
		if state.ActivityMenu, err = decodeMenu(activityMenu); err != nil {
			return nil, fmt.Errorf("decode activity menu for %d: %w", chatID, err)
		}
		return &state, nil
	})
	if err != nil {
		return nil, err
	}
	return result.(*models.VolunteerState), nil
}

func (r *StateRepository) Save(state *models.VolunteerState) error {
	symptomMenu, err := encodeMenu(state.SymptomMenu)
	if err != nil {
		return err
	}
	activityMenu, err := encodeMenu(state.ActivityMenu)
	if err != nil {
		return err
	}

	_, err = r.queue.Execute(func(db *sql.DB) (interface{}, error) {
		_, err := db.Exec(`
			INSERT INTO volunteer_state (chat_id, step, current_request_id, reviewed_request_id, symptom_menu, activity_menu, updated_at)
			VALUES (?, ?, ?, ?, ?, ?, CURRENT_TIMESTAMP)
			ON CONFLICT(chat_id) DO UPDATE SET
				step = excluded.step,
				current_request_id = excluded.current_request_id,
				reviewed_request_id = excluded.reviewed_request_id,
				symptom_menu = excluded.symptom_menu,
				activity_menu = excluded.activity_menu,
				updated_at = CURRENT_TIMESTAMP
		`, state.ChatID, state.Step, state.CurrentRequestID, state.ReviewedRequestID,
			symptomMenu, activityMenu)
		return nil, err
	})
	return err
}

// Known reports whether the chat has any persisted state at all, which is
// how fan-out decides if a volunteer ever talked to the bot.
func (r *StateRepository) Known(chatID int64) (bool, error) {
	result, err := r.queue.Execute(func(db *sql.DB) (interface{}, error) {
		var n int
		err := db.QueryRow(`SELECT COUNT(1) FROM volunteer_state WHERE chat_id = ?`, chatID).Scan(&n)
		return n > 0, err
	})
	if err != nil {
		return false, err
	}
	return result.(bool), nil
}

func (r *StateRepository) All() ([]*models.VolunteerState, error) {
	result, err := r.queue.Execute(func(db *sql.DB) (interface{}, error) {
		rows, err := db.Query(`
			SELECT chat_id, step, current_request_id, reviewed_request_id, symptom_menu, activity_menu, updated_at
			FROM volunteer_state ORDER BY chat_id
		`)
		if err != nil {
			return nil, err
		}
		defer rows.Close()

		var states []*models.VolunteerState
		for rows.Next() {
			var state models.VolunteerState
			var symptomMenu, activityMenu string
			if err := rows.Scan(&state.ChatID, &state.Step, &state.CurrentRequestID,
				&state.ReviewedRequestID, &symptomMenu, &activityMenu, &state.UpdatedAt); err != nil {
				return nil, err
			}
			if state.SymptomMenu, err = decodeMenu(symptomMenu); err != nil {
				return nil, err
			}
			if state.ActivityMenu, err = decodeMenu(activityMenu); err != nil {
				return nil, err
			}
			states = append(states, &state)
		}
		return states, rows.Err()
	})
	if err != nil {
		return nil, err
	}
	return result.([]*models.VolunteerState), nil
}

func encodeMenu(menu *models.Menu) (string, error) {
	if menu == nil {
		return "", nil
	}
	raw, err := json.Marshal(menu)
	if err != nil {
		return "", err
	}
	return string(raw), nil
}

func decodeMenu(raw string) (*models.Menu, error) {
	if raw == "" {
		return nil, nil
	}
	var menu models.Menu
	if err := json.Unmarshal([]byte(raw), &menu); err != nil {
		return nil, err
	}
	return &menu, nil
}
