package db

import (
	"database/sql"
	"encoding/json"
	"errors"

	"github.com/ajubot/volunteer-bot/internal/models"
)

// ErrRegistrationNotFound is returned when a chat has no onboarding in
// progress.
var ErrRegistrationNotFound = errors.New("registration not found")

// RegistrationRepository holds in-progress volunteer profiles. A row exists
// only between first contact and completed registration.
type RegistrationRepository struct {
	queue *DBQueue
}

func NewRegistrationRepository(queue *DBQueue) *RegistrationRepository {
	return &RegistrationRepository{queue: queue}
}

func (r *RegistrationRepository) Get(chatID int64) (*models.RegistrationProfile, error) {
	result, err := r.queue.Execute(func(db *sql.DB) (interface{}, error) {
		row := db.QueryRow(`
			SELECT chat_id, first_name, last_name, availability, activities, phone, phone_foreign, email, created_at
			FROM registrations WHERE chat_id = ?
		`, chatID)

		var p models.RegistrationProfile
		var activities string
		err := row.Scan(&p.ChatID, &p.FirstName, &p.LastName, &p.Availability,
			&activities, &p.Phone, &p.PhoneForeign, &p.Email, &p.CreatedAt)
		if err == sql.ErrNoRows {
			return nil, ErrRegistrationNotFound
		}
		if err != nil {
			return nil, err
		}
		if err := json.Unmarshal([]byte(activities), &p.Activities); err != nil {
			return nil, err
		}
		return &p, nil
	})
	if err != nil {
		return nil, err
	}
	return result.(*models.RegistrationProfile), nil
}

func (r *RegistrationRepository) Save(p *models.RegistrationProfile) error {
	activities, err := encodeStrings(p.Activities)
	if err != nil {
		return err
	}

	_, err = r.queue.Execute(func(db *sql.DB) (interface{}, error) {
		_, err := db.Exec(`
			INSERT INTO registrations (chat_id, first_name, last_name, availability, activities, phone, phone_foreign, email)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)
			ON CONFLICT(chat_id) DO UPDATE SET
				first_name = excluded.first_name,
				last_name = excluded.last_name,
				availability = excluded.availability,
				activities = excluded.activities,
				phone = excluded.phone,
				phone_foreign = excluded.phone_foreign,
				email = excluded.email
		`, p.ChatID, p.FirstName, p.LastName, p.Availability, activities,
			p.Phone, p.PhoneForeign, p.Email)
		return nil, err
	})
	return err
}

func (r *RegistrationRepository) Delete(chatID int64) error {
	_, err := r.queue.Execute(func(db *sql.DB) (interface{}, error) {
		_, err := db.Exec(`DELETE FROM registrations WHERE chat_id = ?`, chatID)
		return nil, err
	})
	return err
}
