package db

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/ajubot/volunteer-bot/internal/models"
)

// ErrRequestNotFound is returned when a request id is not in the store,
// typically because it was already finalized or cancelled.
var ErrRequestNotFound = errors.New("request not found")

type RequestRepository struct {
	queue *DBQueue
}

func NewRequestRepository(queue *DBQueue) *RequestRepository {
	return &RequestRepository{queue: queue}
}

// Put stores the request, overwriting any existing row with the same id.
// The backend is authoritative, so a repeated announcement wins.
func (r *RequestRepository) Put(req *models.AssistanceRequest) error {
	needs, err := encodeStrings(req.Needs)
	if err != nil {
		return err
	}
	volunteers, err := json.Marshal(req.Volunteers)
	if err != nil {
		return err
	}
	remarks, err := encodeStrings(req.Remarks)
	if err != nil {
		return err
	}
	symptoms, err := encodeStrings(req.Symptoms)
	if err != nil {
		return err
	}

	_, err = r.queue.Execute(func(db *sql.DB) (interface{}, error) {
		_, err := db.Exec(`
			INSERT INTO requests (id, beneficiary, address, needs, volunteers, latitude, longitude,
				remarks, has_disabilities, assignee, time_offer, amount, symptoms, wellbeing,
				would_return, further_comments)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
			ON CONFLICT(id) DO UPDATE SET
				beneficiary = excluded.beneficiary,
				address = excluded.address,
				needs = excluded.needs,
				volunteers = excluded.volunteers,
				latitude = excluded.latitude,
				longitude = excluded.longitude,
				remarks = excluded.remarks,
				has_disabilities = excluded.has_disabilities,
				assignee = excluded.assignee,
				time_offer = excluded.time_offer,
				amount = excluded.amount,
				symptoms = excluded.symptoms,
				wellbeing = excluded.wellbeing,
				would_return = excluded.would_return,
				further_comments = excluded.further_comments
		`, req.ID, req.Beneficiary, req.Address, needs, string(volunteers),
			req.Latitude, req.Longitude, remarks, req.HasDisabilities, req.Assignee,
			req.TimeOffer, req.Amount, symptoms, nullableInt(req.Wellbeing),
			nullableBool(req.WouldReturn), req.FurtherComments)
		return nil, err
	})
	return err
}

func (r *RequestRepository) Get(id string) (*models.AssistanceRequest, error) {
	result, err := r.queue.Execute(func(db *sql.DB) (interface{}, error) {
		row := db.QueryRow(`
			SELECT id, beneficiary, address, needs, volunteers, latitude, longitude,
				remarks, has_disabilities, assignee, time_offer, amount, symptoms,
				wellbeing, would_return, further_comments, created_at
			FROM requests WHERE id = ?
		`, id)
		req, err := scanRequest(row.Scan)
		if err == sql.ErrNoRows {
			return nil, ErrRequestNotFound
		}
		return req, err
	})
	if err != nil {
		return nil, err
	}
	return result.(*models.AssistanceRequest), nil
}

func (r *RequestRepository) Delete(id string) error {
	_, err := r.queue.Execute(func(db *sql.DB) (interface{}, error) {
		_, err := db.Exec(`DELETE FROM requests WHERE id = ?`, id)
		return nil, err
	})
	return err
}

func (r *RequestRepository) All() ([]*models.AssistanceRequest, error) {
	result, err := r.queue.Execute(func(db *sql.DB) (interface{}, error) {
		rows, err := db.Query(`
			SELECT id, beneficiary, address, needs, volunteers, latitude, longitude,
				remarks, has_disabilities, assignee, time_offer, amount, symptoms,
				wellbeing, would_return, further_comments, created_at
			FROM requests ORDER BY created_at
		`)
		if err != nil {
			return nil, err
		}
		defer rows.Close()

		var reqs []*models.AssistanceRequest
		for rows.Next() {
			req, err := scanRequest(rows.Scan)
			if err != nil {
				return nil, err
			}
			reqs = append(reqs, req)
		}
		return reqs, rows.Err()
	})
	if err != nil {
		return nil, err
	}
	return result.([]*models.AssistanceRequest), nil
}

func scanRequest(scan func(...interface{}) error) (*models.AssistanceRequest, error) {
	var req models.AssistanceRequest
	var needs, volunteers, remarks, symptoms string
	var latitude, longitude sql.NullFloat64
	var wellbeing sql.NullInt64
	var wouldReturn sql.NullBool

	err := scan(&req.ID, &req.Beneficiary, &req.Address, &needs, &volunteers,
		&latitude, &longitude, &remarks, &req.HasDisabilities, &req.Assignee,
		&req.TimeOffer, &req.Amount, &symptoms, &wellbeing, &wouldReturn,
		&req.FurtherComments, &req.CreatedAt)
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal([]byte(needs), &req.Needs); err != nil {
		return nil, fmt.Errorf("decode needs for %s: %w", req.ID, err)
	}
	if err := json.Unmarshal([]byte(volunteers), &req.Volunteers); err != nil {
		return nil, fmt.Errorf("decode volunteers for %s: %w", req.ID, err)
	}
	if err := json.Unmarshal([]byte(remarks), &req.Remarks); err != nil {
		return nil, fmt.Errorf("decode remarks for %s: %w", req.ID, err)
	}
	if err := json.Unmarshal([]byte(symptoms), &req.Symptoms); err != nil {
		return nil, fmt.Errorf("decode symptoms for %s: %w", req.ID, err)
	}
	if latitude.Valid && longitude.Valid {
		req.Latitude = &latitude.Float64
		req.Longitude = &longitude.Float64
	}
	if wellbeing.Valid {
		v := int(wellbeing.Int64)
		req.Wellbeing = &v
	}
	if wouldReturn.Valid {
		v := wouldReturn.Bool
		req.WouldReturn = &v
	}
	return &req, nil
}

func encodeStrings(values []string) (string, error) {
	if values == nil {
		values = []string{}
	}
	raw, err := json.Marshal(values)
	if err != nil {
		return "", err
	}
	return string(raw), nil
}

func nullableInt(v *int) interface{} {
	if v == nil {
		return nil
	}
	return *v
}

func nullableBool(v *bool) interface{} {
	if v == nil {
		return nil
	}
	return *v
}
