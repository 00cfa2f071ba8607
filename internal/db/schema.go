package db

import (
	"database/sql"
)

const schema = `
CREATE TABLE IF NOT EXISTS volunteer_state (
    chat_id INTEGER PRIMARY KEY,
    step TEXT NOT NULL DEFAULT 'awaiting_phone',
    current_request_id TEXT NOT NULL DEFAULT '',
    reviewed_request_id TEXT NOT NULL DEFAULT '',
    symptom_menu TEXT NOT NULL DEFAULT '',
    activity_menu TEXT NOT NULL DEFAULT '',
    updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS requests (
    id TEXT PRIMARY KEY,
    beneficiary TEXT NOT NULL DEFAULT '',
    address TEXT NOT NULL DEFAULT '',
    needs TEXT NOT NULL DEFAULT '[]',
    volunteers TEXT NOT NULL DEFAULT '[]',
    latitude REAL,
    longitude REAL,
    remarks TEXT NOT NULL DEFAULT '[]',
    has_disabilities BOOLEAN DEFAULT FALSE,
    assignee INTEGER NOT NULL DEFAULT 0,
    time_offer TEXT NOT NULL DEFAULT '',
    amount TEXT NOT NULL DEFAULT '',
    symptoms TEXT NOT NULL DEFAULT '[]',
    wellbeing INTEGER,
    would_return BOOLEAN,
    further_comments TEXT NOT NULL DEFAULT '',
    created_at DATETIME DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS registrations (
    chat_id INTEGER PRIMARY KEY,
    first_name TEXT NOT NULL DEFAULT '',
    last_name TEXT NOT NULL DEFAULT '',
    availability TEXT NOT NULL DEFAULT '',
    activities TEXT NOT NULL DEFAULT '[]',
    phone TEXT NOT NULL DEFAULT '',
    phone_foreign TEXT NOT NULL DEFAULT '',
    email TEXT NOT NULL DEFAULT '',
    created_at DATETIME DEFAULT CURRENT_TIMESTAMP
);
`

func InitSchema(db *sql.DB) error {
	_, err := db.Exec(schema)
	return err
}
