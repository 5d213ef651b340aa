package db

import (
	"database/sql"
	"errors"
	"time"

	_ "github.com/lib/pq"
)

var DB *sql.DB

const schema = `
CREATE TABLE IF NOT EXISTS news_digest (
	id          BIGSERIAL PRIMARY KEY,
	email       TEXT NOT NULL,
	digest_date TEXT NOT NULL DEFAULT '',
	topics      JSONB NOT NULL,
	body        TEXT NOT NULL,
	html_path   TEXT NOT NULL DEFAULT '',
	status      TEXT NOT NULL,
	error       TEXT NOT NULL DEFAULT '',
	model_used  TEXT NOT NULL DEFAULT '',
	created_at  TIMESTAMPTZ NOT NULL DEFAULT now(),
	sent_at     TIMESTAMPTZ
);

CREATE INDEX IF NOT EXISTS news_digest_email_idx ON news_digest (email);
`

func Connect(connStr string) error {
	if connStr == "" {
		return errors.New("DATABASE_URL is not set")
	}

	var err error
	DB, err = sql.Open("postgres", connStr)
	if err != nil {
		return err
	}

	DB.SetMaxOpenConns(25)
	DB.SetMaxIdleConns(25)
	DB.SetConnMaxLifetime(5 * time.Minute)

	return DB.Ping()
}

func Migrate() error {
	_, err := DB.Exec(schema)
	return err
}

func Close() {
	if DB != nil {
		DB.Close()
	}
}
