package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/Aida-adzd/smart-news-summarizer/internal/model"
)

type DigestRepository struct {
	db *sql.DB
}

func NewDigestRepository(db *sql.DB) *DigestRepository {
	return &DigestRepository{db: db}
}

func (r *DigestRepository) SaveDigest(ctx context.Context, digest *model.Digest) error {
	topics, err := json.Marshal(digest.Topics)
	if err != nil {
		return err
	}

	if digest.Status == "" {
		digest.Status = model.StatusPending
	}

	return r.db.QueryRowContext(ctx, `
		INSERT INTO news_digest(email, digest_date, topics, body, html_path, status, model_used)
		VALUES($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at
	`, digest.Email, digest.Date, topics, digest.Body, digest.HTMLPath, digest.Status, digest.ModelUsed).Scan(&digest.ID, &digest.CreatedAt)
}

func (r *DigestRepository) MarkSent(ctx context.Context, id int64) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE news_digest SET status = $1, sent_at = $2, error = '' WHERE id = $3
	`, model.StatusSent, time.Now(), id)
	return err
}

func (r *DigestRepository) MarkFailed(ctx context.Context, id int64, errMsg string) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE news_digest SET status = $1, error = $2 WHERE id = $3
	`, model.StatusFailed, errMsg, id)
	return err
}

func (r *DigestRepository) GetDigests(ctx context.Context, limit, offset int) ([]model.Digest, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, email, digest_date, topics, body, html_path, status, error, model_used, created_at, sent_at
		FROM news_digest
		ORDER BY created_at DESC
		LIMIT $1 OFFSET $2
	`, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var digests []model.Digest
	for rows.Next() {
		d, err := scanDigest(rows)
		if err != nil {
			return nil, err
		}
		digests = append(digests, *d)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return digests, nil
}

func (r *DigestRepository) GetDigestTotal(ctx context.Context) (int, error) {
	var total int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM news_digest`).Scan(&total)
	return total, err
}

func (r *DigestRepository) GetDigestByID(ctx context.Context, id int64) (*model.Digest, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, email, digest_date, topics, body, html_path, status, error, model_used, created_at, sent_at
		FROM news_digest
		WHERE id = $1
	`, id)

	d, err := scanDigest(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}

	if err != nil {
		return nil, err
	}

	return d, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanDigest(s scanner) (*model.Digest, error) {
	var d model.Digest
	var topicsJSON []byte
	var sentAt sql.NullTime

	err := s.Scan(&d.ID, &d.Email, &d.Date, &topicsJSON, &d.Body, &d.HTMLPath, &d.Status, &d.Error, &d.ModelUsed, &d.CreatedAt, &sentAt)
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal(topicsJSON, &d.Topics); err != nil {
		return nil, err
	}

	if sentAt.Valid {
		d.SentAt = &sentAt.Time
	}

	return &d, nil
}
