package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/tOgg1/waybill/internal/models"
)

// PopupRepository stores home popup entries and the guide eligibility flag.
type PopupRepository struct {
	db *DB
}

// NewPopupRepository creates a new PopupRepository.
func NewPopupRepository(db *DB) *PopupRepository {
	return &PopupRepository{db: db}
}

// Create inserts a popup entry.
func (r *PopupRepository) Create(ctx context.Context, p *models.HomePopup) error {
	if p.ID == "" {
		p.ID = uuid.New().String()
	}
	if p.CreatedAt.IsZero() {
		p.CreatedAt = time.Now().UTC()
	}
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO home_popups (id, company, title, created_at) VALUES (?, ?, ?, ?)
	`, p.ID, p.Company, p.Title, p.CreatedAt.UTC().Format(time.RFC3339Nano))
	if err != nil {
		return fmt.Errorf("failed to insert popup: %w", err)
	}
	return nil
}

// Unread lists popup entries that were never marked read, oldest first.
func (r *PopupRepository) Unread(ctx context.Context) ([]models.HomePopup, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, company, title, created_at FROM home_popups
		WHERE read_at IS NULL ORDER BY created_at, id
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query popups: %w", err)
	}
	defer rows.Close()

	var out []models.HomePopup
	for rows.Next() {
		var p models.HomePopup
		var createdAt string
		if err := rows.Scan(&p.ID, &p.Company, &p.Title, &createdAt); err != nil {
			return nil, fmt.Errorf("failed to scan popup: %w", err)
		}
		p.CreatedAt, _ = time.Parse(time.RFC3339Nano, createdAt)
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating popups: %w", err)
	}
	return out, nil
}

// MarkAllRead stamps every unread entry with at.
func (r *PopupRepository) MarkAllRead(ctx context.Context, at time.Time) error {
	return r.db.TransactionWithRetry(ctx, 0, 0, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, `UPDATE home_popups SET read_at = ? WHERE read_at IS NULL`,
			at.UTC().Format(time.RFC3339Nano))
		if err != nil {
			return fmt.Errorf("failed to mark popups read: %w", err)
		}
		return nil
	})
}

// ShowGuide reports whether the recommend guide is enabled for the user.
func (r *PopupRepository) ShowGuide(ctx context.Context) (bool, error) {
	var v int
	err := r.db.QueryRowContext(ctx, `SELECT show_guide FROM user_settings WHERE name = 'default'`).Scan(&v)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to read guide flag: %w", err)
	}
	return v != 0, nil
}

// SetShowGuide enables or disables the recommend guide.
func (r *PopupRepository) SetShowGuide(ctx context.Context, show bool) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO user_settings (name, show_guide) VALUES ('default', ?)
		ON CONFLICT(name) DO UPDATE SET show_guide = excluded.show_guide
	`, boolToInt(show))
	if err != nil {
		return fmt.Errorf("failed to write guide flag: %w", err)
	}
	return nil
}
