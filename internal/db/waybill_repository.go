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

// Waybill repository errors.
var (
	ErrWaybillNotFound = errors.New("waybill not found")
	ErrWaybillExists   = errors.New("waybill already exists")
)

// WaybillRepository handles waybill persistence.
type WaybillRepository struct {
	db *DB
}

// NewWaybillRepository creates a new WaybillRepository.
func NewWaybillRepository(db *DB) *WaybillRepository {
	return &WaybillRepository{db: db}
}

// WaybillQuery selects one page of waybills.
type WaybillQuery struct {
	WaybillType models.WaybillType
	Status      models.OrderStatus // empty = all statuses
	PageNum     int                // 1-based
	PageSize    int
}

// WaybillPage is one page of results plus the total matching count.
type WaybillPage struct {
	Items []*models.Waybill
	Total int
}

const waybillColumns = `id, order_no, waybill_type, status, company, sender, receiver, receiver_phone, address, cancelable, created_at, updated_at`

// Create inserts a waybill, assigning ID and timestamps when missing.
func (r *WaybillRepository) Create(ctx context.Context, w *models.Waybill) error {
	if err := w.Validate(); err != nil {
		return err
	}
	if w.ID == "" {
		w.ID = uuid.New().String()
	}
	now := time.Now().UTC()
	if w.CreatedAt.IsZero() {
		w.CreatedAt = now
	}
	w.UpdatedAt = now

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO waybills (`+waybillColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		w.ID,
		w.OrderNo,
		string(w.WaybillType),
		string(w.Status),
		w.Company,
		w.Sender,
		w.Receiver,
		w.ReceiverPhone,
		w.Address,
		boolToInt(w.Cancelable),
		w.CreatedAt.UTC().Format(time.RFC3339Nano),
		w.UpdatedAt.Format(time.RFC3339Nano),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrWaybillExists
		}
		return fmt.Errorf("failed to insert waybill: %w", err)
	}
	return nil
}

// Query returns one page of waybills, newest first.
func (r *WaybillRepository) Query(ctx context.Context, q WaybillQuery) (*WaybillPage, error) {
	if q.PageNum < 1 {
		q.PageNum = 1
	}
	if q.PageSize <= 0 {
		q.PageSize = 10
	}

	where := ` WHERE waybill_type = ?`
	args := []any{string(q.WaybillType)}
	if q.Status != models.OrderStatusAll {
		where += ` AND status = ?`
		args = append(args, string(q.Status))
	}

	page := &WaybillPage{}
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM waybills`+where, args...).Scan(&page.Total); err != nil {
		return nil, fmt.Errorf("failed to count waybills: %w", err)
	}

	query := `SELECT ` + waybillColumns + ` FROM waybills` + where + ` ORDER BY created_at DESC, id LIMIT ? OFFSET ?`
	args = append(args, q.PageSize, (q.PageNum-1)*q.PageSize)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query waybills: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		w, err := scanWaybill(rows)
		if err != nil {
			return nil, err
		}
		page.Items = append(page.Items, w)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating waybills: %w", err)
	}
	return page, nil
}

// GetByOrderNo retrieves a waybill by its order number.
func (r *WaybillRepository) GetByOrderNo(ctx context.Context, orderNo string) (*models.Waybill, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+waybillColumns+` FROM waybills WHERE order_no = ?`, orderNo)
	w, err := scanWaybill(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrWaybillNotFound
	}
	return w, err
}

// DeleteByOrderNo removes a waybill.
func (r *WaybillRepository) DeleteByOrderNo(ctx context.Context, orderNo string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM waybills WHERE order_no = ?`, orderNo)
	if err != nil {
		return fmt.Errorf("failed to delete waybill: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to delete waybill: %w", err)
	}
	if n == 0 {
		return ErrWaybillNotFound
	}
	return nil
}

// OrderNos lists every stored order number.
func (r *WaybillRepository) OrderNos(ctx context.Context) ([]string, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT order_no FROM waybills ORDER BY order_no`)
	if err != nil {
		return nil, fmt.Errorf("failed to list order numbers: %w", err)
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var no string
		if err := rows.Scan(&no); err != nil {
			return nil, fmt.Errorf("failed to scan order number: %w", err)
		}
		out = append(out, no)
	}
	return out, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanWaybill(row rowScanner) (*models.Waybill, error) {
	var (
		w                    models.Waybill
		wbType, status       string
		cancelable           int
		createdAt, updatedAt string
	)
	err := row.Scan(
		&w.ID,
		&w.OrderNo,
		&wbType,
		&status,
		&w.Company,
		&w.Sender,
		&w.Receiver,
		&w.ReceiverPhone,
		&w.Address,
		&cancelable,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to scan waybill: %w", err)
	}
	w.WaybillType = models.WaybillType(wbType)
	w.Status = models.OrderStatus(status)
	w.Cancelable = cancelable != 0
	w.CreatedAt, _ = time.Parse(time.RFC3339Nano, createdAt)
	w.UpdatedAt, _ = time.Parse(time.RFC3339Nano, updatedAt)
	return &w, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func isUniqueViolation(err error) bool {
	return err != nil && containsFold(err.Error(), "unique constraint")
}
