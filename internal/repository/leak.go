package repository

import (
	"database/sql"
	"errors"
	"strconv"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/leakguard/leakguard/internal/models"
)

// LeakFilter narrows leak listings. Empty fields are ignored.
type LeakFilter struct {
	Status   string
	Severity string
	Category string
}

type LeakRepository interface {
	SaveLeak(leak *models.Leak) error
	GetLeaks(filter LeakFilter) ([]*models.Leak, error)
	GetLeakByID(id int64) (*models.Leak, error)
	UpdateLeakStatus(id int64, status string) error
	DeleteLeaksForMessage(messageID int64) error
	CountLeaksBySeverity() (map[string]int, error)
	CountLeaksByStatus() (map[string]int, error)
	GetRecentLeaks(limit int) ([]*models.Leak, error)
}

type leakRepository struct {
	db     *sqlx.DB
	logger *zap.Logger
}

func NewLeakRepository(db *sqlx.DB, logger *zap.Logger) LeakRepository {
	return &leakRepository{db: db, logger: logger}
}

func (r *leakRepository) SaveLeak(leak *models.Leak) error {
	query := `INSERT INTO leaks (uuid, message_id, channel_id, sender_username, category, value, severity, status, context, raw_content, source_url, detected_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	          RETURNING id, updated_at`
	return r.db.QueryRowx(query, leak.UUID, leak.MessageID, leak.ChannelID, leak.SenderUsername, leak.Category,
		leak.Value, leak.Severity, leak.Status, leak.Context, leak.RawContent, leak.SourceURL, leak.DetectedAt).
		Scan(&leak.ID, &leak.UpdatedAt)
}

func (r *leakRepository) GetLeaks(filter LeakFilter) ([]*models.Leak, error) {
	query := `SELECT * FROM leaks WHERE 1=1`
	var args []interface{}
	if filter.Status != "" {
		args = append(args, filter.Status)
		query += ` AND status = $` + strconv.Itoa(len(args))
	}
	if filter.Severity != "" {
		args = append(args, filter.Severity)
		query += ` AND severity = $` + strconv.Itoa(len(args))
	}
	if filter.Category != "" {
		args = append(args, filter.Category)
		query += ` AND category = $` + strconv.Itoa(len(args))
	}
	query += ` ORDER BY detected_at DESC`

	var leaks []*models.Leak
	if err := r.db.Select(&leaks, query, args...); err != nil {
		return nil, err
	}
	return leaks, nil
}

func (r *leakRepository) GetLeakByID(id int64) (*models.Leak, error) {
	var leak models.Leak
	if err := r.db.Get(&leak, `SELECT * FROM leaks WHERE id = $1`, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &leak, nil
}

func (r *leakRepository) UpdateLeakStatus(id int64, status string) error {
	result, err := r.db.Exec(`UPDATE leaks SET status = $1, updated_at = now() WHERE id = $2`, status, id)
	if err != nil {
		return err
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return sql.ErrNoRows
	}
	return nil
}

func (r *leakRepository) DeleteLeaksForMessage(messageID int64) error {
	_, err := r.db.Exec(`DELETE FROM leaks WHERE message_id = $1`, messageID)
	return err
}

func (r *leakRepository) CountLeaksBySeverity() (map[string]int, error) {
	return r.countGrouped(`SELECT severity AS k, COUNT(*) AS n FROM leaks GROUP BY severity`)
}

func (r *leakRepository) CountLeaksByStatus() (map[string]int, error) {
	return r.countGrouped(`SELECT status AS k, COUNT(*) AS n FROM leaks GROUP BY status`)
}

func (r *leakRepository) countGrouped(query string) (map[string]int, error) {
	rows, err := r.db.Queryx(query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var k string
		var n int
		if err := rows.Scan(&k, &n); err != nil {
			return nil, err
		}
		counts[k] = n
	}
	return counts, rows.Err()
}

func (r *leakRepository) GetRecentLeaks(limit int) ([]*models.Leak, error) {
	var leaks []*models.Leak
	query := `SELECT * FROM leaks ORDER BY detected_at DESC LIMIT $1`
	if err := r.db.Select(&leaks, query, limit); err != nil {
		return nil, err
	}
	return leaks, nil
}
