package repository

import (
	"database/sql"
	"errors"
	"time"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/leakguard/leakguard/internal/models"
)

type AlertRepository interface {
	SaveAlert(alert *models.Alert) error
	GetAlerts(unreadOnly bool) ([]*models.Alert, error)
	MarkRead(id int64, at time.Time) error
	MarkNotified(id int64) error
}

type alertRepository struct {
	db     *sqlx.DB
	logger *zap.Logger
}

func NewAlertRepository(db *sqlx.DB, logger *zap.Logger) AlertRepository {
	return &alertRepository{db: db, logger: logger}
}

func (r *alertRepository) SaveAlert(alert *models.Alert) error {
	query := `INSERT INTO alerts (leak_id, title, body, priority)
	          VALUES ($1, $2, $3, $4) RETURNING id, created_at`
	return r.db.QueryRowx(query, alert.LeakID, alert.Title, alert.Body, alert.Priority).
		Scan(&alert.ID, &alert.CreatedAt)
}

func (r *alertRepository) GetAlerts(unreadOnly bool) ([]*models.Alert, error) {
	query := `SELECT * FROM alerts ORDER BY created_at DESC`
	if unreadOnly {
		query = `SELECT * FROM alerts WHERE read = false ORDER BY created_at DESC`
	}
	var alerts []*models.Alert
	if err := r.db.Select(&alerts, query); err != nil {
		return nil, err
	}
	return alerts, nil
}

func (r *alertRepository) MarkRead(id int64, at time.Time) error {
	result, err := r.db.Exec(`UPDATE alerts SET read = true, read_at = $1 WHERE id = $2`, at, id)
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

func (r *alertRepository) MarkNotified(id int64) error {
	_, err := r.db.Exec(`UPDATE alerts SET notified = true WHERE id = $1`, id)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return err
	}
	return nil
}
