package repository

import (
	"database/sql"
	"errors"
	"time"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/leakguard/leakguard/internal/models"
)

type ChannelRepository interface {
	CreateChannel(ch *models.Channel) error
	GetAllChannels() ([]*models.Channel, error)
	GetChannelByID(id int64) (*models.Channel, error)
	GetChannelByUsername(username string) (*models.Channel, error)
	UpdateActive(id int64, active bool) error
	UpdateScanState(id int64, lastMessageID int64, scannedAt time.Time) error
}

type channelRepository struct {
	db     *sqlx.DB
	logger *zap.Logger
}

func NewChannelRepository(db *sqlx.DB, logger *zap.Logger) ChannelRepository {
	return &channelRepository{db: db, logger: logger}
}

func (r *channelRepository) CreateChannel(ch *models.Channel) error {
	query := `INSERT INTO channels (telegram_id, access_hash, username, title, active, last_message_id)
	          VALUES ($1, $2, $3, $4, $5, $6)
	          ON CONFLICT (username) DO UPDATE SET telegram_id = EXCLUDED.telegram_id,
	              access_hash = EXCLUDED.access_hash, title = EXCLUDED.title, updated_at = now()
	          RETURNING id, created_at, updated_at`
	return r.db.QueryRowx(query, ch.TelegramID, ch.AccessHash, ch.Username, ch.Title, ch.Active, ch.LastMessageID).
		Scan(&ch.ID, &ch.CreatedAt, &ch.UpdatedAt)
}

func (r *channelRepository) GetAllChannels() ([]*models.Channel, error) {
	var channels []*models.Channel
	query := `SELECT * FROM channels ORDER BY id`
	if err := r.db.Select(&channels, query); err != nil {
		return nil, err
	}
	return channels, nil
}

func (r *channelRepository) GetChannelByID(id int64) (*models.Channel, error) {
	var ch models.Channel
	query := `SELECT * FROM channels WHERE id = $1`
	if err := r.db.Get(&ch, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &ch, nil
}

func (r *channelRepository) GetChannelByUsername(username string) (*models.Channel, error) {
	var ch models.Channel
	query := `SELECT * FROM channels WHERE username = $1`
	if err := r.db.Get(&ch, query, username); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &ch, nil
}

func (r *channelRepository) UpdateActive(id int64, active bool) error {
	query := `UPDATE channels SET active = $1, updated_at = now() WHERE id = $2`
	result, err := r.db.Exec(query, active, id)
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

func (r *channelRepository) UpdateScanState(id int64, lastMessageID int64, scannedAt time.Time) error {
	query := `UPDATE channels SET last_message_id = $1, last_scanned_at = $2, updated_at = now() WHERE id = $3`
	_, err := r.db.Exec(query, lastMessageID, scannedAt, id)
	return err
}
