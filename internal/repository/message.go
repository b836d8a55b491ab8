package repository

import (
	"database/sql"
	"errors"
	"time"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/leakguard/leakguard/internal/models"
)

type MessageRepository interface {
	// SaveMessage inserts the message or, when the (channel, telegram id)
	// pair already exists, loads the stored row into msg. Returns true when
	// a new row was inserted.
	SaveMessage(msg *models.Message) (bool, error)
	GetMessageByID(id int64) (*models.Message, error)
	GetMessagesByChannel(channelID int64, limit int) ([]*models.Message, error)
	MarkProcessed(id int64, at time.Time) error
	CountMessages() (int, error)
}

type messageRepository struct {
	db     *sqlx.DB
	logger *zap.Logger
}

func NewMessageRepository(db *sqlx.DB, logger *zap.Logger) MessageRepository {
	return &messageRepository{db: db, logger: logger}
}

func (r *messageRepository) SaveMessage(msg *models.Message) (bool, error) {
	query := `INSERT INTO messages (channel_id, telegram_message_id, sender_id, sender_username, text, message_date, media_type, media_ref)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	          ON CONFLICT (channel_id, telegram_message_id) DO NOTHING
	          RETURNING id, scraped_at`
	err := r.db.QueryRowx(query, msg.ChannelID, msg.TelegramMessageID, msg.SenderID, msg.SenderUsername,
		msg.Text, msg.MessageDate, msg.MediaType, msg.MediaRef).Scan(&msg.ID, &msg.ScrapedAt)
	if err == nil {
		return true, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return false, err
	}

	// Conflict: the message is already stored and immutable, load it instead.
	existing := `SELECT * FROM messages WHERE channel_id = $1 AND telegram_message_id = $2`
	if err := r.db.Get(msg, existing, msg.ChannelID, msg.TelegramMessageID); err != nil {
		return false, err
	}
	return false, nil
}

func (r *messageRepository) GetMessageByID(id int64) (*models.Message, error) {
	var msg models.Message
	query := `SELECT * FROM messages WHERE id = $1`
	if err := r.db.Get(&msg, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &msg, nil
}

func (r *messageRepository) GetMessagesByChannel(channelID int64, limit int) ([]*models.Message, error) {
	var messages []*models.Message
	query := `SELECT * FROM messages WHERE channel_id = $1 ORDER BY message_date DESC LIMIT $2`
	if err := r.db.Select(&messages, query, channelID, limit); err != nil {
		return nil, err
	}
	return messages, nil
}

func (r *messageRepository) MarkProcessed(id int64, at time.Time) error {
	query := `UPDATE messages SET processed_at = $1 WHERE id = $2`
	_, err := r.db.Exec(query, at, id)
	return err
}

func (r *messageRepository) CountMessages() (int, error) {
	var count int
	if err := r.db.Get(&count, `SELECT COUNT(*) FROM messages`); err != nil {
		return 0, err
	}
	return count, nil
}
