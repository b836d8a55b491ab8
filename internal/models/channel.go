package models

import "time"

// Channel represents a monitored Telegram channel stored in the 'channels' table.
type Channel struct {
	ID            int64      `db:"id" json:"id"`
	TelegramID    int64      `db:"telegram_id" json:"telegram_id"`
	AccessHash    int64      `db:"access_hash" json:"-"`
	Username      string     `db:"username" json:"username"`
	Title         string     `db:"title" json:"title"`
	Active        bool       `db:"active" json:"active"`
	LastMessageID int64      `db:"last_message_id" json:"last_message_id"`
	LastScannedAt *time.Time `db:"last_scanned_at" json:"last_scanned_at,omitempty"`
	CreatedAt     time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time  `db:"updated_at" json:"updated_at"`
}

// ScrapedMessage is a message as returned by the Telegram fetcher, before it
// is persisted.
type ScrapedMessage struct {
	TelegramMessageID int64
	SenderID          int64
	SenderUsername    string
	Text              string
	Date              time.Time
	MediaType         string
}
