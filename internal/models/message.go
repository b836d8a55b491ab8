package models

import "time"

// Message represents a scraped message stored in the 'messages' table.
// Rows are immutable once stored; uniqueness is (channel_id, telegram_message_id).
// ProcessedAt marks that extraction has run for this message.
type Message struct {
	ID                int64      `db:"id" json:"id"`
	ChannelID         int64      `db:"channel_id" json:"channel_id"`
	TelegramMessageID int64      `db:"telegram_message_id" json:"telegram_message_id"`
	SenderID          int64      `db:"sender_id" json:"sender_id"`
	SenderUsername    string     `db:"sender_username" json:"sender_username"`
	Text              string     `db:"text" json:"text"`
	MessageDate       time.Time  `db:"message_date" json:"message_date"`
	MediaType         string     `db:"media_type" json:"media_type,omitempty"`
	MediaRef          string     `db:"media_ref" json:"media_ref,omitempty"`
	ScrapedAt         time.Time  `db:"scraped_at" json:"scraped_at"`
	ProcessedAt       *time.Time `db:"processed_at" json:"processed_at,omitempty"`
}

// ExtractedEntity is one pattern match found in a message, stored in the
// 'extracted_entities' table.
type ExtractedEntity struct {
	ID        int64     `db:"id" json:"id"`
	MessageID int64     `db:"message_id" json:"message_id"`
	Category  string    `db:"category" json:"category"`
	Value     string    `db:"value" json:"value"`
	Context   string    `db:"context" json:"context"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}
