package models

import "time"

// Alert represents a notification raised for a severe leak, stored in the
// 'alerts' table.
type Alert struct {
	ID        int64      `db:"id" json:"id"`
	LeakID    int64      `db:"leak_id" json:"leak_id"`
	Title     string     `db:"title" json:"title"`
	Body      string     `db:"body" json:"body"`
	Priority  Severity   `db:"priority" json:"priority"`
	Read      bool       `db:"read" json:"read"`
	Notified  bool       `db:"notified" json:"notified"`
	CreatedAt time.Time  `db:"created_at" json:"created_at"`
	ReadAt    *time.Time `db:"read_at" json:"read_at,omitempty"`
}
