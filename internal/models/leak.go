package models

import "time"

// Severity is the ordinal risk label assigned to a leak at creation time.
type Severity string

const (
	SeverityCritical Severity = "critical"
	SeverityHigh     Severity = "high"
	SeverityMedium   Severity = "medium"
	SeverityLow      Severity = "low"
	SeverityInfo     Severity = "info"
)

// severityRank orders severities for threshold comparisons. Higher is worse.
var severityRank = map[Severity]int{
	SeverityInfo:     0,
	SeverityLow:      1,
	SeverityMedium:   2,
	SeverityHigh:     3,
	SeverityCritical: 4,
}

// SeverityAtLeast reports whether s is at least as severe as min.
func SeverityAtLeast(s, min Severity) bool {
	return severityRank[s] >= severityRank[min]
}

// ValidSeverity reports whether s is a known severity label.
func ValidSeverity(s string) bool {
	_, ok := severityRank[Severity(s)]
	return ok
}

// Leak review statuses. Severity is assigned once by the classifier; status
// is the only field mutated after creation, and only through human review.
const (
	StatusNew           = "new"
	StatusInvestigating = "investigating"
	StatusConfirmed     = "confirmed"
	StatusFalsePositive = "false_positive"
	StatusResolved      = "resolved"
)

// statusTransitions is the allowed review flow. Terminal states can be
// reopened into investigating.
var statusTransitions = map[string][]string{
	StatusNew:           {StatusInvestigating, StatusConfirmed, StatusFalsePositive, StatusResolved},
	StatusInvestigating: {StatusConfirmed, StatusFalsePositive, StatusResolved},
	StatusConfirmed:     {StatusResolved, StatusInvestigating},
	StatusFalsePositive: {StatusInvestigating},
	StatusResolved:      {StatusInvestigating},
}

// CanTransitionStatus reports whether a leak may move from one review status
// to another.
func CanTransitionStatus(from, to string) bool {
	for _, allowed := range statusTransitions[from] {
		if allowed == to {
			return true
		}
	}
	return false
}

// Leak represents one detected sensitive-data occurrence stored in the
// 'leaks' table.
type Leak struct {
	ID             int64     `db:"id" json:"id"`
	UUID           string    `db:"uuid" json:"uuid"`
	MessageID      int64     `db:"message_id" json:"message_id"`
	ChannelID      int64     `db:"channel_id" json:"channel_id"`
	SenderUsername string    `db:"sender_username" json:"sender_username,omitempty"`
	Category       string    `db:"category" json:"category"`
	Value          string    `db:"value" json:"value"`
	Severity       Severity  `db:"severity" json:"severity"`
	Status         string    `db:"status" json:"status"`
	Context        string    `db:"context" json:"context"`
	RawContent     string    `db:"raw_content" json:"raw_content"`
	SourceURL      string    `db:"source_url" json:"source_url"`
	DetectedAt     time.Time `db:"detected_at" json:"detected_at"`
	UpdatedAt      time.Time `db:"updated_at" json:"updated_at"`
}
