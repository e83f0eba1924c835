package scan

import "time"

// Job represents one scan attempt for an account. A job moves
// pending -> running -> success|failed and is immutable once terminal.
type Job struct {
	ID                 string     `json:"id"`
	AccountID          int64      `json:"account_id"`
	RequestedBy        int64      `json:"requested_by"`
	Status             string     `json:"status"`
	ResourcesScanned   int        `json:"resources_scanned"`
	ViolationsFound    int        `json:"violations_found"`
	ViolationsResolved int        `json:"violations_resolved"` // best-effort counter
	StartedAt          *time.Time `json:"started_at,omitempty"`
	CompletedAt        *time.Time `json:"completed_at,omitempty"`
	Error              string     `json:"error,omitempty"`
	CreatedAt          time.Time  `json:"created_at"`
}

// Job statuses
const (
	StatusPending = "pending"
	StatusRunning = "running"
	StatusSuccess = "success"
	StatusFailed  = "failed"
)

// IsTerminal reports whether the job has finished
func (j *Job) IsTerminal() bool {
	return j.Status == StatusSuccess || j.Status == StatusFailed
}

// Filter contains scan job filtering options
type Filter struct {
	AccountID int64
	Status    string
}
