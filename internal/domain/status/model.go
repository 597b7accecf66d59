package status

import "time"

// Status is a party's shared mood/availability signal.
type Status string

const (
	StatusSteady Status = "STEADY"
	StatusAlone  Status = "ALONE"
	StatusSync   Status = "SYNC"
)

// Default is assumed when a party has never written a status.
const Default = StatusSteady

// Record is one row of user_protocols. One per party, owned by that party.
type Record struct {
	PartyID       string    `json:"user_id"`
	CurrentStatus Status    `json:"current_status"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// Value is a status as seen by the read model. A tentative value was set
// locally and will be replaced by the next refresh.
type Value struct {
	Status    Status `json:"status"`
	Tentative bool   `json:"tentative,omitempty"`
}

// Find returns the status recorded for partyID, or Default.
func Find(records []Record, partyID string) Status {
	for _, rec := range records {
		if rec.PartyID == partyID && rec.CurrentStatus != "" {
			return rec.CurrentStatus
		}
	}
	return Default
}
