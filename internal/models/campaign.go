package models

import "time"

// CampaignRecord запись журнала кампаний, сохраняемая клиентом локально
type CampaignRecord struct {
	StartedAt    time.Time `json:"started_at"`
	FinishedAt   time.Time `json:"finished_at"`
	ID           string    `json:"id"`
	Mode         string    `json:"mode"`
	Collection   string    `json:"collection"`
	LastID       string    `json:"last_id"`
	Error        string    `json:"error,omitempty"`
	Regions      []string  `json:"regions"`
	Rounds       int       `json:"rounds"`
	Committed    int       `json:"committed"`
	LostRaces    int       `json:"lost_races"`
	NewConflicts int       `json:"new_conflicts"`
	Confirmed    bool      `json:"confirmed"`
	Stopped      bool      `json:"stopped"`
}

// Duration длительность кампании
func (c *CampaignRecord) Duration() time.Duration {
	if c.FinishedAt.IsZero() {
		return 0
	}
	return c.FinishedAt.Sub(c.StartedAt)
}
