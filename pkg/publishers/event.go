package publishers

import (
	"time"

	"github.com/google/uuid"
)

// Event announces a finished digest to downstream sinks.
type Event struct {
	RunID             string    `json:"run_id"`
	PeriodTag         string    `json:"period_tag"`
	Path              string    `json:"path"`
	WeeklyCount       int       `json:"weekly_count"`
	MonthlyCount      int       `json:"monthly_count"`
	PostCount         int       `json:"post_count"`
	MonthlyFetched    bool      `json:"monthly_fetched"`
	FailedCommunities []string  `json:"failed_communities,omitempty"`
	GeneratedAt       time.Time `json:"generated_at"`
}

// NewEvent constructs an Event with a fresh run id.
func NewEvent(periodTag, path string, generatedAt time.Time) Event {
	return Event{
		RunID:       uuid.NewString(),
		PeriodTag:   periodTag,
		Path:        path,
		GeneratedAt: generatedAt.UTC(),
	}
}
