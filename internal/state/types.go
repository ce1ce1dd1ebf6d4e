package state

import (
	stderrors "errors"
	"time"

	"github.com/PentesterFlow/mcpcreator/internal/model"
)

// Stats counts what happened to the records of one trace.
type Stats struct {
	RecordsSeen     int            `json:"records_seen"`
	RecordsRelevant int            `json:"records_relevant"`
	RecordsSkipped  map[string]int `json:"records_skipped,omitempty"`
	Endpoints       int            `json:"endpoints"`
	Merges          int            `json:"merges"`
	AuthPatterns    int            `json:"auth_patterns"`
	Redactions      int            `json:"redactions"`
}

// Skip counts a skipped record under its reason.
func (s *Stats) Skip(reason string) {
	if s.RecordsSkipped == nil {
		s.RecordsSkipped = make(map[string]int)
	}
	s.RecordsSkipped[reason]++
}

// Skipped returns the total number of skipped records.
func (s *Stats) Skipped() int {
	total := 0
	for _, n := range s.RecordsSkipped {
		total += n
	}
	return total
}

// Snapshot is a saved analysis of one trace.
type Snapshot struct {
	RunID     string             `json:"run_id"`
	CreatedAt time.Time          `json:"created_at"`
	Source    string             `json:"source"`
	Stats     Stats              `json:"stats"`
	Model     model.ServiceModel `json:"model"`
}

// ErrNoSnapshot is returned when a store holds no snapshot.
var ErrNoSnapshot = stderrors.New("no snapshot saved")
