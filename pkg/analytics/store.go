// Package analytics keeps rolling counters and a bounded recent-history
// buffer over everything the service has analyzed. Stats only - nothing
// here feeds back into scoring.
package analytics

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/aman-security/aman/pkg/config"
	"github.com/aman-security/aman/pkg/rules"
)

// RecentCapacity bounds the recent-analyses buffer; the oldest entry is
// evicted first.
const RecentCapacity = 100

// Record is one analyzed message in the recent-history buffer.
type Record struct {
	ID         string    `json:"id"`
	Timestamp  time.Time `json:"timestamp"`
	Score      int       `json:"score"`
	ThreatType string    `json:"threat_type"`
}

// Snapshot is the externally visible statistics view.
type Snapshot struct {
	TotalAnalyzed   int            `json:"total_analyzed"`
	HighRisk        int            `json:"high_risk"`
	MediumRisk      int            `json:"medium_risk"`
	LowRisk         int            `json:"low_risk"`
	ThreatsBlocked  int            `json:"threats_blocked"`
	ThreatBreakdown map[string]int `json:"threat_breakdown"`
	UptimeHours     float64        `json:"uptime_hours"`
	ProtectionRate  float64        `json:"protection_rate"`
}

// Store tracks analysis statistics. Safe for concurrent use; append and
// evict run under one lock so the buffer bound always holds.
type Store struct {
	mu          sync.Mutex
	total       int
	highCount   int
	mediumCount int
	lowCount    int
	threatTypes map[string]int
	recent      []Record
	startTime   time.Time
}

// NewStore creates an empty analytics store.
func NewStore() *Store {
	return &Store{
		threatTypes: make(map[string]int),
		startTime:   time.Now(),
	}
}

// Record registers one analyzed message.
func (s *Store) Record(score int, threatType string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.total++
	switch {
	case score >= config.HighRisk:
		s.highCount++
	case score >= config.MediumRisk:
		s.mediumCount++
	default:
		s.lowCount++
	}

	if threatType != rules.ThreatSafe {
		s.threatTypes[threatType]++
	}

	s.recent = append(s.recent, Record{
		ID:         uuid.NewString(),
		Timestamp:  time.Now(),
		Score:      score,
		ThreatType: threatType,
	})
	if len(s.recent) > RecentCapacity {
		s.recent = s.recent[1:]
	}
}

// Snapshot returns the current statistics.
func (s *Store) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	breakdown := make(map[string]int, len(s.threatTypes))
	for k, v := range s.threatTypes {
		breakdown[k] = v
	}

	blocked := s.highCount + s.mediumCount
	total := s.total
	if total == 0 {
		total = 1
	}

	return Snapshot{
		TotalAnalyzed:   s.total,
		HighRisk:        s.highCount,
		MediumRisk:      s.mediumCount,
		LowRisk:         s.lowCount,
		ThreatsBlocked:  blocked,
		ThreatBreakdown: breakdown,
		UptimeHours:     roundTo(time.Since(s.startTime).Hours(), 2),
		ProtectionRate:  roundTo(float64(blocked)/float64(total)*100, 1),
	}
}

// Recent returns a copy of the recent-analyses buffer, oldest first.
func (s *Store) Recent() []Record {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Record, len(s.recent))
	copy(out, s.recent)
	return out
}

func roundTo(v float64, decimals int) float64 {
	scale := 1.0
	for range decimals {
		scale *= 10
	}
	return float64(int(v*scale+0.5)) / scale
}
