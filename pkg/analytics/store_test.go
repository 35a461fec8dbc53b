package analytics

import (
	"testing"

	"github.com/aman-security/aman/pkg/rules"
)

func TestRecordCounters(t *testing.T) {
	s := NewStore()

	s.Record(85, rules.ThreatBank)
	s.Record(70, rules.ThreatPrize)
	s.Record(55, rules.ThreatPhishing)
	s.Record(10, rules.ThreatSafe)

	snap := s.Snapshot()
	if snap.TotalAnalyzed != 4 {
		t.Errorf("TotalAnalyzed = %d, want 4", snap.TotalAnalyzed)
	}
	if snap.HighRisk != 2 {
		t.Errorf("HighRisk = %d, want 2", snap.HighRisk)
	}
	if snap.MediumRisk != 1 {
		t.Errorf("MediumRisk = %d, want 1", snap.MediumRisk)
	}
	if snap.LowRisk != 1 {
		t.Errorf("LowRisk = %d, want 1", snap.LowRisk)
	}
	if snap.ThreatsBlocked != 3 {
		t.Errorf("ThreatsBlocked = %d, want 3", snap.ThreatsBlocked)
	}
	if snap.ProtectionRate != 75.0 {
		t.Errorf("ProtectionRate = %v, want 75.0", snap.ProtectionRate)
	}
}

func TestThreatBreakdownSkipsSafe(t *testing.T) {
	s := NewStore()

	s.Record(80, rules.ThreatBank)
	s.Record(75, rules.ThreatBank)
	s.Record(5, rules.ThreatSafe)

	snap := s.Snapshot()
	if snap.ThreatBreakdown[rules.ThreatBank] != 2 {
		t.Errorf("breakdown[bank] = %d, want 2", snap.ThreatBreakdown[rules.ThreatBank])
	}
	if _, ok := snap.ThreatBreakdown[rules.ThreatSafe]; ok {
		t.Error("safe verdicts must not appear in the threat breakdown")
	}
}

func TestEmptySnapshot(t *testing.T) {
	snap := NewStore().Snapshot()

	if snap.TotalAnalyzed != 0 || snap.ThreatsBlocked != 0 {
		t.Errorf("empty snapshot = %+v", snap)
	}
	if snap.ProtectionRate != 0 {
		t.Errorf("ProtectionRate = %v, want 0 without division error", snap.ProtectionRate)
	}
}

func TestRecentBufferBound(t *testing.T) {
	s := NewStore()

	for i := range RecentCapacity + 25 {
		s.Record(i%100, rules.ThreatPhishing)
	}

	recent := s.Recent()
	if len(recent) != RecentCapacity {
		t.Fatalf("recent buffer holds %d, want exactly %d", len(recent), RecentCapacity)
	}

	// FIFO eviction: the first 25 records are gone, the last one kept.
	if recent[0].Score != 25%100 {
		t.Errorf("oldest kept score = %d, want %d", recent[0].Score, 25%100)
	}
	if recent[len(recent)-1].Score != (RecentCapacity+24)%100 {
		t.Errorf("newest score = %d, want %d", recent[len(recent)-1].Score, (RecentCapacity+24)%100)
	}

	seen := make(map[string]bool, len(recent))
	for _, r := range recent {
		if r.ID == "" || seen[r.ID] {
			t.Fatalf("record IDs must be unique and non-empty, got %q", r.ID)
		}
		seen[r.ID] = true
	}
}
