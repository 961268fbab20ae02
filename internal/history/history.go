// Package history persists fingerprints of generated content and answers
// duplicate and topic-diversity queries over them.
package history

import (
	"encoding/json"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/mizuki/toeflsim/internal/content"
	"github.com/mizuki/toeflsim/internal/fingerprint"
	"github.com/mizuki/toeflsim/internal/storage"
)

const historyKey = "toefl_question_history"

// Retention and cleanup cadence.
const (
	retention       = 3 * 30 * 24 * time.Hour
	cleanupInterval = 7 * 24 * time.Hour
)

// snapshot is the JSON document stored under historyKey.
type snapshot struct {
	Questions   []fingerprint.Fingerprint `json:"questions"`
	LastCleanup time.Time                 `json:"lastCleanup"`
}

// TopicCount pairs a topic with how often it has been generated.
type TopicCount struct {
	Topic string
	Count int
}

// Store reads and writes the fingerprint history through the KV repository.
type Store struct {
	kv  storage.KV
	now func() time.Time
}

// NewStore creates a history store over the given repository.
func NewStore(kv storage.KV) *Store {
	return &Store{kv: kv, now: time.Now}
}

// load reads the snapshot. Missing or corrupt data yields an empty store
// with LastCleanup set to now; persistence faults never block generation.
func (s *Store) load() snapshot {
	empty := snapshot{LastCleanup: s.now()}

	raw, ok, err := s.kv.Get(historyKey)
	if err != nil || !ok {
		return empty
	}
	var snap snapshot
	if err := json.Unmarshal([]byte(raw), &snap); err != nil {
		return empty
	}
	return snap
}

func (s *Store) save(snap snapshot) error {
	data, err := json.Marshal(snap)
	if err != nil {
		return err
	}
	return s.kv.Set(historyKey, string(data))
}

// Append records a new fingerprint.
func (s *Store) Append(fp fingerprint.Fingerprint) error {
	snap := s.load()
	snap.Questions = append(snap.Questions, fp)
	return s.save(snap)
}

// Cleanup drops entries older than the retention window and stamps the
// cleanup time.
func (s *Store) Cleanup() error {
	snap := s.load()
	cutoff := s.now().Add(-retention)

	kept := snap.Questions[:0]
	for _, q := range snap.Questions {
		if q.Generated.After(cutoff) {
			kept = append(kept, q)
		}
	}
	snap.Questions = kept
	snap.LastCleanup = s.now()
	return s.save(snap)
}

// NeedsCleanup reports whether the last cleanup is older than the weekly
// cadence.
func (s *Store) NeedsCleanup() bool {
	snap := s.load()
	return s.now().Sub(snap.LastCleanup) > cleanupInterval
}

// Clear removes all history.
func (s *Store) Clear() error {
	return s.kv.Delete(historyKey)
}

// Count returns the number of stored fingerprints for the type, all
// types when typ is empty.
func (s *Store) Count(typ content.Type) int {
	return len(s.filtered(typ))
}

// Recent returns the newest n fingerprints, newest first. A zero typ
// matches all types.
func (s *Store) Recent(n int, typ content.Type) []fingerprint.Fingerprint {
	qs := s.filtered(typ)
	if len(qs) > n {
		qs = qs[len(qs)-n:]
	}
	out := make([]fingerprint.Fingerprint, len(qs))
	for i, q := range qs {
		out[len(qs)-1-i] = q
	}
	return out
}

// IsDuplicate reports whether fp repeats stored content: an exact hash
// match anywhere, or keyword similarity above threshold against the 20
// most recent entries of the same type.
func (s *Store) IsDuplicate(fp fingerprint.Fingerprint, threshold float64) bool {
	snap := s.load()

	for _, q := range snap.Questions {
		if q.Hash == fp.Hash {
			return true
		}
	}

	var sameType []fingerprint.Fingerprint
	for _, q := range snap.Questions {
		if q.Type == fp.Type {
			sameType = append(sameType, q)
		}
	}
	if len(sameType) > 20 {
		sameType = sameType[len(sameType)-20:]
	}

	for _, q := range sameType {
		if fingerprint.Similarity(fp.Keywords, q.Keywords) > threshold {
			return true
		}
	}
	return false
}

// TopicStatistics aggregates per-topic usage counts, most used first.
// A zero typ matches all types.
func (s *Store) TopicStatistics(typ content.Type) []TopicCount {
	qs := s.filtered(typ)

	counts := make(map[string]int)
	var order []string
	for _, q := range qs {
		if counts[q.Topic] == 0 {
			order = append(order, q.Topic)
		}
		counts[q.Topic]++
	}

	out := make([]TopicCount, len(order))
	for i, topic := range order {
		out[i] = TopicCount{Topic: topic, Count: counts[topic]}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Count > out[j].Count })
	return out
}

// DiversityScore returns normalized Shannon entropy over topic usage in
// [0, 1]. One or zero distinct topics score 1.
func (s *Store) DiversityScore(typ content.Type) float64 {
	stats := s.TopicStatistics(typ)
	if len(stats) <= 1 {
		return 1
	}

	total := 0
	for _, st := range stats {
		total += st.Count
	}

	entropy := 0.0
	for _, st := range stats {
		p := float64(st.Count) / float64(total)
		entropy -= p * math.Log2(p)
	}
	return entropy / math.Log2(float64(len(stats)))
}

// UnderusedTopics filters candidates down to those used fewer than twice,
// matching case-insensitively and preserving input order.
func (s *Store) UnderusedTopics(typ content.Type, candidates []string) []string {
	stats := s.TopicStatistics(typ)
	counts := make(map[string]int, len(stats))
	for _, st := range stats {
		counts[strings.ToLower(st.Topic)] += st.Count
	}

	var out []string
	for _, c := range candidates {
		if counts[strings.ToLower(c)] < 2 {
			out = append(out, c)
		}
	}
	return out
}

func (s *Store) filtered(typ content.Type) []fingerprint.Fingerprint {
	snap := s.load()
	if typ == "" {
		return snap.Questions
	}
	var out []fingerprint.Fingerprint
	for _, q := range snap.Questions {
		if q.Type == typ {
			out = append(out, q)
		}
	}
	return out
}
