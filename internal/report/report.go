// Package report persists per-question performance records and full-test
// score reports.
package report

import (
	"encoding/json"
	"time"

	"github.com/mizuki/toeflsim/internal/storage"
)

const (
	performanceKey = "toefl_history"
	reportsKey     = "toefl_score_reports"
)

// PerformanceRecord is one graded unit of work: a single objective
// question, or a whole speaking/writing response. TaskKind is set for
// speaking records to distinguish the four task formats.
type PerformanceRecord struct {
	Date     time.Time `json:"date"`
	Category string    `json:"category"`
	Correct  int       `json:"correct"`
	Total    int       `json:"total"`
	TaskKind string    `json:"questionType,omitempty"`
}

// SectionReport summarizes one section of a full test on the 0-30 scale.
type SectionReport struct {
	Score            int `json:"score"`
	MaxScore         int `json:"maxScore"`
	RawScore         int `json:"rawScore"`
	CorrectAnswers   int `json:"correctAnswers"`
	TotalQuestions   int `json:"totalQuestions"`
	TimeSpentSeconds int `json:"timeSpent"`
}

// ScoreReport is the immutable record of one completed full test.
type ScoreReport struct {
	ID        string        `json:"id"`
	Date      time.Time     `json:"date"`
	Reading   SectionReport `json:"reading"`
	Listening SectionReport `json:"listening"`
	Speaking  SectionReport `json:"speaking"`
	Writing   SectionReport `json:"writing"`
	Total     int           `json:"totalScore"`
}

// Log is the append-only performance record store.
type Log struct {
	kv storage.KV
}

// NewLog creates a performance log over the given repository.
func NewLog(kv storage.KV) *Log {
	return &Log{kv: kv}
}

// Append adds records to the log.
func (l *Log) Append(records ...PerformanceRecord) error {
	all := l.All()
	all = append(all, records...)
	data, err := json.Marshal(all)
	if err != nil {
		return err
	}
	return l.kv.Set(performanceKey, string(data))
}

// All returns every record in insertion order. Missing or corrupt data
// reads as empty.
func (l *Log) All() []PerformanceRecord {
	raw, ok, err := l.kv.Get(performanceKey)
	if err != nil || !ok {
		return nil
	}
	var records []PerformanceRecord
	if err := json.Unmarshal([]byte(raw), &records); err != nil {
		return nil
	}
	return records
}

// Clear removes all records.
func (l *Log) Clear() error {
	return l.kv.Delete(performanceKey)
}

// Reports stores completed full-test score reports.
type Reports struct {
	kv storage.KV
}

// NewReports creates a score report store over the given repository.
func NewReports(kv storage.KV) *Reports {
	return &Reports{kv: kv}
}

// Append adds a finished report.
func (r *Reports) Append(report ScoreReport) error {
	all := r.All()
	all = append(all, report)
	data, err := json.Marshal(all)
	if err != nil {
		return err
	}
	return r.kv.Set(reportsKey, string(data))
}

// All returns every report in completion order. Missing or corrupt data
// reads as empty.
func (r *Reports) All() []ScoreReport {
	raw, ok, err := r.kv.Get(reportsKey)
	if err != nil || !ok {
		return nil
	}
	var reports []ScoreReport
	if err := json.Unmarshal([]byte(raw), &reports); err != nil {
		return nil
	}
	return reports
}

// Clear removes all reports.
func (r *Reports) Clear() error {
	return r.kv.Delete(reportsKey)
}
