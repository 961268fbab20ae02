package report

import (
	"testing"
	"time"

	"github.com/mizuki/toeflsim/internal/storage"
)

func TestLog_AppendAndAll(t *testing.T) {
	l := NewLog(storage.NewMemoryKV())

	if got := l.All(); len(got) != 0 {
		t.Fatalf("fresh log has %d records", len(got))
	}

	err := l.Append(
		PerformanceRecord{Date: time.Now(), Category: "内容一致問題", Correct: 1, Total: 1},
		PerformanceRecord{Date: time.Now(), Category: "推論問題", Correct: 0, Total: 1},
	)
	if err != nil {
		t.Fatal(err)
	}
	if err := l.Append(PerformanceRecord{Date: time.Now(), Category: "Speaking", Correct: 3, Total: 4, TaskKind: "INDEPENDENT"}); err != nil {
		t.Fatal(err)
	}

	all := l.All()
	if len(all) != 3 {
		t.Fatalf("len = %d, want 3", len(all))
	}
	if all[0].Category != "内容一致問題" || all[2].TaskKind != "INDEPENDENT" {
		t.Errorf("unexpected records: %+v", all)
	}
}

func TestLog_FailOpenOnCorruptData(t *testing.T) {
	kv := storage.NewMemoryKV()
	if err := kv.Set("toefl_history", "not json"); err != nil {
		t.Fatal(err)
	}
	l := NewLog(kv)
	if got := l.All(); got != nil {
		t.Fatalf("corrupt log should read empty, got %+v", got)
	}
	// Appending over corrupt data starts fresh.
	if err := l.Append(PerformanceRecord{Category: "Writing", Correct: 4, Total: 5}); err != nil {
		t.Fatal(err)
	}
	if got := l.All(); len(got) != 1 {
		t.Fatalf("len = %d, want 1", len(got))
	}
}

func TestLog_Clear(t *testing.T) {
	l := NewLog(storage.NewMemoryKV())
	if err := l.Append(PerformanceRecord{Category: "Listening", Correct: 1, Total: 1}); err != nil {
		t.Fatal(err)
	}
	if err := l.Clear(); err != nil {
		t.Fatal(err)
	}
	if got := l.All(); len(got) != 0 {
		t.Fatalf("after clear: %d records", len(got))
	}
}

func TestReports_RoundTrip(t *testing.T) {
	r := NewReports(storage.NewMemoryKV())

	rep := ScoreReport{
		ID:        "full_test_1",
		Date:      time.Now(),
		Reading:   SectionReport{Score: 27, MaxScore: 30, RawScore: 9, CorrectAnswers: 9, TotalQuestions: 10},
		Listening: SectionReport{Score: 24, MaxScore: 30, RawScore: 4, CorrectAnswers: 4, TotalQuestions: 5},
		Speaking:  SectionReport{Score: 23, MaxScore: 30, RawScore: 3, CorrectAnswers: 3, TotalQuestions: 4},
		Writing:   SectionReport{Score: 24, MaxScore: 30, RawScore: 4, CorrectAnswers: 4, TotalQuestions: 1},
		Total:     98,
	}
	if err := r.Append(rep); err != nil {
		t.Fatal(err)
	}

	all := r.All()
	if len(all) != 1 {
		t.Fatalf("len = %d, want 1", len(all))
	}
	if all[0].Total != 98 || all[0].Reading.Score != 27 {
		t.Errorf("round trip mismatch: %+v", all[0])
	}
}

func TestReports_FailOpenAndClear(t *testing.T) {
	kv := storage.NewMemoryKV()
	if err := kv.Set("toefl_score_reports", "[broken"); err != nil {
		t.Fatal(err)
	}
	r := NewReports(kv)
	if got := r.All(); got != nil {
		t.Fatalf("corrupt reports should read empty, got %+v", got)
	}
	if err := r.Append(ScoreReport{ID: "x", Total: 60}); err != nil {
		t.Fatal(err)
	}
	if err := r.Clear(); err != nil {
		t.Fatal(err)
	}
	if got := r.All(); len(got) != 0 {
		t.Fatalf("after clear: %d reports", len(got))
	}
}
