package exam

import (
	"fmt"
	"time"

	"github.com/mizuki/toeflsim/internal/content"
	"github.com/mizuki/toeflsim/internal/report"
)

// sectionMinutes is the nominal time budget per full-test section,
// shown on the interstitial screen between sections.
var sectionMinutes = map[content.Type]int{
	content.TypeReading:   35,
	content.TypeListening: 36,
	content.TypeSpeaking:  16,
	content.TypeWriting:   29,
}

// SectionMinutes returns the nominal duration of a section in minutes.
func SectionMinutes(typ content.Type) int { return sectionMinutes[typ] }

// FullTest chains the four sections in test order and aggregates their
// reports into one immutable score report.
type FullTest struct {
	idx          int
	sections     map[content.Type]report.SectionReport
	sectionStart time.Time

	now func() time.Time
}

// NewFullTest starts a full test at the reading section.
func NewFullTest() *FullTest {
	t := &FullTest{
		sections: make(map[content.Type]report.SectionReport),
		now:      time.Now,
	}
	t.sectionStart = t.now()
	return t
}

// Current returns the section in progress.
func (t *FullTest) Current() content.Type {
	return content.Types[t.idx]
}

// Index returns the zero-based section position.
func (t *FullTest) Index() int { return t.idx }

// Done reports whether all four sections have completed.
func (t *FullTest) Done() bool { return t.idx >= len(content.Types) }

// CompleteSection records the finished section's report, stamping the
// elapsed wall time, and advances to the next section.
func (t *FullTest) CompleteSection(rep report.SectionReport) {
	if t.Done() {
		return
	}
	rep.TimeSpentSeconds = int(t.now().Sub(t.sectionStart).Seconds())
	rep.Score = ScaledScore(rep.RawScore, rep.MaxScore)
	t.sections[t.Current()] = rep
	t.idx++
	t.sectionStart = t.now()
}

// Report builds the final score report. Each section's scaled score is
// derived from its raw score and the four are summed into the 0-120
// total with no further rounding.
func (t *FullTest) Report() report.ScoreReport {
	reading := t.sections[content.TypeReading]
	listening := t.sections[content.TypeListening]
	speaking := t.sections[content.TypeSpeaking]
	writing := t.sections[content.TypeWriting]

	now := t.now()
	return report.ScoreReport{
		ID:        fmt.Sprintf("full_test_%d", now.UnixMilli()),
		Date:      now,
		Reading:   reading,
		Listening: listening,
		Speaking:  speaking,
		Writing:   writing,
		Total:     reading.Score + listening.Score + speaking.Score + writing.Score,
	}
}
