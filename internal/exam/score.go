package exam

import (
	"math"

	"github.com/mizuki/toeflsim/internal/content"
)

// SectionScore is the local scoring result for an objective section.
type SectionScore struct {
	// Awarded and Max count weighted points: prose summary questions are
	// worth 2, everything else 1.
	Awarded int
	Max     int
	// Correct and Total count whole questions, used for scaled scoring.
	Correct int
	Total   int
}

// Percentage returns the rounded awarded/max percentage.
func (s SectionScore) Percentage() int {
	if s.Max == 0 {
		return 0
	}
	return int(math.Round(float64(s.Awarded) / float64(s.Max) * 100))
}

// Scaled returns the section's 0-30 scaled score.
func (s SectionScore) Scaled() int {
	return ScaledScore(s.Correct, s.Total)
}

// ScaledScore maps a raw count onto the 0-30 band.
func ScaledScore(raw, max int) int {
	if max == 0 {
		return 0
	}
	scaled := math.Round(float64(raw) / float64(max) * 30)
	return int(math.Min(30, scaled))
}

// ScoreQuestions grades a question list against the user's answers.
func ScoreQuestions(questions []content.Question, answers map[string][]string) SectionScore {
	var s SectionScore
	for _, q := range questions {
		worth := questionWorth(q)
		awarded := awardQuestion(q, answers[q.ID])

		s.Awarded += awarded
		s.Max += worth
		s.Total++
		if awarded == worth {
			s.Correct++
		}
	}
	return s
}

func questionWorth(q content.Question) int {
	if q.Kind == content.ProseSummary {
		return 2
	}
	return 1
}

// awardQuestion applies the per-kind scoring rules. Single-choice and
// insert-text award 1 for the exact correct option. Prose summary awards
// 2 when every correct option is matched, 1 when exactly one is missed,
// otherwise 0.
func awardQuestion(q content.Question, selected []string) int {
	correct := make(map[string]bool, len(q.CorrectAnswers))
	for _, id := range q.CorrectAnswers {
		correct[id] = true
	}

	if q.Kind == content.ProseSummary {
		matches := 0
		for _, id := range selected {
			if correct[id] {
				matches++
			}
		}
		switch {
		case matches == len(q.CorrectAnswers):
			return 2
		case matches == len(q.CorrectAnswers)-1:
			return 1
		default:
			return 0
		}
	}

	if len(selected) == 1 && correct[selected[0]] {
		return 1
	}
	return 0
}
