// Package fingerprint derives compact identities for generated content so
// the history store can detect repeats and track topic variety.
package fingerprint

import (
	"fmt"
	"math/rand/v2"
	"sort"
	"strconv"
	"strings"
	"time"
	"unicode/utf16"

	"github.com/mizuki/toeflsim/internal/content"
)

// Fingerprint is the stored identity of one generated content item.
// Hash and Keywords are deterministic for identical input text; ID carries
// a timestamp plus random suffix and is unique per creation.
type Fingerprint struct {
	ID        string       `json:"id"`
	Type      content.Type `json:"type"`
	Topic     string       `json:"topic"`
	Keywords  []string     `json:"keywords"`
	Generated time.Time    `json:"generatedDate"`
	Hash      string       `json:"hash"`
}

// New builds a fingerprint for the given content type, topic label, and
// combined content text.
func New(typ content.Type, topic, text string) Fingerprint {
	now := time.Now()
	return Fingerprint{
		ID:        newID(typ, now),
		Type:      typ,
		Topic:     topic,
		Keywords:  Keywords(text),
		Generated: now,
		Hash:      Hash(text),
	}
}

func newID(typ content.Type, now time.Time) string {
	const alphabet = "0123456789abcdefghijklmnopqrstuvwxyz"
	suffix := make([]byte, 9)
	for i := range suffix {
		suffix[i] = alphabet[rand.IntN(len(alphabet))]
	}
	return fmt.Sprintf("%s_%d_%s", strings.ToLower(string(typ)), now.UnixMilli(), suffix)
}

// Hash computes a 32-bit rolling hash of the text, rendered base-36.
// It iterates UTF-16 code units so the value is stable for any stored
// history regardless of script.
func Hash(text string) string {
	var h int32
	for _, u := range utf16.Encode([]rune(text)) {
		h = (h << 5) - h + int32(u)
	}
	v := int64(h)
	if v < 0 {
		v = -v
	}
	return strconv.FormatInt(v, 36)
}

// stopwords are excluded from keyword extraction.
var stopwords = map[string]bool{
	"the": true, "a": true, "an": true, "and": true, "or": true,
	"but": true, "in": true, "on": true, "at": true, "to": true,
	"for": true, "of": true, "with": true, "by": true, "from": true,
	"is": true, "are": true, "was": true, "were": true, "be": true,
	"been": true, "has": true, "have": true, "had": true, "do": true,
	"does": true, "did": true, "will": true, "would": true,
	"should": true, "could": true, "may": true, "might": true,
	"can": true, "this": true, "that": true, "these": true, "those": true,
}

// Keywords extracts up to 10 keywords: lowercased, punctuation stripped,
// longer than 3 characters, stopwords removed, ordered by descending
// frequency with first occurrence breaking ties.
func Keywords(text string) []string {
	cleaned := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z':
			return r
		case r >= '0' && r <= '9', r == '_':
			return r
		default:
			return ' '
		}
	}, strings.ToLower(text))

	freq := make(map[string]int)
	var order []string
	for _, w := range strings.Fields(cleaned) {
		if len(w) <= 3 || stopwords[w] {
			continue
		}
		if freq[w] == 0 {
			order = append(order, w)
		}
		freq[w]++
	}

	// Stable sort keeps first-occurrence order among equal frequencies.
	sort.SliceStable(order, func(i, j int) bool {
		return freq[order[i]] > freq[order[j]]
	})

	if len(order) > 10 {
		order = order[:10]
	}
	return order
}

// Similarity computes Jaccard similarity between two keyword sets.
// An empty union yields 0.
func Similarity(a, b []string) float64 {
	setA := make(map[string]bool, len(a))
	for _, w := range a {
		setA[w] = true
	}
	setB := make(map[string]bool, len(b))
	for _, w := range b {
		setB[w] = true
	}

	union := make(map[string]bool, len(setA)+len(setB))
	inter := 0
	for w := range setA {
		union[w] = true
		if setB[w] {
			inter++
		}
	}
	for w := range setB {
		union[w] = true
	}

	if len(union) == 0 {
		return 0
	}
	return float64(inter) / float64(len(union))
}
