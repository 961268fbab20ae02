package contentgen

import "github.com/mizuki/toeflsim/internal/llm"

// questionSchema is the shared definition for objective questions across
// reading and listening sets.
var questionSchema = map[string]any{
	"type": "object",
	"properties": map[string]any{
		"questionText": map[string]any{
			"type":        "string",
			"description": "A clear, complete question sentence",
		},
		"type": map[string]any{
			"type": "string",
			"enum": []any{"SINGLE_CHOICE", "INSERT_TEXT", "PROSE_SUMMARY"},
		},
		"options": map[string]any{
			"type": "array",
			"items": map[string]any{
				"type": "object",
				"properties": map[string]any{
					"id":   map[string]any{"type": "string"},
					"text": map[string]any{"type": "string"},
				},
				"required": []any{"id", "text"},
			},
		},
		"correctOptionIds": map[string]any{
			"type":  "array",
			"items": map[string]any{"type": "string"},
		},
		"paragraphRef": map[string]any{"type": "integer"},
		"difficulty": map[string]any{
			"type": "string",
			"enum": []any{"Easy", "Medium", "Hard"},
		},
		"category":        map[string]any{"type": "string"},
		"categoryLabel":   map[string]any{"type": "string"},
		"explanation":     map[string]any{"type": "string"},
		"tips":            map[string]any{"type": "string"},
		"relevantContext": map[string]any{"type": "string"},
	},
	"required": []any{
		"questionText", "type", "options", "correctOptionIds", "difficulty",
		"category", "categoryLabel", "explanation", "tips", "relevantContext",
	},
}

// ReadingSchema validates generated reading sets.
var ReadingSchema = &llm.Schema{
	Name:        "reading-set",
	Description: "A TOEFL reading passage with its question set",
	Definition: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"title":      map[string]any{"type": "string"},
			"paragraphs": map[string]any{"type": "array", "items": map[string]any{"type": "string"}},
			"questions":  map[string]any{"type": "array", "items": questionSchema},
		},
		"required": []any{"title", "paragraphs", "questions"},
	},
}

// ListeningSchema validates generated listening sets.
var ListeningSchema = &llm.Schema{
	Name:        "listening-set",
	Description: "A TOEFL listening conversation or lecture with questions",
	Definition: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"type":               map[string]any{"type": "string", "enum": []any{"CONVERSATION", "LECTURE"}},
			"title":              map[string]any{"type": "string"},
			"transcript":         map[string]any{"type": "string"},
			"japaneseTranscript": map[string]any{"type": "string"},
			"imageDescription":   map[string]any{"type": "string"},
			"questions":          map[string]any{"type": "array", "items": questionSchema},
		},
		"required": []any{"type", "title", "transcript", "japaneseTranscript", "questions"},
	},
}

// SpeakingSchema validates generated speaking tasks.
var SpeakingSchema = &llm.Schema{
	Name:        "speaking-task",
	Description: "A TOEFL speaking task with timing and source material",
	Definition: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"type":                        map[string]any{"type": "string", "enum": []any{"INDEPENDENT", "INTEGRATED"}},
			"prompt":                      map[string]any{"type": "string"},
			"reading":                     map[string]any{"type": "string"},
			"listeningTranscript":         map[string]any{"type": "string"},
			"japaneseListeningTranscript": map[string]any{"type": "string"},
			"preparationTime":             map[string]any{"type": "integer"},
			"recordingTime":               map[string]any{"type": "integer"},
		},
		"required": []any{"type", "prompt", "preparationTime", "recordingTime"},
	},
}

// WritingSchema validates generated writing tasks.
var WritingSchema = &llm.Schema{
	Name:        "writing-task",
	Description: "A TOEFL integrated or academic discussion writing task",
	Definition: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"type":                map[string]any{"type": "string", "enum": []any{"INTEGRATED", "ACADEMIC_DISCUSSION"}},
			"title":               map[string]any{"type": "string"},
			"reading":             map[string]any{"type": "string"},
			"listeningTranscript": map[string]any{"type": "string"},
			"question":            map[string]any{"type": "string"},
			"studentResponses": map[string]any{
				"type": "array",
				"items": map[string]any{
					"type": "object",
					"properties": map[string]any{
						"name": map[string]any{"type": "string"},
						"text": map[string]any{"type": "string"},
					},
				},
			},
		},
		"required": []any{"type", "title", "question"},
	},
}
