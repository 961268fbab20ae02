package contentgen

import "github.com/mizuki/toeflsim/internal/content"

// topicPools are the steering candidates per section. The generator
// prefers topics the history store reports as underused.
var topicPools = map[content.Type][]string{
	content.TypeReading: {
		"Biology", "History", "Art", "Geology", "Astronomy",
		"Archaeology", "Ecology", "Anthropology", "Economics", "Psychology",
	},
	content.TypeListening: {
		"Biology", "Art History", "Astronomy", "Anthropology",
		"Geology", "Literature", "Environmental Science",
	},
	content.TypeWriting: {
		"Archaeology", "Ecology", "History", "Astronomy",
		"Urban Planning", "Animal Behavior",
	},
}

// conversationSettings are campus-life scenarios for listening
// conversations, where academic topic steering doesn't apply.
var conversationSettings = []string{
	"Student & Professor",
	"Student & Service Employee",
	"Student & Librarian",
	"Student & Housing Office",
}
