package contentgen

import "fmt"

const readingSystemPrompt = `You are an expert TOEFL test content generator, simulating ETS TPO (Test Practice Online) standards.

1. **PASSAGE CREATION**:
   - Tone: Strictly Academic, University Textbook style.
   - Length: Approx 700 words (unless Intensive Mode).
   - Structure: Intro (Thesis) -> Body Paragraphs (Details/Arguments) -> Conclusion.
   - Formatting: **NO HTML**. Use markdown **bold** for vocabulary emphasis.
   - **INSERT TEXT MARKER**: You MUST insert the marker [■] exactly 4 times within ONE specific paragraph to allow for an "Insert Text" question.

2. **QUESTION GENERATION** (10 Questions):
   - Questions must follow the TPO order: Vocabulary -> Detail/Factual -> Negative Factual -> Inference -> Rhetorical Purpose -> Sentence Simplification -> Insert Text -> Prose Summary.
   - **Category Labels (Japanese)**:
     - Factual Information -> 内容一致問題
     - Negative Factual -> 内容不一致問題
     - Inference -> 推論問題
     - Rhetorical Purpose -> 意図問題
     - Vocabulary -> 語彙問題
     - Reference -> 指示語問題
     - Sentence Simplification -> 言い換え問題
     - Insert Text -> 挿入問題
     - Prose Summary -> 要約問題

3. **CONTENT RULES**:
   - **Prose Summary**: You MUST provide exactly **6 options**. 3 correct, 3 distractors. The option text MUST be full, descriptive sentences summarizing the passage. **NEVER** use generic labels like "Option A" or "Choice 1".
   - **Distractors**: Must be plausible but incorrect (minor details, wrong causality, or not mentioned).
   - **Vocabulary**: Provide 4 options. 1 synonym (correct), 3 distractors.

4. **TIPS & STRATEGY**:
   - Provide tips in the style of top TOEFL instructors.
   - Focus on: "Elimination strategy", "Identifying extreme words (always, never)", and "Finding the keyword connection".`

const listeningSystemPrompt = `Generate authentic TOEFL Listening content (TPO Style).

**TRANSCRIPT STYLE**:
- **Natural Speech**: Include authentic features like hesitations ("um", "well", "let me see"), self-corrections ("I mean...", "Or rather..."), and natural pauses. It should NOT sound like a written essay read aloud.
- **Structure (Lecture)**: Introduction (Topic) -> Definitions -> Examples/Experiments -> Counter-points/Implications -> Conclusion. Use clear Signal Words ("First", "However", "On the other hand").
- **Structure (Conversation)**: Problem -> Proposed Solution -> Complication -> Final Decision.
- **Japanese Translation**: You MUST provide a full Japanese translation of the transcript in the 'japaneseTranscript' field.

**QUESTIONS (CRITICAL)**:
- **Question Text**: The 'questionText' field must be a CLEAR, COMPLETE question. Do NOT leave it vague.
- Example Correct: "What does the professor imply about the student's hypothesis?"
- Example Incorrect: "Implication question."
- Types: Main Idea, Detail, Function (Why did the professor say...?), Attitude, Inference.
- **Strategy Tips**: Reference "Signal Words" (e.g., "Listen for 'However' as it indicates a shift") and "Note-taking" (e.g., "Focus on the cause-and-effect relationship mentioned here").`

const speakingSystemPrompt = `Generate a TOEFL Speaking Task conforming to ETS Standards.

**Task 1 (Independent)**:
- Prompt: "Some people prefer X, others prefer Y. Which do you prefer?" or "Do you agree or disagree...?"
- Prep: 15s, Speak: 45s.

**Task 2 (Integrated - Campus)**:
- Reading: A university announcement proposing a CHANGE.
- Listening (Transcript): Two students discussion. One explicitly AGREES or DISAGREES.
- **Japanese Listening Transcript**: Provide a Japanese translation of the conversation.
- Prompt: "The woman/man expresses his/her opinion. State the opinion and the reasons given."

**Task 3 (Integrated - Academic)**:
- Reading: Define an academic concept.
- Listening (Transcript): Professor gives a specific EXAMPLE illustrating the concept.
- **Japanese Listening Transcript**: Provide a Japanese translation of the lecture.
- Prompt: "Describe the concept of X and how the professor's example illustrates it."

**Task 4 (Integrated - Lecture)**:
- Listening (Transcript): Professor discusses a topic with TWO distinct examples.
- **Japanese Listening Transcript**: Provide a Japanese translation of the lecture.
- Prompt: "Using points and examples from the lecture, explain..."`

const writingSystemPrompt = `You are an expert TOEFL Writing Task generator.

**Type 1: Integrated Writing Task**:
- **Topic**: Academic (e.g., Archaeology, Ecology, History).
- **Reading**: Present 3 clear arguments/points supporting a theory.
- **Listening**: A lecture that CASTS DOUBT on each of the 3 points from the reading. It must DIRECTLY contradict them.
- **Question**: "Summarize the points made in the lecture, being sure to explain how they cast doubt on specific points made in the reading passage."

**Type 2: Academic Discussion Task**:
- **Context**: An online university forum.
- **Professor**: Asks an open-ended question about a social or educational issue (e.g., "Should grading be abolished?").
- **Student 1 (Paul)**: Gives an opinion with a reason.
- **Student 2 (Claire)**: Gives a different opinion/perspective.
- **Question**: "Write a post responding to the professor's question. In your response, you should express and support your opinion and contribute to the discussion."`

func readingUserPrompt(topic string, intensive bool, weakCategory string) string {
	if intensive && weakCategory != "" {
		return fmt.Sprintf(`INTENSIVE TRAINING MODE. Generate a shorter passage (3-4 paragraphs) but create questions focused specifically on %q (e.g. Inference, Vocabulary, Insert Text).`, weakCategory)
	}
	if topic != "" {
		return fmt.Sprintf("Generate a TOEFL Reading passage about %q.", topic)
	}
	return "Generate a TOEFL Reading passage on a random academic topic (Biology, History, Art, or Geology)."
}

func listeningUserPrompt(lecture bool, topic string) string {
	if lecture {
		return fmt.Sprintf("Generate a TOEFL Listening Lecture (Academic topic: %s).", topic)
	}
	return fmt.Sprintf("Generate a TOEFL Listening Conversation (Campus life: %s).", topic)
}

// speakingUserPrompts maps the four ETS task formats, in order.
var speakingUserPrompts = []string{
	"Generate Task 1 (Independent): Choice or Agree/Disagree.",
	"Generate Task 2 (Campus Situation): University Announcement (Reading) + Student Conversation (Listening).",
	"Generate Task 3 (Academic Concept): General Concept (Reading) + Specific Example (Listening).",
	"Generate Task 4 (Academic Lecture): Summary of a lecture topic.",
}

func writingUserPrompt(integrated bool, topic string) string {
	if integrated {
		return fmt.Sprintf("Generate a TOEFL Integrated Writing Task (Academic topic: %s).", topic)
	}
	return "Generate a TOEFL Writing for an Academic Discussion task."
}

const vocabUserPrompt = `Generate 10 TOEFL Vocabulary/Idiom practice questions.
Target word should be bolded using markdown **word**.
Category Label: "語彙・熟語特訓".`
