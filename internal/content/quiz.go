package content

import (
	"fmt"
	"strings"
)

// QuizSize is the number of questions in one quiz round.
const QuizSize = 6

// Answer sides.
const (
	Left  = "LEFT"
	Right = "RIGHT"
)

// Question is a two-choice quiz question.
type Question struct {
	Text    string            `json:"text"`
	Options map[string]string `json:"options"`
	Correct string            `json:"correct"`
}

// Validate checks that q has text, both options and a valid correct side.
func (q Question) Validate() error {
	switch {
	case strings.TrimSpace(q.Text) == "":
		return fmt.Errorf("%w: question without text", ErrMalformed)
	case strings.TrimSpace(q.Options[Left]) == "" || strings.TrimSpace(q.Options[Right]) == "":
		return fmt.Errorf("%w: question %q needs LEFT and RIGHT options", ErrMalformed, q.Text)
	case q.Correct != Left && q.Correct != Right:
		return fmt.Errorf("%w: question %q has correct=%q", ErrMalformed, q.Text, q.Correct)
	}
	return nil
}

// Source tells where a piece of content came from.
type Source string

const (
	SourceRemote   Source = "remote"
	SourceFallback Source = "fallback"
)

// Quiz is one round of questions.
type Quiz struct {
	ID        string     `json:"id"`
	Questions []Question `json:"questions"`
	Source    Source     `json:"source"`
	Model     string     `json:"model,omitempty"`
}

// ParseQuiz decodes a model answer into exactly QuizSize questions. Code
// fences around the JSON are tolerated; extra questions are dropped.
func ParseQuiz(text string) ([]Question, error) {
	var questions []Question
	if err := json.UnmarshalFromString(stripFences(text), &questions); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	if len(questions) < QuizSize {
		return nil, fmt.Errorf("%w: got %d questions, need %d", ErrMalformed, len(questions), QuizSize)
	}

	questions = questions[:QuizSize]
	for i := range questions {
		q := &questions[i]
		q.Correct = strings.ToUpper(strings.TrimSpace(q.Correct))
		if err := q.Validate(); err != nil {
			return nil, err
		}
	}
	return questions, nil
}

// FallbackQuestions returns the built-in question set used when generation fails.
func FallbackQuestions() []Question {
	q := func(text, left, right, correct string) Question {
		return Question{Text: text, Options: map[string]string{Left: left, Right: right}, Correct: correct}
	}
	return []Question{
		q("Care este unitatea minima de informatie?", "Bit", "Byte", Left),
		q("Ce inseamna HTTP?", "Protocol Transfer", "High Text", Left),
		q("Python este un limbaj:", "Compilat", "Interpretat", Right),
		q("Cine a fondat Microsoft?", "Steve Jobs", "Bill Gates", Right),
		q("Memoria RAM este:", "Permanenta", "Volatila", Right),
		q("Ce face CTRL+C?", "Copiaza", "Lipeste", Left),
	}
}

func stripFences(text string) string {
	text = strings.TrimSpace(text)
	if !strings.HasPrefix(text, "```") {
		return text
	}
	text = strings.TrimPrefix(text, "```json")
	text = strings.TrimPrefix(text, "```")
	text = strings.TrimSuffix(strings.TrimSpace(text), "```")
	return strings.TrimSpace(text)
}

const quizPrompt = `Genereaza o lista de 6 intrebari trivia despre IT, Programare, Hardware.
Dificultate: 2 Usoare, 3 Medii, 1 Grea.
Limba: Romana.
Format: STRICT JSON ARRAY.
Schema: [{"text": "Intrebarea?", "options": {"LEFT": "A", "RIGHT": "B"}, "correct": "LEFT"}]`
