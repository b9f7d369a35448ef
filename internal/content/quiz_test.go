package content

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sixQuestions = `[
 {"text": "Q1?", "options": {"LEFT": "a", "RIGHT": "b"}, "correct": "LEFT"},
 {"text": "Q2?", "options": {"LEFT": "a", "RIGHT": "b"}, "correct": "right"},
 {"text": "Q3?", "options": {"LEFT": "a", "RIGHT": "b"}, "correct": "LEFT"},
 {"text": "Q4?", "options": {"LEFT": "a", "RIGHT": "b"}, "correct": "RIGHT"},
 {"text": "Q5?", "options": {"LEFT": "a", "RIGHT": "b"}, "correct": "LEFT"},
 {"text": "Q6?", "options": {"LEFT": "a", "RIGHT": "b"}, "correct": " right "}
]`

func TestParseQuiz(t *testing.T) {
	questions, err := ParseQuiz(sixQuestions)
	require.NoError(t, err)
	require.Len(t, questions, QuizSize)

	assert.Equal(t, "Q1?", questions[0].Text)
	assert.Equal(t, Right, questions[1].Correct)
	assert.Equal(t, Right, questions[5].Correct)
}

func TestParseQuizStripsFences(t *testing.T) {
	questions, err := ParseQuiz("```json\n" + sixQuestions + "\n```")
	require.NoError(t, err)
	assert.Len(t, questions, QuizSize)

	questions, err = ParseQuiz("```\n" + sixQuestions + "```")
	require.NoError(t, err)
	assert.Len(t, questions, QuizSize)
}

func TestParseQuizTruncatesExtra(t *testing.T) {
	extra := sixQuestions[:len(sixQuestions)-1] +
		`,{"text": "Q7?", "options": {"LEFT": "a", "RIGHT": "b"}, "correct": "LEFT"}]`

	questions, err := ParseQuiz(extra)
	require.NoError(t, err)
	require.Len(t, questions, QuizSize)
	assert.Equal(t, "Q6?", questions[5].Text)
}

func TestParseQuizRejects(t *testing.T) {
	tests := []struct {
		name string
		text string
	}{
		{"not json", "sorry, I cannot help with that"},
		{"too few", `[{"text": "Q?", "options": {"LEFT": "a", "RIGHT": "b"}, "correct": "LEFT"}]`},
		{"object", `{"text": "Q?"}`},
		{"empty", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseQuiz(tt.text)
			assert.True(t, errors.Is(err, ErrMalformed), "got %v", err)
		})
	}
}

func TestQuestionValidate(t *testing.T) {
	ok := Question{Text: "Q?", Options: map[string]string{Left: "a", Right: "b"}, Correct: Left}
	assert.NoError(t, ok.Validate())

	noRight := ok
	noRight.Options = map[string]string{Left: "a"}
	assert.ErrorIs(t, noRight.Validate(), ErrMalformed)

	badSide := ok
	badSide.Correct = "UP"
	assert.ErrorIs(t, badSide.Validate(), ErrMalformed)

	blank := ok
	blank.Text = "  "
	assert.ErrorIs(t, blank.Validate(), ErrMalformed)
}

func TestFallbackQuestions(t *testing.T) {
	questions := FallbackQuestions()
	require.Len(t, questions, QuizSize)
	for _, q := range questions {
		assert.NoError(t, q.Validate())
	}

	// Callers may mutate their copy.
	questions[0].Options[Left] = "changed"
	assert.Equal(t, "Bit", FallbackQuestions()[0].Options[Left])
}
