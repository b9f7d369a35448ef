package content

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type record struct {
	id, kind, promptHash, model string
	data                        []byte
}

type memRecorder struct {
	mu      sync.Mutex
	records []record
}

func (r *memRecorder) RecordContent(_ context.Context, id, kind, promptHash, model string, data []byte) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.records = append(r.records, record{id, kind, promptHash, model, data})
	return nil
}

func TestPromptHash(t *testing.T) {
	a := PromptHash("prompt")
	assert.Len(t, a, 16)
	assert.Equal(t, a, PromptHash("prompt"))
	assert.NotEqual(t, a, PromptHash("other"))
}

func TestGenerateQuizRemote(t *testing.T) {
	fake := newFakeGemini()
	fake.answers["m2"] = textAnswer("```json\n" + sixQuestions + "\n```")
	rec := &memRecorder{}
	gen := NewGemini(newTestClient(t, fake, "k", "m1", "m2"), rec, zap.NewNop())

	quiz := gen.GenerateQuiz(context.Background())
	assert.Equal(t, SourceRemote, quiz.Source)
	assert.Equal(t, "m2", quiz.Model)
	assert.NotEmpty(t, quiz.ID)
	require.Len(t, quiz.Questions, QuizSize)
	assert.Equal(t, "Q1?", quiz.Questions[0].Text)

	require.Len(t, rec.records, 1)
	r := rec.records[0]
	assert.Equal(t, quiz.ID, r.id)
	assert.Equal(t, KindQuiz, r.kind)
	assert.Equal(t, "m2", r.model)
	assert.Equal(t, PromptHash(quizPrompt), r.promptHash)
	parsed, err := ParseQuiz(string(r.data))
	require.NoError(t, err)
	assert.Equal(t, quiz.Questions, parsed)
}

func TestGenerateQuizFallsBack(t *testing.T) {
	fake := newFakeGemini()
	fake.answers["m1"] = textAnswer("not json at all")
	gen := NewGemini(newTestClient(t, fake, "k", "m1", "m2"), nil, zap.NewNop())

	quiz := gen.GenerateQuiz(context.Background())
	assert.Equal(t, SourceFallback, quiz.Source)
	assert.Equal(t, FallbackQuestions(), quiz.Questions)
	assert.Equal(t, []string{"m1", "m2"}, fake.Calls())
}

func TestGenerateQuizNoKeySkipsNetwork(t *testing.T) {
	fake := newFakeGemini()
	gen := NewGemini(newTestClient(t, fake, "", "m1"), nil, zap.NewNop())

	quiz := gen.GenerateQuiz(context.Background())
	assert.Equal(t, SourceFallback, quiz.Source)
	assert.Len(t, quiz.Questions, QuizSize)
	assert.Empty(t, fake.Calls())
}

func TestGenerateQuizAllFailIgnoresEarlierAnswers(t *testing.T) {
	good := newFakeGemini()
	good.answers["m1"] = textAnswer(sixQuestions)
	rec := &memRecorder{}

	first := NewGemini(newTestClient(t, good, "k", "m1"), rec, zap.NewNop())
	require.Equal(t, SourceRemote, first.GenerateQuiz(context.Background()).Source)
	require.Len(t, rec.records, 1)

	down := newFakeGemini()
	second := NewGemini(newTestClient(t, down, "k", "m1", "m2"), rec, zap.NewNop())

	quiz := second.GenerateQuiz(context.Background())
	assert.Equal(t, SourceFallback, quiz.Source)
	assert.Equal(t, FallbackQuestions(), quiz.Questions)
	assert.Len(t, rec.records, 1, "failed generations are not recorded")
}

func TestGenerateMaze(t *testing.T) {
	layout := `["#####", "#S  #", "### #", "#E  #", "#####"]`
	fake := newFakeGemini()
	fake.answers["m1"] = textAnswer(`["#####", "#S  #", "#####", "#E  #", "#####"]`)
	fake.answers["m2"] = textAnswer(layout)
	gen := NewGemini(newTestClient(t, fake, "k", "m1", "m2"), nil, zap.NewNop())

	maze := gen.GenerateMaze(context.Background())
	assert.Equal(t, SourceRemote, maze.Source)
	assert.Equal(t, "m2", maze.Model, "unsolvable layout moves on to the next model")
	assert.Len(t, maze.Rows, 5)
}

func TestGenerateMazeFallsBack(t *testing.T) {
	gen := NewGemini(newTestClient(t, newFakeGemini(), "k", "m1"), &memRecorder{}, zap.NewNop())

	maze := gen.GenerateMaze(context.Background())
	assert.Equal(t, SourceFallback, maze.Source)
	assert.Equal(t, FallbackLayout(), maze.Rows)
	assert.True(t, Solvable(maze))
}

func TestStaticGenerator(t *testing.T) {
	var g Generator = Static{}

	quiz := g.GenerateQuiz(context.Background())
	assert.Len(t, quiz.Questions, QuizSize)
	assert.Equal(t, SourceFallback, quiz.Source)

	maze := g.GenerateMaze(context.Background())
	assert.True(t, Solvable(maze))
}
