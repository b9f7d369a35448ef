// Package content produces quiz and maze content for the mini-games: remote
// generation through Gemini with model failover, and built-in datasets so a
// game never starts empty.
package content

import (
	"context"
	"fmt"

	"github.com/cespare/xxhash/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Content kinds.
const (
	KindQuiz = "quiz"
	KindMaze = "maze"
)

// Generator produces game content. Both calls may block on the network and
// must run off the frame loop. They always return usable content.
type Generator interface {
	GenerateQuiz(ctx context.Context) Quiz
	GenerateMaze(ctx context.Context) Maze
}

// Recorder keeps a log of remotely generated content for operators. It is
// never read back into a game.
type Recorder interface {
	RecordContent(ctx context.Context, id, kind, promptHash, model string, data []byte) error
}

// PromptHash identifies the prompt a piece of content was generated from.
func PromptHash(prompt string) string {
	return fmt.Sprintf("%016x", xxhash.Sum64String(prompt))
}

// Gemini is the Generator backed by the Gemini client. When every model
// fails it serves the built-in dataset.
type Gemini struct {
	client   *Client
	recorder Recorder
	logger   *zap.Logger
}

// NewGemini creates a Generator. recorder may be nil.
func NewGemini(client *Client, recorder Recorder, logger *zap.Logger) *Gemini {
	return &Gemini{
		client:   client,
		recorder: recorder,
		logger:   logger.Named("content"),
	}
}

// GenerateQuiz returns QuizSize questions, generated or built-in.
func (g *Gemini) GenerateQuiz(ctx context.Context) Quiz {
	quiz := Quiz{ID: uuid.NewString()}
	log := g.logger.With(zap.String("kind", KindQuiz), zap.String("attempt", quiz.ID))

	var questions []Question
	model, err := g.client.Generate(ctx, quizPrompt, func(text string) error {
		var perr error
		questions, perr = ParseQuiz(text)
		return perr
	})
	if err != nil {
		log.Warn("quiz generation failed, using built-in questions", zap.Error(err))
		quiz.Questions, quiz.Source = FallbackQuestions(), SourceFallback
		return quiz
	}

	quiz.Questions, quiz.Source, quiz.Model = questions, SourceRemote, model
	g.record(ctx, log, quiz.ID, KindQuiz, quizPrompt, model, questions)
	log.Info("quiz generated", zap.String("model", model))
	return quiz
}

// GenerateMaze returns a solvable layout, generated or built-in.
func (g *Gemini) GenerateMaze(ctx context.Context) Maze {
	maze := Maze{ID: uuid.NewString()}
	log := g.logger.With(zap.String("kind", KindMaze), zap.String("attempt", maze.ID))

	var rows []string
	model, err := g.client.Generate(ctx, mazePrompt, func(text string) error {
		var perr error
		rows, perr = ParseLayout(text)
		return perr
	})
	if err != nil {
		log.Warn("maze generation failed, using built-in layout", zap.Error(err))
		maze.Rows, maze.Source = FallbackLayout(), SourceFallback
		return maze
	}

	maze.Rows, maze.Source, maze.Model = rows, SourceRemote, model
	g.record(ctx, log, maze.ID, KindMaze, mazePrompt, model, rows)
	log.Info("maze generated", zap.String("model", model))
	return maze
}

func (g *Gemini) record(ctx context.Context, log *zap.Logger, id, kind, prompt, model string, v any) {
	if g.recorder == nil {
		return
	}
	data, err := json.Marshal(v)
	if err != nil {
		log.Warn("encode content record", zap.Error(err))
		return
	}
	// The game may already have been left; the record is local and fast.
	if err := g.recorder.RecordContent(context.WithoutCancel(ctx), id, kind, PromptHash(prompt), model, data); err != nil {
		log.Warn("record content", zap.Error(err))
	}
}

// Static is a Generator that always serves the built-in datasets.
type Static struct{}

func (Static) GenerateQuiz(context.Context) Quiz {
	return Quiz{ID: uuid.NewString(), Questions: FallbackQuestions(), Source: SourceFallback}
}

func (Static) GenerateMaze(context.Context) Maze {
	return Maze{ID: uuid.NewString(), Rows: FallbackLayout(), Source: SourceFallback}
}
