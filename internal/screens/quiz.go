package screens

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/ayusman/touchless/internal/content"
	"github.com/ayusman/touchless/internal/dwell"
	"github.com/ayusman/touchless/internal/gesture"
	"github.com/ayusman/touchless/internal/kiosk"
)

// QuizState is the quiz sub-state.
type QuizState string

const (
	QuizLoading  QuizState = "LOADING"
	QuizPlaying  QuizState = "PLAYING"
	QuizFeedback QuizState = "FEEDBACK"
	QuizGameOver QuizState = "GAMEOVER"
)

const (
	targetRetry = "RETRY"
	targetExit  = "EXIT"
)

// Quiz is the two-choice trivia game.
type Quiz struct {
	cfg    Config
	ctx    context.Context
	gen    content.Generator
	logger *zap.Logger

	cell    content.Cell[content.Quiz]
	answers *panel
	over    *panel

	state      QuizState
	quiz       content.Quiz
	index      int
	score      int
	lastChoice string
	lastOK     bool
	since      time.Time
}

// QuizView is the quiz snapshot.
type QuizView struct {
	Screen   string         `json:"screen"`
	State    QuizState      `json:"state"`
	Source   content.Source `json:"source,omitempty"`
	Index    int            `json:"index"`
	Total    int            `json:"total"`
	Score    int            `json:"score"`
	Question string         `json:"question,omitempty"`
	Buttons  []ButtonView   `json:"buttons,omitempty"`

	Choice  string `json:"choice,omitempty"`
	Correct bool   `json:"correct,omitempty"`
	Answer  string `json:"answer,omitempty"`
}

// NewQuiz creates a quiz screen. Questions are generated in the background
// on Enter and on every retry.
func NewQuiz(ctx context.Context, cfg Config, gen content.Generator, logger *zap.Logger) *Quiz {
	return &Quiz{
		cfg:    cfg,
		ctx:    ctx,
		gen:    gen,
		logger: logger.Named("quiz"),
		answers: newPanel(cfg.AnswerDwell,
			button{content.Left, "", dwell.Rect{X: 0.1, Y: 0.55, W: 0.35, H: 0.3}},
			button{content.Right, "", dwell.Rect{X: 0.55, Y: 0.55, W: 0.35, H: 0.3}},
		),
		over: newPanel(cfg.GameOverDwell,
			button{targetRetry, "Reincearca", dwell.Rect{X: 0.15, Y: 0.7, W: 0.3, H: 0.15}},
			button{targetExit, "Meniu jocuri", dwell.Rect{X: 0.55, Y: 0.7, W: 0.3, H: 0.15}},
		),
	}
}

func (q *Quiz) Enter(now time.Time) { q.load(now) }

func (q *Quiz) load(now time.Time) {
	q.state = QuizLoading
	q.since = now
	q.quiz = content.Quiz{}
	q.index, q.score = 0, 0
	q.lastChoice, q.lastOK = "", false
	q.answers.reset()
	q.over.reset()
	q.cell.Run(q.ctx, q.gen.GenerateQuiz)
}

func (q *Quiz) Update(cursor gesture.Cursor, _ gesture.Gesture, now time.Time) kiosk.Nav {
	switch q.state {
	case QuizLoading:
		quiz, ok := q.cell.Poll()
		if !ok {
			return kiosk.Stay()
		}
		if len(quiz.Questions) == 0 {
			quiz = content.Static{}.GenerateQuiz(q.ctx)
		}
		q.logger.Info("quiz ready",
			zap.String("id", quiz.ID),
			zap.String("source", string(quiz.Source)),
			zap.Int("questions", len(quiz.Questions)),
		)
		q.quiz = quiz
		q.state = QuizPlaying
		q.since = now

	case QuizPlaying:
		choice := q.answers.update(cursor, now)
		if choice == "" {
			return kiosk.Stay()
		}
		q.lastChoice = choice
		q.lastOK = choice == q.quiz.Questions[q.index].Correct
		if q.lastOK {
			q.score++
		}
		q.state = QuizFeedback
		q.since = now

	case QuizFeedback:
		if now.Sub(q.since) < q.cfg.QuizFeedback {
			return kiosk.Stay()
		}
		q.index++
		q.answers.reset()
		q.since = now
		if q.index >= len(q.quiz.Questions) {
			q.state = QuizGameOver
			q.logger.Info("quiz finished", zap.Int("score", q.score), zap.Int("total", len(q.quiz.Questions)))
		} else {
			q.state = QuizPlaying
		}

	case QuizGameOver:
		switch q.over.update(cursor, now) {
		case targetRetry:
			q.load(now)
			return kiosk.Stay()
		case targetExit:
			return kiosk.Select(kiosk.TargetHub)
		}
		if q.over.last.Hovered == "" && now.Sub(q.since) >= q.cfg.QuizReturnAfter {
			return kiosk.Select(kiosk.TargetHub)
		}
	}
	return kiosk.Stay()
}

// Exit drops any generation still in flight.
func (q *Quiz) Exit() { q.cell.Cancel() }

func (q *Quiz) View() any {
	v := QuizView{
		Screen: "quiz",
		State:  q.state,
		Source: q.quiz.Source,
		Index:  q.index,
		Total:  len(q.quiz.Questions),
		Score:  q.score,
	}
	switch q.state {
	case QuizPlaying, QuizFeedback:
		question := q.quiz.Questions[q.index]
		v.Question = question.Text
		v.Buttons = q.answers.view()
		for i := range v.Buttons {
			v.Buttons[i].Label = question.Options[v.Buttons[i].Name]
		}
		if q.state == QuizFeedback {
			v.Choice, v.Correct, v.Answer = q.lastChoice, q.lastOK, question.Correct
		}
	case QuizGameOver:
		v.Buttons = q.over.view()
	}
	return v
}

// State returns the current sub-state.
func (q *Quiz) State() QuizState { return q.state }

// Score returns the number of correct answers so far.
func (q *Quiz) Score() int { return q.score }
