package screens

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/ayusman/touchless/internal/content"
	"github.com/ayusman/touchless/internal/gesture"
	"github.com/ayusman/touchless/internal/kiosk"
)

// MazeState is the maze sub-state.
type MazeState string

const (
	MazeLoading MazeState = "LOADING"
	MazeWaiting MazeState = "WAITING"
	MazePlaying MazeState = "PLAYING"
	MazeReveal  MazeState = "REVEAL"
	MazeWon     MazeState = "WON"
	MazeLost    MazeState = "LOST"
)

// Maze is the steady-hand maze: enter the start cell, then reach the exit
// without touching a wall. The whole screen maps onto the grid.
type Maze struct {
	cfg    Config
	ctx    context.Context
	gen    content.Generator
	logger *zap.Logger

	cell  content.Cell[content.Maze]
	state MazeState
	maze  content.Maze
	pos   content.Pos
	since time.Time
}

// MazeView is the maze snapshot.
type MazeView struct {
	Screen string         `json:"screen"`
	State  MazeState      `json:"state"`
	Source content.Source `json:"source,omitempty"`
	Rows   []string       `json:"rows,omitempty"`
	Pos    *content.Pos   `json:"pos,omitempty"`
}

// NewMaze creates a maze screen. The layout is generated in the background
// on Enter.
func NewMaze(ctx context.Context, cfg Config, gen content.Generator, logger *zap.Logger) *Maze {
	return &Maze{
		cfg:    cfg,
		ctx:    ctx,
		gen:    gen,
		logger: logger.Named("maze"),
	}
}

func (m *Maze) Enter(now time.Time) {
	m.state = MazeLoading
	m.since = now
	m.cell.Run(m.ctx, m.gen.GenerateMaze)
}

func (m *Maze) Update(cursor gesture.Cursor, _ gesture.Gesture, now time.Time) kiosk.Nav {
	switch m.state {
	case MazeLoading:
		maze, ok := m.cell.Poll()
		if !ok {
			return kiosk.Stay()
		}
		if content.ValidateLayout(maze.Rows) != nil {
			maze = content.Static{}.GenerateMaze(m.ctx)
		}
		m.logger.Info("maze ready", zap.String("id", maze.ID), zap.String("source", string(maze.Source)))
		m.maze = maze
		m.setState(MazeWaiting, now)

	case MazeWaiting:
		if !cursor.Detected {
			return kiosk.Stay()
		}
		m.pos = m.maze.CellAt(cursor.X, cursor.Y)
		if m.maze.At(m.pos) == content.CellStart {
			m.setState(MazePlaying, now)
		}

	case MazePlaying:
		if !cursor.Detected {
			return kiosk.Stay()
		}
		m.pos = m.maze.CellAt(cursor.X, cursor.Y)
		switch m.maze.At(m.pos) {
		case content.CellExit:
			m.setState(MazeReveal, now)
		case content.CellWall:
			m.setState(MazeLost, now)
		}

	case MazeReveal:
		if now.Sub(m.since) >= m.cfg.MazeReveal {
			m.setState(MazeWon, now)
		}

	case MazeWon, MazeLost:
		if now.Sub(m.since) >= m.cfg.MazeEndPause {
			return kiosk.Exhausted()
		}
	}
	return kiosk.Stay()
}

func (m *Maze) setState(s MazeState, now time.Time) {
	if s == MazeWon || s == MazeLost {
		m.logger.Info("maze finished", zap.String("result", string(s)))
	}
	m.state = s
	m.since = now
}

// Exit drops any generation still in flight.
func (m *Maze) Exit() { m.cell.Cancel() }

func (m *Maze) View() any {
	v := MazeView{Screen: "maze", State: m.state, Source: m.maze.Source, Rows: m.maze.Rows}
	if m.state != MazeLoading {
		pos := m.pos
		v.Pos = &pos
	}
	return v
}

// State returns the current sub-state.
func (m *Maze) State() MazeState { return m.state }
