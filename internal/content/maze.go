package content

import (
	"fmt"
	"strings"
)

// Maze cells.
const (
	CellWall  = '#'
	CellFree  = ' '
	CellStart = 'S'
	CellExit  = 'E'
)

// Size limits for generated layouts.
const (
	mazeMinSide = 5
	mazeMaxCols = 40
	mazeMaxRows = 25
)

// Maze is a grid layout, one string per row.
type Maze struct {
	ID     string   `json:"id"`
	Rows   []string `json:"rows"`
	Source Source   `json:"source"`
	Model  string   `json:"model,omitempty"`
}

// Pos is a grid coordinate.
type Pos struct {
	Col int `json:"col"`
	Row int `json:"row"`
}

// FallbackLayout returns the built-in maze used when generation fails.
func FallbackLayout() []string {
	return []string{
		"####################",
		"#S                 #",
		"#        ###########",
		"#        #         #",
		"#           #####  #",
		"#           #   #  #",
		"#               #  #",
		"#               #  #",
		"#                  #",
		"#                 E#",
		"####################",
	}
}

// Cols returns the grid width.
func (m Maze) Cols() int {
	if len(m.Rows) == 0 {
		return 0
	}
	return len(m.Rows[0])
}

// At returns the cell kind at c, treating anything outside the grid as wall.
func (m Maze) At(c Pos) byte {
	if c.Row < 0 || c.Row >= len(m.Rows) || c.Col < 0 || c.Col >= len(m.Rows[c.Row]) {
		return CellWall
	}
	return m.Rows[c.Row][c.Col]
}

// CellAt maps a normalized screen point onto the grid.
func (m Maze) CellAt(x, y float64) Pos {
	cols, rows := m.Cols(), len(m.Rows)
	return Pos{
		Col: clampIndex(int(x*float64(cols)), cols),
		Row: clampIndex(int(y*float64(rows)), rows),
	}
}

func clampIndex(i, n int) int {
	if i < 0 {
		return 0
	}
	if i >= n {
		return n - 1
	}
	return i
}

// Find returns the first cell holding kind.
func (m Maze) Find(kind byte) (Pos, bool) {
	for r, row := range m.Rows {
		if c := strings.IndexByte(row, kind); c >= 0 {
			return Pos{Col: c, Row: r}, true
		}
	}
	return Pos{}, false
}

// ValidateLayout checks shape, cell alphabet, a single start and exit, and that
// the exit is reachable.
func ValidateLayout(rows []string) error {
	if len(rows) < mazeMinSide || len(rows) > mazeMaxRows {
		return fmt.Errorf("%w: maze has %d rows", ErrMalformed, len(rows))
	}
	cols := len(rows[0])
	if cols < mazeMinSide || cols > mazeMaxCols {
		return fmt.Errorf("%w: maze has %d columns", ErrMalformed, cols)
	}

	starts, exits := 0, 0
	for r, row := range rows {
		if len(row) != cols {
			return fmt.Errorf("%w: row %d has %d columns, want %d", ErrMalformed, r, len(row), cols)
		}
		for i := 0; i < len(row); i++ {
			switch row[i] {
			case CellWall, CellFree:
			case CellStart:
				starts++
			case CellExit:
				exits++
			default:
				return fmt.Errorf("%w: unexpected cell %q at row %d", ErrMalformed, row[i], r)
			}
		}
	}
	if starts != 1 || exits != 1 {
		return fmt.Errorf("%w: need one S and one E, got %d and %d", ErrMalformed, starts, exits)
	}

	if !Solvable(Maze{Rows: rows}) {
		return ErrUnsolvable
	}
	return nil
}

// Solvable reports whether the exit can be reached from the start moving
// between 4-connected non-wall cells.
func Solvable(m Maze) bool {
	start, ok := m.Find(CellStart)
	if !ok {
		return false
	}
	exit, ok := m.Find(CellExit)
	if !ok {
		return false
	}

	seen := map[Pos]bool{start: true}
	queue := []Pos{start}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		if cur == exit {
			return true
		}
		for _, d := range [4]Pos{{1, 0}, {-1, 0}, {0, 1}, {0, -1}} {
			next := Pos{Col: cur.Col + d.Col, Row: cur.Row + d.Row}
			if seen[next] || m.At(next) == CellWall {
				continue
			}
			seen[next] = true
			queue = append(queue, next)
		}
	}
	return false
}

// ParseLayout decodes a model answer holding a JSON array of row strings, or
// an object with a "rows" field, and validates it.
func ParseLayout(text string) ([]string, error) {
	text = stripFences(text)

	var rows []string
	if err := json.UnmarshalFromString(text, &rows); err != nil {
		var wrapped struct {
			Rows []string `json:"rows"`
		}
		if err2 := json.UnmarshalFromString(text, &wrapped); err2 != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
		}
		rows = wrapped.Rows
	}
	if err := ValidateLayout(rows); err != nil {
		return nil, err
	}
	return rows, nil
}

const mazePrompt = `Genereaza un labirint pentru un joc controlat cu mana.
Format: STRICT JSON ARRAY de 11 siruri, fiecare de exact 20 de caractere.
Caractere: '#' perete, ' ' liber, 'S' start (o singura data), 'E' iesire (o singura data).
Marginea este numai din '#'. Trebuie sa existe un drum de la S la E.
Culoarele au cel putin 2 celule latime.`
