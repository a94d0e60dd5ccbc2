package widgets

import (
	"fmt"
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"go-markov/music"
	"go-markov/theme"
)

var pitchNames = [12]string{"C", "C#", "D", "D#", "E", "F", "F#", "G", "G#", "A", "A#", "B"}

// PitchName returns the scientific name of an absolute pitch (60 = C4)
func PitchName(pitch int) string {
	return fmt.Sprintf("%s%d", pitchNames[((pitch%12)+12)%12], floorDiv(pitch, 12)-1)
}

func floorDiv(a, b int) int {
	q := a / b
	if a%b != 0 && (a < 0) != (b < 0) {
		q--
	}
	return q
}

// RollOptions controls the piano roll layout
type RollOptions struct {
	Resolution int     // columns per beat
	MaxColumns int     // 0 = no limit
	Playhead   float64 // beat to mark, negative for none
}

// cell is one character of the roll
type cell struct {
	seq   int // -1 when empty
	start bool
}

// rollGrid lays out the piece: one row per absolute pitch from high to low,
// one column per 1/Resolution beat. Later sequences draw over earlier ones.
func rollGrid(p *music.Piece, res, maxCols int) (grid [][]cell, hi int) {
	lo, hi, err := p.PitchRange()
	if err != nil {
		return nil, 0
	}
	cols := int(math.Ceil(p.End() * float64(res)))
	if maxCols > 0 && cols > maxCols {
		cols = maxCols
	}

	grid = make([][]cell, hi-lo+1)
	for r := range grid {
		grid[r] = make([]cell, cols)
		for c := range grid[r] {
			grid[r][c].seq = -1
		}
	}

	for _, n := range p.Notes {
		row := hi - (n.Pitch + p.BasePitch)
		first := int(math.Round(n.Start * float64(res)))
		last := int(math.Round(n.End*float64(res))) - 1
		if last < first {
			last = first
		}
		for c := first; c <= last && c < cols; c++ {
			grid[row][c] = cell{seq: n.Sequence, start: c == first}
		}
	}
	return grid, hi
}

// RenderRoll draws the piece as a piano roll, each sequence in its own color
func RenderRoll(p *music.Piece, th *theme.Theme, opts RollOptions) string {
	res := max(opts.Resolution, 1)
	grid, hi := rollGrid(p, res, opts.MaxColumns)
	if len(grid) == 0 {
		return lipgloss.NewStyle().Foreground(th.Muted()).Render("(empty)")
	}

	n := p.NumSequences()
	voices := make([]lipgloss.Style, n)
	for i := range voices {
		voices[i] = lipgloss.NewStyle().Foreground(th.Voice(i, n))
	}
	muted := lipgloss.NewStyle().Foreground(th.Muted())
	label := lipgloss.NewStyle().Foreground(th.FG()).Width(5)
	measureCols := p.TimeSignature * res

	playCol := -1
	if opts.Playhead >= 0 {
		playCol = int(opts.Playhead * float64(res))
	}

	var lines []string
	if playCol >= 0 && len(grid[0]) > 0 {
		marker := strings.Repeat(" ", min(playCol, len(grid[0])-1)) + string(th.Symbols.Playhead)
		lines = append(lines, label.Render("")+lipgloss.NewStyle().Foreground(th.Cursor()).Render(marker))
	}

	for r, row := range grid {
		var line strings.Builder
		line.WriteString(label.Render(PitchName(hi - r)))
		for c, cl := range row {
			switch {
			case cl.seq >= 0 && cl.start:
				line.WriteString(voices[cl.seq].Render(string(th.Symbols.NoteStart)))
			case cl.seq >= 0:
				line.WriteString(voices[cl.seq].Render(string(th.Symbols.NoteHold)))
			case measureCols > 0 && c%measureCols == 0:
				line.WriteString(muted.Render(string(th.Symbols.BarLine)))
			default:
				line.WriteString(muted.Render(string(th.Symbols.Rest)))
			}
		}
		lines = append(lines, line.String())
	}
	return strings.Join(lines, "\n")
}

// RenderLegend lists each sequence's instrument in its roll color
func RenderLegend(p *music.Piece, th *theme.Theme) string {
	n := p.NumSequences()
	parts := make([]string, n)
	for i, instr := range p.Instruments {
		style := lipgloss.NewStyle().Foreground(th.Voice(i, n))
		parts[i] = style.Render(fmt.Sprintf("%c %d %s", th.Symbols.Solid, i, instr))
	}
	return strings.Join(parts, "  ")
}
