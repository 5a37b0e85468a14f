package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/vovakirdan/coop-snake/internal/core"
	"github.com/vovakirdan/coop-snake/internal/game"
)

// Terminal palette for the field.
var colorStyles = map[core.Color]lipgloss.Style{
	core.ColorDefault:      lipgloss.NewStyle(),
	core.ColorRed:          lipgloss.NewStyle().Foreground(lipgloss.Color("1")),
	core.ColorGreen:        lipgloss.NewStyle().Foreground(lipgloss.Color("2")),
	core.ColorYellow:       lipgloss.NewStyle().Foreground(lipgloss.Color("3")),
	core.ColorBrightGreen:  lipgloss.NewStyle().Foreground(lipgloss.Color("10")),
	core.ColorBrightYellow: lipgloss.NewStyle().Foreground(lipgloss.Color("11")),
	core.ColorBrightWhite:  lipgloss.NewStyle().Foreground(lipgloss.Color("15")),
	core.ColorOrange:       lipgloss.NewStyle().Foreground(lipgloss.Color("208")),
	core.ColorGray:         lipgloss.NewStyle().Foreground(lipgloss.Color("245")),
}

// Grid cells are two terminal columns wide so the field looks square.
const cellWidth = 2

// headerRows is the number of screen rows above the field border.
const headerRows = 1

// boardSize returns the screen size needed to draw a field of the given size.
func boardSize(width, height int) (int, int) {
	return width*cellWidth + 2, height + 2 + headerRows
}

// DrawSnapshot draws the header, the field border, the fruits and the snake.
// The screen is resized to fit the field.
func DrawSnapshot(dst *core.Screen, snap game.Snapshot) {
	w, h := boardSize(snap.Width, snap.Height)
	dst.Resize(w, h)
	dst.Clear()

	header := fmt.Sprintf("Score %d  Tick %d  Heading %s", snap.Score, snap.Tick, snap.Heading)
	dst.DrawText(0, 0, header, core.ColorBrightWhite)

	dst.DrawBox(core.NewRect(0, headerRows, w, snap.Height+2), core.ColorGray)

	for _, f := range snap.Fruits {
		x, y := cellOrigin(f.Pos)
		dst.SetColored(x, y, rune('0'+f.Value%10), core.ColorOrange)
		dst.SetColored(x+1, y, '•', core.ColorOrange)
	}

	// The first two cells belong to the head segment.
	for i, c := range snap.SnakeCells {
		color := core.ColorGreen
		if i < 2 {
			color = core.ColorBrightGreen
		}
		x, y := cellOrigin(c)
		dst.SetColored(x, y, '█', color)
		dst.SetColored(x+1, y, '█', color)
	}

	if snap.GameOver {
		mid := headerRows + 1 + snap.Height/2
		dst.DrawTextCentered(mid, " GAME OVER ", core.ColorRed)
		dst.DrawTextCentered(mid+1, fmt.Sprintf(" final score %d ", snap.Score), core.ColorBrightYellow)
	}
}

// cellOrigin returns the screen column and row of a grid cell's left half.
func cellOrigin(p core.Point) (int, int) {
	return 1 + p.X*cellWidth, headerRows + 1 + p.Y
}

// RenderScreen styles the screen for the terminal. Consecutive cells of one
// color are rendered as a single styled run.
func RenderScreen(s *core.Screen) string {
	lines := make([]string, s.Height())
	for y := range lines {
		var line, run strings.Builder
		runColor := s.GetCell(0, y).Color

		flush := func() {
			style, ok := colorStyles[runColor]
			if !ok {
				style = colorStyles[core.ColorDefault]
			}
			line.WriteString(style.Render(run.String()))
			run.Reset()
		}

		for x := range s.Width() {
			cell := s.GetCell(x, y)
			if cell.Color != runColor {
				flush()
				runColor = cell.Color
			}
			run.WriteRune(cell.Rune)
		}
		if run.Len() > 0 {
			flush()
		}
		lines[y] = line.String()
	}
	return strings.Join(lines, "\n")
}
