// Package core provides the grid primitives shared by the simulation and
// the transports. It has no external dependencies so the game logic stays
// pure and testable.
package core

import "fmt"

// Point is a cell coordinate on the grid. Copied by value.
type Point struct {
	X int `json:"x" msgpack:"x"`
	Y int `json:"y" msgpack:"y"`
}

// String returns the point as "(x,y)".
func (p Point) String() string {
	return fmt.Sprintf("(%d,%d)", p.X, p.Y)
}

// Move returns p translated one cell in direction d.
// No bounds checking is performed.
func Move(p Point, d Direction) Point {
	switch d {
	case Up:
		return Point{X: p.X, Y: p.Y - 1}
	case Down:
		return Point{X: p.X, Y: p.Y + 1}
	case Left:
		return Point{X: p.X - 1, Y: p.Y}
	case Right:
		return Point{X: p.X + 1, Y: p.Y}
	}
	return p
}

// Bounds is the size of the playing field.
type Bounds struct {
	Width  int
	Height int
}

// DefaultBounds is the 20x20 field used when nothing else is configured.
var DefaultBounds = Bounds{Width: 20, Height: 20}

// Contains reports whether p lies inside [0,Width) x [0,Height).
func (b Bounds) Contains(p Point) bool {
	return p.X >= 0 && p.X < b.Width && p.Y >= 0 && p.Y < b.Height
}

// Center returns the cell at (Width/2, Height/2).
func (b Bounds) Center() Point {
	return Point{X: b.Width / 2, Y: b.Height / 2}
}

// Cells returns the number of cells on the field.
func (b Bounds) Cells() int {
	return b.Width * b.Height
}

// Rect is a screen area in terminal cells. Right and Bottom are exclusive.
type Rect struct {
	X, Y, W, H int
}

func NewRect(x, y, w, h int) Rect {
	return Rect{X: x, Y: y, W: w, H: h}
}

func (r Rect) Right() int { return r.X + r.W }
func (r Rect) Bottom() int { return r.Y + r.H }
