// Package snake models the shared double-width snake: a head-first chain of
// segments, each of which covers two cells side by side relative to the
// direction it was created in.
package snake

import (
	"github.com/vovakirdan/coop-snake/internal/core"
)

// Segment is one unit of the body. Pos is the anchor ("top-left") cell and
// Dir the heading the segment was created under. The second cell is derived
// from Dir, never stored.
type Segment struct {
	Pos core.Point     `json:"pos" msgpack:"pos"`
	Dir core.Direction `json:"dir" msgpack:"dir"`
}

// Cells returns the two cells covered by the segment: the anchor and the
// cell next to it perpendicular to Dir (+x when moving vertically, +y when
// moving horizontally).
func (s Segment) Cells() [2]core.Point {
	if s.Dir.Vertical() {
		return [2]core.Point{s.Pos, {X: s.Pos.X + 1, Y: s.Pos.Y}}
	}
	return [2]core.Point{s.Pos, {X: s.Pos.X, Y: s.Pos.Y + 1}}
}

// Covers reports whether p is one of the segment's two cells.
func (s Segment) Covers(p core.Point) bool {
	c := s.Cells()
	return c[0] == p || c[1] == p
}

// Snake is the ordered chain of segments, head first.
type Snake struct {
	segments []Segment // Head at index 0, tail is the oldest
	dir      core.Direction
}

// New builds a snake whose head is anchored at head, moving in dir, with
// length segments trailing behind it one step apart.
func New(head core.Point, dir core.Direction, length int) *Snake {
	if length < 1 {
		panic("snake: length must be at least 1")
	}

	segments := make([]Segment, 0, length)
	pos := head
	back := dir.Opposite()
	for range length {
		segments = append(segments, Segment{Pos: pos, Dir: dir})
		pos = core.Move(pos, back)
	}

	return &Snake{segments: segments, dir: dir}
}

// FromSegments restores a snake from an explicit head-first chain.
// The heading is taken from the head segment.
func FromSegments(segments []Segment) *Snake {
	if len(segments) == 0 {
		panic("snake: empty segment chain")
	}
	chain := make([]Segment, len(segments))
	copy(chain, segments)
	return &Snake{segments: chain, dir: chain[0].Dir}
}

// Dir returns the current heading.
func (s *Snake) Dir() core.Direction {
	return s.dir
}

// Len returns the number of segments.
func (s *Snake) Len() int {
	return len(s.segments)
}

// Head returns the most recently created segment.
func (s *Snake) Head() Segment {
	s.mustHaveBody()
	return s.segments[0]
}

// Tail returns the oldest segment, the one dropped by a non-growing move.
func (s *Snake) Tail() Segment {
	s.mustHaveBody()
	return s.segments[len(s.segments)-1]
}

// Segments returns a copy of the chain, head first.
func (s *Snake) Segments() []Segment {
	out := make([]Segment, len(s.segments))
	copy(out, s.segments)
	return out
}

// ComputeNextHead returns the segment the head would become if the snake
// moved in requested. A request for the exact opposite of the current
// heading is replaced by the current heading. The snake is not modified.
func (s *Snake) ComputeNextHead(requested core.Direction) Segment {
	head := s.Head()
	dir := requested
	if dir == s.dir.Opposite() {
		dir = s.dir
	}
	return Segment{Pos: core.Move(head.Pos, dir), Dir: dir}
}

// Advance commits ComputeNextHead(dir) as the new head. Unless grow is set
// the tail segment is dropped.
func (s *Snake) Advance(dir core.Direction, grow bool) {
	next := s.ComputeNextHead(dir)

	s.segments = append(s.segments, Segment{})
	copy(s.segments[1:], s.segments[:len(s.segments)-1])
	s.segments[0] = next
	s.dir = next.Dir

	if !grow {
		s.segments = s.segments[:len(s.segments)-1]
	}
}

// OccupiedCells returns both cells of every segment, head to tail.
// The last two entries always belong to the tail segment.
func (s *Snake) OccupiedCells() []core.Point {
	cells := make([]core.Point, 0, len(s.segments)*2)
	for _, seg := range s.segments {
		c := seg.Cells()
		cells = append(cells, c[0], c[1])
	}
	return cells
}

// Contains reports whether any segment covers p.
func (s *Snake) Contains(p core.Point) bool {
	for _, seg := range s.segments {
		if seg.Covers(p) {
			return true
		}
	}
	return false
}

func (s *Snake) mustHaveBody() {
	if len(s.segments) == 0 {
		panic("snake: no segments")
	}
}
