package flow

import "fmt"

// Mask is a NumX by NumY grid of open (true) / closed (false) flags, stored
// column-major like the fields.
type Mask struct {
	NumX, NumY int
	open       []bool
}

func newMask(numX, numY int) Mask {
	m := Mask{
		NumX: numX,
		NumY: numY,
		open: make([]bool, numX*numY),
	}
	fill(m.open, true)
	return m
}

// NewMask returns a mask with every entry open.
func NewMask(numX, numY int) Mask {
	if numX <= 0 || numY <= 0 {
		panic(fmt.Sprintf("invalid mask size: %dx%d", numX, numY))
	}
	return newMask(numX, numY)
}

func (m Mask) index(i, j int) int {
	if i < 0 || i >= m.NumX {
		panic(fmt.Sprintf("invalid x-index: %d", i))
	}
	if j < 0 || j >= m.NumY {
		panic(fmt.Sprintf("invalid y-index: %d", j))
	}
	return i*m.NumY + j
}

// Open reports whether entry (i, j) is open. Out of range indices panic.
func (m Mask) Open(i, j int) bool {
	return m.open[m.index(i, j)]
}

// Close marks entry (i, j) closed. Closing is idempotent.
func (m Mask) Close(i, j int) {
	m.open[m.index(i, j)] = false
}

// Count returns the number of open entries.
func (m Mask) Count() int {
	n := 0
	for _, o := range m.open {
		if o {
			n++
		}
	}
	return n
}

// Clone returns an independent copy.
func (m Mask) Clone() Mask {
	c := Mask{NumX: m.NumX, NumY: m.NumY, open: make([]bool, len(m.open))}
	copy(c.open, m.open)
	return c
}

func fill[T any](slice []T, val T) {
	for i := range slice {
		slice[i] = val
	}
}
