package main

import (
	"github.com/go-gl/glfw/v3.3/glfw"

	"gzgl/internal/fixed"
)

const ticRate = 35

// ticClock runs the simulation at ticRate on the glfw timer and reports how
// far the frame is into the current tic.
type ticClock struct {
	start float64
	tics  int
}

func newTicClock() *ticClock {
	return &ticClock{start: glfw.GetTime()}
}

func (c *ticClock) elapsed() float64 { return glfw.GetTime() - c.start }

// pending returns the number of tics due since the last call.
func (c *ticClock) pending() int {
	due := int(c.elapsed() * ticRate)
	n := due - c.tics
	c.tics = due
	return n
}

func (c *ticClock) TimeFrac() fixed.Fixed {
	t := c.elapsed()*ticRate - float64(c.tics)
	return fixed.FromFloat(min(max(t, 0), 1))
}

func (c *ticClock) Milliseconds() uint32 { return uint32(c.elapsed() * 1000) }
