package input

import (
	"testing"

	"github.com/go-gl/glfw/v3.3/glfw"
	"github.com/stretchr/testify/assert"
)

func TestEdgesLastOneFrame(t *testing.T) {
	m := New()
	m.HandleKey(glfw.KeyF12, glfw.Press)
	assert.True(t, m.JustPressed(ActionScreenshot))
	assert.True(t, m.Held(ActionScreenshot))

	m.EndFrame()
	assert.False(t, m.JustPressed(ActionScreenshot))
	assert.True(t, m.Held(ActionScreenshot))

	m.HandleKey(glfw.KeyF12, glfw.Repeat)
	assert.False(t, m.JustPressed(ActionScreenshot), "repeats are not new presses")

	m.HandleKey(glfw.KeyF12, glfw.Release)
	assert.True(t, m.JustReleased(ActionScreenshot))
	assert.False(t, m.Held(ActionScreenshot))
}

func TestSeveralKeysOneAction(t *testing.T) {
	m := New()
	m.HandleKey(glfw.KeyUp, glfw.Press)
	assert.Equal(t, float32(1), m.Axis(ActionMoveForward, ActionMoveBackward))

	m.HandleKey(glfw.KeyS, glfw.Press)
	assert.Zero(t, m.Axis(ActionMoveForward, ActionMoveBackward))

	m.HandleKey(glfw.KeyUp, glfw.Release)
	assert.Equal(t, float32(-1), m.Axis(ActionMoveForward, ActionMoveBackward))
}

func TestBindAndUnbind(t *testing.T) {
	m := New()
	m.Bind(glfw.KeyQ, ActionQuit)
	m.Bind(glfw.KeyQ, ActionCount)
	m.HandleKey(glfw.KeyQ, glfw.Press)
	assert.True(t, m.JustPressed(ActionQuit))

	m.EndFrame()
	m.HandleKey(glfw.KeyQ, glfw.Release)
	m.Unbind(glfw.KeyQ)
	m.HandleKey(glfw.KeyQ, glfw.Press)
	assert.False(t, m.Held(ActionQuit))

	m.HandleKey(glfw.KeyUnknown, glfw.Press)
	assert.False(t, m.Held(Action(-1)))
	assert.False(t, m.JustPressed(ActionCount))
}

func TestActionString(t *testing.T) {
	assert.Equal(t, "savepic", ActionSavePic.String())
	assert.Equal(t, "quit", ActionQuit.String())
	assert.Equal(t, "action(?)", ActionCount.String())
}
