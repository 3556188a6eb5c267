// Package input maps glfw keys to the viewer's actions and keeps their
// held and edge state between frames.
package input

import (
	"sync"

	"github.com/go-gl/glfw/v3.3/glfw"
)

type Action int

const (
	ActionMoveForward Action = iota
	ActionMoveBackward
	ActionStrafeLeft
	ActionStrafeRight
	ActionTurnLeft
	ActionTurnRight
	ActionLookUp
	ActionLookDown
	ActionRun
	ActionScreenshot
	ActionSavePic
	ActionCycleStereo
	ActionToggleChaseCam
	ActionToggleLights
	ActionToggleProfiling
	ActionQuit
	ActionCount
)

var actionNames = [ActionCount]string{
	"move-forward", "move-backward", "strafe-left", "strafe-right",
	"turn-left", "turn-right", "look-up", "look-down", "run",
	"screenshot", "savepic", "cycle-stereo", "toggle-chasecam",
	"toggle-lights", "toggle-profiling", "quit",
}

func (a Action) String() string {
	if a < 0 || a >= ActionCount {
		return "action(?)"
	}
	return actionNames[a]
}

// Manager holds the key bindings and the per-frame action state. Events may
// arrive from glfw callbacks while the frame loop reads the state.
type Manager struct {
	mu       sync.RWMutex
	bindings map[glfw.Key][]Action

	held         [ActionCount]bool
	justPressed  [ActionCount]bool
	justReleased [ActionCount]bool
}

// New returns a manager with the default bindings: WASD and the arrows to move,
// PageUp/PageDown to look, F12 for a screenshot and F5 for a save picture.
func New() *Manager {
	m := &Manager{bindings: make(map[glfw.Key][]Action)}
	for key, a := range map[glfw.Key]Action{
		glfw.KeyW:         ActionMoveForward,
		glfw.KeyUp:        ActionMoveForward,
		glfw.KeyS:         ActionMoveBackward,
		glfw.KeyDown:      ActionMoveBackward,
		glfw.KeyA:         ActionStrafeLeft,
		glfw.KeyD:         ActionStrafeRight,
		glfw.KeyLeft:      ActionTurnLeft,
		glfw.KeyRight:     ActionTurnRight,
		glfw.KeyPageUp:    ActionLookUp,
		glfw.KeyPageDown:  ActionLookDown,
		glfw.KeyLeftShift: ActionRun,
		glfw.KeyF12:       ActionScreenshot,
		glfw.KeyF5:        ActionSavePic,
		glfw.KeyF3:        ActionCycleStereo,
		glfw.KeyC:         ActionToggleChaseCam,
		glfw.KeyL:         ActionToggleLights,
		glfw.KeyV:         ActionToggleProfiling,
		glfw.KeyEscape:    ActionQuit,
	} {
		m.Bind(key, a)
	}
	return m
}

// Bind adds action to key. A key may drive several actions.
func (m *Manager) Bind(key glfw.Key, a Action) {
	if a < 0 || a >= ActionCount {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.bindings[key] = append(m.bindings[key], a)
}

func (m *Manager) Unbind(key glfw.Key) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.bindings, key)
}

// HandleKey records a glfw key event. Repeats count as held.
func (m *Manager) HandleKey(key glfw.Key, action glfw.Action) {
	down := action == glfw.Press || action == glfw.Repeat
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, a := range m.bindings[key] {
		switch {
		case down && !m.held[a]:
			m.justPressed[a] = true
		case !down && m.held[a]:
			m.justReleased[a] = true
		}
		m.held[a] = down
	}
}

// Attach installs the manager as the window's key callback.
func (m *Manager) Attach(w *glfw.Window) {
	w.SetKeyCallback(func(_ *glfw.Window, key glfw.Key, _ int, action glfw.Action, _ glfw.ModifierKey) {
		m.HandleKey(key, action)
	})
}

// EndFrame clears the edge flags. Call it once after the frame read its input.
func (m *Manager) EndFrame() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.justPressed = [ActionCount]bool{}
	m.justReleased = [ActionCount]bool{}
}

func (m *Manager) Held(a Action) bool {
	if a < 0 || a >= ActionCount {
		return false
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.held[a]
}

func (m *Manager) JustPressed(a Action) bool {
	if a < 0 || a >= ActionCount {
		return false
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.justPressed[a]
}

func (m *Manager) JustReleased(a Action) bool {
	if a < 0 || a >= ActionCount {
		return false
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.justReleased[a]
}

// Axis returns +1, -1 or 0 for a pair of opposing actions.
func (m *Manager) Axis(pos, neg Action) float32 {
	var v float32
	if m.Held(pos) {
		v++
	}
	if m.Held(neg) {
		v--
	}
	return v
}
