package material

import (
	"fmt"
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/image/colornames"

	"gzgl/internal/graphics/device"
	"gzgl/internal/level"
)

func TestTableRegister(t *testing.T) {
	tab := NewTable(device.NewRecorder())

	wall, err := tab.Solid("WALL", colornames.Firebrick, 8)
	require.NoError(t, err)
	grate, err := tab.Checker("GRATE", colornames.Gray, color.Transparent, 8, 2)
	require.NoError(t, err)

	m, ok := tab.Material(wall)
	require.True(t, ok)
	assert.Equal(t, "WALL", m.Name)
	assert.Equal(t, 8, m.Width)
	assert.False(t, m.Masked)
	assert.NotZero(t, m.Handle)

	g, _ := tab.Material(grate)
	assert.True(t, g.Masked)

	id, ok := tab.Lookup("GRATE")
	assert.True(t, ok)
	assert.Equal(t, grate, id)
	assert.Equal(t, 2, tab.Len())

	_, ok = tab.Material(level.NoTexture)
	assert.False(t, ok)
}

func TestTableErrors(t *testing.T) {
	rec := device.NewRecorder()
	tab := NewTable(rec)
	_, err := tab.Solid("A", colornames.White, 4)
	require.NoError(t, err)

	_, err = tab.Solid("A", colornames.White, 4)
	assert.ErrorIs(t, err, ErrDuplicate)

	rec.FailTextures = true
	_, err = tab.Solid("B", colornames.White, 4)
	assert.ErrorIs(t, err, device.ErrTextureRejected)

	assert.ErrorIs(t, tab.BindOffscreen(1), ErrNotCanvas)
	assert.ErrorIs(t, NewTable(uploadOnly{}).BindOffscreen(1), ErrNoOffscreen)
}

func TestTableCanvas(t *testing.T) {
	tab := NewTable(device.NewRecorder())
	id, err := tab.Canvas("CAMTEX", 64, 32)
	require.NoError(t, err)
	m, _ := tab.Material(id)
	assert.True(t, m.Canvas)
	assert.False(t, m.Masked)
	assert.Equal(t, 32, m.Height)
}

type uploadOnly struct{}

func (uploadOnly) CreateTexture(int, int, []byte) (uint32, error) { return 1, nil }

func TestTableBindOffscreen(t *testing.T) {
	rec := device.NewRecorder()
	tab := NewTable(rec)
	id, err := tab.Canvas("CAMTEX", 64, 32)
	require.NoError(t, err)
	m, _ := tab.Material(id)

	assert.ErrorIs(t, tab.BindOffscreen(id), device.ErrFramebufferIncomplete)

	rec.Caps.Framebuffers = true
	require.NoError(t, tab.BindOffscreen(id))
	assert.Equal(t, m.Handle, rec.State.Framebuffer)
	assert.Equal(t, 1, rec.Count(fmt.Sprintf("BindFramebuffer(%d,64,32)", m.Handle)))

	tab.UnbindOffscreen()
	assert.Zero(t, rec.State.Framebuffer)
}
