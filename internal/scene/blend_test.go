package scene

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gzgl/internal/graphics/device"
	"gzgl/internal/level"
)

func TestBlendAdd(t *testing.T) {
	var b Blend
	b.Add(1, 0, 0, 0)
	assert.Equal(t, Blend{}, b, "zero alpha is ignored")

	b.Add(1, 0, 0, 0.5)
	assert.InDelta(t, 1, b[0], 1e-6)
	assert.InDelta(t, 0.5, b[3], 1e-6)

	b.Add(0, 0, 1, 0.5)
	assert.InDelta(t, 0.75, b[3], 1e-6)
	assert.InDelta(t, 2.0/3, b[0], 1e-6)
	assert.InDelta(t, 1.0/3, b[2], 1e-6)
}

func TestPlayerBlendCappedByPowers(t *testing.T) {
	p := NewPlayer(&Actor{})
	p.BonusCount = 20
	p.Frozen = true

	var b Blend
	b.AddPlayerBlend(p, level.NewPalEntry(0, 255, 255, 0))
	assert.InDelta(t, maxInvAlpha, b[3], 1e-6)

	p.Powers = []Power{{Kind: PowerOther, Blend: level.NewPalEntry(200, 0, 255, 0), TicsLeft: 5}}
	b = Blend{}
	b.AddPlayerBlend(p, level.NewPalEntry(0, 255, 255, 0))
	assert.InDelta(t, 200.0/255, b[3], 1e-6, "a strong power raises the cap")

	p.Powers[0].TicsLeft = 0
	p.BonusCount, p.Frozen = 0, false
	b = Blend{}
	b.AddPlayerBlend(p, 0)
	assert.Equal(t, Blend{}, b, "expired powers do not tint")
}

func TestDamageAlpha(t *testing.T) {
	assert.Zero(t, damageAlpha(0))
	assert.Zero(t, damageAlpha(-4))
	assert.Equal(t, 35*255/70, damageAlpha(35))
	assert.Equal(t, damageAlpha(maxDamageStep), damageAlpha(500))
}

func TestDrawBlendBonusFlash(t *testing.T) {
	f := newRooms(t, roomOptions{})
	p := NewPlayer(&Actor{})
	p.BonusCount = 1

	b := f.r.DrawBlend(nil, p)
	assert.InDelta(t, 8.0/255, b[3], 1e-6)

	require.Len(t, f.rec.Draws, 1)
	d := f.rec.Draws[0].State
	assert.Equal(t, device.SrcAlpha, d.BlendSrc)
	assert.Equal(t, device.OneMinusSrcAlpha, d.BlendDst)
	assert.False(t, d.Enabled(device.Texture2D))
	assert.InDelta(t, 8.0/255, d.Color.W(), 1e-6)
}

func TestDrawBlendHeightSecTint(t *testing.T) {
	f := newRooms(t, roomOptions{})
	sec := f.b.Sector
	sec.HeightSec = &level.Sector{MidMap: level.NewPalEntry(128, 255, 0, 0)}
	f.r.Viewpoint().Area = AreaNormal

	b := f.r.DrawBlend(sec, nil)
	assert.InDelta(t, 1, b[0], 1e-6)
	assert.InDelta(t, 128.0/255, b[3], 1e-6)
	require.Len(t, f.rec.Draws, 1)

	sec.MoreFlags |= level.SecfIgnoreHeightSec
	assert.Equal(t, Blend{}, f.r.DrawBlend(sec, nil))
}

func TestDrawBlendColormapMultiplies(t *testing.T) {
	f := newRooms(t, roomOptions{deps: func(d *Deps) {
		d.FakeColormaps = []level.PalEntry{0, level.NewPalEntry(255, 128, 64, 0)}
	}})
	sec := f.b.Sector
	sec.HeightSec = &level.Sector{MidMap: 1}

	b := f.r.DrawBlend(sec, nil)
	assert.Equal(t, Blend{}, b)

	require.Len(t, f.rec.Draws, 1)
	d := f.rec.Draws[0].State
	assert.Equal(t, device.DstColor, d.BlendSrc)
	assert.Equal(t, device.Zero, d.BlendDst)
	assert.InDelta(t, 1, d.Color.X(), 1e-6, "brightened to full")
	assert.InDelta(t, 127.0/255, d.Color.Y(), 1e-6)
	assert.Zero(t, d.Color.Z())
}
