package scene

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"gzgl/internal/fixed"
)

func TestActorInterpolated(t *testing.T) {
	a := &Actor{
		X:          fixed.FromInt(10),
		Y:          fixed.FromInt(-4),
		ViewHeight: fixed.FromInt(41),
		PrevAngle:  fixed.Angle270 + fixed.Angle45,
		Angle:      fixed.Angle45,
		Pitch:      fixed.Angle1 * 10,
	}
	half := fixed.FracUnit / 2

	x, y, z, angle, pitch := a.Interpolated(half)
	assert.Equal(t, fixed.FromInt(5), x)
	assert.Equal(t, fixed.FromInt(-2), y)
	assert.Equal(t, fixed.FromInt(41), z)
	assert.Equal(t, fixed.Angle(0), angle, "turns the short way through zero")
	assert.Equal(t, fixed.Angle1*5, pitch)

	x, _, _, angle, _ = a.Interpolated(fixed.FracUnit)
	assert.Equal(t, a.X, x)
	assert.Equal(t, a.Angle, angle)

	a.Settle()
	x, _, _, angle, _ = a.Interpolated(0)
	assert.Equal(t, a.X, x)
	assert.Equal(t, a.Angle, angle)
}

func TestNewPlayerDefaults(t *testing.T) {
	mo := &Actor{}
	p := NewPlayer(mo)
	assert.Same(t, mo, p.Mo)
	assert.Same(t, p, mo.Player)
	assert.Equal(t, -1, p.FixedColormap)
	assert.Equal(t, -1, p.FixedLightLevel)
}

func TestHasPower(t *testing.T) {
	p := NewPlayer(&Actor{})
	p.Powers = []Power{{Kind: PowerTorch, TicsLeft: 3}, {Kind: PowerLightAmp}}
	assert.True(t, p.HasPower(PowerTorch))
	assert.False(t, p.HasPower(PowerLightAmp), "expired")
	assert.False(t, p.HasPower(PowerInvulnerable))
}
