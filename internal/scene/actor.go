package scene

import (
	"gzgl/internal/fixed"
	"gzgl/internal/level"
)

// Actor is the part of a simulation object the renderer reads. Prev* hold the
// position at the previous tic for interpolation.
type Actor struct {
	X, Y, Z             fixed.Fixed
	Angle, Pitch, Roll  fixed.Angle
	PrevX, PrevY, PrevZ fixed.Fixed
	PrevAngle           fixed.Angle
	PrevPitch           fixed.Angle
	ViewHeight          fixed.Fixed
	Health              int
	Player              *Player
	// Thing is the actor's own sprite, skipped when it is the view actor.
	Thing *level.Thing
}

// Interpolated returns the eye position and angles at fraction frac between tics.
func (a *Actor) Interpolated(frac fixed.Fixed) (x, y, z fixed.Fixed, angle, pitch fixed.Angle) {
	x = a.PrevX + fixed.Mul(frac, a.X-a.PrevX)
	y = a.PrevY + fixed.Mul(frac, a.Y-a.PrevY)
	z = a.PrevZ + fixed.Mul(frac, a.Z-a.PrevZ) + a.ViewHeight
	angle = a.PrevAngle + lerpAngle(frac, a.Angle-a.PrevAngle)
	pitch = a.PrevPitch + lerpAngle(frac, a.Pitch-a.PrevPitch)
	return
}

// lerpAngle scales a signed angle delta by frac.
func lerpAngle(frac fixed.Fixed, delta fixed.Angle) fixed.Angle {
	return fixed.Angle(fixed.Mul(frac, fixed.Fixed(int32(delta))))
}

// Settle makes the current position the interpolation start.
func (a *Actor) Settle() {
	a.PrevX, a.PrevY, a.PrevZ = a.X, a.Y, a.Z
	a.PrevAngle, a.PrevPitch = a.Angle, a.Pitch
}

type PowerKind int

const (
	PowerOther PowerKind = iota
	PowerInvulnerable
	PowerTorch
	PowerLightAmp
)

// Power is an active powerup. Blend tints the screen while it lasts.
type Power struct {
	Kind     PowerKind
	Blend    level.PalEntry
	TicsLeft int
}

// PSprite is a 2D HUD layer such as a weapon or a targeter, in 320x200 coordinates.
type PSprite struct {
	Texture level.TextureID
	X, Y    float32
	Alpha   float32
}

// ExtraLightInvulnerable is the extralight value set by the invulnerability effect.
const ExtraLightInvulnerable = -1 << 31

type Player struct {
	Mo     *Actor
	Camera *Actor
	// Console marks the local player.
	Console  bool
	ChaseCam bool

	ExtraLight      int
	FixedColormap   int
	FixedLightLevel int
	Powers          []Power

	BonusCount  int
	DamageCount int
	// DamageFade is the pain flash color; its alpha scales the flash.
	DamageFade  level.PalEntry
	PoisonCount int
	Frozen      bool
	// BlendR..BlendA is the scripted fade-to color.
	BlendR, BlendG, BlendB, BlendA float32

	PSprites  []PSprite
	Targeters []PSprite
}

// NewPlayer returns a player without fixed colormap or light level.
func NewPlayer(mo *Actor) *Player {
	p := &Player{Mo: mo, Camera: mo, Console: true, FixedColormap: -1, FixedLightLevel: -1}
	mo.Player = p
	return p
}

func (p *Player) HasPower(k PowerKind) bool {
	for _, pw := range p.Powers {
		if pw.Kind == k && pw.TicsLeft > 0 {
			return true
		}
	}
	return false
}
