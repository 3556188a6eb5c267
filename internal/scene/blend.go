package scene

import (
	"gzgl/internal/graphics/device"
	"gzgl/internal/level"
)

// Blend is a premultiplied screen tint, r, g, b, a in [0,1].
type Blend [4]float32

// Add composites a tint on top. Non-positive alpha is ignored.
func (b *Blend) Add(r, g, bl, a float32) {
	if a <= 0 {
		return
	}
	a2 := b[3] + (1-b[3])*a
	a3 := b[3] / a2
	b[0] = b[0]*a3 + r*(1-a3)
	b[1] = b[1]*a3 + g*(1-a3)
	b[2] = b[2]*a3 + bl*(1-a3)
	b[3] = a2
}

func (b *Blend) addPal(p level.PalEntry) {
	b.Add(float32(p.R())/255, float32(p.G())/255, float32(p.B())/255, float32(p.A())/255)
}

const (
	maxInvAlpha   = 0.5
	maxPainBlend  = 175
	maxDamageStep = 113
)

// damageAlpha maps a scaled damage count to the pain flash alpha.
func damageAlpha(i int) int {
	if i <= 0 {
		return 0
	}
	if i > maxDamageStep {
		i = maxDamageStep
	}
	return i * 255 / (i + 35)
}

// AddPlayerBlend adds powerup, pickup, pain, poison and ice tints and caps the
// result at the strongest powerup tint.
func (b *Blend) AddPlayerBlend(p *Player, pickup level.PalEntry) {
	invAlpha := float32(maxInvAlpha)
	for _, pw := range p.Powers {
		if pw.TicsLeft <= 0 || pw.Blend.A() == 0 {
			continue
		}
		b.addPal(pw.Blend)
		if a := float32(pw.Blend.A()) / 255; a > invAlpha {
			invAlpha = a
		}
	}
	if p.BonusCount > 0 {
		cnt := p.BonusCount << 3
		a := float32(cnt) / 255
		if cnt > 128 {
			a = 0.5
		}
		b.Add(float32(pickup.R())/255, float32(pickup.G())/255, float32(pickup.B())/255, a)
	}
	if pf := p.DamageFade; pf.A() != 0 {
		cnt := damageAlpha(min(maxDamageStep, p.DamageCount*int(pf.A())/255))
		if cnt > 0 {
			cnt = min(cnt, maxPainBlend)
			b.Add(float32(pf.R())/255, float32(pf.G())/255, float32(pf.B())/255, float32(cnt)/255)
		}
	}
	if p.PoisonCount > 0 {
		cnt := min(p.PoisonCount, 64)
		b.Add(0.04, 0.2571, 0, float32(cnt)/93.2571428571)
	}
	if p.Frozen {
		b.Add(0.25, 0.25, 0.853, 0.4)
	}
	if b[3] > invAlpha {
		b[3] = invAlpha
	}
}

// blendForColormap resolves a colormap index to its blend. Entries with alpha
// are blends already.
func (r *Renderer) blendForColormap(p level.PalEntry) level.PalEntry {
	if p.A() != 0 {
		return p
	}
	if i := int(p); i < len(r.deps.FakeColormaps) {
		return r.deps.FakeColormaps[i]
	}
	return 0
}

// sectorBlend returns the tint of the view's sector: the transfer-heights map
// for the view area, or the band of the 3D-floor light list the eye is in.
func (r *Renderer) sectorBlend(sec *level.Sector) level.PalEntry {
	if sec == nil || r.fixedColormap != CMDefault {
		return 0
	}
	if len(sec.XFloor.FFloors) == 0 {
		if sec.HeightSec == nil || sec.MoreFlags&level.SecfIgnoreHeightSec != 0 {
			return 0
		}
		switch r.vp.Area {
		case AreaAbove:
			return sec.HeightSec.TopMap
		case AreaBelow:
			return sec.HeightSec.BottomMap
		}
		return sec.HeightSec.MidMap
	}
	ll := sec.XFloor.LightList
	for i := range ll {
		bottom := sec.FloorAt(r.vp.X, r.vp.Y)
		if i < len(ll)-1 {
			bottom = ll[i+1].Plane.ZatPoint(r.vp.X, r.vp.Y)
		}
		if bottom < r.vp.Z && (ll[i].Caster == nil || ll[i].Caster.Flags&level.FFFadeWalls == 0) {
			b := ll[i].Blend
			if b == sec.ColorMap.Fade {
				b = 0
			}
			// legacy maps leave the alpha out
			if b.A() == 0 && b != 0 {
				b = b.WithAlpha(128)
			}
			return b
		}
	}
	return 0
}

// DrawBlend draws the sector and player tints over the whole view. Opaque
// colormap blends multiply the view instead of covering it.
func (r *Renderer) DrawBlend(sec *level.Sector, p *Player) Blend {
	var blend Blend
	dev, rs := r.dev, r.state
	w, h := float32(r.deps.Screen.Width), float32(r.deps.Screen.Height)

	bv := r.sectorBlend(sec)
	if bv.A() == 0 {
		bv = r.blendForColormap(bv)
		if bv.A() == 255 {
			maxcol := max(r.deps.PaletteBrightness, int(bv.R()), int(bv.G()), int(bv.B()))
			if maxcol > 0 {
				bv = level.NewPalEntry(255, uint8(int(bv.R())*255/maxcol), uint8(int(bv.G())*255/maxcol), uint8(int(bv.B())*255/maxcol))
			}
		}
	}

	switch {
	case bv.A() == 255:
		if bv.RGB() != 0 {
			rs.EnableAlphaTest(false)
			rs.EnableTexture(false)
			rs.BlendFunc(device.DstColor, device.Zero)
			rs.Apply(dev, true)
			dev.Color4(float32(bv.R())/255, float32(bv.G())/255, float32(bv.B())/255, 1)
			dev.DrawPolygon(screenQuad(0, 0, w, h))
		}
	case bv.A() != 0:
		blend.addPal(bv)
	}

	if p != nil {
		cp := p
		if p.Camera != nil && p.Camera.Player != nil {
			cp = p.Camera.Player
		}
		blend.AddPlayerBlend(cp, r.deps.PickupColor)
		blend.Add(cp.BlendR, cp.BlendG, cp.BlendB, cp.BlendA)
	}

	if blend[3] > 0 {
		rs.BlendFunc(device.SrcAlpha, device.OneMinusSrcAlpha)
		rs.EnableAlphaTest(false)
		rs.EnableTexture(false)
		rs.Apply(dev, true)
		dev.Color4(blend[0], blend[1], blend[2], blend[3])
		dev.DrawPolygon(screenQuad(0, 0, w, h))
	}
	return blend
}
