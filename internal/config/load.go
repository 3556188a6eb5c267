package config

import (
	"bytes"
	"fmt"
	"io"
	"os"

	"github.com/pelletier/go-toml/v2"
)

// File is the on-disk form of the render settings. Absent keys keep their current value.
type File struct {
	Texture             *bool    `toml:"gl_texture"`
	NoSkyClear          *bool    `toml:"gl_no_skyclear"`
	MaskThreshold       *float32 `toml:"gl_mask_threshold"`
	MaskSpriteThreshold *float32 `toml:"gl_mask_sprite_threshold"`
	ForceMultipass      *bool    `toml:"gl_forcemultipass"`
	Lights              *bool    `toml:"gl_lights"`
	DrawSync            *bool    `toml:"gl_draw_sync"`
	UseFramebuffer      *bool    `toml:"gl_usefb"`
	ScreenDistance      *float32 `toml:"vr_screendist"`
	EyeSeparation       *float32 `toml:"vr_ipd"`
	PlayerHeightMeters  *float32 `toml:"vr_player_height_meters"`
	ScreenBlocks        *int     `toml:"screenblocks"`
	MaxPortalRecursion  *int     `toml:"gl_portal_recursion"`
	CapFPS              *bool    `toml:"cl_capfps"`
	NoInterpolate       *bool    `toml:"r_nointerpolate"`
	DeathCamera         *bool    `toml:"r_deathcamera"`
}

// LoadFile reads a TOML settings file and applies it.
func LoadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("could not read render settings: %w", err)
	}
	return Load(bytes.NewReader(data))
}

// Load decodes TOML settings from r and applies every key present.
func Load(r io.Reader) error {
	var f File
	dec := toml.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&f); err != nil {
		return fmt.Errorf("could not parse render settings: %w", err)
	}
	Apply(f)
	return nil
}

// Apply pushes the set fields of f through the clamping setters.
func Apply(f File) {
	if f.Texture != nil {
		SetTexture(*f.Texture)
	}
	if f.NoSkyClear != nil {
		SetNoSkyClear(*f.NoSkyClear)
	}
	if f.MaskThreshold != nil {
		SetMaskThreshold(*f.MaskThreshold)
	}
	if f.MaskSpriteThreshold != nil {
		SetMaskSpriteThreshold(*f.MaskSpriteThreshold)
	}
	if f.ForceMultipass != nil {
		SetForceMultipass(*f.ForceMultipass)
	}
	if f.Lights != nil {
		SetLights(*f.Lights)
	}
	if f.DrawSync != nil {
		SetDrawSync(*f.DrawSync)
	}
	if f.UseFramebuffer != nil {
		SetUseFramebuffer(*f.UseFramebuffer)
	}
	if f.ScreenDistance != nil {
		SetScreenDistance(*f.ScreenDistance)
	}
	if f.EyeSeparation != nil {
		SetEyeSeparation(*f.EyeSeparation)
	}
	if f.PlayerHeightMeters != nil {
		SetPlayerHeightMeters(*f.PlayerHeightMeters)
	}
	if f.ScreenBlocks != nil {
		SetScreenBlocks(*f.ScreenBlocks)
	}
	if f.MaxPortalRecursion != nil {
		SetMaxPortalRecursion(*f.MaxPortalRecursion)
	}
	if f.CapFPS != nil {
		SetCapFPS(*f.CapFPS)
	}
	if f.NoInterpolate != nil {
		SetNoInterpolate(*f.NoInterpolate)
	}
	if f.DeathCamera != nil {
		SetDeathCamera(*f.DeathCamera)
	}
}

// Save writes the current settings as TOML.
func Save(w io.Writer) error {
	s := globalRenderSettings
	s.mu.RLock()
	f := File{
		Texture:             ptr(s.texture),
		NoSkyClear:          ptr(s.noSkyClear),
		MaskThreshold:       ptr(s.maskThreshold),
		MaskSpriteThreshold: ptr(s.maskSpriteThreshold),
		ForceMultipass:      ptr(s.forceMultipass),
		Lights:              ptr(s.lights),
		DrawSync:            ptr(s.drawSync),
		UseFramebuffer:      ptr(s.useFramebuffer),
		ScreenDistance:      ptr(s.screenDistance),
		EyeSeparation:       ptr(s.eyeSeparation),
		PlayerHeightMeters:  ptr(s.playerHeightMeters),
		ScreenBlocks:        ptr(s.screenBlocks),
		MaxPortalRecursion:  ptr(s.maxPortalRecursion),
		CapFPS:              ptr(s.capFPS),
		NoInterpolate:       ptr(s.noInterpolate),
		DeathCamera:         ptr(s.deathCamera),
	}
	s.mu.RUnlock()
	if err := toml.NewEncoder(w).Encode(f); err != nil {
		return fmt.Errorf("could not encode render settings: %w", err)
	}
	return nil
}

func ptr[T any](v T) *T { return &v }
