package main

import (
	"fmt"
	"image/color"

	"github.com/go-gl/mathgl/mgl32"
	"golang.org/x/image/colornames"

	"gzgl/internal/fixed"
	"gzgl/internal/graphics/material"
	"gzgl/internal/level"
	"gzgl/internal/scene"
)

// demo is the built-in level: a sky yard, a hall with a mirror and a monitor,
// and a raised fog room to the east behind a grate.
type demo struct {
	lvl    *level.Level
	lights scene.StaticLights
	// monitor shows what camera sees.
	monitor level.TextureID
	camera  *scene.Actor
}

type textureDef struct {
	name  string
	build func(t *material.Table, name string) (level.TextureID, error)
}

func solid(c color.Color, size int) func(*material.Table, string) (level.TextureID, error) {
	return func(t *material.Table, name string) (level.TextureID, error) { return t.Solid(name, c, size) }
}

func checker(a, b color.Color, size, cell int) func(*material.Table, string) (level.TextureID, error) {
	return func(t *material.Table, name string) (level.TextureID, error) { return t.Checker(name, a, b, size, cell) }
}

func buildDemo(mats *material.Table) (*demo, error) {
	ids := map[string]level.TextureID{}
	for _, d := range []textureDef{
		{"BRICK", checker(colornames.Firebrick, colornames.Darkred, 64, 16)},
		{"STONE", checker(colornames.Slategray, colornames.Dimgray, 64, 32)},
		{"FLOOR", checker(colornames.Sienna, colornames.Saddlebrown, 64, 8)},
		{"CEIL", solid(colornames.Gainsboro, 64)},
		{"SKY", solid(colornames.Skyblue, 128)},
		{"GRATE", checker(colornames.Darkgray, color.Transparent, 64, 4)},
		{"SCORCH", solid(colornames.Black, 16)},
		{"LAMP", solid(colornames.Gold, 16)},
		{"GHOST", solid(colornames.Lightcyan, 32)},
	} {
		id, err := d.build(mats, d.name)
		if err != nil {
			return nil, fmt.Errorf("demo texture %s: %w", d.name, err)
		}
		ids[d.name] = id
	}
	monitor, err := mats.Canvas("MONITOR", 128, 64)
	if err != nil {
		return nil, fmt.Errorf("demo texture MONITOR: %w", err)
	}

	b := level.NewBuilder()
	b.SkyFlat(ids["SKY"])
	b.SkySpeeds(0.5, 1)

	brick := level.WallDef{Mid: ids["BRICK"]}
	stone := level.WallDef{Mid: ids["STONE"], Top: ids["STONE"], Bottom: ids["STONE"]}

	yard := b.Sector(level.SectorDef{Floor: 0, Ceiling: 256, FloorTex: ids["FLOOR"], CeilingTex: ids["SKY"], Light: 224})
	hall := b.Sector(level.SectorDef{Floor: 0, Ceiling: 160, FloorTex: ids["FLOOR"], CeilingTex: ids["CEIL"], Light: 192})
	fogRoom := b.Sector(level.SectorDef{
		Floor: 24, Ceiling: 128, FloorTex: ids["FLOOR"], CeilingTex: ids["CEIL"], Light: 144,
		Fade: level.NewPalEntry(0, 32, 48, 64),
	})

	b.Box(yard, -512, -128, -256, 128, level.BoxWalls{West: brick, North: brick, South: brick, East: stone})
	b.Box(hall, -256, -128, 0, 128, level.BoxWalls{
		West:  stone,
		North: level.WallDef{Mid: monitor},
		South: level.WallDef{Mid: ids["STONE"], Mirror: true},
		East:  level.WallDef{Masked: ids["GRATE"], Bottom: ids["STONE"], Top: ids["STONE"]},
	})
	b.Box(fogRoom, 0, -128, 256, 128, level.BoxWalls{
		West:  stone,
		North: brick,
		South: brick,
		East: level.WallDef{Mid: ids["BRICK"], Decals: []level.Decal{
			{Texture: ids["SCORCH"], Left: 96, Bottom: 24, Width: 48, Height: 40, Alpha: 0.8},
		}},
	})

	b.Thing(&level.Thing{X: fixed.FromInt(-128), Y: fixed.FromInt(96), Sprite: ids["LAMP"], Style: level.StyleAdd, Bright: true})
	b.Thing(&level.Thing{X: fixed.FromInt(128), Y: fixed.FromInt(-32), Z: fixed.FromInt(24), Sprite: ids["GHOST"], Alpha: 0.4, Style: level.StyleTranslucent, Height: fixed.FromInt(56)})

	lvl, err := b.Build()
	if err != nil {
		return nil, fmt.Errorf("build demo level: %w", err)
	}
	cam := &scene.Actor{X: fixed.FromInt(-480), Y: fixed.FromInt(0), ViewHeight: fixed.FromInt(64)}
	cam.Settle()
	return &demo{
		lvl: lvl,
		lights: scene.StaticLights{
			{X: -128, Y: 96, Z: 48, Radius: 160, Color: mgl32.Vec3{1, 0.8, 0.4}, Additive: true},
			{X: 200, Y: 0, Z: 64, Radius: 128, Color: mgl32.Vec3{0.3, 0.5, 1}},
		},
		monitor: monitor,
		camera:  cam,
	}, nil
}
