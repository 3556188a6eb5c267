package main

import (
	"fmt"
	"math"
	"os"
	"time"

	"github.com/go-gl/glfw/v3.3/glfw"

	"gzgl/internal/config"
	"gzgl/internal/fixed"
	"gzgl/internal/input"
	"gzgl/internal/level"
	"gzgl/internal/logging"
	"gzgl/internal/profiling"
	"gzgl/internal/scene"
)

const (
	walkSpeed  = 6
	runSpeed   = 12
	turnSpeed  = 4 * fixed.Angle1
	lookSpeed  = 2 * fixed.Angle1
	maxLook    = 60 * fixed.Angle1
	savePicW   = 320
	savePicH   = 200
	slowFrame  = 50 * time.Millisecond
	reportTime = time.Second
)

var stereoModes = []scene.StereoMode{scene.MonoView{}, scene.SideBySide{}, scene.RedCyan{}}

// ViewLoop owns the window, the renderer and the player for the run.
type ViewLoop struct {
	window   *glfw.Window
	renderer *scene.Renderer
	level    *level.Level
	player   *scene.Player
	keys     *input.Manager
	clock    *ticClock
	log      logging.Logger

	width, height int
	stereo        int
	profiling     bool
	shots         int

	frames     int
	lastReport time.Time
}

func (v *ViewLoop) Run() {
	v.lastReport = time.Now()
	for !v.window.ShouldClose() {
		v.tick()
	}
}

func (v *ViewLoop) tick() {
	profiling.ResetFrame()
	start := time.Now()
	glfw.PollEvents()

	for n := v.clock.pending(); n > 0; n-- {
		v.movePlayer()
	}
	v.handleActions()

	v.renderer.RenderView(v.player)
	if config.GetDrawSync() {
		v.window.SwapBuffers()
	}
	v.keys.EndFrame()
	v.frames++

	if d := time.Since(start); d > slowFrame {
		v.log.Debugf("slow frame: %v", d)
	}
	if time.Since(v.lastReport) >= reportTime {
		if v.profiling {
			v.log.Infof("fps %d\n%s", v.frames, profiling.Report())
		}
		v.frames = 0
		v.lastReport = time.Now()
	}
}

// movePlayer advances the player by one tic. There is no collision; the
// player is kept inside the level bounds and on the floor below.
func (v *ViewLoop) movePlayer() {
	mo := v.player.Mo
	mo.Settle()
	k := v.keys

	speed := fixed.FromInt(walkSpeed)
	if k.Held(input.ActionRun) {
		speed = fixed.FromInt(runSpeed)
	}
	if turn := k.Axis(input.ActionTurnLeft, input.ActionTurnRight); turn != 0 {
		mo.Angle += fixed.Angle(int32(turn) * int32(turnSpeed))
	}
	if look := k.Axis(input.ActionLookDown, input.ActionLookUp); look != 0 {
		p := int32(mo.Pitch) + int32(look)*int32(lookSpeed)
		mo.Pitch = fixed.Angle(min(max(p, -int32(maxLook)), int32(maxLook)))
	}

	fwd := k.Axis(input.ActionMoveForward, input.ActionMoveBackward)
	side := k.Axis(input.ActionStrafeRight, input.ActionStrafeLeft)
	if fwd != 0 || side != 0 {
		rad := mo.Angle.Radians()
		cos, sin := fixed.FromFloat(math.Cos(rad)), fixed.FromFloat(math.Sin(rad))
		f, s := fixed.FromFloat(float64(fwd)), fixed.FromFloat(float64(side))
		x := mo.X + fixed.Mul(speed, fixed.Mul(f, cos)+fixed.Mul(s, sin))
		y := mo.Y + fixed.Mul(speed, fixed.Mul(f, sin)-fixed.Mul(s, cos))
		if sub := v.level.PointInSubsector(x, y); sub != nil && sub.BBox.Contains(x, y) {
			mo.X, mo.Y = x, y
		}
	}
	if sub := v.level.PointInSubsector(mo.X, mo.Y); sub != nil {
		mo.Z = sub.Sector.FloorAt(mo.X, mo.Y)
	}
}

func (v *ViewLoop) handleActions() {
	k := v.keys
	if k.JustPressed(input.ActionQuit) {
		v.window.SetShouldClose(true)
	}
	if k.JustPressed(input.ActionCycleStereo) {
		v.stereo = (v.stereo + 1) % len(stereoModes)
		v.renderer.SetStereoMode(stereoModes[v.stereo])
	}
	if k.JustPressed(input.ActionToggleChaseCam) {
		v.player.ChaseCam = !v.player.ChaseCam
	}
	if k.JustPressed(input.ActionToggleLights) {
		config.SetLights(!config.GetLights())
		v.log.Infof("dynamic lights: %t", config.GetLights())
	}
	if k.JustPressed(input.ActionToggleProfiling) {
		v.profiling = !v.profiling
	}
	if k.JustPressed(input.ActionScreenshot) {
		v.writePicture(v.width, v.height)
	}
	if k.JustPressed(input.ActionSavePic) {
		v.writePicture(savePicW, savePicH)
	}
}

func (v *ViewLoop) writePicture(w, h int) {
	v.shots++
	name := fmt.Sprintf("gzgl-%dx%d-%03d.png", w, h, v.shots)
	f, err := os.Create(name)
	if err != nil {
		v.log.Errorf("could not create picture: %v", err)
		return
	}
	defer f.Close()
	if err := v.renderer.WriteSavePic(v.player, f, w, h); err != nil {
		v.log.Errorf("could not write %s: %v", name, err)
		return
	}
	v.log.Infof("wrote %s", name)
}

// resize follows the framebuffer size; the view keeps the full window.
func (v *ViewLoop) resize(width, height int) {
	if width <= 0 || height <= 0 {
		return
	}
	v.width, v.height = width, height
	v.renderer.SetViewportSize(width, height, height)
}
