package main

import (
	"errors"
	"io/fs"
	"os"
	"runtime"

	"github.com/go-gl/glfw/v3.3/glfw"
	"github.com/xlab/closer"

	"gzgl/internal/config"
	"gzgl/internal/fixed"
	"gzgl/internal/graphics/gldevice"
	"gzgl/internal/graphics/material"
	"gzgl/internal/input"
	"gzgl/internal/logging"
	"gzgl/internal/scene"
)

const (
	windowWidth  = 960
	windowHeight = 600
	settingsFile = "gzgl.toml"
)

func init() {
	runtime.LockOSThread()
}

func main() {
	log := logging.New("gzgl-view", os.Getenv("GZGL_DEBUG") != "")

	if err := config.LoadFile(settingsFile); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			log.Debugf("no %s, using default render settings", settingsFile)
		} else {
			log.Warnf("%v", err)
		}
	}

	if err := glfw.Init(); err != nil {
		log.Errorf("init glfw: %v", err)
		os.Exit(1)
	}
	closer.Bind(glfw.Terminate)

	window, err := setupWindow(windowWidth, windowHeight)
	if err != nil {
		log.Errorf("create window: %v", err)
		closer.Exit(1)
	}
	dev, err := gldevice.New()
	if err != nil {
		log.Errorf("%v", err)
		closer.Exit(1)
	}
	closer.Bind(dev.Release)
	log.Infof("GL %s, offscreen targets: %t", dev.Capabilities().Version, dev.Capabilities().Framebuffers)

	mats := material.NewTable(dev)
	world, err := buildDemo(mats)
	if err != nil {
		log.Errorf("%v", err)
		closer.Exit(1)
	}

	fbW, fbH := window.GetFramebufferSize()
	clock := newTicClock()
	r, err := scene.NewRenderer(scene.Deps{
		Device:    dev,
		Level:     world.lvl,
		Screen:    scene.Screen{Width: fbW, Height: fbH, Swap: window.SwapBuffers},
		Materials: mats,
		Lights:    world.lights,
		Clock:     clock,
		Logger:    log,
	})
	if err != nil {
		log.Errorf("%v", err)
		closer.Exit(1)
	}
	if err := r.AddOverlay(scene.NewCrosshair()); err != nil {
		log.Warnf("%v", err)
	}
	r.CameraTextures().Register(world.monitor, world.camera, 90)
	closer.Bind(r.Dispose)

	mo := &scene.Actor{X: fixed.FromInt(-128), ViewHeight: fixed.FromInt(41), Health: 100}
	mo.Settle()
	player := scene.NewPlayer(mo)

	keys := input.New()
	keys.Attach(window)

	loop := &ViewLoop{
		window:   window,
		renderer: r,
		level:    world.lvl,
		player:   player,
		keys:     keys,
		clock:    clock,
		log:      log,
		width:    fbW,
		height:   fbH,
	}
	window.SetFramebufferSizeCallback(func(_ *glfw.Window, w, h int) { loop.resize(w, h) })

	loop.Run()
	closer.Close()
}

func setupWindow(width, height int) (*glfw.Window, error) {
	glfw.WindowHint(glfw.ContextVersionMajor, 2)
	glfw.WindowHint(glfw.ContextVersionMinor, 1)
	glfw.WindowHint(glfw.StencilBits, 8)
	glfw.WindowHint(glfw.DepthBits, 24)

	window, err := glfw.CreateWindow(width, height, "gzgl-view", nil, nil)
	if err != nil {
		return nil, err
	}
	window.MakeContextCurrent()
	glfw.SwapInterval(1)
	return window, nil
}
