package config

import "sync"

// RenderSettings holds the runtime-tunable values the scene renderer reads every frame.
type RenderSettings struct {
	mu sync.RWMutex

	texture             bool
	noSkyClear          bool
	maskThreshold       float32
	maskSpriteThreshold float32
	forceMultipass      bool
	lights              bool
	screenDistance      float32 // meters
	eyeSeparation       float32 // meters
	playerHeightMeters  float32
	drawSync            bool
	useFramebuffer      bool
	screenBlocks        int
	maxPortalRecursion  int
	capFPS              bool
	noInterpolate       bool
	deathCamera         bool
}

// Defaults match the engine's archived CVAR defaults.
const (
	DefaultMaskThreshold       = 0.5
	DefaultMaskSpriteThreshold = 0.5
	DefaultScreenDistance      = 0.6
	DefaultEyeSeparation       = 0.062
	DefaultPlayerHeightMeters  = 1.75
	DefaultScreenBlocks        = 10
	DefaultMaxPortalRecursion  = 4
)

var globalRenderSettings = newDefaultSettings()

func newDefaultSettings() *RenderSettings {
	return &RenderSettings{
		texture:             true,
		maskThreshold:       DefaultMaskThreshold,
		maskSpriteThreshold: DefaultMaskSpriteThreshold,
		lights:              true,
		screenDistance:      DefaultScreenDistance,
		eyeSeparation:       DefaultEyeSeparation,
		playerHeightMeters:  DefaultPlayerHeightMeters,
		screenBlocks:        DefaultScreenBlocks,
		maxPortalRecursion:  DefaultMaxPortalRecursion,
	}
}

// Reset restores every render setting to its default.
func Reset() {
	d := newDefaultSettings()
	s := globalRenderSettings
	s.mu.Lock()
	defer s.mu.Unlock()
	s.texture = d.texture
	s.noSkyClear = d.noSkyClear
	s.maskThreshold = d.maskThreshold
	s.maskSpriteThreshold = d.maskSpriteThreshold
	s.forceMultipass = d.forceMultipass
	s.lights = d.lights
	s.screenDistance = d.screenDistance
	s.eyeSeparation = d.eyeSeparation
	s.playerHeightMeters = d.playerHeightMeters
	s.drawSync = d.drawSync
	s.useFramebuffer = d.useFramebuffer
	s.screenBlocks = d.screenBlocks
	s.maxPortalRecursion = d.maxPortalRecursion
	s.capFPS = d.capFPS
	s.noInterpolate = d.noInterpolate
	s.deathCamera = d.deathCamera
}

func clamp01(v float32) float32 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// GetTexture reports whether world geometry is drawn textured.
func GetTexture() bool {
	globalRenderSettings.mu.RLock()
	defer globalRenderSettings.mu.RUnlock()
	return globalRenderSettings.texture
}

func SetTexture(enabled bool) {
	globalRenderSettings.mu.Lock()
	defer globalRenderSettings.mu.Unlock()
	globalRenderSettings.texture = enabled
}

// GetNoSkyClear reports whether the first sky portal fill is suppressed.
func GetNoSkyClear() bool {
	globalRenderSettings.mu.RLock()
	defer globalRenderSettings.mu.RUnlock()
	return globalRenderSettings.noSkyClear
}

func SetNoSkyClear(enabled bool) {
	globalRenderSettings.mu.Lock()
	defer globalRenderSettings.mu.Unlock()
	globalRenderSettings.noSkyClear = enabled
}

// GetMaskThreshold returns the alpha test threshold for masked world geometry.
func GetMaskThreshold() float32 {
	globalRenderSettings.mu.RLock()
	defer globalRenderSettings.mu.RUnlock()
	return globalRenderSettings.maskThreshold
}

// SetMaskThreshold sets the world alpha threshold, clamped to [0,1].
func SetMaskThreshold(v float32) {
	globalRenderSettings.mu.Lock()
	defer globalRenderSettings.mu.Unlock()
	globalRenderSettings.maskThreshold = clamp01(v)
}

// GetMaskSpriteThreshold returns the alpha test threshold for sprites and the translucent pass.
func GetMaskSpriteThreshold() float32 {
	globalRenderSettings.mu.RLock()
	defer globalRenderSettings.mu.RUnlock()
	return globalRenderSettings.maskSpriteThreshold
}

// SetMaskSpriteThreshold sets the sprite alpha threshold, clamped to [0,1].
func SetMaskSpriteThreshold(v float32) {
	globalRenderSettings.mu.Lock()
	defer globalRenderSettings.mu.Unlock()
	globalRenderSettings.maskSpriteThreshold = clamp01(v)
}

func GetForceMultipass() bool {
	globalRenderSettings.mu.RLock()
	defer globalRenderSettings.mu.RUnlock()
	return globalRenderSettings.forceMultipass
}

func SetForceMultipass(enabled bool) {
	globalRenderSettings.mu.Lock()
	defer globalRenderSettings.mu.Unlock()
	globalRenderSettings.forceMultipass = enabled
}

// GetLights reports whether dynamic lights are rendered. The renderer turns this
// off for the rest of the session when the light texture cannot be set up.
func GetLights() bool {
	globalRenderSettings.mu.RLock()
	defer globalRenderSettings.mu.RUnlock()
	return globalRenderSettings.lights
}

func SetLights(enabled bool) {
	globalRenderSettings.mu.Lock()
	defer globalRenderSettings.mu.Unlock()
	globalRenderSettings.lights = enabled
}

// GetScreenDistance returns the stereo screen distance in meters.
func GetScreenDistance() float32 {
	globalRenderSettings.mu.RLock()
	defer globalRenderSettings.mu.RUnlock()
	return globalRenderSettings.screenDistance
}

// SetScreenDistance sets the stereo screen distance; values below 5cm are raised to 5cm.
func SetScreenDistance(meters float32) {
	globalRenderSettings.mu.Lock()
	defer globalRenderSettings.mu.Unlock()
	if meters < 0.05 {
		meters = 0.05
	}
	globalRenderSettings.screenDistance = meters
}

// GetEyeSeparation returns the stereo interpupillary distance in meters.
func GetEyeSeparation() float32 {
	globalRenderSettings.mu.RLock()
	defer globalRenderSettings.mu.RUnlock()
	return globalRenderSettings.eyeSeparation
}

func SetEyeSeparation(meters float32) {
	globalRenderSettings.mu.Lock()
	defer globalRenderSettings.mu.Unlock()
	if meters < 0 {
		meters = 0
	}
	globalRenderSettings.eyeSeparation = meters
}

// GetPlayerHeightMeters returns the real-world eye height used to scale stereo separation.
func GetPlayerHeightMeters() float32 {
	globalRenderSettings.mu.RLock()
	defer globalRenderSettings.mu.RUnlock()
	return globalRenderSettings.playerHeightMeters
}

func SetPlayerHeightMeters(meters float32) {
	globalRenderSettings.mu.Lock()
	defer globalRenderSettings.mu.Unlock()
	if meters < 0.1 {
		meters = 0.1
	}
	globalRenderSettings.playerHeightMeters = meters
}

// GetDrawSync reports whether the buffer swap waits until the frame is drawn.
func GetDrawSync() bool {
	globalRenderSettings.mu.RLock()
	defer globalRenderSettings.mu.RUnlock()
	return globalRenderSettings.drawSync
}

func SetDrawSync(enabled bool) {
	globalRenderSettings.mu.Lock()
	defer globalRenderSettings.mu.Unlock()
	globalRenderSettings.drawSync = enabled
}

// GetUseFramebuffer reports whether camera textures render into an offscreen target.
func GetUseFramebuffer() bool {
	globalRenderSettings.mu.RLock()
	defer globalRenderSettings.mu.RUnlock()
	return globalRenderSettings.useFramebuffer
}

func SetUseFramebuffer(enabled bool) {
	globalRenderSettings.mu.Lock()
	defer globalRenderSettings.mu.Unlock()
	globalRenderSettings.useFramebuffer = enabled
}

// GetScreenBlocks returns the view size in tenths of the screen (10 and up is full screen).
func GetScreenBlocks() int {
	globalRenderSettings.mu.RLock()
	defer globalRenderSettings.mu.RUnlock()
	return globalRenderSettings.screenBlocks
}

// SetScreenBlocks sets the view size, clamped to [3,12].
func SetScreenBlocks(blocks int) {
	globalRenderSettings.mu.Lock()
	defer globalRenderSettings.mu.Unlock()
	if blocks < 3 {
		blocks = 3
	}
	if blocks > 12 {
		blocks = 12
	}
	globalRenderSettings.screenBlocks = blocks
}

// GetMaxPortalRecursion returns the deepest nested portal view that is rendered.
func GetMaxPortalRecursion() int {
	globalRenderSettings.mu.RLock()
	defer globalRenderSettings.mu.RUnlock()
	return globalRenderSettings.maxPortalRecursion
}

// SetMaxPortalRecursion sets the portal depth bound, clamped to [0,8].
func SetMaxPortalRecursion(depth int) {
	globalRenderSettings.mu.Lock()
	defer globalRenderSettings.mu.Unlock()
	if depth < 0 {
		depth = 0
	}
	if depth > 8 {
		depth = 8
	}
	globalRenderSettings.maxPortalRecursion = depth
}

func GetCapFPS() bool {
	globalRenderSettings.mu.RLock()
	defer globalRenderSettings.mu.RUnlock()
	return globalRenderSettings.capFPS
}

func SetCapFPS(enabled bool) {
	globalRenderSettings.mu.Lock()
	defer globalRenderSettings.mu.Unlock()
	globalRenderSettings.capFPS = enabled
}

func GetNoInterpolate() bool {
	globalRenderSettings.mu.RLock()
	defer globalRenderSettings.mu.RUnlock()
	return globalRenderSettings.noInterpolate
}

func SetNoInterpolate(enabled bool) {
	globalRenderSettings.mu.Lock()
	defer globalRenderSettings.mu.Unlock()
	globalRenderSettings.noInterpolate = enabled
}

// GetDeathCamera reports whether a dead player's view follows the killer camera.
func GetDeathCamera() bool {
	globalRenderSettings.mu.RLock()
	defer globalRenderSettings.mu.RUnlock()
	return globalRenderSettings.deathCamera
}

func SetDeathCamera(enabled bool) {
	globalRenderSettings.mu.Lock()
	defer globalRenderSettings.mu.Unlock()
	globalRenderSettings.deathCamera = enabled
}
