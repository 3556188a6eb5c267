package config

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaults(t *testing.T) {
	Reset()
	assert.True(t, GetTexture())
	assert.False(t, GetNoSkyClear())
	assert.Equal(t, float32(0.5), GetMaskThreshold())
	assert.Equal(t, float32(0.5), GetMaskSpriteThreshold())
	assert.False(t, GetForceMultipass())
	assert.Equal(t, float32(0.6), GetScreenDistance())
	assert.False(t, GetDrawSync())
	assert.False(t, GetUseFramebuffer())
	assert.True(t, GetLights())
	assert.Equal(t, 10, GetScreenBlocks())
}

func TestSettersClamp(t *testing.T) {
	t.Cleanup(Reset)

	SetMaskThreshold(1.7)
	assert.Equal(t, float32(1), GetMaskThreshold())
	SetMaskSpriteThreshold(-3)
	assert.Equal(t, float32(0), GetMaskSpriteThreshold())
	SetScreenBlocks(40)
	assert.Equal(t, 12, GetScreenBlocks())
	SetMaxPortalRecursion(-1)
	assert.Equal(t, 0, GetMaxPortalRecursion())
	SetScreenDistance(0)
	assert.Equal(t, float32(0.05), GetScreenDistance())
}

func TestLoadAppliesOnlyPresentKeys(t *testing.T) {
	t.Cleanup(Reset)

	src := `
gl_mask_threshold = 0.25
gl_forcemultipass = true
screenblocks = 8
`
	require.NoError(t, Load(strings.NewReader(src)))
	assert.Equal(t, float32(0.25), GetMaskThreshold())
	assert.True(t, GetForceMultipass())
	assert.Equal(t, 8, GetScreenBlocks())
	// untouched
	assert.Equal(t, float32(0.5), GetMaskSpriteThreshold())
	assert.True(t, GetTexture())
}

func TestLoadRejectsUnknownKeys(t *testing.T) {
	t.Cleanup(Reset)
	err := Load(strings.NewReader("gl_not_a_setting = 1\n"))
	assert.Error(t, err)
}

func TestSaveRoundTrip(t *testing.T) {
	t.Cleanup(Reset)

	SetNoSkyClear(true)
	SetEyeSeparation(0.07)
	var sb strings.Builder
	require.NoError(t, Save(&sb))

	Reset()
	require.NoError(t, Load(strings.NewReader(sb.String())))
	assert.True(t, GetNoSkyClear())
	assert.InDelta(t, 0.07, GetEyeSeparation(), 1e-6)
}
