package scene

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"gzgl/internal/fixed"
	"gzgl/internal/level"
)

func TestClipperMergesRanges(t *testing.T) {
	var c Clipper
	assert.True(t, c.SafeCheckRange(0, 100))

	c.SafeAddClipRange(100, 200)
	assert.False(t, c.SafeCheckRange(120, 180))
	assert.True(t, c.SafeCheckRange(50, 150), "partly hidden is still visible")

	c.SafeAddClipRange(201, 300)
	assert.Equal(t, []clipRange{{100, 300}}, c.ranges, "adjacent ranges merge")

	c.SafeAddClipRange(400, 500)
	assert.Len(t, c.ranges, 2)
	c.SafeAddClipRange(250, 450)
	assert.Equal(t, []clipRange{{100, 500}}, c.ranges)
}

func TestClipperWrapsThroughZero(t *testing.T) {
	var c Clipper
	c.SafeAddClipRange(fixed.AngleMax-10, 10)
	assert.Equal(t, []clipRange{{0, 10}, {fixed.AngleMax - 10, fixed.AngleMax}}, c.ranges)
	assert.False(t, c.SafeCheckRange(fixed.AngleMax-5, 5))
	assert.True(t, c.SafeCheckRange(fixed.AngleMax-20, 5))
	assert.False(t, c.Blocked())

	c.SafeAddClipRange(10, fixed.AngleMax-10)
	assert.True(t, c.Blocked())

	c.Clear()
	assert.False(t, c.Blocked())
	assert.True(t, c.SafeCheckRange(0, fixed.AngleMax))
}

func TestClipperCheckBox(t *testing.T) {
	box := level.BBox{}
	box[level.BoxTop] = fixed.FromInt(64)
	box[level.BoxBottom] = fixed.FromInt(-64)
	box[level.BoxLeft] = fixed.FromInt(100)
	box[level.BoxRight] = fixed.FromInt(200)

	var c Clipper
	assert.True(t, c.CheckBox(0, 0, box))

	// hide everything east of the viewer
	c.SafeAddClipRange(fixed.Angle270, fixed.Angle90)
	assert.False(t, c.CheckBox(0, 0, box))
	assert.True(t, c.CheckBox(fixed.FromInt(150), 0, box), "a box around the viewer is always visible")

	c.Clear()
	c.SafeAddClipRange(fixed.Angle90, fixed.Angle270)
	assert.True(t, c.CheckBox(0, 0, box))
}
