package scene

import (
	"gzgl/internal/fixed"
	"gzgl/internal/level"
)

type clipRange struct {
	start, end fixed.Angle
}

// Clipper tracks which view angles are already hidden behind solid geometry.
// Ranges run counterclockwise from start to end; the Safe variants accept ranges
// that wrap through angle 0.
type Clipper struct {
	ranges []clipRange
}

func (c *Clipper) Clear() { c.ranges = c.ranges[:0] }

// Blocked reports whether the whole circle is hidden.
func (c *Clipper) Blocked() bool {
	return len(c.ranges) == 1 && c.ranges[0].start == 0 && c.ranges[0].end == fixed.AngleMax
}

func (c *Clipper) isRangeVisible(start, end fixed.Angle) bool {
	for _, r := range c.ranges {
		if start >= r.start && end <= r.end {
			return false
		}
		if r.start > end {
			break
		}
	}
	return true
}

func (c *Clipper) addClipRange(start, end fixed.Angle) {
	i := 0
	for i < len(c.ranges) && c.ranges[i].end < start && c.ranges[i].end+1 < start {
		i++
	}
	j := i
	for j < len(c.ranges) && (c.ranges[j].start <= end || (end < fixed.AngleMax && c.ranges[j].start == end+1)) {
		if c.ranges[j].start < start {
			start = c.ranges[j].start
		}
		if c.ranges[j].end > end {
			end = c.ranges[j].end
		}
		j++
	}
	merged := clipRange{start, end}
	switch {
	case i == j:
		c.ranges = append(c.ranges, clipRange{})
		copy(c.ranges[i+1:], c.ranges[i:])
		c.ranges[i] = merged
	default:
		c.ranges[i] = merged
		c.ranges = append(c.ranges[:i+1], c.ranges[j:]...)
	}
}

// SafeAddClipRange hides the range from start counterclockwise to end.
func (c *Clipper) SafeAddClipRange(start, end fixed.Angle) {
	if start > end {
		c.addClipRange(start, fixed.AngleMax)
		c.addClipRange(0, end)
		return
	}
	c.addClipRange(start, end)
}

// SafeCheckRange reports whether any part of the range is still visible.
func (c *Clipper) SafeCheckRange(start, end fixed.Angle) bool {
	if start > end {
		return c.isRangeVisible(start, fixed.AngleMax) || c.isRangeVisible(0, end)
	}
	return c.isRangeVisible(start, end)
}

// checkCoord picks the two box corners that bound the box's silhouette for each
// position of the viewer relative to the box (3x3 grid, row stride 4).
var checkCoord = [12][4]int{
	{level.BoxRight, level.BoxTop, level.BoxLeft, level.BoxBottom},
	{level.BoxRight, level.BoxTop, level.BoxLeft, level.BoxTop},
	{level.BoxRight, level.BoxBottom, level.BoxLeft, level.BoxTop},
	{0},
	{level.BoxLeft, level.BoxTop, level.BoxLeft, level.BoxBottom},
	{0, 0, 0, 0},
	{level.BoxRight, level.BoxBottom, level.BoxRight, level.BoxTop},
	{0},
	{level.BoxLeft, level.BoxTop, level.BoxRight, level.BoxBottom},
	{level.BoxLeft, level.BoxBottom, level.BoxRight, level.BoxBottom},
	{level.BoxLeft, level.BoxBottom, level.BoxRight, level.BoxTop},
}

// CheckBox reports whether any part of the box may be visible from (vx, vy).
func (c *Clipper) CheckBox(vx, vy fixed.Fixed, box level.BBox) bool {
	var bx, by int
	switch {
	case vx <= box[level.BoxLeft]:
		bx = 0
	case vx < box[level.BoxRight]:
		bx = 1
	default:
		bx = 2
	}
	switch {
	case vy >= box[level.BoxTop]:
		by = 0
	case vy > box[level.BoxBottom]:
		by = 1
	default:
		by = 2
	}
	pos := by<<2 + bx
	if pos == 5 {
		return true
	}
	check := checkCoord[pos]
	a1 := fixed.PointToAngle2(vx, vy, box[check[0]], box[check[1]])
	a2 := fixed.PointToAngle2(vx, vy, box[check[2]], box[check[3]])
	return c.SafeCheckRange(a2, a1)
}
