package profiling

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func fakeTime(t *testing.T) *time.Time {
	cur := time.Unix(1000, 0)
	now = func() time.Time { return cur }
	t.Cleanup(func() { now = time.Now })
	return &cur
}

func TestClockMeasuresOutermostPair(t *testing.T) {
	cur := fakeTime(t)
	c := NewClock("test.nested")

	c.Clock()
	*cur = cur.Add(2 * time.Millisecond)
	c.Clock()
	*cur = cur.Add(3 * time.Millisecond)
	c.Unclock()
	*cur = cur.Add(1 * time.Millisecond)
	c.Unclock()

	assert.Equal(t, 6*time.Millisecond, c.Total())

	// unbalanced unclock is ignored
	c.Unclock()
	assert.Equal(t, 6*time.Millisecond, c.Total())
}

func TestTrackAndResetFrame(t *testing.T) {
	cur := fakeTime(t)
	ResetFrame()

	func() {
		defer RenderAll.Track()()
		*cur = cur.Add(4 * time.Millisecond)
	}()
	Count("walls", 3)
	Count("walls", 2)

	assert.Equal(t, 4*time.Millisecond, Snapshot()["RenderAll"])
	assert.Equal(t, 5, Counter("walls"))
	assert.Contains(t, Report(), "RenderAll:4.0ms")
	assert.Contains(t, Report(), "walls=5")

	ResetFrame()
	assert.Zero(t, Snapshot()["RenderAll"])
	assert.Zero(t, Counter("walls"))
}
