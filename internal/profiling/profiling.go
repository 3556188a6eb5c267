package profiling

import (
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"
)

// Render-loop timers and counters, reset once per displayed frame.

// Clock accumulates time between paired Clock/Unclock calls. Nested pairs on the
// same clock are allowed; only the outermost pair is measured.
type Clock struct {
	name  string
	depth int
	start time.Time
	total time.Duration
}

func (c *Clock) Clock() {
	if c.depth == 0 {
		c.start = now()
	}
	c.depth++
}

func (c *Clock) Unclock() {
	if c.depth == 0 {
		return
	}
	c.depth--
	if c.depth == 0 {
		c.total += now().Sub(c.start)
	}
}

// Track starts the clock and returns the matching stop function.
// Usage: defer profiling.RenderAll.Track()()
func (c *Clock) Track() func() {
	c.Clock()
	return c.Unclock
}

func (c *Clock) Name() string         { return c.name }
func (c *Clock) Total() time.Duration { return c.total }
func (c *Clock) Reset()               { c.total, c.depth = 0, 0 }

var now = time.Now

var (
	mu       sync.Mutex
	clocks   []*Clock
	counters = make(map[string]int)
)

// NewClock registers a named clock that is included in Reset and Report.
func NewClock(name string) *Clock {
	c := &Clock{name: name}
	mu.Lock()
	clocks = append(clocks, c)
	mu.Unlock()
	return c
}

// The renderer's fixed clocks.
var (
	All        = NewClock("All")
	ProcessAll = NewClock("ProcessAll")
	RenderAll  = NewClock("RenderAll")
	Bsp        = NewClock("Bsp")
)

// Count adds n to a named per-frame counter.
func Count(name string, n int) {
	mu.Lock()
	counters[name] += n
	mu.Unlock()
}

// Counter returns the current value of a named counter.
func Counter(name string) int {
	mu.Lock()
	defer mu.Unlock()
	return counters[name]
}

// ResetFrame zeroes every clock and counter. Call once at the start of each frame.
func ResetFrame() {
	mu.Lock()
	defer mu.Unlock()
	for _, c := range clocks {
		c.Reset()
	}
	for k := range counters {
		delete(counters, k)
	}
}

// Snapshot returns the clock totals by name.
func Snapshot() map[string]time.Duration {
	mu.Lock()
	defer mu.Unlock()
	out := make(map[string]time.Duration, len(clocks))
	for _, c := range clocks {
		out[c.name] += c.total
	}
	return out
}

// Report formats the clocks slowest first followed by the counters in name order.
// Example: "All:4.2ms RenderAll:2.1ms Bsp:0.3ms | flats=12 walls=40"
func Report() string {
	ss := Snapshot()
	names := make([]string, 0, len(ss))
	for k := range ss {
		names = append(names, k)
	}
	sort.Slice(names, func(i, j int) bool {
		if ss[names[i]] == ss[names[j]] {
			return names[i] < names[j]
		}
		return ss[names[i]] > ss[names[j]]
	})
	parts := make([]string, 0, len(names))
	for _, n := range names {
		parts = append(parts, fmt.Sprintf("%s:%.1fms", n, float64(ss[n].Microseconds())/1000.0))
	}

	mu.Lock()
	keys := make([]string, 0, len(counters))
	for k := range counters {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	cs := make([]string, 0, len(keys))
	for _, k := range keys {
		cs = append(cs, fmt.Sprintf("%s=%d", k, counters[k]))
	}
	mu.Unlock()

	if len(cs) == 0 {
		return strings.Join(parts, " ")
	}
	return strings.Join(parts, " ") + " | " + strings.Join(cs, " ")
}
