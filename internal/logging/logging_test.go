package logging

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLevelsRouteToWriters(t *testing.T) {
	var out, errOut bytes.Buffer
	l := NewWithWriters("scene", false, &out, &errOut)

	l.Debugf("hidden %d", 1)
	l.Infof("frame %d", 2)
	l.Warnf("lights off")
	l.Errorf("boom")

	assert.NotContains(t, out.String(), "hidden")
	assert.Contains(t, out.String(), "[scene] INFO: frame 2")
	assert.Contains(t, errOut.String(), "[scene] WARN: lights off")
	assert.Contains(t, errOut.String(), "[scene] ERROR: boom")

	l.SetDebug(true)
	l.Debugf("shown")
	assert.Contains(t, out.String(), "DEBUG: shown")
}

func TestNopLogger(t *testing.T) {
	l := NewNop()
	l.SetDebug(true)
	assert.False(t, l.DebugEnabled())
	l.Errorf("ignored")
}
