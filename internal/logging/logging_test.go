package logging

import (
	"bytes"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
)

func TestLevelFor(t *testing.T) {
	assert.Equal(t, logrus.InfoLevel, LevelFor(-1))
	assert.Equal(t, logrus.InfoLevel, LevelFor(0))
	assert.Equal(t, logrus.DebugLevel, LevelFor(1))
	assert.Equal(t, logrus.TraceLevel, LevelFor(2))
	assert.Equal(t, logrus.TraceLevel, LevelFor(5))
}

func TestNew(t *testing.T) {
	var buf bytes.Buffer

	log := New(&buf, 0)
	log.Debug("hidden")
	log.Info("Being verbose")

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, "level=info")
	assert.Contains(t, out, `msg="Being verbose"`)

	buf.Reset()
	log = New(&buf, 1)
	log.Debug("shown")
	assert.Contains(t, buf.String(), "level=debug")
}

func TestDiscard(t *testing.T) {
	log := Discard()
	log.Info("nothing")
	assert.Equal(t, logrus.InfoLevel, log.GetLevel())
}
