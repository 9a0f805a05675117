package logx

import (
	"bytes"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
)

func TestInit(t *testing.T) {
	defer Init(Options{})

	var buf bytes.Buffer
	Init(Options{Verbose: true, DisableColor: true, Output: &buf})
	assert.Equal(t, logrus.DebugLevel, logrus.GetLevel())
	logrus.WithField("frame", 3).Debug("rendered")
	assert.Contains(t, buf.String(), "frame=3")
	assert.Contains(t, buf.String(), `msg=rendered`)

	buf.Reset()
	Init(Options{DisableColor: true, Output: &buf})
	logrus.Debug("hidden")
	assert.Empty(t, buf.String())
}
