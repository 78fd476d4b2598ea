package logging

import (
	"bytes"
	"testing"

	"github.com/fatih/color"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetup(t *testing.T) {
	defer logrus.SetLevel(logrus.InfoLevel)

	require.NoError(t, Setup("debug"))
	assert.Equal(t, logrus.DebugLevel, logrus.GetLevel())
	assert.Equal(t, gin.DebugMode, gin.Mode())

	require.NoError(t, Setup("warn"))
	assert.Equal(t, logrus.WarnLevel, logrus.GetLevel())
	assert.Equal(t, gin.ReleaseMode, gin.Mode())

	assert.Error(t, Setup("verbose"))
}

func TestSetupFromEnv(t *testing.T) {
	defer logrus.SetLevel(logrus.InfoLevel)

	t.Setenv("LOG_LEVEL", "error")
	require.NoError(t, Setup(""))
	assert.Equal(t, logrus.ErrorLevel, logrus.GetLevel())
}

func TestBanner(t *testing.T) {
	noColor := color.NoColor
	color.NoColor = true
	defer func() { color.NoColor = noColor }()

	var buf bytes.Buffer
	Banner(&buf, "127.0.0.1:8000", "/srv/static")
	assert.Equal(t, "Serving /srv/static at http://127.0.0.1:8000/\nPress Ctrl+C to stop\n", buf.String())
}
