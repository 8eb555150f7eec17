// file: internal/logging/logger_test.go
package logging

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetLogger_WithoutSetup_ReturnsNonNil(t *testing.T) {
	logger := GetLogger("test")
	require.NotNil(t, logger, "GetLogger should never return nil.")
}

func TestNoopLogger_WithField_ReturnsSelf(t *testing.T) {
	noop := GetNoopLogger()
	assert.Equal(t, noop, noop.WithField("component", "test"),
		"NoopLogger.WithField should return the same instance.")
}

func TestSetDefaultLogger_NilLogger_KeepsCurrent(t *testing.T) {
	current := defaultLogger
	SetDefaultLogger(nil)
	assert.Equal(t, current, defaultLogger,
		"SetDefaultLogger(nil) should not replace the default logger.")
}

func TestSetupDefaultLogger_InstallsZapLogger(t *testing.T) {
	t.Cleanup(func() { SetDefaultLogger(GetNoopLogger()) })

	logger := SetupDefaultLogger("debug")
	require.NotNil(t, logger, "SetupDefaultLogger should return a logger.")

	_, ok := defaultLogger.(*ZapLogger)
	assert.True(t, ok, "SetupDefaultLogger should install a ZapLogger as the default.")
}

func TestParseLevel_UnknownString_FallsBackToInfo(t *testing.T) {
	assert.Equal(t, parseLevel("info"), parseLevel("bogus"),
		"Unrecognized levels should fall back to info.")
}
