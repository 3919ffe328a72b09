package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGetenvDefault(t *testing.T) {
	assert.Equal(t, "fallback", getenv("ORCD_AGENTSIM_TEST_UNSET", "fallback"))
}

func TestGetenvOverride(t *testing.T) {
	t.Setenv("ORCD_AGENTSIM_TEST_SET", "value")
	assert.Equal(t, "value", getenv("ORCD_AGENTSIM_TEST_SET", "fallback"))
}

func TestGetenvFloatParsesOrFallsBack(t *testing.T) {
	t.Setenv("ORCD_AGENTSIM_TEST_FLOAT", "12.5")
	assert.Equal(t, 12.5, getenvFloat("ORCD_AGENTSIM_TEST_FLOAT", 1.0))
	assert.Equal(t, 1.0, getenvFloat("ORCD_AGENTSIM_TEST_FLOAT_UNSET", 1.0))
}

func TestLogFatalIsOverridable(t *testing.T) {
	called := false
	original := logFatal
	defer func() { logFatal = original }()

	logFatal = func(format string, args ...any) { called = true }
	logFatal("test %s", "message")
	assert.True(t, called)
}
