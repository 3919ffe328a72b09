package main

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLogFatalIsOverridable(t *testing.T) {
	var captured error
	original := logFatal
	defer func() { logFatal = original }()

	logFatal = func(msg string, err error) { captured = err }
	logFatal("boom", errors.New("failure"))

	assert.EqualError(t, captured, "failure")
}
