package antivirus

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNoOpScanner(t *testing.T) {
	s := NewNoOpScanner()
	result := s.Scan(context.Background(), "cv.pdf", strings.NewReader("%PDF"))

	assert.False(t, result.Infected)
	assert.NoError(t, result.Error)
	assert.Equal(t, "noop", result.ScannerName)
	assert.True(t, s.Available(context.Background()))
}

func TestNormalizeAddress(t *testing.T) {
	assert.Equal(t, "tcp://localhost:3310", normalizeAddress("localhost:3310"))
	assert.Equal(t, "tcp://clamav:3310", normalizeAddress("tcp://clamav:3310"))
	assert.Equal(t, "/var/run/clamav/clamd.sock", normalizeAddress("/var/run/clamav/clamd.sock"))
}
