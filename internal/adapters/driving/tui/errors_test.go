package tui

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrors_AreDistinct(t *testing.T) {
	assert.NotEqual(t, ErrMissingSearchService.Error(), ErrNilPorts.Error())
}

func TestErrMissingSearchService_Message(t *testing.T) {
	assert.Contains(t, ErrMissingSearchService.Error(), "search service")
}

func TestErrNilPorts_Message(t *testing.T) {
	assert.Contains(t, ErrNilPorts.Error(), "ports")
}
