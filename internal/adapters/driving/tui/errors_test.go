package tui

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrors_AreDistinct(t *testing.T) {
	assert.NotEqual(t, ErrMissingAnswerService.Error(), ErrRebuildUnavailable.Error())
}

func TestErrMissingAnswerService_Message(t *testing.T) {
	assert.Contains(t, ErrMissingAnswerService.Error(), "answer service")
}

func TestErrRebuildUnavailable_Message(t *testing.T) {
	assert.Contains(t, ErrRebuildUnavailable.Error(), "rebuild")
}
