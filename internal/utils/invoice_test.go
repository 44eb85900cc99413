package utils

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGenerateOrderReference(t *testing.T) {
	ref := GenerateOrderReference()
	// CMD-YYYYMMDD-HHMMSS-mmm-RRRR

	assert.True(t, strings.HasPrefix(ref, "CMD-"))

	parts := strings.Split(ref, "-")
	if assert.Len(t, parts, 5) {
		assert.Equal(t, "CMD", parts[0])
		assert.Len(t, parts[1], 8, "date part")
		assert.Len(t, parts[2], 6, "time part")
		assert.Len(t, parts[3], 3, "milliseconds part")
		assert.Len(t, parts[4], 4, "random part")
	}
}
