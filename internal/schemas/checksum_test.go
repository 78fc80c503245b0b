package schemas

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGenerateChecksum_OrderInsensitive(t *testing.T) {
	a := GenerateChecksum([]string{"x@1", "y@2", "z@3"})
	b := GenerateChecksum([]string{"z@3", "x@1", "y@2"})
	assert.Equal(t, a, b)
}

func TestGenerateChecksum_Sensitivity(t *testing.T) {
	a := GenerateChecksum([]string{"x@1", "y@2"})
	b := GenerateChecksum([]string{"x@1", "y@3"})
	assert.NotEqual(t, a, b)
	assert.NotZero(t, a)
}

func TestGenerateChecksum_Empty(t *testing.T) {
	// Adler-32 of the empty string.
	assert.Equal(t, uint32(1), GenerateChecksum(nil))
}
