package randid

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGenerate(t *testing.T) {
	id := Generate(20)
	assert.Len(t, id, 20)
	for _, r := range id {
		assert.True(t, strings.ContainsRune(chars, r), "unexpected rune %q", r)
	}
	assert.Empty(t, Generate(0))
}

func TestRequest(t *testing.T) {
	assert.Len(t, Request(), RequestLength)
	assert.NotEqual(t, Request(), Request())
}
