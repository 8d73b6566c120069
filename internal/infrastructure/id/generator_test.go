package id

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNumberGeneratorFormat(t *testing.T) {
	g := NewNumberGenerator("DH")
	pattern := regexp.MustCompile(`^DH\d{11}$`)

	for i := 0; i < 20; i++ {
		n := g.Next()
		assert.Regexp(t, pattern, n)
	}
}

func TestNumberGeneratorPrefix(t *testing.T) {
	g := NewNumberGenerator("ORD")
	assert.Regexp(t, `^ORD\d{11}$`, g.Next())
}

func TestUUIDGenerator(t *testing.T) {
	g := NewUUIDGenerator()
	a := g.NewID()
	b := g.NewID()
	assert.NotEmpty(t, a)
	assert.NotEqual(t, a, b)
}
