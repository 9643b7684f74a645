package orders

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestIDGenerator_Format(t *testing.T) {
	at := time.UnixMilli(1767225600123)
	g := NewIDGenerator(func() time.Time { return at })

	assert.Equal(t, "ORD-1767225600123-000", g.Next())
	assert.Equal(t, "ORD-1767225600123-001", g.Next())
}

func TestIDGenerator_StrictlyIncreasing(t *testing.T) {
	now := time.UnixMilli(1767225600000)
	g := NewIDGenerator(func() time.Time { return now })

	prev := g.Next()
	for i := 0; i < 2500; i++ {
		if i == 1200 {
			now = now.Add(-time.Second) // clock steps back
		}
		next := g.Next()
		assert.Greater(t, next, prev)
		prev = next
	}
}
