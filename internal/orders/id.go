package orders

import (
	"fmt"
	"sync"
	"time"
)

// IDGenerator issues ids of the form ORD-<unix millis>-<seq>. Ids from one
// generator are strictly increasing, even if the clock steps back.
type IDGenerator struct {
	m          sync.Mutex
	now        func() time.Time
	lastMillis int64
	seq        int
}

func NewIDGenerator(now func() time.Time) *IDGenerator {
	if now == nil {
		now = time.Now
	}
	return &IDGenerator{now: now}
}

func (g *IDGenerator) Next() string {
	g.m.Lock()
	defer g.m.Unlock()

	ms := g.now().UnixMilli()
	switch {
	case ms > g.lastMillis:
		g.lastMillis = ms
		g.seq = 0
	case g.seq < 999:
		g.seq++
	default:
		g.lastMillis++
		g.seq = 0
	}
	return fmt.Sprintf("ORD-%d-%03d", g.lastMillis, g.seq)
}
