package workspace

import (
	"fmt"

	"github.com/google/uuid"
)

// ID prefixes, one per entity kind.
const (
	PrefixContent    = "content"
	PrefixPage       = "page"
	PrefixConnection = "conn"
)

// IDGenerator mints entity ids.
type IDGenerator interface {
	NewID(prefix string) string
}

// UUIDGenerator produces ids like "content-<uuid>".
type UUIDGenerator struct{}

func (UUIDGenerator) NewID(prefix string) string {
	return prefix + "-" + uuid.NewString()
}

// SequenceGenerator produces "page-1", "content-2", ... with one counter
// per prefix. Useful where ids must be predictable.
type SequenceGenerator struct {
	counters map[string]int
}

func (g *SequenceGenerator) NewID(prefix string) string {
	if g.counters == nil {
		g.counters = map[string]int{}
	}
	g.counters[prefix]++
	return fmt.Sprintf("%s-%d", prefix, g.counters[prefix])
}
