package simulator

import (
	"strconv"
	"sync"
	"time"
)

// Identifier prefixes.
const (
	PrefixComplaint  = "CM"
	PrefixAssignment = "ASN"
	PrefixUser       = "USR"
)

// fixedWidth lists prefixes whose numeric suffix is zero-padded and wraps.
var fixedWidth = map[string]int{
	PrefixComplaint:  6,
	PrefixAssignment: 6,
}

// IDGenerator issues prefixed identifiers that never repeat within a
// process until a fixed-width counter wraps (10^6 ids per prefix).
type IDGenerator struct {
	mu   sync.Mutex
	now  func() time.Time
	last map[string]uint64
}

// NewIDGenerator seeds counters from now.
func NewIDGenerator(now func() time.Time) *IDGenerator {
	if now == nil {
		now = time.Now
	}
	return &IDGenerator{now: now, last: make(map[string]uint64)}
}

// Next returns the next id for prefix: CM/ASN get six digits, anything
// else a monotonic millisecond stamp.
func (g *IDGenerator) Next(prefix string) string {
	g.mu.Lock()
	defer g.mu.Unlock()

	stamp := uint64(g.now().UnixMilli())
	width, fixed := fixedWidth[prefix]
	last, seen := g.last[prefix]

	var next uint64
	switch {
	case fixed:
		mod := pow10(width)
		if seen {
			next = (last + 1) % mod
		} else {
			next = stamp % mod
		}
		g.last[prefix] = next
		return prefix + pad(next, width)
	case seen && stamp <= last:
		next = last + 1
	default:
		next = stamp
	}
	g.last[prefix] = next
	return prefix + strconv.FormatUint(next, 10)
}

func pow10(n int) uint64 {
	v := uint64(1)
	for i := 0; i < n; i++ {
		v *= 10
	}
	return v
}

func pad(v uint64, width int) string {
	s := strconv.FormatUint(v, 10)
	for len(s) < width {
		s = "0" + s
	}
	return s
}
