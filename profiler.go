package nimbus

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

// FrameProfiler collects named CPU scope timings and counters for one frame.
// Not safe for concurrent scopes; the renderer only times whole passes.
type FrameProfiler struct {
	scopes map[string]time.Duration
	starts map[string]time.Time
	counts map[string]int
	order  []string
}

func NewFrameProfiler() *FrameProfiler {
	return &FrameProfiler{
		scopes: make(map[string]time.Duration),
		starts: make(map[string]time.Time),
		counts: make(map[string]int),
	}
}

func (p *FrameProfiler) BeginScope(name string) {
	p.starts[name] = time.Now()
	if _, ok := p.scopes[name]; !ok {
		p.order = append(p.order, name)
		p.scopes[name] = 0
	}
}

func (p *FrameProfiler) EndScope(name string) {
	if start, ok := p.starts[name]; ok {
		p.scopes[name] = time.Since(start)
	}
}

func (p *FrameProfiler) SetCount(name string, count int) {
	p.counts[name] = count
}

// ScopeDuration returns the last recorded duration for a scope.
func (p *FrameProfiler) ScopeDuration(name string) time.Duration {
	return p.scopes[name]
}

// Reset zeroes recorded times but keeps scope ordering stable for display.
func (p *FrameProfiler) Reset() {
	for k := range p.scopes {
		p.scopes[k] = 0
	}
}

func (p *FrameProfiler) String() string {
	var sb strings.Builder
	sb.WriteString("Timings (CPU):\n")
	for _, name := range p.order {
		ms := float64(p.scopes[name].Microseconds()) / 1000.0
		sb.WriteString(fmt.Sprintf("  %-15s: %.2f ms\n", name, ms))
	}
	if len(p.counts) > 0 {
		sb.WriteString("Counters:\n")
		keys := make([]string, 0, len(p.counts))
		for k := range p.counts {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			sb.WriteString(fmt.Sprintf("  %-15s: %d\n", k, p.counts[k]))
		}
	}
	return sb.String()
}
