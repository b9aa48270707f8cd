package infra

import (
	"context"
	"fmt"
	"log"
	"sort"
	"strings"
)

// EventBus receives pipeline stage events.
type EventBus interface {
	Emit(ctx context.Context, event string, fields map[string]any) error
}

// NullBus is a no-op event bus implementation.
type NullBus struct{}

func (n NullBus) Emit(ctx context.Context, event string, fields map[string]any) error { return nil }

// LogBus writes every event to a logger. Multi-line string fields (raw YAML,
// rendered JSON) are printed as indented blocks after the event line.
type LogBus struct{ L *log.Logger }

func (b LogBus) Emit(ctx context.Context, event string, fields map[string]any) error {
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var line strings.Builder
	var blocks []string
	line.WriteString(event)
	for _, k := range keys {
		if s, ok := fields[k].(string); ok && strings.Contains(s, "\n") {
			blocks = append(blocks, k+":\n"+indent(s))
			continue
		}
		fmt.Fprintf(&line, " %s=%v", k, fields[k])
	}
	b.L.Print(line.String())
	for _, blk := range blocks {
		b.L.Print(blk)
	}
	return nil
}

func indent(s string) string {
	lines := strings.Split(strings.TrimRight(s, "\n"), "\n")
	for i, l := range lines {
		lines[i] = "  | " + l
	}
	return strings.Join(lines, "\n")
}

// Ensure interface implementation at compile time
var _ EventBus = NullBus{}
var _ EventBus = LogBus{}
