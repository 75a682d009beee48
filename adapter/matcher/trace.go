package matcher

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/dolmen-go/contextio"
	"github.com/fatih/color"
	"github.com/vinicius-lino-figueiredo/mongory/pkg/arena"
	"github.com/vinicius-lino-figueiredo/mongory/pkg/value"
)

// traceRecord is one per-node match outcome annotated with tree depth.
type traceRecord struct {
	level   int
	message string
}

// traceSink is the flat stack shared by every node of a traced tree.
// Records append in evaluation order; PrintTrace sorts them back into
// tree order.
type traceSink struct {
	a       *arena.Arena
	records []traceRecord
}

func (s *traceSink) record(m Matcher, v *value.Value, matched bool) {
	b := m.baseOf()
	buf := value.NewBuffer(s.a)
	buf.AppendString(b.name)
	buf.AppendString(": ")
	buf.AppendString(traceResult(matched, b.reg != nil && b.reg.colorful))
	if f, ok := m.(*fieldMatcher); ok {
		buf.AppendString(`, field: "`)
		buf.AppendString(f.field)
		buf.AppendString(`"`)
	}
	buf.AppendString(", condition: ")
	buf.AppendString(b.condition.String(s.a))
	buf.AppendString(", record: ")
	if v == nil {
		buf.AppendString("Nothing")
	} else {
		buf.AppendString(v.String(s.a))
	}
	s.records = append(s.records, traceRecord{level: b.traceLevel, message: buf.String()})
}

// colorize wraps text in the SGR codes of a foreground/background pair
// followed by a single full reset. The registry flag decides
// colorization, not the terminal.
func colorize(text string, fg, bg color.Attribute) string {
	return fmt.Sprintf("\x1b[%d;%dm%s\x1b[0m", fg, bg, text)
}

func traceResult(matched, colorful bool) string {
	switch {
	case matched && colorful:
		return colorize("Matched", color.FgBlack, color.BgGreen)
	case matched:
		return "Matched"
	case colorful:
		return colorize("Dismatch", color.FgBlack, color.BgRed)
	default:
		return "Dismatch"
	}
}

// EnableTrace puts every node of the tree into traced mode, recording
// outcomes into a stack allocated against scratch. The scratch arena
// must outlive the trace session.
func EnableTrace(m Matcher, scratch *arena.Arena) {
	sink := &traceSink{a: scratch}
	m.Traverse(&TraverseContext{
		Arena: scratch,
		Callback: func(node Matcher, tc *TraverseContext) bool {
			b := node.baseOf()
			b.sink = sink
			b.traceLevel = tc.Level
			return true
		},
	})
}

// DisableTrace restores every node to plain matching and detaches the
// stack.
func DisableTrace(m Matcher) {
	m.Traverse(&TraverseContext{
		Callback: func(node Matcher, _ *TraverseContext) bool {
			b := node.baseOf()
			b.sink = nil
			b.traceLevel = 0
			return true
		},
	})
}

// Traced reports whether the tree currently records outcomes.
func Traced(m Matcher) bool {
	return m.baseOf().sink != nil
}

// PrintTrace writes the recorded outcomes in tree order, indenting two
// spaces per depth level. It is a no-op when tracing is not enabled.
func PrintTrace(ctx context.Context, m Matcher, w io.Writer) error {
	sink := m.baseOf().sink
	if sink == nil {
		return nil
	}
	cw := contextio.NewWriter(ctx, w)
	for _, rec := range sortTraces(sink.records, 0) {
		if _, err := fmt.Fprintf(cw, "%s%s\n", strings.Repeat("  ", rec.level), rec.message); err != nil {
			return err
		}
	}
	return nil
}

// sortTraces recovers tree order from the flat append-ordered stack:
// take each record at the target level and splice the contiguous block
// of deeper records collected before it, recursively, underneath it.
func sortTraces(records []traceRecord, level int) []traceRecord {
	var sorted, group []traceRecord
	for _, rec := range records {
		if rec.level == level {
			sorted = append(sorted, rec)
			sorted = append(sorted, sortTraces(group, level+1)...)
			group = nil
		} else {
			group = append(group, rec)
		}
	}
	return sorted
}

// Trace is the one-shot convenience: enable, match, print to stdout,
// disable.
func Trace(m Matcher, v *value.Value) bool {
	scratch := m.baseOf().a
	if v != nil && v.Arena() != nil {
		scratch = v.Arena()
	}
	EnableTrace(m, scratch)
	matched := m.Match(v)
	_ = PrintTrace(context.Background(), m, os.Stdout)
	DisableTrace(m)
	return matched
}
