// Package regexer contains the default [domain.RegexAdapter], backed by
// the standard library regexp engine. The matcher core never interprets
// patterns itself; this adapter is the Go host's registration.
package regexer

import (
	"regexp"

	"github.com/vinicius-lino-figueiredo/mongory/domain"
	"github.com/vinicius-lino-figueiredo/mongory/pkg/arena"
	"github.com/vinicius-lino-figueiredo/mongory/pkg/value"
)

// Regexer implements [domain.RegexAdapter].
type Regexer struct {
	compiled map[string]*regexp.Regexp
}

// NewRegexer returns a new implementation of domain.RegexAdapter.
// Compiled string patterns are cached; the registry that owns the
// adapter is single-threaded at evaluation time, so the cache is
// unsynchronized.
func NewRegexer() domain.RegexAdapter {
	return &Regexer{compiled: map[string]*regexp.Regexp{}}
}

// Match implements [domain.RegexAdapter].
func (r *Regexer) Match(a *arena.Arena, pattern, input *value.Value) bool {
	if input.Kind() != value.KindString {
		return false
	}
	re := r.regexpOf(a, pattern)
	if re == nil {
		return false
	}
	return re.MatchString(input.Str())
}

// Stringify implements [domain.RegexAdapter].
func (r *Regexer) Stringify(a *arena.Arena, pattern *value.Value) string {
	re := r.regexpOf(a, pattern)
	if re == nil {
		return "//"
	}
	buf := value.NewBuffer(a)
	buf.AppendByte('/')
	buf.AppendString(re.String())
	buf.AppendByte('/')
	return buf.String()
}

func (r *Regexer) regexpOf(a *arena.Arena, pattern *value.Value) *regexp.Regexp {
	switch pattern.Kind() {
	case value.KindRegex:
		re, _ := pattern.Payload().(*regexp.Regexp)
		return re
	case value.KindString:
		src := pattern.Str()
		if re, ok := r.compiled[src]; ok {
			return re
		}
		re, err := regexp.Compile(src)
		if err != nil {
			a.Fail(arena.KindParse, "invalid pattern: "+err.Error())
			return nil
		}
		r.compiled[src] = re
		return re
	default:
		return nil
	}
}
