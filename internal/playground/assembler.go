// Package playground implements the per-session state of the chat playground:
// the streamed-content assembler, the message log, the request configuration
// and the request builder.
package playground

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/xiaot623/gogo/playground/internal/domain"
)

// ReasoningSeparator joins independent reasoning sections.
const ReasoningSeparator = "\n\n---\n\n"

// SpanKind tells whether a span of assembled text is visible or reasoning.
type SpanKind int

const (
	SpanContent SpanKind = iota
	SpanReasoning
)

// Span is a contiguous run of raw input text, delimiters excluded.
type Span struct {
	Kind SpanKind
	Text string
}

// Assembler splits streamed text into visible content and reasoning content
// delimited by <think>...</think>. A delimiter split across fragments is held
// back until it can be resolved.
type Assembler struct {
	pending   string // unresolved tail, possibly a partial delimiter
	open      bool   // inside <think>
	openSpan  strings.Builder
	spans     []Span
	content   strings.Builder
	reasoning []string
	lastRune  rune
	trimLead  bool // drop leading whitespace where a reasoning span was cut out
	finished  bool
}

// NewAssembler returns an empty assembler.
func NewAssembler() *Assembler {
	return &Assembler{}
}

// Feed appends a fragment and moves every fully resolved part of the buffer
// into content or reasoning.
func (a *Assembler) Feed(fragment string) {
	if a.finished || fragment == "" {
		return
	}
	a.pending += fragment
	a.scan()
}

func (a *Assembler) scan() {
	for {
		if !a.open {
			if i := strings.Index(a.pending, domain.ThinkOpenTag); i >= 0 {
				a.emitContent(a.pending[:i])
				a.pending = a.pending[i+len(domain.ThinkOpenTag):]
				a.open = true
				a.openSpan.Reset()
				continue
			}
			keep := partialSuffix(a.pending, domain.ThinkOpenTag)
			a.emitContent(a.pending[:len(a.pending)-keep])
			a.pending = a.pending[len(a.pending)-keep:]
			return
		}

		if i := strings.Index(a.pending, domain.ThinkCloseTag); i >= 0 {
			a.openSpan.WriteString(a.pending[:i])
			a.pending = a.pending[i+len(domain.ThinkCloseTag):]
			a.closeSpan()
			continue
		}
		keep := partialSuffix(a.pending, domain.ThinkCloseTag)
		a.openSpan.WriteString(a.pending[:len(a.pending)-keep])
		a.pending = a.pending[len(a.pending)-keep:]
		return
	}
}

func (a *Assembler) closeSpan() {
	text := a.openSpan.String()
	a.openSpan.Reset()
	a.open = false
	a.spans = append(a.spans, Span{Kind: SpanReasoning, Text: text})
	if text != "" {
		a.reasoning = append(a.reasoning, text)
	}
	a.trimLead = a.content.Len() == 0 || unicode.IsSpace(a.lastRune)
}

func (a *Assembler) emitContent(text string) {
	if text == "" {
		return
	}
	if n := len(a.spans); n > 0 && a.spans[n-1].Kind == SpanContent {
		a.spans[n-1].Text += text
	} else {
		a.spans = append(a.spans, Span{Kind: SpanContent, Text: text})
	}

	if a.trimLead {
		text = strings.TrimLeftFunc(text, unicode.IsSpace)
		if text == "" {
			return
		}
		a.trimLead = false
	}
	a.content.WriteString(text)
	a.lastRune, _ = utf8.DecodeLastRuneInString(text)
}

// Finish flushes the buffer. An opening delimiter that was never closed is
// kept as literal visible text.
func (a *Assembler) Finish() {
	if a.finished {
		return
	}
	a.finished = true
	if a.open {
		a.open = false
		a.emitContent(domain.ThinkOpenTag + a.openSpan.String() + a.pending)
		a.openSpan.Reset()
	} else {
		a.emitContent(a.pending)
	}
	a.pending = ""
}

// Discard drops any buffered partial delimiter or unclosed span and stops
// accepting input. Already resolved content is kept.
func (a *Assembler) Discard() {
	a.pending = ""
	a.open = false
	a.openSpan.Reset()
	a.finished = true
}

// Content returns the visible text resolved so far.
func (a *Assembler) Content() string {
	return a.content.String()
}

// Reasoning returns the text of all closed reasoning spans.
func (a *Assembler) Reasoning() string {
	return strings.Join(a.reasoning, ReasoningSeparator)
}

// Spans returns the resolved raw spans in input order.
func (a *Assembler) Spans() []Span {
	return append([]Span(nil), a.spans...)
}

// Finished reports whether Finish or Discard was called.
func (a *Assembler) Finished() bool {
	return a.finished
}

// partialSuffix returns the length of the longest proper prefix of tag that
// s ends with.
func partialSuffix(s, tag string) int {
	n := len(tag) - 1
	if n > len(s) {
		n = len(s)
	}
	for ; n > 0; n-- {
		if strings.HasSuffix(s, tag[:n]) {
			return n
		}
	}
	return 0
}
