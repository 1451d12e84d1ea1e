package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/fatih/color"

	"github.com/xiaot623/gogo/playground/internal/domain"
	"github.com/xiaot623/gogo/playground/internal/transport/ws"
)

// Renderer prints message updates as they stream in. Reasoning is dimmed,
// failed replies are red.
type Renderer struct {
	out io.Writer

	mu      sync.Mutex
	printed map[string]*progress
	last    string

	reasoning *color.Color
	failed    *color.Color
	role      *color.Color
}

type progress struct {
	reasoning string
	content   string
	done      bool
}

// NewRenderer creates a renderer writing to out.
func NewRenderer(out io.Writer) *Renderer {
	return &Renderer{
		out:       out,
		printed:   make(map[string]*progress),
		reasoning: color.New(color.Faint, color.Italic),
		failed:    color.New(color.FgRed),
		role:      color.New(color.FgCyan, color.Bold),
	}
}

// Handle renders one websocket frame.
func (r *Renderer) Handle(data []byte) {
	var base ws.BaseMessage
	if err := json.Unmarshal(data, &base); err != nil {
		r.failed.Fprintf(r.out, "\n[invalid frame] %v\n", err)
		return
	}

	switch base.Type {
	case domain.MessageUpdateType:
		var update domain.MessageUpdate
		if err := json.Unmarshal(data, &update); err != nil {
			r.failed.Fprintf(r.out, "\n[invalid update] %v\n", err)
			return
		}
		r.Update(update.Message)
	case ws.TypeError:
		var msg ws.ErrorMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			return
		}
		r.failed.Fprintf(r.out, "\n[%s] %s\n", msg.Error.Code, msg.Error.Description())
	}
}

// Update prints what is new in msg since its previous update.
func (r *Renderer) Update(msg domain.Message) {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, ok := r.printed[msg.ID]
	if !ok {
		p = &progress{}
		r.printed[msg.ID] = p
	}
	if p.done {
		return
	}
	if r.last != msg.ID {
		r.role.Fprintf(r.out, "\n%s: ", msg.Role)
		r.last = msg.ID
	}

	if msg.Status == domain.MessageStatusError {
		if p.content != "" || p.reasoning != "" {
			fmt.Fprintln(r.out)
		}
		r.failed.Fprint(r.out, msg.Content)
		fmt.Fprintln(r.out)
		p.done = true
		return
	}

	if msg.ReasoningContent != p.reasoning && p.content == "" {
		r.reasoning.Fprint(r.out, suffix(p.reasoning, msg.ReasoningContent))
		p.reasoning = msg.ReasoningContent
	}
	if msg.Content != p.content {
		if p.content == "" && p.reasoning != "" {
			fmt.Fprintln(r.out)
		}
		fmt.Fprint(r.out, suffix(p.content, msg.Content))
		p.content = msg.Content
	}
	if msg.Status == domain.MessageStatusComplete {
		fmt.Fprintln(r.out)
		p.done = true
	}
}

// Full prints a message in one go.
func (r *Renderer) Full(msg domain.Message) {
	r.mu.Lock()
	delete(r.printed, msg.ID)
	r.last = ""
	r.mu.Unlock()
	r.Update(msg)
}

// suffix returns the part of next not yet printed. When next does not
// extend printed the whole text is reprinted on a fresh line.
func suffix(printed, next string) string {
	if strings.HasPrefix(next, printed) {
		return next[len(printed):]
	}
	return "\n" + next
}
