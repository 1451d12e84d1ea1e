package main

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xiaot623/gogo/playground/internal/domain"
)

func newTestRenderer(t *testing.T) (*Renderer, *bytes.Buffer) {
	t.Helper()
	noColor := color.NoColor
	color.NoColor = true
	t.Cleanup(func() { color.NoColor = noColor })

	var buf bytes.Buffer
	return NewRenderer(&buf), &buf
}

func TestRendererStreamsIncrementally(t *testing.T) {
	r, buf := newTestRenderer(t)

	msg := domain.Message{ID: "a1", Role: domain.RoleAssistant, Status: domain.MessageStatusIncomplete}
	msg.Content = "Hel"
	r.Update(msg)
	msg.Content = "Hello"
	r.Update(msg)
	msg.Status = domain.MessageStatusComplete
	r.Update(msg)
	// Updates after completion are ignored.
	r.Update(msg)

	assert.Equal(t, "\nassistant: Hello\n", buf.String())
}

func TestRendererReasoningBeforeContent(t *testing.T) {
	r, buf := newTestRenderer(t)

	r.Update(domain.Message{ID: "a1", Role: domain.RoleAssistant, Status: domain.MessageStatusIncomplete, ReasoningContent: "thinking"})
	r.Update(domain.Message{ID: "a1", Role: domain.RoleAssistant, Status: domain.MessageStatusComplete, ReasoningContent: "thinking", Content: "answer"})

	assert.Equal(t, "\nassistant: thinking\nanswer\n", buf.String())
}

func TestRendererFailedMessage(t *testing.T) {
	r, buf := newTestRenderer(t)

	r.Update(domain.Message{ID: "a1", Role: domain.RoleAssistant, Status: domain.MessageStatusIncomplete, Content: "par"})
	r.Update(domain.Message{ID: "a1", Role: domain.RoleAssistant, Status: domain.MessageStatusError, Content: "Request cancelled"})

	assert.Equal(t, "\nassistant: par\nRequest cancelled\n", buf.String())
}

func TestRendererHandleFrames(t *testing.T) {
	r, buf := newTestRenderer(t)

	update, err := json.Marshal(domain.MessageUpdate{
		Type:      domain.MessageUpdateType,
		SessionID: "s1",
		Message:   domain.Message{ID: "u1", Role: domain.RoleUser, Status: domain.MessageStatusComplete, Content: "hi"},
	})
	require.NoError(t, err)
	r.Handle(update)
	r.Handle([]byte(`{"type":"error","error":{"code":"request_in_progress","message":"request in progress"}}`))

	assert.Equal(t, "\nuser: hi\n\n[request_in_progress] request in progress\n", buf.String())
}

func TestSuffix(t *testing.T) {
	assert.Equal(t, "lo", suffix("Hel", "Hello"))
	assert.Equal(t, "\nBye", suffix("Hello", "Bye"))
}
