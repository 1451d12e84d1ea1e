package playground

import (
	"context"
	"encoding/json"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/xiaot623/gogo/playground/internal/domain"
)

// PayloadCheck inspects a built payload before anything is sent. A non-nil
// error rejects the submission.
type PayloadCheck func(ctx context.Context, payload domain.Payload) error

// Exchange is one in-flight request/response pair.
type Exchange struct {
	UserMessageID      string
	AssistantMessageID string
	Payload            domain.Payload

	ctx    context.Context
	cancel context.CancelFunc
	done   chan struct{}
	once   sync.Once
}

// Context is cancelled when the exchange is aborted.
func (x *Exchange) Context() context.Context { return x.ctx }

// Done is closed once the exchange has ended.
func (x *Exchange) Done() <-chan struct{} { return x.done }

func (x *Exchange) end() {
	x.once.Do(func() {
		x.cancel()
		close(x.done)
	})
}

// Session is the state of one playground user: configuration, message log,
// debug panel and at most one in-flight exchange.
type Session struct {
	ID       string
	Config   *ConfigStore
	Messages *MessageStore
	Debug    *DebugPanel

	// NewID generates message ids.
	NewID func() string
	// Now is the message clock.
	Now func() time.Time

	mu           sync.Mutex
	inflight     *Exchange
	lastRequest  json.RawMessage
	lastResponse strings.Builder
}

// NewSession returns a session with default configuration and an empty log.
func NewSession(id string) *Session {
	return &Session{
		ID:       id,
		Config:   NewConfigStore(),
		Messages: NewMessageStore(),
		Debug:    NewDebugPanel(),
		NewID:    func() string { return uuid.New().String() },
		Now:      time.Now,
	}
}

// Submit builds the payload for a new user message and, if it passes check,
// appends the user message and a loading assistant reply. Nothing is mutated
// when building or checking fails.
func (s *Session) Submit(ctx context.Context, content string, check PayloadCheck) (*Exchange, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.inflight != nil {
		return nil, domain.ErrRequestInProgress
	}
	if strings.TrimSpace(content) == "" {
		return nil, domain.ErrNoTextContent
	}

	now := s.Now()
	userMsg := domain.Message{
		ID:        s.NewID(),
		Role:      domain.RoleUser,
		CreatedAt: now,
		Content:   content,
		Status:    domain.MessageStatusComplete,
	}
	history := append(s.Messages.History(), userMsg)

	payload, err := BuildRequest(s.Config.Snapshot(), history)
	if err != nil {
		return nil, err
	}
	if check != nil {
		if err := check(ctx, payload); err != nil {
			return nil, err
		}
	}
	encoded, err := EncodePayload(payload)
	if err != nil {
		return nil, err
	}

	assistantMsg := domain.Message{
		ID:        s.NewID(),
		Role:      domain.RoleAssistant,
		CreatedAt: now,
		Status:    domain.MessageStatusLoading,
	}
	if err := s.Messages.Append(userMsg); err != nil {
		return nil, err
	}
	if err := s.Messages.Append(assistantMsg); err != nil {
		s.Messages.Delete(userMsg.ID)
		return nil, err
	}

	xctx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	x := &Exchange{
		UserMessageID:      userMsg.ID,
		AssistantMessageID: assistantMsg.ID,
		Payload:            payload,
		ctx:                xctx,
		cancel:             cancel,
		done:               make(chan struct{}),
	}
	s.inflight = x
	s.lastRequest = encoded
	s.lastResponse.Reset()
	return x, nil
}

// End releases the in-flight slot held by x.
func (s *Session) End(x *Exchange) {
	s.mu.Lock()
	if s.inflight == x {
		s.inflight = nil
	}
	s.mu.Unlock()
	x.end()
}

// Abort cancels the in-flight exchange and fails its reply.
func (s *Session) Abort() (domain.Message, error) {
	s.mu.Lock()
	x := s.inflight
	s.inflight = nil
	s.mu.Unlock()

	if x == nil {
		return domain.Message{}, domain.ErrNoRequestInProgress
	}
	msg, err := s.Messages.Fail(x.AssistantMessageID, domain.ErrorInfo{Code: domain.ErrorCodeCancelled})
	x.end()
	return msg, err
}

// InFlight returns the current exchange, or nil.
func (s *Session) InFlight() *Exchange {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.inflight
}

// RecordResponse appends raw upstream output for the response debug view.
func (s *Session) RecordResponse(raw string) {
	s.mu.Lock()
	s.lastResponse.WriteString(raw)
	s.mu.Unlock()
}

// Preview builds the payload the current configuration and history would
// produce, without a new user message.
func (s *Session) Preview() (json.RawMessage, error) {
	payload, err := BuildRequest(s.Config.Snapshot(), s.Messages.History())
	if err != nil {
		return nil, err
	}
	return EncodePayload(payload)
}

// DebugView is the content of the debug panel.
type DebugView struct {
	Active   domain.DebugTab   `json:"active"`
	Preview  json.RawMessage   `json:"preview,omitempty"`
	Request  json.RawMessage   `json:"request,omitempty"`
	Response string            `json:"response"`
	Error    *domain.ErrorInfo `json:"error,omitempty"`
}

// DebugView returns all three inspection views. A preview that cannot be
// built is reported in Error rather than failing the call.
func (s *Session) DebugView() DebugView {
	view := DebugView{Active: s.Debug.Active()}
	if preview, err := s.Preview(); err != nil {
		info := domain.Describe(err)
		view.Error = &info
	} else {
		view.Preview = preview
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	view.Request = s.lastRequest
	view.Response = s.lastResponse.String()
	return view
}
