package playground

import (
	"sync"

	"github.com/xiaot623/gogo/playground/internal/domain"
)

type entry struct {
	msg domain.Message
	asm *Assembler
	// reasoning delivered through a dedicated upstream field rather than tags
	direct        string
	reasoningSeen bool
}

// MessageStore is the ordered message log of one session. Status changes
// follow loading -> incomplete -> complete, and any in-flight status may move
// to error. complete and error are terminal.
type MessageStore struct {
	mu      sync.RWMutex
	entries []*entry
	index   map[string]int
}

// NewMessageStore returns an empty log.
func NewMessageStore() *MessageStore {
	return &MessageStore{index: make(map[string]int)}
}

// Append inserts msg at the end of the log. A message without a status starts
// as loading.
func (s *MessageStore) Append(msg domain.Message) error {
	if !msg.Role.Valid() {
		return &domain.InvalidMessageTypeError{Type: string(msg.Role)}
	}
	if msg.Status == "" {
		msg.Status = domain.MessageStatusLoading
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.index[msg.ID]; ok {
		return &domain.DuplicateIDError{ID: msg.ID}
	}
	e := &entry{msg: msg, asm: NewAssembler(), reasoningSeen: msg.ReasoningContent != ""}
	if msg.Status.Terminal() {
		e.asm.Finish()
	}
	s.index[msg.ID] = len(s.entries)
	s.entries = append(s.entries, e)
	return nil
}

// ApplyFragment feeds a streamed fragment to the message's assembler.
func (s *MessageStore) ApplyFragment(id, fragment string) (domain.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, err := s.inFlight(id, domain.MessageStatusIncomplete)
	if err != nil {
		return domain.Message{}, err
	}
	e.msg.Status = domain.MessageStatusIncomplete
	e.asm.Feed(fragment)
	e.sync()
	return e.msg, nil
}

// ApplyReasoning appends reasoning text that the upstream delivered outside
// the content stream.
func (s *MessageStore) ApplyReasoning(id, text string) (domain.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, err := s.inFlight(id, domain.MessageStatusIncomplete)
	if err != nil {
		return domain.Message{}, err
	}
	e.msg.Status = domain.MessageStatusIncomplete
	e.direct += text
	e.sync()
	return e.msg, nil
}

// Complete finishes the message's stream and marks it complete.
func (s *MessageStore) Complete(id string) (domain.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, err := s.inFlight(id, domain.MessageStatusComplete)
	if err != nil {
		return domain.Message{}, err
	}
	e.asm.Finish()
	e.sync()
	e.msg.Status = domain.MessageStatusComplete
	return e.msg, nil
}

// Fail marks an in-flight message as error and replaces its content with the
// error description.
func (s *MessageStore) Fail(id string, info domain.ErrorInfo) (domain.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, err := s.inFlight(id, domain.MessageStatusError)
	if err != nil {
		return domain.Message{}, err
	}
	e.asm.Discard()
	e.msg.Status = domain.MessageStatusError
	e.msg.Content = info.Description()
	e.msg.Error = &info
	return e.msg, nil
}

// ToggleReasoning flips whether the reasoning section is shown expanded.
func (s *MessageStore) ToggleReasoning(id string) (domain.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i, ok := s.index[id]
	if !ok {
		return domain.Message{}, domain.ErrMessageNotFound
	}
	e := s.entries[i]
	e.msg.IsReasoningExpanded = !e.msg.IsReasoningExpanded
	return e.msg, nil
}

// Delete removes a message that is not in flight.
func (s *MessageStore) Delete(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	i, ok := s.index[id]
	if !ok {
		return domain.ErrMessageNotFound
	}
	if s.entries[i].msg.Status.InFlight() {
		return domain.ErrRequestInProgress
	}
	s.entries = append(s.entries[:i], s.entries[i+1:]...)
	s.reindex()
	return nil
}

// Clear removes every message.
func (s *MessageStore) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = nil
	s.index = make(map[string]int)
}

// Restore replaces the log with msgs, typically read back from storage. A
// message that was still in flight when saved cannot resume and is failed.
func (s *MessageStore) Restore(msgs []domain.Message) error {
	fresh := NewMessageStore()
	for _, m := range msgs {
		if m.Status.InFlight() {
			info := domain.ErrorInfo{Code: domain.ErrorCodeInterrupted}
			m.Status = domain.MessageStatusError
			m.Content = info.Description()
			m.Error = &info
		}
		if err := fresh.Append(m); err != nil {
			return err
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = fresh.entries
	s.index = fresh.index
	return nil
}

// Get returns the message with the given id.
func (s *MessageStore) Get(id string) (domain.Message, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	i, ok := s.index[id]
	if !ok {
		return domain.Message{}, false
	}
	return s.entries[i].msg, true
}

// Messages returns a snapshot of the log in insertion order.
func (s *MessageStore) Messages() []domain.Message {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.Message, 0, len(s.entries))
	for _, e := range s.entries {
		out = append(out, e.msg)
	}
	return out
}

// History returns the complete messages, the part of the log that is sent
// upstream as conversation context.
func (s *MessageStore) History() []domain.Message {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []domain.Message
	for _, e := range s.entries {
		if e.msg.Status == domain.MessageStatusComplete {
			out = append(out, e.msg)
		}
	}
	return out
}

// Len returns the number of messages.
func (s *MessageStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

func (s *MessageStore) inFlight(id string, to domain.MessageStatus) (*entry, error) {
	i, ok := s.index[id]
	if !ok {
		return nil, domain.ErrMessageNotFound
	}
	e := s.entries[i]
	if !e.msg.Status.InFlight() {
		return nil, &domain.InvalidTransitionError{ID: id, From: e.msg.Status, To: to}
	}
	return e, nil
}

func (s *MessageStore) reindex() {
	s.index = make(map[string]int, len(s.entries))
	for i, e := range s.entries {
		s.index[e.msg.ID] = i
	}
}

// sync copies the assembler output into the message.
func (e *entry) sync() {
	e.msg.Content = e.asm.Content()
	tagged := e.asm.Reasoning()
	switch {
	case e.direct != "" && tagged != "":
		e.msg.ReasoningContent = e.direct + ReasoningSeparator + tagged
	case e.direct != "":
		e.msg.ReasoningContent = e.direct
	default:
		e.msg.ReasoningContent = tagged
	}
	if !e.reasoningSeen && e.msg.ReasoningContent != "" {
		e.reasoningSeen = true
		e.msg.IsReasoningExpanded = false
	}
}
