package assistant

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"

	"golang.org/x/sync/semaphore"

	"spendlog/internal/core"
	applog "spendlog/internal/log"
	"spendlog/internal/prompt"
)

const (
	Greeting = "Hi! I'm your finance assistant. Ask me anything about your transactions, spending habits, or income trends."

	MissingKeyReply = "No API key found. Set GROQ_API_KEY in your environment or .env file."

	// HistoryWindow is how many transcript messages accompany each request.
	HistoryWindow = 10
)

// Suggestions are canned questions offered before the first message.
var Suggestions = []string{
	"What are my top expenses?",
	"How much did I spend on food?",
	"Am I saving money?",
	"Give me a budgeting tip based on my data.",
}

var (
	ErrEmptyMessage = errors.New("message is empty")
	ErrBusy         = errors.New("a chat request is already in flight")
)

// SnapshotFunc returns the current transaction list, most recent first.
type SnapshotFunc func() []core.Transaction

type Session struct {
	completer Completer
	snapshot  SnapshotFunc
	inflight  *semaphore.Weighted

	mu       sync.Mutex
	messages []Message
}

func NewSession(c Completer, snapshot SnapshotFunc) *Session {
	return &Session{
		completer: c,
		snapshot:  snapshot,
		inflight:  semaphore.NewWeighted(1),
		messages:  []Message{{Role: RoleAssistant, Content: Greeting}},
	}
}

// Messages returns a copy of the transcript.
func (s *Session) Messages() []Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Message(nil), s.messages...)
}

// Send posts text and returns the assistant's reply, which is also appended
// to the transcript. Failures of the endpoint are reported as an "Error: "
// reply rather than an error; only ErrEmptyMessage and ErrBusy are returned.
func (s *Session) Send(ctx context.Context, text string) (Message, error) {
	content := strings.TrimSpace(text)
	if content == "" {
		return Message{}, ErrEmptyMessage
	}
	if !s.inflight.TryAcquire(1) {
		return Message{}, ErrBusy
	}
	defer s.inflight.Release(1)

	if !s.completer.Configured() {
		return s.append(Message{Role: RoleAssistant, Content: MissingKeyReply}), nil
	}

	s.mu.Lock()
	s.messages = append(s.messages, Message{Role: RoleUser, Content: content})
	start := max(len(s.messages)-HistoryWindow, 0)
	history := append([]Message(nil), s.messages[start:]...)
	s.mu.Unlock()

	list := s.snapshot()
	system := prompt.Build(list, core.Analyze(list))

	reply, err := s.completer.Complete(ctx, system, history)
	if err != nil {
		slog.WarnContext(ctx, "Chat request failed",
			applog.FieldComponent, applog.ComponentAssistant,
			applog.FieldOperation, applog.OpChat,
			applog.FieldError, err)
		return s.append(Message{Role: RoleAssistant, Content: "Error: " + err.Error()}), nil
	}
	return s.append(Message{Role: RoleAssistant, Content: reply}), nil
}

func (s *Session) append(m Message) Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.messages = append(s.messages, m)
	return m
}
