package assistant

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"spendlog/internal/core"
)

type mockCompleter struct {
	mock.Mock
	configured bool
}

func (m *mockCompleter) Configured() bool { return m.configured }

func (m *mockCompleter) Complete(ctx context.Context, system string, history []Message) (string, error) {
	args := m.Called(ctx, system, history)
	return args.String(0), args.Error(1)
}

func noTransactions() []core.Transaction { return nil }

func TestSession_StartsWithGreeting(t *testing.T) {
	s := NewSession(&mockCompleter{}, noTransactions)
	assert.Equal(t, []Message{{Role: RoleAssistant, Content: Greeting}}, s.Messages())
}

func TestSession_EmptyInputIsRejected(t *testing.T) {
	c := &mockCompleter{configured: true}
	s := NewSession(c, noTransactions)

	for _, in := range []string{"", "   ", "\n\t"} {
		_, err := s.Send(context.Background(), in)
		assert.True(t, errors.Is(err, ErrEmptyMessage))
	}
	assert.Len(t, s.Messages(), 1)
	c.AssertNotCalled(t, "Complete", mock.Anything, mock.Anything, mock.Anything)
}

func TestSession_MissingKeyAppendsFixedMessage(t *testing.T) {
	c := &mockCompleter{configured: false}
	s := NewSession(c, noTransactions)

	reply, err := s.Send(context.Background(), "how much on food?")
	require.NoError(t, err)
	assert.Equal(t, MissingKeyReply, reply.Content)

	msgs := s.Messages()
	require.Len(t, msgs, 2)
	assert.Equal(t, Message{Role: RoleAssistant, Content: MissingKeyReply}, msgs[1])
	c.AssertNotCalled(t, "Complete", mock.Anything, mock.Anything, mock.Anything)
}

func TestSession_SendsPromptBuiltFromSnapshot(t *testing.T) {
	list := []core.Transaction{{ID: "1", Type: core.Expense, Title: "Pizza", Amount: core.MustAmount("15"), Date: "2025-01-05", Category: core.CategoryFood}}
	c := &mockCompleter{configured: true}
	c.On("Complete", mock.Anything,
		mock.MatchedBy(func(system string) bool {
			return strings.Contains(system, "- Total Expenses: $15.00") && strings.Contains(system, "| Pizza |")
		}),
		[]Message{{Role: RoleAssistant, Content: Greeting}, {Role: RoleUser, Content: "food?"}},
	).Return("You spent $15.00 on food.", nil).Once()

	s := NewSession(c, func() []core.Transaction { return list })
	reply, err := s.Send(context.Background(), "  food?  ")

	require.NoError(t, err)
	assert.Equal(t, Message{Role: RoleAssistant, Content: "You spent $15.00 on food."}, reply)
	assert.Len(t, s.Messages(), 3)
	c.AssertExpectations(t)
}

func TestSession_FailureBecomesErrorReply(t *testing.T) {
	c := &mockCompleter{configured: true}
	c.On("Complete", mock.Anything, mock.Anything, mock.Anything).Return("", errors.New("Invalid API Key")).Once()
	c.On("Complete", mock.Anything, mock.Anything, mock.Anything).Return("fine now", nil).Once()

	s := NewSession(c, noTransactions)
	reply, err := s.Send(context.Background(), "hi")
	require.NoError(t, err)
	assert.Equal(t, "Error: Invalid API Key", reply.Content)

	reply, err = s.Send(context.Background(), "again")
	require.NoError(t, err)
	assert.Equal(t, "fine now", reply.Content)
	assert.Len(t, s.Messages(), 5)
}

func TestSession_SendsAtMostLastTenMessages(t *testing.T) {
	c := &mockCompleter{configured: true}
	var lastHistory []Message
	c.On("Complete", mock.Anything, mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) { lastHistory = args.Get(2).([]Message) }).
		Return("ok", nil)

	s := NewSession(c, noTransactions)
	for i := 0; i < 8; i++ {
		_, err := s.Send(context.Background(), fmt.Sprintf("q%d", i))
		require.NoError(t, err)
	}

	require.Len(t, lastHistory, HistoryWindow)
	assert.Equal(t, Message{Role: RoleUser, Content: "q7"}, lastHistory[HistoryWindow-1])
	// greeting, q0..q2 and their replies fall out of the window
	assert.Equal(t, Message{Role: RoleAssistant, Content: "ok"}, lastHistory[0])
	assert.Equal(t, Message{Role: RoleUser, Content: "q3"}, lastHistory[1])
}

func TestSession_SecondSendWhileInFlightIsBusy(t *testing.T) {
	started := make(chan struct{})
	release := make(chan struct{})
	c := &mockCompleter{configured: true}
	c.On("Complete", mock.Anything, mock.Anything, mock.Anything).
		Run(func(mock.Arguments) {
			close(started)
			<-release
		}).
		Return("done", nil).Once()

	s := NewSession(c, noTransactions)
	errc := make(chan error, 1)
	go func() {
		_, err := s.Send(context.Background(), "first")
		errc <- err
	}()
	<-started

	_, err := s.Send(context.Background(), "second")
	assert.True(t, errors.Is(err, ErrBusy))

	close(release)
	require.NoError(t, <-errc)

	msgs := s.Messages()
	require.Len(t, msgs, 3)
	assert.Equal(t, "first", msgs[1].Content)
	assert.Equal(t, "done", msgs[2].Content)
}
