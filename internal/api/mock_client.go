package api

import (
	"context"
	"sync"
)

// MockChatClient is a mock implementation of ChatClientInterface for testing
type MockChatClient struct {
	// Mock return values
	Reply       string
	Err         error
	EndpointVal string

	// Replies, when set, are returned in order before falling back to Reply
	Replies []string

	// Call counters/recorders
	mu          sync.Mutex
	SendCalls   int
	Messages    []string
	CloseCalled bool
}

// Ensure MockChatClient implements ChatClientInterface
var _ ChatClientInterface = (*MockChatClient)(nil)

func (m *MockChatClient) Send(ctx context.Context, message string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.SendCalls++
	m.Messages = append(m.Messages, message)

	if m.Err != nil {
		return "", m.Err
	}
	if len(m.Replies) > 0 {
		reply := m.Replies[0]
		m.Replies = m.Replies[1:]
		return reply, nil
	}
	return m.Reply, nil
}

func (m *MockChatClient) Endpoint() string {
	return m.EndpointVal
}

func (m *MockChatClient) Close() {
	m.CloseCalled = true
}
