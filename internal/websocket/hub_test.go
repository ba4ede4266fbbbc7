package websocket

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mockClient is a test double for Client that captures sent messages
type mockClient struct {
	id       string
	userID   uuid.UUID
	messages [][]byte
	mu       sync.Mutex
	closed   bool
}

func newMockClient(id string, userID uuid.UUID) *mockClient {
	return &mockClient{
		id:       id,
		userID:   userID,
		messages: make([][]byte, 0),
	}
}

func (m *mockClient) ID() string {
	return m.id
}

func (m *mockClient) UserID() uuid.UUID {
	return m.userID
}

func (m *mockClient) Send(data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return ErrClientClosed
	}
	m.messages = append(m.messages, data)
	return nil
}

func (m *mockClient) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}

func (m *mockClient) IsClosed() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.closed
}

func (m *mockClient) GetMessages() [][]byte {
	m.mu.Lock()
	defer m.mu.Unlock()
	copied := make([][]byte, len(m.messages))
	copy(copied, m.messages)
	return copied
}

func TestHub_RegisterUnregister(t *testing.T) {
	hub := NewHub()

	userA := uuid.New()
	userB := uuid.New()

	client1 := newMockClient("client-1", userA)
	client2 := newMockClient("client-2", userA)
	client3 := newMockClient("client-3", userB)

	// Register clients
	hub.Register(client1)
	hub.Register(client2)
	hub.Register(client3)

	// Verify counts
	assert.Equal(t, 2, hub.ClientCount(userA))
	assert.Equal(t, 1, hub.ClientCount(userB))
	assert.Equal(t, 0, hub.ClientCount(uuid.New()))

	// Unregister one client of userA
	hub.Unregister(client1)
	assert.Equal(t, 1, hub.ClientCount(userA))

	// Unregister remaining clients
	hub.Unregister(client2)
	hub.Unregister(client3)
	assert.Equal(t, 0, hub.ClientCount(userA))
	assert.Equal(t, 0, hub.ClientCount(userB))
}

func TestHub_Broadcast_UserIsolation(t *testing.T) {
	hub := NewHub()

	userA := uuid.New()
	userB := uuid.New()

	// Clients of userA
	client1a := newMockClient("client-1a", userA)
	client1b := newMockClient("client-1b", userA)

	// Client of userB
	client2 := newMockClient("client-2", userB)

	hub.Register(client1a)
	hub.Register(client1b)
	hub.Register(client2)

	// Broadcast to userA
	evt := EntryInserted(map[string]interface{}{"id": "42"})
	hub.Broadcast(userA, evt)

	// Give goroutines time to process
	time.Sleep(10 * time.Millisecond)

	// userA clients should receive the message
	msgs1a := client1a.GetMessages()
	msgs1b := client1b.GetMessages()
	assert.Len(t, msgs1a, 1, "client1a should receive 1 message")
	assert.Len(t, msgs1b, 1, "client1b should receive 1 message")

	// userB client should NOT receive the message
	msgs2 := client2.GetMessages()
	assert.Len(t, msgs2, 0, "client2 should not receive another user's message")
}

func TestHub_Broadcast_MultipleFanOut(t *testing.T) {
	hub := NewHub()
	userID := uuid.New()

	// Create multiple clients for the same user
	clients := make([]*mockClient, 5)
	for i := 0; i < 5; i++ {
		clients[i] = newMockClient("client-"+string(rune('a'+i)), userID)
		hub.Register(clients[i])
	}

	// Broadcast event
	evt := EntryUpdated(map[string]interface{}{"id": "1"})
	hub.Broadcast(userID, evt)

	// Give goroutines time to process
	time.Sleep(10 * time.Millisecond)

	// All clients should receive the message
	for i, c := range clients {
		msgs := c.GetMessages()
		assert.Len(t, msgs, 1, "client %d should receive message", i)
	}
}

func TestHub_ConcurrentAccess(t *testing.T) {
	hub := NewHub()

	var wg sync.WaitGroup
	clientCount := 50

	users := make([]uuid.UUID, 5)
	for i := range users {
		users[i] = uuid.New()
	}

	// Concurrently register clients
	clients := make([]*mockClient, clientCount)
	for i := 0; i < clientCount; i++ {
		clients[i] = newMockClient(fmt.Sprintf("client-%d", i), users[i%5])
	}

	for i := 0; i < clientCount; i++ {
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()
			hub.Register(clients[idx])
		}(i)
	}

	wg.Wait()

	// Verify total is correct (10 per user, 5 users)
	total := 0
	for _, u := range users {
		total += hub.ClientCount(u)
	}
	assert.Equal(t, clientCount, total)

	// Concurrently broadcast and unregister
	for i := 0; i < clientCount; i++ {
		wg.Add(2)
		go func(idx int) {
			defer wg.Done()
			evt := EntryInserted(map[string]interface{}{"id": fmt.Sprintf("%d", idx)})
			hub.Broadcast(users[idx%5], evt)
		}(i)
		go func(idx int) {
			defer wg.Done()
			hub.Unregister(clients[idx])
		}(i)
	}

	wg.Wait()

	// After unregistering all, counts should be 0
	for _, u := range users {
		assert.Equal(t, 0, hub.ClientCount(u))
	}
}

func TestHub_UnregisterNonexistent(t *testing.T) {
	hub := NewHub()

	client := newMockClient("client-1", uuid.New())

	// Should not panic when unregistering a client that was never registered
	require.NotPanics(t, func() {
		hub.Unregister(client)
	})
}

func TestHub_BroadcastToUnknownUser(t *testing.T) {
	hub := NewHub()

	// Should not panic when broadcasting to a user with no clients
	require.NotPanics(t, func() {
		evt := EntryInserted(map[string]interface{}{"id": "1"})
		hub.Broadcast(uuid.New(), evt)
	})
}
