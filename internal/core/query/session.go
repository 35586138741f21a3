package query

import (
	"sync"

	"github.com/google/uuid"
)

const (
	// sessionMaxMessages caps stored turns per session; oldest are evicted.
	sessionMaxMessages = 20
	// sessionContextMessages is how many recent turns feed the chat prompt.
	sessionContextMessages = 12
)

// sessionStore keeps conversation history in memory. MySQL holds the durable
// copy; this store only feeds the chat prompt.
type sessionStore struct {
	mu       sync.Mutex
	sessions map[string][]chatMessage
}

var sessions = &sessionStore{sessions: make(map[string][]chatMessage)}

// NewSession registers a fresh session and returns its ID.
func NewSession() string {
	id := uuid.NewString()
	sessions.mu.Lock()
	sessions.sessions[id] = []chatMessage{}
	sessions.mu.Unlock()
	return id
}

// EnsureSession returns the given ID if non-empty, registering it on first
// use, otherwise a new one.
func EnsureSession(id string) string {
	if id == "" {
		return NewSession()
	}
	sessions.mu.Lock()
	if _, ok := sessions.sessions[id]; !ok {
		sessions.sessions[id] = []chatMessage{}
	}
	sessions.mu.Unlock()
	return id
}

// DropSession forgets a session's in-memory history.
func DropSession(id string) {
	sessions.mu.Lock()
	delete(sessions.sessions, id)
	sessions.mu.Unlock()
}

func activeSessions() int {
	sessions.mu.Lock()
	defer sessions.mu.Unlock()
	return len(sessions.sessions)
}

// appendExchange records one user/assistant turn, evicting the oldest
// messages past the cap.
func appendExchange(id, question, answer string) {
	sessions.mu.Lock()
	defer sessions.mu.Unlock()
	msgs := append(sessions.sessions[id],
		chatMessage{Role: "user", Content: question},
		chatMessage{Role: "assistant", Content: answer},
	)
	if len(msgs) > sessionMaxMessages {
		msgs = msgs[len(msgs)-sessionMaxMessages:]
	}
	sessions.sessions[id] = msgs
}

// history returns the most recent turns for prompting, oldest first.
func history(id string) []chatMessage {
	sessions.mu.Lock()
	defer sessions.mu.Unlock()
	msgs := sessions.sessions[id]
	if len(msgs) > sessionContextMessages {
		msgs = msgs[len(msgs)-sessionContextMessages:]
	}
	out := make([]chatMessage, len(msgs))
	copy(out, msgs)
	return out
}
