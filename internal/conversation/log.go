package conversation

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Log is the ordered, append-only message log of one conversation.
type Log struct {
	mu       sync.RWMutex
	messages []Message
	loading  bool
	now      func() time.Time
	onAppend []func(Message)
}

// LogOption configures a Log.
type LogOption func(*Log)

// WithClock overrides the time source used to stamp messages.
func WithClock(now func() time.Time) LogOption {
	return func(l *Log) {
		l.now = now
	}
}

// WithGreeting seeds the log with the standard greeting.
func WithGreeting() LogOption {
	return func(l *Log) {
		for _, m := range Greeting() {
			l.appendLocked(m)
		}
	}
}

// OnAppend registers fn to be called after every append, outside the lock.
func OnAppend(fn func(Message)) LogOption {
	return func(l *Log) {
		l.onAppend = append(l.onAppend, fn)
	}
}

// NewLog creates an empty log.
func NewLog(opts ...LogOption) *Log {
	l := &Log{
		messages: make([]Message, 0),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Append stamps m with an ID and creation time, adds it and returns the stored copy.
func (l *Log) Append(m Message) Message {
	l.mu.Lock()
	stored := l.appendLocked(m)
	hooks := l.onAppend
	l.mu.Unlock()

	for _, fn := range hooks {
		fn(stored)
	}
	return stored
}

func (l *Log) appendLocked(m Message) Message {
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	if m.CreatedAt.IsZero() {
		m.CreatedAt = l.now()
	}
	if m.Kind == "" {
		m.Kind = KindText
	}
	l.messages = append(l.messages, m)
	return m
}

// Messages returns a copy of the log in order.
func (l *Log) Messages() []Message {
	l.mu.RLock()
	defer l.mu.RUnlock()
	out := make([]Message, len(l.messages))
	copy(out, l.messages)
	return out
}

// Len returns the number of messages.
func (l *Log) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.messages)
}

// Last returns the most recent message.
func (l *Log) Last() (Message, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	if len(l.messages) == 0 {
		return Message{}, false
	}
	return l.messages[len(l.messages)-1], true
}

// Find returns the message with the given ID.
func (l *Log) Find(id string) (Message, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	for _, m := range l.messages {
		if m.ID == id {
			return m, true
		}
	}
	return Message{}, false
}

// Since returns the messages appended after the first n.
func (l *Log) Since(n int) []Message {
	l.mu.RLock()
	defer l.mu.RUnlock()
	if n >= len(l.messages) {
		return nil
	}
	if n < 0 {
		n = 0
	}
	out := make([]Message, len(l.messages)-n)
	copy(out, l.messages[n:])
	return out
}

// SetLoading sets the loading flag the chat surface uses to disable input.
func (l *Log) SetLoading(v bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.loading = v
}

// Loading reports whether a request is in flight.
func (l *Log) Loading() bool {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.loading
}

// Transcript is the serialized form of a conversation.
type Transcript struct {
	ExportedAt time.Time `json:"exported_at"`
	Messages   []Message `json:"messages"`
}

// Export serializes the log as indented JSON.
func (l *Log) Export() ([]byte, error) {
	t := Transcript{ExportedAt: l.now().UTC(), Messages: l.Messages()}
	data, err := json.MarshalIndent(t, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal transcript: %w", err)
	}
	return data, nil
}

// Save writes the transcript to path, creating parent directories.
func (l *Log) Save(path string) error {
	data, err := l.Export()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create transcript directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write transcript: %w", err)
	}
	return nil
}

// LoadTranscript reads a transcript written by Save.
func LoadTranscript(path string) (*Transcript, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read transcript: %w", err)
	}
	var t Transcript
	if err := json.Unmarshal(data, &t); err != nil {
		return nil, fmt.Errorf("failed to parse transcript: %w", err)
	}
	return &t, nil
}
