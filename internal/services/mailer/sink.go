// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package mailer

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// SinkMessage is a captured mail with a retrievable preview.
type SinkMessage struct { //nolint:govet // fieldalignment: readability over optimization
	ID         string    `json:"id"`
	To         string    `json:"to"`
	Subject    string    `json:"subject"`
	Text       string    `json:"text"`
	HTML       string    `json:"html,omitempty"`
	ReceivedAt time.Time `json:"received_at"`
}

// Sink is a non-production mail acceptor. It never fails to accept a
// message and exposes a preview locator per message instead of delivering.
type Sink struct {
	mu       sync.Mutex
	messages map[string]*SinkMessage
}

// NewSink creates an empty capture sink.
func NewSink() *Sink {
	return &Sink{messages: make(map[string]*SinkMessage)}
}

// Accept stores the message and returns a result carrying its preview
// locator. Accept never fails.
func (s *Sink) Accept(msg *Message) *Result {
	captured := &SinkMessage{
		ID:         uuid.NewString(),
		To:         msg.To,
		Subject:    msg.Subject,
		Text:       msg.Text,
		HTML:       msg.HTML,
		ReceivedAt: time.Now(),
	}

	s.mu.Lock()
	s.messages[captured.ID] = captured
	s.mu.Unlock()

	return &Result{
		Provider:   SinkProvider,
		MessageID:  captured.ID,
		PreviewURL: "memory://messages/" + captured.ID,
	}
}

// Message retrieves a captured message by ID.
func (s *Sink) Message(id string) (*SinkMessage, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	msg, ok := s.messages[id]
	return msg, ok
}

// Len returns the number of captured messages.
func (s *Sink) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.messages)
}
