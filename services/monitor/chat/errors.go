package chat

import "errors"

// ErrEmptyMessage signals that a send was attempted with no text
var ErrEmptyMessage = errors.New("empty message text")

// ErrNoReceiver signals that a send was attempted with no connected interlocutor
var ErrNoReceiver = errors.New("missing receiver id")

// ErrNotConnected signals an operation that requires an established session
var ErrNotConnected = errors.New("chat session not connected")
