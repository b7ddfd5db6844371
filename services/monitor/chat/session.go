package chat

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/multiversx/mx-chain-core-go/core/check"
	logger "github.com/multiversx/mx-chain-logger-go"
	rootCommon "github.com/telerehab/rehab-monitoring/common"
	"github.com/telerehab/rehab-monitoring/services/monitor/common"
)

var log = logger.GetOrCreate("chat")

const defaultFetchLimit = 50

// State describes the lifecycle of a chat session
type State string

// The chat session states
const (
	StateDisconnected State = "disconnected"
	StateConnecting   State = "connecting"
	StateConnected    State = "connected"
)

// DisplayMessage is a chat message classified for display
type DisplayMessage struct {
	common.ChatMessage
	Outgoing    bool   `json:"outgoing"`
	DisplayName string `json:"displayName"`
}

// ArgsChatSession holds the dependencies of a chat session
type ArgsChatSession struct {
	Client       APIClient
	SelfID       string
	SelfRole     string
	PollInterval time.Duration
	FetchLimit   int
}

// chatSession exchanges messages with one interlocutor at a time over the backend,
// polling for new messages while connected. A logical cursor (the timestamp of the
// last seen message) limits each poll to unseen messages
type chatSession struct {
	client       APIClient
	selfID       string
	selfRole     string
	pollInterval time.Duration
	fetchLimit   int

	mut         sync.Mutex
	state       State
	otherID     string
	otherRole   string
	otherName   string
	cursor      string
	messages    []DisplayMessage
	seen        map[string]struct{}
	subscribers []func(DisplayMessage)
	cancelPoll  func()
	generation  uint64
}

// NewChatSession creates a new, disconnected chat session
func NewChatSession(args ArgsChatSession) (*chatSession, error) {
	if check.IfNil(args.Client) {
		return nil, errors.New("nil backend client")
	}
	if len(args.SelfID) == 0 {
		return nil, errors.New("empty self id")
	}
	if args.FetchLimit <= 0 {
		args.FetchLimit = defaultFetchLimit
	}

	return &chatSession{
		client:       args.Client,
		selfID:       args.SelfID,
		selfRole:     args.SelfRole,
		pollInterval: args.PollInterval,
		fetchLimit:   args.FetchLimit,
		state:        StateDisconnected,
		seen:         make(map[string]struct{}),
	}, nil
}

// Subscribe registers a handler notified once per new message, in arrival order
func (s *chatSession) Subscribe(handler func(DisplayMessage)) {
	if handler == nil {
		return
	}

	s.mut.Lock()
	s.subscribers = append(s.subscribers, handler)
	s.mut.Unlock()
}

// Connect establishes a session with the given interlocutor: any previous session is
// closed first, the display name is resolved (falling back to a locally-built one, a
// name lookup failure never fails the connect), the initial history is fetched and
// the poll loop is started
func (s *chatSession) Connect(ctx context.Context, otherID string, otherRole string) error {
	if len(otherID) == 0 {
		return ErrNoReceiver
	}

	s.mut.Lock()
	s.closeNoLock()
	s.state = StateConnecting
	s.otherID = otherID
	s.otherRole = otherRole
	s.otherName = fallbackName(otherID, otherRole)
	generation := s.generation
	s.mut.Unlock()

	name := s.resolveName(ctx, otherID, otherRole)

	s.mut.Lock()
	if s.generation != generation {
		// session was closed or replaced while resolving
		s.mut.Unlock()
		return nil
	}
	if len(name) > 0 {
		s.otherName = name
	}
	s.state = StateConnected

	var pollCtx context.Context
	pollCtx, s.cancelPoll = context.WithCancel(context.Background())
	s.mut.Unlock()

	log.Debug("chat session connected", "other id", otherID, "other role", otherRole)

	if s.pollInterval > 0 {
		rootCommon.CronJobStarter(pollCtx, func(ctx context.Context) {
			s.fetchOnce(ctx, generation)
		}, s.pollInterval)
	} else {
		s.fetchOnce(ctx, generation)
	}

	return nil
}

func (s *chatSession) resolveName(ctx context.Context, otherID string, otherRole string) string {
	if otherRole != common.RoleDoctor {
		return ""
	}

	resp, err := s.client.GetDoctorName(ctx, otherID)
	if err != nil {
		log.Debug("doctor name lookup failed, using local fallback", "doctor id", otherID, "error", err)
		return ""
	}
	if resp.Status != common.StatusSuccess || len(resp.DoctorName) == 0 {
		return ""
	}

	return resp.DoctorName
}

// fetchOnce performs one poll iteration. The generation guard makes results of
// in-flight fetches belonging to an already-closed session inert: they can not touch
// the cursor or message log of a newer session
func (s *chatSession) fetchOnce(ctx context.Context, generation uint64) {
	s.mut.Lock()
	if s.generation != generation {
		s.mut.Unlock()
		return
	}
	otherID := s.otherID
	cursor := s.cursor
	s.mut.Unlock()

	resp, err := s.client.GetChatMessages(ctx, s.selfID, otherID, s.fetchLimit, cursor)
	if err != nil {
		log.Debug("chat poll failed", "error", err)
		return
	}
	if resp.Status != common.StatusSuccess {
		log.Debug("chat poll rejected by backend", "message", resp.Message)
		return
	}

	s.mut.Lock()
	if s.generation != generation {
		s.mut.Unlock()
		return
	}

	// display keeps backend order, no client-side resort
	var fresh []DisplayMessage
	for _, msg := range resp.Messages {
		if len(msg.MessageID) > 0 {
			if _, ok := s.seen[msg.MessageID]; ok {
				continue
			}
			s.seen[msg.MessageID] = struct{}{}
		}

		display := s.classifyNoLock(msg)
		s.messages = append(s.messages, display)
		fresh = append(fresh, display)

		if len(msg.Timestamp) > 0 {
			s.cursor = msg.Timestamp
		}
	}
	subscribers := make([]func(DisplayMessage), len(s.subscribers))
	copy(subscribers, s.subscribers)
	s.mut.Unlock()

	for _, display := range fresh {
		for _, handler := range subscribers {
			handler(display)
		}
	}
}

func (s *chatSession) classifyNoLock(msg common.ChatMessage) DisplayMessage {
	outgoing := strings.EqualFold(msg.SenderID, s.selfID)
	displayName := s.otherName
	if outgoing {
		displayName = "You"
	}

	return DisplayMessage{
		ChatMessage: msg,
		Outgoing:    outgoing,
		DisplayName: displayName,
	}
}

// Send delivers one message to the connected interlocutor. Empty text and a missing
// receiver are rejected locally, without any network round-trip
func (s *chatSession) Send(ctx context.Context, text string) (*common.SendMessageResponse, error) {
	if len(strings.TrimSpace(text)) == 0 {
		return nil, ErrEmptyMessage
	}

	s.mut.Lock()
	otherID := s.otherID
	otherRole := s.otherRole
	state := s.state
	s.mut.Unlock()

	if len(otherID) == 0 {
		return nil, ErrNoReceiver
	}
	if state != StateConnected {
		return nil, ErrNotConnected
	}

	return s.client.SendChatMessage(ctx, common.ChatMessage{
		SenderID:     s.selfID,
		SenderType:   s.selfRole,
		ReceiverID:   otherID,
		ReceiverType: otherRole,
		Message:      text,
	})
}

// Messages returns a copy of the current display log, in arrival order
func (s *chatSession) Messages() []DisplayMessage {
	s.mut.Lock()
	defer s.mut.Unlock()

	out := make([]DisplayMessage, len(s.messages))
	copy(out, s.messages)

	return out
}

// Cursor returns the timestamp of the last seen message, empty when none was seen
func (s *chatSession) Cursor() string {
	s.mut.Lock()
	defer s.mut.Unlock()

	return s.cursor
}

// State returns the current session state
func (s *chatSession) State() State {
	s.mut.Lock()
	defer s.mut.Unlock()

	return s.state
}

// OtherName returns the resolved display name of the interlocutor
func (s *chatSession) OtherName() string {
	s.mut.Lock()
	defer s.mut.Unlock()

	return s.otherName
}

// Close stops polling and clears the cursor and the message log. The session can be
// connected again afterwards
func (s *chatSession) Close() {
	s.mut.Lock()
	defer s.mut.Unlock()

	s.closeNoLock()
}

func (s *chatSession) closeNoLock() {
	if s.cancelPoll != nil {
		s.cancelPoll()
		s.cancelPoll = nil
	}

	s.state = StateDisconnected
	s.otherID = ""
	s.otherRole = ""
	s.otherName = ""
	s.cursor = ""
	s.messages = nil
	s.seen = make(map[string]struct{})
	s.generation++
}

func fallbackName(otherID string, otherRole string) string {
	if otherRole == common.RoleDoctor {
		return "Doctor " + otherID
	}

	return "Patient " + otherID
}

// IsInterfaceNil returns true if the value under the interface is nil
func (s *chatSession) IsInterfaceNil() bool {
	return s == nil
}
