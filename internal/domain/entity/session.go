package entity

import "time"

// DialogState conversation phase of one session.
type DialogState string

const (
	StateGreeting        DialogState = "greeting"
	StateCollecting      DialogState = "collecting"
	StateReady           DialogState = "ready"
	StateAwaitingContact DialogState = "awaiting_contact"
	StateClosed          DialogState = "closed"
)

// Session per-user conversation state. Exclusively owned by the
// orchestrator while a turn is processed; the session store serializes
// access per user.
type Session struct {
	UserID   int64
	ChatID   int64
	Username string

	Name  string
	Phone string

	State   DialogState
	Filters FilterSet

	// PendingKey the question asked last turn, used to bind bare-number
	// answers and skip intents to a concrete filter key.
	PendingKey FilterKey

	// ObjectionKey gentle-redirect target: after an objection reply, the
	// question flow prefers this key on the following turn.
	ObjectionKey FilterKey

	// History bounded tail of raw utterances, kept for objection context.
	History []string

	// ShownListingIDs listing ids sent in the most recent search reply,
	// handed off together with the contact on a viewing request.
	ShownListingIDs []int

	SearchOffset int

	ContactRequested bool
	SilenceNotified  bool

	CreatedAt    time.Time
	LastActivity time.Time
}

// NewSession creates a fresh session in the greeting phase.
func NewSession(userID, chatID int64, username string) *Session {
	now := time.Now()
	return &Session{
		UserID:       userID,
		ChatID:       chatID,
		Username:     username,
		State:        StateGreeting,
		Filters:      FilterSet{},
		CreatedAt:    now,
		LastActivity: now,
	}
}

// Touch updates the activity timestamp and re-arms the silence nudge.
func (s *Session) Touch() {
	s.LastActivity = time.Now()
	s.SilenceNotified = false
}

// RememberUtterance appends one raw utterance to the bounded history.
func (s *Session) RememberUtterance(text string, max int) {
	s.History = append(s.History, text)
	if max > 0 && len(s.History) > max {
		s.History = s.History[len(s.History)-max:]
	}
}

// ResetSearch clears filters, skip marks and search progress. Name and
// contact data survive: a returning user is not greeted from scratch.
func (s *Session) ResetSearch() {
	s.Filters = FilterSet{}
	s.PendingKey = ""
	s.ObjectionKey = ""
	s.ShownListingIDs = nil
	s.SearchOffset = 0
	s.ContactRequested = false
	if s.State != StateGreeting {
		s.State = StateCollecting
	}
}
