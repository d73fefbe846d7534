package session

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"sync"
	"time"

	"salon-agent/internal/transcript"
	"salon-agent/internal/utils"
)

var ErrVisitAlreadyConfirmed = errors.New("visit already confirmed for this call")

// ConfirmedVisit is the booking confirmed during a call. It is set at most
// once and never overwritten.
type ConfirmedVisit struct {
	Name      string `json:"name"`
	Purpose   string `json:"purpose"`
	VisitDate string `json:"visit_date"`
	VisitTime string `json:"visit_time"`
}

// Snapshot is the read-only view of a finished call handed to the after-call
// pipeline. It shares no mutable state with the originating CallSession.
type Snapshot struct {
	CallID         string
	StartedAt      time.Time
	Transcript     []transcript.Item
	ConfirmedVisit *ConfirmedVisit
}

// CallSession holds the mutable state of one phone interaction. It is owned
// by the call-handling collaborator for the duration of the call.
type CallSession struct {
	mu         sync.Mutex
	callID     string
	startedAt  time.Time
	transcript []transcript.Item
	confirmed  *ConfirmedVisit
}

func New() *CallSession {
	return &CallSession{
		callID:    NewCallID(),
		startedAt: time.Now().In(utils.Location()),
	}
}

func (s *CallSession) CallID() string {
	return s.callID
}

func (s *CallSession) StartedAt() time.Time {
	return s.startedAt
}

// AppendUtterance adds one role-tagged utterance to the transcript.
func (s *CallSession) AppendUtterance(role, content string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.transcript = append(s.transcript, transcript.Item{Role: role, Content: content})
}

// ConfirmVisit records the confirmed booking. A second confirmation for the
// same call is rejected, the first one wins.
func (s *CallSession) ConfirmVisit(visit ConfirmedVisit) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.confirmed != nil {
		return fmt.Errorf("%w: %s", ErrVisitAlreadyConfirmed, s.callID)
	}

	s.confirmed = &visit

	return nil
}

// Snapshot copies the session state for the after-call pipeline. Later
// mutations of the session do not leak into the returned snapshot.
func (s *CallSession) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	items := make([]transcript.Item, len(s.transcript))
	copy(items, s.transcript)

	var confirmed *ConfirmedVisit
	if s.confirmed != nil {
		visit := *s.confirmed
		confirmed = &visit
	}

	return Snapshot{
		CallID:         s.callID,
		StartedAt:      s.startedAt,
		Transcript:     items,
		ConfirmedVisit: confirmed,
	}
}

// NewCallID generates a globally unique call identifier in the form
// call_<UTC timestamp>_<random hex>.
func NewCallID() string {
	buf := make([]byte, 4)
	_, _ = rand.Read(buf)

	return fmt.Sprintf("call_%s_%s", time.Now().UTC().Format("20060102150405"), hex.EncodeToString(buf))
}
