package engine

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"log/slog"

	"github.com/tartampluch/go-friends/internal/config"
)

// Session is the de-duplication state of one running process. It is created at
// startup, observes every snapshot and drops notified keys whose underlying
// interaction state changed, so that a fresh evaluation may notify again.
type Session struct {
	Keys         NotifiedKeys
	fingerprints map[string]string
}

// NewSession starts an empty session.
func NewSession() *Session {
	return &Session{
		Keys:         NotifiedKeys{},
		fingerprints: map[string]string{},
	}
}

// Observe compares the snapshot with the previous one. A friend whose
// interactions changed loses its message key; a friend that disappeared loses
// every key. It returns the IDs whose keys were cleared.
func (s *Session) Observe(friends []Friend) []string {
	var cleared []string
	seen := make(map[string]bool, len(friends))

	for i := range friends {
		f := &friends[i]
		seen[f.ID] = true

		fp := interactionFingerprint(f.Interactions)
		prev, known := s.fingerprints[f.ID]
		s.fingerprints[f.ID] = fp
		if known && prev != fp {
			key := MessageKey(f.ID)
			if s.Keys.Has(key) {
				s.Keys.Remove(key)
				cleared = append(cleared, f.ID)
				slog.Debug(config.MsgKeyCleared,
					config.LogKeyComponent, config.CompEngine,
					config.LogKeyFriend, f.ID,
				)
			}
		}
	}

	for id := range s.fingerprints {
		if !seen[id] {
			delete(s.fingerprints, id)
			s.Keys.RemoveFriend(id)
			cleared = append(cleared, id)
		}
	}
	return cleared
}

func interactionFingerprint(interactions []Interaction) string {
	h := sha256.New()
	for _, in := range interactions {
		fmt.Fprintf(h, "%s|%d|%s|%s\n", FormatDate(in.Date), in.Timestamp.UnixNano(), in.Method, in.Notes)
	}
	return hex.EncodeToString(h.Sum(nil))
}
