// README: Per-user collaborator session (enabled flag + user-facing log), passed in and returned by value.
package session

import (
	"time"

	"github.com/google/uuid"
)

type Level string

const (
	LevelInfo    Level = "info"
	LevelSuccess Level = "success"
	LevelWarning Level = "warning"
	LevelError   Level = "error"
)

type LogEntry struct {
	Level   Level     `json:"level"`
	Message string    `json:"message"`
	At      time.Time `json:"at"`
}

// Session is a value. Methods return an updated copy and never mutate the
// receiver's log in place.
type Session struct {
	ID                  string     `json:"id"`
	CollaboratorEnabled bool       `json:"collaborator_enabled"`
	RateLimitReported   bool       `json:"rate_limit_reported"`
	Log                 []LogEntry `json:"log"`
}

// New starts a session with the collaborator enabled.
func New() Session {
	return Session{ID: uuid.NewString(), CollaboratorEnabled: true}
}

// ValidID reports whether id could have been issued by New.
func ValidID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}

// StartLog clears the log for a new lookup. The collaborator flag survives.
func (s Session) StartLog() Session {
	s.Log = nil
	return s
}

func (s Session) WithLog(level Level, message string, at time.Time) Session {
	log := make([]LogEntry, len(s.Log), len(s.Log)+1)
	copy(log, s.Log)
	s.Log = append(log, LogEntry{Level: level, Message: message, At: at})
	return s
}

// Disable turns the collaborator off for the rest of the session. The first
// call reports it; later calls leave the log untouched.
func (s Session) Disable(message string, at time.Time) Session {
	s.CollaboratorEnabled = false
	if s.RateLimitReported {
		return s
	}
	s.RateLimitReported = true
	return s.WithLog(LevelError, message, at)
}
