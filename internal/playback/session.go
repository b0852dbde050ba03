package playback

import "context"

// SourceKind says what a session is playing.
type SourceKind int

const (
	SourceTone SourceKind = iota
	SourceRadio
)

func (k SourceKind) String() string {
	if k == SourceRadio {
		return "radio"
	}
	return "tone"
}

// Status is the connection state of a session's audio source. For the
// tone path it jumps straight to Connected; the radio path walks
// Connecting → Connected, or Connecting → Error once every candidate
// station has been visited.
type Status int

const (
	StatusIdle Status = iota
	StatusConnecting
	StatusConnected
	StatusError
)

func (s Status) String() string {
	switch s {
	case StatusConnecting:
		return "connecting"
	case StatusConnected:
		return "connected"
	case StatusError:
		return "error"
	default:
		return "idle"
	}
}

// session is one playback attempt chain. The token distinguishes it
// from superseded sessions: any result arriving for a token that no
// longer matches the manager's current session is stale and discarded.
type session struct {
	token      string
	kind       SourceKind
	status     Status
	currentURL string
	visited    map[string]bool
	volume     float64 // 0.0-1.0

	playback Playback
	cancel   context.CancelFunc // session context
	// cancelAttempt releases the successful dial attempt's context on
	// Stop. Cancelling it earlier would kill the live stream body.
	cancelAttempt context.CancelFunc
}

// Info is a read-only snapshot of the current session for the dashboard
// and status surfaces.
type Info struct {
	Active     bool     `json:"active"`
	Token      string   `json:"token,omitempty"`
	Source     string   `json:"source,omitempty"`
	Status     string   `json:"status"`
	CurrentURL string   `json:"current_url,omitempty"`
	Visited    []string `json:"visited,omitempty"`
}
