package playback

import (
	"context"
	"fmt"
	"math/rand"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/Mavwarf/reveil/internal/audio"
	"github.com/Mavwarf/reveil/internal/radio"
)

// RadioPrefix tags a sound id as a station reference: "radio:<stationId>".
const RadioPrefix = "radio:"

// Playback mirrors radio.Playback so tone and stream sources are
// interchangeable once started.
type Playback = radio.Playback

// EventKind classifies the user-facing signals a session emits.
type EventKind int

const (
	// EventStarted: audio is flowing (tone playing or station connected).
	EventStarted EventKind = iota
	// EventFailover: a station failed, trying the next candidate.
	EventFailover
	// EventExhausted: every station failed; falling back to the default tone.
	EventExhausted
	// EventSilent: tone playback failed twice; ringing without sound.
	EventSilent
)

// Event is a user-facing playback signal, tagged with the originating
// session's token so consumers can discard stale ones.
type Event struct {
	Token    string
	Kind     EventKind
	Message  string
	Severity string // "info" or "error"
}

// Manager resolves sound ids to audio sources and runs at most one
// playback session. Start is asynchronous: resolution, station failover
// and fallback run in a goroutine and report through Events. Stop and
// SetVolume are safe at any point of that chain; results of attempts
// that outlive their session are discarded by token.
type Manager struct {
	catalog        *radio.Catalog
	dialer         radio.Dialer
	shuffle        bool
	attemptTimeout time.Duration
	events         chan Event

	// startTone is a seam for tests; production wires audio.StartTone.
	startTone func(def audio.SoundDefinition, volume float64) (Playback, error)

	mu      sync.Mutex
	current *session
}

// Options configures a Manager.
type Options struct {
	Catalog        *radio.Catalog
	Dialer         radio.Dialer
	Shuffle        bool          // pick random unvisited stations on failover
	AttemptTimeout time.Duration // per-station connect bound; 0 means 10s
}

func NewManager(opts Options) *Manager {
	timeout := opts.AttemptTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	dialer := opts.Dialer
	if dialer == nil {
		dialer = &radio.HTTPDialer{HeaderTimeout: timeout}
	}
	catalog := opts.Catalog
	if catalog == nil {
		catalog = radio.NewCatalog(radio.DefaultStations())
	}
	return &Manager{
		catalog:        catalog,
		dialer:         dialer,
		shuffle:        opts.Shuffle,
		attemptTimeout: timeout,
		events:         make(chan Event, 16),
		startTone: func(def audio.SoundDefinition, volume float64) (Playback, error) {
			return audio.StartTone(def, volume)
		},
	}
}

// Events returns the stream of user-facing playback signals. The
// channel is buffered and never blocks a session; consumers that fall
// behind lose the oldest unread signals.
func (m *Manager) Events() <-chan Event {
	return m.events
}

// Start begins playback for soundID at volume (0-100) and returns the
// new session's token. Any previous session is stopped first. The
// actual connection work happens asynchronously.
func (m *Manager) Start(soundID string, volume int) string {
	m.Stop()

	ctx, cancel := context.WithCancel(context.Background())
	s := &session{
		token:   uuid.NewString(),
		status:  StatusConnecting,
		visited: make(map[string]bool),
		volume:  float64(clampVolume(volume)) / 100,
		cancel:  cancel,
	}

	m.mu.Lock()
	m.current = s
	m.mu.Unlock()

	go m.run(ctx, s, soundID)
	return s.token
}

// Stop cancels the current session: in-flight connection attempts are
// aborted and running audio is halted. Calling Stop with no session is
// a no-op.
func (m *Manager) Stop() {
	m.mu.Lock()
	s := m.current
	m.current = nil
	m.mu.Unlock()
	if s == nil {
		return
	}

	s.cancel()
	if s.playback != nil {
		s.playback.Stop()
	}
	if s.cancelAttempt != nil {
		s.cancelAttempt()
	}
}

// SetVolume applies a new volume (0-100) to the running source without
// interrupting playback. It also becomes the volume for any failover
// candidate still to come in this session.
func (m *Manager) SetVolume(volume int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.current == nil {
		return
	}
	m.current.volume = float64(clampVolume(volume)) / 100
	if m.current.playback != nil {
		m.current.playback.SetVolume(m.current.volume)
	}
}

// Current returns a snapshot of the active session.
func (m *Manager) Current() Info {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.current == nil {
		return Info{Status: StatusIdle.String()}
	}
	s := m.current
	visited := make([]string, 0, len(s.visited))
	for id := range s.visited {
		visited = append(visited, id)
	}
	sort.Strings(visited)
	return Info{
		Active:     true,
		Token:      s.token,
		Source:     s.kind.String(),
		Status:     s.status.String(),
		CurrentURL: s.currentURL,
		Visited:    visited,
	}
}

// run resolves soundID and drives the session to audio or to a
// surfaced failure. It owns the failover chain.
func (m *Manager) run(ctx context.Context, s *session, soundID string) {
	if stationID, ok := strings.CutPrefix(soundID, RadioPrefix); ok {
		station, found := m.catalog.Lookup(stationID)
		if !found {
			// Unknown station: no network attempt, straight to the
			// default tone.
			m.emit(s, EventExhausted, fmt.Sprintf("Unknown station %q, playing default tone", stationID), "error")
			m.setStatus(s, StatusError)
			m.runTone(s, audio.Default)
			return
		}
		m.runRadio(ctx, s, station)
		return
	}
	m.runTone(s, soundID)
}

// runRadio walks the failover chain starting at station. Each attempt
// strictly grows the visited set, so the loop ends after at most
// catalog-size attempts.
func (m *Manager) runRadio(ctx context.Context, s *session, station radio.Station) {
	m.setKind(s, SourceRadio)
	for {
		m.mu.Lock()
		s.visited[station.ID] = true
		s.status = StatusConnecting
		s.currentURL = station.StreamURL
		m.mu.Unlock()

		attemptCtx, cancelAttempt := context.WithCancel(ctx)
		timer := time.AfterFunc(m.attemptTimeout, cancelAttempt)
		pb, err := m.dialer.Dial(attemptCtx, station, m.volumeOf(s))
		timer.Stop()

		if err == nil {
			if !m.install(s, pb, cancelAttempt) {
				// Session was stopped while this attempt was in
				// flight: a late success must not resurrect audio.
				pb.Stop()
				cancelAttempt()
				return
			}
			m.setStatus(s, StatusConnected)
			m.emit(s, EventStarted, fmt.Sprintf("Playing %s", station.Name), "info")
			return
		}
		cancelAttempt()

		if ctx.Err() != nil {
			// Stopped (or superseded) mid-attempt; nothing to report.
			return
		}

		next, ok := m.nextCandidate(s, station)
		if !ok {
			m.setStatus(s, StatusError)
			m.emit(s, EventExhausted, "All stations failed, playing default tone", "error")
			m.runTone(s, audio.Default)
			return
		}
		m.emit(s, EventFailover, fmt.Sprintf("Failed to connect to %s, trying %s…", station.Name, next.Name), "info")
		station = next
	}
}

// nextCandidate picks the next unvisited station: random in shuffle
// mode, otherwise the first unvisited one in catalog order after the
// failed station, wrapping around.
func (m *Manager) nextCandidate(s *session, failed radio.Station) (radio.Station, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.shuffle {
		unvisited := make([]radio.Station, 0, m.catalog.Len())
		for _, st := range m.catalog.Stations() {
			if !s.visited[st.ID] {
				unvisited = append(unvisited, st)
			}
		}
		if len(unvisited) == 0 {
			return radio.Station{}, false
		}
		return unvisited[rand.Intn(len(unvisited))], true
	}

	st := failed
	for i := 0; i < m.catalog.Len(); i++ {
		next, ok := m.catalog.After(st.ID)
		if !ok {
			return radio.Station{}, false
		}
		if !s.visited[next.ID] {
			return next, true
		}
		st = next
	}
	return radio.Station{}, false
}

// runTone starts looped tone playback. An unknown name and a failed
// start both fall back once to the default tone; if the default itself
// can't start, the failure is surfaced and the session stays up
// soundless so stop/snooze keep working.
func (m *Manager) runTone(s *session, name string) {
	m.setKind(s, SourceTone)

	def, ok := audio.Lookup(name)
	if !ok {
		def, _ = audio.Lookup(audio.Default)
	}

	pb, err := m.startTone(def, m.volumeOf(s))
	if err != nil && def.Name != audio.Default {
		def, _ = audio.Lookup(audio.Default)
		pb, err = m.startTone(def, m.volumeOf(s))
	}
	if err != nil {
		m.setStatus(s, StatusError)
		m.emit(s, EventSilent, fmt.Sprintf("Audio unavailable (%v), alarm is ringing silently", err), "error")
		return
	}

	if !m.install(s, pb, nil) {
		pb.Stop()
		return
	}
	// A radio chain that exhausted all stations keeps its Error status;
	// a plain tone session reports Connected.
	m.mu.Lock()
	if s.status != StatusError {
		s.status = StatusConnected
	}
	m.mu.Unlock()
	m.emit(s, EventStarted, fmt.Sprintf("Playing tone %q", def.Name), "info")
}

// install hands a started playback to the session, unless the session
// has been superseded or stopped in the meantime.
func (m *Manager) install(s *session, pb Playback, cancelAttempt context.CancelFunc) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.current == nil || m.current.token != s.token {
		return false
	}
	s.playback = pb
	s.cancelAttempt = cancelAttempt
	pb.SetVolume(s.volume)
	return true
}

func (m *Manager) volumeOf(s *session) float64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return s.volume
}

func (m *Manager) setStatus(s *session, st Status) {
	m.mu.Lock()
	s.status = st
	m.mu.Unlock()
}

func (m *Manager) setKind(s *session, k SourceKind) {
	m.mu.Lock()
	s.kind = k
	m.mu.Unlock()
}

// emit sends a user-facing signal unless the session went stale. The
// send never blocks: a full buffer drops the signal.
func (m *Manager) emit(s *session, kind EventKind, message, severity string) {
	m.mu.Lock()
	stale := m.current == nil || m.current.token != s.token
	m.mu.Unlock()
	if stale {
		return
	}
	select {
	case m.events <- Event{Token: s.token, Kind: kind, Message: message, Severity: severity}:
	default:
	}
}

func clampVolume(v int) int {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}
