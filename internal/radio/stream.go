package radio

import (
	"context"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"

	"github.com/hajimehoshi/go-mp3"

	"github.com/Mavwarf/reveil/internal/audio"
	"github.com/Mavwarf/reveil/internal/httputil"
)

// Playback is a live audio source started by a Dialer. Stop is
// idempotent; SetVolume applies without interrupting playback.
type Playback interface {
	SetVolume(volume float64)
	Stop()
}

// Dialer connects to a station's stream and starts playback. The
// playback manager swaps in a fake implementation for failover tests.
type Dialer interface {
	Dial(ctx context.Context, station Station, volume float64) (Playback, error)
}

// HTTPDialer streams a station over HTTP, decodes it as MP3, and feeds
// the PCM into the shared audio context. Connection setup (dial + TLS +
// response headers) is bounded by HeaderTimeout; the body read has no
// deadline because a live stream never ends. Cancellation comes from
// the request context or Stop.
type HTTPDialer struct {
	// Client overrides the stream client, for tests. Nil uses a
	// transport with HeaderTimeout-bounded connection setup.
	Client *http.Client

	HeaderTimeout time.Duration
}

func (d *HTTPDialer) client() *http.Client {
	if d.Client != nil {
		return d.Client
	}
	timeout := d.HeaderTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &http.Client{
		Transport: &http.Transport{
			DialContext:           (&net.Dialer{Timeout: timeout}).DialContext,
			TLSHandshakeTimeout:   timeout,
			ResponseHeaderTimeout: timeout,
		},
	}
}

// Dial connects to the station and starts decoded playback. Any failure
// before audio is flowing (connection refused, non-2xx status, a body
// that isn't MP3, a sample rate the shared context can't take) is
// returned as an error so the caller can fail over.
func (d *HTTPDialer) Dial(ctx context.Context, station Station, volume float64) (Playback, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, station.StreamURL, nil)
	if err != nil {
		return nil, fmt.Errorf("station %s: new request: %w", station.ID, err)
	}
	req.Header.Set("User-Agent", "reveil")
	// Ask Icecast/Shoutcast servers for a plain stream without
	// interleaved metadata blocks.
	req.Header.Set("Icy-MetaData", "0")

	resp, err := d.client().Do(req)
	if err != nil {
		return nil, fmt.Errorf("station %s: connect: %w", station.ID, err)
	}
	if err := httputil.CheckStatus(resp, "station "+station.ID); err != nil {
		resp.Body.Close()
		return nil, err
	}

	dec, err := mp3.NewDecoder(resp.Body)
	if err != nil {
		resp.Body.Close()
		return nil, fmt.Errorf("station %s: decode: %w", station.ID, err)
	}
	if dec.SampleRate() != audio.SampleRate {
		resp.Body.Close()
		return nil, fmt.Errorf("station %s: unsupported sample rate %d", station.ID, dec.SampleRate())
	}

	player, err := audio.StartPCM(dec, volume)
	if err != nil {
		resp.Body.Close()
		return nil, fmt.Errorf("station %s: start playback: %w", station.ID, err)
	}
	return &httpStream{player: player, body: resp.Body}, nil
}

type httpStream struct {
	player *audio.Player
	body   io.Closer
}

func (s *httpStream) SetVolume(volume float64) {
	s.player.SetVolume(volume)
}

func (s *httpStream) Stop() {
	s.player.Stop()
	s.body.Close()
}
