package audio

import (
	"math"
	"sort"
	"time"
)

// ToneSegment defines a single tone burst with frequency, duration, and volume.
type ToneSegment struct {
	Frequency float64
	Duration  time.Duration
	Volume    float64 // 0.0 to 1.0
}

// SoundDefinition describes a named alarm tone composed of one or more
// tone segments. The segment sequence is synthesized once and looped
// for the duration of the ring.
type SoundDefinition struct {
	Name        string
	Description string
	Segments    []ToneSegment
}

const SampleRate = 44100

// Default is the tone used when a requested sound can't be resolved or
// started. It must always exist in Sounds.
const Default = "classic"

// Sounds is the registry of built-in alarm tones.
var Sounds = map[string]SoundDefinition{
	"classic": {
		Name:        "classic",
		Description: "Traditional double-ring alarm bell",
		Segments: []ToneSegment{
			{Frequency: 880, Duration: 120 * time.Millisecond, Volume: 0.8},
			{Frequency: 0, Duration: 60 * time.Millisecond, Volume: 0},
			{Frequency: 880, Duration: 120 * time.Millisecond, Volume: 0.8},
			{Frequency: 0, Duration: 400 * time.Millisecond, Volume: 0},
		},
	},
	"digital": {
		Name:        "digital",
		Description: "Four short high beeps, digital-watch style",
		Segments: []ToneSegment{
			{Frequency: 2000, Duration: 70 * time.Millisecond, Volume: 0.7},
			{Frequency: 0, Duration: 50 * time.Millisecond, Volume: 0},
			{Frequency: 2000, Duration: 70 * time.Millisecond, Volume: 0.7},
			{Frequency: 0, Duration: 50 * time.Millisecond, Volume: 0},
			{Frequency: 2000, Duration: 70 * time.Millisecond, Volume: 0.7},
			{Frequency: 0, Duration: 50 * time.Millisecond, Volume: 0},
			{Frequency: 2000, Duration: 70 * time.Millisecond, Volume: 0.7},
			{Frequency: 0, Duration: 600 * time.Millisecond, Volume: 0},
		},
	},
	"chime": {
		Name:        "chime",
		Description: "Gentle ascending three-note chime",
		Segments: []ToneSegment{
			{Frequency: 523.25, Duration: 200 * time.Millisecond, Volume: 0.5}, // C5
			{Frequency: 659.25, Duration: 200 * time.Millisecond, Volume: 0.5}, // E5
			{Frequency: 783.99, Duration: 350 * time.Millisecond, Volume: 0.6}, // G5
			{Frequency: 0, Duration: 500 * time.Millisecond, Volume: 0},
		},
	},
	"pulse": {
		Name:        "pulse",
		Description: "Low urgent pulsing buzz",
		Segments: []ToneSegment{
			{Frequency: 320, Duration: 180 * time.Millisecond, Volume: 0.9},
			{Frequency: 0, Duration: 120 * time.Millisecond, Volume: 0},
			{Frequency: 320, Duration: 180 * time.Millisecond, Volume: 0.9},
			{Frequency: 0, Duration: 320 * time.Millisecond, Volume: 0},
		},
	},
	"radar": {
		Name:        "radar",
		Description: "Rising sweep ping with a long tail",
		Segments: []ToneSegment{
			{Frequency: 600, Duration: 90 * time.Millisecond, Volume: 0.6},
			{Frequency: 900, Duration: 90 * time.Millisecond, Volume: 0.7},
			{Frequency: 1200, Duration: 160 * time.Millisecond, Volume: 0.8},
			{Frequency: 0, Duration: 700 * time.Millisecond, Volume: 0},
		},
	},
}

// Lookup returns the tone definition for name.
func Lookup(name string) (SoundDefinition, bool) {
	def, ok := Sounds[name]
	return def, ok
}

// Names returns the tone names sorted alphabetically, for listings.
func Names() []string {
	out := make([]string, 0, len(Sounds))
	for name := range Sounds {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// GeneratePCM produces stereo 16-bit signed little-endian PCM data for
// one cycle of the given sound.
func GeneratePCM(def SoundDefinition) []byte {
	totalSamples := 0
	for _, seg := range def.Segments {
		totalSamples += int(float64(SampleRate) * seg.Duration.Seconds())
	}
	// 4 bytes per sample frame (2 channels x 2 bytes per sample)
	buf := make([]byte, 0, totalSamples*4)

	for _, seg := range def.Segments {
		numSamples := int(float64(SampleRate) * seg.Duration.Seconds())
		fadeSamples := SampleRate * 5 / 1000 // 5ms fade in/out

		for i := 0; i < numSamples; i++ {
			t := float64(i) / float64(SampleRate)

			// Envelope to avoid clicks
			envelope := 1.0
			if i < fadeSamples {
				envelope = float64(i) / float64(fadeSamples)
			} else if i > numSamples-fadeSamples {
				envelope = float64(numSamples-i) / float64(fadeSamples)
			}

			var val float64
			if seg.Frequency > 0 {
				val = math.Sin(2*math.Pi*seg.Frequency*t) * seg.Volume * envelope
			}

			sample := int16(val * 32767)
			lo := byte(sample)
			hi := byte(sample >> 8)
			buf = append(buf, lo, hi, lo, hi) // L + R
		}
	}

	return buf
}
