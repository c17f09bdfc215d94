// Package sidsynth renders a converted instrument event stream as
// audio: one SID-style voice with selectable waveforms, an ADSR
// envelope and a state-variable filter. It exists for auditioning
// presets, not for bit-exact chip emulation.
package sidsynth

import (
	"math"

	"github.com/olivierh59500/swi2remid/pkg/swi"
)

// SID control register bits
const (
	ctrlGate  = 0x01
	ctrlSync  = 0x02
	ctrlRing  = 0x04
	ctrlTest  = 0x08
	ctrlTri   = 0x10
	ctrlSaw   = 0x20
	ctrlPulse = 0x40
	ctrlNoise = 0x80
)

// Envelope phases
const (
	envAttack = iota
	envDecay
	envSustain
	envRelease
	envIdle
)

// SID envelope timing, attack and decay/release in milliseconds per
// rate nibble.
var (
	attackMs = [16]float64{2, 8, 16, 24, 38, 56, 68, 80, 100, 250, 500, 800, 1000, 3000, 5000, 8000}
	decayMs  = [16]float64{6, 24, 48, 72, 114, 168, 204, 240, 300, 750, 1500, 2400, 3000, 9000, 15000, 24000}
)

// Config sets up one audition run.
type Config struct {
	SampleRate int     // samples per second, default 44100
	FrameRate  int     // event frames per second, default 50
	BaseFreq   float64 // played note frequency in Hz, default middle C
	PlayFrames int     // frames to hold the note before release, default 3s worth
	Volume     float64 // output gain 0..1, default 0.5
}

func (c *Config) fill() {
	if c.SampleRate <= 0 {
		c.SampleRate = 44100
	}
	if c.FrameRate <= 0 {
		c.FrameRate = 50
	}
	if c.BaseFreq <= 0 {
		c.BaseFreq = 261.63
	}
	if c.PlayFrames <= 0 {
		c.PlayFrames = 3 * c.FrameRate
	}
	if c.Volume <= 0 {
		c.Volume = 0.5
	}
}

// Synth plays one conversion result as a single gated note. It
// implements audio.SampleSource.
type Synth struct {
	res *swi.Result
	cfg Config

	// frame sequencing
	frame        int
	evIdx        int
	samplesLeft  int
	framesPlayed int
	released     bool
	sustainWrap  bool
	seedSkip     bool

	// voice registers
	control byte
	pitch   int
	pulse   int
	cutoff  int
	mode    byte
	frvic   byte

	// oscillator
	phase    float64
	lfsr     uint32
	noiseVal float64

	// envelope
	envPhase int
	env      float64

	// filter state
	lp, bp float64
}

// New creates a synth playing the given conversion result.
func New(res *swi.Result, cfg Config) *Synth {
	cfg.fill()
	return &Synth{
		res:      res,
		cfg:      cfg,
		pulse:    res.InitialPulse,
		cutoff:   res.InitialCutoff,
		mode:     res.Mode,
		frvic:    res.FrVic,
		lfsr:     0x7FFFF8,
		envPhase: envAttack,
	}
}

// Render fills buf with mono samples and reports whether the note is
// still sounding.
func (s *Synth) Render(buf []int16) bool {
	for i := range buf {
		if s.envPhase == envIdle {
			buf[i] = 0
			continue
		}
		if s.samplesLeft == 0 {
			s.advanceFrame()
		}
		s.samplesLeft--
		buf[i] = s.sample()
	}
	return s.envPhase != envIdle
}

// advanceFrame applies the pending frame's events and steps the frame
// cursor, honoring the stream's loop or sustain mechanics.
func (s *Synth) advanceFrame() {
	s.samplesLeft = s.cfg.SampleRate / s.cfg.FrameRate

	if !s.released && s.framesPlayed >= s.cfg.PlayFrames {
		s.released = true
		s.control &^= ctrlGate
		s.envPhase = envRelease
	}
	s.framesPlayed++

	for s.evIdx < len(s.res.Events) && s.res.Events[s.evIdx].Frame == s.frame {
		s.apply(s.res.Events[s.evIdx])
		s.evIdx++
	}

	s.frame++
	if s.frame < s.res.Horizon {
		return
	}
	if s.res.Class == swi.ClassLooping {
		s.frame = s.res.LoopFrame
		if s.res.LoopToSeed {
			// Re-enter after the one-time seed delta.
			s.frame = 0
			s.seedSkip = true
		}
	} else {
		// Replay the sustain region, skipping the trailer's pitch
		// return and control re-assert.
		s.frame = s.res.AttackFrames
		s.sustainWrap = true
	}
	s.evIdx = 0
	for s.evIdx < len(s.res.Events) && s.res.Events[s.evIdx].Frame < s.frame {
		s.evIdx++
	}
}

func (s *Synth) apply(ev swi.FrameEvent) {
	skipVoice := s.sustainWrap && ev.Frame == s.res.AttackFrames

	if ev.HasControl && !skipVoice {
		s.setControl(ev.Control)
	}
	if ev.HasPitchDelta && !skipVoice {
		if s.seedSkip && ev.Frame == 0 {
			s.seedSkip = false
		} else {
			s.pitch += ev.PitchDelta
		}
	}
	if ev.HasPulse {
		s.pulse = ev.Pulse
	}
	if ev.HasCutoff {
		s.cutoff = ev.Cutoff
	}
	if ev.HasMode {
		s.mode = ev.Mode
	}
	if ev.HasFrVic {
		s.frvic = ev.FrVic
	}
}

func (s *Synth) setControl(c byte) {
	if s.released {
		c &^= ctrlGate
	}
	if c&ctrlTest != 0 {
		s.phase = 0
	}
	if s.control&ctrlGate != 0 && c&ctrlGate == 0 {
		s.envPhase = envRelease
	}
	s.control = c
}

func (s *Synth) sample() int16 {
	v := s.oscillator()
	v = s.filter(v)
	v *= s.envelopeStep() * s.cfg.Volume

	out := v * 32767
	if out > 32767 {
		out = 32767
	} else if out < -32768 {
		out = -32768
	}
	return int16(out)
}

func (s *Synth) oscillator() float64 {
	if s.control&ctrlTest != 0 {
		return 0
	}

	freq := s.cfg.BaseFreq * math.Pow(2, float64(s.pitch)/12)
	step := freq / float64(s.cfg.SampleRate)
	s.phase += step
	if s.phase >= 1 {
		s.phase -= math.Floor(s.phase)
		s.clockNoise()
	}

	// Combined waveforms AND on the real chip; min is close enough
	// for audition.
	v := math.MaxFloat64
	if s.control&ctrlTri != 0 {
		v = math.Min(v, 1-4*math.Abs(s.phase-0.5))
	}
	if s.control&ctrlSaw != 0 {
		v = math.Min(v, 2*s.phase-1)
	}
	if s.control&ctrlPulse != 0 {
		duty := float64(s.pulse) / 0xFFF
		if s.phase < duty {
			v = math.Min(v, 1)
		} else {
			v = math.Min(v, -1)
		}
	}
	if s.control&ctrlNoise != 0 {
		v = math.Min(v, s.noiseVal)
	}
	if v == math.MaxFloat64 {
		return 0 // no waveform selected
	}
	return v
}

// clockNoise steps the 23-bit LFSR (taps 22 and 17, as on the chip)
// once per oscillator cycle.
func (s *Synth) clockNoise() {
	bit := ((s.lfsr >> 22) ^ (s.lfsr >> 17)) & 1
	s.lfsr = (s.lfsr << 1 | bit) & 0x7FFFFF
	s.noiseVal = float64((s.lfsr>>11)&0xFFF)/2048 - 1
}

// filter runs a Chamberlin state-variable filter when the voice is
// routed through it, mixing the outputs the mode bits select.
func (s *Synth) filter(x float64) float64 {
	if s.frvic&0x1 == 0 {
		return x
	}

	// Cutoff code to Hz, roughly the 6581 range. The coefficient is
	// capped to keep the integrators stable at low sample rates.
	fc := 30 + float64(s.cutoff)*5.8
	f := 2 * math.Sin(math.Pi*fc/float64(s.cfg.SampleRate))
	if f > 0.7 {
		f = 0.7
	}
	res := float64(s.frvic>>4) / 15
	q := 1.4 - 1.2*res

	hp := x - s.lp - q*s.bp
	s.bp = clampF(s.bp+f*hp, -2, 2)
	s.lp = clampF(s.lp+f*s.bp, -2, 2)

	out := 0.0
	if s.mode&0x1 != 0 {
		out += s.lp
	}
	if s.mode&0x2 != 0 {
		out += s.bp
	}
	if s.mode&0x4 != 0 {
		out += hp
	}
	if out > 1 {
		out = 1
	} else if out < -1 {
		out = -1
	}
	return out
}

func clampF(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func (s *Synth) envelopeStep() float64 {
	rate := float64(s.cfg.SampleRate)
	switch s.envPhase {
	case envAttack:
		a := attackMs[s.res.AttackDecay>>4]
		s.env += 1000 / (a * rate)
		if s.env >= 1 {
			s.env = 1
			s.envPhase = envDecay
		}
	case envDecay:
		sustain := float64(s.res.SustainRelease>>4) / 15
		d := decayMs[s.res.AttackDecay&0xF]
		s.env -= 1000 / (d * rate)
		if s.env <= sustain {
			s.env = sustain
			s.envPhase = envSustain
		}
	case envRelease:
		r := decayMs[s.res.SustainRelease&0xF]
		s.env -= 1000 / (r * rate)
		if s.env <= 0 {
			s.env = 0
			s.envPhase = envIdle
		}
	}
	return s.env
}
