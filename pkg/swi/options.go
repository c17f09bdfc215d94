package swi

// VibratoShape selects the LFO waveform of the vibrato overlay.
type VibratoShape int

const (
	VibratoTriangle VibratoShape = iota
	VibratoSine
)

// VibratoOptions parameterizes the optional vibrato LFO added on top of
// the arpeggio offsets. Depth and delay default to the instrument header
// when left at their sentinel values.
type VibratoOptions struct {
	Enabled bool

	// DepthSemitones overrides the LFO depth. Negative means "derive
	// from the header depth byte" (depth/8 semitones).
	DepthSemitones float64

	// DelayFrames overrides the onset delay. Negative means "derive
	// from the header delay byte".
	DelayFrames int

	// RateFrames controls the LFO speed: a full cycle spans
	// max(2, RateFrames*4) frames. Higher is slower.
	RateFrames int

	Shape VibratoShape
}

// Options configures one conversion run. The zero value is not useful;
// start from DefaultOptions.
type Options struct {
	// StepFrameBias adds one frame to the WF/ARP row duration derived
	// from the header speed byte. Some authoring conventions assume
	// the off-by-one timing; both interpretations are valid.
	StepFrameBias bool

	// VerbatimControl keeps control bytes exactly as authored. By
	// default only the TEST bit is cleared; no waveform is forced.
	VerbatimControl bool

	// SuppressArpeggio drops all pitch events, forcing steady pitch.
	SuppressArpeggio bool

	// HardRestart emits a short TEST+GATE jab before the first real
	// control write, approximating oscillator re-phasing.
	HardRestart bool

	// SustainFrames bounds how long the pulse and filter tables keep
	// evolving after the attack in one-shot instruments.
	SustainFrames int

	// DeferFilterUntilTonal withholds the first cutoff event until the
	// first frame whose control byte selects a non-noise waveform.
	DeferFilterUntilTonal bool

	// OneShotDetection reclassifies an instrument whose control bytes
	// and pitch offsets are steady across the attack as one-shot, even
	// when its WF table carries a pointer loop.
	OneShotDetection bool

	// RespectGateOff clears the GATE bit once a table reaches its
	// header gate-off row index.
	RespectGateOff bool

	Vibrato VibratoOptions

	// CutoffScale and ResonanceScale are per-project calibration
	// factors applied at emission time. Cutoff is re-clamped to
	// [0, 0x7FF] and the resonance nibble to [0, 15] after scaling.
	CutoffScale    float64
	ResonanceScale float64
}

// DefaultOptions returns the conversion defaults: fidelity toggles on,
// optional approximations (gate-off, vibrato, hard restart) off.
func DefaultOptions() Options {
	return Options{
		SustainFrames:         64,
		DeferFilterUntilTonal: true,
		OneShotDetection:      true,
		Vibrato: VibratoOptions{
			DepthSemitones: -1,
			DelayFrames:    -1,
			RateFrames:     4,
			Shape:          VibratoTriangle,
		},
		CutoffScale:    1.0,
		ResonanceScale: 1.0,
	}
}
