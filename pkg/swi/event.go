package swi

// FrameEvent carries the register fields that changed on one simulated
// frame. Unchanged fields stay absent so the event stream remains
// minimal; frame 0 always carries the full initial state.
type FrameEvent struct {
	Frame int

	Control    byte
	HasControl bool

	// PitchDelta is a relative half-step move applied on this frame.
	PitchDelta    int
	HasPitchDelta bool

	Pulse    int
	HasPulse bool

	Cutoff    int
	HasCutoff bool

	// Mode and FrVic track filter mode and packed resonance/routing
	// changes. The preset grammar can only express them once, in the
	// instrument header, but the audition renderer follows them live.
	Mode    byte
	HasMode bool

	FrVic    byte
	HasFrVic bool
}

// Classification tells the consumer whether the event stream ends in a
// loop back into the attack or settles into a sustain hold.
type Classification int

const (
	ClassOneShot Classification = iota
	ClassLooping
)

func (c Classification) String() string {
	if c == ClassLooping {
		return "looping"
	}
	return "one-shot"
}

// Result is the output of one conversion: the ordered event stream plus
// everything a serializer needs to render a complete preset around it.
type Result struct {
	Events []FrameEvent
	Class  Classification

	// AttackFrames is the length of one pass across the WF/ARP table.
	// Events at frame == AttackFrames form the loop or sustain trailer.
	AttackFrames int

	// Horizon is the total simulated frame count: AttackFrames plus
	// the sustain budget for one-shot instruments, AttackFrames plus
	// the trailer frame for looping ones.
	Horizon int

	// LoopFrame is the frame the loop re-enters at. When LoopToSeed is
	// set the loop target is the seed row and re-entry happens right
	// after the one-time seed delta instead.
	LoopFrame  int
	LoopToSeed bool

	HardRestart bool

	// Initial header state for the preset block.
	AttackDecay    byte
	SustainRelease byte
	Mode           byte
	FrVic          byte
	InitialCutoff  int
	InitialPulse   int

	// Raw table rows and bases, kept for the diagnostic footer.
	WaveRows   [][3]byte
	PulseRows  [][3]byte
	FilterRows [][3]byte
	PulseBase  int
	FilterBase int

	Diagnostics []Diagnostic
}

// FullyConvertible reports whether every arpeggio opcode could be
// expressed as a relative pitch move. Held absolute-note or chord-call
// opcodes leave the result usable but approximate.
func (r *Result) FullyConvertible() bool {
	for _, d := range r.Diagnostics {
		if d.Kind == DiagFidelity {
			return false
		}
	}
	return true
}
