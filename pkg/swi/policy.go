package swi

import "math"

// vibratoOverlay builds the per-frame LFO track. Depth and delay fall
// back to the instrument header (depth byte maps to depth/8 semitones)
// when the options leave them negative.
func vibratoOverlay(frames int, depthByte, delayByte byte, v VibratoOptions) []float64 {
	depth := v.DepthSemitones
	if depth < 0 {
		depth = float64(depthByte) / 8.0
	}
	delay := v.DelayFrames
	if delay < 0 {
		delay = int(delayByte)
	}
	period := maxInt(2, v.RateFrames*4)

	out := make([]float64, frames)
	for f := delay; f < frames; f++ {
		if f < 0 {
			continue
		}
		ph := float64((f-delay)%period) / float64(period)
		if v.Shape == VibratoSine {
			out[f] = depth * math.Sin(2*math.Pi*ph)
			continue
		}
		// Zero-centered triangle: 0 -> +1 -> -1 -> 0 over one period.
		var tri float64
		switch {
		case ph < 0.25:
			tri = 4 * ph
		case ph < 0.75:
			tri = 2 - 4*ph
		default:
			tri = 4*ph - 4
		}
		out[f] = depth * tri
	}
	return out
}

// deferCutoffUntilTonal withholds cutoff events while the instrument
// plays noise, releasing the latest withheld value on the first frame
// whose control byte selects a tonal waveform. Instruments that start
// tonal, or never leave noise, pass through unchanged.
func deferCutoffUntilTonal(events []FrameEvent, controls []byte, cutoff []int) []FrameEvent {
	attack := len(controls)
	if attack < 2 || controls[0]&0x80 == 0 {
		return events
	}
	firstTonal := 0
	for f := 1; f < attack; f++ {
		if controls[f]&0x80 == 0 {
			firstTonal = f
			break
		}
	}
	if firstTonal == 0 {
		return events
	}

	for i := range events {
		if events[i].Frame < firstTonal && events[i].HasCutoff {
			events[i].HasCutoff = false
			events[i].Cutoff = 0
		}
	}
	return setCutoffAt(events, firstTonal, cutoff[firstTonal])
}

func setCutoffAt(events []FrameEvent, frame, cutoff int) []FrameEvent {
	for i := range events {
		if events[i].Frame == frame {
			events[i].Cutoff, events[i].HasCutoff = cutoff, true
			return events
		}
	}
	return insertEvent(events, FrameEvent{Frame: frame, Cutoff: cutoff, HasCutoff: true})
}

// gateOffFrame finds the first attack frame where any table sits on its
// header gate-off row. Returns -1 when no index triggers.
func gateOffFrame(attack int, waveRow, pulseRow, filterRow []int, goWave, goPulse, goFilter byte) int {
	for f := 0; f < attack; f++ {
		if goWave != NoGateOff && waveRow[f] == int(goWave) {
			return f
		}
		if goPulse != NoGateOff && pulseRow[f] == int(goPulse) {
			return f
		}
		if goFilter != NoGateOff && filterRow[f] == int(goFilter) {
			return f
		}
	}
	return -1
}

// applyGateOff clears the GATE bit at the trigger frame and keeps it
// cleared on every later control write, so the release phase is never
// re-gated by loop or trailer re-emits.
func applyGateOff(events []FrameEvent, trigger int, ctrlAtTrigger byte) []FrameEvent {
	found := false
	for i := range events {
		ev := &events[i]
		if ev.Frame == trigger {
			found = true
			if !ev.HasControl {
				ev.Control, ev.HasControl = ctrlAtTrigger, true
			}
		}
		if ev.Frame >= trigger && ev.HasControl {
			ev.Control &^= 0x01
		}
	}
	if !found {
		events = insertEvent(events, FrameEvent{
			Frame:      trigger,
			Control:    ctrlAtTrigger &^ 0x01,
			HasControl: true,
		})
	}
	return events
}

// insertEvent places ev into the stream keeping frame order.
func insertEvent(events []FrameEvent, ev FrameEvent) []FrameEvent {
	at := len(events)
	for i := range events {
		if events[i].Frame > ev.Frame {
			at = i
			break
		}
	}
	events = append(events, FrameEvent{})
	copy(events[at+1:], events[at:])
	events[at] = ev
	return events
}
