package swi

import "math"

// Convert runs the full instrument simulation and returns the ordered
// frame-event stream plus everything a preset serializer needs around
// it. It never fails: malformed content degrades locally and shows up
// in Result.Diagnostics.
func Convert(p *Payload, opts Options) *Result {
	var diags []Diagnostic
	payload := p.Bytes()

	waveTab := NewTable(TableWave, payload, p.WaveBase(), &diags)
	pulseTab := NewTable(TablePulse, payload, p.PulseBase(), &diags)
	filterTab := NewTable(TableFilter, payload, p.FilterBase(), &diags)

	step := maxInt(1, int(p.ArpSpeed())+boolToInt(opts.StepFrameBias))
	wt := materializeWave(waveTab, p.Control0(), step, opts, &diags)
	attack := len(wt.controls)

	// Pulse and filter keep evolving past the attack so one-shot
	// instruments have a sustain region to play.
	horizon := attack + maxInt(1, opts.SustainFrames)
	pw := materializePulse(pulseTab, horizon, initialPulse(pulseTab, p.PulseGuess()))
	fl := materializeFilter(filterTab, horizon)

	// Combined per-frame semitone offsets: arpeggio plus the optional
	// vibrato LFO, quantized to whole half-steps.
	comb := make([]int, attack)
	if !opts.SuppressArpeggio {
		copy(comb, wt.offsets)
		if opts.Vibrato.Enabled {
			vib := vibratoOverlay(attack, p.VibratoDepth(), p.VibratoDelay(), opts.Vibrato)
			for f := range comb {
				comb[f] = int(math.Round(float64(wt.offsets[f]) + vib[f]))
			}
		}
	}

	hasLoop := wt.hasLoop
	if opts.OneShotDetection && hasLoop {
		// A pointer loop over a steady control byte and steady pitch
		// is musically a one-shot; honoring it would only re-trigger
		// identical writes forever.
		steady := true
		for f := 1; f < attack; f++ {
			if wt.controls[f] != wt.controls[0] || comb[f] != comb[0] {
				steady = false
				break
			}
		}
		if steady {
			hasLoop = false
		}
	}

	cs := opts.CutoffScale
	if cs <= 0 {
		cs = 1
	}
	rs := opts.ResonanceScale
	if rs <= 0 {
		rs = 1
	}
	scaled := make([]int, horizon)
	for f := range scaled {
		scaled[f] = clampInt(int(float64(fl.cutoff[f])*cs), 0, 0x7FF)
	}

	res := &Result{
		AttackFrames:   attack,
		HardRestart:    opts.HardRestart,
		AttackDecay:    p.AttackDecay(),
		SustainRelease: p.SustainRelease(),
		Mode:           fl.finalMode,
		FrVic:          packFrVic(fl.finalRes, fl.finalRoute, rs),
		InitialCutoff:  scaled[0],
		InitialPulse:   pw.values[0],
		WaveRows:       waveTab.Raw,
		PulseRows:      pulseTab.Raw,
		FilterRows:     filterTab.Raw,
		PulseBase:      p.PulseBase(),
		FilterBase:     p.FilterBase(),
	}

	var events []FrameEvent

	// ----- attack pass: one run across the WF table -----
	for f := 0; f < attack; f++ {
		ev := FrameEvent{Frame: f}
		if f == 0 {
			ev.Control, ev.HasControl = wt.controls[0], true
			if comb[0] != 0 {
				ev.PitchDelta, ev.HasPitchDelta = comb[0], true
			}
			ev.Pulse, ev.HasPulse = pw.values[0], true
			ev.Cutoff, ev.HasCutoff = scaled[0], true
			ev.Mode, ev.HasMode = fl.mode[0], true
			ev.FrVic, ev.HasFrVic = packFrVic(fl.res[0], fl.route[0], rs), true
		} else {
			if wt.controls[f] != wt.controls[f-1] {
				ev.Control, ev.HasControl = wt.controls[f], true
			}
			if !pw.static && pw.values[f] != pw.values[f-1] {
				ev.Pulse, ev.HasPulse = pw.values[f], true
			}
			if scaled[f] != scaled[f-1] {
				ev.Cutoff, ev.HasCutoff = scaled[f], true
			}
			if fl.mode[f] != fl.mode[f-1] {
				ev.Mode, ev.HasMode = fl.mode[f], true
			}
			frv := packFrVic(fl.res[f], fl.route[f], rs)
			if frv != packFrVic(fl.res[f-1], fl.route[f-1], rs) {
				ev.FrVic, ev.HasFrVic = frv, true
			}
			if d := comb[f] - comb[f-1]; d != 0 {
				ev.PitchDelta, ev.HasPitchDelta = d, true
			}
		}
		if f == 0 || eventHasFields(ev) {
			events = append(events, ev)
		}
	}

	// ----- loop or sustain trailer -----
	if hasLoop {
		// The loop re-enters just before the target row's delta, so
		// the wrap correction restores that entry offset exactly.
		// For a loop back to the seed row, re-entry is right after
		// the one-time seed instead.
		entry := comb[0]
		if wt.loopFrame > 0 {
			entry = comb[wt.loopFrame-1]
		}
		if wrap := entry - comb[attack-1]; wrap != 0 {
			events = append(events, FrameEvent{Frame: attack, PitchDelta: wrap, HasPitchDelta: true})
		}
		res.Class = ClassLooping
		res.LoopFrame = wt.loopFrame
		res.LoopToSeed = wt.loopFrame == 0
		res.Horizon = attack + 1
	} else {
		ev := FrameEvent{Frame: attack}
		if final := comb[attack-1]; final != 0 {
			ev.PitchDelta, ev.HasPitchDelta = -final, true
		}
		ev.Control, ev.HasControl = wt.controls[attack-1], true
		if !pw.static {
			ev.Pulse, ev.HasPulse = pw.values[attack], true
		}
		ev.Cutoff, ev.HasCutoff = scaled[attack], true
		events = append(events, ev)

		for f := attack + 1; f < horizon; f++ {
			ev := FrameEvent{Frame: f}
			if !pw.static && pw.values[f] != pw.values[f-1] {
				ev.Pulse, ev.HasPulse = pw.values[f], true
			}
			if scaled[f] != scaled[f-1] {
				ev.Cutoff, ev.HasCutoff = scaled[f], true
			}
			if eventHasFields(ev) {
				events = append(events, ev)
			}
		}
		res.Class = ClassOneShot
		res.Horizon = horizon
	}

	// ----- cross-cutting fidelity passes -----
	if opts.DeferFilterUntilTonal {
		events = deferCutoffUntilTonal(events, wt.controls, scaled)
	}
	if opts.RespectGateOff {
		goWave, goPulse, goFilter := p.GateOffRows()
		trigger := gateOffFrame(attack, wt.rowAt, pw.rowAt, fl.rowAt, goWave, goPulse, goFilter)
		if trigger >= 0 {
			events = applyGateOff(events, trigger, wt.controls[trigger])
		}
	}

	res.Events = events
	res.Diagnostics = diags
	return res
}

func eventHasFields(ev FrameEvent) bool {
	return ev.HasControl || ev.HasPitchDelta || ev.HasPulse ||
		ev.HasCutoff || ev.HasMode || ev.HasFrVic
}

// packFrVic packs the resonance nibble and voice-routing bits the way
// the target engine expects, applying the calibration scale first.
func packFrVic(res, route byte, resScale float64) byte {
	r := clampInt(int(math.Round(float64(res)*resScale)), 0, 15)
	return byte(r)<<4 | route&0x7
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
