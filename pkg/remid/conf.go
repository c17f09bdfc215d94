package remid

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/olivierh59500/swi2remid/pkg/swi"
)

// ConfOptions controls the preset header timing.
type ConfOptions struct {
	// ProgramSpeed is the global tick rate; 50 matches the PAL frame
	// rate the source tables were authored against.
	ProgramSpeed int

	// SpeedMult multiplies ProgramSpeed. 1 is the conservative choice.
	SpeedMult int
}

// DefaultConfOptions returns PAL timing with no multiplier.
func DefaultConfOptions() ConfOptions {
	return ConfOptions{ProgramSpeed: 50, SpeedMult: 1}
}

var nameSanitizer = regexp.MustCompile(`[^A-Za-z0-9_-]+`)

// SanitizeName makes an instrument name safe for a .conf block header.
func SanitizeName(name string) string {
	s := nameSanitizer.ReplaceAllString(strings.TrimSpace(name), "-")
	if s == "" {
		return "instrument"
	}
	return s
}

// RenderConf serializes a conversion result into one playable .conf
// preset: a minimal [channels]/[programs] header, the instrument block,
// the frame script, and a raw-table footer for debugging.
//
// Script mechanics: each simulated frame becomes the register writes
// that changed, then "wait 1". Looping instruments end with the wrap
// correction and a goto back into the attack, re-entering after the
// one-time arpeggio seed when the loop targets the seed row. One-shot
// instruments return pitch to base, re-assert the last control byte and
// loop a small sustain region instead.
func RenderConf(name string, res *swi.Result, opts ConfOptions) string {
	if opts.ProgramSpeed <= 0 {
		opts.ProgramSpeed = 50
	}
	if opts.SpeedMult < 1 {
		opts.SpeedMult = 1
	}
	name = SanitizeName(name)

	byFrame := make(map[int]swi.FrameEvent, len(res.Events))
	for _, ev := range res.Events {
		byFrame[ev.Frame] = ev
	}

	lines := []string{
		"# generated by swi2remid (FE-pointer aware; ARP decoded; loop-safe; no drift)",
		"",
		"[channels]",
		"1=1",
		"",
		"[programs]",
		"format=0.0",
		fmt.Sprintf("1=%s", name),
		"",
		fmt.Sprintf("[%s]", name),
		fmt.Sprintf("program_speed=%d", opts.ProgramSpeed*opts.SpeedMult),
		fmt.Sprintf("v1_ad=0x%02X", res.AttackDecay),
		fmt.Sprintf("v1_sr=0x%02X", res.SustainRelease),
		fmt.Sprintf("filter_mode=0x%X", res.Mode),
		fmt.Sprintf("fr_vic=0x%02X", res.FrVic),
		fmt.Sprintf("filter_cutoff=0x%04X", res.InitialCutoff),
		fmt.Sprintf("v1_pulse=0x%03X", maxInt(1, res.InitialPulse)),
		"",
	}

	t := 0
	add := func(cmd string) {
		lines = append(lines, fmt.Sprintf(".%d=%s", t, cmd))
		t++
	}

	if res.HardRestart {
		add("v1_control 0x09") // TEST+GATE jab before the first real write
		add("wait 1")
	}

	frameLine := make([]int, res.AttackFrames)
	loopEntryAfterSeed := 0

	for f := 0; f < res.AttackFrames; f++ {
		frameLine[f] = t
		ev := byFrame[f]

		if f == 0 {
			add(fmt.Sprintf("v1_control 0x%02X", ev.Control))
			if ev.HasPitchDelta {
				add(fmt.Sprintf("v1_freq_hs %d", ev.PitchDelta))
			}
			// Loops must re-enter after the seed delta.
			loopEntryAfterSeed = t
			add(fmt.Sprintf("v1_pulse 0x%03X", maxInt(1, ev.Pulse)))
			if ev.HasCutoff {
				add(fmt.Sprintf("filter_cutoff 0x%04X", ev.Cutoff))
			}
		} else {
			if ev.HasControl {
				add(fmt.Sprintf("v1_control 0x%02X", ev.Control))
			}
			if ev.HasPulse {
				add(fmt.Sprintf("v1_pulse 0x%03X", ev.Pulse))
			}
			if ev.HasCutoff {
				add(fmt.Sprintf("filter_cutoff 0x%04X", ev.Cutoff))
			}
			if ev.HasPitchDelta {
				add(fmt.Sprintf("v1_freq_hs %d", ev.PitchDelta))
			}
		}
		add("wait 1")
	}

	trailer := byFrame[res.AttackFrames]
	if res.Class == swi.ClassLooping {
		if trailer.HasPitchDelta {
			add(fmt.Sprintf("v1_freq_hs %d", trailer.PitchDelta))
		}
		loopLine := loopEntryAfterSeed
		if !res.LoopToSeed && res.LoopFrame >= 0 && res.LoopFrame < len(frameLine) {
			loopLine = frameLine[res.LoopFrame]
		}
		add(fmt.Sprintf("goto %d", loopLine))
	} else {
		if trailer.HasPitchDelta {
			add(fmt.Sprintf("v1_freq_hs %d", trailer.PitchDelta))
		}
		add(fmt.Sprintf("v1_control 0x%02X", trailer.Control))

		sustainStart := t
		if trailer.HasPulse {
			add(fmt.Sprintf("v1_pulse 0x%03X", maxInt(1, trailer.Pulse)))
		}
		if trailer.HasCutoff {
			add(fmt.Sprintf("filter_cutoff 0x%04X", trailer.Cutoff))
		}
		add("wait 1")

		for f := res.AttackFrames + 1; f < res.Horizon; f++ {
			ev := byFrame[f]
			if ev.HasPulse {
				add(fmt.Sprintf("v1_pulse 0x%03X", ev.Pulse))
			}
			if ev.HasCutoff {
				add(fmt.Sprintf("filter_cutoff 0x%04X", ev.Cutoff))
			}
			add("wait 1")
		}
		add(fmt.Sprintf("goto %d", sustainStart))
	}

	lines = append(lines,
		"",
		"# Raw WF rows: "+formatRows(res.WaveRows),
		fmt.Sprintf("# Raw PW rows (@0x%02X): %s", res.PulseBase, formatRows(res.PulseRows)),
		fmt.Sprintf("# Raw FL rows (@0x%02X): %s", res.FilterBase, formatRows(res.FilterRows)),
	)
	return strings.Join(lines, "\n")
}

func formatRows(rows [][3]byte) string {
	if len(rows) == 0 {
		return "(empty)"
	}
	parts := make([]string, len(rows))
	for i, r := range rows {
		parts[i] = fmt.Sprintf("%02X,%02X,%02X", r[0], r[1], r[2])
	}
	return strings.Join(parts, " | ")
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
