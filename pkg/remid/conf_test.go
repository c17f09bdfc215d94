package remid

import (
	"strings"
	"testing"

	"github.com/olivierh59500/swi2remid/pkg/swi"
)

func loopingResult() *swi.Result {
	return &swi.Result{
		Events: []swi.FrameEvent{
			{Frame: 0, Control: 0x41, HasControl: true, PitchDelta: 4, HasPitchDelta: true,
				Pulse: 0x800, HasPulse: true, Cutoff: 0x600, HasCutoff: true},
			{Frame: 1, PitchDelta: 3, HasPitchDelta: true},
			{Frame: 2, PitchDelta: 3, HasPitchDelta: true},
			{Frame: 3, PitchDelta: -6, HasPitchDelta: true},
		},
		Class:          swi.ClassLooping,
		AttackFrames:   3,
		Horizon:        4,
		LoopFrame:      1,
		AttackDecay:    0x22,
		SustainRelease: 0xF0,
		Mode:           0x1,
		FrVic:          0xF1,
		InitialCutoff:  0x600,
		InitialPulse:   0x800,
		WaveRows:       [][3]byte{{0x41, 0x04, 0x00}},
	}
}

func TestSanitizeName(t *testing.T) {
	cases := []struct{ in, want string }{
		{"Lead 1", "Lead-1"},
		{"  bass/pluck  ", "bass-pluck"},
		{"ok_name-7", "ok_name-7"},
		{"", "instrument"},
		{"***", "instrument"},
	}
	for _, c := range cases {
		if got := SanitizeName(c.in); got != c.want {
			t.Errorf("SanitizeName(%q): got %q, want %q", c.in, got, c.want)
		}
	}
}

func TestRenderConfLooping(t *testing.T) {
	out := RenderConf("Lead 1", loopingResult(), DefaultConfOptions())

	for _, want := range []string{
		"[Lead-1]",
		"program_speed=50",
		"v1_ad=0x22",
		"v1_sr=0xF0",
		"filter_mode=0x1",
		"fr_vic=0xF1",
		"filter_cutoff=0x0600",
		"v1_pulse=0x800",
		".0=v1_control 0x41",
		".1=v1_freq_hs 4",
		".2=v1_pulse 0x800",
		".3=filter_cutoff 0x0600",
		".4=wait 1",
		".5=v1_freq_hs 3",
		".9=v1_freq_hs -6",
		".10=goto 5", // loop re-enters at the target row's frame
		"# Raw WF rows: 41,04,00",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q", want)
		}
	}
}

func TestRenderConfLoopToSeed(t *testing.T) {
	res := loopingResult()
	res.LoopFrame = 0
	res.LoopToSeed = true
	out := RenderConf("lead", res, DefaultConfOptions())

	// Line 2 is right after the control write and the seed delta.
	if !strings.Contains(out, ".10=goto 2") {
		t.Errorf("loop-to-seed goto: output missing %q:\n%s", ".10=goto 2", out)
	}
}

func TestRenderConfOneShot(t *testing.T) {
	res := &swi.Result{
		Events: []swi.FrameEvent{
			{Frame: 0, Control: 0x41, HasControl: true,
				Pulse: 0x800, HasPulse: true, Cutoff: 0x600, HasCutoff: true},
			{Frame: 1, Control: 0x41, HasControl: true, Cutoff: 0x600, HasCutoff: true},
			{Frame: 2, Cutoff: 0x500, HasCutoff: true},
		},
		Class:         swi.ClassOneShot,
		AttackFrames:  1,
		Horizon:       3,
		InitialCutoff: 0x600,
		InitialPulse:  0x800,
	}
	out := RenderConf("pluck", res, DefaultConfOptions())

	for _, want := range []string{
		".3=wait 1",
		".4=v1_control 0x41",
		".5=filter_cutoff 0x0600",
		".7=filter_cutoff 0x0500",
		".9=goto 5", // sustain sub-loop
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestRenderConfHardRestart(t *testing.T) {
	res := loopingResult()
	res.HardRestart = true
	out := RenderConf("lead", res, DefaultConfOptions())

	if !strings.Contains(out, ".0=v1_control 0x09") || !strings.Contains(out, ".1=wait 1") {
		t.Error("output missing TEST+GATE jab at script start")
	}
	if !strings.Contains(out, ".2=v1_control 0x41") {
		t.Error("real control write should follow the jab")
	}
}

func TestRenderConfSpeedMult(t *testing.T) {
	out := RenderConf("lead", loopingResult(), ConfOptions{ProgramSpeed: 50, SpeedMult: 2})
	if !strings.Contains(out, "program_speed=100") {
		t.Error("output missing doubled program_speed")
	}
}
