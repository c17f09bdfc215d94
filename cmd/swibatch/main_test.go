package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/BurntSushi/toml"
)

// testInstrument is a minimal valid .swi payload: gated pulse wave,
// terminated tables, trailing name "batchins".
func testInstrument() []byte {
	buf := make([]byte, 0x30)
	buf[0x03] = 0x22 // AD
	buf[0x04] = 0xF0 // SR
	buf[0x07] = 1    // ARP speed
	buf[0x0A] = 0x16 // pulse table
	buf[0x0B] = 0x19 // filter table
	buf[0x0C] = 0xFF
	buf[0x0D] = 0xFF
	buf[0x0E] = 0xFF
	buf[0x0F] = 0x41 // control 0

	buf[0x10] = 0x41 // wave: one write row, then end
	buf[0x13] = 0xFF
	buf[0x16] = 0xFF // pulse: end
	buf[0x19] = 0xFF // filter: end

	copy(buf[0x28:], "batchins")
	return buf
}

func TestProfileDecode(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "profile.toml")
	doc := `
program_speed = 100
speed_mult = 2
arp_plus1 = true
gate_off = true
vibrato = true
vib_depth = 0.5
cutoff_scale = 1.5
`
	if err := os.WriteFile(path, []byte(doc), 0644); err != nil {
		t.Fatalf("write profile: %v", err)
	}

	prof := defaultProfile()
	if _, err := toml.DecodeFile(path, &prof); err != nil {
		t.Fatalf("decode profile: %v", err)
	}

	if prof.ProgramSpeed != 100 {
		t.Errorf("ProgramSpeed: got %d, want 100", prof.ProgramSpeed)
	}
	if prof.SpeedMult != 2 {
		t.Errorf("SpeedMult: got %d, want 2", prof.SpeedMult)
	}
	// Unset keys keep their defaults.
	if prof.SustainFrames != 64 {
		t.Errorf("SustainFrames: got %d, want default 64", prof.SustainFrames)
	}
	if prof.VibRate != 4 {
		t.Errorf("VibRate: got %d, want default 4", prof.VibRate)
	}

	opts := prof.options()
	if !opts.StepFrameBias || !opts.RespectGateOff || !opts.Vibrato.Enabled {
		t.Error("profile toggles not mapped into options")
	}
	if opts.Vibrato.DepthSemitones != 0.5 {
		t.Errorf("vibrato depth: got %v, want 0.5", opts.Vibrato.DepthSemitones)
	}
	if opts.CutoffScale != 1.5 {
		t.Errorf("cutoff scale: got %v, want 1.5", opts.CutoffScale)
	}
}

func TestCollectInputs(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"b.swi", "a.SWI", "notes.txt"} {
		if err := os.WriteFile(filepath.Join(dir, name), []byte{0}, 0644); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
	}

	inputs, err := collectInputs([]string{dir})
	if err != nil {
		t.Fatalf("collectInputs: %v", err)
	}
	if len(inputs) != 2 {
		t.Fatalf("inputs: got %d, want 2", len(inputs))
	}
	if filepath.Base(inputs[0]) != "a.SWI" || filepath.Base(inputs[1]) != "b.swi" {
		t.Errorf("inputs not sorted: %v", inputs)
	}
}

func TestConvertOneSkipAndOverwrite(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "lead.swi")
	if err := os.WriteFile(in, testInstrument(), 0644); err != nil {
		t.Fatalf("write instrument: %v", err)
	}

	savedOut, savedOverwrite, savedQuiet := *outDir, *overwrite, *quiet
	defer func() {
		*outDir, *overwrite, *quiet = savedOut, savedOverwrite, savedQuiet
	}()
	*outDir = filepath.Join(dir, "out")
	*overwrite = false
	*quiet = true

	prof := defaultProfile()
	opts := prof.options()

	name, out, err := convertOne(in, opts, prof)
	if err != nil {
		t.Fatalf("convertOne: %v", err)
	}
	if name != "batchins" {
		t.Errorf("name: got %q, want \"batchins\"", name)
	}
	if _, err := os.Stat(out); err != nil {
		t.Fatalf("output missing: %v", err)
	}

	t.Run("existing output is skipped", func(t *testing.T) {
		_, _, err := convertOne(in, opts, prof)
		if err != errExists {
			t.Errorf("got %v, want errExists", err)
		}
	})

	t.Run("overwrite replaces it", func(t *testing.T) {
		*overwrite = true
		_, _, err := convertOne(in, opts, prof)
		if err != nil {
			t.Errorf("convertOne with -overwrite: %v", err)
		}
	})
}
