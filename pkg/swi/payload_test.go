package swi

import (
	"testing"
)

// buildPayload assembles an in-memory instrument: a 0x10-byte header,
// the WF/ARP table at 0x10, then the pulse and filter tables with the
// header pointers filled in, then an 8-byte name tail. Each table slice
// must carry its own 0xFF terminator.
func buildPayload(wave, pulse, filter []byte) []byte {
	buf := make([]byte, waveTableBase)
	buf[offAttackDecay] = 0x22
	buf[offSustainRelease] = 0xF0
	buf[offGateOffWave] = NoGateOff
	buf[offGateOffPulse] = NoGateOff
	buf[offGateOffFilter] = NoGateOff

	buf = append(buf, wave...)
	pulseBase := len(buf)
	buf = append(buf, pulse...)
	filterBase := len(buf)
	buf = append(buf, filter...)
	buf[offPulsePtr] = byte(pulseBase)
	buf[offFilterPtr] = byte(filterBase)

	for len(buf)+8 < minPayloadSize {
		buf = append(buf, 0)
	}
	buf = append(buf, []byte("testinst")...)
	return buf
}

func mustParse(t *testing.T, data []byte) *Payload {
	t.Helper()
	p, err := ParsePayload(data)
	if err != nil {
		t.Fatalf("ParsePayload: %v", err)
	}
	return p
}

func TestParsePayload(t *testing.T) {
	t.Run("strips PRG load address", func(t *testing.T) {
		raw := buildPayload([]byte{0xFF}, []byte{0xFF}, []byte{0xFF})
		prg := append([]byte{0x00, 0x10}, raw...) // load address $1000

		p := mustParse(t, prg)
		if got, want := len(p.Bytes()), len(raw); got != want {
			t.Errorf("payload length: got %d, want %d", got, want)
		}
		if p.AttackDecay() != 0x22 {
			t.Errorf("AttackDecay: got 0x%02X, want 0x22", p.AttackDecay())
		}
	})

	t.Run("keeps bytes without plausible load address", func(t *testing.T) {
		raw := buildPayload([]byte{0xFF}, []byte{0xFF}, []byte{0xFF})
		p := mustParse(t, raw)
		if got, want := len(p.Bytes()), len(raw); got != want {
			t.Errorf("payload length: got %d, want %d", got, want)
		}
	})

	t.Run("rejects undersized input", func(t *testing.T) {
		if _, err := ParsePayload(make([]byte, 0x10)); err == nil {
			t.Error("expected error for undersized payload")
		}
	})
}

func TestPayloadHeader(t *testing.T) {
	raw := buildPayload([]byte{0xFF}, []byte{0xFF}, []byte{0xFF})
	raw[offArpSpeed] = 0xC3 // top bits must be masked off
	raw[offVibratoDepth] = 0x34
	raw[offVibratoDelay] = 0x12
	p := mustParse(t, raw)

	if got := p.ArpSpeed(); got != 0x03 {
		t.Errorf("ArpSpeed: got 0x%02X, want 0x03", got)
	}
	if got := p.PulseGuess(); got != 0x234 {
		t.Errorf("PulseGuess: got 0x%03X, want 0x234", got)
	}
	if w, pw, fl := p.GateOffRows(); w != NoGateOff || pw != NoGateOff || fl != NoGateOff {
		t.Errorf("GateOffRows: got %02X/%02X/%02X, want all FF", w, pw, fl)
	}
}

func TestPayloadName(t *testing.T) {
	raw := buildPayload([]byte{0xFF}, []byte{0xFF}, []byte{0xFF})
	p := mustParse(t, raw)
	if got := p.Name(); got != "testinst" {
		t.Errorf("Name: got %q, want %q", got, "testinst")
	}

	t.Run("drops non-printable tail bytes", func(t *testing.T) {
		raw := buildPayload([]byte{0xFF}, []byte{0xFF}, []byte{0xFF})
		copy(raw[len(raw)-8:], []byte{0x00, 0x01, 'l', 'e', 'a', 'd', ' ', ' '})
		p := mustParse(t, raw)
		if got := p.Name(); got != "lead" {
			t.Errorf("Name: got %q, want %q", got, "lead")
		}
	})
}
