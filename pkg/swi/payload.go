package swi

import (
	"fmt"
	"os"
)

// SID-Wizard v1.7 instrument-local byte map. Offsets are relative to the
// payload after the optional PRG load address has been stripped.
const (
	offAttackDecay    = 0x03 // ADSR attack/decay nibble pair
	offSustainRelease = 0x04 // ADSR sustain/release nibble pair
	offVibratoDepth   = 0x05 // vibrato depth (also pulse guess low byte)
	offVibratoDelay   = 0x06 // vibrato delay (also pulse guess high byte)
	offArpSpeed       = 0x07 // WF/ARP step timing, low 6 bits
	offPulsePtr       = 0x0A // byte offset of the pulse-width table
	offFilterPtr      = 0x0B // byte offset of the filter table
	offGateOffWave    = 0x0C // gate-off row index for the WF/ARP table
	offGateOffPulse   = 0x0D // gate-off row index for the pulse table
	offGateOffFilter  = 0x0E // gate-off row index for the filter table
	offControl0       = 0x0F // initial SID control byte
	waveTableBase     = 0x10 // WF/ARP table starts right after the header
)

// NoGateOff marks an absent gate-off row index in the header.
const NoGateOff = 0xFF

const minPayloadSize = 0x20

// Payload is one SID-Wizard instrument: the header plus the three
// byte-triplet tables. It is read-only after parsing.
type Payload struct {
	data []byte
}

// ReadPayloadFile reads a .swi file from disk and parses it.
func ReadPayloadFile(filename string) (*Payload, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}
	return ParsePayload(data)
}

// ParsePayload wraps raw .swi bytes, stripping a 2-byte PRG load address
// when one is present. Many .swi files are stored as PRG with a plausible
// C64 load address in front of the instrument data.
func ParsePayload(data []byte) (*Payload, error) {
	if len(data) < minPayloadSize {
		return nil, fmt.Errorf("bad .swi payload: %d bytes, need at least %d", len(data), minPayloadSize)
	}

	loadAddr := int(data[0]) | int(data[1])<<8
	if loadAddr >= 0x0300 && loadAddr <= 0xC000 && len(data) >= 34 {
		data = data[2:]
	}

	p := &Payload{data: make([]byte, len(data))}
	copy(p.data, data)
	return p, nil
}

// Bytes returns the raw payload after load-address stripping.
func (p *Payload) Bytes() []byte { return p.data }

// AttackDecay returns the ADSR attack/decay nibble pair.
func (p *Payload) AttackDecay() byte { return p.data[offAttackDecay] }

// SustainRelease returns the ADSR sustain/release nibble pair.
func (p *Payload) SustainRelease() byte { return p.data[offSustainRelease] }

// VibratoDepth returns the header vibrato depth byte (low 6 bits used).
func (p *Payload) VibratoDepth() byte { return p.data[offVibratoDepth] & 0x3F }

// VibratoDelay returns the header vibrato delay in frames.
func (p *Payload) VibratoDelay() byte { return p.data[offVibratoDelay] }

// ArpSpeed returns the WF/ARP step timing byte (low 6 bits).
func (p *Payload) ArpSpeed() byte { return p.data[offArpSpeed] & 0x3F }

// Control0 returns the initial SID control byte used when the WF table
// contains no write rows.
func (p *Payload) Control0() byte { return p.data[offControl0] }

// WaveBase returns the byte offset of the WF/ARP table.
func (p *Payload) WaveBase() int { return waveTableBase }

// PulseBase returns the byte offset of the pulse-width table.
func (p *Payload) PulseBase() int { return int(p.data[offPulsePtr]) }

// FilterBase returns the byte offset of the filter table.
func (p *Payload) FilterBase() int { return int(p.data[offFilterPtr]) }

// PulseGuess returns the header's initial pulse-width hint. Many SWI
// variants store the 12-bit value as lo@5/hi@6.
func (p *Payload) PulseGuess() int {
	return (int(p.data[offVibratoDelay])<<8 | int(p.data[offVibratoDepth])) & 0x0FFF
}

// GateOffRows returns the gate-off row indices for the WF, pulse and
// filter tables. NoGateOff (0xFF) marks an absent index.
func (p *Payload) GateOffRows() (wave, pulse, filter byte) {
	return p.data[offGateOffWave], p.data[offGateOffPulse], p.data[offGateOffFilter]
}

// Name extracts the instrument name stored in the trailing 8 payload
// bytes. Non-printable bytes are dropped and surrounding space trimmed;
// an empty result means the payload carries no usable name.
func (p *Payload) Name() string {
	if len(p.data) < 8 {
		return ""
	}
	tail := p.data[len(p.data)-8:]
	out := make([]byte, 0, 8)
	for _, b := range tail {
		if b >= 0x20 && b < 0x7F {
			out = append(out, b)
		}
	}
	s := string(out)
	for len(s) > 0 && s[0] == ' ' {
		s = s[1:]
	}
	for len(s) > 0 && s[len(s)-1] == ' ' {
		s = s[:len(s)-1]
	}
	return s
}

// RawRows returns the raw 3-byte groups of the table at base, up to but
// not including the 0xFF terminator. Used for the diagnostic footer in
// the serialized preset.
func (p *Payload) RawRows(base int) [][3]byte {
	rows, _ := readTriplets(p.data, base)
	return rows
}
