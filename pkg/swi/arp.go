package swi

// ArpOpKind classifies a decoded arpeggio opcode.
type ArpOpKind int

const (
	ArpRelative ArpOpKind = iota // signed semitone delta
	ArpNop                       // no pitch change
	ArpAbsolute                  // absolute note index, not convertible
	ArpChord                     // chord call, not convertible
)

// ArpOp is one decoded arpeggio opcode. Delta is meaningful only for
// ArpRelative.
type ArpOp struct {
	Kind  ArpOpKind
	Delta int
}

// Convertible reports whether the opcode expresses a pitch move that a
// relative half-step command can carry. Absolute notes and chord calls
// need song-level data the instrument payload does not have; the caller
// holds the previous offset for those.
func (op ArpOp) Convertible() bool {
	return op.Kind == ArpRelative || op.Kind == ArpNop
}

// decodeArpOp decodes a single ARP byte per the SID-Wizard player:
//
//	0x00..0x7E  relative up by +a semitones
//	0x7F        chord call
//	0x80        nop
//	0x81..0xDF  absolute note index
//	0xE0..0xFF  relative down (two's complement, -32..-1)
func decodeArpOp(a byte) ArpOp {
	switch {
	case a == 0x80:
		return ArpOp{Kind: ArpNop}
	case a == 0x7F:
		return ArpOp{Kind: ArpChord}
	case a < 0x80:
		return ArpOp{Kind: ArpRelative, Delta: int(a)}
	case a >= 0xE0:
		return ArpOp{Kind: ArpRelative, Delta: int(a) - 256}
	}
	return ArpOp{Kind: ArpAbsolute}
}
