package swi

import "fmt"

// DiagKind classifies a conversion diagnostic. No diagnostic is fatal:
// the simulation always degrades locally and keeps going.
type DiagKind int

const (
	// DiagTruncated: a table ended on a partial 3-byte group and was
	// implicitly End-terminated at the last complete row.
	DiagTruncated DiagKind = iota
	// DiagAddressing: a pointer row's target was misaligned or outside
	// the table; the row degrades to End (hold).
	DiagAddressing
	// DiagCycle: pointer rows form a self- or mutual loop; resolution
	// stopped at the depth cap and the row degrades to End (hold).
	DiagCycle
	// DiagFidelity: an arpeggio opcode (absolute note or chord call)
	// cannot be expressed as a relative pitch delta and was held.
	DiagFidelity
)

func (k DiagKind) String() string {
	switch k {
	case DiagTruncated:
		return "truncated-table"
	case DiagAddressing:
		return "bad-jump-address"
	case DiagCycle:
		return "jump-cycle"
	case DiagFidelity:
		return "held-opcode"
	}
	return "unknown"
}

// Diagnostic describes one recoverable condition met during conversion.
type Diagnostic struct {
	Kind   DiagKind
	Table  TableKind
	Row    int
	Detail string
}

func (d Diagnostic) String() string {
	return fmt.Sprintf("%s: %s table row %d: %s", d.Kind, d.Table, d.Row, d.Detail)
}
