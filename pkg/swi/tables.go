package swi

import "fmt"

// Table row meta markers shared by all three tables.
const (
	rowMarkerJump = 0xFE
	rowMarkerEnd  = 0xFF
)

// TableKind selects the decode rules for a triplet table.
type TableKind int

const (
	TableWave TableKind = iota
	TablePulse
	TableFilter
)

func (k TableKind) String() string {
	switch k {
	case TableWave:
		return "wf/arp"
	case TablePulse:
		return "pulse"
	case TableFilter:
		return "filter"
	}
	return "unknown"
}

// RowKind tags the decoded variant of a table row.
type RowKind int

const (
	RowEnd      RowKind = iota // hold current state forever
	RowJump                    // jump to Target (pre-resolved row index)
	RowWrite                   // WF table: control byte + arp opcode
	RowAbsolute                // pulse/filter: absolute value set, 1 frame
	RowControl                 // filter: mode/resonance/route/cutoff, 1 frame
	RowSweep                   // pulse/filter: slope per frame for Duration frames
)

// Row is one decoded table row. Only the fields of the tagged variant
// are meaningful.
type Row struct {
	Kind RowKind

	// RowJump: resolved target row index. Resolution is eager; a row
	// that survives decoding as RowJump always has a valid non-jump
	// target.
	Target int

	// RowWrite (WF table).
	Control byte
	Arp     byte
	Aux     byte

	// RowAbsolute / RowControl / RowSweep.
	Value    int // pulse width 1..0xFFF or filter cutoff 0..0x7FF
	Duration int // sweep frames, >= 1
	Slope    int // signed per-frame delta (filter slope is pre-scaled by 8)

	// RowControl (filter table).
	Mode      byte // filter mode bitmask: 1=LP 2=BP 4=HP
	Resonance byte // 0..15, unscaled
	Route     byte // voice routing bits, defaults to voice 1
}

// Table holds the decoded rows of one triplet table plus the raw groups
// they came from.
type Table struct {
	Kind TableKind
	Base int
	Rows []Row
	Raw  [][3]byte
}

// readTriplets slices raw 3-byte groups starting at base until the 0xFF
// terminator or the payload boundary. truncated reports a partial group
// at the end of the payload (implicitly End-terminated).
func readTriplets(payload []byte, base int) (rows [][3]byte, truncated bool) {
	i := base
	for i >= 0 && i+2 < len(payload) {
		if payload[i] == rowMarkerEnd {
			return rows, false
		}
		rows = append(rows, [3]byte{payload[i], payload[i+1], payload[i+2]})
		i += 3
	}
	if i >= 0 && i < len(payload) && payload[i] != rowMarkerEnd {
		truncated = true
	}
	return rows, truncated
}

// NewTable decodes the triplet table of the given kind at base. Decoding
// never fails; malformed content degrades to End rows and is recorded in
// diags.
func NewTable(kind TableKind, payload []byte, base int, diags *[]Diagnostic) *Table {
	raw, truncated := readTriplets(payload, base)
	t := &Table{Kind: kind, Base: base, Raw: raw}
	if truncated {
		*diags = append(*diags, Diagnostic{
			Kind:   DiagTruncated,
			Table:  kind,
			Row:    len(raw),
			Detail: "partial 3-byte group at payload end",
		})
	}

	t.Rows = make([]Row, len(raw))
	for i, group := range raw {
		t.Rows[i] = decodeRow(kind, group)
	}
	t.resolveJumps(diags)
	return t
}

func decodeRow(kind TableKind, g [3]byte) Row {
	switch g[0] {
	case rowMarkerEnd:
		return Row{Kind: RowEnd}
	case rowMarkerJump:
		return Row{Kind: RowJump, Target: -1}
	}

	switch kind {
	case TableWave:
		return Row{Kind: RowWrite, Control: g[0], Arp: g[1], Aux: g[2]}

	case TablePulse:
		if g[0]&0x80 != 0 {
			return Row{Kind: RowAbsolute, Value: int(g[0]&0x0F)<<8 | int(g[1])}
		}
		return Row{Kind: RowSweep, Duration: maxInt(1, int(g[0])), Slope: int(int8(g[1]))}

	case TableFilter:
		// Hybrid control detect: some SW encodings use the third byte's
		// high bit as well.
		if g[0]&0x80 != 0 || g[2]&0x80 != 0 {
			route := g[2] & 0x07
			if route == 0 {
				route = 0x1
			}
			fine := int(g[2]>>4) & 0x07
			cutoff := minInt(0x7FF, int(g[1])<<3|fine)
			return Row{
				Kind:      RowControl,
				Mode:      bandToMode(g[0] >> 4),
				Resonance: g[0] & 0x0F,
				Route:     route,
				Value:     cutoff,
			}
		}
		if g[0] == 0x00 {
			return Row{Kind: RowAbsolute, Value: minInt(0x7FF, int(g[1])<<3)}
		}
		return Row{Kind: RowSweep, Duration: maxInt(1, int(g[0])), Slope: int(int8(g[1])) * 8}
	}
	return Row{Kind: RowEnd}
}

// bandToMode maps the SW filter band nibble to a mode bitmask:
// 1 low-pass, 2 band-pass, 3 high-pass. Anything else falls back to LP.
func bandToMode(n byte) byte {
	switch n & 0x7 {
	case 1:
		return 0x1
	case 2:
		return 0x2
	case 3:
		return 0x4
	}
	return 0x1
}

// jumpIndex resolves an FE pointer (lo, hi) to a row index within the
// table: rowIndex = (ptr - base) / 3.
func jumpIndex(lo, hi byte, base, count int) (int, error) {
	ptr := int(hi)<<8 | int(lo)
	delta := ptr - base
	if delta%3 != 0 {
		return 0, fmt.Errorf("pointer $%04X not row-aligned against base $%02X", ptr, base)
	}
	idx := delta / 3
	if idx < 0 || idx >= count {
		return 0, fmt.Errorf("pointer $%04X resolves to row %d, table has %d", ptr, idx, count)
	}
	return idx, nil
}

// resolveJumps eagerly resolves every jump row to its final non-jump
// target. Chains of jumps are followed with a depth cap of the table
// length; misaligned, out-of-range and cyclic pointers degrade the row
// to End (hold) so simulation never has to re-check them.
func (t *Table) resolveJumps(diags *[]Diagnostic) {
	for i := range t.Rows {
		if t.Rows[i].Kind != RowJump {
			continue
		}

		cur := i
		hops := 0
		for {
			g := t.Raw[cur]
			target, err := jumpIndex(g[1], g[2], t.Base, len(t.Rows))
			if err != nil {
				*diags = append(*diags, Diagnostic{Kind: DiagAddressing, Table: t.Kind, Row: i, Detail: err.Error()})
				t.Rows[i] = Row{Kind: RowEnd}
				break
			}
			if t.Raw[target][0] != rowMarkerJump {
				t.Rows[i].Target = target
				break
			}
			hops++
			if target == i || hops > len(t.Rows) {
				*diags = append(*diags, Diagnostic{Kind: DiagCycle, Table: t.Kind, Row: i, Detail: "pointer chain never reaches a playable row"})
				t.Rows[i] = Row{Kind: RowEnd}
				break
			}
			cur = target
		}
	}
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
