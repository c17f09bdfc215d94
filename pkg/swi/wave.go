package swi

// waveTimeline is the materialized WF/ARP track: the control byte, the
// accumulated semitone offset and the active row per frame, covering
// exactly one pass across the table (the attack region).
type waveTimeline struct {
	controls []byte
	offsets  []int
	rowAt    []int

	// hasLoop is set when control flow returns to a previously visited
	// write row; loopFrame is the frame that row first started on.
	hasLoop   bool
	loopFrame int
}

// materializeWave walks the WF/ARP table once. Each write row holds its
// control byte for step frames and feeds its arpeggio opcode into the
// running offset; the first row acts as a one-time seed. The walk stops
// at End, at the payload boundary, or when a jump lands on an already
// visited row (the loop point).
func materializeWave(t *Table, control0 byte, step int, opts Options, diags *[]Diagnostic) waveTimeline {
	wt := waveTimeline{loopFrame: -1}
	sanitize := func(c byte) byte {
		if opts.VerbatimControl {
			return c
		}
		return c &^ 0x08 // clear TEST only, never force a waveform
	}

	visited := make(map[int]bool)
	entryFrame := make(map[int]int)
	offset := 0
	i := 0
walk:
	for i < len(t.Rows) {
		switch row := t.Rows[i]; row.Kind {
		case RowEnd:
			break walk

		case RowJump:
			if visited[row.Target] {
				wt.hasLoop = true
				wt.loopFrame = entryFrame[row.Target]
				break walk
			}
			i = row.Target

		case RowWrite:
			if visited[i] {
				wt.hasLoop = true
				wt.loopFrame = entryFrame[i]
				break walk
			}
			visited[i] = true
			entryFrame[i] = len(wt.controls)

			if !opts.SuppressArpeggio {
				op := decodeArpOp(row.Arp)
				if op.Convertible() {
					offset += op.Delta
				} else {
					detail := "absolute note index held at previous offset"
					if op.Kind == ArpChord {
						detail = "chord call held at previous offset"
					}
					*diags = append(*diags, Diagnostic{Kind: DiagFidelity, Table: TableWave, Row: i, Detail: detail})
				}
			}

			ctrl := sanitize(row.Control)
			for k := 0; k < step; k++ {
				wt.controls = append(wt.controls, ctrl)
				wt.offsets = append(wt.offsets, offset)
				wt.rowAt = append(wt.rowAt, i)
			}
			i++
		}
	}

	if len(wt.controls) == 0 {
		// No write rows: one step of the header control byte.
		ctrl := sanitize(control0)
		for k := 0; k < step; k++ {
			wt.controls = append(wt.controls, ctrl)
			wt.offsets = append(wt.offsets, 0)
			wt.rowAt = append(wt.rowAt, -1)
		}
		wt.hasLoop = false
		wt.loopFrame = -1
	}
	return wt
}
