package swi

// pulseTimeline is the materialized pulse track: one 12-bit value and
// the active table row per frame.
type pulseTimeline struct {
	values []int
	rowAt  []int

	// static marks a table with at most one absolute set and no sweep
	// rows: the value holds forever and is emitted exactly once.
	static bool
}

// initialPulse picks the starting pulse width: the first absolute set
// in the table, else the header guess, else 0x800. Zero is inaudible
// and is promoted to 1.
func initialPulse(t *Table, headerGuess int) int {
	for _, row := range t.Rows {
		if row.Kind == RowAbsolute {
			return maxInt(1, row.Value)
		}
	}
	if headerGuess > 0 {
		return headerGuess & 0xFFF
	}
	return 0x800
}

// materializePulse marches the pulse table across the given frame count
// and returns the per-frame value track. Absolute sets consume one
// frame; sweeps add their slope each frame for their duration, clamped
// to [1, 0xFFF]; End holds the current value for the remaining frames.
func materializePulse(t *Table, frames, initial int) pulseTimeline {
	pt := pulseTimeline{
		values: make([]int, frames),
		rowAt:  make([]int, frames),
	}

	hasSweep := false
	absSets := 0
	for _, row := range t.Rows {
		switch row.Kind {
		case RowSweep:
			hasSweep = true
		case RowAbsolute:
			absSets++
		}
	}
	pt.static = !hasSweep && absSets <= 1

	v := initial
	if pt.static {
		for f := range pt.values {
			pt.values[f] = v
			pt.rowAt[f] = -1
		}
		return pt
	}

	i := 0
	active := -1
	remaining := 0
	slope := 0
	ended := false
	for f := 0; f < frames; f++ {
		for !ended && remaining == 0 {
			if i >= len(t.Rows) {
				ended = true
				break
			}
			switch row := t.Rows[i]; row.Kind {
			case RowEnd:
				ended = true
			case RowJump:
				i = row.Target
			case RowAbsolute:
				v = clampInt(row.Value, 1, 0xFFF)
				remaining, slope, active = 1, 0, i
				i++
			case RowSweep:
				remaining, slope, active = row.Duration, row.Slope, i
				i++
			}
		}
		if remaining > 0 {
			if slope != 0 {
				v = clampInt(v+slope, 1, 0xFFF)
			}
			remaining--
		}
		pt.values[f] = v
		pt.rowAt[f] = active
	}
	return pt
}
