package swi

// Filter defaults used when the table sets nothing: a mid cutoff,
// low-pass, full resonance routed to voice 1.
const (
	defaultCutoff = 0x600
	defaultMode   = 0x1
	defaultRes    = 0xF
	defaultRoute  = 0x1
)

// filterTimeline is the materialized filter track: cutoff, mode and
// packed resonance/routing inputs per frame, plus the final state for
// the preset header.
type filterTimeline struct {
	cutoff []int
	mode   []byte
	res    []byte
	route  []byte
	rowAt  []int

	finalMode  byte
	finalRes   byte
	finalRoute byte
}

// materializeFilter marches the filter table across the given frame
// count. Control and absolute rows consume one frame; sweeps add their
// pre-scaled slope each frame, clamped to [0, 0x7FF]; End holds.
func materializeFilter(t *Table, frames int) filterTimeline {
	ft := filterTimeline{
		cutoff: make([]int, frames),
		mode:   make([]byte, frames),
		res:    make([]byte, frames),
		route:  make([]byte, frames),
		rowAt:  make([]int, frames),
	}

	v := defaultCutoff
	mode := byte(defaultMode)
	res := byte(defaultRes)
	route := byte(defaultRoute)

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
			case RowControl:
				mode, res, route = row.Mode, row.Resonance, row.Route
				v = clampInt(row.Value, 0, 0x7FF)
				remaining, slope, active = 1, 0, i
				i++
			case RowAbsolute:
				v = clampInt(row.Value, 0, 0x7FF)
				remaining, slope, active = 1, 0, i
				i++
			case RowSweep:
				remaining, slope, active = row.Duration, row.Slope, i
				i++
			}
		}
		if remaining > 0 {
			if slope != 0 {
				v = clampInt(v+slope, 0, 0x7FF)
			}
			remaining--
		}
		ft.cutoff[f] = v
		ft.mode[f] = mode
		ft.res[f] = res
		ft.route[f] = route
		ft.rowAt[f] = active
	}

	ft.finalMode, ft.finalRes, ft.finalRoute = mode, res, route
	return ft
}
