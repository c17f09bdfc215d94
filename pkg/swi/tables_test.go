package swi

import (
	"testing"
)

func TestReadTriplets(t *testing.T) {
	t.Run("stops at terminator", func(t *testing.T) {
		rows, truncated := readTriplets([]byte{0x41, 0x00, 0x00, 0xFF, 0x99}, 0)
		if len(rows) != 1 || truncated {
			t.Errorf("got %d rows truncated=%v, want 1 rows truncated=false", len(rows), truncated)
		}
	})

	t.Run("flags partial trailing group", func(t *testing.T) {
		rows, truncated := readTriplets([]byte{0x41, 0x00, 0x00, 0x41, 0x00}, 0)
		if len(rows) != 1 || !truncated {
			t.Errorf("got %d rows truncated=%v, want 1 rows truncated=true", len(rows), truncated)
		}
	})

	t.Run("base beyond payload yields empty table", func(t *testing.T) {
		rows, truncated := readTriplets([]byte{0x41, 0x00, 0x00, 0xFF}, 40)
		if len(rows) != 0 || truncated {
			t.Errorf("got %d rows truncated=%v, want empty", len(rows), truncated)
		}
	})
}

func TestDecodeRow(t *testing.T) {
	t.Run("pulse absolute", func(t *testing.T) {
		row := decodeRow(TablePulse, [3]byte{0x88, 0x34, 0x00})
		if row.Kind != RowAbsolute || row.Value != 0x834 {
			t.Errorf("got kind=%d value=0x%03X, want absolute 0x834", row.Kind, row.Value)
		}
	})

	t.Run("pulse sweep with negative slope", func(t *testing.T) {
		row := decodeRow(TablePulse, [3]byte{0x04, 0xF0, 0x00})
		if row.Kind != RowSweep || row.Duration != 4 || row.Slope != -16 {
			t.Errorf("got kind=%d dur=%d slope=%d, want sweep 4/-16", row.Kind, row.Duration, row.Slope)
		}
	})

	t.Run("filter control", func(t *testing.T) {
		row := decodeRow(TableFilter, [3]byte{0x91, 0x40, 0x21})
		if row.Kind != RowControl {
			t.Fatalf("got kind=%d, want control", row.Kind)
		}
		if row.Mode != 0x1 || row.Resonance != 0x1 || row.Route != 0x1 {
			t.Errorf("mode/res/route: got %X/%X/%X, want 1/1/1", row.Mode, row.Resonance, row.Route)
		}
		if row.Value != 0x202 {
			t.Errorf("cutoff: got 0x%03X, want 0x202", row.Value)
		}
	})

	t.Run("filter control zero route defaults to voice 1", func(t *testing.T) {
		row := decodeRow(TableFilter, [3]byte{0xA3, 0x00, 0x80})
		if row.Mode != 0x2 || row.Route != 0x1 {
			t.Errorf("mode/route: got %X/%X, want 2/1", row.Mode, row.Route)
		}
	})

	t.Run("filter absolute", func(t *testing.T) {
		row := decodeRow(TableFilter, [3]byte{0x00, 0x80, 0x00})
		if row.Kind != RowAbsolute || row.Value != 0x400 {
			t.Errorf("got kind=%d value=0x%03X, want absolute 0x400", row.Kind, row.Value)
		}
	})

	t.Run("filter sweep scales slope by 8", func(t *testing.T) {
		row := decodeRow(TableFilter, [3]byte{0x02, 0x7F, 0x00})
		if row.Kind != RowSweep || row.Duration != 2 || row.Slope != 127*8 {
			t.Errorf("got kind=%d dur=%d slope=%d, want sweep 2/%d", row.Kind, row.Duration, row.Slope, 127*8)
		}
	})

	t.Run("wave write", func(t *testing.T) {
		row := decodeRow(TableWave, [3]byte{0x41, 0x04, 0x00})
		if row.Kind != RowWrite || row.Control != 0x41 || row.Arp != 0x04 {
			t.Errorf("got kind=%d ctrl=0x%02X arp=0x%02X, want write 41/04", row.Kind, row.Control, row.Arp)
		}
	})
}

func TestJumpIndex(t *testing.T) {
	if idx, err := jumpIndex(0x16, 0x00, 0x10, 4); err != nil || idx != 2 {
		t.Errorf("got idx=%d err=%v, want 2", idx, err)
	}
	if _, err := jumpIndex(0x11, 0x00, 0x10, 4); err == nil {
		t.Error("expected misalignment error")
	}
	if _, err := jumpIndex(0x40, 0x00, 0x10, 4); err == nil {
		t.Error("expected out-of-range error")
	}
	if _, err := jumpIndex(0x01, 0x00, 0x10, 4); err == nil {
		t.Error("expected error for pointer below base")
	}
}

func TestResolveJumps(t *testing.T) {
	t.Run("self jump degrades to End", func(t *testing.T) {
		var diags []Diagnostic
		tab := NewTable(TableWave, []byte{0xFE, 0x00, 0x00, 0xFF}, 0, &diags)
		if tab.Rows[0].Kind != RowEnd {
			t.Errorf("row 0: got kind=%d, want End", tab.Rows[0].Kind)
		}
		if len(diags) != 1 || diags[0].Kind != DiagCycle {
			t.Errorf("diags: got %v, want one jump-cycle", diags)
		}
	})

	t.Run("mutual 2-cycle degrades both rows", func(t *testing.T) {
		var diags []Diagnostic
		tab := NewTable(TableWave, []byte{
			0xFE, 0x03, 0x00, // row 0 -> row 1
			0xFE, 0x00, 0x00, // row 1 -> row 0
			0xFF,
		}, 0, &diags)
		if tab.Rows[0].Kind != RowEnd || tab.Rows[1].Kind != RowEnd {
			t.Errorf("rows: got %d/%d, want End/End", tab.Rows[0].Kind, tab.Rows[1].Kind)
		}
		if len(diags) != 2 {
			t.Errorf("diags: got %d, want 2", len(diags))
		}
	})

	t.Run("chain resolves through to playable row", func(t *testing.T) {
		var diags []Diagnostic
		tab := NewTable(TableWave, []byte{
			0xFE, 0x06, 0x00, // row 0 -> row 2 (a jump)
			0x41, 0x00, 0x00, // row 1
			0xFE, 0x03, 0x00, // row 2 -> row 1
			0xFF,
		}, 0, &diags)
		if tab.Rows[0].Kind != RowJump || tab.Rows[0].Target != 1 {
			t.Errorf("row 0: got kind=%d target=%d, want jump to 1", tab.Rows[0].Kind, tab.Rows[0].Target)
		}
		if len(diags) != 0 {
			t.Errorf("diags: got %v, want none", diags)
		}
	})

	t.Run("misaligned pointer degrades to End", func(t *testing.T) {
		var diags []Diagnostic
		tab := NewTable(TableWave, []byte{0xFE, 0x01, 0x00, 0xFF}, 0, &diags)
		if tab.Rows[0].Kind != RowEnd {
			t.Errorf("row 0: got kind=%d, want End", tab.Rows[0].Kind)
		}
		if len(diags) != 1 || diags[0].Kind != DiagAddressing {
			t.Errorf("diags: got %v, want one bad-jump-address", diags)
		}
	})
}
