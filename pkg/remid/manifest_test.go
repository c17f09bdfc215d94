package remid

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestAppendPresets(t *testing.T) {
	dir := t.TempDir()
	manifest := filepath.Join(dir, "src", "remid.ttl")

	presets := []Preset{
		{ConfName: "lead1.conf", Label: "Lead  1"},
		{ConfName: "bass.conf", Label: "Bass"},
	}

	n, err := AppendPresets(manifest, presets)
	if err != nil {
		t.Fatalf("AppendPresets: %v", err)
	}
	if n != 2 {
		t.Errorf("appended: got %d, want 2", n)
	}

	data, err := os.ReadFile(manifest)
	if err != nil {
		t.Fatalf("read manifest: %v", err)
	}
	text := string(data)
	if !strings.Contains(text, "/instruments/lead1.conf>") {
		t.Error("manifest missing lead1 preset subject")
	}
	if !strings.Contains(text, `rdfs:label "Lead 1"`) {
		t.Error("label whitespace not collapsed")
	}

	t.Run("second run is a no-op", func(t *testing.T) {
		n, err := AppendPresets(manifest, presets)
		if err != nil {
			t.Fatalf("AppendPresets: %v", err)
		}
		if n != 0 {
			t.Errorf("appended: got %d, want 0", n)
		}
		again, _ := os.ReadFile(manifest)
		if string(again) != text {
			t.Error("manifest changed on idempotent re-run")
		}
	})

	t.Run("dedup within one batch, last label wins", func(t *testing.T) {
		other := filepath.Join(dir, "other.ttl")
		n, err := AppendPresets(other, []Preset{
			{ConfName: "dup.conf", Label: "first"},
			{ConfName: "dup.conf", Label: "second"},
		})
		if err != nil {
			t.Fatalf("AppendPresets: %v", err)
		}
		if n != 1 {
			t.Errorf("appended: got %d, want 1", n)
		}
		data, _ := os.ReadFile(other)
		if !strings.Contains(string(data), `rdfs:label "second"`) {
			t.Error("expected last label to win")
		}
		if strings.Contains(string(data), `rdfs:label "first"`) {
			t.Error("dropped label still present")
		}
	})
}

func TestManifestHasPreset(t *testing.T) {
	block := PresetBlock("lead1.conf", "Lead 1")
	if !ManifestHasPreset(block, "lead1.conf") {
		t.Error("block should register as present")
	}
	if ManifestHasPreset(block, "bass.conf") {
		t.Error("unrelated preset reported present")
	}
}
