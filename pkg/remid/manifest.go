package remid

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
)

// Preset names one .conf file and its human-readable label for the LV2
// manifest.
type Preset struct {
	ConfName string
	Label    string
}

const (
	presetSubjectPrefix = "http://github.com/ssj71/reMID.lv2/blob/master/instruments/"
	presetStateKey      = "<http://github.com/ssj71/reMID.lv2/blob/master/instruments/instruments.conf>"
	pluginURI           = "<http://github.com/ssj71/reMID.lv2>"
)

var labelSpace = regexp.MustCompile(`\s+`)

// SafeLabel collapses whitespace in a preset label.
func SafeLabel(s string) string {
	s = strings.TrimSpace(labelSpace.ReplaceAllString(s, " "))
	if s == "" {
		return "instrument"
	}
	return s
}

// PresetBlock renders one pset:Preset Turtle block for a .conf file.
func PresetBlock(confName, label string) string {
	subj := fmt.Sprintf("<%s%s>", presetSubjectPrefix, confName)
	return subj + "\n" +
		"\ta pset:Preset ;\n" +
		"\tlv2:appliesTo " + pluginURI + " ;\n" +
		"\trdfs:label \"" + label + "\" ;\n" +
		"\tstate:state [\n" +
		"\t\t" + presetStateKey + " <" + confName + ">\n" +
		"\t] .\n"
}

// ManifestHasPreset reports whether the manifest text already carries a
// preset block for the .conf file, keyed by filename.
func ManifestHasPreset(text, confName string) bool {
	return strings.Contains(text, "/instruments/"+confName+">") ||
		strings.Contains(text, "instruments.conf> <"+confName+">")
}

// AppendPresets adds the missing preset blocks to the manifest file,
// creating it if needed. Presets already present are left untouched, so
// repeated runs converge. Returns how many blocks were appended.
func AppendPresets(manifestPath string, presets []Preset) (int, error) {
	if len(presets) == 0 {
		return 0, nil
	}

	text := ""
	if data, err := os.ReadFile(manifestPath); err == nil {
		text = string(data)
	} else if !os.IsNotExist(err) {
		return 0, fmt.Errorf("failed to read manifest: %w", err)
	}

	// Dedup by filename; last label wins.
	seen := make(map[string]int)
	deduped := presets[:0:0]
	for _, p := range presets {
		if i, ok := seen[p.ConfName]; ok {
			deduped[i] = p
			continue
		}
		seen[p.ConfName] = len(deduped)
		deduped = append(deduped, p)
	}

	var blocks []string
	for _, p := range deduped {
		if ManifestHasPreset(text, p.ConfName) {
			continue
		}
		blocks = append(blocks, PresetBlock(p.ConfName, SafeLabel(p.Label)))
	}
	if len(blocks) == 0 {
		return 0, nil
	}

	if text != "" && !strings.HasSuffix(text, "\n") {
		text += "\n"
	}
	if text != "" && !strings.HasSuffix(text, "\n\n") {
		text += "\n"
	}
	text += strings.Join(blocks, "\n")

	if err := os.MkdirAll(filepath.Dir(manifestPath), 0o755); err != nil {
		return 0, fmt.Errorf("failed to create manifest directory: %w", err)
	}
	if err := os.WriteFile(manifestPath, []byte(text), 0o644); err != nil {
		return 0, fmt.Errorf("failed to write manifest: %w", err)
	}
	return len(blocks), nil
}
