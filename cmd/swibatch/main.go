package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/olivierh59500/swi2remid/pkg/remid"
	"github.com/olivierh59500/swi2remid/pkg/swi"
)

var (
	outDir      = flag.String("out", "", "Output directory (default: alongside the inputs)")
	suffix      = flag.String("suffix", "", "Suffix appended to each preset name")
	overwrite   = flag.Bool("overwrite", false, "Overwrite existing .conf files")
	manifestTTL = flag.String("manifest", "", "reMID LV2 manifest.ttl to register the presets in")
	profileFile = flag.String("profile", "", "TOML profile with conversion options")
	quiet       = flag.Bool("quiet", false, "Only print the summary")
)

// profile mirrors the conversion options as a TOML document, so a whole
// instrument collection converts with one shared setup.
type profile struct {
	ProgramSpeed  int     `toml:"program_speed"`
	SpeedMult     int     `toml:"speed_mult"`
	ArpPlus1      bool    `toml:"arp_plus1"`
	StrictWF      bool    `toml:"strict_wf"`
	NoEmitArp     bool    `toml:"no_emit_arp"`
	HardRestart   bool    `toml:"hard_restart"`
	SustainFrames int     `toml:"sustain_frames"`
	NoDeferFilter bool    `toml:"no_defer_filter"`
	NoOneShot     bool    `toml:"no_oneshot"`
	GateOff       bool    `toml:"gate_off"`
	Vibrato       bool    `toml:"vibrato"`
	VibDepth      float64 `toml:"vib_depth"`
	VibDelay      int     `toml:"vib_delay"`
	VibRate       int     `toml:"vib_rate"`
	VibSine       bool    `toml:"vib_sine"`
	CutoffScale   float64 `toml:"cutoff_scale"`
	ResScale      float64 `toml:"res_scale"`
}

func defaultProfile() profile {
	opts := swi.DefaultOptions()
	return profile{
		ProgramSpeed:  50,
		SpeedMult:     1,
		SustainFrames: opts.SustainFrames,
		VibDepth:      opts.Vibrato.DepthSemitones,
		VibDelay:      opts.Vibrato.DelayFrames,
		VibRate:       opts.Vibrato.RateFrames,
		CutoffScale:   opts.CutoffScale,
		ResScale:      opts.ResonanceScale,
	}
}

func (p profile) options() swi.Options {
	opts := swi.DefaultOptions()
	opts.StepFrameBias = p.ArpPlus1
	opts.VerbatimControl = p.StrictWF
	opts.SuppressArpeggio = p.NoEmitArp
	opts.HardRestart = p.HardRestart
	opts.SustainFrames = p.SustainFrames
	opts.DeferFilterUntilTonal = !p.NoDeferFilter
	opts.OneShotDetection = !p.NoOneShot
	opts.RespectGateOff = p.GateOff
	opts.Vibrato.Enabled = p.Vibrato
	opts.Vibrato.DepthSemitones = p.VibDepth
	opts.Vibrato.DelayFrames = p.VibDelay
	opts.Vibrato.RateFrames = p.VibRate
	if p.VibSine {
		opts.Vibrato.Shape = swi.VibratoSine
	}
	opts.CutoffScale = p.CutoffScale
	opts.ResonanceScale = p.ResScale
	return opts
}

func main() {
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s [options] <swi-dir-or-files>\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "swibatch - Convert a SID-Wizard instrument collection to reMID presets\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
	}

	flag.Parse()

	if flag.NArg() < 1 {
		flag.Usage()
		os.Exit(1)
	}

	prof := defaultProfile()
	if *profileFile != "" {
		if _, err := toml.DecodeFile(*profileFile, &prof); err != nil {
			log.Fatalf("Failed to read profile: %v", err)
		}
	}
	opts := prof.options()

	inputs, err := collectInputs(flag.Args())
	if err != nil {
		log.Fatalf("%v", err)
	}
	if len(inputs) == 0 {
		log.Fatalf("No .swi files found")
	}

	var (
		presets   []remid.Preset
		converted int
		skipped   int
		failed    int
	)

	for _, in := range inputs {
		name, out, err := convertOne(in, opts, prof)
		switch {
		case err == errExists:
			skipped++
			if !*quiet {
				fmt.Printf("SKIP %s (exists)\n", filepath.Base(out))
			}
		case err != nil:
			failed++
			fmt.Printf("FAIL %s: %v\n", filepath.Base(in), err)
		default:
			converted++
			if !*quiet {
				fmt.Printf("OK   %s -> %s\n", filepath.Base(in), filepath.Base(out))
			}
			presets = append(presets, remid.Preset{
				ConfName: filepath.Base(out),
				Label:    name,
			})
		}
	}

	if *manifestTTL != "" && len(presets) > 0 {
		n, err := remid.AppendPresets(*manifestTTL, presets)
		if err != nil {
			log.Fatalf("Failed to update manifest: %v", err)
		}
		fmt.Printf("Registered %d new preset(s) in %s\n", n, *manifestTTL)
	}

	fmt.Printf("\n%d converted, %d skipped, %d failed\n", converted, skipped, failed)
	if failed > 0 {
		os.Exit(1)
	}
}

var errExists = fmt.Errorf("output exists")

// collectInputs expands directories into their sorted *.swi contents and
// passes explicit files through.
func collectInputs(args []string) ([]string, error) {
	var inputs []string
	for _, arg := range args {
		st, err := os.Stat(arg)
		if err != nil {
			return nil, fmt.Errorf("stat %s: %w", arg, err)
		}
		if !st.IsDir() {
			inputs = append(inputs, arg)
			continue
		}
		entries, err := os.ReadDir(arg)
		if err != nil {
			return nil, fmt.Errorf("read dir %s: %w", arg, err)
		}
		for _, e := range entries {
			if e.IsDir() {
				continue
			}
			if strings.EqualFold(filepath.Ext(e.Name()), ".swi") {
				inputs = append(inputs, filepath.Join(arg, e.Name()))
			}
		}
	}
	sort.Strings(inputs)
	return inputs, nil
}

func convertOne(in string, opts swi.Options, prof profile) (name, out string, err error) {
	payload, err := swi.ReadPayloadFile(in)
	if err != nil {
		return "", "", err
	}

	name = payload.Name()
	if name == "" {
		name = strings.TrimSuffix(filepath.Base(in), filepath.Ext(in))
	}
	name = remid.SanitizeName(name + *suffix)

	dir := *outDir
	if dir == "" {
		dir = filepath.Dir(in)
	} else if err := os.MkdirAll(dir, 0755); err != nil {
		return "", "", err
	}
	out = filepath.Join(dir, name+".conf")

	if !*overwrite {
		if _, statErr := os.Stat(out); statErr == nil {
			return name, out, errExists
		}
	}

	res := swi.Convert(payload, opts)
	if !*quiet {
		for _, d := range res.Diagnostics {
			fmt.Printf("     %s: %s\n", filepath.Base(in), d)
		}
	}

	conf := remid.RenderConf(name, res, remid.ConfOptions{
		ProgramSpeed: prof.ProgramSpeed,
		SpeedMult:    prof.SpeedMult,
	})
	if err := os.WriteFile(out, []byte(conf), 0644); err != nil {
		return "", "", err
	}
	return name, out, nil
}
