package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/olivierh59500/swi2remid/pkg/audio"
	"github.com/olivierh59500/swi2remid/pkg/remid"
	"github.com/olivierh59500/swi2remid/pkg/sidsynth"
	"github.com/olivierh59500/swi2remid/pkg/swi"
)

var (
	outFile      = flag.String("out", "", "Output .conf file (default: <input>.conf)")
	presetName   = flag.String("name", "", "Preset name (default: name embedded in the instrument)")
	programSpeed = flag.Int("program-speed", 50, "reMID program_speed in frames per second")
	speedMult    = flag.Int("speed-mult", 1, "Multiply program_speed (finer script timing)")
	arpPlus1     = flag.Bool("arp-plus1", false, "Add one frame to each WF/ARP row duration")
	strictWF     = flag.Bool("strict-wf", false, "Keep control bytes verbatim (do not clear TEST)")
	noEmitArp    = flag.Bool("no-emit-arp", false, "Drop all pitch events (steady pitch)")
	hardRestart  = flag.Bool("hard-restart", false, "Emit a TEST+GATE jab before the first control write")
	sustainLen   = flag.Int("sustain-frames", 64, "Pulse/filter evolution bound after the attack (one-shot)")
	noDefer      = flag.Bool("no-defer-filter", false, "Do not defer the first cutoff past a noise-only attack")
	noOneShot    = flag.Bool("no-oneshot", false, "Do not reclassify steady looping instruments as one-shot")
	gateOff      = flag.Bool("gate-off", false, "Honor the header gate-off row indices")
	vibrato      = flag.Bool("vibrato", false, "Overlay the header vibrato as a pitch LFO")
	vibDepth     = flag.Float64("vib-depth", -1, "Vibrato depth in semitones (-1: from header)")
	vibDelay     = flag.Int("vib-delay", -1, "Vibrato onset delay in frames (-1: from header)")
	vibRate      = flag.Int("vib-rate", 4, "Vibrato rate: a cycle spans 4x this many frames")
	vibSine      = flag.Bool("vib-sine", false, "Sine vibrato instead of triangle")
	cutoffScale  = flag.Float64("cutoff-scale", 1.0, "Calibration factor for filter cutoff")
	resScale     = flag.Float64("res-scale", 1.0, "Calibration factor for filter resonance")
	manifestTTL  = flag.String("manifest", "", "reMID LV2 manifest.ttl to register the preset in")
	infoOnly     = flag.Bool("info", false, "Show instrument info only")
	play         = flag.Bool("play", false, "Audition the converted instrument")
	wavFile      = flag.String("wav", "", "Render the audition to a WAV file")
	sampleRate   = flag.Int("rate", 44100, "Sample rate (Hz)")
	bufferSize   = flag.Int("buffer", 2048, "Buffer size")
	playFrames   = flag.Int("play-frames", 150, "Frames to hold the note when auditioning")
)

func main() {
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s [options] <swi-file>\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "swi2remid - Convert SID-Wizard instruments to reMID presets\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
	}

	flag.Parse()

	if flag.NArg() < 1 {
		flag.Usage()
		os.Exit(1)
	}

	swiFile := flag.Arg(0)

	payload, err := swi.ReadPayloadFile(swiFile)
	if err != nil {
		log.Fatalf("Failed to read instrument: %v", err)
	}

	name := *presetName
	if name == "" {
		name = payload.Name()
	}
	if name == "" {
		name = strings.TrimSuffix(filepath.Base(swiFile), filepath.Ext(swiFile))
	}
	name = remid.SanitizeName(name)

	goWave, goPulse, goFilter := payload.GateOffRows()
	fmt.Printf("Instrument: %s\n", name)
	fmt.Printf("AD/SR:      %02X %02X\n", payload.AttackDecay(), payload.SustainRelease())
	fmt.Printf("ARP speed:  %d\n", payload.ArpSpeed())
	fmt.Printf("Vibrato:    depth %d delay %d\n", payload.VibratoDepth(), payload.VibratoDelay())
	fmt.Printf("Gate-off:   WF %02X PW %02X FL %02X\n", goWave, goPulse, goFilter)
	fmt.Printf("\n")

	res := swi.Convert(payload, buildOptions())

	for _, d := range res.Diagnostics {
		fmt.Printf("Warning: %s\n", d)
	}
	if !res.FullyConvertible() {
		fmt.Printf("Note: some table features were approximated, audition the result\n")
	}

	fmt.Printf("Class:      %s\n", res.Class)
	fmt.Printf("Attack:     %d frames\n", res.AttackFrames)
	if res.Class == swi.ClassLooping {
		fmt.Printf("Loop:       frame %d\n", res.LoopFrame)
	}
	fmt.Printf("Events:     %d\n", len(res.Events))
	fmt.Printf("\n")

	if *infoOnly {
		return
	}

	confOpts := remid.ConfOptions{
		ProgramSpeed: *programSpeed,
		SpeedMult:    *speedMult,
	}
	conf := remid.RenderConf(name, res, confOpts)

	out := *outFile
	if out == "" {
		out = strings.TrimSuffix(swiFile, filepath.Ext(swiFile)) + ".conf"
	}
	if err := os.WriteFile(out, []byte(conf), 0644); err != nil {
		log.Fatalf("Failed to write preset: %v", err)
	}
	fmt.Printf("Wrote %s\n", out)

	if *manifestTTL != "" {
		n, err := remid.AppendPresets(*manifestTTL, []remid.Preset{
			{ConfName: filepath.Base(out), Label: name},
		})
		if err != nil {
			log.Fatalf("Failed to update manifest: %v", err)
		}
		if n > 0 {
			fmt.Printf("Registered preset in %s\n", *manifestTTL)
		} else {
			fmt.Printf("Preset already in %s\n", *manifestTTL)
		}
	}

	if *play || *wavFile != "" {
		if err := audition(res); err != nil {
			log.Fatalf("Audition failed: %v", err)
		}
	}
}

func buildOptions() swi.Options {
	opts := swi.DefaultOptions()
	opts.StepFrameBias = *arpPlus1
	opts.VerbatimControl = *strictWF
	opts.SuppressArpeggio = *noEmitArp
	opts.HardRestart = *hardRestart
	opts.SustainFrames = *sustainLen
	opts.DeferFilterUntilTonal = !*noDefer
	opts.OneShotDetection = !*noOneShot
	opts.RespectGateOff = *gateOff
	opts.Vibrato.Enabled = *vibrato
	opts.Vibrato.DepthSemitones = *vibDepth
	opts.Vibrato.DelayFrames = *vibDelay
	opts.Vibrato.RateFrames = *vibRate
	if *vibSine {
		opts.Vibrato.Shape = swi.VibratoSine
	}
	opts.CutoffScale = *cutoffScale
	opts.ResonanceScale = *resScale
	return opts
}

func audition(res *swi.Result) error {
	synth := sidsynth.New(res, sidsynth.Config{
		SampleRate: *sampleRate,
		FrameRate:  *programSpeed,
		PlayFrames: *playFrames,
	})

	var out audio.Output
	var err error
	switch {
	case *wavFile != "":
		out, err = audio.NewWAVOutput(*wavFile)
	default:
		out, err = audio.NewStreamingOtoOutput()
		if err != nil {
			fmt.Printf("Warning: audio device unavailable (%v), pacing silently\n", err)
			out, err = audio.NewFallbackOutput()
		}
	}
	if err != nil {
		return err
	}

	player := audio.NewPlayer(synth, out)
	if err := player.Start(*sampleRate, *bufferSize); err != nil {
		return err
	}

	fmt.Printf("Playing...\n")
	player.Wait()
	fmt.Printf("Done.\n")
	return nil
}
