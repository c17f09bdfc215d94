package main

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/layout"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"

	"github.com/olivierh59500/swi2remid/pkg/audio"
	"github.com/olivierh59500/swi2remid/pkg/remid"
	"github.com/olivierh59500/swi2remid/pkg/sidsynth"
	"github.com/olivierh59500/swi2remid/pkg/swi"
)

const (
	guiSampleRate = 44100
	guiBufferSize = 2048
)

// ConverterGUI is a small browser over a folder of SID-Wizard
// instruments: pick one, inspect it, audition it, write the preset.
type ConverterGUI struct {
	app    fyne.App
	window fyne.Window

	// Current folder
	folder string
	files  []string

	// Current instrument
	payload *swi.Payload
	result  *swi.Result
	name    string

	// Playback
	player *audio.Player
	mu     sync.Mutex

	// UI elements
	fileList    *widget.List
	nameLabel   *widget.Label
	infoLabel   *widget.Label
	diagLabel   *widget.Label
	convertBtn  *widget.Button
	previewBtn  *widget.Button
	stopBtn     *widget.Button
	hardRestart *widget.Check
	gateOff     *widget.Check
	vibrato     *widget.Check
	statusLabel *widget.Label
}

func NewConverterGUI() *ConverterGUI {
	g := &ConverterGUI{app: app.New()}
	g.createUI()
	return g
}

func (g *ConverterGUI) createUI() {
	g.window = g.app.NewWindow("swi2remid - SID-Wizard to reMID")
	g.window.Resize(fyne.NewSize(760, 520))

	g.fileList = widget.NewList(
		func() int { return len(g.files) },
		func() fyne.CanvasObject {
			label := widget.NewLabel("")
			label.Truncation = fyne.TextTruncateEllipsis
			return label
		},
		func(id widget.ListItemID, item fyne.CanvasObject) {
			item.(*widget.Label).SetText(filepath.Base(g.files[id]))
		},
	)
	g.fileList.OnSelected = func(id widget.ListItemID) {
		g.loadInstrument(g.files[id])
	}

	openBtn := widget.NewButtonWithIcon("Open Folder...", theme.FolderOpenIcon(), g.openFolder)

	g.nameLabel = widget.NewLabel("No instrument loaded")
	g.nameLabel.TextStyle = fyne.TextStyle{Bold: true}
	g.infoLabel = widget.NewLabel("")
	g.diagLabel = widget.NewLabel("")
	g.diagLabel.Wrapping = fyne.TextWrapWord

	g.hardRestart = widget.NewCheck("Hard restart", func(bool) { g.reconvert() })
	g.gateOff = widget.NewCheck("Gate-off rows", func(bool) { g.reconvert() })
	g.vibrato = widget.NewCheck("Vibrato", func(bool) { g.reconvert() })

	g.previewBtn = widget.NewButtonWithIcon("Preview", theme.MediaPlayIcon(), g.preview)
	g.stopBtn = widget.NewButtonWithIcon("Stop", theme.MediaStopIcon(), g.stopPreview)
	g.convertBtn = widget.NewButtonWithIcon("Save .conf...", theme.DocumentSaveIcon(), g.saveConf)
	g.previewBtn.Disable()
	g.stopBtn.Disable()
	g.convertBtn.Disable()

	g.statusLabel = widget.NewLabel("Open a folder of .swi instruments to begin")

	infoCard := widget.NewCard("Instrument", "", container.NewVBox(
		g.nameLabel,
		g.infoLabel,
		widget.NewSeparator(),
		g.diagLabel,
	))

	controls := container.NewVBox(
		container.NewHBox(g.hardRestart, g.gateOff, g.vibrato),
		container.NewHBox(
			layout.NewSpacer(),
			g.previewBtn,
			g.stopBtn,
			g.convertBtn,
			layout.NewSpacer(),
		),
	)

	right := container.NewBorder(
		nil,
		container.NewVBox(controls, widget.NewSeparator(), g.statusLabel),
		nil, nil,
		infoCard,
	)

	left := container.NewBorder(openBtn, nil, nil, nil, container.NewScroll(g.fileList))

	split := container.NewHSplit(left, right)
	split.SetOffset(0.35)

	g.window.SetContent(split)
	g.window.SetOnClosed(g.stopPreview)
}

func (g *ConverterGUI) openFolder() {
	dialog.ShowFolderOpen(func(uri fyne.ListableURI, err error) {
		if err != nil || uri == nil {
			return
		}
		g.scanFolder(uri.Path())
	}, g.window)
}

func (g *ConverterGUI) scanFolder(dir string) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		dialog.ShowError(err, g.window)
		return
	}

	g.folder = dir
	g.files = g.files[:0]
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if strings.EqualFold(filepath.Ext(e.Name()), ".swi") {
			g.files = append(g.files, filepath.Join(dir, e.Name()))
		}
	}
	sort.Strings(g.files)

	g.fileList.Refresh()
	g.statusLabel.SetText(fmt.Sprintf("%d instrument(s) in %s", len(g.files), filepath.Base(dir)))
}

func (g *ConverterGUI) loadInstrument(path string) {
	payload, err := swi.ReadPayloadFile(path)
	if err != nil {
		dialog.ShowError(err, g.window)
		return
	}

	g.payload = payload
	g.name = remid.SanitizeName(payload.Name())
	if g.name == "" || g.name == "instrument" {
		g.name = remid.SanitizeName(strings.TrimSuffix(filepath.Base(path), filepath.Ext(path)))
	}

	g.reconvert()
	g.previewBtn.Enable()
	g.convertBtn.Enable()
}

func (g *ConverterGUI) options() swi.Options {
	opts := swi.DefaultOptions()
	opts.HardRestart = g.hardRestart.Checked
	opts.RespectGateOff = g.gateOff.Checked
	opts.Vibrato.Enabled = g.vibrato.Checked
	return opts
}

func (g *ConverterGUI) reconvert() {
	if g.payload == nil {
		return
	}

	g.result = swi.Convert(g.payload, g.options())

	g.nameLabel.SetText(g.name)
	g.infoLabel.SetText(fmt.Sprintf(
		"AD/SR %02X %02X  •  ARP speed %d  •  %s, %d frames, %d events",
		g.payload.AttackDecay(), g.payload.SustainRelease(),
		g.payload.ArpSpeed(),
		g.result.Class, g.result.Horizon, len(g.result.Events)))

	if len(g.result.Diagnostics) == 0 {
		g.diagLabel.SetText("Converts cleanly")
	} else {
		var lines []string
		for _, d := range g.result.Diagnostics {
			lines = append(lines, d.String())
		}
		g.diagLabel.SetText(strings.Join(lines, "\n"))
	}
}

func (g *ConverterGUI) preview() {
	g.stopPreview()

	g.mu.Lock()
	defer g.mu.Unlock()
	if g.result == nil {
		return
	}

	synth := sidsynth.New(g.result, sidsynth.Config{
		SampleRate: guiSampleRate,
		FrameRate:  50,
		PlayFrames: 100,
	})

	out, err := audio.NewStreamingOtoOutput()
	if err != nil {
		dialog.ShowError(err, g.window)
		return
	}

	g.player = audio.NewPlayer(synth, out)
	if err := g.player.Start(guiSampleRate, guiBufferSize); err != nil {
		dialog.ShowError(err, g.window)
		g.player = nil
		return
	}

	g.stopBtn.Enable()
	g.statusLabel.SetText("Playing " + g.name)

	player := g.player
	go func() {
		player.Wait()
		g.mu.Lock()
		if g.player == player {
			g.player = nil
		}
		g.mu.Unlock()
	}()
}

func (g *ConverterGUI) stopPreview() {
	g.mu.Lock()
	player := g.player
	g.player = nil
	g.mu.Unlock()

	if player != nil {
		player.Stop()
	}
	if g.stopBtn != nil {
		g.stopBtn.Disable()
	}
}

func (g *ConverterGUI) saveConf() {
	if g.result == nil {
		return
	}

	conf := remid.RenderConf(g.name, g.result, remid.DefaultConfOptions())

	dialog.ShowFileSave(func(writer fyne.URIWriteCloser, err error) {
		if err != nil || writer == nil {
			return
		}
		defer writer.Close()

		if _, err := writer.Write([]byte(conf)); err != nil {
			dialog.ShowError(err, g.window)
			return
		}
		g.statusLabel.SetText("Saved " + filepath.Base(writer.URI().Path()))
	}, g.window)
}

func (g *ConverterGUI) Run() {
	g.window.ShowAndRun()
}
