package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"
	"golang.org/x/term"

	"go-cvkeys/bridge"
	"go-cvkeys/config"
	"go-cvkeys/dac"
	"go-cvkeys/debug"
	"go-cvkeys/engine"
	"go-cvkeys/gate"
	"go-cvkeys/matrix"
	"go-cvkeys/midi"
	"go-cvkeys/monitor"
	"go-cvkeys/script"
	"go-cvkeys/theme"
	"go-cvkeys/tui"
	"go-cvkeys/voice"
)

func main() {
	configPath := flag.String("config", "", "config file (default ~/.config/go-cvkeys/config.json)")
	headless := flag.Bool("headless", false, "run without the terminal UI")
	debugFlag := flag.Bool("debug", false, "write a debug log")
	scriptPath := flag.String("script", "", "Lua script to play on start")
	palettePath := flag.String("palette", "", "GIMP .gpl palette for the UI")
	flag.Parse()

	cfg, err := loadConfig(*configPath)
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	interactive := !*headless && term.IsTerminal(int(os.Stdout.Fd()))
	if *debugFlag || cfg.Debug.Enabled {
		if err := debug.Enable(cfg.Debug.Path); err != nil {
			log.Fatalf("debug log: %v", err)
		}
		defer debug.Disable()
	} else if !interactive {
		debug.SetOutput(os.Stderr)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	vm := matrix.NewVirtual(matrix.DefaultLayout)
	hw, closeHW, err := openHardware(cfg, vm)
	if err != nil {
		log.Fatalf("%v", err)
	}
	defer closeHW()

	eng, err := engine.New(cfg, hw)
	if err != nil {
		log.Fatalf("%v", err)
	}

	if cfg.MIDI.MirrorPort != "" {
		mirror, err := midi.OpenMirror(cfg.MIDI.MirrorPort, cfg.MIDI.Channel, midi.NoteMap{Base: cfg.MIDI.BaseNote})
		if err != nil {
			log.Fatalf("%v", err)
		}
		eng.Observe(mirror.Update)
	}

	// MIDI keyboards play onto the virtual matrix (handles hot-plug)
	deviceMgr := midi.NewDeviceManager(midi.Filter{Include: cfg.MIDI.Inputs, Exclude: cfg.MIDI.Exclude})
	go deviceMgr.Run(ctx)
	go midi.Route(ctx, deviceMgr, vm, midi.NoteMap{Base: cfg.MIDI.BaseNote})

	var updates <-chan voice.State
	if interactive {
		var observe func(voice.State)
		updates, observe = tui.Updates()
		eng.Observe(observe)
	}

	done := make(chan error, 1)
	go func() { done <- eng.Run(ctx) }()

	if *scriptPath != "" {
		go func() {
			if err := script.New(vm).RunFile(ctx, *scriptPath); err != nil {
				debug.Log("script", "%v", err)
				if !interactive {
					fmt.Fprintln(os.Stderr, err)
				}
			}
		}()
	}

	if interactive {
		th, err := loadTheme(*palettePath)
		if err != nil {
			log.Fatalf("%v", err)
		}
		p := tea.NewProgram(tui.NewModel(eng, vm, th, updates), tea.WithAltScreen(), tea.WithContext(ctx))
		if _, err := p.Run(); err != nil && ctx.Err() == nil {
			fmt.Printf("Error: %v\n", err)
		}
		cancel()
	}

	if err := <-done; err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func loadConfig(path string) (*config.Config, error) {
	if path == "" {
		return config.Load()
	}
	return config.LoadFile(path)
}

func loadTheme(path string) (*theme.Theme, error) {
	if path == "" {
		return theme.New(theme.Builtin()), nil
	}
	palette, err := theme.LoadGPL(path)
	if err != nil {
		return nil, err
	}
	return theme.New(palette), nil
}

// openHardware collects the outputs the config asks for. Any failure is
// fatal: the keyboard must not start with a missing DAC.
func openHardware(cfg *config.Config, vm *matrix.Virtual) (engine.Hardware, func(), error) {
	hw := engine.Hardware{Scanner: vm}
	var buses dac.TeeBus
	var gates gate.Tee
	var closers []func() error

	if cfg.Serial.Port != "" {
		br, err := bridge.Open(cfg.Serial.Port, cfg.Serial.Baud)
		if err != nil {
			return hw, nil, err
		}
		buses = append(buses, br)
		gates = append(gates, br.Gate())
		hw.ChipSelect = br.ChipSelect()
		closers = append(closers, br.Close)
	}

	if cfg.Monitor.Enabled {
		dcfg, err := cfg.DACConfig()
		if err != nil {
			return hw, nil, err
		}
		mon, err := monitor.Open(monitor.Config{
			SampleRate:    cfg.Monitor.SampleRate,
			BaseFreq:      cfg.Monitor.BaseFreq,
			Volume:        cfg.Monitor.Volume,
			AmplifierGain: cfg.Voice.AmplifierGain,
			DAC:           dcfg,
		})
		if err != nil {
			return hw, nil, err
		}
		buses = append(buses, mon)
		gates = append(gates, mon)
		closers = append(closers, mon.Close)
	}

	// Nothing attached: still run the pipeline so the UI shows the words
	if len(buses) == 0 {
		buses = append(buses, dac.BusFunc(func(uint16) error { return nil }))
	}
	hw.Bus = buses
	hw.Gate = gates

	closeAll := func() {
		for _, c := range closers {
			if err := c(); err != nil {
				debug.Log("main", "close: %v", err)
			}
		}
	}
	return hw, closeAll, nil
}
