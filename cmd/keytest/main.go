package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strconv"
	"sync"
	"time"

	"go-cvkeys/bridge"
	"go-cvkeys/config"
	"go-cvkeys/dac"
	"go-cvkeys/engine"
	"go-cvkeys/keys"
	"go-cvkeys/matrix"
	"go-cvkeys/midi"
	"go-cvkeys/pitch"
	"go-cvkeys/script"
	"go-cvkeys/voice"
)

func main() {
	if len(os.Args) < 2 {
		usage()
		return
	}

	var err error
	args := os.Args[2:]
	switch os.Args[1] {
	case "midi":
		listMIDI()
	case "serial":
		err = listSerial()
	case "key":
		err = keyInfo(args)
	case "encode":
		err = encode(args)
	case "frame":
		err = frame(args)
	case "run":
		err = run(args)
	default:
		usage()
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func usage() {
	fmt.Println("Keyboard test tools")
	fmt.Println("")
	fmt.Println("Commands:")
	fmt.Println("  midi                 - List MIDI input ports")
	fmt.Println("  serial               - List serial ports")
	fmt.Println("  key [-shift n] NAME  - CV and DAC word for a key")
	fmt.Println("  encode VOLTS         - DAC word for a voltage at the DAC")
	fmt.Println("  frame WORD           - Bridge frame bytes for a DAC word")
	fmt.Println("  run SCRIPT.lua       - Play a script headless, print every DAC write")
}

func listMIDI() {
	fmt.Println("=== MIDI Input Ports ===")
	fmt.Println("(waiting up to 3 seconds...)")
	ins, ok := midi.InPorts(3 * time.Second)
	if !ok {
		fmt.Println("\nTIMEOUT! MIDI service is hung.")
		return
	}
	for i, p := range ins {
		fmt.Printf("  %d: %s\n", i, p.String())
	}
}

func listSerial() error {
	ports, err := bridge.Ports()
	if err != nil {
		return err
	}
	fmt.Println("=== Serial Ports ===")
	for _, p := range ports {
		fmt.Printf("  %s\n", p)
	}
	return nil
}

func loadDAC() (*config.Config, dac.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, dac.Config{}, err
	}
	d, err := cfg.DACConfig()
	return cfg, d, err
}

func keyInfo(args []string) error {
	fs := flag.NewFlagSet("key", flag.ExitOnError)
	shift := fs.Int("shift", 0, "octave shift")
	fs.Parse(args)
	if fs.NArg() != 1 {
		return fmt.Errorf("usage: key [-shift n] NAME")
	}
	id, err := keys.Parse(fs.Arg(0))
	if err != nil {
		return err
	}
	if !keys.IsKeybed(id) {
		return fmt.Errorf("%s is a function key", id)
	}
	cfg, d, err := loadDAC()
	if err != nil {
		return err
	}
	cv := pitch.KeyToVoltage(id, pitch.Shift(*shift))
	target := float64(cv) / cfg.Voice.AmplifierGain
	w := dac.Encode(d, target)
	fmt.Printf("%s (id %d) shift %+d\n", id, uint8(id), *shift)
	fmt.Printf("  cv     %.4fV\n", float64(cv))
	fmt.Printf("  dac    %.4fV (/%.2f)\n", target, cfg.Voice.AmplifierGain)
	fmt.Printf("  code   %d\n", dac.Code(d, target))
	fmt.Printf("  word   %v  flags %04b\n", w, uint16(w)>>12)
	return nil
}

func encode(args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("usage: encode VOLTS")
	}
	v, err := strconv.ParseFloat(args[0], 64)
	if err != nil {
		return err
	}
	_, d, err := loadDAC()
	if err != nil {
		return err
	}
	w := dac.Encode(d, v)
	_, back := dac.Decode(d, w)
	fmt.Printf("%v  code %d  (%.4fV)  %s\n", w, dac.Code(d, v), back, d)
	return nil
}

func frame(args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("usage: frame WORD")
	}
	w, err := strconv.ParseUint(args[0], 0, 16)
	if err != nil {
		return err
	}
	fmt.Printf("% X\n", bridge.DACFrame(uint16(w)))
	return nil
}

// printBus prints each word as the engine writes it
type printBus struct {
	mu  sync.Mutex
	cfg dac.Config
	n   int
}

func (p *printBus) Transfer16(w uint16) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.n++
	_, v := dac.Decode(p.cfg, dac.Word(w))
	fmt.Printf("%4d  %v  %.4fV\n", p.n, dac.Word(w), v)
	return nil
}

func run(args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("usage: run SCRIPT.lua")
	}
	cfg, d, err := loadDAC()
	if err != nil {
		return err
	}

	vm := matrix.NewVirtual(matrix.DefaultLayout)
	eng, err := engine.New(cfg, engine.Hardware{Scanner: vm, Bus: &printBus{cfg: d}})
	if err != nil {
		return err
	}
	eng.Observe(func(st voice.State) {
		if st.Event.Key != keys.None {
			fmt.Printf("      %-16s sounding=%s gate=%t\n", st.Event, st.Key, st.Gate)
		}
	})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- eng.Run(ctx) }()

	err = script.New(vm).RunFile(ctx, args[0])
	// Let the last transitions reach the voice
	time.Sleep(4 * time.Duration(cfg.Scan.Period))
	cancel()
	if rerr := <-done; rerr != nil && err == nil {
		err = rerr
	}

	st := eng.Stats()
	fmt.Printf("retriggers %d  dropped %d/%d  invalid %d\n",
		st.Voice.Retriggers, st.Voice.Dropped, st.Queue.Dropped, st.Voice.Invalid)
	return err
}
