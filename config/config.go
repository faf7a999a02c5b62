package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go-cvkeys/dac"
	"go-cvkeys/pitch"
	"go-cvkeys/queue"
	"go-cvkeys/voice"
)

// ScanMode selects how the voice goroutine is woken
type ScanMode string

const (
	ScanPolled ScanMode = "polled"
	ScanSignal ScanMode = "signal"
)

// Duration is a time.Duration stored as a string ("2ms") in JSON
type Duration time.Duration

func (d Duration) MarshalJSON() ([]byte, error) {
	return json.Marshal(time.Duration(d).String())
}

func (d *Duration) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return fmt.Errorf("duration must be a string: %w", err)
	}
	v, err := time.ParseDuration(s)
	if err != nil {
		return err
	}
	*d = Duration(v)
	return nil
}

// DACConfig describes the converter
type DACConfig struct {
	ReferenceVoltage float64  `json:"referenceVoltage"`
	Gain             int      `json:"gain"`
	Buffered         bool     `json:"buffered"`
	Channel          string   `json:"channel"`
	ResolutionBits   int      `json:"resolutionBits"`
	Enabled          bool     `json:"enabled"`
	SetupDelay       Duration `json:"setupDelay,omitempty"`
	HoldDelay        Duration `json:"holdDelay,omitempty"`
}

// VoiceConfig configures the held-key stack and pitch mapping
type VoiceConfig struct {
	Capacity      int     `json:"capacity"`
	AmplifierGain float64 `json:"amplifierGain"`
	ShiftMin      int     `json:"shiftMin"`
	ShiftMax      int     `json:"shiftMax"`
}

// QueueConfig configures the scan-to-voice event queue
type QueueConfig struct {
	Capacity     int      `json:"capacity"`
	Policy       string   `json:"policy"`
	BlockTimeout Duration `json:"blockTimeout,omitempty"`
}

// ScanConfig configures the matrix scanner
type ScanConfig struct {
	Period   Duration `json:"period"`
	Mode     ScanMode `json:"mode"`
	Debounce int      `json:"debounce,omitempty"` // consistent scans required, 0 = off
}

// SerialConfig points at the DAC/gate bridge
type SerialConfig struct {
	Port string `json:"port,omitempty"`
	Baud int    `json:"baud,omitempty"`
}

// MIDIConfig stores MIDI preferences
type MIDIConfig struct {
	Inputs     []string `json:"inputs,omitempty"` // port name substrings, empty = all
	Exclude    []string `json:"exclude,omitempty"`
	BaseNote   uint8    `json:"baseNote"`
	MirrorPort string   `json:"mirrorPort,omitempty"`
	Channel    uint8    `json:"channel,omitempty"` // 1-16
}

// MonitorConfig configures the audio monitor
type MonitorConfig struct {
	Enabled    bool    `json:"enabled"`
	SampleRate int     `json:"sampleRate"`
	BaseFreq   float64 `json:"baseFreq"` // Hz at 0V
	Volume     float64 `json:"volume"`
}

// DebugConfig controls debug logging
type DebugConfig struct {
	Enabled bool   `json:"enabled"`
	Path    string `json:"path,omitempty"`
}

// Config is the main configuration structure
type Config struct {
	DAC     DACConfig     `json:"dac"`
	Voice   VoiceConfig   `json:"voice"`
	Queue   QueueConfig   `json:"queue"`
	Scan    ScanConfig    `json:"scan"`
	Serial  SerialConfig  `json:"serial,omitempty"`
	MIDI    MIDIConfig    `json:"midi"`
	Monitor MonitorConfig `json:"monitor"`
	Debug   DebugConfig   `json:"debug"`
}

// DefaultConfig returns a config with sensible defaults
func DefaultConfig() *Config {
	d := dac.DefaultConfig()
	v := voice.DefaultConfig()
	return &Config{
		DAC: DACConfig{
			ReferenceVoltage: d.ReferenceVoltage,
			Gain:             int(d.Gain),
			Buffered:         d.Buffered,
			Channel:          "A",
			ResolutionBits:   d.ResolutionBits,
			Enabled:          d.Enabled,
			SetupDelay:       Duration(dac.DefaultSetupDelay),
			HoldDelay:        Duration(dac.DefaultHoldDelay),
		},
		Voice: VoiceConfig{
			Capacity:      v.Capacity,
			AmplifierGain: v.AmplifierGain,
			ShiftMin:      int(v.ShiftRange.Min),
			ShiftMax:      int(v.ShiftRange.Max),
		},
		Queue: QueueConfig{
			Capacity:     queue.DefaultCapacity,
			Policy:       queue.PolicyDrop.String(),
			BlockTimeout: Duration(queue.DefaultBlockTimeout),
		},
		Scan: ScanConfig{
			Period: Duration(2 * time.Millisecond),
			Mode:   ScanPolled,
		},
		Serial: SerialConfig{Baud: 115200},
		MIDI: MIDIConfig{
			BaseNote: 36, // C2 on the MIDI keyboard plays C1
			Channel:  1,
		},
		Monitor: MonitorConfig{
			Enabled:    false,
			SampleRate: 48000,
			BaseFreq:   32.703, // C1 at 0V
			Volume:     0.2,
		},
	}
}

// ConfigDir returns the config directory path
func ConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "go-cvkeys"), nil
}

// ConfigPath returns the full path to config.json
func ConfigPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.json"), nil
}

// Load reads the config from disk, or returns defaults if not found
func Load() (*Config, error) {
	path, err := ConfigPath()
	if err != nil {
		return DefaultConfig(), nil
	}
	return LoadFile(path)
}

// LoadFile reads path over the defaults. A missing file gives the defaults.
func LoadFile(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return nil, err
	}

	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// Save writes the config to disk
func (c *Config) Save() error {
	path, err := ConfigPath()
	if err != nil {
		return err
	}
	return c.SaveFile(path)
}

// SaveFile writes the config to path
func (c *Config) SaveFile(path string) error {
	// Create directory if it doesn't exist
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}

// Validate checks every section
func (c *Config) Validate() error {
	d, err := c.DACConfig()
	if err != nil {
		return err
	}
	if err := d.Validate(); err != nil {
		return err
	}
	if err := c.VoiceConfig().Validate(); err != nil {
		return err
	}
	qopts, err := c.QueueOptions()
	if err != nil {
		return err
	}
	switch c.Scan.Mode {
	case ScanPolled, ScanSignal:
	default:
		return fmt.Errorf("scan mode %q", c.Scan.Mode)
	}
	if c.Scan.Period <= 0 {
		return fmt.Errorf("scan period %v", time.Duration(c.Scan.Period))
	}
	// A blocked push must give up before the next scan is due
	if qopts.Policy == queue.PolicyBlock {
		timeout := qopts.BlockTimeout
		if timeout <= 0 {
			timeout = queue.DefaultBlockTimeout
		}
		if timeout >= time.Duration(c.Scan.Period) {
			return fmt.Errorf("queue block timeout %v must be shorter than scan period %v", timeout, time.Duration(c.Scan.Period))
		}
	}
	if c.MIDI.BaseNote > 127 {
		return fmt.Errorf("midi base note %d", c.MIDI.BaseNote)
	}
	if c.MIDI.Channel > 16 {
		return fmt.Errorf("midi channel %d", c.MIDI.Channel)
	}
	return nil
}

// DACConfig converts the dac section
func (c *Config) DACConfig() (dac.Config, error) {
	d := dac.Config{
		ReferenceVoltage: c.DAC.ReferenceVoltage,
		Gain:             dac.Gain(c.DAC.Gain),
		Buffered:         c.DAC.Buffered,
		ResolutionBits:   c.DAC.ResolutionBits,
		Enabled:          c.DAC.Enabled,
	}
	switch c.DAC.Channel {
	case "", "A", "a":
		d.Channel = dac.ChannelA
	case "B", "b":
		d.Channel = dac.ChannelB
	default:
		return d, fmt.Errorf("%w: channel %q", dac.ErrInvalidConfig, c.DAC.Channel)
	}
	return d, nil
}

// VoiceConfig converts the voice section
func (c *Config) VoiceConfig() voice.Config {
	return voice.Config{
		Capacity:      c.Voice.Capacity,
		AmplifierGain: c.Voice.AmplifierGain,
		ShiftRange:    pitch.Range{Min: pitch.Shift(c.Voice.ShiftMin), Max: pitch.Shift(c.Voice.ShiftMax)},
	}
}

// QueueOptions converts the queue section
func (c *Config) QueueOptions() (queue.Options, error) {
	p, ok := queue.ParsePolicy(c.Queue.Policy)
	if !ok {
		return queue.Options{}, fmt.Errorf("queue policy %q", c.Queue.Policy)
	}
	if c.Queue.Capacity < 0 {
		return queue.Options{}, fmt.Errorf("queue capacity %d", c.Queue.Capacity)
	}
	return queue.Options{
		Capacity:     c.Queue.Capacity,
		Policy:       p,
		BlockTimeout: time.Duration(c.Queue.BlockTimeout),
	}, nil
}
