// Package config resolves the receiver's runtime configuration: CLI
// flags per spec.md §6, with an optional YAML file overlaid on top (the
// fields the file sets override the flags), the way the
// reference receiver's main.go parses flags and LoadConfig layers a
// YAML file on top.
package config

import (
	"flag"
	"fmt"
	"os"

	"github.com/hashicorp/go-version"
	"gopkg.in/yaml.v3"
)

// minConfigVersion and maxConfigVersion bound the config_version this
// binary understands.
var (
	minConfigVersion = version.Must(version.NewVersion("1.0.0"))
	maxConfigVersion = version.Must(version.NewVersion("1.999.999"))
)

// File is the optional YAML configuration file layer. Any field left
// unset falls back to its CLI flag or default.
type File struct {
	ConfigVersion string `yaml:"config_version"`

	FrequencyHz    string `yaml:"frequency"`
	DeviceIndex    *int   `yaml:"device_index"`
	GainTenthsDB   *int   `yaml:"gain"`
	SquelchLevel   *int   `yaml:"squelch"`
	PostDownsample *int   `yaml:"post_downsample"`
	HopThreshold   *int   `yaml:"hop_threshold"`
	PPMCorrection  *int   `yaml:"ppm"`
	HammingFIR     *bool  `yaml:"hamming_fir"`
	DebugHop       *bool  `yaml:"debug_hop"`
	Verbosity      *int   `yaml:"verbosity"`

	MQTT struct {
		Broker   string `yaml:"broker"`
		Topic    string `yaml:"topic"`
		Username string `yaml:"username"`
		Password string `yaml:"password"`
	} `yaml:"mqtt"`
}

// Config is the fully resolved, validated runtime configuration.
type Config struct {
	Frequency      string
	DeviceIndex    int
	GainTenthsDB   int // 0 means automatic gain
	SquelchLevel   int
	PostDownsample int
	HopThreshold   int
	PPMCorrection  int
	HammingFIR     bool
	DebugHop       bool
	Verbosity      int

	MQTTBroker   string
	MQTTTopic    string
	MQTTUsername string
	MQTTPassword string
}

// Parse builds a Config from CLI flags, optionally overlaid with a YAML
// file named by -c. args should be the program's arguments excluding
// argv[0]. Each call parses into its own FlagSet, so Parse may be called
// repeatedly.
func Parse(args []string) (*Config, error) {
	fs := flag.NewFlagSet("rtl-acars-ng2", flag.ContinueOnError)

	freq := fs.String("f", "", "center frequency (hz) or start:stop:step range")
	device := fs.Int("d", 0, "device index")
	gain := fs.Int("g", 0, "tuner gain in tenths of dB (0 = automatic)")
	squelch := fs.Int("l", 0, "squelch threshold, 0 disables")
	post := fs.Int("o", 1, "post-downsample factor, 1..16")
	hop := fs.Int("t", 0, "consecutive-silence blocks to trigger hop (negative: exit)")
	ppm := fs.Int("p", 0, "ppm error correction")
	hamming := fs.Bool("F", false, "enable Hamming FIR instead of square window")
	debugHop := fs.Bool("r", false, "debug hop messages")
	verbosity := 0
	fs.BoolFunc("v", "increase verbosity (repeatable)", func(string) error {
		verbosity++
		return nil
	})
	configFile := fs.String("c", "", "optional YAML config file")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	cfg := &Config{
		Frequency:      *freq,
		DeviceIndex:    *device,
		GainTenthsDB:   *gain,
		SquelchLevel:   *squelch,
		PostDownsample: *post,
		HopThreshold:   *hop,
		PPMCorrection:  *ppm,
		HammingFIR:     *hamming,
		DebugHop:       *debugHop,
		Verbosity:      verbosity,
	}

	if *configFile != "" {
		if err := overlayFile(cfg, *configFile); err != nil {
			return nil, err
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func overlayFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("config: read %s: %w", path, err)
	}

	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return fmt.Errorf("config: parse %s: %w", path, err)
	}

	if f.ConfigVersion != "" {
		if err := checkVersion(f.ConfigVersion); err != nil {
			return err
		}
	}

	if f.FrequencyHz != "" {
		cfg.Frequency = f.FrequencyHz
	}
	if f.DeviceIndex != nil {
		cfg.DeviceIndex = *f.DeviceIndex
	}
	if f.GainTenthsDB != nil {
		cfg.GainTenthsDB = *f.GainTenthsDB
	}
	if f.SquelchLevel != nil {
		cfg.SquelchLevel = *f.SquelchLevel
	}
	if f.PostDownsample != nil {
		cfg.PostDownsample = *f.PostDownsample
	}
	if f.HopThreshold != nil {
		cfg.HopThreshold = *f.HopThreshold
	}
	if f.PPMCorrection != nil {
		cfg.PPMCorrection = *f.PPMCorrection
	}
	if f.HammingFIR != nil {
		cfg.HammingFIR = *f.HammingFIR
	}
	if f.DebugHop != nil {
		cfg.DebugHop = *f.DebugHop
	}
	if f.Verbosity != nil {
		cfg.Verbosity = *f.Verbosity
	}

	cfg.MQTTBroker = f.MQTT.Broker
	cfg.MQTTTopic = f.MQTT.Topic
	cfg.MQTTUsername = f.MQTT.Username
	cfg.MQTTPassword = f.MQTT.Password

	return nil
}

func checkVersion(raw string) error {
	v, err := version.NewVersion(raw)
	if err != nil {
		return fmt.Errorf("config: invalid config_version %q: %w", raw, err)
	}
	if v.LessThan(minConfigVersion) || v.GreaterThan(maxConfigVersion) {
		return fmt.Errorf("config: config_version %s outside supported range [%s, %s]", v, minConfigVersion, maxConfigVersion)
	}
	return nil
}

// Validate checks the resolved config against spec.md §6's constraints.
func (c *Config) Validate() error {
	if c.Frequency == "" {
		return fmt.Errorf("config: -f (frequency) is required")
	}
	if c.PostDownsample < 1 || c.PostDownsample > 16 {
		return fmt.Errorf("config: -o (post-downsample) must be in [1, 16], got %d", c.PostDownsample)
	}
	return nil
}
