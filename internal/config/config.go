// Package config loads and validates the CVJutsu configuration file.
//
// Configuration lives in a TOML file, by default at
// ~/.cvjutsu/config.toml. Every field has a working default so the
// application runs with no config file at all.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"

	"github.com/ayusman/cvjutsu/internal/seal"
)

// Camera contains video capture settings.
type Camera struct {
	Device    int `toml:"device"`
	Width     int `toml:"width"`
	Height    int `toml:"height"`
	ActiveFPS int `toml:"active_fps"`
	IdleFPS   int `toml:"idle_fps"`
}

// Detector contains hand landmark detection settings.
type Detector struct {
	MaxHands        int     `toml:"max_hands"`
	MinConfidence   float64 `toml:"min_confidence"`
	MinTrackingConf float64 `toml:"min_tracking_confidence"`
}

// Tracker contains seal sequence tracking settings.
type Tracker struct {
	HoldFrames          int     `toml:"hold_frames"`
	ConfidenceThreshold float64 `toml:"confidence_threshold"`
	SequenceTimeoutSec  float64 `toml:"sequence_timeout_sec"`
	SingleSealDelaySec  float64 `toml:"single_seal_delay_sec"`
}

// Motion contains motion gating settings for the idle camera path.
type Motion struct {
	Threshold float64 `toml:"threshold"`
}

// Server contains the HTTP server settings.
type Server struct {
	Bind string `toml:"bind"`
}

// Paths contains directory configuration.
type Paths struct {
	DataDir   string `toml:"data_dir"`
	AssetsDir string `toml:"assets_dir"`
	PluginDir string `toml:"plugin_dir"`
}

// Config encapsulates all configuration values for CVJutsu.
type Config struct {
	Camera   Camera   `toml:"camera"`
	Detector Detector `toml:"detector"`
	Tracker  Tracker  `toml:"tracker"`
	Motion   Motion   `toml:"motion"`
	Server   Server   `toml:"server"`
	Paths    Paths    `toml:"paths"`
}

// Default returns a configuration with all fields set to working defaults.
func Default() Config {
	return Config{
		Camera: Camera{
			Device:    0,
			Width:     1280,
			Height:    720,
			ActiveFPS: 15,
			IdleFPS:   5,
		},
		Detector: Detector{
			MaxHands:        2,
			MinConfidence:   0.7,
			MinTrackingConf: 0.5,
		},
		Tracker: Tracker{
			HoldFrames:          seal.DefaultHoldFrames,
			ConfidenceThreshold: seal.DefaultConfidenceThreshold,
			SequenceTimeoutSec:  seal.DefaultSequenceTimeout.Seconds(),
			SingleSealDelaySec:  seal.DefaultSingleSealDelay.Seconds(),
		},
		Motion: Motion{
			Threshold: 0.02,
		},
		Server: Server{
			Bind: "127.0.0.1:8417",
		},
		Paths: Paths{
			DataDir:   "~/.cvjutsu",
			AssetsDir: "~/.cvjutsu/assets",
			PluginDir: "~/.cvjutsu/plugins",
		},
	}
}

// DefaultConfigPath returns the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath("~/.cvjutsu/config.toml")
}

// Load reads the configuration file at path, falling back to the default
// location when path is empty. A missing file is not an error: defaults
// apply. The returned config is validated and has all paths expanded.
func Load(path string) (Config, error) {
	cfg := Default()

	resolved := path
	if resolved == "" {
		var err error
		resolved, err = DefaultConfigPath()
		if err != nil {
			return Config{}, err
		}
	} else {
		var err error
		resolved, err = expandPath(resolved)
		if err != nil {
			return Config{}, err
		}
	}

	file, err := os.Open(resolved)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			return Config{}, fmt.Errorf("open config: %w", err)
		}
		// No file, defaults apply.
	} else {
		defer file.Close()
		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return Config{}, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.expandPaths(); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if c.Camera.Width <= 0 || c.Camera.Height <= 0 {
		return errors.New("camera.width and camera.height must be positive")
	}
	if c.Camera.ActiveFPS <= 0 || c.Camera.IdleFPS <= 0 {
		return errors.New("camera.active_fps and camera.idle_fps must be positive")
	}
	if c.Camera.IdleFPS > c.Camera.ActiveFPS {
		return errors.New("camera.idle_fps must not exceed camera.active_fps")
	}
	if c.Detector.MaxHands < 1 || c.Detector.MaxHands > 2 {
		return errors.New("detector.max_hands must be 1 or 2")
	}
	if c.Detector.MinConfidence < 0 || c.Detector.MinConfidence > 1 {
		return errors.New("detector.min_confidence must be between 0 and 1")
	}
	if c.Detector.MinTrackingConf < 0 || c.Detector.MinTrackingConf > 1 {
		return errors.New("detector.min_tracking_confidence must be between 0 and 1")
	}
	if c.Tracker.HoldFrames <= 0 {
		return errors.New("tracker.hold_frames must be positive")
	}
	if c.Tracker.ConfidenceThreshold < 0 || c.Tracker.ConfidenceThreshold > 1 {
		return errors.New("tracker.confidence_threshold must be between 0 and 1")
	}
	if c.Tracker.SequenceTimeoutSec < 0 {
		return errors.New("tracker.sequence_timeout_sec must not be negative")
	}
	if c.Tracker.SingleSealDelaySec < 0 {
		return errors.New("tracker.single_seal_delay_sec must not be negative")
	}
	if c.Motion.Threshold < 0 || c.Motion.Threshold > 1 {
		return errors.New("motion.threshold must be between 0 and 1")
	}
	if c.Server.Bind == "" {
		return errors.New("server.bind must be set")
	}
	if c.Paths.DataDir == "" {
		return errors.New("paths.data_dir must be set")
	}
	return nil
}

// TrackerConfig converts the tracker section into the tracker's own
// configuration type, using the given catalog.
func (c *Config) TrackerConfig(catalog seal.Catalog) seal.Config {
	return seal.Config{
		HoldFrames:          c.Tracker.HoldFrames,
		ConfidenceThreshold: c.Tracker.ConfidenceThreshold,
		SequenceTimeout:     secondsToDuration(c.Tracker.SequenceTimeoutSec),
		SingleSealDelay:     secondsToDuration(c.Tracker.SingleSealDelaySec),
		Catalog:             catalog,
	}
}

func secondsToDuration(sec float64) time.Duration {
	return time.Duration(sec * float64(time.Second))
}

func (c *Config) expandPaths() error {
	for _, p := range []*string{&c.Paths.DataDir, &c.Paths.AssetsDir, &c.Paths.PluginDir} {
		expanded, err := expandPath(*p)
		if err != nil {
			return err
		}
		*p = expanded
	}
	return nil
}

func expandPath(path string) (string, error) {
	if path == "~" || strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home dir: %w", err)
		}
		path = filepath.Join(home, strings.TrimPrefix(path, "~"))
	}
	return filepath.Abs(path)
}
