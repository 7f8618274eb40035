// Package config loads track settings from TOML and the environment
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/lixenwraith/endless-road/road"
)

// ErrInvalid wraps every validation failure
var ErrInvalid = errors.New("config: invalid")

// EnvPrefix is prepended to upper-cased keys for environment overrides
const EnvPrefix = "ENDLESS_ROAD_"

// Config is the complete runtime configuration
type Config struct {
	NumberOfPieces       int     `toml:"number_of_pieces"`
	FirstPieceTemplateID string  `toml:"first_piece_template_id"`
	TrackSpeed           float64 `toml:"track_speed"`

	TickRate    int    `toml:"tick_rate"` // Hz
	MaxCatchUp  int    `toml:"max_catch_up"`
	CatalogPath string `toml:"catalog_path"`
	Seed        uint64 `toml:"seed"`

	Audio      bool   `toml:"audio"`
	StreamAddr string `toml:"stream_addr"`
}

// Default returns the built-in configuration
func Default() Config {
	return Config{
		NumberOfPieces:       10,
		FirstPieceTemplateID: "Straight60m",
		TrackSpeed:           20,
		TickRate:             60,
		MaxCatchUp:           5,
	}
}

// Load reads path over the defaults, then applies environment overrides
// An empty path skips the file
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		md, err := toml.DecodeFile(path, &cfg)
		if err != nil {
			return cfg, fmt.Errorf("config: %s: %w", path, err)
		}
		if undecoded := md.Undecoded(); len(undecoded) > 0 {
			return cfg, fmt.Errorf("%w: %s: unknown key %q", ErrInvalid, path, undecoded[0].String())
		}
	}

	if err := cfg.ApplyEnv(os.LookupEnv); err != nil {
		return cfg, err
	}
	return cfg, cfg.Validate()
}

// ApplyEnv overrides fields from ENDLESS_ROAD_* variables
// Malformed values are rejected rather than ignored
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) error {
	get := func(key string) (string, bool) {
		v, ok := lookup(EnvPrefix + key)
		return strings.TrimSpace(v), ok && strings.TrimSpace(v) != ""
	}

	if v, ok := get("NUMBER_OF_PIECES"); ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%w: number_of_pieces: %v", ErrInvalid, err)
		}
		c.NumberOfPieces = n
	}
	if v, ok := get("FIRST_PIECE_TEMPLATE_ID"); ok {
		c.FirstPieceTemplateID = v
	}
	if v, ok := get("TRACK_SPEED"); ok {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("%w: track_speed: %v", ErrInvalid, err)
		}
		c.TrackSpeed = f
	}
	if v, ok := get("TICK_RATE"); ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%w: tick_rate: %v", ErrInvalid, err)
		}
		c.TickRate = n
	}
	if v, ok := get("MAX_CATCH_UP"); ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%w: max_catch_up: %v", ErrInvalid, err)
		}
		c.MaxCatchUp = n
	}
	if v, ok := get("CATALOG_PATH"); ok {
		c.CatalogPath = v
	}
	if v, ok := get("SEED"); ok {
		n, err := strconv.ParseUint(v, 10, 64)
		if err != nil {
			return fmt.Errorf("%w: seed: %v", ErrInvalid, err)
		}
		c.Seed = n
	}
	if v, ok := get("AUDIO"); ok {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("%w: audio: %v", ErrInvalid, err)
		}
		c.Audio = b
	}
	if v, ok := get("STREAM_ADDR"); ok {
		c.StreamAddr = v
	}
	return nil
}

// Validate checks ranges; the first failing field is reported
func (c Config) Validate() error {
	switch {
	case c.NumberOfPieces < 2:
		return fmt.Errorf("%w: number_of_pieces must be at least 2, got %d", ErrInvalid, c.NumberOfPieces)
	case c.FirstPieceTemplateID == "":
		return fmt.Errorf("%w: first_piece_template_id is empty", ErrInvalid)
	case !(c.TrackSpeed >= 0):
		return fmt.Errorf("%w: track_speed must be non-negative, got %v", ErrInvalid, c.TrackSpeed)
	case c.TickRate <= 0 || c.TickRate > 1000:
		return fmt.Errorf("%w: tick_rate must be in [1,1000], got %d", ErrInvalid, c.TickRate)
	case c.MaxCatchUp < 1:
		return fmt.Errorf("%w: max_catch_up must be positive, got %d", ErrInvalid, c.MaxCatchUp)
	}
	return nil
}

// RoadSettings extracts the track build settings
func (c Config) RoadSettings() road.Settings {
	return road.Settings{
		NumberOfPieces:       c.NumberOfPieces,
		FirstPieceTemplateID: c.FirstPieceTemplateID,
		TrackSpeed:           c.TrackSpeed,
	}
}
