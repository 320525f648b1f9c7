package config

import (
	"errors"
	"fmt"
	"strings"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateAnalysis(); err != nil {
		return err
	}
	return c.validateLogging()
}

func (c *Config) validateAnalysis() error {
	a := c.Analysis
	if a.QuantizeMS <= 0 {
		return errors.New("analysis.quantize_ms must be positive")
	}
	if a.ShortPlaylistSeconds < 0 || a.BumperSeconds < 0 {
		return errors.New("analysis duration thresholds must not be negative")
	}
	for _, pair := range []struct {
		name     string
		min, max float64
	}{
		{"op", a.OPMinSeconds, a.OPMaxSeconds},
		{"ed", a.EDMinSeconds, a.EDMaxSeconds},
	} {
		if pair.min < 0 || pair.max < pair.min {
			return fmt.Errorf("analysis.%s_min_seconds/%s_max_seconds must form a valid range", pair.name, pair.name)
		}
	}
	if a.BodyMinSeconds <= 0 {
		return errors.New("analysis.body_min_seconds must be positive")
	}
	if a.ChapterSplitMinSeconds <= 0 {
		return errors.New("analysis.chapter_split_min_seconds must be positive")
	}
	if a.DefaultEpisodeMinutes <= 0 {
		return errors.New("analysis.default_episode_minutes must be positive")
	}
	if a.IGPacketLimit <= 0 {
		return errors.New("analysis.ig_packet_limit must be positive")
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch strings.ToLower(strings.TrimSpace(c.Logging.Format)) {
	case "", "console", "json":
	default:
		return fmt.Errorf("logging.format must be console or json, got %q", c.Logging.Format)
	}
	switch strings.ToLower(strings.TrimSpace(c.Logging.Level)) {
	case "", "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level must be debug, info, warn, or error, got %q", c.Logging.Level)
	}
	return nil
}
