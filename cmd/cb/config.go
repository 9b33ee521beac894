package main

import (
	"fmt"
	"strings"

	"github.com/franz/cloudbuccaneer/internal/meta"
	"github.com/franz/cloudbuccaneer/internal/report"
	"github.com/franz/cloudbuccaneer/internal/util"
	"github.com/spf13/viper"
)

// junkEntry is one element of rename.junk. A list is used instead of a map
// because viper lowercases map keys, which would corrupt regex patterns.
type junkEntry struct {
	Pattern string `mapstructure:"pattern"`
	Action  string `mapstructure:"action"`
}

// engineConfig builds the filename pipeline settings with proper precedence:
// 1. Command-line flag (if set)
// 2. Environment variable (CB_*)
// 3. Config file
// 4. Default value
func engineConfig() (meta.EngineConfig, error) {
	cfg := meta.DefaultEngineConfig()
	cfg.ArtistWindow = viper.GetFloat64("rename.artist_window")
	cfg.Name = meta.NameOptions{
		ASCIIOnly: viper.GetBool("rename.ascii"),
		KeepTrack: viper.GetBool("rename.keep_track"),
	}

	var entries []junkEntry
	if err := viper.UnmarshalKey("rename.junk", &entries); err != nil {
		return cfg, fmt.Errorf("%w: rename.junk: %v", util.ErrInvalidConfig, err)
	}
	if len(entries) > 0 {
		cfg.Junk = make(meta.JunkConfig, len(entries))
		for _, e := range entries {
			action := meta.JunkAction(strings.ToLower(strings.TrimSpace(e.Action)))
			if action == "" {
				action = meta.ActionStrip
			}
			cfg.Junk[e.Pattern] = action
		}
	}
	return cfg, nil
}

// retryConfig maps rename.retries to a backoff policy. 1 (the default)
// means a single attempt.
func retryConfig() *util.RetryConfig {
	attempts := viper.GetInt("rename.retries")
	if attempts <= 1 {
		return util.SingleAttempt()
	}
	cfg := util.DefaultRetryConfig()
	cfg.MaxAttempts = attempts
	return cfg
}

// eventLogger opens the JSONL audit trail when events_dir is set
func eventLogger() *report.EventLogger {
	dir := viper.GetString("events_dir")
	if dir == "" {
		return report.NullLogger()
	}

	level := report.LevelInfo
	if viper.GetBool("quiet") {
		level = report.LevelWarning
	} else if viper.GetBool("verbose") {
		level = report.LevelDebug
	}

	logger, err := report.NewEventLogger(dir, level)
	if err != nil {
		util.WarnLog("Failed to create event logger: %v", err)
		return report.NullLogger()
	}
	util.InfoLog("Event log: %s", logger.Path())
	return logger
}
