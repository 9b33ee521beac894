package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/franz/cloudbuccaneer/internal/meta"
	"github.com/franz/cloudbuccaneer/internal/util"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	// Version is set at build time
	Version = "dev"

	cfgFile string

	rootCmd = &cobra.Command{
		Use:   "cb",
		Short: "CloudBuccaneer - tidy up downloaded audio filenames",
		Long: `cb normalizes the filenames of downloaded audio into "Artist - Title.ext".

It strips download junk ([Free DL], (Official Video), 320kbps, 128 BPM, video ids),
works out the artist and title from the remaining structure and renames the files
in place without ever overwriting one. Every applied batch is journaled and can be
undone.`,
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
)

func init() {
	cobra.OnInitialize(initConfig)

	// Global flags
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./configs/config.yaml or ~/.config/cloudbuccaneer/config.yaml)")
	rootCmd.PersistentFlags().String("db", defaultJournalPath(), "undo journal database (empty disables the journal)")
	rootCmd.PersistentFlags().String("events-dir", "", "write a JSONL audit trail to this directory")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().BoolP("quiet", "q", false, "quiet output (errors only)")

	// Bind flags to viper
	viper.BindPFlag("db", rootCmd.PersistentFlags().Lookup("db"))
	viper.BindPFlag("events_dir", rootCmd.PersistentFlags().Lookup("events-dir"))
	viper.BindPFlag("verbose", rootCmd.PersistentFlags().Lookup("verbose"))
	viper.BindPFlag("quiet", rootCmd.PersistentFlags().Lookup("quiet"))

	setDefaults()
}

// setDefaults registers values used when neither flag, env nor file sets a key
func setDefaults() {
	viper.SetDefault("rename.artist_window", meta.DefaultArtistWindow)
	viper.SetDefault("rename.retries", 1)
	viper.SetDefault("serve.addr", "127.0.0.1:8080")
}

func initConfig() {
	if cfgFile != "" {
		// Use config file from the flag
		viper.SetConfigFile(cfgFile)
	} else {
		// Search for config in common locations
		viper.AddConfigPath("./configs")
		if home, err := os.UserHomeDir(); err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "cloudbuccaneer"))
		}
		viper.SetConfigName("config")
		viper.SetConfigType("yaml")
	}

	// CB_RENAME_ASCII overrides rename.ascii
	viper.SetEnvPrefix("CB")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	util.SetVerbose(viper.GetBool("verbose"))
	util.SetQuiet(viper.GetBool("quiet"))

	// If a config file is found, read it in
	if err := viper.ReadInConfig(); err == nil {
		util.DebugLog("Using config file: %s", viper.ConfigFileUsed())
	} else if cfgFile != "" {
		util.WarnLog("Failed to read config file %s: %v", cfgFile, err)
	}
}

// defaultJournalPath keeps the journal outside the music folders
func defaultJournalPath() string {
	if dir, err := os.UserConfigDir(); err == nil {
		return filepath.Join(dir, "cloudbuccaneer", "journal.db")
	}
	return "cb-journal.db"
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
