package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/dhowden/tag"
	"github.com/franz/cloudbuccaneer/internal/meta"
	"github.com/franz/cloudbuccaneer/internal/scan"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var showCmd = &cobra.Command{
	Use:   "show [name...]",
	Short: "Show how filenames would be interpreted",
	Long: `Show the effective junk markers and rules, or, given filenames, every
candidate reading of each name and the one that wins. Nothing on disk is
changed.

With --tags, names that are existing audio files also print their embedded
artist and title for comparison. Tags never influence the chosen name.`,
	RunE: runShow,
}

var showTags bool

func init() {
	showCmd.Flags().BoolVar(&showTags, "tags", false, "print embedded tags of existing files")
	rootCmd.AddCommand(showCmd)
}

func runShow(cmd *cobra.Command, args []string) error {
	engineCfg, err := engineConfig()
	if err != nil {
		return err
	}
	engine, err := meta.NewEngine(engineCfg)
	if err != nil {
		return err
	}

	if len(args) == 0 {
		markers := engine.Markers()
		rows := make([][]string, 0, len(markers))
		for i, m := range markers {
			rows = append(rows, []string{strconv.Itoa(i + 1), m})
		}
		fmt.Println(renderTable([]string{"#", "Junk marker"}, rows, []columnAlignment{alignRight}))

		rules := engineCfg.Rules
		if len(rules) == 0 {
			rules = meta.DefaultRules()
		}
		rows = rows[:0]
		for _, r := range rules {
			rows = append(rows, []string{r.Name, strconv.FormatFloat(r.Confidence, 'f', 2, 64)})
		}
		fmt.Println(renderTable([]string{"Rule", "Confidence"}, rows, []columnAlignment{alignLeft, alignRight}))
		fmt.Printf("Artist window: %v\n", viper.GetFloat64("rename.artist_window"))
		return nil
	}

	for _, name := range args {
		fmt.Println(explain(engine, filepath.Base(name)))
		if showTags {
			fmt.Println(embeddedTags(name))
		}
	}
	return nil
}

// embeddedTags describes the tags stored in an audio file, or why there are none
func embeddedTags(path string) string {
	m, err := readTags(path)
	if err != nil {
		return fmt.Sprintf("  tags:    none (%v)\n", err)
	}
	return fmt.Sprintf("  tags:    %s artist=%q title=%q\n", m.Format(), m.Artist(), m.Title())
}

func readTags(path string) (tag.Metadata, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer f.Close()

	m, err := tag.ReadFrom(f)
	if err != nil {
		return nil, fmt.Errorf("failed to read tags: %w", err)
	}
	return m, nil
}

// explain renders the candidates for one filename, winner marked with *
func explain(engine *meta.Engine, name string) string {
	stem, ext := splitExt(name)
	res, err := engine.Resolve(stem)

	rows := make([][]string, 0, len(res.Candidates))
	for _, c := range meta.Rank(res.Candidates) {
		mark := ""
		if err == nil && c == res.Chosen {
			mark = "*"
		}
		rows = append(rows, []string{mark, c.Rule, strconv.FormatFloat(c.Confidence, 'f', 2, 64), c.Artist, c.Title})
	}

	out := fmt.Sprintf("%s\n  cleaned: %q\n", name, res.Cleaned)
	if err != nil {
		out += fmt.Sprintf("  result:  skipped (%v)\n", err)
	} else {
		out += fmt.Sprintf("  result:  %s\n", meta.FitFilename(res.Stem, "", ext))
	}
	return out + renderTable(
		[]string{"", "Rule", "Conf", "Artist", "Title"},
		rows,
		[]columnAlignment{alignLeft, alignLeft, alignRight},
	)
}

// splitExt separates an audio extension, lowercased. "Mr. Brightside" has no
// extension as far as renaming is concerned.
func splitExt(name string) (string, string) {
	if !scan.New(nil).IsAudioFile(name) {
		return name, ""
	}
	ext := filepath.Ext(name)
	return strings.TrimSuffix(name, ext), strings.ToLower(ext)
}
