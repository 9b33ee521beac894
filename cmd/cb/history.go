package main

import (
	"fmt"
	"strconv"

	"github.com/franz/cloudbuccaneer/internal/store"
	"github.com/franz/cloudbuccaneer/internal/util"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List journaled rename batches",
	RunE:  runHistory,
}

func init() {
	historyCmd.Flags().IntP("limit", "n", 20, "number of runs to show (0 = all)")
	rootCmd.AddCommand(historyCmd)
}

func runHistory(cmd *cobra.Command, args []string) error {
	limit, _ := cmd.Flags().GetInt("limit")

	dbPath := viper.GetString("db")
	if dbPath == "" {
		return fmt.Errorf("history needs a journal (--db)")
	}

	journal, err := store.Open(dbPath)
	if err != nil {
		return fmt.Errorf("failed to open journal: %w", err)
	}
	defer journal.Close()

	runs, err := journal.ListRuns(limit)
	if err != nil {
		return fmt.Errorf("failed to list runs: %w", err)
	}
	if len(runs) == 0 {
		util.InfoLog("No runs recorded in %s", journal.Path())
		return nil
	}

	fmt.Println(renderTable(
		[]string{"Run", "Started", "Directory", "Renamed", "Skipped", "Failed", "Status"},
		historyRows(runs),
		[]columnAlignment{alignLeft, alignLeft, alignLeft, alignRight, alignRight, alignRight, alignLeft},
	))
	return nil
}

func historyRows(runs []*store.Run) [][]string {
	rows := make([][]string, 0, len(runs))
	for _, r := range runs {
		status := "applied"
		switch {
		case r.Undone():
			status = "undone"
		case !r.FinishedAt.Valid:
			status = "interrupted"
		}
		rows = append(rows, []string{
			shortID(r.ID),
			r.StartedAt.Local().Format("2006-01-02 15:04:05"),
			r.Dir,
			strconv.Itoa(r.Renamed),
			strconv.Itoa(r.Skipped),
			strconv.Itoa(r.Failed),
			status,
		})
	}
	return rows
}

// shortID is enough of a run id for `cb undo` to find it
func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
