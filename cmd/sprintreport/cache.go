package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sprintreport/sprintreport/internal/cache"
	"github.com/sprintreport/sprintreport/internal/ui"
)

var cacheDir string

var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Inspect or clear cached sprint results",
}

var cacheListCmd = &cobra.Command{
	Use:   "list",
	Short: "List cached sprints",
	Run: func(cmd *cobra.Command, args []string) {
		entries, err := cache.New(cacheDir, nil).List()
		if err != nil {
			FatalError("%v", err)
		}
		if len(entries) == 0 {
			fmt.Println(ui.RenderMuted("No cached sprints in " + cacheDir))
			return
		}
		for _, e := range entries {
			fmt.Printf("%-30s %8d bytes  %s\n", e.Sprint, e.Size, ui.RenderMuted(e.ModTime.Format("2006-01-02 15:04")))
		}
	},
}

var cacheClearCmd = &cobra.Command{
	Use:   "clear [SPRINT...]",
	Short: "Remove cached results for the given sprints, or all of them",
	Run: func(cmd *cobra.Command, args []string) {
		store := cache.New(cacheDir, nil)
		if len(args) == 0 {
			n, err := store.Clear()
			if err != nil {
				FatalError("%v", err)
			}
			fmt.Println(ui.RenderPass(fmt.Sprintf("Removed %d cached sprint(s)", n)))
			return
		}
		for _, sprint := range args {
			if err := store.Remove(sprint); err != nil {
				if errors.Is(err, cache.ErrNotCached) {
					WarnError("%q is not cached", sprint)
					continue
				}
				FatalError("%v", err)
			}
			fmt.Println(ui.RenderPass(fmt.Sprintf("Removed %s", store.Path(sprint))))
		}
	},
}

func init() {
	cacheCmd.PersistentFlags().StringVar(&cacheDir, "cache-dir", cache.DefaultDir, "Directory holding cached sprint results")
	cacheCmd.AddCommand(cacheListCmd, cacheClearCmd)
	rootCmd.AddCommand(cacheCmd)
}
