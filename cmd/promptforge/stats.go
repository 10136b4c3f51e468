package main

import (
	"github.com/spf13/cobra"

	"github.com/joss/promptforge/internal/render"
)

func statsCmd() *cobra.Command {
	var recent int

	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show token usage, cache hit rate, and estimated cost",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp()
			if err != nil {
				return err
			}
			defer a.close()

			w := render.Stdout()
			w.Print("%s", a.renderer.Stats(a.analytics.Summary(), a.analytics.PerModel()))
			if recent > 0 {
				w.Line()
				w.Print("%s", a.renderer.Recent(a.analytics.Recent(recent)))
			}
			return nil
		},
	}

	cmd.Flags().IntVar(&recent, "recent", 0, "Also show the last N generation calls, oldest first")
	return cmd
}
