// Copyright © 2025 The Macex authors

package cmd

import (
	"fmt"
	"os"

	"github.com/luthersystems/macex/astutil"
	"github.com/luthersystems/macex/macro"
	"github.com/spf13/cobra"
)

var markersTag string

// markersCmd represents the markers command
var markersCmd = &cobra.Command{
	Use:   "markers [tree.json ...]",
	Short: "List expansion markers in serialized trees",
	Long: `List the expansion markers present in serialized syntax trees, with their
tags and source locations.  A fully expanded tree contains only done and
coverage markers; anything else indicates a transformer bug.`,
	Run: func(cmd *cobra.Command, args []string) {
		for _, path := range args {
			tree, err := readTree(path)
			if err != nil {
				renderError(err)
				os.Exit(1)
			}
			for _, m := range macro.FindMarkers(tree, markersTag) {
				loc := "unknown"
				if src := astutil.SourceOf(m); src != nil {
					loc = src.String()
				}
				fmt.Printf("%s\t%s\t%s\n", path, m.Str, loc)
			}
		}
	},
}

func init() {
	rootCmd.AddCommand(markersCmd)

	markersCmd.Flags().StringVarP(&markersTag, "tag", "t", "",
		"Restrict output to markers with this tag")
}
