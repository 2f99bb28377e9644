// Copyright © 2025 The Macex authors

package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/luthersystems/macex/macro"
	"github.com/luthersystems/macex/syntax"
	"github.com/spf13/cobra"
)

var collectBind []string

// collectCmd represents the collect command
var collectCmd = &cobra.Command{
	Use:   "collect [tree.json ...]",
	Short: "List macro invocations in serialized trees",
	Long: `Scan serialized syntax trees for macro invocations with respect to a set
of binding names, without executing anything.

Bindings are declared with --bind.  A bare name binds a plain macro; the
suffixes :parametric and :ident declare capability flags and may be
combined, e.g. --bind tag:parametric:ident.`,
	Run: func(cmd *cobra.Command, args []string) {
		table, err := parseBindFlags(collectBind)
		if err != nil {
			renderError(err)
			os.Exit(1)
		}
		for _, path := range args {
			tree, err := readTree(path)
			if err != nil {
				renderError(err)
				os.Exit(1)
			}
			for _, s := range macro.Collect(tree, table) {
				fmt.Printf("%s\t%s\t%s\n", path, s.Kind, s.Name)
			}
		}
	},
}

// parseBindFlags builds a collector-only binding table from --bind values.
// The descriptors carry no transformer functions, which the collector never
// calls.
func parseBindFlags(binds []string) (*macro.BindingTable, error) {
	table := macro.NewBindingTable()
	for _, b := range binds {
		parts := strings.Split(b, ":")
		name := parts[0]
		if name == "" {
			return nil, fmt.Errorf("invalid binding flag %q", b)
		}
		desc := &macro.Descriptor{}
		for _, flag := range parts[1:] {
			switch flag {
			case "parametric":
				desc.Parametric = true
			case "ident":
				desc.IdentCapable = true
			default:
				return nil, fmt.Errorf("invalid binding capability %q in %q", flag, b)
			}
		}
		table.Bind(name, desc)
	}
	return table, nil
}

func readTree(path string) (*syntax.Node, error) {
	data, err := os.ReadFile(path) //#nosec G304
	if err != nil {
		return nil, err
	}
	tree, err := syntax.DecodeTree(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return tree, nil
}

func init() {
	rootCmd.AddCommand(collectCmd)

	collectCmd.Flags().StringArrayVarP(&collectBind, "bind", "b", nil,
		"Bind a macro name, optionally with :parametric and :ident capabilities")
}
