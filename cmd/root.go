// Copyright © 2025 The Macex authors

package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	cfgFile   string
	widthFlag int
	colorFlag string
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "macex",
	Short: "Macex — syntax tree macro expander",
	Long: `Macex is a macro expansion engine operating on serialized syntax trees.
It provides a standalone CLI for inspecting trees produced by a host front
end.

Getting started:
  macex collect tree.json --bind foo         List macro invocations of foo
  macex collect tree.json --bind tag:parametric
                                             Treat tag as a parametric macro
  macex markers tree.json                    List expansion markers in a tree
  macex markers tree.json --tag coverage     List only coverage markers

Trees are JSON documents in the wire format of the syntax package.  Macro
execution requires transformer functions and is only available to Go
embedders; the CLI detects and reports, it never rewrites.

More information:
  Source code:     https://github.com/luthersystems/macex`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.macex.yaml)")
	rootCmd.PersistentFlags().IntVar(&widthFlag, "width", 0,
		"Wrap width for diagnostic output (0 selects a default)")
	rootCmd.PersistentFlags().StringVar(&colorFlag, "color", "auto",
		"Color diagnostic output (auto|always|never)")
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	if cfgFile != "" {
		// Use config file from the flag.
		viper.SetConfigFile(cfgFile)
	} else {
		// Find home directory.
		home, err := os.UserHomeDir()
		if err != nil {
			fmt.Println(err)
			os.Exit(1)
		}

		// Search config in home directory with name ".macex" (without extension).
		viper.AddConfigPath(home)
		viper.SetConfigName(".macex")
	}

	viper.AutomaticEnv() // read in environment variables that match

	// If a config file is found, read it in.
	if err := viper.ReadInConfig(); err == nil {
		fmt.Println("Using config file:", viper.ConfigFileUsed())
	}
}
