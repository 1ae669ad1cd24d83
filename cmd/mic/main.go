// This file is part of Atto-8 - https://github.com/Bricktech2000/Atto-8
//
// Copyright 2023 The Atto-8 Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package main

import (
	"fmt"
	"io"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/Bricktech2000/Atto-8-sub000/memimg"
	"github.com/Bricktech2000/Atto-8-sub000/mic"
)

type cliConfig struct {
	debug   bool
	listing bool
}

var config cliConfig

var rootCmd = &cobra.Command{
	Use:   "mic <image-out>",
	Short: "mic - Atto-8 microcode compiler",
	Long: `Derives the control word of every (opcode, carry, step) triple of the
Atto-8 microarchitecture and writes them as a little endian microcode image.`,
	Args:              cobra.ExactArgs(1),
	PersistentPreRunE: before,
	SilenceUsage:      true,
	SilenceErrors:     true,
	RunE: func(cmd *cobra.Command, args []string) error {
		return run(args[0], cmd.OutOrStdout())
	},
}

func init() {
	addFlags(rootCmd.Flags())
}

func addFlags(flags *pflag.FlagSet) {
	flags.BoolVar(&config.debug, "debug", false, "enable debug diagnostics")
	flags.BoolVar(&config.listing, "listing", false, "write a microcode listing to <image-out>.lst")
}

func before(cmd *cobra.Command, args []string) error {
	if config.debug {
		logrus.SetLevel(logrus.DebugLevel)
	}
	return nil
}

func run(out string, stdout io.Writer) error {
	rom, err := mic.Compile()
	if err != nil {
		return err
	}
	if err = memimg.SaveWords(out, rom); err != nil {
		return err
	}
	if config.listing {
		err = memimg.Save(out+".lst", func(w io.Writer) error {
			return mic.WriteListing(w, rom)
		})
		if err != nil {
			return err
		}
	}
	fmt.Fprintln(stdout, "Done")
	return nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		if config.debug {
			fmt.Fprintf(os.Stderr, "%+v\n", err)
		} else {
			fmt.Fprintln(os.Stderr, err)
		}
		os.Exit(1)
	}
}
