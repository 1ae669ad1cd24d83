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

	"github.com/Bricktech2000/Atto-8-sub000/asm"
	"github.com/Bricktech2000/Atto-8-sub000/memimg"
)

type cliConfig struct {
	debug   bool
	listing bool
	entry   string
}

var config = cliConfig{
	entry: asm.DefaultEntry,
}

var rootCmd = &cobra.Command{
	Use:               "asm <source> <image-out>",
	Short:             "asm - Atto-8 assembler",
	Args:              cobra.ExactArgs(2),
	PersistentPreRunE: before,
	SilenceUsage:      true,
	SilenceErrors:     true,
	RunE: func(cmd *cobra.Command, args []string) error {
		return run(args[0], args[1], cmd.OutOrStdout())
	},
}

func init() {
	addFlags(rootCmd.Flags())
}

func addFlags(flags *pflag.FlagSet) {
	flags.BoolVar(&config.debug, "debug", false, "enable debug diagnostics")
	flags.BoolVar(&config.listing, "listing", false, "write a disassembly listing to <image-out>.lst")
	flags.StringVar(&config.entry, "entry", config.entry, "name of the entry point macro")
}

func before(cmd *cobra.Command, args []string) error {
	if config.debug {
		logrus.SetLevel(logrus.DebugLevel)
	}
	return nil
}

func run(src, out string, stdout io.Writer) error {
	img, err := asm.AssembleFile(src, asm.Entry(config.entry))
	if err != nil {
		return err
	}
	if err = memimg.SaveBytes(out, img); err != nil {
		return err
	}
	if config.listing {
		err = memimg.Save(out+".lst", func(w io.Writer) error {
			return asm.DisassembleAll(img, 0, w)
		})
		if err != nil {
			return err
		}
	}
	logrus.WithField("bytes", len(img)).Debug("image written")
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
