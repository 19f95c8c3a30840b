// Copyright 2025 walteh LLC
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
	"io"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/walteh/guardfix/cmd/guardfix/commands"
	"github.com/walteh/guardfix/cmd/guardfix/opts"
)

// newRootCmd builds the command tree. Structured logs go to logs, user
// output to the command's stdout.
func newRootCmd(logs io.Writer) *cobra.Command {
	rootOpts := &opts.RootOpts{}

	rootCmd := &cobra.Command{
		Use:   "guardfix",
		Short: "Guard Flutter state mutations and optional unwraps",
		Long: `guardfix rewrites Dart sources so that setState is only called while the
widget is mounted, and forced unwraps of data() become explicit null checks.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			logger := setupLogging(logs, rootOpts.Debug)
			cmd.SetContext(logger.WithContext(cmd.Context()))
		},
	}

	addRootFlags(rootCmd, rootOpts)

	rootCmd.AddCommand(
		commands.NewFixCmd(rootOpts),
		commands.NewCheckCmd(rootOpts),
		newVersionCmd(),
	)

	return rootCmd
}

// addRootFlags adds shared flags to the root command
func addRootFlags(cmd *cobra.Command, o *opts.RootOpts) {
	cmd.PersistentFlags().StringVarP(&o.ConfigFile, "config", "c", "", "config file path (.yaml, .yml, .hcl or .json)")
	cmd.PersistentFlags().BoolVarP(&o.Debug, "debug", "d", false, "enable debug logging")
	cmd.PersistentFlags().IntVarP(&o.Jobs, "jobs", "j", 0, "files processed concurrently (default sequential)")
	cmd.PersistentFlags().IntVar(&o.Window, "window", 0, "bytes before a match searched for an existing guard")
	cmd.PersistentFlags().StringVar(&o.Extension, "extension", "", "extension of files walked in directories (default .dart)")
	cmd.PersistentFlags().StringSliceVarP(&o.Exclude, "exclude", "x", nil, "doublestar glob excluded when walking directories")
}

// setupLogging configures zerolog based on flags. Per-file lines are already
// printed for the user, so only warnings reach the log unless debugging.
func setupLogging(w io.Writer, debug bool) zerolog.Logger {
	level := zerolog.WarnLevel
	if debug {
		level = zerolog.DebugLevel
	}
	return zerolog.New(w).Level(level).With().Timestamp().Logger()
}
