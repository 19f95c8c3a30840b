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

package commands

import (
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/walteh/guardfix/cmd/guardfix/opts"
	"gitlab.com/tozd/go/errors"
)

func NewFixCmd(opts *opts.RootOpts) *cobra.Command {
	var dryRun bool

	cmd := &cobra.Command{
		Use:   "fix [path...]",
		Short: "Guard state mutations and optional unwraps in place",
		Long: `Fix rewrites each file in place:
1. setState(() ...) calls are wrapped in if (mounted)
2. final v = x.data()!; becomes a null check that throws
3. Occurrences that are already guarded are left alone

Paths may be files or directories; directories are walked for .dart files.
With no path the lib directory is used.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := zerolog.Ctx(cmd.Context()).With().Str("command", "fix").Logger().WithContext(cmd.Context())
			ctx = withLogger(ctx, cmd.OutOrStdout())

			if _, err := run(ctx, opts, args, dryRun); err != nil {
				return errors.Errorf("fixing files: %w", err)
			}
			return nil
		},
	}

	cmd.Flags().BoolVarP(&dryRun, "dry-run", "n", false, "report changes without writing")

	return cmd
}
