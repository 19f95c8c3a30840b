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

func NewCheckCmd(opts *opts.RootOpts) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "check [path...]",
		Short: "Report files that fix would change",
		Long: `Check runs the same rules as fix without writing anything.
It exits non-zero when any file would change, which makes it usable in CI.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := zerolog.Ctx(cmd.Context()).With().Str("command", "check").Logger().WithContext(cmd.Context())
			ctx = withLogger(ctx, cmd.OutOrStdout())

			summary, err := run(ctx, opts, args, true)
			if err != nil {
				return errors.Errorf("checking files: %w", err)
			}
			if summary.WouldChange() {
				return errors.Errorf("%d file(s): %w", summary.FilesTouched, ErrWouldChange)
			}
			return nil
		},
	}

	return cmd
}
