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
	"context"
	"fmt"
	"io"
	"slices"
	"strconv"

	"github.com/pterm/pterm"
	"github.com/rs/zerolog"
	"github.com/walteh/guardfix/cmd/guardfix/opts"
	"github.com/walteh/guardfix/pkg/batch"
	"github.com/walteh/guardfix/pkg/catalog"
	"github.com/walteh/guardfix/pkg/config"
	"github.com/walteh/guardfix/pkg/inspect"
	"github.com/walteh/guardfix/pkg/log"
	"github.com/walteh/guardfix/pkg/rewrite"
	"github.com/walteh/guardfix/pkg/status"
	"gitlab.com/tozd/go/errors"
)

// ErrWouldChange is returned by check when some file is not yet fixed.
var ErrWouldChange = errors.Base("files need fixing")

// withLogger attaches the console logger for a command to its context.
func withLogger(ctx context.Context, out io.Writer) context.Context {
	return log.NewContext(ctx, log.New(out, *zerolog.Ctx(ctx)))
}

// run wires config, catalog, engine and runner together and processes args.
// The console logger must already be in ctx.
func run(ctx context.Context, o *opts.RootOpts, args []string, dryRun bool) (*batch.Summary, error) {
	logger := log.FromContext(ctx)

	cfg, err := o.Config(ctx)
	if err != nil {
		return nil, errors.Errorf("loading config: %w", err)
	}

	targets := args
	if len(targets) == 0 {
		targets = cfg.Targets
	}
	if len(targets) == 0 {
		targets = []string{config.DefaultTarget}
	}

	c, err := catalog.New(cfg.CatalogOptions())
	if err != nil {
		return nil, errors.Errorf("building rules: %w", err)
	}

	runner := batch.New(batch.Options{
		Targets:   targets,
		Extension: cfg.Extension,
		Exclude:   cfg.Exclude,
		Jobs:      cfg.Jobs,
		DryRun:    dryRun,
	}, rewrite.New(c, inspect.New(cfg.Window)), status.NewStore(), logger)

	if dryRun {
		logger.Header("checking for unguarded state mutations")
	} else {
		logger.Header("guarding state mutations")
	}

	summary, err := runner.Run(ctx)
	if err != nil {
		return summary, errors.Errorf("running batch: %w", err)
	}

	logger.LogTotals(ctx, summary.Totals())
	if summary.TotalModifications > 0 || summary.NeedsReview > 0 {
		table, err := renderRuleTable(c.Names(), summary)
		if err != nil {
			return summary, errors.Errorf("rendering summary: %w", err)
		}
		logger.LogNewline()
		fmt.Fprint(logger.Console(), table)
	}

	switch {
	case summary.Failed > 0:
		logger.Errorf("%d file(s) could not be rewritten", summary.Failed)
	case summary.NeedsReview > 0:
		logger.Warningf("%d file(s) need manual review", summary.NeedsReview)
	case summary.WouldChange() && dryRun:
		logger.Infof("dry run: %d file(s) would change, nothing written", summary.FilesTouched)
	case !summary.WouldChange():
		logger.Success("every mutation is already guarded")
	}

	return summary, nil
}

// 📊 renderRuleTable shows rewrites and review warnings per rule
func renderRuleTable(rules []string, summary *batch.Summary) (string, error) {
	rewrites := make(map[string]int, len(rules))
	warnings := make(map[string]int, len(rules))
	for _, rec := range summary.Records {
		for rule, n := range rec.PerRule {
			rewrites[rule] += n
		}
		for _, w := range rec.Warnings {
			warnings[w.Rule]++
		}
	}

	data := pterm.TableData{{"rule", "rewrites", "needs review"}}
	for _, rule := range slices.Sorted(slices.Values(rules)) {
		data = append(data, []string{rule, strconv.Itoa(rewrites[rule]), strconv.Itoa(warnings[rule])})
	}
	return pterm.DefaultTable.WithHasHeader().WithData(data).Srender()
}
