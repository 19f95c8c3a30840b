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

package opts

import (
	"context"

	"github.com/walteh/guardfix/pkg/config"
)

// RootOpts carries the flags shared by every subcommand
type RootOpts struct {
	ConfigFile string
	Debug      bool
	Jobs       int
	Window     int
	Extension  string
	Exclude    []string
}

// 🎯 Config loads the config file, if any, and applies flag overrides.
// Zero-valued flags leave the file's values alone.
func (o *RootOpts) Config(ctx context.Context) (*config.Config, error) {
	cfg := config.Default()
	if o.ConfigFile != "" {
		loaded, err := config.Load(ctx, o.ConfigFile)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	if o.Jobs > 0 {
		cfg.Jobs = o.Jobs
	}
	if o.Window > 0 {
		cfg.Window = o.Window
	}
	if o.Extension != "" {
		cfg.Extension = o.Extension
	}
	cfg.Exclude = append(cfg.Exclude, o.Exclude...)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
