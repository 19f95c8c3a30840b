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

// Package config loads the optional guardfix configuration file.
//
// 🎯 Purpose:
// - Names the targets, extension and exclude globs for a run
// - Names the vocabulary the rewrite rules are built from
// - Accepts YAML, HCL or JSON, picked by file extension
//
// 🔍 Example:
//
// 	# guardfix.yaml
// 	targets: [lib, test]
// 	exclude: ["**/*.g.dart", "**/*.freezed.dart"]
// 	jobs: 4
// 	rules:
// 	  liveness_flag: context.mounted
// 	  failure_type: StateError
// 	  disable: [unwrap-optional]
//
// Values given on the command line override the file.
package config
