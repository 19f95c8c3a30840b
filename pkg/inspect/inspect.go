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

// Package inspect decides whether a match already sits behind a guard.
//
// The check is purely textual: the bytes immediately preceding a match are
// searched for the guard markers a rule emits. A wide window lets a guard a
// few statements back count (skipped rewrite), a narrow one lets a distant
// guard be missed (duplicate rewrite). Both failure modes are accepted.
package inspect

import "strings"

// 📏 DefaultWindow is the number of bytes inspected before a match
const DefaultWindow = 100

// 🔍 Inspector looks for guard markers before a match
type Inspector struct {
	Size int // window size in bytes, DefaultWindow when <= 0
}

// 🏭 New creates an inspector with the given window size
func New(size int) Inspector {
	return Inspector{Size: size}
}

func (i Inspector) size() int {
	if i.Size <= 0 {
		return DefaultWindow
	}
	return i.Size
}

// ✂️ Window returns the context window ending at start
func (i Inspector) Window(text string, start int) string {
	if start > len(text) {
		start = len(text)
	}
	if start <= 0 {
		return ""
	}
	return text[max(0, start-i.size()):start]
}

// 🛡️ IsAlreadyGuarded reports whether any marker occurs in the window
func (i Inspector) IsAlreadyGuarded(window string, markers []string) bool {
	for _, marker := range markers {
		if marker != "" && strings.Contains(window, marker) {
			return true
		}
	}
	return false
}

// Guarded combines Window and IsAlreadyGuarded.
func (i Inspector) Guarded(text string, start int, markers []string) bool {
	if len(markers) == 0 {
		return false
	}
	return i.IsAlreadyGuarded(i.Window(text, start), markers)
}
