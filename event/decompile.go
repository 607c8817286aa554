// Copyright 2025 Blink Labs Software
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

package event

import "time"

const (
	// DecompileCompletedEventType is published after every successful
	// decompilation, including cache hits
	DecompileCompletedEventType = EventType("decompile.completed")
	// DecompileFailedEventType is published when a pipeline stage fails
	DecompileFailedEventType = EventType("decompile.failed")
)

// DecompileEvent describes the outcome of one decompilation
type DecompileEvent struct {
	// Key is the hex cache key of the input
	Key string
	// Hash is the script hash, empty for text input
	Hash    string
	Purpose string
	// Stage names the failed pipeline stage for failure events
	Stage    string
	Err      error
	Duration time.Duration
	Cached   bool
}
