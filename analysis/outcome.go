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

package analysis

// Status reports how confidently a recognizer matched
type Status int

const (
	StatusNotFound Status = iota
	StatusFound
	StatusAmbiguous
)

func (s Status) String() string {
	switch s {
	case StatusFound:
		return "found"
	case StatusAmbiguous:
		return "ambiguous"
	default:
		return "not_found"
	}
}

// Outcome is the result of a heuristic recognizer. Value holds the best
// guess when the status is Found or Ambiguous. Candidates lists every
// plausible value for an Ambiguous outcome.
type Outcome[T any] struct {
	Status     Status
	Value      T
	Candidates []T
	Reason     string
}

func Found[T any](value T) Outcome[T] {
	return Outcome[T]{Status: StatusFound, Value: value}
}

func NotFound[T any](reason string) Outcome[T] {
	return Outcome[T]{Status: StatusNotFound, Reason: reason}
}

func Ambiguous[T any](best T, candidates []T, reason string) Outcome[T] {
	return Outcome[T]{
		Status:     StatusAmbiguous,
		Value:      best,
		Candidates: candidates,
		Reason:     reason,
	}
}

// Ok reports whether the outcome carries a usable value
func (o Outcome[T]) Ok() bool {
	return o.Status != StatusNotFound
}
