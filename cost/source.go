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

package cost

import (
	"context"
	"errors"
	"sort"
	"sync"
)

var ErrNoCostModel = errors.New("no cost model for epoch")

// ParamSource provides the cost model in effect for an epoch
type ParamSource interface {
	CostModel(ctx context.Context, epoch uint64) (*Model, error)
}

// StaticSource serves one model for every epoch
type StaticSource struct {
	Model *Model
}

func (s StaticSource) CostModel(_ context.Context, _ uint64) (*Model, error) {
	if s.Model == nil {
		return DefaultModel(), nil
	}
	return s.Model, nil
}

// EpochSource serves the model that took effect most recently at or
// before the requested epoch
type EpochSource struct {
	mu     sync.RWMutex
	epochs []uint64
	models map[uint64]*Model
}

func NewEpochSource() *EpochSource {
	return &EpochSource{
		models: make(map[uint64]*Model),
	}
}

// Set records the model taking effect at epoch
func (s *EpochSource) Set(epoch uint64, m *Model) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.models[epoch]; !ok {
		s.epochs = append(s.epochs, epoch)
		sort.Slice(s.epochs, func(i, j int) bool {
			return s.epochs[i] < s.epochs[j]
		})
	}
	s.models[epoch] = m
}

func (s *EpochSource) CostModel(ctx context.Context, epoch uint64) (*Model, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	// First recorded epoch after the requested one
	idx := sort.Search(len(s.epochs), func(i int) bool {
		return s.epochs[i] > epoch
	})
	if idx == 0 {
		return nil, ErrNoCostModel
	}
	return s.models[s.epochs[idx-1]], nil
}
