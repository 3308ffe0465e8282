/* Copyright 2025 Dnote Authors
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package engine

import (
	"fmt"

	"github.com/pkg/errors"
)

var (
	// ErrSyncInProgress is returned when a run or a resolution is requested
	// while another one is in flight
	ErrSyncInProgress = errors.New("a sync is already in progress")
	// ErrUnresolvedConflicts is returned when a run is requested for an owner
	// whose conflict queue is not yet empty
	ErrUnresolvedConflicts = errors.New("there are unresolved conflicts")
	// ErrConflictNotFound is returned when resolving a conflict that is not queued
	ErrConflictNotFound = errors.New("conflict not found")
	// ErrConflictOutOfOrder is returned when resolving a queued conflict that
	// is not at the head of the queue
	ErrConflictOutOfOrder = errors.New("conflicts must be resolved oldest first")
	// ErrInvalidAction is returned for an unknown resolution action
	ErrInvalidAction = errors.New("invalid resolution action")
)

// ResolutionError is a failure of a single resolution attempt. The conflict
// stays at the head of the queue.
type ResolutionError struct {
	ConflictID string
	Action     Action
	Err        error
}

func (e *ResolutionError) Error() string {
	return fmt.Sprintf("resolving conflict %s with %s: %s", e.ConflictID, e.Action, e.Err)
}

// Unwrap returns the underlying error
func (e *ResolutionError) Unwrap() error {
	return e.Err
}

// Cause returns the underlying error for errors.Cause
func (e *ResolutionError) Cause() error {
	return e.Err
}
