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
	"context"

	"github.com/pkg/errors"
)

// SetOwner records the owner identity without migrating. It is used on
// logout so that the next login is seen as a transition from guest.
func (e *Engine) SetOwner(ownerID string) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.owner = ownerID
}

// Owner returns the owner identity last observed by the engine
func (e *Engine) Owner() string {
	e.mu.Lock()
	defer e.mu.Unlock()

	return e.owner
}

// MigrateGuestNotes gives every guest note to newOwnerID and syncs them. It
// only acts on a transition from no owner to an owner, once per transition.
func (e *Engine) MigrateGuestNotes(ctx context.Context, newOwnerID string) (Result, error) {
	if newOwnerID == "" {
		return Result{Skipped: true, SkipReason: SkipNotLoggedIn}, nil
	}

	e.mu.Lock()
	prev := e.owner
	if prev != "" {
		e.mu.Unlock()
		return Result{Skipped: true, SkipReason: SkipNoTransition}, nil
	}
	e.owner = newOwnerID
	e.mu.Unlock()

	count, err := e.store.ReassignOwner(newOwnerID)
	if err != nil {
		// allow the transition to be retried
		e.SetOwner(prev)
		return Result{}, errors.Wrap(err, "migrating guest notes")
	}
	e.logger.Debug("migrated %d guest notes to %s\n", count, newOwnerID)

	res, err := e.Run(ctx, newOwnerID)
	res.Migrated = count

	return res, err
}
