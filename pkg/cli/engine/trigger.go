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

// Trigger starts a run on behalf of an automatic event such as a resume or a
// file change. The run is started only if the previous automatic run is at
// least the minimum interval old, no run is in flight, the previous run did
// not fail, and the owner has pending notes. It reports whether a run was
// started.
func (e *Engine) Trigger(ctx context.Context, ownerID, reason string) (Result, bool, error) {
	if ownerID == "" {
		return Result{}, false, nil
	}
	if e.syncing.Load() {
		e.logger.Debug("trigger %s ignored: sync in progress\n", reason)
		return Result{}, false, nil
	}

	e.mu.Lock()
	now := e.clock.Now()
	status := e.status
	switch {
	case status == StatusError, status == StatusConflicted:
		e.mu.Unlock()
		e.logger.Debug("trigger %s ignored: status %s\n", reason, status)
		return Result{}, false, nil
	case !e.lastAutoRunAt.IsZero() && now.Sub(e.lastAutoRunAt) < e.minAutoInterval:
		e.mu.Unlock()
		e.logger.Debug("trigger %s ignored: too soon\n", reason)
		return Result{}, false, nil
	}
	e.mu.Unlock()

	count, err := e.store.CountPending(ownerID)
	if err != nil {
		return Result{}, false, errors.Wrap(err, "counting pending notes")
	}
	if count == 0 {
		e.logger.Debug("trigger %s ignored: nothing pending\n", reason)
		return Result{}, false, nil
	}

	e.mu.Lock()
	e.lastAutoRunAt = now
	e.mu.Unlock()

	e.logger.Debug("trigger %s: syncing %d pending notes\n", reason, count)
	res, err := e.Run(ctx, ownerID)
	if errors.Cause(err) == ErrSyncInProgress {
		return Result{}, false, nil
	}

	return res, true, err
}
