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

	"github.com/dnote/notesync/pkg/cli/database"
	"github.com/dnote/notesync/pkg/cli/utils"
	"github.com/pkg/errors"
)

// Action is a resolution policy for a conflict
type Action string

const (
	// KeepLocal pushes the local version over the remote one
	KeepLocal Action = "keep_local"
	// KeepRemote overwrites the local version with the remote one
	KeepRemote Action = "keep_remote"
	// KeepBoth keeps the remote version under the original id and the local
	// version as a new note
	KeepBoth Action = "keep_both"
)

// ConflictCopySuffix is appended to the title of the copy made by KeepBoth
const ConflictCopySuffix = " (conflicted copy)"

// Valid reports whether the action is a known policy
func (a Action) Valid() bool {
	switch a {
	case KeepLocal, KeepRemote, KeepBoth:
		return true
	}

	return false
}

// ResolveConflict applies the action to the conflict at the head of the
// queue. Once the queue is empty the held remote notes are merged and the
// result carries the owner's note list.
func (e *Engine) ResolveConflict(ctx context.Context, conflictID string, action Action) (Result, error) {
	if !action.Valid() {
		return Result{}, errors.Wrapf(ErrInvalidAction, "%q", action)
	}

	if !e.syncing.CompareAndSwap(false, true) {
		return Result{}, ErrSyncInProgress
	}
	defer e.syncing.Store(false)

	e.mu.Lock()
	if len(e.queue) == 0 {
		e.mu.Unlock()
		return Result{}, errors.Wrapf(ErrConflictNotFound, "id %s", conflictID)
	}
	c := e.queue[0]
	ownerID := e.queueOwner
	if c.ID != conflictID {
		queued := e.conflictIDs[conflictID]
		e.mu.Unlock()

		if queued {
			return Result{}, errors.Wrapf(ErrConflictOutOfOrder, "head is %s", c.ID)
		}
		return Result{}, errors.Wrapf(ErrConflictNotFound, "id %s", conflictID)
	}
	e.mu.Unlock()

	if err := e.apply(ctx, ownerID, c, action); err != nil {
		e.logger.Debug("resolution of %s failed: %s\n", c.ID, err)
		return Result{Status: StatusConflicted, Conflicts: e.Conflicts()}, &ResolutionError{ConflictID: c.ID, Action: action, Err: err}
	}

	e.mu.Lock()
	e.queue = e.queue[1:]
	if len(e.queue) > 0 {
		e.publishLocked()
		conflicts := append([]Conflict{}, e.queue...)
		e.mu.Unlock()

		return Result{Status: StatusConflicted, Conflicts: conflicts}, nil
	}
	remotes, skip := e.pulled, e.conflictIDs
	e.clearQueueLocked()
	e.mu.Unlock()

	res, err := e.finalizeResolved(ownerID, remotes, skip)
	e.finishRun(&res, err)

	return res, err
}

// finalizeResolved completes the run that stopped on conflicts
func (e *Engine) finalizeResolved(ownerID string, remotes []database.Note, skip map[string]bool) (Result, error) {
	var res Result

	e.setStatus(StatusPulling)

	pulled, err := e.merge(remotes, skip)
	if err != nil {
		return res, err
	}
	res.Pulled = pulled

	notes, err := e.store.ListForOwner(ownerID)
	if err != nil {
		return res, errors.Wrap(err, "listing notes")
	}
	res.Notes = notes

	return res, nil
}

func (e *Engine) apply(ctx context.Context, ownerID string, c Conflict, action Action) error {
	switch action {
	case KeepLocal:
		return e.keepLocal(ctx, ownerID, c)
	case KeepRemote:
		return errors.Wrap(e.store.ForceUpsertFromRemote(c.Remote), "overwriting the local version")
	case KeepBoth:
		return e.keepBoth(ctx, ownerID, c)
	}

	return ErrInvalidAction
}

// current returns the latest local version of the conflicting note
func (e *Engine) current(c Conflict) (database.Note, error) {
	n, err := e.store.Get(c.Local.ID)
	if err != nil {
		return database.Note{}, errors.Wrap(err, "reading the local version")
	}

	return n, nil
}

// keepLocal pushes the local version stamped with the resolution time, so
// that it is the latest write of the note everywhere. The local row keeps its
// old stamp until the remote accepts it.
func (e *Engine) keepLocal(ctx context.Context, ownerID string, c Conflict) error {
	local, err := e.current(c)
	if err != nil {
		return err
	}

	local.UpdatedAt = max(e.clock.Now().UnixMilli(), local.UpdatedAt, c.Remote.UpdatedAt)

	if local.IsLocalOnly() {
		created, err := e.remoteCreate(ctx, ownerID, local)
		if err != nil {
			return errors.Wrap(err, "creating the local version remotely")
		}
		if err := e.store.ReassignID(local.ID, created.ID); err != nil {
			return errors.Wrap(err, "reassigning id")
		}

		local.ID = created.ID
	} else if _, err := e.remoteUpdate(ctx, ownerID, local); err != nil {
		return errors.Wrap(err, "pushing the local version")
	}

	return errors.Wrap(e.store.ForceUpsertFromRemote(local), "saving the local version")
}

func (e *Engine) keepBoth(ctx context.Context, ownerID string, c Conflict) error {
	local, err := e.current(c)
	if err != nil {
		return err
	}

	id, err := utils.GenerateUUID()
	if err != nil {
		return err
	}

	cp := local
	cp.ID = id
	cp.Origin = database.OriginLocal
	cp.OwnerID = ownerID
	cp.Title = local.Title + ConflictCopySuffix
	cp.SyncStatus = database.StatusPending

	created, err := e.remoteCreate(ctx, ownerID, cp)
	if err != nil {
		return errors.Wrap(err, "creating the copy remotely")
	}

	if err := e.store.ForceUpsertFromRemote(created); err != nil {
		return errors.Wrap(err, "saving the copy")
	}
	if err := e.store.ForceUpsertFromRemote(c.Remote); err != nil {
		return errors.Wrap(err, "overwriting the local version")
	}

	return nil
}
