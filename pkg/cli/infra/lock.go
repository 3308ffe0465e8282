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

package infra

import (
	"github.com/dnote/notesync/pkg/cli/context"
	"github.com/gofrs/flock"
	"github.com/pkg/errors"
)

// ErrLocked is returned when another notesync process holds the sync lock
var ErrLocked = errors.New("another notesync process is syncing")

// Lock takes the cross-process sync lock without blocking. The returned
// function releases it.
func Lock(ctx context.NotesyncCtx) (func() error, error) {
	fl := flock.New(context.LockPath(ctx.Paths))

	ok, err := fl.TryLock()
	if err != nil {
		return nil, errors.Wrap(err, "acquiring the sync lock")
	}
	if !ok {
		return nil, ErrLocked
	}

	return fl.Unlock, nil
}
