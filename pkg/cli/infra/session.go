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
	"strconv"

	"github.com/dnote/notesync/pkg/cli/consts"
	"github.com/dnote/notesync/pkg/cli/context"
	"github.com/dnote/notesync/pkg/cli/database"
	"github.com/pkg/errors"
)

// SaveSession persists the session and the owner identity of a signed in user
func SaveSession(ctx context.NotesyncCtx, key string, expiresAt int64, userID string) error {
	tx, err := ctx.DB.Begin()
	if err != nil {
		return errors.Wrap(err, "beginning a transaction")
	}

	values := [][2]string{
		{consts.SystemSessionKey, key},
		{consts.SystemSessionKeyExpiry, strconv.FormatInt(expiresAt, 10)},
		{consts.SystemUserID, userID},
	}
	for _, kv := range values {
		if err := database.UpsertSystem(tx, kv[0], kv[1]); err != nil {
			tx.Rollback()
			return errors.Wrapf(err, "saving %s", kv[0])
		}
	}

	if err := tx.Commit(); err != nil {
		return errors.Wrap(err, "committing transaction")
	}

	return nil
}

// ClearSession removes the session and the owner identity
func ClearSession(ctx context.NotesyncCtx) error {
	tx, err := ctx.DB.Begin()
	if err != nil {
		return errors.Wrap(err, "beginning a transaction")
	}

	for _, key := range []string{consts.SystemSessionKey, consts.SystemSessionKeyExpiry, consts.SystemUserID} {
		if err := database.DeleteSystem(tx, key); err != nil {
			tx.Rollback()
			return errors.Wrapf(err, "deleting %s", key)
		}
	}

	if err := tx.Commit(); err != nil {
		return errors.Wrap(err, "committing transaction")
	}

	return nil
}
