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

package sync

import (
	gocontext "context"

	"github.com/dnote/notesync/pkg/cli/context"
	"github.com/dnote/notesync/pkg/cli/engine"
	"github.com/dnote/notesync/pkg/cli/infra"
	"github.com/dnote/notesync/pkg/cli/log"
	"github.com/pkg/errors"
)

// AfterEdit triggers a sync after a local edit if auto sync is enabled and a
// user is logged in. A failed sync never fails the edit.
func AfterEdit(ctx context.NotesyncCtx, reason string) {
	if !ctx.AutoSync || !ctx.LoggedIn() {
		return
	}

	gctx, cancel := gocontext.WithTimeout(gocontext.Background(), engine.DefaultTimeout)
	defer cancel()

	res, fired, err := Trigger(gctx, ctx, infra.NewEngine(ctx), reason)
	switch {
	case errors.Cause(err) == infra.ErrLocked:
		log.Debug("auto sync skipped: %s\n", err)
	case err != nil:
		log.Warnf("auto sync failed: %s. Run 'notesync sync' to retry.\n", err)
	case fired:
		printResult(res)
	}
}
