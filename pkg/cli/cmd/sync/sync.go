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
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/dnote/notesync/pkg/cli/consts"
	"github.com/dnote/notesync/pkg/cli/context"
	"github.com/dnote/notesync/pkg/cli/engine"
	"github.com/dnote/notesync/pkg/cli/infra"
	"github.com/dnote/notesync/pkg/cli/log"
	"github.com/dnote/notesync/pkg/cli/output"
	"github.com/dnote/notesync/pkg/cli/upgrade"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

var example = `
  * Sync once
  notesync sync

  * Keep syncing on the configured schedule and whenever notes change
  notesync sync --watch`

var watchFlag bool
var apiEndpointFlag string

// NewCmd returns a new sync command
func NewCmd(ctx context.NotesyncCtx) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "sync",
		Aliases: []string{"s"},
		Short:   "Sync notes with the server",
		Example: example,
		RunE:    newRun(ctx),
	}

	f := cmd.Flags()
	f.BoolVarP(&watchFlag, "watch", "w", false, "keep running, syncing on a schedule and when the local database changes")
	f.StringVar(&apiEndpointFlag, "apiEndpoint", "", "API endpoint to connect to (defaults to value in config)")

	return cmd
}

// saveOutcome records when the last sync finished and what went wrong, if
// anything
func saveOutcome(ctx context.NotesyncCtx, res engine.Result, runErr error) error {
	if runErr != nil {
		return ctx.Store.SetSystem(consts.SystemLastSyncError, runErr.Error())
	}
	if res.Skipped {
		return nil
	}
	if res.PullSkipped && res.PullErr != nil {
		return ctx.Store.SetSystem(consts.SystemLastSyncError, res.PullErr.Error())
	}

	now := strconv.FormatInt(ctx.Clock.Now().Unix(), 10)
	if err := ctx.Store.SetSystem(consts.SystemLastSyncAt, now); err != nil {
		return errors.Wrap(err, "saving last sync time")
	}
	if err := ctx.Store.SetSystem(consts.SystemLastSyncError, ""); err != nil {
		return errors.Wrap(err, "clearing last sync error")
	}

	return nil
}

// guarded runs fn with the sync lock held and records its outcome
func guarded(ctx context.NotesyncCtx, fn func() (engine.Result, error)) (engine.Result, error) {
	unlock, err := infra.Lock(ctx)
	if err != nil {
		return engine.Result{}, err
	}
	defer unlock()

	res, runErr := fn()
	if err := saveOutcome(ctx, res, runErr); err != nil {
		log.Debug("saving sync outcome: %s\n", err)
	}

	return res, runErr
}

// Do runs a sync for the logged in user
func Do(gctx gocontext.Context, ctx context.NotesyncCtx, e *engine.Engine) (engine.Result, error) {
	return guarded(ctx, func() (engine.Result, error) {
		return e.Run(gctx, e.Owner())
	})
}

// Trigger runs a sync if there are pending changes and the engine allows an
// automatic run. It returns false if no run happened.
func Trigger(gctx gocontext.Context, ctx context.NotesyncCtx, e *engine.Engine, reason string) (engine.Result, bool, error) {
	var fired bool

	res, err := guarded(ctx, func() (engine.Result, error) {
		res, ok, err := e.Trigger(gctx, e.Owner(), reason)
		fired = ok
		if !ok && err == nil {
			res.Skipped = true
		}

		return res, err
	})

	return res, fired, err
}

func printResult(res engine.Result) {
	output.SyncResult(os.Stdout, res)

	for _, c := range res.Conflicts {
		output.Conflict(os.Stdout, c)
	}
}

func newRun(ctx context.NotesyncCtx) infra.RunEFunc {
	return func(cmd *cobra.Command, args []string) error {
		if apiEndpointFlag != "" {
			ctx.APIEndpoint = apiEndpointFlag
		}
		if !ctx.LoggedIn() {
			log.Plain("Not logged in. Notes stay on this device until you run 'notesync login'.\n")
			return nil
		}

		gctx, stop := signal.NotifyContext(gocontext.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		e := infra.NewEngine(ctx)

		if watchFlag {
			return watch(gctx, ctx, e)
		}

		res, err := Do(gctx, ctx, e)
		if errors.Cause(err) == infra.ErrLocked {
			log.Warnf("%s\n", err)
			return nil
		}
		if err != nil {
			return errors.Wrap(err, "syncing")
		}

		printResult(res)
		if len(res.Conflicts) == 0 && !res.PullSkipped {
			log.Success("synced\n")
		}

		if err := upgrade.Check(ctx); err != nil {
			log.Error(errors.Wrap(err, "automatically checking updates").Error())
		}

		return nil
	}
}
