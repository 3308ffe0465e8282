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
	"time"

	"github.com/dnote/notesync/pkg/cli/context"
	"github.com/dnote/notesync/pkg/cli/engine"
	"github.com/dnote/notesync/pkg/cli/infra"
	"github.com/dnote/notesync/pkg/cli/log"
	"github.com/pkg/errors"
	"github.com/radovskyb/watcher"
	"github.com/robfig/cron"
)

const triggerReasonChange = "local change"

// watchPollInterval is how often the database file is checked for changes
var watchPollInterval = time.Second

func logRun(res engine.Result, err error) {
	switch {
	case errors.Cause(err) == infra.ErrLocked, errors.Cause(err) == engine.ErrSyncInProgress:
		log.Debug("skipped: %s\n", err)
	case errors.Cause(err) == engine.ErrUnresolvedConflicts:
		log.Debug("waiting for %d conflicts to be resolved\n", len(res.Conflicts))
	case err != nil:
		log.Errorf("sync failed: %s\n", err)
	case res.Skipped:
	default:
		printResult(res)
	}
}

// newScheduler returns a cron scheduler that runs a full sync on the given
// schedule
func newScheduler(gctx gocontext.Context, ctx context.NotesyncCtx, e *engine.Engine, schedule string) (*cron.Cron, error) {
	c := cron.New()

	err := c.AddFunc(schedule, func() {
		log.Debug("scheduled sync\n")
		logRun(Do(gctx, ctx, e))
	})
	if err != nil {
		return nil, errors.Wrapf(err, "parsing the sync schedule '%s'", schedule)
	}

	return c, nil
}

// newDBWatcher returns a watcher that triggers a sync when the database file
// at path is written
func newDBWatcher(path string) (*watcher.Watcher, error) {
	w := watcher.New()
	w.SetMaxEvents(1)
	w.FilterOps(watcher.Write, watcher.Create)

	if err := w.Add(path); err != nil {
		return nil, errors.Wrapf(err, "watching %s", path)
	}

	return w, nil
}

func watch(gctx gocontext.Context, ctx context.NotesyncCtx, e *engine.Engine) error {
	sched, err := newScheduler(gctx, ctx, e, ctx.SyncSchedule)
	if err != nil {
		return err
	}

	w, err := newDBWatcher(ctx.DBPath)
	if err != nil {
		return err
	}

	go func() {
		for {
			select {
			case ev := <-w.Event:
				log.Debug("database changed: %s\n", ev.Op)

				res, fired, err := Trigger(gctx, ctx, e, triggerReasonChange)
				if fired || err != nil {
					logRun(res, err)
				}
			case err := <-w.Error:
				log.Errorf("watching the database: %s\n", err)
			case <-w.Closed:
				return
			}
		}
	}()

	watchErr := make(chan error, 1)
	go func() {
		watchErr <- w.Start(watchPollInterval)
	}()

	// initial run
	logRun(Do(gctx, ctx, e))

	sched.Start()
	log.Infof("watching for changes. schedule: %s\n", ctx.SyncSchedule)

	select {
	case <-gctx.Done():
	case err = <-watchErr:
		err = errors.Wrap(err, "watching the database")
	}

	sched.Stop()
	w.Close()

	return err
}
