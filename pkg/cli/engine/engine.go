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

// Package engine reconciles the local note store with the remote note
// service. A run pushes pending local changes, pulls the remote state,
// and stops with a conflict queue when both sides edited the same note.
package engine

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/dnote/notesync/pkg/cli/database"
	"github.com/dnote/notesync/pkg/clock"
	"github.com/pkg/errors"
)

const (
	// DefaultTimeout bounds every remote call
	DefaultTimeout = 10 * time.Second
	// DefaultMinAutoInterval is the shortest gap between two automatic runs
	DefaultMinAutoInterval = time.Second

	// SkipNotLoggedIn is the skip reason of a run without an owner
	SkipNotLoggedIn = "not logged in"
	// SkipNoTransition is the skip reason of a migration that is not a
	// guest to owner transition
	SkipNoTransition = "no login transition"
)

// Status is the observable state of the engine
type Status string

const (
	// StatusIdle means no run is in flight
	StatusIdle Status = "idle"
	// StatusPushing means local changes are being sent to the remote
	StatusPushing Status = "pushing"
	// StatusPulling means the remote state is being fetched and merged
	StatusPulling Status = "pulling"
	// StatusConflicted means the last run stopped with unresolved conflicts
	StatusConflicted Status = "conflicted"
	// StatusError means the last run failed
	StatusError Status = "error"
)

// Op is a remote operation performed for a pending note
type Op string

const (
	// OpCreate creates a note that only exists locally
	OpCreate Op = "create"
	// OpUpdate sends a local edit of a remote note
	OpUpdate Op = "update"
	// OpDelete deletes a note remotely
	OpDelete Op = "delete"
)

// Remote is the remote note service scoped by owner
type Remote interface {
	Create(ctx context.Context, ownerID string, n database.Note) (database.Note, error)
	Update(ctx context.Context, ownerID string, n database.Note) (database.Note, error)
	Delete(ctx context.Context, ownerID, id string) error
	ListAll(ctx context.Context, ownerID string) ([]database.Note, error)
}

// Logger receives debug traces of a run
type Logger interface {
	Debug(msg string, v ...interface{})
}

type nopLogger struct{}

func (nopLogger) Debug(string, ...interface{}) {}

// Conflict is a pair of divergent versions of the same note
type Conflict struct {
	ID         string
	Local      database.Note
	Remote     database.Note
	DetectedAt time.Time
}

// RecordResult is the outcome of pushing one pending note
type RecordResult struct {
	NoteID string
	Op     Op
	// NewID is the remote id assigned to a created note
	NewID string
	Err   error
}

// Result is the report of a run
type Result struct {
	Status     Status
	Skipped    bool
	SkipReason string

	Pushed []RecordResult
	Failed []RecordResult

	// Migrated is the number of guest notes given to the owner
	Migrated int
	// Pulled is the number of remote notes written locally
	Pulled int
	// Pruned is the number of local notes removed because they were deleted
	// remotely
	Pruned      int
	PullSkipped bool
	PullErr     error

	Conflicts []Conflict
	// Notes is the owner's note list after the run
	Notes []database.Note
}

// Snapshot is a point-in-time view of the engine for observers
type Snapshot struct {
	Status    Status
	Current   *Conflict
	Queued    int
	LastError error
	LastRunAt time.Time
}

// Params are the dependencies of an Engine
type Params struct {
	Store  *database.Store
	Remote Remote
	Clock  clock.Clock
	// Timeout bounds every remote call. Defaults to DefaultTimeout.
	Timeout time.Duration
	// MinAutoInterval is the shortest gap between automatic runs. Defaults
	// to DefaultMinAutoInterval.
	MinAutoInterval time.Duration
	// OwnerID is the owner known at startup. An empty value means guest.
	OwnerID string
	Logger  Logger
}

// Engine runs syncs for a single local store
type Engine struct {
	store           *database.Store
	remote          Remote
	clock           clock.Clock
	timeout         time.Duration
	minAutoInterval time.Duration
	logger          Logger

	syncing atomic.Bool

	mu            sync.Mutex
	status        Status
	owner         string
	queue         []Conflict
	queueOwner    string
	conflictIDs   map[string]bool
	pulled        []database.Note
	lastErr       error
	lastRunAt     time.Time
	lastAutoRunAt time.Time
	subs          map[int]chan Snapshot
	nextSubID     int
}

// New returns a new engine
func New(p Params) *Engine {
	e := &Engine{
		store:           p.Store,
		remote:          p.Remote,
		clock:           p.Clock,
		timeout:         p.Timeout,
		minAutoInterval: p.MinAutoInterval,
		logger:          p.Logger,
		status:          StatusIdle,
		owner:           p.OwnerID,
		subs:            map[int]chan Snapshot{},
	}

	if e.clock == nil {
		e.clock = clock.New()
	}
	if e.timeout == 0 {
		e.timeout = DefaultTimeout
	}
	if e.minAutoInterval == 0 {
		e.minAutoInterval = DefaultMinAutoInterval
	}
	if e.logger == nil {
		e.logger = nopLogger{}
	}

	return e
}

func (e *Engine) snapshotLocked() Snapshot {
	s := Snapshot{
		Status:    e.status,
		Queued:    len(e.queue),
		LastError: e.lastErr,
		LastRunAt: e.lastRunAt,
	}
	if len(e.queue) > 0 {
		c := e.queue[0]
		s.Current = &c
	}

	return s
}

// publishLocked sends the latest snapshot to every subscriber, replacing a
// value the subscriber has not consumed yet
func (e *Engine) publishLocked() {
	s := e.snapshotLocked()

	for _, ch := range e.subs {
		select {
		case ch <- s:
			continue
		default:
		}

		select {
		case <-ch:
		default:
		}
		select {
		case ch <- s:
		default:
		}
	}
}

func (e *Engine) setStatus(s Status) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.status = s
	e.publishLocked()
}

// Status returns the current state of the engine
func (e *Engine) Status() Snapshot {
	e.mu.Lock()
	defer e.mu.Unlock()

	return e.snapshotLocked()
}

// Subscribe returns a channel receiving a snapshot on every state change, and
// a function that stops the subscription
func (e *Engine) Subscribe() (<-chan Snapshot, func()) {
	e.mu.Lock()
	defer e.mu.Unlock()

	id := e.nextSubID
	e.nextSubID++

	ch := make(chan Snapshot, 1)
	e.subs[id] = ch

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			e.mu.Lock()
			defer e.mu.Unlock()

			delete(e.subs, id)
			close(ch)
		})
	}

	return ch, cancel
}

// Conflicts returns the queued conflicts, head first
func (e *Engine) Conflicts() []Conflict {
	e.mu.Lock()
	defer e.mu.Unlock()

	return append([]Conflict{}, e.queue...)
}

func (e *Engine) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, e.timeout)
}

// Run synchronizes the notes of the given owner. Record-level remote failures
// and a failed pull are reported in the result. Local store failures fail the
// run.
func (e *Engine) Run(ctx context.Context, ownerID string) (Result, error) {
	if ownerID == "" {
		return Result{Status: e.Status().Status, Skipped: true, SkipReason: SkipNotLoggedIn}, nil
	}

	if !e.syncing.CompareAndSwap(false, true) {
		return Result{}, ErrSyncInProgress
	}
	defer e.syncing.Store(false)

	e.mu.Lock()
	if len(e.queue) > 0 {
		if e.queueOwner == ownerID {
			conflicts := append([]Conflict{}, e.queue...)
			e.mu.Unlock()

			return Result{Status: StatusConflicted, Conflicts: conflicts}, ErrUnresolvedConflicts
		}

		// superseded by a different owner
		e.clearQueueLocked()
	}
	e.mu.Unlock()

	res, err := e.run(ctx, ownerID)
	e.finishRun(&res, err)

	return res, err
}

func (e *Engine) clearQueueLocked() {
	e.queue = nil
	e.queueOwner = ""
	e.conflictIDs = nil
	e.pulled = nil
}

func (e *Engine) finishRun(res *Result, err error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	switch {
	case err != nil && ctxErr(err) != nil:
		e.status = StatusIdle
	case err != nil:
		e.status = StatusError
		e.lastErr = err
	case len(e.queue) > 0:
		e.status = StatusConflicted
		e.lastErr = nil
	default:
		e.status = StatusIdle
		e.lastErr = nil
		e.lastRunAt = e.clock.Now()
	}

	res.Status = e.status
	e.publishLocked()
}

// ctxErr returns the context error err is caused by, if any
func ctxErr(err error) error {
	if errors.Is(err, context.Canceled) {
		return context.Canceled
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return context.DeadlineExceeded
	}

	return nil
}

func (e *Engine) run(ctx context.Context, ownerID string) (Result, error) {
	var res Result

	e.setStatus(StatusPushing)
	if err := e.push(ctx, ownerID, &res); err != nil {
		return res, err
	}

	if err := ctx.Err(); err != nil {
		return res, err
	}

	e.setStatus(StatusPulling)
	remotes, err := e.listAll(ctx, ownerID)
	if err != nil {
		e.logger.Debug("pull skipped: %s\n", err)
		res.PullSkipped = true
		res.PullErr = err
	} else {
		stopped, err := e.pull(ownerID, remotes, &res)
		if err != nil {
			return res, err
		}
		if stopped {
			return res, nil
		}
	}

	notes, err := e.store.ListForOwner(ownerID)
	if err != nil {
		return res, errors.Wrap(err, "listing notes")
	}
	res.Notes = notes

	return res, nil
}

func (e *Engine) push(ctx context.Context, ownerID string, res *Result) error {
	pending, err := e.store.ListPending()
	if err != nil {
		return errors.Wrap(err, "listing pending notes")
	}

	for _, n := range pending {
		if err := ctx.Err(); err != nil {
			return err
		}

		if n.OwnerID != ownerID {
			e.logger.Debug("skipping %s owned by %q\n", n.ID, n.OwnerID)
			continue
		}

		rr, err := e.pushNote(ctx, ownerID, n)
		if err != nil {
			return errors.Wrapf(err, "pushing note %s", n.ID)
		}

		if rr.Err != nil {
			e.logger.Debug("failed to %s %s: %s\n", rr.Op, rr.NoteID, rr.Err)
			res.Failed = append(res.Failed, rr)
		} else {
			res.Pushed = append(res.Pushed, rr)
		}
	}

	return nil
}

// pushNote sends one pending note to the remote. A remote failure is
// recorded in the returned result and the note stays pending. The returned
// error is a local store failure.
func (e *Engine) pushNote(ctx context.Context, ownerID string, n database.Note) (RecordResult, error) {
	rr := RecordResult{NoteID: n.ID}

	switch {
	case n.SyncStatus == database.StatusDeletedPending:
		rr.Op = OpDelete

		// never reached the remote
		if n.IsLocalOnly() {
			return rr, e.store.HardDelete(n.ID)
		}

		if rr.Err = e.remoteDelete(ctx, ownerID, n.ID); rr.Err != nil {
			return rr, nil
		}

		return rr, e.store.HardDelete(n.ID)
	case n.IsLocalOnly():
		rr.Op = OpCreate

		created, err := e.remoteCreate(ctx, ownerID, n)
		if err != nil {
			rr.Err = err
			return rr, nil
		}
		rr.NewID = created.ID

		return rr, e.store.ReassignID(n.ID, created.ID)
	default:
		rr.Op = OpUpdate

		if _, rr.Err = e.remoteUpdate(ctx, ownerID, n); rr.Err != nil {
			return rr, nil
		}

		return rr, e.store.MarkSynced(n.ID)
	}
}

// pull detects conflicts between the remote notes and the local ones and
// merges the remote notes if there are none. It reports whether the run
// stopped on conflicts.
func (e *Engine) pull(ownerID string, remotes []database.Note, res *Result) (bool, error) {
	locals, err := e.store.ListForOwner(ownerID)
	if err != nil {
		return false, errors.Wrap(err, "listing local notes")
	}

	conflicts := detectAll(locals, remotes)
	if len(conflicts) > 0 {
		now := e.clock.Now()
		ids := map[string]bool{}
		for i := range conflicts {
			conflicts[i].DetectedAt = now
			ids[conflicts[i].ID] = true
		}

		e.mu.Lock()
		e.queue = conflicts
		e.queueOwner = ownerID
		e.conflictIDs = ids
		e.pulled = remotes
		e.mu.Unlock()

		res.Conflicts = append([]Conflict{}, conflicts...)
		return true, nil
	}

	pulled, err := e.merge(remotes, nil)
	if err != nil {
		return false, err
	}
	res.Pulled = pulled

	ids := make([]string, 0, len(remotes))
	for _, r := range remotes {
		ids = append(ids, r.ID)
	}

	pruned, err := e.store.PruneConfirmedDeletes(ids, ownerID)
	if err != nil {
		return false, errors.Wrap(err, "pruning deleted notes")
	}
	res.Pruned = pruned

	return false, nil
}

// merge writes the remote notes into the local store, except those in skip
func (e *Engine) merge(remotes []database.Note, skip map[string]bool) (int, error) {
	var count int

	for _, r := range remotes {
		if skip[r.ID] {
			continue
		}

		ok, err := e.store.UpsertFromRemote(r)
		if err != nil {
			return count, errors.Wrapf(err, "merging note %s", r.ID)
		}
		if ok {
			count++
		}
	}

	return count, nil
}

func (e *Engine) remoteCreate(ctx context.Context, ownerID string, n database.Note) (database.Note, error) {
	ctx, cancel := e.withTimeout(ctx)
	defer cancel()

	created, err := e.remote.Create(ctx, ownerID, n)
	if err != nil {
		return database.Note{}, err
	}
	if created.ID == "" {
		return database.Note{}, errors.New("remote returned a note without an id")
	}

	return created, nil
}

func (e *Engine) remoteUpdate(ctx context.Context, ownerID string, n database.Note) (database.Note, error) {
	ctx, cancel := e.withTimeout(ctx)
	defer cancel()

	return e.remote.Update(ctx, ownerID, n)
}

func (e *Engine) remoteDelete(ctx context.Context, ownerID, id string) error {
	ctx, cancel := e.withTimeout(ctx)
	defer cancel()

	return e.remote.Delete(ctx, ownerID, id)
}

func (e *Engine) listAll(ctx context.Context, ownerID string) ([]database.Note, error) {
	ctx, cancel := e.withTimeout(ctx)
	defer cancel()

	return e.remote.ListAll(ctx, ownerID)
}
