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
	"fmt"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/dnote/notesync/pkg/cli/database"
	"github.com/dnote/notesync/pkg/clock"
	"github.com/pkg/errors"
)

var errNetwork = errors.New("network unreachable")

var baseTime = time.Date(2025, time.June, 2, 8, 0, 0, 0, time.UTC)

func ms(d time.Duration) int64 {
	return baseTime.Add(d).UnixMilli()
}

// fakeRemote is an in-memory remote note service
type fakeRemote struct {
	mu     sync.Mutex
	notes  map[string]database.Note
	nextID int
	calls  []string

	failCreate map[string]error
	failUpdate map[string]error
	failDelete map[string]error
	failList   error
}

func newFakeRemote() *fakeRemote {
	return &fakeRemote{
		notes:      map[string]database.Note{},
		failCreate: map[string]error{},
		failUpdate: map[string]error{},
		failDelete: map[string]error{},
	}
}

func (r *fakeRemote) record(format string, v ...interface{}) {
	r.calls = append(r.calls, fmt.Sprintf(format, v...))
}

func (r *fakeRemote) Create(ctx context.Context, ownerID string, n database.Note) (database.Note, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.record("create %s", n.ID)
	if err := r.failCreate[n.ID]; err != nil {
		return database.Note{}, err
	}

	r.nextID++
	n.ID = fmt.Sprintf("remote-%d", r.nextID)
	n.OwnerID = ownerID
	n.Origin = database.OriginRemote
	n.SyncStatus = database.StatusSynced
	r.notes[n.ID] = n

	return n, nil
}

func (r *fakeRemote) Update(ctx context.Context, ownerID string, n database.Note) (database.Note, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.record("update %s", n.ID)
	if err := r.failUpdate[n.ID]; err != nil {
		return database.Note{}, err
	}
	if _, ok := r.notes[n.ID]; !ok {
		return database.Note{}, errors.Errorf("note %s not found", n.ID)
	}

	n.OwnerID = ownerID
	n.Origin = database.OriginRemote
	n.SyncStatus = database.StatusSynced
	r.notes[n.ID] = n

	return n, nil
}

func (r *fakeRemote) Delete(ctx context.Context, ownerID, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.record("delete %s", id)
	if err := r.failDelete[id]; err != nil {
		return err
	}

	delete(r.notes, id)
	return nil
}

func (r *fakeRemote) ListAll(ctx context.Context, ownerID string) ([]database.Note, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.record("list %s", ownerID)
	if r.failList != nil {
		return nil, r.failList
	}

	ret := []database.Note{}
	for _, n := range r.notes {
		if n.OwnerID == ownerID {
			ret = append(ret, n)
		}
	}
	sort.Slice(ret, func(i, j int) bool { return ret[i].ID < ret[j].ID })

	return ret, nil
}

// put stores a note on the remote as if another device had pushed it
func (r *fakeRemote) put(n database.Note) {
	r.mu.Lock()
	defer r.mu.Unlock()

	n.Origin = database.OriginRemote
	n.SyncStatus = database.StatusSynced
	if n.Category == "" {
		n.Category = database.DefaultCategory
	}
	r.notes[n.ID] = n
}

func (r *fakeRemote) get(id string) (database.Note, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	n, ok := r.notes[id]
	return n, ok
}

func (r *fakeRemote) callLog() []string {
	r.mu.Lock()
	defer r.mu.Unlock()

	return append([]string{}, r.calls...)
}

type testEnv struct {
	db     *database.DB
	store  *database.Store
	remote *fakeRemote
	clock  *clock.Mock
	engine *Engine
}

func setup(t *testing.T) testEnv {
	db := database.InitTestMemoryDB(t)

	c := clock.NewMock()
	c.SetNow(baseTime)

	store := database.NewStore(db, c)
	remote := newFakeRemote()
	e := New(Params{
		Store:  store,
		Remote: remote,
		Clock:  c,
	})

	return testEnv{db: db, store: store, remote: remote, clock: c, engine: e}
}

func mustRun(t *testing.T, e *Engine, ownerID string) Result {
	t.Helper()

	res, err := e.Run(context.Background(), ownerID)
	if err != nil {
		t.Fatal(errors.Wrap(err, "running sync"))
	}

	return res
}

func noteIDs(notes []database.Note) []string {
	ret := []string{}
	for _, n := range notes {
		ret = append(ret, n.ID)
	}
	sort.Strings(ret)

	return ret
}

func recordIDs(rrs []RecordResult) []string {
	ret := []string{}
	for _, rr := range rrs {
		ret = append(ret, fmt.Sprintf("%s %s", rr.Op, rr.NoteID))
	}

	return ret
}
