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
	"context"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/dnote/notesync/pkg/assert"
	"github.com/dnote/notesync/pkg/cli/client"
	cliDatabase "github.com/dnote/notesync/pkg/cli/database"
	"github.com/dnote/notesync/pkg/cli/engine"
	"github.com/pkg/errors"
)

func noteIDs(notes []cliDatabase.Note) []string {
	ret := []string{}
	for _, n := range notes {
		ret = append(ret, n.ID)
	}

	return ret
}

func TestSync_offlineCreate(t *testing.T) {
	env := setupTestEnv(t)
	d := env.newDevice(t)
	d.register(t, "alice@example.com")

	n := d.create(t, "Buy milk", "")
	assert.Equal(t, n.SyncStatus, cliDatabase.StatusPending, "SyncStatus mismatch")
	assert.Equal(t, n.Origin, cliDatabase.OriginLocal, "Origin mismatch")

	// nothing listens on the endpoint anymore
	unreachable := httptest.NewServer(nil)
	unreachable.Close()
	d.Ctx.APIEndpoint = unreachable.URL + "/api"
	d.reconnect(d.Ctx.UserID)

	res := d.sync(t)

	assert.Equal(t, res.Status, engine.StatusIdle, "a record failure should not fail the run")
	assert.Equal(t, len(res.Failed), 1, "failed count mismatch")
	assert.Equal(t, res.Failed[0].Op, engine.OpCreate, "failed op mismatch")
	assert.Equal(t, res.PullSkipped, true, "pull should be skipped")
	assert.DeepEqual(t, noteIDs(res.Notes), []string{n.ID}, "local notes should stand as the result")

	got := d.get(t, n.ID)
	assert.Equal(t, got.SyncStatus, cliDatabase.StatusPending, "SyncStatus should stay pending")
	assert.Equal(t, got.Origin, cliDatabase.OriginLocal, "Origin should stay local")
}

// setupTwoDevices signs two devices in as the same user with one synced note
// "Buy milk" written by the first device at baseTime, and has the second
// device edit it 5 seconds later
func setupTwoDevices(t *testing.T, env testEnv) (*device, *device, string) {
	a := env.newDevice(t)
	a.register(t, "alice@example.com")
	b := env.newDevice(t)
	b.signin(t, "alice@example.com")

	a.create(t, "Buy milk", "")
	a.sync(t)
	id := a.notes(t)[0].ID

	b.sync(t)
	b.Clock.Advance(5 * time.Second)
	b.edit(t, id, "Buy milk and eggs", "")
	b.sync(t)

	return a, b, id
}

func TestSync_conflictKeepRemote(t *testing.T) {
	env := setupTestEnv(t)
	a, _, id := setupTwoDevices(t, env)

	res := a.sync(t)

	assert.Equal(t, res.Status, engine.StatusConflicted, "Status mismatch")
	assert.Equal(t, len(res.Conflicts), 1, "conflict count mismatch")
	c := res.Conflicts[0]
	assert.Equal(t, c.ID, id, "conflict id mismatch")
	assert.Equal(t, c.Local.Title, "Buy milk", "local version mismatch")
	assert.Equal(t, c.Remote.Title, "Buy milk and eggs", "remote version mismatch")
	assert.Equal(t, c.Remote.UpdatedAt-c.Local.UpdatedAt, int64(5000), "update gap mismatch")

	_, err := a.Engine.Run(context.Background(), a.Ctx.UserID)
	assert.Equal(t, errors.Is(err, engine.ErrUnresolvedConflicts), true, "run should be refused while conflicted")

	res, err = a.Engine.ResolveConflict(context.Background(), id, engine.KeepRemote)
	if err != nil {
		t.Fatal(errors.Wrap(err, "resolving"))
	}

	assert.Equal(t, res.Status, engine.StatusIdle, "Status after resolution mismatch")
	got := a.get(t, id)
	assert.Equal(t, got.Title, "Buy milk and eggs", "Title mismatch")
	assert.Equal(t, got.SyncStatus, cliDatabase.StatusSynced, "SyncStatus mismatch")

	res = a.sync(t)
	assert.Equal(t, len(res.Conflicts), 0, "conflict should not come back")
}

func TestSync_conflictKeepLocal(t *testing.T) {
	env := setupTestEnv(t)
	a, _, id := setupTwoDevices(t, env)

	a.sync(t)
	if _, err := a.Engine.ResolveConflict(context.Background(), id, engine.KeepLocal); err != nil {
		t.Fatal(errors.Wrap(err, "resolving"))
	}

	serverNotes := env.serverNotes(t, a.Ctx.UserID)
	assert.Equal(t, len(serverNotes), 1, "server note count mismatch")
	assert.Equal(t, serverNotes[0].Title, "Buy milk", "server Title mismatch")

	got := a.get(t, id)
	assert.Equal(t, got.Title, "Buy milk", "local Title mismatch")
	assert.Equal(t, got.SyncStatus, cliDatabase.StatusSynced, "SyncStatus mismatch")
}

func TestSync_conflictKeepBoth(t *testing.T) {
	env := setupTestEnv(t)
	a, b, id := setupTwoDevices(t, env)

	a.sync(t)
	res, err := a.Engine.ResolveConflict(context.Background(), id, engine.KeepBoth)
	if err != nil {
		t.Fatal(errors.Wrap(err, "resolving"))
	}

	assert.Equal(t, len(res.Notes), 2, "local note count mismatch")

	var cp cliDatabase.Note
	for _, n := range res.Notes {
		if n.ID != id {
			cp = n
		}
	}
	assert.Equal(t, a.get(t, id).Title, "Buy milk and eggs", "original Title mismatch")
	assert.Equal(t, cp.Title, "Buy milk"+engine.ConflictCopySuffix, "copy Title mismatch")
	assert.Equal(t, cp.SyncStatus, cliDatabase.StatusSynced, "copy SyncStatus mismatch")
	assert.Equal(t, cp.Origin, cliDatabase.OriginRemote, "copy should carry a remote id")

	assert.Equal(t, len(env.serverNotes(t, a.Ctx.UserID)), 2, "server note count mismatch")

	// the other device receives the copy without a conflict
	res = b.sync(t)
	assert.Equal(t, len(res.Conflicts), 0, "conflict count mismatch")
	assert.Equal(t, len(res.Notes), 2, "note count on the other device mismatch")
	assert.Equal(t, b.get(t, cp.ID).Title, cp.Title, "copy Title on the other device mismatch")
}

func TestSync_confirmedDelete(t *testing.T) {
	env := setupTestEnv(t)
	d := env.newDevice(t)
	d.register(t, "alice@example.com")

	d.create(t, "Buy milk", "")
	d.sync(t)
	id := d.notes(t)[0].ID

	if err := d.Ctx.Store.Delete(id); err != nil {
		t.Fatal(errors.Wrap(err, "deleting"))
	}
	assert.Equal(t, d.get(t, id).SyncStatus, cliDatabase.StatusDeletedPending, "SyncStatus mismatch")

	res := d.sync(t)

	assert.Equal(t, len(res.Pushed), 1, "pushed count mismatch")
	assert.Equal(t, res.Pushed[0].Op, engine.OpDelete, "pushed op mismatch")
	assert.Equal(t, cliDatabase.CountNotes(t, d.Ctx.DB), 0, "note should be hard deleted")
	assert.Equal(t, len(d.notes(t)), 0, "owner list should exclude the note")
	assert.Equal(t, len(env.serverNotes(t, d.Ctx.UserID)), 0, "server note count mismatch")
}

func TestSync_guestMigration(t *testing.T) {
	env := setupTestEnv(t)
	d := env.newDevice(t)

	var guestIDs []string
	for _, title := range []string{"one", "two", "three"} {
		n := d.create(t, title, "")
		assert.Equal(t, n.OwnerID, "", "guest note should have no owner")
		guestIDs = append(guestIDs, n.ID)
	}

	// sign in while the engine still sees a guest
	resp, err := client.Register(d.Ctx, "alice@example.com", testPassword)
	if err != nil {
		t.Fatal(errors.Wrap(err, "registering"))
	}
	d.Ctx.SessionKey = resp.Key
	d.Ctx.UserID = resp.UserID
	d.reconnect("")

	res, err := d.Engine.MigrateGuestNotes(context.Background(), resp.UserID)
	if err != nil {
		t.Fatal(errors.Wrap(err, "migrating"))
	}

	assert.Equal(t, res.Migrated, 3, "migrated count mismatch")
	assert.Equal(t, len(res.Pushed), 3, "pushed count mismatch")
	for _, rr := range res.Pushed {
		assert.Equal(t, rr.Op, engine.OpCreate, "pushed op mismatch")
		assert.NotEqual(t, rr.NewID, rr.NoteID, "id should be reassigned")
	}

	for _, id := range guestIDs {
		var count int
		cliDatabase.MustScan(t, "counting old id", d.Ctx.DB.QueryRow("SELECT count(*) FROM notes WHERE id = ?", id), &count)
		assert.Equal(t, count, 0, "local id should be gone")
	}

	notes := d.notes(t)
	assert.Equal(t, len(notes), 3, "owned note count mismatch")
	for _, n := range notes {
		assert.Equal(t, n.OwnerID, resp.UserID, "OwnerID mismatch")
		assert.Equal(t, n.SyncStatus, cliDatabase.StatusSynced, "SyncStatus mismatch")
		assert.Equal(t, n.Origin, cliDatabase.OriginRemote, "Origin mismatch")
	}
	assert.Equal(t, len(env.serverNotes(t, resp.UserID)), 3, "server note count mismatch")

	res, err = d.Engine.MigrateGuestNotes(context.Background(), resp.UserID)
	if err != nil {
		t.Fatal(errors.Wrap(err, "migrating again"))
	}
	assert.Equal(t, res.Skipped, true, "second migration should be skipped")
	assert.Equal(t, res.SkipReason, engine.SkipNoTransition, "SkipReason mismatch")
}

func TestSync_pruneRemoteDeletes(t *testing.T) {
	testCases := []struct {
		name       string
		editLocal  bool
		wantKept   bool
		wantFailed int
	}{
		{name: "synced record is pruned", editLocal: false, wantKept: false, wantFailed: 0},
		{name: "pending record is kept", editLocal: true, wantKept: true, wantFailed: 1},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			env := setupTestEnv(t)
			a := env.newDevice(t)
			a.register(t, "alice@example.com")
			b := env.newDevice(t)
			b.signin(t, "alice@example.com")

			for _, title := range []string{"n1", "n2", "n3"} {
				a.create(t, title, "")
			}
			a.sync(t)
			b.sync(t)

			var n3 string
			for _, n := range b.notes(t) {
				if n.Title == "n3" {
					n3 = n.ID
				}
			}

			// another device deletes n3
			if err := b.Ctx.Store.Delete(n3); err != nil {
				t.Fatal(errors.Wrap(err, "deleting"))
			}
			b.sync(t)

			if tc.editLocal {
				a.Clock.Advance(time.Minute)
				a.edit(t, n3, "n3 edited offline", "")
			}

			res := a.sync(t)

			assert.Equal(t, len(res.Failed), tc.wantFailed, "failed count mismatch")
			assert.Equal(t, len(res.Notes), 2+boolToInt(tc.wantKept), "note count mismatch")

			_, err := cliDatabase.GetNote(a.Ctx.DB, n3)
			if tc.wantKept {
				if err != nil {
					t.Fatal(errors.Wrap(err, "pending note should be kept"))
				}
				assert.Equal(t, a.get(t, n3).SyncStatus, cliDatabase.StatusPending, "SyncStatus mismatch")
			} else {
				assert.Equal(t, errors.Cause(err), cliDatabase.ErrNoteNotFound, "synced note should be pruned")
				assert.Equal(t, res.Pruned, 1, "pruned count mismatch")
			}
		})
	}
}

func boolToInt(b bool) int {
	if b {
		return 1
	}

	return 0
}

func TestSync_expiredSession(t *testing.T) {
	env := setupTestEnv(t)
	d := env.newDevice(t)
	d.register(t, "alice@example.com")

	n := d.create(t, "Buy milk", "")
	env.Clock.Advance(25 * time.Hour)

	res := d.sync(t)

	assert.Equal(t, len(res.Failed), 1, "failed count mismatch")
	assert.Equal(t, res.PullSkipped, true, "pull should be skipped")

	var httpErr *client.HTTPError
	if !errors.As(res.PullErr, &httpErr) {
		t.Fatalf("pull error should be an http error, got %v", res.PullErr)
	}
	assert.Equal(t, httpErr.IsUnauthorized(), true, "pull error should be unauthorized")
	assert.Equal(t, d.get(t, n.ID).SyncStatus, cliDatabase.StatusPending, "SyncStatus mismatch")
}
