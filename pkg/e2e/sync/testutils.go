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
	"sync/atomic"
	"testing"
	"time"

	"github.com/dnote/notesync/pkg/cli/client"
	clictx "github.com/dnote/notesync/pkg/cli/context"
	cliDatabase "github.com/dnote/notesync/pkg/cli/database"
	"github.com/dnote/notesync/pkg/cli/engine"
	"github.com/dnote/notesync/pkg/clock"
	"github.com/dnote/notesync/pkg/server/app"
	"github.com/dnote/notesync/pkg/server/controllers"
	"github.com/dnote/notesync/pkg/server/database"
	apitest "github.com/dnote/notesync/pkg/server/testutils"
	"github.com/pkg/errors"
	"gorm.io/gorm"
)

var baseTime = time.Date(2025, time.June, 2, 8, 0, 0, 0, time.UTC)

const testPassword = "password123"

// testEnv is a notesync server shared by the devices of a test
type testEnv struct {
	App      *app.App
	ServerDB *gorm.DB
	Server   *httptest.Server
	Clock    *clock.Mock
}

// setupTestEnv starts a server backed by its own in-memory database
func setupTestEnv(t *testing.T) testEnv {
	c := clock.NewMock()
	c.SetNow(baseTime)

	db := apitest.InitMemoryDB(t)
	a := app.App{
		DB:         db,
		Clock:      c,
		SessionTTL: 24 * time.Hour,
	}

	return testEnv{
		App:      &a,
		ServerDB: db,
		Server:   controllers.MustNewServer(t, &a),
		Clock:    c,
	}
}

// apiEndpoint returns the endpoint clients are configured with
func (env testEnv) apiEndpoint() string {
	return env.Server.URL + "/api"
}

// serverNotes returns the notes the server holds for the user, oldest first
func (env testEnv) serverNotes(t *testing.T, userUUID string) []database.Note {
	var user database.User
	if err := env.ServerDB.Where("uuid = ?", userUUID).First(&user).Error; err != nil {
		t.Fatal(errors.Wrap(err, "finding user"))
	}

	notes, err := env.App.ListNotes(user)
	if err != nil {
		t.Fatal(errors.Wrap(err, "listing server notes"))
	}

	return notes
}

// device is a client with its own local store and clock
type device struct {
	Ctx    clictx.NotesyncCtx
	Clock  *clock.Mock
	Remote *countingRemote
	Engine *engine.Engine
}

// newDevice returns a guest device pointed at the server
func (env testEnv) newDevice(t *testing.T) *device {
	ctx := clictx.InitTestCtx(t)
	ctx.APIEndpoint = env.apiEndpoint()

	c := ctx.Clock.(*clock.Mock)
	c.SetNow(baseTime)

	d := &device{Ctx: ctx, Clock: c}
	d.reconnect("")

	return d
}

// reconnect rebuilds the remote and the engine from the device context,
// with the engine seeing ownerID as the current owner
func (d *device) reconnect(ownerID string) {
	d.Remote = &countingRemote{Remote: client.NewRemote(d.Ctx)}
	d.Engine = engine.New(engine.Params{
		Store:   d.Ctx.Store,
		Remote:  d.Remote,
		Clock:   d.Clock,
		OwnerID: ownerID,
	})
}

// register creates an account and signs the device in without migrating
// guest notes. It returns the user id.
func (d *device) register(t *testing.T, email string) string {
	resp, err := client.Register(d.Ctx, email, testPassword)
	if err != nil {
		t.Fatal(errors.Wrap(err, "registering"))
	}

	d.setSession(resp)
	return resp.UserID
}

// signin signs the device in as an existing user without migrating guest
// notes. It returns the user id.
func (d *device) signin(t *testing.T, email string) string {
	resp, err := client.Signin(d.Ctx, email, testPassword)
	if err != nil {
		t.Fatal(errors.Wrap(err, "signing in"))
	}

	d.setSession(resp)
	return resp.UserID
}

func (d *device) setSession(resp client.SigninResponse) {
	d.Ctx.SessionKey = resp.Key
	d.Ctx.SessionKeyExpiry = resp.ExpiresAt
	d.Ctx.UserID = resp.UserID
	d.reconnect(resp.UserID)
}

// sync runs a sync for the signed in user and fails the test on a run error
func (d *device) sync(t *testing.T) engine.Result {
	res, err := d.Engine.Run(context.Background(), d.Ctx.UserID)
	if err != nil {
		t.Fatal(errors.Wrap(err, "running sync"))
	}

	return res
}

// create adds a note at the current device time
func (d *device) create(t *testing.T, title, content string) cliDatabase.Note {
	n, err := d.Ctx.Store.Create(cliDatabase.NoteParams{Title: title, Content: content}, d.Ctx.UserID)
	if err != nil {
		t.Fatal(errors.Wrap(err, "creating note"))
	}

	return n
}

// edit changes the title and content of a note at the current device time
func (d *device) edit(t *testing.T, id, title, content string) cliDatabase.Note {
	n, err := d.Ctx.Store.Update(id, cliDatabase.NoteUpdate{Title: &title, Content: &content})
	if err != nil {
		t.Fatal(errors.Wrap(err, "editing note"))
	}

	return n
}

func (d *device) get(t *testing.T, id string) cliDatabase.Note {
	return cliDatabase.MustGetNote(t, d.Ctx.DB, id)
}

func (d *device) notes(t *testing.T) []cliDatabase.Note {
	notes, err := d.Ctx.Store.ListForOwner(d.Ctx.UserID)
	if err != nil {
		t.Fatal(errors.Wrap(err, "listing notes"))
	}

	return notes
}

// countingRemote counts the calls reaching the remote note service
type countingRemote struct {
	engine.Remote
	calls atomic.Int64
}

func (r *countingRemote) Create(ctx context.Context, ownerID string, n cliDatabase.Note) (cliDatabase.Note, error) {
	r.calls.Add(1)
	return r.Remote.Create(ctx, ownerID, n)
}

func (r *countingRemote) Update(ctx context.Context, ownerID string, n cliDatabase.Note) (cliDatabase.Note, error) {
	r.calls.Add(1)
	return r.Remote.Update(ctx, ownerID, n)
}

func (r *countingRemote) Delete(ctx context.Context, ownerID, id string) error {
	r.calls.Add(1)
	return r.Remote.Delete(ctx, ownerID, id)
}

func (r *countingRemote) ListAll(ctx context.Context, ownerID string) ([]cliDatabase.Note, error) {
	r.calls.Add(1)
	return r.Remote.ListAll(ctx, ownerID)
}
