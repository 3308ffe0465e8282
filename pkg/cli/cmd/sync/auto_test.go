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
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/dnote/notesync/pkg/assert"
	"github.com/dnote/notesync/pkg/cli/context"
	"github.com/dnote/notesync/pkg/cli/database"
	"github.com/pkg/errors"
)

const remoteNote = `{"id": "remote-1", "userId": "user-1", "title": "Groceries", "createdAt": "2025-06-02T08:00:00Z", "updatedAt": "2025-06-02T08:00:00Z"}`

// newNoteServer serves a note api holding a single note
func newNoteServer(t *testing.T, requests *atomic.Int64) *httptest.Server {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests.Add(1)
		w.Header().Set("Content-Type", "application/json")

		switch {
		case r.Method == http.MethodPost && r.URL.Path == "/api/v1/notes":
			w.WriteHeader(http.StatusCreated)
			fmt.Fprintf(w, `{"result": %s}`, remoteNote)
		case r.Method == http.MethodGet && r.URL.Path == "/api/v1/notes":
			fmt.Fprintf(w, `{"notes": [%s], "total": 1}`, remoteNote)
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	t.Cleanup(srv.Close)

	return srv
}

func setupAutoSync(t *testing.T, autoSync bool, sessionKey string) (context.NotesyncCtx, *atomic.Int64) {
	var requests atomic.Int64
	srv := newNoteServer(t, &requests)

	ctx, _ := setup(t, &stubRemote{})
	ctx.APIEndpoint = srv.URL + "/api"
	ctx.AutoSync = autoSync
	ctx.SessionKey = sessionKey

	if _, err := ctx.Store.Create(database.NoteParams{Title: "Groceries"}, ctx.UserID); err != nil {
		t.Fatal(errors.Wrap(err, "creating note"))
	}

	return ctx, &requests
}

func TestAfterEdit(t *testing.T) {
	t.Run("disabled", func(t *testing.T) {
		ctx, requests := setupAutoSync(t, false, "someSessionKey")

		AfterEdit(ctx, "add")

		assert.Equal(t, requests.Load(), int64(0), "request count mismatch")
	})

	t.Run("logged out", func(t *testing.T) {
		ctx, requests := setupAutoSync(t, true, "")

		AfterEdit(ctx, "add")

		assert.Equal(t, requests.Load(), int64(0), "request count mismatch")
	})

	t.Run("enabled", func(t *testing.T) {
		ctx, requests := setupAutoSync(t, true, "someSessionKey")

		AfterEdit(ctx, "add")

		assert.Equal(t, requests.Load(), int64(2), "request count mismatch")

		n := database.MustGetNote(t, ctx.DB, "remote-1")
		assert.Equal(t, n.SyncStatus, database.StatusSynced, "SyncStatus mismatch")
		assert.Equal(t, n.Origin, database.OriginRemote, "Origin mismatch")
	})
}
