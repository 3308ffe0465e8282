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

package status

import (
	"bytes"
	"strings"
	"testing"

	"github.com/dnote/notesync/pkg/assert"
	"github.com/dnote/notesync/pkg/cli/consts"
	"github.com/dnote/notesync/pkg/cli/context"
	"github.com/dnote/notesync/pkg/cli/database"
	"github.com/fatih/color"
	"github.com/pkg/errors"
)

func TestPrint(t *testing.T) {
	color.NoColor = true

	t.Run("guest", func(t *testing.T) {
		ctx := context.InitTestCtx(t)

		var buf bytes.Buffer
		if err := Print(&buf, ctx); err != nil {
			t.Fatal(errors.Wrap(err, "executing"))
		}

		got := buf.String()
		assert.Equal(t, strings.Contains(got, "not logged in"), true, "should say not logged in")
		assert.Equal(t, strings.Contains(got, "last synced: never"), true, "should say never synced")
	})

	t.Run("logged in", func(t *testing.T) {
		ctx := context.InitTestCtx(t)
		ctx.SessionKey = "key-1"
		ctx.UserID = "user-1"

		if _, err := ctx.Store.Create(database.NoteParams{Title: "a"}, "user-1"); err != nil {
			t.Fatal(err)
		}
		if err := ctx.Store.SetSystem(consts.SystemLastSyncError, "offline"); err != nil {
			t.Fatal(err)
		}

		var buf bytes.Buffer
		if err := Print(&buf, ctx); err != nil {
			t.Fatal(errors.Wrap(err, "executing"))
		}

		got := buf.String()
		assert.Equal(t, strings.Contains(got, "logged in as: user-1"), true, "should show the user")
		assert.Equal(t, strings.Contains(got, "pending changes: 1"), true, "should count pending notes")
		assert.Equal(t, strings.Contains(got, "last sync error: offline"), true, "should show the last error")
	})
}
