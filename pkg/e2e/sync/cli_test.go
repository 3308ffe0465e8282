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
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/dnote/notesync/pkg/assert"
	"github.com/dnote/notesync/pkg/cli/consts"
	cliDatabase "github.com/dnote/notesync/pkg/cli/database"
	clitest "github.com/dnote/notesync/pkg/cli/testutils"
	"github.com/pkg/errors"
)

// cliDevice is an installation of the CLI binary with its own directories
type cliDevice struct {
	Dir  string
	Opts clitest.RunNotesyncCmdOptions
}

// newCLIDevice sets up directories and a config file pointing the CLI at the
// server
func (env testEnv) newCLIDevice(t *testing.T) cliDevice {
	dir := t.TempDir()

	configDir := filepath.Join(dir, consts.NotesyncDirName)
	if err := os.MkdirAll(configDir, 0755); err != nil {
		t.Fatal(errors.Wrap(err, "creating config dir"))
	}

	config := fmt.Sprintf(`editor: "true"
apiEndpoint: %s
enableUpgradeCheck: false
autoSync: true
`, env.apiEndpoint())
	if err := os.WriteFile(filepath.Join(configDir, consts.ConfigFilename), []byte(config), 0644); err != nil {
		t.Fatal(errors.Wrap(err, "writing config"))
	}

	return cliDevice{
		Dir: dir,
		Opts: clitest.RunNotesyncCmdOptions{
			Env: []string{
				fmt.Sprintf("XDG_CONFIG_HOME=%s", dir),
				fmt.Sprintf("XDG_DATA_HOME=%s", dir),
				fmt.Sprintf("XDG_CACHE_HOME=%s", dir),
				"EDITOR=true",
			},
		},
	}
}

func (d cliDevice) run(t *testing.T, arg ...string) string {
	return clitest.RunNotesyncCmd(t, d.Opts, cliBinaryName, arg...)
}

// notes returns the notes in the device database
func (d cliDevice) notes(t *testing.T) []cliDatabase.Note {
	db := clitest.MustOpenDatabase(t, filepath.Join(d.Dir, consts.NotesyncDirName, consts.NotesyncDBFileName))

	rows, err := db.Query("SELECT id FROM notes ORDER BY created_at ASC")
	if err != nil {
		t.Fatal(errors.Wrap(err, "querying notes"))
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			t.Fatal(errors.Wrap(err, "scanning id"))
		}
		ids = append(ids, id)
	}

	ret := []cliDatabase.Note{}
	for _, id := range ids {
		ret = append(ret, cliDatabase.MustGetNote(t, db, id))
	}

	return ret
}

func TestCLI_guestNotesFollowLogin(t *testing.T) {
	env := setupTestEnv(t)
	a := env.newCLIDevice(t)

	a.run(t, "add", "Buy milk", "-c", "two liters")

	notes := a.notes(t)
	assert.Equal(t, len(notes), 1, "local note count mismatch")
	assert.Equal(t, notes[0].OwnerID, "", "guest note should have no owner")

	a.run(t, "login", "--register", "-u", "alice@example.com", "-p", testPassword)

	notes = a.notes(t)
	assert.Equal(t, len(notes), 1, "local note count after login mismatch")
	assert.Equal(t, notes[0].SyncStatus, cliDatabase.StatusSynced, "SyncStatus mismatch")
	assert.Equal(t, notes[0].Origin, cliDatabase.OriginRemote, "Origin mismatch")

	serverNotes := env.serverNotes(t, notes[0].OwnerID)
	assert.Equal(t, len(serverNotes), 1, "server note count mismatch")
	assert.Equal(t, serverNotes[0].UUID, notes[0].ID, "local id should be the server id")
	assert.Equal(t, serverNotes[0].Content, "two liters", "server Content mismatch")

	// a second device receives the note on login
	b := env.newCLIDevice(t)
	b.run(t, "login", "-u", "alice@example.com", "-p", testPassword)

	bNotes := b.notes(t)
	assert.Equal(t, len(bNotes), 1, "note count on the second device mismatch")
	assert.Equal(t, bNotes[0].ID, notes[0].ID, "id on the second device mismatch")

	output := b.run(t, "ls")
	assert.Equal(t, strings.Contains(output, "Buy milk"), true, "ls should list the note")

	// removing on the second device syncs right away and reaches the first
	// device on its next sync
	b.run(t, "remove", "--yes", bNotes[0].ID)
	assert.Equal(t, len(b.notes(t)), 0, "note should be removed on the second device")
	assert.Equal(t, len(env.serverNotes(t, notes[0].OwnerID)), 0, "note should be removed on the server")

	a.run(t, "sync")
	assert.Equal(t, len(a.notes(t)), 0, "note should be pruned on the first device")
}

func TestCLI_syncWithoutLogin(t *testing.T) {
	env := setupTestEnv(t)
	d := env.newCLIDevice(t)

	d.run(t, "add", "Buy milk", "-c", "two liters")
	output := d.run(t, "sync")

	assert.Equal(t, strings.Contains(output, "Not logged in"), true, "output should explain the skip")

	var count int64
	if err := env.ServerDB.Table("notes").Count(&count).Error; err != nil {
		t.Fatal(errors.Wrap(err, "counting server notes"))
	}
	assert.Equal(t, count, int64(0), "server note count mismatch")
}
