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

package testutils

import (
	"testing"

	"github.com/dnote/notesync/pkg/cli/database"
)

// Setup1 sets up a guest env with one note never pushed
func Setup1(t *testing.T, db *database.DB) {
	database.MustInsert(t, db, database.Note{ID: "guest-note-1", Origin: database.OriginLocal, Title: "Groceries", Content: "milk", CreatedAt: 1748851200000, UpdatedAt: 1748851200000, SyncStatus: database.StatusPending})
}

// Setup2 sets up an env of user-1 with two synced notes and a guest note
func Setup2(t *testing.T, db *database.DB) {
	Login(t, db, "user-1")

	database.MustInsert(t, db, database.Note{ID: "remote-note-1", OwnerID: "user-1", Title: "Report", Content: "draft", Category: "work", CreatedAt: 1748851200000, UpdatedAt: 1748851200000})
	database.MustInsert(t, db, database.Note{ID: "remote-note-2", OwnerID: "user-1", Title: "Dentist", CreatedAt: 1748851260000, UpdatedAt: 1748851260000})
	database.MustInsert(t, db, database.Note{ID: "guest-note-1", Origin: database.OriginLocal, Title: "Groceries", CreatedAt: 1748851320000, UpdatedAt: 1748851320000, SyncStatus: database.StatusPending})
}
