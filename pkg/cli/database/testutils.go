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

package database

import (
	"database/sql"
	"fmt"
	"path/filepath"
	"testing"

	"github.com/dnote/notesync/pkg/cli/utils"
	"github.com/pkg/errors"
)

// MustScan scans the given row and fails a test in case of any errors
func MustScan(t *testing.T, message string, row *sql.Row, args ...interface{}) {
	t.Helper()

	if err := row.Scan(args...); err != nil {
		t.Fatal(errors.Wrap(errors.Wrap(err, "scanning a row"), message))
	}
}

// MustExec executes the given SQL query and fails a test if an error occurs
func MustExec(t *testing.T, message string, db *DB, query string, args ...interface{}) sql.Result {
	t.Helper()

	result, err := db.Exec(query, args...)
	if err != nil {
		t.Fatal(errors.Wrap(errors.Wrap(err, "executing sql"), message))
	}

	return result
}

// MustInsert inserts the given note and fails a test if an error occurs
func MustInsert(t *testing.T, db *DB, n Note) Note {
	t.Helper()

	if n.Origin == "" {
		n.Origin = OriginRemote
	}
	if n.SyncStatus == "" {
		n.SyncStatus = StatusSynced
	}
	if n.Category == "" {
		n.Category = DefaultCategory
	}
	if err := n.Insert(db); err != nil {
		t.Fatal(errors.Wrapf(err, "inserting note %s", n.ID))
	}

	return n
}

// MustGetNote finds a note and fails a test if it does not exist
func MustGetNote(t *testing.T, db *DB, id string) Note {
	t.Helper()

	n, err := GetNote(db, id)
	if err != nil {
		t.Fatal(errors.Wrapf(err, "getting note %s", id))
	}

	return n
}

// CountNotes returns the number of rows in the notes table
func CountNotes(t *testing.T, db *DB) int {
	t.Helper()

	var count int
	MustScan(t, "counting notes", db.QueryRow("SELECT count(*) FROM notes"), &count)

	return count
}

func initTestDB(t *testing.T, dsn string) *DB {
	db, err := Open(dsn)
	if err != nil {
		t.Fatal(errors.Wrap(err, "opening test database"))
	}
	t.Cleanup(func() { db.Close() })

	if _, err := Migrate(db); err != nil {
		t.Fatal(errors.Wrap(err, "migrating test database"))
	}

	return db
}

// InitTestMemoryDB initializes an in-memory test database with the latest schema
func InitTestMemoryDB(t *testing.T) *DB {
	uuid := mustGenerateTestUUID(t)

	return initTestDB(t, fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid))
}

// InitTestFileDB initializes a file-based test database with the latest schema
func InitTestFileDB(t *testing.T) (*DB, string) {
	uuid := mustGenerateTestUUID(t)
	dbPath := filepath.Join(t.TempDir(), fmt.Sprintf("notesync-%s.db", uuid))

	return initTestDB(t, dbPath), dbPath
}

// mustGenerateTestUUID generates a UUID for test databases and fails the test on error
func mustGenerateTestUUID(t *testing.T) string {
	uuid, err := utils.GenerateUUID()
	if err != nil {
		t.Fatal(errors.Wrap(err, "generating UUID for test database"))
	}

	return uuid
}
