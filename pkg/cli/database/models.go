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

	"github.com/pkg/errors"
)

// Origin tells which id space a note id belongs to
type Origin string

const (
	// OriginLocal marks an id generated on this device and never accepted by the remote
	OriginLocal Origin = "local"
	// OriginRemote marks an id issued by the remote service
	OriginRemote Origin = "remote"
)

// SyncStatus is the replication state of a local note
type SyncStatus string

const (
	// StatusSynced means the local copy matches what the remote last confirmed
	StatusSynced SyncStatus = "synced"
	// StatusPending means the local copy has unpushed changes
	StatusPending SyncStatus = "pending"
	// StatusDeletedPending means the note was deleted locally and the remote
	// deletion is not yet confirmed
	StatusDeletedPending SyncStatus = "deleted-pending"
)

// DefaultCategory is the category given to notes created without one
const DefaultCategory = "other"

// Note represents a note. Timestamps are unix milliseconds. An empty OwnerID
// denotes a guest note.
type Note struct {
	ID          string     `json:"id"`
	Origin      Origin     `json:"origin"`
	OwnerID     string     `json:"owner_id"`
	Title       string     `json:"title"`
	Content     string     `json:"content"`
	Category    string     `json:"category"`
	DueDate     *string    `json:"due_date"`
	Latitude    *float64   `json:"latitude"`
	Longitude   *float64   `json:"longitude"`
	ImageRef    string     `json:"image_ref"`
	IsCompleted bool       `json:"is_completed"`
	CreatedAt   int64      `json:"created_at"`
	UpdatedAt   int64      `json:"updated_at"`
	SyncStatus  SyncStatus `json:"sync_status"`
}

// IsGuest returns true if the note has no owner
func (n Note) IsGuest() bool {
	return n.OwnerID == ""
}

// IsLocalOnly returns true if the remote has never accepted the note's id
func (n Note) IsLocalOnly() bool {
	return n.Origin == OriginLocal
}

const noteColumns = `id, origin, owner_id, title, content, category, due_date,
	latitude, longitude, image_ref, is_completed, created_at, updated_at, sync_status`

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanNote(s scanner) (Note, error) {
	var n Note
	var ownerID, dueDate sql.NullString
	var lat, lng sql.NullFloat64

	err := s.Scan(&n.ID, &n.Origin, &ownerID, &n.Title, &n.Content, &n.Category, &dueDate,
		&lat, &lng, &n.ImageRef, &n.IsCompleted, &n.CreatedAt, &n.UpdatedAt, &n.SyncStatus)
	if err != nil {
		return n, err
	}

	n.OwnerID = ownerID.String
	if dueDate.Valid {
		n.DueDate = &dueDate.String
	}
	if lat.Valid {
		n.Latitude = &lat.Float64
	}
	if lng.Valid {
		n.Longitude = &lng.Float64
	}

	return n, nil
}

func scanNotes(rows *sql.Rows) ([]Note, error) {
	defer rows.Close()

	ret := []Note{}
	for rows.Next() {
		n, err := scanNote(rows)
		if err != nil {
			return nil, errors.Wrap(err, "scanning a note")
		}

		ret = append(ret, n)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "iterating notes")
	}

	return ret, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

// Insert inserts a new note
func (n Note) Insert(db *DB) error {
	_, err := db.Exec(`INSERT INTO notes (`+noteColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		n.ID, n.Origin, nullString(n.OwnerID), n.Title, n.Content, n.Category, n.DueDate,
		n.Latitude, n.Longitude, n.ImageRef, n.IsCompleted, n.CreatedAt, n.UpdatedAt, n.SyncStatus)
	if err != nil {
		return errors.Wrapf(err, "inserting note with id %s", n.ID)
	}

	return nil
}

// Update overwrites every column of the note with the given id
func (n Note) Update(db *DB) error {
	_, err := db.Exec(`UPDATE notes SET origin = ?, owner_id = ?, title = ?, content = ?,
		category = ?, due_date = ?, latitude = ?, longitude = ?, image_ref = ?, is_completed = ?,
		created_at = ?, updated_at = ?, sync_status = ? WHERE id = ?`,
		n.Origin, nullString(n.OwnerID), n.Title, n.Content, n.Category, n.DueDate,
		n.Latitude, n.Longitude, n.ImageRef, n.IsCompleted, n.CreatedAt, n.UpdatedAt, n.SyncStatus, n.ID)
	if err != nil {
		return errors.Wrapf(err, "updating the note with id %s", n.ID)
	}

	return nil
}

// UpdateID rewrites the primary key of the note
func (n *Note) UpdateID(db *DB, newID string) error {
	_, err := db.Exec("UPDATE notes SET id = ? WHERE id = ?", newID, n.ID)
	if err != nil {
		return errors.Wrapf(err, "updating note id from '%s' to '%s'", n.ID, newID)
	}

	n.ID = newID

	return nil
}

// Expunge hard-deletes the note from the database
func (n Note) Expunge(db *DB) error {
	if _, err := db.Exec("DELETE FROM notes WHERE id = ?", n.ID); err != nil {
		return errors.Wrapf(err, "expunging note %s locally", n.ID)
	}

	return nil
}

// GetNote finds the note with the given id. It returns ErrNoteNotFound if
// there is none.
func GetNote(db *DB, id string) (Note, error) {
	row := db.QueryRow("SELECT "+noteColumns+" FROM notes WHERE id = ?", id)

	n, err := scanNote(row)
	if err == sql.ErrNoRows {
		return n, errors.Wrapf(ErrNoteNotFound, "id %s", id)
	} else if err != nil {
		return n, errors.Wrapf(err, "finding note %s", id)
	}

	return n, nil
}
