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
	"strings"
	"sync"

	"github.com/dnote/notesync/pkg/cli/utils"
	"github.com/dnote/notesync/pkg/clock"
	"github.com/pkg/errors"
)

// Store is the local note store. All operations are serialized by a mutex so
// that direct edits never interleave with a sync run's writes.
type Store struct {
	db    *DB
	clock clock.Clock
	mu    sync.Mutex
}

// NewStore returns a store over the given database
func NewStore(db *DB, c clock.Clock) *Store {
	return &Store{db: db, clock: c}
}

// DB returns the underlying database
func (s *Store) DB() *DB {
	return s.db
}

func (s *Store) now() int64 {
	return s.clock.Now().UnixMilli()
}

// withTx runs fn inside a transaction while holding the store lock
func (s *Store) withTx(fn func(tx *DB) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.Begin()
	if err != nil {
		return err
	}

	if err := fn(tx); err != nil {
		tx.Rollback()
		return err
	}

	if err := tx.Commit(); err != nil {
		tx.Rollback()
		return errors.Wrap(err, "committing a transaction")
	}

	return nil
}

func (s *Store) query(q string, args ...interface{}) ([]Note, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rows, err := s.db.Query(q, args...)
	if err != nil {
		return nil, errors.Wrap(err, "querying notes")
	}

	return scanNotes(rows)
}

// NoteParams holds the user supplied fields of a new note
type NoteParams struct {
	Title       string
	Content     string
	Category    string
	DueDate     *string
	Latitude    *float64
	Longitude   *float64
	ImageRef    string
	IsCompleted bool
}

// NoteUpdate holds the fields to change on a note. Nil fields are left as is.
// A non-nil empty DueDate clears the due date.
type NoteUpdate struct {
	Title       *string
	Content     *string
	Category    *string
	DueDate     *string
	Latitude    *float64
	Longitude   *float64
	ImageRef    *string
	IsCompleted *bool
}

// Create inserts a new local note owned by ownerID, or a guest note if
// ownerID is empty
func (s *Store) Create(p NoteParams, ownerID string) (Note, error) {
	if strings.TrimSpace(p.Title) == "" {
		return Note{}, ErrEmptyTitle
	}

	id, err := utils.GenerateUUID()
	if err != nil {
		return Note{}, err
	}

	category := p.Category
	if category == "" {
		category = DefaultCategory
	}

	ts := s.now()
	n := Note{
		ID:          id,
		Origin:      OriginLocal,
		OwnerID:     ownerID,
		Title:       p.Title,
		Content:     p.Content,
		Category:    category,
		DueDate:     p.DueDate,
		Latitude:    p.Latitude,
		Longitude:   p.Longitude,
		ImageRef:    p.ImageRef,
		IsCompleted: p.IsCompleted,
		CreatedAt:   ts,
		UpdatedAt:   ts,
		SyncStatus:  StatusPending,
	}

	err = s.withTx(func(tx *DB) error {
		return n.Insert(tx)
	})
	if err != nil {
		return Note{}, errors.Wrap(err, "creating note")
	}

	return n, nil
}

func applyUpdate(n *Note, p NoteUpdate) error {
	if p.Title != nil {
		if strings.TrimSpace(*p.Title) == "" {
			return ErrEmptyTitle
		}
		n.Title = *p.Title
	}
	if p.Content != nil {
		n.Content = *p.Content
	}
	if p.Category != nil {
		n.Category = *p.Category
	}
	if p.DueDate != nil {
		if *p.DueDate == "" {
			n.DueDate = nil
		} else {
			due := *p.DueDate
			n.DueDate = &due
		}
	}
	if p.Latitude != nil {
		n.Latitude = p.Latitude
	}
	if p.Longitude != nil {
		n.Longitude = p.Longitude
	}
	if p.ImageRef != nil {
		n.ImageRef = *p.ImageRef
	}
	if p.IsCompleted != nil {
		n.IsCompleted = *p.IsCompleted
	}

	return nil
}

// Update applies the given changes to a note and marks it pending
func (s *Store) Update(id string, p NoteUpdate) (Note, error) {
	var ret Note

	err := s.withTx(func(tx *DB) error {
		n, err := GetNote(tx, id)
		if err != nil {
			return err
		}
		if n.SyncStatus == StatusDeletedPending {
			return errors.Wrapf(ErrNoteDeleted, "id %s", id)
		}

		if err := applyUpdate(&n, p); err != nil {
			return err
		}

		n.UpdatedAt = max(s.now(), n.CreatedAt)
		n.SyncStatus = StatusPending

		ret = n
		return n.Update(tx)
	})
	if err != nil {
		return Note{}, errors.Wrap(err, "updating note")
	}

	return ret, nil
}

// Delete removes a note. Guest notes and notes the remote never accepted are
// removed immediately. Other notes become deleted-pending until the remote
// deletion is confirmed.
func (s *Store) Delete(id string) error {
	err := s.withTx(func(tx *DB) error {
		n, err := GetNote(tx, id)
		if err != nil {
			return err
		}

		if n.IsGuest() || n.IsLocalOnly() {
			return n.Expunge(tx)
		}

		n.SyncStatus = StatusDeletedPending
		n.UpdatedAt = max(s.now(), n.CreatedAt)

		return n.Update(tx)
	})
	if err != nil {
		return errors.Wrap(err, "deleting note")
	}

	return nil
}

// Get returns the note with the given id
func (s *Store) Get(id string) (Note, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return GetNote(s.db, id)
}

// ListPending returns notes with unpushed changes, oldest edit first
func (s *Store) ListPending() ([]Note, error) {
	notes, err := s.query("SELECT "+noteColumns+` FROM notes
		WHERE sync_status IN (?, ?)
		ORDER BY updated_at ASC, created_at ASC, id ASC`, StatusPending, StatusDeletedPending)
	if err != nil {
		return nil, errors.Wrap(err, "listing pending notes")
	}

	return notes, nil
}

// ListForOwner returns the notes visible to ownerID, most recently touched
// first. Guest notes are always included and notes awaiting remote deletion
// are not.
func (s *Store) ListForOwner(ownerID string) ([]Note, error) {
	return s.Search(ownerID, Filter{})
}

// Filter narrows a note listing
type Filter struct {
	// Category keeps notes of a single category. Empty or "all" keeps every category.
	Category string
	// Query keeps notes whose title or content contains it, ignoring case
	Query string
}

// Search returns the notes visible to ownerID that match the filter
func (s *Store) Search(ownerID string, f Filter) ([]Note, error) {
	var conds []string
	var args []interface{}

	if ownerID == "" {
		conds = append(conds, "owner_id IS NULL")
	} else {
		conds = append(conds, "(owner_id = ? OR owner_id IS NULL)")
		args = append(args, ownerID)
	}

	conds = append(conds, "sync_status != ?")
	args = append(args, StatusDeletedPending)

	if f.Category != "" && f.Category != "all" {
		conds = append(conds, "category = ?")
		args = append(args, f.Category)
	}
	if q := strings.TrimSpace(f.Query); q != "" {
		like := "%" + strings.ToLower(q) + "%"
		conds = append(conds, "(lower(title) LIKE ? OR lower(content) LIKE ?)")
		args = append(args, like, like)
	}

	q := "SELECT " + noteColumns + " FROM notes WHERE " + strings.Join(conds, " AND ") +
		" ORDER BY updated_at DESC, id ASC"

	notes, err := s.query(q, args...)
	if err != nil {
		return nil, errors.Wrap(err, "listing notes")
	}

	return notes, nil
}

// CountPending returns the number of notes of the owner that await a push
func (s *Store) CountPending(ownerID string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var count int
	err := s.db.QueryRow("SELECT count(*) FROM notes WHERE owner_id = ? AND sync_status IN (?, ?)",
		ownerID, StatusPending, StatusDeletedPending).Scan(&count)
	if err != nil {
		return 0, errors.Wrap(err, "counting pending notes")
	}

	return count, nil
}

func (s *Store) upsertFromRemote(remote Note, force bool) (bool, error) {
	remote.Origin = OriginRemote
	remote.SyncStatus = StatusSynced
	if remote.Category == "" {
		remote.Category = DefaultCategory
	}
	if remote.UpdatedAt < remote.CreatedAt {
		remote.UpdatedAt = remote.CreatedAt
	}

	var written bool
	err := s.withTx(func(tx *DB) error {
		local, err := GetNote(tx, remote.ID)
		if errors.Cause(err) == ErrNoteNotFound {
			written = true
			return remote.Insert(tx)
		} else if err != nil {
			return err
		}

		if !force {
			if local.SyncStatus == StatusDeletedPending {
				return nil
			}
			if local.UpdatedAt >= remote.UpdatedAt {
				return nil
			}
		}

		written = true
		return remote.Update(tx)
	})
	if err != nil {
		return false, errors.Wrapf(err, "upserting remote note %s", remote.ID)
	}

	return written, nil
}

// UpsertFromRemote stores a note received from the remote. An existing local
// note is only overwritten if the remote copy is strictly newer, and a note
// awaiting remote deletion is left alone. It returns whether anything was written.
func (s *Store) UpsertFromRemote(remote Note) (bool, error) {
	return s.upsertFromRemote(remote, false)
}

// ForceUpsertFromRemote stores a note received from the remote regardless of
// the state of the local copy
func (s *Store) ForceUpsertFromRemote(remote Note) error {
	_, err := s.upsertFromRemote(remote, true)
	return err
}

// ReassignID rewrites a local id to the id the remote assigned on create and
// marks the note synced. A stale row already holding newID is replaced.
func (s *Store) ReassignID(oldID, newID string) error {
	err := s.withTx(func(tx *DB) error {
		n, err := GetNote(tx, oldID)
		if err != nil {
			return err
		}

		if oldID != newID {
			if _, err := tx.Exec("DELETE FROM notes WHERE id = ?", newID); err != nil {
				return errors.Wrapf(err, "clearing stale note %s", newID)
			}
			if err := n.UpdateID(tx, newID); err != nil {
				return err
			}
		}

		_, err = tx.Exec("UPDATE notes SET origin = ?, sync_status = ? WHERE id = ?", OriginRemote, StatusSynced, newID)
		if err != nil {
			return errors.Wrap(err, "marking note synced")
		}

		return nil
	})
	if err != nil {
		return errors.Wrapf(err, "reassigning id %s to %s", oldID, newID)
	}

	return nil
}

// MarkSynced marks a note as matching the remote
func (s *Store) MarkSynced(id string) error {
	err := s.withTx(func(tx *DB) error {
		res, err := tx.Exec("UPDATE notes SET sync_status = ? WHERE id = ?", StatusSynced, id)
		if err != nil {
			return err
		}

		return requireAffected(res, id)
	})
	if err != nil {
		return errors.Wrapf(err, "marking note %s synced", id)
	}

	return nil
}

// HardDelete removes a note from the store
func (s *Store) HardDelete(id string) error {
	err := s.withTx(func(tx *DB) error {
		return Note{ID: id}.Expunge(tx)
	})
	if err != nil {
		return errors.Wrapf(err, "hard deleting note %s", id)
	}

	return nil
}

// PruneConfirmedDeletes removes synced notes of the owner that the remote no
// longer has. Pending notes are never pruned. It returns the number of notes removed.
func (s *Store) PruneConfirmedDeletes(remoteIDs []string, ownerID string) (int, error) {
	keep := make(map[string]struct{}, len(remoteIDs))
	for _, id := range remoteIDs {
		keep[id] = struct{}{}
	}

	var count int
	err := s.withTx(func(tx *DB) error {
		rows, err := tx.Query("SELECT id FROM notes WHERE owner_id = ? AND sync_status = ?", ownerID, StatusSynced)
		if err != nil {
			return errors.Wrap(err, "querying synced notes")
		}

		var stale []string
		for rows.Next() {
			var id string
			if err := rows.Scan(&id); err != nil {
				rows.Close()
				return errors.Wrap(err, "scanning note id")
			}
			if _, ok := keep[id]; !ok {
				stale = append(stale, id)
			}
		}
		rows.Close()
		if err := rows.Err(); err != nil {
			return errors.Wrap(err, "iterating synced notes")
		}

		for _, id := range stale {
			if err := (Note{ID: id}).Expunge(tx); err != nil {
				return err
			}
		}

		count = len(stale)
		return nil
	})
	if err != nil {
		return 0, errors.Wrap(err, "pruning confirmed deletes")
	}

	return count, nil
}

// ReassignOwner gives every guest note to newOwnerID and marks them pending.
// It returns the number of notes reassigned.
func (s *Store) ReassignOwner(newOwnerID string) (int, error) {
	if newOwnerID == "" {
		return 0, errors.New("empty owner")
	}

	var count int
	err := s.withTx(func(tx *DB) error {
		res, err := tx.Exec("UPDATE notes SET owner_id = ?, sync_status = ? WHERE owner_id IS NULL", newOwnerID, StatusPending)
		if err != nil {
			return err
		}

		n, err := res.RowsAffected()
		if err != nil {
			return errors.Wrap(err, "counting reassigned notes")
		}

		count = int(n)
		return nil
	})
	if err != nil {
		return 0, errors.Wrapf(err, "reassigning guest notes to %s", newOwnerID)
	}

	return count, nil
}

// GetSystemString returns the value of a system key, or the empty string if
// the key is absent
func (s *Store) GetSystemString(key string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return GetSystemString(s.db, key)
}

// SetSystem saves the value of a system key
func (s *Store) SetSystem(key, val string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return UpsertSystem(s.db, key, val)
}
