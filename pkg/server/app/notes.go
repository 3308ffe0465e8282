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

package app

import (
	"errors"
	"strings"
	"time"

	"github.com/dnote/notesync/pkg/server/database"
	"github.com/dnote/notesync/pkg/server/helpers"
	pkgErrors "github.com/pkg/errors"
	"gorm.io/gorm"
)

// NoteParams is the full content of a note as sent by a client. The server
// keeps the client's timestamps when they are given.
type NoteParams struct {
	Title       string
	Content     string
	Category    string
	DueDate     *string
	Latitude    *float64
	Longitude   *float64
	ImageURI    string
	IsCompleted bool
	AddedAt     *time.Time
	EditedAt    *time.Time
}

func (p NoteParams) apply(note *database.Note) {
	note.Title = p.Title
	note.Content = p.Content
	note.Category = p.Category
	note.DueDate = p.DueDate
	note.Latitude = p.Latitude
	note.Longitude = p.Longitude
	note.ImageURI = p.ImageURI
	note.IsCompleted = p.IsCompleted
}

// CreateNote creates a note for the user with a server issued uuid
func (a *App) CreateNote(user database.User, p NoteParams) (database.Note, error) {
	if strings.TrimSpace(p.Title) == "" {
		return database.Note{}, ErrEmptyTitle
	}

	uuid, err := helpers.GenUUID()
	if err != nil {
		return database.Note{}, err
	}

	now := a.Clock.Now().UTC()
	note := database.Note{
		UUID:     uuid,
		UserID:   user.ID,
		AddedAt:  timeOr(p.AddedAt, now),
		EditedAt: timeOr(p.EditedAt, now),
	}
	p.apply(&note)

	if err := a.DB.Create(&note).Error; err != nil {
		return note, pkgErrors.Wrap(err, "inserting note")
	}

	return note, nil
}

// GetNote finds the note of the user with the given uuid. Notes of other
// users are not found.
func (a *App) GetNote(db *gorm.DB, user database.User, uuid string) (database.Note, error) {
	var note database.Note
	err := db.Where("uuid = ? AND user_id = ?", uuid, user.ID).First(&note).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return note, ErrNotFound
	} else if err != nil {
		return note, pkgErrors.Wrap(err, "finding note")
	}

	return note, nil
}

// ListNotes returns all notes of the user, oldest first
func (a *App) ListNotes(user database.User) ([]database.Note, error) {
	var notes []database.Note
	if err := a.DB.Where("user_id = ?", user.ID).Order("added_at ASC, id ASC").Find(&notes).Error; err != nil {
		return nil, pkgErrors.Wrap(err, "finding notes")
	}

	return notes, nil
}

// UpdateNote replaces the content of the note of the user with the given uuid
func (a *App) UpdateNote(user database.User, uuid string, p NoteParams) (database.Note, error) {
	if strings.TrimSpace(p.Title) == "" {
		return database.Note{}, ErrEmptyTitle
	}

	var note database.Note
	err := a.DB.Transaction(func(tx *gorm.DB) error {
		var err error
		note, err = a.GetNote(tx, user, uuid)
		if err != nil {
			return err
		}

		p.apply(&note)
		note.AddedAt = timeOr(p.AddedAt, note.AddedAt)
		note.EditedAt = timeOr(p.EditedAt, a.Clock.Now().UTC())

		if err := tx.Save(&note).Error; err != nil {
			return pkgErrors.Wrap(err, "editing note")
		}

		return nil
	})
	if err != nil {
		return database.Note{}, err
	}

	return note, nil
}

// DeleteNote removes the note of the user with the given uuid
func (a *App) DeleteNote(user database.User, uuid string) error {
	res := a.DB.Where("uuid = ? AND user_id = ?", uuid, user.ID).Delete(&database.Note{})
	if res.Error != nil {
		return pkgErrors.Wrap(res.Error, "deleting note")
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}

	return nil
}
