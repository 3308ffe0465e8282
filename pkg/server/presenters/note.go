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

package presenters

import (
	"time"

	"github.com/dnote/notesync/pkg/server/database"
)

// Note is a result of PresentNote
type Note struct {
	ID          string    `json:"id"`
	UserID      string    `json:"userId"`
	Title       string    `json:"title"`
	Content     string    `json:"content"`
	Category    string    `json:"category"`
	DueDate     *string   `json:"dueDate"`
	Latitude    *float64  `json:"latitude"`
	Longitude   *float64  `json:"longitude"`
	ImageURI    string    `json:"imageUri"`
	IsCompleted bool      `json:"isCompleted"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// PresentNote presents a note of the user with the given uuid
func PresentNote(note database.Note, userUUID string) Note {
	return Note{
		ID:          note.UUID,
		UserID:      userUUID,
		Title:       note.Title,
		Content:     note.Content,
		Category:    note.Category,
		DueDate:     note.DueDate,
		Latitude:    note.Latitude,
		Longitude:   note.Longitude,
		ImageURI:    note.ImageURI,
		IsCompleted: note.IsCompleted,
		CreatedAt:   FormatTS(note.AddedAt),
		UpdatedAt:   FormatTS(note.EditedAt),
	}
}

// PresentNotes presents notes of the user with the given uuid
func PresentNotes(notes []database.Note, userUUID string) []Note {
	ret := []Note{}

	for _, note := range notes {
		ret = append(ret, PresentNote(note, userUUID))
	}

	return ret
}
