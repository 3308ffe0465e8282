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
	"testing"
	"time"

	"github.com/dnote/notesync/pkg/assert"
	"github.com/dnote/notesync/pkg/server/database"
)

func TestPresentNote(t *testing.T) {
	addedAt := time.Date(2025, 1, 15, 10, 30, 45, 123456789, time.UTC)
	editedAt := time.Date(2025, 2, 20, 14, 45, 30, 987654321, time.UTC)
	rowTime := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	due := "2025-03-01T09:00:00Z"
	lat := 37.5665

	input := database.Note{
		Model: database.Model{
			ID:        1,
			CreatedAt: rowTime,
			UpdatedAt: rowTime,
		},
		UUID:        "a1b2c3d4-e5f6-4789-a012-3456789abcde",
		UserID:      42,
		Title:       "Report",
		Content:     "quarterly numbers",
		Category:    "work",
		DueDate:     &due,
		Latitude:    &lat,
		ImageURI:    "file:///photos/1.jpg",
		IsCompleted: true,
		AddedAt:     addedAt,
		EditedAt:    editedAt,
	}

	got := PresentNote(input, "9a8b7c6d-5e4f-4321-9876-543210fedcba")

	assert.Equal(t, got.ID, "a1b2c3d4-e5f6-4789-a012-3456789abcde", "ID mismatch")
	assert.Equal(t, got.UserID, "9a8b7c6d-5e4f-4321-9876-543210fedcba", "UserID mismatch")
	assert.Equal(t, got.Title, "Report", "Title mismatch")
	assert.Equal(t, got.Content, "quarterly numbers", "Content mismatch")
	assert.Equal(t, got.Category, "work", "Category mismatch")
	assert.Equal(t, *got.DueDate, due, "DueDate mismatch")
	assert.Equal(t, *got.Latitude, lat, "Latitude mismatch")
	assert.Equal(t, got.Longitude == nil, true, "Longitude should be nil")
	assert.Equal(t, got.ImageURI, "file:///photos/1.jpg", "ImageURI mismatch")
	assert.Equal(t, got.IsCompleted, true, "IsCompleted mismatch")
	assert.Equal(t, got.CreatedAt, FormatTS(addedAt), "CreatedAt should come from AddedAt")
	assert.Equal(t, got.UpdatedAt, FormatTS(editedAt), "UpdatedAt should come from EditedAt")
}

func TestPresentNotes(t *testing.T) {
	t1 := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	t2 := time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC)

	input := []database.Note{
		{UUID: "note-1", Title: "First", AddedAt: t1, EditedAt: t1},
		{UUID: "note-2", Title: "Second", AddedAt: t2, EditedAt: t2},
	}

	got := PresentNotes(input, "user-1")

	assert.Equal(t, len(got), 2, "length mismatch")
	assert.Equal(t, got[0].ID, "note-1", "first ID mismatch")
	assert.Equal(t, got[1].Title, "Second", "second Title mismatch")
	assert.Equal(t, got[1].UserID, "user-1", "UserID mismatch")
}

func TestPresentNotes_empty(t *testing.T) {
	got := PresentNotes(nil, "user-1")

	assert.Equal(t, got != nil, true, "should be an empty slice, not nil")
	assert.Equal(t, len(got), 0, "length mismatch")
}

func TestFormatTS(t *testing.T) {
	loc := time.FixedZone("KST", 9*60*60)
	input := time.Date(2025, 1, 15, 19, 30, 45, 123956789, loc)

	got := FormatTS(input)

	assert.Equal(t, got, time.Date(2025, 1, 15, 10, 30, 45, 123000000, time.UTC), "result mismatch")
}
