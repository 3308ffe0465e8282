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

package controllers

import (
	"net/http"
	"time"

	"github.com/dnote/notesync/pkg/server/app"
	"github.com/dnote/notesync/pkg/server/context"
	"github.com/dnote/notesync/pkg/server/database"
	"github.com/dnote/notesync/pkg/server/presenters"
	"github.com/gorilla/mux"
)

// NewNotes creates a new Notes controller
func NewNotes(app *app.App) *Notes {
	return &Notes{
		app: app,
	}
}

// Notes is a notes controller
type Notes struct {
	app *app.App
}

// NotePayload is the full content of a note sent by a client
type NotePayload struct {
	UserID      string     `json:"userId"`
	Title       string     `json:"title" validate:"required"`
	Content     string     `json:"content"`
	Category    string     `json:"category" validate:"max=32"`
	DueDate     *string    `json:"dueDate" validate:"omitempty,datetime=2006-01-02T15:04:05Z07:00"`
	Latitude    *float64   `json:"latitude" validate:"omitempty,min=-90,max=90"`
	Longitude   *float64   `json:"longitude" validate:"omitempty,min=-180,max=180"`
	ImageURI    string     `json:"imageUri"`
	IsCompleted bool       `json:"isCompleted"`
	CreatedAt   *time.Time `json:"createdAt"`
	UpdatedAt   *time.Time `json:"updatedAt"`
}

func (p NotePayload) toParams() app.NoteParams {
	return app.NoteParams{
		Title:       p.Title,
		Content:     p.Content,
		Category:    p.Category,
		DueDate:     p.DueDate,
		Latitude:    p.Latitude,
		Longitude:   p.Longitude,
		ImageURI:    p.ImageURI,
		IsCompleted: p.IsCompleted,
		AddedAt:     p.CreatedAt,
		EditedAt:    p.UpdatedAt,
	}
}

// NotesQuery is the query for listing notes
type NotesQuery struct {
	UserID string `schema:"userId"`
}

// NoteResponse is a response containing a single note
type NoteResponse struct {
	Result presenters.Note `json:"result"`
}

// NotesResponse is a response containing notes
type NotesResponse struct {
	Notes []presenters.Note `json:"notes"`
	Total int               `json:"total"`
}

// checkOwner rejects a request naming a user other than the one of the session.
// An empty user id refers to the session's user.
func checkOwner(user *database.User, userID string) error {
	if userID != "" && userID != user.UUID {
		return app.ErrForbidden
	}

	return nil
}

// Index handles GET /v1/notes
func (n *Notes) Index(w http.ResponseWriter, r *http.Request) {
	user := context.User(r.Context())

	var q NotesQuery
	if err := parseQuery(r, &q); err != nil {
		handleJSONError(w, err, "parsing query")
		return
	}
	if err := checkOwner(user, q.UserID); err != nil {
		handleJSONError(w, err, "checking owner")
		return
	}

	notes, err := n.app.ListNotes(*user)
	if err != nil {
		handleJSONError(w, err, "listing notes")
		return
	}

	respondJSON(w, http.StatusOK, NotesResponse{
		Notes: presenters.PresentNotes(notes, user.UUID),
		Total: len(notes),
	})
}

// Create handles POST /v1/notes
func (n *Notes) Create(w http.ResponseWriter, r *http.Request) {
	user := context.User(r.Context())

	var p NotePayload
	if err := parseJSON(r, &p); err != nil {
		handleJSONError(w, err, "parsing payload")
		return
	}
	if err := checkOwner(user, p.UserID); err != nil {
		handleJSONError(w, err, "checking owner")
		return
	}

	note, err := n.app.CreateNote(*user, p.toParams())
	if err != nil {
		handleJSONError(w, err, "creating note")
		return
	}

	respondJSON(w, http.StatusCreated, NoteResponse{
		Result: presenters.PresentNote(note, user.UUID),
	})
}

// Update handles PUT /v1/notes/{noteID}
func (n *Notes) Update(w http.ResponseWriter, r *http.Request) {
	user := context.User(r.Context())
	noteID := mux.Vars(r)["noteID"]

	var p NotePayload
	if err := parseJSON(r, &p); err != nil {
		handleJSONError(w, err, "parsing payload")
		return
	}
	if err := checkOwner(user, p.UserID); err != nil {
		handleJSONError(w, err, "checking owner")
		return
	}

	note, err := n.app.UpdateNote(*user, noteID, p.toParams())
	if err != nil {
		handleJSONError(w, err, "updating note")
		return
	}

	respondJSON(w, http.StatusOK, NoteResponse{
		Result: presenters.PresentNote(note, user.UUID),
	})
}

// Delete handles DELETE /v1/notes/{noteID}
func (n *Notes) Delete(w http.ResponseWriter, r *http.Request) {
	user := context.User(r.Context())
	noteID := mux.Vars(r)["noteID"]

	if err := n.app.DeleteNote(*user, noteID); err != nil {
		handleJSONError(w, err, "deleting note")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
