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

package client

import (
	gocontext "context"
	"encoding/json"
	"fmt"
	"net/url"
	"time"

	"github.com/dnote/notesync/pkg/cli/context"
	"github.com/dnote/notesync/pkg/cli/database"
	"github.com/pkg/errors"
)

// RespNote is a note in the response
type RespNote struct {
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

// NotePayload is a payload for creating or updating a note
type NotePayload struct {
	UserID      string     `json:"userId"`
	Title       string     `json:"title"`
	Content     string     `json:"content"`
	Category    string     `json:"category"`
	DueDate     *string    `json:"dueDate"`
	Latitude    *float64   `json:"latitude"`
	Longitude   *float64   `json:"longitude"`
	ImageURI    string     `json:"imageUri"`
	IsCompleted bool       `json:"isCompleted"`
	CreatedAt   *time.Time `json:"createdAt,omitempty"`
	UpdatedAt   *time.Time `json:"updatedAt,omitempty"`
}

// NoteResp is the response from the create and update note endpoints
type NoteResp struct {
	Result RespNote `json:"result"`
}

// GetNotesResp is the response from the get notes endpoint
type GetNotesResp struct {
	Notes []RespNote `json:"notes"`
	Total int        `json:"total"`
}

func fromMillis(ms int64) *time.Time {
	if ms == 0 {
		return nil
	}

	t := time.UnixMilli(ms).UTC()
	return &t
}

func newNotePayload(ownerID string, n database.Note) NotePayload {
	return NotePayload{
		UserID:      ownerID,
		Title:       n.Title,
		Content:     n.Content,
		Category:    n.Category,
		DueDate:     n.DueDate,
		Latitude:    n.Latitude,
		Longitude:   n.Longitude,
		ImageURI:    n.ImageRef,
		IsCompleted: n.IsCompleted,
		CreatedAt:   fromMillis(n.CreatedAt),
		UpdatedAt:   fromMillis(n.UpdatedAt),
	}
}

// ToNote converts a note in the response to a local note record
func (r RespNote) ToNote() database.Note {
	return database.Note{
		ID:          r.ID,
		Origin:      database.OriginRemote,
		OwnerID:     r.UserID,
		Title:       r.Title,
		Content:     r.Content,
		Category:    r.Category,
		DueDate:     r.DueDate,
		Latitude:    r.Latitude,
		Longitude:   r.Longitude,
		ImageRef:    r.ImageURI,
		IsCompleted: r.IsCompleted,
		CreatedAt:   r.CreatedAt.UnixMilli(),
		UpdatedAt:   r.UpdatedAt.UnixMilli(),
		SyncStatus:  database.StatusSynced,
	}
}

func doNoteReq(ctx context.NotesyncCtx, c gocontext.Context, method, path string, payload NotePayload) (RespNote, error) {
	b, err := json.Marshal(payload)
	if err != nil {
		return RespNote{}, errors.Wrap(err, "marshaling payload")
	}

	res, err := doAuthorizedReq(ctx, method, path, string(b), &requestOptions{Context: c})
	if err != nil {
		return RespNote{}, err
	}
	defer res.Body.Close()

	var resp NoteResp
	if err := json.NewDecoder(res.Body).Decode(&resp); err != nil {
		return RespNote{}, errors.Wrap(err, "decoding payload")
	}

	return resp.Result, nil
}

// CreateNote creates a note in the server
func CreateNote(ctx context.NotesyncCtx, c gocontext.Context, payload NotePayload) (RespNote, error) {
	ret, err := doNoteReq(ctx, c, "POST", "/v1/notes", payload)
	if err != nil {
		return RespNote{}, errors.Wrap(err, "posting a note to the server")
	}

	return ret, nil
}

// UpdateNote replaces a note in the server
func UpdateNote(ctx context.NotesyncCtx, c gocontext.Context, id string, payload NotePayload) (RespNote, error) {
	ret, err := doNoteReq(ctx, c, "PUT", fmt.Sprintf("/v1/notes/%s", url.PathEscape(id)), payload)
	if err != nil {
		return RespNote{}, errors.Wrap(err, "putting a note to the server")
	}

	return ret, nil
}

// DeleteNote removes a note in the server
func DeleteNote(ctx context.NotesyncCtx, c gocontext.Context, id string) error {
	opts := requestOptions{
		Context:             c,
		ExpectedContentType: &contentTypeNone,
	}

	res, err := doAuthorizedReq(ctx, "DELETE", fmt.Sprintf("/v1/notes/%s", url.PathEscape(id)), "", &opts)
	if err != nil {
		return errors.Wrap(err, "deleting a note in the server")
	}
	res.Body.Close()

	return nil
}

// GetNotes gets all notes of a user from the server
func GetNotes(ctx context.NotesyncCtx, c gocontext.Context, userID string) (GetNotesResp, error) {
	v := url.Values{}
	v.Set("userId", userID)

	res, err := doAuthorizedReq(ctx, "GET", fmt.Sprintf("/v1/notes?%s", v.Encode()), "", &requestOptions{Context: c})
	if err != nil {
		return GetNotesResp{}, errors.Wrap(err, "getting notes from the server")
	}
	defer res.Body.Close()

	var resp GetNotesResp
	if err := json.NewDecoder(res.Body).Decode(&resp); err != nil {
		return GetNotesResp{}, errors.Wrap(err, "decoding payload")
	}

	return resp, nil
}

// Remote is the remote note service backed by the notesync server
type Remote struct {
	ctx context.NotesyncCtx
}

// NewRemote returns a remote note service using the endpoint, the session
// and the http client of the given context
func NewRemote(ctx context.NotesyncCtx) *Remote {
	return &Remote{ctx: ctx}
}

// Create creates the note remotely and returns it with the id the server issued
func (r *Remote) Create(c gocontext.Context, ownerID string, n database.Note) (database.Note, error) {
	resp, err := CreateNote(r.ctx, c, newNotePayload(ownerID, n))
	if err != nil {
		return database.Note{}, err
	}

	return resp.ToNote(), nil
}

// Update replaces the remote version of the note
func (r *Remote) Update(c gocontext.Context, ownerID string, n database.Note) (database.Note, error) {
	resp, err := UpdateNote(r.ctx, c, n.ID, newNotePayload(ownerID, n))
	if err != nil {
		return database.Note{}, err
	}

	return resp.ToNote(), nil
}

// Delete deletes the note remotely. A note that no longer exists remotely is
// considered deleted.
func (r *Remote) Delete(c gocontext.Context, ownerID, id string) error {
	err := DeleteNote(r.ctx, c, id)

	var httpErr *HTTPError
	if errors.As(err, &httpErr) && httpErr.IsNotFound() {
		return nil
	}

	return err
}

// ListAll returns every note of the owner
func (r *Remote) ListAll(c gocontext.Context, ownerID string) ([]database.Note, error) {
	resp, err := GetNotes(r.ctx, c, ownerID)
	if err != nil {
		return nil, err
	}

	ret := make([]database.Note, 0, len(resp.Notes))
	for _, n := range resp.Notes {
		ret = append(ret, n.ToNote())
	}

	return ret, nil
}
