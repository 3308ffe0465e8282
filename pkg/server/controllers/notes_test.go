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
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/dnote/notesync/pkg/assert"
	"github.com/dnote/notesync/pkg/server/app"
	"github.com/dnote/notesync/pkg/server/database"
	"github.com/dnote/notesync/pkg/server/testutils"
)

func authReq(t *testing.T, a *app.App, user database.User, endpoint, method, path, body string) *http.Request {
	session, err := a.CreateSession(user.ID)
	if err != nil {
		t.Fatal(err)
	}

	req := testutils.MakeReq(endpoint, method, path, body)
	req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", session.Key))

	return req
}

func TestGetNotes(t *testing.T) {
	a := newTestApp(t)
	server := MustNewServer(t, &a)

	alice := testutils.SetupUserData(a.DB, "alice@example.com", "pass1234")
	bob := testutils.SetupUserData(a.DB, "bob@example.com", "pass1234")
	n1 := testutils.SetupNoteData(a.DB, alice, "Report", testNow.Add(-2*time.Hour))
	n2 := testutils.SetupNoteData(a.DB, alice, "Dentist", testNow.Add(-1*time.Hour))
	testutils.SetupNoteData(a.DB, bob, "Bob's note", testNow)

	t.Run("own notes", func(t *testing.T) {
		req := authReq(t, &a, alice, server.URL, "GET", "/api/v1/notes?userId="+alice.UUID, "")
		res := testutils.HTTPDo(t, req)

		assert.StatusCodeEquals(t, res, http.StatusOK, "")

		var got NotesResponse
		testutils.MustDecodeJSON(t, res, &got)

		assert.Equal(t, got.Total, 2, "total mismatch")
		assert.Equal(t, len(got.Notes), 2, "notes length mismatch")
		assert.Equal(t, got.Notes[0].ID, n1.UUID, "first note mismatch")
		assert.Equal(t, got.Notes[1].ID, n2.UUID, "second note mismatch")
		assert.Equal(t, got.Notes[0].UserID, alice.UUID, "userId mismatch")
	})

	t.Run("without user id", func(t *testing.T) {
		req := authReq(t, &a, alice, server.URL, "GET", "/api/v1/notes", "")
		res := testutils.HTTPDo(t, req)

		assert.StatusCodeEquals(t, res, http.StatusOK, "")

		var got NotesResponse
		testutils.MustDecodeJSON(t, res, &got)
		assert.Equal(t, got.Total, 2, "total mismatch")
	})

	t.Run("other user's id", func(t *testing.T) {
		req := authReq(t, &a, alice, server.URL, "GET", "/api/v1/notes?userId="+bob.UUID, "")
		res := testutils.HTTPDo(t, req)

		assert.StatusCodeEquals(t, res, http.StatusForbidden, "")
	})

	t.Run("unauthenticated", func(t *testing.T) {
		req := testutils.MakeReq(server.URL, "GET", "/api/v1/notes", "")
		res := testutils.HTTPDo(t, req)

		assert.StatusCodeEquals(t, res, http.StatusUnauthorized, "")
	})
}

func TestCreateNote(t *testing.T) {
	t.Run("keeps client timestamps", func(t *testing.T) {
		a := newTestApp(t)
		server := MustNewServer(t, &a)
		alice := testutils.SetupUserData(a.DB, "alice@example.com", "pass1234")

		payload := fmt.Sprintf(`{
			"userId": "%s",
			"title": "Report",
			"content": "quarterly numbers",
			"category": "work",
			"dueDate": "2025-06-10T09:00:00Z",
			"latitude": 37.5665,
			"longitude": 126.978,
			"imageUri": "file:///photos/1.jpg",
			"isCompleted": false,
			"createdAt": "2025-06-01T10:00:00.123Z",
			"updatedAt": "2025-06-01T11:00:00.456Z"
		}`, alice.UUID)
		req := authReq(t, &a, alice, server.URL, "POST", "/api/v1/notes", payload)
		res := testutils.HTTPDo(t, req)

		assert.StatusCodeEquals(t, res, http.StatusCreated, "")

		var got NoteResponse
		testutils.MustDecodeJSON(t, res, &got)

		var note database.Note
		testutils.MustExec(t, a.DB.First(&note), "finding note")

		assert.Equal(t, got.Result.ID, note.UUID, "id mismatch")
		assert.Equal(t, got.Result.Title, "Report", "title mismatch")
		assert.Equal(t, got.Result.Category, "work", "category mismatch")
		assert.Equal(t, *got.Result.DueDate, "2025-06-10T09:00:00Z", "dueDate mismatch")
		assert.Equal(t, *got.Result.Longitude, 126.978, "longitude mismatch")
		assert.Equal(t, got.Result.CreatedAt, time.Date(2025, 6, 1, 10, 0, 0, 123000000, time.UTC), "createdAt mismatch")
		assert.Equal(t, got.Result.UpdatedAt, time.Date(2025, 6, 1, 11, 0, 0, 456000000, time.UTC), "updatedAt mismatch")
		assert.Equal(t, note.UserID, alice.ID, "owner mismatch")
	})

	t.Run("fills missing timestamps", func(t *testing.T) {
		a := newTestApp(t)
		server := MustNewServer(t, &a)
		alice := testutils.SetupUserData(a.DB, "alice@example.com", "pass1234")

		req := authReq(t, &a, alice, server.URL, "POST", "/api/v1/notes", `{"title": "Dentist"}`)
		res := testutils.HTTPDo(t, req)

		assert.StatusCodeEquals(t, res, http.StatusCreated, "")

		var got NoteResponse
		testutils.MustDecodeJSON(t, res, &got)
		assert.Equal(t, got.Result.CreatedAt, testNow, "createdAt mismatch")
		assert.Equal(t, got.Result.UpdatedAt, testNow, "updatedAt mismatch")
	})

	testCases := []struct {
		name     string
		payload  func(alice, bob database.User) string
		expected int
	}{
		{
			name:     "missing title",
			payload:  func(alice, bob database.User) string { return `{"title": ""}` },
			expected: http.StatusBadRequest,
		},
		{
			name:     "blank title",
			payload:  func(alice, bob database.User) string { return `{"title": "   "}` },
			expected: http.StatusBadRequest,
		},
		{
			name:     "latitude out of range",
			payload:  func(alice, bob database.User) string { return `{"title": "a", "latitude": 91}` },
			expected: http.StatusBadRequest,
		},
		{
			name:     "malformed due date",
			payload:  func(alice, bob database.User) string { return `{"title": "a", "dueDate": "tomorrow"}` },
			expected: http.StatusBadRequest,
		},
		{
			name: "other user's id",
			payload: func(alice, bob database.User) string {
				return fmt.Sprintf(`{"title": "a", "userId": "%s"}`, bob.UUID)
			},
			expected: http.StatusForbidden,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			a := newTestApp(t)
			server := MustNewServer(t, &a)
			alice := testutils.SetupUserData(a.DB, "alice@example.com", "pass1234")
			bob := testutils.SetupUserData(a.DB, "bob@example.com", "pass1234")

			req := authReq(t, &a, alice, server.URL, "POST", "/api/v1/notes", tc.payload(alice, bob))
			res := testutils.HTTPDo(t, req)

			assert.StatusCodeEquals(t, res, tc.expected, "")

			var noteCount int64
			testutils.MustExec(t, a.DB.Model(&database.Note{}).Count(&noteCount), "counting notes")
			assert.Equal(t, noteCount, int64(0), "no note should be created")
		})
	}
}

func TestUpdateNote(t *testing.T) {
	t.Run("replaces content", func(t *testing.T) {
		a := newTestApp(t)
		server := MustNewServer(t, &a)
		alice := testutils.SetupUserData(a.DB, "alice@example.com", "pass1234")
		n := testutils.SetupNoteData(a.DB, alice, "Report", testNow.Add(-time.Hour))

		payload := `{"title": "Report v2", "content": "final", "category": "work", "isCompleted": true, "updatedAt": "2025-06-02T07:30:00Z"}`
		req := authReq(t, &a, alice, server.URL, "PUT", "/api/v1/notes/"+n.UUID, payload)
		res := testutils.HTTPDo(t, req)

		assert.StatusCodeEquals(t, res, http.StatusOK, "")

		var got NoteResponse
		testutils.MustDecodeJSON(t, res, &got)

		var note database.Note
		testutils.MustExec(t, a.DB.Where("uuid = ?", n.UUID).First(&note), "finding note")

		assert.Equal(t, got.Result.ID, n.UUID, "id should not change")
		assert.Equal(t, note.Title, "Report v2", "title mismatch")
		assert.Equal(t, note.Content, "final", "content mismatch")
		assert.Equal(t, note.IsCompleted, true, "isCompleted mismatch")
		assert.Equal(t, got.Result.CreatedAt, testNow.Add(-time.Hour), "createdAt should be kept")
		assert.Equal(t, got.Result.UpdatedAt, time.Date(2025, 6, 2, 7, 30, 0, 0, time.UTC), "updatedAt mismatch")
	})

	t.Run("missing note", func(t *testing.T) {
		a := newTestApp(t)
		server := MustNewServer(t, &a)
		alice := testutils.SetupUserData(a.DB, "alice@example.com", "pass1234")

		req := authReq(t, &a, alice, server.URL, "PUT", "/api/v1/notes/no-such-note", `{"title": "a"}`)
		res := testutils.HTTPDo(t, req)

		assert.StatusCodeEquals(t, res, http.StatusNotFound, "")
	})

	t.Run("other user's note", func(t *testing.T) {
		a := newTestApp(t)
		server := MustNewServer(t, &a)
		alice := testutils.SetupUserData(a.DB, "alice@example.com", "pass1234")
		bob := testutils.SetupUserData(a.DB, "bob@example.com", "pass1234")
		n := testutils.SetupNoteData(a.DB, bob, "Bob's note", testNow)

		req := authReq(t, &a, alice, server.URL, "PUT", "/api/v1/notes/"+n.UUID, `{"title": "hijacked"}`)
		res := testutils.HTTPDo(t, req)

		assert.StatusCodeEquals(t, res, http.StatusNotFound, "")

		var note database.Note
		testutils.MustExec(t, a.DB.Where("uuid = ?", n.UUID).First(&note), "finding note")
		assert.Equal(t, note.Title, "Bob's note", "title should not change")
	})
}

func TestDeleteNote(t *testing.T) {
	a := newTestApp(t)
	server := MustNewServer(t, &a)
	alice := testutils.SetupUserData(a.DB, "alice@example.com", "pass1234")
	bob := testutils.SetupUserData(a.DB, "bob@example.com", "pass1234")
	n1 := testutils.SetupNoteData(a.DB, alice, "Report", testNow)
	n2 := testutils.SetupNoteData(a.DB, bob, "Bob's note", testNow)

	t.Run("own note", func(t *testing.T) {
		req := authReq(t, &a, alice, server.URL, "DELETE", "/api/v1/notes/"+n1.UUID, "")
		res := testutils.HTTPDo(t, req)

		assert.StatusCodeEquals(t, res, http.StatusNoContent, "")
	})

	t.Run("already deleted", func(t *testing.T) {
		req := authReq(t, &a, alice, server.URL, "DELETE", "/api/v1/notes/"+n1.UUID, "")
		res := testutils.HTTPDo(t, req)

		assert.StatusCodeEquals(t, res, http.StatusNotFound, "")
	})

	t.Run("other user's note", func(t *testing.T) {
		req := authReq(t, &a, alice, server.URL, "DELETE", "/api/v1/notes/"+n2.UUID, "")
		res := testutils.HTTPDo(t, req)

		assert.StatusCodeEquals(t, res, http.StatusNotFound, "")
	})

	var count int64
	testutils.MustExec(t, a.DB.Model(&database.Note{}).Count(&count), "counting notes")
	assert.Equal(t, count, int64(1), "note count mismatch")
}
