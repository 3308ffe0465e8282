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
	"github.com/dnote/notesync/pkg/clock"
	"github.com/dnote/notesync/pkg/server/app"
	"github.com/dnote/notesync/pkg/server/database"
	"github.com/dnote/notesync/pkg/server/testutils"
	"golang.org/x/crypto/bcrypt"
)

var testNow = time.Date(2025, 6, 2, 8, 0, 0, 0, time.UTC)

func newTestApp(t *testing.T) app.App {
	c := clock.NewMock()
	c.SetNow(testNow)

	a := app.NewTest()
	a.DB = testutils.InitMemoryDB(t)
	a.Clock = c

	return a
}

func TestRegister(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		a := newTestApp(t)
		server := MustNewServer(t, &a)

		req := testutils.MakeReq(server.URL, "POST", "/api/v1/users", `{"email": "alice@example.com", "password": "pass1234"}`)
		res := testutils.HTTPDo(t, req)

		assert.StatusCodeEquals(t, res, http.StatusCreated, "")

		var got SessionResponse
		testutils.MustDecodeJSON(t, res, &got)

		var user database.User
		var session database.Session
		testutils.MustExec(t, a.DB.First(&user), "finding user")
		testutils.MustExec(t, a.DB.First(&session), "finding session")

		assert.Equal(t, user.Email, "alice@example.com", "email mismatch")
		assert.Equal(t, bcrypt.CompareHashAndPassword([]byte(user.Password), []byte("pass1234")), nil, "password mismatch")
		assert.Equal(t, got.Key, session.Key, "session key mismatch")
		assert.Equal(t, got.UserID, user.UUID, "user id mismatch")
		assert.Equal(t, got.ExpiresAt, testNow.Add(a.SessionTTL).Unix(), "expires_at mismatch")
	})

	testCases := []struct {
		name     string
		payload  string
		setup    func(a *app.App)
		expected int
	}{
		{
			name:     "invalid email",
			payload:  `{"email": "alice", "password": "pass1234"}`,
			expected: http.StatusBadRequest,
		},
		{
			name:     "short password",
			payload:  `{"email": "alice@example.com", "password": "pass"}`,
			expected: http.StatusBadRequest,
		},
		{
			name:     "malformed payload",
			payload:  `{"email": `,
			expected: http.StatusBadRequest,
		},
		{
			name:    "duplicate email",
			payload: `{"email": "alice@example.com", "password": "pass1234"}`,
			setup: func(a *app.App) {
				testutils.SetupUserData(a.DB, "alice@example.com", "somepassword")
			},
			expected: http.StatusConflict,
		},
		{
			name:    "registration disabled",
			payload: `{"email": "alice@example.com", "password": "pass1234"}`,
			setup: func(a *app.App) {
				a.DisableRegistration = true
			},
			expected: http.StatusForbidden,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			a := newTestApp(t)
			if tc.setup != nil {
				tc.setup(&a)
			}
			server := MustNewServer(t, &a)

			req := testutils.MakeReq(server.URL, "POST", "/api/v1/users", tc.payload)
			res := testutils.HTTPDo(t, req)

			assert.StatusCodeEquals(t, res, tc.expected, "")

			var sessionCount int64
			testutils.MustExec(t, a.DB.Model(&database.Session{}).Count(&sessionCount), "counting sessions")
			assert.Equal(t, sessionCount, int64(0), "no session should be created")
		})
	}
}

func TestSignin(t *testing.T) {
	testCases := []struct {
		name     string
		payload  string
		expected int
	}{
		{
			name:     "success",
			payload:  `{"email": "alice@example.com", "password": "pass1234"}`,
			expected: http.StatusOK,
		},
		{
			name:     "email is case insensitive",
			payload:  `{"email": "Alice@Example.com", "password": "pass1234"}`,
			expected: http.StatusOK,
		},
		{
			name:     "wrong password",
			payload:  `{"email": "alice@example.com", "password": "wrongpassword"}`,
			expected: http.StatusUnauthorized,
		},
		{
			name:     "unknown email",
			payload:  `{"email": "bob@example.com", "password": "pass1234"}`,
			expected: http.StatusUnauthorized,
		},
		{
			name:     "missing password",
			payload:  `{"email": "alice@example.com"}`,
			expected: http.StatusBadRequest,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			a := newTestApp(t)
			server := MustNewServer(t, &a)
			user := testutils.SetupUserData(a.DB, "alice@example.com", "pass1234")

			req := testutils.MakeReq(server.URL, "POST", "/api/v1/signin", tc.payload)
			res := testutils.HTTPDo(t, req)

			assert.StatusCodeEquals(t, res, tc.expected, "")

			var sessionCount int64
			testutils.MustExec(t, a.DB.Model(&database.Session{}).Count(&sessionCount), "counting sessions")

			if tc.expected != http.StatusOK {
				assert.Equal(t, sessionCount, int64(0), "sessionCount mismatch")
				return
			}

			var got SessionResponse
			testutils.MustDecodeJSON(t, res, &got)

			var session database.Session
			testutils.MustExec(t, a.DB.First(&session), "finding session")
			assert.Equal(t, sessionCount, int64(1), "sessionCount mismatch")
			assert.Equal(t, got.Key, session.Key, "session Key mismatch")
			assert.Equal(t, got.ExpiresAt, session.ExpiresAt.Unix(), "session ExpiresAt mismatch")
			assert.Equal(t, got.UserID, user.UUID, "user id mismatch")

			var userRecord database.User
			testutils.MustExec(t, a.DB.First(&userRecord), "finding user")
			assert.NotEqual(t, userRecord.LastLoginAt, nil, "LastLoginAt mismatch")
		})
	}
}

func TestSignout(t *testing.T) {
	a := newTestApp(t)
	server := MustNewServer(t, &a)
	user := testutils.SetupUserData(a.DB, "alice@example.com", "pass1234")
	session1, err := a.CreateSession(user.ID)
	if err != nil {
		t.Fatal(err)
	}
	session2, err := a.CreateSession(user.ID)
	if err != nil {
		t.Fatal(err)
	}

	req := testutils.MakeReq(server.URL, "POST", "/api/v1/signout", "")
	req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", session1.Key))
	res := testutils.HTTPDo(t, req)

	assert.StatusCodeEquals(t, res, http.StatusNoContent, "")

	var sessions []database.Session
	testutils.MustExec(t, a.DB.Find(&sessions), "finding sessions")
	assert.Equal(t, len(sessions), 1, "session count mismatch")
	assert.Equal(t, sessions[0].Key, session2.Key, "the other session should remain")

	t.Run("signed out session is rejected", func(t *testing.T) {
		req := testutils.MakeReq(server.URL, "GET", "/api/v1/users/me", "")
		req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", session1.Key))
		res := testutils.HTTPDo(t, req)

		assert.StatusCodeEquals(t, res, http.StatusUnauthorized, "")
	})
}

func TestMe(t *testing.T) {
	a := newTestApp(t)
	server := MustNewServer(t, &a)
	user := testutils.SetupUserData(a.DB, "alice@example.com", "pass1234")
	session, err := a.CreateSession(user.ID)
	if err != nil {
		t.Fatal(err)
	}

	t.Run("authenticated", func(t *testing.T) {
		req := testutils.MakeReq(server.URL, "GET", "/api/v1/users/me", "")
		req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", session.Key))
		res := testutils.HTTPDo(t, req)

		assert.StatusCodeEquals(t, res, http.StatusOK, "")

		var got MeResponse
		testutils.MustDecodeJSON(t, res, &got)
		assert.Equal(t, got.User.UUID, user.UUID, "uuid mismatch")
		assert.Equal(t, got.User.Email, "alice@example.com", "email mismatch")
	})

	t.Run("expired session", func(t *testing.T) {
		a.Clock.(*clock.Mock).SetNow(testNow.Add(a.SessionTTL + time.Minute))
		defer a.Clock.(*clock.Mock).SetNow(testNow)

		req := testutils.MakeReq(server.URL, "GET", "/api/v1/users/me", "")
		req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", session.Key))
		res := testutils.HTTPDo(t, req)

		assert.StatusCodeEquals(t, res, http.StatusUnauthorized, "")
	})
}

func TestHealth(t *testing.T) {
	a := newTestApp(t)
	server := MustNewServer(t, &a)

	res := testutils.HTTPDo(t, testutils.MakeReq(server.URL, "GET", "/health", ""))

	assert.StatusCodeEquals(t, res, http.StatusOK, "")
}

func TestNotFoundRoute(t *testing.T) {
	a := newTestApp(t)
	server := MustNewServer(t, &a)

	res := testutils.HTTPDo(t, testutils.MakeReq(server.URL, "GET", "/api/v3/sync/state", ""))

	assert.StatusCodeEquals(t, res, http.StatusNotFound, "")
	assert.Equal(t, res.Header.Get("Content-Type"), "application/json", "Content-Type mismatch")
}
