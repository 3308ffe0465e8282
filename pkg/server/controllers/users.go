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

	"github.com/dnote/notesync/pkg/server/app"
	"github.com/dnote/notesync/pkg/server/context"
	"github.com/dnote/notesync/pkg/server/database"
	"github.com/dnote/notesync/pkg/server/log"
	"github.com/pkg/errors"
)

// NewUsers creates a new Users controller
func NewUsers(app *app.App) *Users {
	return &Users{
		app: app,
	}
}

// Users is a user controller.
type Users struct {
	app *app.App
}

// CredentialsForm is the payload for registering and signing in
type CredentialsForm struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// SessionResponse is a response containing a session information
type SessionResponse struct {
	Key       string `json:"key"`
	ExpiresAt int64  `json:"expires_at"`
	UserID    string `json:"user_id"`
}

// MeResponse is a response describing the user of the session
type MeResponse struct {
	User struct {
		UUID  string `json:"uuid"`
		Email string `json:"email"`
	} `json:"user"`
}

func respondWithSession(w http.ResponseWriter, statusCode int, user database.User, session *database.Session) {
	respondJSON(w, statusCode, SessionResponse{
		Key:       session.Key,
		ExpiresAt: session.ExpiresAt.Unix(),
		UserID:    user.UUID,
	})
}

// Create handles POST /v1/users. It registers a user and signs them in.
func (u *Users) Create(w http.ResponseWriter, r *http.Request) {
	var form CredentialsForm
	if err := parseJSON(r, &form); err != nil {
		handleJSONError(w, err, "parsing payload")
		return
	}

	user, err := u.app.Register(form.Email, form.Password)
	if err != nil {
		handleJSONError(w, err, "creating user")
		return
	}

	session, err := u.app.SignIn(&user)
	if err != nil {
		handleJSONError(w, err, "signing in a user")
		return
	}

	log.WithFields(log.Fields{
		"user": user.UUID,
	}).Info("user registered")

	respondWithSession(w, http.StatusCreated, user, session)
}

// Signin handles POST /v1/signin
func (u *Users) Signin(w http.ResponseWriter, r *http.Request) {
	var form CredentialsForm
	if err := parseJSON(r, &form); err != nil {
		handleJSONError(w, err, "parsing payload")
		return
	}

	user, err := u.app.Authenticate(form.Email, form.Password)
	if err != nil {
		// an unknown email is reported as wrong credentials
		if errors.Is(err, app.ErrNotFound) {
			err = app.ErrLoginInvalid
		}

		handleJSONError(w, err, "authenticating user")
		return
	}

	session, err := u.app.SignIn(user)
	if err != nil {
		handleJSONError(w, err, "signing in a user")
		return
	}

	respondWithSession(w, http.StatusOK, *user, session)
}

// Signout handles POST /v1/signout
func (u *Users) Signout(w http.ResponseWriter, r *http.Request) {
	key := context.SessionKey(r.Context())

	if err := u.app.DeleteSession(key); err != nil {
		handleJSONError(w, err, "deleting session")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// Me handles GET /v1/users/me
func (u *Users) Me(w http.ResponseWriter, r *http.Request) {
	user := context.User(r.Context())

	var resp MeResponse
	resp.User.UUID = user.UUID
	resp.User.Email = user.Email

	respondJSON(w, http.StatusOK, resp)
}
