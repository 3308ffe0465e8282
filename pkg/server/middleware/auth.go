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

package middleware

import (
	"net/http"

	"github.com/dnote/notesync/pkg/server/app"
	"github.com/dnote/notesync/pkg/server/context"
	"github.com/dnote/notesync/pkg/server/database"
	"github.com/pkg/errors"
)

// Auth is an authentication middleware. It lets through only the requests
// that carry the key of an unexpired session.
func Auth(a *app.App, next http.HandlerFunc) http.HandlerFunc {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, key, ok, err := AuthWithSession(a, r)
		if err != nil {
			DoError(w, "authenticating with session", err, http.StatusInternalServerError)
			return
		}
		if !ok {
			RespondUnauthorized(w)
			return
		}

		ctx := context.WithUser(r.Context(), &user)
		ctx = context.WithSessionKey(ctx, key)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// AuthWithSession performs user authentication with session. It returns the
// user and the session key if the request is authenticated.
func AuthWithSession(a *app.App, r *http.Request) (database.User, string, bool, error) {
	sessionKey, err := GetCredential(r)
	if err != nil {
		// a malformed header is treated as no credential
		return database.User{}, "", false, nil
	}
	if sessionKey == "" {
		return database.User{}, "", false, nil
	}

	user, err := a.GetSessionUser(sessionKey)
	if errors.Is(err, app.ErrNotFound) {
		return database.User{}, "", false, nil
	} else if err != nil {
		return database.User{}, "", false, errors.Wrap(err, "finding session user")
	}

	return user, sessionKey, true, nil
}
