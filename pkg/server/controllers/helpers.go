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
	"encoding/json"
	"net/http"

	"github.com/dnote/notesync/pkg/server/app"
	mw "github.com/dnote/notesync/pkg/server/middleware"
	"github.com/go-playground/validator/v10"
	"github.com/gorilla/schema"
	"github.com/pkg/errors"
)

var (
	validate     = validator.New()
	queryDecoder = newQueryDecoder()
)

func newQueryDecoder() *schema.Decoder {
	d := schema.NewDecoder()
	d.IgnoreUnknownKeys(true)

	return d
}

// badRequestError marks a request the client must fix
type badRequestError struct {
	err error
}

func (e badRequestError) Error() string {
	return e.err.Error()
}

func (e badRequestError) Unwrap() error {
	return e.err
}

// parseJSON decodes the JSON body of the request into v and validates it
func parseJSON(r *http.Request, v interface{}) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return badRequestError{errors.Wrap(err, "decoding payload")}
	}
	if err := validate.Struct(v); err != nil {
		return badRequestError{errors.Wrap(err, "validating payload")}
	}

	return nil
}

// parseQuery decodes the query string of the request into v and validates it
func parseQuery(r *http.Request, v interface{}) error {
	if err := queryDecoder.Decode(v, r.URL.Query()); err != nil {
		return badRequestError{errors.Wrap(err, "decoding query")}
	}
	if err := validate.Struct(v); err != nil {
		return badRequestError{errors.Wrap(err, "validating query")}
	}

	return nil
}

func respondJSON(w http.ResponseWriter, statusCode int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	if err := json.NewEncoder(w).Encode(payload); err != nil {
		mw.DoError(w, "encoding response", err, http.StatusInternalServerError)
	}
}

func getStatusCode(err error) int {
	var bre badRequestError
	if errors.As(err, &bre) {
		return http.StatusBadRequest
	}

	switch errors.Cause(err) {
	case app.ErrNotFound:
		return http.StatusNotFound
	case app.ErrForbidden, app.ErrRegistrationDisabled:
		return http.StatusForbidden
	case app.ErrLoginInvalid:
		return http.StatusUnauthorized
	case app.ErrDuplicateEmail:
		return http.StatusConflict
	case app.ErrEmailRequired, app.ErrPasswordRequired, app.ErrPasswordTooShort, app.ErrEmptyTitle:
		return http.StatusBadRequest
	}

	return http.StatusInternalServerError
}

// handleJSONError responds with the status code the error maps to
func handleJSONError(w http.ResponseWriter, err error, msg string) {
	mw.DoError(w, msg, err, getStatusCode(err))
}
