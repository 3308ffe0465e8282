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

// Package context defines notesync context
package context

import (
	"net/http"

	"github.com/dnote/notesync/pkg/cli/database"
	"github.com/dnote/notesync/pkg/clock"
)

// Paths contain directory definitions
type Paths struct {
	Home   string
	Config string
	Data   string
	Cache  string
}

// NotesyncCtx is a context holding the information of the current runtime
type NotesyncCtx struct {
	Paths              Paths
	APIEndpoint        string
	Version            string
	DB                 *database.DB
	Store              *database.Store
	DBPath             string
	SessionKey         string
	SessionKeyExpiry   int64
	UserID             string
	Editor             string
	Clock              clock.Clock
	EnableUpgradeCheck bool
	SyncSchedule       string
	// AutoSync triggers a sync after local edits
	AutoSync   bool
	HTTPClient *http.Client
}

// LoggedIn returns true if the context carries a session and an owner
func (ctx NotesyncCtx) LoggedIn() bool {
	return ctx.SessionKey != "" && ctx.UserID != ""
}

// Redact replaces private information from the context with a set of
// placeholder values.
func Redact(ctx NotesyncCtx) NotesyncCtx {
	var sessionKey string
	if ctx.SessionKey != "" {
		sessionKey = "1"
	} else {
		sessionKey = "0"
	}
	ctx.SessionKey = sessionKey

	return ctx
}
