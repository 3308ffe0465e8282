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

// Package consts provides definitions of constants
package consts

var (
	// NotesyncDirName is the name of the directory containing notesync files
	NotesyncDirName = "notesync"
	// NotesyncDBFileName is a filename for the notesync SQLite database
	NotesyncDBFileName = "notesync.db"
	// LockFileName is the name of the lock file guarding sync runs
	LockFileName = "sync.lock"
	// TmpContentFileBase is the base for the filename for a temporary content
	TmpContentFileBase = "NOTESYNC_TMPCONTENT"
	// TmpContentFileExt is the extension for the temporary content file
	TmpContentFileExt = "md"
	// ConfigFilename is the name of the config file
	ConfigFilename = "notesyncrc"

	// DefaultAPIEndpoint is the API endpoint used when none is configured
	DefaultAPIEndpoint = "http://localhost:3001/api"
	// DefaultSyncSchedule is the cron spec of the watch mode refresh
	DefaultSyncSchedule = "@every 1m"

	// SystemLastSyncAt is the timestamp of the last successful sync
	SystemLastSyncAt = "last_sync_time"
	// SystemLastSyncError is the error of the last failed sync
	SystemLastSyncError = "last_sync_error"
	// SystemLastUpgrade is the timestamp at which the system more recently checked for an upgrade
	SystemLastUpgrade = "last_upgrade"
	// SystemSessionKey is the session key
	SystemSessionKey = "session_token"
	// SystemSessionKeyExpiry is the timestamp at which the session key will expire
	SystemSessionKeyExpiry = "session_token_expiry"
	// SystemUserID is the id of the signed in user who owns the synced notes
	SystemUserID = "user_id"
)
