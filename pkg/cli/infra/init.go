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

// Package infra provides operations and definitions for the
// local infrastructure for notesync
package infra

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/dnote/notesync/pkg/cli/client"
	"github.com/dnote/notesync/pkg/cli/config"
	"github.com/dnote/notesync/pkg/cli/consts"
	"github.com/dnote/notesync/pkg/cli/context"
	"github.com/dnote/notesync/pkg/cli/database"
	"github.com/dnote/notesync/pkg/cli/engine"
	"github.com/dnote/notesync/pkg/cli/log"
	"github.com/dnote/notesync/pkg/cli/utils"
	"github.com/dnote/notesync/pkg/clock"
	"github.com/dnote/notesync/pkg/dirs"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

// busyTimeoutMs is how long a connection waits for a lock held by another
// connection to the same database file
const busyTimeoutMs = 5000

// RunEFunc is a function type of notesync commands
type RunEFunc func(*cobra.Command, []string) error

func getDBPath(paths context.Paths, customPath string) string {
	if customPath != "" {
		return customPath
	}

	return filepath.Join(paths.Data, consts.NotesyncDirName, consts.NotesyncDBFileName)
}

// dsn appends the connection parameters to a database path
func dsn(dbPath string) string {
	sep := "?"
	if strings.Contains(dbPath, "?") {
		sep = "&"
	}

	return fmt.Sprintf("%s%s_busy_timeout=%d", dbPath, sep, busyTimeoutMs)
}

// newBaseCtx creates a minimal context with paths and database connection.
// This base context is used for file and database initialization before
// being enriched with config values by setupCtx.
func newBaseCtx(versionTag, customDBPath string) (context.NotesyncCtx, error) {
	dirs.Reload()

	paths := context.Paths{
		Home:   dirs.Home,
		Config: dirs.ConfigHome,
		Data:   dirs.DataHome,
		Cache:  dirs.CacheHome,
	}

	if err := context.InitNotesyncDirs(paths); err != nil {
		return context.NotesyncCtx{}, errors.Wrap(err, "creating the notesync dirs")
	}

	dbPath := getDBPath(paths, customDBPath)

	db, err := database.Open(dsn(dbPath))
	if err != nil {
		return context.NotesyncCtx{}, errors.Wrap(err, "connecting to db")
	}

	ctx := context.NotesyncCtx{
		Paths:   paths,
		Version: versionTag,
		DB:      db,
		DBPath:  dbPath,
	}

	return ctx, nil
}

// Init initializes the notesync environment and returns a new notesync context.
// apiEndpoint is used when creating a new config file.
func Init(versionTag, apiEndpoint, dbPath string) (*context.NotesyncCtx, error) {
	ctx, err := newBaseCtx(versionTag, dbPath)
	if err != nil {
		return nil, errors.Wrap(err, "initializing a context")
	}

	if err := initConfigFile(ctx, apiEndpoint); err != nil {
		return nil, errors.Wrap(err, "generating the config file")
	}

	n, err := database.Migrate(ctx.DB)
	if err != nil {
		return nil, errors.Wrap(err, "migrating the database")
	}
	log.Debug("applied %d migrations\n", n)

	if err := InitSystem(ctx, clock.New()); err != nil {
		return nil, errors.Wrap(err, "initializing system data")
	}

	ctx, err = setupCtx(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "setting up the context")
	}

	// An endpoint given at build or run time wins over the config file
	if apiEndpoint != "" {
		ctx.APIEndpoint = apiEndpoint
	}

	log.Debug("context: %+v\n", context.Redact(ctx))

	return &ctx, nil
}

// setupCtx enriches the base context with values from config file and database.
// This is called after files and database have been initialized.
func setupCtx(ctx context.NotesyncCtx) (context.NotesyncCtx, error) {
	db := ctx.DB

	sessionKey, err := database.GetSystemString(db, consts.SystemSessionKey)
	if err != nil {
		return ctx, errors.Wrap(err, "finding session key")
	}
	expiryStr, err := database.GetSystemString(db, consts.SystemSessionKeyExpiry)
	if err != nil {
		return ctx, errors.Wrap(err, "finding session key expiry")
	}
	var sessionKeyExpiry int64
	if expiryStr != "" {
		sessionKeyExpiry, err = strconv.ParseInt(expiryStr, 10, 64)
		if err != nil {
			return ctx, errors.Wrap(err, "parsing session key expiry")
		}
	}
	userID, err := database.GetSystemString(db, consts.SystemUserID)
	if err != nil {
		return ctx, errors.Wrap(err, "finding user id")
	}

	cf, err := config.Read(ctx)
	if err != nil {
		return ctx, errors.Wrap(err, "reading config")
	}

	c := clock.New()

	ret := context.NotesyncCtx{
		Paths:              ctx.Paths,
		Version:            ctx.Version,
		DB:                 ctx.DB,
		Store:              database.NewStore(ctx.DB, c),
		DBPath:             ctx.DBPath,
		SessionKey:         sessionKey,
		SessionKeyExpiry:   sessionKeyExpiry,
		UserID:             userID,
		APIEndpoint:        cf.APIEndpoint,
		Editor:             cf.Editor,
		Clock:              c,
		EnableUpgradeCheck: cf.EnableUpgradeCheck,
		SyncSchedule:       cf.SyncSchedule,
		AutoSync:           cf.AutoSync,
		HTTPClient:         client.NewRateLimitedHTTPClient(),
	}

	return ret, nil
}

func initSystemKV(db *database.DB, key string, val string) error {
	var count int
	if err := db.QueryRow("SELECT count(*) FROM system WHERE key = ?", key).Scan(&count); err != nil {
		return errors.Wrapf(err, "counting %s", key)
	}

	if count > 0 {
		return nil
	}

	if _, err := db.Exec("INSERT INTO system (key, value) VALUES (?, ?)", key, val); err != nil {
		return errors.Wrapf(err, "inserting %s %s", key, val)
	}

	return nil
}

// InitSystem inserts system data if missing
func InitSystem(ctx context.NotesyncCtx, c clock.Clock) error {
	log.Debug("initializing the system\n")

	tx, err := ctx.DB.Begin()
	if err != nil {
		return errors.Wrap(err, "beginning a transaction")
	}

	nowStr := strconv.FormatInt(c.Now().Unix(), 10)
	if err := initSystemKV(tx, consts.SystemLastUpgrade, nowStr); err != nil {
		tx.Rollback()
		return errors.Wrapf(err, "initializing system config for %s", consts.SystemLastUpgrade)
	}
	if err := initSystemKV(tx, consts.SystemLastSyncAt, "0"); err != nil {
		tx.Rollback()
		return errors.Wrapf(err, "initializing system config for %s", consts.SystemLastSyncAt)
	}

	if err := tx.Commit(); err != nil {
		return errors.Wrap(err, "committing transaction")
	}

	return nil
}

// getEditorCommand returns the system's editor command with appropriate flags,
// if necessary, to make the command wait until editor is close to exit.
func getEditorCommand() string {
	editor := os.Getenv("EDITOR")

	var ret string

	switch editor {
	case "atom":
		ret = "atom -w"
	case "subl":
		ret = "subl -n -w"
	case "code":
		ret = "code -n -w"
	case "mate":
		ret = "mate -w"
	case "vim":
		ret = "vim"
	case "nano":
		ret = "nano"
	case "emacs":
		ret = "emacs"
	case "nvim":
		ret = "nvim"
	default:
		ret = "vi"
	}

	return ret
}

// initConfigFile populates a new config file if it does not exist yet
func initConfigFile(ctx context.NotesyncCtx, apiEndpoint string) error {
	path := config.GetPath(ctx)
	ok, err := utils.FileExists(path)
	if err != nil {
		return errors.Wrap(err, "checking if config exists")
	}
	if ok {
		return nil
	}

	cf := config.Default(getEditorCommand())
	if apiEndpoint != "" {
		cf.APIEndpoint = apiEndpoint
	}

	if err := config.Write(ctx, cf); err != nil {
		return errors.Wrap(err, "writing config")
	}

	return nil
}

// NewEngine returns a sync engine over the context's store and server
func NewEngine(ctx context.NotesyncCtx) *engine.Engine {
	return engine.New(engine.Params{
		Store:   ctx.Store,
		Remote:  client.NewRemote(ctx),
		Clock:   ctx.Clock,
		OwnerID: ctx.UserID,
		Logger:  log.DebugLogger{},
	})
}
