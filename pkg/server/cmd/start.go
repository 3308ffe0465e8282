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

package cmd

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dnote/notesync/pkg/server/app"
	"github.com/dnote/notesync/pkg/server/buildinfo"
	"github.com/dnote/notesync/pkg/server/config"
	"github.com/dnote/notesync/pkg/server/controllers"
	"github.com/dnote/notesync/pkg/server/database"
	"github.com/dnote/notesync/pkg/server/log"
	mw "github.com/dnote/notesync/pkg/server/middleware"
	"github.com/pkg/errors"
)

const shutdownTimeout = 10 * time.Second

// newHandler builds the http handler serving the api of the given app
func newHandler(a *app.App) (http.Handler, func(), error) {
	var limiter *mw.RateLimiter
	if a.RateLimit {
		limiter = mw.NewDefaultRateLimiter()
	}

	ctl := controllers.New(a)
	rc := controllers.RouteConfig{
		APIRoutes:   controllers.NewAPIRoutes(a, ctl),
		Controllers: ctl,
		Limiter:     limiter,
	}

	h, err := controllers.NewRouter(a, rc)
	if err != nil {
		return nil, nil, errors.Wrap(err, "initializing router")
	}

	stop := func() {
		if limiter != nil {
			limiter.Stop()
		}
	}

	return h, stop, nil
}

func startCmd(args []string) error {
	fs := setupFlagSet("start", "notesync-server start")

	port := fs.String("port", "", "Server port (env: PORT, default: 3001)")
	dbPath := fs.String("dbPath", "", "Path to SQLite database file (env: DBPath, default: $XDG_DATA_HOME/notesync/server.db)")
	dbURL := fs.String("dbURL", "", "Postgres connection URL. Takes precedence over dbPath (env: DBURL)")
	disableRegistration := fs.Bool("disableRegistration", false, "Disable user registration (env: DisableRegistration, default: false)")
	logLevel := fs.String("logLevel", "", "Log level: debug, info, warn, or error (env: LOG_LEVEL, default: info)")

	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg, err := config.New(config.Params{
		Port:                *port,
		DBPath:              *dbPath,
		DBURL:               *dbURL,
		DisableRegistration: *disableRegistration,
		LogLevel:            *logLevel,
	})
	if err != nil {
		return usageError{fs: fs, msg: err.Error()}
	}

	log.SetLevel(cfg.LogLevel)

	a := initApp(cfg)
	defer database.Close(a.DB)

	h, stop, err := newHandler(&a)
	if err != nil {
		return err
	}
	defer stop()

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%s", cfg.Port),
		Handler:           h,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	log.WithFields(log.Fields{
		"version": buildinfo.Version,
		"port":    cfg.Port,
	}).Info("notesync server starting")

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return errors.Wrap(err, "serving")
		}
		return nil
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return errors.Wrap(err, "shutting down")
	}

	return nil
}
