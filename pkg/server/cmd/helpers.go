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
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/dnote/notesync/pkg/clock"
	"github.com/dnote/notesync/pkg/server/app"
	"github.com/dnote/notesync/pkg/server/config"
	"github.com/dnote/notesync/pkg/server/database"
	"gorm.io/gorm"
)

// usageError is an error for invalid command line input. The usage of the
// command is printed along with it.
type usageError struct {
	fs  *flag.FlagSet
	msg string
}

func (e usageError) Error() string {
	return e.msg
}

func initDB(cfg config.Config) *gorm.DB {
	db := database.Open(cfg.DBSource(), cfg.LogLevel)
	database.InitSchema(db)

	return db
}

func initApp(cfg config.Config) app.App {
	return app.App{
		DB:                  initDB(cfg),
		Clock:               clock.New(),
		DisableRegistration: cfg.DisableRegistration,
		SessionTTL:          time.Duration(cfg.SessionDays) * 24 * time.Hour,
		RateLimit:           cfg.AppEnv != "TEST",
	}
}

// printFlags prints flags with -- prefix for consistency with the client
func printFlags(fs *flag.FlagSet) {
	fs.VisitAll(func(f *flag.Flag) {
		fmt.Printf("  --%s", f.Name)

		name, usage := flag.UnquoteUsage(f)
		if name != "" {
			fmt.Printf(" %s", name)
		}
		fmt.Println()

		if usage != "" {
			fmt.Printf("    \t%s", usage)
			if f.DefValue != "" && f.DefValue != "false" {
				fmt.Printf(" (default: %s)", f.DefValue)
			}
			fmt.Println()
		}
	})
}

// setupFlagSet creates a FlagSet with standard usage format
func setupFlagSet(name, usageCmd string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.Usage = func() {
		fmt.Printf(`Usage:
  %s [flags]

Flags:
`, usageCmd)
		printFlags(fs)
	}
	return fs
}

// requireString validates that a required string flag is not empty
func requireString(fs *flag.FlagSet, value, fieldName string) error {
	if value == "" {
		return usageError{fs: fs, msg: fmt.Sprintf("%s is required", fieldName)}
	}

	return nil
}

// setupAppWithDB creates config, initializes app, and returns cleanup function
func setupAppWithDB(fs *flag.FlagSet, dbPath, dbURL string) (*app.App, func(), error) {
	cfg, err := config.New(config.Params{
		DBPath: dbPath,
		DBURL:  dbURL,
	})
	if err != nil {
		return nil, nil, usageError{fs: fs, msg: err.Error()}
	}

	a := initApp(cfg)
	cleanup := func() {
		database.Close(a.DB)
	}

	return &a, cleanup, nil
}

// exitOnError prints the error and exits with a non-zero code
func exitOnError(err error) {
	if err == nil {
		return
	}
	if err == flag.ErrHelp {
		os.Exit(0)
	}

	fmt.Printf("Error: %s\n", err)
	if ue, ok := err.(usageError); ok {
		fmt.Println()
		ue.fs.Usage()
	}
	os.Exit(1)
}
