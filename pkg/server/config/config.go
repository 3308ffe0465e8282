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

package config

import (
	"os"
	"path/filepath"
	"strconv"

	"github.com/dnote/notesync/pkg/dirs"
	"github.com/joho/godotenv"
	"github.com/pkg/errors"
)

const (
	// AppEnvProduction represents an app environment for production.
	AppEnvProduction string = "PRODUCTION"
	// DefaultDBDir is the default directory name for the server data
	DefaultDBDir = "notesync"
	// DefaultDBFilename is the default database filename
	DefaultDBFilename = "server.db"
	// DefaultSessionDays is the default number of days a session lasts
	DefaultSessionDays = 100
)

var (
	// ErrDBMissingPath is an error for an incomplete configuration missing the database path
	ErrDBMissingPath = errors.New("DB Path is empty")
	// ErrPortInvalid is an error for an incomplete configuration with invalid port
	ErrPortInvalid = errors.New("Invalid Port")
	// ErrSessionDaysInvalid is an error for a non-positive session lifetime
	ErrSessionDaysInvalid = errors.New("Invalid SessionDays")
)

// DefaultDBPath returns the default path to the database file
func DefaultDBPath() string {
	return filepath.Join(dirs.DataHome, DefaultDBDir, DefaultDBFilename)
}

func readBoolEnv(name string) bool {
	return os.Getenv(name) == "true"
}

// getOrEnv returns value if non-empty, otherwise env var, otherwise default
func getOrEnv(value, envKey, defaultVal string) string {
	if value != "" {
		return value
	}
	if env := os.Getenv(envKey); env != "" {
		return env
	}
	return defaultVal
}

// LoadEnv reads environment variables from the dotenv file at the given path
// without overriding the ones already set. A missing file is not an error.
func LoadEnv(path string) error {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil
	}

	if err := godotenv.Load(path); err != nil {
		return errors.Wrapf(err, "loading %s", path)
	}

	return nil
}

// Config is an application configuration
type Config struct {
	AppEnv              string
	DisableRegistration bool
	Port                string
	DBPath              string
	DBURL               string
	LogLevel            string
	SessionDays         int
}

// Params are the configuration parameters for creating a new Config
type Params struct {
	AppEnv              string
	Port                string
	DBPath              string
	DBURL               string
	DisableRegistration bool
	LogLevel            string
	SessionDays         int
}

// New constructs and returns a new validated config.
// Empty params fall back to environment variables and defaults.
func New(p Params) (Config, error) {
	c := Config{
		AppEnv:              getOrEnv(p.AppEnv, "APP_ENV", AppEnvProduction),
		Port:                getOrEnv(p.Port, "PORT", "3001"),
		DBPath:              getOrEnv(p.DBPath, "DBPath", DefaultDBPath()),
		DBURL:               getOrEnv(p.DBURL, "DBURL", ""),
		DisableRegistration: p.DisableRegistration || readBoolEnv("DisableRegistration"),
		LogLevel:            getOrEnv(p.LogLevel, "LOG_LEVEL", "info"),
		SessionDays:         p.SessionDays,
	}

	if c.SessionDays == 0 {
		days, err := strconv.Atoi(getOrEnv("", "SESSION_DAYS", strconv.Itoa(DefaultSessionDays)))
		if err != nil {
			return Config{}, errors.Wrap(ErrSessionDaysInvalid, "parsing SESSION_DAYS")
		}
		c.SessionDays = days
	}

	if err := validate(c); err != nil {
		return Config{}, err
	}

	return c, nil
}

// IsProd checks if the app environment is configured to be production.
func (c Config) IsProd() bool {
	return c.AppEnv == AppEnvProduction
}

// DBSource returns the postgres URL if one is configured, and the sqlite
// file path otherwise
func (c Config) DBSource() string {
	if c.DBURL != "" {
		return c.DBURL
	}

	return c.DBPath
}

func validate(c Config) error {
	if c.Port == "" {
		return ErrPortInvalid
	}
	if _, err := strconv.Atoi(c.Port); err != nil {
		return errors.Wrapf(ErrPortInvalid, "'%s'", c.Port)
	}
	if c.DBPath == "" && c.DBURL == "" {
		return ErrDBMissingPath
	}
	if c.SessionDays <= 0 {
		return ErrSessionDaysInvalid
	}

	return nil
}
