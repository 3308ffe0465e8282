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

// Package dirs resolves the XDG base directories notesync keeps its
// configuration, database and lock files in.
package dirs

import (
	"os"
	"os/user"
	"path/filepath"

	"github.com/pkg/errors"
)

// The environment variable names for the XDG base directory specification
const (
	EnvConfigHome = "XDG_CONFIG_HOME"
	EnvDataHome   = "XDG_DATA_HOME"
	EnvCacheHome  = "XDG_CACHE_HOME"
)

// Dirs is a set of resolved base directories
type Dirs struct {
	Home   string
	Config string
	Data   string
	Cache  string
}

var (
	// Home is the home directory of the user
	Home string
	// ConfigHome is where user-specific configuration is written
	ConfigHome string
	// DataHome is where user-specific data files, such as the database, are written
	DataHome string
	// CacheHome is where non-essential cached data is written
	CacheHome string
)

func init() {
	Reload()
}

// Reload re-reads the environment and refreshes the package level directories
func Reload() {
	d := Resolve(os.Getenv, getHomeDir())

	Home = d.Home
	ConfigHome = d.Config
	DataHome = d.Data
	CacheHome = d.Cache
}

// Resolve computes the base directories for the given home directory,
// letting the XDG variables read through getenv take precedence.
func Resolve(getenv func(string) string, home string) Dirs {
	pick := func(envName string, fallback ...string) string {
		if v := getenv(envName); v != "" {
			return v
		}

		return filepath.Join(append([]string{home}, fallback...)...)
	}

	return Dirs{
		Home:   home,
		Config: pick(EnvConfigHome, ".config"),
		Data:   pick(EnvDataHome, ".local", "share"),
		Cache:  pick(EnvCacheHome, ".cache"),
	}
}

func getHomeDir() string {
	if home, err := os.UserHomeDir(); err == nil && home != "" {
		return home
	}

	usr, err := user.Current()
	if err != nil {
		panic(errors.Wrap(err, "getting home dir"))
	}

	return usr.HomeDir
}
