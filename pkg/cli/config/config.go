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

// Package config reads and writes the notesync configuration file
package config

import (
	"os"
	"path/filepath"

	"github.com/dnote/notesync/pkg/cli/consts"
	"github.com/dnote/notesync/pkg/cli/context"
	"github.com/dnote/notesync/pkg/cli/utils"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v2"
)

// Config holds notesync configuration
type Config struct {
	Editor             string `yaml:"editor"`
	APIEndpoint        string `yaml:"apiEndpoint"`
	EnableUpgradeCheck bool   `yaml:"enableUpgradeCheck"`
	// AutoSync runs an automatic sync after local edits
	AutoSync bool `yaml:"autoSync"`
	// SyncSchedule is the cron spec of the refresh in watch mode
	SyncSchedule string `yaml:"syncSchedule"`
}

// Default returns the configuration written on first run
func Default(editor string) Config {
	return Config{
		Editor:             editor,
		APIEndpoint:        consts.DefaultAPIEndpoint,
		EnableUpgradeCheck: true,
		AutoSync:           true,
		SyncSchedule:       consts.DefaultSyncSchedule,
	}
}

// GetPath returns the path to the notesync config file
func GetPath(ctx context.NotesyncCtx) string {
	return filepath.Join(ctx.Paths.Config, consts.NotesyncDirName, consts.ConfigFilename)
}

// Read reads the config file
func Read(ctx context.NotesyncCtx) (Config, error) {
	var ret Config

	configPath := GetPath(ctx)
	b, err := os.ReadFile(configPath)
	if err != nil {
		return ret, errors.Wrap(err, "reading config file")
	}

	err = yaml.Unmarshal(b, &ret)
	if err != nil {
		return ret, errors.Wrap(err, "unmarshalling config")
	}

	if ret.SyncSchedule == "" {
		ret.SyncSchedule = consts.DefaultSyncSchedule
	}

	return ret, nil
}

// Write writes the config to the config file
func Write(ctx context.NotesyncCtx, cf Config) error {
	path := GetPath(ctx)

	b, err := yaml.Marshal(cf)
	if err != nil {
		return errors.Wrap(err, "marshalling config into YAML")
	}

	if err := utils.WriteFileAtomic(path, b, 0644); err != nil {
		return errors.Wrap(err, "writing the config file")
	}

	return nil
}
