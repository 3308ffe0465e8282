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
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/dnote/notesync/pkg/assert"
	"github.com/pkg/errors"
)

func TestValidate(t *testing.T) {
	testCases := []struct {
		config      Config
		expectedErr error
	}{
		{
			config: Config{
				DBPath:      "test.db",
				Port:        "3000",
				SessionDays: 1,
			},
			expectedErr: nil,
		},
		{
			config: Config{
				DBURL:       "postgres://localhost/notesync",
				Port:        "3000",
				SessionDays: 1,
			},
			expectedErr: nil,
		},
		{
			config: Config{
				Port:        "3000",
				SessionDays: 1,
			},
			expectedErr: ErrDBMissingPath,
		},
		{
			config: Config{
				DBPath:      "test.db",
				SessionDays: 1,
			},
			expectedErr: ErrPortInvalid,
		},
		{
			config: Config{
				DBPath:      "test.db",
				Port:        "abc",
				SessionDays: 1,
			},
			expectedErr: ErrPortInvalid,
		},
		{
			config: Config{
				DBPath: "test.db",
				Port:   "3000",
			},
			expectedErr: ErrSessionDaysInvalid,
		},
	}

	for idx, tc := range testCases {
		t.Run(fmt.Sprintf("test case %d", idx), func(t *testing.T) {
			err := validate(tc.config)

			assert.Equal(t, errors.Cause(err), tc.expectedErr, "error mismatch")
		})
	}
}

func TestNew_precedence(t *testing.T) {
	t.Setenv("PORT", "4000")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("DBURL", "")
	t.Setenv("SESSION_DAYS", "")

	c, err := New(Params{Port: "5000", DBPath: "/tmp/server.db"})
	if err != nil {
		t.Fatal(errors.Wrap(err, "creating config"))
	}

	assert.Equal(t, c.Port, "5000", "param should win over env")
	assert.Equal(t, c.LogLevel, "debug", "env should win over default")
	assert.Equal(t, c.SessionDays, DefaultSessionDays, "SessionDays mismatch")
	assert.Equal(t, c.DBSource(), "/tmp/server.db", "DBSource mismatch")
}

func TestNew_dbURL(t *testing.T) {
	t.Setenv("DBURL", "postgres://localhost/notesync")

	c, err := New(Params{Port: "3001"})
	if err != nil {
		t.Fatal(errors.Wrap(err, "creating config"))
	}

	assert.Equal(t, c.DBSource(), "postgres://localhost/notesync", "DBSource mismatch")
}

func TestLoadEnv(t *testing.T) {
	t.Run("missing file", func(t *testing.T) {
		err := LoadEnv(filepath.Join(t.TempDir(), ".env"))
		assert.Equal(t, err, nil, "error mismatch")
	})

	t.Run("existing file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), ".env")
		if err := os.WriteFile(path, []byte("NOTESYNC_TEST_VALUE=from-file\n"), 0644); err != nil {
			t.Fatal(errors.Wrap(err, "writing env file"))
		}
		t.Setenv("NOTESYNC_TEST_VALUE", "")
		os.Unsetenv("NOTESYNC_TEST_VALUE")

		if err := LoadEnv(path); err != nil {
			t.Fatal(errors.Wrap(err, "loading env"))
		}

		assert.Equal(t, os.Getenv("NOTESYNC_TEST_VALUE"), "from-file", "value mismatch")
	})
}
