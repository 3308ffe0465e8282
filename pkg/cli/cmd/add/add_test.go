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

package add

import (
	"testing"

	"github.com/dnote/notesync/pkg/assert"
	"github.com/dnote/notesync/pkg/cli/context"
	"github.com/dnote/notesync/pkg/cli/validate"
	"github.com/pkg/errors"
)

func resetFlags() {
	contentFlag = ""
	categoryFlag = ""
	dueFlag = ""
	latFlag = 0
	lngFlag = 0
	imageFlag = ""
}

func TestBuildParams(t *testing.T) {
	t.Run("all fields", func(t *testing.T) {
		defer resetFlags()

		cmd := NewCmd(context.InitTestCtx(t))
		if err := cmd.ParseFlags([]string{"--category", "home", "--due", "2025-06-30", "--lat", "37.5", "--lng", "127", "--image", "img-1"}); err != nil {
			t.Fatal(errors.Wrap(err, "parsing flags"))
		}

		p, err := buildParams(cmd, "Groceries", "milk")
		if err != nil {
			t.Fatal(errors.Wrap(err, "executing"))
		}

		assert.Equal(t, p.Title, "Groceries", "title mismatch")
		assert.Equal(t, p.Content, "milk", "content mismatch")
		assert.Equal(t, p.Category, "home", "category mismatch")
		assert.NotEqual(t, p.DueDate, (*string)(nil), "due date should be set")
		assert.Equal(t, *p.Latitude, 37.5, "latitude mismatch")
		assert.Equal(t, *p.Longitude, 127.0, "longitude mismatch")
		assert.Equal(t, p.ImageRef, "img-1", "image mismatch")
	})

	t.Run("no location", func(t *testing.T) {
		defer resetFlags()

		cmd := NewCmd(context.InitTestCtx(t))
		p, err := buildParams(cmd, "Groceries", "")
		if err != nil {
			t.Fatal(errors.Wrap(err, "executing"))
		}

		assert.Equal(t, p.Latitude, (*float64)(nil), "latitude should be nil")
		assert.Equal(t, p.DueDate, (*string)(nil), "due date should be nil")
	})

	t.Run("half a location", func(t *testing.T) {
		defer resetFlags()

		cmd := NewCmd(context.InitTestCtx(t))
		if err := cmd.ParseFlags([]string{"--lat", "37.5"}); err != nil {
			t.Fatal(errors.Wrap(err, "parsing flags"))
		}

		_, err := buildParams(cmd, "Groceries", "")
		assert.NotEqual(t, err, nil, "error should not be nil")
	})

	t.Run("empty title", func(t *testing.T) {
		defer resetFlags()

		cmd := NewCmd(context.InitTestCtx(t))
		_, err := buildParams(cmd, " ", "")
		assert.Equal(t, errors.Cause(err), validate.ErrTitleEmpty, "error mismatch")
	})
}
