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

package diff

import (
	"testing"

	"github.com/dnote/notesync/pkg/assert"
	"github.com/sergi/go-diff/diffmatchpatch"
)

func TestDo(t *testing.T) {
	diffs := Do("milk\neggs\n", "milk\nbread\n")

	expected := []diffmatchpatch.Diff{
		{Type: DiffEqual, Text: "milk\n"},
		{Type: DiffDelete, Text: "eggs\n"},
		{Type: DiffInsert, Text: "bread\n"},
	}

	assert.DeepEqual(t, diffs, expected, "diff mismatch")
	assert.Equal(t, Changed(diffs), true, "should be changed")
}

func TestChangedIdentical(t *testing.T) {
	assert.Equal(t, Changed(Do("same\n", "same\n")), false, "identical text should not be changed")
}
