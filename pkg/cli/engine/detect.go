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

package engine

import (
	"sort"

	"github.com/dnote/notesync/pkg/cli/database"
)

// ConflictTolerance is the largest gap, in milliseconds, between the two
// versions' update times that is still treated as one edit propagated
// with rounded timestamps
const ConflictTolerance int64 = 1000

// Detect reports whether the local and remote versions of a note diverged.
// Only the title and the content are compared.
func Detect(local, remote database.Note) *Conflict {
	if local.Title == remote.Title && local.Content == remote.Content {
		return nil
	}

	gap := local.UpdatedAt - remote.UpdatedAt
	if gap < 0 {
		gap = -gap
	}
	if gap <= ConflictTolerance {
		return nil
	}

	return &Conflict{
		ID:     remote.ID,
		Local:  local,
		Remote: remote,
	}
}

// detectAll pairs each remote note with the local note of the same id and
// returns the divergent pairs, oldest local edit first
func detectAll(locals, remotes []database.Note) []Conflict {
	byID := make(map[string]database.Note, len(locals))
	for _, n := range locals {
		byID[n.ID] = n
	}

	ret := []Conflict{}
	for _, r := range remotes {
		l, ok := byID[r.ID]
		if !ok {
			continue
		}

		if c := Detect(l, r); c != nil {
			ret = append(ret, *c)
		}
	}

	sort.SliceStable(ret, func(i, j int) bool {
		if ret[i].Local.UpdatedAt != ret[j].Local.UpdatedAt {
			return ret[i].Local.UpdatedAt < ret[j].Local.UpdatedAt
		}

		return ret[i].ID < ret[j].ID
	})

	return ret
}
