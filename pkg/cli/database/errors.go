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

package database

import "github.com/pkg/errors"

var (
	// ErrNoteNotFound is returned when no note has the requested id
	ErrNoteNotFound = errors.New("note not found")
	// ErrNoteDeleted is returned when editing a note that awaits remote deletion
	ErrNoteDeleted = errors.New("note is deleted")
	// ErrEmptyTitle is returned when a note would be saved without a title
	ErrEmptyTitle = errors.New("note title is empty")
)
