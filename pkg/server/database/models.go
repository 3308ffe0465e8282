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

import (
	"time"
)

// Model is the base model definition
type Model struct {
	ID        int       `gorm:"primaryKey" json:"-"`
	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt time.Time `json:"updated_at" gorm:"autoUpdateTime"`
}

// User is a model for a user
type User struct {
	Model
	UUID        string `gorm:"uniqueIndex;type:text"`
	Email       string `gorm:"uniqueIndex"`
	Password    string `json:"-"`
	LastLoginAt *time.Time
}

// Session is a model for a session
type Session struct {
	Model
	UserID     int    `gorm:"index"`
	Key        string `gorm:"uniqueIndex"`
	LastUsedAt time.Time
	ExpiresAt  time.Time
}

// Note is a model for a note. AddedAt and EditedAt are the note's own
// timestamps as reported by the client, which may differ from the times the
// row was written.
type Note struct {
	Model
	UUID        string `gorm:"uniqueIndex;type:text"`
	UserID      int    `gorm:"index"`
	User        User
	Title       string
	Content     string
	Category    string `gorm:"index"`
	DueDate     *string
	Latitude    *float64
	Longitude   *float64
	ImageURI    string
	IsCompleted bool
	AddedAt     time.Time `gorm:"index"`
	EditedAt    time.Time
}
