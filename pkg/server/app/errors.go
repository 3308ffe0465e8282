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

package app

import (
	"github.com/pkg/errors"
)

var (
	// ErrNotFound is an error for a missing record
	ErrNotFound = errors.New("not found")
	// ErrForbidden is an error for accessing a resource of another user
	ErrForbidden = errors.New("forbidden")
	// ErrLoginInvalid is an error for wrong credentials
	ErrLoginInvalid = errors.New("wrong login credentials")
	// ErrDuplicateEmail is an error for registering an email that is taken
	ErrDuplicateEmail = errors.New("duplicate email")
	// ErrEmailRequired is an error for a missing email
	ErrEmailRequired = errors.New("email is required")
	// ErrPasswordRequired is an error for a missing password
	ErrPasswordRequired = errors.New("password is required")
	// ErrPasswordTooShort is an error for a password below the minimum length
	ErrPasswordTooShort = errors.New("password should be longer than 8 characters")
	// ErrRegistrationDisabled is an error for registering while registration is turned off
	ErrRegistrationDisabled = errors.New("registration is not allowed")
	// ErrEmptyTitle is an error for a note without a title
	ErrEmptyTitle = errors.New("title is required")
	// ErrUserHasExistingResources is an error for removing a user who still owns notes
	ErrUserHasExistingResources = errors.New("cannot remove user with existing notes")
)
