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

// Package validate checks and normalizes note fields typed on the command line
package validate

import (
	"strings"
	"time"

	"github.com/araddon/dateparse"
	"github.com/pkg/errors"
)

// maxCategoryLen is the longest category name accepted
const maxCategoryLen = 32

var (
	// ErrTitleEmpty is an error for an empty title
	ErrTitleEmpty = errors.New("The title is empty")
	// ErrTitleMultiline is an error for a title that has linebreaks
	ErrTitleMultiline = errors.New("The title contains multiple lines")
	// ErrCategoryHasSpace is an error for a category that has any space
	ErrCategoryHasSpace = errors.New("The category cannot contain spaces")
	// ErrCategoryTooLong is an error for a category longer than the limit
	ErrCategoryTooLong = errors.New("The category is too long")
	// ErrCategoryReserved is an error for a category used as a listing keyword
	ErrCategoryReserved = errors.New("The category name is reserved")
	// ErrLatitudeRange is an error for a latitude outside [-90, 90]
	ErrLatitudeRange = errors.New("The latitude must be between -90 and 90")
	// ErrLongitudeRange is an error for a longitude outside [-180, 180]
	ErrLongitudeRange = errors.New("The longitude must be between -180 and 180")
)

// Title validates a note title
func Title(title string) error {
	if strings.TrimSpace(title) == "" {
		return ErrTitleEmpty
	}

	if strings.ContainsAny(title, "\r\n") {
		return ErrTitleMultiline
	}

	return nil
}

// Category validates a category name. An empty category is valid and means
// the default one.
func Category(name string) error {
	if name == "all" {
		return ErrCategoryReserved
	}

	if strings.ContainsAny(name, " \t\r\n") {
		return ErrCategoryHasSpace
	}

	if len([]rune(name)) > maxCategoryLen {
		return ErrCategoryTooLong
	}

	return nil
}

// Coordinates validates a latitude and longitude pair
func Coordinates(lat, lng float64) error {
	if lat < -90 || lat > 90 {
		return ErrLatitudeRange
	}
	if lng < -180 || lng > 180 {
		return ErrLongitudeRange
	}

	return nil
}

// DueDate parses a loosely formatted date such as "2025-06-30",
// "June 30 2025 5pm" or "06/30/2025" in loc and returns it in RFC 3339.
// An empty input returns an empty string.
func DueDate(input string, loc *time.Location) (string, error) {
	input = strings.TrimSpace(input)
	if input == "" {
		return "", nil
	}

	t, err := dateparse.ParseIn(input, loc)
	if err != nil {
		return "", errors.Wrapf(err, "parsing due date '%s'", input)
	}

	return t.Format(time.RFC3339), nil
}
