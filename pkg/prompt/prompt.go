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

// Package prompt formats terminal questions and parses the answers typed back.
package prompt

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/pkg/errors"
)

// ErrInvalidChoice is returned when the answer matches none of the choices
var ErrInvalidChoice = errors.New("invalid choice")

// Choice is one answer to a multiple choice question
type Choice struct {
	Key   string
	Label string
}

// FormatQuestion formats a yes/no question with the appropriate choice indicator
func FormatQuestion(question string, optimistic bool) string {
	choices := "(y/N)"
	if optimistic {
		choices = "(Y/n)"
	}

	return fmt.Sprintf("%s %s", question, choices)
}

// FormatChoices formats a question followed by its keyed choices, e.g.
// "Keep which version? [l] local, [r] remote"
func FormatChoices(question string, choices []Choice) string {
	parts := make([]string, 0, len(choices))
	for _, c := range choices {
		parts = append(parts, fmt.Sprintf("[%s] %s", c.Key, c.Label))
	}

	return fmt.Sprintf("%s %s", question, strings.Join(parts, ", "))
}

func readLine(r io.Reader) (string, error) {
	reader := bufio.NewReader(r)
	input, err := reader.ReadString('\n')
	if err != nil && !(err == io.EOF && input != "") {
		return "", err
	}

	return strings.ToLower(strings.TrimSpace(input)), nil
}

// ReadYesNo reads and parses a yes/no response from the given reader.
// In optimistic mode, empty input is treated as confirmation.
func ReadYesNo(r io.Reader, optimistic bool) (bool, error) {
	input, err := readLine(r)
	if err != nil {
		return false, err
	}

	confirmed := input == "y" || input == "yes"
	if optimistic {
		confirmed = confirmed || input == ""
	}

	return confirmed, nil
}

// ReadChoice reads one line and returns the key of the matching choice
func ReadChoice(r io.Reader, choices []Choice) (string, error) {
	input, err := readLine(r)
	if err != nil {
		return "", err
	}

	for _, c := range choices {
		if input == strings.ToLower(c.Key) {
			return c.Key, nil
		}
	}

	return "", errors.Wrapf(ErrInvalidChoice, "'%s'", input)
}
