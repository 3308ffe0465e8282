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

package assert

import (
	"bufio"
	"io"
	"strings"
	"time"

	"github.com/pkg/errors"
)

// scanFor reads r byte by byte until the text appears. Prompts are not
// newline terminated, so the input cannot be read by lines.
func scanFor(r io.Reader, text string) error {
	reader := bufio.NewReader(r)
	var buffer strings.Builder

	for {
		b, err := reader.ReadByte()
		if err == io.EOF {
			return errors.Errorf("expected prompt '%s' not found in stdout", text)
		} else if err != nil {
			return errors.Wrap(err, "reading stdout")
		}

		buffer.WriteByte(b)
		if strings.HasSuffix(buffer.String(), text) {
			return nil
		}
	}
}

// WaitForPrompt waits for an expected prompt to appear in stdout with a timeout.
func WaitForPrompt(stdout io.Reader, expectedPrompt string, timeout time.Duration) error {
	errCh := make(chan error, 1)

	go func() {
		errCh <- scanFor(stdout, expectedPrompt)
	}()

	select {
	case err := <-errCh:
		return err
	case <-time.After(timeout):
		return errors.Errorf("timeout waiting for prompt '%s'", expectedPrompt)
	}
}

// RespondToPrompt waits for a prompt and writes the response to stdin
func RespondToPrompt(stdout io.Reader, stdin io.WriteCloser, expectedPrompt, response string, timeout time.Duration) error {
	if err := WaitForPrompt(stdout, expectedPrompt, timeout); err != nil {
		return err
	}

	if _, err := io.WriteString(stdin, response); err != nil {
		return errors.Wrap(err, "writing response to stdin")
	}

	return nil
}
