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

package cmd

import (
	"fmt"
	"io"

	"github.com/dnote/notesync/pkg/prompt"
	"github.com/dnote/notesync/pkg/server/app"
	"github.com/pkg/errors"
)

const dbPathUsage = "Path to SQLite database file (env: DBPath, default: $XDG_DATA_HOME/notesync/server.db)"
const dbURLUsage = "Postgres connection URL. Takes precedence over dbPath (env: DBURL)"

// confirm prompts for user input to confirm a choice
func confirm(r io.Reader, question string, optimistic bool) (bool, error) {
	message := prompt.FormatQuestion(question, optimistic)
	fmt.Print(message + " ")

	confirmed, err := prompt.ReadYesNo(r, optimistic)
	if err != nil {
		return false, errors.Wrap(err, "reading stdin")
	}

	return confirmed, nil
}

func userCreateCmd(args []string) error {
	fs := setupFlagSet("create", "notesync-server user create")

	email := fs.String("email", "", "User email address (required)")
	password := fs.String("password", "", "User password (required)")
	dbPath := fs.String("dbPath", "", dbPathUsage)
	dbURL := fs.String("dbURL", "", dbURLUsage)

	if err := fs.Parse(args); err != nil {
		return err
	}
	if err := requireString(fs, *email, "email"); err != nil {
		return err
	}
	if err := requireString(fs, *password, "password"); err != nil {
		return err
	}

	a, cleanup, err := setupAppWithDB(fs, *dbPath, *dbURL)
	if err != nil {
		return err
	}
	defer cleanup()

	user, err := a.CreateUser(*email, *password)
	if err != nil {
		return errors.Wrap(err, "creating user")
	}

	fmt.Printf("User created successfully\n")
	fmt.Printf("Email: %s\n", user.Email)
	fmt.Printf("ID: %s\n", user.UUID)

	return nil
}

func userRemoveCmd(args []string, stdin io.Reader) error {
	fs := setupFlagSet("remove", "notesync-server user remove")

	email := fs.String("email", "", "User email address (required)")
	dbPath := fs.String("dbPath", "", dbPathUsage)
	dbURL := fs.String("dbURL", "", dbURLUsage)

	if err := fs.Parse(args); err != nil {
		return err
	}
	if err := requireString(fs, *email, "email"); err != nil {
		return err
	}

	a, cleanup, err := setupAppWithDB(fs, *dbPath, *dbURL)
	if err != nil {
		return err
	}
	defer cleanup()

	if _, err := a.GetUserByEmail(*email); err != nil {
		if errors.Is(err, app.ErrNotFound) {
			return errors.Errorf("user with email %s not found", *email)
		}
		return errors.Wrap(err, "finding user")
	}

	ok, err := confirm(stdin, fmt.Sprintf("Remove user %s?", *email), false)
	if err != nil {
		return errors.Wrap(err, "getting confirmation")
	}
	if !ok {
		fmt.Println("Aborted by user")
		return nil
	}

	if err := a.RemoveUser(*email); err != nil {
		return errors.Wrap(err, "removing user")
	}

	fmt.Printf("User removed successfully\n")
	fmt.Printf("Email: %s\n", *email)

	return nil
}

func userResetPasswordCmd(args []string) error {
	fs := setupFlagSet("reset-password", "notesync-server user reset-password")

	email := fs.String("email", "", "User email address (required)")
	password := fs.String("password", "", "New password (required)")
	dbPath := fs.String("dbPath", "", dbPathUsage)
	dbURL := fs.String("dbURL", "", dbURLUsage)

	if err := fs.Parse(args); err != nil {
		return err
	}
	if err := requireString(fs, *email, "email"); err != nil {
		return err
	}
	if err := requireString(fs, *password, "password"); err != nil {
		return err
	}

	a, cleanup, err := setupAppWithDB(fs, *dbPath, *dbURL)
	if err != nil {
		return err
	}
	defer cleanup()

	user, err := a.GetUserByEmail(*email)
	if err != nil {
		if errors.Is(err, app.ErrNotFound) {
			return errors.Errorf("user with email %s not found", *email)
		}
		return errors.Wrap(err, "finding user")
	}

	if err := a.UpdateUserPassword(user, *password); err != nil {
		return errors.Wrap(err, "updating password")
	}

	fmt.Printf("Password reset successfully\n")
	fmt.Printf("Email: %s\n", user.Email)

	return nil
}

const userUsage = `Available commands:
  create: Create a new user
  remove: Remove a user (only if they have no notes)
  reset-password: Reset a user's password and sign out their sessions`

func userCmd(args []string, stdin io.Reader) error {
	if len(args) < 1 {
		fmt.Printf("Usage:\n  notesync-server user [command]\n\n%s\n", userUsage)
		return errors.New("missing subcommand")
	}

	subcommand := args[0]
	subArgs := args[1:]

	switch subcommand {
	case "create":
		return userCreateCmd(subArgs)
	case "remove":
		return userRemoveCmd(subArgs, stdin)
	case "reset-password":
		return userResetPasswordCmd(subArgs)
	default:
		fmt.Println(userUsage)
		return errors.Errorf("unknown subcommand: %s", subcommand)
	}
}
