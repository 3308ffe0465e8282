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

package login

import (
	gocontext "context"
	"net/url"
	"os"
	"strings"

	"github.com/dnote/notesync/pkg/cli/client"
	"github.com/dnote/notesync/pkg/cli/context"
	"github.com/dnote/notesync/pkg/cli/engine"
	"github.com/dnote/notesync/pkg/cli/infra"
	"github.com/dnote/notesync/pkg/cli/log"
	"github.com/dnote/notesync/pkg/cli/output"
	"github.com/dnote/notesync/pkg/cli/ui"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

var example = `
  notesync login

  * Create an account
  notesync login --register`

var emailFlag string
var passwordFlag string
var registerFlag bool
var apiEndpointFlag string

// NewCmd returns a new login command
func NewCmd(ctx context.NotesyncCtx) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "login",
		Short:   "Login to the server and sync notes written as a guest",
		Example: example,
		RunE:    newRun(ctx),
	}

	f := cmd.Flags()
	f.StringVarP(&emailFlag, "email", "u", "", "email address for authentication")
	f.StringVarP(&passwordFlag, "password", "p", "", "password for authentication")
	f.BoolVar(&registerFlag, "register", false, "create an account instead of signing in")
	f.StringVar(&apiEndpointFlag, "apiEndpoint", "", "API endpoint to connect to (defaults to value in config)")

	return cmd
}

// Do signs in, persists the session and hands the guest notes to the user.
// It returns the context carrying the new session.
func Do(gctx gocontext.Context, ctx context.NotesyncCtx, email, password string, register bool) (context.NotesyncCtx, engine.Result, error) {
	unlock, err := infra.Lock(ctx)
	if err != nil {
		return ctx, engine.Result{}, err
	}
	defer unlock()

	var resp client.SigninResponse
	if register {
		resp, err = client.Register(ctx, email, password)
	} else {
		resp, err = client.Signin(ctx, email, password)
	}
	if err != nil {
		return ctx, engine.Result{}, errors.Wrap(err, "requesting session")
	}
	if resp.UserID == "" {
		return ctx, engine.Result{}, errors.New("the server did not return a user id")
	}

	if err := infra.SaveSession(ctx, resp.Key, resp.ExpiresAt, resp.UserID); err != nil {
		return ctx, engine.Result{}, errors.Wrap(err, "saving session")
	}

	// the engine still sees the previous owner so that the login is observed
	// as a transition
	prevCtx := ctx
	prevCtx.SessionKey = resp.Key
	prevCtx.SessionKeyExpiry = resp.ExpiresAt
	e := infra.NewEngine(prevCtx)

	ctx = prevCtx
	ctx.UserID = resp.UserID

	res, err := e.MigrateGuestNotes(gctx, resp.UserID)
	if err != nil {
		return ctx, res, errors.Wrap(err, "syncing guest notes")
	}

	return ctx, res, nil
}

func getUsername() (string, error) {
	if emailFlag != "" {
		return emailFlag, nil
	}

	var email string
	if err := ui.PromptInput("email", &email); err != nil {
		return "", errors.Wrap(err, "getting email input")
	}
	if email == "" {
		return "", errors.New("Email is empty")
	}

	return email, nil
}

func getPassword() (string, error) {
	if passwordFlag != "" {
		return passwordFlag, nil
	}

	var password string
	if err := ui.PromptPassword("password", &password); err != nil {
		return "", errors.Wrap(err, "getting password input")
	}
	if password == "" {
		return "", errors.New("Password is empty")
	}

	return password, nil
}

func getServerDisplayURL(ctx context.NotesyncCtx) string {
	u, err := url.Parse(ctx.APIEndpoint)
	if err != nil {
		return ""
	}
	if u.Scheme == "" || u.Host == "" {
		return ""
	}

	return u.Scheme + "://" + u.Host
}

func newRun(ctx context.NotesyncCtx) infra.RunEFunc {
	return func(cmd *cobra.Command, args []string) error {
		if apiEndpointFlag != "" {
			ctx.APIEndpoint = strings.TrimSuffix(apiEndpointFlag, "/")
		}

		if display := getServerDisplayURL(ctx); display != "" {
			log.Plain(log.ColorYellow.Sprintf("Logging in to %s\n", display))
		}

		email, err := getUsername()
		if err != nil {
			return errors.Wrap(err, "getting email")
		}
		password, err := getPassword()
		if err != nil {
			return errors.Wrap(err, "getting password")
		}

		_, res, err := Do(cmd.Context(), ctx, email, password, registerFlag)
		if errors.Cause(err) == client.ErrInvalidLogin {
			log.Error("wrong login\n")
			return nil
		} else if err != nil {
			return errors.Wrap(err, "logging in")
		}

		log.Success("logged in\n")
		if !res.Skipped {
			output.SyncResult(os.Stdout, res)
		}

		return nil
	}
}
