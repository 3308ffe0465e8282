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

package status

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"github.com/dnote/notesync/pkg/cli/consts"
	"github.com/dnote/notesync/pkg/cli/context"
	"github.com/dnote/notesync/pkg/cli/infra"
	"github.com/dnote/notesync/pkg/cli/output"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

// NewCmd returns a new status command
func NewCmd(ctx context.NotesyncCtx) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show the login and sync state",
		RunE:  newRun(ctx),
	}

	return cmd
}

// Print writes the login and sync state
func Print(w io.Writer, ctx context.NotesyncCtx) error {
	if ctx.LoggedIn() {
		fmt.Fprintf(w, "logged in as: %s\n", ctx.UserID)
	} else {
		fmt.Fprintf(w, "not logged in. notes are kept on this device only\n")
	}

	pending, err := ctx.Store.CountPending(ctx.UserID)
	if err != nil {
		return errors.Wrap(err, "counting pending notes")
	}

	e := infra.NewEngine(ctx)
	output.Snapshot(w, e.Status(), pending)

	lastSync, err := ctx.Store.GetSystemString(consts.SystemLastSyncAt)
	if err != nil {
		return errors.Wrap(err, "getting last sync time")
	}
	if ts, err := strconv.ParseInt(lastSync, 10, 64); err == nil && ts > 0 {
		fmt.Fprintf(w, "last synced: %s\n", time.Unix(ts, 0).Local().Format(time.RFC1123))
	} else {
		fmt.Fprintf(w, "last synced: never\n")
	}

	lastErr, err := ctx.Store.GetSystemString(consts.SystemLastSyncError)
	if err != nil {
		return errors.Wrap(err, "getting last sync error")
	}
	if lastErr != "" {
		fmt.Fprintf(w, "last sync error: %s\n", lastErr)
	}

	return nil
}

func newRun(ctx context.NotesyncCtx) infra.RunEFunc {
	return func(cmd *cobra.Command, args []string) error {
		return Print(os.Stdout, ctx)
	}
}
