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

package ls

import (
	"os"

	"github.com/dnote/notesync/pkg/cli/context"
	"github.com/dnote/notesync/pkg/cli/database"
	"github.com/dnote/notesync/pkg/cli/infra"
	"github.com/dnote/notesync/pkg/cli/log"
	"github.com/dnote/notesync/pkg/cli/output"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

var categoryFlag string
var searchFlag string

var example = `
 * List all notes, most recently edited first
 notesync ls

 * List notes of a category
 notesync ls --category work

 * Search titles and contents
 notesync ls --search milk
 `

// NewCmd returns a new ls command
func NewCmd(ctx context.NotesyncCtx) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "ls",
		Aliases: []string{"l", "notes"},
		Short:   "List notes",
		Example: example,
		RunE:    NewRun(ctx),
	}

	f := cmd.Flags()
	f.StringVar(&categoryFlag, "category", "", "only list notes of the category")
	f.StringVarP(&searchFlag, "search", "s", "", "only list notes whose title or content contains the text")

	return cmd
}

// NewRun returns a new run function for ls
func NewRun(ctx context.NotesyncCtx) infra.RunEFunc {
	return func(cmd *cobra.Command, args []string) error {
		notes, err := ctx.Store.Search(ctx.UserID, database.Filter{
			Category: categoryFlag,
			Query:    searchFlag,
		})
		if err != nil {
			return errors.Wrap(err, "listing notes")
		}

		if len(notes) == 0 {
			log.Plain("no notes\n")
			return nil
		}

		output.NoteList(os.Stdout, notes)

		return nil
	}
}
