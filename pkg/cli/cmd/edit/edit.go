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

package edit

import (
	"os"
	"time"

	"github.com/dnote/notesync/pkg/cli/cmd/sync"
	"github.com/dnote/notesync/pkg/cli/context"
	"github.com/dnote/notesync/pkg/cli/database"
	"github.com/dnote/notesync/pkg/cli/infra"
	"github.com/dnote/notesync/pkg/cli/log"
	"github.com/dnote/notesync/pkg/cli/output"
	"github.com/dnote/notesync/pkg/cli/ui"
	"github.com/dnote/notesync/pkg/cli/validate"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

// dueNone clears the due date when given to --due
const dueNone = "none"

var titleFlag string
var contentFlag string
var categoryFlag string
var dueFlag string
var doneFlag bool
var undoneFlag bool

var example = `
  * Edit a note by id in an editor
  notesync edit 0b4f..

  * Edit a note without launching an editor
  notesync edit 0b4f.. -t "Groceries" -c "milk, eggs"

  * Mark a note as done
  notesync edit 0b4f.. --done

  * Clear the due date
  notesync edit 0b4f.. --due none
`

// NewCmd returns a new edit command
func NewCmd(ctx context.NotesyncCtx) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "edit <note id>",
		Short:   "Edit a note",
		Aliases: []string{"e"},
		Example: example,
		PreRunE: preRun,
		RunE:    newRun(ctx),
	}

	f := cmd.Flags()
	f.StringVarP(&titleFlag, "title", "t", "", "a new title for the note")
	f.StringVarP(&contentFlag, "content", "c", "", "a new content for the note")
	f.StringVar(&categoryFlag, "category", "", "a new category for the note")
	f.StringVar(&dueFlag, "due", "", "a new due date for the note, or 'none' to clear it")
	f.BoolVar(&doneFlag, "done", false, "mark the note as completed")
	f.BoolVar(&undoneFlag, "undone", false, "mark the note as not completed")

	return cmd
}

func preRun(cmd *cobra.Command, args []string) error {
	if len(args) != 1 {
		return errors.New("Incorrect number of argument")
	}
	if doneFlag && undoneFlag {
		return errors.New("--done and --undone cannot be used together")
	}

	return nil
}

// buildUpdate turns the given flags into a note update. It returns false if
// no flag was given.
func buildUpdate(cmd *cobra.Command) (database.NoteUpdate, bool, error) {
	var ret database.NoteUpdate
	f := cmd.Flags()

	if f.Changed("title") {
		if err := validate.Title(titleFlag); err != nil {
			return ret, false, errors.Wrap(err, "invalid title")
		}
		ret.Title = &titleFlag
	}
	if f.Changed("content") {
		ret.Content = &contentFlag
	}
	if f.Changed("category") {
		if err := validate.Category(categoryFlag); err != nil {
			return ret, false, errors.Wrap(err, "invalid category")
		}
		category := categoryFlag
		if category == "" {
			category = database.DefaultCategory
		}
		ret.Category = &category
	}
	if f.Changed("due") {
		var due string
		if dueFlag != dueNone {
			var err error
			due, err = validate.DueDate(dueFlag, time.Local)
			if err != nil {
				return ret, false, err
			}
		}
		ret.DueDate = &due
	}
	if doneFlag || undoneFlag {
		done := doneFlag
		ret.IsCompleted = &done
	}

	changed := ret.Title != nil || ret.Content != nil || ret.Category != nil ||
		ret.DueDate != nil || ret.IsCompleted != nil

	return ret, changed, nil
}

func editorUpdate(ctx context.NotesyncCtx, n database.Note) (database.NoteUpdate, error) {
	fpath, err := ui.GetTmpContentPath(ctx)
	if err != nil {
		return database.NoteUpdate{}, errors.Wrap(err, "getting temporarily content file path")
	}

	raw, err := ui.GetEditorInput(ctx, fpath, ui.FormatEditorInput(n.Title, n.Content))
	if err != nil {
		return database.NoteUpdate{}, errors.Wrap(err, "getting editor input")
	}

	title, content := ui.ParseEditorInput(raw)
	if err := validate.Title(title); err != nil {
		return database.NoteUpdate{}, errors.Wrap(err, "invalid title")
	}

	return database.NoteUpdate{Title: &title, Content: &content}, nil
}

func newRun(ctx context.NotesyncCtx) infra.RunEFunc {
	return func(cmd *cobra.Command, args []string) error {
		id := args[0]

		n, err := ctx.Store.Get(id)
		if err != nil {
			return errors.Wrap(err, "finding the note")
		}

		p, changed, err := buildUpdate(cmd)
		if err != nil {
			return err
		}
		if !changed {
			p, err = editorUpdate(ctx, n)
			if err != nil {
				return err
			}
			if *p.Title == n.Title && *p.Content == n.Content {
				log.Plain("Nothing changed\n")
				return nil
			}
		}

		updated, err := ctx.Store.Update(id, p)
		if err != nil {
			return errors.Wrap(err, "updating the note")
		}

		log.Success("edited the note\n")
		output.NoteInfo(os.Stdout, updated)

		sync.AfterEdit(ctx, "edit")

		return nil
	}
}
