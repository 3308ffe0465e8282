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

package add

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
	"github.com/dnote/notesync/pkg/cli/upgrade"
	"github.com/dnote/notesync/pkg/cli/validate"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

var contentFlag string
var categoryFlag string
var dueFlag string
var latFlag float64
var lngFlag float64
var imageFlag string

var example = `
 * Open an editor to write content
 notesync add "Groceries"

 * Skip the editor by providing content directly
 notesync add "Groceries" -c "milk, eggs" --category home

 * Set a due date and a location
 notesync add "Dentist" --due "2025-06-30 15:00" --lat 37.56 --lng 126.97

 * Send stdin content to a note
 echo "call back before noon" | notesync add "Plumber"`

func preRun(cmd *cobra.Command, args []string) error {
	if len(args) != 1 {
		return errors.New("Incorrect number of argument")
	}

	return nil
}

// NewCmd returns a new add command
func NewCmd(ctx context.NotesyncCtx) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "add <title>",
		Short:   "Add a new note",
		Aliases: []string{"a", "n", "new"},
		Example: example,
		PreRunE: preRun,
		RunE:    newRun(ctx),
	}

	f := cmd.Flags()
	f.StringVarP(&contentFlag, "content", "c", "", "The content for the note")
	f.StringVar(&categoryFlag, "category", "", "The category of the note")
	f.StringVar(&dueFlag, "due", "", "The due date of the note, e.g. 2025-06-30 or \"June 30 5pm\"")
	f.Float64Var(&latFlag, "lat", 0, "The latitude of the place the note is about")
	f.Float64Var(&lngFlag, "lng", 0, "The longitude of the place the note is about")
	f.StringVar(&imageFlag, "image", "", "A reference to an image attached to the note")

	return cmd
}

func getContent(ctx context.NotesyncCtx) (string, error) {
	if contentFlag != "" {
		return contentFlag, nil
	}

	// check for piped content
	fInfo, _ := os.Stdin.Stat()
	if fInfo.Mode()&os.ModeCharDevice == 0 {
		c, err := ui.ReadStdInput()
		if err != nil {
			return "", errors.Wrap(err, "Failed to get piped input")
		}
		return c, nil
	}

	fpath, err := ui.GetTmpContentPath(ctx)
	if err != nil {
		return "", errors.Wrap(err, "getting temporarily content file path")
	}

	c, err := ui.GetEditorInput(ctx, fpath, "")
	if err != nil {
		return "", errors.Wrap(err, "Failed to get editor input")
	}

	return c, nil
}

func buildParams(cmd *cobra.Command, title, content string) (database.NoteParams, error) {
	if err := validate.Title(title); err != nil {
		return database.NoteParams{}, errors.Wrap(err, "invalid title")
	}
	if err := validate.Category(categoryFlag); err != nil {
		return database.NoteParams{}, errors.Wrap(err, "invalid category")
	}

	p := database.NoteParams{
		Title:    title,
		Content:  content,
		Category: categoryFlag,
		ImageRef: imageFlag,
	}

	due, err := validate.DueDate(dueFlag, time.Local)
	if err != nil {
		return p, err
	}
	if due != "" {
		p.DueDate = &due
	}

	f := cmd.Flags()
	if f.Changed("lat") || f.Changed("lng") {
		if !f.Changed("lat") || !f.Changed("lng") {
			return p, errors.New("--lat and --lng must be given together")
		}
		if err := validate.Coordinates(latFlag, lngFlag); err != nil {
			return p, err
		}

		lat, lng := latFlag, lngFlag
		p.Latitude = &lat
		p.Longitude = &lng
	}

	return p, nil
}

func newRun(ctx context.NotesyncCtx) infra.RunEFunc {
	return func(cmd *cobra.Command, args []string) error {
		content, err := getContent(ctx)
		if err != nil {
			return errors.Wrap(err, "getting content")
		}

		p, err := buildParams(cmd, args[0], content)
		if err != nil {
			return err
		}

		n, err := ctx.Store.Create(p, ctx.UserID)
		if err != nil {
			return errors.Wrap(err, "Failed to write note")
		}

		log.Successf("added %s\n", n.ID)
		output.NoteInfo(os.Stdout, n)

		sync.AfterEdit(ctx, "add")

		if err := upgrade.Check(ctx); err != nil {
			log.Error(errors.Wrap(err, "automatically checking updates").Error())
		}

		return nil
	}
}
