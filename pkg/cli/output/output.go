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

// Package output provides functions to print informations on the terminal
// in a consistent manner
package output

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/dnote/notesync/pkg/cli/database"
	"github.com/dnote/notesync/pkg/cli/engine"
	"github.com/dnote/notesync/pkg/cli/utils"
	"github.com/dnote/notesync/pkg/cli/utils/diff"
	"github.com/fatih/color"
)

const timeLayout = "Jan 2, 2006 3:04pm (MST)"

// excerptLen is the number of characters of a title shown in a listing
const excerptLen = 50

var (
	dim     = color.New(color.FgHiBlack)
	yellow  = color.New(color.FgYellow)
	green   = color.New(color.FgGreen)
	red     = color.New(color.FgRed)
	heading = color.New(color.Bold)
)

func formatMillis(ms int64) string {
	return time.UnixMilli(ms).Local().Format(timeLayout)
}

func statusMark(n database.Note) string {
	if n.SyncStatus == database.StatusSynced {
		return " "
	}

	return "*"
}

// NoteList prints one line per note in the given order. Notes with unpushed
// changes are marked with an asterisk.
func NoteList(w io.Writer, notes []database.Note) {
	for _, n := range notes {
		done := " "
		if n.IsCompleted {
			done = "x"
		}

		fmt.Fprintf(w, "%s[%s] %s %s %s\n",
			yellow.Sprint(statusMark(n)),
			done,
			dim.Sprintf("(%s)", n.ID),
			utils.Excerpt(n.Title, excerptLen),
			dim.Sprintf("#%s", n.Category),
		)
	}
}

// NoteInfo prints a note information
func NoteInfo(w io.Writer, n database.Note) {
	fmt.Fprintf(w, "%s\n", heading.Sprint(n.Title))
	fmt.Fprintf(w, "id: %s (%s)\n", n.ID, n.Origin)
	fmt.Fprintf(w, "category: %s\n", n.Category)
	if n.DueDate != nil {
		fmt.Fprintf(w, "due: %s\n", *n.DueDate)
	}
	if n.Latitude != nil && n.Longitude != nil {
		fmt.Fprintf(w, "location: %.5f, %.5f\n", *n.Latitude, *n.Longitude)
	}
	if n.ImageRef != "" {
		fmt.Fprintf(w, "image: %s\n", n.ImageRef)
	}
	fmt.Fprintf(w, "completed: %t\n", n.IsCompleted)
	fmt.Fprintf(w, "created at: %s\n", formatMillis(n.CreatedAt))
	if n.UpdatedAt != n.CreatedAt {
		fmt.Fprintf(w, "updated at: %s\n", formatMillis(n.UpdatedAt))
	}
	fmt.Fprintf(w, "sync status: %s\n", n.SyncStatus)

	fmt.Fprintf(w, "\n------------------------content------------------------\n")
	fmt.Fprintf(w, "%s", n.Content)
	fmt.Fprintf(w, "\n-------------------------------------------------------\n")
}

func writeDiff(w io.Writer, local, remote string) {
	for _, d := range diff.Do(remote, local) {
		lines := strings.Split(strings.TrimSuffix(d.Text, "\n"), "\n")

		for _, line := range lines {
			switch d.Type {
			case diff.DiffInsert:
				green.Fprintf(w, "+ %s\n", line)
			case diff.DiffDelete:
				red.Fprintf(w, "- %s\n", line)
			default:
				fmt.Fprintf(w, "  %s\n", line)
			}
		}
	}
}

// Conflict prints both versions of a conflicting note. Lines only in the
// remote version are prefixed with '-' and lines only in the local version
// with '+'.
func Conflict(w io.Writer, c engine.Conflict) {
	fmt.Fprintf(w, "%s %s\n", heading.Sprint("conflict:"), c.ID)
	fmt.Fprintf(w, "local edited at:  %s\n", formatMillis(c.Local.UpdatedAt))
	fmt.Fprintf(w, "remote edited at: %s\n", formatMillis(c.Remote.UpdatedAt))

	if c.Local.Title != c.Remote.Title {
		fmt.Fprintf(w, "\ntitle\n")
		red.Fprintf(w, "- %s\n", c.Remote.Title)
		green.Fprintf(w, "+ %s\n", c.Local.Title)
	}

	if diffs := diff.Do(c.Remote.Content, c.Local.Content); diff.Changed(diffs) {
		fmt.Fprintf(w, "\ncontent\n")
		writeDiff(w, c.Local.Content, c.Remote.Content)
	}
}

// SyncResult prints a summary of a sync run
func SyncResult(w io.Writer, res engine.Result) {
	if res.Skipped {
		fmt.Fprintf(w, "sync skipped: %s\n", res.SkipReason)
		return
	}

	if res.Migrated > 0 {
		fmt.Fprintf(w, "migrated %d guest notes\n", res.Migrated)
	}
	fmt.Fprintf(w, "pushed %d, failed %d\n", len(res.Pushed), len(res.Failed))
	for _, f := range res.Failed {
		red.Fprintf(w, "  %s %s: %s\n", f.Op, f.NoteID, f.Err)
	}

	if res.PullSkipped {
		yellow.Fprintf(w, "pull skipped: %s\n", res.PullErr)
	} else {
		fmt.Fprintf(w, "pulled %d, pruned %d\n", res.Pulled, res.Pruned)
	}

	if n := len(res.Conflicts); n > 0 {
		yellow.Fprintf(w, "%d conflicts need to be resolved. Run 'notesync resolve'.\n", n)
	}
}

// Snapshot prints the state of the sync engine
func Snapshot(w io.Writer, s engine.Snapshot, pending int) {
	fmt.Fprintf(w, "status: %s\n", s.Status)
	fmt.Fprintf(w, "pending changes: %d\n", pending)
	if s.Current != nil {
		fmt.Fprintf(w, "current conflict: %s (%d queued)\n", s.Current.ID, s.Queued)
	}
	if s.LastError != nil {
		red.Fprintf(w, "last error: %s\n", s.LastError)
	}
}
