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

package resolve

import (
	gocontext "context"
	"os"
	"os/signal"
	"syscall"

	"github.com/dnote/notesync/pkg/cli/context"
	"github.com/dnote/notesync/pkg/cli/engine"
	"github.com/dnote/notesync/pkg/cli/infra"
	"github.com/dnote/notesync/pkg/cli/log"
	"github.com/dnote/notesync/pkg/cli/output"
	"github.com/dnote/notesync/pkg/cli/ui"
	"github.com/dnote/notesync/pkg/prompt"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

var allLocalFlag bool
var allRemoteFlag bool
var allBothFlag bool

var example = `
  * Sync and resolve each conflict interactively
  notesync resolve

  * Keep the local version of every conflicting note
  notesync resolve --all-local`

var choices = []prompt.Choice{
	{Key: "l", Label: "keep local"},
	{Key: "r", Label: "keep remote"},
	{Key: "b", Label: "keep both"},
	{Key: "q", Label: "quit"},
}

// errStopped is returned when the user leaves the remaining conflicts for later
var errStopped = errors.New("stopped resolving")

var actions = map[string]engine.Action{
	"l": engine.KeepLocal,
	"r": engine.KeepRemote,
	"b": engine.KeepBoth,
}

// chooser picks the action for a conflict
type chooser func(c engine.Conflict) (engine.Action, error)

// NewCmd returns a new resolve command
func NewCmd(ctx context.NotesyncCtx) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "resolve",
		Short:   "Sync and resolve conflicting edits",
		Example: example,
		PreRunE: preRun,
		RunE:    newRun(ctx),
	}

	f := cmd.Flags()
	f.BoolVar(&allLocalFlag, "all-local", false, "keep the local version of every conflicting note")
	f.BoolVar(&allRemoteFlag, "all-remote", false, "keep the remote version of every conflicting note")
	f.BoolVar(&allBothFlag, "all-both", false, "keep both versions of every conflicting note")

	return cmd
}

func preRun(cmd *cobra.Command, args []string) error {
	var n int
	for _, f := range []bool{allLocalFlag, allRemoteFlag, allBothFlag} {
		if f {
			n++
		}
	}
	if n > 1 {
		return errors.New("only one of --all-local, --all-remote and --all-both can be given")
	}

	return nil
}

func fixedChooser(a engine.Action) chooser {
	return func(c engine.Conflict) (engine.Action, error) {
		output.Conflict(os.Stdout, c)
		log.Infof("%s\n", a)

		return a, nil
	}
}

func interactiveChooser(c engine.Conflict) (engine.Action, error) {
	output.Conflict(os.Stdout, c)

	key, err := ui.Choose("which version to keep?", choices)
	if err != nil {
		return "", err
	}
	if key == "q" {
		return "", errStopped
	}

	return actions[key], nil
}

// getChooser returns the chooser for the given flags and whether a failed
// resolution should be offered again
func getChooser() (chooser, bool) {
	switch {
	case allLocalFlag:
		return fixedChooser(engine.KeepLocal), false
	case allRemoteFlag:
		return fixedChooser(engine.KeepRemote), false
	case allBothFlag:
		return fixedChooser(engine.KeepBoth), false
	default:
		return interactiveChooser, true
	}
}

// resolveAll resolves the queued conflicts head first until the queue is
// empty. A failed resolution leaves the conflict at the head of the queue.
// With retry the same conflict is offered again so that the user can repeat
// the action or pick another one. Otherwise it stops.
func resolveAll(gctx gocontext.Context, e *engine.Engine, choose chooser, retry bool) (engine.Result, error) {
	var res engine.Result

	for {
		queue := e.Conflicts()
		if len(queue) == 0 {
			return res, nil
		}
		c := queue[0]

		action, err := choose(c)
		if err == errStopped {
			return res, err
		}
		if err != nil {
			return res, errors.Wrap(err, "choosing an action")
		}

		res, err = e.ResolveConflict(gctx, c.ID, action)
		if err != nil {
			var rerr *engine.ResolutionError
			if retry && errors.As(err, &rerr) && gctx.Err() == nil {
				log.Errorf("%s failed for %s: %s\n", action, c.ID, rerr.Err)
				continue
			}

			return res, errors.Wrapf(err, "resolving %s", c.ID)
		}
		log.Successf("resolved %s\n", c.ID)
	}
}

func newRun(ctx context.NotesyncCtx) infra.RunEFunc {
	return func(cmd *cobra.Command, args []string) error {
		if !ctx.LoggedIn() {
			return errors.New("not logged in")
		}

		gctx, stop := signal.NotifyContext(gocontext.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		unlock, err := infra.Lock(ctx)
		if err != nil {
			return err
		}
		defer unlock()

		e := infra.NewEngine(ctx)

		res, err := e.Run(gctx, ctx.UserID)
		if err != nil {
			return errors.Wrap(err, "syncing")
		}
		if len(res.Conflicts) == 0 {
			output.SyncResult(os.Stdout, res)
			log.Success("no conflicts\n")
			return nil
		}

		log.Infof("%d conflicts\n", len(res.Conflicts))

		choose, retry := getChooser()
		res, err = resolveAll(gctx, e, choose, retry)
		if err == errStopped {
			log.Infof("%d conflicts left. run resolve again to continue\n", len(e.Conflicts()))
			return nil
		}
		if err != nil {
			return err
		}

		log.Successf("all conflicts resolved. %d notes\n", len(res.Notes))

		return nil
	}
}
