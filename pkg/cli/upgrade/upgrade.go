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

// Package upgrade checks for a newer notesync release
package upgrade

import (
	gocontext "context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/dnote/notesync/pkg/cli/consts"
	"github.com/dnote/notesync/pkg/cli/context"
	"github.com/dnote/notesync/pkg/cli/log"
	"github.com/google/go-github/github"
	"github.com/pkg/errors"
)

const (
	repoOwner = "dnote"
	repoName  = "notesync"
)

// upgradeInterval is the least amount of time between automatic checks
var upgradeInterval = 7 * 24 * time.Hour

// releaseGetter fetches the latest published release of a repository
type releaseGetter interface {
	GetLatestRelease(ctx gocontext.Context, owner, repo string) (*github.RepositoryRelease, *github.Response, error)
}

func newReleaseGetter(ctx context.NotesyncCtx) releaseGetter {
	return github.NewClient(ctx.HTTPClient).Repositories
}

// parseVersion reads a tag such as "v1.4.2" or "notesync-1.4.2" into its
// numeric parts
func parseVersion(tag string) ([]int, error) {
	if idx := strings.LastIndexAny(tag, "v-"); idx != -1 {
		tag = tag[idx+1:]
	}

	var ret []int
	for _, p := range strings.Split(tag, ".") {
		n, err := strconv.Atoi(p)
		if err != nil {
			return nil, errors.Errorf("invalid version '%s'", tag)
		}
		ret = append(ret, n)
	}

	return ret, nil
}

// isNewer returns true if the latest tag is a higher version than current
func isNewer(latest, current string) (bool, error) {
	l, err := parseVersion(latest)
	if err != nil {
		return false, err
	}
	c, err := parseVersion(current)
	if err != nil {
		return false, err
	}

	for i := 0; i < len(l) || i < len(c); i++ {
		var a, b int
		if i < len(l) {
			a = l[i]
		}
		if i < len(c) {
			b = c[i]
		}

		if a != b {
			return a > b, nil
		}
	}

	return false, nil
}

// Latest returns the tag of the latest release
func Latest(ctx gocontext.Context, rg releaseGetter) (string, error) {
	release, _, err := rg.GetLatestRelease(ctx, repoOwner, repoName)
	if err != nil {
		return "", errors.Wrap(err, "fetching the latest release")
	}

	return release.GetTagName(), nil
}

// shouldCheck returns true if the last check happened at least an interval ago
func shouldCheck(ctx context.NotesyncCtx) (bool, error) {
	if !ctx.EnableUpgradeCheck {
		return false, nil
	}

	val, err := ctx.Store.GetSystemString(consts.SystemLastUpgrade)
	if err != nil {
		return false, errors.Wrap(err, "getting the last upgrade check")
	}

	var lastUpgrade int64
	if val != "" {
		lastUpgrade, err = strconv.ParseInt(val, 10, 64)
		if err != nil {
			return false, errors.Wrap(err, "parsing the last upgrade check")
		}
	}

	now := ctx.Clock.Now()
	return now.Sub(time.Unix(lastUpgrade, 0)) >= upgradeInterval, nil
}

func check(ctx context.NotesyncCtx, rg releaseGetter) error {
	gctx, cancel := gocontext.WithTimeout(gocontext.Background(), 5*time.Second)
	defer cancel()

	latest, err := Latest(gctx, rg)
	if err != nil {
		return err
	}

	now := strconv.FormatInt(ctx.Clock.Now().Unix(), 10)
	if err := ctx.Store.SetSystem(consts.SystemLastUpgrade, now); err != nil {
		return errors.Wrap(err, "updating the last upgrade check")
	}

	newer, err := isNewer(latest, ctx.Version)
	if err != nil {
		log.Debug("comparing versions: %s\n", err)
		return nil
	}
	if newer {
		log.Infof("notesync %s is available. You are on %s.\n", latest, ctx.Version)
		log.Plain(fmt.Sprintf("See https://github.com/%s/%s/releases\n", repoOwner, repoName))
	}

	return nil
}

// Check looks for a newer release if the last check is old enough and
// prints a notice if one exists
func Check(ctx context.NotesyncCtx) error {
	ok, err := shouldCheck(ctx)
	if err != nil {
		return err
	}
	if !ok {
		return nil
	}

	return check(ctx, newReleaseGetter(ctx))
}

// CheckNow looks for a newer release regardless of when the last check happened
func CheckNow(ctx context.NotesyncCtx) error {
	return check(ctx, newReleaseGetter(ctx))
}
