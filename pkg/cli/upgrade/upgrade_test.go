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

package upgrade

import (
	gocontext "context"
	"fmt"
	"testing"
	"time"

	"github.com/dnote/notesync/pkg/assert"
	"github.com/dnote/notesync/pkg/cli/consts"
	"github.com/dnote/notesync/pkg/cli/context"
	"github.com/dnote/notesync/pkg/clock"
	"github.com/google/go-github/github"
	"github.com/pkg/errors"
)

type fakeReleases struct {
	tag   string
	err   error
	calls int
}

func (f *fakeReleases) GetLatestRelease(ctx gocontext.Context, owner, repo string) (*github.RepositoryRelease, *github.Response, error) {
	f.calls++
	if f.err != nil {
		return nil, nil, f.err
	}

	return &github.RepositoryRelease{TagName: github.String(f.tag)}, nil, nil
}

func TestIsNewer(t *testing.T) {
	testCases := []struct {
		latest   string
		current  string
		expected bool
	}{
		{latest: "v1.2.0", current: "1.1.9", expected: true},
		{latest: "v1.2.0", current: "1.2.0", expected: false},
		{latest: "notesync-1.10.0", current: "1.9.3", expected: true},
		{latest: "v1.2", current: "1.2.1", expected: false},
		{latest: "v2.0.0", current: "v1.99.99", expected: true},
	}

	for _, tc := range testCases {
		t.Run(fmt.Sprintf("%s vs %s", tc.latest, tc.current), func(t *testing.T) {
			got, err := isNewer(tc.latest, tc.current)
			if err != nil {
				t.Fatal(err)
			}

			assert.Equal(t, got, tc.expected, "result mismatch")
		})
	}

	t.Run("invalid", func(t *testing.T) {
		_, err := isNewer("v1.x", "1.0.0")
		assert.NotEqual(t, err, nil, "error should not be nil")
	})
}

func TestShouldCheck(t *testing.T) {
	base := time.Date(2025, time.June, 2, 8, 0, 0, 0, time.UTC)

	testCases := []struct {
		enabled     bool
		lastUpgrade time.Time
		expected    bool
	}{
		{enabled: true, lastUpgrade: base.Add(-8 * 24 * time.Hour), expected: true},
		{enabled: true, lastUpgrade: base.Add(-24 * time.Hour), expected: false},
		{enabled: false, lastUpgrade: base.Add(-8 * 24 * time.Hour), expected: false},
	}

	for idx, tc := range testCases {
		t.Run(fmt.Sprintf("case %d", idx), func(t *testing.T) {
			ctx := context.InitTestCtx(t)
			ctx.EnableUpgradeCheck = tc.enabled
			ctx.Clock.(*clock.Mock).SetNow(base)

			if err := ctx.Store.SetSystem(consts.SystemLastUpgrade, fmt.Sprintf("%d", tc.lastUpgrade.Unix())); err != nil {
				t.Fatal(err)
			}

			got, err := shouldCheck(ctx)
			if err != nil {
				t.Fatal(err)
			}

			assert.Equal(t, got, tc.expected, "result mismatch")
		})
	}
}

func TestCheck(t *testing.T) {
	base := time.Date(2025, time.June, 2, 8, 0, 0, 0, time.UTC)

	t.Run("records the check", func(t *testing.T) {
		ctx := context.InitTestCtx(t)
		ctx.Version = "1.0.0"
		ctx.Clock.(*clock.Mock).SetNow(base)

		rg := &fakeReleases{tag: "v1.1.0"}
		if err := check(ctx, rg); err != nil {
			t.Fatal(errors.Wrap(err, "executing"))
		}

		val, err := ctx.Store.GetSystemString(consts.SystemLastUpgrade)
		if err != nil {
			t.Fatal(err)
		}
		assert.Equal(t, val, fmt.Sprintf("%d", base.Unix()), "last upgrade mismatch")
		assert.Equal(t, rg.calls, 1, "call count mismatch")
	})

	t.Run("fetch failure", func(t *testing.T) {
		ctx := context.InitTestCtx(t)
		ctx.Version = "1.0.0"

		rg := &fakeReleases{err: errors.New("rate limited")}
		err := check(ctx, rg)
		assert.NotEqual(t, err, nil, "error should not be nil")

		val, err := ctx.Store.GetSystemString(consts.SystemLastUpgrade)
		if err != nil {
			t.Fatal(err)
		}
		assert.Equal(t, val, "", "last upgrade should not be recorded")
	})
}
