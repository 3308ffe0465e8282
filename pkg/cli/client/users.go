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

package client

import (
	"encoding/json"
	"net/http"

	"github.com/dnote/notesync/pkg/cli/context"
	"github.com/dnote/notesync/pkg/cli/log"
	"github.com/pkg/errors"
)

// CredentialsPayload is a payload for signing in and registering
type CredentialsPayload struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// SigninResponse is a response from the signin and register endpoints
type SigninResponse struct {
	Key       string `json:"key"`
	ExpiresAt int64  `json:"expires_at"`
	UserID    string `json:"user_id"`
}

// MeResponse is a response from the current user endpoint
type MeResponse struct {
	User struct {
		UUID  string `json:"uuid"`
		Email string `json:"email"`
	} `json:"user"`
}

func postCredentials(ctx context.NotesyncCtx, path, email, password string) (SigninResponse, error) {
	b, err := json.Marshal(CredentialsPayload{Email: email, Password: password})
	if err != nil {
		return SigninResponse{}, errors.Wrap(err, "marshaling payload")
	}

	res, err := doReq(ctx, "POST", path, string(b), nil)
	if err != nil {
		return SigninResponse{}, err
	}
	defer res.Body.Close()

	var resp SigninResponse
	if err := json.NewDecoder(res.Body).Decode(&resp); err != nil {
		return SigninResponse{}, errors.Wrap(err, "decoding payload")
	}

	return resp, nil
}

// Signin requests a session token
func Signin(ctx context.NotesyncCtx, email, password string) (SigninResponse, error) {
	resp, err := postCredentials(ctx, "/v1/signin", email, password)
	if err != nil {
		var httpErr *HTTPError
		if errors.As(err, &httpErr) && httpErr.IsUnauthorized() {
			return SigninResponse{}, ErrInvalidLogin
		}
		return SigninResponse{}, errors.Wrap(err, "making http request")
	}

	return resp, nil
}

// Register creates a user and returns a session for it
func Register(ctx context.NotesyncCtx, email, password string) (SigninResponse, error) {
	resp, err := postCredentials(ctx, "/v1/users", email, password)
	if err != nil {
		return SigninResponse{}, errors.Wrap(err, "making http request")
	}

	return resp, nil
}

// GetMe returns the user of the current session
func GetMe(ctx context.NotesyncCtx) (MeResponse, error) {
	res, err := doAuthorizedReq(ctx, "GET", "/v1/users/me", "", nil)
	if err != nil {
		return MeResponse{}, errors.Wrap(err, "making http request")
	}
	defer res.Body.Close()

	var resp MeResponse
	if err := json.NewDecoder(res.Body).Decode(&resp); err != nil {
		return MeResponse{}, errors.Wrap(err, "decoding payload")
	}

	return resp, nil
}

// Signout deletes a user session on the server side
func Signout(ctx context.NotesyncCtx, sessionKey string) error {
	// share the transport, and thus the rate limiter, without following redirects
	var hc *http.Client
	if ctx.HTTPClient != nil {
		hc = &http.Client{
			Transport: ctx.HTTPClient.Transport,
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				return http.ErrUseLastResponse
			},
		}
	} else {
		log.Debug("no HTTP client configured for signout\n")
		hc = &http.Client{
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				return http.ErrUseLastResponse
			},
		}
	}

	ctx.SessionKey = sessionKey
	opts := requestOptions{
		HTTPClient:          hc,
		ExpectedContentType: &contentTypeNone,
	}
	res, err := doAuthorizedReq(ctx, "POST", "/v1/signout", "", &opts)
	if err != nil {
		return errors.Wrap(err, "making http request")
	}
	res.Body.Close()

	return nil
}
