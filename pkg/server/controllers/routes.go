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

package controllers

import (
	"net/http"

	"github.com/dnote/notesync/pkg/server/app"
	mw "github.com/dnote/notesync/pkg/server/middleware"
	"github.com/gorilla/mux"
	"github.com/pkg/errors"
)

// Route represents a single route
type Route struct {
	Method    string
	Pattern   string
	Handler   http.HandlerFunc
	RateLimit bool
}

// RouteConfig is the configuration for routes
type RouteConfig struct {
	Controllers *Controllers
	APIRoutes   []Route
	// Limiter throttles the routes that ask for it. Nil turns throttling off.
	Limiter *mw.RateLimiter
}

// NewAPIRoutes returns a new api routes
func NewAPIRoutes(a *app.App, c *Controllers) []Route {
	return []Route{
		{"POST", "/v1/users", c.Users.Create, true},
		{"POST", "/v1/signin", c.Users.Signin, true},
		{"POST", "/v1/signout", mw.Auth(a, c.Users.Signout), true},
		{"GET", "/v1/users/me", mw.Auth(a, c.Users.Me), true},
		{"GET", "/v1/notes", mw.Auth(a, c.Notes.Index), true},
		{"POST", "/v1/notes", mw.Auth(a, c.Notes.Create), true},
		{"PUT", "/v1/notes/{noteID}", mw.Auth(a, c.Notes.Update), true},
		{"DELETE", "/v1/notes/{noteID}", mw.Auth(a, c.Notes.Delete), true},
	}
}

func registerRoutes(router *mux.Router, wrapper mw.Middleware, routes []Route) {
	for _, route := range routes {
		router.
			Handle(route.Pattern, wrapper(route.Handler, route.RateLimit)).
			Methods(route.Method)
	}
}

func notFound(w http.ResponseWriter, r *http.Request) {
	mw.RespondError(w, "not found", http.StatusNotFound)
}

// NewRouter creates and returns a new router
func NewRouter(app *app.App, rc RouteConfig) (http.Handler, error) {
	if err := app.Validate(); err != nil {
		return nil, errors.Wrap(err, "validating the app parameters")
	}

	router := mux.NewRouter().StrictSlash(true)
	router.NotFoundHandler = http.HandlerFunc(notFound)

	apiRouter := router.PathPrefix("/api").Subrouter()
	registerRoutes(apiRouter, mw.NewAPIMw(rc.Limiter), rc.APIRoutes)

	router.HandleFunc("/health", rc.Controllers.Health.Index).Methods("GET")

	return mw.Global(router), nil
}
