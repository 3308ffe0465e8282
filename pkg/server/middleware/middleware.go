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

// Package middleware provides the http middlewares of the server
package middleware

import (
	"net/http"
	"time"

	"github.com/dnote/notesync/pkg/server/log"
)

// Middleware wraps a route handler
type Middleware func(h http.HandlerFunc, rateLimit bool) http.Handler

// NewAPIMw returns the middleware for api routes. Routes that ask for rate
// limiting go through the given limiter, if any.
func NewAPIMw(rl *RateLimiter) Middleware {
	return func(h http.HandlerFunc, rateLimit bool) http.Handler {
		ret := http.Handler(h)

		if rateLimit && rl != nil {
			ret = rl.Limit(ret)
		}

		return ret
	}
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

// Logging logs every request with its status and duration
func Logging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(rec, r)

		log.WithFields(log.Fields{
			"method":   r.Method,
			"path":     r.URL.Path,
			"status":   rec.status,
			"duration": time.Since(start).String(),
		}).Debug("request")
	})
}

// Global is the middleware applied to all requests
func Global(h http.Handler) http.Handler {
	return Logging(h)
}
