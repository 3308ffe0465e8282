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

package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/dnote/notesync/pkg/assert"
)

func TestLimit(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	limiter := NewDefaultRateLimiter()
	defer limiter.Stop()
	middleware := limiter.Limit(handler)

	numRequests := serverRateLimitBurst + 5
	blockedCount := 0

	for i := 0; i < numRequests; i++ {
		req := httptest.NewRequest("GET", "/test", nil)
		req.RemoteAddr = "192.168.1.1:1234"
		w := httptest.NewRecorder()

		middleware.ServeHTTP(w, req)

		if w.Code == http.StatusTooManyRequests {
			blockedCount++
		}
	}

	if blockedCount == 0 {
		t.Error("Expected some requests to be rate limited after burst")
	}
}

func TestLimit_DifferentIPs(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	limiter := NewRateLimiter(1, 2)
	defer limiter.Stop()
	middleware := limiter.Limit(handler)

	for i := 0; i < 5; i++ {
		req := httptest.NewRequest("GET", "/test", nil)
		req.RemoteAddr = "192.168.1.1:1234"
		middleware.ServeHTTP(httptest.NewRecorder(), req)
	}

	// the same host on another port is the same client
	req := httptest.NewRequest("GET", "/test", nil)
	req.RemoteAddr = "192.168.1.1:9999"
	w := httptest.NewRecorder()
	middleware.ServeHTTP(w, req)
	assert.Equal(t, w.Code, http.StatusTooManyRequests, "same host status mismatch")

	req = httptest.NewRequest("GET", "/test", nil)
	req.RemoteAddr = "192.168.1.2:5678"
	w = httptest.NewRecorder()
	middleware.ServeHTTP(w, req)
	assert.Equal(t, w.Code, http.StatusOK, "other host status mismatch")
}

func TestLookupIP(t *testing.T) {
	testCases := []struct {
		name       string
		remoteAddr string
		headers    map[string]string
		expected   string
	}{
		{"remote addr", "10.0.0.1:4000", nil, "10.0.0.1"},
		{"real ip", "10.0.0.1:4000", map[string]string{"X-Real-IP": "203.0.113.9"}, "203.0.113.9"},
		{"forwarded for wins", "10.0.0.1:4000", map[string]string{"X-Real-IP": "203.0.113.9", "X-Forwarded-For": "198.51.100.1, 10.0.0.2"}, "198.51.100.1"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", "/", nil)
			req.RemoteAddr = tc.remoteAddr
			for k, v := range tc.headers {
				req.Header.Set(k, v)
			}

			assert.Equal(t, lookupIP(req), tc.expected, "result mismatch")
		})
	}
}

func TestRemoveIdle(t *testing.T) {
	limiter := NewRateLimiter(10, 10)
	defer limiter.Stop()

	limiter.getVisitor("10.0.0.1")
	limiter.removeIdle(time.Now().Add(visitorTTL + time.Second))

	limiter.mtx.Lock()
	defer limiter.mtx.Unlock()
	assert.Equal(t, len(limiter.visitors), 0, "idle visitor should be removed")
}
