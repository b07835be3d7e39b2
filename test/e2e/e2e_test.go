// test/e2e/e2e_test.go
//
// End-to-end flow over real HTTP: a registration server backed by in-memory
// stores and a stubbed identity provider, driven the way the wizard client
// drives it.
package e2e

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"member-registration/internal/common/auth"
	"member-registration/internal/common/logger"
	"member-registration/internal/models"
	"member-registration/internal/registration"
	"member-registration/internal/store/application"
	"member-registration/internal/store/enrollment"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ==========================
// Test Fixtures
// ==========================

// fakeAuthentik stubs the identity provider's user endpoints.
type fakeAuthentik struct {
	nextPK       int64
	usernames    map[string]bool
	passwordSets int64
}

func newFakeAuthentik() *fakeAuthentik {
	return &fakeAuthentik{usernames: map[string]bool{}}
}

func (f *fakeAuthentik) handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/v3/core/users/", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/v3/core/users/" {
			// set_password subresource
			atomic.AddInt64(&f.passwordSets, 1)
			w.WriteHeader(http.StatusNoContent)
			return
		}

		var payload struct {
			Username string `json:"username"`
		}
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}

		if f.usernames[payload.Username] {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusBadRequest)
			fmt.Fprint(w, `{"username": ["This field must be unique."]}`)
			return
		}
		f.usernames[payload.Username] = true

		pk := atomic.AddInt64(&f.nextPK, 1)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(map[string]interface{}{
			"pk":       pk,
			"username": payload.Username,
		})
	})
	return mux
}

type env struct {
	server    *httptest.Server
	authentik *fakeAuthentik
}

func newEnv(t *testing.T) *env {
	t.Helper()

	fake := newFakeAuthentik()
	upstream := httptest.NewServer(fake.handler())
	t.Cleanup(upstream.Close)

	registry := enrollment.NewMemoryStore()
	registry.Add(models.EnrolledStudent{
		StudentID:       "2021000001",
		Name:            "Alice",
		Username:        "alice01",
		InitialPassword: "init-pass",
		EnrolledAt:      time.Now().UTC(),
	})

	svc := registration.NewService(
		registry,
		application.NewMemoryStore(),
		auth.NewAuthentikClient(upstream.URL, "test-token", 5*time.Second),
		nil,
		"mail.nwpu.edu.cn",
		logger.NewTestLogger(t),
	)

	r := chi.NewRouter()
	registration.NewHandler(svc, logger.NewTestLogger(t)).Register(r)

	server := httptest.NewServer(r)
	t.Cleanup(server.Close)

	return &env{server: server, authentik: fake}
}

func (e *env) get(t *testing.T, path string, out interface{}) int {
	t.Helper()
	resp, err := http.Get(e.server.URL + path)
	require.NoError(t, err)
	defer resp.Body.Close()
	if out != nil {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
	}
	return resp.StatusCode
}

func (e *env) post(t *testing.T, path string, body, out interface{}) int {
	t.Helper()
	buf, err := json.Marshal(body)
	require.NoError(t, err)
	resp, err := http.Post(e.server.URL+path, "application/json", bytes.NewReader(buf))
	require.NoError(t, err)
	defer resp.Body.Close()
	if out != nil {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
	}
	return resp.StatusCode
}

func fullSubmission() map[string]interface{} {
	return map[string]interface{}{
		"studentId": "2021000001",
		"name":      "Alice",
		"basicInfo": map[string]string{
			"year":      "2026",
			"gender":    "female",
			"college":   "Software",
			"major":     "SE",
			"techGroup": "web",
		},
		"contact": map[string]string{
			"phone": "13800000000",
			"email": "alice@example.com",
		},
		"personalInfo": map[string]string{
			"idCard":     "610100200301010000",
			"birthday":   "2003-01-01",
			"hometown":   "Xi'an",
			"ethnicity":  "Han",
			"highSchool": "No.1 High School",
		},
		"account": map[string]string{
			"username": "alice01",
			"password": "s3cret!pass",
		},
	}
}

// ==========================
// Full Flow
// ==========================

func TestFullRegistrationFlow(t *testing.T) {
	e := newEnv(t)

	// Step 1: status check shows enrolled, not completed, with the
	// pre-assigned credential pair.
	var check registration.CheckResponse
	status := e.get(t, "/api/registration/check?studentId=2021000001", &check)
	require.Equal(t, http.StatusOK, status)
	assert.True(t, check.Enrolled)
	assert.False(t, check.Completed)
	assert.Equal(t, "alice01", check.Username)
	assert.Equal(t, "init-pass", check.InitialPassword)

	// Step 2: identity claim verifies against the registry.
	var verify registration.VerifyResponse
	status = e.post(t, "/api/registration/verify", map[string]string{
		"studentId": "2021000001",
		"name":      "Alice",
	}, &verify)
	require.Equal(t, http.StatusOK, status)
	assert.True(t, verify.Success)

	// Step 3: full submission provisions the account and persists the record.
	var reg registration.RegisterResponse
	status = e.post(t, "/api/registration/", fullSubmission(), &reg)
	require.Equal(t, http.StatusOK, status)
	assert.True(t, reg.Success)
	require.NotNil(t, reg.User)
	assert.Equal(t, "alice01", reg.User.Username)
	assert.True(t, reg.PasswordSet)
	assert.Equal(t, int64(1), atomic.LoadInt64(&e.authentik.passwordSets))

	// Step 4: status check now reports completed and echoes the stored
	// identity.
	status = e.get(t, "/api/registration/check?studentId=2021000001", &check)
	require.Equal(t, http.StatusOK, status)
	assert.True(t, check.Completed)
	require.NotNil(t, check.User)
	assert.Equal(t, "2021000001", check.User.StudentID)
	assert.Equal(t, "Alice", check.User.Name)

	// A repeated identity claim is now turned away at the door.
	var errBody map[string]interface{}
	status = e.post(t, "/api/registration/verify", map[string]string{
		"studentId": "2021000001",
		"name":      "Alice",
	}, &errBody)
	assert.Equal(t, http.StatusConflict, status)
	assert.Equal(t, "ALREADY_REGISTERED", errBody["error"])

	// Resubmission is rejected before touching the identity provider again.
	status = e.post(t, "/api/registration/", fullSubmission(), &errBody)
	assert.Equal(t, http.StatusConflict, status)
	assert.Equal(t, "ALREADY_REGISTERED", errBody["error"])
	assert.Len(t, e.authentik.usernames, 1)
}

func TestRegistrationRejectsUnknownStudent(t *testing.T) {
	e := newEnv(t)

	payload := fullSubmission()
	payload["studentId"] = "9999999999"

	var errBody map[string]interface{}
	status := e.post(t, "/api/registration/", payload, &errBody)

	assert.Equal(t, http.StatusForbidden, status)
	assert.Equal(t, "NOT_ELIGIBLE", errBody["error"])
	assert.Empty(t, e.authentik.usernames)
}

func TestRegistrationUsernameConflict(t *testing.T) {
	e := newEnv(t)
	e.authentik.usernames["alice01"] = true

	var errBody map[string]interface{}
	status := e.post(t, "/api/registration/", fullSubmission(), &errBody)

	assert.Equal(t, http.StatusConflict, status)
	assert.Equal(t, "UPSTREAM_CONFLICT", errBody["error"])

	// Still not registered; retrying with a free username succeeds.
	payload := fullSubmission()
	payload["account"] = map[string]string{"username": "alice02", "password": "s3cret!pass"}

	var reg registration.RegisterResponse
	status = e.post(t, "/api/registration/", payload, &reg)
	require.Equal(t, http.StatusOK, status)
	assert.True(t, reg.Success)
	assert.Equal(t, "alice02", reg.User.Username)
}
