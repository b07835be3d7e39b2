// internal/common/auth/authentik_test.go
package auth

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ==========================
// CreateUser
// ==========================

func TestCreateUser_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/v3/core/users/", r.URL.Path)
		assert.Equal(t, "Bearer test-token", r.Header.Get("Authorization"))

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"pk": 42, "username": "alice01"}`))
	}))
	defer srv.Close()

	client := NewAuthentikClient(srv.URL, "test-token", 5*time.Second)

	user, err := client.CreateUser(context.Background(), &CreateUserRequest{
		Username:  "alice01",
		Name:      "Alice",
		Email:     "2021000001@mail.nwpu.edu.cn",
		Password:  "s3cret!pass",
		StudentID: "2021000001",
	})

	require.NoError(t, err)
	assert.Equal(t, 42, user.PK)
	assert.Equal(t, "alice01", user.Username)
}

func TestCreateUser_UsernameTaken_From400(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"username": ["This field must be unique."]}`))
	}))
	defer srv.Close()

	client := NewAuthentikClient(srv.URL, "test-token", 5*time.Second)

	_, err := client.CreateUser(context.Background(), &CreateUserRequest{Username: "taken"})

	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUsernameTaken))
}

func TestCreateUser_UsernameTaken_From409(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusConflict)
	}))
	defer srv.Close()

	client := NewAuthentikClient(srv.URL, "test-token", 5*time.Second)

	_, err := client.CreateUser(context.Background(), &CreateUserRequest{Username: "taken"})

	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUsernameTaken))
}

func TestCreateUser_ValidationRejected(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"email": ["Enter a valid email address."]}`))
	}))
	defer srv.Close()

	client := NewAuthentikClient(srv.URL, "test-token", 5*time.Second)

	_, err := client.CreateUser(context.Background(), &CreateUserRequest{Username: "alice01"})

	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrValidationRejected))
	assert.False(t, errors.Is(err, ErrUsernameTaken))
}

func TestCreateUser_AuthFailed(t *testing.T) {
	for _, status := range []int{http.StatusUnauthorized, http.StatusForbidden} {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(status)
		}))

		client := NewAuthentikClient(srv.URL, "bad-token", 5*time.Second)
		_, err := client.CreateUser(context.Background(), &CreateUserRequest{Username: "alice01"})

		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrAuthFailed))

		srv.Close()
	}
}

func TestCreateUser_Unreachable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	client := NewAuthentikClient(srv.URL, "test-token", 5*time.Second)

	_, err := client.CreateUser(context.Background(), &CreateUserRequest{Username: "alice01"})

	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnreachable))
}

func TestCreateUser_NetworkError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // connection refused from here on

	client := NewAuthentikClient(srv.URL, "test-token", time.Second)

	_, err := client.CreateUser(context.Background(), &CreateUserRequest{Username: "alice01"})

	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnreachable))
}

func TestCreateUser_Timeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	}))
	defer srv.Close()

	client := NewAuthentikClient(srv.URL, "test-token", 50*time.Millisecond)

	_, err := client.CreateUser(context.Background(), &CreateUserRequest{Username: "alice01"})

	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnreachable))
}

// ==========================
// SetPassword
// ==========================

func TestSetPassword_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v3/core/users/42/set_password/", r.URL.Path)
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	client := NewAuthentikClient(srv.URL, "test-token", 5*time.Second)

	err := client.SetPassword(context.Background(), 42, "s3cret!pass")
	assert.NoError(t, err)
}

func TestSetPassword_Failure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"password": ["This password is too short."]}`))
	}))
	defer srv.Close()

	client := NewAuthentikClient(srv.URL, "test-token", 5*time.Second)

	err := client.SetPassword(context.Background(), 42, "x")
	assert.Error(t, err)
}

// ==========================
// Ready
// ==========================

func TestReady(t *testing.T) {
	assert.Error(t, NewAuthentikClient("", "token", time.Second).Ready())
	assert.Error(t, NewAuthentikClient("http://auth.local", "", time.Second).Ready())
	assert.NoError(t, NewAuthentikClient("http://auth.local", "token", time.Second).Ready())
}
