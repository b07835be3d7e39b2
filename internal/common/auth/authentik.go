// internal/common/auth/authentik.go
package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	commonhttp "member-registration/internal/common/http"
)

// Sentinel errors classifying provisioning failures. Callers map these to
// workflow outcomes; the client itself stays transport-level.
var (
	// ErrUsernameTaken means the identity provider rejected the username as
	// already in use. Recoverable by choosing a different username.
	ErrUsernameTaken = errors.New("authentik: username already taken")

	// ErrValidationRejected means the provider rejected the payload for a
	// reason other than username uniqueness.
	ErrValidationRejected = errors.New("authentik: user data rejected")

	// ErrAuthFailed means the configured API token was rejected. This is a
	// server configuration problem, never the applicant's fault.
	ErrAuthFailed = errors.New("authentik: api token rejected")

	// ErrUnreachable covers network failures, timeouts and 5xx responses.
	ErrUnreachable = errors.New("authentik: service unreachable")
)

// AuthentikClient provisions user accounts through the Authentik core API.
type AuthentikClient struct {
	baseURL    string
	apiToken   string
	httpClient *commonhttp.Client
}

// CreateUserRequest carries the fields sent to the user creation endpoint.
type CreateUserRequest struct {
	Username  string
	Name      string
	Email     string
	Password  string
	StudentID string
}

// User is the subset of the Authentik user object this service needs.
type User struct {
	PK       int    `json:"pk"`
	Username string `json:"username"`
}

// NewAuthentikClient creates a new instance of AuthentikClient.
func NewAuthentikClient(baseURL, apiToken string, timeout time.Duration) *AuthentikClient {
	return &AuthentikClient{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		apiToken:   apiToken,
		httpClient: commonhttp.NewClient(timeout),
	}
}

// Ready reports whether the client has the configuration it needs to make
// any call at all. Checked before accepting provisioning requests.
func (a *AuthentikClient) Ready() error {
	if a.baseURL == "" {
		return fmt.Errorf("authentik url is not configured")
	}
	if a.apiToken == "" {
		return fmt.Errorf("authentik api token is not configured")
	}
	return nil
}

type createUserPayload struct {
	Username   string                 `json:"username"`
	Name       string                 `json:"name"`
	IsActive   bool                   `json:"is_active"`
	Email      string                 `json:"email"`
	Attributes map[string]interface{} `json:"attributes"`
	Path       string                 `json:"path"`
	Type       string                 `json:"type"`
	Password   string                 `json:"password"`
}

// CreateUser creates an active internal user and returns its identifier.
func (a *AuthentikClient) CreateUser(ctx context.Context, req *CreateUserRequest) (*User, error) {
	payload := createUserPayload{
		Username: req.Username,
		Name:     req.Name,
		IsActive: true,
		Email:    req.Email,
		Attributes: map[string]interface{}{
			"studentId": req.StudentID,
		},
		Path:     "users",
		Type:     "internal",
		Password: req.Password,
	}

	jsonData, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to serialize user payload: %w", err)
	}

	userURL := fmt.Sprintf("%s/api/v3/core/users/", a.baseURL)

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, userURL, strings.NewReader(string(jsonData)))
	if err != nil {
		return nil, fmt.Errorf("failed to create user request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+a.apiToken)

	resp, err := a.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnreachable, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: reading response: %v", ErrUnreachable, err)
	}

	switch {
	case resp.StatusCode == http.StatusCreated || resp.StatusCode == http.StatusOK:
		var user User
		if err := json.Unmarshal(body, &user); err != nil {
			return nil, fmt.Errorf("failed to decode created user: %w", err)
		}
		return &user, nil

	case resp.StatusCode == http.StatusBadRequest:
		if isUsernameConflict(body) {
			return nil, fmt.Errorf("%w: %s", ErrUsernameTaken, string(body))
		}
		return nil, fmt.Errorf("%w: %s", ErrValidationRejected, string(body))

	case resp.StatusCode == http.StatusConflict:
		return nil, fmt.Errorf("%w: %s", ErrUsernameTaken, string(body))

	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return nil, fmt.Errorf("%w: status %d", ErrAuthFailed, resp.StatusCode)

	default:
		return nil, fmt.Errorf("%w: status %d: %s", ErrUnreachable, resp.StatusCode, string(body))
	}
}

// SetPassword sets the password for an existing user. Failures here leave the
// account usable through a reset flow, so callers treat them as soft.
func (a *AuthentikClient) SetPassword(ctx context.Context, userID int, password string) error {
	payload := map[string]string{"password": password}
	jsonData, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to serialize password payload: %w", err)
	}

	pwURL := fmt.Sprintf("%s/api/v3/core/users/%d/set_password/", a.baseURL, userID)

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, pwURL, strings.NewReader(string(jsonData)))
	if err != nil {
		return fmt.Errorf("failed to create set-password request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+a.apiToken)

	resp, err := a.httpClient.Do(httpReq)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnreachable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("set password failed with status %d: %s", resp.StatusCode, string(body))
	}

	return nil
}

// isUsernameConflict inspects a 400 body for the provider's uniqueness
// complaint on the username field.
func isUsernameConflict(body []byte) bool {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(body, &fields); err != nil {
		return false
	}
	raw, ok := fields["username"]
	if !ok {
		return false
	}
	return strings.Contains(strings.ToLower(string(raw)), "unique")
}
