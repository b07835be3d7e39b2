// internal/registration/service.go
package registration

import (
	"context"
	stderrors "errors"
	"fmt"
	"time"

	"member-registration/internal/common/auth"
	"member-registration/internal/common/errors"
	"member-registration/internal/common/logger"
	"member-registration/internal/common/metrics"
	"member-registration/internal/models"
	"member-registration/internal/store/application"
	"member-registration/internal/store/enrollment"

	"github.com/google/uuid"
)

// Gate names used in transition logs and metrics labels.
const (
	gateInput        = "input"
	gateEligibility  = "eligibility"
	gateNameMatch    = "name_match"
	gateDuplicate    = "duplicate"
	gateSections     = "sections"
	gateProvisioning = "provisioning"
	gatePersistence  = "persistence"
)

// Workflow states, logged on every transition.
const (
	stateStart               = "START"
	stateEligibilityChecked  = "ELIGIBILITY_CHECKED"
	stateDuplicateChecked    = "DUPLICATE_CHECKED"
	stateIdentityProvisioned = "IDENTITY_PROVISIONED"
	statePersisted           = "PERSISTED"
	stateDone                = "DONE"
)

// Provisioner is the identity-provider surface the workflow needs.
// AuthentikClient implements it; tests supply fakes.
type Provisioner interface {
	Ready() error
	CreateUser(ctx context.Context, req *auth.CreateUserRequest) (*auth.User, error)
	SetPassword(ctx context.Context, userID int, password string) error
}

// Service orchestrates the registration workflow over the eligibility
// registry, the application store and the identity provider.
type Service struct {
	enrollment  enrollment.Store
	apps        application.Store
	provisioner Provisioner
	notifier    Notifier
	emailDomain string
	logger      logger.Logger
}

func NewService(
	enrollmentStore enrollment.Store,
	appStore application.Store,
	provisioner Provisioner,
	notifier Notifier,
	emailDomain string,
	log logger.Logger,
) *Service {
	if notifier == nil {
		notifier = NoopNotifier{}
	}
	return &Service{
		enrollment:  enrollmentStore,
		apps:        appStore,
		provisioner: provisioner,
		notifier:    notifier,
		emailDomain: emailDomain,
		logger:      log.WithFields(map[string]interface{}{"component": "registration"}),
	}
}

// defaultEmail derives the institutional address used when the applicant
// leaves email empty.
func (s *Service) defaultEmail(studentID string) string {
	return fmt.Sprintf("%s@%s", studentID, s.emailDomain)
}

// ==========================
// Check
// ==========================

// Check reports enrollment and completion status for a student identifier.
// For identifiers not in the registry no store lookups beyond the registry
// itself happen.
func (s *Service) Check(ctx context.Context, studentID string) (*CheckResponse, error) {
	if studentID == "" {
		return nil, errors.NewInputInvalidError("", map[string]string{"studentId": "required"})
	}

	student, err := s.enrollment.Lookup(ctx, studentID)
	if stderrors.Is(err, enrollment.ErrNotFound) {
		return &CheckResponse{Enrolled: false, Completed: false}, nil
	}
	if err != nil {
		return nil, errors.NewInternalError(err)
	}

	resp := &CheckResponse{
		Enrolled:        true,
		Name:            student.Name,
		Username:        student.Username,
		InitialPassword: student.InitialPassword,
	}

	rec, err := s.apps.FindByStudentID(ctx, studentID)
	switch {
	case err == nil:
		resp.Completed = true
		resp.User = &RegisteredUser{StudentID: rec.StudentID, Name: rec.Name}
	case stderrors.Is(err, application.ErrNotFound):
		resp.Completed = false
	default:
		return nil, errors.NewInternalError(err)
	}

	return resp, nil
}

// ==========================
// Verify
// ==========================

// Verify runs the eligibility, name-match and duplicate gates without
// mutating anything. The optional name is compared case-sensitively against
// the registry value; an identifier that already completed registration is
// rejected before the wizard starts.
func (s *Service) Verify(ctx context.Context, req *VerifyRequest) (*VerifyResponse, error) {
	if req.StudentID == "" {
		return nil, errors.NewInputInvalidError("", map[string]string{"studentId": "required"})
	}

	student, err := s.enrollment.Lookup(ctx, req.StudentID)
	if stderrors.Is(err, enrollment.ErrNotFound) {
		return nil, errors.NewNotEligibleError(req.StudentID)
	}
	if err != nil {
		return nil, errors.NewInternalError(err)
	}

	if req.Name != "" && req.Name != student.Name {
		return nil, errors.NewNameMismatchError(req.StudentID)
	}

	_, err = s.apps.FindByStudentID(ctx, req.StudentID)
	if err == nil {
		return nil, errors.NewAlreadyRegisteredError(req.StudentID)
	}
	if !stderrors.Is(err, application.ErrNotFound) {
		return nil, errors.NewInternalError(err)
	}

	return &VerifyResponse{Success: true, Name: student.Name}, nil
}

// ==========================
// CreateUser
// ==========================

// CreateUser provisions an identity directly, without writing a record.
// Configuration problems are reported before any network call is made.
func (s *Service) CreateUser(ctx context.Context, req *CreateUserRequest) (*CreateUserResponse, error) {
	if err := s.provisioner.Ready(); err != nil {
		return nil, errors.NewConfigError(err.Error())
	}

	fields := map[string]string{}
	if req.Username == "" {
		fields["username"] = "required"
	}
	if req.Password == "" {
		fields["password"] = "required"
	}
	if req.Name == "" {
		fields["name"] = "required"
	}
	if req.StudentID == "" {
		fields["studentId"] = "required"
	}
	if len(fields) > 0 {
		return nil, errors.NewInputInvalidError("", fields)
	}

	email := req.Email
	if email == "" {
		email = s.defaultEmail(req.StudentID)
	}

	user, err := s.provision(ctx, &auth.CreateUserRequest{
		Username:  req.Username,
		Name:      req.Name,
		Email:     email,
		Password:  req.Password,
		StudentID: req.StudentID,
	})
	if err != nil {
		return nil, err
	}

	passwordSet := s.setPassword(ctx, user.PK, req.Password)

	return &CreateUserResponse{
		Success:     true,
		User:        UserInfo{ID: user.PK, Username: user.Username},
		PasswordSet: passwordSet,
	}, nil
}

// ==========================
// Register
// ==========================

// Register runs the full workflow: input, eligibility, name match,
// duplicate, section validation, identity provisioning, persistence.
// The application record insert is the single serialization point for
// concurrent submissions of the same identifier; a lost race after
// provisioning is reported as success so the caller is never left believing
// a registration failed while an account exists upstream.
func (s *Service) Register(ctx context.Context, req *RegisterRequest) (*RegisterResponse, error) {
	requestID := uuid.New().String()
	log := s.logger.WithFields(map[string]interface{}{
		"requestId": requestID,
		"studentId": req.StudentID,
	})
	started := time.Now()

	resp, err := s.register(ctx, req, log)

	outcome := "success"
	if err != nil {
		outcome = "failure"
		var stdErr *errors.StandardError
		if stderrors.As(err, &stdErr) {
			outcome = string(stdErr.Code)
		}
	}
	metrics.RegistrationAttempts.WithLabelValues(outcome).Inc()
	metrics.RegistrationDuration.WithLabelValues(outcome).Observe(time.Since(started).Seconds())

	return resp, err
}

func (s *Service) register(ctx context.Context, req *RegisterRequest, log logger.Logger) (*RegisterResponse, error) {
	s.transition(log, stateStart, "")

	// Gate 1: identifier and name present
	if req.StudentID == "" || req.Name == "" {
		return nil, s.reject(log, gateInput, errors.NewInputInvalidError("", map[string]string{
			"studentId": "required",
			"name":      "required",
		}))
	}

	// Gate 2: eligibility
	student, err := s.enrollment.Lookup(ctx, req.StudentID)
	if stderrors.Is(err, enrollment.ErrNotFound) {
		return nil, s.reject(log, gateEligibility, errors.NewNotEligibleError(req.StudentID))
	}
	if err != nil {
		return nil, s.reject(log, gateEligibility, errors.NewInternalError(err))
	}

	// Gate 3: claimed name must match the registry exactly
	if req.Name != student.Name {
		return nil, s.reject(log, gateNameMatch, errors.NewNameMismatchError(req.StudentID))
	}
	s.transition(log, stateEligibilityChecked, "")

	// Gate 4: duplicate check before any provisioning call
	_, err = s.apps.FindByStudentID(ctx, req.StudentID)
	if err == nil {
		return nil, s.reject(log, gateDuplicate, errors.NewAlreadyRegisteredError(req.StudentID))
	}
	if !stderrors.Is(err, application.ErrNotFound) {
		return nil, s.reject(log, gateDuplicate, errors.NewInternalError(err))
	}
	s.transition(log, stateDuplicateChecked, "")

	// Gate 5: section payloads
	fields, err := validateRegisterRequest(req)
	if err != nil {
		return nil, s.reject(log, gateSections, errors.NewInternalError(err))
	}
	if len(fields) > 0 {
		return nil, s.reject(log, gateSections, errors.NewInputInvalidError("", fields))
	}

	// Provisioning
	if err := s.provisioner.Ready(); err != nil {
		return nil, s.reject(log, gateProvisioning, errors.NewConfigError(err.Error()))
	}

	email := req.Contact.Email
	if email == "" {
		email = s.defaultEmail(req.StudentID)
	}

	user, provErr := s.provision(ctx, &auth.CreateUserRequest{
		Username:  req.Account.Username,
		Name:      req.Name,
		Email:     email,
		Password:  req.Account.Password,
		StudentID: req.StudentID,
	})
	if provErr != nil {
		// A username conflict after a lost double-submit race means the
		// other submission already provisioned and persisted. Re-check and
		// report that registration as this caller's success.
		var stdErr *errors.StandardError
		if stderrors.As(provErr, &stdErr) && stdErr.Code == errors.ErrCodeUpstreamConflict {
			if _, findErr := s.apps.FindByStudentID(ctx, req.StudentID); findErr == nil {
				s.transition(log, stateDone, "completed by concurrent submission")
				return &RegisterResponse{Success: true}, nil
			}
		}
		return nil, s.reject(log, gateProvisioning, provErr)
	}
	s.transition(log, stateIdentityProvisioned, "")

	passwordSet := s.setPassword(ctx, user.PK, req.Account.Password)

	// Persistence
	rec := &models.ApplicationRecord{
		StudentID:    req.StudentID,
		Name:         req.Name,
		BasicInfo:    *req.BasicInfo,
		Contact:      *req.Contact,
		PersonalInfo: *req.PersonalInfo,
		CreatedAt:    time.Now().UTC(),
	}
	if err := s.apps.Create(ctx, rec); err != nil {
		if stderrors.Is(err, application.ErrDuplicate) {
			// Lost the race after provisioning. The other record stands;
			// this caller's account exists upstream, so respond success.
			s.transition(log, stateDone, "record already persisted by concurrent submission")
			return &RegisterResponse{
				Success:     true,
				User:        &UserInfo{ID: user.PK, Username: user.Username},
				PasswordSet: passwordSet,
			}, nil
		}
		return nil, s.reject(log, gatePersistence, errors.NewInternalError(err))
	}
	s.transition(log, statePersisted, "")

	// Welcome email is best effort
	if err := s.notifier.SendWelcome(ctx, email, req.Name, user.Username); err != nil {
		log.Warn("welcome email failed", map[string]interface{}{"error": err.Error()})
	}

	s.transition(log, stateDone, "")

	return &RegisterResponse{
		Success:     true,
		User:        &UserInfo{ID: user.PK, Username: user.Username},
		PasswordSet: passwordSet,
	}, nil
}

// provision calls the identity provider and maps its sentinel errors onto
// the workflow taxonomy.
func (s *Service) provision(ctx context.Context, req *auth.CreateUserRequest) (*auth.User, error) {
	user, err := s.provisioner.CreateUser(ctx, req)
	if err == nil {
		metrics.IdentityProvisioningCalls.WithLabelValues("create_user", "success").Inc()
		return user, nil
	}

	outcome := "error"
	var mapped *errors.StandardError
	switch {
	case stderrors.Is(err, auth.ErrUsernameTaken):
		outcome = "conflict"
		mapped = errors.NewUpstreamConflictError(req.Username)
	case stderrors.Is(err, auth.ErrValidationRejected):
		outcome = "rejected"
		mapped = errors.NewUpstreamRejectedError(err.Error())
	case stderrors.Is(err, auth.ErrAuthFailed):
		outcome = "auth_failed"
		mapped = errors.NewConfigError(err.Error())
	case stderrors.Is(err, auth.ErrUnreachable):
		outcome = "unreachable"
		mapped = errors.NewUpstreamUnavailableError(err)
	default:
		mapped = errors.NewInternalError(err)
	}
	metrics.IdentityProvisioningCalls.WithLabelValues("create_user", outcome).Inc()
	return nil, mapped
}

// setPassword makes the explicit password call and reports whether it
// succeeded. Failure is logged, never propagated.
func (s *Service) setPassword(ctx context.Context, userID int, password string) bool {
	if err := s.provisioner.SetPassword(ctx, userID, password); err != nil {
		metrics.IdentityProvisioningCalls.WithLabelValues("set_password", "error").Inc()
		s.logger.Warn("set password failed, account remains usable via reset", map[string]interface{}{
			"userId": userID,
			"error":  err.Error(),
		})
		return false
	}
	metrics.IdentityProvisioningCalls.WithLabelValues("set_password", "success").Inc()
	return true
}

func (s *Service) transition(log logger.Logger, state, note string) {
	fields := map[string]interface{}{"state": state}
	if note != "" {
		fields["note"] = note
	}
	log.Info("workflow transition", fields)
}

// reject records the failed gate and returns the error unchanged.
func (s *Service) reject(log logger.Logger, gate string, err error) error {
	code := errors.ErrCodeInternalError
	details := ""
	var stdErr *errors.StandardError
	if stderrors.As(err, &stdErr) {
		code = stdErr.Code
		details = stdErr.Details
	}
	metrics.RegistrationGateFailures.WithLabelValues(gate, string(code)).Inc()
	log.Warn("gate rejected", map[string]interface{}{
		"gate":      gate,
		"errorCode": string(code),
		"details":   details,
	})
	return err
}
