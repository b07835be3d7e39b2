// internal/registration/handler.go
package registration

import (
	"encoding/json"
	"net/http"

	"member-registration/internal/common/errors"
	"member-registration/internal/common/logger"

	"github.com/go-chi/chi/v5"
)

// Handler exposes the registration workflow over HTTP.
type Handler struct {
	service *Service
	errs    *errors.ErrorHandler
	logger  logger.Logger
}

func NewHandler(service *Service, log logger.Logger) *Handler {
	return &Handler{
		service: service,
		errs:    errors.NewErrorHandler(log),
		logger:  log,
	}
}

// Register mounts the endpoints on the router.
func (h *Handler) Register(r chi.Router) {
	r.Route("/api/registration", func(r chi.Router) {
		r.Get("/check", h.handleCheck)
		r.Post("/verify", h.handleVerify)
		r.Post("/create-user", h.handleCreateUser)
		r.Post("/", h.handleRegister)
	})
}

func (h *Handler) handleCheck(w http.ResponseWriter, r *http.Request) {
	studentID := r.URL.Query().Get("studentId")

	resp, err := h.service.Check(r.Context(), studentID)
	if err != nil {
		h.errs.WriteError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) handleVerify(w http.ResponseWriter, r *http.Request) {
	var req VerifyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.errs.WriteError(w, r, errors.NewInputInvalidError("请求格式错误", nil))
		return
	}

	resp, err := h.service.Verify(r.Context(), &req)
	if err != nil {
		h.errs.WriteError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) handleCreateUser(w http.ResponseWriter, r *http.Request) {
	var req CreateUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.errs.WriteError(w, r, errors.NewInputInvalidError("请求格式错误", nil))
		return
	}

	resp, err := h.service.CreateUser(r.Context(), &req)
	if err != nil {
		h.errs.WriteError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.errs.WriteError(w, r, errors.NewInputInvalidError("请求格式错误", nil))
		return
	}

	resp, err := h.service.Register(r.Context(), &req)
	if err != nil {
		h.errs.WriteError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		h.logger.Error("failed to encode response", map[string]interface{}{"error": err.Error()})
	}
}
