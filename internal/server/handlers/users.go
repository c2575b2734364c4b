package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"git.home.luguber.info/inful/psalter/internal/foundation/errors"
	"git.home.luguber.info/inful/psalter/internal/server/responses"
)

// maxValidateBody bounds the validate-user request body.
const maxValidateBody = 1 << 16

// UserValidator checks a username and API key pair.
type UserValidator interface {
	ValidateUser(ctx context.Context, username, key string) (bool, error)
}

// UserHandlers serves POST /api/validate-user.
type UserHandlers struct {
	validator    UserValidator
	errorAdapter *errors.HTTPErrorAdapter
}

// NewUserHandlers creates the credential handlers.
func NewUserHandlers(v UserValidator, adapter *errors.HTTPErrorAdapter) *UserHandlers {
	if adapter == nil {
		adapter = errors.NewHTTPErrorAdapter(nil)
	}
	return &UserHandlers{validator: v, errorAdapter: adapter}
}

// HandleValidateUser reports whether the posted pair matches a stored
// credential. It is not behind the API key gate.
func (h *UserHandlers) HandleValidateUser(w http.ResponseWriter, r *http.Request) {
	var req responses.ValidateUserRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxValidateBody))
	if err := dec.Decode(&req); err != nil {
		h.errorAdapter.WriteErrorResponse(w, r,
			errors.ValidationError("invalid request body").WithCause(err).Build())
		return
	}

	ok, err := h.validator.ValidateUser(r.Context(), req.Username, req.APIKey)
	if err != nil {
		h.errorAdapter.WriteErrorResponse(w, r, err)
		return
	}

	resp := responses.ValidateUserResponse{Valid: ok}
	if ok {
		resp.APIKey = req.APIKey
	}
	if err := writeJSON(w, http.StatusOK, resp); err != nil {
		h.errorAdapter.WriteErrorResponse(w, r,
			errors.WrapError(err, errors.CategoryInternal, "failed to encode response").Build())
	}
}
