package api

import (
	"errors"
	"net/http"

	"github.com/dmitrymomot/eventhub/pkg/account"
	"github.com/dmitrymomot/eventhub/pkg/logger"
	"github.com/dmitrymomot/eventhub/pkg/sanitizer"
	"github.com/dmitrymomot/eventhub/pkg/session"
	"github.com/dmitrymomot/eventhub/pkg/validator"
)

const maxBioLength = 500

func (h *handlers) profile(w http.ResponseWriter, r *http.Request) {
	s := h.sessions.Session()
	if !s.Authenticated {
		writeError(w, http.StatusUnauthorized, codeUnauthorized, "not logged in", nil)
		return
	}
	writeJSON(w, http.StatusOK, newProfile(*s.Account))
}

func cleanPatch(p account.Patch) account.Patch {
	line := sanitizer.Compose(sanitizer.RemoveControlChars, sanitizer.SingleLine)
	return account.Patch{
		Email:          sanitizer.Ptr(p.Email, sanitizer.NormalizeEmail),
		FullName:       sanitizer.Ptr(p.FullName, line),
		Bio:            sanitizer.Ptr(p.Bio, sanitizer.Compose(sanitizer.StripHTML, sanitizer.RemoveControlChars, sanitizer.Trim)),
		Phone:          sanitizer.Ptr(p.Phone, sanitizer.NormalizePhone),
		ProfilePicture: sanitizer.Ptr(p.ProfilePicture, sanitizer.Trim),
	}
}

func validatePatch(p account.Patch) error {
	var rules []validator.Rule
	if p.FullName != nil {
		rules = append(rules, validator.Required("fullName", *p.FullName), validator.MinLen("fullName", *p.FullName, 2))
	}
	if p.Email != nil {
		rules = append(rules, validator.Required("email", *p.Email), validator.ValidEmail("email", *p.Email))
	}
	if p.Phone != nil {
		rules = append(rules, validator.Optional(*p.Phone, validator.ValidPhone("phone", *p.Phone)))
	}
	if p.Bio != nil {
		rules = append(rules, validator.MaxLen("bio", *p.Bio, maxBioLength))
	}
	if p.ProfilePicture != nil {
		rules = append(rules, validator.Optional(*p.ProfilePicture, validator.ValidURL("profilePicture", *p.ProfilePicture)))
	}
	return validator.Apply(rules...)
}

func (h *handlers) updateProfile(w http.ResponseWriter, r *http.Request) {
	var p account.Patch
	if err := decode(r, &p); err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, "malformed request body", nil)
		return
	}
	p = cleanPatch(p)
	if writeValidation(w, validatePatch(p)) {
		return
	}

	updated, err := h.sessions.UpdateProfile(r.Context(), p)
	switch {
	case err == nil:
		writeJSON(w, http.StatusOK, newProfile(updated))
	case errors.Is(err, session.ErrNotAuthenticated):
		writeError(w, http.StatusUnauthorized, codeUnauthorized, "not logged in", nil)
	case errors.Is(err, account.ErrNotFound):
		writeError(w, http.StatusNotFound, codeNotFound, "account not found", nil)
	default:
		h.log.ErrorContext(r.Context(), "profile update failed", logger.Error(err))
		writeError(w, http.StatusInternalServerError, codeInternal, "An error occurred. Please try again.", nil)
	}
}

type passwordChange struct {
	CurrentPassword string `json:"currentPassword"`
	NewPassword     string `json:"newPassword"`
	ConfirmPassword string `json:"confirmPassword"`
}

func (p passwordChange) validate() error {
	return validator.Apply(
		validator.Required("currentPassword", p.CurrentPassword),
		validator.Required("newPassword", p.NewPassword),
		validator.MinLen("newPassword", p.NewPassword, 6),
		validator.Required("confirmPassword", p.ConfirmPassword),
		validator.Equal("confirmPassword", p.ConfirmPassword, p.NewPassword, "passwords do not match"),
	)
}

func (h *handlers) changePassword(w http.ResponseWriter, r *http.Request) {
	var req passwordChange
	if err := decode(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, "malformed request body", nil)
		return
	}
	if writeValidation(w, req.validate()) {
		return
	}

	err := h.sessions.ChangePassword(r.Context(), req.CurrentPassword, req.NewPassword)
	switch {
	case err == nil:
		writeJSON(w, http.StatusOK, map[string]string{"message": "Password changed successfully!"})
	case errors.Is(err, session.ErrInvalidCredential):
		writeError(w, http.StatusUnprocessableEntity, codeInvalidCredentials, "Current password is incorrect.",
			map[string][]string{"currentPassword": {"Current password is incorrect."}})
	case errors.Is(err, session.ErrNotAuthenticated):
		writeError(w, http.StatusUnauthorized, codeUnauthorized, "not logged in", nil)
	default:
		h.log.ErrorContext(r.Context(), "password change failed", logger.Error(err))
		writeError(w, http.StatusInternalServerError, codeInternal, "An error occurred. Please try again.", nil)
	}
}
