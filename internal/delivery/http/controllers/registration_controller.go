package controllers

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"guestregistration/internal/delivery/http/helpers"
	"guestregistration/internal/delivery/http/middleware"
	"guestregistration/internal/domain"
)

type RegistrationController struct {
	Logger  *slog.Logger
	Service domain.RegistrationService
}

func NewRegistrationController(logger *slog.Logger, svc domain.RegistrationService) *RegistrationController {
	return &RegistrationController{
		Logger:  logger,
		Service: svc,
	}
}

// InvitationSuccessResponse is the success envelope for GET /invitations/{token}.
type InvitationSuccessResponse struct {
	Data  *domain.InvitationSummary `json:"data"`
	Error *helpers.APIError         `json:"error"`
}

// InspectInvitation godoc
// @Summary Inspect an invitation
// @Description Advisory check of an invitation token. The result is not a reservation; Submit re-validates under lock.
// @Tags registrations
// @Produce json
// @Param token path string true "Invitation token"
// @Success 200 {object} controllers.InvitationSuccessResponse
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 409 {object} helpers.APIResponse "error.code: conflict"
// @Failure 410 {object} helpers.APIResponse "error.code: gone"
// @Failure 429 {object} helpers.APIResponse "error.code: too_many_requests"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /invitations/{token} [get]
func (c *RegistrationController) InspectInvitation(w http.ResponseWriter, r *http.Request) {
	token := strings.TrimSpace(r.PathValue("token"))
	if token == "" {
		helpers.WriteJSONError(w, http.StatusNotFound, helpers.ErrCodeNotFound, domain.ErrInvitationNotFound.Error())
		return
	}
	summary, err := c.Service.InspectInvitation(r.Context(), token)
	if err != nil {
		c.writeServiceError(w, r, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, summary)
}

// PersonRequest carries the contact details of one guest.
type PersonRequest struct {
	Name    string `json:"name"`
	Company string `json:"company"`
	Title   string `json:"title"`
	Email   string `json:"email"`
}

func (p *PersonRequest) details() domain.PersonDetails {
	return domain.PersonDetails{
		Name:    strings.TrimSpace(p.Name),
		Company: strings.TrimSpace(p.Company),
		Title:   strings.TrimSpace(p.Title),
		Email:   strings.TrimSpace(p.Email),
	}
}

// SubmitRegistrationRequest is the request body for POST /registrations.
type SubmitRegistrationRequest struct {
	InvitationToken string         `json:"invitation_token"`
	Registrant      PersonRequest  `json:"registrant"`
	Companion       *PersonRequest `json:"companion,omitempty"`
}

// Validate implements helpers.Validator.
func (r *SubmitRegistrationRequest) Validate() []string {
	var errs []string
	if strings.TrimSpace(r.InvitationToken) == "" {
		errs = append(errs, "invitation_token is required")
	}
	if strings.TrimSpace(r.Registrant.Name) == "" {
		errs = append(errs, "registrant.name is required")
	}
	if strings.TrimSpace(r.Registrant.Email) == "" {
		errs = append(errs, "registrant.email is required")
	}
	if r.Companion != nil {
		if strings.TrimSpace(r.Companion.Name) == "" {
			errs = append(errs, "companion.name is required")
		}
		if strings.TrimSpace(r.Companion.Email) == "" {
			errs = append(errs, "companion.email is required")
		}
	}
	return errs
}

func (r *SubmitRegistrationRequest) input() *domain.SubmitRegistrationInput {
	in := &domain.SubmitRegistrationInput{
		InvitationToken: strings.TrimSpace(r.InvitationToken),
		Registrant:      r.Registrant.details(),
	}
	if r.Companion != nil {
		companion := r.Companion.details()
		in.Companion = &companion
	}
	return in
}

// RegistrationSuccessResponse is the success envelope for POST /registrations.
type RegistrationSuccessResponse struct {
	Data  *domain.RegistrationResult `json:"data"`
	Error *helpers.APIError          `json:"error"`
}

// Submit godoc
// @Summary Submit a registration
// @Description Consumes the invitation and admits the party as CONFIRMED or WAITLISTED. Confirmation emails are sent after commit.
// @Tags registrations
// @Accept json
// @Produce json
// @Param body body controllers.SubmitRegistrationRequest true "Registration"
// @Success 201 {object} controllers.RegistrationSuccessResponse
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 409 {object} helpers.APIResponse "error.code: conflict"
// @Failure 410 {object} helpers.APIResponse "error.code: gone"
// @Failure 422 {object} helpers.APIResponse "error.code: unprocessable"
// @Failure 429 {object} helpers.APIResponse "error.code: too_many_requests"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /registrations [post]
func (c *RegistrationController) Submit(w http.ResponseWriter, r *http.Request) {
	var req SubmitRegistrationRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	result, err := c.Service.Submit(r.Context(), req.input())
	if err != nil {
		c.writeServiceError(w, r, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusCreated, result)
}

// RegistrantSuccessResponse is the success envelope for POST /registrations/{registrantID}/cancel.
type RegistrantSuccessResponse struct {
	Data  *domain.Registrant `json:"data"`
	Error *helpers.APIError  `json:"error"`
}

// Cancel godoc
// @Summary Cancel a registration
// @Description Cancels the registrant and releases its seats when it was confirmed. Waitlisted guests are not promoted.
// @Tags staff
// @Produce json
// @Security BearerAuth
// @Param registrantID path string true "Registrant ID"
// @Success 200 {object} controllers.RegistrantSuccessResponse
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 409 {object} helpers.APIResponse "error.code: conflict"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /registrations/{registrantID}/cancel [post]
func (c *RegistrationController) Cancel(w http.ResponseWriter, r *http.Request) {
	registrantID := strings.TrimSpace(r.PathValue("registrantID"))
	if registrantID == "" {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "missing registrantID")
		return
	}
	staffID, ok := middleware.StaffIDFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "unauthorized")
		return
	}
	reg, err := c.Service.Cancel(r.Context(), registrantID)
	if err != nil {
		c.writeServiceError(w, r, err)
		return
	}
	c.Logger.InfoContext(r.Context(), "registration cancelled by staff", "staff_id", staffID, "registration_id", reg.RegistrationID)
	helpers.WriteJSONSuccess(w, http.StatusOK, reg)
}

// CheckInRequest is the request body for POST /check-ins.
type CheckInRequest struct {
	Token string `json:"token"`
}

// Validate implements helpers.Validator.
func (r *CheckInRequest) Validate() []string {
	r.Token = strings.TrimSpace(r.Token)
	if r.Token == "" {
		return []string{"token is required"}
	}
	return nil
}

// CheckInSuccessResponse is the success envelope for POST /check-ins.
type CheckInSuccessResponse struct {
	Data  *domain.CheckInResult `json:"data"`
	Error *helpers.APIError     `json:"error"`
}

// CheckIn godoc
// @Summary Check in a guest
// @Description Marks the registrant or companion holding the scanned token as checked in.
// @Tags staff
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body controllers.CheckInRequest true "Scanned check-in token"
// @Success 200 {object} controllers.CheckInSuccessResponse
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 409 {object} helpers.APIResponse "error.code: conflict"
// @Failure 422 {object} helpers.APIResponse "error.code: unprocessable"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /check-ins [post]
func (c *RegistrationController) CheckIn(w http.ResponseWriter, r *http.Request) {
	var req CheckInRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	result, err := c.Service.CheckIn(r.Context(), req.Token)
	if err != nil {
		c.writeServiceError(w, r, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, result)
}

// writeServiceError maps domain sentinels onto HTTP statuses. Anything
// unrecognised is logged and reported as 500.
func (c *RegistrationController) writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, domain.ErrInvalidInput):
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, err.Error())
	case errors.Is(err, domain.ErrInvitationNotFound),
		errors.Is(err, domain.ErrEventNotFound),
		errors.Is(err, domain.ErrRegistrantNotFound),
		errors.Is(err, domain.ErrCheckInTokenNotFound):
		helpers.WriteJSONError(w, http.StatusNotFound, helpers.ErrCodeNotFound, err.Error())
	case errors.Is(err, domain.ErrInvitationExpired):
		helpers.WriteJSONError(w, http.StatusGone, helpers.ErrCodeGone, err.Error())
	case errors.Is(err, domain.ErrInvitationAlreadyUsed),
		errors.Is(err, domain.ErrAlreadyCancelled),
		errors.Is(err, domain.ErrAlreadyCheckedIn),
		errors.Is(err, domain.ErrRegistrationClosed):
		helpers.WriteJSONError(w, http.StatusConflict, helpers.ErrCodeConflict, err.Error())
	case errors.Is(err, domain.ErrEventFull),
		errors.Is(err, domain.ErrNotConfirmed),
		errors.Is(err, domain.ErrRegistrationCancelled):
		helpers.WriteJSONError(w, http.StatusUnprocessableEntity, helpers.ErrCodeUnprocessable, err.Error())
	default:
		c.Logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "method", r.Method, "err", err)
		helpers.WriteJSONError(w, http.StatusInternalServerError, helpers.ErrCodeInternalError, "internal error")
	}
}
