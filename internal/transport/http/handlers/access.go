package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/hectoraparici0/cyberaegis/internal/core/domain"
	"github.com/hectoraparici0/cyberaegis/internal/core/port"
	"github.com/hectoraparici0/cyberaegis/internal/usecase"
)

// AccessHandler exposes the grant and revoke operations.
type AccessHandler struct {
	access *usecase.AccessService
}

func NewAccessHandler(access *usecase.AccessService) *AccessHandler {
	return &AccessHandler{access: access}
}

var grantErrorCases = []ErrorCase{
	{Err: domain.ErrInvalidCredentials, Status: http.StatusUnauthorized, Message: "invalid credentials"},
	{Err: domain.ErrMFARequired, Status: http.StatusUnauthorized, Message: "second factor required"},
	{Err: domain.ErrInvalidMFACode, Status: http.StatusUnauthorized, Message: "invalid second factor code"},
	{Err: domain.ErrUnauthorizedMasterAccess, Status: http.StatusForbidden, Message: "master access denied"},
	{Err: domain.ErrLevelNotProvisioned, Status: http.StatusForbidden, Message: "requested level exceeds provisioned maximum"},
	{Err: domain.ErrAuthTimeout, Status: http.StatusRequestTimeout, Message: "authentication timed out"},
	{Err: domain.ErrUnknownAccessLevel, Status: http.StatusBadRequest, Message: "unknown access level"},
}

// Grant authenticates the credential and returns a session at the requested
// level.
func (h *AccessHandler) Grant(c *gin.Context) {
	var req GrantRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "invalid request payload"))
		return
	}

	level, err := domain.ParseAccessLevel(req.Level)
	if err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "unknown access level"))
		return
	}

	result, err := h.access.GrantAccess(c.Request.Context(), usecase.GrantRequest{
		Credential: port.Credential{
			SubjectID: req.SubjectID,
			Secret:    req.Secret,
			MFACode:   req.MFACode,
			MasterKey: req.MasterKey,
		},
		Level: level,
	})
	if err != nil {
		RespondWithMappedError(c, err, grantErrorCases,
			http.StatusInternalServerError, "failed to grant access")
		return
	}

	resp := GrantResponse{Session: newSessionPayload(result.Session)}
	if result.Token != "" {
		resp.Token = result.Token
		resp.TokenType = "Bearer"
	}

	c.JSON(http.StatusCreated, resp)
}

// Revoke terminates a session. Revoking an unknown or already-revoked
// session still answers success.
func (h *AccessHandler) Revoke(c *gin.Context) {
	var req RevokeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "invalid request payload"))
		return
	}

	reason := req.Reason
	if reason == "" {
		reason = "manual_revocation"
	}

	revokedBy := "api"
	if subject, ok := c.Get("subject_id"); ok {
		if s, ok := subject.(string); ok && s != "" {
			revokedBy = s
		}
	}

	if err := h.access.RevokeAccess(c.Request.Context(), req.SessionID, reason, revokedBy); err != nil {
		c.JSON(http.StatusInternalServerError, NewErrorResponse(c, "failed to revoke session"))
		return
	}

	c.JSON(http.StatusOK, RevokeResponse{Revoked: true})
}
