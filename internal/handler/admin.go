package handler

import (
	"context"
	"database/sql"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/festival-program-office/internal/repository"
)

// AdminHandler exposes the platform administration surface: user listing,
// account activation and the audit trail.  Routes run behind RequireRole
// with ADMIN; this is the one place where the global role is the
// authorization, because administration is about accounts and not about
// any program's workflow.
type AdminHandler struct {
	Users  *repository.UserRepo
	Tokens *repository.RefreshTokenRepo
	Audit  *repository.AuditRepo
}

func NewAdminHandler(u *repository.UserRepo, t *repository.RefreshTokenRepo, a *repository.AuditRepo) *AdminHandler {
	return &AdminHandler{Users: u, Tokens: t, Audit: a}
}

type adminUserResp struct {
	ID          uint64 `json:"id"`
	Email       string `json:"email"`
	DisplayName string `json:"display_name"`
	Role        string `json:"role"`
	IsActive    bool   `json:"is_active"`
}

// ListUsers handles GET /admin/users.
func (h *AdminHandler) ListUsers(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	users, err := h.Users.List(ctx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	out := make([]adminUserResp, 0, len(users))
	for _, u := range users {
		out = append(out, adminUserResp{
			ID: u.ID, Email: u.Email, DisplayName: u.DisplayName,
			Role: string(u.Role), IsActive: u.IsActive,
		})
	}
	return c.JSON(http.StatusOK, out)
}

// Activate handles POST /admin/users/:id/activate.
func (h *AdminHandler) Activate(c echo.Context) error {
	return h.setActive(c, true)
}

// Deactivate handles POST /admin/users/:id/deactivate.  All live refresh
// tokens of the account are revoked in the same request, so the lockout is
// immediate rather than waiting for the access token to expire.
func (h *AdminHandler) Deactivate(c echo.Context) error {
	return h.setActive(c, false)
}

func (h *AdminHandler) setActive(c echo.Context, active bool) error {
	id, err := paramID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid user id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	if err := h.Users.SetActive(ctx, id, active); err != nil {
		if err == sql.ErrNoRows {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "user not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update failed"})
	}
	if !active {
		_ = h.Tokens.RevokeAllForUser(ctx, id)
	}
	return c.JSON(http.StatusOK, echo.Map{"id": id, "is_active": active})
}

type auditEntryResp struct {
	ID         uint64 `json:"id"`
	ActorID    uint64 `json:"actor_id"`
	Action     string `json:"action"`
	Target     string `json:"target"`
	OccurredAt string `json:"occurred_at"`
}

// ListAudit handles GET /admin/audit?limit=N.
func (h *AdminHandler) ListAudit(c echo.Context) error {
	limit := 100
	if raw := c.QueryParam("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 || n > 1000 {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "limit must be 1..1000"})
		}
		limit = n
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	entries, err := h.Audit.List(ctx, limit)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	out := make([]auditEntryResp, 0, len(entries))
	for _, e := range entries {
		out = append(out, auditEntryResp{
			ID: e.ID, ActorID: e.ActorID, Action: e.Action, Target: e.Target,
			OccurredAt: e.OccurredAt.UTC().Format(time.RFC3339),
		})
	}
	return c.JSON(http.StatusOK, out)
}
