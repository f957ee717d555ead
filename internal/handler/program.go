package handler

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/festival-program-office/internal/model"
	"github.com/iliyamo/festival-program-office/internal/service"
)

// ProgramHandler exposes the program lifecycle over HTTP.  All routes run
// behind JWTAuth; authorization itself happens in the service from
// relationship data, not from the token's role claim.
type ProgramHandler struct {
	Programs *service.ProgramService
}

func NewProgramHandler(p *service.ProgramService) *ProgramHandler {
	return &ProgramHandler{Programs: p}
}

type programReq struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	StartDate   string `json:"start_date"` // YYYY-MM-DD
	EndDate     string `json:"end_date"`   // YYYY-MM-DD
}

type advanceReq struct {
	Phase string `json:"phase"`
}

type memberReq struct {
	UserID uint64 `json:"user_id"`
}

type programResp struct {
	ID            uint64   `json:"id"`
	Name          string   `json:"name"`
	Description   string   `json:"description"`
	StartDate     string   `json:"start_date"`
	EndDate       string   `json:"end_date"`
	Phase         string   `json:"phase"`
	CreatorID     uint64   `json:"creator_id"`
	ProgrammerIDs []uint64 `json:"programmer_ids"`
	StaffIDs      []uint64 `json:"staff_ids"`
	Version       uint32   `json:"version"`
}

func toProgramResp(p *model.Program) programResp {
	return programResp{
		ID:            p.ID,
		Name:          p.Name,
		Description:   p.Description,
		StartDate:     p.StartDate.Format("2006-01-02"),
		EndDate:       p.EndDate.Format("2006-01-02"),
		Phase:         string(p.Phase),
		CreatorID:     p.CreatorID,
		ProgrammerIDs: p.ProgrammerIDs,
		StaffIDs:      p.StaffIDs,
		Version:       p.Version,
	}
}

func parseDate(s string) (time.Time, bool) {
	t, err := time.Parse("2006-01-02", s)
	return t, err == nil
}

// Create handles POST /programs.
func (h *ProgramHandler) Create(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var req programReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	start, ok := parseDate(req.StartDate)
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "start_date must be YYYY-MM-DD"})
	}
	end, ok := parseDate(req.EndDate)
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "end_date must be YYYY-MM-DD"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	p, err := h.Programs.Create(ctx, uid, req.Name, req.Description, start, end)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusCreated, toProgramResp(p))
}

// Get handles GET /programs/:id.
func (h *ProgramHandler) Get(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, err := paramID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid program id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	p, err := h.Programs.Get(ctx, uid, id)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, toProgramResp(p))
}

// List handles GET /programs.  An optional ?name= query narrows the
// listing to programs whose name contains the value.
func (h *ProgramHandler) List(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	programs, err := h.Programs.List(ctx, uid, strings.TrimSpace(c.QueryParam("name")))
	if err != nil {
		return writeError(c, err)
	}
	out := make([]programResp, 0, len(programs))
	for i := range programs {
		out = append(out, toProgramResp(&programs[i]))
	}
	return c.JSON(http.StatusOK, out)
}

// Update handles PUT /programs/:id.
func (h *ProgramHandler) Update(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, err := paramID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid program id"})
	}
	var req programReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	start, ok := parseDate(req.StartDate)
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "start_date must be YYYY-MM-DD"})
	}
	end, ok := parseDate(req.EndDate)
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "end_date must be YYYY-MM-DD"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	p, err := h.Programs.Update(ctx, uid, id, req.Name, req.Description, start, end)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, toProgramResp(p))
}

// Delete handles DELETE /programs/:id.
func (h *ProgramHandler) Delete(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, err := paramID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid program id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	if err := h.Programs.Delete(ctx, uid, id); err != nil {
		return writeError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// Advance handles POST /programs/:id/advance.
func (h *ProgramHandler) Advance(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, err := paramID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid program id"})
	}
	var req advanceReq
	if err := c.Bind(&req); err != nil || req.Phase == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "phase required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	p, err := h.Programs.Advance(ctx, uid, id, model.ProgramPhase(req.Phase))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, toProgramResp(p))
}

// AddProgrammer handles POST /programs/:id/programmers.
func (h *ProgramHandler) AddProgrammer(c echo.Context) error {
	return h.memberChange(c, h.Programs.AddProgrammer)
}

// RemoveProgrammer handles DELETE /programs/:id/programmers/:userID.
func (h *ProgramHandler) RemoveProgrammer(c echo.Context) error {
	return h.memberRemove(c, h.Programs.RemoveProgrammer)
}

// AddStaff handles POST /programs/:id/staff.
func (h *ProgramHandler) AddStaff(c echo.Context) error {
	return h.memberChange(c, h.Programs.AddStaff)
}

// RemoveStaff handles DELETE /programs/:id/staff/:userID.
func (h *ProgramHandler) RemoveStaff(c echo.Context) error {
	return h.memberRemove(c, h.Programs.RemoveStaff)
}

func (h *ProgramHandler) memberChange(c echo.Context, apply func(context.Context, uint64, uint64, uint64) (*model.Program, error)) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, err := paramID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid program id"})
	}
	var req memberReq
	if err := c.Bind(&req); err != nil || req.UserID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "user_id required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	p, err := apply(ctx, uid, id, req.UserID)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, toProgramResp(p))
}

func (h *ProgramHandler) memberRemove(c echo.Context, apply func(context.Context, uint64, uint64, uint64) (*model.Program, error)) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, err := paramID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid program id"})
	}
	userID, err := paramID(c, "userID")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid user id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	p, err := apply(ctx, uid, id, userID)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, toProgramResp(p))
}
