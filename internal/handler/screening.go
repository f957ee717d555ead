package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/festival-program-office/internal/model"
	"github.com/iliyamo/festival-program-office/internal/service"
)

// ScreeningHandler exposes the screening lifecycle over HTTP.
type ScreeningHandler struct {
	Screenings *service.ScreeningService
}

func NewScreeningHandler(s *service.ScreeningService) *ScreeningHandler {
	return &ScreeningHandler{Screenings: s}
}

type screeningReq struct {
	ProgramID   uint64 `json:"program_id"`
	Title       string `json:"title"`
	Genre       string `json:"genre"`
	Description string `json:"description"`
}

type assignReq struct {
	StaffID uint64 `json:"staff_id"`
}

type reviewReq struct {
	Score    *int   `json:"score"`
	Comments string `json:"comments"`
}

type scheduleReq struct {
	Date string `json:"date"` // YYYY-MM-DD
	Room string `json:"room"`
}

type rejectReq struct {
	Reason string `json:"reason"`
}

type screeningResp struct {
	ID              uint64  `json:"id"`
	ProgramID       uint64  `json:"program_id"`
	SubmitterID     uint64  `json:"submitter_id"`
	Title           string  `json:"title"`
	Genre           string  `json:"genre"`
	Description     string  `json:"description"`
	State           string  `json:"state"`
	StaffMemberID   *uint64 `json:"staff_member_id,omitempty"`
	Score           *int    `json:"score,omitempty"`
	Comments        *string `json:"comments,omitempty"`
	Room            *string `json:"room,omitempty"`
	ScheduledDate   *string `json:"scheduled_date,omitempty"`
	RejectionReason *string `json:"rejection_reason,omitempty"`
	Version         uint32  `json:"version"`
}

func toScreeningResp(s *model.Screening) screeningResp {
	resp := screeningResp{
		ID:              s.ID,
		ProgramID:       s.ProgramID,
		SubmitterID:     s.SubmitterID,
		Title:           s.Title,
		Genre:           s.Genre,
		Description:     s.Description,
		State:           string(s.State),
		StaffMemberID:   s.StaffMemberID,
		Score:           s.Score,
		Comments:        s.Comments,
		Room:            s.Room,
		RejectionReason: s.RejectionReason,
		Version:         s.Version,
	}
	if s.ScheduledDate != nil {
		d := s.ScheduledDate.Format("2006-01-02")
		resp.ScheduledDate = &d
	}
	return resp
}

// Create handles POST /screenings.
func (h *ScreeningHandler) Create(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var req screeningReq
	if err := c.Bind(&req); err != nil || req.ProgramID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "program_id required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	s, err := h.Screenings.Create(ctx, uid, req.ProgramID, req.Title, req.Genre, req.Description)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusCreated, toScreeningResp(s))
}

// Get handles GET /screenings/:id.
func (h *ScreeningHandler) Get(c echo.Context) error {
	return h.simple(c, func(ctx context.Context, uid, id uint64) (*model.Screening, error) {
		return h.Screenings.Get(ctx, uid, id)
	})
}

// ListByProgram handles GET /programs/:id/screenings.
func (h *ScreeningHandler) ListByProgram(c echo.Context) error {
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

	screenings, err := h.Screenings.ListByProgram(ctx, uid, id)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, toScreeningList(screenings))
}

// ListMine handles GET /screenings/mine.
func (h *ScreeningHandler) ListMine(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	screenings, err := h.Screenings.ListMine(ctx, uid)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, toScreeningList(screenings))
}

// Update handles PUT /screenings/:id (drafts only).
func (h *ScreeningHandler) Update(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, err := paramID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid screening id"})
	}
	var req screeningReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	s, err := h.Screenings.Update(ctx, uid, id, req.Title, req.Genre, req.Description)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, toScreeningResp(s))
}

// Submit handles POST /screenings/:id/submit.
func (h *ScreeningHandler) Submit(c echo.Context) error {
	return h.simple(c, h.Screenings.Submit)
}

// Withdraw handles DELETE /screenings/:id.
func (h *ScreeningHandler) Withdraw(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, err := paramID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid screening id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	if err := h.Screenings.Withdraw(ctx, uid, id); err != nil {
		return writeError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// Assign handles POST /screenings/:id/assign.
func (h *ScreeningHandler) Assign(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, err := paramID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid screening id"})
	}
	var req assignReq
	if err := c.Bind(&req); err != nil || req.StaffID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "staff_id required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	s, err := h.Screenings.Assign(ctx, uid, id, req.StaffID)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, toScreeningResp(s))
}

// Review handles POST /screenings/:id/review.
func (h *ScreeningHandler) Review(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, err := paramID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid screening id"})
	}
	var req reviewReq
	if err := c.Bind(&req); err != nil || req.Score == nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "score required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	s, err := h.Screenings.Review(ctx, uid, id, *req.Score, req.Comments)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, toScreeningResp(s))
}

// Approve handles POST /screenings/:id/approve.
func (h *ScreeningHandler) Approve(c echo.Context) error {
	return h.simple(c, h.Screenings.Approve)
}

// FinalSubmit handles POST /screenings/:id/final-submit.
func (h *ScreeningHandler) FinalSubmit(c echo.Context) error {
	return h.simple(c, h.Screenings.FinalSubmit)
}

// Schedule handles POST /screenings/:id/schedule.
func (h *ScreeningHandler) Schedule(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, err := paramID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid screening id"})
	}
	var req scheduleReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	date, err := time.Parse("2006-01-02", req.Date)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "date must be YYYY-MM-DD"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	s, err := h.Screenings.Schedule(ctx, uid, id, date, req.Room)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, toScreeningResp(s))
}

// Reject handles POST /screenings/:id/reject.
func (h *ScreeningHandler) Reject(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, err := paramID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid screening id"})
	}
	var req rejectReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	s, err := h.Screenings.Reject(ctx, uid, id, req.Reason)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, toScreeningResp(s))
}

// simple is the shared path for body-less screening actions.
func (h *ScreeningHandler) simple(c echo.Context, apply func(context.Context, uint64, uint64) (*model.Screening, error)) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, err := paramID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid screening id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	s, err := apply(ctx, uid, id)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, toScreeningResp(s))
}

func toScreeningList(screenings []model.Screening) []screeningResp {
	out := make([]screeningResp, 0, len(screenings))
	for i := range screenings {
		out = append(out, toScreeningResp(&screenings[i]))
	}
	return out
}
