package handler

import (
	"context"
	"fmt"
	"strconv"

	"backend-acting/internal/config"
	"backend-acting/internal/helper"
	"backend-acting/internal/models"
	"backend-acting/internal/poller"
	"backend-acting/internal/repository"
	"backend-acting/internal/scheduler"

	"github.com/gofiber/fiber/v2"
)

type ActingHandler struct {
	engine *scheduler.Engine
	board  *poller.Controller
	repo   *repository.QueueRepository
}

func NewActingHandler(engine *scheduler.Engine, board *poller.Controller, repo *repository.QueueRepository) *ActingHandler {
	return &ActingHandler{engine: engine, board: board, repo: repo}
}

// AddActingRequest - Request to queue a new acting for a doctor
type AddActingRequest struct {
	DoctorID    int64  `json:"doctor_id"`
	DoctorName  string `json:"doctor_name"`
	PatientID   int64  `json:"patient_id"`
	PatientName string `json:"patient_name"`
	ChartNo     string `json:"chart_no"`
	ActingType  string `json:"acting_type"`
	Memo        string `json:"memo"`
	Source      string `json:"source"`
	SourceID    *int64 `json:"source_id"`
	OrderNum    int    `json:"order_num"`
}

// ActingIDRequest - Request addressing one acting, optionally with its doctor
type ActingIDRequest struct {
	ActingID int64 `json:"acting_id"`
	DoctorID int64 `json:"doctor_id"`
}

// MoveActingRequest - Request to re-home an acting to another doctor
type MoveActingRequest struct {
	ActingID   int64  `json:"acting_id"`
	DoctorID   int64  `json:"doctor_id"`
	DoctorName string `json:"doctor_name"`
}

// ReorderActingRequest - Request to drop an acting onto a 1-based position
type ReorderActingRequest struct {
	ActingID int64 `json:"acting_id"`
	Position int   `json:"position"`
}

// UpdateActingRequest - Edit of the display fields of a queued acting
type UpdateActingRequest struct {
	ActingType  *string `json:"acting_type"`
	PatientName *string `json:"patient_name"`
	Memo        *string `json:"memo"`
}

// SetDoctorStatusRequest - Manual doctor status override
type SetDoctorStatusRequest struct {
	Status     string `json:"status"`
	DoctorName string `json:"doctor_name"`
}

// schedulerError translates the engine's error taxonomy to HTTP. The message
// always says why: doctor busy, already finished, missing row.
func schedulerError(c *fiber.Ctx, err error) error {
	status := fiber.StatusInternalServerError
	switch {
	case scheduler.IsNotFound(err):
		status = fiber.StatusNotFound
	case scheduler.IsDoctorBusy(err), scheduler.IsInvalidTransition(err):
		status = fiber.StatusConflict
	}

	return c.Status(status).JSON(fiber.Map{
		"success": false,
		"error":   err.Error(),
	})
}

func (h *ActingHandler) AddActing(c *fiber.Ctx) error {
	var req AddActingRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"error":   "Invalid request body",
		})
	}

	var task *models.ActingTask
	err := h.board.Mutate(c.Context(), func(ctx context.Context) error {
		var err error
		task, err = h.engine.Add(ctx, scheduler.AddRequest{
			DoctorID:    req.DoctorID,
			DoctorName:  req.DoctorName,
			PatientID:   req.PatientID,
			PatientName: req.PatientName,
			ChartNo:     req.ChartNo,
			ActingType:  req.ActingType,
			Memo:        req.Memo,
			Source:      req.Source,
			SourceID:    req.SourceID,
			OrderNum:    req.OrderNum,
		})
		return err
	})
	if err != nil {
		return schedulerError(c, err)
	}

	return c.JSON(fiber.Map{
		"success": true,
		"message": "Acting queued",
		"data":    task,
	})
}

func (h *ActingHandler) StartActing(c *fiber.Ctx) error {
	var req ActingIDRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"error":   "Invalid request body",
		})
	}

	var task *models.ActingTask
	err := h.board.Mutate(c.Context(), func(ctx context.Context) error {
		var err error
		task, err = h.engine.Start(ctx, req.ActingID, req.DoctorID)
		return err
	})
	if err != nil {
		return schedulerError(c, err)
	}

	return c.JSON(fiber.Map{
		"success": true,
		"message": "Acting started",
		"data":    task,
	})
}

func (h *ActingHandler) CompleteActing(c *fiber.Ctx) error {
	var req ActingIDRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"error":   "Invalid request body",
		})
	}

	var task *models.ActingTask
	err := h.board.Mutate(c.Context(), func(ctx context.Context) error {
		var err error
		task, err = h.engine.Complete(ctx, req.ActingID, req.DoctorID)
		return err
	})
	if err != nil {
		return schedulerError(c, err)
	}

	// Daily counters for the cheap "done today" display
	today := helper.Today()
	_, _ = config.Redis.Incr(config.Ctx, fmt.Sprintf("acting:completed:%s", today)).Result()
	_, _ = config.Redis.Incr(config.Ctx, fmt.Sprintf("acting:completed:%s:doctor:%d", today, task.DoctorID)).Result()

	return c.JSON(fiber.Map{
		"success": true,
		"message": "Acting completed",
		"data":    task,
	})
}

func (h *ActingHandler) CancelActing(c *fiber.Ctx) error {
	var req ActingIDRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"error":   "Invalid request body",
		})
	}

	var task *models.ActingTask
	err := h.board.Mutate(c.Context(), func(ctx context.Context) error {
		var err error
		task, err = h.engine.Cancel(ctx, req.ActingID)
		return err
	})
	if err != nil {
		return schedulerError(c, err)
	}

	return c.JSON(fiber.Map{
		"success": true,
		"message": "Acting cancelled",
		"data":    task,
	})
}

func (h *ActingHandler) MoveActing(c *fiber.Ctx) error {
	var req MoveActingRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"error":   "Invalid request body",
		})
	}

	var task *models.ActingTask
	err := h.board.Mutate(c.Context(), func(ctx context.Context) error {
		var err error
		task, err = h.engine.MoveToDoctor(ctx, req.ActingID, req.DoctorID, req.DoctorName)
		return err
	})
	if err != nil {
		return schedulerError(c, err)
	}

	return c.JSON(fiber.Map{
		"success": true,
		"message": fmt.Sprintf("Acting moved to doctor %d", req.DoctorID),
		"data":    task,
	})
}

func (h *ActingHandler) ReorderActing(c *fiber.Ctx) error {
	var req ReorderActingRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"error":   "Invalid request body",
		})
	}

	var task *models.ActingTask
	err := h.board.Mutate(c.Context(), func(ctx context.Context) error {
		var err error
		task, err = h.engine.Reorder(ctx, req.ActingID, req.Position)
		return err
	})
	if err != nil {
		return schedulerError(c, err)
	}

	return c.JSON(fiber.Map{
		"success": true,
		"message": "Queue reordered",
		"data":    task,
	})
}

func (h *ActingHandler) UpdateActing(c *fiber.Ctx) error {
	actingID, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"error":   "Invalid acting id",
		})
	}

	var req UpdateActingRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"error":   "Invalid request body",
		})
	}

	var task *models.ActingTask
	err = h.board.Mutate(c.Context(), func(ctx context.Context) error {
		var err error
		task, err = h.engine.Update(ctx, actingID, req.ActingType, req.PatientName, req.Memo)
		return err
	})
	if err != nil {
		return schedulerError(c, err)
	}

	return c.JSON(fiber.Map{
		"success": true,
		"message": "Acting updated",
		"data":    task,
	})
}

func (h *ActingHandler) SetDoctorStatus(c *fiber.Ctx) error {
	doctorID, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"error":   "Invalid doctor id",
		})
	}

	var req SetDoctorStatusRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"error":   "Invalid request body",
		})
	}

	var status *models.DoctorStatus
	err = h.board.Mutate(c.Context(), func(ctx context.Context) error {
		var err error
		status, err = h.engine.SetDoctorStatus(ctx, doctorID, req.DoctorName, models.DoctorState(req.Status))
		return err
	})
	if err != nil {
		return schedulerError(c, err)
	}

	return c.JSON(fiber.Map{
		"success": true,
		"message": fmt.Sprintf("Doctor status set to %s", req.Status),
		"data":    status,
	})
}

// GetBoard serves the per-doctor grouped view from the poller's projection.
// No store round trip here - this is the read path every screen hammers.
func (h *ActingHandler) GetBoard(c *fiber.Ctx) error {
	groups := h.board.Snapshot()
	if groups == nil {
		groups = []models.DoctorQueueGroup{}
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data":    groups,
	})
}

// GetDoctorQueue reads one doctor's live queue straight from the store.
func (h *ActingHandler) GetDoctorQueue(c *fiber.Ctx) error {
	doctorID, err := strconv.ParseInt(c.Params("doctorId"), 10, 64)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"error":   "Invalid doctor id",
		})
	}

	tasks, err := h.repo.ListForDoctor(c.Context(), doctorID, helper.Today())
	if err != nil {
		return schedulerError(c, err)
	}
	if tasks == nil {
		tasks = []*models.ActingTask{}
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data":    tasks,
	})
}

// ListActings lists today's actings filtered by status (default waiting).
func (h *ActingHandler) ListActings(c *fiber.Ctx) error {
	status := models.TaskStatus(c.Query("status", string(models.TaskWaiting)))

	tasks, err := h.repo.ListByStatus(c.Context(), status, helper.Today())
	if err != nil {
		return schedulerError(c, err)
	}
	if tasks == nil {
		tasks = []*models.ActingTask{}
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data":    tasks,
	})
}
