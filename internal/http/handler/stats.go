package handler

import (
	"fmt"
	"strconv"

	"backend-acting/internal/config"
	"backend-acting/internal/helper"

	"github.com/gofiber/fiber/v2"
)

func parseDoctorIDQuery(c *fiber.Ctx) *int64 {
	raw := c.Query("doctor_id")
	if raw == "" {
		return nil
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return nil
	}
	return &id
}

// GetDoctorStats - Aggregates per doctor and acting type over the history table
func (h *ActingHandler) GetDoctorStats(c *fiber.Ctx) error {
	stats, err := h.repo.DoctorStats(c.Context(), parseDoctorIDQuery(c))
	if err != nil {
		return schedulerError(c, err)
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data":    stats,
	})
}

// GetDailyStats - Per-day aggregates for a date range (defaults to today)
func (h *ActingHandler) GetDailyStats(c *fiber.Ctx) error {
	today := helper.Today()
	startDate := c.Query("start_date", today)
	endDate := c.Query("end_date", today)

	stats, err := h.repo.DailyStats(c.Context(), startDate, endDate, parseDoctorIDQuery(c))
	if err != nil {
		return schedulerError(c, err)
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data":    stats,
	})
}

// GetTodayCompleted - Cheap completed-today counters from Redis
func (h *ActingHandler) GetTodayCompleted(c *fiber.Ctx) error {
	today := helper.Today()

	total, _ := config.Redis.Get(config.Ctx, fmt.Sprintf("acting:completed:%s", today)).Int64()

	resp := fiber.Map{
		"work_date":       today,
		"total_completed": total,
	}

	if doctorID := parseDoctorIDQuery(c); doctorID != nil {
		count, _ := config.Redis.Get(config.Ctx,
			fmt.Sprintf("acting:completed:%s:doctor:%d", today, *doctorID)).Int64()
		resp["doctor_id"] = *doctorID
		resp["doctor_completed"] = count
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data":    resp,
	})
}
