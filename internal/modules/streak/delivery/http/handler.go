package http

import (
	"net/http"

	"anoa.com/practiceforum/internal/entity"
	streakDto "anoa.com/practiceforum/internal/modules/streak/dto"
	streakService "anoa.com/practiceforum/internal/modules/streak/service"
	"anoa.com/practiceforum/pkg/apperror"
	"anoa.com/practiceforum/pkg/response"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type StreakHandler struct {
	service streakService.StreakService
}

func NewStreakHandler(service streakService.StreakService) *StreakHandler {
	return &StreakHandler{service: service}
}

func (h *StreakHandler) RecordActivity(c *gin.Context) {
	userID, err := response.GetUserID(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	var req streakDto.RecordActivityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	kind, err := entity.ParseActivityKind(req.ActivityType)
	if err != nil {
		response.ResponseError(c, apperror.NewValidationError("activity_type", err.Error()))
		return
	}

	resp, err := h.service.RecordActivity(c.Request.Context(), userID, kind, req.ReferenceID)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	status := http.StatusCreated
	if !resp.Credited {
		status = http.StatusOK
	}
	c.JSON(status, resp)
}

func (h *StreakHandler) GetMyStreaks(c *gin.Context) {
	userID, err := response.GetUserID(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	resp, err := h.service.GetUserStreaks(c.Request.Context(), userID)
	if err != nil {
		response.ResponseError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *StreakHandler) GetUserStreaks(c *gin.Context) {
	userID, err := uuid.Parse(c.Param("user_id"))
	if err != nil {
		response.ResponseError(c, apperror.NewValidationError("user_id", "invalid user id"))
		return
	}

	resp, err := h.service.GetUserStreaks(c.Request.Context(), userID)
	if err != nil {
		response.ResponseError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *StreakHandler) GetLeaderboard(c *gin.Context) {
	kind, err := entity.ParseActivityKind(c.Param("kind"))
	if err != nil {
		response.ResponseError(c, apperror.NewValidationError("kind", err.Error()))
		return
	}

	var filter streakDto.LeaderboardFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	resp, err := h.service.GetLeaderboard(c.Request.Context(), kind, filter.Page, filter.Limit)
	if err != nil {
		response.ResponseError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
