package http

import (
	"net/http"

	scheduleDto "anoa.com/practiceforum/internal/modules/schedule/dto"
	scheduleService "anoa.com/practiceforum/internal/modules/schedule/service"
	"anoa.com/practiceforum/pkg/apperror"
	"anoa.com/practiceforum/pkg/response"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type ScheduleHandler struct {
	service scheduleService.ScheduleService
}

func NewScheduleHandler(service scheduleService.ScheduleService) *ScheduleHandler {
	return &ScheduleHandler{service: service}
}

// params resolves the caller and the community in the path.
func params(c *gin.Context) (actorID, communityID uuid.UUID, err error) {
	actorID, err = response.GetUserID(c)
	if err != nil {
		return uuid.Nil, uuid.Nil, err
	}
	communityID, err = uuid.Parse(c.Param("community_id"))
	if err != nil {
		return uuid.Nil, uuid.Nil, apperror.NewValidationError("community_id", "invalid community id")
	}
	return actorID, communityID, nil
}

func (h *ScheduleHandler) GetSchedule(c *gin.Context) {
	actorID, communityID, err := params(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	resp, err := h.service.GetSchedule(c.Request.Context(), actorID, communityID)
	if err != nil {
		response.ResponseError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *ScheduleHandler) UpsertSchedule(c *gin.Context) {
	actorID, communityID, err := params(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	var req scheduleDto.UpsertScheduleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	resp, err := h.service.UpsertSchedule(c.Request.Context(), actorID, communityID, req)
	if err != nil {
		response.ResponseError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Schedule saved successfully", "schedule": resp})
}

func (h *ScheduleHandler) DeleteSchedule(c *gin.Context) {
	actorID, communityID, err := params(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	if err := h.service.DeleteSchedule(c.Request.Context(), actorID, communityID); err != nil {
		response.ResponseError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Schedule deleted successfully"})
}

func (h *ScheduleHandler) ExecuteNow(c *gin.Context) {
	actorID, communityID, err := params(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	resp, err := h.service.ExecuteNow(c.Request.Context(), actorID, communityID)
	if err != nil {
		response.ResponseError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}
