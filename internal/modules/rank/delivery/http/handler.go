package http

import (
	"net/http"
	"strconv"

	"anoa.com/practiceforum/internal/entity"
	rankDto "anoa.com/practiceforum/internal/modules/rank/dto"
	rankService "anoa.com/practiceforum/internal/modules/rank/service"
	"anoa.com/practiceforum/pkg/apperror"
	"anoa.com/practiceforum/pkg/response"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type RankHandler struct {
	service rankService.RankService
}

func NewRankHandler(service rankService.RankService) *RankHandler {
	return &RankHandler{service: service}
}

func (h *RankHandler) GetMyRanks(c *gin.Context) {
	userID, err := response.GetUserID(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	resp, err := h.service.GetUserRanks(c.Request.Context(), userID)
	if err != nil {
		response.ResponseError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *RankHandler) GetUserRanks(c *gin.Context) {
	userID, err := uuid.Parse(c.Param("user_id"))
	if err != nil {
		response.ResponseError(c, apperror.NewValidationError("user_id", "invalid user id"))
		return
	}

	resp, err := h.service.GetUserRanks(c.Request.Context(), userID)
	if err != nil {
		response.ResponseError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *RankHandler) GetLeaderboard(c *gin.Context) {
	kind, err := entity.ParseActivityKind(c.Param("kind"))
	if err != nil {
		response.ResponseError(c, apperror.NewValidationError("kind", err.Error()))
		return
	}

	var filter rankDto.LeaderboardFilter
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

func (h *RankHandler) GetMyHistory(c *gin.Context) {
	userID, err := response.GetUserID(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}
	kind, err := entity.ParseActivityKind(c.Param("kind"))
	if err != nil {
		response.ResponseError(c, apperror.NewValidationError("kind", err.Error()))
		return
	}
	limit, _ := strconv.Atoi(c.Query("limit"))

	resp, err := h.service.GetHistory(c.Request.Context(), userID, kind, limit)
	if err != nil {
		response.ResponseError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (h *RankHandler) GetDaysToRank(c *gin.Context) {
	var req rankDto.DaysToRankRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	kind, err := entity.ParseActivityKind(req.Kind)
	if err != nil {
		response.ResponseError(c, apperror.NewValidationError("kind", err.Error()))
		return
	}

	resp, err := h.service.DaysToRank(c.Request.Context(), kind, req.Major, req.SubMajor, req.Minor)
	if err != nil {
		response.ResponseError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
