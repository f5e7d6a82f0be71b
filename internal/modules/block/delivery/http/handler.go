package http

import (
	"net/http"

	blockDto "anoa.com/practiceforum/internal/modules/block/dto"
	blockService "anoa.com/practiceforum/internal/modules/block/service"
	"anoa.com/practiceforum/pkg/response"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type BlockHandler struct {
	service blockService.BlockService
}

func NewBlockHandler(service blockService.BlockService) *BlockHandler {
	return &BlockHandler{service: service}
}

func (h *BlockHandler) ListByCommunity(c *gin.Context) {
	communityID, err := uuid.Parse(c.Param("community_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid community id"})
		return
	}

	var filter blockDto.BlockFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	resp, err := h.service.ListByCommunity(c.Request.Context(), communityID, filter)
	if err != nil {
		response.ResponseError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *BlockHandler) GetBlock(c *gin.Context) {
	blockID, err := uuid.Parse(c.Param("block_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid block id"})
		return
	}

	resp, err := h.service.GetBlock(c.Request.Context(), blockID)
	if err != nil {
		response.ResponseError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
