package http

import (
	"net/http"

	tierDto "anoa.com/practiceforum/internal/modules/tier/dto"
	tierService "anoa.com/practiceforum/internal/modules/tier/service"
	"anoa.com/practiceforum/pkg/apperror"
	"anoa.com/practiceforum/pkg/response"
	"github.com/gin-gonic/gin"
)

type TierHandler struct {
	service tierService.TierService
}

func NewTierHandler(service tierService.TierService) *TierHandler {
	return &TierHandler{service: service}
}

func (h *TierHandler) GetMajorTiers(c *gin.Context) {
	catalog, err := h.service.Catalog(c.Request.Context())
	if err != nil {
		response.ResponseError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": tierService.ToTierResponses(catalog.Major)})
}

func (h *TierHandler) GetSubMajorTiers(c *gin.Context) {
	catalog, err := h.service.Catalog(c.Request.Context())
	if err != nil {
		response.ResponseError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": tierService.ToTierResponses(catalog.SubMajor)})
}

func (h *TierHandler) GetMinorTiers(c *gin.Context) {
	catalog, err := h.service.Catalog(c.Request.Context())
	if err != nil {
		response.ResponseError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": tierService.ToTierResponses(catalog.Minor)})
}

func (h *TierHandler) GetConstants(c *gin.Context) {
	resp, err := h.service.GetConstants(c.Request.Context())
	if err != nil {
		response.ResponseError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *TierHandler) UpdateConstant(c *gin.Context) {
	kind, err := tierService.ParseConstantKind(c.Param("kind"))
	if err != nil {
		response.ResponseError(c, apperror.NewValidationError("kind", err.Error()))
		return
	}

	var req tierDto.UpdateConstantRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	resp, err := h.service.UpdateConstant(c.Request.Context(), kind, req)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Rank constant updated successfully", "constant": resp})
}
