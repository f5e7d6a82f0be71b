package http

import (
	"context"
	"net/http"

	"anoa.com/practiceforum/pkg/response"
	"github.com/gin-gonic/gin"
)

// Runner is the part of agent.Scheduler the admin routes drive.
type Runner interface {
	RunAgentByName(ctx context.Context, name string) error
	GetRegisteredAgents() []string
}

type AgentHandler struct {
	runner Runner
}

func NewAgentHandler(runner Runner) *AgentHandler {
	return &AgentHandler{runner: runner}
}

func (h *AgentHandler) ListAgents(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"agents": h.runner.GetRegisteredAgents()})
}

// RunAgent runs one pass of the named agent, for example a scheduler tick.
func (h *AgentHandler) RunAgent(c *gin.Context) {
	name := c.Param("name")
	if err := h.runner.RunAgentByName(c.Request.Context(), name); err != nil {
		response.ResponseError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Agent executed successfully", "agent": name})
}
