package agent

import "context"

// Agent is a background job the Scheduler runs on a cron spec.
//
// Implementations:
//   - CommunityScheduleAgent: creates period blocks and generated posts for community schedules
type Agent interface {
	// GetName returns the unique agent name used in logs and RunAgentByName.
	GetName() string

	// GetSchedule returns the cron spec (for example "@every 1m").
	// An empty spec registers the agent as on-demand only.
	GetSchedule() string

	// Execute runs one pass of the agent's job.
	Execute(ctx context.Context) error
}
