package agent

import (
	"context"
	"fmt"
	"time"

	"anoa.com/practiceforum/pkg/apperror"
	"github.com/robfig/cron/v3"
	log "github.com/sirupsen/logrus"
)

// Scheduler registers agents on a cron and manages their lifecycle.
type Scheduler struct {
	cron   *cron.Cron
	agents []Agent
	ctx    context.Context
	cancel context.CancelFunc
}

// NewScheduler builds a scheduler whose specs are read in loc.
// A run that is still going when the next one is due is skipped.
func NewScheduler(loc *time.Location) *Scheduler {
	if loc == nil {
		loc = time.UTC
	}
	cronLogger := cron.PrintfLogger(log.StandardLogger())
	ctx, cancel := context.WithCancel(context.Background())

	return &Scheduler{
		cron: cron.New(
			cron.WithLocation(loc),
			cron.WithChain(cron.Recover(cronLogger), cron.SkipIfStillRunning(cronLogger)),
		),
		agents: make([]Agent, 0),
		ctx:    ctx,
		cancel: cancel,
	}
}

// RegisterAgent adds agent and schedules it when it has a spec. An agent
// whose spec does not parse is not registered.
func (s *Scheduler) RegisterAgent(agent Agent) error {
	schedule := agent.GetSchedule()
	if schedule == "" {
		s.agents = append(s.agents, agent)
		log.WithField("agent", agent.GetName()).Info("registered on-demand agent")
		return nil
	}

	_, err := s.cron.AddFunc(schedule, func() {
		started := time.Now()
		entry := log.WithField("agent", agent.GetName())
		entry.Debug("starting scheduled job")
		if err := agent.Execute(s.ctx); err != nil {
			entry.WithError(err).Error("scheduled job failed")
			return
		}
		entry.WithField("took", time.Since(started)).Debug("scheduled job completed")
	})
	if err != nil {
		return fmt.Errorf("failed to schedule agent %s: %w", agent.GetName(), err)
	}
	s.agents = append(s.agents, agent)

	log.WithFields(log.Fields{
		"agent": agent.GetName(),
		"spec":  schedule,
	}).Info("agent scheduled")
	return nil
}

func (s *Scheduler) Start() {
	s.cron.Start()
	log.WithField("agents", len(s.agents)).Info("agent scheduler started")
}

// Stop halts new runs and waits for running jobs until ctx is done.
func (s *Scheduler) Stop(ctx context.Context) error {
	done := s.cron.Stop()
	defer s.cancel()

	select {
	case <-done.Done():
		log.Info("agent scheduler stopped")
		return nil
	case <-ctx.Done():
		return fmt.Errorf("agent scheduler stop: %w", ctx.Err())
	}
}

// RunAgentByName runs an agent once, outside its schedule.
func (s *Scheduler) RunAgentByName(ctx context.Context, name string) error {
	for _, agent := range s.agents {
		if agent.GetName() == name {
			log.WithField("agent", name).Info("running on-demand execution")
			return agent.Execute(ctx)
		}
	}
	return fmt.Errorf("agent %q: %w", name, apperror.ErrNotFound)
}

// GetRegisteredAgents lists agent names in registration order.
func (s *Scheduler) GetRegisteredAgents() []string {
	names := make([]string, len(s.agents))
	for i, agent := range s.agents {
		names[i] = agent.GetName()
	}
	return names
}
