package agents

import (
	"context"
	"errors"
	"fmt"
	"runtime/debug"
	"time"

	"anoa.com/practiceforum/internal/entity"
	blockRepo "anoa.com/practiceforum/internal/modules/block/repository"
	scheduleDto "anoa.com/practiceforum/internal/modules/schedule/dto"
	scheduleRepo "anoa.com/practiceforum/internal/modules/schedule/repository"
	scheduleService "anoa.com/practiceforum/internal/modules/schedule/service"
	"anoa.com/practiceforum/pkg/apperror"
	"anoa.com/practiceforum/pkg/cache"
	"anoa.com/practiceforum/pkg/clock"
	"cloud.google.com/go/civil"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

const fallbackTitleLayout = "02-01-2006"

// ContentWriter produces block titles and post bodies from schedule prompts.
type ContentWriter interface {
	Title(ctx context.Context, prompt string, date time.Time) (string, error)
	Content(ctx context.Context, prompt string, minWords, maxWords int) (string, error)
}

// AutoPoster stores generated posts.
type AutoPoster interface {
	CreateAutoPost(ctx context.Context, authorID, blockID uuid.UUID, title, content string) (*entity.Post, error)
}

// CommunityScheduleConfig configures CommunityScheduleAgent.
type CommunityScheduleConfig struct {
	// Schedule is the tick spec, "@every 1m" by default.
	Schedule string

	// Concurrency bounds how many schedules run at once in one tick.
	Concurrency int

	// LockTTL is how long a bucket lock outlives a successful run.
	LockTTL time.Duration
}

func DefaultCommunityScheduleConfig() CommunityScheduleConfig {
	return CommunityScheduleConfig{
		Schedule:    "@every 1m",
		Concurrency: 8,
		LockTTL:     2 * time.Minute,
	}
}

// CommunityScheduleAgent creates one block per schedule period, optionally
// with a generated title and post.
type CommunityScheduleAgent struct {
	schedules scheduleRepo.ScheduleRepository
	blocks    blockRepo.BlockRepository
	posts     AutoPoster
	writer    ContentWriter
	locker    cache.Locker
	clock     clock.Clock
	config    CommunityScheduleConfig
}

func NewCommunityScheduleAgent(
	schedules scheduleRepo.ScheduleRepository,
	blocks blockRepo.BlockRepository,
	posts AutoPoster,
	writer ContentWriter,
	locker cache.Locker,
	clk clock.Clock,
	config CommunityScheduleConfig,
) *CommunityScheduleAgent {
	if clk == nil {
		clk = clock.System()
	}
	if locker == nil {
		locker = cache.NewRedisLocker(nil)
	}
	defaults := DefaultCommunityScheduleConfig()
	if config.Schedule == "" {
		config.Schedule = defaults.Schedule
	}
	if config.Concurrency <= 0 {
		config.Concurrency = defaults.Concurrency
	}
	if config.LockTTL <= 0 {
		config.LockTTL = defaults.LockTTL
	}

	return &CommunityScheduleAgent{
		schedules: schedules,
		blocks:    blocks,
		posts:     posts,
		writer:    writer,
		locker:    locker,
		clock:     clk,
		config:    config,
	}
}

// GetName implements agent.Agent
func (a *CommunityScheduleAgent) GetName() string {
	return "CommunityScheduleAgent"
}

// GetSchedule implements agent.Agent
func (a *CommunityScheduleAgent) GetSchedule() string {
	return a.config.Schedule
}

// Execute implements agent.Agent. It is one tick: every active schedule is
// evaluated, and a failure in one schedule never stops the others.
func (a *CommunityScheduleAgent) Execute(ctx context.Context) error {
	schedules, err := a.schedules.ListActive(ctx)
	if err != nil {
		return fmt.Errorf("failed to list active schedules: %w", err)
	}

	now := a.clock.Now()
	var g errgroup.Group
	g.SetLimit(a.config.Concurrency)

	for i := range schedules {
		schedule := &schedules[i]
		g.Go(func() error {
			a.tickOne(ctx, schedule, now)
			return nil
		})
	}

	return g.Wait()
}

// tickOne is the failure boundary of a single schedule.
func (a *CommunityScheduleAgent) tickOne(ctx context.Context, schedule *entity.CommunitySchedule, now time.Time) {
	entry := log.WithFields(log.Fields{
		"schedule_id":  schedule.ID,
		"community_id": schedule.CommunityID,
	})
	defer func() {
		if r := recover(); r != nil {
			entry.WithField("stack", string(debug.Stack())).Errorf("schedule job panicked: %v", r)
		}
	}()

	fireAt, ok := scheduleService.Match(schedule, now)
	if !ok {
		return
	}

	latest, err := a.blocks.FindLatestAutoGenerated(ctx, schedule.CommunityID)
	if err != nil {
		entry.WithError(err).Error("failed to load latest block")
		return
	}
	bucket, ok := scheduleService.ShouldFire(schedule, now, latest)
	if !ok {
		return
	}

	_, err = a.RunSchedule(ctx, schedule, fireAt, bucket)
	switch {
	case errors.Is(err, apperror.ErrIdempotencyConflict):
		entry.WithField("bucket", bucket).Debug("bucket already serviced")
	case err != nil:
		entry.WithField("bucket", bucket).WithError(err).Error("schedule job failed")
	}
}

// ExecuteNow runs the job for the period containing the current instant,
// ignoring the configured time of day.
func (a *CommunityScheduleAgent) ExecuteNow(ctx context.Context, schedule *entity.CommunitySchedule) (*scheduleDto.ExecutionResponse, error) {
	now := a.clock.Now()
	return a.RunSchedule(ctx, schedule, now, scheduleService.PeriodBucketKey(schedule, now))
}

// RunSchedule creates the block for bucket and, when enabled, its generated
// post. It returns apperror.ErrIdempotencyConflict when the bucket already
// has a block. A content failure leaves the block without a post.
func (a *CommunityScheduleAgent) RunSchedule(ctx context.Context, schedule *entity.CommunitySchedule, fireAt time.Time, bucket string) (resp *scheduleDto.ExecutionResponse, err error) {
	entry := log.WithFields(log.Fields{
		"schedule_id":  schedule.ID,
		"community_id": schedule.CommunityID,
		"bucket":       bucket,
	})

	lockKey := cache.ScheduleLockKey(schedule.CommunityID.String(), bucket)
	locked, lockErr := a.locker.TryLock(ctx, lockKey, a.config.LockTTL)
	switch {
	case lockErr != nil:
		// The unique (community_id, bucket_key) index still guards the insert.
		entry.WithError(lockErr).Warn("bucket lock unavailable, relying on database guard")
	case !locked:
		return nil, apperror.ErrIdempotencyConflict
	default:
		defer func() {
			if err != nil {
				if unlockErr := a.locker.Unlock(context.WithoutCancel(ctx), lockKey); unlockErr != nil {
					entry.WithError(unlockErr).Warn("failed to release bucket lock")
				}
			}
		}()
	}

	local := fireAt.In(clock.Location(schedule.Timezone))
	title := a.resolveTitle(ctx, schedule, local, entry)

	block := &entity.Block{
		CommunityID:     schedule.CommunityID,
		Title:           title,
		Date:            clock.ToDBDate(civil.DateOf(local)),
		BucketKey:       &bucket,
		IsAutoGenerated: true,
		ScheduleID:      &schedule.ID,
	}
	if err := a.blocks.CreateForBucket(ctx, block); err != nil {
		return nil, err
	}
	entry.WithField("block_id", block.ID).Info("block created")

	resp = &scheduleDto.ExecutionResponse{
		BlockID:   block.ID,
		BucketKey: bucket,
		Title:     title,
	}

	if schedule.AutoGenPost {
		postID, postErr := a.createPost(ctx, schedule, block)
		if postErr != nil {
			entry.WithError(postErr).Error("post generation failed, block kept without post")
			resp.PostError = postErr.Error()
		} else {
			resp.PostID = &postID
		}
	}

	if markErr := a.schedules.MarkExecuted(ctx, schedule.ID, a.clock.Now()); markErr != nil {
		entry.WithError(markErr).Warn("failed to record last execution")
	}

	return resp, nil
}

func (a *CommunityScheduleAgent) resolveTitle(ctx context.Context, schedule *entity.CommunitySchedule, local time.Time, entry *log.Entry) string {
	fallback := local.Format(fallbackTitleLayout)
	if !schedule.AutoGenTitle || a.writer == nil {
		return fallback
	}

	title, err := a.writer.Title(ctx, schedule.TitlePrompt, local)
	if err != nil {
		entry.WithError(err).Warn("title generation failed, using date title")
		return fallback
	}
	return title
}

func (a *CommunityScheduleAgent) createPost(ctx context.Context, schedule *entity.CommunitySchedule, block *entity.Block) (uuid.UUID, error) {
	if schedule.Community == nil {
		return uuid.Nil, fmt.Errorf("community %s not loaded", schedule.CommunityID)
	}
	if a.writer == nil || a.posts == nil {
		return uuid.Nil, apperror.NewConfigurationError("scheduler", "content generation is not configured")
	}

	content, err := a.writer.Content(ctx, schedule.PostPrompt, schedule.WordLimitMin, schedule.WordLimitMax)
	if err != nil {
		return uuid.Nil, err
	}

	post, err := a.posts.CreateAutoPost(ctx, schedule.Community.OwnerID, block.ID,
		fmt.Sprintf("Auto-generated post for %s", block.Title), content)
	if err != nil {
		return uuid.Nil, err
	}
	return post.ID, nil
}
