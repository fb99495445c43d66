package progress

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
	"github.com/google/uuid"

	"github.com/prajwalbharadwajbm/campaignstudio/internal/models"
)

// Messages shown once a job has finished
const (
	SuccessMessage = "Campaign generated successfully!"
	FailureMessage = "Error generating campaign"
)

// ErrJobNotFound is returned for unknown or expired job ids
var ErrJobNotFound = errors.New("job not found")

// Step is one stage of the progress indicator
type Step struct {
	ID      string
	Message string
	Percent int
}

// Steps are shown on a fixed schedule. The backend reports nothing until
// it answers, so they describe the pipeline rather than measure it.
var Steps = []Step{
	{ID: "step1", Message: "Checking compliance...", Percent: 5},
	{ID: "step2", Message: "Validating request...", Percent: 15},
	{ID: "step3", Message: "Generating AI images...", Percent: 45},
	{ID: "step4", Message: "Translating content...", Percent: 65},
	{ID: "step5", Message: "Adding brand overlays...", Percent: 85},
	{ID: "step6", Message: "Finalizing campaign...", Percent: 95},
}

// Status is the lifecycle state of a job
type Status string

const (
	StatusRunning   Status = "running"
	StatusSucceeded Status = "succeeded"
	StatusFailed    Status = "failed"
)

// StepState is the display state of one step
type StepState string

const (
	StepPending   StepState = ""
	StepActive    StepState = "active"
	StepCompleted StepState = "completed"
)

// StepView pairs a step with its current state
type StepView struct {
	Step
	State StepState
}

// Func performs the generation. ctx is only cancelled on shutdown.
type Func func(ctx context.Context) (models.GenerateResult, error)

// Snapshot is a copy of a job's state at one instant
type Snapshot struct {
	ID         string
	Status     Status
	Percent    int
	Message    string
	Steps      []StepView
	Draft      models.CampaignDraft
	Result     *models.GenerateResult
	Err        error
	StartedAt  time.Time
	FinishedAt time.Time
}

// Done reports whether the job has finished either way
func (s Snapshot) Done() bool {
	return s.Status == StatusSucceeded || s.Status == StatusFailed
}

type job struct {
	id         string
	draft      models.CampaignDraft
	current    int // index of the active step
	status     Status
	result     *models.GenerateResult
	err        error
	startedAt  time.Time
	finishedAt time.Time
}

// Options configures a Tracker
type Options struct {
	// Interval between step advances
	Interval time.Duration
	// TTL is how long a finished job stays readable
	TTL time.Duration
}

// Tracker runs generation jobs and simulates their progress
type Tracker struct {
	mu   sync.RWMutex
	jobs map[string]*job

	interval time.Duration
	ttl      time.Duration
	logger   log.Logger
	now      func() time.Time

	ctx       context.Context
	cancel    context.CancelFunc
	wg        sync.WaitGroup
	closeOnce sync.Once
}

// NewTracker creates a tracker and starts its expiry sweeper
func NewTracker(opts Options, logger log.Logger) *Tracker {
	if opts.Interval <= 0 {
		opts.Interval = 3 * time.Second
	}
	if opts.TTL <= 0 {
		opts.TTL = 30 * time.Minute
	}
	ctx, cancel := context.WithCancel(context.Background())
	t := &Tracker{
		jobs:     make(map[string]*job),
		interval: opts.Interval,
		ttl:      opts.TTL,
		logger:   logger,
		now:      time.Now,
		ctx:      ctx,
		cancel:   cancel,
	}

	t.wg.Add(1)
	go t.sweep()
	return t
}

// Start registers a job for draft, shows the first step immediately and
// runs fn in the background. It returns the job id.
func (t *Tracker) Start(draft models.CampaignDraft, fn Func) string {
	j := &job{
		id:        uuid.New().String(),
		draft:     draft,
		status:    StatusRunning,
		startedAt: t.now(),
	}

	t.mu.Lock()
	t.jobs[j.id] = j
	t.mu.Unlock()

	done := make(chan struct{})
	t.wg.Add(2)
	go t.advance(j, done)
	go t.run(j, fn, done)

	level.Debug(t.logger).Log("msg", "job started", "job_id", j.id)
	return j.id
}

// advance moves to the next step on every tick until the job finishes.
// The last step holds until the backend answers.
func (t *Tracker) advance(j *job, done <-chan struct{}) {
	defer t.wg.Done()

	ticker := time.NewTicker(t.interval)
	defer ticker.Stop()

	for {
		select {
		case <-done:
			return
		case <-t.ctx.Done():
			return
		case <-ticker.C:
			t.mu.Lock()
			if j.status == StatusRunning && j.current < len(Steps)-1 {
				j.current++
			}
			t.mu.Unlock()
		}
	}
}

func (t *Tracker) run(j *job, fn Func, done chan<- struct{}) {
	defer t.wg.Done()

	result, err := fn(t.ctx)

	t.mu.Lock()
	j.finishedAt = t.now()
	if err != nil {
		j.status = StatusFailed
		j.err = err
	} else {
		j.status = StatusSucceeded
		j.result = &result
	}
	t.mu.Unlock()
	close(done)

	if err != nil {
		level.Warn(t.logger).Log("msg", "job failed", "job_id", j.id, "err", err)
		return
	}
	level.Info(t.logger).Log("msg", "job finished", "job_id", j.id, "campaign_id", result.CampaignID,
		"took", j.finishedAt.Sub(j.startedAt))
}

// Snapshot returns the current state of a job
func (t *Tracker) Snapshot(id string) (Snapshot, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	j, ok := t.jobs[id]
	if !ok {
		return Snapshot{}, ErrJobNotFound
	}
	return j.snapshot(), nil
}

func (j *job) snapshot() Snapshot {
	s := Snapshot{
		ID:         j.id,
		Status:     j.status,
		Draft:      j.draft,
		Result:     j.result,
		Err:        j.err,
		StartedAt:  j.startedAt,
		FinishedAt: j.finishedAt,
		Steps:      make([]StepView, len(Steps)),
	}

	switch j.status {
	case StatusSucceeded:
		s.Percent = 100
		s.Message = SuccessMessage
		for i, step := range Steps {
			s.Steps[i] = StepView{Step: step, State: StepCompleted}
		}
	case StatusFailed:
		s.Percent = 0
		s.Message = FailureMessage
		for i, step := range Steps {
			s.Steps[i] = StepView{Step: step, State: StepPending}
		}
	default:
		s.Percent = Steps[j.current].Percent
		s.Message = Steps[j.current].Message
		for i, step := range Steps {
			state := StepPending
			switch {
			case i < j.current:
				state = StepCompleted
			case i == j.current:
				state = StepActive
			}
			s.Steps[i] = StepView{Step: step, State: state}
		}
	}
	return s
}

// Len returns the number of tracked jobs
func (t *Tracker) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.jobs)
}

// sweep drops finished jobs older than the TTL
func (t *Tracker) sweep() {
	defer t.wg.Done()

	ticker := time.NewTicker(sweepEvery(t.ttl))
	defer ticker.Stop()

	for {
		select {
		case <-t.ctx.Done():
			return
		case <-ticker.C:
			if n := t.expire(); n > 0 {
				level.Debug(t.logger).Log("msg", "expired jobs", "count", n)
			}
		}
	}
}

func (t *Tracker) expire() int {
	cutoff := t.now().Add(-t.ttl)

	t.mu.Lock()
	defer t.mu.Unlock()

	n := 0
	for id, j := range t.jobs {
		if j.status != StatusRunning && j.finishedAt.Before(cutoff) {
			delete(t.jobs, id)
			n++
		}
	}
	return n
}

func sweepEvery(ttl time.Duration) time.Duration {
	every := ttl / 4
	if every < 10*time.Millisecond {
		every = 10 * time.Millisecond
	}
	if every > time.Minute {
		every = time.Minute
	}
	return every
}

// Close cancels running jobs and waits for every goroutine to exit
func (t *Tracker) Close() {
	t.closeOnce.Do(func() {
		t.cancel()
		t.wg.Wait()
	})
}
