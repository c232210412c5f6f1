package usecase

import (
	"context"
	"math"
	"sync"
	"time"

	"github.com/forest33/arena/business/entity"
	"github.com/forest33/arena/pkg/logger"
)

const (
	defaultRecorderQueueSize = 256
)

// Recorder hands finished match outcomes to the ledger off the tick loop.
// Failed calls are retried with exponential backoff, a full queue drops the outcome.
type Recorder struct {
	ctx    context.Context
	log    *logger.Logger
	cfg    *RecorderConfig
	ledger entity.Ledger
	ch     chan *entity.MatchOutcome
	wg     sync.WaitGroup
	once   sync.Once
}

type RecorderConfig struct {
	QueueSize      int
	Workers        int
	MaxAttempts    int
	BackoffFactor  float64
	InitialDelay   time.Duration
	RequestTimeout time.Duration
}

func getRecorderConfig(c *entity.LedgerConfig) *RecorderConfig {
	return &RecorderConfig{
		QueueSize:      c.QueueSize,
		Workers:        c.Workers,
		MaxAttempts:    c.MaxAttempts,
		BackoffFactor:  c.BackoffFactor,
		InitialDelay:   time.Second,
		RequestTimeout: time.Duration(c.RequestTimeout) * time.Second,
	}
}

// NewRecorder creates a new Recorder, a nil ledger only logs outcomes
func NewRecorder(ctx context.Context, log *logger.Logger, cfg *RecorderConfig, ledger entity.Ledger) *Recorder {
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = defaultRecorderQueueSize
	}
	if cfg.Workers <= 0 {
		cfg.Workers = 1
	}
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = 1
	}

	return &Recorder{
		ctx:    ctx,
		log:    log.Layer("recorder"),
		cfg:    cfg,
		ledger: ledger,
		ch:     make(chan *entity.MatchOutcome, cfg.QueueSize),
	}
}

func (r *Recorder) Start() {
	r.once.Do(func() {
		for i := 0; i < r.cfg.Workers; i++ {
			r.wg.Add(1)
			go r.worker()
		}
	})
}

// Wait blocks until every worker has stopped
func (r *Recorder) Wait() {
	r.wg.Wait()
}

// Record queues an outcome without blocking
func (r *Recorder) Record(o *entity.MatchOutcome) {
	select {
	case r.ch <- o:
	default:
		r.log.Warn().
			Err(entity.ErrRecorderQueueFull).
			Str("match_id", o.MatchID).
			Msg("match outcome dropped")
	}
}

func (r *Recorder) worker() {
	defer r.wg.Done()

	for {
		select {
		case <-r.ctx.Done():
			return
		case o := <-r.ch:
			r.process(o)
		}
	}
}

func (r *Recorder) process(o *entity.MatchOutcome) {
	if r.ledger == nil {
		r.log.Info().
			Str("match_id", o.MatchID).
			Str("winner", o.Winner).
			Str("loser", o.Loser).
			Str("reason", string(o.Reason)).
			Interface("players", o.Players).
			Msg("match outcome")
		return
	}

	if err := r.retry(func(ctx context.Context) error {
		return r.ledger.RecordMatch(ctx, o)
	}); err != nil {
		r.log.Error().Err(err).
			Str("match_id", o.MatchID).
			Msg("failed to record match")
	}

	for _, st := range o.Stats() {
		st := st
		if err := r.retry(func(ctx context.Context) error {
			return r.ledger.UpsertPlayerStats(ctx, st)
		}); err != nil {
			r.log.Error().Err(err).
				Str("match_id", o.MatchID).
				Str("player_id", st.PlayerID).
				Msg("failed to update player stats")
		}
	}
}

// retry calls f until it succeeds, the attempts run out or the recorder stops
func (r *Recorder) retry(f func(ctx context.Context) error) error {
	var err error
	for attempt := 0; attempt < r.cfg.MaxAttempts; attempt++ {
		if attempt > 0 {
			delay := r.backoff(attempt)
			r.log.Debug().Err(err).
				Int("attempt", attempt).
				Dur("delay", delay).
				Msg("retrying ledger call")

			select {
			case <-r.ctx.Done():
				return r.ctx.Err()
			case <-time.After(delay):
			}
		}

		if err = r.call(f); err == nil {
			return nil
		}
	}
	return err
}

func (r *Recorder) call(f func(ctx context.Context) error) error {
	ctx := r.ctx
	if r.cfg.RequestTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(r.ctx, r.cfg.RequestTimeout)
		defer cancel()
	}
	return f(ctx)
}

func (r *Recorder) backoff(attempt int) time.Duration {
	return time.Duration(float64(r.cfg.InitialDelay) * math.Exp(float64(attempt)*r.cfg.BackoffFactor))
}
