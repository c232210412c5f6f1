// Package usecase provides business logic.
package usecase

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/forest33/arena/business/entity"
	"github.com/forest33/arena/pkg/logger"
)

const (
	idleSweepInterval = time.Second
)

// EngineUseCase the authoritative match engine. It owns the connection
// registry, the matchmaking queue and the session table, all guarded by mux.
type EngineUseCase struct {
	ctx         context.Context
	log         *logger.Logger
	cfg         *entity.ServerConfig
	cfgHandler  configHandler
	recorder    *Recorder
	cosmetics   entity.CosmeticsResolver
	settings    engineSettings
	connections map[string]*entity.Connection
	queue       []*queueEntry
	sessions    map[string]*entity.Session
	rng         *rand.Rand
	now         func() time.Time
	newID       func() string
	ticks       uint64
	lastSweep   time.Time
	mux         sync.Mutex
}

// engineSettings configuration copied out of the shared config, updated by the config observer
type engineSettings struct {
	tickRate      int
	tieBreak      string
	idleTimeout   time.Duration
	rewards       entity.RewardsConfig
	bot           entity.BotConfig
	resolveTime   time.Duration
	tracingTick   bool
	tracingCombat bool
}

// NewEngineUseCase creates a new EngineUseCase, ledger and cosmetics may be nil
func NewEngineUseCase(ctx context.Context, log *logger.Logger, cfg *entity.ServerConfig, cfgHandler configHandler,
	ledger entity.Ledger, cosmetics entity.CosmeticsResolver) (*EngineUseCase, error) {

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	seed := cfg.Bot.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	uc := &EngineUseCase{
		ctx:         ctx,
		log:         log.Layer("engine"),
		cfg:         cfg,
		cfgHandler:  cfgHandler,
		recorder:    NewRecorder(ctx, log, getRecorderConfig(cfg.Ledger), ledger),
		cosmetics:   cosmetics,
		settings:    getEngineSettings(cfg),
		connections: make(map[string]*entity.Connection, 64),
		queue:       make([]*queueEntry, 0, 16),
		sessions:    make(map[string]*entity.Session, 32),
		rng:         rand.New(rand.NewSource(seed)),
		now:         time.Now,
		newID:       func() string { return uuid.New().String() },
	}

	return uc, nil
}

func getEngineSettings(cfg *entity.ServerConfig) engineSettings {
	s := engineSettings{
		tickRate:    cfg.Engine.TickRate,
		tieBreak:    cfg.Engine.TieBreak,
		idleTimeout: time.Duration(cfg.Network.IdleTimeout) * time.Second,
		rewards:     *cfg.Rewards,
		bot:         *cfg.Bot,
		resolveTime: time.Duration(cfg.Cosmetics.ResolveTimeout) * time.Millisecond,
	}
	if cfg.Tracing != nil {
		s.tracingTick = cfg.Tracing.Tick
		s.tracingCombat = cfg.Tracing.Combat
	}
	return s
}

// Start launches the tick loop and the outcome recorder
func (uc *EngineUseCase) Start() error {
	if uc.cfgHandler != nil {
		if err := uc.cfgHandler.AddObserver(uc.onConfigChanged); err != nil {
			uc.log.Error().Err(err).Msg("failed to create config file observer")
			return err
		}
	}

	uc.recorder.Start()
	go uc.loop()

	uc.log.Info().
		Int("tick_rate", uc.settings.tickRate).
		Str("tie_break", uc.settings.tieBreak).
		Dur("idle_timeout", uc.settings.idleTimeout).
		Msg("engine started")

	return nil
}

// Wait blocks until the recorder workers exit after the context is cancelled
func (uc *EngineUseCase) Wait() {
	uc.recorder.Wait()
}

func (uc *EngineUseCase) loop() {
	ticker := time.NewTicker(time.Second / time.Duration(uc.settings.tickRate))
	defer ticker.Stop()

	for {
		select {
		case <-uc.ctx.Done():
			uc.log.Info().Msg("engine stopped")
			return
		case <-ticker.C:
			uc.tick(uc.now())
		}
	}
}

// tick advances every live session by one step
func (uc *EngineUseCase) tick(now time.Time) {
	uc.mux.Lock()
	defer uc.mux.Unlock()

	started := time.Now()
	uc.ticks++

	for _, s := range uc.sessions {
		uc.tickSession(s, now)
	}

	if now.Sub(uc.lastSweep) >= idleSweepInterval {
		uc.sweepIdle(now)
		uc.lastSweep = now
	}

	if uc.settings.tracingTick {
		uc.log.Debug().
			Uint64("tick", uc.ticks).
			Int("sessions", len(uc.sessions)).
			Int("connections", len(uc.connections)).
			Int("queue", len(uc.queue)).
			Int64("duration_us", time.Since(started).Microseconds()).
			Msg("tick")
	}
}

// Connect registers a new human connection and greets it
func (uc *EngineUseCase) Connect(p entity.Peer) string {
	uc.mux.Lock()
	defer uc.mux.Unlock()

	conn := uc.register(p)
	uc.send(conn, &entity.Message{
		Type:    entity.MessageTypeWelcome,
		Payload: &entity.WelcomeResponse{ID: conn.ID},
	})

	return conn.ID
}

// Disconnect unregisters a connection closed by its transport
func (uc *EngineUseCase) Disconnect(connID string, err error) {
	uc.mux.Lock()
	defer uc.mux.Unlock()

	ev := uc.log.Info()
	if err != nil && !entity.IsErrorInterruptingNetwork(err) {
		ev = uc.log.Warn().Err(err)
	}
	ev.Str("connection_id", connID).Msg("disconnected")

	uc.unregister(connID)
}

func (uc *EngineUseCase) send(conn *entity.Connection, msg *entity.Message) {
	if err := conn.Send(msg); err != nil {
		ev := uc.log.Error()
		if entity.IsErrorInterruptingNetwork(err) {
			ev = uc.log.Debug()
		}
		ev.Err(err).
			Str("connection_id", conn.ID).
			Str("type", msg.Type.String()).
			Msg("failed to send message")
	}
}

func (uc *EngineUseCase) broadcast(s *entity.Session, msg *entity.Message) {
	for c, err := range s.Broadcast(msg) {
		ev := uc.log.Error()
		if entity.IsErrorInterruptingNetwork(err) {
			ev = uc.log.Debug()
		}
		ev.Err(err).
			Str("connection_id", c.ID).
			Str("match_id", s.ID).
			Str("type", msg.Type.String()).
			Msg("failed to broadcast message")
	}
}

func (uc *EngineUseCase) onConfigChanged(data interface{}) {
	cfg, ok := data.(*entity.ServerConfig)
	if !ok {
		return
	}
	if err := cfg.Validate(); err != nil {
		uc.log.Error().Err(err).Msg("new configuration rejected")
		return
	}

	uc.mux.Lock()
	defer uc.mux.Unlock()

	settings := getEngineSettings(cfg)
	settings.tickRate = uc.settings.tickRate
	uc.settings = settings

	uc.log.Info().
		Int("reward_win", settings.rewards.Win).
		Int("reward_loss", settings.rewards.Loss).
		Str("tie_break", settings.tieBreak).
		Msg("engine settings updated")
}
