// Package entity provides entities for business logic.
package entity

import (
	"errors"
	"regexp"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
)

const (
	CodecNameJSON    = "json"
	CodecNameMsgpack = "msgpack"

	CompressionNameNone = "none"
	CompressionNameLZ4  = "lz4"
	CompressionNameLZO  = "lzo"
	CompressionNameZSTD = "zstd"

	TieBreakSecond = "second"
	TieBreakDraw   = "draw"

	DefaultServerConfigFileName = "arena-server.yaml"
)

var wsPathRegexp = regexp.MustCompile(`^/[A-Za-z0-9_\-/]*$`)

// ServerConfig server configuration
type ServerConfig struct {
	Logger    *LoggerConfig    `yaml:"Logger"`
	Runtime   *RuntimeConfig   `yaml:"Runtime"`
	Network   *NetworkConfig   `yaml:"Network"`
	Engine    *EngineConfig    `yaml:"Engine"`
	Rewards   *RewardsConfig   `yaml:"Rewards"`
	Bot       *BotConfig       `yaml:"Bot"`
	Ledger    *LedgerConfig    `yaml:"Ledger"`
	Cosmetics *CosmeticsConfig `yaml:"Cosmetics"`
	Tracing   *TracingConfig   `yaml:"Tracing,omitempty"`
	Profiler  *ProfilerConfig  `yaml:"Profiler"`
	Rest      *RestConfig      `yaml:"Rest"`
}

// LoggerConfig logger settings
type LoggerConfig struct {
	Level             string `yaml:"level" default:"info"`
	TimeFieldFormat   string `yaml:"timeFieldFormat" default:"2006-01-02T15:04:05.000000"`
	PrettyPrint       *bool  `yaml:"prettyPrint" default:"false"`
	DisableSampling   *bool  `yaml:"disableSampling" default:"true"`
	RedirectStdLogger *bool  `yaml:"redirectStdLogger" default:"true"`
	ErrorStack        *bool  `yaml:"errorStack" default:"true"`
	ShowCaller        *bool  `yaml:"showCaller" default:"false"`
	FileName          string `yaml:"fileName,omitempty" default:""`
}

// RuntimeConfig runtime settings
type RuntimeConfig struct {
	GoMaxProcs int `yaml:"goMaxProcs" default:"0"`
}

// NetworkConfig client transports. Timeouts are in seconds.
type NetworkConfig struct {
	Host             string `yaml:"host,omitempty" default:""`
	Port             int    `yaml:"port" default:"8080"`
	WebsocketPath    string `yaml:"websocketPath" default:"/ws"`
	CheckOrigin      *bool  `yaml:"checkOrigin" default:"false"`
	UseTCP           *bool  `yaml:"useTCP" default:"false"`
	TCPPort          int    `yaml:"tcpPort" default:"8081"`
	ReadBufferSize   int    `yaml:"readBufferSize" default:"1024"`
	WriteBufferSize  int    `yaml:"writeBufferSize" default:"1024"`
	MaxMessageSize   int    `yaml:"maxMessageSize" default:"4096"`
	SendQueueSize    int    `yaml:"sendQueueSize" default:"64"`
	WriteTimeout     int    `yaml:"writeTimeout" default:"10"`
	PingInterval     int    `yaml:"pingInterval" default:"30"`
	IdleTimeout      int    `yaml:"idleTimeout" default:"60"`
	Codec            string `yaml:"codec" default:"json"`
	Compression      string `yaml:"compression" default:"none"`
	CompressionLevel int    `yaml:"compressionLevel,omitempty" default:"0"`
}

// EngineConfig simulation settings
type EngineConfig struct {
	TickRate int    `yaml:"tickRate" default:"10"`
	TieBreak string `yaml:"tieBreak" default:"second"`
}

// RewardsConfig coins credited at match end
type RewardsConfig struct {
	Win  int `yaml:"win" default:"50"`
	Loss int `yaml:"loss" default:"10"`
}

// BotConfig AI opponent tunables, distances are in arena units
type BotConfig struct {
	Name              string  `yaml:"name" default:"Bot"`
	FarDistance       float64 `yaml:"farDistance" default:"120"`
	NearDistance      float64 `yaml:"nearDistance" default:"40"`
	LightAttackChance float64 `yaml:"lightAttackChance" default:"0.15"`
	HeavyAttackChance float64 `yaml:"heavyAttackChance" default:"0.05"`
	JumpChance        float64 `yaml:"jumpChance" default:"0.02"`
	Seed              int64   `yaml:"seed,omitempty" default:"0"`
}

// LedgerConfig persistence collaborator
type LedgerConfig struct {
	Enabled        *bool   `yaml:"enabled" default:"false"`
	Address        string  `yaml:"address" default:"localhost:9090"`
	RequestTimeout int     `yaml:"requestTimeout" default:"5"`
	QueueSize      int     `yaml:"queueSize" default:"256"`
	Workers        int     `yaml:"workers" default:"2"`
	MaxAttempts    int     `yaml:"maxAttempts" default:"5"`
	BackoffFactor  float64 `yaml:"backoffFactor" default:"0.5"`
}

// CosmeticsConfig cosmetics catalog, ResolveTimeout is in milliseconds
type CosmeticsConfig struct {
	Enabled        *bool  `yaml:"enabled" default:"false"`
	CatalogFile    string `yaml:"catalogFile" default:"cosmetics.yaml"`
	ResolveTimeout int    `yaml:"resolveTimeout" default:"500"`
}

// TracingConfig tracing configuration
type TracingConfig struct {
	Tick    bool `yaml:"tick,omitempty" default:"false"`
	Combat  bool `yaml:"combat,omitempty" default:"false"`
	Network bool `yaml:"network,omitempty" default:"false"`
}

// ProfilerConfig pprof configuration
type ProfilerConfig struct {
	Enabled *bool  `yaml:"enabled" default:"false"`
	Host    string `yaml:"host" default:"localhost"`
	Port    int    `yaml:"port" default:"8888"`
}

// RestConfig REST API served next to the websocket endpoint
type RestConfig struct {
	Enabled *bool `yaml:"enabled" default:"true"`
}

func (c *ServerConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Logger, validation.Required),
		validation.Field(&c.Network, validation.Required),
		validation.Field(&c.Engine, validation.Required),
		validation.Field(&c.Rewards, validation.Required),
		validation.Field(&c.Bot, validation.Required),
		validation.Field(&c.Ledger, validation.Required),
		validation.Field(&c.Cosmetics, validation.Required),
	)
}

func (c *LoggerConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Level, validation.In("debug", "info", "warn", "error", "fatal", "disabled")),
	)
}

func (c *NetworkConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Host, validation.When(c.Host != "", is.Host)),
		validation.Field(&c.Port, validation.Required, validation.Min(1), validation.Max(65535)),
		validation.Field(&c.TCPPort, validation.When(c.UseTCP != nil && *c.UseTCP, validation.Required, validation.Min(1), validation.Max(65535))),
		validation.Field(&c.WebsocketPath, validation.Required, validation.Match(wsPathRegexp)),
		validation.Field(&c.MaxMessageSize, validation.Min(64)),
		validation.Field(&c.SendQueueSize, validation.Min(1)),
		validation.Field(&c.Codec, validation.In(CodecNameJSON, CodecNameMsgpack)),
		validation.Field(&c.Compression, validation.In(CompressionNameNone, CompressionNameLZ4, CompressionNameLZO, CompressionNameZSTD)),
		validation.Field(&c.CompressionLevel, validation.Min(0), validation.Max(4)),
	)
}

func (c *EngineConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.TickRate, validation.Required, validation.Min(1), validation.Max(120)),
		validation.Field(&c.TieBreak, validation.In(TieBreakSecond, TieBreakDraw)),
	)
}

func (c *RewardsConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Win, validation.Min(0)),
		validation.Field(&c.Loss, validation.Min(0)),
	)
}

func (c *BotConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.NearDistance, validation.Min(0.0)),
		validation.Field(&c.FarDistance, validation.By(func(interface{}) error {
			if c.FarDistance <= c.NearDistance {
				return errors.New("must be greater than nearDistance")
			}
			return nil
		})),
		validation.Field(&c.LightAttackChance, validation.Min(0.0), validation.Max(1.0)),
		validation.Field(&c.HeavyAttackChance, validation.Min(0.0), validation.Max(1.0)),
		validation.Field(&c.JumpChance, validation.Min(0.0), validation.Max(1.0)),
	)
}

func (c *LedgerConfig) Validate() error {
	enabled := c.Enabled != nil && *c.Enabled
	return validation.ValidateStruct(c,
		validation.Field(&c.Address, validation.When(enabled, validation.Required, is.DialString)),
		validation.Field(&c.RequestTimeout, validation.Min(1)),
		validation.Field(&c.QueueSize, validation.Min(1)),
		validation.Field(&c.Workers, validation.Min(1)),
		validation.Field(&c.MaxAttempts, validation.Min(1)),
		validation.Field(&c.BackoffFactor, validation.Min(0.0)),
	)
}

func (c *CosmeticsConfig) Validate() error {
	enabled := c.Enabled != nil && *c.Enabled
	return validation.ValidateStruct(c,
		validation.Field(&c.CatalogFile, validation.When(enabled, validation.Required)),
		validation.Field(&c.ResolveTimeout, validation.Min(1)),
	)
}

// BotParams snapshot of the bot tunables taken when a bot is spawned
func (c *BotConfig) BotParams() *BotParams {
	return &BotParams{
		Name:              c.Name,
		FarDistance:       c.FarDistance,
		NearDistance:      c.NearDistance,
		LightAttackChance: c.LightAttackChance,
		HeavyAttackChance: c.HeavyAttackChance,
		JumpChance:        c.JumpChance,
	}
}
