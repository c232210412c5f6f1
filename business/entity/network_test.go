package entity

import (
	"testing"
)

func TestGetCompressionType(t *testing.T) {
	tests := map[string]struct {
		in  string
		out CompressionType
		err error
	}{
		"empty": {in: "", out: CompressionNone},
		"none":  {in: CompressionNameNone, out: CompressionNone},
		"lz4":   {in: CompressionNameLZ4, out: CompressionLZ4},
		"lzo":   {in: CompressionNameLZO, out: CompressionLZO},
		"zstd":  {in: CompressionNameZSTD, out: CompressionZSTD},
		"gzip":  {in: "gzip", out: CompressionNone, err: ErrUnknownCompression},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			out, err := GetCompressionType(tc.in)
			if out != tc.out || err != tc.err {
				t.Fatalf("got %v/%v, expected %v/%v", out, err, tc.out, tc.err)
			}
			if err == nil && tc.in != "" && out.String() != tc.in {
				t.Fatalf("name %s, expected %s", out.String(), tc.in)
			}
		})
	}
}

func TestServerConfigValidate(t *testing.T) {
	valid := func() *ServerConfig {
		return &ServerConfig{
			Logger:    &LoggerConfig{Level: "info"},
			Network:   &NetworkConfig{Port: 8080, WebsocketPath: "/ws", MaxMessageSize: 4096, SendQueueSize: 64, Codec: CodecNameJSON, Compression: CompressionNameNone},
			Engine:    &EngineConfig{TickRate: 10, TieBreak: TieBreakSecond},
			Rewards:   &RewardsConfig{Win: 50, Loss: 10},
			Bot:       &BotConfig{FarDistance: 120, NearDistance: 40, LightAttackChance: 0.15, HeavyAttackChance: 0.05, JumpChance: 0.02},
			Ledger:    &LedgerConfig{Address: "localhost:9090", RequestTimeout: 5, QueueSize: 1, Workers: 1, MaxAttempts: 1},
			Cosmetics: &CosmeticsConfig{CatalogFile: "cosmetics.yaml", ResolveTimeout: 500},
		}
	}

	tests := map[string]struct {
		mutate func(c *ServerConfig)
		ok     bool
	}{
		"valid":          {mutate: func(*ServerConfig) {}, ok: true},
		"tick rate":      {mutate: func(c *ServerConfig) { c.Engine.TickRate = 0 }},
		"tie break":      {mutate: func(c *ServerConfig) { c.Engine.TieBreak = "first" }},
		"bot band":       {mutate: func(c *ServerConfig) { c.Bot.FarDistance = 30 }},
		"chance":         {mutate: func(c *ServerConfig) { c.Bot.JumpChance = 1.5 }},
		"codec":          {mutate: func(c *ServerConfig) { c.Network.Codec = "xml" }},
		"path":           {mutate: func(c *ServerConfig) { c.Network.WebsocketPath = "ws" }},
		"missing engine": {mutate: func(c *ServerConfig) { c.Engine = nil }},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			c := valid()
			tc.mutate(c)
			if err := c.Validate(); (err == nil) != tc.ok {
				t.Fatalf("validation error %v", err)
			}
		})
	}
}
