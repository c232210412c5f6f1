package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/forest33/arena/business/entity"
	"github.com/forest33/arena/pkg/structs"
)

const (
	commandInit  = "init"
	commandCheck = "check"
	commandHelp  = "help"
)

type commandData struct {
	host        string
	port        int
	tcpPort     int
	codec       string
	compression string
	tickRate    int
	ledger      string
}

func parseCommandLine() {
	var (
		err     error
		fs      *flag.FlagSet
		data    = &commandData{}
		command = os.Args[1]
	)

	commandHandlers := map[string]func(*commandData){
		commandInit:  handlerInit,
		commandCheck: handlerCheck,
	}

	switch command {
	case commandInit:
		fs = flag.NewFlagSet(commandInit, flag.ExitOnError)
		fs.StringVar(&data.host, "host", "", "listen hostname or IP address")
		fs.IntVar(&data.port, "port", 0, "HTTP and websocket port")
		fs.IntVar(&data.tcpPort, "tcp-port", 0, "length-prefixed TCP port, enables the TCP transport")
		fs.StringVar(&data.codec, "codec", "", "default frame codec (json, msgpack)")
		fs.StringVar(&data.compression, "compression", "", "default frame compression (none, lz4, lzo, zstd)")
		fs.IntVar(&data.tickRate, "tick-rate", 0, "simulation ticks per second")
		fs.StringVar(&data.ledger, "ledger", "", "ledger gRPC address, enables match recording")
	case commandCheck:
		fs = flag.NewFlagSet(commandCheck, flag.ExitOnError)
	case commandHelp:
		printHelp()
		os.Exit(0)
	default:
		fmt.Printf("Unknown command %s\n", os.Args[1])
		printHelp()
		os.Exit(1)
	}
	if err = fs.Parse(os.Args[2:]); err != nil {
		zlog.Fatal(err)
	}

	commandHandlers[command](data)
}

func handlerInit(data *commandData) {
	cfg.Network.Host = structs.If(data.host != "", data.host, cfg.Network.Host)
	cfg.Network.Port = structs.If(data.port != 0, data.port, cfg.Network.Port)
	cfg.Network.Codec = structs.If(data.codec != "", data.codec, cfg.Network.Codec)
	cfg.Network.Compression = structs.If(data.compression != "", data.compression, cfg.Network.Compression)
	cfg.Engine.TickRate = structs.If(data.tickRate != 0, data.tickRate, cfg.Engine.TickRate)

	if data.tcpPort != 0 {
		cfg.Network.TCPPort = data.tcpPort
		cfg.Network.UseTCP = structs.Ref(true)
	}
	if data.ledger != "" {
		cfg.Ledger.Address = data.ledger
		cfg.Ledger.Enabled = structs.Ref(true)
	}

	if err := cfg.Validate(); err != nil {
		zlog.Fatalf("wrong configuration: %v", err)
	}

	cfgHandler.Update(cfg)
	if err := cfgHandler.Save(); err != nil {
		zlog.Fatalf("failed to save configuration: %v", err)
	}

	zlog.Info().Str("path", cfgHandler.GetPath()).Msg("initialization successfully complete")
}

func handlerCheck(*commandData) {
	if err := cfg.Validate(); err != nil {
		zlog.Fatalf("wrong configuration: %v", err)
	}
	zlog.Info().Str("path", cfgHandler.GetPath()).Msg("configuration is valid")
}

func printHelp() {
	fmt.Printf("Usage: ./arena-server command args\n")
	fmt.Printf(" init	- initialize server configuration\n")
	fmt.Printf(" check	- validate server configuration\n")
	fmt.Printf(" help	- show this help\n")
	fmt.Printf("Get help for a specific command: ./arena-server command -h\n")
	fmt.Printf("Without a command the server is started, configuration file: %s (%s overrides)\n",
		entity.DefaultServerConfigFileName, "ARENA_CONFIG")
}
