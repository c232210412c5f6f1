// Package main Arena match server main package
package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/forest33/arena/adapter/cosmetics"
	rest "github.com/forest33/arena/adapter/http"
	"github.com/forest33/arena/adapter/ledger"
	"github.com/forest33/arena/adapter/server"
	"github.com/forest33/arena/business/entity"
	"github.com/forest33/arena/business/usecase"
	"github.com/forest33/arena/pkg/automaxprocs"
	"github.com/forest33/arena/pkg/config"
	"github.com/forest33/arena/pkg/logger"
	"github.com/forest33/arena/pkg/profiler"
)

const shutdownTimeout = 10 * time.Second

var (
	cfg        = &entity.ServerConfig{}
	cfgHandler *config.Config
	zlog       *logger.Logger
	ctx        context.Context
	cancel     context.CancelFunc

	wsAdapter        *server.WebSocket
	tcpAdapter       entity.NetworkServer
	ledgerAdapter    *ledger.Client
	cosmeticsAdapter *cosmetics.Catalog
	restServer       *rest.Server

	engineUseCase *usecase.EngineUseCase
)

func init() {
	var err error
	cfgHandler, err = config.New(entity.DefaultServerConfigFileName, "", cfg)
	if err != nil {
		log.Fatalf("failed to parse config file: %v", err)
	}

	zlog = logger.New(logger.Config{
		Level:             cfg.Logger.Level,
		TimeFieldFormat:   cfg.Logger.TimeFieldFormat,
		PrettyPrint:       *cfg.Logger.PrettyPrint,
		DisableSampling:   *cfg.Logger.DisableSampling,
		RedirectStdLogger: *cfg.Logger.RedirectStdLogger,
		ErrorStack:        *cfg.Logger.ErrorStack,
		ShowCaller:        *cfg.Logger.ShowCaller,
		FileName:          cfg.Logger.FileName,
	})

	if cfg.Runtime.GoMaxProcs != 0 {
		runtime.GOMAXPROCS(cfg.Runtime.GoMaxProcs)
	} else {
		automaxprocs.Init(zlog)
	}

	ctx, cancel = context.WithCancel(context.Background())
}

func main() {
	if len(os.Args[1:]) > 0 {
		parseCommandLine()
		return
	}

	if err := cfg.Validate(); err != nil {
		zlog.Fatalf("wrong configuration: %v", err)
	}

	initAdapters()
	initUseCases()

	if *cfg.Profiler.Enabled {
		profiler.Start(&profiler.Config{
			Host: cfg.Profiler.Host,
			Port: cfg.Profiler.Port,
		}, zlog)
	}

	if err := engineUseCase.Start(); err != nil {
		zlog.Fatalf("failed to start engine: %v", err)
	}

	initTransports()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	shutdown()
}

func initAdapters() {
	var err error

	if *cfg.Ledger.Enabled {
		ledgerAdapter, err = ledger.New(cfg.Ledger, zlog)
		if err != nil {
			zlog.Fatalf("failed to create ledger client: %v", err)
		}
	}

	if *cfg.Cosmetics.Enabled {
		cosmeticsAdapter, err = cosmetics.New(cfg.Cosmetics.CatalogFile, zlog)
		if err != nil {
			zlog.Fatalf("failed to load cosmetics catalog: %v", err)
		}
		if err := cosmeticsAdapter.Watch(); err != nil {
			zlog.Error().Err(err).Msg("failed to watch cosmetics catalog")
		}
	}

	serverCfg := server.GetConfig(cfg)

	wsAdapter, err = server.NewWebSocket(zlog, serverCfg)
	if err != nil {
		zlog.Fatalf("failed to create websocket server: %v", err)
	}

	if *cfg.Network.UseTCP {
		tcpAdapter, err = server.NewTCP(zlog, serverCfg)
		if err != nil {
			zlog.Fatalf("failed to create tcp server: %v", err)
		}
	}
}

func initUseCases() {
	var (
		led entity.Ledger
		cos entity.CosmeticsResolver
		err error
	)

	if ledgerAdapter != nil {
		led = ledgerAdapter
	}
	if cosmeticsAdapter != nil {
		cos = cosmeticsAdapter
	}

	engineUseCase, err = usecase.NewEngineUseCase(ctx, zlog, cfg, cfgHandler, led, cos)
	if err != nil {
		zlog.Fatalf("failed to create engine: %v", err)
	}
}

func initTransports() {
	bind := func(t entity.Transport) {
		t.SetConnectHandler(engineUseCase.Connect)
		t.SetReceiverHandler(engineUseCase.Receive)
		t.SetDisconnectHandler(engineUseCase.Disconnect)
	}

	bind(wsAdapter)

	var err error
	restServer, err = rest.New(&rest.Config{
		Host:          cfg.Network.Host,
		Port:          cfg.Network.Port,
		WebsocketPath: cfg.Network.WebsocketPath,
		EnableAPI:     *cfg.Rest.Enabled,
	}, zlog, engineUseCase, wsAdapter)
	if err != nil {
		zlog.Fatalf("failed to create HTTP server: %v", err)
	}
	restServer.Start()

	if tcpAdapter != nil {
		bind(tcpAdapter)
		if err := tcpAdapter.Run(cfg.Network.Host, cfg.Network.TCPPort); err != nil {
			zlog.Fatalf("failed to start tcp server: %v", err)
		}
	}
}

func shutdown() {
	sctx, scancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer scancel()

	if restServer != nil {
		if err := restServer.Shutdown(sctx); err != nil {
			zlog.Error().Err(err).Msg("failed to stop HTTP server")
		}
	}
	if err := wsAdapter.Shutdown(sctx); err != nil {
		zlog.Error().Err(err).Msg("failed to stop websocket server")
	}
	if tcpAdapter != nil {
		if err := tcpAdapter.Shutdown(sctx); err != nil {
			zlog.Error().Err(err).Msg("failed to stop tcp server")
		}
	}
	if err := profiler.Stop(sctx); err != nil {
		zlog.Error().Err(err).Msg("failed to stop profiler")
	}

	cancel()
	engineUseCase.Wait()

	if cosmeticsAdapter != nil {
		cosmeticsAdapter.Close()
	}
	if ledgerAdapter != nil {
		_ = ledgerAdapter.Close()
	}

	zlog.Info().Msg("server stopped")
}
