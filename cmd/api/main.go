package main

import (
	"context"
	"log"
	"os"

	gfshutdown "github.com/gelmium/graceful-shutdown"
	"github.com/gin-gonic/gin"
	"github.com/hugohenrick/warung-digital/pkg/config"
	"github.com/hugohenrick/warung-digital/pkg/logger"
)

func main() {
	// Carregar variáveis de ambiente (.env é opcional)
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Erro ao carregar configuração: %v", err)
	}

	appLogger := logger.NewLogger(logger.ParseLevel(cfg.LogLevel))
	gin.SetMode(cfg.GinMode)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Criar aplicação
	app, err := NewApp(ctx, cfg, appLogger)
	if err != nil {
		appLogger.Error("erro ao iniciar aplicação", "error", err)
		os.Exit(1)
	}
	app.SetupRoutes()

	runErr := make(chan error, 1)
	go func() {
		runErr <- app.Run(ctx)
	}()

	wait := gfshutdown.GracefulShutdown(
		context.Background(),
		cfg.ShutdownTimeout,
		map[string]gfshutdown.Operation{
			"warung-api": func(shutdownCtx context.Context) error {
				appLogger.Info("encerrando aplicação")
				cancel()
				err := app.Shutdown(shutdownCtx)
				app.Close()
				return err
			},
		},
	)

	select {
	case code := <-wait:
		appLogger.Info("aplicação encerrada", "code", code)
		os.Exit(code)
	case err := <-runErr:
		if err != nil {
			appLogger.Error("aplicação interrompida", "error", err)
			cancel()
			app.Close()
			os.Exit(1)
		}
		// Servidor parou sem erro: aguarda o encerramento iniciado pelo sinal
		code := <-wait
		os.Exit(code)
	}
}
