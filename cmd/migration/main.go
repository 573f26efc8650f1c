package main

import (
	"flag"
	"log"
	"os"

	"github.com/hugohenrick/warung-digital/internal/infrastructure/database"
	"github.com/hugohenrick/warung-digital/pkg/config"
	"github.com/hugohenrick/warung-digital/pkg/logger"
	"github.com/joho/godotenv"
)

func main() {
	down := flag.Int("down", 0, "desfaz N migrações em vez de aplicar as pendentes")
	showVersion := flag.Bool("version", false, "mostra a versão atual do schema e sai")
	flag.Parse()

	// Carregar variáveis de ambiente
	if err := godotenv.Load(); err != nil {
		log.Printf("Aviso: Arquivo .env não encontrado: %v", err)
	}
	appLogger := logger.NewLogger(logger.ParseLevel(os.Getenv("LOG_LEVEL")))
	databaseURL := config.DatabaseURL()

	switch {
	case *showVersion:
		version, dirty, err := database.MigrationVersion(databaseURL)
		if err != nil {
			appLogger.Error("erro ao ler versão", "error", err)
			os.Exit(1)
		}
		appLogger.Info("versão do schema", "version", version, "dirty", dirty)
	case *down > 0:
		if err := database.RollbackMigrations(databaseURL, *down, appLogger); err != nil {
			appLogger.Error("erro ao desfazer migrações", "error", err)
			os.Exit(1)
		}
	default:
		if err := database.RunMigrations(databaseURL, appLogger); err != nil {
			appLogger.Error("erro ao executar migrações", "error", err)
			os.Exit(1)
		}
		appLogger.Info("migrações executadas com sucesso")
	}
}
