package main

import (
	"context"
	"errors"
	"flag"
	"io/fs"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/cafepos/internal/app"
	"github.com/vladislavdragonenkov/cafepos/internal/console"
	"github.com/vladislavdragonenkov/cafepos/internal/version"
)

const envLogLevel = "POS_LOG_LEVEL"

// setupLogger настраивает формат и уровень логирования терминала.
func setupLogger(lookup func(string) (string, bool)) {
	log.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	log.SetLevel(parseLogLevel(lookup))
}

func parseLogLevel(lookup func(string) (string, bool)) log.Level {
	v, ok := lookup(envLogLevel)
	if !ok || strings.TrimSpace(v) == "" {
		return log.InfoLevel
	}
	level, err := log.ParseLevel(strings.TrimSpace(v))
	if err != nil {
		return log.InfoLevel
	}
	return level
}

// loadDotEnv подхватывает .env, если файл есть. Уже заданные переменные не перезаписываются.
func loadDotEnv(paths ...string) error {
	if err := godotenv.Load(paths...); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return nil
}

// readConfig собирает конфигурацию из окружения и логирует отброшенные значения.
func readConfig(lookup func(string) (string, bool)) app.Config {
	cfg, warnings := app.LoadConfigFromEnv(lookup)
	for _, warning := range warnings {
		log.Warn(warning)
	}
	return cfg
}

func main() {
	withConsole := flag.Bool("console", false, "run interactive cashier console on stdin")
	flag.Parse()

	if err := loadDotEnv(); err != nil {
		log.WithError(err).Warn("failed to load .env")
	}
	setupLogger(os.LookupEnv)
	cfg := readConfig(os.LookupEnv)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	log.WithFields(log.Fields{
		"metrics_addr": cfg.MetricsAddr,
		"storage":      cfg.StorageDriver,
		"version":      version.GetVersion(),
		"commit":       version.GetCommit(),
	}).Info("запускаем POS терминал")

	terminal, err := app.New(ctx, cfg, log.WithField("component", "app"))
	if err != nil {
		log.WithError(err).Fatal("не удалось собрать терминал")
	}
	defer func() {
		if err := terminal.Close(); err != nil {
			log.WithError(err).Warn("terminal close failed")
		}
	}()

	if *withConsole {
		go func() {
			c := console.New(terminal.Catalog, terminal.Writer, terminal.HistoryView, terminal.History,
				os.Stdout, log.WithField("component", "console"))
			if err := c.Run(ctx, os.Stdin); err != nil && !errors.Is(err, context.Canceled) {
				log.WithError(err).Warn("console stopped with error")
			}
			stop()
		}()
	}

	if err := terminal.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		log.WithError(err).Error("терминал завершился с ошибкой")
		return
	}

	log.Info("POS терминал остановлен")
}
