package main

import (
	"context"
	"os"
	"time"

	api "github.com/OvyFlash/telegram-bot-api"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/wardenbot/warden/internal/bot"
	"github.com/wardenbot/warden/internal/config"
	"github.com/wardenbot/warden/internal/db/sqlite"
	"github.com/wardenbot/warden/internal/handlers/moderation"
	"github.com/wardenbot/warden/internal/infra"
	"github.com/wardenbot/warden/internal/infrastructure/telegram"
	"github.com/wardenbot/warden/internal/observability"
	"github.com/wardenbot/warden/internal/policy/permissions"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.WithError(err).Fatalln("cant load config")
	}
	log.SetFormatter(&config.WdFormatter{})
	log.SetOutput(os.Stdout)
	log.SetLevel(log.Level(cfg.LogLevel))

	infra.GoRecoverable(-1, "process_updates", func() {
		ctx, cancelFunc := context.WithCancel(context.Background())
		defer cancelFunc()

		botAPI, err := api.NewBotAPI(cfg.TelegramAPIToken)
		if err != nil {
			log.WithError(err).Errorln("cant initialize bot api")
			time.Sleep(1 * time.Second)
			log.Fatalln("exiting")
		}
		if log.Level(cfg.LogLevel) == log.TraceLevel {
			botAPI.Debug = true
		}
		defer botAPI.StopReceivingUpdates()

		workDir := infra.EnsureWorkDir(cfg.DotPath)
		dbClient, err := sqlite.NewSQLiteClient(ctx, workDir, cfg.DBFilename)
		if err != nil {
			log.WithError(err).Fatalln("cant open db")
		}
		defer dbClient.Close()

		service := bot.NewService(botAPI, dbClient, cfg)
		ops := telegram.NewOperations(botAPI)
		guard := permissions.NewGuard(cfg.AllowedUserIDs, ops.GetChatMember)
		warden := moderation.NewWarden(service, guard)
		bot.RegisterUpdateHandler("moderation", warden)

		if err := ops.SetCommands(ctx, warden.Commands()); err != nil {
			log.WithError(err).Warnln("cant register command menu")
		}

		updateConfig := api.NewUpdate(0)
		updateConfig.Timeout = 60
		updateProcessor := bot.NewUpdateProcessor(service, []string{"moderation"})
		updateChan, errorChan := bot.GetUpdatesChans(ctx, botAPI, updateConfig)

		g, ctx := errgroup.WithContext(ctx)
		g.Go(func() error {
			log.Infof("serving metrics on %s", cfg.MetricsAddr)
			return observability.Serve(cfg.MetricsAddr)
		})
		g.Go(func() error {
			for {
				select {
				case err := <-errorChan:
					return errors.WithMessage(err, "bot api get updates error")
				case update := <-updateChan:
					if err := updateProcessor.Process(ctx, &update); err != nil {
						log.WithError(err).Errorln("cant process update")
					}
				case <-ctx.Done():
					return ctx.Err()
				}
			}
		})
		if err := g.Wait(); err != nil {
			log.WithError(err).Fatalln("no more updates")
		}
	})
	os.Exit(0)
}
