package commands

import (
	"context"
	"errors"
	"fmt"

	tgbot "github.com/go-telegram/bot"
	"github.com/jonboulle/clockwork"
	"github.com/urfave/cli/v3"

	"github.com/edgard/crmbot/internal/auth"
	"github.com/edgard/crmbot/internal/bot"
	"github.com/edgard/crmbot/internal/bot/handlers"
	"github.com/edgard/crmbot/internal/bot/tasks"
	"github.com/edgard/crmbot/internal/currency"
	"github.com/edgard/crmbot/internal/database"
	"github.com/edgard/crmbot/internal/datetime"
	"github.com/edgard/crmbot/internal/logger"
	"github.com/edgard/crmbot/internal/sanitize"
	"github.com/edgard/crmbot/internal/telegram"
)

func runCommand() *cli.Command {
	return &cli.Command{
		Name:   "run",
		Usage:  "Run the Telegram bot and its scheduler",
		Action: runAction,
	}
}

// runAction initializes every component (logger, db, formatter, telegram,
// tasks, scheduler, handlers) and blocks until ctx is cancelled.
func runAction(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	log := logger.NewLogger(cfg.Logger.Level, cfg.Logger.JSON)
	log.Info("Logger initialized", "level", cfg.Logger.Level, "json", cfg.Logger.JSON)

	if cfg.Telegram.Token == "" {
		return errors.New("telegram.token is required to run the bot (set CRMBOT_TELEGRAM_TOKEN)")
	}

	db, err := database.NewDB(cfg.Database.Path)
	if err != nil {
		return err
	}
	defer database.CloseDB(db)

	clock := clockwork.NewRealClock()
	store := database.NewStore(db, log, clock)

	formatter, err := datetime.New(cfg.Locale.DateFormat, cfg.Locale.TimeFormat, cfg.Locale.TimeZone, datetime.WithClock(clock))
	if err != nil {
		return fmt.Errorf("invalid locale: %w", err)
	}
	rates := currency.NewRateService(store, cfg.Currency, log)

	tg, err := telegram.NewTelegramBot(cfg.Telegram.Token, log, tgbot.WithMiddlewares(logger.Middleware(log)))
	if err != nil {
		return err
	}

	cfg.Telegram.BotInfo, err = tg.GetMe(ctx)
	if err != nil {
		return fmt.Errorf("failed to get bot info: %w", err)
	}
	log.Info("Retrieved bot info", "bot_id", cfg.Telegram.BotInfo.ID, "bot_username", cfg.Telegram.BotInfo.Username)

	taskMap := tasks.RegisterAllTasks(tasks.TaskDeps{
		Logger:   log,
		Store:    store,
		Rates:    rates,
		Notifier: telegram.NewNotifier(tg, log),
		Config:   cfg,
		Clock:    clock,
	})

	sched, err := bot.NewScheduler(log, &cfg.Scheduler, taskMap, clock)
	if err != nil {
		return err
	}

	cmdHandlers := handlers.RegisterAllCommands(handlers.HandlerDeps{
		Logger:    log,
		Config:    cfg,
		Store:     store,
		Formatter: formatter,
		Jitter:    datetime.NewJitter(datetime.WithJitterClock(clock)),
		Rates:     rates,
		Auth:      auth.NewAuthenticator(store, log),
		Scheduler: sched,
		Dispatch:  taskMap[tasks.ReminderDispatchTask],
		Sanitizer: sanitize.NewPlainTextPolicy(),
	})
	if err := telegram.RegisterHandlers(tg, log, cmdHandlers); err != nil {
		return err
	}
	if err := telegram.SetCommands(ctx, tg, cmdHandlers); err != nil {
		log.Warn("Failed to publish command menu", "error", err)
	}

	log.Info("Starting bot...")
	return bot.NewBot(log, tg, sched).Run(ctx)
}
