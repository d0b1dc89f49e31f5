package handlers

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	"github.com/edgard/crmbot/internal/currency"
)

// NewRatesHandler returns a handler for /rates. Each currency is shown as the
// value of one unit in the default currency.
func NewRatesHandler(deps HandlerDeps) bot.HandlerFunc {
	return ratesHandler{deps}.Handle
}

type ratesHandler struct {
	deps HandlerDeps
}

func (h ratesHandler) reply(ctx context.Context, log *slog.Logger) string {
	rates, err := h.deps.Rates.Get(ctx)
	if err != nil {
		log.ErrorContext(ctx, "Failed to load rates", "error", err)
		return h.deps.Config.Messages.GeneralError
	}

	target := h.deps.Config.Currency.Default
	lines := []string{fmt.Sprintf(h.deps.Config.Messages.RatesHeader, rates.Base())}
	for _, code := range rates.Codes() {
		if code == target {
			continue
		}
		unit, err := currency.NewAmount("1", code)
		if err != nil {
			continue
		}
		converted, err := unit.Convert(target, rates)
		if err != nil {
			log.WarnContext(ctx, "Cannot convert rate", "code", code, "error", err)
			continue
		}
		lines = append(lines, fmt.Sprintf("1 %s = %s", code, converted))
	}
	return strings.Join(lines, "\n")
}

func (h ratesHandler) Handle(ctx context.Context, b *bot.Bot, update *models.Update) {
	log := h.deps.Logger.With("handler", "rates")
	if !validMessage(ctx, log, update) {
		return
	}
	sendReply(ctx, b, log, update.Message.Chat.ID, h.reply(ctx, log))
}

// NewSetRateHandler returns a handler for /setrate <CODE> <rate>.
func NewSetRateHandler(deps HandlerDeps) bot.HandlerFunc {
	return setRateHandler{deps}.Handle
}

type setRateHandler struct {
	deps HandlerDeps
}

func (h setRateHandler) reply(ctx context.Context, log *slog.Logger, args string) string {
	msgs := h.deps.Config.Messages
	usage := fmt.Sprintf(msgs.InvalidRate, strings.Join(h.deps.Config.Currency.List, ", "))

	fields := strings.Fields(args)
	if len(fields) != 2 {
		return usage
	}

	code := strings.ToUpper(fields[0])
	if _, err := h.deps.Rates.SetRate(ctx, code, fields[1]); err != nil {
		if errors.Is(err, currency.ErrInvalidRate) || errors.Is(err, currency.ErrUnknownCurrency) {
			return usage
		}
		log.ErrorContext(ctx, "Failed to update rate", "error", err, "code", code)
		return msgs.GeneralError
	}

	log.InfoContext(ctx, "Rate updated", "code", code, "rate", fields[1])
	return fmt.Sprintf(msgs.RateUpdated, code)
}

func (h setRateHandler) Handle(ctx context.Context, b *bot.Bot, update *models.Update) {
	log := h.deps.Logger.With("handler", "setrate")
	if !validMessage(ctx, log, update) {
		return
	}
	sendReply(ctx, b, log, update.Message.Chat.ID, h.reply(ctx, log, commandArgs(update.Message.Text)))
}
