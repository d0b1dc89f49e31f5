package handlers

import (
	"context"
	"fmt"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
)

// NewTimeHandler returns a handler for the /time command.
func NewTimeHandler(deps HandlerDeps) bot.HandlerFunc {
	return timeHandler{deps}.Handle
}

// timeHandler replies with the current time in the configured locale.
type timeHandler struct {
	deps HandlerDeps
}

func (h timeHandler) reply() string {
	return fmt.Sprintf(h.deps.Config.Messages.Time, h.deps.Formatter.NowString())
}

func (h timeHandler) Handle(ctx context.Context, b *bot.Bot, update *models.Update) {
	log := h.deps.Logger.With("handler", "time")
	if !validMessage(ctx, log, update) {
		return
	}
	sendReply(ctx, b, log, update.Message.Chat.ID, h.reply())
}
