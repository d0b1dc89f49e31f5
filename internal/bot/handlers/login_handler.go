package handlers

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	"github.com/edgard/crmbot/internal/auth"
)

// NewLoginHandler returns a handler for /login <user> <password|token>. The
// message is deleted afterwards since it carries a secret.
func NewLoginHandler(deps HandlerDeps) bot.HandlerFunc {
	return loginHandler{deps}.Handle
}

type loginHandler struct {
	deps HandlerDeps
}

// reply authenticates args and returns the response. A successful password
// login issues a session token that can be used in place of the password.
func (h loginHandler) reply(ctx context.Context, log *slog.Logger, args string) string {
	msgs := h.deps.Config.Messages

	fields := strings.Fields(args)
	if len(fields) != 2 {
		return msgs.LoginFailed
	}
	username, secret := fields[0], fields[1]

	token, err := h.deps.Store.GetAuthToken(ctx, secret)
	if err != nil {
		log.ErrorContext(ctx, "Failed to look up auth token", "error", err)
		return msgs.GeneralError
	}

	user, err := h.deps.Auth.Login(ctx, username, secret, token)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidCredentials) {
			return msgs.LoginFailed
		}
		log.ErrorContext(ctx, "Login failed", "error", err)
		return msgs.GeneralError
	}

	reply := fmt.Sprintf(msgs.LoginSucceeded, user.UserName)
	if token == nil {
		issued, err := h.deps.Auth.IssueToken(ctx, user)
		if err != nil {
			log.ErrorContext(ctx, "Failed to issue token", "error", err, "user_id", user.ID)
			return reply
		}
		reply += "\n" + issued.Token
	}
	return reply
}

func (h loginHandler) Handle(ctx context.Context, b *bot.Bot, update *models.Update) {
	log := h.deps.Logger.With("handler", "login")
	if !validMessage(ctx, log, update) {
		return
	}

	msg := update.Message
	if _, err := b.DeleteMessage(ctx, &bot.DeleteMessageParams{ChatID: msg.Chat.ID, MessageID: msg.ID}); err != nil {
		log.WarnContext(ctx, "Failed to delete login message", "error", err, "chat_id", msg.Chat.ID)
	}
	sendReply(ctx, b, log, msg.Chat.ID, h.reply(ctx, log, commandArgs(msg.Text)))
}
