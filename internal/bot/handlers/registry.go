package handlers

import (
	tgbot "github.com/go-telegram/bot"
)

// RegisteredHandler represents a command handler with its description and middleware.
// It encapsulates all information needed to register and document a command.
type RegisteredHandler struct {
	HandlerType tgbot.HandlerType
	Pattern     string
	Description string
	Handler     tgbot.HandlerFunc
	Middleware  []tgbot.Middleware
	MatchType   tgbot.MatchType
}

func command(pattern, description string, handler tgbot.HandlerFunc, middleware ...tgbot.Middleware) RegisteredHandler {
	return RegisteredHandler{
		HandlerType: tgbot.HandlerTypeMessageText,
		Pattern:     pattern,
		Description: description,
		Handler:     handler,
		Middleware:  middleware,
		MatchType:   tgbot.MatchTypeCommandStartOnly,
	}
}

// RegisterAllCommands initializes and returns a map of all available bot commands.
func RegisterAllCommands(deps HandlerDeps) map[string]RegisteredHandler {
	adminOnly := AdminOnly(deps)

	return map[string]RegisteredHandler{
		"/start":     command("start", "Start the bot", NewStartHandler(deps)),
		"/help":      command("help", "List commands", NewHelpHandler(deps)),
		"/time":      command("time", "Current time", NewTimeHandler(deps)),
		"/remind":    command("remind", "Reminder at a random time tomorrow night", NewRemindHandler(deps)),
		"/remind_at": command("remind_at", "Reminder at a given time", NewRemindAtHandler(deps)),
		"/reminders": command("reminders", "Pending reminders", NewRemindersHandler(deps)),
		"/rates":     command("rates", "Exchange rates", NewRatesHandler(deps)),
		"/setrate":   command("setrate", "Update an exchange rate", NewSetRateHandler(deps), adminOnly),
		"/login":     command("login", "Sign in to the CRM", NewLoginHandler(deps)),
	}
}
