// Package main is the entry point for VeilleBot.
// It initializes all systems and starts the Discord bot.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/PancyStudios/VeilleBot/internal/bot"
	"github.com/PancyStudios/VeilleBot/internal/commands"
	"github.com/PancyStudios/VeilleBot/internal/events"
	"github.com/PancyStudios/VeilleBot/pkg/config"
	"github.com/PancyStudios/VeilleBot/pkg/discord"
	"github.com/PancyStudios/VeilleBot/pkg/errors"
	"github.com/PancyStudios/VeilleBot/pkg/logger"
	"github.com/PancyStudios/VeilleBot/pkg/web"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("Error loading configuration: %v\n", err)
		os.Exit(1)
	}
	if err := cfg.Validate(); err != nil {
		fmt.Printf("Invalid configuration: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	log := logger.Init(logger.Options{
		Dir:          cfg.LogsDir,
		ErrorWebhook: cfg.ErrorWebhook,
		LogsWebhook:  cfg.LogsWebhook,
	})
	defer log.Close()

	logger.System(fmt.Sprintf("Starting VeilleBot %s (%s)...", config.Version, config.BuildTime), "Main")
	logger.Info(fmt.Sprintf("Working directory: %s", getCurrentDir()), "Main")

	// Load state
	b, err := bot.New(cfg)
	if err != nil {
		logger.Critical(fmt.Sprintf("Error loading bot state: %v", err), "Main")
		os.Exit(1)
	}

	// Initialize error handler
	var discordClient *discord.ExtendedClient
	errorHandler := errors.Init(cfg.ErrorWebhook, func() {
		if discordClient != nil {
			if err := discordClient.Stop(); err != nil {
				logger.Warn("Error closing Discord session: "+err.Error(), "Main")
			}
		}
		if err := b.Close(); err != nil {
			logger.Error("Final flush failed: "+err.Error(), "Main")
		}
	})
	defer errorHandler.Stop()

	// Initialize Discord client
	discordClient, err = discord.NewClient(cfg.BotToken, cfg.Prefix)
	if err != nil {
		logger.Critical(fmt.Sprintf("Error creating Discord client: %v", err), "Main")
		os.Exit(1)
	}

	// Register commands and events
	commands.RegisterAll(discordClient, b)
	events.RegisterAll(discordClient, b.Pipeline(discordClient.CommandHandler))

	// Initialize web server
	webServer, err := web.NewServer(web.Options{
		WebhookURL:    cfg.LogsWebhook,
		AllowedHosts:  cfg.WebAllowedHosts,
		RatePerMinute: cfg.WebRatePerMinute,
	})
	if err != nil {
		logger.Critical(fmt.Sprintf("Error creating web server: %v", err), "Main")
		os.Exit(1)
	}
	web.SetupAPIRoutes(webServer, b, discordClient.IsReady)
	webServer.StartAsync(cfg.Port)

	// Start the bot
	if err := discordClient.Start(); err != nil {
		logger.Critical(fmt.Sprintf("Error starting Discord client: %v", err), "Main")
		_ = b.Close()
		os.Exit(1)
	}

	logger.Success("VeilleBot started!", "Main")

	// Wait for interrupt signal
	sc := make(chan os.Signal, 1)
	signal.Notify(sc, syscall.SIGINT, syscall.SIGTERM, os.Interrupt)
	<-sc

	logger.System("Shutting down VeilleBot...", "Main")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := webServer.Shutdown(ctx); err != nil {
		logger.Warn("Web server shutdown: "+err.Error(), "Main")
	}
	if err := discordClient.Stop(); err != nil {
		logger.Warn("Error closing Discord session: "+err.Error(), "Main")
	}
	if err := b.Close(); err != nil {
		logger.Error("Final flush failed: "+err.Error(), "Main")
	}
}

// getCurrentDir returns the current working directory
func getCurrentDir() string {
	dir, err := os.Getwd()
	if err != nil {
		return "unknown"
	}
	return dir
}
