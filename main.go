// Copyright
// SPDX-License-Identifier: MIT
// mcp-launch: a unified MCP gateway exposing Gemini CLI, Codex CLI, and
// Grok-backed web search/fetch as MCP tools over a single adaptively-framed
// stdio transport.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"mcp-launch/internal/adaptiveio"
	"mcp-launch/internal/capabilities"
	"mcp-launch/internal/grok"
	"mcp-launch/internal/mcpserver"
	"mcp-launch/internal/roots"
)

// Version is set at release time; dev builds report "dev".
var Version = "dev"

func main() {
	root := newRootCommand()
	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	var logLevel string

	cmd := &cobra.Command{
		Use:     "mcp-launch",
		Short:   "Unified MCP gateway for Gemini CLI, Codex CLI, and Grok web search/fetch",
		Version: Version,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd.Context(), logLevel)
		},
	}

	cmd.Flags().StringVar(&logLevel, "log-level", "info", "log level: debug, info, warn, error")

	return cmd
}

func run(ctx context.Context, logLevel string) error {
	logger := newLogger(logLevel)

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger.Info().Msg("mcp-launch starting")

	caps := capabilities.Detect(logger)
	grokConfig, grokAvailable := grok.LoadConfig()
	geminiImageConfig := mcpserver.LoadGeminiImageConfig()

	deps := &mcpserver.Deps{
		Caps:          caps,
		Roots:         &roots.Store{},
		GrokConfig:    grokConfig,
		GrokAvailable: grokAvailable,
		GeminiImage:   geminiImageConfig,
		Logger:        logger,
	}

	server := mcpserver.NewServer("mcp-launch", Version, logger)
	mcpserver.Register(server, deps)

	// adaptiveio substitutes os.Stdin/os.Stdout with a pipe pair so the SDK's
	// stdio transport, which only ever speaks newline-delimited JSON, sees a
	// canonical stream regardless of whether the peer actually frames its
	// messages as JsonLines or LSP-style Content-Length blocks.
	restore, err := adaptiveio.InstallStdio()
	if err != nil {
		return fmt.Errorf("install adaptive stdio framing: %w", err)
	}
	defer restore()

	logger.Info().Msg("mcp-launch ready on stdio")
	if err := server.Run(ctx, &mcp.StdioTransport{}); err != nil {
		logger.Error().Err(err).Msg("server exited with error")
		return err
	}
	return nil
}

func newLogger(level string) zerolog.Logger {
	l := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: "15:04:05"}).With().Timestamp().Logger()
	switch level {
	case "debug":
		return l.Level(zerolog.DebugLevel)
	case "warn":
		return l.Level(zerolog.WarnLevel)
	case "error":
		return l.Level(zerolog.ErrorLevel)
	default:
		return l.Level(zerolog.InfoLevel)
	}
}
