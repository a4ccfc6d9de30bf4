// Command civicmcp serves civic open-data tools over the Model Context
// Protocol on stdio. Stdout carries the protocol stream, so all logging
// and the startup summary go to stderr.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/alecthomas/kong"
	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/rs/zerolog"

	"github.com/opencivic/civicmcp/pkg/config"
	"github.com/opencivic/civicmcp/pkg/gateway"
	"github.com/opencivic/civicmcp/pkg/providers/census"
	"github.com/opencivic/civicmcp/pkg/providers/datagov"
	"github.com/opencivic/civicmcp/pkg/providers/eudata"
	"github.com/opencivic/civicmcp/pkg/providers/nasa"
	"github.com/opencivic/civicmcp/pkg/providers/weather"
	"github.com/opencivic/civicmcp/pkg/providers/worldbank"
	"github.com/opencivic/civicmcp/pkg/tools"
)

const serverVersion = "0.1.0"

var cli struct {
	Config   string `help:"Path to YAML config file" type:"path" default:""`
	Timeout  int    `help:"Per-request timeout in seconds (overrides config)" default:"0"`
	LogLevel string `help:"Log level (trace, debug, info, warn, error)" default:"info"`
}

func main() {
	_ = kong.Parse(&cli)

	level, err := zerolog.ParseLevel(cli.LogLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "invalid log level %q: %v\n", cli.LogLevel, err)
		os.Exit(1)
	}
	log := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).
		Level(level).
		With().Timestamp().Logger()

	cfg, err := config.Load(cli.Config)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load config")
	}
	if cli.Timeout > 0 {
		cfg.TimeoutSecs = cli.Timeout
	}

	fmt.Fprintln(os.Stderr, cfg.AvailabilitySummary())

	gw := gateway.NewClient(cfg.TimeoutSecs)
	registry := tools.NewRegistry()
	wx := weather.New(gw, cfg)
	if config.IsEnabled(cfg.NOAA.Enabled, true) {
		registry.RegisterAll(wx.NOAATools())
	}
	if config.IsEnabled(cfg.OpenWeather.Enabled, true) {
		registry.RegisterAll(wx.OpenWeatherTools())
	}
	if config.IsEnabled(cfg.Census.Enabled, true) {
		registry.RegisterAll(census.New(gw, cfg).Tools())
	}
	if config.IsEnabled(cfg.NASA.Enabled, true) {
		registry.RegisterAll(nasa.New(gw, cfg).Tools())
	}
	if config.IsEnabled(cfg.WorldBank.Enabled, true) {
		registry.RegisterAll(worldbank.New(gw, cfg).Tools())
	}
	if config.IsEnabled(cfg.DataGov.Enabled, true) {
		registry.RegisterAll(datagov.New(gw, cfg).Tools())
	}
	if config.IsEnabled(cfg.EUData.Enabled, true) {
		registry.RegisterAll(eudata.New(gw, cfg).Tools())
	}

	server := mcp.NewServer(&mcp.Implementation{
		Name:    "civicmcp",
		Version: serverVersion,
	}, nil)
	tools.Attach(server, registry)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx = log.WithContext(ctx)

	log.Info().Int("tools", registry.Len()).Msg("Serving MCP on stdio")
	if err := server.Run(ctx, &mcp.StdioTransport{}); err != nil && ctx.Err() == nil {
		log.Fatal().Err(err).Msg("Server exited")
	}
}
