package main

import (
	"context"
	"fmt"
	"log"

	"github.com/kelseyhightower/envconfig"

	corebootstrap "github.com/soundpull/soundpull/core/bootstrap"
	corecmd "github.com/soundpull/soundpull/core/cmd"
	coreconfig "github.com/soundpull/soundpull/core/config"
	coredatabase "github.com/soundpull/soundpull/core/database"
	"github.com/soundpull/soundpull/internal/bot"
	"github.com/soundpull/soundpull/internal/history"
	"github.com/soundpull/soundpull/internal/provider"
)

type configCarrier struct {
	cfg *coreconfig.Config
}

func (c configCarrier) CoreConfig() *coreconfig.Config { return c.cfg }

func main() {
	err := corecmd.Run(corecmd.Options{
		DefaultConfigPath: "config.yaml",
		LoadConfig: func(path string) (corecmd.ConfigCarrier, error) {
			cfg, err := coreconfig.Load(path)
			if err != nil {
				return nil, err
			}
			return configCarrier{cfg: cfg}, nil
		},
		Bootstrap: bootstrapApp,
	})
	if err != nil {
		log.Fatalf("soundpull: %v", err)
	}
}

func bootstrapApp(carrier corecmd.ConfigCarrier) (corecmd.TelegramApp, error) {
	cfg := carrier.CoreConfig()

	// Database settings come from the environment only; the history
	// feature is off unless enabled in config.
	var dbCfg coredatabase.Config
	if cfg.History.Enabled {
		if err := envconfig.Process("", &dbCfg); err != nil {
			return nil, fmt.Errorf("database env config: %w", err)
		}
	}

	result, err := corebootstrap.Run(corebootstrap.Options{
		Config:       cfg,
		Database:     dbCfg,
		WithDatabase: cfg.History.Enabled,
	})
	if err != nil {
		return nil, err
	}

	prov := provider.NewYTDLP(context.Background())
	return bot.New(cfg, prov, history.NewStore(result.DB)), nil
}
