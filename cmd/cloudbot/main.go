package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"

	"github.com/mmdyrbwtat-lang/cloud-bot/bot"
	"github.com/mmdyrbwtat-lang/cloud-bot/core/bootstrap"
	corecmd "github.com/mmdyrbwtat-lang/cloud-bot/core/cmd"
	coreconfig "github.com/mmdyrbwtat-lang/cloud-bot/core/config"
	coredatabase "github.com/mmdyrbwtat-lang/cloud-bot/core/database"
	coretelegram "github.com/mmdyrbwtat-lang/cloud-bot/core/telegram"
	"github.com/mmdyrbwtat-lang/cloud-bot/flow"
)

// appConfig carries the core configuration plus the postgres section that
// only the postgres backend reads.
type appConfig struct {
	core *coreconfig.Config
	db   coredatabase.Config
}

func (a *appConfig) CoreConfig() *coreconfig.Config {
	return a.core
}

func loadConfig(path string) (corecmd.ConfigCarrier, error) {
	core, err := coreconfig.Load(path)
	if err != nil {
		return nil, err
	}

	var wrapper struct {
		Database coredatabase.Config `yaml:"database"`
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, &wrapper); err != nil {
		return nil, fmt.Errorf("parse database config: %w", err)
	}
	if err := envconfig.Process("", &wrapper.Database); err != nil {
		return nil, fmt.Errorf("process database env: %w", err)
	}

	return &appConfig{core: core, db: wrapper.Database}, nil
}

// app ties the bootstrapped store to the Telegram wiring.
type app struct {
	cfg *coreconfig.Config
	res *bootstrap.Result
}

func (a *app) TelegramRunOptions() (coretelegram.RunOptions, error) {
	machine := flow.NewMachine(a.res.Store, flow.NewSessions())
	opts := bot.BuildRunOptions(a.cfg, machine)

	prevStop := opts.OnStop
	opts.OnStop = func(ctx context.Context, rt coretelegram.Runtime) error {
		if prevStop != nil {
			if err := prevStop(ctx, rt); err != nil {
				return err
			}
		}
		return a.res.Close()
	}
	return opts, nil
}

func main() {
	err := corecmd.Run(corecmd.Options{
		DefaultConfigPath: "configs/config.yaml",
		LoadConfig:        loadConfig,
		Bootstrap: func(carrier corecmd.ConfigCarrier) (corecmd.TelegramApp, error) {
			cfg, ok := carrier.(*appConfig)
			if !ok {
				return nil, fmt.Errorf("unexpected config carrier %T", carrier)
			}
			res, err := bootstrap.Run(bootstrap.Options{
				Config:   cfg.core,
				Database: cfg.db,
			})
			if err != nil {
				return nil, err
			}
			return &app{cfg: cfg.core, res: res}, nil
		},
	})
	if err != nil {
		log.Fatalf("fatal: %v", err)
	}
}
