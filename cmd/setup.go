package main

import (
	"context"
	"os"

	"github.com/desertthunder/downyt/internal/shared"
	"github.com/urfave/cli/v3"
)

// Setup writes the config file when missing, then initializes the database and runs migrations.
func (r *Runner) Setup(ctx context.Context, cmd *cli.Command) error {
	configPath := cmd.String("config")

	config := r.config
	if _, err := os.Stat(configPath); err == nil {
		if config, err = shared.LoadConfig(configPath); err != nil {
			return err
		}
		r.logger.Info("using existing config", "path", configPath)
	} else {
		r.logger.Info("config file not found, creating from template", "path", configPath)
		if err := shared.CreateConfigFile(configPath); err != nil {
			return err
		}
		if config, err = shared.LoadConfig(configPath); err != nil {
			return err
		}
		r.writePlain("✓ Config written to %s\n", configPath)
	}
	r.config = config

	r.logger.Info("initializing database", "path", config.Database.Path)
	if err := r.openStores(); err != nil {
		return err
	}

	r.writePlain("✓ Database ready at %s\n", config.Database.Path)
	r.writePlainln("Next steps:")
	r.writePlain("1. Point backend.base_url in %s at your download server (now %s)\n", configPath, config.Backend.BaseURL)
	r.writePlain("2. Run 'downyt cookies import --curl-file request.sh' if the server needs cookies\n")
	return nil
}
