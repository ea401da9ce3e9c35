package cli

import (
	"context"

	"github.com/m-mizutani/goerr/v2"
	"github.com/seion-lab/kintai/pkg/cli/config"
	"github.com/seion-lab/kintai/pkg/domain/types"
	"github.com/seion-lab/kintai/pkg/usecase"
	"github.com/seion-lab/kintai/pkg/utils/logging"
	"github.com/urfave/cli/v3"
)

func cmdSeed() *cli.Command {
	var seedPath string
	var repoCfg config.Repository

	flags := []cli.Flag{
		&cli.StringFlag{
			Name:        "seed-file",
			Usage:       "Path to the TOML file with users to register",
			Value:       "seed.toml",
			Sources:     cli.EnvVars("KINTAI_SEED_FILE"),
			Destination: &seedPath,
		},
	}
	flags = append(flags, repoCfg.Flags()...)

	return &cli.Command{
		Name:  "seed",
		Usage: "Register users from a seed file",
		Flags: flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			logger := logging.Default()

			cfg, err := config.LoadSeedConfig(seedPath)
			if err != nil {
				return goerr.Wrap(err, "failed to load seed config")
			}

			repo, err := repoCfg.Configure(ctx)
			if err != nil {
				return goerr.Wrap(err, "failed to initialize repository")
			}
			defer func() {
				if err := repo.Close(); err != nil {
					logger.Error("failed to close repository", "error", err.Error())
				}
			}()

			uc := usecase.New(repo)
			if err := uc.Initialize(ctx); err != nil {
				return goerr.Wrap(err, "failed to load existing users")
			}

			var registered, skipped int
			for _, seedUser := range cfg.Users {
				result := uc.Register(ctx, seedUser.Name, types.CardID(seedUser.CardUID), seedUser.Department)
				if result.Success {
					registered++
					logger.Info("registered seed user", "name", seedUser.Name)
				} else {
					skipped++
					logger.Warn("skipped seed user", "name", seedUser.Name, "reason", result.Message)
				}
			}

			logger.Info("seed completed", "registered", registered, "skipped", skipped)
			return nil
		},
	}
}
