// Package main seeds verified universities and the superuser account.
package main

import (
	"context"
	"errors"
	"flag"
	"os"

	"go.uber.org/zap"

	"github.com/skillproof/backend/config"
	"github.com/skillproof/backend/internal/bootstrap"
	"github.com/skillproof/backend/internal/registration"
	"github.com/skillproof/backend/internal/seed"
	"github.com/skillproof/backend/internal/verification"
)

func main() {
	universities := flag.Bool("universities", false, "create or verify the default university list")
	superuser := flag.Bool("superuser", false, "create the admin account from SUPERUSER_EMAIL and SUPERUSER_PASSWORD")
	flag.Parse()

	logger := bootstrap.NewLogger()
	defer logger.Sync()

	if !*universities && !*superuser {
		flag.Usage()
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("load config", zap.Error(err))
	}
	ctx := context.Background()
	st, err := bootstrap.OpenStore(ctx, cfg, logger)
	if err != nil {
		logger.Fatal("storage", zap.Error(err))
	}
	defer st.Close()

	if *universities {
		sum, err := seed.Universities(ctx, st, seed.KenyanUniversities, logger)
		if err != nil {
			logger.Fatal("seed universities", zap.Error(err))
		}
		logger.Info("universities seeded",
			zap.Int("created", sum.Created),
			zap.Int("verified", sum.Verified),
			zap.Int("skipped", sum.Skipped),
		)
	}

	if *superuser {
		if cfg.Superuser.Email == "" || cfg.Superuser.Password == "" {
			logger.Fatal("SUPERUSER_EMAIL and SUPERUSER_PASSWORD are required")
		}
		engine := verification.NewEngine(st, bootstrap.EngineConfig(cfg), logger)
		res, err := registration.NewWorkflow(st, engine, logger).CreateSuperuser(ctx, cfg.Superuser.Email, cfg.Superuser.Password)
		switch {
		case errors.Is(err, registration.ErrEmailTaken):
			logger.Info("superuser already exists", zap.String("email", cfg.Superuser.Email))
		case err != nil:
			logger.Fatal("create superuser", zap.Error(err))
		default:
			logger.Info("superuser created", zap.String("user_id", res.User.ID.String()))
		}
	}
}
