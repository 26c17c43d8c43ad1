package main

import (
	"fmt"
	"os"

	"github.com/urfave/cli/v2"
	"go.uber.org/zap"

	"github.com/rugstore/storefront/internal/cart"
	"github.com/rugstore/storefront/internal/config"
	"github.com/rugstore/storefront/internal/localstore"
	"github.com/rugstore/storefront/internal/pricing"
	"github.com/rugstore/storefront/internal/session"
	"github.com/rugstore/storefront/internal/storefront"
)

// shop is the state shared by every command
type shop struct {
	cfg     *config.Config
	logger  *zap.Logger
	kv      *localstore.FileStore
	client  *storefront.Client
	session *session.Session
	cart    *cart.Store
	rates   pricing.Rates
}

func main() {
	if err := newApp(&shop{}).Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newApp(s *shop) *cli.App {
	return &cli.App{
		Name:  "shop",
		Usage: "rug storefront from the terminal",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "api", Usage: "storefront API base URL", EnvVars: []string{"STOREFRONT_API_URL"}},
			&cli.StringFlag{Name: "state", Usage: "local state file", EnvVars: []string{"STOREFRONT_STATE_FILE"}},
			&cli.BoolFlag{Name: "verbose", Aliases: []string{"v"}, Usage: "log to stderr"},
		},
		Before: s.setup,
		After: func(*cli.Context) error {
			if s.logger != nil {
				_ = s.logger.Sync()
			}
			return nil
		},
		Commands: []*cli.Command{
			registerCommand(s),
			loginCommand(s),
			logoutCommand(s),
			profileCommand(s),
			cartCommand(s),
			checkoutCommand(s),
			orderCommand(s),
			adminCommand(s),
		},
	}
}

func (s *shop) setup(c *cli.Context) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	if v := c.String("api"); v != "" {
		cfg.Client.APIURL = v
	}
	if v := c.String("state"); v != "" {
		cfg.Client.StateFile = v
	}

	logger := zap.NewNop()
	if c.Bool("verbose") {
		if logger, err = zap.NewDevelopment(); err != nil {
			return err
		}
	}

	s.cfg = cfg
	s.logger = logger
	s.kv = localstore.NewFileStore(cfg.Client.StateFile)
	s.client = storefront.NewClient(cfg.Client.APIURL, logger)
	s.session = session.New(s.kv, logger)
	s.cart = cart.Open(s.kv, logger)
	s.rates = pricing.NewRates(cfg.Shipping)
	return nil
}

// requireToken returns the bearer token or an error asking the user to log in
func (s *shop) requireToken() (string, error) {
	token := s.session.Token()
	if token == "" {
		return "", cli.Exit("not logged in: run `shop login` first", 1)
	}
	return token, nil
}
