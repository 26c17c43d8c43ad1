package main

import (
	"fmt"

	"github.com/urfave/cli/v2"

	"github.com/rugstore/storefront/internal/checkout"
	"github.com/rugstore/storefront/internal/domain"
)

func credentialFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{Name: "email", Required: true},
		&cli.StringFlag{Name: "password", Required: true, EnvVars: []string{"SHOP_PASSWORD"}},
	}
}

func registerCommand(s *shop) *cli.Command {
	return &cli.Command{
		Name:  "register",
		Usage: "create an account and log in",
		Flags: credentialFlags(),
		Action: func(c *cli.Context) error {
			creds := domain.Credentials{Email: c.String("email"), Password: c.String("password")}
			if err := s.client.Register(c.Context, creds); err != nil {
				return err
			}
			return s.login(c, creds)
		},
	}
}

func loginCommand(s *shop) *cli.Command {
	return &cli.Command{
		Name:  "login",
		Usage: "log in and remember the session",
		Flags: credentialFlags(),
		Action: func(c *cli.Context) error {
			return s.login(c, domain.Credentials{Email: c.String("email"), Password: c.String("password")})
		},
	}
}

func (s *shop) login(c *cli.Context, creds domain.Credentials) error {
	tok, err := s.client.Login(c.Context, creds)
	if err != nil {
		return err
	}
	if err := s.session.Store(*tok); err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}
	fmt.Fprintf(c.App.Writer, "Logged in as %s\n", creds.Email)

	if path, ok := checkout.ResumePath(s.kv); ok {
		fmt.Fprintf(c.App.Writer, "Continue where you left off: %s (run `shop checkout`)\n", path)
	}
	return nil
}

func logoutCommand(s *shop) *cli.Command {
	return &cli.Command{
		Name:  "logout",
		Usage: "forget the session",
		Action: func(c *cli.Context) error {
			if err := s.session.Clear(); err != nil {
				return err
			}
			fmt.Fprintln(c.App.Writer, "Logged out")
			return nil
		},
	}
}

func profileCommand(s *shop) *cli.Command {
	return &cli.Command{
		Name:  "profile",
		Usage: "show or update the saved profile",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "name"},
			&cli.StringFlag{Name: "phone"},
			&cli.StringFlag{Name: "address"},
			&cli.StringFlag{Name: "city"},
			&cli.StringFlag{Name: "zip"},
		},
		Action: func(c *cli.Context) error {
			token, err := s.requireToken()
			if err != nil {
				return err
			}

			view, err := s.client.GetProfile(c.Context, token)
			if err != nil {
				return err
			}

			changed := false
			set := func(flag string, dst *string) {
				if c.IsSet(flag) {
					*dst = c.String(flag)
					changed = true
				}
			}
			profile := view.Profile
			set("name", &profile.Name)
			set("phone", &profile.Phone)
			set("address", &profile.Address)
			set("city", &profile.City)
			set("zip", &profile.Zip)

			if changed {
				if view, err = s.client.UpdateProfile(c.Context, token, profile); err != nil {
					return err
				}
			}

			w := c.App.Writer
			fmt.Fprintf(w, "Email:   %s\n", view.Email)
			fmt.Fprintf(w, "Name:    %s\n", view.Name)
			fmt.Fprintf(w, "Phone:   %s\n", view.Phone)
			fmt.Fprintf(w, "Address: %s\n", view.Address)
			fmt.Fprintf(w, "City:    %s\n", view.City)
			fmt.Fprintf(w, "Zip:     %s\n", view.Zip)
			return nil
		},
	}
}
