package main

import (
	"errors"
	"fmt"

	"github.com/urfave/cli/v2"

	"github.com/rugstore/storefront/internal/checkout"
	"github.com/rugstore/storefront/internal/domain"
	"github.com/rugstore/storefront/internal/submission"
)

func checkoutCommand(s *shop) *cli.Command {
	return &cli.Command{
		Name:  "checkout",
		Usage: "place an order for the cart",
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "from-profile", Usage: "fill empty contact fields from the saved profile"},
			&cli.StringFlag{Name: "email"},
			&cli.StringFlag{Name: "name"},
			&cli.StringFlag{Name: "phone"},
			&cli.StringFlag{Name: "address"},
			&cli.StringFlag{Name: "city"},
			&cli.StringFlag{Name: "zip"},
			&cli.StringFlag{Name: "notes"},
			&cli.StringFlag{Name: "shipping", Value: string(domain.ShippingStandard), Usage: "standard or express"},
			&cli.StringFlag{Name: "payment", Value: string(domain.PaymentCashOnDelivery), Usage: "cash_on_delivery or card"},
		},
		Action: func(c *cli.Context) error {
			adapter := submission.NewAdapter(s.client, s.cart, s.logger)
			ctrl := checkout.NewController(s.cart, s.rates, s.session, s.kv, adapter, s.logger)

			if err := ctrl.Begin(); err != nil {
				if errors.Is(err, checkout.ErrLoginRequired) {
					return cli.Exit("log in to check out: run `shop login`", 1)
				}
				return err
			}

			// Step 1: contact and shipping address
			ctrl.Update(func(f *checkout.Form) {
				f.Email = c.String("email")
				f.Name = c.String("name")
				f.Phone = c.String("phone")
				f.Address = c.String("address")
				f.City = c.String("city")
				f.Zip = c.String("zip")
			})
			if c.Bool("from-profile") {
				profile, err := s.client.GetProfile(c.Context, s.session.Token())
				if err != nil {
					return fmt.Errorf("failed to load profile: %w", err)
				}
				ctrl.ImportProfile(*profile)
			}
			if err := ctrl.Continue(); err != nil {
				return err
			}

			// Step 2: method and payment
			ctrl.Update(func(f *checkout.Form) {
				f.ShippingMethod = domain.ShippingMethod(c.String("shipping"))
				f.PaymentMethod = domain.PaymentMethod(c.String("payment"))
				f.Notes = c.String("notes")
			})

			quote := ctrl.Quote()
			w := c.App.Writer
			fmt.Fprintf(w, "Subtotal: %s\n", quote.Subtotal.StringFixed(2))
			fmt.Fprintf(w, "Shipping: %s\n", quote.Shipping.StringFixed(2))
			fmt.Fprintf(w, "Total:    %s\n", quote.Total.StringFixed(2))

			result, err := ctrl.PlaceOrder(c.Context)
			if err != nil {
				var submitErr *submission.SubmissionError
				if errors.As(err, &submitErr) {
					return fmt.Errorf("%w; your cart was kept, try again", err)
				}
				return err
			}

			fmt.Fprintf(w, "\nOrder #%s placed (%s)\n", result.Ack.OrderNumber, result.Ack.Status)
			fmt.Fprintf(w, "Confirmation: %s\n", result.Redirect)
			return nil
		},
	}
}

func orderCommand(s *shop) *cli.Command {
	return &cli.Command{
		Name:      "order",
		Usage:     "show one of your orders",
		ArgsUsage: "<order-number>",
		Action: func(c *cli.Context) error {
			if c.NArg() != 1 {
				return cli.Exit("usage: shop order <order-number>", 1)
			}
			token, err := s.requireToken()
			if err != nil {
				return err
			}

			view, err := s.client.GetOrder(c.Context, token, c.Args().First())
			if err != nil {
				return err
			}
			printOrder(c.App.Writer, view)
			return nil
		},
	}
}
