package main

import (
	"fmt"
	"io"
	"strconv"
	"text/tabwriter"

	"github.com/shopspring/decimal"
	"github.com/urfave/cli/v2"

	"github.com/rugstore/storefront/internal/cart"
	"github.com/rugstore/storefront/internal/domain"
)

func cartCommand(s *shop) *cli.Command {
	return &cli.Command{
		Name:  "cart",
		Usage: "manage the cart",
		Action: func(c *cli.Context) error {
			printCart(c.App.Writer, s)
			return nil
		},
		Subcommands: []*cli.Command{
			{
				Name:  "add",
				Usage: "add a product to the cart",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "product", Required: true, Usage: "product id"},
					&cli.StringFlag{Name: "name", Required: true},
					&cli.StringFlag{Name: "price", Required: true, Usage: "unit price, e.g. 20.00"},
					&cli.StringFlag{Name: "market-price", Usage: "list price before discount"},
					&cli.StringFlag{Name: "size", Required: true},
					&cli.StringFlag{Name: "variant"},
					&cli.StringFlag{Name: "color"},
					&cli.StringFlag{Name: "thumbnail"},
					&cli.IntFlag{Name: "qty", Value: 1},
				},
				Action: func(c *cli.Context) error {
					price, err := decimal.NewFromString(c.String("price"))
					if err != nil {
						return fmt.Errorf("invalid price: %w", err)
					}
					product := cart.Product{
						ID:        c.String("product"),
						Name:      c.String("name"),
						Price:     price,
						Thumbnail: c.String("thumbnail"),
					}
					if c.IsSet("market-price") {
						mp, err := decimal.NewFromString(c.String("market-price"))
						if err != nil {
							return fmt.Errorf("invalid market price: %w", err)
						}
						product.MarketPrice = &mp
					}

					s.cart.AddItem(product, c.String("size"), c.Int("qty"), c.String("variant"), c.String("color"))
					printCart(c.App.Writer, s)
					return nil
				},
			},
			{
				Name:      "update",
				Usage:     "set the quantity of a line item",
				ArgsUsage: "<item-id> <qty>",
				Action: func(c *cli.Context) error {
					if c.NArg() != 2 {
						return cli.Exit("usage: shop cart update <item-id> <qty>", 1)
					}
					qty, err := strconv.Atoi(c.Args().Get(1))
					if err != nil {
						return fmt.Errorf("invalid quantity: %w", err)
					}
					id := c.Args().Get(0)
					if _, ok := s.cart.Item(id); !ok {
						return cli.Exit("no such item: "+id, 1)
					}
					s.cart.UpdateQuantity(id, qty)
					printCart(c.App.Writer, s)
					return nil
				},
			},
			{
				Name:      "remove",
				Usage:     "remove a line item",
				ArgsUsage: "<item-id>",
				Action: func(c *cli.Context) error {
					if c.NArg() != 1 {
						return cli.Exit("usage: shop cart remove <item-id>", 1)
					}
					s.cart.RemoveItem(c.Args().First())
					printCart(c.App.Writer, s)
					return nil
				},
			},
			{
				Name:  "clear",
				Usage: "empty the cart",
				Action: func(c *cli.Context) error {
					s.cart.Clear()
					printCart(c.App.Writer, s)
					return nil
				},
			},
		},
	}
}

func printCart(w io.Writer, s *shop) {
	if s.cart.IsEmpty() {
		fmt.Fprintln(w, "Your cart is empty")
		return
	}

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ITEM\tNAME\tSIZE\tCOLOR\tQTY\tPRICE\tTOTAL")
	for _, item := range s.cart.Items() {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%d\t%s\t%s\n",
			item.ID, item.Name, item.Size, item.Color, item.Quantity,
			item.UnitPrice.StringFixed(2), item.LineTotal().StringFixed(2))
	}
	tw.Flush()

	subtotal := s.cart.Subtotal()
	fmt.Fprintf(w, "\n%d item(s), subtotal %s\n", s.cart.Count(), subtotal.StringFixed(2))
	for _, method := range []domain.ShippingMethod{domain.ShippingStandard, domain.ShippingExpress} {
		q := s.rates.Quote(method, subtotal)
		fmt.Fprintf(w, "  %-8s shipping %s, total %s\n", method, q.Shipping.StringFixed(2), q.Total.StringFixed(2))
	}
}
