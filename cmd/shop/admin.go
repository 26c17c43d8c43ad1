package main

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/urfave/cli/v2"
	"golang.org/x/sync/errgroup"

	"github.com/rugstore/storefront/internal/admin"
	"github.com/rugstore/storefront/internal/domain"
)

func adminCommand(s *shop) *cli.Command {
	return &cli.Command{
		Name:  "admin",
		Usage: "staff order management",
		Subcommands: []*cli.Command{
			{
				Name:  "orders",
				Usage: "list orders",
				Flags: []cli.Flag{
					&cli.IntFlag{Name: "page", Value: 1},
					&cli.IntFlag{Name: "page-size", Value: admin.DefaultPageSize},
					&cli.StringFlag{Name: "search"},
					&cli.StringFlag{Name: "status"},
					&cli.StringFlag{Name: "ordering", Value: admin.DefaultOrdering.String(), Usage: "field or -field"},
					&cli.BoolFlag{Name: "all", Usage: "walk every page"},
				},
				Action: func(c *cli.Context) error {
					table, err := s.adminTable()
					if err != nil {
						return err
					}
					table.SetSearch(c.String("search"))
					table.SetStatus(domain.OrderStatus(c.String("status")))
					table.SetOrdering(admin.ParseOrdering(c.String("ordering")))
					table.SetPageSize(c.Int("page-size"))
					table.SetPage(c.Int("page"))

					for {
						if err := table.Refresh(c.Context); err != nil {
							return err
						}
						printRows(c.App.Writer, table.Rows())
						if !c.Bool("all") || !table.NextPage() {
							break
						}
					}
					fmt.Fprintf(c.App.Writer, "\n%d order(s) match\n", table.Count())
					return nil
				},
			},
			{
				Name:      "stage",
				Usage:     "set the stage of one or more orders",
				ArgsUsage: "<order-number> <stage> [<order-number> <stage> ...]",
				Action: func(c *cli.Context) error {
					args := c.Args().Slice()
					if len(args) == 0 || len(args)%2 != 0 {
						return cli.Exit("usage: shop admin stage <order-number> <stage> ...", 1)
					}
					table, err := s.adminTable()
					if err != nil {
						return err
					}
					if err := table.Refresh(c.Context); err != nil {
						return err
					}

					// Different rows update in parallel; the table serializes per row.
					g, ctx := errgroup.WithContext(c.Context)
					for i := 0; i < len(args); i += 2 {
						number, stage := args[i], domain.OrderStage(args[i+1])
						g.Go(func() error {
							if err := table.SetStage(ctx, number, stage); err != nil {
								return fmt.Errorf("order %s: %w", number, err)
							}
							return nil
						})
					}
					updateErr := g.Wait()

					if err := table.Refresh(c.Context); err != nil {
						return err
					}
					printRows(c.App.Writer, table.Rows())
					return updateErr
				},
			},
			{
				Name:      "status",
				Usage:     "move an order to another status",
				ArgsUsage: "<order-number> <status>",
				Action: func(c *cli.Context) error {
					if c.NArg() != 2 {
						return cli.Exit("usage: shop admin status <order-number> <status>", 1)
					}
					token, err := s.requireToken()
					if err != nil {
						return err
					}
					status := domain.OrderStatus(c.Args().Get(1))
					view, err := s.client.UpdateOrder(c.Context, token, c.Args().Get(0), domain.UpdateOrderRequest{Status: &status})
					if err != nil {
						return err
					}
					printOrder(c.App.Writer, view)
					return nil
				},
			},
			{
				Name:      "events",
				Usage:     "show the audit trail of an order",
				ArgsUsage: "<order-number>",
				Action: func(c *cli.Context) error {
					if c.NArg() != 1 {
						return cli.Exit("usage: shop admin events <order-number>", 1)
					}
					token, err := s.requireToken()
					if err != nil {
						return err
					}
					events, err := s.client.ListOrderEvents(c.Context, token, c.Args().First())
					if err != nil {
						return err
					}
					tw := tabwriter.NewWriter(c.App.Writer, 0, 4, 2, ' ', 0)
					fmt.Fprintln(tw, "WHEN\tEVENT\tDATA")
					for _, e := range events {
						fmt.Fprintf(tw, "%s\t%s\t%v\n", e.CreatedAt.Format("2006-01-02 15:04"), e.EventType, e.EventData)
					}
					return tw.Flush()
				},
			},
		},
	}
}

func (s *shop) adminTable() (*admin.Table, error) {
	token, err := s.requireToken()
	if err != nil {
		return nil, err
	}
	return admin.NewTable(s.client, token, s.logger), nil
}

func printRows(w io.Writer, rows []admin.Row) {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ORDER\tCUSTOMER\tTOTAL\tSTATUS\tSTAGE\tCREATED")
	for _, r := range rows {
		stage := string(r.Stage)
		if r.Pending {
			stage += " (pending)"
		}
		fmt.Fprintf(tw, "#%s\t%s\t%s\t%s\t%s\t%s\n",
			r.Order.Number, r.Order.CustomerName, r.Order.Total.StringFixed(2),
			r.Order.Status, stage, r.Order.CreatedAt.Format("2006-01-02"))
	}
	tw.Flush()
}

func printOrder(w io.Writer, o *domain.OrderView) {
	fmt.Fprintf(w, "Order #%s  %s / %s\n", o.Number, o.Status, o.Stage)
	fmt.Fprintf(w, "%s <%s> %s\n", o.CustomerName, o.Email, o.Phone)
	fmt.Fprintf(w, "%s, %s %s\n", o.Address, o.City, o.Zip)

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "\nPRODUCT\tNAME\tSIZE\tQTY\tPRICE")
	for _, item := range o.Items {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%s\n", item.ProductID, item.Name, item.Size, item.Quantity, item.Price.StringFixed(2))
	}
	tw.Flush()

	fmt.Fprintf(w, "Subtotal %s + shipping %s (%s) = %s, %s\n",
		o.Subtotal.StringFixed(2), o.ShippingCost.StringFixed(2), o.ShippingMethod,
		o.Total.StringFixed(2), o.PaymentMethod)
}
