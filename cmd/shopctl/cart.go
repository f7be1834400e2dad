package main

import (
	"fmt"
	"strconv"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

func (a *app) cartCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cart",
		Short: "Manage the local cart",
	}

	show := &cobra.Command{
		Use:   "show",
		Short: "Print the cart and its totals",
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.printCart()
		},
	}

	add := &cobra.Command{
		Use:   "add <product-id> [quantity]",
		Short: "Add a product, merging with an existing line",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			qty := 1
			if len(args) == 2 {
				n, err := strconv.Atoi(args[1])
				if err != nil {
					return fmt.Errorf("quantity %q: %w", args[1], err)
				}
				qty = n
			}
			p, err := a.catalog.ByID(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if _, err := a.cart.Add(cmd.Context(), p, qty); err != nil {
				return err
			}
			return a.printCart()
		},
	}

	remove := &cobra.Command{
		Use:   "remove <product-id>",
		Short: "Remove a product from the cart",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !a.cart.Remove(cmd.Context(), args[0]) && !a.asJSON {
				fmt.Fprintf(a.out, "%s is not in the cart\n", args[0])
			}
			return a.printCart()
		},
	}

	update := &cobra.Command{
		Use:   "update <product-id> <quantity>",
		Short: "Set a line's quantity; zero or less removes it",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			n, err := strconv.Atoi(args[1])
			if err != nil {
				return fmt.Errorf("quantity %q: %w", args[1], err)
			}
			found, err := a.cart.UpdateQuantity(cmd.Context(), args[0], n)
			if err != nil {
				return err
			}
			if !found && !a.asJSON {
				fmt.Fprintf(a.out, "%s is not in the cart\n", args[0])
			}
			return a.printCart()
		},
	}

	clearCmd := &cobra.Command{
		Use:   "clear",
		Short: "Empty the cart",
		RunE: func(cmd *cobra.Command, args []string) error {
			a.cart.Clear(cmd.Context())
			return a.printCart()
		},
	}

	cmd.AddCommand(show, add, remove, update, clearCmd)
	return cmd
}

func (a *app) printCart() error {
	items, sum := a.cart.Summary()
	if a.asJSON {
		return a.printJSON(struct {
			Items   any `json:"items"`
			Summary any `json:"summary"`
		}{items, sum})
	}

	if len(items) == 0 {
		fmt.Fprintln(a.out, "Cart is empty")
		return nil
	}

	w := tabwriter.NewWriter(a.out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tQTY\tPRICE\tLINE")
	for _, it := range items {
		fmt.Fprintf(w, "%s\t%s\t%d\t%s\t%s\n", it.ProductID, it.Name, it.Quantity, money(it.PriceCents), money(it.LineTotalCents()))
	}
	fmt.Fprintf(w, "\t\t%d\tSubtotal\t%s\n", sum.Count, money(sum.SubtotalCents))
	fmt.Fprintf(w, "\t\t\tShipping\t%s\n", money(sum.ShippingCents))
	fmt.Fprintf(w, "\t\t\tTax\t%s\n", money(sum.TaxCents))
	fmt.Fprintf(w, "\t\t\tTotal\t%s\n", money(sum.TotalCents))
	if sum.FreeShippingRemainingCents > 0 {
		fmt.Fprintf(w, "\nAdd %s more for free shipping\n", money(sum.FreeShippingRemainingCents))
	}
	return w.Flush()
}
