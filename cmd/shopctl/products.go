package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"ShopFlow/internal/catalog"
)

func (a *app) productsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "products",
		Aliases: []string{"p"},
		Short:   "Query the product catalog",
	}

	var (
		q        catalog.Query
		sortName string
	)
	list := &cobra.Command{
		Use:   "list",
		Short: "List products, optionally filtered and sorted",
		RunE: func(cmd *cobra.Command, args []string) error {
			order, err := catalog.ParseSortOrder(sortName)
			if err != nil {
				return err
			}
			q.Sort = order
			products, err := a.catalog.Browse(cmd.Context(), q)
			if err != nil {
				return err
			}
			return a.printProducts(products)
		},
	}
	list.Flags().StringVarP(&q.Text, "query", "q", "", "Text to match in name, description, category or tags")
	list.Flags().StringVar(&q.Category, "category", "", "Category name")
	list.Flags().BoolVar(&q.FeaturedOnly, "featured", false, "Only featured products")
	list.Flags().BoolVar(&q.OnSaleOnly, "on-sale", false, "Only products on sale")
	list.Flags().Int64Var(&q.MinPriceCents, "min-price", 0, "Minimum price in cents")
	list.Flags().Int64Var(&q.MaxPriceCents, "max-price", 0, "Maximum price in cents (0 = no limit)")
	list.Flags().Float64Var(&q.MinRating, "min-rating", 0, "Minimum rating")
	list.Flags().BoolVar(&q.InStockOnly, "in-stock", false, "Only products in stock")
	list.Flags().StringVar(&sortName, "sort", "relevance", "relevance, name, price-low, price-high or rating")

	get := &cobra.Command{
		Use:   "get <id>",
		Short: "Show one product",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := a.catalog.ByID(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if a.asJSON {
				return a.printJSON(p)
			}
			w := tabwriter.NewWriter(a.out, 0, 0, 2, ' ', 0)
			fmt.Fprintf(w, "ID\t%s\n", p.ID)
			fmt.Fprintf(w, "Name\t%s\n", p.Name)
			fmt.Fprintf(w, "Category\t%s\n", p.Category)
			fmt.Fprintf(w, "Price\t%s\n", money(p.PriceCents))
			if p.OriginalPriceCents != nil {
				fmt.Fprintf(w, "Was\t%s\n", money(*p.OriginalPriceCents))
			}
			fmt.Fprintf(w, "Rating\t%.1f (%d reviews)\n", p.Rating, p.ReviewCount)
			fmt.Fprintf(w, "In stock\t%t\n", p.InStock)
			fmt.Fprintf(w, "Description\t%s\n", p.Description)
			return w.Flush()
		},
	}

	search := &cobra.Command{
		Use:   "search <query>",
		Short: "Search name, description, category and tags",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			products, err := a.catalog.Search(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return a.printProducts(products)
		},
	}

	category := &cobra.Command{
		Use:   "category <name>",
		Short: "List products in a category",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			products, err := a.catalog.ByCategory(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return a.printProducts(products)
		},
	}

	var relatedCategory string
	related := &cobra.Command{
		Use:   "related <id>",
		Short: "Up to four other products from the same category",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cat := relatedCategory
			if cat == "" {
				p, err := a.catalog.ByID(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				cat = p.Category
			}
			products, err := a.catalog.Related(cmd.Context(), args[0], cat)
			if err != nil {
				return err
			}
			return a.printProducts(products)
		},
	}
	related.Flags().StringVar(&relatedCategory, "category", "", "Category to draw from (default: the product's own)")

	featured := &cobra.Command{
		Use:   "featured",
		Short: "List featured products",
		RunE: func(cmd *cobra.Command, args []string) error {
			products, err := a.catalog.Featured(cmd.Context())
			if err != nil {
				return err
			}
			return a.printProducts(products)
		},
	}

	sale := &cobra.Command{
		Use:   "sale",
		Short: "List products on sale",
		RunE: func(cmd *cobra.Command, args []string) error {
			products, err := a.catalog.OnSale(cmd.Context())
			if err != nil {
				return err
			}
			return a.printProducts(products)
		},
	}

	cmd.AddCommand(list, get, search, category, related, featured, sale)
	return cmd
}

func (a *app) categoriesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "categories",
		Short: "Query product categories",
	}

	var featuredOnly bool
	list := &cobra.Command{
		Use:   "list",
		Short: "List categories",
		RunE: func(cmd *cobra.Command, args []string) error {
			var (
				categories []catalog.Category
				err        error
			)
			if featuredOnly {
				categories, err = a.catalog.FeaturedCategories(cmd.Context())
			} else {
				categories, err = a.catalog.Categories(cmd.Context())
			}
			if err != nil {
				return err
			}
			if a.asJSON {
				return a.printJSON(categories)
			}
			w := tabwriter.NewWriter(a.out, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tNAME\tSLUG\tPRODUCTS")
			for _, c := range categories {
				fmt.Fprintf(w, "%s\t%s\t%s\t%d\n", c.ID, c.Name, c.Slug, c.ProductCount)
			}
			return w.Flush()
		},
	}
	list.Flags().BoolVar(&featuredOnly, "featured", false, "Only featured categories")

	cmd.AddCommand(list)
	return cmd
}

func (a *app) printProducts(products []catalog.Product) error {
	if a.asJSON {
		return a.printJSON(products)
	}
	w := tabwriter.NewWriter(a.out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tCATEGORY\tPRICE\tRATING")
	for _, p := range products {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%.1f\n", p.ID, p.Name, p.Category, money(p.PriceCents), p.Rating)
	}
	return w.Flush()
}
