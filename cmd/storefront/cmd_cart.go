package main

import (
	"context"
	"fmt"
	"io"
	"strconv"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/andreasstove999/ecommerce-system/storefront-go/internal/cart"
	"github.com/andreasstove999/ecommerce-system/storefront-go/internal/checkout"
)

var (
	addPrice   string
	addID      string
	addCompany string
)

// productsCmd lists the catalog
var productsCmd = &cobra.Command{
	Use:   "products",
	Short: "List the products in the catalog",
	RunE:  runProducts,
}

var cartCmd = &cobra.Command{
	Use:   "cart",
	Short: "Show and change the local cart",
}

var cartShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the cart with its totals",
	Args:  cobra.NoArgs,
	RunE:  runCartShow,
}

var cartAddCmd = &cobra.Command{
	Use:   "add [product-name]",
	Short: "Add one unit of a product",
	Long: `Adds one unit of the named product, or one more if it is already in
the cart. The product is looked up in the catalog unless --price is given,
in which case the item is added as described by the flags.

Example:
  storefront cart add Milk
  storefront cart add Bread --id b-2 --price 3.25`,
	Args: cobra.ExactArgs(1),
	RunE: runCartAdd,
}

var cartSetCmd = &cobra.Command{
	Use:   "set [product-id] [quantity]",
	Short: "Set the quantity of a line; 0 removes it",
	Args:  cobra.ExactArgs(2),
	RunE:  runCartSet,
}

var cartRemoveCmd = &cobra.Command{
	Use:     "rm [product-id]",
	Aliases: []string{"remove"},
	Short:   "Remove a line from the cart",
	Args:    cobra.ExactArgs(1),
	RunE:    runCartRemove,
}

var cartClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Empty the cart",
	Args:  cobra.NoArgs,
	RunE:  runCartClear,
}

func init() {
	cartAddCmd.Flags().StringVar(&addPrice, "price", "", "Unit price; skips the catalog lookup")
	cartAddCmd.Flags().StringVar(&addID, "id", "", "Product id used with --price (default: the name)")
	cartAddCmd.Flags().StringVar(&addCompany, "company", "", "Company name used with --price")
}

func runProducts(cmd *cobra.Command, args []string) error {
	return withApp(cmd.OutOrStdout(), func(ctx context.Context, a *app) error {
		u, err := a.signedIn(ctx)
		if err != nil {
			return err
		}
		products, err := a.catalog.ListProducts(ctx, u.ID)
		if err != nil {
			return fmt.Errorf("list products: %w", err)
		}

		t := newTable("Products", "Name", "Company", "Price", "In stock")
		for _, p := range products {
			t.add(p.Name, p.CompanyName, "$"+p.Price.StringFixed(2), strconv.Itoa(p.Quantity))
		}
		if len(products) == 0 {
			t.footer = append(t.footer, mutedStyle.Render("No products available."))
		}
		fmt.Fprint(a.out, t)
		return nil
	})
}

func runCartShow(cmd *cobra.Command, args []string) error {
	return withApp(cmd.OutOrStdout(), func(ctx context.Context, a *app) error {
		printCart(a.out, a.cart.Snapshot(), a.checkout)
		return nil
	})
}

func runCartAdd(cmd *cobra.Command, args []string) error {
	name := args[0]
	return withApp(cmd.OutOrStdout(), func(ctx context.Context, a *app) error {
		var p cart.Product
		if addPrice != "" {
			price, err := decimal.NewFromString(addPrice)
			if err != nil {
				return fmt.Errorf("invalid --price %q: %w", addPrice, err)
			}
			id := addID
			if id == "" {
				id = name
			}
			p = cart.Product{ID: cart.ProductID(id), Name: name, Price: price, Company: addCompany}
		} else {
			u, err := a.signedIn(ctx)
			if err != nil {
				return err
			}
			found, err := a.catalog.GetProduct(ctx, u.ID, name)
			if err != nil {
				return fmt.Errorf("find product: %w", err)
			}
			p = found.CartProduct()
		}

		if err := a.cart.Add(ctx, p); err != nil {
			return err
		}
		printCart(a.out, a.cart.Snapshot(), a.checkout)
		return nil
	})
}

func runCartSet(cmd *cobra.Command, args []string) error {
	qty, err := strconv.Atoi(args[1])
	if err != nil {
		return fmt.Errorf("quantity must be a whole number, got %q", args[1])
	}
	return withApp(cmd.OutOrStdout(), func(ctx context.Context, a *app) error {
		a.cart.SetQuantity(ctx, cart.ProductID(args[0]), qty)
		printCart(a.out, a.cart.Snapshot(), a.checkout)
		return nil
	})
}

func runCartRemove(cmd *cobra.Command, args []string) error {
	return withApp(cmd.OutOrStdout(), func(ctx context.Context, a *app) error {
		a.cart.Remove(ctx, cart.ProductID(args[0]))
		printCart(a.out, a.cart.Snapshot(), a.checkout)
		return nil
	})
}

func runCartClear(cmd *cobra.Command, args []string) error {
	return withApp(cmd.OutOrStdout(), func(ctx context.Context, a *app) error {
		a.cart.Clear(ctx)
		printCart(a.out, a.cart.Snapshot(), a.checkout)
		return nil
	})
}

func printCart(w io.Writer, st cart.State, svc *checkout.Service) {
	if len(st.Items) == 0 {
		fmt.Fprintln(w, "Your cart is empty.")
		return
	}

	sum := svc.Summarize(st)
	t := newTable(fmt.Sprintf("Cart (%d items)", sum.Count), "ID", "Name", "Price", "Qty", "Total")
	for _, it := range st.Items {
		t.add(it.ID.String(), it.Name, "$"+it.Price.StringFixed(2), strconv.Itoa(it.Quantity), "$"+it.LineTotal().StringFixed(2))
	}
	t.footer = []string{
		"Subtotal: $" + sum.Subtotal.StringFixed(2),
		"Tax:      $" + sum.Tax.StringFixed(2),
		"Total:    $" + sum.Total.StringFixed(2),
	}
	fmt.Fprint(w, t)
}
