package main

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/andreasstove999/ecommerce-system/storefront-go/internal/checkout"
	"github.com/andreasstove999/ecommerce-system/storefront-go/internal/validation"
)

var (
	shipping validation.Shipping
	payment  checkout.Payment
)

var ordersCmd = &cobra.Command{
	Use:   "orders",
	Short: "Show order history",
	Args:  cobra.NoArgs,
	RunE:  runOrders,
}

// checkoutCmd places an order for the whole cart
var checkoutCmd = &cobra.Command{
	Use:   "checkout",
	Short: "Place an order for everything in the cart",
	Long: `Validates the shipping address against the selected country and the
payment details for the chosen method, then places the order. The cart is
emptied only once the order has been accepted.

Payment methods: upi, card, netbanking, wallet, cod

Example:
  storefront checkout --country IN --address "12 MG Road" --pin 560001 --method upi --upi asha@okbank`,
	Args: cobra.NoArgs,
	RunE: runCheckout,
}

func init() {
	f := checkoutCmd.Flags()
	f.StringVar(&shipping.FullName, "name", "", "Full name (default: the signed-in customer)")
	f.StringVar(&shipping.Email, "email", "", "Email (default: the signed-in customer)")
	f.StringVar(&shipping.CountryCode, "country", "", "Country code, e.g. IN")
	f.StringVar(&shipping.Phone, "phone", "", "Contact number")
	f.StringVar(&shipping.Address, "address", "", "Street address")
	f.StringVar(&shipping.PostalCode, "pin", "", "Postal code")

	f.StringVar((*string)(&payment.Method), "method", string(checkout.MethodCashOnDelivery), "Payment method")
	f.StringVar(&payment.UPIID, "upi", "", "UPI ID")
	f.StringVar(&payment.CardNumber, "card-number", "", "Card number")
	f.StringVar(&payment.ExpiryDate, "expiry", "", "Card expiry date (MM/YY)")
	f.StringVar(&payment.CVV, "cvv", "", "Card CVV")
	f.StringVar(&payment.CardholderName, "cardholder", "", "Name on the card")
	f.StringVar(&payment.BankName, "bank", "", "Bank for net banking")
	f.StringVar(&payment.WalletType, "wallet", "", "Wallet provider")
}

func runOrders(cmd *cobra.Command, args []string) error {
	return withApp(cmd.OutOrStdout(), func(ctx context.Context, a *app) error {
		u, err := a.signedIn(ctx)
		if err != nil {
			return err
		}
		history, err := a.orders.History(ctx, u.ID)
		if err != nil {
			return fmt.Errorf("order history: %w", err)
		}
		if len(history) == 0 {
			fmt.Fprintln(a.out, "No orders yet.")
			return nil
		}

		for _, tx := range history {
			t := newTable(fmt.Sprintf("Transaction %s", tx.TransactionID), "Order", "Product", "Qty", "Price", "Total", "Status")
			for _, line := range tx.Orders {
				t.add(line.OrderID.String(), line.ProductName, strconv.Itoa(line.Quantity),
					"$"+line.Price.StringFixed(2), "$"+line.LineTotal.StringFixed(2), line.Status)
			}
			t.footer = []string{fmt.Sprintf("%d items, $%s", tx.NoOfItems, tx.TotalAmount.StringFixed(2))}
			fmt.Fprintln(a.out, t)
		}
		return nil
	})
}

func runCheckout(cmd *cobra.Command, args []string) error {
	return withApp(cmd.OutOrStdout(), func(ctx context.Context, a *app) error {
		if a.cart.Count() == 0 {
			return errors.New("your cart is empty")
		}
		u, err := a.signedIn(ctx)
		if err != nil {
			return err
		}

		req := checkout.Request{Shipping: shipping, Payment: payment}
		if req.Shipping.FullName == "" {
			req.Shipping.FullName = u.Name
		}
		if req.Shipping.Email == "" {
			req.Shipping.Email = u.Email
		}

		if errs := a.checkout.Validate(ctx, req); !errs.OK() {
			printFieldErrors(cmd.ErrOrStderr(), errs)
			return errs.Err()
		}

		printCart(a.out, a.cart.Snapshot(), a.checkout)
		fmt.Fprintln(cmd.ErrOrStderr(), mutedStyle.Render("Processing payment..."))

		receipt, err := a.checkout.PlaceOrder(ctx, u.ID, req)
		if err != nil {
			return err
		}

		t := newTable("Invoice", "Order", "Product", "Company", "Qty", "Price", "Total")
		for _, line := range receipt.Invoice.Items {
			t.add(line.OrderID.String(), line.ProductName, line.Company, strconv.Itoa(line.Quantity),
				"$"+line.Price.StringFixed(2), "$"+line.Total.StringFixed(2))
		}
		t.footer = []string{
			"Paid:  $" + receipt.Summary.Total.StringFixed(2) + " (" + string(receipt.Method) + ")",
			"Reference: " + receipt.IdempotencyKey,
		}
		fmt.Fprint(a.out, t)
		return nil
	})
}
