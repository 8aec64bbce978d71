package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/andreasstove999/ecommerce-system/storefront-go/internal/validation"
)

var countriesCmd = &cobra.Command{
	Use:   "countries",
	Short: "List countries with their calling codes and postal formats",
	Args:  cobra.NoArgs,
	RunE:  runCountries,
}

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Check a postal code or phone number for a country",
}

var validatePostalCmd = &cobra.Command{
	Use:   "postal [country-code] [code]",
	Short: "Check a postal code against the country's format",
	Long: `Checks the code against the country's postal format. '#' in a format
stands for a digit and '@' for a letter.

Example:
  storefront validate postal IN 560001
  storefront validate postal CA "K1A 0B1"`,
	Args: cobra.ExactArgs(2),
	RunE: runValidatePostal,
}

var validatePhoneCmd = &cobra.Command{
	Use:   "phone [country-code] [number]",
	Short: "Check and format a phone number for a country",
	Args:  cobra.ExactArgs(2),
	RunE:  runValidatePhone,
}

func runCountries(cmd *cobra.Command, args []string) error {
	return withApp(cmd.OutOrStdout(), func(ctx context.Context, a *app) error {
		list := a.countries.List(ctx)
		if len(list) == 0 {
			fmt.Fprintln(a.out, errorStyle.Render("Country list is unavailable right now."))
			return nil
		}
		t := newTable("", "Code", "Country", "Calling code", "Postal format")
		for _, c := range list {
			t.add(c.CCA2, c.Name, c.PhoneCode, c.PostalFormat)
		}
		fmt.Fprint(a.out, t)
		return nil
	})
}

func runValidatePostal(cmd *cobra.Command, args []string) error {
	return withApp(cmd.OutOrStdout(), func(ctx context.Context, a *app) error {
		c := a.countries.Lookup(ctx, args[0])
		rule := c.Locale().Postal
		if !rule.Required() {
			fmt.Fprintf(a.out, "%s does not use postal codes; any value is accepted.\n", countryLabel(c.Name, args[0]))
			return nil
		}

		err := rule.Validate(args[1])
		switch {
		case err == nil:
			fmt.Fprintf(a.out, "%q is a valid postal code for %s.\n", args[1], countryLabel(c.Name, args[0]))
			return nil
		case errors.Is(err, validation.ErrPostalLength):
			return fmt.Errorf("expected format: %s", rule.Template)
		default:
			return errors.New("invalid postal code format")
		}
	})
}

func runValidatePhone(cmd *cobra.Command, args []string) error {
	return withApp(cmd.OutOrStdout(), func(ctx context.Context, a *app) error {
		c := a.countries.Lookup(ctx, args[0])
		if err := validation.ValidatePhone(args[1], c.CCA2); err != nil {
			return fmt.Errorf("invalid contact number for selected country (e.g. %s)",
				validation.PhonePlaceholder(c.CCA2, c.PhoneCode))
		}
		if c.CCA2 == "" {
			fmt.Fprintf(a.out, "Country %s is unknown; the number was not checked.\n", args[0])
			return nil
		}
		fmt.Fprintln(a.out, validation.FormatPhone(args[1], c.CCA2))
		return nil
	})
}

func countryLabel(name, code string) string {
	if name == "" {
		return code
	}
	return name
}
