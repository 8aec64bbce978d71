package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/andreasstove999/ecommerce-system/storefront-go/internal/config"
	"github.com/andreasstove999/ecommerce-system/storefront-go/internal/logging"
)

var (
	// Global flags
	cfgPath string
	verbose bool

	cfg    config.Config
	logger *zap.Logger
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "storefront",
	Short: "Grocery storefront: cart, checkout and account commands",
	Long: `storefront is the command line client for the grocery API.

The cart lives on this machine and survives restarts. Signing in, browsing
products, checkout and order history talk to the grocery API. "storefront
serve" exposes the same cart and checkout over a local HTTP API.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load(cfgPath)
		if err != nil {
			return err
		}
		logger, err = logging.New(cfg.LogLevel, verbose)
		return err
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgPath, "config", "c", os.Getenv(config.EnvPrefix+"CONFIG"), "YAML config file")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")

	cartCmd.AddCommand(cartShowCmd, cartAddCmd, cartSetCmd, cartRemoveCmd, cartClearCmd)
	validateCmd.AddCommand(validatePostalCmd, validatePhoneCmd)

	rootCmd.AddCommand(productsCmd)
	rootCmd.AddCommand(cartCmd)
	rootCmd.AddCommand(countriesCmd)
	rootCmd.AddCommand(validateCmd)
	rootCmd.AddCommand(loginCmd)
	rootCmd.AddCommand(loginGoogleCmd)
	rootCmd.AddCommand(registerCmd)
	rootCmd.AddCommand(verifyCmd)
	rootCmd.AddCommand(logoutCmd)
	rootCmd.AddCommand(whoamiCmd)
	rootCmd.AddCommand(ordersCmd)
	rootCmd.AddCommand(checkoutCmd)
	rootCmd.AddCommand(serveCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
