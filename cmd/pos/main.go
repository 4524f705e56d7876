// The pos binary is the Warimas admin terminal. It signs a cashier or
// admin into the POS backend, keeps the access token fresh behind the
// scenes, and drives the catalog, basket, and checkout from the shell.
package main

import (
	"fmt"
	"os"

	"warimas-pos/internal/logger"

	"github.com/spf13/cobra"
)

const version = "1.0.0"

var (
	flagUsername string
	flagPassword string
)

func main() {
	defer logger.Sync()

	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "pos",
		Short:         "Warimas POS admin terminal",
		Long:          "Terminal frontend for the Warimas POS backend: sign in, browse the catalog,\nring up a basket, and settle transactions. Configure the backend with POS_API_URL\nor a .env file.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringVarP(&flagUsername, "username", "u", os.Getenv("POS_USERNAME"), "account username (defaults to POS_USERNAME)")
	cmd.PersistentFlags().StringVarP(&flagPassword, "password", "p", os.Getenv("POS_PASSWORD"), "account password (defaults to POS_PASSWORD)")

	cmd.AddCommand(
		loginCmd(),
		productsCmd(),
		categoriesCmd(),
		methodsCmd(),
		usersCmd(),
		cartCmd(),
		checkoutCmd(),
		salesCmd(),
		demoCmd(),
		versionCmd(),
	)

	return cmd
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("pos version %s\n", version)
		},
	}
}
