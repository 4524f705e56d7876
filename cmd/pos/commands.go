package main

import (
	"errors"
	"fmt"
	"strconv"

	"warimas-pos/internal/api"
	"warimas-pos/internal/cart"
	"warimas-pos/internal/category"
	"warimas-pos/internal/payment"
	"warimas-pos/internal/product"
	"warimas-pos/internal/session"
	"warimas-pos/internal/transaction"
	"warimas-pos/internal/user"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
)

func loginCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "login",
		Short: "Verify credentials against the backend",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}

			claims, err := a.signIn(cmd.Context())
			if err != nil {
				return err
			}

			fmt.Printf("signed in as %s (%s), landing at %s\n", claims.Name, claims.Role, claims.Role.LandingPath())
			return nil
		},
	}
}

/* ---------- CATALOG ---------- */

func productsCmd() *cobra.Command {
	var (
		search string
		size   int
		cursor int64
	)

	cmd := &cobra.Command{
		Use:   "products",
		Short: "Browse the product catalog",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := signedInApp(cmd)
			if err != nil {
				return err
			}

			items, paging, err := product.NewClient(a.client).List(cmd.Context(), api.ListQuery{
				Search: search,
				Size:   size,
				Cursor: cursor,
			})
			if err != nil {
				return err
			}

			printProducts(items)
			if paging.HasMore {
				fmt.Printf("%d total, continue with --cursor %d\n", paging.Total, paging.Cursor)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&search, "search", "", "filter by name")
	cmd.Flags().IntVar(&size, "size", 0, "page size")
	cmd.Flags().Int64Var(&cursor, "cursor", 0, "resume after this product ID")

	cmd.AddCommand(productsAddCmd())
	return cmd
}

func productsAddCmd() *cobra.Command {
	var (
		name       string
		price      string
		stock      int64
		categoryID int64
	)

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add a product to the catalog",
		RunE: func(cmd *cobra.Command, args []string) error {
			unitPrice, err := decimal.NewFromString(price)
			if err != nil {
				return fmt.Errorf("--price is not a valid amount: %w", err)
			}

			a, err := signedInApp(cmd)
			if err != nil {
				return err
			}

			created, err := product.NewClient(a.client).Create(cmd.Context(), product.CreateInput{
				Name:       name,
				Price:      unitPrice,
				Stock:      stock,
				CategoryID: categoryID,
			})
			if err != nil {
				return err
			}

			fmt.Printf("created product %d: %s at %s\n", created.ID, created.Name, money(created.Price))
			return nil
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "product name")
	cmd.Flags().StringVar(&price, "price", "", "unit price")
	cmd.Flags().Int64Var(&stock, "stock", 0, "initial stock")
	cmd.Flags().Int64Var(&categoryID, "category", 0, "category ID")
	_ = cmd.MarkFlagRequired("name")
	_ = cmd.MarkFlagRequired("price")

	return cmd
}

func categoriesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "categories",
		Short: "List product categories",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := signedInApp(cmd)
			if err != nil {
				return err
			}

			items, _, err := category.NewClient(a.client).List(cmd.Context(), api.ListQuery{})
			if err != nil {
				return err
			}

			printCategories(items)
			return nil
		},
	}
}

func methodsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "methods",
		Short: "List active payment methods",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := signedInApp(cmd)
			if err != nil {
				return err
			}

			items, err := payment.NewClient(a.client).ListActive(cmd.Context())
			if err != nil {
				return err
			}

			printMethods(items)
			return nil
		},
	}
}

/* ---------- ACCOUNTS ---------- */

func usersCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "users",
		Short: "Manage cashier and admin accounts",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := signedInApp(cmd)
			if err != nil {
				return err
			}

			items, _, err := user.NewClient(a.client).List(cmd.Context(), api.ListQuery{})
			if err != nil {
				return err
			}

			printUsers(items)
			return nil
		},
	}

	cmd.AddCommand(usersAddCmd())
	return cmd
}

func usersAddCmd() *cobra.Command {
	var (
		username string
		name     string
		password string
		role     string
	)

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Create an account",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := signedInApp(cmd)
			if err != nil {
				return err
			}

			created, err := user.NewClient(a.client).Create(cmd.Context(), user.CreateInput{
				Username: username,
				Name:     name,
				Password: password,
				Role:     session.Role(role),
			})
			if err != nil {
				return err
			}

			fmt.Printf("created %s account %s (%d)\n", created.Role, created.Username, created.ID)
			return nil
		},
	}

	cmd.Flags().StringVar(&username, "username", "", "login username")
	cmd.Flags().StringVar(&name, "name", "", "display name")
	cmd.Flags().StringVar(&password, "password", "", "initial password")
	cmd.Flags().StringVar(&role, "role", string(session.RoleCashier), "ADMIN or CASHIER")
	_ = cmd.MarkFlagRequired("username")
	_ = cmd.MarkFlagRequired("name")
	_ = cmd.MarkFlagRequired("password")

	return cmd
}

/* ---------- BASKET ---------- */

func cartCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cart",
		Short: "Work the basket",
	}

	cmd.AddCommand(cartShowCmd(), cartAddCmd(), cartDropCmd(), cartClearCmd())
	return cmd
}

func cartShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show the basket with running totals",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := signedInApp(cmd)
			if err != nil {
				return err
			}

			engine, err := a.basket(cmd.Context())
			if err != nil {
				return err
			}

			printBasket(engine.Lines(), engine.Totals(a.cfg.ServiceChargePercent))
			return nil
		},
	}
}

func cartAddCmd() *cobra.Command {
	var qty int

	cmd := &cobra.Command{
		Use:   "add <product-id>",
		Short: "Add a product to the basket",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			productID, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("product ID must be a number: %w", err)
			}
			if qty < 1 {
				return errors.New("--qty must be at least 1")
			}

			a, err := signedInApp(cmd)
			if err != nil {
				return err
			}

			engine, err := a.basket(cmd.Context())
			if err != nil {
				return err
			}

			for i := 0; i < qty; i++ {
				if err := engine.Add(cmd.Context(), productID); err != nil {
					return err
				}
			}

			printBasket(engine.Lines(), engine.Totals(a.cfg.ServiceChargePercent))
			return nil
		},
	}

	cmd.Flags().IntVar(&qty, "qty", 1, "how many to add")
	return cmd
}

func cartDropCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "drop <product-id>",
		Short: "Take one unit of a product out of the basket",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			productID, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("product ID must be a number: %w", err)
			}

			a, err := signedInApp(cmd)
			if err != nil {
				return err
			}

			engine, err := a.basket(cmd.Context())
			if err != nil {
				return err
			}

			if err := engine.Decrease(cmd.Context(), productID); err != nil {
				return err
			}

			printBasket(engine.Lines(), engine.Totals(a.cfg.ServiceChargePercent))
			return nil
		},
	}
}

func cartClearCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Empty the basket",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}

			// clearing is local, no sign-in or catalog needed
			engine := cart.NewEngine(a.store())
			if err := engine.Restore(cmd.Context()); err != nil {
				return err
			}
			if err := engine.Reset(cmd.Context()); err != nil {
				return err
			}

			fmt.Println("basket cleared")
			return nil
		},
	}
}

/* ---------- CHECKOUT AND REPORTING ---------- */

func checkoutCmd() *cobra.Command {
	var methodID int64

	cmd := &cobra.Command{
		Use:   "checkout",
		Short: "Settle the basket as a transaction",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := signedInApp(cmd)
			if err != nil {
				return err
			}
			ctx := cmd.Context()

			engine, err := a.basket(ctx)
			if err != nil {
				return err
			}
			if engine.IsEmpty() {
				return errors.New("basket is empty, add products before checking out")
			}

			active, err := payment.NewClient(a.client).ListActive(ctx)
			if err != nil {
				return err
			}
			if len(active) == 0 {
				return errors.New("no active payment methods configured")
			}

			method := active[0]
			if methodID != 0 {
				found := false
				for _, m := range active {
					if m.ID == methodID {
						method = m
						found = true
						break
					}
				}
				if !found {
					return fmt.Errorf("payment method %d is not active", methodID)
				}
			}

			totals := engine.Totals(a.cfg.ServiceChargePercent)
			tx, err := transaction.NewClient(a.client).Submit(ctx,
				transaction.FromCart(engine.Lines(), totals, method.ID))
			if err != nil {
				return err
			}

			if err := engine.Reset(ctx); err != nil {
				return err
			}

			printReceipt(tx)
			printInstructions(method.Code, tx.Total)
			return nil
		},
	}

	cmd.Flags().Int64Var(&methodID, "method", 0, "payment method ID (defaults to the first active one)")
	return cmd
}

func salesCmd() *cobra.Command {
	var days int

	cmd := &cobra.Command{
		Use:   "sales",
		Short: "Daily sales summary",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := signedInApp(cmd)
			if err != nil {
				return err
			}

			rows, err := transaction.NewClient(a.client).Summary(cmd.Context(), days)
			if err != nil {
				return err
			}

			printSummary(rows)
			return nil
		},
	}

	cmd.Flags().IntVar(&days, "days", 7, "how many days back to report")
	return cmd
}
