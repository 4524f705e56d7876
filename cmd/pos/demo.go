package main

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"warimas-pos/internal/api"
	"warimas-pos/internal/cart"
	"warimas-pos/internal/logger"
	"warimas-pos/internal/metrics"
	"warimas-pos/internal/payment"
	"warimas-pos/internal/postest"
	"warimas-pos/internal/product"
	"warimas-pos/internal/session"
	"warimas-pos/internal/transaction"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

const demoServiceCharge = 10

func demoCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "demo",
		Short: "Run a scripted shift against an embedded fake backend",
		Long:  "Boots an in-process POS backend seeded with a small warung menu, then signs in,\nfills a basket, settles it, and prints the day's summary. No configuration needed.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDemo(cmd.Context())
		},
	}
}

func runDemo(ctx context.Context) error {
	logger.Init("")
	log := logger.L()

	backend := postest.New()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		return fmt.Errorf("start embedded backend: %w", err)
	}
	defer ln.Close()
	go func() { _ = http.Serve(ln, backend.Handler()) }()

	baseURL := "http://" + ln.Addr().String()
	log.Info("embedded backend up", zap.String("url", baseURL))

	m := metrics.NewPipeline()
	client, err := api.NewClient(api.Config{BaseURL: baseURL, Timeout: 5 * time.Second, Metrics: m})
	if err != nil {
		return err
	}

	mgr := session.NewManager(client)
	mgr.SetNavigate(func(path string) {
		fmt.Printf("-> %s\n", path)
	})

	// keep the token fresh in the background, the way the real terminal does
	watchCtx, stopWatch := context.WithCancel(ctx)
	defer stopWatch()
	go session.NewWatchdog(mgr, session.DefaultWatchdogInterval).Run(watchCtx)

	resumed, err := mgr.Bootstrap(ctx)
	if err != nil {
		return err
	}
	if resumed == nil {
		fmt.Println("no session to resume, signing in")
	}

	claims, err := mgr.Login(ctx, "admin", "admin123")
	if err != nil {
		return err
	}
	fmt.Printf("signed in as %s (%s)\n\n", claims.Name, claims.Role)

	products := product.NewClient(client)
	catalog, err := products.ListAll(ctx)
	if err != nil {
		return err
	}
	fmt.Println("today's menu:")
	printProducts(catalog)

	tmp, err := os.MkdirTemp("", "pos-demo-*")
	if err != nil {
		return err
	}
	defer os.RemoveAll(tmp)

	engine := cart.NewEngine(cart.NewFileStore(filepath.Join(tmp, "cart.json")))
	if err := engine.SetCatalog(ctx, catalog); err != nil {
		return err
	}

	// ring up two plates and a drink
	for _, id := range []int64{catalog[0].ID, catalog[0].ID, catalog[2].ID} {
		if err := engine.Add(ctx, id); err != nil {
			return err
		}
	}

	fmt.Println("\nbasket:")
	totals := engine.Totals(demoServiceCharge)
	printBasket(engine.Lines(), totals)

	active, err := payment.NewClient(client).ListActive(ctx)
	if err != nil {
		return err
	}

	txs := transaction.NewClient(client)
	tx, err := txs.Submit(ctx, transaction.FromCart(engine.Lines(), totals, active[0].ID))
	if err != nil {
		return err
	}
	if err := engine.Reset(ctx); err != nil {
		return err
	}

	fmt.Println()
	printReceipt(tx)
	printInstructions(active[0].Code, tx.Total)

	rows, err := txs.Summary(ctx, 7)
	if err != nil {
		return err
	}
	fmt.Println("\ntoday so far:")
	printSummary(rows)

	mgr.Logout(ctx)
	fmt.Printf("\nsigned out, pipeline served %d requests with %d refreshes\n",
		m.Requests.Load(), m.Refreshes.Load())
	return nil
}
