package postest

import (
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"warimas-pos/internal/api"
	"warimas-pos/internal/cart"
	"warimas-pos/internal/category"
	"warimas-pos/internal/payment"
	"warimas-pos/internal/product"
	"warimas-pos/internal/session"
	"warimas-pos/internal/transaction"
	"warimas-pos/internal/user"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func startServer(t *testing.T) (*Server, *api.Client, *session.Manager) {
	t.Helper()

	s := New()
	srv := httptest.NewServer(s.Handler())
	t.Cleanup(srv.Close)

	client, err := api.NewClient(api.Config{BaseURL: srv.URL, Timeout: 2 * time.Second})
	require.NoError(t, err)

	return s, client, session.NewManager(client)
}

func TestServer_LoginFlow(t *testing.T) {
	ctx := context.Background()

	t.Run("Success - seeded admin signs in", func(t *testing.T) {
		_, _, mgr := startServer(t)

		claims, err := mgr.Login(ctx, "admin", "admin123")

		require.NoError(t, err)
		assert.Equal(t, session.RoleAdmin, claims.Role)
		assert.Equal(t, "Admin Warimas", claims.Name)
		assert.True(t, mgr.IsAuthenticated())
	})

	t.Run("Failed - wrong password", func(t *testing.T) {
		_, _, mgr := startServer(t)

		_, err := mgr.Login(ctx, "admin", "wrong")

		require.Error(t, err)
		assert.True(t, api.IsAuthentication(err))
	})

	t.Run("Success - logout revokes the refresh cookie", func(t *testing.T) {
		_, _, mgr := startServer(t)
		_, err := mgr.Login(ctx, "kasir", "kasir123")
		require.NoError(t, err)

		mgr.Logout(ctx)

		claims, err := mgr.Bootstrap(ctx)
		require.NoError(t, err)
		assert.Nil(t, claims)
	})

	t.Run("Success - bootstrap restores session after login", func(t *testing.T) {
		_, _, mgr := startServer(t)
		_, err := mgr.Login(ctx, "kasir", "kasir123")
		require.NoError(t, err)

		claims, err := mgr.Bootstrap(ctx)

		require.NoError(t, err)
		require.NotNil(t, claims)
		assert.Equal(t, "kasir", claims.Username)
	})
}

func TestServer_ExpiredTokenIsRefreshedTransparently(t *testing.T) {
	ctx := context.Background()
	s, client, mgr := startServer(t)

	s.SetTokenTTL(time.Second)
	_, err := mgr.Login(ctx, "kasir", "kasir123")
	require.NoError(t, err)
	s.SetTokenTTL(time.Minute)

	time.Sleep(1500 * time.Millisecond) // let the first token lapse

	items, _, err := product.NewClient(client).List(ctx, api.ListQuery{})

	require.NoError(t, err)
	assert.NotEmpty(t, items)
	assert.Equal(t, 1, s.RefreshCalls())
}

func TestServer_ProductCRUD(t *testing.T) {
	ctx := context.Background()
	_, client, mgr := startServer(t)
	_, err := mgr.Login(ctx, "admin", "admin123")
	require.NoError(t, err)

	products := product.NewClient(client)
	categories := category.NewClient(client)

	t.Run("Success - create and read back", func(t *testing.T) {
		cats, _, err := categories.List(ctx, api.ListQuery{})
		require.NoError(t, err)
		require.NotEmpty(t, cats)

		created, err := products.Create(ctx, product.CreateInput{
			Name:       "Teh Botol",
			Price:      decimal.NewFromInt(8000),
			Stock:      24,
			CategoryID: cats[0].ID,
		})
		require.NoError(t, err)
		assert.NotZero(t, created.ID)
		assert.Equal(t, cats[0].Name, created.CategoryName)

		got, err := products.Get(ctx, created.ID)
		require.NoError(t, err)
		assert.Equal(t, "Teh Botol", got.Name)
		assert.True(t, got.Price.Equal(decimal.NewFromInt(8000)))
	})

	t.Run("Failed - duplicate name is a validation error", func(t *testing.T) {
		_, err := products.Create(ctx, product.CreateInput{
			Name:  "Nasi Goreng",
			Price: decimal.NewFromInt(1000),
			Stock: 1,
		})

		require.Error(t, err)
		assert.True(t, api.IsValidation(err))
		var apiErr *api.Error
		require.ErrorAs(t, err, &apiErr)
		assert.Equal(t, "product name already exists", apiErr.Message)
	})

	t.Run("Success - update and delete round trip", func(t *testing.T) {
		created, err := products.Create(ctx, product.CreateInput{
			Name:  "Roti Bakar",
			Price: decimal.NewFromInt(12000),
			Stock: 5,
		})
		require.NoError(t, err)

		updated, err := products.Update(ctx, created.ID, product.CreateInput{
			Name:  "Roti Bakar Coklat",
			Price: decimal.NewFromInt(14000),
			Stock: 8,
		})
		require.NoError(t, err)
		assert.Equal(t, "Roti Bakar Coklat", updated.Name)

		require.NoError(t, products.Delete(ctx, created.ID))

		_, err = products.Get(ctx, created.ID)
		require.Error(t, err)
		assert.True(t, api.IsValidation(err))
	})
}

func TestServer_ListPaging(t *testing.T) {
	ctx := context.Background()
	_, client, mgr := startServer(t)
	_, err := mgr.Login(ctx, "admin", "admin123")
	require.NoError(t, err)

	products := product.NewClient(client)

	firstPage, paging, err := products.List(ctx, api.ListQuery{Size: 2})
	require.NoError(t, err)
	require.Len(t, firstPage, 2)
	assert.Equal(t, int64(4), paging.Total)
	assert.True(t, paging.HasMore)
	assert.Equal(t, firstPage[1].ID, paging.Cursor)

	secondPage, paging, err := products.List(ctx, api.ListQuery{Size: 2, Cursor: paging.Cursor})
	require.NoError(t, err)
	require.Len(t, secondPage, 2)
	assert.False(t, paging.HasMore)
	assert.Greater(t, secondPage[0].ID, firstPage[1].ID)

	filtered, paging, err := products.List(ctx, api.ListQuery{Search: "teh"})
	require.NoError(t, err)
	require.Len(t, filtered, 1)
	assert.Equal(t, "Es Teh", filtered[0].Name)
	assert.Equal(t, int64(1), paging.Total)
}

func TestServer_UserManagement(t *testing.T) {
	ctx := context.Background()

	t.Run("Failed - cashier cannot manage accounts", func(t *testing.T) {
		_, client, mgr := startServer(t)
		_, err := mgr.Login(ctx, "kasir", "kasir123")
		require.NoError(t, err)

		_, _, err = user.NewClient(client).List(ctx, api.ListQuery{})

		require.Error(t, err)
		assert.True(t, api.IsValidation(err))
	})

	t.Run("Success - admin creates a cashier", func(t *testing.T) {
		_, client, mgr := startServer(t)
		_, err := mgr.Login(ctx, "admin", "admin123")
		require.NoError(t, err)

		users := user.NewClient(client)

		created, err := users.Create(ctx, user.CreateInput{
			Username: "kasir2",
			Name:     "Kasir Dua",
			Password: "rahasia",
			Role:     session.RoleCashier,
		})
		require.NoError(t, err)
		assert.Equal(t, session.RoleCashier, created.Role)

		_, err = users.Create(ctx, user.CreateInput{
			Username: "kasir2",
			Name:     "Duplicate",
			Password: "rahasia",
			Role:     session.RoleCashier,
		})
		require.Error(t, err)
		assert.True(t, api.IsValidation(err))
	})
}

func TestServer_CheckoutFlow(t *testing.T) {
	ctx := context.Background()
	_, client, mgr := startServer(t)
	_, err := mgr.Login(ctx, "kasir", "kasir123")
	require.NoError(t, err)

	products := product.NewClient(client)
	catalog, err := products.ListAll(ctx)
	require.NoError(t, err)
	require.Len(t, catalog, 4)

	engine := cart.NewEngine(cart.NewFileStore(filepath.Join(t.TempDir(), "cart.json")))
	require.NoError(t, engine.SetCatalog(ctx, catalog))

	var nasi, teh int64
	for _, p := range catalog {
		switch p.Name {
		case "Nasi Goreng":
			nasi = p.ID
		case "Es Teh":
			teh = p.ID
		}
	}

	require.NoError(t, engine.Add(ctx, nasi))
	require.NoError(t, engine.Add(ctx, nasi))
	require.NoError(t, engine.Add(ctx, teh))

	totals := engine.Totals(10)
	require.True(t, totals.Total.Equal(decimal.NewFromInt(66000)))

	active, err := payment.NewClient(client).ListActive(ctx)
	require.NoError(t, err)
	require.NotEmpty(t, active)

	tx, err := transaction.NewClient(client).Submit(ctx,
		transaction.FromCart(engine.Lines(), totals, active[0].ID))
	require.NoError(t, err)

	assert.NotEmpty(t, tx.InvoiceNumber)
	assert.Equal(t, "Kasir Satu", tx.CashierName)
	assert.True(t, tx.Total.Equal(decimal.NewFromInt(66000)))

	// stock followed the sale
	p, err := products.Get(ctx, nasi)
	require.NoError(t, err)
	assert.Equal(t, int64(38), p.Stock)

	// the basket empties after a successful sale
	require.NoError(t, engine.Reset(ctx))
	assert.True(t, engine.IsEmpty())
}

func TestServer_SubmitValidation(t *testing.T) {
	ctx := context.Background()
	_, client, mgr := startServer(t)
	_, err := mgr.Login(ctx, "kasir", "kasir123")
	require.NoError(t, err)

	t.Run("Failed - totals must add up", func(t *testing.T) {
		_, err := transaction.NewClient(client).Submit(ctx, transaction.SubmitInput{
			Items: []transaction.Item{
				{ProductID: 1, Name: "X", UnitPrice: decimal.NewFromInt(1000), Quantity: 2},
			},
			Subtotal:        decimal.NewFromInt(2000),
			ServiceCharge:   decimal.NewFromInt(200),
			Total:           decimal.NewFromInt(9999),
			PaymentMethodID: 1,
		})

		require.Error(t, err)
		assert.True(t, api.IsValidation(err))
		var apiErr *api.Error
		require.ErrorAs(t, err, &apiErr)
		assert.Equal(t, "totals do not add up", apiErr.Message)
	})

	t.Run("Failed - empty basket rejected client side", func(t *testing.T) {
		_, err := transaction.NewClient(client).Submit(ctx, transaction.SubmitInput{})

		assert.ErrorIs(t, err, transaction.ErrEmptySubmit)
	})

	t.Run("Success - replayed idempotency key settles once", func(t *testing.T) {
		in := transaction.SubmitInput{
			InvoiceNumber: "INV-TEST-0001",
			Items: []transaction.Item{
				{ProductID: 3, Name: "Es Teh", UnitPrice: decimal.NewFromInt(10000), Quantity: 1},
			},
			Subtotal:        decimal.NewFromInt(10000),
			ServiceCharge:   decimal.Zero,
			Total:           decimal.NewFromInt(10000),
			PaymentMethodID: 1,
		}

		header := http.Header{}
		header.Set("Idempotency-Key", "double-tap-1")
		req := api.Request{Method: http.MethodPost, Path: "/api/transactions", Body: in, Header: header}

		var first, second transaction.Transaction
		require.NoError(t, client.Do(ctx, req, &first))
		require.NoError(t, client.Do(ctx, req, &second))

		assert.Equal(t, first.ID, second.ID)
	})
}

func TestServer_Summary(t *testing.T) {
	ctx := context.Background()
	_, client, mgr := startServer(t)
	_, err := mgr.Login(ctx, "kasir", "kasir123")
	require.NoError(t, err)

	txClient := transaction.NewClient(client)

	submit := func(total int64) {
		_, err := txClient.Submit(ctx, transaction.SubmitInput{
			Items: []transaction.Item{
				{ProductID: 3, Name: "Es Teh", UnitPrice: decimal.NewFromInt(total), Quantity: 1},
			},
			Subtotal:        decimal.NewFromInt(total),
			ServiceCharge:   decimal.Zero,
			Total:           decimal.NewFromInt(total),
			PaymentMethodID: 1,
		})
		require.NoError(t, err)
	}
	submit(10000)
	submit(15000)

	rows, err := txClient.Summary(ctx, 7)

	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, time.Now().UTC().Format("2006-01-02"), rows[0].Date)
	assert.Equal(t, int64(2), rows[0].Count)
	assert.True(t, rows[0].Gross.Equal(decimal.NewFromInt(25000)))
}
