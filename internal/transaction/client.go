package transaction

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"strconv"

	"warimas-pos/internal/api"
	"warimas-pos/internal/logger"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const basePath = "/api/transactions"

var ErrEmptySubmit = errors.New("cannot submit an empty transaction")

// Client records and reads sales through the shared pipeline.
type Client struct {
	api *api.Client
}

func NewClient(a *api.Client) *Client {
	return &Client{api: a}
}

// Submit turns a frozen basket into a sale. An Idempotency-Key header makes
// a nervous double-tap on the pay button settle as a single transaction,
// and the invoice number is minted here when the caller left it empty.
func (c *Client) Submit(ctx context.Context, in SubmitInput) (*Transaction, error) {
	log := logger.FromCtx(ctx)

	if len(in.Items) == 0 {
		return nil, ErrEmptySubmit
	}
	if in.InvoiceNumber == "" {
		in.InvoiceNumber = invoiceNumber()
	}

	header := http.Header{}
	header.Set("Idempotency-Key", uuid.New().String())

	var tx Transaction
	err := c.api.Do(ctx, api.Request{
		Method: http.MethodPost,
		Path:   basePath,
		Body:   in,
		Header: header,
	}, &tx)
	if err != nil {
		log.Error("transaction submit failed",
			zap.String("invoice", in.InvoiceNumber),
			zap.Error(err),
		)
		return nil, err
	}

	log.Info("transaction submitted",
		zap.String("invoice", tx.InvoiceNumber),
		zap.String("total", tx.Total.String()),
	)
	return &tx, nil
}

func (c *Client) List(ctx context.Context, q api.ListQuery) ([]Transaction, api.Paging, error) {
	var items []Transaction
	paging, err := c.api.List(ctx, basePath, q, &items)
	if err != nil {
		return nil, api.Paging{}, err
	}
	return items, paging, nil
}

// Summary fetches per-day sales aggregates for the dashboard, newest first.
func (c *Client) Summary(ctx context.Context, days int) ([]DailySummary, error) {
	if days <= 0 {
		days = 7
	}

	query := url.Values{}
	query.Set("days", strconv.Itoa(days))

	var rows []DailySummary
	err := c.api.Do(ctx, api.Request{
		Method: http.MethodGet,
		Path:   basePath + "/summary",
		Query:  query,
	}, &rows)
	if err != nil {
		return nil, err
	}
	return rows, nil
}
