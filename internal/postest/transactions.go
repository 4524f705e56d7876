package postest

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sort"
	"strconv"
	"strings"
	"time"

	"warimas-pos/internal/transaction"

	"github.com/shopspring/decimal"
)

func (s *Server) handleSubmitTransaction(w http.ResponseWriter, r *http.Request) {
	var in transaction.SubmitInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeError(w, http.StatusBadRequest, "malformed request body")
		return
	}
	if len(in.Items) == 0 {
		writeError(w, http.StatusBadRequest, "transaction needs at least one item")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	// a replayed submit settles as the original sale
	key := r.Header.Get("Idempotency-Key")
	if key != "" {
		if id, ok := s.idempotency[key]; ok {
			writeData(w, http.StatusOK, s.transactions[id])
			return
		}
	}

	if _, ok := s.methods[in.PaymentMethodID]; !ok {
		writeError(w, http.StatusBadRequest, "payment method does not exist")
		return
	}

	subtotal := decimal.Zero
	for _, item := range in.Items {
		if item.Quantity < 1 {
			writeError(w, http.StatusBadRequest, "item quantity must be positive")
			return
		}
		subtotal = subtotal.Add(item.UnitPrice.Mul(decimal.NewFromInt(item.Quantity)))
	}
	if !subtotal.Equal(in.Subtotal) || !in.Total.Equal(in.Subtotal.Add(in.ServiceCharge)) {
		writeError(w, http.StatusBadRequest, "totals do not add up")
		return
	}

	tx := &transaction.Transaction{
		ID:              s.allocate("transactions"),
		InvoiceNumber:   in.InvoiceNumber,
		Items:           in.Items,
		Subtotal:        in.Subtotal,
		ServiceCharge:   in.ServiceCharge,
		Total:           in.Total,
		PaymentMethodID: in.PaymentMethodID,
		CreatedAt:       time.Now().UTC(),
	}
	if claims := claimsFrom(r.Context()); claims != nil {
		tx.CashierID = claims.UserID
		tx.CashierName = claims.Name
	}
	if tx.InvoiceNumber == "" {
		tx.InvoiceNumber = fmt.Sprintf("INV-%06d", tx.ID)
	}

	for _, item := range in.Items {
		if p, ok := s.products[item.ProductID]; ok {
			p.Stock -= item.Quantity
			if p.Stock < 0 {
				p.Stock = 0
			}
		}
	}

	s.transactions[tx.ID] = tx
	if key != "" {
		s.idempotency[key] = tx.ID
	}

	writeData(w, http.StatusCreated, tx)
}

func (s *Server) handleListTransactions(w http.ResponseWriter, r *http.Request) {
	search, size, cursor := listParams(r)

	s.mu.Lock()
	defer s.mu.Unlock()

	rows := make([]transaction.Transaction, 0, len(s.transactions))
	for _, tx := range s.transactions {
		if search != "" && !strings.Contains(strings.ToLower(tx.InvoiceNumber), search) {
			continue
		}
		rows = append(rows, *tx)
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].ID < rows[j].ID })

	from, to, paging := pageBounds(len(rows), func(i int) int64 { return rows[i].ID }, size, cursor)
	writeList(w, rows[from:to], paging)
}

func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	days, _ := strconv.Atoi(r.URL.Query().Get("days"))
	if days <= 0 {
		days = 7
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	cutoff := time.Now().UTC().AddDate(0, 0, -days)
	byDay := make(map[string]*transaction.DailySummary)
	for _, tx := range s.transactions {
		if tx.CreatedAt.Before(cutoff) {
			continue
		}
		day := tx.CreatedAt.Format("2006-01-02")
		row, ok := byDay[day]
		if !ok {
			row = &transaction.DailySummary{Date: day, Gross: decimal.Zero}
			byDay[day] = row
		}
		row.Count++
		row.Gross = row.Gross.Add(tx.Total)
	}

	rows := make([]transaction.DailySummary, 0, len(byDay))
	for _, row := range byDay {
		rows = append(rows, *row)
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].Date > rows[j].Date })

	writeData(w, http.StatusOK, rows)
}
