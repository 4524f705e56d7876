// Package postest runs an in-memory POS backend speaking the same wire
// protocol as the production API: enveloped JSON bodies, cursor paging,
// short-lived bearer tokens and an httponly refresh cookie. Tests and the
// local demo mode both run against it.
package postest

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"warimas-pos/internal/api"
	"warimas-pos/internal/category"
	"warimas-pos/internal/payment"
	"warimas-pos/internal/product"
	"warimas-pos/internal/session"
	"warimas-pos/internal/transaction"
	"warimas-pos/internal/user"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"
)

const defaultTokenTTL = 15 * time.Minute

type account struct {
	user.User
	hash []byte
}

// Server holds all backend state behind one mutex; a till exercises it a
// few requests at a time, so contention is never a concern here.
type Server struct {
	mu sync.Mutex

	secret   []byte
	tokenTTL time.Duration

	failRefresh  bool
	refreshCalls int

	accounts      map[int64]*account
	products      map[int64]*product.Product
	categories    map[int64]*category.Category
	methods       map[int64]*payment.Method
	transactions  map[int64]*transaction.Transaction
	refreshTokens map[string]int64 // cookie value -> account id
	idempotency   map[string]int64 // idempotency key -> transaction id

	nextID map[string]int64
}

// New builds a server seeded with two operator accounts (admin/admin123 and
// kasir/kasir123), a small catalog and the common payment methods.
func New() *Server {
	s := &Server{
		secret:        []byte(uuid.New().String()),
		tokenTTL:      defaultTokenTTL,
		accounts:      make(map[int64]*account),
		products:      make(map[int64]*product.Product),
		categories:    make(map[int64]*category.Category),
		methods:       make(map[int64]*payment.Method),
		transactions:  make(map[int64]*transaction.Transaction),
		refreshTokens: make(map[string]int64),
		idempotency:   make(map[string]int64),
		nextID:        make(map[string]int64),
	}
	s.seed()
	return s
}

func (s *Server) seed() {
	s.seedAccount("admin", "admin123", "Admin Warimas", session.RoleAdmin)
	s.seedAccount("kasir", "kasir123", "Kasir Satu", session.RoleCashier)

	food := s.seedCategory("Makanan")
	drink := s.seedCategory("Minuman")

	s.seedProduct("Nasi Goreng", decimal.NewFromInt(25000), 40, food)
	s.seedProduct("Mie Ayam", decimal.NewFromInt(18000), 25, food)
	s.seedProduct("Es Teh", decimal.NewFromInt(10000), 100, drink)
	s.seedProduct("Kopi Susu", decimal.NewFromInt(15000), 60, drink)

	s.seedMethod("Tunai", payment.CodeCash)
	s.seedMethod("QRIS", payment.CodeQRIS)
	s.seedMethod("Kartu Debit", payment.CodeDebit)
}

func (s *Server) seedAccount(username, password, name string, role session.Role) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		panic(err)
	}

	id := s.allocate("users")
	s.accounts[id] = &account{
		User: user.User{
			ID:        id,
			Username:  username,
			Name:      name,
			Role:      role,
			CreatedAt: time.Now().UTC(),
			UpdatedAt: time.Now().UTC(),
		},
		hash: hash,
	}
}

func (s *Server) seedCategory(name string) int64 {
	id := s.allocate("categories")
	s.categories[id] = &category.Category{
		ID:        id,
		Name:      name,
		CreatedAt: time.Now().UTC(),
		UpdatedAt: time.Now().UTC(),
	}
	return id
}

func (s *Server) seedProduct(name string, price decimal.Decimal, stock, categoryID int64) {
	id := s.allocate("products")
	s.products[id] = &product.Product{
		ID:         id,
		Name:       name,
		Price:      price,
		Stock:      stock,
		CategoryID: categoryID,
		CreatedAt:  time.Now().UTC(),
		UpdatedAt:  time.Now().UTC(),
	}
}

func (s *Server) seedMethod(name, code string) {
	id := s.allocate("methods")
	s.methods[id] = &payment.Method{
		ID:        id,
		Name:      name,
		Code:      code,
		Active:    true,
		CreatedAt: time.Now().UTC(),
		UpdatedAt: time.Now().UTC(),
	}
}

func (s *Server) allocate(collection string) int64 {
	s.nextID[collection]++
	return s.nextID[collection]
}

/* ---------- KNOBS ---------- */

// SetTokenTTL shortens token life so tests can hit expiry paths quickly.
func (s *Server) SetTokenTTL(d time.Duration) {
	s.mu.Lock()
	s.tokenTTL = d
	s.mu.Unlock()
}

// SetFailRefresh makes the refresh endpoint reject every call, simulating a
// revoked or expired refresh cookie.
func (s *Server) SetFailRefresh(fail bool) {
	s.mu.Lock()
	s.failRefresh = fail
	s.mu.Unlock()
}

// RefreshCalls reports how many refresh attempts the server saw.
func (s *Server) RefreshCalls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.refreshCalls
}

/* ---------- ROUTER ---------- */

func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()

	r.Route("/api", func(r chi.Router) {
		r.Route("/users", func(r chi.Router) {
			r.Post("/login", s.handleLogin)
			r.Get("/refresh", s.handleRefresh)
			r.Delete("/logout", s.handleLogout)

			r.Group(func(r chi.Router) {
				r.Use(s.requireAuth)
				r.Get("/", s.handleListUsers)
				r.Post("/", s.handleCreateUser)
				r.Put("/{id}", s.handleUpdateUser)
				r.Delete("/{id}", s.handleDeleteUser)
			})
		})

		r.Group(func(r chi.Router) {
			r.Use(s.requireAuth)

			r.Route("/products", func(r chi.Router) {
				r.Get("/", s.handleListProducts)
				r.Post("/", s.handleCreateProduct)
				r.Get("/{id}", s.handleGetProduct)
				r.Put("/{id}", s.handleUpdateProduct)
				r.Delete("/{id}", s.handleDeleteProduct)
			})

			r.Route("/categories", func(r chi.Router) {
				r.Get("/", s.handleListCategories)
				r.Post("/", s.handleCreateCategory)
				r.Put("/{id}", s.handleUpdateCategory)
				r.Delete("/{id}", s.handleDeleteCategory)
			})

			r.Route("/payment-methods", func(r chi.Router) {
				r.Get("/", s.handleListMethods)
				r.Post("/", s.handleCreateMethod)
				r.Put("/{id}", s.handleUpdateMethod)
				r.Delete("/{id}", s.handleDeleteMethod)
			})

			r.Route("/transactions", func(r chi.Router) {
				r.Get("/", s.handleListTransactions)
				r.Post("/", s.handleSubmitTransaction)
				r.Get("/summary", s.handleSummary)
			})
		})
	})

	return r
}

/* ---------- ENVELOPE WRITERS ---------- */

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeData(w http.ResponseWriter, status int, v any) {
	writeJSON(w, status, map[string]any{"data": v})
}

func writeList(w http.ResponseWriter, items any, paging api.Paging) {
	writeJSON(w, http.StatusOK, map[string]any{"data": items, "paging": paging})
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"message": message})
}

// pageBounds slices a filtered, ID-sorted collection the way the real
// backend does: cursor is the last ID the client saw, size defaults to 10.
func pageBounds(n int, idAt func(int) int64, size int, cursor int64) (int, int, api.Paging) {
	if size <= 0 {
		size = 10
	}

	start := 0
	for start < n && cursor > 0 && idAt(start) <= cursor {
		start++
	}

	end := start + size
	if end > n {
		end = n
	}

	paging := api.Paging{Total: int64(n), HasMore: end < n}
	if end > start {
		paging.Cursor = idAt(end - 1)
	}
	return start, end, paging
}
