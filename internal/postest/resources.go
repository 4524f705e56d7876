package postest

import (
	"encoding/json"
	"net/http"
	"sort"
	"strconv"
	"strings"
	"time"

	"warimas-pos/internal/category"
	"warimas-pos/internal/payment"
	"warimas-pos/internal/product"
	"warimas-pos/internal/session"
	"warimas-pos/internal/user"

	"github.com/go-chi/chi/v5"
	"golang.org/x/crypto/bcrypt"
)

func idParam(r *http.Request) int64 {
	id, _ := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	return id
}

func listParams(r *http.Request) (search string, size int, cursor int64) {
	q := r.URL.Query()
	search = strings.ToLower(q.Get("search"))
	size, _ = strconv.Atoi(q.Get("size"))
	cursor, _ = strconv.ParseInt(q.Get("cursor"), 10, 64)
	return
}

/* ---------- PRODUCTS ---------- */

func (s *Server) handleListProducts(w http.ResponseWriter, r *http.Request) {
	search, size, cursor := listParams(r)

	s.mu.Lock()
	defer s.mu.Unlock()

	rows := make([]product.Product, 0, len(s.products))
	for _, p := range s.products {
		if search != "" && !strings.Contains(strings.ToLower(p.Name), search) {
			continue
		}
		rows = append(rows, *p)
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].ID < rows[j].ID })

	from, to, paging := pageBounds(len(rows), func(i int) int64 { return rows[i].ID }, size, cursor)
	writeList(w, rows[from:to], paging)
}

func (s *Server) handleGetProduct(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.products[idParam(r)]
	if !ok {
		writeError(w, http.StatusNotFound, "product not found")
		return
	}
	writeData(w, http.StatusOK, p)
}

func (s *Server) handleCreateProduct(w http.ResponseWriter, r *http.Request) {
	var in product.CreateInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeError(w, http.StatusBadRequest, "malformed request body")
		return
	}
	if strings.TrimSpace(in.Name) == "" {
		writeError(w, http.StatusBadRequest, "product name is required")
		return
	}
	if in.Price.IsNegative() {
		writeError(w, http.StatusBadRequest, "price cannot be negative")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, p := range s.products {
		if strings.EqualFold(p.Name, in.Name) {
			writeError(w, http.StatusConflict, "product name already exists")
			return
		}
	}

	now := time.Now().UTC()
	p := &product.Product{
		ID:         s.allocate("products"),
		Name:       in.Name,
		Price:      in.Price,
		Stock:      in.Stock,
		CategoryID: in.CategoryID,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if cat, ok := s.categories[in.CategoryID]; ok {
		p.CategoryName = cat.Name
	} else if in.CategoryID != 0 {
		writeError(w, http.StatusBadRequest, "category does not exist")
		return
	}

	s.products[p.ID] = p
	writeData(w, http.StatusCreated, p)
}

func (s *Server) handleUpdateProduct(w http.ResponseWriter, r *http.Request) {
	var in product.CreateInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeError(w, http.StatusBadRequest, "malformed request body")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.products[idParam(r)]
	if !ok {
		writeError(w, http.StatusNotFound, "product not found")
		return
	}

	for _, other := range s.products {
		if other.ID != p.ID && strings.EqualFold(other.Name, in.Name) {
			writeError(w, http.StatusConflict, "product name already exists")
			return
		}
	}

	p.Name = in.Name
	p.Price = in.Price
	p.Stock = in.Stock
	p.CategoryID = in.CategoryID
	p.CategoryName = ""
	if cat, ok := s.categories[in.CategoryID]; ok {
		p.CategoryName = cat.Name
	}
	p.UpdatedAt = time.Now().UTC()

	writeData(w, http.StatusOK, p)
}

func (s *Server) handleDeleteProduct(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := idParam(r)
	if _, ok := s.products[id]; !ok {
		writeError(w, http.StatusNotFound, "product not found")
		return
	}
	delete(s.products, id)
	writeData(w, http.StatusOK, map[string]bool{"deleted": true})
}

/* ---------- CATEGORIES ---------- */

func (s *Server) handleListCategories(w http.ResponseWriter, r *http.Request) {
	search, size, cursor := listParams(r)

	s.mu.Lock()
	defer s.mu.Unlock()

	rows := make([]category.Category, 0, len(s.categories))
	for _, c := range s.categories {
		if search != "" && !strings.Contains(strings.ToLower(c.Name), search) {
			continue
		}
		rows = append(rows, *c)
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].ID < rows[j].ID })

	from, to, paging := pageBounds(len(rows), func(i int) int64 { return rows[i].ID }, size, cursor)
	writeList(w, rows[from:to], paging)
}

func (s *Server) handleCreateCategory(w http.ResponseWriter, r *http.Request) {
	var in category.CreateInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeError(w, http.StatusBadRequest, "malformed request body")
		return
	}
	if strings.TrimSpace(in.Name) == "" {
		writeError(w, http.StatusBadRequest, "category name is required")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, c := range s.categories {
		if strings.EqualFold(c.Name, in.Name) {
			writeError(w, http.StatusConflict, "category name already exists")
			return
		}
	}

	now := time.Now().UTC()
	c := &category.Category{
		ID:        s.allocate("categories"),
		Name:      in.Name,
		CreatedAt: now,
		UpdatedAt: now,
	}
	s.categories[c.ID] = c
	writeData(w, http.StatusCreated, c)
}

func (s *Server) handleUpdateCategory(w http.ResponseWriter, r *http.Request) {
	var in category.CreateInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeError(w, http.StatusBadRequest, "malformed request body")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.categories[idParam(r)]
	if !ok {
		writeError(w, http.StatusNotFound, "category not found")
		return
	}

	c.Name = in.Name
	c.UpdatedAt = time.Now().UTC()

	// keep denormalized names in sync
	for _, p := range s.products {
		if p.CategoryID == c.ID {
			p.CategoryName = c.Name
		}
	}

	writeData(w, http.StatusOK, c)
}

func (s *Server) handleDeleteCategory(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := idParam(r)
	if _, ok := s.categories[id]; !ok {
		writeError(w, http.StatusNotFound, "category not found")
		return
	}
	for _, p := range s.products {
		if p.CategoryID == id {
			writeError(w, http.StatusConflict, "category still has products")
			return
		}
	}

	delete(s.categories, id)
	writeData(w, http.StatusOK, map[string]bool{"deleted": true})
}

/* ---------- USERS ---------- */

func (s *Server) handleListUsers(w http.ResponseWriter, r *http.Request) {
	requireAdmin(func(w http.ResponseWriter, r *http.Request) {
		search, size, cursor := listParams(r)

		s.mu.Lock()
		defer s.mu.Unlock()

		rows := make([]user.User, 0, len(s.accounts))
		for _, a := range s.accounts {
			if search != "" &&
				!strings.Contains(strings.ToLower(a.Username), search) &&
				!strings.Contains(strings.ToLower(a.Name), search) {
				continue
			}
			rows = append(rows, a.User)
		}
		sort.Slice(rows, func(i, j int) bool { return rows[i].ID < rows[j].ID })

		from, to, paging := pageBounds(len(rows), func(i int) int64 { return rows[i].ID }, size, cursor)
		writeList(w, rows[from:to], paging)
	})(w, r)
}

func (s *Server) handleCreateUser(w http.ResponseWriter, r *http.Request) {
	requireAdmin(func(w http.ResponseWriter, r *http.Request) {
		var in user.CreateInput
		if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
			writeError(w, http.StatusBadRequest, "malformed request body")
			return
		}
		if strings.TrimSpace(in.Username) == "" || len(in.Password) < 6 {
			writeError(w, http.StatusBadRequest, "username and a password of at least 6 characters are required")
			return
		}
		if in.Role != session.RoleAdmin && in.Role != session.RoleCashier {
			writeError(w, http.StatusBadRequest, "role must be ADMIN or CASHIER")
			return
		}

		s.mu.Lock()
		defer s.mu.Unlock()

		if s.findAccount(in.Username) != nil {
			writeError(w, http.StatusConflict, "username already exists")
			return
		}

		hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.MinCost)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "could not hash password")
			return
		}

		now := time.Now().UTC()
		a := &account{
			User: user.User{
				ID:        s.allocate("users"),
				Username:  in.Username,
				Name:      in.Name,
				Role:      in.Role,
				CreatedAt: now,
				UpdatedAt: now,
			},
			hash: hash,
		}
		s.accounts[a.ID] = a
		writeData(w, http.StatusCreated, a.User)
	})(w, r)
}

func (s *Server) handleUpdateUser(w http.ResponseWriter, r *http.Request) {
	requireAdmin(func(w http.ResponseWriter, r *http.Request) {
		var in user.UpdateInput
		if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
			writeError(w, http.StatusBadRequest, "malformed request body")
			return
		}

		s.mu.Lock()
		defer s.mu.Unlock()

		a, ok := s.accounts[idParam(r)]
		if !ok {
			writeError(w, http.StatusNotFound, "user not found")
			return
		}

		if in.Role != "" {
			if in.Role != session.RoleAdmin && in.Role != session.RoleCashier {
				writeError(w, http.StatusBadRequest, "role must be ADMIN or CASHIER")
				return
			}
			a.Role = in.Role
		}
		if in.Name != "" {
			a.Name = in.Name
		}
		if in.Password != "" {
			hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.MinCost)
			if err != nil {
				writeError(w, http.StatusInternalServerError, "could not hash password")
				return
			}
			a.hash = hash
		}
		a.UpdatedAt = time.Now().UTC()

		writeData(w, http.StatusOK, a.User)
	})(w, r)
}

func (s *Server) handleDeleteUser(w http.ResponseWriter, r *http.Request) {
	requireAdmin(func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		defer s.mu.Unlock()

		id := idParam(r)
		a, ok := s.accounts[id]
		if !ok {
			writeError(w, http.StatusNotFound, "user not found")
			return
		}
		if c := claimsFrom(r.Context()); c != nil && c.UserID == a.ID {
			writeError(w, http.StatusBadRequest, "cannot delete your own account")
			return
		}

		delete(s.accounts, id)
		writeData(w, http.StatusOK, map[string]bool{"deleted": true})
	})(w, r)
}

/* ---------- PAYMENT METHODS ---------- */

func (s *Server) handleListMethods(w http.ResponseWriter, r *http.Request) {
	search, size, cursor := listParams(r)

	s.mu.Lock()
	defer s.mu.Unlock()

	rows := make([]payment.Method, 0, len(s.methods))
	for _, m := range s.methods {
		if search != "" && !strings.Contains(strings.ToLower(m.Name), search) {
			continue
		}
		rows = append(rows, *m)
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].ID < rows[j].ID })

	from, to, paging := pageBounds(len(rows), func(i int) int64 { return rows[i].ID }, size, cursor)
	writeList(w, rows[from:to], paging)
}

func (s *Server) handleCreateMethod(w http.ResponseWriter, r *http.Request) {
	var in payment.CreateInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeError(w, http.StatusBadRequest, "malformed request body")
		return
	}
	if strings.TrimSpace(in.Name) == "" || strings.TrimSpace(in.Code) == "" {
		writeError(w, http.StatusBadRequest, "name and code are required")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, m := range s.methods {
		if strings.EqualFold(m.Code, in.Code) {
			writeError(w, http.StatusConflict, "payment method code already exists")
			return
		}
	}

	now := time.Now().UTC()
	m := &payment.Method{
		ID:        s.allocate("methods"),
		Name:      in.Name,
		Code:      strings.ToUpper(in.Code),
		Active:    in.Active,
		CreatedAt: now,
		UpdatedAt: now,
	}
	s.methods[m.ID] = m
	writeData(w, http.StatusCreated, m)
}

func (s *Server) handleUpdateMethod(w http.ResponseWriter, r *http.Request) {
	var in payment.CreateInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeError(w, http.StatusBadRequest, "malformed request body")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	m, ok := s.methods[idParam(r)]
	if !ok {
		writeError(w, http.StatusNotFound, "payment method not found")
		return
	}

	m.Name = in.Name
	m.Code = strings.ToUpper(in.Code)
	m.Active = in.Active
	m.UpdatedAt = time.Now().UTC()

	writeData(w, http.StatusOK, m)
}

func (s *Server) handleDeleteMethod(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := idParam(r)
	if _, ok := s.methods[id]; !ok {
		writeError(w, http.StatusNotFound, "payment method not found")
		return
	}
	delete(s.methods, id)
	writeData(w, http.StatusOK, map[string]bool{"deleted": true})
}
