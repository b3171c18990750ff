// Package memstore implements every repository interface in process memory.
// It backs the service when no database is configured and drives the tests.
package memstore

import (
	"cmp"
	"context"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/tsai-yu-xuan/vuetify-shop-back/internal/domain"
	"github.com/tsai-yu-xuan/vuetify-shop-back/internal/repository"
)

// Store holds all state behind a single lock so multi-entity writes
// (order + cart clear, token replace) stay atomic.
type Store struct {
	mu  sync.RWMutex
	now func() time.Time
	seq uint64

	users    map[string]*domain.User
	accounts map[string]string
	tokens   map[string]map[string]tokenEntry
	products map[string]*domain.Product
	services map[string]*domain.ServiceItem
	worships map[string]*domain.OnlineWorship
	orders   []domain.Order
}

type tokenEntry struct {
	token domain.SessionToken
	seq   uint64
}

// New returns an empty store.
func New() *Store {
	return &Store{
		now:      func() time.Time { return time.Now().UTC() },
		users:    map[string]*domain.User{},
		accounts: map[string]string{},
		tokens:   map[string]map[string]tokenEntry{},
		products: map[string]*domain.Product{},
		services: map[string]*domain.ServiceItem{},
		worships: map[string]*domain.OnlineWorship{},
	}
}

func (s *Store) Users() repository.UserRepository { return userStore{s} }
func (s *Store) Tokens() repository.TokenStore { return tokenStore{s} }
func (s *Store) Products() repository.ProductRepository { return productStore{s} }
func (s *Store) Services() repository.ServiceItemRepository { return serviceStore{s} }
func (s *Store) Worships() repository.OnlineWorshipRepository { return worshipStore{s} }
func (s *Store) Orders() repository.OrderRepository { return orderStore{s} }

func (s *Store) nextSeq() uint64 {
	s.seq++
	return s.seq
}

func cloneUser(u *domain.User) *domain.User {
	out := *u
	out.Cart = slices.Clone(u.Cart)
	if out.Cart == nil {
		out.Cart = []domain.CartItem{}
	}
	return &out
}

// users

type userStore struct{ s *Store }

func (r userStore) Create(_ context.Context, user *domain.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, taken := r.s.accounts[user.Account]; taken {
		return repository.ErrDuplicate
	}
	now := r.s.now()
	user.ID = uuid.NewString()
	user.CreatedAt, user.UpdatedAt = now, now
	if user.Role == "" {
		user.Role = domain.RoleMember
	}
	if user.Cart == nil {
		user.Cart = []domain.CartItem{}
	}
	r.s.users[user.ID] = cloneUser(user)
	r.s.accounts[user.Account] = user.ID
	return nil
}

func (r userStore) GetByID(_ context.Context, id string) (*domain.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	user, ok := r.s.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return cloneUser(user), nil
}

func (r userStore) GetByAccount(ctx context.Context, account string) (*domain.User, error) {
	r.s.mu.RLock()
	id, ok := r.s.accounts[account]
	r.s.mu.RUnlock()
	if !ok {
		return nil, repository.ErrNotFound
	}
	return r.GetByID(ctx, id)
}

func (r userStore) UpdatePassword(_ context.Context, id, passwordHash string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	user, ok := r.s.users[id]
	if !ok {
		return repository.ErrNotFound
	}
	user.PasswordHash = passwordHash
	user.UpdatedAt = r.s.now()
	return nil
}

func (r userStore) ReplaceCart(_ context.Context, userID string, items []domain.CartItem) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	user, ok := r.s.users[userID]
	if !ok {
		return repository.ErrNotFound
	}
	user.Cart = slices.Clone(items)
	if user.Cart == nil {
		user.Cart = []domain.CartItem{}
	}
	user.UpdatedAt = r.s.now()
	return nil
}

func (r userStore) CartLines(_ context.Context, userID string) ([]domain.CartLine, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	user, ok := r.s.users[userID]
	if !ok {
		return nil, repository.ErrNotFound
	}
	lines := make([]domain.CartLine, 0, len(user.Cart))
	for _, item := range user.Cart {
		line := domain.CartLine{ProductID: item.ProductID, Quantity: item.Quantity}
		if product, ok := r.s.products[item.ProductID]; ok {
			p := *product
			line.Product = &p
		}
		lines = append(lines, line)
	}
	return lines, nil
}

// tokens

type tokenStore struct{ s *Store }

func (r tokenStore) Add(_ context.Context, token *domain.SessionToken, limit int) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	set, ok := r.s.tokens[token.UserID]
	if !ok {
		set = map[string]tokenEntry{}
		r.s.tokens[token.UserID] = set
	}
	if _, exists := set[token.TokenID]; exists {
		return repository.ErrDuplicate
	}
	token.CreatedAt = r.s.now()
	set[token.TokenID] = tokenEntry{token: *token, seq: r.s.nextSeq()}

	if limit > 0 && len(set) > limit {
		entries := make([]tokenEntry, 0, len(set))
		for _, entry := range set {
			entries = append(entries, entry)
		}
		slices.SortFunc(entries, func(a, b tokenEntry) int { return cmp.Compare(a.seq, b.seq) })
		for _, entry := range entries[:len(entries)-limit] {
			delete(set, entry.token.TokenID)
		}
	}
	return nil
}

func (r tokenStore) Replace(_ context.Context, oldTokenID string, token *domain.SessionToken) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	set := r.s.tokens[token.UserID]
	if _, ok := set[oldTokenID]; !ok {
		return repository.ErrNotFound
	}
	delete(set, oldTokenID)
	token.CreatedAt = r.s.now()
	set[token.TokenID] = tokenEntry{token: *token, seq: r.s.nextSeq()}
	return nil
}

func (r tokenStore) Get(_ context.Context, userID, tokenID string) (*domain.SessionToken, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	entry, ok := r.s.tokens[userID][tokenID]
	if !ok {
		return nil, repository.ErrNotFound
	}
	token := entry.token
	return &token, nil
}

func (r tokenStore) Remove(_ context.Context, userID, tokenID string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	set := r.s.tokens[userID]
	if _, ok := set[tokenID]; !ok {
		return repository.ErrNotFound
	}
	delete(set, tokenID)
	return nil
}

func (r tokenStore) RemoveAll(_ context.Context, userID string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	delete(r.s.tokens, userID)
	return nil
}

func (r tokenStore) Count(_ context.Context, userID string) (int, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	return len(r.s.tokens[userID]), nil
}

// catalog

type productStore struct{ s *Store }

func (r productStore) Create(_ context.Context, product *domain.Product) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	now := r.s.now()
	product.ID = uuid.NewString()
	product.CreatedAt, product.UpdatedAt = now, now
	p := *product
	r.s.products[p.ID] = &p
	return nil
}

func (r productStore) Update(_ context.Context, product *domain.Product) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	current, ok := r.s.products[product.ID]
	if !ok {
		return repository.ErrNotFound
	}
	product.CreatedAt = current.CreatedAt
	product.UpdatedAt = r.s.now()
	p := *product
	r.s.products[p.ID] = &p
	return nil
}

func (r productStore) GetByID(_ context.Context, id string) (*domain.Product, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	product, ok := r.s.products[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	p := *product
	return &p, nil
}

func (r productStore) List(_ context.Context, filter repository.ListFilter) ([]domain.Product, int, error) {
	r.s.mu.RLock()
	items := make([]domain.Product, 0, len(r.s.products))
	for _, product := range r.s.products {
		if filter.OnlyListed && !product.Sell {
			continue
		}
		items = append(items, *product)
	}
	r.s.mu.RUnlock()

	items = slices.DeleteFunc(items, func(p domain.Product) bool {
		return !matches(filter.Search, p.Name, p.Description)
	})
	sortItems(items, filter, func(a, b domain.Product) int {
		switch filter.SortBy {
		case "name":
			return cmp.Compare(a.Name, b.Name)
		case "price":
			return cmp.Compare(a.Price, b.Price)
		case "updatedAt":
			return a.UpdatedAt.Compare(b.UpdatedAt)
		default:
			return a.CreatedAt.Compare(b.CreatedAt)
		}
	}, func(p domain.Product) string { return p.ID })
	page, total := paginate(items, filter)
	return page, total, nil
}

type serviceStore struct{ s *Store }

func (r serviceStore) Create(_ context.Context, item *domain.ServiceItem) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	now := r.s.now()
	item.ID = uuid.NewString()
	item.CreatedAt, item.UpdatedAt = now, now
	v := *item
	r.s.services[v.ID] = &v
	return nil
}

func (r serviceStore) Update(_ context.Context, item *domain.ServiceItem) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	current, ok := r.s.services[item.ID]
	if !ok {
		return repository.ErrNotFound
	}
	item.CreatedAt = current.CreatedAt
	item.UpdatedAt = r.s.now()
	v := *item
	r.s.services[v.ID] = &v
	return nil
}

func (r serviceStore) GetByID(_ context.Context, id string) (*domain.ServiceItem, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	item, ok := r.s.services[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	v := *item
	return &v, nil
}

func (r serviceStore) List(_ context.Context, filter repository.ListFilter) ([]domain.ServiceItem, int, error) {
	r.s.mu.RLock()
	items := make([]domain.ServiceItem, 0, len(r.s.services))
	for _, item := range r.s.services {
		if filter.OnlyListed && !item.Sell {
			continue
		}
		items = append(items, *item)
	}
	r.s.mu.RUnlock()

	items = slices.DeleteFunc(items, func(v domain.ServiceItem) bool {
		return !matches(filter.Search, v.Name, v.Description)
	})
	sortItems(items, filter, func(a, b domain.ServiceItem) int {
		switch filter.SortBy {
		case "name":
			return cmp.Compare(a.Name, b.Name)
		case "price":
			return cmp.Compare(a.Price, b.Price)
		case "updatedAt":
			return a.UpdatedAt.Compare(b.UpdatedAt)
		default:
			return a.CreatedAt.Compare(b.CreatedAt)
		}
	}, func(v domain.ServiceItem) string { return v.ID })
	page, total := paginate(items, filter)
	return page, total, nil
}

type worshipStore struct{ s *Store }

func (r worshipStore) Create(_ context.Context, entry *domain.OnlineWorship) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	now := r.s.now()
	entry.ID = uuid.NewString()
	entry.CreatedAt, entry.UpdatedAt = now, now
	v := *entry
	r.s.worships[v.ID] = &v
	return nil
}

func (r worshipStore) Update(_ context.Context, entry *domain.OnlineWorship) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	current, ok := r.s.worships[entry.ID]
	if !ok {
		return repository.ErrNotFound
	}
	entry.CreatedAt = current.CreatedAt
	entry.UpdatedAt = r.s.now()
	v := *entry
	r.s.worships[v.ID] = &v
	return nil
}

func (r worshipStore) GetByID(_ context.Context, id string) (*domain.OnlineWorship, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	entry, ok := r.s.worships[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	v := *entry
	return &v, nil
}

func (r worshipStore) List(_ context.Context, filter repository.ListFilter) ([]domain.OnlineWorship, int, error) {
	r.s.mu.RLock()
	items := make([]domain.OnlineWorship, 0, len(r.s.worships))
	for _, entry := range r.s.worships {
		items = append(items, *entry)
	}
	r.s.mu.RUnlock()

	items = slices.DeleteFunc(items, func(v domain.OnlineWorship) bool {
		return !matches(filter.Search, v.Name, v.Description)
	})
	sortItems(items, filter, func(a, b domain.OnlineWorship) int {
		switch filter.SortBy {
		case "name":
			return cmp.Compare(a.Name, b.Name)
		case "updatedAt":
			return a.UpdatedAt.Compare(b.UpdatedAt)
		case "date":
			return compareDates(a.Date, b.Date)
		default:
			return a.CreatedAt.Compare(b.CreatedAt)
		}
	}, func(v domain.OnlineWorship) string { return v.ID })
	page, total := paginate(items, filter)
	return page, total, nil
}

// orders

type orderStore struct{ s *Store }

func (r orderStore) CreateAndClearCart(_ context.Context, order *domain.Order) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	user, ok := r.s.users[order.UserID]
	if !ok {
		return repository.ErrNotFound
	}
	for _, existing := range r.s.orders {
		if existing.Number == order.Number {
			return repository.ErrDuplicate
		}
	}
	order.ID = uuid.NewString()
	order.CreatedAt = r.s.now()
	order.UserAccount = user.Account

	stored := *order
	stored.Items = make([]domain.OrderItem, len(order.Items))
	for i, item := range order.Items {
		stored.Items[i] = domain.OrderItem{ProductID: item.ProductID, Quantity: item.Quantity}
	}
	r.s.orders = append(r.s.orders, stored)

	ordered := make(map[string]bool, len(order.Items))
	for _, item := range order.Items {
		ordered[item.ProductID] = true
	}
	remaining := []domain.CartItem{}
	for _, item := range user.Cart {
		if !ordered[item.ProductID] {
			remaining = append(remaining, item)
		}
	}
	user.Cart = remaining
	user.UpdatedAt = order.CreatedAt
	return nil
}

func (r orderStore) ListByUser(_ context.Context, userID string) ([]domain.Order, error) {
	return r.list(func(o domain.Order) bool { return o.UserID == userID }), nil
}

func (r orderStore) ListAll(_ context.Context) ([]domain.Order, error) {
	return r.list(func(domain.Order) bool { return true }), nil
}

// list returns newest first with items resolved against the live catalog.
func (r orderStore) list(keep func(domain.Order) bool) []domain.Order {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := []domain.Order{}
	for i := len(r.s.orders) - 1; i >= 0; i-- {
		order := r.s.orders[i]
		if !keep(order) {
			continue
		}
		items := make([]domain.OrderItem, len(order.Items))
		for j, item := range order.Items {
			items[j] = item
			if product, ok := r.s.products[item.ProductID]; ok {
				p := *product
				items[j].Product = &p
			}
		}
		order.Items = items
		out = append(out, order)
	}
	return out
}

// helpers

func matches(search string, fields ...string) bool {
	term := strings.ToLower(strings.TrimSpace(search))
	if term == "" {
		return true
	}
	for _, field := range fields {
		if strings.Contains(strings.ToLower(field), term) {
			return true
		}
	}
	return false
}

func sortItems[T any](items []T, filter repository.ListFilter, compare func(a, b T) int, id func(T) string) {
	slices.SortFunc(items, func(a, b T) int {
		c := compare(a, b)
		if filter.SortDesc {
			c = -c
		}
		if c != 0 {
			return c
		}
		return cmp.Compare(id(a), id(b))
	})
}

func paginate[T any](items []T, filter repository.ListFilter) ([]T, int) {
	total := len(items)
	if filter.Limit <= 0 {
		return items, total
	}
	start := max(filter.Offset, 0)
	if start >= total {
		return []T{}, total
	}
	end := min(start+filter.Limit, total)
	return items[start:end], total
}

func compareDates(a, b *time.Time) int {
	switch {
	case a == nil && b == nil:
		return 0
	case a == nil:
		return -1
	case b == nil:
		return 1
	default:
		return a.Compare(*b)
	}
}
