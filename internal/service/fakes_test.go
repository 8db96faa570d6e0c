package service

import (
	"context"
	"fmt"
	"net/http"
	"sync"

	"github.com/nexstore/storefront/internal/apiclient"
	"github.com/nexstore/storefront/internal/cache"
	"github.com/nexstore/storefront/internal/domain"
	"github.com/nexstore/storefront/internal/money"
	"github.com/shopspring/decimal"
)

// fakeAPI is an in-memory stand-in for the remote backend.
type fakeAPI struct {
	m        sync.Mutex
	nextCart int64
	nextOrd  int64
	carts    map[int64]*domain.Cart
	products map[string]domain.Product
	orders   map[int64]*domain.Order
	calls    []string
	// errs forces an error from the named method.
	errs map[string]error
	// gate, when set, holds CreateOrder until it is closed.
	gate chan struct{}

	users map[string]string // email -> password
}

func newFakeAPI() *fakeAPI {
	return &fakeAPI{
		nextCart: 100,
		nextOrd:  500,
		carts:    make(map[int64]*domain.Cart),
		orders:   make(map[int64]*domain.Order),
		errs:     make(map[string]error),
		users:    map[string]string{"a@b.co": "secret"},
		products: map[string]domain.Product{
			"p1": {ID: "p1", Name: "Mug", Price: money.NewAmount("10.00"), Stock: 5},
			"p2": {ID: "p2", Name: "Tea", Price: money.NewAmount("4.50"), Stock: 100},
		},
	}
}

func (f *fakeAPI) record(name string) error {
	f.calls = append(f.calls, name)
	return f.errs[name]
}

func (f *fakeAPI) callCount() int {
	f.m.Lock()
	defer f.m.Unlock()
	return len(f.calls)
}

func (f *fakeAPI) seedCart(items ...domain.CartItem) int64 {
	f.m.Lock()
	defer f.m.Unlock()
	f.nextCart++
	c := &domain.Cart{ID: f.nextCart, Items: items}
	f.recompute(c)
	f.carts[c.ID] = c
	return c.ID
}

func (f *fakeAPI) recompute(c *domain.Cart) {
	total := decimal.Zero
	count := 0
	for i := range c.Items {
		item := &c.Items[i]
		item.LineTotal = money.NewAmount(money.LineTotal(item.Price, item.Quantity))
		total = total.Add(item.LineTotal.Decimal)
		count += item.Quantity
	}
	c.Summary = domain.Summary{
		Subtotal:        money.NewAmount(total),
		GrandTotal:      money.NewAmount(total),
		TotalItemsCount: count,
	}
	c.Normalize()
}

func cloneCart(c *domain.Cart) *domain.Cart {
	out := *c
	out.Items = append([]domain.CartItem{}, c.Items...)
	return &out
}

func rejectedErr(status int, msg string) error {
	return &apiclient.Error{Kind: apiclient.KindRejected, Status: status, Message: msg}
}

func (f *fakeAPI) CreateCart(context.Context, string) (int64, error) {
	f.m.Lock()
	defer f.m.Unlock()
	if err := f.record("CreateCart"); err != nil {
		return 0, err
	}
	f.nextCart++
	c := &domain.Cart{ID: f.nextCart}
	f.recompute(c)
	f.carts[c.ID] = c
	return c.ID, nil
}

func (f *fakeAPI) GetCart(_ context.Context, _ string, cartID int64) (*domain.Cart, error) {
	f.m.Lock()
	defer f.m.Unlock()
	if err := f.record("GetCart"); err != nil {
		return nil, err
	}
	c, ok := f.carts[cartID]
	if !ok {
		return nil, rejectedErr(http.StatusNotFound, "Cart not found")
	}
	return cloneCart(c), nil
}

func (f *fakeAPI) AddItem(_ context.Context, _ string, cartID int64, productID string, quantity int) (*domain.Cart, error) {
	f.m.Lock()
	defer f.m.Unlock()
	if err := f.record("AddItem"); err != nil {
		return nil, err
	}
	c, ok := f.carts[cartID]
	if !ok {
		return nil, rejectedErr(http.StatusNotFound, "Cart not found")
	}
	p, ok := f.products[productID]
	if !ok {
		return nil, rejectedErr(http.StatusNotFound, "Product not found")
	}

	for i := range c.Items {
		if c.Items[i].ProductID == productID {
			if c.Items[i].Quantity+quantity > p.Stock {
				return nil, rejectedErr(http.StatusBadRequest, "Insufficient stock")
			}
			c.Items[i].Quantity += quantity
			f.recompute(c)
			return cloneCart(c), nil
		}
	}
	if quantity > p.Stock {
		return nil, rejectedErr(http.StatusBadRequest, "Insufficient stock")
	}
	c.Items = append(c.Items, domain.CartItem{
		ProductID: p.ID,
		Name:      p.Name,
		Quantity:  quantity,
		Price:     p.Price,
		Stock:     p.Stock,
	})
	f.recompute(c)
	return cloneCart(c), nil
}

func (f *fakeAPI) UpdateItem(_ context.Context, _ string, cartID int64, productID string, quantity int) (*domain.Cart, error) {
	f.m.Lock()
	defer f.m.Unlock()
	if err := f.record("UpdateItem"); err != nil {
		return nil, err
	}
	c, ok := f.carts[cartID]
	if !ok {
		return nil, rejectedErr(http.StatusNotFound, "Cart not found")
	}
	for i := range c.Items {
		if c.Items[i].ProductID == productID {
			c.Items[i].Quantity = quantity
			f.recompute(c)
			return cloneCart(c), nil
		}
	}
	return nil, rejectedErr(http.StatusNotFound, fmt.Sprintf("Product %s not in cart", productID))
}

func (f *fakeAPI) RemoveItem(_ context.Context, _ string, cartID int64, productID string) (*domain.Cart, error) {
	f.m.Lock()
	defer f.m.Unlock()
	if err := f.record("RemoveItem"); err != nil {
		return nil, err
	}
	c, ok := f.carts[cartID]
	if !ok {
		return nil, rejectedErr(http.StatusNotFound, "Cart not found")
	}
	for i, item := range c.Items {
		if item.ProductID == productID {
			c.Items = append(c.Items[:i], c.Items[i+1:]...)
			f.recompute(c)
			return cloneCart(c), nil
		}
	}
	return nil, rejectedErr(http.StatusNotFound, fmt.Sprintf("Product %s not in cart", productID))
}

func (f *fakeAPI) CreateOrder(_ context.Context, _ string, cartID int64, shippingAddress string) (*domain.Order, error) {
	f.m.Lock()
	gate := f.gate
	f.m.Unlock()
	if gate != nil {
		<-gate
	}

	f.m.Lock()
	defer f.m.Unlock()
	if err := f.record("CreateOrder"); err != nil {
		return nil, err
	}
	c, ok := f.carts[cartID]
	if !ok {
		return nil, rejectedErr(http.StatusNotFound, "Cart not found")
	}
	if len(c.Items) == 0 {
		return nil, rejectedErr(http.StatusBadRequest, "Cart is empty")
	}

	f.nextOrd++
	order := &domain.Order{
		ID:              f.nextOrd,
		Status:          domain.OrderStatusPending,
		ShippingAddress: shippingAddress,
		TotalPrice:      c.Summary.GrandTotal,
	}
	for i, item := range c.Items {
		order.Items = append(order.Items, domain.OrderItem{
			ID:        int64(i + 1),
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
			Price:     item.Price,
		})
	}
	f.orders[order.ID] = order
	delete(f.carts, cartID)
	return order, nil
}

func (f *fakeAPI) ListProducts(context.Context) ([]domain.Product, error) {
	f.m.Lock()
	defer f.m.Unlock()
	if err := f.record("ListProducts"); err != nil {
		return nil, err
	}
	out := make([]domain.Product, 0, len(f.products))
	for _, p := range f.products {
		out = append(out, p)
	}
	return out, nil
}

func (f *fakeAPI) ListOrders(context.Context, string) ([]domain.Order, error) {
	f.m.Lock()
	defer f.m.Unlock()
	if err := f.record("ListOrders"); err != nil {
		return nil, err
	}
	out := []domain.Order{}
	for _, o := range f.orders {
		out = append(out, *o)
	}
	return out, nil
}

func (f *fakeAPI) GetOrder(_ context.Context, _ string, orderID int64) (*domain.Order, error) {
	f.m.Lock()
	defer f.m.Unlock()
	if err := f.record("GetOrder"); err != nil {
		return nil, err
	}
	o, ok := f.orders[orderID]
	if !ok {
		return nil, rejectedErr(http.StatusNotFound, "Order not found")
	}
	cp := *o
	return &cp, nil
}

func (f *fakeAPI) Login(_ context.Context, email, password string) (*apiclient.Token, error) {
	f.m.Lock()
	defer f.m.Unlock()
	if err := f.record("Login"); err != nil {
		return nil, err
	}
	if pw, ok := f.users[email]; !ok || pw != password {
		return nil, rejectedErr(http.StatusBadRequest, "LOGIN_BAD_CREDENTIALS")
	}
	return &apiclient.Token{AccessToken: "jwt-" + email, TokenType: "bearer"}, nil
}

func (f *fakeAPI) Register(_ context.Context, in apiclient.RegisterRequest) (*domain.User, error) {
	f.m.Lock()
	defer f.m.Unlock()
	if err := f.record("Register"); err != nil {
		return nil, err
	}
	if _, ok := f.users[in.Email]; ok {
		return nil, rejectedErr(http.StatusBadRequest, "REGISTER_USER_ALREADY_EXISTS")
	}
	f.users[in.Email] = in.Password
	return &domain.User{ID: "u-" + in.Email, Email: in.Email, FirstName: in.FirstName, IsActive: true}, nil
}

func (f *fakeAPI) Me(_ context.Context, token string) (*domain.User, error) {
	f.m.Lock()
	defer f.m.Unlock()
	if err := f.record("Me"); err != nil {
		return nil, err
	}
	return &domain.User{ID: "u1", Email: token[len("jwt-"):], IsActive: true}, nil
}

type mockCache struct {
	m       sync.RWMutex
	carts   map[int64]*domain.Cart
	err     error
	deletes int
}

func newMockCache() *mockCache {
	return &mockCache{carts: make(map[int64]*domain.Cart)}
}

func (m *mockCache) Get(_ context.Context, cartID int64) (*domain.Cart, error) {
	m.m.RLock()
	defer m.m.RUnlock()
	if m.err != nil {
		return nil, m.err
	}
	c, ok := m.carts[cartID]
	if !ok {
		return nil, cache.ErrCacheMiss
	}
	return c, nil
}

func (m *mockCache) Set(_ context.Context, cartID int64, cart *domain.Cart) error {
	m.m.Lock()
	defer m.m.Unlock()
	m.carts[cartID] = cart
	return m.err
}

func (m *mockCache) Delete(_ context.Context, cartID int64) error {
	m.m.Lock()
	defer m.m.Unlock()
	delete(m.carts, cartID)
	m.deletes++
	return nil
}

func (m *mockCache) has(cartID int64) bool {
	m.m.RLock()
	defer m.m.RUnlock()
	_, ok := m.carts[cartID]
	return ok
}
