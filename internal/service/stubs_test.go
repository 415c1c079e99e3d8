package service

import (
	"context"
	"sort"
	"sync"
	"time"

	"smartpos/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// In-memory repository stubs. DB() returns nil so the services run their
// transaction bodies directly, letting the lifecycle logic be tested without
// a database.

type store struct {
	mu        sync.Mutex
	bills     map[uuid.UUID]model.Bill
	items     map[uuid.UUID]model.BillItem
	holds     map[uuid.UUID]model.HeldBill
	customers map[uuid.UUID]model.Customer
	points    []model.PointTransaction
	seq       int
}

func newStore() *store {
	return &store{
		bills:     make(map[uuid.UUID]model.Bill),
		items:     make(map[uuid.UUID]model.BillItem),
		holds:     make(map[uuid.UUID]model.HeldBill),
		customers: make(map[uuid.UUID]model.Customer),
	}
}

// nextTime hands out strictly increasing timestamps so created_at ordering is
// deterministic.
func (s *store) nextTime() time.Time {
	s.seq++
	return time.Unix(1700000000, int64(s.seq)*1e6)
}

func (s *store) itemsOfBill(billID uuid.UUID) []model.BillItem {
	var out []model.BillItem
	for _, it := range s.items {
		if it.BillID == billID {
			out = append(out, it)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out
}

// ── BillRepository stub ───────────────────────────────────────────────────────

type billStub struct{ s *store }

func (r *billStub) DB() *gorm.DB { return nil }

func (r *billStub) Create(_ context.Context, _ *gorm.DB, b *model.Bill) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if b.Status == model.BillOpen {
		for _, existing := range r.s.bills {
			if existing.SellerID == b.SellerID && existing.Status == model.BillOpen {
				return gorm.ErrDuplicatedKey
			}
		}
	}
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
	b.CreatedAt = r.s.nextTime()
	r.s.bills[b.ID] = *b
	return nil
}

func (r *billStub) FindByID(_ context.Context, id uuid.UUID) (*model.Bill, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	b, ok := r.s.bills[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	b.Items = r.s.itemsOfBill(id)
	return &b, nil
}

func (r *billStub) FindOpenBySeller(_ context.Context, sellerID uuid.UUID) (*model.Bill, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, b := range r.s.bills {
		if b.SellerID == sellerID && b.Status == model.BillOpen {
			b.Items = r.s.itemsOfBill(b.ID)
			return &b, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *billStub) FindOpenBySellerTx(ctx context.Context, _ *gorm.DB, sellerID uuid.UUID) (*model.Bill, error) {
	return r.FindOpenBySeller(ctx, sellerID)
}

func (r *billStub) FindByIDTx(ctx context.Context, _ *gorm.DB, id uuid.UUID) (*model.Bill, error) {
	return r.FindByID(ctx, id)
}

func (r *billStub) UpdateStatusTx(_ context.Context, _ *gorm.DB, id uuid.UUID, from, to model.BillStatus) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	b, ok := r.s.bills[id]
	if !ok || b.Status != from {
		return gorm.ErrRecordNotFound
	}
	b.Status = to
	r.s.bills[id] = b
	return nil
}

func (r *billStub) SaveTx(_ context.Context, _ *gorm.DB, b *model.Bill) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	saved := *b
	saved.Items = nil
	r.s.bills[b.ID] = saved
	return nil
}

func (r *billStub) DeleteTx(_ context.Context, _ *gorm.DB, id uuid.UUID, expectStatus model.BillStatus) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if b, ok := r.s.bills[id]; ok && b.Status == expectStatus {
		delete(r.s.bills, id)
	}
	return nil
}

// ── BillItemRepository stub ───────────────────────────────────────────────────

type itemStub struct{ s *store }

func (r *itemStub) DB() *gorm.DB { return nil }

func (r *itemStub) CreateTx(_ context.Context, _ *gorm.DB, item *model.BillItem) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, existing := range r.s.items {
		if existing.BillID == item.BillID && existing.ProductID == item.ProductID {
			return gorm.ErrDuplicatedKey
		}
	}
	if item.ID == uuid.Nil {
		item.ID = uuid.New()
	}
	item.CreatedAt = r.s.nextTime()
	r.s.items[item.ID] = *item
	return nil
}

func (r *itemStub) FindByIDTx(_ context.Context, _ *gorm.DB, id uuid.UUID) (*model.BillItem, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	it, ok := r.s.items[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &it, nil
}

func (r *itemStub) FindByBillAndProductTx(_ context.Context, _ *gorm.DB, billID, productID uuid.UUID) (*model.BillItem, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, it := range r.s.items {
		if it.BillID == billID && it.ProductID == productID {
			return &it, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *itemStub) ListByBillTx(_ context.Context, _ *gorm.DB, billID uuid.UUID) ([]model.BillItem, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return r.s.itemsOfBill(billID), nil
}

func (r *itemStub) AddQtyTx(_ context.Context, _ *gorm.DB, id uuid.UUID, delta int) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	it, ok := r.s.items[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	it.Qty += delta
	r.s.items[id] = it
	return nil
}

func (r *itemStub) UpdateQtyTx(_ context.Context, _ *gorm.DB, id uuid.UUID, qty int) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	it, ok := r.s.items[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	it.Qty = qty
	r.s.items[id] = it
	return nil
}

func (r *itemStub) SaveTx(_ context.Context, _ *gorm.DB, item *model.BillItem) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	saved := *item
	saved.Product = nil
	r.s.items[item.ID] = saved
	return nil
}

func (r *itemStub) DeleteTx(_ context.Context, _ *gorm.DB, id uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	delete(r.s.items, id)
	return nil
}

func (r *itemStub) DeleteByBillTx(_ context.Context, _ *gorm.DB, billID uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for id, it := range r.s.items {
		if it.BillID == billID {
			delete(r.s.items, id)
		}
	}
	return nil
}

// ── HeldBillRepository stub ───────────────────────────────────────────────────

type heldStub struct{ s *store }

func (r *heldStub) DB() *gorm.DB { return nil }

func (r *heldStub) CreateTx(_ context.Context, _ *gorm.DB, h *model.HeldBill) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if h.ID == uuid.Nil {
		h.ID = uuid.New()
	}
	r.s.holds[h.ID] = *h
	return nil
}

func (r *heldStub) FindForSellerTx(_ context.Context, _ *gorm.DB, id, sellerID uuid.UUID) (*model.HeldBill, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	h, ok := r.s.holds[id]
	if !ok || h.SellerID != sellerID || h.Status != model.HeldBillStatusHeld {
		return nil, gorm.ErrRecordNotFound
	}
	return &h, nil
}

func (r *heldStub) DeleteTx(_ context.Context, _ *gorm.DB, id uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	delete(r.s.holds, id)
	return nil
}

func (r *heldStub) ListBySeller(_ context.Context, sellerID uuid.UUID) ([]model.HeldBill, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []model.HeldBill
	for _, h := range r.s.holds {
		if h.SellerID == sellerID && h.Status == model.HeldBillStatusHeld {
			if b, ok := r.s.bills[h.BillID]; ok {
				b.Items = r.s.itemsOfBill(b.ID)
				h.Bill = &b
			}
			out = append(out, h)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].HeldAt.After(out[j].HeldAt) })
	return out, nil
}

func (r *heldStub) ListExpiredTx(_ context.Context, _ *gorm.DB, cutoff time.Time) ([]model.HeldBill, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []model.HeldBill
	for _, h := range r.s.holds {
		if h.Status == model.HeldBillStatusHeld && h.HeldAt.Before(cutoff) {
			out = append(out, h)
		}
	}
	return out, nil
}

// ── CustomerRepository stub ───────────────────────────────────────────────────

type customerStub struct{ s *store }

func (r *customerStub) DB() *gorm.DB { return nil }

func (r *customerStub) Create(_ context.Context, c *model.Customer) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	c.CreatedAt = r.s.nextTime()
	r.s.customers[c.ID] = *c
	return nil
}

func (r *customerStub) FindByID(_ context.Context, id uuid.UUID) (*model.Customer, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	c, ok := r.s.customers[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &c, nil
}

func (r *customerStub) FindByIDTx(ctx context.Context, _ *gorm.DB, id uuid.UUID) (*model.Customer, error) {
	return r.FindByID(ctx, id)
}

func (r *customerStub) SaveTx(_ context.Context, _ *gorm.DB, c *model.Customer) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.customers[c.ID] = *c
	return nil
}

func (r *customerStub) ListBySeller(_ context.Context, sellerID uuid.UUID) ([]model.Customer, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []model.Customer
	for _, c := range r.s.customers {
		if c.SellerID == sellerID {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

// ── PointTransactionRepository stub ───────────────────────────────────────────

type pointStub struct{ s *store }

func (r *pointStub) DB() *gorm.DB { return nil }

func (r *pointStub) CreateTx(_ context.Context, _ *gorm.DB, p *model.PointTransaction) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	p.CreatedAt = r.s.nextTime()
	r.s.points = append(r.s.points, *p)
	return nil
}

func (r *pointStub) ListByCustomer(_ context.Context, customerID uuid.UUID) ([]model.PointTransaction, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []model.PointTransaction
	for _, p := range r.s.points {
		if p.CustomerID == customerID {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (r *pointStub) SumByCustomer(_ context.Context, customerID uuid.UUID) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var sum int64
	for _, p := range r.s.points {
		if p.CustomerID == customerID {
			sum += int64(p.Points)
		}
	}
	return sum, nil
}

// ── Fixture ───────────────────────────────────────────────────────────────────

type fixture struct {
	store     *store
	bills     *billStub
	items     *itemStub
	holds     *heldStub
	customers *customerStub
	points    *pointStub

	billSvc     BillService
	itemSvc     ItemService
	customerSvc CustomerService
}

func newFixture(holdTTL time.Duration) *fixture {
	s := newStore()
	f := &fixture{
		store:     s,
		bills:     &billStub{s: s},
		items:     &itemStub{s: s},
		holds:     &heldStub{s: s},
		customers: &customerStub{s: s},
		points:    &pointStub{s: s},
	}
	f.billSvc = NewBillService(f.bills, f.items, f.holds, f.customers, f.points, nil, holdTTL)
	f.itemSvc = NewItemService(f.bills, f.items)
	f.customerSvc = NewCustomerService(f.customers, f.points)
	return f
}
