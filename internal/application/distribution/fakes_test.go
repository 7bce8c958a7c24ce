package distribution

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/distribucion-api/internal/domain/entity"
	"github.com/jhoicas/distribucion-api/internal/domain/repository"
	"github.com/jhoicas/distribucion-api/pkg/logger"
)

// ──────────────────────────────────────────────────────────────────────────────
// Fakes en memoria de los puertos de persistencia. Un solo memStore comparte el
// estado y el mutex: las operaciones de cada repo son atómicas entre sí, igual
// que las filas bajo una transacción corta en PostgreSQL.
// ──────────────────────────────────────────────────────────────────────────────

type memStore struct {
	mu sync.Mutex

	distributions map[string]*entity.Distribution
	products      map[string]*entity.Product
	categories    map[string]*entity.Category
	suppliers     map[string]*entity.Supplier
	movements     map[string]*entity.StockMovement // key: reference|product|direction
	audits        []*entity.AuditLog

	// inyección de fallos
	transitionErr error // fallo único en TransitionStatus (se consume al dispararse)
}

func newMemStore() *memStore {
	return &memStore{
		distributions: make(map[string]*entity.Distribution),
		products:      make(map[string]*entity.Product),
		categories:    make(map[string]*entity.Category),
		suppliers:     make(map[string]*entity.Supplier),
		movements:     make(map[string]*entity.StockMovement),
	}
}

func movementKey(m *entity.StockMovement) string {
	return m.ReferenceID + "|" + m.ProductID + "|" + m.Direction
}

func sameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

// ── DistributionRepository ────────────────────────────────────────────────────

type memDistRepo struct{ s *memStore }

func (r memDistRepo) GetByID(id string) (*entity.Distribution, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	d, ok := r.s.distributions[id]
	if !ok {
		return nil, nil
	}
	clone := *d
	return &clone, nil
}

func (r memDistRepo) ListPendingByInvoice(destinationTenantID, invoiceNumber string) ([]*entity.Distribution, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return r.listLocked(func(d *entity.Distribution) bool {
		return d.DestinationTenantID == destinationTenantID && d.InvoiceNumber == invoiceNumber
	}), nil
}

func (r memDistRepo) ListPendingByComposite(destinationTenantID, initiatorID string, day time.Time) ([]*entity.Distribution, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return r.listLocked(func(d *entity.Distribution) bool {
		return d.DestinationTenantID == destinationTenantID && d.InitiatorID == initiatorID && sameDay(d.DistributedAt, day)
	}), nil
}

func (r memDistRepo) listLocked(match func(*entity.Distribution) bool) []*entity.Distribution {
	var out []*entity.Distribution
	for _, d := range r.s.distributions {
		if d.Status == entity.DistributionStatusPending && match(d) {
			clone := *d
			out = append(out, &clone)
		}
	}
	// orden estable por ID, como el ORDER BY del adaptador real
	for i := range out {
		for j := i + 1; j < len(out); j++ {
			if out[j].ID < out[i].ID {
				out[i], out[j] = out[j], out[i]
			}
		}
	}
	return out
}

func (r memDistRepo) TransitionStatus(ids []string, toStatus, appendNotes string, at time.Time) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.transitionErr != nil {
		err := r.s.transitionErr
		r.s.transitionErr = nil
		return 0, err
	}
	var affected int64
	for _, id := range ids {
		d, ok := r.s.distributions[id]
		if !ok || d.Status != entity.DistributionStatusPending {
			continue
		}
		d.Status = toStatus
		if appendNotes != "" {
			if d.Notes != "" {
				d.Notes += "\n"
			}
			d.Notes += appendNotes
		}
		d.UpdatedAt = at
		affected++
	}
	return affected, nil
}

func (r memDistRepo) DeletePending(id string) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	d, ok := r.s.distributions[id]
	if !ok || d.Status != entity.DistributionStatusPending {
		return false, nil
	}
	delete(r.s.distributions, id)
	return true, nil
}

// ── ProductRepository ─────────────────────────────────────────────────────────

type memProductRepo struct{ s *memStore }

func (r memProductRepo) GetByID(id string) (*entity.Product, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p, ok := r.s.products[id]
	if !ok {
		return nil, nil
	}
	clone := *p
	return &clone, nil
}

func (r memProductRepo) GetByTenantAndSKU(tenantID, sku string) (*entity.Product, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if p := r.findLocked(tenantID, sku); p != nil {
		clone := *p
		return &clone, nil
	}
	return nil, nil
}

func (r memProductRepo) findLocked(tenantID, sku string) *entity.Product {
	for _, p := range r.s.products {
		if p.TenantID == tenantID && p.SKU == sku {
			return p
		}
	}
	return nil
}

func (r memProductRepo) InsertOrGet(product *entity.Product) (*entity.Product, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if existing := r.findLocked(product.TenantID, product.SKU); existing != nil {
		clone := *existing
		return &clone, nil
	}
	clone := *product
	r.s.products[product.ID] = &clone
	out := clone
	return &out, nil
}

func (r memProductRepo) UpdateDescriptive(product *entity.Product) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p, ok := r.s.products[product.ID]
	if !ok {
		return nil
	}
	p.Name = product.Name
	p.Description = product.Description
	p.CategoryID = product.CategoryID
	p.SupplierID = product.SupplierID
	p.PurchasePrice = product.PurchasePrice
	p.SalePrice = product.SalePrice
	p.WholesalePrice = product.WholesalePrice
	p.UpdatedAt = product.UpdatedAt
	return nil
}

func (r memProductRepo) IncrementStock(productID string, quantity decimal.Decimal) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p, ok := r.s.products[productID]
	if !ok {
		return fmt.Errorf("producto %s no existe", productID)
	}
	p.Stock = p.Stock.Add(quantity)
	return nil
}

// ── CategoryRepository ────────────────────────────────────────────────────────

type memCategoryRepo struct{ s *memStore }

func (r memCategoryRepo) GetByID(id string) (*entity.Category, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	c, ok := r.s.categories[id]
	if !ok {
		return nil, nil
	}
	clone := *c
	return &clone, nil
}

func (r memCategoryRepo) GetByTenantAndName(tenantID, name string) (*entity.Category, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, c := range r.s.categories {
		if c.TenantID == tenantID && c.Name == name {
			clone := *c
			return &clone, nil
		}
	}
	return nil, nil
}

func (r memCategoryRepo) InsertOrGet(category *entity.Category) (*entity.Category, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, c := range r.s.categories {
		if c.TenantID == category.TenantID && c.Name == category.Name {
			clone := *c
			return &clone, nil
		}
	}
	clone := *category
	r.s.categories[category.ID] = &clone
	out := clone
	return &out, nil
}

// ── SupplierRepository ────────────────────────────────────────────────────────

type memSupplierRepo struct{ s *memStore }

func (r memSupplierRepo) GetByID(id string) (*entity.Supplier, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	sup, ok := r.s.suppliers[id]
	if !ok {
		return nil, nil
	}
	clone := *sup
	return &clone, nil
}

func (r memSupplierRepo) GetByTenantAndCode(tenantID, code string) (*entity.Supplier, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, sup := range r.s.suppliers {
		if sup.TenantID == tenantID && sup.Code == code {
			clone := *sup
			return &clone, nil
		}
	}
	return nil, nil
}

func (r memSupplierRepo) InsertOrGet(supplier *entity.Supplier) (*entity.Supplier, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, sup := range r.s.suppliers {
		if sup.TenantID == supplier.TenantID && sup.Code == supplier.Code {
			clone := *sup
			return &clone, nil
		}
	}
	clone := *supplier
	r.s.suppliers[supplier.ID] = &clone
	out := clone
	return &out, nil
}

// ── StockMovementRepository ───────────────────────────────────────────────────

type memMovementRepo struct{ s *memStore }

func (r memMovementRepo) CreateIfAbsent(movement *entity.StockMovement) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	key := movementKey(movement)
	if _, ok := r.s.movements[key]; ok {
		return false, nil
	}
	clone := *movement
	r.s.movements[key] = &clone
	return true, nil
}

func (r memMovementRepo) ListByReference(referenceID string) ([]*entity.StockMovement, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*entity.StockMovement
	for _, m := range r.s.movements {
		if m.ReferenceID == referenceID {
			clone := *m
			out = append(out, &clone)
		}
	}
	return out, nil
}

// ── AuditLogRepository y sink ─────────────────────────────────────────────────

type memAuditRepo struct {
	s   *memStore
	err error // fallo permanente inyectable
}

func (r *memAuditRepo) Create(log *entity.AuditLog) error {
	if r.err != nil {
		return r.err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	clone := *log
	r.s.audits = append(r.s.audits, &clone)
	return nil
}

type memAuditSink struct {
	mu        sync.Mutex
	published []*entity.AuditLog
	err       error
}

func (k *memAuditSink) Publish(_ context.Context, log *entity.AuditLog) error {
	if k.err != nil {
		return k.err
	}
	k.mu.Lock()
	defer k.mu.Unlock()
	clone := *log
	k.published = append(k.published, &clone)
	return nil
}

// ── TxRunner ──────────────────────────────────────────────────────────────────

// memTxRunner entrega los repos en memoria al callback. No simula rollback: los
// tests de fallo verifican los efectos observables, no el aislamiento.
type memTxRunner struct{ s *memStore }

func (t memTxRunner) Run(_ context.Context, fn func(
	distRepo repository.DistributionRepository,
	productRepo repository.ProductRepository,
	categoryRepo repository.CategoryRepository,
	supplierRepo repository.SupplierRepository,
	movRepo repository.StockMovementRepository,
) error) error {
	return fn(memDistRepo{t.s}, memProductRepo{t.s}, memCategoryRepo{t.s}, memSupplierRepo{t.s}, memMovementRepo{t.s})
}

func testLogger() *logger.Logger {
	return logger.New(logger.Config{Env: "production", Level: "error"})
}
