// Package apptest provee repositorios en memoria para las pruebas de casos de uso.
package apptest

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/jhoicas/backoffice-api/internal/domain"
	"github.com/jhoicas/backoffice-api/internal/domain/debt"
	"github.com/jhoicas/backoffice-api/internal/domain/entity"
	"github.com/jhoicas/backoffice-api/internal/domain/repository"
	"github.com/jhoicas/backoffice-api/pkg/textnorm"
	"github.com/shopspring/decimal"
)

// DB estado compartido por los repositorios en memoria.
type DB struct {
	mu          sync.Mutex
	Companies   map[string]*entity.Company
	Users       map[string]*entity.User
	Partners    map[string]*entity.Partner
	Products    map[string]*entity.Product
	Movements   []*entity.InventoryMovement
	Imports     map[string]*entity.ImportInvoice
	Exports     map[string]*entity.ExportInvoice
	Debts       map[string]*entity.Debt
	Payments    map[string]*entity.DebtPayment
	Sequences   map[string]int64
	Attachments map[string]*entity.Attachment
	SyncRuns    []*entity.SyncRun
}

// NewDB crea un estado vacío.
func NewDB() *DB {
	return &DB{
		Companies:   map[string]*entity.Company{},
		Users:       map[string]*entity.User{},
		Partners:    map[string]*entity.Partner{},
		Products:    map[string]*entity.Product{},
		Imports:     map[string]*entity.ImportInvoice{},
		Exports:     map[string]*entity.ExportInvoice{},
		Debts:       map[string]*entity.Debt{},
		Payments:    map[string]*entity.DebtPayment{},
		Sequences:   map[string]int64{},
		Attachments: map[string]*entity.Attachment{},
	}
}

// snapshot copia superficial de cada entidad (suficiente para deshacer una tx en pruebas).
func (db *DB) snapshot() *DB {
	db.mu.Lock()
	defer db.mu.Unlock()
	s := NewDB()
	for k, v := range db.Companies {
		c := *v
		s.Companies[k] = &c
	}
	for k, v := range db.Users {
		c := *v
		s.Users[k] = &c
	}
	for k, v := range db.Partners {
		c := *v
		s.Partners[k] = &c
	}
	for k, v := range db.Products {
		c := *v
		s.Products[k] = &c
	}
	s.Movements = append(s.Movements, db.Movements...)
	for k, v := range db.Imports {
		c := *v
		s.Imports[k] = &c
	}
	for k, v := range db.Exports {
		c := *v
		s.Exports[k] = &c
	}
	for k, v := range db.Debts {
		c := *v
		s.Debts[k] = &c
	}
	for k, v := range db.Payments {
		c := *v
		s.Payments[k] = &c
	}
	for k, v := range db.Sequences {
		s.Sequences[k] = v
	}
	for k, v := range db.Attachments {
		c := *v
		s.Attachments[k] = &c
	}
	s.SyncRuns = append(s.SyncRuns, db.SyncRuns...)
	return s
}

func (db *DB) restore(s *DB) {
	db.mu.Lock()
	defer db.mu.Unlock()
	db.Companies, db.Users, db.Partners, db.Products = s.Companies, s.Users, s.Partners, s.Products
	db.Movements, db.Imports, db.Exports, db.Debts = s.Movements, s.Imports, s.Exports, s.Debts
	db.Payments, db.Sequences, db.Attachments, db.SyncRuns = s.Payments, s.Sequences, s.Attachments, s.SyncRuns
}

// Stores devuelve los repositorios transaccionales sobre este estado.
func (db *DB) Stores() repository.TxStores {
	return repository.TxStores{
		Products:  &ProductRepo{db},
		Movements: &MovementRepo{db},
		Imports:   &ImportRepo{db},
		Exports:   &ExportRepo{db},
		Debts:     &DebtRepo{db},
		Partners:  &PartnerRepo{db},
		Sequences: &SequenceRepo{db},
	}
}

// TxRunner ejecuta fn sobre el mismo estado y lo restaura si fn falla.
type TxRunner struct{ DB *DB }

func (t *TxRunner) Run(ctx context.Context, fn func(s repository.TxStores) error) error {
	snap := t.DB.snapshot()
	if err := fn(t.DB.Stores()); err != nil {
		t.DB.restore(snap)
		return err
	}
	return nil
}

func page[T any](items []T, limit, offset int) []T {
	if offset >= len(items) {
		return []T{}
	}
	items = items[offset:]
	if limit > 0 && limit < len(items) {
		items = items[:limit]
	}
	return items
}

func matches(search string, parts ...string) bool {
	if search == "" {
		return true
	}
	return strings.Contains(textnorm.Join(parts...), textnorm.Fold(search))
}

func inRange(t time.Time, r repository.DateRange) bool {
	if r.From != nil && t.Before(*r.From) {
		return false
	}
	if r.To != nil && t.After(*r.To) {
		return false
	}
	return true
}

// ── Companies ────────────────────────────────────────────────────────────────

type CompanyRepo struct{ *DB }

func (r *CompanyRepo) Create(ctx context.Context, c *entity.Company) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, x := range r.Companies {
		if x.TaxCode == c.TaxCode {
			return domain.ErrDuplicate
		}
	}
	cp := *c
	r.Companies[c.ID] = &cp
	return nil
}

func (r *CompanyRepo) GetByID(ctx context.Context, id string) (*entity.Company, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if c, ok := r.Companies[id]; ok {
		cp := *c
		return &cp, nil
	}
	return nil, nil
}

func (r *CompanyRepo) GetByTaxCode(ctx context.Context, taxCode string) (*entity.Company, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, c := range r.Companies {
		if c.TaxCode == taxCode {
			cp := *c
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *CompanyRepo) Update(ctx context.Context, c *entity.Company) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.Companies[c.ID]; !ok {
		return domain.ErrNotFound
	}
	for _, x := range r.Companies {
		if x.ID != c.ID && x.TaxCode == c.TaxCode {
			return domain.ErrDuplicate
		}
	}
	cp := *c
	r.Companies[c.ID] = &cp
	return nil
}

func (r *CompanyRepo) ListActive(ctx context.Context) ([]*entity.Company, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*entity.Company
	for _, c := range r.Companies {
		if c.Status == entity.CompanyStatusActive {
			cp := *c
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

// ── Users ────────────────────────────────────────────────────────────────────

type UserRepo struct{ *DB }

func (r *UserRepo) Create(ctx context.Context, u *entity.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, x := range r.Users {
		if strings.EqualFold(x.Email, u.Email) {
			return domain.ErrDuplicate
		}
	}
	cp := *u
	r.Users[u.ID] = &cp
	return nil
}

func (r *UserRepo) GetByID(ctx context.Context, companyID, id string) (*entity.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if u, ok := r.Users[id]; ok && u.CompanyID == companyID {
		cp := *u
		return &cp, nil
	}
	return nil, nil
}

func (r *UserRepo) GetByEmail(ctx context.Context, email string) (*entity.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.Users {
		if strings.EqualFold(u.Email, email) {
			cp := *u
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *UserRepo) Update(ctx context.Context, u *entity.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cur, ok := r.Users[u.ID]
	if !ok || cur.CompanyID != u.CompanyID {
		return domain.ErrNotFound
	}
	cp := *u
	cp.PasswordHash = cur.PasswordHash
	r.Users[u.ID] = &cp
	return nil
}

func (r *UserRepo) UpdatePassword(ctx context.Context, id, hash string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.Users[id]
	if !ok {
		return domain.ErrNotFound
	}
	u.PasswordHash = hash
	return nil
}

func (r *UserRepo) TouchLogin(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if u, ok := r.Users[id]; ok {
		now := time.Now()
		u.LastLoginAt = &now
	}
	return nil
}

func (r *UserRepo) Delete(ctx context.Context, companyID, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.Users[id]
	if !ok || u.CompanyID != companyID {
		return domain.ErrNotFound
	}
	delete(r.Users, id)
	return nil
}

func (r *UserRepo) List(ctx context.Context, companyID string, f repository.UserFilter) ([]*entity.User, int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*entity.User
	for _, u := range r.Users {
		if u.CompanyID != companyID || (f.Role != "" && u.Role != f.Role) || (f.Status != "" && u.Status != f.Status) {
			continue
		}
		if !matches(f.Search, u.Name, u.Email) {
			continue
		}
		cp := *u
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Email < out[j].Email })
	return page(out, f.Limit, f.Offset), len(out), nil
}

func (r *UserRepo) CountActiveAdmins(ctx context.Context, companyID string) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, u := range r.Users {
		if u.CompanyID == companyID && u.Role == entity.RoleAdmin && u.Status == entity.UserStatusActive {
			n++
		}
	}
	return n, nil
}

// ── Partners ─────────────────────────────────────────────────────────────────

type PartnerRepo struct{ *DB }

func (r *PartnerRepo) Create(ctx context.Context, p *entity.Partner) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.partnerClash(p) {
		return domain.ErrDuplicate
	}
	cp := *p
	r.Partners[p.ID] = &cp
	return nil
}

func (r *PartnerRepo) partnerClash(p *entity.Partner) bool {
	for _, x := range r.Partners {
		if x.ID == p.ID || x.CompanyID != p.CompanyID || x.Kind != p.Kind {
			continue
		}
		if x.Code == p.Code || (p.TaxCode != "" && x.TaxCode == p.TaxCode) {
			return true
		}
	}
	return false
}

func (r *PartnerRepo) GetByID(ctx context.Context, companyID, kind, id string) (*entity.Partner, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if p, ok := r.Partners[id]; ok && p.CompanyID == companyID && p.Kind == kind {
		cp := *p
		return &cp, nil
	}
	return nil, nil
}

func (r *PartnerRepo) GetByTaxCode(ctx context.Context, companyID, kind, taxCode string) (*entity.Partner, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, p := range r.Partners {
		if p.CompanyID == companyID && p.Kind == kind && p.TaxCode == taxCode {
			cp := *p
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *PartnerRepo) Update(ctx context.Context, p *entity.Partner) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.Partners[p.ID]; !ok {
		return domain.ErrNotFound
	}
	if r.partnerClash(p) {
		return domain.ErrDuplicate
	}
	cp := *p
	r.Partners[p.ID] = &cp
	return nil
}

func (r *PartnerRepo) Delete(ctx context.Context, companyID, kind, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.Partners[id]
	if !ok || p.CompanyID != companyID || p.Kind != kind {
		return domain.ErrNotFound
	}
	delete(r.Partners, id)
	return nil
}

func (r *PartnerRepo) List(ctx context.Context, companyID, kind string, lp repository.ListParams) ([]*entity.Partner, int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*entity.Partner
	for _, p := range r.Partners {
		if p.CompanyID != companyID || p.Kind != kind || !matches(lp.Search, p.Code, p.Name, p.TaxCode, p.Phone) {
			continue
		}
		cp := *p
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Code < out[j].Code })
	return page(out, lp.Limit, lp.Offset), len(out), nil
}

func (r *PartnerRepo) IsReferenced(ctx context.Context, companyID, kind, id string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, inv := range r.Imports {
		if inv.SupplierID == id {
			return true, nil
		}
	}
	for _, inv := range r.Exports {
		if inv.CustomerID == id {
			return true, nil
		}
	}
	return false, nil
}

// ── Products ─────────────────────────────────────────────────────────────────

type ProductRepo struct{ *DB }

func (r *ProductRepo) Create(ctx context.Context, p *entity.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, x := range r.Products {
		if x.CompanyID == p.CompanyID && strings.EqualFold(x.SKU, p.SKU) {
			return domain.ErrDuplicate
		}
	}
	cp := *p
	r.Products[p.ID] = &cp
	return nil
}

func (r *ProductRepo) GetByID(ctx context.Context, companyID, id string) (*entity.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if p, ok := r.Products[id]; ok && p.CompanyID == companyID {
		cp := *p
		return &cp, nil
	}
	return nil, nil
}

func (r *ProductRepo) GetBySKU(ctx context.Context, companyID, sku string) (*entity.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, p := range r.Products {
		if p.CompanyID == companyID && strings.EqualFold(p.SKU, sku) {
			cp := *p
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *ProductRepo) GetForUpdate(ctx context.Context, companyID, id string) (*entity.Product, error) {
	return r.GetByID(ctx, companyID, id)
}

func (r *ProductRepo) Update(ctx context.Context, p *entity.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cur, ok := r.Products[p.ID]
	if !ok || cur.CompanyID != p.CompanyID {
		return domain.ErrNotFound
	}
	for _, x := range r.Products {
		if x.ID != p.ID && x.CompanyID == p.CompanyID && strings.EqualFold(x.SKU, p.SKU) {
			return domain.ErrDuplicate
		}
	}
	cp := *p
	cp.Stock, cp.Cost = cur.Stock, cur.Cost
	r.Products[p.ID] = &cp
	return nil
}

func (r *ProductRepo) UpdateStockAndCost(ctx context.Context, id string, stock, cost decimal.Decimal) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.Products[id]
	if !ok {
		return domain.ErrNotFound
	}
	p.Stock, p.Cost = stock, cost
	return nil
}

func (r *ProductRepo) Delete(ctx context.Context, companyID, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.Products[id]
	if !ok || p.CompanyID != companyID {
		return domain.ErrNotFound
	}
	delete(r.Products, id)
	return nil
}

func (r *ProductRepo) List(ctx context.Context, companyID string, f repository.ProductFilter) ([]*entity.Product, int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*entity.Product
	for _, p := range r.Products {
		if p.CompanyID != companyID || (f.Category != "" && p.Category != f.Category) || (f.LowStock && !p.IsLowStock()) {
			continue
		}
		if !matches(f.Search, p.SKU, p.Name, p.Category) {
			continue
		}
		cp := *p
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].SKU < out[j].SKU })
	return page(out, f.Limit, f.Offset), len(out), nil
}

func (r *ProductRepo) IsReferenced(ctx context.Context, companyID, id string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, m := range r.Movements {
		if m.ProductID == id {
			return true, nil
		}
	}
	for _, inv := range r.Imports {
		for _, l := range inv.Lines {
			if l.ProductID == id {
				return true, nil
			}
		}
	}
	for _, inv := range r.Exports {
		for _, l := range inv.Lines {
			if l.ProductID == id {
				return true, nil
			}
		}
	}
	return false, nil
}

// ── Movements ────────────────────────────────────────────────────────────────

type MovementRepo struct{ *DB }

func (r *MovementRepo) Create(ctx context.Context, m *entity.InventoryMovement) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *m
	r.Movements = append(r.Movements, &cp)
	return nil
}

func (r *MovementRepo) ListByProduct(ctx context.Context, companyID, productID string, limit, offset int) ([]*entity.InventoryMovement, int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*entity.InventoryMovement
	for i := len(r.Movements) - 1; i >= 0; i-- {
		m := r.Movements[i]
		if m.CompanyID == companyID && m.ProductID == productID {
			cp := *m
			out = append(out, &cp)
		}
	}
	return page(out, limit, offset), len(out), nil
}

// ── Imports ──────────────────────────────────────────────────────────────────

type ImportRepo struct{ *DB }

func (r *ImportRepo) Create(ctx context.Context, inv *entity.ImportInvoice) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, x := range r.Imports {
		if x.CompanyID == inv.CompanyID && x.SupplierID == inv.SupplierID && x.Series == inv.Series && x.Number == inv.Number {
			return domain.ErrDuplicate
		}
	}
	cp := *inv
	cp.Lines = append([]entity.InvoiceLine(nil), inv.Lines...)
	if p, ok := r.Partners[inv.SupplierID]; ok {
		cp.SupplierName = p.Name
	}
	r.Imports[inv.ID] = &cp
	return nil
}

func (r *ImportRepo) GetByID(ctx context.Context, companyID, id string) (*entity.ImportInvoice, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if inv, ok := r.Imports[id]; ok && inv.CompanyID == companyID {
		cp := *inv
		cp.Lines = append([]entity.InvoiceLine(nil), inv.Lines...)
		return &cp, nil
	}
	return nil, nil
}

func (r *ImportRepo) ExistsByNumber(ctx context.Context, companyID, supplierID, series, number string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, x := range r.Imports {
		if x.CompanyID == companyID && x.SupplierID == supplierID && x.Series == series && x.Number == number {
			return true, nil
		}
	}
	return false, nil
}

func (r *ImportRepo) ExistsByFingerprint(ctx context.Context, companyID, fp string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, x := range r.Imports {
		if x.CompanyID == companyID && fp != "" && x.XMLFingerprint == fp {
			return true, nil
		}
	}
	return false, nil
}

func (r *ImportRepo) List(ctx context.Context, companyID string, f repository.ImportFilter) ([]*entity.ImportInvoice, int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*entity.ImportInvoice
	for _, x := range r.Imports {
		if x.CompanyID != companyID || (f.SupplierID != "" && x.SupplierID != f.SupplierID) ||
			(f.Status != "" && x.Status != f.Status) || (f.Source != "" && x.Source != f.Source) || !inRange(x.IssueDate, f.DateRange) {
			continue
		}
		if !matches(f.Search, x.Number, x.Series, x.SupplierName) {
			continue
		}
		cp := *x
		cp.Lines = nil
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].IssueDate.After(out[j].IssueDate) })
	return page(out, f.Limit, f.Offset), len(out), nil
}

func (r *ImportRepo) MarkCancelled(ctx context.Context, id string, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	x, ok := r.Imports[id]
	if !ok || x.Status != entity.InvoiceStatusCompleted {
		return domain.ErrConflict
	}
	x.Status, x.CancelledAt = entity.InvoiceStatusCancelled, &at
	return nil
}

func (r *ImportRepo) AddPaid(ctx context.Context, id string, delta decimal.Decimal) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if x, ok := r.Imports[id]; ok {
		x.PaidAmount = decimal.Max(x.PaidAmount.Add(delta), decimal.Zero)
	}
	return nil
}

func (r *ImportRepo) SetAttachment(ctx context.Context, id, attachmentID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if x, ok := r.Imports[id]; ok {
		x.AttachmentID = attachmentID
	}
	return nil
}

// ── Exports ──────────────────────────────────────────────────────────────────

type ExportRepo struct{ *DB }

func (r *ExportRepo) Create(ctx context.Context, inv *entity.ExportInvoice) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, x := range r.Exports {
		if x.CompanyID == inv.CompanyID && x.Number == inv.Number {
			return domain.ErrDuplicate
		}
	}
	cp := *inv
	cp.Lines = append([]entity.InvoiceLine(nil), inv.Lines...)
	if p, ok := r.Partners[inv.CustomerID]; ok {
		cp.CustomerName = p.Name
	}
	r.Exports[inv.ID] = &cp
	return nil
}

func (r *ExportRepo) GetByID(ctx context.Context, companyID, id string) (*entity.ExportInvoice, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if inv, ok := r.Exports[id]; ok && inv.CompanyID == companyID {
		cp := *inv
		cp.Lines = append([]entity.InvoiceLine(nil), inv.Lines...)
		return &cp, nil
	}
	return nil, nil
}

func (r *ExportRepo) ExistsByNumber(ctx context.Context, companyID, number string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, x := range r.Exports {
		if x.CompanyID == companyID && x.Number == number {
			return true, nil
		}
	}
	return false, nil
}

func (r *ExportRepo) List(ctx context.Context, companyID string, f repository.ExportFilter) ([]*entity.ExportInvoice, int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*entity.ExportInvoice
	for _, x := range r.Exports {
		if x.CompanyID != companyID || (f.CustomerID != "" && x.CustomerID != f.CustomerID) ||
			(f.Status != "" && x.Status != f.Status) || !inRange(x.IssueDate, f.DateRange) {
			continue
		}
		if !matches(f.Search, x.Number, x.CustomerName) {
			continue
		}
		cp := *x
		cp.Lines = nil
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Number > out[j].Number })
	return page(out, f.Limit, f.Offset), len(out), nil
}

func (r *ExportRepo) MarkCancelled(ctx context.Context, id string, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	x, ok := r.Exports[id]
	if !ok || x.Status != entity.InvoiceStatusCompleted {
		return domain.ErrConflict
	}
	x.Status, x.CancelledAt = entity.InvoiceStatusCancelled, &at
	return nil
}

func (r *ExportRepo) AddPaid(ctx context.Context, id string, delta decimal.Decimal) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if x, ok := r.Exports[id]; ok {
		x.PaidAmount = decimal.Max(x.PaidAmount.Add(delta), decimal.Zero)
	}
	return nil
}

// ── Debts ────────────────────────────────────────────────────────────────────

type DebtRepo struct{ *DB }

func (r *DebtRepo) Create(ctx context.Context, d *entity.Debt) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, x := range r.Debts {
		if x.InvoiceType == d.InvoiceType && x.InvoiceID == d.InvoiceID {
			return domain.ErrDuplicate
		}
	}
	cp := *d
	cp.Payments = nil
	if p, ok := r.Partners[d.PartnerID]; ok {
		cp.PartnerName = p.Name
	}
	r.Debts[d.ID] = &cp
	return nil
}

func (r *DebtRepo) withPayments(d *entity.Debt) *entity.Debt {
	cp := *d
	cp.Payments = nil
	for _, p := range r.Payments {
		if p.DebtID == d.ID {
			cp.Payments = append(cp.Payments, *p)
		}
	}
	sort.Slice(cp.Payments, func(i, j int) bool { return cp.Payments[i].CreatedAt.Before(cp.Payments[j].CreatedAt) })
	return &cp
}

func (r *DebtRepo) GetByID(ctx context.Context, companyID, id string) (*entity.Debt, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if d, ok := r.Debts[id]; ok && d.CompanyID == companyID {
		return r.withPayments(d), nil
	}
	return nil, nil
}

func (r *DebtRepo) GetForUpdate(ctx context.Context, companyID, id string) (*entity.Debt, error) {
	return r.GetByID(ctx, companyID, id)
}

func (r *DebtRepo) GetByInvoice(ctx context.Context, invoiceType, invoiceID string) (*entity.Debt, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, d := range r.Debts {
		if d.InvoiceType == invoiceType && d.InvoiceID == invoiceID {
			return r.withPayments(d), nil
		}
	}
	return nil, nil
}

func (r *DebtRepo) UpdateBalance(ctx context.Context, d *entity.Debt) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	x, ok := r.Debts[d.ID]
	if !ok {
		return domain.ErrNotFound
	}
	x.PaidAmount, x.Status = d.PaidAmount, d.Status
	return nil
}

func (r *DebtRepo) AddPayment(ctx context.Context, p *entity.DebtPayment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *p
	r.Payments[p.ID] = &cp
	return nil
}

func (r *DebtRepo) GetPayment(ctx context.Context, debtID, paymentID string) (*entity.DebtPayment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if p, ok := r.Payments[paymentID]; ok && p.DebtID == debtID {
		cp := *p
		return &cp, nil
	}
	return nil, nil
}

func (r *DebtRepo) DeletePayment(ctx context.Context, paymentID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.Payments, paymentID)
	return nil
}

func (r *DebtRepo) CountPayments(ctx context.Context, debtID string) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, p := range r.Payments {
		if p.DebtID == debtID {
			n++
		}
	}
	return n, nil
}

func (r *DebtRepo) List(ctx context.Context, companyID string, f repository.DebtFilter) ([]*entity.Debt, int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*entity.Debt
	for _, d := range r.Debts {
		status := d.Status
		if !f.Today.IsZero() {
			status = debt.ResolveStatus(d, f.Today)
		}
		if d.CompanyID != companyID || (f.Type != "" && d.Type != f.Type) || (f.Status != "" && status != f.Status) ||
			(f.PartnerID != "" && d.PartnerID != f.PartnerID) || (f.OverdueOnly && status != entity.DebtOverdue) {
			continue
		}
		if !matches(f.Search, d.InvoiceNumber, d.PartnerName) {
			continue
		}
		cp := *d
		cp.Payments = nil
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].InvoiceNumber < out[j].InvoiceNumber })
	return page(out, f.Limit, f.Offset), len(out), nil
}

func (r *DebtRepo) MarkOverdue(ctx context.Context, today time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	day := time.Date(today.Year(), today.Month(), today.Day(), 0, 0, 0, 0, time.UTC)
	for _, d := range r.Debts {
		if (d.Status == entity.DebtUnpaid || d.Status == entity.DebtPartial) && d.DueDate != nil && d.DueDate.Before(day) &&
			d.PaidAmount.LessThan(d.Amount) {
			d.Status = entity.DebtOverdue
			n++
		}
	}
	return n, nil
}

func (r *DebtRepo) SummaryByPartner(ctx context.Context, companyID, debtType, partnerID string) (*repository.PartnerDebtSummary, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s := repository.PartnerDebtSummary{PartnerID: partnerID, Type: debtType}
	for _, d := range r.Debts {
		if d.CompanyID != companyID || d.Type != debtType || d.PartnerID != partnerID || d.Status == entity.DebtCancelled {
			continue
		}
		s.TotalAmount = s.TotalAmount.Add(d.Amount)
		s.TotalPaid = s.TotalPaid.Add(d.PaidAmount)
		switch d.Status {
		case entity.DebtOverdue:
			s.OverdueCount++
			s.OpenCount++
		case entity.DebtUnpaid, entity.DebtPartial:
			s.OpenCount++
		}
	}
	s.Outstanding = s.TotalAmount.Sub(s.TotalPaid)
	return &s, nil
}

// ── Sequences ────────────────────────────────────────────────────────────────

type SequenceRepo struct{ *DB }

func (r *SequenceRepo) Next(ctx context.Context, companyID, scope string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	key := companyID + "/" + scope
	r.Sequences[key]++
	return r.Sequences[key], nil
}

// ── Attachments ──────────────────────────────────────────────────────────────

type AttachmentRepo struct{ *DB }

func (r *AttachmentRepo) Create(ctx context.Context, a *entity.Attachment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *a
	r.Attachments[a.ID] = &cp
	return nil
}

func (r *AttachmentRepo) GetByID(ctx context.Context, companyID, id string) (*entity.Attachment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if a, ok := r.Attachments[id]; ok && a.CompanyID == companyID {
		cp := *a
		return &cp, nil
	}
	return nil, nil
}

func (r *AttachmentRepo) List(ctx context.Context, companyID, invoiceType, invoiceID string) ([]*entity.Attachment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*entity.Attachment
	for _, a := range r.Attachments {
		if a.CompanyID != companyID || (invoiceType != "" && a.InvoiceType != invoiceType) || (invoiceID != "" && a.InvoiceID != invoiceID) {
			continue
		}
		cp := *a
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (r *AttachmentRepo) LinkInvoice(ctx context.Context, id, invoiceType, invoiceID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if a, ok := r.Attachments[id]; ok {
		a.InvoiceType, a.InvoiceID = invoiceType, invoiceID
	}
	return nil
}

func (r *AttachmentRepo) Delete(ctx context.Context, companyID, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.Attachments[id]
	if !ok || a.CompanyID != companyID {
		return domain.ErrNotFound
	}
	delete(r.Attachments, id)
	return nil
}

// ── Sync runs ────────────────────────────────────────────────────────────────

type SyncRunRepo struct{ *DB }

func (r *SyncRunRepo) Create(ctx context.Context, s *entity.SyncRun) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *s
	r.SyncRuns = append(r.SyncRuns, &cp)
	return nil
}

func (r *SyncRunRepo) Finish(ctx context.Context, s *entity.SyncRun) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, x := range r.SyncRuns {
		if x.ID == s.ID {
			cp := *s
			r.SyncRuns[i] = &cp
			return nil
		}
	}
	return domain.ErrNotFound
}

func (r *SyncRunRepo) List(ctx context.Context, companyID string, limit int) ([]*entity.SyncRun, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*entity.SyncRun
	for i := len(r.SyncRuns) - 1; i >= 0; i-- {
		if r.SyncRuns[i].CompanyID == companyID {
			cp := *r.SyncRuns[i]
			out = append(out, &cp)
		}
	}
	return page(out, limit, 0), nil
}

var (
	_ repository.CompanyRepository           = (*CompanyRepo)(nil)
	_ repository.UserRepository              = (*UserRepo)(nil)
	_ repository.PartnerRepository           = (*PartnerRepo)(nil)
	_ repository.ProductRepository           = (*ProductRepo)(nil)
	_ repository.InventoryMovementRepository = (*MovementRepo)(nil)
	_ repository.ImportInvoiceRepository     = (*ImportRepo)(nil)
	_ repository.ExportInvoiceRepository     = (*ExportRepo)(nil)
	_ repository.DebtRepository              = (*DebtRepo)(nil)
	_ repository.SequenceRepository          = (*SequenceRepo)(nil)
	_ repository.AttachmentRepository        = (*AttachmentRepo)(nil)
	_ repository.SyncRunRepository           = (*SyncRunRepo)(nil)
	_ repository.TxRunner                    = (*TxRunner)(nil)
)
