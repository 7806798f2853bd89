package service

import (
	"context"
	"errors"
	"sync"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/profaxno/siproad-products-api/internal/model"
	"github.com/profaxno/siproad-products-api/internal/replication"
	"github.com/profaxno/siproad-products-api/internal/repository"
)

// ── In-memory repository stubs ───────────────────────────────────────────────
// DB() returns nil so runTx calls the closure directly.

type stubCompanyRepo struct {
	rows map[uuid.UUID]*model.Company
}

func newStubCompanyRepo(ids ...uuid.UUID) *stubCompanyRepo {
	r := &stubCompanyRepo{rows: map[uuid.UUID]*model.Company{}}
	for _, id := range ids {
		r.rows[id] = &model.Company{ID: id, Name: "ACME", Active: true}
	}
	return r
}

func (r *stubCompanyRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Company, error) {
	c, ok := r.rows[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *c
	return &cp, nil
}

func (r *stubCompanyRepo) FindActiveByID(ctx context.Context, id uuid.UUID) (*model.Company, error) {
	c, err := r.FindByID(ctx, id)
	if err != nil || !c.Active {
		return nil, gorm.ErrRecordNotFound
	}
	return c, nil
}

func (r *stubCompanyRepo) Save(_ context.Context, _ *gorm.DB, c *model.Company) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	cp := *c
	r.rows[c.ID] = &cp
	return nil
}

func (r *stubCompanyRepo) SoftDelete(_ context.Context, _ *gorm.DB, id uuid.UUID) error {
	r.rows[id].Active = false
	return nil
}

func (r *stubCompanyRepo) DB() *gorm.DB { return nil }

type stubElementRepo struct {
	rows           map[uuid.UUID]*model.Element
	refs           map[uuid.UUID]int64
	findByIDsCalls int
}

func newStubElementRepo() *stubElementRepo {
	return &stubElementRepo{rows: map[uuid.UUID]*model.Element{}, refs: map[uuid.UUID]int64{}}
}

func (r *stubElementRepo) add(companyID uuid.UUID, name string, cost int64) uuid.UUID {
	e := &model.Element{ID: uuid.New(), CompanyID: companyID, Name: name, Cost: decimalOf(cost), Unit: "KG", Active: true}
	r.rows[e.ID] = e
	return e.ID
}

func (r *stubElementRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Element, error) {
	e, ok := r.rows[id]
	if !ok || !e.Active {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *e
	return &cp, nil
}

func (r *stubElementRepo) FindByIDs(_ context.Context, ids []uuid.UUID) ([]model.Element, error) {
	r.findByIDsCalls++
	var out []model.Element
	for _, id := range ids {
		if e, ok := r.rows[id]; ok && e.Active {
			out = append(out, *e)
		}
	}
	return out, nil
}

func (r *stubElementRepo) FindActiveByName(_ context.Context, companyID uuid.UUID, name string) (*model.Element, error) {
	for _, e := range r.rows {
		if e.CompanyID == companyID && e.Name == name && e.Active {
			cp := *e
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *stubElementRepo) List(_ context.Context, companyID uuid.UUID, _ repository.Query) ([]model.Element, error) {
	var out []model.Element
	for _, e := range r.rows {
		if e.CompanyID == companyID && e.Active {
			out = append(out, *e)
		}
	}
	return out, nil
}

func (r *stubElementRepo) Save(_ context.Context, _ *gorm.DB, e *model.Element) error {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	cp := *e
	r.rows[e.ID] = &cp
	return nil
}

func (r *stubElementRepo) CountActiveReferences(_ context.Context, id uuid.UUID) (int64, error) {
	return r.refs[id], nil
}

func (r *stubElementRepo) SoftDelete(_ context.Context, _ *gorm.DB, id uuid.UUID) error {
	r.rows[id].Active = false
	return nil
}

func (r *stubElementRepo) DB() *gorm.DB { return nil }

type stubFormulaRepo struct {
	elements     *stubElementRepo
	rows         map[uuid.UUID]*model.Formula
	order        []uuid.UUID
	lines        map[uuid.UUID][]model.FormulaElement
	refs         map[uuid.UUID]int64
	replaceCalls int
}

func newStubFormulaRepo(elements *stubElementRepo) *stubFormulaRepo {
	return &stubFormulaRepo{
		elements: elements,
		rows:     map[uuid.UUID]*model.Formula{},
		lines:    map[uuid.UUID][]model.FormulaElement{},
		refs:     map[uuid.UUID]int64{},
	}
}

// load returns a copy of the formula with Lines.Element preloaded.
func (r *stubFormulaRepo) load(id uuid.UUID) model.Formula {
	f := *r.rows[id]
	f.Lines = nil
	for _, l := range r.lines[id] {
		if e, ok := r.elements.rows[l.ElementID]; ok {
			el := *e
			l.Element = &el
		}
		f.Lines = append(f.Lines, l)
	}
	return f
}

func (r *stubFormulaRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Formula, error) {
	f, ok := r.rows[id]
	if !ok || !f.Active {
		return nil, gorm.ErrRecordNotFound
	}
	loaded := r.load(id)
	return &loaded, nil
}

func (r *stubFormulaRepo) FindByIDs(_ context.Context, ids []uuid.UUID) ([]model.Formula, error) {
	var out []model.Formula
	for _, id := range ids {
		if f, ok := r.rows[id]; ok && f.Active {
			out = append(out, r.load(id))
		}
	}
	return out, nil
}

func (r *stubFormulaRepo) FindActiveByName(_ context.Context, companyID uuid.UUID, name string) (*model.Formula, error) {
	for _, f := range r.rows {
		if f.CompanyID == companyID && f.Name == name && f.Active {
			loaded := r.load(f.ID)
			return &loaded, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *stubFormulaRepo) List(_ context.Context, companyID uuid.UUID, _ repository.Query) ([]model.Formula, error) {
	var out []model.Formula
	for _, id := range r.order {
		if f := r.rows[id]; f.CompanyID == companyID && f.Active {
			out = append(out, r.load(id))
		}
	}
	return out, nil
}

func (r *stubFormulaRepo) ListByCompany(_ context.Context, companyID uuid.UUID, limit, offset int) ([]model.Formula, error) {
	var all []model.Formula
	for _, id := range r.order {
		if r.rows[id].CompanyID == companyID {
			all = append(all, r.load(id))
		}
	}
	return page(all, limit, offset), nil
}

func (r *stubFormulaRepo) Save(_ context.Context, _ *gorm.DB, f *model.Formula) error {
	if f.ID == uuid.Nil {
		f.ID = uuid.New()
	}
	if _, ok := r.rows[f.ID]; !ok {
		r.order = append(r.order, f.ID)
	}
	cp := *f
	cp.Lines = nil
	r.rows[f.ID] = &cp
	return nil
}

func (r *stubFormulaRepo) ReplaceLines(_ context.Context, _ *gorm.DB, formulaID uuid.UUID, rows []model.FormulaElement) error {
	if len(rows) == 0 {
		return nil
	}
	r.replaceCalls++
	stored := make([]model.FormulaElement, 0, len(rows))
	for _, l := range rows {
		l.ID = uuid.New()
		l.Element = nil
		stored = append(stored, l)
	}
	r.lines[formulaID] = stored
	return nil
}

func (r *stubFormulaRepo) CountActiveReferences(_ context.Context, id uuid.UUID) (int64, error) {
	return r.refs[id], nil
}

func (r *stubFormulaRepo) SoftDelete(_ context.Context, _ *gorm.DB, id uuid.UUID) error {
	r.rows[id].Active = false
	return nil
}

func (r *stubFormulaRepo) DB() *gorm.DB { return nil }

type stubElementTypeRepo struct {
	rows  map[uuid.UUID]*model.ElementType
	order []uuid.UUID
	refs  map[uuid.UUID]int64
}

func newStubElementTypeRepo() *stubElementTypeRepo {
	return &stubElementTypeRepo{rows: map[uuid.UUID]*model.ElementType{}, refs: map[uuid.UUID]int64{}}
}

func (r *stubElementTypeRepo) FindByID(_ context.Context, id uuid.UUID) (*model.ElementType, error) {
	t, ok := r.rows[id]
	if !ok || !t.Active {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *t
	return &cp, nil
}

func (r *stubElementTypeRepo) FindActiveByName(_ context.Context, companyID uuid.UUID, name string) (*model.ElementType, error) {
	for _, t := range r.rows {
		if t.CompanyID == companyID && t.Name == name && t.Active {
			cp := *t
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *stubElementTypeRepo) List(_ context.Context, companyID uuid.UUID, _ repository.Query) ([]model.ElementType, error) {
	var out []model.ElementType
	for _, id := range r.order {
		if t := r.rows[id]; t.CompanyID == companyID && t.Active {
			out = append(out, *t)
		}
	}
	return out, nil
}

func (r *stubElementTypeRepo) Save(_ context.Context, _ *gorm.DB, t *model.ElementType) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	if _, ok := r.rows[t.ID]; !ok {
		r.order = append(r.order, t.ID)
	}
	cp := *t
	r.rows[t.ID] = &cp
	return nil
}

func (r *stubElementTypeRepo) CountActiveReferences(_ context.Context, id uuid.UUID) (int64, error) {
	return r.refs[id], nil
}

func (r *stubElementTypeRepo) SoftDelete(_ context.Context, _ *gorm.DB, id uuid.UUID) error {
	r.rows[id].Active = false
	return nil
}

func (r *stubElementTypeRepo) DB() *gorm.DB { return nil }

type stubProductTypeRepo struct {
	rows  map[uuid.UUID]*model.ProductType
	order []uuid.UUID
	refs  map[uuid.UUID]int64
}

func newStubProductTypeRepo() *stubProductTypeRepo {
	return &stubProductTypeRepo{rows: map[uuid.UUID]*model.ProductType{}, refs: map[uuid.UUID]int64{}}
}

func (r *stubProductTypeRepo) FindByID(_ context.Context, id uuid.UUID) (*model.ProductType, error) {
	p, ok := r.rows[id]
	if !ok || !p.Active {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *p
	return &cp, nil
}

func (r *stubProductTypeRepo) FindActiveByName(_ context.Context, companyID uuid.UUID, name string) (*model.ProductType, error) {
	for _, p := range r.rows {
		if p.CompanyID == companyID && p.Name == name && p.Active {
			cp := *p
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *stubProductTypeRepo) List(_ context.Context, companyID uuid.UUID, _ repository.Query) ([]model.ProductType, error) {
	var out []model.ProductType
	for _, id := range r.order {
		if p := r.rows[id]; p.CompanyID == companyID && p.Active {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (r *stubProductTypeRepo) ListByCompany(_ context.Context, companyID uuid.UUID, limit, offset int) ([]model.ProductType, error) {
	var all []model.ProductType
	for _, id := range r.order {
		if p := r.rows[id]; p.CompanyID == companyID {
			all = append(all, *p)
		}
	}
	return page(all, limit, offset), nil
}

func (r *stubProductTypeRepo) Save(_ context.Context, _ *gorm.DB, p *model.ProductType) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	if _, ok := r.rows[p.ID]; !ok {
		r.order = append(r.order, p.ID)
	}
	cp := *p
	r.rows[p.ID] = &cp
	return nil
}

func (r *stubProductTypeRepo) CountActiveReferences(_ context.Context, id uuid.UUID) (int64, error) {
	return r.refs[id], nil
}

func (r *stubProductTypeRepo) SoftDelete(_ context.Context, _ *gorm.DB, id uuid.UUID) error {
	r.rows[id].Active = false
	return nil
}

func (r *stubProductTypeRepo) DB() *gorm.DB { return nil }

type stubProductRepo struct {
	elements     *stubElementRepo
	formulas     *stubFormulaRepo
	productTypes *stubProductTypeRepo
	rows         map[uuid.UUID]*model.Product
	order        []uuid.UUID
	elementLines map[uuid.UUID][]model.ProductElement
	formulaLines map[uuid.UUID][]model.ProductFormula
}

func newStubProductRepo(elements *stubElementRepo, formulas *stubFormulaRepo, productTypes *stubProductTypeRepo) *stubProductRepo {
	return &stubProductRepo{
		elements:     elements,
		formulas:     formulas,
		productTypes: productTypes,
		rows:         map[uuid.UUID]*model.Product{},
		elementLines: map[uuid.UUID][]model.ProductElement{},
		formulaLines: map[uuid.UUID][]model.ProductFormula{},
	}
}

func (r *stubProductRepo) load(id uuid.UUID) model.Product {
	p := *r.rows[id]
	p.ElementLines, p.FormulaLines, p.ProductType = nil, nil, nil
	for _, l := range r.elementLines[id] {
		if e, ok := r.elements.rows[l.ElementID]; ok {
			el := *e
			l.Element = &el
		}
		p.ElementLines = append(p.ElementLines, l)
	}
	for _, l := range r.formulaLines[id] {
		if _, ok := r.formulas.rows[l.FormulaID]; ok {
			f := r.formulas.load(l.FormulaID)
			l.Formula = &f
		}
		p.FormulaLines = append(p.FormulaLines, l)
	}
	if p.ProductTypeID != nil {
		if pt, ok := r.productTypes.rows[*p.ProductTypeID]; ok {
			cp := *pt
			p.ProductType = &cp
		}
	}
	return p
}

func (r *stubProductRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Product, error) {
	p, ok := r.rows[id]
	if !ok || !p.Active {
		return nil, gorm.ErrRecordNotFound
	}
	loaded := r.load(id)
	return &loaded, nil
}

func (r *stubProductRepo) FindActiveByName(_ context.Context, companyID uuid.UUID, name string) (*model.Product, error) {
	for _, p := range r.rows {
		if p.CompanyID == companyID && p.Name == name && p.Active {
			loaded := r.load(p.ID)
			return &loaded, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *stubProductRepo) List(_ context.Context, companyID uuid.UUID, _ repository.Query) ([]model.Product, error) {
	var out []model.Product
	for _, id := range r.order {
		if p := r.rows[id]; p.CompanyID == companyID && p.Active {
			out = append(out, r.load(id))
		}
	}
	return out, nil
}

func (r *stubProductRepo) Search(ctx context.Context, companyID uuid.UUID, _ repository.ProductSearch, q repository.Query) ([]model.Product, error) {
	return r.List(ctx, companyID, q)
}

func (r *stubProductRepo) ListByCompany(_ context.Context, companyID uuid.UUID, limit, offset int) ([]model.Product, error) {
	var all []model.Product
	for _, id := range r.order {
		if r.rows[id].CompanyID == companyID {
			all = append(all, r.load(id))
		}
	}
	return page(all, limit, offset), nil
}

func (r *stubProductRepo) Save(_ context.Context, _ *gorm.DB, p *model.Product) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	if _, ok := r.rows[p.ID]; !ok {
		r.order = append(r.order, p.ID)
	}
	cp := *p
	cp.ElementLines, cp.FormulaLines, cp.ProductType = nil, nil, nil
	r.rows[p.ID] = &cp
	return nil
}

func (r *stubProductRepo) ReplaceElementLines(_ context.Context, _ *gorm.DB, productID uuid.UUID, rows []model.ProductElement) error {
	if len(rows) == 0 {
		return nil
	}
	stored := make([]model.ProductElement, 0, len(rows))
	for _, l := range rows {
		l.ID, l.Element = uuid.New(), nil
		stored = append(stored, l)
	}
	r.elementLines[productID] = stored
	return nil
}

func (r *stubProductRepo) ReplaceFormulaLines(_ context.Context, _ *gorm.DB, productID uuid.UUID, rows []model.ProductFormula) error {
	if len(rows) == 0 {
		return nil
	}
	stored := make([]model.ProductFormula, 0, len(rows))
	for _, l := range rows {
		l.ID, l.Formula = uuid.New(), nil
		stored = append(stored, l)
	}
	r.formulaLines[productID] = stored
	return nil
}

func (r *stubProductRepo) ClearElementLines(_ context.Context, _ *gorm.DB, productID uuid.UUID) error {
	delete(r.elementLines, productID)
	return nil
}

func (r *stubProductRepo) ClearFormulaLines(_ context.Context, _ *gorm.DB, productID uuid.UUID) error {
	delete(r.formulaLines, productID)
	return nil
}

func (r *stubProductRepo) SoftDelete(_ context.Context, _ *gorm.DB, id uuid.UUID) error {
	r.rows[id].Active = false
	return nil
}

func (r *stubProductRepo) DB() *gorm.DB { return nil }

func page[T any](all []T, limit, offset int) []T {
	if offset >= len(all) {
		return nil
	}
	end := offset + limit
	if end > len(all) {
		end = len(all)
	}
	return all[offset:end]
}

// ── Replicator fake ──────────────────────────────────────────────────────────

var errBrokerDown = errors.New("redis: connection refused")

type fakeReplicator struct {
	mu        sync.Mutex
	sent      []replication.Message
	published [][]replication.Message
	failOn    int // 1-based Publish call that fails; 0 never
	calls     int
}

func (f *fakeReplicator) Send(_ context.Context, msgs ...replication.Message) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, msgs...)
}

func (f *fakeReplicator) Publish(_ context.Context, msgs ...replication.Message) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.calls == f.failOn {
		return errBrokerDown
	}
	f.published = append(f.published, msgs)
	return nil
}
