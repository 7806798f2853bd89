package service

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/profaxno/siproad-products-api/internal/dto"
	"github.com/profaxno/siproad-products-api/internal/replication"
)

type fixture struct {
	companyID    uuid.UUID
	companies    *stubCompanyRepo
	elementTypes *stubElementTypeRepo
	elements     *stubElementRepo
	formulas     *stubFormulaRepo
	productTypes *stubProductTypeRepo
	products     *stubProductRepo
	replicator   *fakeReplicator

	elementSvc     ElementService
	elementTypeSvc ElementTypeService
	formulaSvc     FormulaService
	productSvc     ProductService
	productTypeSvc ProductTypeService
}

func newFixture(t *testing.T, pageSize int) *fixture {
	t.Helper()
	f := &fixture{companyID: uuid.New(), replicator: &fakeReplicator{}}
	f.companies = newStubCompanyRepo(f.companyID)
	f.elementTypes = newStubElementTypeRepo()
	f.elements = newStubElementRepo()
	f.formulas = newStubFormulaRepo(f.elements)
	f.productTypes = newStubProductTypeRepo()
	f.products = newStubProductRepo(f.elements, f.formulas, f.productTypes)

	f.elementSvc = NewElementService(f.elements, f.elementTypes, f.companies, pageSize)
	f.elementTypeSvc = NewElementTypeService(f.elementTypes, f.companies, pageSize)
	f.formulaSvc = NewFormulaService(f.formulas, f.elements, f.companies, f.replicator, pageSize)
	f.productSvc = NewProductService(f.products, f.elements, f.formulas, f.productTypes, f.companies, f.replicator, pageSize)
	f.productTypeSvc = NewProductTypeService(f.productTypes, f.companies, f.replicator, pageSize)
	return f
}

// breadFormula creates FLOUR x2 (10) + SALT x3 (5), a formula costing 35.
func (f *fixture) breadFormula(t *testing.T) (*dto.FormulaDTO, uuid.UUID, uuid.UUID) {
	t.Helper()
	flour := f.elements.add(f.companyID, "FLOUR", 10)
	salt := f.elements.add(f.companyID, "SALT", 5)
	out, err := f.formulaSvc.Update(ctx(), dto.FormulaDTO{
		CompanyID: f.companyID.String(),
		Name:      "bread base",
		ElementList: []dto.FormulaElementDTO{
			{ID: flour.String(), Qty: 2},
			{ID: salt.String(), Qty: 3},
		},
	})
	require.NoError(t, err)
	return out, flour, salt
}

func (f *fixture) lastSent(t *testing.T) replication.Message {
	t.Helper()
	f.replicator.mu.Lock()
	defer f.replicator.mu.Unlock()
	require.NotEmpty(t, f.replicator.sent)
	return f.replicator.sent[len(f.replicator.sent)-1]
}
