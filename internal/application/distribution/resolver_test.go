package distribution

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/distribucion-api/internal/domain"
	"github.com/jhoicas/distribucion-api/internal/domain/entity"
)

func resolverRepos(s *memStore) (memCategoryRepo, memSupplierRepo, memProductRepo) {
	return memCategoryRepo{s}, memSupplierRepo{s}, memProductRepo{s}
}

func sourceProductWithRefs(s *memStore) *entity.Product {
	s.categories["cat-1"] = &entity.Category{ID: "cat-1", TenantID: warehouseTenant, Name: "Lácteos", Description: "refrigerados"}
	s.suppliers["sup-1"] = &entity.Supplier{ID: "sup-1", TenantID: warehouseTenant, Code: "PROV-1", Name: "Lechera Andina", Phone: "555-0100"}
	p := &entity.Product{
		ID:             "prod-1",
		TenantID:       warehouseTenant,
		SKU:            "SKU-LECHE",
		Name:           "Leche entera 1L",
		Description:    "caja x12",
		CategoryID:     "cat-1",
		SupplierID:     "sup-1",
		Stock:          decimal.NewFromInt(40),
		PurchasePrice:  decimal.RequireFromString("3.20"),
		SalePrice:      decimal.RequireFromString("4.50"),
		WholesalePrice: decimal.RequireFromString("4.00"),
	}
	s.products[p.ID] = p
	return p
}

// Primera resolución: copia categoría, proveedor y producto al tenant destino
// con IDs propios, producto con stock 0.
func TestResolveProduct_CreaCopiaCompleta(t *testing.T) {
	s := newMemStore()
	catRepo, supRepo, prodRepo := resolverRepos(s)
	source := sourceProductWithRefs(s)
	now := time.Now()

	var resolver EntityResolver
	dest, err := resolver.ResolveProduct(catRepo, supRepo, prodRepo, source, storeTenant, now)
	require.NoError(t, err)
	require.NotNil(t, dest)

	assert.Equal(t, storeTenant, dest.TenantID)
	assert.Equal(t, "SKU-LECHE", dest.SKU)
	assert.Equal(t, "Leche entera 1L", dest.Name)
	assert.True(t, dest.Stock.IsZero(), "la copia nace con stock 0; la cantidad viene del libro")
	assert.True(t, dest.SalePrice.Equal(decimal.RequireFromString("4.50")))
	assert.NotEqual(t, source.ID, dest.ID, "la copia lleva ID propio")

	destCat, err := catRepo.GetByID(dest.CategoryID)
	require.NoError(t, err)
	require.NotNil(t, destCat)
	assert.Equal(t, storeTenant, destCat.TenantID)
	assert.Equal(t, "Lácteos", destCat.Name)
	assert.NotEqual(t, "cat-1", destCat.ID)

	destSup, err := supRepo.GetByID(dest.SupplierID)
	require.NoError(t, err)
	require.NotNil(t, destSup)
	assert.Equal(t, "PROV-1", destSup.Code)
	assert.Equal(t, "555-0100", destSup.Phone)
}

// Segunda resolución del mismo producto: converge en la misma fila destino y
// refresca descriptivos/precios sin tocar el stock acumulado.
func TestResolveProduct_SegundaLlamadaRefrescaSinTocarStock(t *testing.T) {
	s := newMemStore()
	catRepo, supRepo, prodRepo := resolverRepos(s)
	source := sourceProductWithRefs(s)
	now := time.Now()

	var resolver EntityResolver
	first, err := resolver.ResolveProduct(catRepo, supRepo, prodRepo, source, storeTenant, now)
	require.NoError(t, err)

	// la tienda acumuló stock entre lotes
	require.NoError(t, prodRepo.IncrementStock(first.ID, decimal.NewFromInt(12)))

	// la bodega cambió precio y nombre
	source.Name = "Leche entera 1L (nueva imagen)"
	source.SalePrice = decimal.RequireFromString("4.80")

	second, err := resolver.ResolveProduct(catRepo, supRepo, prodRepo, source, storeTenant, now.Add(time.Hour))
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID, "misma fila destino entre resoluciones")

	stored, err := prodRepo.GetByID(first.ID)
	require.NoError(t, err)
	assert.Equal(t, "Leche entera 1L (nueva imagen)", stored.Name)
	assert.True(t, stored.SalePrice.Equal(decimal.RequireFromString("4.80")))
	assert.True(t, stored.Stock.Equal(decimal.NewFromInt(12)), "el refresco jamás toca stock")

	var destCats int
	for _, c := range s.categories {
		if c.TenantID == storeTenant {
			destCats++
		}
	}
	assert.Equal(t, 1, destCats, "sin categoría duplicada en la segunda resolución")
}

// Producto origen sin categoría ni proveedor: la copia queda sin referencias.
func TestResolveProduct_SinCategoriaNiProveedor(t *testing.T) {
	s := newMemStore()
	catRepo, supRepo, prodRepo := resolverRepos(s)
	source := &entity.Product{
		ID:       "prod-2",
		TenantID: warehouseTenant,
		SKU:      "SKU-SIMPLE",
		Name:     "Producto simple",
	}
	s.products[source.ID] = source

	var resolver EntityResolver
	dest, err := resolver.ResolveProduct(catRepo, supRepo, prodRepo, source, storeTenant, time.Now())
	require.NoError(t, err)
	assert.Empty(t, dest.CategoryID)
	assert.Empty(t, dest.SupplierID)
	assert.Empty(t, s.categories)
	assert.Empty(t, s.suppliers)
}

func TestResolveProduct_EntradaInvalida(t *testing.T) {
	s := newMemStore()
	catRepo, supRepo, prodRepo := resolverRepos(s)

	var resolver EntityResolver
	_, err := resolver.ResolveProduct(catRepo, supRepo, prodRepo, nil, storeTenant, time.Now())
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = resolver.ResolveProduct(catRepo, supRepo, prodRepo, &entity.Product{ID: "p"}, "", time.Now())
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}
