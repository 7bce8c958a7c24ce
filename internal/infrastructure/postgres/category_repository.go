package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/distribucion-api/internal/domain"
	"github.com/jhoicas/distribucion-api/internal/domain/entity"
	"github.com/jhoicas/distribucion-api/internal/domain/repository"
)

var _ repository.CategoryRepository = (*CategoryRepo)(nil)

// CategoryRepo implementación del puerto CategoryRepository sobre PostgreSQL
// (usable con pool o tx).
type CategoryRepo struct {
	q Querier
}

// NewCategoryRepository construye el adaptador de categorías. Pasar pool o tx (Querier).
func NewCategoryRepository(q Querier) *CategoryRepo {
	return &CategoryRepo{q: q}
}

// GetByID obtiene una categoría por ID.
func (r *CategoryRepo) GetByID(id string) (*entity.Category, error) {
	query := `SELECT id, tenant_id, name, description, created_at, updated_at FROM categories WHERE id = $1`
	var c entity.Category
	err := r.q.QueryRow(context.Background(), query, id).Scan(
		&c.ID, &c.TenantID, &c.Name, &c.Description, &c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get category: %w", err)
	}
	return &c, nil
}

// GetByTenantAndName obtiene una categoría por su clave natural (tenant, nombre).
func (r *CategoryRepo) GetByTenantAndName(tenantID, name string) (*entity.Category, error) {
	query := `SELECT id, tenant_id, name, description, created_at, updated_at FROM categories WHERE tenant_id = $1 AND name = $2`
	var c entity.Category
	err := r.q.QueryRow(context.Background(), query, tenantID, name).Scan(
		&c.ID, &c.TenantID, &c.Name, &c.Description, &c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get category by name: %w", err)
	}
	return &c, nil
}

// InsertOrGet inserta la categoría salvo que (tenant_id, name) ya exista y
// devuelve la fila destino (insert-or-get sobre el constraint único).
func (r *CategoryRepo) InsertOrGet(category *entity.Category) (*entity.Category, error) {
	query := `
		INSERT INTO categories (id, tenant_id, name, description, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (tenant_id, name) DO NOTHING`
	cmd, err := r.q.Exec(context.Background(), query,
		category.ID, category.TenantID, category.Name, category.Description,
		category.CreatedAt, category.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, domain.ErrDuplicate
		}
		return nil, fmt.Errorf("insert category: %w", err)
	}
	if cmd.RowsAffected() == 1 {
		return category, nil
	}
	existing, err := r.GetByTenantAndName(category.TenantID, category.Name)
	if err != nil {
		return nil, err
	}
	if existing == nil {
		return nil, fmt.Errorf("insert category %q: conflicto sin fila visible", category.Name)
	}
	return existing, nil
}
