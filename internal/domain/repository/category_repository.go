package repository

import "github.com/jhoicas/distribucion-api/internal/domain/entity"

// CategoryRepository define el puerto de persistencia para Category (DIP).
type CategoryRepository interface {
	GetByID(id string) (*entity.Category, error)
	GetByTenantAndName(tenantID, name string) (*entity.Category, error)
	// InsertOrGet inserta la categoría si (tenant, name) no existe y devuelve la
	// fila destino (insert-or-get sobre el constraint único).
	InsertOrGet(category *entity.Category) (*entity.Category, error)
}
