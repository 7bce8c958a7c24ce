package entity

import "time"

// Category representa una categoría de productos, con alcance por tenant.
// (Name, TenantID) es la clave natural: la misma categoría puede existir en
// muchos tenants con IDs distintos y nunca hay referencia cruzada entre ellos.
type Category struct {
	ID          string
	TenantID    string
	Name        string
	Description string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
