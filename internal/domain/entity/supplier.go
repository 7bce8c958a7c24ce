package entity

import "time"

// Supplier representa un proveedor, con alcance por tenant.
// (Code, TenantID) es la clave natural para resolución entre tenants.
type Supplier struct {
	ID        string
	TenantID  string
	Code      string // código único por tenant
	Name      string
	Phone     string
	Address   string
	CreatedAt time.Time
	UpdatedAt time.Time
}
