package entity

// Roles de usuario relevantes para el motor de distribución.
const (
	RoleAdmin = "admin"
)

// Actor identifica a quien ejecuta una operación (extraído del token por la
// capa HTTP). El orquestador revalida rol y tenant aunque el caller ya lo
// haya hecho.
type Actor struct {
	ID       string
	TenantID string
	Role     string
}

// IsAdminOf indica si el actor es admin del tenant dado.
func (a Actor) IsAdminOf(tenantID string) bool {
	return a.Role == RoleAdmin && a.TenantID == tenantID
}
