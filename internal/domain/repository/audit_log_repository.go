package repository

import "github.com/jhoicas/distribucion-api/internal/domain/entity"

// AuditLogRepository define el puerto de persistencia para AuditLog.
type AuditLogRepository interface {
	Create(log *entity.AuditLog) error
}
