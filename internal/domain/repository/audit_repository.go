package repository

import (
	"context"

	"github.com/oksasatya/eduflex-backend/internal/domain/entity"
)

type AuditLogRepository interface {
	Insert(ctx context.Context, e entity.AuditEntry) error
}
