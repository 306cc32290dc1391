package ports

import (
	"context"

	"github.com/bandq/devconsole/internal/core/domain"
)

// AuditRepository persists impersonation audit records.
type AuditRepository interface {
	Insert(ctx context.Context, record domain.ImpersonationAudit) error
}

// AuditSink accepts audit records without blocking the request path.
type AuditSink interface {
	Record(record domain.ImpersonationAudit)
}
