package redis

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/bandq/devconsole/internal/core/domain"
	"github.com/bandq/devconsole/internal/core/ports"
)

const (
	auditStream    = "devconsole:impersonations"
	auditStreamMax = 10000
)

// streamAppender is the slice of *redis.Client the audit stream uses.
type streamAppender interface {
	XAdd(ctx context.Context, a *redis.XAddArgs) *redis.StringCmd
}

// AuditStream appends audit records to a capped Redis stream.
type AuditStream struct {
	client streamAppender
}

// NewAuditStream creates an AuditStream wrapping the given Redis client.
func NewAuditStream(client *redis.Client) ports.AuditRepository {
	return &AuditStream{client: client}
}

// Insert adds one entry; the stream is trimmed approximately to auditStreamMax.
func (s *AuditStream) Insert(ctx context.Context, record domain.ImpersonationAudit) error {
	err := s.client.XAdd(ctx, &redis.XAddArgs{
		Stream: auditStream,
		MaxLen: auditStreamMax,
		Approx: true,
		Values: streamValues(record),
	}).Err()
	if err != nil {
		return fmt.Errorf("append audit stream: %w", err)
	}
	return nil
}

func streamValues(record domain.ImpersonationAudit) map[string]any {
	return map[string]any{
		"caller_id":          record.CallerID,
		"caller_email":       record.CallerEmail,
		"target_user_id":     record.TargetUserID,
		"target_email":       record.TargetEmail,
		"mode":               string(record.Mode),
		"expires_in_seconds": strconv.Itoa(record.ExpiresInSeconds),
		"token_fingerprint":  record.TokenFingerprint,
		"issued_at":          record.IssuedAt.UTC().Format(time.RFC3339Nano),
	}
}
