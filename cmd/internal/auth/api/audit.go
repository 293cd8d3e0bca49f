package authapi

import (
	"context"
	"encoding/json"
	"net"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
)

// auditDB is the Exec subset used for audit inserts. Satisfied by
// *pgxpool.Pool and by pgxmock pools in tests.
type auditDB interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

func (h *Handler) auditEvent(ctx context.Context, r *httpRequestMeta, action string, userID *string, meta map[string]any) {
	if h.db == nil {
		return
	}
	h.insertAudit(ctx, action, userID, r.ip, r.ua, meta)
}

// insertAudit is best-effort: an audit failure is logged and never fails the
// request that produced it.
func (h *Handler) insertAudit(ctx context.Context, action string, userID *string, ip net.IP, ua string, meta map[string]any) {
	action = strings.TrimSpace(action)
	if action == "" {
		return
	}

	var ipVal any
	if ip != nil {
		ipVal = ip.String()
	}

	var metaVal *string
	if len(meta) > 0 {
		if b, err := json.Marshal(meta); err == nil {
			s := string(b)
			metaVal = &s
		}
	}

	_, err := h.db.Exec(ctx, `
		INSERT INTO bastion.audit_log (
			user_id, action, created_at, ip, user_agent, meta
		) VALUES ($1, $2, now(), $3, $4, $5::jsonb)
	`, userID, action, ipVal, trimOrNil(ua), metaVal)
	if err != nil {
		h.log.Error("auth.audit.insert.fail", "err", err, "action", action)
	}
}

func trimOrNil(s string) any {
	v := strings.TrimSpace(s)
	if v == "" {
		return nil
	}
	return v
}
