package authapi

import (
	"context"
	"fmt"

	"cadastro/cmd/internal/activity"
)

func (h *Handler) auditCreate(ctx context.Context, userID int64, username string) {
	h.record(ctx, userID, activity.ActionCreate, fmt.Sprintf("Usuário %s cadastrado", username))
}

func (h *Handler) auditLogin(ctx context.Context, userID int64, username string, degraded bool) {
	details := fmt.Sprintf("Login de %s", username)
	if degraded {
		details += " (token de contingência)"
	}
	h.record(ctx, userID, activity.ActionLogin, details)
}

func (h *Handler) auditView(ctx context.Context, actorID, targetID int64) {
	h.record(ctx, actorID, activity.ActionView, fmt.Sprintf("Visualizou usuário %d", targetID))
}

func (h *Handler) auditList(ctx context.Context, count, offset, limit int) {
	h.record(ctx, activity.SystemUserID, activity.ActionList,
		fmt.Sprintf("Listou %d usuários (offset=%d, limite=%d)", count, offset, limit))
}

func (h *Handler) auditUpdate(ctx context.Context, userID int64, fields []string) {
	h.record(ctx, userID, activity.ActionUpdate, fmt.Sprintf("Atualizou %v", fields))
}

func (h *Handler) auditDelete(ctx context.Context, userID int64, username string) {
	h.record(ctx, userID, activity.ActionDelete, fmt.Sprintf("Usuário %s removido", username))
}

func (h *Handler) record(ctx context.Context, userID int64, action activity.Action, details string) {
	if h == nil || h.activity == nil {
		return
	}
	e := h.activity.Record(userID, action, details)
	h.log.DebugContext(ctx, "activity.record", "entry_id", e.ID, "user_id", userID, "action", string(action))
}
