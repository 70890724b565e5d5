package http

import (
	"net/http"

	"propmanager/internal/core"
	"propmanager/internal/log"
)

// logMutation records a successful write with the acting user.
func logMutation(r *http.Request, op, entity string, id core.ID) {
	fields := log.NewFields().
		WithOperation(op).
		WithEntity(entity, id.String())
	if u, ok := userFromContext(r.Context()); ok {
		fields[log.FieldUserID] = u.ID.String()
	}
	log.FromContext(r.Context()).InfoContext(r.Context(), "Entity changed", fields.ToSlice()...)
}
