package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"propmanager/internal/core"
	"propmanager/internal/log"
)

func (s *Server) handleListProperties(w http.ResponseWriter, r *http.Request) {
	props, err := s.gw.ListProperties(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, props)
}

func (s *Server) handleCreateProperty(w http.ResponseWriter, r *http.Request) {
	in := core.PropertyInput{UnitCount: 1}
	if !decodeJSON(w, r, &in) {
		return
	}
	p, err := s.gw.CreateProperty(r.Context(), in)
	if err != nil {
		writeError(w, r, err)
		return
	}
	logMutation(r, log.OpCreate, "property", p.ID)
	writeJSON(w, http.StatusCreated, p)
}

func (s *Server) handleUpdateProperty(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var u core.PropertyUpdate
	if !decodeJSON(w, r, &u) {
		return
	}
	p, err := s.gw.UpdateProperty(r.Context(), id, u)
	if err != nil {
		writeError(w, r, err)
		return
	}
	logMutation(r, log.OpUpdate, "property", p.ID)
	writeJSON(w, http.StatusOK, p)
}

func (s *Server) handleDeleteProperty(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	if err := s.gw.DeleteProperty(r.Context(), id); err != nil {
		writeError(w, r, err)
		return
	}
	logMutation(r, log.OpDelete, "property", id)
	writeMessage(w, http.StatusOK, "Property deleted")
}

func (s *Server) handleListTenants(w http.ResponseWriter, r *http.Request) {
	tenants, err := s.gw.ListTenants(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, tenants)
}

func (s *Server) handleCreateTenant(w http.ResponseWriter, r *http.Request) {
	var in core.TenantInput
	if !decodeJSON(w, r, &in) {
		return
	}
	t, err := s.gw.CreateTenant(r.Context(), in)
	if err != nil {
		writeError(w, r, err)
		return
	}
	logMutation(r, log.OpCreate, "tenant", t.ID)
	writeJSON(w, http.StatusCreated, t)
}

func (s *Server) handleDeleteTenant(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	if err := s.gw.DeleteTenant(r.Context(), id); err != nil {
		writeError(w, r, err)
		return
	}
	logMutation(r, log.OpDelete, "tenant", id)
	writeMessage(w, http.StatusOK, "Tenant deleted")
}

func (s *Server) handleListPayments(w http.ResponseWriter, r *http.Request) {
	payments, err := s.gw.ListPayments(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, payments)
}

func (s *Server) handleCreatePayment(w http.ResponseWriter, r *http.Request) {
	var in core.PaymentInput
	if !decodeJSON(w, r, &in) {
		return
	}
	p, err := s.gw.CreatePayment(r.Context(), in)
	if err != nil {
		writeError(w, r, err)
		return
	}
	logMutation(r, log.OpCreate, "payment", p.ID)
	writeJSON(w, http.StatusCreated, p)
}

func pathID(w http.ResponseWriter, r *http.Request) (core.ID, bool) {
	id, err := core.ParseID(chi.URLParam(r, "id"))
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, "Invalid id")
		return "", false
	}
	return id, true
}
