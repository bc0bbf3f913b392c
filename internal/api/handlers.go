package api

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"orgmatrix/internal/core"
	"orgmatrix/internal/editor"
	"orgmatrix/pkg/domain"
)

func (s *Server) healthz(w http.ResponseWriter, r *http.Request) {
	body := map[string]string{"status": "ok"}
	if err := s.svc.LastPersistError(); err != nil {
		body["status"] = "degraded"
		body["lastPersistError"] = err.Error()
	}
	writeJSON(w, http.StatusOK, body)
}

func (s *Server) listOrganizations(w http.ResponseWriter, r *http.Request) {
	orgs := s.svc.ListOrganizations()
	if orgs == nil {
		orgs = []domain.Organization{}
	}
	writeJSON(w, http.StatusOK, orgs)
}

type createOrganizationRequest struct {
	Name         string          `json:"name"`
	Code         string          `json:"code"`
	Domain       string          `json:"domain"`
	WhiteLabeled bool            `json:"whiteLabeled"`
	Branding     domain.Branding `json:"branding"`
	ContactEmail string          `json:"contactEmail"`
}

func (s *Server) createOrganization(w http.ResponseWriter, r *http.Request) {
	var req createOrganizationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Name == "" {
		writeError(w, http.StatusBadRequest, "name required")
		return
	}

	created, _, err := s.svc.CreateOrganization(r.Context(), domain.Organization{
		Name:         req.Name,
		Code:         req.Code,
		Domain:       req.Domain,
		WhiteLabeled: req.WhiteLabeled,
		Branding:     req.Branding,
		ContactEmail: req.ContactEmail,
	})
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (s *Server) getOrganization(w http.ResponseWriter, r *http.Request) {
	org, ok := s.svc.GetOrganization(chi.URLParam(r, "id"))
	if !ok {
		writeError(w, http.StatusNotFound, "organization not found")
		return
	}
	writeJSON(w, http.StatusOK, org)
}

type updateOrganizationRequest struct {
	Name         *string          `json:"name"`
	Code         *string          `json:"code"`
	Domain       *string          `json:"domain"`
	WhiteLabeled *bool            `json:"whiteLabeled"`
	Branding     *domain.Branding `json:"branding"`
	ContactEmail *string          `json:"contactEmail"`
}

func (s *Server) updateOrganization(w http.ResponseWriter, r *http.Request) {
	var req updateOrganizationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	updated, found, _, err := s.svc.UpdateOrganization(r.Context(), chi.URLParam(r, "id"), core.OrganizationPatch{
		Name:         req.Name,
		Code:         req.Code,
		Domain:       req.Domain,
		WhiteLabeled: req.WhiteLabeled,
		Branding:     req.Branding,
		ContactEmail: req.ContactEmail,
	})
	if err != nil {
		writeServiceError(w, err)
		return
	}
	if !found {
		writeError(w, http.StatusNotFound, "organization not found")
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

func (s *Server) deleteOrganization(w http.ResponseWriter, r *http.Request) {
	deleted, _, err := s.svc.DeleteOrganization(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	if !deleted {
		writeError(w, http.StatusNotFound, "organization not found")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type sampleRequest struct {
	Count int `json:"count"`
}

func (s *Server) addSampleOrganizations(w http.ResponseWriter, r *http.Request) {
	req := sampleRequest{Count: 5}
	if r.ContentLength > 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
	}
	if req.Count <= 0 || req.Count > 100 {
		writeError(w, http.StatusBadRequest, "count must be between 1 and 100")
		return
	}

	created, _, err := s.svc.AddSampleOrganizations(r.Context(), req.Count)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (s *Server) resetOrganizations(w http.ResponseWriter, r *http.Request) {
	if _, err := s.svc.ResetOrganizations(r.Context()); err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, s.svc.ListOrganizations())
}

func (s *Server) listCourses(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.svc.Courses())
}

func (s *Server) getMatrix(w http.ResponseWriter, r *http.Request) {
	m := s.svc.MatrixSnapshot()
	if m == nil {
		m = domain.Matrix{}
	}
	writeJSON(w, http.StatusOK, m)
}

func (s *Server) clearMatrix(w http.ResponseWriter, r *http.Request) {
	if _, err := s.svc.ClearMatrix(r.Context()); err != nil {
		writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type enabledRequest struct {
	Enabled bool `json:"enabled"`
}

func (s *Server) setCourseEnabled(w http.ResponseWriter, r *http.Request) {
	var req enabledRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	cell, _, err := s.svc.SetCourseEnabled(r.Context(), chi.URLParam(r, "courseID"), chi.URLParam(r, "orgID"), req.Enabled)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, cell)
}

type valueRequest struct {
	Value string `json:"value"`
}

func (s *Server) setCourseValue(w http.ResponseWriter, r *http.Request) {
	var req valueRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	// Free-form input is filtered to a numeric string before it reaches the
	// store, same as the interactive cell editor.
	value := editor.SanitizeNumeric(req.Value)
	cell, _, err := s.svc.SetCourseValue(r.Context(), chi.URLParam(r, "courseID"), chi.URLParam(r, "orgID"), value)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, cell)
}

func (s *Server) dashboard(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.svc.Dashboard())
}
