package api

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/JakeFAU/logo-discovery/internal/enrich"
	"github.com/JakeFAU/logo-discovery/internal/logo"
)

type discoverRequest struct {
	Website     string `json:"website"`
	CompanyName string `json:"company_name"`
}

type logoResponse struct {
	*logo.DiscoveredLogo
	DataBase64 string `json:"data_base64,omitempty"`
}

type enrichResponse struct {
	Record enrich.Record `json:"record"`
	Logo   *logoResponse `json:"logo"`
}

func (s *Server) discover(w http.ResponseWriter, r *http.Request) {
	if s.deps.Discoverer == nil {
		s.writeError(w, http.StatusServiceUnavailable, "discovery is not configured")
		return
	}
	req, ok := s.decodeDiscoverRequest(w, r)
	if !ok {
		return
	}
	result, err := s.deps.Discoverer.Discover(r.Context(), req.Website, req.CompanyName)
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, logoResponse{
		DiscoveredLogo: result,
		DataBase64:     base64.StdEncoding.EncodeToString(result.Data()),
	})
}

func (s *Server) enrichCompany(w http.ResponseWriter, r *http.Request) {
	if s.deps.Enricher == nil {
		s.writeError(w, http.StatusServiceUnavailable, "enrichment is not configured")
		return
	}
	req, ok := s.decodeDiscoverRequest(w, r)
	if !ok {
		return
	}
	result, err := s.deps.Enricher.EnrichCompany(r.Context(), enrich.Request{
		Symbol:      chi.URLParam(r, "symbol"),
		CompanyName: req.CompanyName,
		Website:     req.Website,
	})
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusCreated, enrichResponse{
		Record: result.Record,
		Logo:   &logoResponse{DiscoveredLogo: result.Logo},
	})
}

func (s *Server) getCompanyLogo(w http.ResponseWriter, r *http.Request) {
	if s.deps.Enricher == nil {
		s.writeError(w, http.StatusServiceUnavailable, "enrichment is not configured")
		return
	}
	record, err := s.deps.Enricher.Lookup(r.Context(), chi.URLParam(r, "symbol"))
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]any{"record": record})
}

func (s *Server) decodeDiscoverRequest(w http.ResponseWriter, r *http.Request) (discoverRequest, bool) {
	var req discoverRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxRequestBody))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid JSON")
		return req, false
	}
	if strings.TrimSpace(req.Website) == "" {
		s.writeError(w, http.StatusBadRequest, "website is required")
		return req, false
	}
	return req, true
}

// statusFor maps discovery and enrichment errors to HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, logo.ErrInvalidWebsite), errors.Is(err, enrich.ErrInvalidRequest):
		return http.StatusBadRequest
	case errors.Is(err, logo.ErrNoCandidates), errors.Is(err, enrich.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, logo.ErrNoValidLogo):
		return http.StatusUnprocessableEntity
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	case errors.Is(err, context.Canceled):
		return http.StatusRequestTimeout
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) writeDomainError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	msg := err.Error()
	if status == http.StatusInternalServerError {
		s.logger.Error("request failed",
			zap.String("path", r.URL.Path),
			zap.String("request_id", requestIDFrom(r.Context())),
			zap.Error(err),
		)
		msg = "internal server error"
	}
	s.writeError(w, status, msg)
}
