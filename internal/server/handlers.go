package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/hyperjump/skillmatch/internal/catalog"
	"github.com/hyperjump/skillmatch/internal/extract"
	"github.com/hyperjump/skillmatch/internal/match"
	"github.com/hyperjump/skillmatch/internal/models"
	"go.uber.org/zap"
)

func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	s.analyze(w, r, false)
}

func (s *Server) handleAnalyzeStrict(w http.ResponseWriter, r *http.Request) {
	s.analyze(w, r, true)
}

func (s *Server) analyze(w http.ResponseWriter, r *http.Request, strict bool) {
	var req models.AnalyzeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := req.Validate(); err != nil {
		s.respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	s.logger.Debug("analyze request",
		zap.Bool("strict", strict),
		zap.Int("skills_len", len(req.Skills)),
		zap.Int("job_description_len", len(req.JobDescription)),
	)

	var (
		res *models.AnalyzeResult
		err error
	)
	if strict {
		res, err = s.service.AnalyzeStrict(r.Context(), req)
	} else {
		res, err = s.service.Analyze(r.Context(), req)
	}
	if errors.Is(err, match.ErrNoInput) {
		s.respondError(w, http.StatusBadRequest, match.NoInputMessage)
		return
	}
	if err != nil {
		s.logger.Error("analysis failed", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.respondJSON(w, http.StatusOK, res)
}

// handleAnalyzeUpload accepts a multipart form with a "skills" field and either a
// "job_description" file or a "job_description" text field.
func (s *Server) handleAnalyzeUpload(w http.ResponseWriter, r *http.Request) {
	limit := s.config.Server.MaxUploadBytes
	r.Body = http.MaxBytesReader(w, r.Body, limit+(1<<20))
	if err := r.ParseMultipartForm(limit); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid multipart form")
		return
	}

	req := models.AnalyzeRequest{Skills: r.FormValue("skills")}
	file, header, err := r.FormFile("job_description")
	switch {
	case errors.Is(err, http.ErrMissingFile):
		req.JobDescription = r.FormValue("job_description")
	case err != nil:
		s.respondError(w, http.StatusBadRequest, "invalid job_description file")
		return
	default:
		defer file.Close()
		text, err := s.extractor.ExtractReader(file, header.Filename, limit)
		if errors.Is(err, extract.ErrTooLarge) {
			s.respondError(w, http.StatusRequestEntityTooLarge, err.Error())
			return
		}
		if err != nil {
			s.logger.Warn("job description extraction failed", zap.String("file", header.Filename), zap.Error(err))
			s.respondError(w, http.StatusUnprocessableEntity, "could not read job description file")
			return
		}
		req.JobDescription = text
	}
	if err := req.Validate(); err != nil {
		s.respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	res, err := s.service.Analyze(r.Context(), req)
	if err != nil {
		s.logger.Error("analysis failed", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.respondJSON(w, http.StatusOK, res)
}

func (s *Server) handleNormalize(w http.ResponseWriter, r *http.Request) {
	var req models.NormalizeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := req.Validate(); err != nil {
		s.respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	res, err := s.service.Normalize(r.Context(), req.Skills, req.Text)
	if err != nil {
		s.logger.Error("normalize failed", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.respondJSON(w, http.StatusOK, res)
}

func (s *Server) handleSkillSearch(w http.ResponseWriter, r *http.Request) {
	params := r.URL.Query()
	q := models.SkillSearchQuery{
		Query:    params.Get("q"),
		Category: params.Get("category"),
	}
	if v := params.Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			s.respondError(w, http.StatusBadRequest, "limit must be an integer")
			return
		}
		q.Limit = n
	}
	if v := params.Get("fuzzy"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			s.respondError(w, http.StatusBadRequest, "fuzzy must be a boolean")
			return
		}
		q.Fuzzy = b
	}
	if err := q.Validate(); err != nil {
		s.respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	start := time.Now()
	hits, err := s.catalog.Search(r.Context(), q.Query, catalog.SearchOptions{
		Limit:    q.Limit,
		Fuzzy:    q.Fuzzy,
		Category: q.Category,
	})
	if err != nil {
		s.logger.Error("skill search failed", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.respondJSON(w, http.StatusOK, models.SkillSearchResponse{
		Query:     q.Query,
		Hits:      hits,
		QueryTime: time.Since(start).Milliseconds(),
	})
}

func (s *Server) handleSkill(w http.ResponseWriter, r *http.Request) {
	name, err := url.PathUnescape(chi.URLParam(r, "name"))
	if err != nil || strings.TrimSpace(name) == "" {
		s.respondError(w, http.StatusBadRequest, "invalid skill name")
		return
	}
	ont := s.service.Normalizer().Ontology()
	info := models.SkillInfo{Name: name, Category: ont.Category(name)}
	if sk, ok := ont.Skill(name); ok {
		info.Known = true
		info.Aliases = sk.Aliases
		info.Tags = sk.Tags
	}
	s.respondJSON(w, http.StatusOK, info)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	norm := s.service.Normalizer()
	ont := norm.Ontology()
	resp := models.StatusResponse{
		Skills:       ont.Len(),
		Surfaces:     s.index.Size(),
		Categories:   ont.CategoryNames(),
		Families:     len(ont.Families()),
		Model:        s.index.ModelID(),
		Dimensions:   s.index.Dimensions(),
		Threshold:    norm.Threshold(),
		OntologyPath: s.config.Ontology.Path,
	}
	if s.cache != nil {
		stats, err := s.cache.Stats(r.Context())
		if err != nil {
			s.logger.Warn("status: vector cache stats failed", zap.Error(err))
		} else {
			resp.VectorCache = &models.CacheStatus{
				Path:      s.config.Storage.VectorCachePath,
				Entries:   stats.Entries,
				Models:    stats.Models,
				DiskBytes: stats.DiskBytes,
			}
		}
	}
	s.respondJSON(w, http.StatusOK, resp)
}

func (s *Server) respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func (s *Server) respondError(w http.ResponseWriter, status int, message string) {
	s.respondJSON(w, status, map[string]string{"error": message})
}
