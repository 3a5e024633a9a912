// Package chi implements the HTTP API: documents, versions, notes, sharing,
// linkage computation, writing sessions and usage reports.
package chi

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	chirouter "github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/draftzero/draftzero/internal/domain"
	domdoc "github.com/draftzero/draftzero/internal/domain/document"
	domlink "github.com/draftzero/draftzero/internal/domain/linkage"
	domperm "github.com/draftzero/draftzero/internal/domain/permission"
	domsess "github.com/draftzero/draftzero/internal/domain/session"
	documentuc "github.com/draftzero/draftzero/internal/usecase/document"
	healthuc "github.com/draftzero/draftzero/internal/usecase/health"
	linkageuc "github.com/draftzero/draftzero/internal/usecase/linkage"
	sessionuc "github.com/draftzero/draftzero/internal/usecase/session"
	usageuc "github.com/draftzero/draftzero/internal/usecase/usage"
)

// errorHandler tries to handle a domain error. Returns true if handled.
type errorHandler func(w http.ResponseWriter, err error, msg string) bool

// Server wires the usecases into chi routes.
type Server struct {
	documents     *documentuc.Service
	linkage       *linkageuc.Service
	sessions      *sessionuc.Service
	usage         *usageuc.Service
	health        *healthuc.Service
	logger        *zap.Logger
	errorHandlers []errorHandler
}

// NewServer creates an HTTP API server.
func NewServer(
	documents *documentuc.Service,
	linkage *linkageuc.Service,
	sessions *sessionuc.Service,
	usage *usageuc.Service,
	health *healthuc.Service,
	logger *zap.Logger,
) *Server {
	s := &Server{
		documents: documents,
		linkage:   linkage,
		sessions:  sessions,
		usage:     usage,
		health:    health,
		logger:    logger,
	}
	s.errorHandlers = []errorHandler{
		revisionConflictHandler,
		sentinelHandler(domain.ErrDocumentNotFound, http.StatusNotFound, codeNotFound),
		sentinelHandler(domain.ErrVersionNotFound, http.StatusNotFound, codeNotFound),
		sentinelHandler(domain.ErrNoteNotFound, http.StatusNotFound, codeNotFound),
		sentinelHandler(domain.ErrSessionNotFound, http.StatusNotFound, codeNotFound),
		sentinelHandler(domain.ErrNotFound, http.StatusNotFound, codeNotFound),
		sentinelHandler(domain.ErrAlreadyExists, http.StatusConflict, codeAlreadyExists),
		sentinelHandler(domain.ErrAccessDenied, http.StatusForbidden, codeAccessDenied),
		sentinelHandler(domain.ErrInvalidInput, http.StatusBadRequest, codeValidationFailed),
		sentinelHandler(domain.ErrAIQuotaExceeded, http.StatusPaymentRequired, codeAIQuotaExceeded),
		sentinelHandler(domain.ErrAIProviderError, http.StatusBadGateway, codeAIProviderError),
	}
	return s
}

// Routes registers all API routes on the router.
func (s *Server) Routes(r chirouter.Router) {
	r.Get("/health", s.getHealth)
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	r.Route("/api/v1", func(r chirouter.Router) {
		r.Route("/documents", func(r chirouter.Router) {
			r.Post("/", s.createDocument)
			r.Route("/{documentID}", func(r chirouter.Router) {
				r.Get("/", s.getDocument)
				r.Patch("/", s.renameDocument)
				r.Delete("/", s.deleteDocument)
				r.Post("/share", s.shareDocument)
				r.Post("/linkage", s.computeLinkage)

				r.Route("/versions", func(r chirouter.Router) {
					r.Post("/", s.createVersion)
					r.Get("/", s.listVersions)
					r.Patch("/{versionID}", s.updateVersion)
					r.Post("/{versionID}/publish", s.publishVersion)
					r.Delete("/{versionID}", s.deleteVersion)
				})

				r.Route("/notes", func(r chirouter.Router) {
					r.Get("/", s.listNotes)
					r.Post("/", s.upsertNote)
					r.Put("/{noteID}", s.upsertNote)
					r.Delete("/{noteID}", s.deleteNote)
				})
			})
		})

		r.Route("/sessions", func(r chirouter.Router) {
			r.Post("/", s.startSession)
			r.Get("/", s.listSessions)
			r.Post("/{sessionID}/segments", s.trackSession)
			r.Post("/{sessionID}/end", s.endSession)
		})

		r.Get("/usage", s.getUsage)
	})
}

func (s *Server) createDocument(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.requireUser(w, r)
	if !ok {
		return
	}
	var req createDocumentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, "Invalid request body: "+err.Error())
		return
	}

	doc, err := s.documents.CreateDocument(r.Context(), userID, req.Title)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, documentToDTO(&doc))
}

func (s *Server) getDocument(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.requireUser(w, r)
	if !ok {
		return
	}
	doc, err := s.documents.GetDocument(r.Context(), userID, chirouter.URLParam(r, "documentID"))
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, documentToDTO(&doc))
}

func (s *Server) renameDocument(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.requireUser(w, r)
	if !ok {
		return
	}
	var req renameDocumentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, "Invalid request body: "+err.Error())
		return
	}

	doc, err := s.documents.RenameDocument(r.Context(), userID, chirouter.URLParam(r, "documentID"), req.Title)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, documentToDTO(&doc))
}

func (s *Server) deleteDocument(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.requireUser(w, r)
	if !ok {
		return
	}
	if err := s.documents.DeleteDocument(r.Context(), userID, chirouter.URLParam(r, "documentID")); err != nil {
		s.handleDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) shareDocument(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.requireUser(w, r)
	if !ok {
		return
	}
	var req shareDocumentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, "Invalid request body: "+err.Error())
		return
	}

	roles := make([]domperm.TypedRole, 0, len(req.Roles))
	for _, tr := range req.Roles {
		if tr.Role == "" || tr.Scope == "" {
			writeError(w, http.StatusBadRequest, codeValidationFailed, "Each role needs role and scope")
			return
		}
		roles = append(roles, domperm.TypedRole{
			Role:  domperm.Role(tr.Role),
			Scope: domperm.Scope(tr.Scope),
		})
	}

	err := s.documents.ShareDocument(r.Context(), userID, chirouter.URLParam(r, "documentID"), req.UserID, roles)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) computeLinkage(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.requireUser(w, r)
	if !ok {
		return
	}
	documentID := chirouter.URLParam(r, "documentID")

	var req linkageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, "Invalid request body: "+err.Error())
		return
	}

	// Linkage follows document visibility: any role on the document suffices.
	if _, err := s.documents.GetDocument(r.Context(), userID, documentID); err != nil {
		s.handleDomainError(w, err)
		return
	}

	inputs := make([]domlink.Input, 0, len(req.Inputs))
	for _, in := range req.Inputs {
		inputs = append(inputs, domlink.Input{NodeID: in.NodeID, Text: in.Text})
	}

	ctx, aiUsage := domain.NewContextWithUsage(r.Context())
	result, err := s.linkage.Compute(ctx, userID, documentID, inputs, req.NodeIDs)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	tokens, calls := aiUsage.Totals()
	w.Header().Set("X-AI-Tokens", strconv.Itoa(tokens))
	w.Header().Set("X-AI-Calls", strconv.Itoa(calls))
	writeJSON(w, http.StatusOK, linkageResponse{
		NodeList:   result.NodeList,
		Similarity: result.Similarity,
		Explainers: result.Explainers,
	})
}

func (s *Server) createVersion(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.requireUser(w, r)
	if !ok {
		return
	}
	var req createVersionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, "Invalid request body: "+err.Error())
		return
	}

	ver, err := s.documents.CreateVersion(r.Context(), userID, chirouter.URLParam(r, "documentID"), req.Name, req.Body)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, versionToDTO(&ver))
}

func (s *Server) listVersions(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.requireUser(w, r)
	if !ok {
		return
	}
	versions, err := s.documents.ListVersions(r.Context(), userID, chirouter.URLParam(r, "documentID"))
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	out := make([]versionResponse, 0, len(versions))
	for i := range versions {
		out = append(out, versionToDTO(&versions[i]))
	}
	writeJSON(w, http.StatusOK, out)
}

// updateVersion renames and/or edits a version depending on which fields the
// request carries.
func (s *Server) updateVersion(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.requireUser(w, r)
	if !ok {
		return
	}
	var req updateVersionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, "Invalid request body: "+err.Error())
		return
	}
	if req.Name == nil && req.Body == nil {
		writeError(w, http.StatusBadRequest, codeValidationFailed, "Nothing to update: provide name or body")
		return
	}

	documentID := chirouter.URLParam(r, "documentID")
	versionID := chirouter.URLParam(r, "versionID")
	ctx := r.Context()

	var ver domdoc.Version
	if req.Name != nil {
		v, err := s.documents.RenameVersion(ctx, userID, documentID, versionID, *req.Name)
		if err != nil {
			s.handleDomainError(w, err)
			return
		}
		ver = v
	}
	if req.Body != nil {
		v, err := s.documents.EditVersion(ctx, userID, documentID, versionID, *req.Body)
		if err != nil {
			s.handleDomainError(w, err)
			return
		}
		ver = v
	}
	writeJSON(w, http.StatusOK, versionToDTO(&ver))
}

func (s *Server) publishVersion(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.requireUser(w, r)
	if !ok {
		return
	}
	ver, err := s.documents.PublishVersion(r.Context(), userID,
		chirouter.URLParam(r, "documentID"), chirouter.URLParam(r, "versionID"))
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, versionToDTO(&ver))
}

func (s *Server) deleteVersion(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.requireUser(w, r)
	if !ok {
		return
	}
	err := s.documents.DeleteVersion(r.Context(), userID,
		chirouter.URLParam(r, "documentID"), chirouter.URLParam(r, "versionID"))
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) listNotes(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.requireUser(w, r)
	if !ok {
		return
	}
	notes, err := s.documents.ListNotes(r.Context(), userID, chirouter.URLParam(r, "documentID"))
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	out := make([]noteResponse, 0, len(notes))
	for i := range notes {
		out = append(out, noteToDTO(&notes[i]))
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) upsertNote(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.requireUser(w, r)
	if !ok {
		return
	}
	var req noteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, "Invalid request body: "+err.Error())
		return
	}

	noteID := chirouter.URLParam(r, "noteID")
	note, err := s.documents.UpsertNote(r.Context(), userID, chirouter.URLParam(r, "documentID"), noteID, req.Text)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	status := http.StatusOK
	if noteID == "" {
		status = http.StatusCreated
	}
	writeJSON(w, status, noteToDTO(&note))
}

func (s *Server) deleteNote(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.requireUser(w, r)
	if !ok {
		return
	}
	err := s.documents.DeleteNote(r.Context(), userID,
		chirouter.URLParam(r, "documentID"), chirouter.URLParam(r, "noteID"))
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) startSession(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.requireUser(w, r)
	if !ok {
		return
	}
	var req startSessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, "Invalid request body: "+err.Error())
		return
	}

	sess, err := s.sessions.Start(r.Context(), userID, req.DocumentID)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, sessionToDTO(&sess))
}

func (s *Server) trackSession(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.requireUser(w, r)
	if !ok {
		return
	}
	var req segmentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, "Invalid request body: "+err.Error())
		return
	}

	sess, err := s.sessions.Track(r.Context(), userID, chirouter.URLParam(r, "sessionID"),
		domsess.Segment{Words: req.Words, Seconds: req.Seconds})
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, sessionToDTO(&sess))
}

func (s *Server) endSession(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.requireUser(w, r)
	if !ok {
		return
	}
	sess, err := s.sessions.End(r.Context(), userID, chirouter.URLParam(r, "sessionID"))
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, sessionToDTO(&sess))
}

func (s *Server) listSessions(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.requireUser(w, r)
	if !ok {
		return
	}
	sessions, err := s.sessions.List(r.Context(), userID)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	out := make([]sessionResponse, 0, len(sessions))
	for i := range sessions {
		out = append(out, sessionToDTO(&sessions[i]))
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) getUsage(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.requireUser(w, r)
	if !ok {
		return
	}

	period := usageuc.PeriodDay
	if p := r.URL.Query().Get("period"); p != "" {
		period = usageuc.Period(p)
	}

	report, err := s.usage.GetReport(r.Context(), userID, period)
	if err != nil {
		writeError(w, http.StatusBadRequest, codeValidationFailed, "Unknown period: use day or month")
		return
	}
	writeJSON(w, http.StatusOK, report)
}

func (s *Server) getHealth(w http.ResponseWriter, r *http.Request) {
	report := s.health.Check(r.Context())

	checks := make(map[string]string, len(report.Checks))
	for name, result := range report.Checks {
		checks[name] = string(result)
	}

	status := http.StatusOK
	if report.Status != healthuc.Healthy {
		status = http.StatusServiceUnavailable
	}
	writeJSON(w, status, healthResponse{Status: string(report.Status), Checks: checks})
}

// requireUser extracts the authenticated user or writes a 401.
func (s *Server) requireUser(w http.ResponseWriter, r *http.Request) (string, bool) {
	userID := userIDFromContext(r.Context())
	if userID == "" {
		writeError(w, http.StatusUnauthorized, codeUnauthorized, "authentication required")
		return "", false
	}
	return userID, true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, errorResponse{Code: code, Message: message})
}

// safeDomainMessage returns a sentinel error message for the client without exposing internals.
func safeDomainMessage(err error) string {
	sentinels := []error{
		domain.ErrDocumentNotFound,
		domain.ErrVersionNotFound,
		domain.ErrNoteNotFound,
		domain.ErrSessionNotFound,
		domain.ErrNotFound,
		domain.ErrAlreadyExists,
		domain.ErrAccessDenied,
		domain.ErrInvalidInput,
		domain.ErrRevisionConflict,
		domain.ErrAIQuotaExceeded,
		domain.ErrAIProviderError,
	}
	for _, s := range sentinels {
		if errors.Is(err, s) {
			return s.Error()
		}
	}
	return "internal error"
}

// sentinelHandler returns an errorHandler that matches a single sentinel error.
func sentinelHandler(sentinel error, status int, code string) errorHandler {
	return func(w http.ResponseWriter, err error, msg string) bool {
		if !errors.Is(err, sentinel) {
			return false
		}
		writeError(w, status, code, msg)
		return true
	}
}

// revisionConflictHandler handles ErrRevisionConflict with ETag header and extra fields.
func revisionConflictHandler(w http.ResponseWriter, err error, msg string) bool {
	if !errors.Is(err, domain.ErrRevisionConflict) {
		return false
	}
	var rce *domain.RevisionConflictError
	if errors.As(err, &rce) {
		w.Header().Set("ETag", strconv.Quote(strconv.Itoa(rce.CurrentRevision)))
		writeJSON(w, http.StatusConflict, map[string]any{
			"code":             codeRevisionConflict,
			"message":          msg,
			"current_revision": rce.CurrentRevision,
		})
		return true
	}
	writeError(w, http.StatusConflict, codeRevisionConflict, msg)
	return true
}

func (s *Server) handleDomainError(w http.ResponseWriter, err error) {
	s.logger.Warn("domain error", zap.Error(err))
	msg := safeDomainMessage(err)
	for _, h := range s.errorHandlers {
		if h(w, err, msg) {
			return
		}
	}
	s.logger.Error("internal error", zap.Error(err))
	writeError(w, http.StatusInternalServerError, codeInternalError, "internal error")
}
