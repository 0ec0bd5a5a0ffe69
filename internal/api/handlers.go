package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/spf13/cast"
	"go.uber.org/zap"

	"github.com/sells-group/lead-scout/internal/auth"
	"github.com/sells-group/lead-scout/internal/export"
	"github.com/sells-group/lead-scout/internal/model"
	"github.com/sells-group/lead-scout/internal/scout"
	"github.com/sells-group/lead-scout/internal/store"
)

// Messages shown when a scan produced nothing to contact.
const (
	MsgNoResults  = "No targets found. Check spelling or location."
	MsgNoTargets  = "Data found, but no contactable targets after filtering."
	maxScanBodyKB = 64
)

type errorResponse struct {
	Error string `json:"error"`
	RunID string `json:"run_id,omitempty"`
}

type loginRequest struct {
	Passphrase string `json:"passphrase"`
}

type loginResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

// ScanResponse is returned by POST /scans.
type ScanResponse struct {
	Run     *model.Run `json:"run"`
	Message string     `json:"message,omitempty"`
}

func (s *server) health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *server) login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 4<<10)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", "")
		return
	}

	token, exp, err := s.Auth.Login(req.Passphrase)
	switch {
	case errors.Is(err, auth.ErrDisabled):
		writeError(w, http.StatusForbidden, "login is disabled", "")
		return
	case errors.Is(err, auth.ErrBadPassphrase):
		zap.L().Warn("api: failed login", zap.String("remote", r.RemoteAddr))
		writeError(w, http.StatusUnauthorized, "invalid passphrase", "")
		return
	case err != nil:
		zap.L().Error("api: login", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "login failed", "")
		return
	}
	writeJSON(w, http.StatusOK, loginResponse{Token: token, ExpiresAt: exp})
}

func (s *server) createScan(w http.ResponseWriter, r *http.Request) {
	var q model.ScanQuery
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxScanBodyKB<<10)).Decode(&q); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", "")
		return
	}

	run, err := s.Service.Scan(r.Context(), q)
	switch {
	case errors.Is(err, scout.ErrInvalidQuery):
		writeError(w, http.StatusBadRequest, err.Error(), "")
	case errors.Is(err, scout.ErrUpstream):
		writeError(w, http.StatusBadGateway, err.Error(), runID(run))
	case errors.Is(err, scout.ErrNoResults):
		writeJSON(w, http.StatusOK, ScanResponse{Run: run, Message: MsgNoResults})
	case err != nil:
		zap.L().Error("api: scan", zap.String("run_id", runID(run)), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "scan failed", runID(run))
	default:
		resp := ScanResponse{Run: run}
		if run.Result.Len() == 0 {
			resp.Message = MsgNoTargets
		}
		writeJSON(w, http.StatusOK, resp)
	}
}

func (s *server) listRuns(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := store.RunFilter{
		Status:   model.RunStatus(q.Get("status")),
		Location: q.Get("location"),
		Limit:    cast.ToInt(q.Get("limit")),
		Offset:   cast.ToInt(q.Get("offset")),
	}

	runs, err := s.Store.ListRuns(r.Context(), filter)
	if err != nil {
		zap.L().Error("api: list runs", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "list runs failed", "")
		return
	}
	writeJSON(w, http.StatusOK, runs)
}

func (s *server) getRun(w http.ResponseWriter, r *http.Request) {
	run, ok := s.loadRun(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, run)
}

func (s *server) exportCSV(w http.ResponseWriter, r *http.Request) {
	run, ok := s.loadRun(w, r)
	if !ok {
		return
	}
	var leads []model.Lead
	if run.Result != nil {
		leads = run.Result.Leads
	}

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", attachment(export.FileName(run.Query, "csv", run.CreatedAt)))
	if err := export.WriteCSV(w, leads); err != nil {
		zap.L().Error("api: export csv", zap.String("run_id", run.ID), zap.Error(err))
	}
}

func (s *server) exportXLSX(w http.ResponseWriter, r *http.Request) {
	run, ok := s.loadRun(w, r)
	if !ok {
		return
	}

	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", attachment(export.FileName(run.Query, "xlsx", run.CreatedAt)))
	if err := export.WriteXLSX(w, run.Result); err != nil {
		zap.L().Error("api: export xlsx", zap.String("run_id", run.ID), zap.Error(err))
	}
}

func (s *server) loadRun(w http.ResponseWriter, r *http.Request) (*model.Run, bool) {
	id := chi.URLParam(r, "id")
	run, err := s.Store.GetRun(r.Context(), id)
	if errors.Is(err, store.ErrNotFound) {
		writeError(w, http.StatusNotFound, "run not found", id)
		return nil, false
	}
	if err != nil {
		zap.L().Error("api: get run", zap.String("run_id", id), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "get run failed", id)
		return nil, false
	}
	return run, true
}

func runID(run *model.Run) string {
	if run == nil {
		return ""
	}
	return run.ID
}

func attachment(name string) string {
	return `attachment; filename="` + name + `"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		zap.L().Debug("api: write response", zap.Error(err))
	}
}

func writeError(w http.ResponseWriter, status int, msg, runID string) {
	writeJSON(w, status, errorResponse{Error: msg, RunID: runID})
}
