package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"sort"
	"strconv"
	"time"

	"github.com/hseo/vigil/internal/contracts"
	"github.com/hseo/vigil/internal/dqsi"
	"github.com/hseo/vigil/pkg/logger"
	"github.com/hseo/vigil/pkg/redis"
)

// AssessmentStore is the persistence surface the handlers need. Satisfied by
// assessment.Repository.
type AssessmentStore interface {
	Save(ctx context.Context, rec *contracts.AssessmentRecord) error
	GetLatest(ctx context.Context) (*contracts.AssessmentRecord, error)
	ListRecent(ctx context.Context, limit int) ([]contracts.AssessmentRecord, error)
}

// DQSIHandler handles DQSI assessment API endpoints
type DQSIHandler struct {
	roleAware *dqsi.RoleAwareStrategy
	fallback  *dqsi.FallbackStrategy
	calc      *dqsi.Calculator
	store     AssessmentStore
	cache     *redis.Cache
	logger    *logger.Logger
}

// NewDQSIHandler creates a new DQSI handler
func NewDQSIHandler(calc *dqsi.Calculator, store AssessmentStore, cache *redis.Cache, log *logger.Logger) *DQSIHandler {
	return &DQSIHandler{
		roleAware: dqsi.NewRoleAwareStrategy(calc),
		fallback:  dqsi.NewFallbackStrategy(calc.Config()),
		calc:      calc,
		store:     store,
		cache:     cache,
		logger:    log,
	}
}

// AssessRequest represents an assessment request
type AssessRequest struct {
	Evidence  contracts.Evidence  `json:"evidence"`
	Baseline  *contracts.Baseline `json:"baseline,omitempty"`
	UserRole  string              `json:"user_role"`
	DeskID    string              `json:"desk_id,omitempty"`
	AlertTime string              `json:"alert_time,omitempty"` // RFC3339
}

// AssessResponse wraps the scored result with its stored ID
type AssessResponse struct {
	AssessmentID int64        `json:"assessment_id,omitempty"`
	Result       *dqsi.Result `json:"result"`
}

// Assess scores supplied evidence with the role-aware strategy
// POST /api/dqsi/assess
func (h *DQSIHandler) Assess(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req AssessRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if len(req.Evidence) == 0 {
		respondError(w, http.StatusBadRequest, "Evidence is required")
		return
	}

	var alertTime time.Time
	if req.AlertTime != "" {
		parsed, err := time.Parse(time.RFC3339, req.AlertTime)
		if err != nil {
			respondError(w, http.StatusBadRequest, "Invalid 'alert_time' format (expected RFC3339)")
			return
		}
		alertTime = parsed
	}

	result := h.roleAware.CalculateDQScore(req.Evidence, req.Baseline, dqsi.Role(req.UserRole), alertTime, req.DeskID)

	id, err := h.persist(ctx, req.Evidence, req.Baseline, req.UserRole, req.DeskID, result)
	if err != nil {
		h.logger.WithError(err).Error("Failed to persist assessment")
	}

	respondJSON(w, http.StatusOK, AssessResponse{AssessmentID: id, Result: result})
}

// FallbackRequest represents a degraded-mode assessment request
type FallbackRequest struct {
	Evidence           contracts.Evidence `json:"evidence,omitempty"`
	DataQualityMetrics map[string]float64 `json:"data_quality_metrics,omitempty"`
	ImputationUsage    map[string]bool    `json:"imputation_usage,omitempty"`
	KDEPresence        map[string]bool    `json:"kde_presence,omitempty"`
	Reason             string             `json:"fallback_reason"`
	UserRole           string             `json:"user_role,omitempty"`
	DeskID             string             `json:"desk_id,omitempty"`
}

// Fallback scores with the degraded-mode strategy
// POST /api/dqsi/fallback
func (h *DQSIHandler) Fallback(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req FallbackRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	result := h.fallback.CalculateDQScore(dqsi.FallbackInput{
		Evidence:           req.Evidence,
		DataQualityMetrics: req.DataQualityMetrics,
		ImputationUsage:    req.ImputationUsage,
		KDEPresence:        req.KDEPresence,
		Reason:             dqsi.FallbackReason(req.Reason),
	})

	id, err := h.persist(ctx, req.Evidence, nil, req.UserRole, req.DeskID, result)
	if err != nil {
		h.logger.WithError(err).Error("Failed to persist fallback assessment")
	}

	respondJSON(w, http.StatusOK, AssessResponse{AssessmentID: id, Result: result})
}

// GetLatest returns the most recent stored assessment
// GET /api/dqsi/assessments/latest
func (h *DQSIHandler) GetLatest(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if h.store == nil {
		respondError(w, http.StatusServiceUnavailable, "Persistence is disabled")
		return
	}

	if h.cache != nil {
		var cached contracts.AssessmentRecord
		if hit, err := h.cache.Get(ctx, redis.LatestAssessmentKey, &cached); err == nil && hit {
			respondJSON(w, http.StatusOK, cached)
			return
		}
	}

	rec, err := h.store.GetLatest(ctx)
	if err != nil {
		h.logger.WithError(err).Error("Failed to get latest assessment")
		respondError(w, http.StatusInternalServerError, "Failed to retrieve latest assessment")
		return
	}
	if rec == nil {
		respondError(w, http.StatusNotFound, "No assessments stored yet")
		return
	}

	if h.cache != nil {
		if err := h.cache.Set(ctx, redis.LatestAssessmentKey, rec, redis.TTLShort); err != nil {
			h.logger.WithError(err).Warn("Failed to cache latest assessment")
		}
	}

	respondJSON(w, http.StatusOK, rec)
}

// ListRecent returns the newest stored assessments
// GET /api/dqsi/assessments?limit=N
func (h *DQSIHandler) ListRecent(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if h.store == nil {
		respondError(w, http.StatusServiceUnavailable, "Persistence is disabled")
		return
	}

	limit := 50
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 || parsed > 500 {
			respondError(w, http.StatusBadRequest, "Invalid 'limit' (expected 1-500)")
			return
		}
		limit = parsed
	}

	records, err := h.store.ListRecent(ctx, limit)
	if err != nil {
		h.logger.WithError(err).Error("Failed to list assessments")
		respondError(w, http.StatusInternalServerError, "Failed to list assessments")
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"count":       len(records),
		"assessments": records,
	})
}

// RoleInfo is one entry of the roles listing
type RoleInfo struct {
	Role                string   `json:"role"`
	KDEScope            []string `json:"kde_scope"`
	MinKDECoverage      float64  `json:"min_kde_coverage"`
	CriticalKDEs        []string `json:"critical_kdes"`
	RiskTolerance       string   `json:"risk_tolerance"`
	PreferredDimensions []string `json:"preferred_dimensions"`
}

// GetRoles returns the configured role profiles
// GET /api/dqsi/roles
func (h *DQSIHandler) GetRoles(w http.ResponseWriter, r *http.Request) {
	cfg := h.calc.Config()

	roles := make([]RoleInfo, 0, len(cfg.Roles))
	for _, role := range sortedRoles(cfg) {
		p := cfg.Roles[role]
		dims := make([]string, 0, len(p.PreferredDimensions))
		for _, d := range p.PreferredDimensions {
			dims = append(dims, string(d))
		}
		roles = append(roles, RoleInfo{
			Role:                string(role),
			KDEScope:            p.KDEScope,
			MinKDECoverage:      p.MinKDECoverage,
			CriticalKDEs:        p.CriticalKDEs,
			RiskTolerance:       p.RiskTolerance,
			PreferredDimensions: dims,
		})
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"roles": roles,
	})
}

// GetConfig returns the active scoring configuration summary
// GET /api/dqsi/config
func (h *DQSIHandler) GetConfig(w http.ResponseWriter, r *http.Request) {
	cfg := h.calc.Config()

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"framework":     cfg.Framework,
		"config_hash":   h.calc.ConfigHash(),
		"trust_buckets": cfg.TrustBuckets,
		"kde_count":     len(cfg.KDEs),
		"role_count":    len(cfg.Roles),
		"warnings":      dqsi.Warn(cfg),
	})
}

// persist stores the assessment and invalidates the latest-assessment cache.
// The baseline is stored alongside the evidence so the re-sweep job can
// reproduce the score. A nil store means persistence is disabled.
func (h *DQSIHandler) persist(ctx context.Context, evidence contracts.Evidence, baseline *contracts.Baseline, userRole, deskID string, result *dqsi.Result) (int64, error) {
	if h.store == nil {
		return 0, nil
	}

	resultJSON, err := json.Marshal(result)
	if err != nil {
		return 0, err
	}

	rec := &contracts.AssessmentRecord{
		AssessedAt:  time.Now().UTC(),
		UserRole:    userRole,
		DeskID:      deskID,
		Strategy:    result.Strategy,
		Score:       result.DQSIScore,
		TrustBucket: string(result.TrustBucket),
		ConfigHash:  h.calc.ConfigHash(),
		Evidence:    evidence,
		Baseline:    baseline,
		Result:      resultJSON,
	}

	if err := h.store.Save(ctx, rec); err != nil {
		return 0, err
	}

	if h.cache != nil {
		if err := h.cache.Delete(ctx, redis.LatestAssessmentKey); err != nil {
			h.logger.WithError(err).Warn("Failed to invalidate latest-assessment cache")
		}
	}

	return rec.ID, nil
}

func sortedRoles(cfg *dqsi.Config) []dqsi.Role {
	roles := make([]dqsi.Role, 0, len(cfg.Roles))
	for role := range cfg.Roles {
		roles = append(roles, role)
	}
	sort.Slice(roles, func(i, j int) bool { return roles[i] < roles[j] })
	return roles
}

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{
		"error": message,
	})
}
