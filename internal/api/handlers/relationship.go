package handlers

import (
	"errors"
	"net/http"
	"net/url"
	"strconv"

	"github.com/Harshitk-cp/relgraph/internal/domain"
	"github.com/Harshitk-cp/relgraph/internal/service"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

type RelationshipHandler struct {
	svc    *service.KnowledgeService
	logger *zap.Logger
}

func NewRelationshipHandler(svc *service.KnowledgeService, logger *zap.Logger) *RelationshipHandler {
	return &RelationshipHandler{svc: svc, logger: logger}
}

type ingestRequest struct {
	Triples []domain.Triple `json:"triples"`
}

type relationshipResponse struct {
	Entity1  string              `json:"entity1"`
	Relation string              `json:"relation"`
	Entity2  string              `json:"entity2"`
	Kind     domain.RelationKind `json:"kind"`
	Category domain.Category     `json:"category"`
	Inverse  bool                `json:"inverse,omitempty"`
}

type listRelationshipsResponse struct {
	Relationships []relationshipResponse `json:"relationships"`
	Count         int                    `json:"count"`
}

type groupResponse struct {
	Category      domain.Category        `json:"category"`
	Relationships []relationshipResponse `json:"relationships"`
}

type groupedRelationshipsResponse struct {
	Groups []groupResponse `json:"groups"`
	Count  int             `json:"count"`
}

type inferResponse struct {
	Found      bool                `json:"found"`
	Relation   string              `json:"relation,omitempty"`
	Kind       domain.RelationKind `json:"kind,omitempty"`
	PathLength int                 `json:"path_length,omitempty"`
	Path       []domain.PathStep   `json:"path,omitempty"`
}

type auditResponse struct {
	Violations []domain.Violation `json:"violations"`
	Count      int                `json:"count"`
}

func toRelationshipResponse(e domain.Edge) relationshipResponse {
	return relationshipResponse{
		Entity1:  e.Subject.Name,
		Relation: service.Label(e),
		Entity2:  e.Object.Name,
		Kind:     e.Relation.Kind,
		Category: e.Category,
		Inverse:  e.Inverse,
	}
}

func toRelationshipResponses(edges []domain.Edge) []relationshipResponse {
	out := make([]relationshipResponse, 0, len(edges))
	for _, e := range edges {
		out = append(out, toRelationshipResponse(e))
	}
	return out
}

// writeServiceError maps service errors to a status code. Anything unexpected
// is logged and reported as a 500 with a generic message.
func (h *RelationshipHandler) writeServiceError(w http.ResponseWriter, r *http.Request, err error, msg string) {
	switch {
	case errors.Is(err, service.ErrUserRequired), errors.Is(err, service.ErrInvalidUserID):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, domain.ErrInvalidEdge):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, domain.ErrGraphCorruption):
		h.logger.Error("graph corruption", zap.String("user_id", chi.URLParam(r, "userID")), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "graph corruption")
	default:
		h.logger.Error(msg, zap.String("user_id", chi.URLParam(r, "userID")), zap.Error(err))
		writeError(w, http.StatusInternalServerError, msg)
	}
}

// pathParam returns a URL parameter with percent-escapes removed.
func pathParam(r *http.Request, name string) string {
	raw := chi.URLParam(r, name)
	if v, err := url.PathUnescape(raw); err == nil {
		return v
	}
	return raw
}

func (h *RelationshipHandler) Ingest(w http.ResponseWriter, r *http.Request) {
	userID := pathParam(r, "userID")

	var req ingestRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Triples == nil {
		writeError(w, http.StatusBadRequest, "triples is required")
		return
	}

	result, err := h.svc.Ingest(r.Context(), userID, req.Triples)
	if err != nil {
		h.writeServiceError(w, r, err, "failed to ingest triples")
		return
	}
	writeJSON(w, http.StatusCreated, result)
}

func (h *RelationshipHandler) List(w http.ResponseWriter, r *http.Request) {
	userID := pathParam(r, "userID")

	grouped := false
	if v := r.URL.Query().Get("grouped"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid grouped")
			return
		}
		grouped = b
	}

	if grouped {
		groups, err := h.svc.ListGrouped(r.Context(), userID)
		if err != nil {
			h.writeServiceError(w, r, err, "failed to list relationships")
			return
		}
		resp := groupedRelationshipsResponse{Groups: make([]groupResponse, 0, len(groups))}
		for _, g := range groups {
			resp.Groups = append(resp.Groups, groupResponse{
				Category:      g.Category,
				Relationships: toRelationshipResponses(g.Edges),
			})
			resp.Count += len(g.Edges)
		}
		writeJSON(w, http.StatusOK, resp)
		return
	}

	edges, err := h.svc.ListAll(r.Context(), userID)
	if err != nil {
		h.writeServiceError(w, r, err, "failed to list relationships")
		return
	}
	writeJSON(w, http.StatusOK, listRelationshipsResponse{
		Relationships: toRelationshipResponses(edges),
		Count:         len(edges),
	})
}

func (h *RelationshipHandler) Reset(w http.ResponseWriter, r *http.Request) {
	userID := pathParam(r, "userID")

	n, err := h.svc.Reset(r.Context(), userID)
	if err != nil {
		h.writeServiceError(w, r, err, "failed to reset graph")
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"deleted": n})
}

func (h *RelationshipHandler) Infer(w http.ResponseWriter, r *http.Request) {
	userID := pathParam(r, "userID")
	q := r.URL.Query()

	from, to := q.Get("from"), q.Get("to")
	if from == "" || to == "" {
		writeError(w, http.StatusBadRequest, "from and to are required")
		return
	}

	explain := false
	if v := q.Get("explain"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid explain")
			return
		}
		explain = b
	}

	res, err := h.svc.Query(r.Context(), userID, from, to)
	if err != nil {
		h.writeServiceError(w, r, err, "failed to infer relationship")
		return
	}

	resp := inferResponse{
		Found:      res.Found,
		Relation:   res.Label,
		Kind:       res.Kind,
		PathLength: res.PathLength,
	}
	if explain {
		resp.Path = res.Path
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *RelationshipHandler) EntityRelations(w http.ResponseWriter, r *http.Request) {
	userID := pathParam(r, "userID")
	entity := pathParam(r, "entity")

	edges, err := h.svc.Relations(r.Context(), userID, entity)
	if err != nil {
		h.writeServiceError(w, r, err, "failed to get relationships")
		return
	}
	writeJSON(w, http.StatusOK, listRelationshipsResponse{
		Relationships: toRelationshipResponses(edges),
		Count:         len(edges),
	})
}

func (h *RelationshipHandler) Audit(w http.ResponseWriter, r *http.Request) {
	userID := pathParam(r, "userID")

	violations, err := h.svc.Audit(r.Context(), userID)
	if err != nil {
		h.writeServiceError(w, r, err, "failed to audit graph")
		return
	}
	if violations == nil {
		violations = []domain.Violation{}
	}
	writeJSON(w, http.StatusOK, auditResponse{Violations: violations, Count: len(violations)})
}
