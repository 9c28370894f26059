package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/sqlpilot-ai/vecmem/internal/api"
	"github.com/sqlpilot-ai/vecmem/internal/domain"
	"github.com/sqlpilot-ai/vecmem/internal/retrieval"
)

// RetrievalService is the retrieval surface the handler exposes.
type RetrievalService interface {
	Search(ctx context.Context, query string, partition domain.MemoryPartition, topK int) []domain.QueryResult
	SearchWithFilter(ctx context.Context, query string, partition domain.MemoryPartition, topK int, tableName string) []domain.QueryResult
	SearchBoth(ctx context.Context, query string, semanticK, proceduralK int) *retrieval.BothResults
}

// TopKDefaults holds per-partition default result counts.
type TopKDefaults struct {
	Semantic   int
	Procedural int
}

// SearchHandler serves vector retrieval over HTTP.
type SearchHandler struct {
	svc      RetrievalService
	defaults TopKDefaults
}

// NewSearchHandler creates a SearchHandler.
func NewSearchHandler(svc RetrievalService, defaults TopKDefaults) *SearchHandler {
	return &SearchHandler{svc: svc, defaults: defaults}
}

type SearchRequest struct {
	Query     string `json:"query"`
	Partition string `json:"partition,omitempty"`
	TopK      int    `json:"top_k,omitempty"`
	Table     string `json:"table,omitempty"`
}

type SearchResultResponse struct {
	Key        string  `json:"key"`
	Distance   float32 `json:"distance"`
	TableName  string  `json:"table_name,omitempty"`
	EntityType string  `json:"entity_type,omitempty"`
	Keywords   string  `json:"keywords,omitempty"`
	ColumnName string  `json:"column_name,omitempty"`
}

type SearchResponse struct {
	Results []SearchResultResponse `json:"results"`
}

// Search handles POST /search.
func (h *SearchHandler) Search(w http.ResponseWriter, r *http.Request) {
	var req SearchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if req.Query == "" {
		api.HandleError(w, domain.ErrEmptyQuery)
		return
	}

	partition := domain.PartitionSemantic
	if req.Partition != "" {
		var err error
		partition, err = domain.ParsePartition(req.Partition)
		if err != nil {
			api.HandleError(w, err)
			return
		}
	}

	topK := req.TopK
	if topK <= 0 {
		topK = h.defaults.Semantic
		if partition == domain.PartitionProcedural {
			topK = h.defaults.Procedural
		}
	}

	var results []domain.QueryResult
	if req.Table != "" {
		results = h.svc.SearchWithFilter(r.Context(), req.Query, partition, topK, req.Table)
	} else {
		results = h.svc.Search(r.Context(), req.Query, partition, topK)
	}

	api.Success(w, http.StatusOK, SearchResponse{Results: toResponses(results)})
}

type SearchBothRequest struct {
	Query       string `json:"query"`
	SemanticK   int    `json:"semantic_k,omitempty"`
	ProceduralK int    `json:"procedural_k,omitempty"`
}

type SearchBothResponse struct {
	Semantic   []SearchResultResponse `json:"semantic"`
	Procedural []SearchResultResponse `json:"procedural"`
}

// SearchBoth handles POST /search/both.
func (h *SearchHandler) SearchBoth(w http.ResponseWriter, r *http.Request) {
	var req SearchBothRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if req.Query == "" {
		api.HandleError(w, domain.ErrEmptyQuery)
		return
	}

	semanticK := req.SemanticK
	if semanticK <= 0 {
		semanticK = h.defaults.Semantic
	}
	proceduralK := req.ProceduralK
	if proceduralK <= 0 {
		proceduralK = h.defaults.Procedural
	}

	both := h.svc.SearchBoth(r.Context(), req.Query, semanticK, proceduralK)

	api.Success(w, http.StatusOK, SearchBothResponse{
		Semantic:   toResponses(both.Semantic),
		Procedural: toResponses(both.Procedural),
	})
}

func toResponses(results []domain.QueryResult) []SearchResultResponse {
	out := make([]SearchResultResponse, 0, len(results))
	for _, res := range results {
		out = append(out, SearchResultResponse{
			Key:        res.Key,
			Distance:   res.Distance,
			TableName:  res.Metadata.TableName,
			EntityType: res.Metadata.EntityType,
			Keywords:   res.Metadata.Keywords,
			ColumnName: res.Metadata.ColumnName,
		})
	}
	return out
}
