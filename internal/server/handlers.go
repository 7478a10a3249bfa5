package server

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/matzehuels/narrative/pkg/dag"
	errs "github.com/matzehuels/narrative/pkg/errors"
	"github.com/matzehuels/narrative/pkg/graph"
	"github.com/matzehuels/narrative/pkg/item"
	"github.com/matzehuels/narrative/pkg/pipeline"
	"github.com/matzehuels/narrative/pkg/tree"
)

// AnchorResponse is the body of POST /v1/anchors/{id}.
type AnchorResponse struct {
	ID         string       `json:"id"`
	Cached     bool         `json:"cached"`
	DurationMS float64      `json:"duration_ms"`
	Result     graph.Result `json:"result"`
}

// EdgesResponse lists the tree edges of a result.
type EdgesResponse struct {
	ResultID string         `json:"result_id"`
	Edges    []tree.EdgeKey `json:"edges"`
}

// ThreadsResponse is the body of an edge query.
type ThreadsResponse struct {
	ResultID string  `json:"result_id"`
	Edge     string  `json:"edge"`
	Threads  [][]int `json:"threads"`
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]any{
		"status": "ok",
		"items":  s.engine.Corpus().Len(),
	})
}

// computeAnchor handles POST /v1/anchors/{id}[?refresh=true].
func (s *Server) computeAnchor(w http.ResponseWriter, r *http.Request) {
	raw := chi.URLParam(r, "id")
	id, err := strconv.Atoi(raw)
	if err != nil {
		respondError(w, s.logger, errs.New(errs.ErrCodeInvalidAnchor, "anchor %q is not an item id", raw))
		return
	}
	opts := pipeline.Options{Anchor: item.ID(id)}
	if v := r.URL.Query().Get("refresh"); v != "" {
		if opts.Refresh, err = strconv.ParseBool(v); err != nil {
			respondError(w, s.logger, errs.New(errs.ErrCodeInvalidInput, "refresh must be a boolean, got %q", v))
			return
		}
	}

	res, err := s.runner.Execute(r.Context(), s.engine, opts)
	if err != nil {
		respondError(w, s.logger, err)
		return
	}
	respondJSON(w, http.StatusOK, AnchorResponse{
		ID:         res.Result.ID,
		Cached:     res.CacheInfo.Hit,
		DurationMS: float64(res.Duration.Microseconds()) / 1000,
		Result:     graph.FromResult(res.Result),
	})
}

// getResult handles GET /v1/results/{rid}.
func (s *Server) getResult(w http.ResponseWriter, r *http.Request) {
	res, err := s.runner.Fetch(r.Context(), chi.URLParam(r, "rid"))
	if err != nil {
		respondError(w, s.logger, err)
		return
	}
	respondJSON(w, http.StatusOK, graph.FromResult(res))
}

// getEdges handles GET /v1/results/{rid}/edges.
func (s *Server) getEdges(w http.ResponseWriter, r *http.Request) {
	rid := chi.URLParam(r, "rid")
	res, err := s.runner.Fetch(r.Context(), rid)
	if err != nil {
		respondError(w, s.logger, err)
		return
	}
	edges := res.Edges()
	if edges == nil {
		edges = []tree.EdgeKey{}
	}
	respondJSON(w, http.StatusOK, EdgesResponse{ResultID: rid, Edges: edges})
}

// getThreads handles GET /v1/results/{rid}/threads?edge=u->v.
func (s *Server) getThreads(w http.ResponseWriter, r *http.Request) {
	rid := chi.URLParam(r, "rid")
	edge, err := tree.ParseEdgeKey(r.URL.Query().Get("edge"))
	if err != nil {
		respondError(w, s.logger, err)
		return
	}
	threads, err := s.runner.Query(r.Context(), rid, edge)
	if err != nil {
		respondError(w, s.logger, err)
		return
	}
	respondJSON(w, http.StatusOK, ThreadsResponse{
		ResultID: rid,
		Edge:     edge.String(),
		Threads:  threadInts(threads),
	})
}

// getLayout handles GET /v1/results/{rid}/layout?width=&height=.
func (s *Server) getLayout(w http.ResponseWriter, r *http.Request) {
	width, err := floatParam(r, "width")
	if err != nil {
		respondError(w, s.logger, err)
		return
	}
	height, err := floatParam(r, "height")
	if err != nil {
		respondError(w, s.logger, err)
		return
	}
	l, err := s.runner.Layout(r.Context(), chi.URLParam(r, "rid"), width, height)
	if err != nil {
		respondError(w, s.logger, err)
		return
	}
	respondJSON(w, http.StatusOK, l)
}

// floatParam parses an optional query parameter. Missing means zero.
func floatParam(r *http.Request, name string) (float64, error) {
	v := r.URL.Query().Get(name)
	if v == "" {
		return 0, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil || f < 0 {
		return 0, errs.New(errs.ErrCodeInvalidInput, "%s must be a non-negative number, got %q", name, v)
	}
	return f, nil
}

func threadInts(threads []dag.Thread) [][]int {
	out := make([][]int, len(threads))
	for i, t := range threads {
		out[i] = make([]int, len(t))
		for j, id := range t {
			out[i][j] = int(id)
		}
	}
	return out
}
