package server

import (
	"bytes"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/matzehuels/nodeflow/pkg/cache"
	"github.com/matzehuels/nodeflow/pkg/engine"
	"github.com/matzehuels/nodeflow/pkg/errors"
	"github.com/matzehuels/nodeflow/pkg/graph"
	"github.com/matzehuels/nodeflow/pkg/node"
	"github.com/matzehuels/nodeflow/pkg/nodes"
	"github.com/matzehuels/nodeflow/pkg/render/nodelink"
)

// SkippedNode reports a document node the registry could not build.
type SkippedNode struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Reason string `json:"reason"`
}

// OrderResponse is the body of POST /order.
type OrderResponse struct {
	Ok      bool          `json:"ok"`
	Order   []string      `json:"order,omitempty"`
	Blocked []string      `json:"blocked,omitempty"`
	Skipped []SkippedNode `json:"skipped,omitempty"`
}

// ProcessResponse is the body of POST /process.
type ProcessResponse struct {
	Status     engine.Status      `json:"status"`
	Order      []string           `json:"order"`
	Executed   []string           `json:"executed"`
	Blocked    []string           `json:"blocked,omitempty"`
	FailedNode string             `json:"failed_node,omitempty"`
	Error      string             `json:"error,omitempty"`
	Published  []node.Publication `json:"published"`
	Skipped    []SkippedNode      `json:"skipped,omitempty"`
	DurationMS float64            `json:"duration_ms"`
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) listNodes(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, nodes.Catalog(s.reg))
}

func (s *Server) order(w http.ResponseWriter, r *http.Request) {
	g, report, _, err := s.loadGraph(r)
	if err != nil {
		writeError(w, err)
		return
	}

	res := engine.Order(g)
	resp := OrderResponse{
		Ok:      res.Ok(),
		Order:   res.Sequence,
		Blocked: res.Blocked(),
		Skipped: skipped(report),
	}
	status := http.StatusOK
	if !res.Ok() {
		status = http.StatusUnprocessableEntity
	}
	writeJSON(w, status, resp)
}

func (s *Server) process(w http.ResponseWriter, r *http.Request) {
	g, report, _, err := s.loadGraph(r)
	if err != nil {
		writeError(w, err)
		return
	}

	rec := &node.Recorder{}
	res := s.engine.Process(node.WithObserver(r.Context(), rec), g)

	resp := ProcessResponse{
		Status:     res.Status,
		Order:      nonNil(res.Order),
		Executed:   nonNil(res.Executed),
		Blocked:    res.Blocked,
		Published:  summarize(rec.Publications()),
		Skipped:    skipped(report),
		DurationMS: float64(res.Duration) / float64(time.Millisecond),
	}
	if res.Failure != nil {
		resp.FailedNode = res.Failure.NodeID
	}
	if err := errors.FromRun(res); err != nil {
		resp.Error = errors.UserMessage(err)
		if res.Failure != nil {
			resp.Error += ": " + res.Failure.Cause.Error()
		}
	}
	writeJSON(w, runStatus(res.Status), resp)
}

func (s *Server) render(w http.ResponseWriter, r *http.Request) {
	g, _, doc, err := s.loadGraph(r)
	if err != nil {
		writeError(w, err)
		return
	}

	q := r.URL.Query()
	format := q.Get("format")
	if format == "" {
		format = "svg"
	}
	if format != "svg" && format != "dot" {
		writeError(w, errors.New(errors.ErrCodeInvalidFormat, "unsupported format %q (use svg or dot)", format))
		return
	}
	ports, _ := strconv.ParseBool(q.Get("ports"))
	opts := nodelink.Options{
		Detailed: q.Get("detailed") == "true",
		Ports:    ports,
		RankDir:  q.Get("rankdir"),
	}
	dot := nodelink.ToDOT(g, opts)

	if format == "dot" {
		w.Header().Set("Content-Type", "text/vnd.graphviz")
		w.WriteHeader(http.StatusOK)
		_, _ = io.WriteString(w, dot)
		return
	}

	docHash, err := cache.DocumentHash(doc)
	if err != nil {
		writeError(w, errors.Wrap(errors.ErrCodeInternal, err, "encode document"))
		return
	}
	key := s.keyer.ArtifactKey(docHash, cache.ArtifactKeyOpts{
		Format:   format,
		RankDir:  opts.RankDir,
		Ports:    opts.Ports,
		Detailed: opts.Detailed,
	})
	svg, hit, err := cache.Fetch(r.Context(), s.cache, key, "artifact", s.ttl, func() ([]byte, error) {
		return nodelink.RenderSVG(r.Context(), dot)
	})
	if err != nil {
		writeError(w, errors.Wrap(errors.ErrCodeInternal, err, "render svg"))
		return
	}

	w.Header().Set("Content-Type", "image/svg+xml")
	if hit {
		w.Header().Set("X-Cache", "hit")
	} else {
		w.Header().Set("X-Cache", "miss")
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(svg)
}

// loadGraph decodes, validates and deserializes the request body.
func (s *Server) loadGraph(r *http.Request) (*graph.Graph, graph.LoadReport, graph.Document, error) {
	data, err := io.ReadAll(io.LimitReader(r.Body, MaxDocumentBytes+1))
	if err != nil {
		return nil, graph.LoadReport{}, graph.Document{}, errors.Wrap(errors.ErrCodeInvalidInput, err, "read body")
	}
	if len(data) > MaxDocumentBytes {
		return nil, graph.LoadReport{}, graph.Document{}, errors.New(errors.ErrCodeInvalidInput, "document exceeds %d bytes", MaxDocumentBytes)
	}

	doc, err := graph.ReadDocument(bytes.NewReader(data), graph.FormatJSON)
	if err != nil {
		return nil, graph.LoadReport{}, graph.Document{}, errors.FromLoad(err)
	}
	if err := errors.ValidateDocument(doc); err != nil {
		return nil, graph.LoadReport{}, graph.Document{}, err
	}

	g := graph.New(graph.WithLogger(s.logger))
	report, err := g.Deserialize(doc, s.reg)
	if err != nil {
		return nil, graph.LoadReport{}, graph.Document{}, errors.FromLoad(err)
	}
	return g, report, doc, nil
}

func skipped(report graph.LoadReport) []SkippedNode {
	if len(report.Skipped) == 0 {
		return nil
	}
	out := make([]SkippedNode, len(report.Skipped))
	for i, sk := range report.Skipped {
		out[i] = SkippedNode{ID: sk.ID, Name: sk.Name, Reason: sk.Reason}
	}
	return out
}

func summarize(pubs []node.Publication) []node.Publication {
	for i := range pubs {
		pubs[i].Value = nodes.Summarize(pubs[i].Value)
	}
	return pubs
}

func nonNil(ids []string) []string {
	if ids == nil {
		return []string{}
	}
	return ids
}

func runStatus(s engine.Status) int {
	switch s {
	case engine.StatusSucceeded:
		return http.StatusOK
	case engine.StatusCycleDetected, engine.StatusNodeFailed:
		return http.StatusUnprocessableEntity
	case engine.StatusCanceled:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
