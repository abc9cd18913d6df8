// Package httpapi is the thin HTTP boundary mentioned in §2 ("most is
// thin HTTP/service glue"): request decoding and routing only. It
// calls straight through to the Graph Store's mutation operations and
// the Fan-Out's subscribe/publish operations; it carries none of the
// core's invariants itself.
package httpapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/Samarth061/wolf-trace-backend/internal/alerts"
	"github.com/Samarth061/wolf-trace-backend/internal/eventbus"
	"github.com/Samarth061/wolf-trace-backend/internal/fanout"
	"github.com/Samarth061/wolf-trace-backend/internal/graphstore"
	"github.com/Samarth061/wolf-trace-backend/internal/logging"
)

var (
	errNoAlertStream = errors.New("alert stream not wired")
	errNoCaseboard   = errors.New("caseboard stream not wired")
	errInternal      = errors.New("internal error")
)

// Server wires the Graph Store and the two Fan-Out streams behind a
// gorilla/mux router. It also emits the non-graph domain events the
// event bus carries (§4.1): ReportReceived after a report is
// accepted, edge:created after a manually drawn edge.
type Server struct {
	store       *graphstore.Store
	caseboard   *fanout.Caseboard
	alertStream *fanout.AlertStream
	bus         *eventbus.Bus
	logger      *logging.Logger
	router      *mux.Router
}

// New builds the router. caseboard/alertStream may be nil in which
// case their endpoints answer 501 Not Implemented (e.g. a test harness that only exercises
// the graph/controller path). bus may be nil, in which case no
// domain events are emitted.
func New(store *graphstore.Store, caseboard *fanout.Caseboard, alertStream *fanout.AlertStream, bus *eventbus.Bus) *Server {
	s := &Server{
		store:       store,
		caseboard:   caseboard,
		alertStream: alertStream,
		bus:         bus,
		logger:      logging.With("component", "httpapi"),
	}
	s.router = mux.NewRouter()
	s.router.Use(s.recoverMiddleware)
	s.routes()
	return s
}

// recoverMiddleware stops a handler panic from taking down the whole
// process, matching the tolerate-and-log posture the rest of the core
// takes toward failure (§7).
func (s *Server) recoverMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				s.logger.Error("http handler panicked", "path", r.URL.Path, "error", fmt.Sprintf("%v", rec))
				writeError(w, http.StatusInternalServerError, errInternal)
			}
		}()
		next.ServeHTTP(w, r)
	})
}

func (s *Server) routes() {
	s.router.HandleFunc("/healthz", s.handleHealth).Methods(http.MethodGet)

	s.router.HandleFunc("/cases", s.handleAllCases).Methods(http.MethodGet)
	s.router.HandleFunc("/cases/{case_id}", s.handleCaseSnapshot).Methods(http.MethodGet)
	s.router.HandleFunc("/cases/{case_id}/metadata", s.handleSetCaseMetadata).Methods(http.MethodPut)
	s.router.HandleFunc("/cases/{case_id}/reports", s.handleAddReport).Methods(http.MethodPost)

	s.router.HandleFunc("/nodes", s.handleAddNode).Methods(http.MethodPost)
	s.router.HandleFunc("/nodes/{node_id}", s.handleUpdateNode).Methods(http.MethodPatch)
	s.router.HandleFunc("/edges", s.handleAddEdge).Methods(http.MethodPost)

	s.router.HandleFunc("/streams/caseboard", s.handleCaseboardStream).Methods(http.MethodGet)
	s.router.HandleFunc("/streams/alerts", s.handleAlertStream).Methods(http.MethodGet)
	s.router.HandleFunc("/alerts", s.handlePublishAlert).Methods(http.MethodPost)
}

// ServeHTTP satisfies http.Handler so Server can be handed straight to
// http.Server.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleAllCases(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.store.AllCases())
}

func (s *Server) handleCaseSnapshot(w http.ResponseWriter, r *http.Request) {
	caseID := mux.Vars(r)["case_id"]
	writeJSON(w, http.StatusOK, s.store.CaseSnapshot(caseID))
}

type setMetadataRequest struct {
	Label   string         `json:"label"`
	Status  string         `json:"status"`
	Summary string         `json:"summary"`
	Fields  map[string]any `json:"fields"`
}

func (s *Server) handleSetCaseMetadata(w http.ResponseWriter, r *http.Request) {
	caseID := mux.Vars(r)["case_id"]
	var req setMetadataRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	fields := req.Fields
	if fields == nil {
		fields = make(map[string]any)
	}
	if req.Label != "" {
		fields["label"] = req.Label
	}
	if req.Status != "" {
		fields["status"] = req.Status
	}
	if req.Summary != "" {
		fields["summary"] = req.Summary
	}
	s.store.SetCaseMetadata(caseID, fields)
	writeJSON(w, http.StatusNoContent, nil)
}

type addReportRequest struct {
	ReportID string         `json:"report_id"`
	Data     map[string]any `json:"data"`
}

// handleAddReport is the intake boundary (§3 "Lifecycle: created by a
// mutation"): it first creates the report node, whose AddNode
// mutation record is what actually triggers the reactive cascade
// (clustering, forensics, network), then registers the report in the
// per-case report index via add_report (§4.2) — a bookkeeping step
// that produces no mutation record of its own.
func (s *Server) handleAddReport(w http.ResponseWriter, r *http.Request) {
	caseID := mux.Vars(r)["case_id"]
	var req addReportRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	node, err := s.store.AddNode(graphstore.KindReport, caseID, req.Data, "")
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, err)
		return
	}
	if err := s.store.AddReport(caseID, req.ReportID, req.Data, node.ID); err != nil {
		writeError(w, http.StatusUnprocessableEntity, err)
		return
	}
	if s.bus != nil {
		s.bus.Emit("ReportReceived", map[string]string{"case_id": caseID, "report_id": req.ReportID, "node_id": node.ID})
	}
	writeJSON(w, http.StatusCreated, node)
}

type addNodeRequest struct {
	Kind   graphstore.NodeKind `json:"kind"`
	CaseID string              `json:"case_id"`
	Data   map[string]any      `json:"data"`
	ID     string              `json:"id"`
}

func (s *Server) handleAddNode(w http.ResponseWriter, r *http.Request) {
	var req addNodeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	node, err := s.store.AddNode(req.Kind, req.CaseID, req.Data, req.ID)
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, err)
		return
	}
	writeJSON(w, http.StatusCreated, node)
}

type updateNodeRequest struct {
	Patch map[string]any `json:"patch"`
}

func (s *Server) handleUpdateNode(w http.ResponseWriter, r *http.Request) {
	nodeID := mux.Vars(r)["node_id"]
	var req updateNodeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	node, err := s.store.UpdateNode(nodeID, req.Patch)
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, err)
		return
	}
	writeJSON(w, http.StatusOK, node)
}

type addEdgeRequest struct {
	Kind     graphstore.EdgeKind `json:"kind"`
	SourceID string              `json:"source_id"`
	TargetID string              `json:"target_id"`
	Data     map[string]any      `json:"data"`
}

func (s *Server) handleAddEdge(w http.ResponseWriter, r *http.Request) {
	var req addEdgeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	edge, err := s.store.AddEdge(req.Kind, req.SourceID, req.TargetID, req.Data)
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, err)
		return
	}
	if s.bus != nil {
		s.bus.Emit("edge:created", edge)
	}
	writeJSON(w, http.StatusCreated, edge)
}

type publishAlertRequest struct {
	CaseID   string          `json:"case_id"`
	Severity alerts.Severity `json:"severity"`
	Message  string          `json:"message"`
	Data     map[string]any  `json:"data"`
}

// handlePublishAlert is a manual trigger for the alert stream; real
// alert publication logic is out of scope (§6), this just gives the
// stream something to carry in a demo or test.
func (s *Server) handlePublishAlert(w http.ResponseWriter, r *http.Request) {
	if s.alertStream == nil {
		writeError(w, http.StatusNotImplemented, errNoAlertStream)
		return
	}
	var req publishAlertRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	s.alertStream.Publish(alerts.Alert{
		ID:       "AL-" + uuid.NewString(),
		CaseID:   req.CaseID,
		Severity: req.Severity,
		Message:  req.Message,
		Data:     req.Data,
	})
	writeJSON(w, http.StatusAccepted, nil)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v == nil {
		return
	}
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, map[string]string{"error": err.Error()})
}
