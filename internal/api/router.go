package api

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/ronnydonkey/scatterbrain-ai/internal/api/recovery"
	"github.com/ronnydonkey/scatterbrain-ai/internal/auth"
	"github.com/ronnydonkey/scatterbrain-ai/internal/personas"
	"github.com/ronnydonkey/scatterbrain-ai/internal/services"
)

// Deps carries everything the HTTP surface needs.
type Deps struct {
	Directory  *personas.Directory
	Board      *services.BoardService
	AutoSaver  *services.AutoSaver
	Synthesis  *services.SynthesisService
	Demo       *services.DemoService
	Verifier   auth.Verifier
	Health     HealthSource
	Gatherer   prometheus.Gatherer // nil disables /metrics
	CORSOrigin string
	Log        zerolog.Logger
}

// NewRouter wires HTTP routes to handlers.
func NewRouter(d Deps) *mux.Router {
	verifier := d.Verifier
	if verifier == nil {
		verifier = auth.DisabledVerifier{}
	}

	root := mux.NewRouter()
	root.Use(recovery.Middleware(d.Log))
	root.Use(RequestLogger(d.Log))
	root.Use(CORS(d.CORSOrigin))
	root.Use(auth.OptionalUser(verifier, d.Log))

	// Preflight for every path; CORS answers it before any handler runs.
	root.Methods(http.MethodOptions).HandlerFunc(func(w http.ResponseWriter, r *http.Request) {})

	// Oracle endpoints
	synth := NewSynthesisHandler(d.Synthesis, d.Log)
	demo := NewDemoHandler(d.Demo, d.Log)
	root.HandleFunc("/board-synthesis", synth.Synthesize).Methods("POST")
	root.HandleFunc("/synthesize-demo", demo.Analyze).Methods("POST")

	// Persona directory
	ph := NewPersonaHandler(d.Directory)
	root.HandleFunc("/api/personas", ph.ListPersonas).Methods("GET")
	root.HandleFunc("/api/personas/{personaId}", ph.GetPersona).Methods("GET")

	// Board store
	board := NewBoardHandler(d.Board, d.AutoSaver, d.Log)
	root.HandleFunc("/api/board", board.GetBoard).Methods("GET")
	root.HandleFunc("/api/board", board.PutBoard).Methods("PUT")
	root.HandleFunc("/api/board/custom-personas", board.CreateCustomPersona).Methods("POST")
	root.HandleFunc("/api/board/custom-personas/{personaId}", board.DeleteCustomPersona).Methods("DELETE")
	root.HandleFunc("/api/board/templates", board.ListTemplates).Methods("GET")
	root.HandleFunc("/api/board/templates/{templateId}/apply", board.ApplyTemplate).Methods("POST")

	// Health
	healthHandler := NewHealthHandler(d.Health)
	root.HandleFunc("/api/health", healthHandler.CheckHealth).Methods("GET")

	if d.Gatherer != nil {
		root.Handle("/metrics", promhttp.HandlerFor(d.Gatherer, promhttp.HandlerOpts{})).Methods("GET")
	}
	return root
}
