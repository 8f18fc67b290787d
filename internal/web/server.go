package web

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/gorilla/mux"

	"github.com/enzymefinance/maple-position/internal/logger"
	"github.com/enzymefinance/maple-position/internal/position"
	"github.com/enzymefinance/maple-position/internal/state"
)

var webLogger = logger.GetForComponent("web_server")

// WebServer exposes a read-only HTTP view of the served positions and their
// audit trail. It never mutates position state; all writes go through the
// vault dispatch path.
type WebServer struct {
	router    *mux.Router
	port      string
	positions *position.Registry
}

// NewWebServer creates a new web server instance.
func NewWebServer(port string, positions *position.Registry) *WebServer {
	if port == "" {
		port = "8080"
	}

	server := &WebServer{
		router:    mux.NewRouter(),
		port:      port,
		positions: positions,
	}

	server.setupRoutes()
	return server
}

// setupRoutes configures all HTTP routes
func (ws *WebServer) setupRoutes() {
	// Health endpoint (direct route)
	ws.router.HandleFunc("/health", ws.handleHealth).Methods("GET")

	// API endpoints
	api := ws.router.PathPrefix("/api").Subrouter()
	api.HandleFunc("/health", ws.handleHealth).Methods("GET")
	api.HandleFunc("/positions", ws.handleGetPositions).Methods("GET")
	api.HandleFunc("/positions/{address}", ws.handleGetPosition).Methods("GET")
	api.HandleFunc("/positions/{address}/managed-assets", ws.handleGetManagedAssets).Methods("GET")
	api.HandleFunc("/positions/{address}/receipts", ws.handleGetReceipts).Methods("GET")
	api.HandleFunc("/positions/{address}/snapshots", ws.handleGetSnapshots).Methods("GET")

	// Add CORS middleware
	ws.router.Use(ws.corsMiddleware)
	ws.router.Use(ws.loggingMiddleware)
}

// Start starts the web server
func (ws *WebServer) Start() error {
	webLogger.Info().Str("port", ws.port).Msg("Starting web server")

	server := &http.Server{
		Addr:         ":" + ws.port,
		Handler:      ws.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return server.ListenAndServe()
}

// handleHealth returns server health status
func (ws *WebServer) handleHealth(w http.ResponseWriter, r *http.Request) {
	dbHealthy := true
	if err := state.TestDBConnection(); err != nil {
		dbHealthy = false
	}

	status := "OK"
	statusCode := http.StatusOK
	if !dbHealthy {
		status = "DEGRADED"
		statusCode = http.StatusServiceUnavailable
	}

	response := map[string]interface{}{
		"status":    status,
		"timestamp": time.Now().UTC().Format(time.RFC3339Nano),
		"component": map[string]interface{}{
			"name":    "maple-position-engine",
			"version": "1.0.0",
		},
		"database_healthy": dbHealthy,
		"position_count":   len(ws.positions.List()),
	}

	ws.writeJSONResponse(w, statusCode, response)
}

// handleGetPositions returns all served positions with their used pools
func (ws *WebServer) handleGetPositions(w http.ResponseWriter, r *http.Request) {
	all := ws.positions.List()

	entries := make([]map[string]interface{}, 0, len(all))
	for _, p := range all {
		pools := p.UsedPools()
		poolsHex := make([]string, 0, len(pools))
		for _, pool := range pools {
			poolsHex = append(poolsHex, pool.Hex())
		}
		entries = append(entries, map[string]interface{}{
			"address":    p.Address().Hex(),
			"vault":      p.Vault().Hex(),
			"used_pools": poolsHex,
		})
	}

	response := map[string]interface{}{
		"positions": entries,
		"count":     len(entries),
	}

	ws.writeJSONResponse(w, http.StatusOK, response)
}

// handleGetPosition returns one position's summary
func (ws *WebServer) handleGetPosition(w http.ResponseWriter, r *http.Request) {
	p, ok := ws.resolvePosition(w, r)
	if !ok {
		return
	}

	pools := p.UsedPools()
	poolsHex := make([]string, 0, len(pools))
	for _, pool := range pools {
		poolsHex = append(poolsHex, pool.Hex())
	}

	response := map[string]interface{}{
		"address":    p.Address().Hex(),
		"vault":      p.Vault().Hex(),
		"used_pools": poolsHex,
	}

	ws.writeJSONResponse(w, http.StatusOK, response)
}

// handleGetManagedAssets returns a freshly computed valuation for one position
func (ws *WebServer) handleGetManagedAssets(w http.ResponseWriter, r *http.Request) {
	p, ok := ws.resolvePosition(w, r)
	if !ok {
		return
	}

	assets, err := p.GetManagedAssets(r.Context())
	if err != nil {
		webLogger.Error().Err(err).Str("position", p.Address().Hex()).Msg("Failed to value position")
		ws.writeErrorResponse(w, http.StatusInternalServerError, "Failed to compute managed assets")
		return
	}

	response := map[string]interface{}{
		"position":       p.Address().Hex(),
		"managed_assets": assets,
		"timestamp":      time.Now().UTC(),
	}

	ws.writeJSONResponse(w, http.StatusOK, response)
}

// handleGetReceipts returns recent action receipts for one position
func (ws *WebServer) handleGetReceipts(w http.ResponseWriter, r *http.Request) {
	p, ok := ws.resolvePosition(w, r)
	if !ok {
		return
	}

	receipts, err := state.GetRecentReceipts(p.Address(), ws.parseLimit(r))
	if err != nil {
		webLogger.Error().Err(err).Msg("Failed to get recent receipts")
		ws.writeErrorResponse(w, http.StatusInternalServerError, "Failed to retrieve receipts")
		return
	}

	response := map[string]interface{}{
		"receipts": receipts,
		"count":    len(receipts),
	}

	ws.writeJSONResponse(w, http.StatusOK, response)
}

// handleGetSnapshots returns recent valuation snapshots for one position
func (ws *WebServer) handleGetSnapshots(w http.ResponseWriter, r *http.Request) {
	p, ok := ws.resolvePosition(w, r)
	if !ok {
		return
	}

	snapshots, err := state.GetRecentSnapshots(p.Address(), ws.parseLimit(r))
	if err != nil {
		webLogger.Error().Err(err).Msg("Failed to get recent snapshots")
		ws.writeErrorResponse(w, http.StatusInternalServerError, "Failed to retrieve snapshots")
		return
	}

	response := map[string]interface{}{
		"snapshots": snapshots,
		"count":     len(snapshots),
	}

	ws.writeJSONResponse(w, http.StatusOK, response)
}

// resolvePosition extracts and validates the {address} path variable. A
// false return means the response has already been written.
func (ws *WebServer) resolvePosition(w http.ResponseWriter, r *http.Request) (*position.ExternalPosition, bool) {
	addrStr := mux.Vars(r)["address"]
	if !common.IsHexAddress(addrStr) {
		ws.writeErrorResponse(w, http.StatusBadRequest, "Invalid position address")
		return nil, false
	}

	p, ok := ws.positions.Get(common.HexToAddress(addrStr))
	if !ok {
		ws.writeErrorResponse(w, http.StatusNotFound, "Position not found")
		return nil, false
	}
	return p, true
}

func (ws *WebServer) parseLimit(r *http.Request) int {
	limit := 20
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		if parsedLimit, err := strconv.Atoi(limitStr); err == nil && parsedLimit > 0 && parsedLimit <= 100 {
			limit = parsedLimit
		}
	}
	return limit
}

// writeJSONResponse writes a JSON response
func (ws *WebServer) writeJSONResponse(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		webLogger.Error().Err(err).Msg("Failed to encode JSON response")
	}
}

// writeErrorResponse writes an error response
func (ws *WebServer) writeErrorResponse(w http.ResponseWriter, statusCode int, message string) {
	response := map[string]interface{}{
		"error":     true,
		"message":   message,
		"timestamp": time.Now().UTC(),
	}

	ws.writeJSONResponse(w, statusCode, response)
}

// corsMiddleware adds CORS headers
func (ws *WebServer) corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// loggingMiddleware logs HTTP requests
func (ws *WebServer) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		wrapper := &responseWriterWrapper{ResponseWriter: w, statusCode: http.StatusOK}

		next.ServeHTTP(wrapper, r)

		webLogger.Info().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Str("remote_addr", r.RemoteAddr).
			Int("status", wrapper.statusCode).
			Dur("duration", time.Since(start)).
			Msg("HTTP request")
	})
}

// responseWriterWrapper captures the status code for request logging
type responseWriterWrapper struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriterWrapper) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}
