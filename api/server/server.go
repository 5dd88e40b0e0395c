package server

import (
	"encoding/json"
	"log"
	"net/http"
	"os"

	// Optional local overrides; real deployments set the environment.
	_ "github.com/joho/godotenv/autoload"

	"stakechain/core/chain"
	"stakechain/core/storage"
)

var (
	jwtSecret  = os.Getenv("JWT_SECRET")  // signs admin bearer tokens
	serverPort = os.Getenv("SERVER_PORT") // default 8080
)

// Server is the thin HTTP surface over the chain. It adds no semantics
// of its own: every handler maps one route to one core operation.
type Server struct {
	chain      *chain.Chain
	store      *storage.Store // optional; nil disables persistence endpoints
	ListenAddr string
}

func NewServer(c *chain.Chain, store *storage.Store, listenAddr string) *Server {
	if listenAddr == "" {
		port := serverPort
		if port == "" {
			port = "8080"
		}
		listenAddr = ":" + port
	}
	return &Server{chain: c, store: store, ListenAddr: listenAddr}
}

// Routes builds the handler tree.
func (s *Server) Routes() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("POST /api/tx", s.handleSubmitTx)
	mux.HandleFunc("POST /api/account", s.handleCreateAccount)
	mux.HandleFunc("POST /api/stake", s.handleStake)
	mux.HandleFunc("POST /api/unstake", s.handleUnstake)
	mux.HandleFunc("POST /api/unstake/complete", s.handleCompleteUnstaking)

	mux.HandleFunc("GET /api/balance/{address}", s.handleBalance)
	mux.HandleFunc("GET /api/block/{index}", s.handleBlockByIndex)
	mux.HandleFunc("GET /api/block/hash/{hash}", s.handleBlockByHash)
	mux.HandleFunc("GET /api/tx/{id}", s.handleGetTx)
	mux.HandleFunc("GET /api/mempool", s.handleMempool)
	mux.HandleFunc("GET /api/chain/validate", s.handleValidate)
	mux.HandleFunc("GET /api/stats", s.handleStats)
	mux.HandleFunc("GET /api/validators", s.handleValidators)
	mux.HandleFunc("GET /api/delegations/{address}", s.handleDelegations)
	mux.HandleFunc("GET /api/export", s.handleExport)
	mux.HandleFunc("GET /api/swap/pairs", s.handleSwapPairs)

	mux.HandleFunc("POST /api/admin/mine", s.requireJWT(s.handleMine))
	mux.HandleFunc("POST /api/admin/burn", s.requireJWT(s.handleBurn))
	mux.HandleFunc("POST /api/admin/swap/pair", s.requireJWT(s.handleCreateSwapPair))

	mux.HandleFunc("GET /health", s.handleHealth)
	mux.HandleFunc("GET /metrics", s.handleMetrics)

	return mux
}

// Start serves until the listener fails.
func (s *Server) Start() error {
	log.Printf("[api] listening on %s", s.ListenAddr)
	return http.ListenAndServe(s.ListenAddr, s.Routes())
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

type errorResponse struct {
	Error string `json:"error"`
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, errorResponse{Error: err.Error()})
}
