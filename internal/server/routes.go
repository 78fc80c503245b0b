package server

import "net/http"

// setupRoutes configures all HTTP routes
func (s *Server) setupRoutes() *http.ServeMux {
	mux := http.NewServeMux()

	// Pub/sub: delta frame subscription
	mux.HandleFunc("/ws", s.app.WSHandler.HandleWebSocket)

	// Request/reply: commands, snapshot and introspection
	mux.HandleFunc("/api/command", s.app.APIHandler.CommandHandler)
	mux.HandleFunc("/api/workflow", s.app.APIHandler.WorkflowHandler)
	mux.HandleFunc("/api/status", s.app.APIHandler.StatusHandler)

	return mux
}
