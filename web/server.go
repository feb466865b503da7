// Package web serves the live position viewer: a websocket stream of
// estimates plus the static frontend and the active tuning profile.
package web

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"
)

type Server struct {
	Hub *Hub

	// TagProvider supplies the current per-tag state for the /tags
	// endpoint. Nil disables the endpoint.
	TagProvider func() interface{}
}

func NewServer() *Server {
	return &Server{Hub: NewHub()}
}

// Start serves forever. distDir holds the built frontend (empty disables),
// profilePath is exposed verbatim at /profile.xml so viewers can show the
// active tuning.
func (s *Server) Start(port int, distDir string, profilePath string) {
	go s.Hub.Run()

	mux := http.NewServeMux()

	mux.HandleFunc("/ws", func(w http.ResponseWriter, r *http.Request) {
		serveWs(s.Hub, w, r)
	})

	if profilePath != "" {
		mux.HandleFunc("/profile.xml", func(w http.ResponseWriter, r *http.Request) {
			http.ServeFile(w, r, profilePath)
		})
	}

	if s.TagProvider != nil {
		mux.HandleFunc("/tags", func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			if err := json.NewEncoder(w).Encode(s.TagProvider()); err != nil {
				log.Printf("web: encode tags: %v", err)
			}
		})
	}

	if distDir != "" {
		mux.Handle("/", http.FileServer(http.Dir(distDir)))
	}

	addr := fmt.Sprintf(":%d", port)
	log.Printf("HTTP server listening on %s", addr)
	if err := http.ListenAndServe(addr, mux); err != nil {
		log.Fatalf("HTTP server error: %v", err)
	}
}
