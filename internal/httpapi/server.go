package httpapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"strings"

	"mailrelay/config"
	"mailrelay/internal/relay"
	"mailrelay/internal/store"

	"github.com/gorilla/mux"
)

// Server represents the HTTP API server
type Server struct {
	config *config.Config
	store  store.Store
	relay  *relay.Relay
}

// NewServer creates a new HTTP API server
func NewServer(cfg *config.Config, st store.Store, rl *relay.Relay) *Server {
	return &Server{
		config: cfg,
		store:  st,
		relay:  rl,
	}
}

// routes builds the request router
func (s *Server) routes() *mux.Router {
	router := mux.NewRouter()

	// CORS middleware
	router.Use(s.corsMiddleware)

	router.HandleFunc("/", s.handleWelcome).Methods("GET")
	router.HandleFunc("/users", s.handleListUsers).Methods("GET", "OPTIONS")
	router.HandleFunc("/register", s.handleRegister).Methods("POST", "OPTIONS")
	router.HandleFunc("/login", s.handleLogin).Methods("POST", "OPTIONS")
	router.HandleFunc("/messages", s.handleSendMessage).Methods("POST", "OPTIONS")
	router.HandleFunc("/messages/check/{user_id}", s.handleCheckMessages).Methods("GET", "OPTIONS")

	return router
}

// Start starts the HTTP server
func (s *Server) Start() error {
	log.Printf("🚀 HTTP API server starting on :%s", s.config.HTTPPort)
	return http.ListenAndServe(":"+s.config.HTTPPort, s.routes())
}

// corsMiddleware allows any origin; the original ran allow-all CORS for
// development and this API carries no credentials.
func (s *Server) corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// writeJSON writes a JSON response with the given status code
func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(payload)
}

// writeError writes a structured JSON error response
func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, map[string]interface{}{
		"success": false,
		"error":   code,
		"message": message,
	})
}

// isValidEmail checks if an email address is valid, allowing localhost domains
func isValidEmail(email string) bool {
	parts := strings.Split(email, "@")
	if len(parts) != 2 {
		return false
	}
	return parts[0] != "" && parts[1] != ""
}

// handleWelcome returns the static welcome payload
func (s *Server) handleWelcome(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"message": "Welcome to the Mail Relay API",
	})
}

// handleListUsers returns the full user list
func (s *Server) handleListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := s.store.List()
	if err != nil {
		log.Printf("Failed to list users: %v", err)
		writeError(w, http.StatusInternalServerError, "store_failure", "Failed to list users")
		return
	}
	writeJSON(w, http.StatusOK, users)
}

// RegisterRequest represents a user registration request
type RegisterRequest struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

// handleRegister handles user registration
func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json",
			fmt.Sprintf("Failed to parse JSON request: %v", err))
		return
	}

	if req.Name == "" {
		writeError(w, http.StatusBadRequest, "missing_name", "Name is required")
		return
	}
	if !isValidEmail(req.Email) {
		writeError(w, http.StatusBadRequest, "invalid_email",
			fmt.Sprintf("Invalid email format: %s", req.Email))
		return
	}

	user, err := s.store.Register(req.Name, req.Email)
	if err != nil {
		if errors.Is(err, store.ErrEmailTaken) {
			writeError(w, http.StatusBadRequest, "email_exists", "Email already registered")
			return
		}
		log.Printf("Failed to register user: %v", err)
		writeError(w, http.StatusInternalServerError, "registration_failed",
			"Failed to register user")
		return
	}

	writeJSON(w, http.StatusCreated, user)
}

// LoginRequest represents a login request
type LoginRequest struct {
	Email string `json:"email"`
}

// handleLogin handles login by email lookup. There is no credential; the
// matching record is the whole session.
func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json",
			fmt.Sprintf("Failed to parse JSON request: %v", err))
		return
	}

	if req.Email == "" {
		writeError(w, http.StatusBadRequest, "missing_email", "Email is required")
		return
	}

	user, err := s.store.GetByEmail(req.Email)
	if err != nil {
		if errors.Is(err, store.ErrUserNotFound) {
			writeError(w, http.StatusNotFound, "user_not_found", "No user with that email")
			return
		}
		log.Printf("Failed to look up user: %v", err)
		writeError(w, http.StatusInternalServerError, "store_failure", "Failed to look up user")
		return
	}

	writeJSON(w, http.StatusOK, user)
}

// SendMessageRequest represents a request to send a message
type SendMessageRequest struct {
	SenderID   int    `json:"sender_id"`
	ReceiverID int    `json:"receiver_id"`
	Subject    string `json:"subject"`
	Content    string `json:"content"`
}

// handleSendMessage publishes a message to the receiver's queue
func (s *Server) handleSendMessage(w http.ResponseWriter, r *http.Request) {
	var req SendMessageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json",
			fmt.Sprintf("Failed to parse JSON request: %v", err))
		return
	}

	if req.SenderID <= 0 || req.ReceiverID <= 0 {
		writeError(w, http.StatusBadRequest, "missing_participant",
			"sender_id and receiver_id are required")
		return
	}

	msg, err := s.relay.Send(r.Context(), req.SenderID, req.ReceiverID, req.Subject, req.Content)
	if err != nil {
		if errors.Is(err, store.ErrUserNotFound) {
			writeError(w, http.StatusNotFound, "user_not_found", "Sender or receiver not found")
			return
		}
		log.Printf("Failed to send message: %v", err)
		writeError(w, http.StatusInternalServerError, "send_failed", "Message could not be sent")
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"status":  "Message sent successfully",
		"id":      msg.ID,
	})
}

// handleCheckMessages drains the user's queue and returns everything waiting
func (s *Server) handleCheckMessages(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	userID, err := strconv.Atoi(vars["user_id"])
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_user_id",
			fmt.Sprintf("Invalid user id: %s", vars["user_id"]))
		return
	}

	messages, err := s.relay.CheckAll(r.Context(), userID)
	if err != nil {
		if errors.Is(err, store.ErrUserNotFound) {
			writeError(w, http.StatusNotFound, "user_not_found", "User not found")
			return
		}
		log.Printf("Failed to check messages: %v", err)
		writeError(w, http.StatusInternalServerError, "check_failed",
			"Messages could not be checked")
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":   "ok",
		"messages": messages,
	})
}
