// Package server exposes generation over HTTP as server-sent events.
package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/temirov/uistream/internal/binding"
	"github.com/temirov/uistream/internal/datasource"
	"github.com/temirov/uistream/internal/generation"
	"github.com/temirov/uistream/internal/output"
)

const (
	defaultListenAddress    = "127.0.0.1:8000"
	defaultShutdownDuration = 5 * time.Second
	maxRequestBodyBytes     = 1 << 20
	eventBufferSize         = 16

	headerContentType      = "Content-Type"
	headerCacheControl     = "Cache-Control"
	headerConnection       = "Connection"
	headerRequestID        = "X-Request-Id"
	headerOrigin           = "Origin"
	headerVary             = "Vary"
	headerAllowOrigin      = "Access-Control-Allow-Origin"
	headerAllowCredentials = "Access-Control-Allow-Credentials"
	headerAllowMethods     = "Access-Control-Allow-Methods"
	headerAllowHeaders     = "Access-Control-Allow-Headers"
	mimeTypeJSON           = "application/json"
	mimeTypeEventStream    = "text/event-stream"
	allowedMethods         = "GET, POST, OPTIONS"
	allowedHeaders         = "Content-Type, Authorization"
	wildcardOrigin         = "*"

	healthPath   = "/health"
	sourcesPath  = "/api/sources"
	generatePath = "/api/generate"

	errorFieldName        = "error"
	errorEmptyQuery       = "query or references are required"
	errorStreamingUnavail = "streaming unsupported by response writer"
)

// LoopFactory builds a fresh single-use loop for one request.
type LoopFactory func(requestID string) *generation.Loop

// GenerateRequest is the body of POST /api/generate.
type GenerateRequest struct {
	Query      string   `json:"query"`
	References []string `json:"references,omitempty"`
}

// StatusError represents a failure accompanied by an HTTP status code.
type StatusError struct {
	statusCode int
	err        error
}

// Error returns the error string.
func (statusError StatusError) Error() string {
	return statusError.err.Error()
}

// Unwrap exposes the wrapped error.
func (statusError StatusError) Unwrap() error {
	return statusError.err
}

// StatusCode reports the associated HTTP status code.
func (statusError StatusError) StatusCode() int {
	return statusError.statusCode
}

// NewStatusError creates a new StatusError.
func NewStatusError(statusCode int, err error) error {
	if err == nil {
		return nil
	}
	return StatusError{statusCode: statusCode, err: err}
}

// Config defines runtime options for the server.
type Config struct {
	Address         string
	ShutdownTimeout time.Duration
	CORSOrigins     []string
	Data            datasource.Provider
	NewLoop         LoopFactory
	Logger          *zap.Logger
}

// Server streams generation events to HTTP clients.
type Server struct {
	config Config
}

// NewServer creates a new Server with defaults applied.
func NewServer(config Config) Server {
	normalized := config
	if normalized.Address == "" {
		normalized.Address = defaultListenAddress
	}
	if normalized.ShutdownTimeout <= 0 {
		normalized.ShutdownTimeout = defaultShutdownDuration
	}
	if normalized.Data == nil {
		normalized.Data = datasource.StaticProvider{Data: datasource.Sample()}
	}
	if normalized.Logger == nil {
		normalized.Logger = zap.NewNop()
	}
	return Server{config: normalized}
}

// Handler returns the routed handler with CORS applied.
func (server Server) Handler() http.Handler {
	router := http.NewServeMux()
	router.HandleFunc(healthPath, server.handleHealth)
	router.HandleFunc(sourcesPath, server.handleSources)
	router.HandleFunc(generatePath, server.handleGenerate)
	return server.withCORS(router)
}

// Run starts the server and blocks until the provided context is canceled.
// The notify callback receives the bound address once the listener is active.
func (server Server) Run(ctx context.Context, notify func(string)) error {
	listener, listenErr := net.Listen("tcp", server.config.Address)
	if listenErr != nil {
		return fmt.Errorf("listen on %s: %w", server.config.Address, listenErr)
	}
	actualAddress := listener.Addr().String()

	httpServer := &http.Server{Handler: server.Handler(), ReadHeaderTimeout: 10 * time.Second}
	group, groupCtx := errgroup.WithContext(ctx)

	group.Go(func() error {
		serveErr := httpServer.Serve(listener)
		if serveErr != nil && !errors.Is(serveErr, http.ErrServerClosed) {
			return fmt.Errorf("serve http: %w", serveErr)
		}
		return nil
	})

	server.config.Logger.Info("server listening", zap.String("address", actualAddress))
	if notify != nil {
		notify(actualAddress)
	}

	group.Go(func() error {
		<-groupCtx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), server.config.ShutdownTimeout)
		defer cancel()
		shutdownErr := httpServer.Shutdown(shutdownCtx)
		if shutdownErr != nil && !errors.Is(shutdownErr, context.Canceled) && !errors.Is(shutdownErr, http.ErrServerClosed) {
			return fmt.Errorf("shutdown http: %w", shutdownErr)
		}
		return nil
	})

	return group.Wait()
}

func (server Server) handleHealth(writer http.ResponseWriter, request *http.Request) {
	if request.Method != http.MethodGet {
		writer.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	server.writeJSON(writer, http.StatusOK, map[string]string{"status": "ok"})
}

func (server Server) handleSources(writer http.ResponseWriter, request *http.Request) {
	if request.Method != http.MethodGet {
		writer.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	graph, err := server.config.Data.Graph(request.Context())
	if err != nil {
		server.writeError(writer, err)
		return
	}
	payload := struct {
		Sources     []string `json:"sources"`
		Description string   `json:"description"`
	}{Sources: graph.Sources(), Description: binding.Describe(graph)}
	server.writeJSON(writer, http.StatusOK, payload)
}

func (server Server) handleGenerate(writer http.ResponseWriter, request *http.Request) {
	if request.Method != http.MethodPost {
		writer.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	generateRequest, decodeErr := decodeGenerateRequest(request.Body)
	if decodeErr != nil {
		server.writeError(writer, decodeErr)
		return
	}
	if server.config.NewLoop == nil {
		server.writeError(writer, NewStatusError(http.StatusServiceUnavailable, errors.New("generation is not configured")))
		return
	}
	flusher, canFlush := writer.(http.Flusher)
	if !canFlush {
		server.writeError(writer, errors.New(errorStreamingUnavail))
		return
	}

	requestID := uuid.NewString()
	loop := server.config.NewLoop(requestID)
	logger := server.config.Logger.With(zap.String("request_id", loop.RequestID()))

	writer.Header().Set(headerContentType, mimeTypeEventStream)
	writer.Header().Set(headerCacheControl, "no-cache")
	writer.Header().Set(headerConnection, "keep-alive")
	writer.Header().Set(headerRequestID, loop.RequestID())
	writer.WriteHeader(http.StatusOK)
	flusher.Flush()

	events := make(chan generation.Event, eventBufferSize)
	group, groupCtx := errgroup.WithContext(request.Context())
	group.Go(func() error {
		defer close(events)
		return loop.Run(groupCtx, generation.Request{Query: generateRequest.Query, References: generateRequest.References}, events)
	})
	group.Go(func() error {
		for event := range events {
			if err := output.WriteSSE(writer, event); err != nil {
				return err
			}
			flusher.Flush()
		}
		return nil
	})
	if err := group.Wait(); err != nil {
		logger.Info("generate stream ended early", zap.Error(err))
	}
}

func decodeGenerateRequest(body io.Reader) (GenerateRequest, error) {
	var generateRequest GenerateRequest
	decoder := json.NewDecoder(io.LimitReader(body, maxRequestBodyBytes))
	if err := decoder.Decode(&generateRequest); err != nil {
		return GenerateRequest{}, NewStatusError(http.StatusBadRequest, fmt.Errorf("decode request body: %w", err))
	}
	generateRequest.Query = strings.TrimSpace(generateRequest.Query)
	if generateRequest.Query == "" && len(generateRequest.References) == 0 {
		return GenerateRequest{}, NewStatusError(http.StatusBadRequest, errors.New(errorEmptyQuery))
	}
	return generateRequest, nil
}

func (server Server) withCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		origin := request.Header.Get(headerOrigin)
		if origin != "" && server.originAllowed(origin) {
			writer.Header().Set(headerAllowOrigin, origin)
			writer.Header().Set(headerAllowCredentials, "true")
			writer.Header().Set(headerAllowMethods, allowedMethods)
			writer.Header().Set(headerAllowHeaders, allowedHeaders)
			writer.Header().Add(headerVary, headerOrigin)
		}
		if request.Method == http.MethodOptions {
			writer.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(writer, request)
	})
}

func (server Server) originAllowed(origin string) bool {
	for _, allowed := range server.config.CORSOrigins {
		if allowed == wildcardOrigin || strings.EqualFold(strings.TrimRight(allowed, "/"), strings.TrimRight(origin, "/")) {
			return true
		}
	}
	return false
}

func (server Server) writeError(writer http.ResponseWriter, err error) {
	server.writeJSON(writer, statusCodeFromError(err), map[string]string{errorFieldName: err.Error()})
}

func (server Server) writeJSON(writer http.ResponseWriter, statusCode int, payload interface{}) {
	var buffer bytes.Buffer
	if encodeErr := json.NewEncoder(&buffer).Encode(payload); encodeErr != nil {
		fallback := map[string]string{errorFieldName: fmt.Sprintf("encode response: %v", encodeErr)}
		writer.Header().Set(headerContentType, mimeTypeJSON)
		writer.WriteHeader(http.StatusInternalServerError)
		_ = json.NewEncoder(writer).Encode(fallback)
		return
	}
	writer.Header().Set(headerContentType, mimeTypeJSON)
	writer.WriteHeader(statusCode)
	_, _ = writer.Write(buffer.Bytes())
}

func statusCodeFromError(err error) int {
	var statusError StatusError
	if errors.As(err, &statusError) {
		return statusError.StatusCode()
	}
	return http.StatusInternalServerError
}
