package api

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/segmentio/ksuid"

	"github.com/ssargent/siliconv/pkg/formats"
	"github.com/ssargent/siliconv/pkg/logger"
	"github.com/ssargent/siliconv/pkg/replay"
	"github.com/ssargent/siliconv/pkg/storage"
)

// Server holds the API server state
type Server struct {
	library ILibrary
	config  ServerConfig
	metrics *Metrics
}

// NewServer creates a new API server
func NewServer(library ILibrary, config ServerConfig, metrics *Metrics) *Server {
	if config.MaxBodySize <= 0 {
		config.MaxBodySize = DefaultMaxBodySize
	}
	return &Server{
		library: library,
		config:  config,
		metrics: metrics,
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	sendSuccess(w, map[string]string{"status": "healthy"})
}

// handleConvert reads a replay of any Silicate revision from the body and
// returns it encoded as slc3.
func (s *Server) handleConvert(w http.ResponseWriter, r *http.Request) {
	rep, ok := s.decodeBody(w, r)
	if !ok {
		return
	}

	var out bytes.Buffer
	if err := formats.Write(rep, &out); err != nil {
		sendError(w, fmt.Sprintf("Failed to write replay: %v", err), http.StatusInternalServerError)
		return
	}

	sendReplay(w, "replay"+formats.OutputExtension(), out.Bytes())
}

func (s *Server) handleInfo(w http.ResponseWriter, r *http.Request) {
	rep, ok := s.decodeBody(w, r)
	if !ok {
		return
	}
	sendSuccess(w, formats.Describe(rep))
}

func (s *Server) handleAddToLibrary(w http.ResponseWriter, r *http.Request) {
	name := r.URL.Query().Get("name")
	if name == "" {
		sendError(w, "name is required", http.StatusBadRequest)
		return
	}

	rep, ok := s.decodeBody(w, r)
	if !ok {
		return
	}

	entry, err := s.library.Add(name, rep)
	s.metrics.RecordLibraryOperation("add", err == nil)
	if err != nil {
		sendError(w, fmt.Sprintf("Failed to store replay: %v", err), http.StatusInternalServerError)
		return
	}
	s.refreshLibraryGauge()

	sendJSON(w, http.StatusCreated, entry)
}

func (s *Server) handleListLibrary(w http.ResponseWriter, r *http.Request) {
	entries, err := s.library.List()
	s.metrics.RecordLibraryOperation("list", err == nil)
	if err != nil {
		sendError(w, fmt.Sprintf("Failed to list library: %v", err), http.StatusInternalServerError)
		return
	}
	s.metrics.SetLibraryEntries(len(entries))

	if entries == nil {
		entries = []storage.Entry{}
	}
	sendSuccess(w, entries)
}

func (s *Server) handleGetFromLibrary(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}

	entry, err := s.library.Get(id)
	if err == nil {
		var data []byte
		data, err = s.library.Raw(id)
		if err == nil {
			s.metrics.RecordLibraryOperation("get", true)
			sendReplay(w, outputName(entry.Name), data)
			return
		}
	}

	s.metrics.RecordLibraryOperation("get", false)
	s.sendLibraryError(w, id, err)
}

func (s *Server) handleDeleteFromLibrary(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}

	err := s.library.Delete(id)
	s.metrics.RecordLibraryOperation("delete", err == nil)
	if err != nil {
		s.sendLibraryError(w, id, err)
		return
	}
	s.refreshLibraryGauge()

	sendSuccess(w, map[string]string{"id": id.String(), "status": "deleted"})
}

// decodeBody reads the request body as a replay using the hint query
// parameter, defaulting to Silicate. On failure the error response has been
// sent and ok is false.
func (s *Server) decodeBody(w http.ResponseWriter, r *http.Request) (*replay.Replay, bool) {
	hint := r.URL.Query().Get("hint")
	if hint == "" {
		hint = formats.HintSilicate
	}

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, s.config.MaxBodySize))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			sendError(w, "Replay too large", http.StatusRequestEntityTooLarge)
			return nil, false
		}
		sendError(w, "Failed to read request body", http.StatusBadRequest)
		return nil, false
	}

	start := time.Now()
	rep, err := formats.Read(bytes.NewReader(body), hint)
	if err != nil {
		s.metrics.RecordConversion("unknown", false, 0, time.Since(start))
		logger.Log.WithError(err).Debugf("rejected %d byte upload", len(body))
		sendError(w, err.Error(), http.StatusBadRequest)
		return nil, false
	}
	s.metrics.RecordConversion(rep.Format.String(), true, len(rep.Actions), time.Since(start))

	return rep, true
}

func (s *Server) sendLibraryError(w http.ResponseWriter, id ksuid.KSUID, err error) {
	if errors.Is(err, storage.ErrNotFound) {
		sendError(w, fmt.Sprintf("Replay %s not found", id), http.StatusNotFound)
		return
	}
	sendError(w, err.Error(), http.StatusInternalServerError)
}

func (s *Server) refreshLibraryGauge() {
	entries, err := s.library.List()
	if err != nil {
		logger.Log.WithError(err).Warn("failed to count library entries")
		return
	}
	s.metrics.SetLibraryEntries(len(entries))
}

func parseID(w http.ResponseWriter, r *http.Request) (ksuid.KSUID, bool) {
	id, err := ksuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		sendError(w, "Invalid replay id", http.StatusBadRequest)
		return ksuid.Nil, false
	}
	return id, true
}

// outputName swaps the extension of a stored name for the slc3 one
func outputName(name string) string {
	base := strings.TrimSuffix(filepath.Base(name), filepath.Ext(name))
	if base == "" || base == "." {
		base = "replay"
	}
	return base + formats.OutputExtension()
}
