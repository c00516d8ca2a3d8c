package server

import (
	"net/http"
	"strings"

	"github.com/tonimelisma/datalake-api/internal/driveops"
)

const healthMessage = "Data Lake API running"

func (s *Server) routes(mux *http.ServeMux) {
	mux.HandleFunc("GET /{$}", s.handleRoot)
	mux.HandleFunc("GET /list-files", s.handleListFiles)
	mux.HandleFunc("GET /metadata", s.handleMetadata)
	mux.HandleFunc("GET /download", s.handleDownload)
	mux.HandleFunc("GET /search", s.handleSearch)
	mux.HandleFunc("GET /privacy", s.handlePrivacy)
}

func (s *Server) handleRoot(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, driveops.StatusResponse{Status: "ok", Message: healthMessage})
}

func (s *Server) handleListFiles(w http.ResponseWriter, r *http.Request) {
	listing, err := s.queries.List(r.Context(), r.URL.Query().Get("folder"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	s.writeJSON(w, http.StatusOK, driveops.NewListResponse(listing))
}

func (s *Server) handleMetadata(w http.ResponseWriter, r *http.Request) {
	doc, err := s.queries.Metadata(r.Context(), r.URL.Query().Get("file_path"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	s.writeJSON(w, http.StatusOK, driveops.MetadataResponse{FilePath: doc.FilePath, Metadata: doc.Document})
}

func (s *Server) handleDownload(w http.ResponseWriter, r *http.Request) {
	filePath, ok := requiredParam(r, "file_path")
	if !ok {
		s.writeDetail(w, r, http.StatusBadRequest, "file_path is required")
		return
	}

	link, err := s.queries.DownloadLink(r.Context(), filePath)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	s.writeJSON(w, http.StatusOK, driveops.DownloadResponse{FilePath: link.FilePath, DownloadURL: link.URL})
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	q, ok := requiredParam(r, "q")
	if !ok {
		s.writeDetail(w, r, http.StatusBadRequest, "q is required")
		return
	}

	results, err := s.queries.Search(r.Context(), q)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	s.writeJSON(w, http.StatusOK, driveops.NewSearchResponse(results))
}

// requiredParam returns a query parameter that must be present and
// non-blank.
func requiredParam(r *http.Request, name string) (string, bool) {
	v := r.URL.Query().Get(name)
	if strings.TrimSpace(v) == "" {
		return "", false
	}

	return v, true
}
