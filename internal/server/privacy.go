package server

import (
	_ "embed"
	"net/http"
)

//go:embed static/privacy.html
var privacyPage []byte

func (s *Server) handlePrivacy(w http.ResponseWriter, r *http.Request) {
	if !s.holder.Config().Server.PrivacyPage {
		s.writeDetail(w, r, http.StatusNotFound, "Not Found")
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "public, max-age=3600")
	_, _ = w.Write(privacyPage)
}
