package web

import (
	"html/template"
	"net/http"
	"path/filepath"

	"go.uber.org/zap"
)

// Templates
var templates *template.Template

func InitTemplates(dir string) error {
	var err error
	templates, err = template.ParseGlob(filepath.Join(dir, "*.html"))
	return err
}

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}

	// Initial render only; the page refreshes itself through the JSON API.
	gainers, err := s.market.TopGainers(r.Context(), 10)
	if err != nil {
		s.logger.Warn("Top gainers unavailable for dashboard", zap.Error(err))
	}

	botStatus, err := s.backend.GetBotStatus(r.Context())
	if err != nil {
		s.logger.Warn("Bot status unavailable for dashboard", zap.Error(err))
	}

	presets, _ := s.presets.ListPresets(r.Context())

	data := map[string]interface{}{
		"Gainers":   gainers,
		"BotStatus": botStatus,
		"Presets":   presets,
		"Precision": s.pricePrecision,
	}

	if err := templates.ExecuteTemplate(w, "index.html", data); err != nil {
		s.logger.Error("Template error", zap.Error(err))
		http.Error(w, "Internal Server Error", 500)
	}
}
