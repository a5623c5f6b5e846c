package valuation

import (
	"embed"
	"encoding/json"
	"html/template"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/aristath/stock-valuator/internal/modules/universe"
)

//go:embed templates/*.html
var templateFS embed.FS

// Handler handles valuation and autocomplete HTTP requests
type Handler struct {
	service     *Service
	directory   *universe.Directory
	searchLimit int
	templates   *template.Template
	log         zerolog.Logger
}

// NewHandler creates a new valuation handler
func NewHandler(service *Service, directory *universe.Directory, searchLimit int, log zerolog.Logger) *Handler {
	templates := template.Must(template.New("").Funcs(template.FuncMap{
		"num": formatOptional,
	}).ParseFS(templateFS, "templates/*.html"))

	return &Handler{
		service:     service,
		directory:   directory,
		searchLimit: searchLimit,
		templates:   templates,
		log:         log.With().Str("handler", "valuation").Logger(),
	}
}

// HandleHome renders the landing page with the search control.
func (h *Handler) HandleHome(w http.ResponseWriter, r *http.Request) {
	h.render(w, "landing.html", nil)
}

// HandleSearch serves ticker autocomplete: a JSON array of up to the
// configured number of case-insensitive prefix matches. An empty query
// yields an empty array.
func (h *Handler) HandleSearch(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("query")
	matches := h.directory.Search(query, h.searchLimit)
	h.writeJSON(w, http.StatusOK, matches)
}

// HandleQuery runs a valuation for the ?ticker= parameter and renders the
// result page, or JSON when the client asks for it.
func (h *Handler) HandleQuery(w http.ResponseWriter, r *http.Request) {
	ticker := strings.TrimSpace(r.URL.Query().Get("ticker"))
	if ticker == "" {
		if wantsJSON(r) {
			h.writeError(w, http.StatusBadRequest, "no ticker provided")
			return
		}
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte("No ticker provided. Go back and enter a ticker like RELIANCE.NS."))
		return
	}

	report := h.service.Evaluate(r.Context(), ticker)

	if wantsJSON(r) {
		h.writeJSON(w, http.StatusOK, report)
		return
	}
	h.render(w, "result.html", report)
}

// HandleAPIValuation is the JSON-first variant addressed by URL parameter.
func (h *Handler) HandleAPIValuation(w http.ResponseWriter, r *http.Request) {
	ticker := strings.TrimSpace(chi.URLParam(r, "ticker"))
	if ticker == "" {
		h.writeError(w, http.StatusBadRequest, "no ticker provided")
		return
	}

	report := h.service.Evaluate(r.Context(), ticker)
	h.writeJSON(w, http.StatusOK, report)
}

func wantsJSON(r *http.Request) bool {
	if r.URL.Query().Get("format") == "json" {
		return true
	}
	return strings.Contains(r.Header.Get("Accept"), "application/json")
}

func (h *Handler) render(w http.ResponseWriter, name string, data any) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := h.templates.ExecuteTemplate(w, name, data); err != nil {
		h.log.Error().Err(err).Str("template", name).Msg("Failed to render template")
	}
}

// writeJSON writes a JSON response
func (h *Handler) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.log.Error().Err(err).Msg("Failed to encode JSON response")
	}
}

// writeError writes an error response
func (h *Handler) writeError(w http.ResponseWriter, status int, message string) {
	h.writeJSON(w, status, map[string]string{
		"error": message,
	})
}

// formatOptional renders an optional number for the HTML table; absent
// values show as an empty cell.
func formatOptional(v *float64) string {
	if v == nil {
		return ""
	}
	return strconv.FormatFloat(*v, 'f', 2, 64)
}
