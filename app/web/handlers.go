package web

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	log "github.com/go-pkgz/lgr"

	"github.com/umputun/nsnt/app/snapshot"
	"github.com/umputun/nsnt/app/web/enums"
	"github.com/umputun/nsnt/app/web/persistence"
)

// list names used by list partials, "others" is derived and has no partition of its own
const (
	listWatched = "watched"
	listOthers  = "others"
	listIgnored = "ignored"
)

// handleDashboard renders the main dashboard with all lists
func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	data := s.newTemplateData(r)
	if err := s.loadLists(r, &data, listWatched, listOthers, listIgnored); err != nil {
		log.Printf("[ERROR] failed to load lists: %v", err)
		http.Error(w, "Failed to load lists", http.StatusInternalServerError)
		return
	}
	s.render(w, "base.html", "base", data)
}

// handleListPartial returns a single list partial, used by containers reacting to refresh-lists
func (s *Server) handleListPartial(w http.ResponseWriter, r *http.Request) {
	list := r.PathValue("list")
	switch list {
	case listWatched, listOthers, listIgnored:
	default:
		http.Error(w, fmt.Sprintf("unknown list %q", list), http.StatusBadRequest)
		return
	}

	data := s.newTemplateData(r)
	data.IsOOB = true // counts are refreshed out of band with every list
	if err := s.loadLists(r, &data, list); err != nil {
		log.Printf("[ERROR] failed to load %s list: %v", list, err)
		http.Error(w, "Failed to load list", http.StatusInternalServerError)
		return
	}

	tmpl, ok := s.templates["partials/lists.html"]
	if !ok {
		log.Printf("[WARN] partials template not found")
		http.Error(w, "Template not found", http.StatusInternalServerError)
		return
	}

	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, list+"-list", data); err != nil {
		log.Printf("[WARN] failed to render %s list: %v", list, err)
		http.Error(w, "Template error", http.StatusInternalServerError)
		return
	}
	if err := tmpl.ExecuteTemplate(&buf, "counts", data); err != nil {
		log.Printf("[WARN] failed to render counts: %v", err)
		http.Error(w, "Template error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	if _, err := buf.WriteTo(w); err != nil {
		log.Printf("[WARN] failed to write response: %v", err)
	}
}

// loadLists fills template data with the requested lists and partition counts
func (s *Server) loadLists(r *http.Request, data *TemplateData, lists ...string) error {
	ctx := r.Context()
	var err error
	for _, list := range lists {
		switch list {
		case listWatched:
			if data.Watched, err = s.store.ListWatched(ctx, s.pageSize); err != nil {
				return fmt.Errorf("watched: %w", err)
			}
		case listOthers:
			if data.Others, err = s.store.ListOthers(ctx, s.pageSize); err != nil {
				return fmt.Errorf("others: %w", err)
			}
		case listIgnored:
			if data.Ignored, err = s.store.List(ctx, enums.PartitionIgnored, s.pageSize); err != nil {
				return fmt.Errorf("ignored: %w", err)
			}
		}
	}
	if data.Counts, err = s.store.Counts(ctx); err != nil {
		return fmt.Errorf("counts: %w", err)
	}
	return nil
}

// handleImport loads an uploaded snapshot file into the store
func (s *Server) handleImport(w http.ResponseWriter, r *http.Request) {
	data := s.newTemplateData(r)

	if err := r.ParseMultipartForm(snapshot.MaxSize); err != nil {
		data.Error = "invalid upload: " + err.Error()
		s.renderImportStatus(w, http.StatusBadRequest, data)
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		data.Error = "no file selected"
		s.renderImportStatus(w, http.StatusBadRequest, data)
		return
	}
	defer file.Close()

	body, err := io.ReadAll(io.LimitReader(file, snapshot.MaxSize+1))
	if err != nil {
		data.Error = "failed to read file: " + err.Error()
		s.renderImportStatus(w, http.StatusBadRequest, data)
		return
	}
	if len(body) > snapshot.MaxSize {
		data.Error = fmt.Sprintf("file %s is too large", header.Filename)
		s.renderImportStatus(w, http.StatusRequestEntityTooLarge, data)
		return
	}

	res, err := snapshot.Import(r.Context(), s.store, body, snapshot.FormatFromName(header.Filename))
	if err != nil {
		log.Printf("[WARN] failed to import %s: %v", header.Filename, err)
		data.Error = fmt.Sprintf("failed to import %s: %v", header.Filename, err)
		s.renderImportStatus(w, http.StatusBadRequest, data)
		return
	}

	data.Message = fmt.Sprintf("imported %s: %d new, %d updated, %d watched, %d ignored, %d skipped",
		header.Filename, res.Cached, res.Updated, res.Watched, res.Ignored, res.Skipped)
	w.Header().Set("HX-Trigger", refreshEvent)
	s.renderImportStatus(w, http.StatusOK, data)
}

// renderImportStatus renders the import status fragment with the given status code
func (s *Server) renderImportStatus(w http.ResponseWriter, status int, data TemplateData) {
	tmpl, ok := s.templates["partials/lists.html"]
	if !ok {
		http.Error(w, "Template not found", http.StatusInternalServerError)
		return
	}

	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, "import-status", data); err != nil {
		log.Printf("[WARN] failed to render import status: %v", err)
		http.Error(w, "Template error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	// 4xx fragments are swapped too, see htmx-config in base.html
	w.WriteHeader(status)
	if _, err := buf.WriteTo(w); err != nil {
		log.Printf("[WARN] failed to write response: %v", err)
	}
}

// handleExport sends requested partitions as a snapshot attachment.
// partition query params select partitions (watched and ignored by default), format selects json or yaml.
func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	partitions := make([]enums.Partition, 0, len(enums.PartitionValues))
	for _, name := range r.URL.Query()["partition"] {
		p, err := enums.ParsePartition(name)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		partitions = append(partitions, p)
	}

	format := enums.FormatJSON
	if f := r.URL.Query().Get("format"); f != "" {
		var err error
		if format, err = enums.ParseFormat(f); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
	}

	exp, err := snapshot.Export(r.Context(), s.store, partitions...)
	if err != nil {
		log.Printf("[ERROR] failed to export: %v", err)
		http.Error(w, "Failed to export", http.StatusInternalServerError)
		return
	}

	var buf bytes.Buffer
	if err := snapshot.Encode(&buf, exp, format); err != nil {
		log.Printf("[ERROR] failed to encode export: %v", err)
		http.Error(w, "Failed to export", http.StatusInternalServerError)
		return
	}

	contentType := "application/json"
	if format == enums.FormatYAML {
		contentType = "application/yaml"
	}
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", exportFileName(partitions, format)))
	w.WriteHeader(http.StatusOK)
	if _, err := buf.WriteTo(w); err != nil {
		log.Printf("[WARN] failed to write export: %v", err)
	}
}

// exportFileName names the download after the single exported partition, or nsnt for mixed exports
func exportFileName(partitions []enums.Partition, format enums.Format) string {
	name := "nsnt"
	if len(partitions) == 1 {
		name = partitions[0].String()
	}
	return name + "." + format.String()
}

// handleMarkWatched moves an item to the watched list
func (s *Server) handleMarkWatched(w http.ResponseWriter, r *http.Request) {
	s.handleItemAction(w, r, "watch", s.store.MarkWatched)
}

// handleMarkIgnored moves an item to the ignored list
func (s *Server) handleMarkIgnored(w http.ResponseWriter, r *http.Request) {
	s.handleItemAction(w, r, "ignore", s.store.MarkIgnored)
}

// handleAcknowledge clears the changed flag of a watched item
func (s *Server) handleAcknowledge(w http.ResponseWriter, r *http.Request) {
	s.handleItemAction(w, r, "acknowledge", s.store.Acknowledge)
}

// handleItemAction applies a store action to the url from the form and signals lists to refresh
func (s *Server) handleItemAction(w http.ResponseWriter, r *http.Request, name string,
	action func(ctx context.Context, url string) error) {
	url := strings.TrimSpace(r.FormValue("url"))
	if url == "" {
		http.Error(w, "url is required", http.StatusBadRequest)
		return
	}

	if err := action(r.Context(), url); err != nil {
		if errors.Is(err, persistence.ErrNotFound) {
			http.Error(w, "item not found", http.StatusNotFound)
			return
		}
		log.Printf("[ERROR] failed to %s %s: %v", name, url, err)
		http.Error(w, "Failed to update item", http.StatusInternalServerError)
		return
	}

	log.Printf("[INFO] %s %s", name, url)
	w.Header().Set("HX-Trigger", refreshEvent)
	w.WriteHeader(http.StatusOK)
}

// handleThemeToggle toggles the theme
func (s *Server) handleThemeToggle(w http.ResponseWriter, r *http.Request) {
	nextTheme := enums.ThemeLight
	if s.getTheme(r) == enums.ThemeLight {
		nextTheme = enums.ThemeDark
	}

	http.SetCookie(w, &http.Cookie{
		Name:     "theme",
		Value:    nextTheme.String(),
		Path:     s.cookiePath(),
		MaxAge:   365 * 24 * 60 * 60, // 1 year
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})

	// trigger full page refresh for theme change
	w.Header().Set("HX-Refresh", "true")
	w.WriteHeader(http.StatusOK)
}
