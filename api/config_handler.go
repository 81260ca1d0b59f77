// Configuration endpoints: the dashboard reads the running config and
// can adjust the safe tuning knobs at runtime. Changes are not persisted
// to disk; restart restores the file values.
package api

import (
	"encoding/json"
	"net/http"
	"sync"

	"github.com/openquants/tradelens/pkg/models"
)

// configMu serialises runtime config updates.
var configMu sync.Mutex

// configUpdate carries the adjustable subset of the configuration.
// Source URL, storage path and listen address stay file-only: changing
// them under a running server would strand open handles.
type configUpdate struct {
	TitleColumn *int     `json:"title_column,omitempty"`
	Currencies  []string `json:"currencies,omitempty"`
	Workers     *int     `json:"workers,omitempty"`
	NewsLimit   *int     `json:"news_limit,omitempty"`
}

func (s *Server) handleGetConfig(w http.ResponseWriter, _ *http.Request) {
	configMu.Lock()
	defer configMu.Unlock()
	writeJSON(w, http.StatusOK, s.cfg)
}

func (s *Server) handleUpdateConfig(w http.ResponseWriter, r *http.Request) {
	var upd configUpdate
	if err := json.NewDecoder(r.Body).Decode(&upd); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	configMu.Lock()
	defer configMu.Unlock()

	if upd.TitleColumn != nil && *upd.TitleColumn >= 0 {
		s.cfg.Calendar.TitleColumn = *upd.TitleColumn
	}
	if len(upd.Currencies) > 0 {
		kept := make([]string, 0, len(upd.Currencies))
		for _, c := range upd.Currencies {
			if models.IsCurrency(c) {
				kept = append(kept, c)
			}
		}
		if len(kept) > 0 {
			s.cfg.Calendar.Currencies = kept
		}
	}
	if upd.Workers != nil && *upd.Workers > 0 {
		s.cfg.Correlate.Workers = *upd.Workers
	}
	if upd.NewsLimit != nil && *upd.NewsLimit > 0 {
		s.cfg.News.Limit = *upd.NewsLimit
	}

	writeJSON(w, http.StatusOK, s.cfg)
}
