package api

import (
	"net/http"
	"testing"
)

func TestGetConfig(t *testing.T) {
	srv := testServer(t)
	rec := doJSON(t, srv, http.MethodGet, "/api/v1/config", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}

	var body map[string]any
	decodeBody(t, rec, &body)
	if _, ok := body["Calendar"]; !ok {
		t.Errorf("config response missing Calendar section: %s", rec.Body.String())
	}
}

func TestUpdateConfig(t *testing.T) {
	srv := testServer(t)

	rec := doJSON(t, srv, http.MethodPut, "/api/v1/config", map[string]any{
		"title_column": 6,
		"workers":      8,
		"currencies":   []string{"USD", "EUR", "XAU"},
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body.String())
	}

	if srv.cfg.Calendar.TitleColumn != 6 {
		t.Errorf("TitleColumn = %d, want 6", srv.cfg.Calendar.TitleColumn)
	}
	if srv.cfg.Correlate.Workers != 8 {
		t.Errorf("Workers = %d, want 8", srv.cfg.Correlate.Workers)
	}
	// Unrecognized codes are dropped.
	if len(srv.cfg.Calendar.Currencies) != 2 {
		t.Errorf("Currencies = %v, want [USD EUR]", srv.cfg.Calendar.Currencies)
	}
}

func TestUpdateConfigIgnoresInvalidValues(t *testing.T) {
	srv := testServer(t)
	before := srv.cfg.Correlate.Workers

	rec := doJSON(t, srv, http.MethodPut, "/api/v1/config", map[string]any{
		"workers":    -3,
		"currencies": []string{"XAU"},
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if srv.cfg.Correlate.Workers != before {
		t.Errorf("negative worker count must be ignored")
	}
	if len(srv.cfg.Calendar.Currencies) != 8 {
		t.Errorf("all-invalid currency list must be ignored, got %v", srv.cfg.Calendar.Currencies)
	}
}
