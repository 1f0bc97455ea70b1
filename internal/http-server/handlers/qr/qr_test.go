package qr

import (
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"qrlink/entity"
	"testing"
)

func TestStatus(t *testing.T) {
	cases := []struct {
		err      error
		notFound string
		status   int
		code     string
	}{
		{entity.ErrNotFound, CodeNotFound, http.StatusNotFound, "NOT_FOUND"},
		{entity.ErrNotFound, CodeQRNotFound, http.StatusNotFound, "QR_NOT_FOUND"},
		{entity.ErrForbidden, CodeQRNotFound, http.StatusForbidden, "QR_DISABLED"},
		{entity.ErrTargetMissing, CodeQRNotFound, http.StatusInternalServerError, "TARGET_URL_MISSING"},
		{entity.ErrNoData, CodeNotFound, http.StatusBadRequest, "NO_DATA"},
		{fmt.Errorf("bind: %w", entity.ErrInvalidInput), CodeNotFound, http.StatusBadRequest, "INVALID_INPUT"},
		{fmt.Errorf("mongodb get: %w", entity.ErrTimeout), CodeNotFound, http.StatusGatewayTimeout, "STORE_TIMEOUT"},
		{fmt.Errorf("mongodb get: connection reset"), CodeNotFound, http.StatusInternalServerError, "STORE_ERROR"},
	}
	for _, tc := range cases {
		st, code := status(tc.err, tc.notFound)
		if st != tc.status || code != tc.code {
			t.Errorf("%v: expected %d %s, got %d %s", tc.err, tc.status, tc.code, st, code)
		}
	}
}

func TestScanMeta(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/qr/scan/AbCd1234", nil)
	r.RemoteAddr = "[2001:db8::1]:4711"
	r.Header.Set("Referer", "https://flyer.example.com")

	meta := ScanMeta(r)
	if meta.IP != "2001:db8::1" {
		t.Errorf("unexpected ip %s", meta.IP)
	}
	if meta.Referrer != "https://flyer.example.com" || meta.UserAgent != "" {
		t.Errorf("unexpected meta %+v", meta)
	}
}

func TestHandlers_NilCore(t *testing.T) {
	rec := httptest.NewRecorder()
	Scan(nopLogger(), nil).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/qr/scan/x", nil))
	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("expected 503, got %d", rec.Code)
	}
}

func nopLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}
