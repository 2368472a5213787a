package middleware_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/ward-diet/api/internal/auth"
	"github.com/ward-diet/api/internal/middleware"
)

func TestRequestLogger_WritesStatusAndPath(t *testing.T) {
	var buf bytes.Buffer
	logger := zerolog.New(&buf)

	handler := middleware.RequestLogger(logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
	}))

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest("POST", "/diet-orders", nil))

	var line map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &line); err != nil {
		t.Fatalf("log line is not JSON: %v (%q)", err, buf.String())
	}
	if line["path"] != "/diet-orders" {
		t.Errorf("path: got %v", line["path"])
	}
	if line["status"] != float64(http.StatusCreated) {
		t.Errorf("status: got %v", line["status"])
	}
	if line["method"] != "POST" {
		t.Errorf("method: got %v", line["method"])
	}
}

func TestRecoverer_Returns500(t *testing.T) {
	var buf bytes.Buffer
	logger := zerolog.New(&buf)

	handler := middleware.Recoverer(logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	}))

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest("GET", "/", nil))

	if rr.Code != http.StatusInternalServerError {
		t.Errorf("status: got %d, want %d", rr.Code, http.StatusInternalServerError)
	}
	if !strings.Contains(buf.String(), "panic recovered") {
		t.Errorf("expected panic to be logged, got %q", buf.String())
	}
}

func TestRequestLogger_NamesAuthenticatedCaller(t *testing.T) {
	var buf bytes.Buffer
	logger := zerolog.New(&buf)
	token, _ := auth.GenerateToken(testSecret, uuid.New(), "chef.ravi", "CANTEEN")

	inner := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	handler := middleware.RequestLogger(logger)(middleware.Authenticate(testSecret)(inner))

	req := httptest.NewRequest("GET", "/canteen/orders", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	handler.ServeHTTP(httptest.NewRecorder(), req)

	var line map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &line); err != nil {
		t.Fatalf("log line is not JSON: %v (%q)", err, buf.String())
	}
	if line["user"] != "chef.ravi" || line["role"] != "CANTEEN" {
		t.Errorf("caller: got user=%v role=%v", line["user"], line["role"])
	}
}
