package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func newTestClient(handler http.HandlerFunc) (*Client, *httptest.Server) {
	srv := httptest.NewServer(handler)
	c := NewClient(Config{BaseURL: srv.URL, Token: "test-token"})
	return c, srv
}

func TestClientSendsBearerToken(t *testing.T) {
	var gotAuth string
	c, srv := newTestClient(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		json.NewEncoder(w).Encode(map[string]interface{}{
			"success": true,
			"data":    ScanJob{ID: "job-1", Status: "pending"},
		})
	})
	defer srv.Close()

	if _, err := c.Scans().Start(context.Background(), 1); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	if gotAuth != "Bearer test-token" {
		t.Errorf("authorization = %q, want %q", gotAuth, "Bearer test-token")
	}
}

func TestClientUnwrapsEnvelope(t *testing.T) {
	c, srv := newTestClient(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/scans/job-1" {
			t.Errorf("path = %q, want /api/scans/job-1", r.URL.Path)
		}
		json.NewEncoder(w).Encode(map[string]interface{}{
			"success": true,
			"data": ScanJob{
				ID:               "job-1",
				AccountID:        1,
				Status:           "success",
				ResourcesScanned: 7,
			},
		})
	})
	defer srv.Close()

	job, err := c.Scans().Get(context.Background(), "job-1")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if job.ID != "job-1" || job.Status != "success" || job.ResourcesScanned != 7 {
		t.Errorf("job = %+v", job)
	}
}

func TestClientDecodesAPIErrors(t *testing.T) {
	c, srv := newTestClient(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusConflict)
		json.NewEncoder(w).Encode(map[string]interface{}{
			"success": false,
			"error": map[string]string{
				"code":    "SCAN_ALREADY_RUNNING",
				"message": "A scan is already running for account 1",
			},
		})
	})
	defer srv.Close()

	_, err := c.Scans().Start(context.Background(), 1)
	apiErr, ok := err.(*APIError)
	if !ok {
		t.Fatalf("expected *APIError, got %T: %v", err, err)
	}
	if apiErr.StatusCode != http.StatusConflict {
		t.Errorf("status = %d, want %d", apiErr.StatusCode, http.StatusConflict)
	}
	if !apiErr.IsConflict() {
		t.Errorf("IsConflict() = false for %+v", apiErr)
	}
	if apiErr.Code != "SCAN_ALREADY_RUNNING" {
		t.Errorf("code = %q, want SCAN_ALREADY_RUNNING", apiErr.Code)
	}
}

func TestClientDecodesPaginatedData(t *testing.T) {
	c, srv := newTestClient(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if q.Get("status") != "open" || q.Get("page") != "2" {
			t.Errorf("query = %v", q)
		}
		json.NewEncoder(w).Encode(map[string]interface{}{
			"success": true,
			"data": Page[Violation]{
				Data:       []Violation{{ID: 10, Status: "open"}},
				Page:       2,
				PageSize:   20,
				TotalItems: 21,
				TotalPages: 2,
			},
		})
	})
	defer srv.Close()

	page, err := c.Violations().List(context.Background(), &ViolationListOptions{
		ListOptions: ListOptions{Page: 2, PageSize: 20},
		Status:      "open",
	})
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(page.Data) != 1 || page.Data[0].ID != 10 {
		t.Errorf("page data = %+v", page.Data)
	}
	if page.TotalItems != 21 || page.TotalPages != 2 {
		t.Errorf("pagination = %+v", page)
	}
}

func TestClientHandlesNonEnvelopeErrors(t *testing.T) {
	c, srv := newTestClient(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		w.Write([]byte("upstream exploded"))
	})
	defer srv.Close()

	_, err := c.Scans().Get(context.Background(), "job-1")
	if err == nil {
		t.Fatal("expected an error for a non-JSON 502")
	}
}
