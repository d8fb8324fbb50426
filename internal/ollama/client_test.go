package ollama

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

type mockGenerateResponse struct {
	Model    string `json:"model"`
	Response string `json:"response"`
	Done     bool   `json:"done"`
}

type mockListResponse struct {
	Models []mockModel `json:"models"`
}

type mockModel struct {
	Name string `json:"name"`
}

func newMockServer(t *testing.T, summary string) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Path {
		case "/api/generate":
			var req map[string]any
			if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
				w.WriteHeader(http.StatusBadRequest)
				return
			}
			if !strings.Contains(req["prompt"].(string), "Summarize") {
				w.WriteHeader(http.StatusBadRequest)
				return
			}
			json.NewEncoder(w).Encode(mockGenerateResponse{Model: "test-model", Response: summary, Done: true})
		case "/api/tags":
			json.NewEncoder(w).Encode(mockListResponse{Models: []mockModel{{Name: "test-model:latest"}, {Name: "another-model"}}})
		case "/":
			w.WriteHeader(http.StatusOK)
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	t.Cleanup(server.Close)
	return server
}

func TestNewClient(t *testing.T) {
	tests := []struct {
		name      string
		url       string
		model     string
		wantModel string
		wantErr   bool
	}{
		{name: "with custom url and model", url: "http://localhost:11434", model: "custom-model", wantModel: "custom-model"},
		{name: "with default url", url: "", model: "test-model", wantModel: "test-model"},
		{name: "with all defaults", url: "", model: "", wantModel: DefaultModel},
		{name: "with invalid url", url: "http://[::1", model: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client, err := NewClient(tt.url, tt.model)

			if tt.wantErr {
				if err == nil {
					t.Errorf("expected error but got none")
				}
				return
			}

			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			if client.GetModel() != tt.wantModel {
				t.Errorf("expected model %s, got %s", tt.wantModel, client.GetModel())
			}
		})
	}
}

func TestIsAvailable(t *testing.T) {
	server := newMockServer(t, "")

	if !IsAvailable(server.URL) {
		t.Error("expected mock server to be available")
	}
	if IsAvailable("http://localhost:99999") {
		t.Error("expected invalid port to be unavailable")
	}
}

func TestSummarize(t *testing.T) {
	server := newMockServer(t, "  A short\nsummary of the document.  ")

	client, err := NewClient(server.URL, "test-model")
	if err != nil {
		t.Fatalf("failed to create client: %v", err)
	}

	got, err := client.Summarize(context.Background(), "The system shall export reports.")
	if err != nil {
		t.Fatalf("summarize failed: %v", err)
	}
	if got != "A short summary of the document." {
		t.Errorf("unexpected summary %q", got)
	}
}

func TestSummarizeEmpty(t *testing.T) {
	server := newMockServer(t, "   ")

	client, err := NewClient(server.URL, "test-model")
	if err != nil {
		t.Fatalf("failed to create client: %v", err)
	}

	if _, err := client.Summarize(context.Background(), ""); err == nil {
		t.Error("expected error for empty text")
	}
	if _, err := client.Summarize(context.Background(), "some text"); err == nil {
		t.Error("expected error for empty model reply")
	}
}

func TestCheckModel(t *testing.T) {
	server := newMockServer(t, "")

	client, _ := NewClient(server.URL, "test-model")
	if err := client.CheckModel(context.Background()); err != nil {
		t.Errorf("expected model to be found: %v", err)
	}

	missing, _ := NewClient(server.URL, "nonexistent-model-xyz")
	if err := missing.CheckModel(context.Background()); err == nil {
		t.Error("expected error for nonexistent model")
	}
}
