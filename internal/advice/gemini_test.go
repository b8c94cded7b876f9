package advice

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestGeminiGenerate(t *testing.T) {
	var got generateRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1beta/models/gemini-2.5-flash:generateContent" {
			t.Fatalf("unexpected path: %s", r.URL.Path)
		}
		if r.Header.Get("x-goog-api-key") != "test-key" {
			t.Fatalf("missing api key header")
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Fatalf("decode request body: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"candidates":[{"content":{"role":"model","parts":[{"text":"Walk "},{"text":"the path."}]}}]}`))
	}))
	defer server.Close()

	g, err := NewGemini(GeminiConfig{APIKey: "test-key", BaseURL: server.URL})
	if err != nil {
		t.Fatalf("NewGemini() error = %v", err)
	}
	g.httpClient = server.Client()

	text, err := g.Generate(context.Background(), Persona, "hello")
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	if text != "Walk the path." {
		t.Errorf("Generate() = %q", text)
	}
	if got.SystemInstruction == nil || !strings.Contains(got.SystemInstruction.Parts[0].Text, "BrahmaPath") {
		t.Errorf("system instruction not sent: %+v", got.SystemInstruction)
	}
	if len(got.Contents) != 1 || got.Contents[0].Parts[0].Text != "hello" {
		t.Errorf("contents = %+v", got.Contents)
	}
}

func TestGeminiErrors(t *testing.T) {
	if _, err := NewGemini(GeminiConfig{}); err == nil {
		t.Error("NewGemini() without key should fail")
	}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":{"message":"API key not valid"}}`, http.StatusBadRequest)
	}))
	defer server.Close()

	g, _ := NewGemini(GeminiConfig{APIKey: "bad", BaseURL: server.URL, Model: "custom-model"})
	g.httpClient = server.Client()
	if _, err := g.Generate(context.Background(), "", "hi"); err == nil || !strings.Contains(err.Error(), "status=400") {
		t.Errorf("Generate() error = %v", err)
	}

	// Wired through the adviser, the failure becomes the fixed fallback.
	if got := New(g, 0).AnalyzeEntry(context.Background(), "entry"); got != JournalFailed {
		t.Errorf("AnalyzeEntry() = %q, want fallback", got)
	}
}

func TestGeminiNoCandidates(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"candidates":[]}`))
	}))
	defer server.Close()

	g, _ := NewGemini(GeminiConfig{APIKey: "k", BaseURL: server.URL})
	g.httpClient = server.Client()
	if got := New(g, 0).GetGuidance(context.Background(), "t", "c"); got != GuidanceEmpty {
		t.Errorf("GetGuidance() = %q, want %q", got, GuidanceEmpty)
	}
}
