package fetch

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func contentsServer(t *testing.T) *httptest.Server {
	t.Helper()

	var server *httptest.Server
	mux := http.NewServeMux()

	mux.HandleFunc("/repos/owner/repo/contents/skills/writing", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("ref") != "main" {
			t.Errorf("ref = %q, want main", r.URL.Query().Get("ref"))
		}
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprintf(w, `[
			{"name":"SKILL.md","path":"skills/writing/SKILL.md","type":"file","download_url":"%s/raw/SKILL.md"},
			{"name":"examples","path":"skills/writing/examples","type":"dir"}
		]`, server.URL)
	})
	mux.HandleFunc("/repos/owner/repo/contents/skills/writing/examples", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprintf(w, `[
			{"name":"sample.md","path":"skills/writing/examples/sample.md","type":"file","download_url":"%s/raw/sample.md"}
		]`, server.URL)
	})
	mux.HandleFunc("/raw/SKILL.md", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("---\nname: writing\ndescription: a writing skill\n---\n"))
	})
	mux.HandleFunc("/raw/sample.md", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("sample content"))
	})

	server = httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return server
}

func TestDownloadToTemp(t *testing.T) {
	server := contentsServer(t)

	client := NewGitHubClient("")
	client.SetBaseURL(server.URL)

	dir, err := client.DownloadToTemp(context.Background(), "owner", "repo", "skills/writing", "main")
	if err != nil {
		t.Fatalf("DownloadToTemp() error = %v", err)
	}
	defer os.RemoveAll(dir)

	data, err := os.ReadFile(filepath.Join(dir, "SKILL.md"))
	if err != nil {
		t.Fatalf("SKILL.md not downloaded: %v", err)
	}
	if !strings.Contains(string(data), "name: writing") {
		t.Errorf("unexpected SKILL.md content: %s", data)
	}

	nested, err := os.ReadFile(filepath.Join(dir, "examples", "sample.md"))
	if err != nil {
		t.Fatalf("nested file not downloaded: %v", err)
	}
	if string(nested) != "sample content" {
		t.Errorf("nested content = %q", nested)
	}
}

func TestGetRepositoryContentsErrors(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/repos/owner/repo/contents/limited", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		w.Write([]byte(`{"message":"API rate limit exceeded for 1.2.3.4"}`))
	})
	mux.HandleFunc("/repos/owner/repo/contents/missing", func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	client := NewGitHubClient("")
	client.SetBaseURL(server.URL)
	ctx := context.Background()

	_, err := client.GetRepositoryContents(ctx, "owner", "repo", "limited", "")
	if err == nil || !strings.Contains(err.Error(), "rate limit") {
		t.Errorf("rate limit error = %v, want mention of rate limit", err)
	}

	_, err = client.GetRepositoryContents(ctx, "owner", "repo", "missing", "")
	if err == nil || !strings.Contains(err.Error(), "not found") {
		t.Errorf("missing path error = %v, want not found", err)
	}
}

func TestDownloadToTempRejectsUnsafeNames(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/repos/owner/repo/contents/", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`[{"name":"../escape","path":"x","type":"file","download_url":"http://irrelevant"}]`))
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	client := NewGitHubClient("")
	client.SetBaseURL(server.URL)

	_, err := client.DownloadToTemp(context.Background(), "owner", "repo", "", "")
	if err == nil || !strings.Contains(err.Error(), "unsafe") {
		t.Errorf("DownloadToTemp() error = %v, want unsafe entry rejection", err)
	}
}
