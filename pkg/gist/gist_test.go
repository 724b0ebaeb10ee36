package gist

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestParseID(t *testing.T) {
	cases := []struct {
		name string
		url  string
		want string
		err  error
	}{
		{name: "user path", url: "https://gist.github.com/octocat/aa5a315d61ae9438b18d", want: "aa5a315d61ae9438b18d"},
		{name: "bare id", url: "https://gist.github.com/aa5a315d61ae9438b18d", want: "aa5a315d61ae9438b18d"},
		{name: "raw host", url: "https://gist.githubusercontent.com/octocat/0123abcdef/raw/file.md", want: "0123abcdef"},
		{name: "mixed case host", url: "https://GIST.GitHub.com/octocat/ABCDEF12", want: "ABCDEF12"},
		{name: "not a gist", url: "https://github.com/octocat/repo", err: ErrInvalidURL},
		{name: "no id", url: "https://gist.github.com/", err: ErrInvalidURL},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := ParseID(tc.url)
			if tc.err != nil {
				if !errors.Is(err, tc.err) {
					t.Fatalf("expected %v, got %v", tc.err, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("parse: %v", err)
			}
			if got != tc.want {
				t.Fatalf("ParseID(%q) = %q, want %q", tc.url, got, tc.want)
			}
		})
	}
}

func TestIsGistURL(t *testing.T) {
	if !IsGistURL("see https://gist.github.com/x/1") || !IsGistURL("gist.githubusercontent.com/raw") {
		t.Fatalf("expected gist hosts to be detected")
	}
	if IsGistURL("As a {{role}} write tests") {
		t.Fatalf("plain content must not be detected as gist")
	}
}

func TestFetchReturnsFirstFileByName(t *testing.T) {
	var gotPath, gotAuth string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotAuth = r.Header.Get("Authorization")
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"files":{"z.md":{"filename":"z.md","content":"last"},"a.md":{"filename":"a.md","content":"---\nname: From Gist\n---\n{{role}}"}}}`))
	}))
	defer server.Close()

	client := New(WithAPIBase(server.URL+"/"), WithHTTPClient(server.Client()), WithToken("secret"))
	content, err := client.Fetch(context.Background(), "https://gist.github.com/octocat/abc123")
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if content != "---\nname: From Gist\n---\n{{role}}" {
		t.Fatalf("unexpected content %q", content)
	}
	if gotPath != "/gists/abc123" {
		t.Fatalf("unexpected request path %q", gotPath)
	}
	if gotAuth != "Bearer secret" {
		t.Fatalf("expected bearer token, got %q", gotAuth)
	}
}

func TestFetchErrors(t *testing.T) {
	cases := []struct {
		name    string
		status  int
		body    string
		url     string
		wantErr error
	}{
		{name: "not found", status: http.StatusNotFound, body: `{"message":"Not Found"}`, url: "https://gist.github.com/u/abc", wantErr: ErrFetchFailed},
		{name: "no files", status: http.StatusOK, body: `{"files":{}}`, url: "https://gist.github.com/u/abc", wantErr: ErrNoFiles},
		{name: "bad json", status: http.StatusOK, body: `{`, url: "https://gist.github.com/u/abc", wantErr: ErrFetchFailed},
		{name: "invalid url", status: http.StatusOK, body: `{}`, url: "https://example.com/abc", wantErr: ErrInvalidURL},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tc.status)
				_, _ = w.Write([]byte(tc.body))
			}))
			defer server.Close()

			_, err := New(WithAPIBase(server.URL)).Fetch(context.Background(), tc.url)
			if !errors.Is(err, tc.wantErr) {
				t.Fatalf("expected %v, got %v", tc.wantErr, err)
			}
		})
	}
}
