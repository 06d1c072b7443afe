package graphql

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
)

func TestQueryDecodesData(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("method = %s, want POST", r.Method)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer tok123" {
			t.Errorf("Authorization = %q", got)
		}
		if got := r.Header.Get("Content-Type"); got != "application/json" {
			t.Errorf("Content-Type = %q", got)
		}
		w.Write([]byte(`{"data":{"user":[{"id":42,"login":"jdoe"}]}}`))
	}))
	defer srv.Close()

	var out struct {
		User []struct {
			ID    int64  `json:"id"`
			Login string `json:"login"`
		} `json:"user"`
	}
	c := NewClient(srv.URL, nil)
	if err := c.Query(context.Background(), "tok123", "{ user { id login } }", nil, &out); err != nil {
		t.Fatalf("Query: %v", err)
	}
	if len(out.User) != 1 || out.User[0].ID != 42 || out.User[0].Login != "jdoe" {
		t.Fatalf("decoded %+v", out)
	}
}

func TestQueryStripsTokenQuotes(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer tok123" {
			t.Errorf("Authorization = %q, want quotes stripped", got)
		}
		w.Write([]byte(`{"data":{}}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, nil)
	if err := c.Query(context.Background(), `"tok123"`, "{ user { id } }", nil, nil); err != nil {
		t.Fatalf("Query: %v", err)
	}
}

func TestQueryEmptyTokenFailsBeforeNetwork(t *testing.T) {
	var hits int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, nil)
	for _, token := range []string{"", "  ", `""`} {
		err := c.Query(context.Background(), token, "{ user }", nil, nil)
		var ae *AuthError
		if !errors.As(err, &ae) {
			t.Fatalf("token %q: err = %v, want AuthError", token, err)
		}
	}
	if n := atomic.LoadInt32(&hits); n != 0 {
		t.Fatalf("server received %d requests, want 0", n)
	}
}

func TestQueryServerErrors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"errors":[{"message":"field \"bogus\" not found"}]}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, nil)
	err := c.Query(context.Background(), "tok", "{ bogus }", nil, nil)
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("err = %v, want APIError", err)
	}
	if len(apiErr.Errors) != 1 || apiErr.Errors[0].Message == "" {
		t.Fatalf("APIError = %+v, want server detail", apiErr)
	}
}

func TestQueryNonSuccessStatus(t *testing.T) {
	cases := []struct {
		name string
		code int
		body string
	}{
		{"json error body", http.StatusForbidden, `{"errors":[{"message":"access denied"}]}`},
		{"non-json body", http.StatusBadGateway, "upstream down"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tc.code)
				w.Write([]byte(tc.body))
			}))
			defer srv.Close()

			c := NewClient(srv.URL, nil)
			err := c.Query(context.Background(), "tok", "{ user }", nil, nil)
			var apiErr *APIError
			if !errors.As(err, &apiErr) {
				t.Fatalf("err = %v, want APIError", err)
			}
			if apiErr.StatusCode != tc.code {
				t.Fatalf("StatusCode = %d, want %d", apiErr.StatusCode, tc.code)
			}
		})
	}
}

func TestQueryTransportError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // nothing listening anymore

	c := NewClient(srv.URL, nil)
	err := c.Query(context.Background(), "tok", "{ user }", nil, nil)
	var te *TransportError
	if !errors.As(err, &te) {
		t.Fatalf("err = %v, want TransportError", err)
	}
}

func TestQueryVariablesForwarded(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Query     string         `json:"query"`
			Variables map[string]any `json:"variables"`
		}
		if err := jsonDecode(r, &req); err != nil {
			t.Errorf("decode request: %v", err)
		}
		if req.Variables["userId"] != float64(7) {
			t.Errorf("variables = %v", req.Variables)
		}
		w.Write([]byte(`{"data":{}}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, nil)
	err := c.Query(context.Background(), "tok", "query ($userId: Int!) { x }", map[string]any{"userId": 7}, nil)
	if err != nil {
		t.Fatalf("Query: %v", err)
	}
}

func jsonDecode(r *http.Request, out any) error {
	defer r.Body.Close()
	return json.NewDecoder(r.Body).Decode(out)
}
