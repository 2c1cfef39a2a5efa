package chi

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func TestAuthMiddleware(t *testing.T) {
	tests := []struct {
		name   string
		keys   []string
		path   string
		header string
		want   int
	}{
		{"no keys pass through", nil, "/api/books", "", http.StatusOK},
		{"blank keys pass through", []string{"", ""}, "/api/books", "", http.StatusOK},
		{"missing header", []string{"secret"}, "/api/books", "", http.StatusUnauthorized},
		{"wrong scheme", []string{"secret"}, "/api/books", "Basic secret", http.StatusUnauthorized},
		{"wrong key", []string{"secret"}, "/api/books", "Bearer nope", http.StatusUnauthorized},
		{"valid key", []string{"other", "secret"}, "/api/books", "Bearer secret", http.StatusOK},
		{"health is public", []string{"secret"}, "/health", "", http.StatusOK},
		{"metrics is public", []string{"secret"}, "/metrics", "", http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := BearerAuthMiddleware(tt.keys)(okHandler())
			req := httptest.NewRequest(http.MethodGet, tt.path, http.NoBody)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rr := httptest.NewRecorder()
			handler.ServeHTTP(rr, req)

			if rr.Code != tt.want {
				t.Fatalf("got %d, want %d", rr.Code, tt.want)
			}
			if tt.want == http.StatusUnauthorized {
				resp := decode[ErrorResponse](t, rr)
				if resp.Code != CodeUnauthorized {
					t.Errorf("code: got %q", resp.Code)
				}
			}
		})
	}
}
