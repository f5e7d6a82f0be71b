package server

import (
	"net/http/httptest"
	"testing"
)

func TestAllowOrigins(t *testing.T) {
	check := allowOrigins([]string{"http://localhost:3000", "https://forum.example"})

	tests := []struct {
		origin string
		want   bool
	}{
		{"", true},
		{"http://localhost:3000", true},
		{"https://forum.example", true},
		{"https://evil.example", false},
	}

	for _, tt := range tests {
		t.Run(tt.origin, func(t *testing.T) {
			req := httptest.NewRequest("GET", "/api/notifications/ws", nil)
			if tt.origin != "" {
				req.Header.Set("Origin", tt.origin)
			}
			if got := check(req); got != tt.want {
				t.Errorf("allowOrigins(%q) = %v, want %v", tt.origin, got, tt.want)
			}
		})
	}
}
