package cache

import (
	"net/http"
	"testing"
	"time"
)

func TestTTLFromHeaders(t *testing.T) {
	tests := []struct {
		name    string
		headers http.Header
		wantMin time.Duration
		wantMax time.Duration
	}{
		{
			name:    "no headers",
			headers: http.Header{},
			wantMin: DefaultTTL,
			wantMax: DefaultTTL,
		},
		{
			name:    "max-age",
			headers: http.Header{"Cache-Control": []string{"public, max-age=30"}},
			wantMin: 30 * time.Second,
			wantMax: 30 * time.Second,
		},
		{
			name:    "no-store",
			headers: http.Header{"Cache-Control": []string{"no-store"}},
			wantMin: 0,
			wantMax: 0,
		},
		{
			name: "max-age wins over expires",
			headers: http.Header{
				"Cache-Control": []string{"max-age=10"},
				"Expires":       []string{time.Now().Add(1 * time.Hour).Format(http.TimeFormat)},
			},
			wantMin: 10 * time.Second,
			wantMax: 10 * time.Second,
		},
		{
			name:    "expires header",
			headers: http.Header{"Expires": []string{time.Now().Add(1 * time.Hour).Format(http.TimeFormat)}},
			wantMin: 59 * time.Minute,
			wantMax: 61 * time.Minute,
		},
		{
			name:    "invalid expires header",
			headers: http.Header{"Expires": []string{"not a valid date"}},
			wantMin: DefaultTTL,
			wantMax: DefaultTTL,
		},
		{
			name:    "expires in the past",
			headers: http.Header{"Expires": []string{time.Now().Add(-1 * time.Hour).Format(http.TimeFormat)}},
			wantMin: 0,
			wantMax: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := TTLFromHeaders(tt.headers)
			if got < tt.wantMin || got > tt.wantMax {
				t.Errorf("TTLFromHeaders() = %v, want between %v and %v", got, tt.wantMin, tt.wantMax)
			}
		})
	}
}
