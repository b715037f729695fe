package model

import (
	"testing"
	"time"
)

func TestCacheRecordExpired(t *testing.T) {
	now := time.Now()
	ttl := 24 * time.Hour

	tests := []struct {
		name      string
		writtenAt time.Time
		want      bool
	}{
		{"fresh", now.Add(-time.Hour), false},
		{"exactly at ttl", now.Add(-ttl), false},
		{"just past ttl", now.Add(-ttl - time.Second), true},
		{"ancient", now.Add(-30 * 24 * time.Hour), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := CacheRecord{Key: "k", Price: 1.0, WrittenAt: tt.writtenAt}
			if got := r.Expired(now, ttl); got != tt.want {
				t.Errorf("Expired = %v, want %v", got, tt.want)
			}
		})
	}
}
