package config

import (
	"testing"
	"time"
)

func TestParseDurationField(t *testing.T) {
	tests := []struct {
		in      string
		want    time.Duration
		set     bool
		wantErr bool
	}{
		{"", 0, false, false},
		{"  ", 0, false, false},
		{"10s", 10 * time.Second, true, false},
		{"500ms", 500 * time.Millisecond, true, false},
		{"1m30s", 90 * time.Second, true, false},
		{"0s", 0, true, false},
		{"-5s", 0, false, true},
		{"soon", 0, false, true},
		{"10", 0, false, true},
	}
	for _, tt := range tests {
		d, ok, err := ParseDurationField(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseDurationField(%q) err = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if d != tt.want || ok != tt.set {
			t.Errorf("ParseDurationField(%q) = %v, %v; want %v, %v", tt.in, d, ok, tt.want, tt.set)
		}
	}
}

func TestDurationOrDefault(t *testing.T) {
	def := 10 * time.Second
	if got := DurationOrDefault("", def); got != def {
		t.Fatalf("empty should default: %v", got)
	}
	if got := DurationOrDefault("junk", def); got != def {
		t.Fatalf("malformed should default: %v", got)
	}
	if got := DurationOrDefault("-1s", def); got != def {
		t.Fatalf("negative should default: %v", got)
	}
	if got := DurationOrDefault("3s", def); got != 3*time.Second {
		t.Fatalf("valid should win: %v", got)
	}
}
