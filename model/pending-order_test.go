package model

import (
	"testing"
	"time"
)

func TestPendingOrderWaitingFor(t *testing.T) {
	created := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	p := PendingOrder{DTO: DTO{CreatedAt: created}}

	tests := []struct {
		name string
		now  time.Time
		want time.Duration
	}{
		{"recem enviado", created.Add(30 * time.Second), 30 * time.Second},
		{"quase no TTL", created.Add(29 * time.Minute), 29 * time.Minute},
		{"alem do TTL", created.Add(45 * time.Minute), 45 * time.Minute},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := p.WaitingFor(tt.now); got != tt.want {
				t.Errorf("WaitingFor() = %v, want %v", got, tt.want)
			}
		})
	}
}
