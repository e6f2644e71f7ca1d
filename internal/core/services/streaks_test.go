package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestCalculateStreaks(t *testing.T) {
	today := time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC)
	ago := func(n int) time.Time { return today.AddDate(0, 0, -n) }

	tests := []struct {
		name        string
		dates       []time.Time
		wantCurrent int
		wantLongest int
	}{
		{"No dates", nil, 0, 0},
		{"Run ending today", []time.Time{ago(0), ago(1), ago(2)}, 3, 3},
		{"Run ending yesterday", []time.Time{ago(1), ago(2)}, 2, 2},
		{"Broken run", []time.Time{ago(2), ago(3)}, 0, 2},
		{"Duplicates count once", []time.Time{ago(0), ago(0).Add(5 * time.Hour), ago(1)}, 2, 2},
		{"Longest run in the past", []time.Time{ago(0), ago(1), ago(5), ago(6), ago(7), ago(8)}, 2, 4},
		{"Unordered input", []time.Time{ago(8), ago(0), ago(6), ago(7), ago(1)}, 2, 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			current, longest := calculateStreaks(tt.dates, today)
			assert.Equal(t, tt.wantCurrent, current)
			assert.Equal(t, tt.wantLongest, longest)
		})
	}
}
