package scrollkeeper

import (
	"testing"
	"time"
)

func TestKeeperShouldRotate(t *testing.T) {
	base := time.Date(2024, 5, 6, 10, 0, 0, 0, time.UTC)
	tests := []struct {
		name string // description of this test case
		k    *Keeper
		at   time.Time
		want bool
	}{
		{
			name: "below the size threshold",
			k:    &Keeper{archiveFolder: "/tmp", maxSize: 100, currentSize: 99, since: base},
			at:   base,
			want: false,
		},
		{
			name: "at the size threshold",
			k:    &Keeper{archiveFolder: "/tmp", maxSize: 100, currentSize: 100, since: base},
			at:   base,
			want: true,
		},
		{
			name: "size threshold disabled",
			k:    &Keeper{archiveFolder: "/tmp", maxSize: 0, currentSize: 1 << 30, since: base},
			at:   base,
			want: false,
		},
		{
			name: "below the interval",
			k:    &Keeper{archiveFolder: "/tmp", maxInterval: 10 * time.Minute, since: base},
			at:   base.Add(9 * time.Minute),
			want: false,
		},
		{
			name: "at the interval",
			k:    &Keeper{archiveFolder: "/tmp", maxInterval: 10 * time.Minute, since: base},
			at:   base.Add(10 * time.Minute),
			want: true,
		},
		{
			name: "daily within the same day",
			k:    &Keeper{archiveFolder: "/tmp", mode: rotateDaily, since: base},
			at:   base.Add(time.Hour),
			want: false,
		},
		{
			name: "daily across midnight",
			k:    &Keeper{archiveFolder: "/tmp", mode: rotateDaily, since: base},
			at:   base.Add(15 * time.Hour),
			want: true,
		},
		{
			name: "daily exactly at midnight",
			k:    &Keeper{archiveFolder: "/tmp", mode: rotateDaily, since: time.Date(2024, 5, 6, 23, 59, 0, 0, time.UTC)},
			at:   time.Date(2024, 5, 7, 0, 0, 0, 0, time.UTC),
			want: true,
		},
		{
			name: "daily ignores the size threshold",
			k:    &Keeper{archiveFolder: "/tmp", mode: rotateDaily, maxSize: 10, currentSize: 1 << 20, since: base},
			at:   base.Add(time.Hour),
			want: false,
		},
		{
			name: "no archive folder resolved yet",
			k:    &Keeper{archiveFolder: "", maxSize: 100, currentSize: 1 << 30, since: base},
			at:   base,
			want: false,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.k.shouldRotate(tt.at); got != tt.want {
				t.Errorf("shouldRotate() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestStartOfDay(t *testing.T) {
	at := time.Date(2024, 5, 6, 23, 59, 59, 999_999_999, time.UTC)
	want := time.Date(2024, 5, 6, 0, 0, 0, 0, time.UTC)
	if got := startOfDay(at); !got.Equal(want) {
		t.Errorf("startOfDay() = %v, want %v", got, want)
	}
}
