package report

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

func TestDayWindow(t *testing.T) {
	now := time.Date(2024, 5, 7, 21, 0, 0, 0, time.UTC)

	start, end := DayWindow(now)

	if diff := cmp.Diff("2024-05-07", start); diff != "" {
		t.Errorf("start mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff("2024-05-07", end); diff != "" {
		t.Errorf("end mismatch (-want +got):\n%s", diff)
	}
}

func TestWeekWindowCoversSevenDays(t *testing.T) {
	now := time.Date(2024, 5, 7, 21, 0, 0, 0, time.UTC)

	start, end := WeekWindow(now)

	if diff := cmp.Diff("2024-05-01", start); diff != "" {
		t.Errorf("start mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff("2024-05-07", end); diff != "" {
		t.Errorf("end mismatch (-want +got):\n%s", diff)
	}
}

func TestWeekWindowCrossesMonthBoundary(t *testing.T) {
	now := time.Date(2024, 3, 2, 9, 0, 0, 0, time.UTC)

	start, end := WeekWindow(now)

	if diff := cmp.Diff("2024-02-25", start); diff != "" {
		t.Errorf("start mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff("2024-03-02", end); diff != "" {
		t.Errorf("end mismatch (-want +got):\n%s", diff)
	}
}
