package storage

import "testing"

func TestOutputKey_Key(t *testing.T) {
	key := OutputKey{
		Category: "dsp_summary",
		Year:     "2025",
		Month:    "02",
		Stem:     "2025-02-10-DSK4-CYCLE_1-DSP-DayOfOpsPlan",
		Sheet:    "Solution",
	}

	got := key.Key()
	want := "dsp_summary/2025/02/2025-02-10-DSK4-CYCLE_1-DSP-DayOfOpsPlan__Solution.csv"

	if got != want {
		t.Fatalf("Key() = %s, want %s", got, want)
	}
}

func TestArchiveKey_Key(t *testing.T) {
	key := ArchiveKey{
		Category: "driver_routes",
		Year:     "2025",
		Month:    "09",
		Name:     "Routes_DSK4_2025-09-13_15_16 (EDT).xlsx",
	}

	got := key.Key()
	want := "_archive/driver_routes/2025/09/Routes_DSK4_2025-09-13_15_16 (EDT).xlsx"

	if got != want {
		t.Fatalf("Key() = %s, want %s", got, want)
	}
}
