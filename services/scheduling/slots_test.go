package scheduling

import (
	"testing"
	"time"

	"clipbook/models"
)

func day(t *testing.T) time.Time {
	t.Helper()
	return time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)
}

func TestGenerateSlots_SplitScheduleSkipsGap(t *testing.T) {
	blocks := []models.TimeBlock{
		{Start: 9 * 60, End: 12 * 60},
		{Start: 13 * 60, End: 18 * 60},
	}

	slots := GenerateSlots(day(t), blocks, time.Hour)
	if len(slots) != 8 {
		t.Fatalf("slot count = %d, want 8 (3 morning + 5 afternoon)", len(slots))
	}

	// No slot may cross the 12:00-13:00 gap.
	gapStart := day(t).Add(12 * time.Hour)
	gapEnd := day(t).Add(13 * time.Hour)
	for _, slot := range slots {
		if slot.Start.Before(gapEnd) && slot.End().After(gapStart) {
			t.Fatalf("slot %v-%v crosses the midday gap", slot.Start, slot.End())
		}
	}

	if got, want := slots[0].Start, day(t).Add(9*time.Hour); !got.Equal(want) {
		t.Fatalf("first slot = %v, want %v", got, want)
	}
	if got, want := slots[3].Start, day(t).Add(13*time.Hour); !got.Equal(want) {
		t.Fatalf("first afternoon slot = %v, want %v", got, want)
	}
	if got, want := slots[7].Start, day(t).Add(17*time.Hour); !got.Equal(want) {
		t.Fatalf("last slot = %v, want %v", got, want)
	}
}

func TestGenerateSlots_PartialTrailingWindowDropped(t *testing.T) {
	// 9:00-12:30 with hour slots: 12:00 start would run past the block end.
	blocks := []models.TimeBlock{{Start: 9 * 60, End: 12*60 + 30}}
	slots := GenerateSlots(day(t), blocks, time.Hour)
	if len(slots) != 3 {
		t.Fatalf("slot count = %d, want 3", len(slots))
	}
}

func TestGenerateSlots_InvertedAndEmptyBlocks(t *testing.T) {
	blocks := []models.TimeBlock{
		{Start: 12 * 60, End: 9 * 60}, // inverted
		{Start: 10 * 60, End: 10 * 60}, // zero length
		{Start: 14 * 60, End: 16 * 60},
	}
	slots := GenerateSlots(day(t), blocks, time.Hour)
	if len(slots) != 2 {
		t.Fatalf("slot count = %d, want 2 (degenerate blocks contribute nothing)", len(slots))
	}
}

func TestFilterConflicts_ContainedSlotExcluded(t *testing.T) {
	slots := GenerateSlots(day(t), []models.TimeBlock{{Start: 9 * 60, End: 18 * 60}}, time.Hour)
	busy := []models.BusyInterval{
		{Start: day(t).Add(13*time.Hour + 30*time.Minute), End: day(t).Add(15*time.Hour + 30*time.Minute)},
	}

	kept := FilterConflicts(slots, busy)
	for _, slot := range kept {
		if slot.Start.Hour() == 13 || slot.Start.Hour() == 14 || slot.Start.Hour() == 15 {
			t.Fatalf("slot at %v overlaps busy interval and should be excluded", slot.Start)
		}
	}
	if len(kept) != len(slots)-3 {
		t.Fatalf("kept %d slots, want %d", len(kept), len(slots)-3)
	}
}

func TestFilterConflicts_AbuttingEndpointsRetained(t *testing.T) {
	slot := models.Slot{Start: day(t).Add(10 * time.Hour), Duration: time.Hour}

	// busy.start == slot.end: no overlap under half-open semantics.
	after := []models.BusyInterval{{Start: slot.End(), End: slot.End().Add(time.Hour)}}
	if kept := FilterConflicts([]models.Slot{slot}, after); len(kept) != 1 {
		t.Fatalf("slot abutting a following busy interval must be retained")
	}

	// busy.end == slot.start: also no overlap.
	before := []models.BusyInterval{{Start: slot.Start.Add(-time.Hour), End: slot.Start}}
	if kept := FilterConflicts([]models.Slot{slot}, before); len(kept) != 1 {
		t.Fatalf("slot abutting a preceding busy interval must be retained")
	}

	// One minute of genuine overlap excludes.
	overlapping := []models.BusyInterval{{Start: slot.End().Add(-time.Minute), End: slot.End().Add(time.Hour)}}
	if kept := FilterConflicts([]models.Slot{slot}, overlapping); len(kept) != 0 {
		t.Fatalf("overlapping slot must be excluded")
	}
}

func TestFilterConflicts_MustClearEveryInterval(t *testing.T) {
	slots := GenerateSlots(day(t), []models.TimeBlock{{Start: 9 * 60, End: 12 * 60}}, time.Hour)
	busy := []models.BusyInterval{
		{Start: day(t).Add(9 * time.Hour), End: day(t).Add(10 * time.Hour)},
		{Start: day(t).Add(11 * time.Hour), End: day(t).Add(12 * time.Hour)},
	}
	kept := FilterConflicts(slots, busy)
	if len(kept) != 1 {
		t.Fatalf("kept %d slots, want only the 10:00 slot", len(kept))
	}
	if kept[0].Start.Hour() != 10 {
		t.Fatalf("kept slot = %v, want 10:00", kept[0].Start)
	}
}

func TestParseBusinessHours(t *testing.T) {
	tests := []struct {
		name     string
		startCfg string
		endCfg   string
		want     []models.TimeBlock
		wantErr  bool
	}{
		{
			name:     "single block",
			startCfg: "09:00",
			endCfg:   "18:00",
			want:     []models.TimeBlock{{Start: 540, End: 1080}},
		},
		{
			name:     "split schedule with spaces",
			startCfg: "09:00; 16:00",
			endCfg:   "12:00; 20:00",
			want:     []models.TimeBlock{{Start: 540, End: 720}, {Start: 960, End: 1200}},
		},
		{
			name:     "mismatched block counts",
			startCfg: "09:00;16:00",
			endCfg:   "18:00",
			wantErr:  true,
		},
		{
			name:     "garbage clock",
			startCfg: "nine",
			endCfg:   "18:00",
			wantErr:  true,
		},
		{
			name:     "out of range hour",
			startCfg: "25:00",
			endCfg:   "26:00",
			wantErr:  true,
		},
		{
			name:     "inverted block",
			startCfg: "18:00",
			endCfg:   "09:00",
			wantErr:  true,
		},
		{
			name:     "empty block",
			startCfg: "09:00",
			endCfg:   "09:00",
			wantErr:  true,
		},
		{
			// Misordered split schedule would invert the calendar read
			// window downstream and hide busy intervals.
			name:     "out of order blocks",
			startCfg: "13:00;09:00",
			endCfg:   "18:00;12:00",
			wantErr:  true,
		},
		{
			name:     "overlapping blocks",
			startCfg: "09:00;11:00",
			endCfg:   "12:00;15:00",
			wantErr:  true,
		},
		{
			// Half-open blocks may abut exactly.
			name:     "abutting blocks",
			startCfg: "09:00;12:00",
			endCfg:   "12:00;18:00",
			want:     []models.TimeBlock{{Start: 540, End: 720}, {Start: 720, End: 1080}},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := ParseBusinessHours(tc.startCfg, tc.endCfg)
			if tc.wantErr {
				if err == nil {
					t.Fatalf("expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseBusinessHours error: %v", err)
			}
			if len(got) != len(tc.want) {
				t.Fatalf("block count = %d, want %d", len(got), len(tc.want))
			}
			for i := range got {
				if got[i] != tc.want[i] {
					t.Fatalf("block[%d] = %+v, want %+v", i, got[i], tc.want[i])
				}
			}
		})
	}
}
