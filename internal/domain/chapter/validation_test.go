package chapter

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestValidateConsent(t *testing.T) {
	require.NoError(t, ValidateConsent(ConsentAgreed, ""))
	require.NoError(t, ValidateConsent(ConsentAlternative, "push to spring"))
	require.ErrorIs(t, ValidateConsent(ConsentAlternative, ""), ErrMissingNote)
	require.ErrorIs(t, ValidateConsent(ConsentAlternative, " \t\n"), ErrMissingNote)
	require.ErrorIs(t, ValidateConsent(ConsentPending, ""), ErrInvalidTransition)
	require.ErrorIs(t, ValidateConsent("MAYBE", "note"), ErrInvalidTransition)
}

func TestValidateEdit(t *testing.T) {
	blank := "  "
	low, high, ok := -1, 101, 100
	require.ErrorIs(t, ValidateEdit(Edit{Title: &blank}), ErrInvalidInput)
	require.ErrorIs(t, ValidateEdit(Edit{Progress: &low}), ErrInvalidInput)
	require.ErrorIs(t, ValidateEdit(Edit{Progress: &high}), ErrInvalidInput)
	require.NoError(t, ValidateEdit(Edit{Progress: &ok}))

	dup := []Milestone{{ID: 1, Text: "a"}, {ID: 1, Text: "b"}}
	require.ErrorIs(t, ValidateEdit(Edit{Milestones: dup}), ErrInvalidInput)

	badDate := []Milestone{{ID: 1, Text: "a", Date: "next tuesday"}}
	require.ErrorIs(t, ValidateEdit(Edit{Milestones: badDate}), ErrInvalidInput)

	require.NoError(t, ValidateEdit(Edit{Milestones: []Milestone{}}))
}

func TestMilestones_UniqueAfterSequentialAdds(t *testing.T) {
	now := time.UnixMilli(1_700_000_000_000)
	var ms []Milestone
	for i := 0; i < 50; i++ {
		var err error
		ms, _, err = AddMilestone(ms, "task", "", now)
		require.NoError(t, err)
	}
	require.Len(t, ms, 50)
	require.NoError(t, ValidateMilestones(ms))
	for i := 1; i < len(ms); i++ {
		require.Greater(t, ms[i].ID, ms[i-1].ID)
	}
}

func TestMilestones_ClockBehindExistingIDs(t *testing.T) {
	existing := []Milestone{{ID: 5_000, Text: "future"}}
	id := NextMilestoneID(existing, time.UnixMilli(10))
	require.Equal(t, int64(5_001), id)
}

func TestMilestones_ToggleLeavesOthersAlone(t *testing.T) {
	ms := []Milestone{
		{ID: 1, Text: "a", Date: "2026-01-01"},
		{ID: 2, Text: "b"},
		{ID: 3, Text: "c", Done: true},
	}
	out, err := ToggleMilestone(ms, 2)
	require.NoError(t, err)
	require.True(t, out[1].Done)
	require.Equal(t, ms[0], out[0])
	require.Equal(t, ms[2], out[2])
	require.False(t, ms[1].Done, "input must not be mutated")

	_, err = ToggleMilestone(ms, 99)
	require.ErrorIs(t, err, ErrMilestoneNotFound)
}

func TestMilestones_RemoveAndSchedule(t *testing.T) {
	ms := []Milestone{{ID: 1, Text: "a"}}
	out, err := RemoveMilestone(ms, 1)
	require.NoError(t, err)
	require.NotNil(t, out)
	require.Empty(t, out)

	_, err = RemoveMilestone(ms, 2)
	require.ErrorIs(t, err, ErrMilestoneNotFound)

	out, err = ScheduleMilestone(ms, 1, "2026-11-02")
	require.NoError(t, err)
	require.Equal(t, "2026-11-02", out[0].Date)

	_, err = ScheduleMilestone(ms, 1, "11/02/2026")
	require.ErrorIs(t, err, ErrInvalidInput)
}

func TestDoneRatio(t *testing.T) {
	require.Equal(t, 0, DoneRatio(nil))
	require.Equal(t, 33, DoneRatio([]Milestone{{Done: true}, {}, {}}))
	require.Equal(t, 100, DoneRatio([]Milestone{{Done: true}}))
}

func TestCalendarURL(t *testing.T) {
	u := CalendarURL(Chapter{
		Title:         "Trip Plan",
		ConsentStatus: ConsentAgreed,
		Milestones:    []Milestone{{Text: "Book flights", Done: true}, {Text: "Pack"}},
	})
	require.Contains(t, u, "action=TEMPLATE")
	require.Contains(t, u, "text=%5BSYNC-US%5D+Trip+Plan")
	require.Contains(t, u, "Status%3A+AGREED")
	require.Contains(t, u, "Book+flights")

	empty := CalendarURL(Chapter{Title: "x", ConsentStatus: ConsentPending})
	require.Contains(t, empty, "No+nodes+defined")
}

func TestPatchApplyAndSplit(t *testing.T) {
	agreed := ConsentAgreed
	done := true
	c := Patch{ConsentStatus: &agreed, IsFinished: &done}.Apply(Chapter{ID: "c1", ConsentStatus: ConsentPending, AlternativeNote: "keep"})
	require.Equal(t, ConsentAgreed, c.ConsentStatus)
	require.Equal(t, "keep", c.AlternativeNote)

	active, finished := Split([]Chapter{c, {ID: "c2"}})
	require.Len(t, active, 1)
	require.Equal(t, "c2", active[0].ID)
	require.Len(t, finished, 1)
	require.True(t, Patch{}.IsEmpty())
}
