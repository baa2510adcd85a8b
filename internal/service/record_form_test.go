package service

import (
	"errors"
	"exam_dashboard/internal/model"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validForm() RecordForm {
	return RecordForm{
		HoursStudied:      "8.5",
		SleepHours:        "7",
		AttendancePercent: "92.5",
		PreviousScores:    "78",
		ExamScore:         "81.5",
	}
}

func TestRecordFormValid(t *testing.T) {
	rec, err := validForm().Validate()
	require.NoError(t, err)
	assert.Equal(t, model.NewStudentRecord{
		HoursStudied:      8.5,
		SleepHours:        7,
		AttendancePercent: 92.5,
		PreviousScores:    78,
		ExamScore:         81.5,
	}, rec)
}

func TestRecordFormHoursBoundary(t *testing.T) {
	f := validForm()
	f.HoursStudied = "24"
	_, err := f.Validate()
	assert.NoError(t, err)

	f.HoursStudied = "25"
	_, err = f.Validate()
	var verr *ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, "Hours studied must be between 0 and 24", verr.Message)
}

func TestRecordFormMessages(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*RecordForm)
		want   string
	}{
		{"not a number", func(f *RecordForm) { f.ExamScore = "abc" }, "Please enter valid numbers for all fields"},
		{"empty", func(f *RecordForm) { f.PreviousScores = "" }, "Please enter valid numbers for all fields"},
		{"negative study", func(f *RecordForm) { f.HoursStudied = "-0.5" }, "Hours studied must be between 0 and 24"},
		{"sleep", func(f *RecordForm) { f.SleepHours = "24.1" }, "Sleep hours must be between 0 and 24"},
		{"attendance", func(f *RecordForm) { f.AttendancePercent = "101" }, "Attendance must be between 0 and 100"},
		{"study reported before sleep", func(f *RecordForm) {
			f.HoursStudied = "30"
			f.SleepHours = "30"
		}, "Hours studied must be between 0 and 24"},
		{"numbers checked before ranges", func(f *RecordForm) {
			f.HoursStudied = "30"
			f.ExamScore = "x"
		}, "Please enter valid numbers for all fields"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			f := validForm()
			tc.mutate(&f)
			_, err := f.Validate()
			require.Error(t, err)
			assert.Equal(t, tc.want, err.Error())
		})
	}
}

func TestRecordFormScoresNotRangeChecked(t *testing.T) {
	f := validForm()
	f.PreviousScores = "150.9"
	f.ExamScore = "-20"

	rec, err := f.Validate()
	require.NoError(t, err)
	assert.Equal(t, 150, rec.PreviousScores)
	assert.Equal(t, -20.0, rec.ExamScore)
}

func TestRecordFormPreviousScoresIntegerPrefix(t *testing.T) {
	cases := map[string]int{
		"78":     78,
		" 78.9 ": 78,
		"1e2":    1,
		"42abc":  42,
		"-3":     -3,
		"+7":     7,
	}
	for raw, want := range cases {
		f := validForm()
		f.PreviousScores = raw
		rec, err := f.Validate()
		require.NoError(t, err, raw)
		assert.Equal(t, want, rec.PreviousScores, raw)
	}

	for _, raw := range []string{"", "abc", ".5", "-", "e2"} {
		f := validForm()
		f.PreviousScores = raw
		_, err := f.Validate()
		assert.EqualError(t, err, "Please enter valid numbers for all fields", raw)
	}
}
