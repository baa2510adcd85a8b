package model

type AttendancePoint struct {
	Attendance float64 `json:"attendance"`
	Score      float64 `json:"score"`
}

type StudySleepBucket struct {
	HoursStudied int     `json:"hoursStudied"`
	HoursSleep   int     `json:"hoursSleep"`
	AvgScore     float64 `json:"avgScore"`
}

type ChartData struct {
	ScoreVsAttendance       []AttendancePoint  `json:"scoreVsAttendance"`
	AvgScoreByStudyAndSleep []StudySleepBucket `json:"avgScoreByStudyAndSleep"`
}
