package models

// TimetableEntry is one scheduled class slot. DayOfWeek and TimeSlot stay in
// their raw display form ("Monday", "08:00"); the ML pipeline normalizes
// them at prediction time.
type TimetableEntry struct {
	ID                 uint      `gorm:"primaryKey" json:"id"`
	ClassroomID        uint      `gorm:"column:classroom_id;not null" json:"classroom_id"`
	DayOfWeek          string    `gorm:"column:day_of_week;size:20;not null" json:"day"`
	TimeSlot           string    `gorm:"column:time_slot;size:20;not null" json:"time"`
	Subject            string    `gorm:"column:subject;size:100" json:"subject"`
	SubjectType        string    `gorm:"column:subject_type;size:20" json:"type"`
	TeacherName        string    `gorm:"column:teacher_name;size:100" json:"teacher"`
	TeacherEmail       string    `gorm:"column:teacher_email;size:120" json:"email"`
	ExpectedAttendance float64   `gorm:"column:expected_attendance" json:"attendance"`
	Classroom          Classroom `gorm:"foreignKey:ClassroomID" json:"-"`
}

func (TimetableEntry) TableName() string { return "timetable_entries" }
