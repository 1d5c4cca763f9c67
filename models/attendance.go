package models

import "time"

// AttendanceRecord stores the actual turnout reported after a class, the
// ground truth fed back into the prediction engine.
type AttendanceRecord struct {
	ID               uint           `gorm:"primaryKey" json:"id"`
	TimetableEntryID uint           `gorm:"column:timetable_entry_id;not null" json:"timetable_entry_id"`
	Date             time.Time      `gorm:"column:date" json:"date"`
	ActualAttendance float64        `gorm:"column:actual_attendance" json:"actual_attendance"`
	TimetableEntry   TimetableEntry `gorm:"foreignKey:TimetableEntryID" json:"-"`
}

func (AttendanceRecord) TableName() string { return "attendance_records" }
