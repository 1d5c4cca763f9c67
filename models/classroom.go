package models

type Classroom struct {
	ID        uint   `gorm:"primaryKey" json:"id"`
	Name      string `gorm:"column:name;size:50;not null" json:"name"`
	Building  string `gorm:"column:building;size:50" json:"building"`
	Capacity  int    `gorm:"column:capacity;not null" json:"capacity"`
	NumLights int    `gorm:"column:num_lights;default:8" json:"lights"`
	NumACs    int    `gorm:"column:num_acs;default:2" json:"acs"`
	IsActive  bool   `gorm:"column:is_active;default:true" json:"-"`
}

func (Classroom) TableName() string { return "classrooms" }
