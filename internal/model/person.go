package model

import "time"

// Person detained individual, table persons
type Person struct {
	PersonID   string     `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"person_id"`
	FullName   string     `gorm:"type:varchar(255);not null"                     json:"full_name"`
	CPF        *string    `gorm:"type:varchar(11);uniqueIndex"                   json:"cpf,omitempty"`
	MotherName *string    `gorm:"type:varchar(255)"                              json:"mother_name,omitempty"`
	BirthDate  *time.Time `gorm:"type:date"                                      json:"birth_date,omitempty"`
	BaseModel

	Processes []Process `gorm:"foreignKey:PersonID;references:PersonID;constraint:OnDelete:CASCADE" json:"processes,omitempty"`
}

func (Person) TableName() string { return "persons" }

// Process legal case of one person, table processes
type Process struct {
	ProcessID        string     `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"process_id"`
	PersonID         string     `gorm:"type:uuid;not null;index"                       json:"person_id"`
	ProcessNumber    string     `gorm:"type:varchar(50);not null;index"                json:"process_number"`
	ProceduralStatus *string    `gorm:"type:varchar(100)"                              json:"procedural_status,omitempty"`
	CustodyType      *string    `gorm:"type:varchar(100)"                              json:"custody_type,omitempty"`
	ArrestedOn       *time.Time `gorm:"type:date"                                      json:"arrested_on,omitempty"`
	DetentionSite    *string    `gorm:"type:varchar(255)"                              json:"detention_site,omitempty"`
	BaseModel

	Person *Person `gorm:"foreignKey:PersonID;references:PersonID"                              json:"person,omitempty"`
	Events []Event `gorm:"foreignKey:ProcessID;references:ProcessID;constraint:OnDelete:CASCADE" json:"events,omitempty"`
}

func (Process) TableName() string { return "processes" }
