package model

const (
	RoleAdmin  = "admin"
	RoleLawyer = "lawyer"
)

// User authenticated operator, table users
type User struct {
	UserID       string  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"user_id"`
	FullName     string  `gorm:"type:varchar(255);not null"                     json:"full_name"`
	CPF          string  `gorm:"type:varchar(11);not null;uniqueIndex"          json:"cpf"`
	Email        *string `gorm:"type:varchar(255)"                              json:"email,omitempty"`
	PasswordHash string  `gorm:"type:varchar(255);not null"                     json:"-"`
	Role         string  `gorm:"type:varchar(20);not null;default:'lawyer'"     json:"role"`
	IsActive     bool    `gorm:"not null;default:true"                          json:"is_active"`
	BaseModel

	NotificationPreference *NotificationPreference `gorm:"foreignKey:UserID;references:UserID" json:"notification_preference,omitempty"`
}

func (User) TableName() string { return "users" }

// MailAddress the dispatch target, empty when the user has none
func (u *User) MailAddress() string {
	if u.Email == nil {
		return ""
	}
	return *u.Email
}
