package model

// NotificationPreference per-user alert digest opt-in, table notification_preferences (1:1 users)
// An absent row means the user is opted out.
type NotificationPreference struct {
	UserID      string `gorm:"type:uuid;primaryKey"   json:"user_id"`
	EmailAlerts bool   `gorm:"not null;default:false" json:"email_alerts"`
	BaseModel
}

// TableName table name
func (NotificationPreference) TableName() string { return "notification_preferences" }
