package dto

// ── alerts ──

// UpcomingAlertsRequest query of GET /alerts/upcoming
type UpcomingAlertsRequest struct {
	Limit int `form:"limit" binding:"omitempty,min=1,max=100"`
}

// ActiveAlertsRequest query of GET /alerts/active
type ActiveAlertsRequest struct {
	Offset int `form:"offset" binding:"omitempty,min=0"`
	Limit  int `form:"limit"  binding:"omitempty,min=1,max=100"`
}
