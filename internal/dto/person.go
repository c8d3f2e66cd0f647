package dto

// ── persons and processes ──

// PersonRequest create or replace a person
type PersonRequest struct {
	FullName   string  `json:"full_name"   binding:"required,min=2,max=255"`
	CPF        *string `json:"cpf"`
	MotherName *string `json:"mother_name" binding:"omitempty,max=255"`
	BirthDate  *string `json:"birth_date"  binding:"omitempty,datetime=2006-01-02"`
}

// ProcessRequest create or replace a process
type ProcessRequest struct {
	ProcessNumber    string  `json:"process_number"    binding:"required,max=50"`
	ProceduralStatus *string `json:"procedural_status" binding:"omitempty,max=100"`
	CustodyType      *string `json:"custody_type"      binding:"omitempty,max=100"`
	ArrestedOn       *string `json:"arrested_on"       binding:"omitempty,datetime=2006-01-02"`
	DetentionSite    *string `json:"detention_site"    binding:"omitempty,max=255"`
}

// FullRegistrationRequest person plus initial processes in one call
type FullRegistrationRequest struct {
	Person    PersonRequest    `json:"person"    binding:"required"`
	Processes []ProcessRequest `json:"processes" binding:"dive"`
}

// PersonSearchRequest person search filters
type PersonSearchRequest struct {
	PaginationRequest
	Name             string `form:"name"              binding:"omitempty,max=255"`
	ProceduralStatus string `form:"procedural_status" binding:"omitempty,max=100"`
	ArrestedOn       string `form:"arrested_on"       binding:"omitempty,datetime=2006-01-02"`
}
