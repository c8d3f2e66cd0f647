package dto

// ── external lookups ──

// ProcessLookupRequest court registry lookup
type ProcessLookupRequest struct {
	ProcessNumber string   `json:"process_number" binding:"required"`
	Sources       []string `json:"sources"        binding:"omitempty,dive,oneof=datajud pje"`
	Court         string   `json:"court"          binding:"omitempty,max=20"`
}

// CPFLookupRequest identity registry lookup
type CPFLookupRequest struct {
	CPF string `json:"cpf" binding:"required"`
}
