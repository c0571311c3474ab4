package http

// APIResponse is the envelope written by every handler.
type APIResponse struct {
	Status  int         `json:"status" example:"200"`
	Message string      `json:"message" example:"OK"`
	Data    interface{} `json:"data,omitempty"`
}

// ValidationError describes one rejected request field.
type ValidationError struct {
	Code    string                 `json:"code,omitempty" example:"ERR_REQUIRED"`
	Field   string                 `json:"field,omitempty" example:"days"`
	Message string                 `json:"message,omitempty" example:"days is required"`
	Params  map[string]interface{} `json:"params,omitempty"`
}
