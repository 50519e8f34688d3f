package dto

import "time"

// APIResponse wraps every successful response body.
type APIResponse struct {
	Message    string      `json:"message"`
	StatusCode int         `json:"status_code"`
	Data       interface{} `json:"data"`
	Timestamp  time.Time   `json:"timestamp"`
}

type ErrorResponse struct {
	Status    int               `json:"status"`
	Message   string            `json:"message"`
	ErrorCode string            `json:"error_code"`
	Timestamp time.Time         `json:"timestamp"`
	Errors    map[string]string `json:"errors,omitempty"`
}

func NewResponse(status int, message string, data interface{}) APIResponse {
	return APIResponse{
		Message:    message,
		StatusCode: status,
		Data:       data,
		Timestamp:  time.Now().UTC(),
	}
}

func NewError(status int, code, message string) ErrorResponse {
	return ErrorResponse{
		Status:    status,
		Message:   message,
		ErrorCode: code,
		Timestamp: time.Now().UTC(),
	}
}

type PaginatedResponse struct {
	Items      interface{} `json:"items"`
	Total      int64       `json:"total"`
	Page       int         `json:"page"`
	PerPage    int         `json:"per_page"`
	TotalPages int         `json:"total_pages"`
}

type PaginationParams struct {
	Page    int
	PerPage int
}

func (p *PaginationParams) Normalize() {
	if p.Page < 1 {
		p.Page = 1
	}
	if p.PerPage < 1 {
		p.PerPage = 20
	}
	if p.PerPage > 100 {
		p.PerPage = 100
	}
}

func (p *PaginationParams) TotalPages(total int64) int {
	if total == 0 {
		return 0
	}
	return int((total + int64(p.PerPage) - 1) / int64(p.PerPage))
}
