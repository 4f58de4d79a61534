package response

import (
	"time"
)

// Body is the uniform envelope every endpoint returns.
type Body struct {
	Success    bool        `json:"success"`
	StatusCode int         `json:"statusCode"`
	Message    string      `json:"message"`
	Data       interface{} `json:"data,omitempty"`
	Errors     interface{} `json:"errors,omitempty"`
	Pagination *Pagination `json:"pagination,omitempty"`
	Timestamp  time.Time   `json:"timestamp"`
}

type Pagination struct {
	Page  int   `json:"page"`
	Limit int   `json:"limit"`
	Total int64 `json:"total"`
	Pages int   `json:"pages"`
}

func Success(statusCode int, message string, data interface{}) Body {
	return Body{
		Success:    true,
		StatusCode: statusCode,
		Message:    message,
		Data:       data,
		Timestamp:  time.Now().UTC(),
	}
}

func Error(statusCode int, message string, errs interface{}) Body {
	return Body{
		Success:    false,
		StatusCode: statusCode,
		Message:    message,
		Errors:     errs,
		Timestamp:  time.Now().UTC(),
	}
}

func Paginated(message string, data interface{}, p *Pagination) Body {
	b := Success(200, message, data)
	b.Pagination = p
	return b
}
