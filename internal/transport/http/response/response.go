package response

type Pagination struct {
	Total      int64 `json:"total"`
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	TotalPages int   `json:"totalPages"`
}

func NewPagination(total int64, page, limit int) *Pagination {
	pages := 0
	if limit > 0 {
		pages = int((total + int64(limit) - 1) / int64(limit))
	}
	return &Pagination{Total: total, Page: page, Limit: limit, TotalPages: pages}
}

type Resp struct {
	Message    string      `json:"message,omitempty"`
	Error      string      `json:"error,omitempty"`
	Data       any         `json:"data,omitempty"`
	Details    any         `json:"details,omitempty"`
	Pagination *Pagination `json:"pagination,omitempty"`
}

func OK(msg string, data any) Resp {
	return Resp{Message: msg, Data: data}
}

func Page(data any, p *Pagination) Resp {
	return Resp{Data: data, Pagination: p}
}

// Error builds a failure envelope; customMsg overrides the default text for code.
func Error(code int, customMsg string) Resp {
	msg := CodeMsgMap[code]
	if customMsg != "" {
		msg = customMsg
	}
	return Resp{Error: msg}
}

func ErrorWithDetails(code int, customMsg string, details any) Resp {
	r := Error(code, customMsg)
	r.Details = details
	return r
}
