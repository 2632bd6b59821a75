package apimodels

const (
	statusSuccess = "success"
	statusFail    = "fail"

	defaultPageSize = 10
	maxPageSize     = 100
)

// Response is the envelope of every JSON answer.
type Response struct {
	Status  string      `json:"status"` // success or fail
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
}

type ScrollerResponse struct {
	Response
	RowCount int64 `json:"row_count"` // rows matching the filter, over all pages
}

func NewError(message string) Response {
	return Response{
		Status:  statusFail,
		Message: message,
	}
}

func NewResponse(data interface{}) Response {
	return Response{
		Status: statusSuccess,
		Data:   data,
	}
}

func NewScrollerResponse(data interface{}, rowCount int64) ScrollerResponse {
	return ScrollerResponse{
		Response: NewResponse(data),
		RowCount: rowCount,
	}
}

type Pagination struct {
	Limit int `json:"limit"` // page size, 10 by default and 100 at most
	Page  int `json:"page"`  // 1-based
}

func (r Pagination) GetPage() (page, limit int) {
	page, limit = 1, defaultPageSize
	if r.Page > 0 {
		page = r.Page
	}
	if r.Limit > 0 {
		limit = min(r.Limit, maxPageSize)
	}
	return page, limit
}

func (r Pagination) Offset() int {
	page, limit := r.GetPage()
	return (page - 1) * limit
}
