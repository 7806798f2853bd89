package dto

// Pagination is bound from ?page=&limit= on list endpoints. Zero values
// fall back to page 1 and the configured DB_DEFAULT_LIMIT.
type Pagination struct {
	Page  int `form:"page"  validate:"omitempty,min=1"`
	Limit int `form:"limit" validate:"omitempty,min=1,max=5000"`
}

// Offset returns the row offset of the page for a given limit.
func (p Pagination) Offset(limit int) int {
	if p.Page <= 1 {
		return 0
	}
	return (p.Page - 1) * limit
}

// SearchInput narrows list endpoints. Search matches an exact id or name,
// SearchList matches names containing any of the terms.
type SearchInput struct {
	Search     string   `json:"search"     form:"search"`
	SearchList []string `json:"searchList" form:"searchList"`
}

// IDPayload is the jsonData of every *_DELETE replication message.
type IDPayload struct {
	ID string `json:"id" validate:"required,uuid"`
}

// ProcessSummary reports per-item outcomes of a batch update.
type ProcessSummary struct {
	TotalRows     int      `json:"totalRows"`
	RowsOK        int      `json:"rowsOK"`
	RowsKO        int      `json:"rowsKO"`
	DetailsRowsOK []string `json:"detailsRowsOK"`
	DetailsRowsKO []string `json:"detailsRowsKO"`
}

// SyncSummary reports what a synchronize run published.
type SyncSummary struct {
	Entity   string `json:"entity"`
	Rows     int    `json:"rows"`
	Batches  int    `json:"batches"`
	Complete bool   `json:"complete"`
}

// ListResponse wraps list reads with their row count.
type ListResponse[T any] struct {
	Qty     int `json:"qty"`
	Payload []T `json:"payload"`
}

// MessageResponse is the body of writes that return no entity.
type MessageResponse struct {
	Message string `json:"message"`
}
