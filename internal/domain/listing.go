package domain

// MaxPageLength caps the page size a client may request.
const MaxPageLength = 100

// ListingQuery holds the table-data request sent by the list page:
// optional substring filters, an offset/length window, and the client's
// draw token, echoed back so the client can discard stale responses.
type ListingQuery struct {
	Name   string
	Email  string
	Start  int
	Length int
	Draw   int
}

// Window returns the effective offset and page size, clamping Start to
// >= 0 and Length to [1, MaxPageLength].
func (q ListingQuery) Window() (start, length int) {
	start = q.Start
	if start < 0 {
		start = 0
	}
	length = q.Length
	if length < 1 {
		length = 10
	}
	if length > MaxPageLength {
		length = MaxPageLength
	}
	return start, length
}

// Filtered reports whether any filter is set.
func (q ListingQuery) Filtered() bool {
	return q.Name != "" || q.Email != ""
}

// ListingRow is one row of the rendered user table.
type ListingRow struct {
	No        int    `json:"no"`
	Username  string `json:"username"`
	Email     string `json:"email"`
	CreatedAt string `json:"created_at"`
	EditURL   string `json:"edit_url"`
	DeleteURL string `json:"destroy_url"`
}

// ListingResult is the server-side pagination response.
type ListingResult struct {
	Draw            int          `json:"draw"`
	RecordsTotal    int64        `json:"recordsTotal"`
	RecordsFiltered int64        `json:"recordsFiltered"`
	Rows            []ListingRow `json:"data"`
}
