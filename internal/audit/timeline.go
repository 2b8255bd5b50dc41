package audit

import "time"

// TimelineFilters narrows the audit timeline.
type TimelineFilters struct {
	Actor       string
	Action      string
	TargetTable string
	Page        int
	PageSize    int
}

// Entry is one row of the audit trail as exposed to administrators.
type Entry struct {
	ID          int64     `json:"id"`
	ActorID     *int64    `json:"user_id"`
	Actor       string    `json:"actor"`
	Action      string    `json:"action"`
	TargetTable string    `json:"target_table,omitempty"`
	TargetID    *int64    `json:"target_id,omitempty"`
	Detail      string    `json:"detail,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// PagingInfo holds simple pagination metadata.
type PagingInfo struct {
	Page     int  `json:"page"`
	PageSize int  `json:"page_size"`
	HasNext  bool `json:"has_next"`
	PrevPage int  `json:"prev_page,omitempty"`
	NextPage int  `json:"next_page,omitempty"`
}

// Result bundles timeline rows with paging information.
type Result struct {
	Rows   []Entry    `json:"rows"`
	Paging PagingInfo `json:"paging"`
}
