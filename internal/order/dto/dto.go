package dto

type OrderFilters struct {
	Status string
}

// IngestResult reports a bulk ingestion: rows stored plus one message per
// rejected row.
type IngestResult struct {
	Created int      `json:"created"`
	Errors  []string `json:"errors"`
}
