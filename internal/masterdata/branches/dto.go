package branches

// BranchForm carries create/update input.
type BranchForm struct {
	Code     string `json:"code" validate:"required,min=2,max=32"`
	Name     string `json:"name" validate:"required,min=2,max=120"`
	Division string `json:"division" validate:"max=120"`
	Address  string `json:"address" validate:"max=255"`
}

// ListFilters narrows branch listings.
type ListFilters struct {
	Search  string
	Page    int
	Limit   int
	SortBy  string
	SortDir string
}
