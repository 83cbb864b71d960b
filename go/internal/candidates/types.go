package candidates

// CreateCandidateRequest carries the fields needed to register a candidate
type CreateCandidateRequest struct {
	Name       string `json:"name"`
	Major      string `json:"major"`
	Department string `json:"department"`
	ImageURL   string `json:"image_url"`
	Biography  string `json:"biography"`
}

// UpdateCandidateRequest carries the fields of a candidate update
type UpdateCandidateRequest struct {
	Name       string `json:"name"`
	Major      string `json:"major"`
	Department string `json:"department"`
	ImageURL   string `json:"image_url"`
	Biography  string `json:"biography"`
	IsActive   bool   `json:"is_active"`
}
