package models

// ComplianceDetail is the detail body of a 400 compliance rejection:
// {"detail":{"compliance":{"message":"..."}}}
type ComplianceDetail struct {
	Detail struct {
		Error      string      `json:"error,omitempty"`
		Compliance *Compliance `json:"compliance,omitempty"`
	} `json:"detail"`
}
