package domain

type SubmissionPolicyInput struct {
	Subject   string         `json:"subject"`
	Responses []int          `json:"responses"`
	Network   string         `json:"network"`
	Metadata  map[string]any `json:"metadata,omitempty"`
}

type PolicyDeny struct {
	Code    string `json:"code"`
	Message string `json:"message,omitempty"`
}

type PolicyResult struct {
	Allow bool         `json:"allow"`
	Deny  []PolicyDeny `json:"deny,omitempty"`
}

type PolicyEvaluation struct {
	BundleID   string       `json:"bundle_id,omitempty"`
	BundleHash string       `json:"bundle_hash"`
	Result     PolicyResult `json:"result"`
}
