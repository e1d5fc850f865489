package domain

// Attestation binds a ScoreDatum to a transaction context. The signature
// covers (policy_id, tx_hash, subject, score) in a fixed byte layout;
// changing any of the four must invalidate it.
type Attestation struct {
	Datum     ScoreDatum `json:"datum"`
	PolicyID  string     `json:"policy_id"`
	TxHash    string     `json:"tx_hash"`
	Signature string     `json:"signature"`
}
