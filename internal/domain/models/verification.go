package models

// VerificationOutcome classifies an explorer's answer to a verification request
type VerificationOutcome string

const (
	VerificationOutcomeVerified        VerificationOutcome = "VERIFIED"
	VerificationOutcomeAlreadyVerified VerificationOutcome = "ALREADY_VERIFIED"
	VerificationOutcomeFailed          VerificationOutcome = "FAILED"
)

// Succeeded reports whether the outcome counts as a successful verification
func (o VerificationOutcome) Succeeded() bool {
	return o == VerificationOutcomeVerified || o == VerificationOutcomeAlreadyVerified
}

// VerificationRequest exists only for the duration of a verification call
type VerificationRequest struct {
	Name            string
	Contract        string
	Address         string
	ConstructorArgs []any
	// EncodedArgs is the ABI-encoded constructor arguments, hex without 0x
	EncodedArgs string
	// SourcePath is the artifact's compilation target, e.g. "contracts/ZETAP.sol"
	SourcePath string
}

// VerificationResponse is what a verification backend reports
type VerificationResponse struct {
	Outcome VerificationOutcome
	Reason  string
	URL     string
}

// VerificationReport is the result of a verification kept for rendering
type VerificationReport struct {
	Name    string              `json:"name"`
	Address string              `json:"address"`
	Outcome VerificationOutcome `json:"outcome"`
	URL     string              `json:"url,omitempty"`
}
