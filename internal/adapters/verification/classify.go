package verification

import (
	"strings"

	"github.com/plinth-labs/plinth/internal/domain/models"
)

// Explorers report an already verified contract as an error with one of
// these phrases. Matching on text is brittle so it is kept in this one place.
var alreadyVerifiedMarkers = []string{
	"Already Verified",
	"is already verified",
	"already verified",
	"Smart-contract already verified",
}

var verifiedMarkers = []string{
	"Contract successfully verified",
	"Pass - Verified",
}

// Classify maps the output of a verify run to an outcome. The reason is only
// set for failures.
func Classify(output string, runErr error) (models.VerificationOutcome, string) {
	output = strings.TrimSpace(output)

	if containsAny(output, alreadyVerifiedMarkers) {
		return models.VerificationOutcomeAlreadyVerified, ""
	}

	if runErr != nil {
		reason := lastMeaningfulLine(output)
		if reason == "" {
			reason = runErr.Error()
		}
		return models.VerificationOutcomeFailed, reason
	}

	if containsAny(output, verifiedMarkers) {
		return models.VerificationOutcomeVerified, ""
	}

	return models.VerificationOutcomeFailed, "verification status unclear: " + lastMeaningfulLine(output)
}

func containsAny(s string, markers []string) bool {
	for _, m := range markers {
		if strings.Contains(s, m) {
			return true
		}
	}
	return false
}

// lastMeaningfulLine picks the error line forge prints last
func lastMeaningfulLine(output string) string {
	lines := strings.Split(output, "\n")
	for i := len(lines) - 1; i >= 0; i-- {
		line := strings.TrimSpace(lines[i])
		if line == "" {
			continue
		}
		line = strings.TrimPrefix(line, "Error: ")
		return strings.TrimSpace(line)
	}
	return ""
}
