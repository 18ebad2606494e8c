package wizard

import (
	"errors"
	"fmt"
	"strings"

	"github.com/livingtrust/livingtrust/pkg/domain"
)

// ErrInvalidAnswer is returned for confirmation input that is neither yes nor no.
var ErrInvalidAnswer = errors.New("invalid confirmation input")

// ParseConfirm normalizes a confirmation answer. Blank input means no.
func ParseConfirm(answer string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(answer)) {
	case "y", "yes", "true", "1":
		return true, nil
	case "", "n", "no", "false", "0":
		return false, nil
	}
	return false, fmt.Errorf("%w: %q (expected y/n/yes/no)", ErrInvalidAnswer, answer)
}

// ConfirmTitle is the heading of the confirmation prompt.
const ConfirmTitle = "Create Your Living Trust?"

// ConfirmMessage is the body of the confirmation prompt for a draft.
func ConfirmMessage(d domain.TrustDraft) string {
	return fmt.Sprintf("Are you sure you want to create %q?\n\nThis will generate your Living Trust document.", d.TrustName)
}

// SuccessMessage is shown once the gateway acknowledged the trust.
func SuccessMessage(t *domain.Trust) string {
	return fmt.Sprintf("Your Living Trust %q has been created! (id %s)", t.TrustName, t.ID)
}
