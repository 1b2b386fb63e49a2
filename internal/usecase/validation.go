package usecase

import (
	"fmt"
	"net/mail"
	"regexp"
	"strings"

	"github.com/openclinic/medscout/internal/infra/integration/nppes"
)

type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

const (
	defaultRecruitCount = 10
	maxRecruitCount     = 50
)

var npiPattern = regexp.MustCompile(`^\d{10}$`)

func ValidateRecruitInput(input *RecruitInput) []ValidationError {
	var errors []ValidationError

	if strings.TrimSpace(input.City) == "" {
		errors = append(errors, ValidationError{"city", "is required"})
	}
	if input.Count < 0 {
		errors = append(errors, ValidationError{"count", "must not be negative"})
	}
	if input.Count == 0 {
		input.Count = defaultRecruitCount
	}
	if input.Count > maxRecruitCount {
		errors = append(errors, ValidationError{"count", fmt.Sprintf("must not exceed %d", maxRecruitCount)})
	}
	if input.EnrichmentBudget < 0 {
		errors = append(errors, ValidationError{"enrichment_budget", "must not be negative"})
	}
	if strings.TrimSpace(input.Specialty) == "" {
		input.Specialty = "Primary Care"
	}
	return errors
}

// ValidateCandidate rejects registry records the pipeline cannot key. A bad
// candidate is excluded from the batch, never fatal to it.
func ValidateCandidate(c nppes.Candidate) error {
	if strings.TrimSpace(c.NPI) == "" {
		return ValidationError{"npi", "is required"}
	}
	if !npiPattern.MatchString(c.NPI) {
		return ValidationError{"npi", "must be a 10-digit identifier"}
	}
	if c.Email != "" {
		if _, err := mail.ParseAddress(c.Email); err != nil {
			return ValidationError{"email", "is invalid"}
		}
	}
	return nil
}

func ValidateSendOutreachInput(input SendOutreachInput) []ValidationError {
	var errors []ValidationError

	if strings.TrimSpace(input.Sender) == "" {
		errors = append(errors, ValidationError{"sender", "is required"})
	} else if _, err := mail.ParseAddress(input.Sender); err != nil {
		errors = append(errors, ValidationError{"sender", "is invalid"})
	}

	if input.Receiver != "" {
		if _, err := mail.ParseAddress(input.Receiver); err != nil {
			errors = append(errors, ValidationError{"receiver", "is invalid"})
		}
	} else if strings.TrimSpace(input.LeadNPI) == "" {
		errors = append(errors, ValidationError{"receiver", "is required when no lead is linked"})
	}

	if strings.TrimSpace(input.Subject) == "" {
		errors = append(errors, ValidationError{"subject", "is required"})
	}
	if strings.TrimSpace(input.Body) == "" {
		errors = append(errors, ValidationError{"body", "is required"})
	}
	return errors
}

func joinValidationErrors(errs []ValidationError) *DomainError {
	msg := "validation failed: "
	for _, e := range errs {
		msg += e.Field + " (" + e.Message + "), "
	}
	return &DomainError{Code: CodeValidation, Message: strings.TrimSuffix(msg, ", ")}
}
