// util/validation_util.go

package util

import (
	"fmt"
	"strings"

	"github.com/clearledger/vigil/api/model"
)

type ValidationUtil struct{}

func NewValidationUtil() *ValidationUtil {
	return &ValidationUtil{}
}

func (v *ValidationUtil) ValidateClient(client model.Client) error {
	if client.FullName == "" {
		return fmt.Errorf("client full name cannot be empty")
	}
	if client.Email == "" {
		return fmt.Errorf("client email cannot be empty")
	}
	if !strings.Contains(client.Email, "@") {
		return fmt.Errorf("client email is not a valid address")
	}
	if client.RiskLevel != "" && !contains(model.ClientRiskLevels, client.RiskLevel) {
		return fmt.Errorf("client risk level must be one of %v", model.ClientRiskLevels)
	}
	if client.Status != "" && !contains(model.ClientStatuses, client.Status) {
		return fmt.Errorf("client status must be one of %v", model.ClientStatuses)
	}
	return nil
}

func contains(values []string, value string) bool {
	for _, v := range values {
		if v == value {
			return true
		}
	}
	return false
}
