// model/client.go
package model

import "time"

// Client is a monitored party in the compliance program. Clients are the
// primary producing domain for audit events in this service.
type Client struct {
	ID             string    `json:"id"`
	OrganizationID string    `json:"organizationId"`
	FullName       string    `json:"fullName"`
	Email          string    `json:"email"`
	Country        string    `json:"country"`
	RiskLevel      string    `json:"riskLevel"` // LOW, MEDIUM, HIGH
	Status         string    `json:"status"`    // ACTIVE, UNDER_REVIEW, BLOCKED
	CreatedAt      time.Time `json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`
}

var ClientRiskLevels = []string{"LOW", "MEDIUM", "HIGH"}

var ClientStatuses = []string{"ACTIVE", "UNDER_REVIEW", "BLOCKED"}
