package model

import (
	"time"

	"github.com/google/uuid"
)

// PropertyType is the closed set of property categories a client can have.
type PropertyType string

const (
	PropertySingleFamily PropertyType = "single_family"
	PropertyCondo        PropertyType = "condo"
	PropertyTownhouse    PropertyType = "townhouse"
	PropertyMultiFamily  PropertyType = "multi_family"
	PropertyLand         PropertyType = "land"
	PropertyOther        PropertyType = "other"
)

// DisplayLabel maps a property type to the casual label used in message
// bodies. Unknown values fall back to "place" so rendering never fails.
func (p PropertyType) DisplayLabel() string {
	switch p {
	case PropertySingleFamily:
		return "house"
	case PropertyCondo:
		return "condo"
	case PropertyTownhouse:
		return "townhouse"
	case PropertyMultiFamily, PropertyLand:
		return "property"
	default:
		return "place"
	}
}

type Client struct {
	ID              uuid.UUID    `db:"id" json:"id"`
	AgentID         uuid.UUID    `db:"agent_id" json:"agent_id"`
	FirstName       string       `db:"first_name" json:"first_name"`
	LastName        string       `db:"last_name" json:"last_name"`
	PhoneNumber     string       `db:"phone_number" json:"phone_number"`
	Email           *string      `db:"email" json:"email,omitempty"`
	PropertyAddress *string      `db:"property_address" json:"property_address,omitempty"`
	City            *string      `db:"city" json:"city,omitempty"`
	State           *string      `db:"state" json:"state,omitempty"`
	Zip             *string      `db:"zip" json:"zip,omitempty"`
	PropertyType    PropertyType `db:"property_type" json:"property_type,omitempty"`
	ClosingDate     time.Time    `db:"closing_date" json:"closing_date"`
	Notes           *string      `db:"notes" json:"notes,omitempty"`
	EngagementScore int          `db:"engagement_score" json:"engagement_score"`
	IsActive        bool         `db:"is_active" json:"is_active"`
	CreatedAt       time.Time    `db:"created_at" json:"created_at"`
	UpdatedAt       time.Time    `db:"updated_at" json:"updated_at"`
}

// FullName returns "First Last" for notifications and rendering.
func (c *Client) FullName() string {
	return c.FirstName + " " + c.LastName
}
