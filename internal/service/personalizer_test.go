package service

import (
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/clientpro/clientpro-backend/internal/model"
)

func strPtr(s string) *string { return &s }

func testAgent() *model.Agent {
	return &model.Agent{
		ID:                 uuid.New(),
		Email:              "sarah@example.com",
		FirstName:          "Sarah",
		LastName:           "Chen",
		CompanyName:        strPtr("Sunrise Realty"),
		SendNumber:         strPtr("+15550001111"),
		Tier:               model.TierProfessional,
		SubscriptionStatus: model.SubscriptionActive,
		IsActive:           true,
	}
}

func testClient(agentID uuid.UUID) *model.Client {
	return &model.Client{
		ID:              uuid.New(),
		AgentID:         agentID,
		FirstName:       "Marcus",
		LastName:        "Webb",
		PhoneNumber:     "+15552223333",
		City:            strPtr("Austin"),
		State:           strPtr("TX"),
		PropertyType:    model.PropertyCondo,
		ClosingDate:     time.Now(),
		EngagementScore: 50,
		IsActive:        true,
	}
}

func TestRenderSubstitutesAllPlaceholders(t *testing.T) {
	agent := testAgent()
	client := testClient(agent.ID)

	got := Render("Hi {{first_name}} {{last_name}}, how is the {{property_type}} in {{city}}, {{state}}? — {{agent_name}}, {{company_name}}", client, agent)

	assert.Equal(t, "Hi Marcus Webb, how is the condo in Austin, TX? — Sarah Chen, Sunrise Realty", got)
}

func TestRenderAppendsSignatureWhenAgentNameMissing(t *testing.T) {
	agent := testAgent()
	client := testClient(agent.ID)

	got := Render("Hey {{first_name}}, checking in!", client, agent)

	assert.True(t, strings.HasSuffix(got, "\n\n— Sarah Chen, Sunrise Realty"), "got: %q", got)
	assert.Equal(t, 1, strings.Count(got, "Sarah Chen"))
}

func TestRenderNeverDuplicatesSignature(t *testing.T) {
	agent := testAgent()
	client := testClient(agent.ID)

	got := Render("Hi {{first_name}}! — {{agent_name}}", client, agent)

	assert.Equal(t, 1, strings.Count(got, "Sarah Chen"))
	assert.False(t, strings.Contains(got, "\n\n— Sarah Chen"))
}

func TestRenderSignatureWithoutCompany(t *testing.T) {
	agent := testAgent()
	agent.CompanyName = nil
	client := testClient(agent.ID)

	got := Render("Hey {{first_name}}!", client, agent)

	assert.True(t, strings.HasSuffix(got, "\n\n— Sarah Chen"), "got: %q", got)
	assert.False(t, strings.Contains(got, ","))
}

func TestRenderMissingCityFallsBack(t *testing.T) {
	agent := testAgent()
	client := testClient(agent.ID)
	client.City = nil

	got := Render("How is {{city}}?", client, agent)

	assert.Contains(t, got, "your area")
}

func TestPropertyTypeLabels(t *testing.T) {
	cases := []struct {
		pt    model.PropertyType
		label string
	}{
		{model.PropertySingleFamily, "house"},
		{model.PropertyCondo, "condo"},
		{model.PropertyTownhouse, "townhouse"},
		{model.PropertyMultiFamily, "property"},
		{model.PropertyLand, "property"},
		{model.PropertyOther, "place"},
		{model.PropertyType(""), "place"},
		{model.PropertyType("castle"), "place"},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.label, tc.pt.DisplayLabel(), "property type %q", tc.pt)
	}
}
