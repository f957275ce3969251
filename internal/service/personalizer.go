package service

import (
	"strings"

	"github.com/clientpro/clientpro-backend/internal/model"
)

// Render substitutes the supported placeholders into a template body. It is
// pure and total: unresolved attributes fall back to neutral defaults and
// unknown placeholders are left alone rather than failing.
//
// If the rendered body does not already contain the agent's full name, a
// signature line is appended so every outbound message identifies its
// sender even when a template forgets to.
func Render(template string, client *model.Client, agent *model.Agent) string {
	agentName := agent.FullName()

	replacer := strings.NewReplacer(
		"{{first_name}}", client.FirstName,
		"{{last_name}}", client.LastName,
		"{{city}}", orDefault(client.City, "your area"),
		"{{state}}", orDefault(client.State, ""),
		"{{property_type}}", client.PropertyType.DisplayLabel(),
		"{{agent_name}}", agentName,
		"{{company_name}}", orDefault(agent.CompanyName, ""),
	)

	message := strings.TrimSpace(replacer.Replace(template))

	if !strings.Contains(message, agentName) {
		signature := "\n\n— " + agentName
		if agent.CompanyName != nil && *agent.CompanyName != "" {
			signature += ", " + *agent.CompanyName
		}
		message += signature
	}
	return message
}

func orDefault(s *string, fallback string) string {
	if s == nil || *s == "" {
		return fallback
	}
	return *s
}
