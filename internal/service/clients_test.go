package service

import (
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appErrors "github.com/clientpro/clientpro-backend/internal/errors"
	"github.com/clientpro/clientpro-backend/internal/model"
)

func newClientService(agent *model.Agent, clients *fakeClientRepo, messages *fakeMessageRepo) *ClientService {
	return &ClientService{
		Agents:   &fakeAgentRepo{agents: []*model.Agent{agent}},
		Clients:  clients,
		Messages: messages,
		Scheduler: NewScheduler(&fakeTemplateRepo{templates: defaultTemplates()}, messages),
	}
}

func newClientInput() NewClientInput {
	return NewClientInput{
		FirstName:    "Marcus",
		LastName:     "Webb",
		PhoneNumber:  "+15552223333",
		City:         strPtr("Austin"),
		State:        strPtr("TX"),
		PropertyType: model.PropertyCondo,
		ClosingDate:  time.Now(),
	}
}

func TestCreateClientSchedulesCadence(t *testing.T) {
	agent := testAgent()
	clients := newFakeClientRepo()
	messages := newFakeMessageRepo()
	svc := newClientService(agent, clients, messages)

	client, scheduled, err := svc.Create(agent.ID, newClientInput())
	require.NoError(t, err)

	assert.NotEqual(t, uuid.Nil, client.ID)
	assert.True(t, client.IsActive)
	assert.Equal(t, 50, client.EngagementScore)
	assert.Equal(t, 5, scheduled)
	assert.Len(t, messages.msgs, 5)
}

func TestCreateClientEnforcesTierLimit(t *testing.T) {
	agent := testAgent()
	agent.Tier = model.TierStarter

	clients := newFakeClientRepo()
	for i := 0; i < 20; i++ {
		c := testClient(agent.ID)
		c.ID = uuid.New()
		clients.clients[c.ID] = c
	}
	messages := newFakeMessageRepo()
	svc := newClientService(agent, clients, messages)

	_, _, err := svc.Create(agent.ID, newClientInput())

	var limitErr *appErrors.ErrClientLimit
	require.True(t, errors.As(err, &limitErr))
	assert.Equal(t, 20, limitErr.Current)
	assert.Equal(t, 20, limitErr.Limit)
	assert.Empty(t, messages.msgs, "nothing is scheduled when the create is rejected")
}

func TestCreateClientInactiveClientsDoNotCount(t *testing.T) {
	agent := testAgent()
	agent.Tier = model.TierStarter

	clients := newFakeClientRepo()
	for i := 0; i < 20; i++ {
		c := testClient(agent.ID)
		c.ID = uuid.New()
		c.IsActive = false
		clients.clients[c.ID] = c
	}
	svc := newClientService(agent, clients, newFakeMessageRepo())

	_, _, err := svc.Create(agent.ID, newClientInput())
	assert.NoError(t, err)
}

func TestCreateClientUnlimitedTier(t *testing.T) {
	agent := testAgent()
	agent.Tier = model.TierBrokerage

	clients := newFakeClientRepo()
	for i := 0; i < 1500; i++ {
		c := testClient(agent.ID)
		c.ID = uuid.New()
		clients.clients[c.ID] = c
	}
	svc := newClientService(agent, clients, newFakeMessageRepo())

	_, _, err := svc.Create(agent.ID, newClientInput())
	assert.NoError(t, err)
}

func TestRemoveClientCancelsScheduled(t *testing.T) {
	agent := testAgent()
	clients := newFakeClientRepo()
	messages := newFakeMessageRepo()
	svc := newClientService(agent, clients, messages)

	client, _, err := svc.Create(agent.ID, newClientInput())
	require.NoError(t, err)

	sent := sentMessage(messages, agent, client, time.Now().Add(-time.Hour))

	require.NoError(t, svc.Remove(client.ID, agent.ID))

	stored, _ := clients.GetByID(client.ID)
	assert.False(t, stored.IsActive)
	for id, m := range messages.msgs {
		if id == sent.ID {
			// History survives: already-sent messages are untouched.
			assert.Equal(t, model.StatusSent, m.Status)
			continue
		}
		assert.Equal(t, model.StatusCancelled, m.Status)
	}
}

func TestRemoveClientOfAnotherAgent(t *testing.T) {
	agent := testAgent()
	other := testClient(uuid.New())
	clients := newFakeClientRepo(other)
	svc := newClientService(agent, clients, newFakeMessageRepo())

	err := svc.Remove(other.ID, agent.ID)

	var notFound *appErrors.ErrClientNotFound
	assert.True(t, errors.As(err, &notFound))
	stored, _ := clients.GetByID(other.ID)
	assert.True(t, stored.IsActive)
}

func TestRecordReferralBumpsEngagement(t *testing.T) {
	agent := testAgent()
	client := testClient(agent.ID)
	clients := newFakeClientRepo(client)
	referrals := &fakeReferralRepo{}
	svc := &ReferralService{Referrals: referrals, Clients: clients}

	referral, err := svc.Record(agent.ID, NewReferralInput{
		ReferredByClientID: client.ID,
		FirstName:          "Dana",
		LastName:           "Ortiz",
		Phone:              strPtr("+15554445555"),
	})
	require.NoError(t, err)

	assert.Equal(t, model.ReferralNew, referral.Status)
	require.Len(t, referrals.referrals, 1)
	stored, _ := clients.GetByID(client.ID)
	assert.Equal(t, 60, stored.EngagementScore)
}

func TestRecordReferralRejectsForeignClient(t *testing.T) {
	agent := testAgent()
	client := testClient(uuid.New())
	clients := newFakeClientRepo(client)
	svc := &ReferralService{Referrals: &fakeReferralRepo{}, Clients: clients}

	_, err := svc.Record(agent.ID, NewReferralInput{ReferredByClientID: client.ID, FirstName: "Dana", LastName: "Ortiz"})

	var notFound *appErrors.ErrClientNotFound
	assert.True(t, errors.As(err, &notFound))
}
