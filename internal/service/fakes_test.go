package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/clientpro/clientpro-backend/internal/model"
	"github.com/clientpro/clientpro-backend/internal/repository"
)

// fakeMessageRepo is an in-memory MessageRepository that enforces the same
// conditional-update semantics as the SQL implementation.
type fakeMessageRepo struct {
	repository.MessageRepositoryInterface

	mu   sync.Mutex
	msgs map[uuid.UUID]*model.Message

	// delivery join inputs keyed by client/agent id
	clientPhones map[uuid.UUID]string
	agentNumbers map[uuid.UUID]*string
}

func newFakeMessageRepo() *fakeMessageRepo {
	return &fakeMessageRepo{
		msgs:         make(map[uuid.UUID]*model.Message),
		clientPhones: make(map[uuid.UUID]string),
		agentNumbers: make(map[uuid.UUID]*string),
	}
}

func (f *fakeMessageRepo) Create(m *model.Message) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	if m.Status == "" {
		m.Status = model.StatusScheduled
	}
	now := time.Now()
	m.CreatedAt = now
	m.UpdatedAt = now
	stored := *m
	f.msgs[m.ID] = &stored
	return nil
}

func (f *fakeMessageRepo) get(id uuid.UUID) *model.Message {
	return f.msgs[id]
}

func (f *fakeMessageRepo) GetByID(id uuid.UUID) (*model.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	m, ok := f.msgs[id]
	if !ok {
		return nil, nil
	}
	cp := *m
	return &cp, nil
}

func (f *fakeMessageRepo) FindDue(maxRetries, limit int) ([]repository.DueMessage, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	due := []repository.DueMessage{}
	for _, m := range f.msgs {
		if m.Status == model.StatusScheduled && !m.ScheduledFor.After(time.Now()) && m.RetryCount < maxRetries {
			due = append(due, f.dueLocked(m))
			if len(due) == limit {
				break
			}
		}
	}
	return due, nil
}

func (f *fakeMessageRepo) dueLocked(m *model.Message) repository.DueMessage {
	return repository.DueMessage{
		Message:         *m,
		ClientPhone:     f.clientPhones[m.ClientID],
		AgentSendNumber: f.agentNumbers[m.AgentID],
	}
}

func (f *fakeMessageRepo) GetForDelivery(id uuid.UUID) (*repository.DueMessage, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	m, ok := f.msgs[id]
	if !ok {
		return nil, nil
	}
	d := f.dueLocked(m)
	return &d, nil
}

func (f *fakeMessageRepo) Claim(id uuid.UUID) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	m, ok := f.msgs[id]
	if !ok || m.Status != model.StatusScheduled {
		return false, nil
	}
	m.Status = model.StatusSending
	m.UpdatedAt = time.Now()
	return true, nil
}

func (f *fakeMessageRepo) ReclaimStale(cutoff time.Time) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, m := range f.msgs {
		if m.Status == model.StatusSending && m.UpdatedAt.Before(cutoff) {
			m.Status = model.StatusScheduled
			m.UpdatedAt = time.Now()
			n++
		}
	}
	return n, nil
}

func (f *fakeMessageRepo) MarkSent(id uuid.UUID, providerSID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	m, ok := f.msgs[id]
	if !ok || m.Status != model.StatusSending {
		return errors.New("mark sent: row not in sending")
	}
	now := time.Now()
	m.Status = model.StatusSent
	m.SentAt = &now
	m.ProviderSID = &providerSID
	m.UpdatedAt = now
	return nil
}

func (f *fakeMessageRepo) MarkDelivered(providerSID string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, m := range f.msgs {
		if m.ProviderSID != nil && *m.ProviderSID == providerSID && m.Status == model.StatusSent {
			now := time.Now()
			m.Status = model.StatusDelivered
			m.DeliveredAt = &now
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeMessageRepo) MarkFailed(id uuid.UUID, reason string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	m, ok := f.msgs[id]
	if !ok {
		return errors.New("mark failed: not found")
	}
	m.Status = model.StatusFailed
	m.FailedReason = &reason
	m.UpdatedAt = time.Now()
	return nil
}

func (f *fakeMessageRepo) IncrementRetry(id uuid.UUID) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	m, ok := f.msgs[id]
	if !ok {
		return 0, errors.New("increment retry: not found")
	}
	m.RetryCount++
	m.UpdatedAt = time.Now()
	return m.RetryCount, nil
}

func (f *fakeMessageRepo) Reschedule(id uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	m, ok := f.msgs[id]
	if !ok || m.Status != model.StatusSending {
		return errors.New("reschedule: row not in sending")
	}
	m.Status = model.StatusScheduled
	m.UpdatedAt = time.Now()
	return nil
}

func (f *fakeMessageRepo) CancelScheduledForClient(clientID uuid.UUID) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, m := range f.msgs {
		if m.ClientID == clientID && m.Status == model.StatusScheduled {
			m.Status = model.StatusCancelled
			m.UpdatedAt = time.Now()
			n++
		}
	}
	return n, nil
}

func (f *fakeMessageRepo) FindRecentSent(clientID uuid.UUID) (*model.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var recent *model.Message
	for _, m := range f.msgs {
		if m.ClientID != clientID {
			continue
		}
		if m.Status != model.StatusSent && m.Status != model.StatusDelivered {
			continue
		}
		if recent == nil || (m.SentAt != nil && recent.SentAt != nil && m.SentAt.After(*recent.SentAt)) {
			recent = m
		}
	}
	if recent == nil {
		return nil, nil
	}
	cp := *recent
	return &cp, nil
}

func (f *fakeMessageRepo) MarkReplied(id uuid.UUID, replyText string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	m, ok := f.msgs[id]
	if !ok {
		return errors.New("mark replied: not found")
	}
	now := time.Now()
	m.Status = model.StatusReplied
	m.ReplyText = &replyText
	m.ReplyAt = &now
	m.IsRead = false
	m.UpdatedAt = now
	return nil
}

func (f *fakeMessageRepo) ReplyCountByClient(clientID uuid.UUID) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, m := range f.msgs {
		if m.ClientID == clientID && m.Status == model.StatusReplied {
			n++
		}
	}
	return n, nil
}

type fakeClientRepo struct {
	repository.ClientRepositoryInterface

	mu      sync.Mutex
	clients map[uuid.UUID]*model.Client
	writes  int
}

func newFakeClientRepo(clients ...*model.Client) *fakeClientRepo {
	repo := &fakeClientRepo{clients: make(map[uuid.UUID]*model.Client)}
	for _, c := range clients {
		repo.clients[c.ID] = c
	}
	return repo
}

func (f *fakeClientRepo) GetByID(id uuid.UUID) (*model.Client, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	c, ok := f.clients[id]
	if !ok {
		return nil, nil
	}
	cp := *c
	return &cp, nil
}

func (f *fakeClientRepo) GetByIDAndAgent(id, agentID uuid.UUID) (*model.Client, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	c, ok := f.clients[id]
	if !ok || c.AgentID != agentID {
		return nil, nil
	}
	cp := *c
	return &cp, nil
}

func (f *fakeClientRepo) ListActive() ([]model.Client, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	active := []model.Client{}
	for _, c := range f.clients {
		if c.IsActive {
			active = append(active, *c)
		}
	}
	return active, nil
}

func (f *fakeClientRepo) FindByPhoneGlobal(phone string) ([]model.Client, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	found := []model.Client{}
	for _, c := range f.clients {
		if c.PhoneNumber == phone && c.IsActive {
			found = append(found, *c)
		}
	}
	return found, nil
}

func (f *fakeClientRepo) CountActiveByAgent(agentID uuid.UUID) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, c := range f.clients {
		if c.AgentID == agentID && c.IsActive {
			n++
		}
	}
	return n, nil
}

func (f *fakeClientRepo) SoftDelete(id uuid.UUID) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	c, ok := f.clients[id]
	if !ok || !c.IsActive {
		return false, nil
	}
	c.IsActive = false
	return true, nil
}

func (f *fakeClientRepo) UpdateEngagementScore(id uuid.UUID, score int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if score > 100 {
		score = 100
	}
	if score < 0 {
		score = 0
	}
	if c, ok := f.clients[id]; ok {
		c.EngagementScore = score
		f.writes++
	}
	return nil
}

func (f *fakeClientRepo) Create(c *model.Client) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	c.IsActive = true
	if c.EngagementScore == 0 {
		c.EngagementScore = 50
	}
	stored := *c
	f.clients[c.ID] = &stored
	return nil
}

type fakeAgentRepo struct {
	repository.AgentRepositoryInterface

	agents []*model.Agent
}

func (f *fakeAgentRepo) GetByID(id uuid.UUID) (*model.Agent, error) {
	for _, a := range f.agents {
		if a.ID == id {
			cp := *a
			return &cp, nil
		}
	}
	return nil, nil
}

func (f *fakeAgentRepo) FindBySendNumber(number string) (*model.Agent, error) {
	for _, a := range f.agents {
		if a.SendNumber != nil && *a.SendNumber == number {
			cp := *a
			return &cp, nil
		}
	}
	return nil, nil
}

type fakeTemplateRepo struct {
	templates []model.Template
}

func (f *fakeTemplateRepo) ListActive() ([]model.Template, error) {
	active := []model.Template{}
	for _, t := range f.templates {
		if t.IsActive {
			active = append(active, t)
		}
	}
	return active, nil
}

type fakeReferralRepo struct {
	mu        sync.Mutex
	referrals []*model.Referral
}

func (f *fakeReferralRepo) Create(r *model.Referral) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	r.CreatedAt = time.Now()
	f.referrals = append(f.referrals, r)
	return nil
}

// fakeSender records sends and fails on demand.
type fakeSender struct {
	mu    sync.Mutex
	sends []sentSMS
	err   error
}

type sentSMS struct {
	from, to, body string
}

func (f *fakeSender) Send(_ context.Context, from, to, body string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return "", f.err
	}
	f.sends = append(f.sends, sentSMS{from: from, to: to, body: body})
	return "SM" + uuid.NewString()[:8], nil
}

type fakeNotifier struct {
	mu       sync.Mutex
	notified []string
	err      error
}

func (f *fakeNotifier) Notify(_ context.Context, to, subject, html string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.notified = append(f.notified, to)
	return nil
}
