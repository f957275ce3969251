package repository

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	appErrors "github.com/clientpro/clientpro-backend/internal/errors"
	"github.com/clientpro/clientpro-backend/internal/model"
)

// DueMessage is a message joined with the delivery addresses the dispatcher
// needs: the client's phone and the owning agent's provisioned send number
// (nil when the agent has none, which is a permanent failure).
type DueMessage struct {
	model.Message
	ClientPhone     string
	AgentSendNumber *string
}

type MessageRepositoryInterface interface {
	Create(m *model.Message) error
	GetByID(id uuid.UUID) (*model.Message, error)
	ListByAgent(agentID uuid.UUID, status model.Status, offset, limit int) ([]model.Message, int, error)
	ListUpcoming(agentID uuid.UUID, days int) ([]model.Message, error)
	ListUnreadReplies(agentID uuid.UUID) ([]model.Message, error)
	UpdateText(id, agentID uuid.UUID, text string) (*model.Message, error)
	MarkRead(id, agentID uuid.UUID) error
	Cancel(id, agentID uuid.UUID) (bool, error)
	CancelScheduledForClient(clientID uuid.UUID) (int, error)

	FindDue(maxRetries, limit int) ([]DueMessage, error)
	GetForDelivery(id uuid.UUID) (*DueMessage, error)
	Claim(id uuid.UUID) (bool, error)
	ReclaimStale(cutoff time.Time) (int, error)
	MarkSent(id uuid.UUID, providerSID string) error
	MarkDelivered(providerSID string) (bool, error)
	MarkFailed(id uuid.UUID, reason string) error
	IncrementRetry(id uuid.UUID) (int, error)
	Reschedule(id uuid.UUID) error

	FindRecentSent(clientID uuid.UUID) (*model.Message, error)
	MarkReplied(id uuid.UUID, replyText string) error
	ReplyCountByClient(clientID uuid.UUID) (int, error)
}

type MessageRepository struct {
	DB *sql.DB
}

var _ MessageRepositoryInterface = (*MessageRepository)(nil)

const messageColumns = `id, client_id, agent_id, message_text, scheduled_for, sent_at, delivered_at,
	status, provider_sid, reply_text, reply_at, is_read, failed_reason, retry_count, created_at, updated_at`

func scanMessage(row interface{ Scan(...any) error }) (*model.Message, error) {
	var m model.Message
	err := row.Scan(
		&m.ID, &m.ClientID, &m.AgentID, &m.MessageText, &m.ScheduledFor,
		&m.SentAt, &m.DeliveredAt, &m.Status, &m.ProviderSID,
		&m.ReplyText, &m.ReplyAt, &m.IsRead, &m.FailedReason,
		&m.RetryCount, &m.CreatedAt, &m.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &m, nil
}

func (r *MessageRepository) Create(m *model.Message) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	if m.Status == "" {
		m.Status = model.StatusScheduled
	}
	query := `
		INSERT INTO messages (id, client_id, agent_id, message_text, scheduled_for, status)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING created_at, updated_at
	`
	return r.DB.QueryRow(query, m.ID, m.ClientID, m.AgentID, m.MessageText, m.ScheduledFor, m.Status).
		Scan(&m.CreatedAt, &m.UpdatedAt)
}

func (r *MessageRepository) GetByID(id uuid.UUID) (*model.Message, error) {
	msg, err := scanMessage(r.DB.QueryRow(`SELECT `+messageColumns+` FROM messages WHERE id=$1`, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return msg, err
}

func (r *MessageRepository) ListByAgent(agentID uuid.UUID, status model.Status, offset, limit int) ([]model.Message, int, error) {
	query := `SELECT ` + messageColumns + ` FROM messages WHERE agent_id=$1`
	countQuery := `SELECT COUNT(*) FROM messages WHERE agent_id=$1`
	args := []any{agentID}
	if status != "" {
		query += ` AND status=$2`
		countQuery += ` AND status=$2`
		args = append(args, status)
	}
	query += ` ORDER BY scheduled_for DESC LIMIT ` + placeholder(len(args)+1) + ` OFFSET ` + placeholder(len(args)+2)

	rows, err := r.DB.Query(query, append(args, limit, offset)...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	messages := []model.Message{}
	for rows.Next() {
		m, err := scanMessage(rows)
		if err != nil {
			return nil, 0, err
		}
		messages = append(messages, *m)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	var total int
	if err := r.DB.QueryRow(countQuery, args...).Scan(&total); err != nil {
		return nil, 0, err
	}
	return messages, total, nil
}

func (r *MessageRepository) ListUpcoming(agentID uuid.UUID, days int) ([]model.Message, error) {
	query := `
		SELECT ` + messageColumns + `
		FROM messages
		WHERE agent_id=$1 AND status='scheduled'
		  AND scheduled_for BETWEEN now() AND now() + ($2 || ' days')::interval
		ORDER BY scheduled_for ASC
	`
	return r.queryMessages(query, agentID, days)
}

func (r *MessageRepository) ListUnreadReplies(agentID uuid.UUID) ([]model.Message, error) {
	query := `
		SELECT ` + messageColumns + `
		FROM messages
		WHERE agent_id=$1 AND status='replied' AND is_read=false
		ORDER BY reply_at DESC
	`
	return r.queryMessages(query, agentID)
}

func (r *MessageRepository) queryMessages(query string, args ...any) ([]model.Message, error) {
	rows, err := r.DB.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	messages := []model.Message{}
	for rows.Next() {
		m, err := scanMessage(rows)
		if err != nil {
			return nil, err
		}
		messages = append(messages, *m)
	}
	return messages, rows.Err()
}

// UpdateText edits the body of a still-scheduled message. Editing after the
// message has entered delivery is not allowed.
func (r *MessageRepository) UpdateText(id, agentID uuid.UUID, text string) (*model.Message, error) {
	query := `
		UPDATE messages SET message_text=$3, updated_at=now()
		WHERE id=$1 AND agent_id=$2 AND status='scheduled'
		RETURNING ` + messageColumns
	msg, err := scanMessage(r.DB.QueryRow(query, id, agentID, text))
	if err == sql.ErrNoRows {
		return nil, appErrors.NewMessageNotFound(id)
	}
	return msg, err
}

func (r *MessageRepository) MarkRead(id, agentID uuid.UUID) error {
	res, err := r.DB.Exec(`UPDATE messages SET is_read=true, updated_at=now() WHERE id=$1 AND agent_id=$2`, id, agentID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return appErrors.NewMessageNotFound(id)
	}
	return nil
}

// Cancel transitions a scheduled message to cancelled. Returns false when
// the row was not in scheduled state (or not owned by the agent).
func (r *MessageRepository) Cancel(id, agentID uuid.UUID) (bool, error) {
	res, err := r.DB.Exec(`
		UPDATE messages SET status='cancelled', updated_at=now()
		WHERE id=$1 AND agent_id=$2 AND status='scheduled'`, id, agentID)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n > 0, err
}

// CancelScheduledForClient cancels every still-scheduled message for a
// client. In-flight attempts are left to finish on their own.
func (r *MessageRepository) CancelScheduledForClient(clientID uuid.UUID) (int, error) {
	res, err := r.DB.Exec(`
		UPDATE messages SET status='cancelled', updated_at=now()
		WHERE client_id=$1 AND status='scheduled'`, clientID)
	if err != nil {
		return 0, err
	}
	n, err := res.RowsAffected()
	return int(n), err
}

const dueColumns = `m.id, m.client_id, m.agent_id, m.message_text, m.scheduled_for, m.status,
	m.retry_count, c.phone_number, u.send_number`

// FindDue selects the next batch of deliverable messages: due, under the
// retry ceiling, with an active client and an active, paying agent.
func (r *MessageRepository) FindDue(maxRetries, limit int) ([]DueMessage, error) {
	query := `
		SELECT ` + dueColumns + `
		FROM messages m
		JOIN clients c ON c.id = m.client_id
		JOIN users u ON u.id = m.agent_id
		WHERE m.status='scheduled' AND m.scheduled_for <= now() AND m.retry_count < $1
		  AND c.is_active = true AND u.is_active = true AND u.subscription_status = 'active'
		ORDER BY m.scheduled_for ASC
		LIMIT $2
	`
	rows, err := r.DB.Query(query, maxRetries, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	due := []DueMessage{}
	for rows.Next() {
		var d DueMessage
		var sendNumber sql.NullString
		if err := rows.Scan(
			&d.ID, &d.ClientID, &d.AgentID, &d.MessageText, &d.ScheduledFor,
			&d.Status, &d.RetryCount, &d.ClientPhone, &sendNumber,
		); err != nil {
			return nil, err
		}
		if sendNumber.Valid {
			d.AgentSendNumber = &sendNumber.String
		}
		due = append(due, d)
	}
	return due, rows.Err()
}

// GetForDelivery loads one claimed message with its delivery addresses, for
// the queue worker path.
func (r *MessageRepository) GetForDelivery(id uuid.UUID) (*DueMessage, error) {
	query := `
		SELECT ` + dueColumns + `
		FROM messages m
		JOIN clients c ON c.id = m.client_id
		JOIN users u ON u.id = m.agent_id
		WHERE m.id = $1
	`
	var d DueMessage
	var sendNumber sql.NullString
	err := r.DB.QueryRow(query, id).Scan(
		&d.ID, &d.ClientID, &d.AgentID, &d.MessageText, &d.ScheduledFor,
		&d.Status, &d.RetryCount, &d.ClientPhone, &sendNumber,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if sendNumber.Valid {
		d.AgentSendNumber = &sendNumber.String
	}
	return &d, nil
}

// Claim is the atomic scheduled→sending transition. When two sweeps race on
// the same row the update matches zero rows for the loser.
func (r *MessageRepository) Claim(id uuid.UUID) (bool, error) {
	res, err := r.DB.Exec(`
		UPDATE messages SET status='sending', updated_at=now()
		WHERE id=$1 AND status='scheduled'`, id)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n == 1, err
}

// ReclaimStale flips rows stuck in sending since before cutoff back to
// scheduled, so a crash between claim and completion cannot strand them.
func (r *MessageRepository) ReclaimStale(cutoff time.Time) (int, error) {
	res, err := r.DB.Exec(`
		UPDATE messages SET status='scheduled', updated_at=now()
		WHERE status='sending' AND updated_at < $1`, cutoff)
	if err != nil {
		return 0, err
	}
	n, err := res.RowsAffected()
	return int(n), err
}

func (r *MessageRepository) MarkSent(id uuid.UUID, providerSID string) error {
	_, err := r.DB.Exec(`
		UPDATE messages SET status='sent', sent_at=now(), provider_sid=$2, updated_at=now()
		WHERE id=$1 AND status='sending'`, id, providerSID)
	return err
}

// MarkDelivered applies a provider delivery receipt, keyed by the provider
// message id. Returns false when no sent row matches.
func (r *MessageRepository) MarkDelivered(providerSID string) (bool, error) {
	res, err := r.DB.Exec(`
		UPDATE messages SET status='delivered', delivered_at=now(), updated_at=now()
		WHERE provider_sid=$1 AND status='sent'`, providerSID)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n > 0, err
}

func (r *MessageRepository) MarkFailed(id uuid.UUID, reason string) error {
	_, err := r.DB.Exec(`
		UPDATE messages SET status='failed', failed_reason=$2, updated_at=now()
		WHERE id=$1`, id, reason)
	return err
}

func (r *MessageRepository) IncrementRetry(id uuid.UUID) (int, error) {
	var count int
	err := r.DB.QueryRow(`
		UPDATE messages SET retry_count=retry_count+1, updated_at=now()
		WHERE id=$1
		RETURNING retry_count`, id).Scan(&count)
	return count, err
}

// Reschedule returns a failed attempt to the scheduled pool so the next
// sweep retries it.
func (r *MessageRepository) Reschedule(id uuid.UUID) error {
	_, err := r.DB.Exec(`
		UPDATE messages SET status='scheduled', updated_at=now()
		WHERE id=$1 AND status='sending'`, id)
	return err
}

// FindRecentSent returns the client's most recently sent or delivered
// message, the row an inbound reply correlates to.
func (r *MessageRepository) FindRecentSent(clientID uuid.UUID) (*model.Message, error) {
	query := `
		SELECT ` + messageColumns + `
		FROM messages
		WHERE client_id=$1 AND status IN ('sent', 'delivered')
		ORDER BY sent_at DESC
		LIMIT 1
	`
	msg, err := scanMessage(r.DB.QueryRow(query, clientID))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return msg, err
}

func (r *MessageRepository) MarkReplied(id uuid.UUID, replyText string) error {
	_, err := r.DB.Exec(`
		UPDATE messages SET status='replied', reply_text=$2, reply_at=now(), is_read=false, updated_at=now()
		WHERE id=$1`, id, replyText)
	return err
}

func (r *MessageRepository) ReplyCountByClient(clientID uuid.UUID) (int, error) {
	var count int
	err := r.DB.QueryRow(`SELECT COUNT(*) FROM messages WHERE client_id=$1 AND status='replied'`, clientID).Scan(&count)
	return count, err
}

func placeholder(n int) string {
	return fmt.Sprintf("$%d", n)
}
