package repository

import (
	"database/sql"

	"github.com/google/uuid"

	"github.com/clientpro/clientpro-backend/internal/model"
)

type ClientRepositoryInterface interface {
	Create(c *model.Client) error
	GetByID(id uuid.UUID) (*model.Client, error)
	GetByIDAndAgent(id, agentID uuid.UUID) (*model.Client, error)
	ListByAgent(agentID uuid.UUID, offset, limit int) ([]model.Client, int, error)
	ListActive() ([]model.Client, error)
	FindByPhoneGlobal(phone string) ([]model.Client, error)
	CountActiveByAgent(agentID uuid.UUID) (int, error)
	SoftDelete(id uuid.UUID) (bool, error)
	UpdateEngagementScore(id uuid.UUID, score int) error
}

type ClientRepository struct {
	DB *sql.DB
}

var _ ClientRepositoryInterface = (*ClientRepository)(nil)

const clientColumns = `id, agent_id, first_name, last_name, phone_number, email, property_address,
	city, state, zip, property_type, closing_date, notes, engagement_score, is_active, created_at, updated_at`

func scanClient(row interface{ Scan(...any) error }) (*model.Client, error) {
	var c model.Client
	var propertyType sql.NullString
	err := row.Scan(
		&c.ID, &c.AgentID, &c.FirstName, &c.LastName, &c.PhoneNumber, &c.Email,
		&c.PropertyAddress, &c.City, &c.State, &c.Zip, &propertyType,
		&c.ClosingDate, &c.Notes, &c.EngagementScore, &c.IsActive,
		&c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	c.PropertyType = model.PropertyType(propertyType.String)
	return &c, nil
}

func (r *ClientRepository) Create(c *model.Client) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	query := `
		INSERT INTO clients (id, agent_id, first_name, last_name, phone_number, email,
			property_address, city, state, zip, property_type, closing_date, notes)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, NULLIF($11, ''), $12, $13)
		RETURNING engagement_score, is_active, created_at, updated_at
	`
	return r.DB.QueryRow(query,
		c.ID, c.AgentID, c.FirstName, c.LastName, c.PhoneNumber, c.Email,
		c.PropertyAddress, c.City, c.State, c.Zip, string(c.PropertyType),
		c.ClosingDate, c.Notes,
	).Scan(&c.EngagementScore, &c.IsActive, &c.CreatedAt, &c.UpdatedAt)
}

func (r *ClientRepository) GetByID(id uuid.UUID) (*model.Client, error) {
	c, err := scanClient(r.DB.QueryRow(`SELECT `+clientColumns+` FROM clients WHERE id=$1`, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return c, err
}

func (r *ClientRepository) GetByIDAndAgent(id, agentID uuid.UUID) (*model.Client, error) {
	c, err := scanClient(r.DB.QueryRow(
		`SELECT `+clientColumns+` FROM clients WHERE id=$1 AND agent_id=$2`, id, agentID))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return c, err
}

func (r *ClientRepository) ListByAgent(agentID uuid.UUID, offset, limit int) ([]model.Client, int, error) {
	rows, err := r.DB.Query(`
		SELECT `+clientColumns+`
		FROM clients
		WHERE agent_id=$1 AND is_active=true
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3`, agentID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	clients := []model.Client{}
	for rows.Next() {
		c, err := scanClient(rows)
		if err != nil {
			return nil, 0, err
		}
		clients = append(clients, *c)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	var total int
	err = r.DB.QueryRow(`SELECT COUNT(*) FROM clients WHERE agent_id=$1 AND is_active=true`, agentID).Scan(&total)
	return clients, total, err
}

func (r *ClientRepository) ListActive() ([]model.Client, error) {
	rows, err := r.DB.Query(`SELECT ` + clientColumns + ` FROM clients WHERE is_active=true`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	clients := []model.Client{}
	for rows.Next() {
		c, err := scanClient(rows)
		if err != nil {
			return nil, err
		}
		clients = append(clients, *c)
	}
	return clients, rows.Err()
}

// FindByPhoneGlobal returns every active client holding a phone number,
// across agents. The caller disambiguates by agent; a number may belong to
// different clients of different agents.
func (r *ClientRepository) FindByPhoneGlobal(phone string) ([]model.Client, error) {
	rows, err := r.DB.Query(`
		SELECT `+clientColumns+` FROM clients WHERE phone_number=$1 AND is_active=true`, phone)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	clients := []model.Client{}
	for rows.Next() {
		c, err := scanClient(rows)
		if err != nil {
			return nil, err
		}
		clients = append(clients, *c)
	}
	return clients, rows.Err()
}

func (r *ClientRepository) CountActiveByAgent(agentID uuid.UUID) (int, error) {
	var count int
	err := r.DB.QueryRow(`SELECT COUNT(*) FROM clients WHERE agent_id=$1 AND is_active=true`, agentID).Scan(&count)
	return count, err
}

// SoftDelete deactivates a client. Message rows keep referencing it; the
// caller cascades cancellation of scheduled messages separately.
func (r *ClientRepository) SoftDelete(id uuid.UUID) (bool, error) {
	res, err := r.DB.Exec(`
		UPDATE clients SET is_active=false, updated_at=now()
		WHERE id=$1 AND is_active=true`, id)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n > 0, err
}

func (r *ClientRepository) UpdateEngagementScore(id uuid.UUID, score int) error {
	if score > 100 {
		score = 100
	}
	if score < 0 {
		score = 0
	}
	_, err := r.DB.Exec(`UPDATE clients SET engagement_score=$2, updated_at=now() WHERE id=$1`, id, score)
	return err
}
