package repository

import (
	"database/sql"

	"github.com/clientpro/clientpro-backend/internal/model"
)

type TemplateRepositoryInterface interface {
	ListActive() ([]model.Template, error)
}

type TemplateRepository struct {
	DB *sql.DB
}

var _ TemplateRepositoryInterface = (*TemplateRepository)(nil)

// ListActive returns active templates ordered by trigger offset ascending,
// the order the scheduler fans them out in.
func (r *TemplateRepository) ListActive() ([]model.Template, error) {
	rows, err := r.DB.Query(`
		SELECT id, name, trigger_days_after_closing, message_template, is_active, created_at
		FROM templates
		WHERE is_active=true
		ORDER BY trigger_days_after_closing ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	templates := []model.Template{}
	for rows.Next() {
		var t model.Template
		if err := rows.Scan(&t.ID, &t.Name, &t.TriggerDays, &t.MessageTemplate, &t.IsActive, &t.CreatedAt); err != nil {
			return nil, err
		}
		templates = append(templates, t)
	}
	return templates, rows.Err()
}
