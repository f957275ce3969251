package main

import (
	"fmt"
	"log"
	"os"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/clientpro/clientpro-backend/internal/config"
	"github.com/clientpro/clientpro-backend/internal/db"
)

const schema = `
CREATE EXTENSION IF NOT EXISTS "pgcrypto";

CREATE TABLE IF NOT EXISTS users (
  id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
  email TEXT UNIQUE NOT NULL,
  first_name TEXT NOT NULL,
  last_name TEXT NOT NULL,
  company_name TEXT,
  send_number TEXT UNIQUE,
  subscription_tier TEXT NOT NULL DEFAULT 'starter'
    CHECK (subscription_tier IN ('starter', 'professional', 'elite', 'team', 'brokerage')),
  subscription_status TEXT NOT NULL DEFAULT 'active'
    CHECK (subscription_status IN ('active', 'past_due', 'cancelled')),
  is_active BOOLEAN DEFAULT true,
  created_at TIMESTAMPTZ DEFAULT now()
);

CREATE TABLE IF NOT EXISTS clients (
  id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
  agent_id UUID NOT NULL REFERENCES users(id) ON DELETE CASCADE,
  first_name TEXT NOT NULL,
  last_name TEXT NOT NULL,
  phone_number TEXT NOT NULL,
  email TEXT,
  property_address TEXT,
  city TEXT,
  state TEXT,
  zip TEXT,
  property_type TEXT CHECK (property_type IN ('single_family', 'condo', 'townhouse', 'multi_family', 'land', 'other')),
  closing_date DATE NOT NULL,
  notes TEXT,
  engagement_score INTEGER DEFAULT 50 CHECK (engagement_score >= 0 AND engagement_score <= 100),
  is_active BOOLEAN DEFAULT true,
  created_at TIMESTAMPTZ DEFAULT now(),
  updated_at TIMESTAMPTZ DEFAULT now(),
  UNIQUE(agent_id, phone_number)
);

CREATE INDEX IF NOT EXISTS idx_clients_agent ON clients(agent_id);
CREATE INDEX IF NOT EXISTS idx_clients_phone ON clients(phone_number);

CREATE TABLE IF NOT EXISTS messages (
  id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
  client_id UUID NOT NULL REFERENCES clients(id) ON DELETE CASCADE,
  agent_id UUID NOT NULL REFERENCES users(id) ON DELETE CASCADE,
  message_text TEXT NOT NULL,
  scheduled_for TIMESTAMPTZ NOT NULL,
  sent_at TIMESTAMPTZ,
  delivered_at TIMESTAMPTZ,
  status TEXT NOT NULL DEFAULT 'scheduled'
    CHECK (status IN ('scheduled', 'sending', 'sent', 'delivered', 'failed', 'replied', 'cancelled')),
  provider_sid TEXT UNIQUE,
  reply_text TEXT,
  reply_at TIMESTAMPTZ,
  is_read BOOLEAN DEFAULT false,
  failed_reason TEXT,
  retry_count INTEGER DEFAULT 0,
  created_at TIMESTAMPTZ DEFAULT now(),
  updated_at TIMESTAMPTZ DEFAULT now()
);

CREATE INDEX IF NOT EXISTS idx_messages_client ON messages(client_id);
CREATE INDEX IF NOT EXISTS idx_messages_scheduled ON messages(scheduled_for);
CREATE INDEX IF NOT EXISTS idx_messages_status ON messages(status);

CREATE TABLE IF NOT EXISTS referrals (
  id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
  agent_id UUID NOT NULL REFERENCES users(id) ON DELETE CASCADE,
  referred_by_client_id UUID NOT NULL REFERENCES clients(id) ON DELETE CASCADE,
  referral_first_name TEXT NOT NULL,
  referral_last_name TEXT NOT NULL,
  referral_phone TEXT,
  referral_email TEXT,
  status TEXT DEFAULT 'new'
    CHECK (status IN ('new', 'contacted', 'qualified', 'converted', 'lost')),
  notes TEXT,
  created_at TIMESTAMPTZ DEFAULT now()
);

CREATE TABLE IF NOT EXISTS templates (
  id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
  name TEXT NOT NULL,
  trigger_days_after_closing INTEGER NOT NULL,
  message_template TEXT NOT NULL,
  is_active BOOLEAN DEFAULT true,
  created_at TIMESTAMPTZ DEFAULT now()
);
`

type seedFile struct {
	Templates []struct {
		Name        string `yaml:"name"`
		TriggerDays int    `yaml:"trigger_days_after_closing"`
		Message     string `yaml:"message"`
	} `yaml:"templates"`
}

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("no .env file found, relying on OS environment variables")
	}
	cfg := config.Load()

	pool, err := db.Connect(cfg.DSN())
	if err != nil {
		log.Fatal(err)
	}
	defer pool.Close()

	if _, err := pool.Exec(schema); err != nil {
		log.Fatalf("create schema: %v", err)
	}
	fmt.Println("schema created")

	path := os.Getenv("TEMPLATE_SEED_FILE")
	if path == "" {
		path = "seed/templates.yaml"
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		log.Fatalf("read %s: %v", path, err)
	}
	var seed seedFile
	if err := yaml.Unmarshal(raw, &seed); err != nil {
		log.Fatalf("parse %s: %v", path, err)
	}

	// Seed only once; templates are provisioned globally and rarely edited.
	var existing int
	if err := pool.QueryRow(`SELECT COUNT(*) FROM templates`).Scan(&existing); err != nil {
		log.Fatal(err)
	}
	if existing > 0 {
		fmt.Printf("templates already seeded (%d rows), skipping\n", existing)
		return
	}

	for _, t := range seed.Templates {
		_, err := pool.Exec(
			`INSERT INTO templates (name, trigger_days_after_closing, message_template) VALUES ($1, $2, $3)`,
			t.Name, t.TriggerDays, t.Message,
		)
		if err != nil {
			log.Fatalf("seed template %q: %v", t.Name, err)
		}
		fmt.Printf("seeded template: %s (+%d days)\n", t.Name, t.TriggerDays)
	}
	fmt.Println("database seeding completed")
}
