package database

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/rs/zerolog/log"
)

// Migration is one forward-only schema step
type Migration struct {
	Version     int
	Description string
	Statements  []string
}

// Migrations is the ordered schema history. Append only.
var Migrations = []Migration{
	{
		Version:     1,
		Description: "users, fails, comments, reactions",
		Statements: []string{
			`CREATE TABLE IF NOT EXISTS users (
				id            UUID PRIMARY KEY,
				email         TEXT NOT NULL UNIQUE,
				password_hash TEXT NOT NULL,
				display_name  TEXT NOT NULL,
				role          TEXT NOT NULL DEFAULT 'user' CHECK (role IN ('user', 'moderator', 'admin')),
				created_at    TIMESTAMPTZ NOT NULL DEFAULT NOW(),
				updated_at    TIMESTAMPTZ NOT NULL DEFAULT NOW()
			)`,
			`CREATE TABLE IF NOT EXISTS fails (
				id           UUID PRIMARY KEY,
				author_id    UUID NOT NULL REFERENCES users(id) ON DELETE CASCADE,
				title        TEXT NOT NULL,
				description  TEXT NOT NULL,
				category     TEXT NOT NULL DEFAULT 'other',
				is_anonymous BOOLEAN NOT NULL DEFAULT FALSE,
				image_key    TEXT,
				created_at   TIMESTAMPTZ NOT NULL DEFAULT NOW(),
				updated_at   TIMESTAMPTZ NOT NULL DEFAULT NOW()
			)`,
			`CREATE INDEX IF NOT EXISTS idx_fails_author ON fails(author_id)`,
			`CREATE INDEX IF NOT EXISTS idx_fails_created ON fails(created_at DESC)`,
			`CREATE TABLE IF NOT EXISTS comments (
				id         UUID PRIMARY KEY,
				fail_id    UUID NOT NULL REFERENCES fails(id) ON DELETE CASCADE,
				author_id  UUID NOT NULL REFERENCES users(id) ON DELETE CASCADE,
				content    TEXT NOT NULL,
				created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
			)`,
			`CREATE INDEX IF NOT EXISTS idx_comments_fail ON comments(fail_id, created_at)`,
			`CREATE INDEX IF NOT EXISTS idx_comments_author ON comments(author_id)`,
			`CREATE TABLE IF NOT EXISTS reactions (
				id         UUID PRIMARY KEY,
				fail_id    UUID NOT NULL REFERENCES fails(id) ON DELETE CASCADE,
				user_id    UUID NOT NULL REFERENCES users(id) ON DELETE CASCADE,
				type       TEXT NOT NULL CHECK (type IN ('courage', 'empathy', 'laugh', 'support')),
				created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
				updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
				CONSTRAINT reactions_user_fail_key UNIQUE (user_id, fail_id)
			)`,
			`CREATE INDEX IF NOT EXISTS idx_reactions_fail ON reactions(fail_id)`,
		},
	},
	{
		Version:     2,
		Description: "reports, moderation records and config",
		Statements: []string{
			`CREATE TABLE IF NOT EXISTS reports (
				id           UUID PRIMARY KEY,
				content_kind TEXT NOT NULL CHECK (content_kind IN ('fail', 'comment')),
				content_id   UUID NOT NULL,
				reporter_id  UUID NOT NULL REFERENCES users(id) ON DELETE CASCADE,
				reason       TEXT,
				created_at   TIMESTAMPTZ NOT NULL DEFAULT NOW(),
				CONSTRAINT reports_reporter_content_key UNIQUE (content_kind, content_id, reporter_id)
			)`,
			`CREATE TABLE IF NOT EXISTS moderation_records (
				content_kind          TEXT NOT NULL CHECK (content_kind IN ('fail', 'comment')),
				content_id            UUID NOT NULL,
				status                TEXT NOT NULL DEFAULT 'pending' CHECK (status IN ('pending', 'hidden', 'approved')),
				approved_report_count INTEGER NOT NULL DEFAULT 0,
				updated_by            UUID,
				updated_at            TIMESTAMPTZ NOT NULL DEFAULT NOW(),
				PRIMARY KEY (content_kind, content_id)
			)`,
			`CREATE INDEX IF NOT EXISTS idx_moderation_records_status ON moderation_records(status)`,
			`CREATE TABLE IF NOT EXISTS moderation_config (
				id                       SMALLINT PRIMARY KEY DEFAULT 1 CHECK (id = 1),
				fail_report_threshold    INTEGER NOT NULL CHECK (fail_report_threshold > 0),
				comment_report_threshold INTEGER NOT NULL CHECK (comment_report_threshold > 0),
				panel_auto_refresh_sec   INTEGER NOT NULL CHECK (panel_auto_refresh_sec > 0),
				updated_by               UUID,
				updated_at               TIMESTAMPTZ NOT NULL DEFAULT NOW()
			)`,
		},
	},
	{
		Version:     3,
		Description: "badges and notifications",
		Statements: []string{
			`CREATE TABLE IF NOT EXISTS badge_definitions (
				id                TEXT PRIMARY KEY,
				name              TEXT NOT NULL,
				description       TEXT NOT NULL DEFAULT '',
				icon              TEXT NOT NULL DEFAULT '',
				category          TEXT NOT NULL DEFAULT 'general',
				requirement_type  TEXT NOT NULL CHECK (requirement_type IN ('fail_count', 'comment_count', 'reaction_count', 'reactions_received')),
				requirement_value INTEGER NOT NULL CHECK (requirement_value >= 0),
				sort_order        INTEGER NOT NULL DEFAULT 0
			)`,
			`CREATE TABLE IF NOT EXISTS user_badges (
				user_id     UUID NOT NULL REFERENCES users(id) ON DELETE CASCADE,
				badge_id    TEXT NOT NULL REFERENCES badge_definitions(id),
				unlocked_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
				CONSTRAINT user_badges_pkey PRIMARY KEY (user_id, badge_id)
			)`,
			`INSERT INTO badge_definitions (id, name, description, icon, category, requirement_type, requirement_value, sort_order) VALUES
				('first-fail',        'Premier Courage',   'Share your first fail',             'rocket',   'courage',   'fail_count',         1,  10),
				('fail-5',            'Habitué',           'Share 5 fails',                     'flame',    'courage',   'fail_count',         5,  20),
				('fail-25',           'Légende du Fail',   'Share 25 fails',                    'trophy',   'courage',   'fail_count',         25, 30),
				('first-comment',     'Première Parole',   'Write your first comment',          'chatbox',  'community', 'comment_count',      1,  40),
				('comment-10',        'Bavard',            'Write 10 comments',                 'chatbubbles', 'community', 'comment_count',   10, 50),
				('first-reaction',    'Premier Soutien',   'React to a fail for the first time', 'heart',   'support',   'reaction_count',     1,  60),
				('reaction-25',       'Grand Cœur',        'React to 25 fails',                 'hand-left', 'support',  'reaction_count',     25, 70),
				('received-10',       'Inspirant',         'Receive 10 reactions on your fails', 'star',    'impact',    'reactions_received', 10, 80),
				('received-50',       'Source de Courage', 'Receive 50 reactions on your fails', 'medal',   'impact',    'reactions_received', 50, 90)
			ON CONFLICT (id) DO NOTHING`,
			`CREATE TABLE IF NOT EXISTS notifications (
				id         UUID PRIMARY KEY,
				user_id    UUID NOT NULL REFERENCES users(id) ON DELETE CASCADE,
				type       TEXT NOT NULL,
				title      TEXT NOT NULL,
				body       TEXT,
				data       JSONB,
				is_read    BOOLEAN NOT NULL DEFAULT FALSE,
				read_at    TIMESTAMPTZ,
				created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
			)`,
			`CREATE INDEX IF NOT EXISTS idx_notifications_user ON notifications(user_id, created_at DESC)`,
		},
	},
}

// CurrentVersion returns the newest schema version known to this binary
func CurrentVersion() int {
	return Migrations[len(Migrations)-1].Version
}

// Migrate applies every pending migration, one transaction per version
func Migrate(ctx context.Context, db *sqlx.DB) error {
	if db == nil {
		return fmt.Errorf("migrate: db is nil")
	}

	if _, err := db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version    INTEGER PRIMARY KEY,
			applied_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`); err != nil {
		return fmt.Errorf("migrate: create schema_migrations: %w", err)
	}

	var current int
	if err := db.GetContext(ctx, &current, `SELECT COALESCE(MAX(version), 0) FROM schema_migrations`); err != nil {
		return fmt.Errorf("migrate: read current version: %w", err)
	}

	for _, m := range Migrations {
		if m.Version <= current {
			continue
		}
		if err := apply(ctx, db, m); err != nil {
			return err
		}
		log.Info().Int("version", m.Version).Str("description", m.Description).Msg("Applied migration")
	}

	return nil
}

func apply(ctx context.Context, db *sqlx.DB, m Migration) error {
	tx, err := db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("migrate v%d: begin: %w", m.Version, err)
	}
	defer func() { _ = tx.Rollback() }()

	for i, stmt := range m.Statements {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migrate v%d: statement %d: %w", m.Version, i, err)
		}
	}

	if _, err := tx.ExecContext(ctx, `INSERT INTO schema_migrations (version) VALUES ($1)`, m.Version); err != nil {
		return fmt.Errorf("migrate v%d: record version: %w", m.Version, err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("migrate v%d: commit: %w", m.Version, err)
	}
	return nil
}
