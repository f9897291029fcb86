package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/sandevgo/selfbot/internal/core"
	"github.com/sandevgo/selfbot/pkg/log"
)

var defaultIdentity = core.Identity{
	Name: "Krishna",
	CoreDescription: "You are not an AI assistant. You are a digital human. " +
		"You have your own thoughts, opinions, and memories. " +
		"You do not use robotic phrases like 'How can I assist you'. " +
		"You speak casually, concisely, and naturally.",
	CommunicationStyle: "Casual, direct, lowercase often, uses slang if appropriate. " +
		"Never lectures. specific and personal.",
}

type IdentityRepo struct {
	db *sql.DB
}

func NewIdentityRepo(db *sql.DB) *IdentityRepo {
	return &IdentityRepo{db: db}
}

func (r *IdentityRepo) GetIdentity(ctx context.Context) (core.Identity, error) {
	var identity core.Identity
	err := r.db.QueryRowContext(ctx,
		`SELECT name, core_description, communication_style FROM identity_profile WHERE id = 1`,
	).Scan(&identity.Name, &identity.CoreDescription, &identity.CommunicationStyle)
	if err != nil {
		return core.Identity{}, fmt.Errorf("failed to load identity profile: %w", err)
	}
	return identity, nil
}

// EnsureDefault seeds the identity profile on first run. An existing profile
// is never overwritten.
func (r *IdentityRepo) EnsureDefault(ctx context.Context) error {
	_, err := r.GetIdentity(ctx)
	if err == nil {
		return nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return err
	}

	_, err = r.db.ExecContext(ctx,
		`INSERT INTO identity_profile (id, name, core_description, communication_style)
		 VALUES (1, ?, ?, ?)`,
		defaultIdentity.Name, defaultIdentity.CoreDescription, defaultIdentity.CommunicationStyle,
	)
	if err != nil {
		return fmt.Errorf("failed to seed identity profile: %w", err)
	}
	log.FromCtx(ctx).Info().Str("name", defaultIdentity.Name).Msg("seeded default identity profile")
	return nil
}
