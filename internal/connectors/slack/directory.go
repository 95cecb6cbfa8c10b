package slack

import (
	"context"

	"github.com/zotcast/zotcast/internal/core/domain"
)

// Members returns the workspace member directory for the fuzzy mention
// mode. Deleted accounts and bots are skipped; members without a display
// name fall back to their real name.
func (c *Client) Members(ctx context.Context) ([]domain.Identity, error) {
	users, err := c.api.GetUsersContext(ctx)
	if err != nil {
		return nil, wrapError("list members", err)
	}

	identities := make([]domain.Identity, 0, len(users))
	for _, u := range users {
		if u.Deleted || u.IsBot {
			continue
		}
		name := u.Profile.DisplayNameNormalized
		if name == "" {
			name = u.Profile.RealNameNormalized
		}
		if name == "" {
			continue
		}
		identities = append(identities, domain.Identity{ID: u.ID, DisplayName: name})
	}
	return identities, nil
}
