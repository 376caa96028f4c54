package cart

import (
	"context"

	"github.com/blastmusic247/blast-gear-full/internal/domain"
)

// Storage is the durable mirror of one session's cart. Implementations must
// treat missing or unreadable stored data as an empty cart on Load rather
// than failing; a shopper losing their cart beats a shopper losing the page.
type Storage interface {
	Load(ctx context.Context) (domain.Cart, error)
	Save(ctx context.Context, cart domain.Cart) error
	Clear(ctx context.Context) error
}
