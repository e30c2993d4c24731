package domain

// AuthorizeOwner decides whether actorID may mutate a resource owned by
// ownerID. It is the single authorization rule for product mutations and is
// checked before the repository applies its own owner-scoped filter, so a
// refactor of the query layer cannot silently open an unscoped mutation path.
func AuthorizeOwner(actorID, ownerID string) error {
	if actorID == "" || actorID != ownerID {
		return ErrNotOwner
	}
	return nil
}
