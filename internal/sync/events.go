package sync

import "time"

const (
	EntityAnime    = "anime"
	EntityCategory = "category"
)

// CatalogEvent describes one committed catalog mutation.
type CatalogEvent struct {
	Type   string    `json:"type"` // e.g. "anime.created", "category.deleted"
	Entity string    `json:"entity"`
	ID     uint      `json:"id"`
	Label  string    `json:"label,omitempty"` // anime title or category name
	At     time.Time `json:"at"`
}

func NewEvent(entity, action string, id uint, label string) CatalogEvent {
	return CatalogEvent{
		Type:   entity + "." + action,
		Entity: entity,
		ID:     id,
		Label:  label,
		At:     time.Now().UTC(),
	}
}
