package model

import (
	"strings"
	"time"
)

// Placeholder field values for speakers discovered by inference, before
// the authoritative roster sync fills them in.
const (
	PartyUnknown     = "Unknown"
	ProvinceUnknown  = "Unknown"
	CommitteeUnknown = "Unknown"
	RoleDefault      = "Asambleísta"
)

// Speaker is one roster entry for a known legislator.
type Speaker struct {
	ID             string   `json:"id"`
	Name           string   `json:"name"`
	Party          string   `json:"party"`
	Province       string   `json:"province"`
	Role           string   `json:"role"`
	Committee      string   `json:"committee"`
	AlternateNames []string `json:"alternate_names"`
}

// Roster is the persisted directory of known legislators. It is read
// and written as a whole document; entries are never deleted
// automatically.
type Roster struct {
	LastUpdated time.Time `json:"last_updated"`
	Source      string    `json:"source"`
	TotalCount  int       `json:"total_count"`
	Speakers    []Speaker `json:"asambleistas"`
}

// HasName reports whether a speaker with the exact canonical name
// already exists.
func (r *Roster) HasName(name string) bool {
	for _, s := range r.Speakers {
		if s.Name == name {
			return true
		}
	}
	return false
}

// FindByID returns the speaker with the given id, or nil.
func (r *Roster) FindByID(id string) *Speaker {
	for i := range r.Speakers {
		if r.Speakers[i].ID == id {
			return &r.Speakers[i]
		}
	}
	return nil
}

// SlugID derives a deterministic, human-readable roster id from a
// canonical name: "Juan Pérez" -> "AN-JUAN-PÉREZ".
func SlugID(name string) string {
	return "AN-" + strings.ToUpper(strings.ReplaceAll(strings.TrimSpace(name), " ", "-"))
}

// NewDiscoveredSpeaker builds a roster entry for a name found by
// inference (vision or lexical extraction). Party, province and
// committee stay unknown until the authoritative sync resolves them.
func NewDiscoveredSpeaker(name string) Speaker {
	return Speaker{
		ID:             SlugID(name),
		Name:           name,
		Party:          PartyUnknown,
		Province:       ProvinceUnknown,
		Role:           RoleDefault,
		Committee:      CommitteeUnknown,
		AlternateNames: []string{},
	}
}

// AlternateNamesFor generates matching variants for a full name:
// last name alone and initial + last name.
func AlternateNamesFor(fullName string) []string {
	parts := strings.Fields(fullName)
	if len(parts) < 2 {
		return []string{}
	}
	last := parts[len(parts)-1]
	return []string{
		last,
		string([]rune(parts[0])[:1]) + ". " + last,
	}
}
