package directory

import (
	"context"
	"errors"
	"sync"
)

// Profile holds the contact surface of one registered person. Each delivery
// channel picks its own address from it; absent addresses simply exclude
// the person from that channel.
type Profile struct {
	ID          string `json:"id"`
	Name        string `json:"name,omitempty"`
	Phone       string `json:"phone,omitempty"`
	Email       string `json:"email,omitempty"`
	DeviceToken string `json:"device_token,omitempty"`
	Language    string `json:"language,omitempty"` // BCP 47 tag, e.g. "th", "zh-Hans"
	Zone        string `json:"zone,omitempty"`
	Role        string `json:"role,omitempty"`
}

// Lookup resolves recipient IDs to contact profiles. Implementations back
// this with whatever identity store the deployment uses.
type Lookup interface {
	Profile(ctx context.Context, id string) (*Profile, error)
}

// ErrProfileNotFound is returned when no profile exists for an ID.
var ErrProfileNotFound = errors.New("profile not found")

// MemoryDirectory is an in-memory Lookup for development and tests.
type MemoryDirectory struct {
	mu       sync.RWMutex
	profiles map[string]Profile
}

// NewMemoryDirectory creates an empty in-memory directory.
func NewMemoryDirectory() *MemoryDirectory {
	return &MemoryDirectory{profiles: make(map[string]Profile)}
}

// Upsert stores or replaces a profile.
func (d *MemoryDirectory) Upsert(p Profile) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.profiles[p.ID] = p
}

// Delete removes a profile. Unknown IDs are ignored.
func (d *MemoryDirectory) Delete(id string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	delete(d.profiles, id)
}

// Profile returns a copy of the stored profile.
func (d *MemoryDirectory) Profile(ctx context.Context, id string) (*Profile, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	p, ok := d.profiles[id]
	if !ok {
		return nil, ErrProfileNotFound
	}
	return &p, nil
}

// All returns a snapshot of every profile, for audience resolution.
func (d *MemoryDirectory) All(ctx context.Context) ([]Profile, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	out := make([]Profile, 0, len(d.profiles))
	for _, p := range d.profiles {
		out = append(out, p)
	}
	return out, nil
}
