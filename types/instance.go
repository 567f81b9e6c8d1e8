package types

import (
	"fmt"
	"time"
)

// Kind distinguishes the two structurally identical instance flavors.
type Kind string

const (
	KindCompute  Kind = "compute"
	KindDatabase Kind = "database"
)

// ParseKind validates a kind string.
func ParseKind(s string) (Kind, error) {
	switch Kind(s) {
	case KindCompute, KindDatabase:
		return Kind(s), nil
	}
	return "", fmt.Errorf("unknown instance kind %q", s)
}

// Instance is one remote resource known to an account. RemoteID is the
// provider's stable identifier; Watched is the only field mutated outside
// a refresh cycle.
type Instance struct {
	ID        string    `json:"id"`
	AccountID string    `json:"account_id"`
	Kind      Kind      `json:"kind"`
	RemoteID  string    `json:"remote_id"`
	Name      string    `json:"name"`
	Status    string    `json:"status"`
	Region    Region    `json:"region"`
	Watched   bool      `json:"watched"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Key identifies an instance within an account across refreshes.
func (i Instance) Key() InstanceKey {
	return InstanceKey{Kind: i.Kind, Region: i.Region, RemoteID: i.RemoteID}
}

// InstanceKey is the (kind, region, remoteID) identity the reconciler
// diffs on.
type InstanceKey struct {
	Kind     Kind
	Region   Region
	RemoteID string
}

// RemoteInstance is a freshly fetched, not yet persisted instance record.
type RemoteInstance struct {
	Kind     Kind
	RemoteID string
	Name     string
	Status   string
	Region   Region
}

// Key returns the reconciliation identity of the fetched record.
func (r RemoteInstance) Key() InstanceKey {
	return InstanceKey{Kind: r.Kind, Region: r.Region, RemoteID: r.RemoteID}
}

// InstanceFilter narrows instance list queries. Nil fields match everything.
type InstanceFilter struct {
	Kind    Kind
	Status  string
	Watched *bool
}

// Matches reports whether an instance satisfies the filter.
func (f InstanceFilter) Matches(i Instance) bool {
	if f.Kind != "" && i.Kind != f.Kind {
		return false
	}
	if f.Status != "" && i.Status != f.Status {
		return false
	}
	if f.Watched != nil && i.Watched != *f.Watched {
		return false
	}
	return true
}
