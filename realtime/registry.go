package realtime

import "sync"

// Identity holds the authenticated identity fields attached to a connection.
// Registry entries are value snapshots of this struct, never references into
// session state.
type Identity struct {
	UserID      string
	Role        string
	DisplayName string
}

// Registry is the in-memory presence map from connection id to participant
// identity. It answers "who is currently reachable" and "which connections
// belong to user X"; it is never consulted for authorization. State is lost
// on process restart and reconnecting clients must re-register.
type Registry struct {
	mu      sync.RWMutex
	entries map[string]Identity
}

// NewRegistry creates an empty presence registry
func NewRegistry() *Registry {
	return &Registry{
		entries: make(map[string]Identity),
	}
}

// Register inserts or overwrites the entry for connectionID. Re-registration
// by the same connection replaces its stored identity, which supports
// late-arriving display-name updates after the initial connect.
func (r *Registry) Register(connectionID string, identity Identity) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries[connectionID] = identity
}

// Remove deletes the entry for connectionID; no-op if absent
func (r *Registry) Remove(connectionID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.entries, connectionID)
}

// Identity returns the identity snapshot stored for connectionID
func (r *Registry) Identity(connectionID string) (Identity, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	identity, ok := r.entries[connectionID]
	return identity, ok
}

// LookupByUser returns the connection ids currently associated with userID.
// A user may hold multiple simultaneous connections (e.g. multiple tabs).
func (r *Registry) LookupByUser(userID string) []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var connectionIDs []string
	for connectionID, identity := range r.entries {
		if identity.UserID == userID {
			connectionIDs = append(connectionIDs, connectionID)
		}
	}
	return connectionIDs
}

// Len returns the number of currently registered connections
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.entries)
}
