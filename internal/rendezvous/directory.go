// If you are AI: RendezVous is the peer-id → addresses directory used for
// NAT-traversal introduction. All three operations are serialized by a
// single mutex; introduction is rare relative to media I/O so contention
// is negligible.

package rendezvous

import (
	"sync"

	"driftcast/internal/socket"
)

// Peer is one registered rendezvous record.
type Peer struct {
	ID            string
	Address       socket.Address
	ServerAddress socket.Address
	RedirectSet   []socket.Address
	Opaque        []byte
}

// Directory maps peer-id to Peer, plus an address index for reverse lookup.
type Directory struct {
	mu      sync.Mutex
	byID    map[string]*Peer
	byAddr  map[socket.Address]*Peer
	store   Store // optional distributed backing store
}

// Store is an optional distributed backing store (e.g. Redis) that mirrors
// Directory state across server instances. A nil Store means single-node
// operation.
type Store interface {
	Set(peer *Peer) error
	Get(id string) (*Peer, bool, error)
	Delete(id string) error
}

func NewDirectory(store Store) *Directory {
	return &Directory{
		byID:   make(map[string]*Peer),
		byAddr: make(map[socket.Address]*Peer),
		store:  store,
	}
}

// Set inserts or updates peerID's record. Duplicate peer-ids replace prior
// entries in both indices.
func (d *Directory) Set(peerID string, addr, serverAddr socket.Address, redirectSet []socket.Address, opaque []byte) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if old, ok := d.byID[peerID]; ok {
		delete(d.byAddr, old.Address)
	}
	p := &Peer{
		ID:            peerID,
		Address:       addr,
		ServerAddress: serverAddr,
		RedirectSet:   redirectSet,
		Opaque:        opaque,
	}
	d.byID[peerID] = p
	d.byAddr[addr] = p

	if d.store != nil {
		_ = d.store.Set(p)
	}
}

// Erase removes peerID from both indices.
func (d *Directory) Erase(peerID string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if p, ok := d.byID[peerID]; ok {
		delete(d.byAddr, p.Address)
		delete(d.byID, peerID)
	}
	if d.store != nil {
		_ = d.store.Delete(peerID)
	}
}

// Meet looks up bPeerID; if found, fills bAddr and bAddrs from B's record
// and returns B's opaque payload for A to hand to its protocol. aAddr and
// aAddrsIn are accepted but not persisted against B's record; recording A's
// contact opportunistically is a MAY, not currently exercised.
func (d *Directory) Meet(aAddr socket.Address, bPeerID string, aAddrsIn []socket.Address) (opaqueB []byte, bAddr socket.Address, bAddrs []socket.Address, found bool) {
	d.mu.Lock()
	defer d.mu.Unlock()

	b, ok := d.byID[bPeerID]
	if !ok {
		if d.store != nil {
			if stored, sok, _ := d.store.Get(bPeerID); sok {
				b = stored
				ok = true
			}
		}
		if !ok {
			return nil, socket.Address{}, nil, false
		}
	}

	bAddr = b.Address
	bAddrs = append([]socket.Address{b.ServerAddress}, b.RedirectSet...)
	opaqueB = b.Opaque

	// Unused until A's contact is also recorded against B (see doc comment).
	_ = aAddr
	_ = aAddrsIn
	return opaqueB, bAddr, bAddrs, true
}

func (d *Directory) Lookup(peerID string) (*Peer, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	p, ok := d.byID[peerID]
	return p, ok
}

// List returns a snapshot of every registered peer-id, for the read-only
// control surface.
func (d *Directory) List() []string {
	d.mu.Lock()
	defer d.mu.Unlock()
	ids := make([]string, 0, len(d.byID))
	for id := range d.byID {
		ids = append(ids, id)
	}
	return ids
}
