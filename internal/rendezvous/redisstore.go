// If you are AI: RedisStore mirrors the rendezvous directory across
// server instances, for deployments that run more than one ingest node
// behind a shared introduction service.

package rendezvous

import (
	"context"
	"encoding/json"
	"net/netip"
	"time"

	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"

	"driftcast/internal/socket"
)

const defaultTTL = 5 * time.Minute

// RedisStore implements Store on top of a Redis client. Records expire
// after a TTL so a crashed node's peers don't linger forever.
type RedisStore struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

func NewRedisStore(client *redis.Client, prefix string) *RedisStore {
	if prefix == "" {
		prefix = "rendezvous:"
	}
	return &RedisStore{client: client, prefix: prefix, ttl: defaultTTL}
}

type peerRecord struct {
	ID            string
	Addr          string
	ServerAddr    string
	RedirectSet   []string
	Opaque        []byte
}

func (s *RedisStore) key(id string) string { return s.prefix + id }

func (s *RedisStore) Set(p *Peer) error {
	rec := peerRecord{
		ID:         p.ID,
		Addr:       p.Address.String(),
		ServerAddr: p.ServerAddress.String(),
		Opaque:     p.Opaque,
	}
	for _, a := range p.RedirectSet {
		rec.RedirectSet = append(rec.RedirectSet, a.String())
	}
	data, err := json.Marshal(rec)
	if err != nil {
		return errors.Wrap(err, "marshal peer record")
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	return s.client.Set(ctx, s.key(p.ID), data, s.ttl).Err()
}

func (s *RedisStore) Get(id string) (*Peer, bool, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	data, err := s.client.Get(ctx, s.key(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, errors.Wrap(err, "get peer record")
	}
	var rec peerRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, false, errors.Wrap(err, "unmarshal peer record")
	}
	addrPort, err := parseAddr(rec.Addr)
	if err != nil {
		return nil, false, err
	}
	serverAddr, err := parseAddr(rec.ServerAddr)
	if err != nil {
		return nil, false, err
	}
	var redirect []socket.Address
	for _, a := range rec.RedirectSet {
		ap, err := parseAddr(a)
		if err != nil {
			continue
		}
		redirect = append(redirect, ap)
	}
	return &Peer{
		ID:            rec.ID,
		Address:       addrPort,
		ServerAddress: serverAddr,
		RedirectSet:   redirect,
		Opaque:        rec.Opaque,
	}, true, nil
}

func (s *RedisStore) Delete(id string) error {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	return s.client.Del(ctx, s.key(id)).Err()
}

func parseAddr(s string) (socket.Address, error) {
	ap, err := netip.ParseAddrPort(s)
	if err != nil {
		return socket.Address{}, errors.Wrapf(err, "parse address %q", s)
	}
	return socket.AddressFromAddrPort(ap), nil
}
