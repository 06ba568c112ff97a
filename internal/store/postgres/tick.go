package postgres

import (
	"context"
	"hash/fnv"
)

// TickRepository implements repository.TickRepository: the global tick
// counter plus per-map advisory locks that serialize tick processing for a
// given map (spec.md §5: "two overlapping invocations for the same map are
// forbidden").
type TickRepository struct{ *Store }

func NewTickRepository(s *Store) *TickRepository { return &TickRepository{s} }

func (r *TickRepository) CurrentTick(ctx context.Context) (int64, error) {
	var n int64
	err := r.DB.GetContext(ctx, &n, `SELECT current_tick FROM tick_counter WHERE id = 1`)
	return n, err
}

// AdvanceTick moves current_tick forward to targetTick, never backward and
// never past it on a repeated call with the same targetTick: GREATEST makes
// the statement safe to run twice for the same tick instant.
func (r *TickRepository) AdvanceTick(ctx context.Context, targetTick int64) (int64, error) {
	var n int64
	err := r.DB.GetContext(ctx, &n, `
		UPDATE tick_counter SET current_tick = GREATEST(current_tick, $1) WHERE id = 1 RETURNING current_tick
	`, targetTick)
	return n, err
}

// mapLockKey hashes a map ID into the int64 key pg_advisory_lock expects.
func mapLockKey(mapID string) int64 {
	h := fnv.New64a()
	_, _ = h.Write([]byte(mapID))
	return int64(h.Sum64())
}

// LockMap takes a session-level Postgres advisory lock for the duration of
// the tick's work on this map and returns an unlock function. Using a
// session lock (not a transaction-scoped one) lets the caller span several
// short transactions per pass while still serializing the whole map.
func (r *TickRepository) LockMap(ctx context.Context, mapID string) (func(), error) {
	key := mapLockKey(mapID)
	conn, err := r.DB.Connx(ctx)
	if err != nil {
		return nil, err
	}
	if _, err := conn.ExecContext(ctx, `SELECT pg_advisory_lock($1)`, key); err != nil {
		conn.Close()
		return nil, err
	}
	unlock := func() {
		_, _ = conn.ExecContext(ctx, `SELECT pg_advisory_unlock($1)`, key)
		conn.Close()
	}
	return unlock, nil
}
