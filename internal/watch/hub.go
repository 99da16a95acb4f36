// Package watch implements the live change feed: every successful mutation
// publishes the owner's id on a Redis channel, and subscribers receive a
// fresh full snapshot of the owner's members and transactions each time.
// The stream carries whole snapshots, never deltas, so delivery order does
// not matter: whatever arrives, the receiver recomputes from current state.
// A stream is not restartable; resubscribe to start receiving again.
package watch

import (
	"context"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"lendbook/internal/auth"
	"lendbook/internal/domain"
	"lendbook/internal/repository"
)

const channelPrefix = "ledger:changed:"

// Snapshot is the full current state of one owner's ledger.
type Snapshot struct {
	Members      []*domain.Member      `json:"members"`
	Transactions []*domain.Transaction `json:"transactions"`
	At           time.Time             `json:"at"`
}

// Notifier fans change notifications out between sessions, possibly across
// processes.
type Notifier interface {
	// Publish announces that the user's ledger changed
	Publish(ctx context.Context, userID string) error

	// Subscribe returns a channel that ticks on every change announcement
	// for the user, and a cleanup function
	Subscribe(ctx context.Context, userID string) (<-chan struct{}, func(), error)
}

// RedisNotifier implements Notifier on Redis pub/sub.
type RedisNotifier struct {
	client *redis.Client
}

func NewRedisNotifier(client *redis.Client) *RedisNotifier {
	return &RedisNotifier{client: client}
}

func (n *RedisNotifier) Publish(ctx context.Context, userID string) error {
	return n.client.Publish(ctx, channelPrefix+userID, "changed").Err()
}

func (n *RedisNotifier) Subscribe(ctx context.Context, userID string) (<-chan struct{}, func(), error) {
	pubsub := n.client.Subscribe(ctx, channelPrefix+userID)
	if _, err := pubsub.Receive(ctx); err != nil {
		pubsub.Close()
		return nil, nil, err
	}

	ticks := make(chan struct{})
	go func() {
		defer close(ticks)
		for range pubsub.Channel() {
			select {
			case ticks <- struct{}{}:
			case <-ctx.Done():
				return
			}
		}
	}()

	return ticks, func() { pubsub.Close() }, nil
}

// Hub turns change notifications into full-snapshot streams.
type Hub struct {
	members      repository.MemberRepository
	transactions repository.TransactionRepository
	notifier     Notifier
}

func NewHub(members repository.MemberRepository, transactions repository.TransactionRepository, notifier Notifier) *Hub {
	return &Hub{
		members:      members,
		transactions: transactions,
		notifier:     notifier,
	}
}

// Subscribe streams full snapshots of the session owner's ledger: one
// immediately, then one after every change notification. The channel is
// closed when ctx is cancelled. Slow receivers only ever lag by one
// snapshot; intermediate states are dropped in favor of the latest.
func (h *Hub) Subscribe(ctx context.Context, sess auth.Session) (<-chan Snapshot, error) {
	ticks, cleanup, err := h.notifier.Subscribe(ctx, sess.UserID.String())
	if err != nil {
		return nil, err
	}

	out := make(chan Snapshot, 1)
	go func() {
		defer close(out)
		defer cleanup()

		h.push(ctx, sess, out)
		for {
			select {
			case <-ctx.Done():
				return
			case _, ok := <-ticks:
				if !ok {
					return
				}
				h.push(ctx, sess, out)
			}
		}
	}()

	return out, nil
}

func (h *Hub) push(ctx context.Context, sess auth.Session, out chan Snapshot) {
	snap, err := h.snapshot(ctx, sess)
	if err != nil {
		slog.ErrorContext(ctx, "snapshot query failed", "user_id", sess.UserID, "error", err)
		return
	}

	// Latest wins: evict a stale undelivered snapshot rather than block.
	select {
	case out <- snap:
	default:
		select {
		case <-out:
		default:
		}
		select {
		case out <- snap:
		default:
		}
	}
}

func (h *Hub) snapshot(ctx context.Context, sess auth.Session) (Snapshot, error) {
	members, err := h.members.ListByOwner(ctx, sess.UserID)
	if err != nil {
		return Snapshot{}, err
	}

	transactions, err := h.transactions.ListByOwner(ctx, sess.UserID)
	if err != nil {
		return Snapshot{}, err
	}

	return Snapshot{
		Members:      members,
		Transactions: transactions,
		At:           time.Now().UTC(),
	}, nil
}
