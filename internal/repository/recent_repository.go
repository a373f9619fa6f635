package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/spec-kit/haf/internal/domain"
)

// RecentKey is the Redis list holding the newest entries first.
const RecentKey = "haf:recent"

// RecentRepository keeps a bounded list of the latest entries in Redis.
type RecentRepository interface {
	Push(ctx context.Context, entry domain.LogEntry) error
	List(ctx context.Context, limit int) ([]domain.LogEntry, error)
}

type recentEntry struct {
	ID              string    `json:"id"`
	Kind            string    `json:"kind"`
	TicketID        string    `json:"ticket_id"`
	Timestamp       time.Time `json:"timestamp"`
	UserID          string    `json:"user_id"`
	Contact         string    `json:"contact"`
	Hostname        string    `json:"hostname"`
	CallType        string    `json:"call_type"`
	Solution        int       `json:"solution"`
	Variable        string    `json:"variable"`
	Team            string    `json:"team"`
	Attachments     []string  `json:"attachments,omitempty"`
	HostnameApplies bool      `json:"hostname_applies"`
}

type recentRepository struct {
	client *redis.Client
	max    int
}

// NewRecentRepository returns a Redis-backed list capped at max entries.
func NewRecentRepository(client *redis.Client, max int) RecentRepository {
	if max <= 0 {
		max = 50
	}
	return &recentRepository{client: client, max: max}
}

func (r *recentRepository) Push(ctx context.Context, entry domain.LogEntry) error {
	payload, err := json.Marshal(recentEntry{
		ID:              entry.ID,
		Kind:            string(entry.Kind),
		TicketID:        entry.TicketID,
		Timestamp:       entry.Timestamp,
		UserID:          entry.Call.UserID,
		Contact:         entry.Call.Contact,
		Hostname:        entry.Call.Hostname,
		CallType:        entry.Call.CallType,
		Solution:        entry.Call.Solution,
		Variable:        entry.Call.Variable,
		Team:            entry.Team,
		Attachments:     entry.Attachments,
		HostnameApplies: entry.HostnameApplies,
	})
	if err != nil {
		return fmt.Errorf("encode recent entry: %w", err)
	}

	pipe := r.client.TxPipeline()
	pipe.LPush(ctx, RecentKey, payload)
	pipe.LTrim(ctx, RecentKey, 0, int64(r.max-1))
	_, err = pipe.Exec(ctx)
	return err
}

func (r *recentRepository) List(ctx context.Context, limit int) ([]domain.LogEntry, error) {
	if limit <= 0 || limit > r.max {
		limit = r.max
	}
	raw, err := r.client.LRange(ctx, RecentKey, 0, int64(limit-1)).Result()
	if err != nil {
		return nil, err
	}

	entries := make([]domain.LogEntry, 0, len(raw))
	for _, item := range raw {
		var rec recentEntry
		if err := json.Unmarshal([]byte(item), &rec); err != nil {
			return nil, fmt.Errorf("decode recent entry: %w", err)
		}
		entries = append(entries, domain.LogEntry{
			ID:        rec.ID,
			Kind:      domain.ParseLogKind(rec.Kind),
			TicketID:  rec.TicketID,
			Timestamp: rec.Timestamp,
			Call: domain.CallRecord{
				UserID:   rec.UserID,
				Contact:  rec.Contact,
				Hostname: rec.Hostname,
				CallType: rec.CallType,
				Solution: rec.Solution,
				Variable: rec.Variable,
			},
			Team:            rec.Team,
			Attachments:     rec.Attachments,
			HostnameApplies: rec.HostnameApplies,
		})
	}
	return entries, nil
}
