package redis

import (
	"context"
	"encoding/json"
	"time"

	"classroom-quiz-service/internal/app"
	"classroom-quiz-service/internal/domain"
	"classroom-quiz-service/internal/schedule"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

// marshalPing is swapped in tests.
var marshalPing = func(p domain.Ping) ([]byte, error) { return json.Marshal(p) }

// PingRepository fronts a durable ping store with a per-class "latest ping" key so
// the 5s polling of every joined student does not hit the database.
//   - The key lives only while the ping is open: SET live:{classID}:ping {json} EX remaining
//   - Responses and finalization always go to the durable store.
type PingRepository struct {
	app.PingRepository
	client *redis.Client
	clock  schedule.Clock
	log    logrus.FieldLogger
}

func NewPingRepository(base app.PingRepository, client *redis.Client, clock schedule.Clock, log logrus.FieldLogger) *PingRepository {
	return &PingRepository{PingRepository: base, client: client, clock: clock, log: log}
}

func (r *PingRepository) CreatePing(ctx context.Context, ping domain.Ping) error {
	if err := r.PingRepository.CreatePing(ctx, ping); err != nil {
		return err
	}
	ttl := ping.ExpiresAt.Sub(r.clock.Now())
	if ttl <= 0 {
		return nil
	}
	raw, err := marshalPing(ping)
	if err != nil {
		r.log.WithError(err).WithField("ping_id", ping.ID).Warn("encode latest ping failed")
		return nil
	}
	if err := r.client.Set(ctx, r.key(ping.LiveClassID), raw, ttl).Err(); err != nil {
		r.log.WithError(err).WithField("ping_id", ping.ID).Warn("cache latest ping failed")
	}
	return nil
}

func (r *PingRepository) LatestPing(ctx context.Context, liveClassID string) (domain.Ping, error) {
	raw, err := r.client.Get(ctx, r.key(liveClassID)).Bytes()
	if err == nil {
		var ping domain.Ping
		if err := json.Unmarshal(raw, &ping); err == nil {
			return ping, nil
		}
	} else if !IsMiss(err) {
		r.log.WithError(err).WithField("live_class_id", liveClassID).Warn("read latest ping cache failed")
	}
	return r.PingRepository.LatestPing(ctx, liveClassID)
}

func (r *PingRepository) MarkFinalized(ctx context.Context, pingID string, at time.Time) error {
	if err := r.PingRepository.MarkFinalized(ctx, pingID, at); err != nil {
		return err
	}
	ping, err := r.PingRepository.GetPing(ctx, pingID)
	if err != nil {
		return nil
	}
	_ = r.client.Del(ctx, r.key(ping.LiveClassID)).Err()
	return nil
}

func (r *PingRepository) key(liveClassID string) string {
	return "live:" + liveClassID + ":ping"
}
