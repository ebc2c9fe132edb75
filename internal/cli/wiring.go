package cli

import (
	"context"
	"time"

	"classroom-quiz-service/internal/app"
	"classroom-quiz-service/internal/config"
	"classroom-quiz-service/internal/domain"
	"classroom-quiz-service/internal/infra/memory"
	"classroom-quiz-service/internal/infra/postgres"
	infraredis "classroom-quiz-service/internal/infra/redis"
	"classroom-quiz-service/internal/schedule"
	transport "classroom-quiz-service/internal/transport/http"
	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

// backend is every repository the use cases need, satisfied by both stores.
type backend interface {
	app.ProfileRepository
	app.QuizStore
	app.AttemptRepository
	app.ActivityRepository
	app.PingRepository
	app.ClassRoster
	LoadQuiz(ctx context.Context, quizID string) (domain.Quiz, error)
}

type wired struct {
	services transport.Services
	close    func()
}

// wire picks Postgres when configured (memory with demo data otherwise) and
// fronts it with Redis caches when an address is set.
func wire(ctx context.Context, cfg config.Config, log logrus.FieldLogger) (*wired, error) {
	clock := schedule.RealClock()
	var closers []func()

	var store backend
	if cfg.Postgres.URL != "" {
		pool, err := pgxpool.Connect(ctx, cfg.Postgres.URL)
		if err != nil {
			return nil, err
		}
		closers = append(closers, pool.Close)
		store = postgres.NewStore(pool)
		log.Info("using postgres store")
	} else {
		mem := memory.NewStore()
		seedDemo(mem, clock.Now())
		store = mem
		log.Warn("postgres url not configured; using in-memory store with demo data")
	}

	var redisClient *redis.Client
	if cfg.Redis.Addr != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		closers = append(closers, func() { _ = redisClient.Close() })
	}

	quizTTL := config.TTLDuration(cfg.Quiz.TTL, 10*time.Minute)
	var quizRepo app.QuizRepository
	var pingRepo app.PingRepository = store
	if redisClient != nil {
		quizRepo = infraredis.NewQuizRepository(redisClient, store, quizTTL)
		pingRepo = infraredis.NewPingRepository(store, redisClient, clock, log)
	} else {
		quizRepo = memory.NewQuizRepository(store, quizTTL)
	}

	topK := cfg.Rankings.TopK
	if topK <= 0 {
		topK = 10
	}
	weights := app.DefaultLeaderboardWeights()
	if cfg.Leaderboard.LessonPoints > 0 {
		weights.LessonPoints = cfg.Leaderboard.LessonPoints
	}
	if cfg.Leaderboard.ParticipationDivisor > 0 {
		weights.ParticipationDivisor = cfg.Leaderboard.ParticipationDivisor
	}
	defaults := app.DefaultPingPolicy()
	policy := app.PingPolicy{
		Window:        config.TTLDuration(cfg.Ping.Window, defaults.Window),
		Staleness:     config.TTLDuration(cfg.Ping.Staleness, defaults.Staleness),
		PollInterval:  config.TTLDuration(cfg.Ping.PollInterval, defaults.PollInterval),
		SweepInterval: config.TTLDuration(cfg.Ping.SweepInterval, defaults.SweepInterval),
	}

	directory := app.NewDirectory(store)
	return &wired{
		services: transport.Services{
			Directory:   directory,
			Authoring:   app.NewAuthoring(store, quizRepo, clock, log),
			Attempts:    app.NewAttempts(quizRepo, store, clock, log),
			Rankings:    app.NewRankings(store, directory, topK),
			Leaderboard: app.NewLeaderboard(directory, store, weights, clock, log),
			Pings:       app.NewPings(pingRepo, store, policy, clock, log),
		},
		close: func() {
			for i := len(closers) - 1; i >= 0; i-- {
				closers[i]()
			}
		},
	}, nil
}
