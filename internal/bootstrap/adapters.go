package bootstrap

import (
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/redis/go-redis/v9"
	"github.com/target/content-portal/config"
	"github.com/target/content-portal/internal/adapters/memory"
	redisadapter "github.com/target/content-portal/internal/adapters/redis"
	"github.com/target/content-portal/internal/data"
	"github.com/target/content-portal/internal/ports"
)

// Backends holds the storage adapters selected by configuration.
type Backends struct {
	Directory ports.Directory
	Content   ports.ContentRepository
	ReturnTo  ports.ReturnToSlot
	Analytics ports.AnalyticsStore
}

// BackendDeps contains the connections backends may be built on.
type BackendDeps struct {
	Auth        config.AuthConfig
	DB          *sql.DB
	RedisClient redis.UniversalClient
	// KeyPrefix namespaces Redis keys.
	KeyPrefix string
	Logger    *slog.Logger
}

// ErrBackendConnection is returned when a configured backend lacks its connection.
var ErrBackendConnection = errors.New("backend connection missing")

// BuildBackends creates the directory, content, return-to and analytics adapters.
// Content storage follows the directory backend.
func BuildBackends(deps BackendDeps) (Backends, error) {
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}
	var b Backends

	switch deps.Auth.DirectoryBackend {
	case config.BackendPostgres:
		if deps.DB == nil {
			return Backends{}, fmt.Errorf("%w: directory backend postgres requires a database", ErrBackendConnection)
		}
		b.Directory = data.NewDirectoryRepo(deps.DB)
		b.Content = data.NewContentRepo(deps.DB)
	default:
		logger.Warn("using in-memory user directory; accounts are lost on restart")
		b.Directory = memory.NewDirectory()
		b.Content = memory.NewContentRepo()
	}

	prefix := redisKeyPrefix(deps.KeyPrefix)
	switch deps.Auth.ReturnToBackend {
	case config.BackendRedis:
		if deps.RedisClient == nil {
			return Backends{}, fmt.Errorf("%w: return-to backend redis requires a client", ErrBackendConnection)
		}
		b.ReturnTo = redisadapter.NewReturnToSlotWithPrefix(deps.RedisClient, prefix+redisadapter.DefaultReturnToPrefix)
	default:
		b.ReturnTo = memory.NewReturnToSlot()
	}

	switch deps.Auth.AnalyticsBackend {
	case config.BackendRedis:
		if deps.RedisClient == nil {
			return Backends{}, fmt.Errorf("%w: analytics backend redis requires a client", ErrBackendConnection)
		}
		b.Analytics = redisadapter.NewAnalyticsStoreWithKey(deps.RedisClient, prefix+redisadapter.DefaultAnalyticsKey)
	default:
		b.Analytics = memory.NewAnalytics()
	}

	logger.Info("storage backends selected",
		"directory", deps.Auth.DirectoryBackend,
		"return_to", deps.Auth.ReturnToBackend,
		"analytics", deps.Auth.AnalyticsBackend,
	)
	return b, nil
}

func redisKeyPrefix(prefix string) string {
	prefix = strings.Trim(strings.TrimSpace(prefix), ":")
	if prefix == "" {
		return ""
	}
	return prefix + ":"
}
