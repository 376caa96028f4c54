package cart

import (
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

// Sessions hands out a Store bound to one session's durable mirror. Stores
// are cheap; the HTTP layer builds one per request.
type Sessions struct {
	client *redis.Client
	log    *logrus.Logger
}

func NewSessions(client *redis.Client, log *logrus.Logger) *Sessions {
	return &Sessions{client: client, log: log}
}

func (s *Sessions) ForSession(id string) *Store {
	return NewStore(NewRedisStorage(s.client, id, s.log))
}
