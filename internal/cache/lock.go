package cache

import (
	"time"

	"github.com/google/uuid"
	"github.com/ibuc/dracmas-service/pkg/redis"
)

// ClassLock is a per-class advisory lock backed by redis SET NX. It keeps
// two redemptions of the same class from interleaving across instances;
// the database transaction remains the correctness backstop. The TTL bounds
// how long a crashed holder can block the class.
type ClassLock struct {
	r   redis.RedisAdapter
	ttl time.Duration
}

func NewClassLock(r redis.RedisAdapter, ttl time.Duration) *ClassLock {
	return &ClassLock{
		r:   r,
		ttl: ttl,
	}
}

// Acquire tries to take the lock for classID. When ok, the returned
// release func must be called once the redemption finishes.
func (l *ClassLock) Acquire(classID uuid.UUID) (release func(), ok bool, err error) {
	key := "resgate:lock:" + classID.String()

	ok, err = l.r.SetNX(key, []byte("1"), l.ttl)
	if err != nil || !ok {
		return nil, false, err
	}

	return func() {
		_ = l.r.Del(key)
	}, true, nil
}
