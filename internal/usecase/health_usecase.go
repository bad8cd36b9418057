package usecase

import (
	"context"
	"time"

	"contact-manager-backend/pkg/apperror"
)

// Pinger is anything whose reachability the health check reports.
type Pinger interface {
	Ping(ctx context.Context) error
}

type HealthUsecase interface {
	Check(ctx context.Context) (map[string]string, error)
}

type healthUsecase struct {
	store Pinger
}

func NewHealthUsecase(store Pinger) HealthUsecase {
	return &healthUsecase{store: store}
}

func (u *healthUsecase) Check(ctx context.Context) (map[string]string, error) {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	if err := u.store.Ping(ctx); err != nil {
		return map[string]string{"status": "degraded", "store": "unreachable"},
			apperror.Unavailable("Contact store unavailable", err)
	}
	return map[string]string{
		"status": "ok",
		"store":  "ok",
	}, nil
}
