package service

import (
	"context"
	"sync"

	"golang.org/x/sync/errgroup"

	"go-media-cms/internal/access"
	"go-media-cms/internal/model"
	"go-media-cms/internal/repository"
)

// Counter is the slice of a content repository the dashboard needs.
type Counter interface {
	Count(ctx context.Context, d access.Decision) (int64, error)
	SumViews(ctx context.Context) (int64, error)
}

type KindStats struct {
	Published int64 `json:"published"`
	Drafts    int64 `json:"drafts"`
	Views     int64 `json:"views"`
}

type DashboardStats struct {
	Users       int64                    `json:"users"`
	Collections map[model.Kind]KindStats `json:"collections"`
}

type DashboardService interface {
	GetDashboardStats(ctx context.Context, requester *model.User) (*DashboardStats, error)
}

type dashboardService struct {
	userRepo repository.UserRepository
	counters map[model.Kind]Counter
}

func NewDashboardService(userRepo repository.UserRepository, counters map[model.Kind]Counter) DashboardService {
	return &dashboardService{userRepo: userRepo, counters: counters}
}

func statusIs(st model.Status) access.Decision {
	return access.Filtered(access.Where{Field: access.FieldStatus, Value: string(st)})
}

func (s *dashboardService) GetDashboardStats(ctx context.Context, requester *model.User) (*DashboardStats, error) {
	if !access.AdminPanel(requester).Permitted() {
		return nil, ErrForbidden
	}

	stats := &DashboardStats{Collections: make(map[model.Kind]KindStats, len(s.counters))}
	var mu sync.Mutex
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		_, total, err := s.userRepo.FindAll(gctx, repository.Page{Limit: 1})
		mu.Lock()
		stats.Users = total
		mu.Unlock()
		return err
	})

	for kind, c := range s.counters {
		kind, c := kind, c
		g.Go(func() error {
			var ks KindStats
			var err error
			if ks.Published, err = c.Count(gctx, statusIs(model.StatusPublished)); err != nil {
				return err
			}
			if ks.Drafts, err = c.Count(gctx, statusIs(model.StatusDraft)); err != nil {
				return err
			}
			if ks.Views, err = c.SumViews(gctx); err != nil {
				return err
			}
			mu.Lock()
			stats.Collections[kind] = ks
			mu.Unlock()
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return stats, nil
}
