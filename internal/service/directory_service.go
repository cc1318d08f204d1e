package service

import (
	"context"

	"github.com/spec-kit/agent-console/internal/cache"
	"github.com/spec-kit/agent-console/internal/domain"
	"github.com/spec-kit/agent-console/internal/gateway"
)

// DirectoryService serves the read-only agent directory used for assignee
// selection, caching it in redis to spare the upstream on every dropdown
// render.
type DirectoryService struct {
	api   gateway.TicketAPI
	cache *cache.DirectoryCache
}

// NewDirectoryService constructs the service.
func NewDirectoryService(api gateway.TicketAPI, directoryCache *cache.DirectoryCache) *DirectoryService {
	return &DirectoryService{api: api, cache: directoryCache}
}

// ListAgents returns the directory, read-through cached.
func (s *DirectoryService) ListAgents(ctx context.Context) ([]domain.BaseUser, error) {
	if users, ok := s.cache.Get(ctx); ok {
		return users, nil
	}
	users, err := s.api.ListUsers(ctx)
	if err != nil {
		return nil, fetchErrorFrom(err)
	}
	s.cache.Set(ctx, users)
	return users, nil
}

// FindAgent looks up one directory entry by id, or nil when absent.
func (s *DirectoryService) FindAgent(ctx context.Context, userID int64) (*domain.BaseUser, error) {
	users, err := s.ListAgents(ctx)
	if err != nil {
		return nil, err
	}
	for i := range users {
		if users[i].ID == userID {
			return &users[i], nil
		}
	}
	return nil, nil
}
