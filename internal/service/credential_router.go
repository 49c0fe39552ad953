package service

import (
	"context"
	"fmt"

	"github.com/embire2/DayResellers-sub000/internal/models"
	"github.com/embire2/DayResellers-sub000/pkg/broadband"
)

// EndpointCaller performs one Broadband.is API call.
type EndpointCaller interface {
	Call(ctx context.Context, method, path string, params map[string]string) (*broadband.Response, error)
	Configured() bool
}

// CredentialRouter selects the API client whose credentials belong to a
// master category.
type CredentialRouter struct {
	clients map[models.MasterCategory]EndpointCaller
}

// NewCredentialRouter creates an empty CredentialRouter.
func NewCredentialRouter() *CredentialRouter {
	return &CredentialRouter{clients: make(map[models.MasterCategory]EndpointCaller)}
}

// Register adds the client for a master category.
func (r *CredentialRouter) Register(category models.MasterCategory, client EndpointCaller) {
	r.clients[category] = client
}

// For returns the configured client for category.
func (r *CredentialRouter) For(category models.MasterCategory) (EndpointCaller, error) {
	client, ok := r.clients[category]
	if !ok || !client.Configured() {
		return nil, fmt.Errorf("no credentials configured for %q", category)
	}
	return client, nil
}

// Categories lists the master categories with configured credentials.
func (r *CredentialRouter) Categories() []models.MasterCategory {
	out := make([]models.MasterCategory, 0, len(r.clients))
	for cat, client := range r.clients {
		if client.Configured() {
			out = append(out, cat)
		}
	}
	return out
}
