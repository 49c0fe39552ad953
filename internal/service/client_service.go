package service

import (
	"context"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/embire2/DayResellers-sub000/internal/models"
	"github.com/embire2/DayResellers-sub000/internal/repository"
	"github.com/embire2/DayResellers-sub000/internal/utils"
)

// ClientService manages the end customers of resellers.
type ClientService struct {
	clientRepo *repository.ClientRepository
}

// NewClientService constructs a ClientService.
func NewClientService(clientRepo *repository.ClientRepository) *ClientService {
	return &ClientService{clientRepo: clientRepo}
}

// ClientRequest is the payload for creating or updating a client. Blank
// fields are left unchanged on update.
type ClientRequest struct {
	ResellerID int     `json:"resellerId"`
	Name       string  `json:"name"`
	Email      *string `json:"email"`
	Phone      *string `json:"phone"`
}

// Create adds a client owned by the actor, or by ResellerID when an admin
// creates it.
func (s *ClientService) Create(ctx context.Context, actor Actor, req *ClientRequest) (*models.Client, error) {
	owner := actor.UserID
	if actor.IsAdmin() {
		if req.ResellerID <= 0 {
			return nil, utils.ValidationError("RESELLER_REQUIRED", "resellerId is required when an admin creates a client")
		}
		owner = req.ResellerID
	}

	client := &models.Client{
		ResellerID: owner,
		Name:       strings.TrimSpace(req.Name),
		Email:      trimmed(req.Email),
		Phone:      trimmed(req.Phone),
	}
	if err := s.clientRepo.Create(ctx, client); err != nil {
		return nil, storeError("create_client", "CLIENT_NOT_FOUND", err)
	}
	log.Info().Int("client_id", client.ID).Int("reseller_id", owner).Msg("Client created")
	return client, nil
}

// Get returns a client visible to the actor.
func (s *ClientService) Get(ctx context.Context, actor Actor, id int) (*models.Client, error) {
	client, err := s.clientRepo.GetByID(ctx, id)
	if err != nil {
		return nil, storeError("load_client", "CLIENT_NOT_FOUND", err)
	}
	if !actor.canAccess(client.ResellerID) {
		return nil, utils.NotFoundError("CLIENT_NOT_FOUND", "client not found")
	}
	return client, nil
}

// List returns every client for admins and the actor's own otherwise.
func (s *ClientService) List(ctx context.Context, actor Actor) ([]models.Client, error) {
	var (
		clients []models.Client
		err     error
	)
	if actor.IsAdmin() {
		clients, err = s.clientRepo.List(ctx)
	} else {
		clients, err = s.clientRepo.ListByReseller(ctx, actor.UserID)
	}
	if err != nil {
		return nil, utils.PersistenceError("list_clients", err)
	}
	return clients, nil
}

// Update changes the contact details of a client.
func (s *ClientService) Update(ctx context.Context, actor Actor, id int, req *ClientRequest) (*models.Client, error) {
	client, err := s.Get(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	if name := strings.TrimSpace(req.Name); name != "" {
		client.Name = name
	}
	if req.Email != nil {
		client.Email = trimmed(req.Email)
	}
	if req.Phone != nil {
		client.Phone = trimmed(req.Phone)
	}
	if err := s.clientRepo.Update(ctx, client); err != nil {
		return nil, storeError("update_client", "CLIENT_NOT_FOUND", err)
	}
	return client, nil
}

// Delete removes a client without orders.
func (s *ClientService) Delete(ctx context.Context, actor Actor, id int) error {
	if _, err := s.Get(ctx, actor, id); err != nil {
		return err
	}
	if err := s.clientRepo.Delete(ctx, id); err != nil {
		return storeError("delete_client", "CLIENT_NOT_FOUND", err)
	}
	log.Info().Int("client_id", id).Int("actor_id", actor.UserID).Msg("Client deleted")
	return nil
}
