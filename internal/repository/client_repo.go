package repository

import (
    "context"

    "github.com/jmoiron/sqlx"

    "github.com/embire2/DayResellers-sub000/internal/models"
)

const clientColumns = `id, reseller_id, name, email, phone, created_at, updated_at`

// ClientRepository provides data access methods for the clients table.
type ClientRepository struct {
    db *sqlx.DB
}

// NewClientRepository creates a new ClientRepository.
func NewClientRepository(db *sqlx.DB) *ClientRepository {
    return &ClientRepository{db: db}
}

// GetByID finds a client by numeric id.
func (r *ClientRepository) GetByID(ctx context.Context, id int) (*models.Client, error) {
    var c models.Client
    if err := r.db.GetContext(ctx, &c, `SELECT `+clientColumns+` FROM clients WHERE id = $1`, id); err != nil {
        return nil, err
    }
    return &c, nil
}

// Create creates a new client.
func (r *ClientRepository) Create(ctx context.Context, client *models.Client) error {
    if err := models.Validate(client); err != nil {
        return err
    }
    query := `INSERT INTO clients (reseller_id, name, email, phone)
              VALUES ($1, $2, $3, $4)
              RETURNING id, created_at, updated_at`

    return r.db.QueryRowxContext(ctx, query,
        client.ResellerID,
        client.Name,
        client.Email,
        client.Phone,
    ).Scan(&client.ID, &client.CreatedAt, &client.UpdatedAt)
}

// Update updates an existing client.
func (r *ClientRepository) Update(ctx context.Context, client *models.Client) error {
    if err := models.Validate(client); err != nil {
        return err
    }
    query := `UPDATE clients
              SET name = $1, email = $2, phone = $3, updated_at = NOW()
              WHERE id = $4
              RETURNING updated_at`

    return r.db.QueryRowxContext(ctx, query,
        client.Name,
        client.Email,
        client.Phone,
        client.ID,
    ).Scan(&client.UpdatedAt)
}

// Delete removes a client.
func (r *ClientRepository) Delete(ctx context.Context, id int) error {
    return execAffectingOne(ctx, r.db, `DELETE FROM clients WHERE id = $1`, id)
}

// ListByReseller retrieves the clients of one reseller.
func (r *ClientRepository) ListByReseller(ctx context.Context, resellerID int) ([]models.Client, error) {
    clients := []models.Client{}
    err := r.db.SelectContext(ctx, &clients,
        `SELECT `+clientColumns+` FROM clients WHERE reseller_id = $1 ORDER BY name`, resellerID)
    return clients, err
}

// List retrieves all clients.
func (r *ClientRepository) List(ctx context.Context) ([]models.Client, error) {
    clients := []models.Client{}
    err := r.db.SelectContext(ctx, &clients, `SELECT `+clientColumns+` FROM clients ORDER BY name`)
    return clients, err
}
