package hierarchy

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/alejandroruanova/cbam-emissions/internal/core/domain"
)

// InstallationRepository persists installations
type InstallationRepository interface {
	Create(ctx context.Context, inst *domain.Installation) error
	GetByID(ctx context.Context, id uint) (*domain.Installation, error)
	List(ctx context.Context) ([]domain.Installation, error)
	Update(ctx context.Context, inst *domain.Installation) error
	Delete(ctx context.Context, id uint) error
}

// ProductRepository persists products
type ProductRepository interface {
	Create(ctx context.Context, p *domain.Product) error
	GetByID(ctx context.Context, id uint) (*domain.Product, error)
	ListByInstallation(ctx context.Context, installationID uint) ([]domain.Product, error)
	Update(ctx context.Context, p *domain.Product) error
	Delete(ctx context.Context, id uint) error
}

// ProcessRepository persists processes
type ProcessRepository interface {
	Create(ctx context.Context, p *domain.Process) error
	GetByID(ctx context.Context, id uint) (*domain.Process, error)
	ListByInstallation(ctx context.Context, installationID uint) ([]domain.Process, error)
	Update(ctx context.Context, p *domain.Process) error
	Delete(ctx context.Context, id uint) error
}

// LinkRepository persists product-process links. Upsert must insert or
// update on the (product_id, process_id) pair, never add a second row.
type LinkRepository interface {
	Upsert(ctx context.Context, link *domain.ProductProcessLink) error
	List(ctx context.Context, filter LinkFilter) ([]domain.ProductProcessLink, error)
	Delete(ctx context.Context, productID, processID uint) error
}

// RawInputReader reads ingested rows in ingestion order.
type RawInputReader interface {
	ListAll(ctx context.Context) ([]domain.RawInputRecord, error)
}

// LinkFilter narrows a link listing; zero fields match everything.
type LinkFilter struct {
	ProductID uint
	ProcessID uint
}

// InstallationInput is the writable part of an installation
type InstallationInput struct {
	Name          string `json:"name"`
	ReportingYear int    `json:"reporting_year"`
}

// ProductInput is the writable part of a product. FreeTyped lets the name
// bypass the window's product-name options.
type ProductInput struct {
	InstallationID     uint            `json:"installation_id"`
	Name               string          `json:"name"`
	WindowStart        string          `json:"window_start"`
	WindowEnd          string          `json:"window_end"`
	Category           string          `json:"category"`
	ClassificationCode string          `json:"classification_code"`
	ProducedQuantity   decimal.Decimal `json:"produced_quantity"`
	SoldQuantity       decimal.Decimal `json:"sold_quantity"`
	FreeTyped          bool            `json:"free_typed"`
}

// ProcessInput is the writable part of a process
type ProcessInput struct {
	InstallationID uint       `json:"installation_id"`
	Name           string     `json:"name"`
	PeriodStart    *time.Time `json:"period_start,omitempty"`
	PeriodEnd      *time.Time `json:"period_end,omitempty"`
}

// LinkInput ties a product to a process
type LinkInput struct {
	ProductID         uint            `json:"product_id"`
	ProcessID         uint            `json:"process_id"`
	ConsumptionAmount decimal.Decimal `json:"consumption_amount"`
}
