// Package hierarchy manages installations, their products and processes,
// and the product-process links between them.
//
// Deleting a product or process removes only that row. Links and
// calculation entries that reference it are left in place.
package hierarchy

import (
	"context"
	"log/slog"
	"strings"

	"github.com/alejandroruanova/cbam-emissions/internal/core/domain"
	"github.com/alejandroruanova/cbam-emissions/internal/core/services/filter"
	apperrors "github.com/alejandroruanova/cbam-emissions/internal/pkg/errors"
)

const storeName = "hierarchy store"

// Manager implements hierarchy CRUD on top of injected repositories
type Manager struct {
	installations InstallationRepository
	products      ProductRepository
	processes     ProcessRepository
	links         LinkRepository
	rawInputs     RawInputReader
	filter        *filter.Service
	logger        *slog.Logger
}

// Repositories bundles the manager's collaborators
type Repositories struct {
	Installations InstallationRepository
	Products      ProductRepository
	Processes     ProcessRepository
	Links         LinkRepository
	RawInputs     RawInputReader
}

// NewManager creates a new hierarchy manager
func NewManager(repos Repositories, logger *slog.Logger) *Manager {
	if logger == nil {
		logger = slog.Default()
	}

	return &Manager{
		installations: repos.Installations,
		products:      repos.Products,
		processes:     repos.Processes,
		links:         repos.Links,
		rawInputs:     repos.RawInputs,
		filter:        filter.NewService(logger),
		logger:        logger,
	}
}

// unavailable passes AppErrors through and wraps anything else as a
// collaborator failure.
func unavailable(err error) error {
	if err == nil || apperrors.IsAppError(err) {
		return err
	}
	return apperrors.CollaboratorUnavailable(err, storeName)
}

// Installations

func (m *Manager) CreateInstallation(ctx context.Context, in InstallationInput) (*domain.Installation, error) {
	inst := &domain.Installation{}
	if err := applyInstallation(inst, in); err != nil {
		return nil, err
	}
	if err := m.installations.Create(ctx, inst); err != nil {
		return nil, unavailable(err)
	}

	m.logger.Info("installation created",
		slog.Uint64("installation_id", uint64(inst.ID)),
		slog.Int("reporting_year", inst.ReportingYear))
	return inst, nil
}

func (m *Manager) GetInstallation(ctx context.Context, id uint) (*domain.Installation, error) {
	inst, err := m.installations.GetByID(ctx, id)
	return inst, unavailable(err)
}

func (m *Manager) ListInstallations(ctx context.Context) ([]domain.Installation, error) {
	list, err := m.installations.List(ctx)
	return list, unavailable(err)
}

func (m *Manager) UpdateInstallation(ctx context.Context, id uint, in InstallationInput) (*domain.Installation, error) {
	inst, err := m.installations.GetByID(ctx, id)
	if err != nil {
		return nil, unavailable(err)
	}
	if err := applyInstallation(inst, in); err != nil {
		return nil, err
	}
	if err := m.installations.Update(ctx, inst); err != nil {
		return nil, unavailable(err)
	}
	return inst, nil
}

func (m *Manager) DeleteInstallation(ctx context.Context, id uint) error {
	return unavailable(m.installations.Delete(ctx, id))
}

func applyInstallation(inst *domain.Installation, in InstallationInput) error {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return apperrors.Validation("name", "installation name is required")
	}
	if in.ReportingYear <= 0 {
		return apperrors.Validation("reporting_year", "reporting year is required")
	}
	inst.Name = name
	inst.ReportingYear = in.ReportingYear
	return nil
}

// Products

// ProductNameOptions lists the product names available for a window: the
// window-filtered raw rows, deduplicated by product name.
func (m *Manager) ProductNameOptions(ctx context.Context, w domain.ReportingWindow) (*filter.Result, error) {
	if err := w.Validate(); err != nil {
		return nil, err
	}
	rows, err := m.rawInputs.ListAll(ctx)
	if err != nil {
		return nil, unavailable(err)
	}
	return m.filter.WindowOptions(rows, w)
}

func (m *Manager) CreateProduct(ctx context.Context, in ProductInput) (*domain.Product, error) {
	if in.InstallationID == 0 {
		return nil, apperrors.Validation("installation_id", "installation is required")
	}
	if _, err := m.installations.GetByID(ctx, in.InstallationID); err != nil {
		return nil, unavailable(err)
	}

	p := &domain.Product{InstallationID: in.InstallationID}
	if err := m.applyProduct(ctx, p, in); err != nil {
		return nil, err
	}
	if err := m.products.Create(ctx, p); err != nil {
		return nil, unavailable(err)
	}

	m.logger.Info("product created",
		slog.Uint64("product_id", uint64(p.ID)),
		slog.Uint64("installation_id", uint64(p.InstallationID)),
		slog.String("name", p.Name),
		slog.Bool("free_typed", in.FreeTyped))
	return p, nil
}

func (m *Manager) GetProduct(ctx context.Context, id uint) (*domain.Product, error) {
	p, err := m.products.GetByID(ctx, id)
	return p, unavailable(err)
}

func (m *Manager) ListProducts(ctx context.Context, installationID uint) ([]domain.Product, error) {
	list, err := m.products.ListByInstallation(ctx, installationID)
	return list, unavailable(err)
}

// UpdateProduct re-validates the window and name like a create would.
// The owning installation cannot change.
func (m *Manager) UpdateProduct(ctx context.Context, id uint, in ProductInput) (*domain.Product, error) {
	p, err := m.products.GetByID(ctx, id)
	if err != nil {
		return nil, unavailable(err)
	}
	if err := m.applyProduct(ctx, p, in); err != nil {
		return nil, err
	}
	if err := m.products.Update(ctx, p); err != nil {
		return nil, unavailable(err)
	}
	return p, nil
}

func (m *Manager) DeleteProduct(ctx context.Context, id uint) error {
	return unavailable(m.products.Delete(ctx, id))
}

// applyProduct validates in (window first, then name) and copies it onto p.
func (m *Manager) applyProduct(ctx context.Context, p *domain.Product, in ProductInput) error {
	w, err := domain.NewReportingWindow(in.WindowStart, in.WindowEnd)
	if err != nil {
		return err
	}

	name := strings.TrimSpace(in.Name)
	if name == "" {
		return apperrors.Validation("name", "product name is required")
	}
	if !in.FreeTyped {
		options, err := m.ProductNameOptions(ctx, w)
		if err != nil {
			return err
		}
		if !options.Contains(name) {
			return apperrors.Validation("name", "product name is not among the names ingested for this reporting window")
		}
	}
	if in.ProducedQuantity.IsNegative() {
		return apperrors.Validation("produced_quantity", "produced quantity cannot be negative")
	}
	if in.SoldQuantity.IsNegative() {
		return apperrors.Validation("sold_quantity", "sold quantity cannot be negative")
	}

	p.Name = name
	p.WindowStart = w.Start
	p.WindowEnd = w.End
	p.Category = strings.TrimSpace(in.Category)
	p.ClassificationCode = strings.TrimSpace(in.ClassificationCode)
	p.ProducedQuantity = in.ProducedQuantity
	p.SoldQuantity = in.SoldQuantity
	return nil
}

// Processes

func (m *Manager) CreateProcess(ctx context.Context, in ProcessInput) (*domain.Process, error) {
	if in.InstallationID == 0 {
		return nil, apperrors.Validation("installation_id", "installation is required")
	}
	if _, err := m.installations.GetByID(ctx, in.InstallationID); err != nil {
		return nil, unavailable(err)
	}

	p := &domain.Process{InstallationID: in.InstallationID}
	if err := applyProcess(p, in); err != nil {
		return nil, err
	}
	if err := m.processes.Create(ctx, p); err != nil {
		return nil, unavailable(err)
	}

	m.logger.Info("process created",
		slog.Uint64("process_id", uint64(p.ID)),
		slog.Uint64("installation_id", uint64(p.InstallationID)),
		slog.String("name", p.Name))
	return p, nil
}

func (m *Manager) GetProcess(ctx context.Context, id uint) (*domain.Process, error) {
	p, err := m.processes.GetByID(ctx, id)
	return p, unavailable(err)
}

func (m *Manager) ListProcesses(ctx context.Context, installationID uint) ([]domain.Process, error) {
	list, err := m.processes.ListByInstallation(ctx, installationID)
	return list, unavailable(err)
}

func (m *Manager) UpdateProcess(ctx context.Context, id uint, in ProcessInput) (*domain.Process, error) {
	p, err := m.processes.GetByID(ctx, id)
	if err != nil {
		return nil, unavailable(err)
	}
	if err := applyProcess(p, in); err != nil {
		return nil, err
	}
	if err := m.processes.Update(ctx, p); err != nil {
		return nil, unavailable(err)
	}
	return p, nil
}

func (m *Manager) DeleteProcess(ctx context.Context, id uint) error {
	return unavailable(m.processes.Delete(ctx, id))
}

func applyProcess(p *domain.Process, in ProcessInput) error {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return apperrors.Validation("name", "process name is required")
	}
	if in.PeriodStart != nil && in.PeriodEnd != nil && in.PeriodEnd.Before(*in.PeriodStart) {
		return apperrors.Validation("period_end", "process period ends before it starts")
	}
	p.Name = name
	p.PeriodStart = in.PeriodStart
	p.PeriodEnd = in.PeriodEnd
	return nil
}

// Links

// Link creates the product-process link or, when the pair already exists,
// updates its consumption amount. Repeating the call never adds a row.
func (m *Manager) Link(ctx context.Context, in LinkInput) (*domain.ProductProcessLink, error) {
	if in.ProductID == 0 {
		return nil, apperrors.Validation("product_id", "product is required")
	}
	if in.ProcessID == 0 {
		return nil, apperrors.Validation("process_id", "process is required")
	}
	if in.ConsumptionAmount.IsNegative() {
		return nil, apperrors.Validation("consumption_amount", "consumption amount cannot be negative")
	}
	if _, err := m.products.GetByID(ctx, in.ProductID); err != nil {
		return nil, unavailable(err)
	}
	if _, err := m.processes.GetByID(ctx, in.ProcessID); err != nil {
		return nil, unavailable(err)
	}

	link := &domain.ProductProcessLink{
		ProductID:         in.ProductID,
		ProcessID:         in.ProcessID,
		ConsumptionAmount: in.ConsumptionAmount,
	}
	if err := m.links.Upsert(ctx, link); err != nil {
		return nil, unavailable(err)
	}

	m.logger.Info("product linked to process",
		slog.Uint64("product_id", uint64(in.ProductID)),
		slog.Uint64("process_id", uint64(in.ProcessID)))
	return link, nil
}

// ListLinks returns links matching f with at most one link per pair.
func (m *Manager) ListLinks(ctx context.Context, f LinkFilter) ([]domain.ProductProcessLink, error) {
	links, err := m.links.List(ctx, f)
	if err != nil {
		return nil, unavailable(err)
	}
	return DedupeLinks(links), nil
}

func (m *Manager) Unlink(ctx context.Context, productID, processID uint) error {
	return unavailable(m.links.Delete(ctx, productID, processID))
}

// DedupeLinks keeps the first link of every (product, process) pair.
func DedupeLinks(links []domain.ProductProcessLink) []domain.ProductProcessLink {
	type pair struct{ product, process uint }
	seen := make(map[pair]bool, len(links))
	out := make([]domain.ProductProcessLink, 0, len(links))
	for _, l := range links {
		k := pair{l.ProductID, l.ProcessID}
		if seen[k] {
			continue
		}
		seen[k] = true
		out = append(out, l)
	}
	return out
}

// InputOptions lists the material/fuel names for a process's input dialog,
// scoped to the product's and process's names. See filter.ByScope for the
// fallback when nothing is in scope.
func (m *Manager) InputOptions(ctx context.Context, processID, productID uint) (*filter.Result, error) {
	proc, err := m.processes.GetByID(ctx, processID)
	if err != nil {
		return nil, unavailable(err)
	}
	prod, err := m.products.GetByID(ctx, productID)
	if err != nil {
		return nil, unavailable(err)
	}
	rows, err := m.rawInputs.ListAll(ctx)
	if err != nil {
		return nil, unavailable(err)
	}
	return m.filter.ScopeOptions(rows, filter.Scope{
		ProductName: prod.Name,
		ProcessName: proc.Name,
	}), nil
}
