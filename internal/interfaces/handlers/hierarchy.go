package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/alejandroruanova/cbam-emissions/internal/core/domain"
	"github.com/alejandroruanova/cbam-emissions/internal/core/services/hierarchy"
	"github.com/alejandroruanova/cbam-emissions/internal/pkg/response"
)

// HierarchyHandlers serves installations, products, processes and links.
type HierarchyHandlers struct {
	Manager *hierarchy.Manager
}

// CreateInstallation POST /api/v1/installations
func (h *HierarchyHandlers) CreateInstallation(c *fiber.Ctx) error {
	var in hierarchy.InstallationInput
	if err := parseBody(c, &in); err != nil {
		return response.FromError(c, err)
	}
	inst, err := h.Manager.CreateInstallation(c.UserContext(), in)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.SuccessCreated(c, "Installation created", inst, nil)
}

// ListInstallations GET /api/v1/installations
func (h *HierarchyHandlers) ListInstallations(c *fiber.Ctx) error {
	list, err := h.Manager.ListInstallations(c.UserContext())
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "Installations", list, fiber.Map{"count": len(list)})
}

// GetInstallation GET /api/v1/installations/:id
func (h *HierarchyHandlers) GetInstallation(c *fiber.Ctx) error {
	id, err := idParam(c, "id")
	if err != nil {
		return response.FromError(c, err)
	}
	inst, err := h.Manager.GetInstallation(c.UserContext(), id)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "Installation", inst, nil)
}

// UpdateInstallation PUT /api/v1/installations/:id
func (h *HierarchyHandlers) UpdateInstallation(c *fiber.Ctx) error {
	id, err := idParam(c, "id")
	if err != nil {
		return response.FromError(c, err)
	}
	var in hierarchy.InstallationInput
	if err := parseBody(c, &in); err != nil {
		return response.FromError(c, err)
	}
	inst, err := h.Manager.UpdateInstallation(c.UserContext(), id, in)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "Installation updated", inst, nil)
}

// DeleteInstallation DELETE /api/v1/installations/:id
func (h *HierarchyHandlers) DeleteInstallation(c *fiber.Ctx) error {
	id, err := idParam(c, "id")
	if err != nil {
		return response.FromError(c, err)
	}
	if err := h.Manager.DeleteInstallation(c.UserContext(), id); err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "Installation deleted", nil, nil)
}

// ProductOptions GET /api/v1/products/options?start=YYYY-MM-DD&end=YYYY-MM-DD
func (h *HierarchyHandlers) ProductOptions(c *fiber.Ctx) error {
	w, err := domain.NewReportingWindow(c.Query("start"), c.Query("end"))
	if err != nil {
		return response.FromError(c, err)
	}
	res, err := h.Manager.ProductNameOptions(c.UserContext(), w)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "Product name options", res.Options, res.Stats)
}

// CreateProduct POST /api/v1/products
func (h *HierarchyHandlers) CreateProduct(c *fiber.Ctx) error {
	var in hierarchy.ProductInput
	if err := parseBody(c, &in); err != nil {
		return response.FromError(c, err)
	}
	p, err := h.Manager.CreateProduct(c.UserContext(), in)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.SuccessCreated(c, "Product created", p, nil)
}

// ListProducts GET /api/v1/products?installation_id=
func (h *HierarchyHandlers) ListProducts(c *fiber.Ctx) error {
	instID, err := queryID(c, "installation_id")
	if err != nil {
		return response.FromError(c, err)
	}
	list, err := h.Manager.ListProducts(c.UserContext(), instID)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "Products", list, fiber.Map{"count": len(list)})
}

// GetProduct GET /api/v1/products/:id
func (h *HierarchyHandlers) GetProduct(c *fiber.Ctx) error {
	id, err := idParam(c, "id")
	if err != nil {
		return response.FromError(c, err)
	}
	p, err := h.Manager.GetProduct(c.UserContext(), id)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "Product", p, nil)
}

// UpdateProduct PUT /api/v1/products/:id
func (h *HierarchyHandlers) UpdateProduct(c *fiber.Ctx) error {
	id, err := idParam(c, "id")
	if err != nil {
		return response.FromError(c, err)
	}
	var in hierarchy.ProductInput
	if err := parseBody(c, &in); err != nil {
		return response.FromError(c, err)
	}
	p, err := h.Manager.UpdateProduct(c.UserContext(), id, in)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "Product updated", p, nil)
}

// DeleteProduct DELETE /api/v1/products/:id
func (h *HierarchyHandlers) DeleteProduct(c *fiber.Ctx) error {
	id, err := idParam(c, "id")
	if err != nil {
		return response.FromError(c, err)
	}
	if err := h.Manager.DeleteProduct(c.UserContext(), id); err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "Product deleted", nil, nil)
}

// CreateProcess POST /api/v1/processes
func (h *HierarchyHandlers) CreateProcess(c *fiber.Ctx) error {
	var in hierarchy.ProcessInput
	if err := parseBody(c, &in); err != nil {
		return response.FromError(c, err)
	}
	p, err := h.Manager.CreateProcess(c.UserContext(), in)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.SuccessCreated(c, "Process created", p, nil)
}

// ListProcesses GET /api/v1/processes?installation_id=
func (h *HierarchyHandlers) ListProcesses(c *fiber.Ctx) error {
	instID, err := queryID(c, "installation_id")
	if err != nil {
		return response.FromError(c, err)
	}
	list, err := h.Manager.ListProcesses(c.UserContext(), instID)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "Processes", list, fiber.Map{"count": len(list)})
}

// GetProcess GET /api/v1/processes/:id
func (h *HierarchyHandlers) GetProcess(c *fiber.Ctx) error {
	id, err := idParam(c, "id")
	if err != nil {
		return response.FromError(c, err)
	}
	p, err := h.Manager.GetProcess(c.UserContext(), id)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "Process", p, nil)
}

// UpdateProcess PUT /api/v1/processes/:id
func (h *HierarchyHandlers) UpdateProcess(c *fiber.Ctx) error {
	id, err := idParam(c, "id")
	if err != nil {
		return response.FromError(c, err)
	}
	var in hierarchy.ProcessInput
	if err := parseBody(c, &in); err != nil {
		return response.FromError(c, err)
	}
	p, err := h.Manager.UpdateProcess(c.UserContext(), id, in)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "Process updated", p, nil)
}

// DeleteProcess DELETE /api/v1/processes/:id
func (h *HierarchyHandlers) DeleteProcess(c *fiber.Ctx) error {
	id, err := idParam(c, "id")
	if err != nil {
		return response.FromError(c, err)
	}
	if err := h.Manager.DeleteProcess(c.UserContext(), id); err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "Process deleted", nil, nil)
}

// InputOptions GET /api/v1/processes/:id/input-options?product_id=
func (h *HierarchyHandlers) InputOptions(c *fiber.Ctx) error {
	processID, err := idParam(c, "id")
	if err != nil {
		return response.FromError(c, err)
	}
	productID, err := queryID(c, "product_id")
	if err != nil {
		return response.FromError(c, err)
	}
	res, err := h.Manager.InputOptions(c.UserContext(), processID, productID)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "Input options", res.Options, res.Stats)
}

// Link PUT /api/v1/links
func (h *HierarchyHandlers) Link(c *fiber.Ctx) error {
	var in hierarchy.LinkInput
	if err := parseBody(c, &in); err != nil {
		return response.FromError(c, err)
	}
	link, err := h.Manager.Link(c.UserContext(), in)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "Product linked to process", link, nil)
}

// ListLinks GET /api/v1/links?product_id=&process_id=
func (h *HierarchyHandlers) ListLinks(c *fiber.Ctx) error {
	productID, err := queryID(c, "product_id")
	if err != nil {
		return response.FromError(c, err)
	}
	processID, err := queryID(c, "process_id")
	if err != nil {
		return response.FromError(c, err)
	}
	links, err := h.Manager.ListLinks(c.UserContext(), hierarchy.LinkFilter{ProductID: productID, ProcessID: processID})
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "Links", links, fiber.Map{"count": len(links)})
}

// Unlink DELETE /api/v1/links?product_id=&process_id=
func (h *HierarchyHandlers) Unlink(c *fiber.Ctx) error {
	productID, err := queryID(c, "product_id")
	if err != nil {
		return response.FromError(c, err)
	}
	processID, err := queryID(c, "process_id")
	if err != nil {
		return response.FromError(c, err)
	}
	if err := h.Manager.Unlink(c.UserContext(), productID, processID); err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "Link removed", nil, nil)
}
