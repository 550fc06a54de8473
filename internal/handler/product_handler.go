package handler

import (
	"bufio"
	"errors"
	"fmt"
	"log"
	"strconv"
	"time"

	"go-catalog-mirror/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/valyala/fasthttp"
	"gorm.io/gorm"
)

type ProductHandler struct {
	products service.ProductService
	export   service.ExportService
}

func NewProductHandler(products service.ProductService, export service.ExportService) *ProductHandler {
	return &ProductHandler{products: products, export: export}
}

func parseProductID(c *fiber.Ctx) (int64, error) {
	return strconv.ParseInt(c.Params("id"), 10, 64)
}

// GetProducts returns one page of the catalog listing with optional
// case-insensitive title search.
func (h *ProductHandler) GetProducts(c *fiber.Ctx) error {
	page := c.QueryInt("page", 1)
	size := c.QueryInt("size", 10)
	search := c.Query("search")

	result, err := h.products.ListPage(page, size, search)
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "Internal Server Error"})
	}
	return c.JSON(result)
}

func (h *ProductHandler) GetProduct(c *fiber.Ctx) error {
	id, err := parseProductID(c)
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid product ID"})
	}

	detail, err := h.products.GetProduct(id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return c.Status(404).JSON(fiber.Map{"error": "Product not found"})
	}
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "Internal Server Error"})
	}
	return c.JSON(detail)
}

func (h *ProductHandler) GetVariants(c *fiber.Ctx) error {
	id, err := parseProductID(c)
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid product ID"})
	}

	variants, optionNames, err := h.products.ListVariants(id)
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "Internal Server Error"})
	}
	return c.JSON(fiber.Map{
		"product_id":   id,
		"option_names": optionNames,
		"variants":     variants,
	})
}

func (h *ProductHandler) CreateProduct(c *fiber.Ctx) error {
	var form service.ProductForm
	if err := c.BodyParser(&form); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid JSON"})
	}

	if err := h.products.CreateProduct(&form); err != nil {
		if errors.Is(err, service.ErrProductExists) {
			return c.Status(422).JSON(fiber.Map{"error": "Product ID already exists"})
		}
		return c.Status(400).JSON(fiber.Map{"error": err.Error()})
	}
	return c.Status(201).JSON(fiber.Map{"message": "Product created", "product_id": form.ProductID})
}

func (h *ProductHandler) UpdateProduct(c *fiber.Ctx) error {
	id, err := parseProductID(c)
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid product ID"})
	}

	var form service.ProductForm
	if err := c.BodyParser(&form); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid JSON"})
	}
	if form.ProductID != id {
		return c.Status(400).JSON(fiber.Map{"error": "Path product ID does not match body"})
	}

	if err := h.products.UpdateProduct(&form); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(fiber.Map{"message": "Product updated", "product_id": id})
}

// DeleteProduct removes the product and its variants. Operator action:
// unconditional, no snapshot guard involved.
func (h *ProductHandler) DeleteProduct(c *fiber.Ctx) error {
	id, err := parseProductID(c)
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid product ID"})
	}

	if err := h.products.DeleteProduct(id); err != nil {
		return c.Status(500).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(fiber.Map{"message": "Product deleted", "product_id": id})
}

// ExportProducts streams the catalog as CSV under the same search filter as
// the listing. Rows are written to the response page by page, never
// accumulated; a storage error mid-stream can only abort the connection.
func (h *ProductHandler) ExportProducts(c *fiber.Ctx) error {
	search := c.Query("search")
	filename := fmt.Sprintf("products-%s.csv", time.Now().Format("20060102-150405"))

	c.Set(fiber.HeaderContentType, "text/csv; charset=utf-8")
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", filename))

	c.Context().SetBodyStreamWriter(fasthttp.StreamWriter(func(w *bufio.Writer) {
		if err := h.export.ExportCSV(w, search); err != nil {
			log.Printf("export: stream aborted: %v", err)
		}
	}))
	return nil
}
