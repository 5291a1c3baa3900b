package server

import (
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/nguyentranbao-ct/price-extractor/internal/models"
	pkgmdw "github.com/nguyentranbao-ct/price-extractor/internal/server/middleware"
	"github.com/nguyentranbao-ct/price-extractor/internal/usecase"
	log "github.com/nguyentranbao-ct/price-extractor/pkg/logger/logctx"
)

const (
	serviceName    = "Product Price Extractor API"
	serviceVersion = "1.0.0"
)

type Controller interface {
	Root(c echo.Context) error
	Health(c echo.Context) error
	ExtractProducts(c echo.Context) error
	ListProducts(c echo.Context) error
	GetProduct(c echo.Context) error
}

// Uploads persists uploaded images and returns the stored path.
type Uploads interface {
	Save(originalName string, data []byte) (string, error)
}

type controller struct {
	extraction usecase.ExtractionUsecase
	products   usecase.ProductUsecase
	uploads    Uploads
}

func NewHandler(
	extraction usecase.ExtractionUsecase,
	products usecase.ProductUsecase,
	uploads *UploadStore,
) Controller {
	return newController(extraction, products, uploads)
}

func newController(extraction usecase.ExtractionUsecase, products usecase.ProductUsecase, uploads Uploads) *controller {
	return &controller{
		extraction: extraction,
		products:   products,
		uploads:    uploads,
	}
}

type extractForm struct {
	StoreName string `form:"store_name" query:"store_name" validate:"max=255"`
	Location  string `form:"location" query:"location" validate:"max=255"`
}

type listRequest struct {
	Page        int    `query:"page" validate:"min=1"`
	PageSize    int    `query:"page_size" validate:"min=1,max=100"`
	ProductName string `query:"product_name"`
	StartDate   string `query:"start_date" validate:"omitempty,filterdate"`
	EndDate     string `query:"end_date" validate:"omitempty,filterdate"`
}

func (h *controller) ExtractProducts(c echo.Context) error {
	file, err := c.FormFile("file")
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "file is required")
	}
	if !strings.HasPrefix(file.Header.Get(echo.HeaderContentType), "image/") {
		return echo.NewHTTPError(http.StatusBadRequest, "File must be an image")
	}

	var form extractForm
	if err := pkgmdw.BindAndValidate(c, &form); err != nil {
		return err
	}

	src, err := file.Open()
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "cannot read uploaded file")
	}
	defer src.Close()

	data, err := io.ReadAll(src)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "cannot read uploaded file")
	}
	if len(data) == 0 {
		return echo.NewHTTPError(http.StatusBadRequest, "Image file is empty")
	}

	ctx := c.Request().Context()
	path, err := h.uploads.Save(file.Filename, data)
	if err != nil {
		log.Errorw(ctx, "save upload", "filename", file.Filename, "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to extract product prices: "+err.Error())
	}

	metadata := models.Metadata{"original_filename": file.Filename}
	if form.StoreName != "" {
		metadata["store_name"] = form.StoreName
	}
	if form.Location != "" {
		metadata["location"] = form.Location
	}

	res, err := h.extraction.Run(ctx, models.ExtractionInput{
		Image:     data,
		ImagePath: &path,
		Metadata:  metadata,
	})
	if err != nil {
		if models.IsConfigError(err) {
			return err
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to extract product prices: "+err.Error()).SetInternal(err)
	}

	return c.JSON(http.StatusOK, res.ToResponse())
}

func (h *controller) ListProducts(c echo.Context) error {
	req := listRequest{
		Page:     models.DefaultPage,
		PageSize: models.DefaultPageSize,
	}
	if err := pkgmdw.BindAndValidate(c, &req); err != nil {
		return err
	}

	filter := models.ListFilter{
		Page:        req.Page,
		PageSize:    req.PageSize,
		ProductName: req.ProductName,
	}
	if req.StartDate != "" {
		t, _ := models.ParseFilterDate(req.StartDate)
		filter.StartDate = &t
	}
	if req.EndDate != "" {
		t, _ := models.ParseFilterDate(req.EndDate)
		filter.EndDate = &t
	}

	page, err := h.products.List(c.Request().Context(), filter)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to get product list: "+err.Error()).SetInternal(err)
	}
	return c.JSON(http.StatusOK, page.ToResponse())
}

func (h *controller) GetProduct(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid product id")
	}

	product, err := h.products.GetByID(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, product.ToResponse())
}

func (h *controller) Root(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{
		"message": serviceName,
		"version": serviceVersion,
	})
}

func (h *controller) Health(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{
		"status": "healthy",
	})
}
