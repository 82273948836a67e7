package controller

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog"

	inErrors "github.com/widyatma/catalog/internal/errors"
	inHttp "github.com/widyatma/catalog/internal/http"
	"github.com/widyatma/catalog/internal/log"
	"github.com/widyatma/catalog/internal/middleware"
	inOtel "github.com/widyatma/catalog/internal/otel"
	"github.com/widyatma/catalog/internal/ratelimit"
	"github.com/widyatma/catalog/internal/product/service"
	"github.com/widyatma/catalog/internal/product/validation"
	"github.com/widyatma/catalog/product/pkg/request"
)

type ProductController struct {
	service *service.ProductService
}

// AttachProductController mounts the catalog routes. Reads and writes run
// under separate rate limiters; only writes require a credential. The
// recommended route must be registered before the slug route so the literal
// segment wins.
func AttachProductController(
	router *mux.Router,
	svc *service.ProductService,
	readLimiter *ratelimit.Limiter,
	writeLimiter *ratelimit.Limiter,
	authn middleware.Authenticator,
) {
	controller := ProductController{service: svc}

	readRouter := router.PathPrefix("/products").Methods(http.MethodGet).Subrouter()
	readRouter.Use(middleware.RateLimit(readLimiter, "read"))
	readRouter.HandleFunc("", controller.FindProducts)
	readRouter.HandleFunc("/recommended", controller.FindRecommendedProducts)
	readRouter.HandleFunc("/{slugOrId}", controller.FindProductBySlug)

	writeRouter := router.PathPrefix("/products").
		Methods(http.MethodPost, http.MethodPut).
		Subrouter()
	writeRouter.Use(middleware.RateLimit(writeLimiter, "write"), middleware.Auth(authn))
	writeRouter.HandleFunc("", controller.InsertProduct).Methods(http.MethodPost)
	writeRouter.HandleFunc("/{slugOrId}", controller.UpdateProduct).Methods(http.MethodPut)

	dashboardRouter := router.PathPrefix("/dashboard").Methods(http.MethodGet).Subrouter()
	dashboardRouter.Use(middleware.RateLimit(readLimiter, "read"))
	dashboardRouter.HandleFunc("/stats", controller.DashboardStats)
}

func (ctrl ProductController) FindProducts(w http.ResponseWriter, r *http.Request) {
	c, span := inOtel.Tracer.Start(r.Context(), "ProductController FindProducts")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Ctx(c).
		Str(log.KeyTag, "ProductController FindProducts").
		Logger()

	query := request.ProductQueryFromRequest(r)

	logger = logger.With().Str(log.KeyProcess, "finding products").Logger()
	logger.Trace().Msg("finding products")
	span.AddEvent("finding products")
	c = logger.WithContext(c)
	list, err := ctrl.service.FindProducts(c, query)
	if err != nil {
		err = fmt.Errorf("failed finding products with error=%w", err)
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		inHttp.WriteJsonResponse(c, w, map[string]string{}, http.StatusInternalServerError,
			map[string]interface{}{
				"success": false,
				"error":   inHttp.MsgServerError,
				"message": "Failed to fetch products",
			})
		return
	}
	span.AddEvent("found products")
	logger.Info().Msg("found products")

	body := map[string]interface{}{
		"success": true,
		"data":    list.Products,
		"message": fmt.Sprintf("Retrieved %d products", len(list.Products)),
	}
	// Pagination metadata only below the hard cap; at the cap the caller
	// asked for everything and gets the plain envelope.
	if query.Paginated() {
		body["total"] = list.Total
		body["page"] = list.Page
		body["limit"] = list.Limit
	}
	inHttp.WriteJsonResponse(c, w, map[string]string{}, http.StatusOK, body)
}

func (ctrl ProductController) FindProductBySlug(w http.ResponseWriter, r *http.Request) {
	c, span := inOtel.Tracer.Start(r.Context(), "ProductController FindProductBySlug")
	defer span.End()

	slug := mux.Vars(r)["slugOrId"]
	logger := zerolog.Ctx(c).
		With().
		Ctx(c).
		Str(log.KeyTag, "ProductController FindProductBySlug").
		Str(log.KeySlug, slug).
		Logger()

	logger = logger.With().Str(log.KeyProcess, "finding product").Logger()
	logger.Trace().Msg("finding product")
	span.AddEvent("finding product")
	c = logger.WithContext(c)
	product, err := ctrl.service.FindProductBySlug(c, slug)
	if err != nil {
		err = fmt.Errorf("failed finding product with error=%w", err)
		inOtel.RecordError(err, span)
		if errors.Is(err, inErrors.ErrProductNotFound) {
			logger.Info().Err(err).Msg(err.Error())
			inHttp.WriteJsonResponse(c, w, map[string]string{}, http.StatusNotFound,
				map[string]interface{}{
					"success": false,
					"error":   inHttp.MsgProductNotFound,
					"message": fmt.Sprintf("Product with slug %q not found", slug),
				})
			return
		}
		logger.Error().Err(err).Msg(err.Error())
		inHttp.WriteJsonResponse(c, w, map[string]string{}, http.StatusInternalServerError,
			map[string]interface{}{
				"success": false,
				"error":   inHttp.MsgServerError,
				"message": "Failed to fetch product",
			})
		return
	}
	span.AddEvent("found product")
	logger.Info().Msg("found product")

	inHttp.WriteJsonResponse(c, w, map[string]string{}, http.StatusOK,
		map[string]interface{}{
			"success": true,
			"data":    product,
		})
}

func (ctrl ProductController) FindRecommendedProducts(w http.ResponseWriter, r *http.Request) {
	c, span := inOtel.Tracer.Start(r.Context(), "ProductController FindRecommendedProducts")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Ctx(c).
		Str(log.KeyTag, "ProductController FindRecommendedProducts").
		Logger()

	logger = logger.With().Str(log.KeyProcess, "finding recommended products").Logger()
	logger.Trace().Msg("finding recommended products")
	span.AddEvent("finding recommended products")
	c = logger.WithContext(c)
	products, err := ctrl.service.FindRecommendedProducts(c)
	if err != nil {
		err = fmt.Errorf("failed finding recommended products with error=%w", err)
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		inHttp.WriteJsonResponse(c, w, map[string]string{}, http.StatusInternalServerError,
			map[string]interface{}{
				"success": false,
				"error":   inHttp.MsgServerError,
				"message": "Failed to fetch products",
			})
		return
	}
	span.AddEvent("found recommended products")
	logger.Info().Msg("found recommended products")

	inHttp.WriteJsonResponse(c, w, map[string]string{}, http.StatusOK,
		map[string]interface{}{
			"success": true,
			"data":    products,
			"message": fmt.Sprintf("Retrieved %d products", len(products)),
		})
}

func (ctrl ProductController) InsertProduct(w http.ResponseWriter, r *http.Request) {
	c, span := inOtel.Tracer.Start(r.Context(), "ProductController InsertProduct")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Ctx(c).
		Str(log.KeyTag, "ProductController InsertProduct").
		Logger()

	logger = logger.With().Str(log.KeyProcess, "decoding request body").Logger()
	logger.Trace().Msg("decoding request body")
	span.AddEvent("decoding request body")
	reqBody := request.Product{}
	if err := json.NewDecoder(r.Body).Decode(&reqBody); err != nil {
		err = fmt.Errorf("failed decoding request body with error=%w", err)
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		inHttp.WriteJsonResponse(c, w, map[string]string{}, http.StatusBadRequest,
			map[string]interface{}{
				"success": false,
				"error":   inHttp.MsgValidationError,
				"message": "Invalid product data",
			})
		return
	}
	span.AddEvent("decoded request body")
	logger.Trace().Msg("decoded request body")

	logger = logger.With().Str(log.KeyProcess, "validating request body").Logger()
	logger.Trace().Msg("validating request body")
	span.AddEvent("validating request body")
	if fieldErrors := validation.ValidateProduct(reqBody); len(fieldErrors) > 0 {
		err := fmt.Errorf("request body has %d invalid fields", len(fieldErrors))
		inOtel.RecordError(err, span)
		logger.Info().Err(err).Msg(err.Error())
		inHttp.WriteJsonResponse(c, w, map[string]string{}, http.StatusBadRequest,
			map[string]interface{}{
				"success": false,
				"error":   inHttp.MsgValidationError,
				"message": "Invalid product data",
				"details": fieldErrors,
			})
		return
	}
	span.AddEvent("validated request body")
	logger.Info().Msg("validated request body")

	logger = logger.With().Str(log.KeyProcess, "inserting product").Logger()
	logger.Trace().Msg("inserting product")
	span.AddEvent("inserting product")
	c = logger.WithContext(c)
	product, err := ctrl.service.InsertProduct(c, reqBody)
	if err != nil {
		err = fmt.Errorf("failed inserting product with error=%w", err)
		inOtel.RecordError(err, span)
		if errors.Is(err, inErrors.ErrSlugExists) {
			logger.Info().Err(err).Msg(err.Error())
			inHttp.WriteJsonResponse(c, w, map[string]string{}, http.StatusBadRequest,
				map[string]interface{}{
					"success": false,
					"error":   inHttp.MsgValidationError,
					"message": fmt.Sprintf("Product with slug %q already exists", *reqBody.Slug),
				})
			return
		}
		logger.Error().Err(err).Msg(err.Error())
		inHttp.WriteJsonResponse(c, w, map[string]string{}, http.StatusInternalServerError,
			map[string]interface{}{
				"success": false,
				"error":   inHttp.MsgServerError,
				"message": "Failed to create product",
			})
		return
	}
	span.AddEvent("inserted product")
	logger.Info().Msg("inserted product")

	inHttp.WriteJsonResponse(c, w, map[string]string{}, http.StatusCreated,
		map[string]interface{}{
			"success": true,
			"data":    product,
			"message": inHttp.MsgProductCreated,
		})
}

func (ctrl ProductController) UpdateProduct(w http.ResponseWriter, r *http.Request) {
	c, span := inOtel.Tracer.Start(r.Context(), "ProductController UpdateProduct")
	defer span.End()

	identifier := mux.Vars(r)["slugOrId"]
	logger := zerolog.Ctx(c).
		With().
		Ctx(c).
		Str(log.KeyTag, "ProductController UpdateProduct").
		Str(log.KeyIdentifier, identifier).
		Logger()

	logger = logger.With().Str(log.KeyProcess, "decoding request body").Logger()
	logger.Trace().Msg("decoding request body")
	span.AddEvent("decoding request body")
	reqBody := request.Product{}
	if err := json.NewDecoder(r.Body).Decode(&reqBody); err != nil {
		err = fmt.Errorf("failed decoding request body with error=%w", err)
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		inHttp.WriteJsonResponse(c, w, map[string]string{}, http.StatusBadRequest,
			map[string]interface{}{
				"success": false,
				"error":   inHttp.MsgValidationError,
				"message": "Invalid product data",
			})
		return
	}
	span.AddEvent("decoded request body")
	logger.Trace().Msg("decoded request body")

	logger = logger.With().Str(log.KeyProcess, "validating request body").Logger()
	logger.Trace().Msg("validating request body")
	span.AddEvent("validating request body")
	if fieldErrors := validation.ValidatePartialProduct(reqBody); len(fieldErrors) > 0 {
		err := fmt.Errorf("request body has %d invalid fields", len(fieldErrors))
		inOtel.RecordError(err, span)
		logger.Info().Err(err).Msg(err.Error())
		inHttp.WriteJsonResponse(c, w, map[string]string{}, http.StatusBadRequest,
			map[string]interface{}{
				"success": false,
				"error":   inHttp.MsgValidationError,
				"message": "Invalid product data",
				"details": fieldErrors,
			})
		return
	}
	span.AddEvent("validated request body")
	logger.Info().Msg("validated request body")

	logger = logger.With().Str(log.KeyProcess, "updating product").Logger()
	logger.Trace().Msg("updating product")
	span.AddEvent("updating product")
	c = logger.WithContext(c)
	product, err := ctrl.service.UpdateProduct(c, identifier, reqBody)
	if err != nil {
		err = fmt.Errorf("failed updating product with error=%w", err)
		inOtel.RecordError(err, span)
		switch {
		case errors.Is(err, inErrors.ErrProductNotFound):
			logger.Info().Err(err).Msg(err.Error())
			inHttp.WriteJsonResponse(c, w, map[string]string{}, http.StatusNotFound,
				map[string]interface{}{
					"success": false,
					"error":   inHttp.MsgProductNotFound,
					"message": fmt.Sprintf("Product with identifier %q not found", identifier),
				})
		case errors.Is(err, inErrors.ErrSlugExists):
			logger.Info().Err(err).Msg(err.Error())
			inHttp.WriteJsonResponse(c, w, map[string]string{}, http.StatusBadRequest,
				map[string]interface{}{
					"success": false,
					"error":   inHttp.MsgValidationError,
					"message": fmt.Sprintf("Product with slug %q already exists", *reqBody.Slug),
				})
		default:
			logger.Error().Err(err).Msg(err.Error())
			inHttp.WriteJsonResponse(c, w, map[string]string{}, http.StatusInternalServerError,
				map[string]interface{}{
					"success": false,
					"error":   inHttp.MsgServerError,
					"message": "Failed to update product",
				})
		}
		return
	}
	span.AddEvent("updated product")
	logger.Info().Msg("updated product")

	inHttp.WriteJsonResponse(c, w, map[string]string{}, http.StatusOK,
		map[string]interface{}{
			"success": true,
			"data":    product,
			"message": inHttp.MsgProductUpdated,
		})
}

func (ctrl ProductController) DashboardStats(w http.ResponseWriter, r *http.Request) {
	c, span := inOtel.Tracer.Start(r.Context(), "ProductController DashboardStats")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Ctx(c).
		Str(log.KeyTag, "ProductController DashboardStats").
		Logger()

	logger = logger.With().Str(log.KeyProcess, "aggregating inventory stats").Logger()
	logger.Trace().Msg("aggregating inventory stats")
	span.AddEvent("aggregating inventory stats")
	c = logger.WithContext(c)
	stats, err := ctrl.service.InventoryStats(c)
	if err != nil {
		err = fmt.Errorf("failed aggregating inventory stats with error=%w", err)
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		inHttp.WriteJsonResponse(c, w, map[string]string{}, http.StatusInternalServerError,
			map[string]interface{}{
				"success": false,
				"error":   inHttp.MsgServerError,
				"message": "Failed to fetch dashboard stats",
			})
		return
	}
	span.AddEvent("aggregated inventory stats")
	logger.Info().Msg("aggregated inventory stats")

	inHttp.WriteJsonResponse(c, w, map[string]string{}, http.StatusOK,
		map[string]interface{}{
			"success": true,
			"data":    stats,
		})
}
