package handler

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	exportapp "github.com/pymeboard/backend/internal/application/export"
	importapp "github.com/pymeboard/backend/internal/application/import"
	partnerapp "github.com/pymeboard/backend/internal/application/partner"
	"github.com/pymeboard/backend/internal/interfaces/http/dto"
	"github.com/pymeboard/backend/internal/interfaces/http/middleware"
)

// ClientUseCases is the client application service as seen by the API
type ClientUseCases interface {
	Create(ctx context.Context, orgID, userID uuid.UUID, req partnerapp.CreateClientRequest) (*partnerapp.ClientResponse, error)
	GetByID(ctx context.Context, orgID, clientID uuid.UUID) (*partnerapp.ClientResponse, error)
	List(ctx context.Context, orgID uuid.UUID, filter partnerapp.ClientListFilter) ([]partnerapp.ClientResponse, int64, error)
	Update(ctx context.Context, orgID, clientID uuid.UUID, req partnerapp.UpdateClientRequest) (*partnerapp.ClientResponse, error)
	Deactivate(ctx context.Context, orgID, clientID uuid.UUID) error
	Stats(ctx context.Context, orgID uuid.UUID) (*partnerapp.ClientStatsResponse, error)
	RutLookup(ctx context.Context, orgID uuid.UUID, rut string) (bool, error)
}

// ClientImporter imports clients from an uploaded file
type ClientImporter interface {
	Import(ctx context.Context, orgID, userID uuid.UUID, r io.Reader, dryRun bool) (*importapp.ClientImportResult, error)
}

// ClientExporter renders client listings
type ClientExporter interface {
	Export(ctx context.Context, orgID uuid.UUID, search string, format exportapp.Format) (*exportapp.ExportFile, error)
	Archive(ctx context.Context, orgID uuid.UUID, search string, format exportapp.Format) (*exportapp.ArchiveResult, error)
}

// ClientHandler handles client-related API endpoints
type ClientHandler struct {
	BaseHandler
	clients  ClientUseCases
	importer ClientImporter
	exporter ClientExporter
}

// NewClientHandler creates a new ClientHandler
func NewClientHandler(clients ClientUseCases, importer ClientImporter, exporter ClientExporter) *ClientHandler {
	return &ClientHandler{
		clients:  clients,
		importer: importer,
		exporter: exporter,
	}
}

// ListClients godoc
// @ID           listClients
// @Summary      List clients
// @Description  Active clients of the caller's organization, searchable by business name, RUT or email
// @Tags         clients
// @Produce      json
// @Param        search    query string false "Search term"
// @Param        page      query int    false "Page number" default(1)
// @Param        page_size query int    false "Page size" default(20) maximum(100)
// @Param        order_by  query string false "Order by" Enums(created_at, business_name, rut)
// @Param        order_dir query string false "Order direction" Enums(asc, desc)
// @Success      200 {object} APIResponse[[]partnerapp.ClientResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      401 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /clients [get]
func (h *ClientHandler) List(c *gin.Context) {
	orgID, err := getOrganizationID(c)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	var filter partnerapp.ClientListFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}
	if filter.Page == 0 {
		filter.Page = 1
	}
	if filter.PageSize == 0 {
		filter.PageSize = 20
	}

	clients, total, err := h.clients.List(c.Request.Context(), orgID, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, clients, total, filter.Page, filter.PageSize)
}

// Stats godoc
// @ID           getClientStats
// @Summary      Client counters
// @Description  Total active clients and clients registered since the first day of the current month
// @Tags         clients
// @Produce      json
// @Success      200 {object} APIResponse[partnerapp.ClientStatsResponse]
// @Failure      401 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /clients/stats [get]
func (h *ClientHandler) Stats(c *gin.Context) {
	orgID, err := getOrganizationID(c)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	stats, err := h.clients.Stats(c.Request.Context(), orgID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, stats)
}

// Get godoc
// @ID           getClient
// @Summary      Get a client
// @Tags         clients
// @Produce      json
// @Param        id path string true "Client ID" format(uuid)
// @Success      200 {object} APIResponse[partnerapp.ClientResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /clients/{id} [get]
func (h *ClientHandler) Get(c *gin.Context) {
	orgID, clientID, ok := h.clientRef(c)
	if !ok {
		return
	}

	client, err := h.clients.GetByID(c.Request.Context(), orgID, clientID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, client)
}

// Create godoc
// @ID           createClient
// @Summary      Register a client
// @Description  The RUT is stored formatted and must be unique within the organization. The phone is normalized to +569XXXXXXXX.
// @Tags         clients
// @Accept       json
// @Produce      json
// @Param        request body partnerapp.CreateClientRequest true "Client"
// @Success      201 {object} APIResponse[partnerapp.ClientResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      409 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /clients [post]
func (h *ClientHandler) Create(c *gin.Context) {
	orgID, err := getOrganizationID(c)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	userID, err := getUserID(c)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	var req partnerapp.CreateClientRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}

	client, err := h.clients.Create(c.Request.Context(), orgID, userID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, client)
}

// Update godoc
// @ID           updateClient
// @Summary      Update a client
// @Description  Omitted fields are left unchanged; an empty email, phone or address clears it
// @Tags         clients
// @Accept       json
// @Produce      json
// @Param        id      path string                        true "Client ID" format(uuid)
// @Param        request body partnerapp.UpdateClientRequest true "Changes"
// @Success      200 {object} APIResponse[partnerapp.ClientResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Failure      409 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /clients/{id} [put]
func (h *ClientHandler) Update(c *gin.Context) {
	orgID, clientID, ok := h.clientRef(c)
	if !ok {
		return
	}

	var req partnerapp.UpdateClientRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}

	client, err := h.clients.Update(c.Request.Context(), orgID, clientID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, client)
}

// Delete godoc
// @ID           deleteClient
// @Summary      Deactivate a client
// @Description  Soft delete; the client disappears from lists, counters and exports
// @Tags         clients
// @Param        id path string true "Client ID" format(uuid)
// @Success      204
// @Failure      404 {object} ErrorResponse
// @Failure      422 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /clients/{id} [delete]
func (h *ClientHandler) Delete(c *gin.Context) {
	orgID, clientID, ok := h.clientRef(c)
	if !ok {
		return
	}

	if err := h.clients.Deactivate(c.Request.Context(), orgID, clientID); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// RutExists godoc
// @ID           clientRutExists
// @Summary      Check whether a RUT is registered
// @Tags         clients
// @Produce      json
// @Param        rut query string true "RUT in any notation"
// @Success      200 {object} APIResponse[ExistsData]
// @Failure      400 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /clients/rut-exists [get]
func (h *ClientHandler) RutExists(c *gin.Context) {
	orgID, err := getOrganizationID(c)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	rut := c.Query("rut")
	if rut == "" {
		h.Error(c, http.StatusBadRequest, dto.ErrCodeValidationRequired, "El parámetro 'rut' es obligatorio")
		return
	}

	exists, err := h.clients.RutLookup(c.Request.Context(), orgID, rut)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, ExistsData{Exists: exists})
}

// Import godoc
// @ID           importClients
// @Summary      Import clients from CSV
// @Description  Columns: razon_social, rut, email, telefono, direccion (comma or semicolon separated, UTF-8).
// @Description  The file is committed only when every row is valid. With dry_run the file is only checked.
// @Tags         clients
// @Accept       multipart/form-data
// @Produce      json
// @Param        file    formData file true  "CSV file"
// @Param        dry_run query    bool false "Validate without saving"
// @Success      200 {object} APIResponse[importapp.ClientImportResult] "Dry run result"
// @Success      201 {object} APIResponse[importapp.ClientImportResult] "Clients created"
// @Failure      400 {object} ErrorResponse
// @Failure      413 {object} ErrorResponse
// @Failure      422 {object} APIResponse[importapp.ClientImportResult] "Rows rejected"
// @Security     BearerAuth
// @Router       /clients/import [post]
func (h *ClientHandler) Import(c *gin.Context) {
	orgID, err := getOrganizationID(c)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	userID, err := getUserID(c)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	dryRun, _ := strconv.ParseBool(c.DefaultQuery("dry_run", "false"))

	header, err := c.FormFile("file")
	if err != nil {
		h.Error(c, http.StatusBadRequest, dto.ErrCodeImportInvalidFile, "Debe adjuntar un archivo CSV en el campo 'file'")
		return
	}
	file, err := header.Open()
	if err != nil {
		h.HandleError(c, err)
		return
	}
	defer file.Close()

	result, err := h.importer.Import(c.Request.Context(), orgID, userID, file, dryRun)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	switch {
	case !result.IsValid():
		resp := dto.NewErrorResponseWithRequestID(dto.ErrCodeImportRejected,
			fmt.Sprintf("%d fila(s) con errores, no se importó ningún cliente", result.ErrorRows),
			getRequestID(c))
		resp.Data = result
		c.JSON(http.StatusUnprocessableEntity, resp)
	case result.Committed:
		h.Created(c, result)
	default:
		h.Success(c, result)
	}
}

// Export godoc
// @ID           exportClients
// @Summary      Export clients as CSV, XLSX or PDF
// @Description  CSV is semicolon separated UTF-8 with BOM, XLSX holds a single "Datos" sheet and PDF is a printed listing with a company header and page numbers. Files are named after the title and the current date (listado_de_clientes_DD-MM-YYYY.<format>)
// @Tags         clients
// @Produce      text/csv
// @Produce      application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Produce      application/pdf
// @Param        search query string false "Search term"
// @Param        format query string false "File format" Enums(csv, xlsx, pdf) default(csv)
// @Success      200 {file} file
// @Failure      400 {object} ErrorResponse
// @Failure      401 {object} ErrorResponse
// @Failure      503 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /clients/export [get]
func (h *ClientHandler) Export(c *gin.Context) {
	orgID, err := getOrganizationID(c)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	format, err := exportapp.ParseFormat(c.Query("format"))
	if err != nil {
		h.HandleError(c, err)
		return
	}

	file, err := h.exporter.Export(c.Request.Context(), orgID, c.Query("search"), format)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, file.Filename))
	c.Header("X-Export-Rows", strconv.Itoa(file.Rows))
	c.Data(http.StatusOK, file.ContentType, file.Data)
}

// Archive godoc
// @ID           archiveClients
// @Summary      Store a client export
// @Description  Uploads the export to object storage and returns a presigned download link
// @Tags         clients
// @Produce      json
// @Param        search query string false "Search term"
// @Param        format query string false "File format" Enums(csv, xlsx, pdf) default(csv)
// @Success      201 {object} APIResponse[exportapp.ArchiveResult]
// @Failure      400 {object} ErrorResponse
// @Failure      503 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /clients/export/archive [post]
func (h *ClientHandler) Archive(c *gin.Context) {
	orgID, err := getOrganizationID(c)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	format, err := exportapp.ParseFormat(c.Query("format"))
	if err != nil {
		h.HandleError(c, err)
		return
	}

	result, err := h.exporter.Archive(c.Request.Context(), orgID, c.Query("search"), format)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, result)
}

// clientRef resolves the caller's organization and the :id path parameter,
// writing the error response when either is missing
func (h *ClientHandler) clientRef(c *gin.Context) (uuid.UUID, uuid.UUID, bool) {
	orgID, err := getOrganizationID(c)
	if err != nil {
		h.HandleError(c, err)
		return uuid.Nil, uuid.Nil, false
	}
	clientID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "ID de cliente inválido")
		return uuid.Nil, uuid.Nil, false
	}
	return orgID, clientID, true
}
