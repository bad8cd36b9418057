package v1

import (
	"fmt"
	"net/http"
	"strconv"

	"contact-manager-backend/internal/delivery/http/response"
	"contact-manager-backend/internal/domain"
	"contact-manager-backend/pkg/apperror"

	"github.com/gin-gonic/gin"
)

type ContactHandler struct {
	contactUC domain.ContactUsecase
}

// NewContactHandler registers the contact CRUD routes on api.
func NewContactHandler(api *gin.RouterGroup, contactUC domain.ContactUsecase) {
	handler := &ContactHandler{
		contactUC: contactUC,
	}

	contacts := api.Group("/contacts")
	{
		contacts.GET("", handler.List)
		contacts.GET("/:id", handler.Get)
		contacts.POST("", handler.Create)
		contacts.PUT("/:id", handler.Update)
		contacts.DELETE("/:id", handler.Delete)
	}
}

func parseID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.Error(apperror.BadRequest("Invalid ID format"))
		return 0, false
	}
	return id, true
}

// ListContacts godoc
// @Summary      List contacts
// @Description  Get every contact
// @Tags         contacts
// @Produce      json
// @Success      200  {array}   domain.Contact
// @Failure      500  {object}  response.ErrorBody
// @Router       /contacts [get]
func (h *ContactHandler) List(c *gin.Context) {
	contacts, err := h.contactUC.ListContacts(c.Request.Context())
	if err != nil {
		c.Error(err)
		return
	}
	response.JSON(c, http.StatusOK, contacts)
}

// GetContact godoc
// @Summary      Get a contact
// @Tags         contacts
// @Produce      json
// @Param        id   path      int  true  "Contact ID"
// @Success      200  {object}  domain.Contact
// @Failure      400  {object}  response.ErrorBody
// @Failure      404  {object}  response.ErrorBody
// @Failure      500  {object}  response.ErrorBody
// @Router       /contacts/{id} [get]
func (h *ContactHandler) Get(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	contact, err := h.contactUC.GetContact(c.Request.Context(), id)
	if err != nil {
		c.Error(err)
		return
	}
	response.JSON(c, http.StatusOK, contact)
}

// CreateContact godoc
// @Summary      Create a contact
// @Description  Name, mobile and country are required; names are unique ignoring case.
// @Tags         contacts
// @Accept       json
// @Produce      json
// @Param        contact  body      domain.Contact  true  "Contact JSON (contactID is ignored)"
// @Success      201      {object}  domain.Contact
// @Failure      400      {object}  response.ErrorBody
// @Failure      500      {object}  response.ErrorBody
// @Router       /contacts [post]
func (h *ContactHandler) Create(c *gin.Context) {
	var req domain.Contact
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(apperror.BadRequest(err.Error()))
		return
	}

	created, err := h.contactUC.CreateContact(c.Request.Context(), &req)
	if err != nil {
		c.Error(err)
		return
	}

	c.Header("Location", fmt.Sprintf("%s/%d", c.FullPath(), created.ID))
	response.JSON(c, http.StatusCreated, created)
}

// UpdateContact godoc
// @Summary      Replace a contact
// @Description  The body's contactID must equal the path id.
// @Tags         contacts
// @Accept       json
// @Produce      json
// @Param        id       path      int             true  "Contact ID"
// @Param        contact  body      domain.Contact  true  "Contact JSON"
// @Success      200      {object}  domain.Contact
// @Failure      400      {object}  response.ErrorBody
// @Failure      404      {object}  response.ErrorBody
// @Failure      500      {object}  response.ErrorBody
// @Router       /contacts/{id} [put]
func (h *ContactHandler) Update(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	var req domain.Contact
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(apperror.BadRequest(err.Error()))
		return
	}

	updated, err := h.contactUC.UpdateContact(c.Request.Context(), id, &req)
	if err != nil {
		c.Error(err)
		return
	}
	response.JSON(c, http.StatusOK, updated)
}

// DeleteContact godoc
// @Summary      Delete a contact
// @Tags         contacts
// @Produce      json
// @Param        id   path      int  true  "Contact ID"
// @Success      200  {object}  response.MessageBody
// @Failure      400  {object}  response.ErrorBody
// @Failure      404  {object}  response.ErrorBody
// @Failure      500  {object}  response.ErrorBody
// @Router       /contacts/{id} [delete]
func (h *ContactHandler) Delete(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	if err := h.contactUC.DeleteContact(c.Request.Context(), id); err != nil {
		c.Error(err)
		return
	}
	response.Message(c, http.StatusOK, "Contact deleted successfully")
}
