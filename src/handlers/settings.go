package handlers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gamehost/siteadmin/src/models"
	"github.com/gamehost/siteadmin/src/services"
	"github.com/gin-gonic/gin"
)

// APIKeySettingsRequest is the body for the ctrlpanel and hetrixtools settings endpoints
type APIKeySettingsRequest struct {
	APIKey string `json:"apiKey" binding:"required"`
}

// SMTPSettingsRequest is the body for the zoho settings endpoints
type SMTPSettingsRequest struct {
	Host      string    `json:"host" binding:"required"`
	Port      PortValue `json:"port" binding:"required,min=1,max=65535"`
	Username  string    `json:"username" binding:"required"`
	Password  string    `json:"password" binding:"required"`
	FromEmail string    `json:"fromEmail" binding:"required,email"`
	FromName  string    `json:"fromName"`
}

// PortValue accepts a port as a JSON number or a numeric string
type PortValue int

// UnmarshalJSON implements json.Unmarshaler
func (p *PortValue) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		if s == "" {
			return nil
		}
		n, err := strconv.Atoi(s)
		if err != nil {
			return fmt.Errorf("port %q is not a number", s)
		}
		*p = PortValue(n)
		return nil
	}
	var n int
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*p = PortValue(n)
	return nil
}

// SettingsHandler exposes the credential settings protocol per integration kind
type SettingsHandler struct {
	settings *services.SettingsService
}

// NewSettingsHandler creates a new settings handler
func NewSettingsHandler(settings *services.SettingsService) *SettingsHandler {
	return &SettingsHandler{settings: settings}
}

// RegisterRoutes mounts GET/POST /{route}-settings and POST /{route}/test-connection
// for every kind on an already authenticated group.
func (sh *SettingsHandler) RegisterRoutes(group *gin.RouterGroup) {
	for _, kind := range models.CredentialKinds {
		route := kind.RouteName()
		group.GET("/"+route+"-settings", sh.HandleRead(kind))
		group.POST("/"+route+"-settings", sh.HandleWrite(kind))
		group.POST("/"+route+"/test-connection", sh.HandleTestConnection(kind))
	}
}

// HandleRead returns the masked view of the kind's credential
func (sh *SettingsHandler) HandleRead(kind models.CredentialKind) gin.HandlerFunc {
	return func(c *gin.Context) {
		view, err := sh.settings.Read(c.Request.Context(), kind)
		if err != nil {
			respondError(c, err, fmt.Sprintf("failed to load %s settings", kind.RouteName()))
			return
		}
		c.JSON(http.StatusOK, view)
	}
}

// HandleWrite validates, probes and saves the kind's credential
func (sh *SettingsHandler) HandleWrite(kind models.CredentialKind) gin.HandlerFunc {
	return func(c *gin.Context) {
		fields, ok := bindSettingsFields(c, kind)
		if !ok {
			return
		}

		view, err := sh.settings.Write(c.Request.Context(), kind, fields)
		if err != nil {
			respondError(c, err, fmt.Sprintf("failed to save %s settings", kind.RouteName()))
			return
		}
		c.JSON(http.StatusCreated, view)
	}
}

// HandleTestConnection probes candidate settings without saving them
func (sh *SettingsHandler) HandleTestConnection(kind models.CredentialKind) gin.HandlerFunc {
	return func(c *gin.Context) {
		var fields map[string]string
		var err error
		if fields, err = decodeSettingsFields(c, kind); err == nil {
			err = sh.settings.TestConnection(c.Request.Context(), kind, fields)
		}
		if err != nil {
			status := errorStatus(err)
			message := err.Error()
			if status == http.StatusInternalServerError {
				respondError(c, err, "connection test failed")
				return
			}
			c.AbortWithStatusJSON(status, gin.H{"success": false, "error": message})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"success": true,
			"message": "Connection successful",
		})
	}
}

func bindSettingsFields(c *gin.Context, kind models.CredentialKind) (map[string]string, bool) {
	fields, err := decodeSettingsFields(c, kind)
	if err != nil {
		respondError(c, err, "")
		return nil, false
	}
	return fields, true
}

// decodeSettingsFields binds the kind's request schema and flattens it into stored field names
func decodeSettingsFields(c *gin.Context, kind models.CredentialKind) (map[string]string, error) {
	if kind.IsSMTP() {
		var req SMTPSettingsRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			return nil, bindingError(err)
		}
		return map[string]string{
			models.FieldHost:      req.Host,
			models.FieldPort:      strconv.Itoa(int(req.Port)),
			models.FieldUsername:  req.Username,
			models.FieldPassword:  req.Password,
			models.FieldFromEmail: req.FromEmail,
			models.FieldFromName:  req.FromName,
		}, nil
	}

	var req APIKeySettingsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		return nil, bindingError(err)
	}
	return map[string]string{models.FieldAPIKey: req.APIKey}, nil
}
