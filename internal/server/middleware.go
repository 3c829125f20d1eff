package server

import (
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	obscontext "github.com/smallbiznis/polarops/internal/observability/context"
	"github.com/smallbiznis/polarops/internal/orgcontext"
)

const (
	HeaderOrg           = "X-Org-ID"
	contextOrgIDKey     = "org_id"
	contextEquipmentKey = "equipment_id"
)

// OrgContext resolves the calling organization from the X-Org-ID header.
func (s *Server) OrgContext() gin.HandlerFunc {
	return func(c *gin.Context) {
		raw := strings.TrimSpace(c.GetHeader(HeaderOrg))
		if raw == "" {
			AbortWithError(c, ErrOrgRequired)
			return
		}
		orgID, err := snowflake.ParseString(raw)
		if err != nil || orgID <= 0 {
			AbortWithError(c, ErrOrgRequired)
			return
		}

		ctx := orgcontext.WithOrgID(c.Request.Context(), orgID)
		ctx = obscontext.WithOrgID(ctx, orgID.String())
		c.Request = c.Request.WithContext(ctx)
		c.Set(contextOrgIDKey, orgID.String())
		c.Next()
	}
}

// tagEquipment exposes the equipment id to the request logger.
func tagEquipment(c *gin.Context, equipmentID string) {
	if id := strings.TrimSpace(equipmentID); id != "" {
		c.Set(contextEquipmentKey, id)
	}
}
