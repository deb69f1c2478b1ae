package handlers

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"epicmail-service/internal/models"
	"epicmail-service/internal/observability"
	"epicmail-service/internal/repositories"
	"epicmail-service/internal/telemetry"
	"epicmail-service/internal/validation"
)

// GroupHandler manages group lifecycle, membership and group messages.
type GroupHandler struct {
	groups        repositories.GroupRepository
	groupMessages repositories.GroupMessageRepository
	users         repositories.UserRepository
	audit         *telemetry.AuditEmitter
}

// NewGroupHandler constructs a GroupHandler.
func NewGroupHandler(groups repositories.GroupRepository, groupMessages repositories.GroupMessageRepository, users repositories.UserRepository, audit *telemetry.AuditEmitter) *GroupHandler {
	return &GroupHandler{groups: groups, groupMessages: groupMessages, users: users, audit: audit}
}

// CreateGroup handles POST /api/v1/groups. The caller becomes the owner and
// gets an implicit membership row.
func (h *GroupHandler) CreateGroup(c *gin.Context) {
	userID := c.GetInt("userID")

	fields, ok := bindStrict(c, "name", "role")
	if !ok {
		return
	}
	if verr := validation.ValidateGroup(fields["name"], fields["role"]); verr != nil {
		rejectValidation(c, verr)
		return
	}

	name := fields["name"].(string)
	role := fields["role"].(string)

	group, err := h.groups.CreateGroup(c.Request.Context(), userID, name, role)
	if err != nil {
		h.emitAudit(c, "ERROR", "internal error")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not create group"})
		return
	}

	h.emitAudit(c, "INFO", "Group created")
	c.JSON(http.StatusCreated, gin.H{"data": group})
}

// ListGroups returns groups the caller belongs to.
func (h *GroupHandler) ListGroups(c *gin.Context) {
	userID := c.GetInt("userID")
	groups, err := h.groups.ListGroupsForUser(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load groups"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": groups})
}

// RenameGroup handles PATCH /api/v1/groups/:group_id/name. Owner only.
func (h *GroupHandler) RenameGroup(c *gin.Context) {
	groupID, ok := parseIDParam(c, "group_id")
	if !ok {
		return
	}
	userID := c.GetInt("userID")

	fields, ok := bindStrict(c, "name")
	if !ok {
		return
	}
	if verr := validation.ValidateGroupName(fields["name"]); verr != nil {
		rejectValidation(c, verr)
		return
	}
	newName := fields["name"].(string)

	group, ok := h.loadGroup(c, groupID)
	if !ok {
		return
	}
	if group.OwnerID != userID {
		h.emitAudit(c, "ERROR", "not allowed")
		c.JSON(http.StatusForbidden, gin.H{"error": "Only the group owner may rename the group"})
		return
	}

	if err := h.groups.RenameGroup(c.Request.Context(), groupID, newName); err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, repositories.ErrGroupNotFound) {
			status = http.StatusNotFound
		}
		c.JSON(status, gin.H{"error": "could not rename group"})
		return
	}

	group.Name = newName
	h.emitAudit(c, "INFO", "Group renamed")
	c.JSON(http.StatusOK, gin.H{"data": group})
}

// DeleteGroup handles DELETE /api/v1/groups/:group_id. Owner only; members
// and group messages go with it via cascade.
func (h *GroupHandler) DeleteGroup(c *gin.Context) {
	groupID, ok := parseIDParam(c, "group_id")
	if !ok {
		return
	}
	userID := c.GetInt("userID")

	group, ok := h.loadGroup(c, groupID)
	if !ok {
		return
	}
	if group.OwnerID != userID {
		h.emitAudit(c, "ERROR", "not allowed")
		c.JSON(http.StatusForbidden, gin.H{"error": "Only the group owner may delete the group"})
		return
	}

	if err := h.groups.DeleteGroup(c.Request.Context(), groupID); err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, repositories.ErrGroupNotFound) {
			status = http.StatusNotFound
		}
		c.JSON(status, gin.H{"error": "could not delete group"})
		return
	}

	h.emitAudit(c, "INFO", "Group deleted")
	c.Status(http.StatusNoContent)
}

// AddMember handles POST /api/v1/groups/:group_id/users. Owner only.
func (h *GroupHandler) AddMember(c *gin.Context) {
	groupID, ok := parseIDParam(c, "group_id")
	if !ok {
		return
	}
	userID := c.GetInt("userID")

	fields, ok := bindStrict(c, "userId", "role")
	if !ok {
		return
	}
	if verr := validation.ValidateMember(fields["userId"], fields["role"]); verr != nil {
		rejectValidation(c, verr)
		return
	}
	memberID, _ := validation.AsUserID(fields["userId"])
	role := fields["role"].(string)

	group, ok := h.loadGroup(c, groupID)
	if !ok {
		return
	}
	if group.OwnerID != userID {
		h.emitAudit(c, "ERROR", "not allowed")
		c.JSON(http.StatusForbidden, gin.H{"error": "Only the group owner may add members"})
		return
	}

	exists, err := h.users.UserExists(c.Request.Context(), memberID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not verify user"})
		return
	}
	if !exists {
		c.JSON(http.StatusNotFound, gin.H{"error": fmt.Sprintf("User with id %d does not exist", memberID)})
		return
	}

	member, err := h.groups.AddMember(c.Request.Context(), groupID, memberID, role)
	if err != nil {
		if errors.Is(err, repositories.ErrDuplicateMember) {
			c.JSON(http.StatusConflict, gin.H{"error": fmt.Sprintf("User with id %d is already a member", memberID)})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not add member"})
		return
	}

	h.emitAudit(c, "INFO", "Group member added")
	c.JSON(http.StatusCreated, gin.H{"data": member})
}

// PostGroupMessage handles POST /api/v1/groups/:group_id/messages. Members
// only.
func (h *GroupHandler) PostGroupMessage(c *gin.Context) {
	groupID, ok := parseIDParam(c, "group_id")
	if !ok {
		return
	}
	userID := c.GetInt("userID")

	fields, ok := bindStrict(c, "subject", "message")
	if !ok {
		return
	}
	if verr := validation.ValidateGroupMessage(fields["subject"], fields["message"]); verr != nil {
		rejectValidation(c, verr)
		return
	}
	subject := fields["subject"].(string)
	body := fields["message"].(string)

	// Missing group yields 404 before any membership verdict.
	if _, ok := h.loadGroup(c, groupID); !ok {
		return
	}
	if !h.requireMember(c, groupID, userID) {
		return
	}

	msg, err := h.groupMessages.CreateGroupMessage(c.Request.Context(), groupID, userID, subject, body)
	if err != nil {
		h.emitAudit(c, "ERROR", "internal error")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to store message"})
		return
	}

	observability.IncMessageStored("group")
	h.emitAudit(c, "INFO", "Group message sent")
	c.JSON(http.StatusCreated, gin.H{"data": msg})
}

// GetGroupMessages handles GET /api/v1/groups/:group_id/messages.
func (h *GroupHandler) GetGroupMessages(c *gin.Context) {
	groupID, ok := parseIDParam(c, "group_id")
	if !ok {
		return
	}
	userID := c.GetInt("userID")

	if _, ok := h.loadGroup(c, groupID); !ok {
		return
	}
	if !h.requireMember(c, groupID, userID) {
		return
	}

	msgs, err := h.groupMessages.ListGroupMessages(c.Request.Context(), groupID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load messages"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": msgs})
}

func (h *GroupHandler) loadGroup(c *gin.Context, groupID int) (models.Group, bool) {
	group, err := h.groups.GetGroup(c.Request.Context(), groupID)
	if err != nil {
		if errors.Is(err, repositories.ErrGroupNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": fmt.Sprintf("Group with id %d does not exist", groupID)})
			return models.Group{}, false
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load group"})
		return models.Group{}, false
	}
	return group, true
}

func (h *GroupHandler) requireMember(c *gin.Context, groupID, userID int) bool {
	member, err := h.groups.IsMember(c.Request.Context(), groupID, userID)
	if err != nil {
		h.emitAudit(c, "ERROR", "internal error")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "membership check failed"})
		return false
	}
	if !member {
		h.emitAudit(c, "ERROR", "not allowed")
		c.JSON(http.StatusForbidden, gin.H{"error": "You are not a member of this group"})
		return false
	}
	return true
}

func (h *GroupHandler) emitAudit(c *gin.Context, level, text string) {
	if h.audit == nil {
		return
	}
	h.audit.Emit(c.Request.Context(), level, text, requestIDFromContext(c), userIDFromContext(c))
}
