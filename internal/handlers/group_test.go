package handlers

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"epicmail-service/internal/mocks"
	"epicmail-service/internal/models"
	"epicmail-service/internal/repositories"
)

func setupGroupRouter(handler *GroupHandler) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Set("userID", 1)
		c.Next()
	})
	r.POST("/groups", handler.CreateGroup)
	r.GET("/groups", handler.ListGroups)
	r.PATCH("/groups/:group_id/name", handler.RenameGroup)
	r.DELETE("/groups/:group_id", handler.DeleteGroup)
	r.POST("/groups/:group_id/users", handler.AddMember)
	r.POST("/groups/:group_id/messages", handler.PostGroupMessage)
	r.GET("/groups/:group_id/messages", handler.GetGroupMessages)
	return r
}

func TestCreateGroupSuccess(t *testing.T) {
	groupRepo := new(mocks.GroupRepositoryMock)
	handler := NewGroupHandler(groupRepo, new(mocks.GroupMessageRepositoryMock), new(mocks.UserRepositoryMock), nil)
	router := setupGroupRouter(handler)

	groupRepo.On("CreateGroup", mock.Anything, 1, "devs", "admin").
		Return(models.Group{ID: 5, OwnerID: 1, Name: "devs", Role: "admin"}, nil).Once()

	body := bytes.NewBufferString(`{"name":"devs","role":"admin"}`)
	req := httptest.NewRequest(http.MethodPost, "/groups", body)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Contains(t, rec.Body.String(), `"owner_id":1`)
	groupRepo.AssertExpectations(t)
}

func TestCreateGroupInvalidBody(t *testing.T) {
	handler := NewGroupHandler(new(mocks.GroupRepositoryMock), new(mocks.GroupMessageRepositoryMock), new(mocks.UserRepositoryMock), nil)
	router := setupGroupRouter(handler)

	req := httptest.NewRequest(http.MethodPost, "/groups", bytes.NewBufferString(`{"name":5,"role":"admin"}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusExpectationFailed, rec.Code)
	assert.Contains(t, rec.Body.String(), "Group name should be a string of characters")
}

func TestListGroupsScopedToCaller(t *testing.T) {
	groupRepo := new(mocks.GroupRepositoryMock)
	handler := NewGroupHandler(groupRepo, new(mocks.GroupMessageRepositoryMock), new(mocks.UserRepositoryMock), nil)
	router := setupGroupRouter(handler)

	groupRepo.On("ListGroupsForUser", mock.Anything, 1).
		Return([]models.Group{{ID: 5, OwnerID: 1, Name: "devs"}}, nil).Once()

	req := httptest.NewRequest(http.MethodGet, "/groups", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	groupRepo.AssertExpectations(t)
}

func TestRenameGroupAsOwner(t *testing.T) {
	groupRepo := new(mocks.GroupRepositoryMock)
	handler := NewGroupHandler(groupRepo, new(mocks.GroupMessageRepositoryMock), new(mocks.UserRepositoryMock), nil)
	router := setupGroupRouter(handler)

	groupRepo.On("GetGroup", mock.Anything, 5).
		Return(models.Group{ID: 5, OwnerID: 1, Name: "devs"}, nil).Once()
	groupRepo.On("RenameGroup", mock.Anything, 5, "platform").Return(nil).Once()

	body := bytes.NewBufferString(`{"name":"platform"}`)
	req := httptest.NewRequest(http.MethodPatch, "/groups/5/name", body)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "platform")
	groupRepo.AssertExpectations(t)
}

func TestRenameGroupForbiddenForNonOwner(t *testing.T) {
	groupRepo := new(mocks.GroupRepositoryMock)
	handler := NewGroupHandler(groupRepo, new(mocks.GroupMessageRepositoryMock), new(mocks.UserRepositoryMock), nil)
	router := setupGroupRouter(handler)

	groupRepo.On("GetGroup", mock.Anything, 5).
		Return(models.Group{ID: 5, OwnerID: 2, Name: "devs"}, nil).Once()

	body := bytes.NewBufferString(`{"name":"platform"}`)
	req := httptest.NewRequest(http.MethodPatch, "/groups/5/name", body)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusForbidden, rec.Code)
	groupRepo.AssertNotCalled(t, "RenameGroup", mock.Anything, 5, "platform")
	groupRepo.AssertExpectations(t)
}

func TestRenameGroupNotFound(t *testing.T) {
	groupRepo := new(mocks.GroupRepositoryMock)
	handler := NewGroupHandler(groupRepo, new(mocks.GroupMessageRepositoryMock), new(mocks.UserRepositoryMock), nil)
	router := setupGroupRouter(handler)

	groupRepo.On("GetGroup", mock.Anything, 42).
		Return(models.Group{}, repositories.ErrGroupNotFound).Once()

	body := bytes.NewBufferString(`{"name":"platform"}`)
	req := httptest.NewRequest(http.MethodPatch, "/groups/42/name", body)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "Group with id 42 does not exist")
	groupRepo.AssertExpectations(t)
}

func TestDeleteGroupAsOwner(t *testing.T) {
	groupRepo := new(mocks.GroupRepositoryMock)
	handler := NewGroupHandler(groupRepo, new(mocks.GroupMessageRepositoryMock), new(mocks.UserRepositoryMock), nil)
	router := setupGroupRouter(handler)

	groupRepo.On("GetGroup", mock.Anything, 5).
		Return(models.Group{ID: 5, OwnerID: 1, Name: "devs"}, nil).Once()
	groupRepo.On("DeleteGroup", mock.Anything, 5).Return(nil).Once()

	req := httptest.NewRequest(http.MethodDelete, "/groups/5", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusNoContent, rec.Code)
	groupRepo.AssertExpectations(t)
}

func TestDeleteGroupForbiddenForNonOwner(t *testing.T) {
	groupRepo := new(mocks.GroupRepositoryMock)
	handler := NewGroupHandler(groupRepo, new(mocks.GroupMessageRepositoryMock), new(mocks.UserRepositoryMock), nil)
	router := setupGroupRouter(handler)

	groupRepo.On("GetGroup", mock.Anything, 5).
		Return(models.Group{ID: 5, OwnerID: 2, Name: "devs"}, nil).Once()

	req := httptest.NewRequest(http.MethodDelete, "/groups/5", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusForbidden, rec.Code)
	groupRepo.AssertNotCalled(t, "DeleteGroup", mock.Anything, 5)
	groupRepo.AssertExpectations(t)
}

func TestAddMemberAsOwner(t *testing.T) {
	groupRepo := new(mocks.GroupRepositoryMock)
	userRepo := new(mocks.UserRepositoryMock)
	handler := NewGroupHandler(groupRepo, new(mocks.GroupMessageRepositoryMock), userRepo, nil)
	router := setupGroupRouter(handler)

	groupRepo.On("GetGroup", mock.Anything, 5).
		Return(models.Group{ID: 5, OwnerID: 1, Name: "devs"}, nil).Once()
	userRepo.On("UserExists", mock.Anything, 3).Return(true, nil).Once()
	groupRepo.On("AddMember", mock.Anything, 5, 3, "member").
		Return(models.GroupMember{ID: 11, GroupID: 5, UserID: 3, UserRole: "member"}, nil).Once()

	body := bytes.NewBufferString(`{"userId":3,"role":"member"}`)
	req := httptest.NewRequest(http.MethodPost, "/groups/5/users", body)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code)
	groupRepo.AssertExpectations(t)
	userRepo.AssertExpectations(t)
}

func TestAddMemberDuplicate(t *testing.T) {
	groupRepo := new(mocks.GroupRepositoryMock)
	userRepo := new(mocks.UserRepositoryMock)
	handler := NewGroupHandler(groupRepo, new(mocks.GroupMessageRepositoryMock), userRepo, nil)
	router := setupGroupRouter(handler)

	groupRepo.On("GetGroup", mock.Anything, 5).
		Return(models.Group{ID: 5, OwnerID: 1, Name: "devs"}, nil).Once()
	userRepo.On("UserExists", mock.Anything, 3).Return(true, nil).Once()
	groupRepo.On("AddMember", mock.Anything, 5, 3, "member").
		Return(models.GroupMember{}, repositories.ErrDuplicateMember).Once()

	body := bytes.NewBufferString(`{"userId":3,"role":"member"}`)
	req := httptest.NewRequest(http.MethodPost, "/groups/5/users", body)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusConflict, rec.Code)
	groupRepo.AssertExpectations(t)
}

func TestPostGroupMessageAsMember(t *testing.T) {
	groupRepo := new(mocks.GroupRepositoryMock)
	messageRepo := new(mocks.GroupMessageRepositoryMock)
	handler := NewGroupHandler(groupRepo, messageRepo, new(mocks.UserRepositoryMock), nil)
	router := setupGroupRouter(handler)

	groupRepo.On("GetGroup", mock.Anything, 5).
		Return(models.Group{ID: 5, OwnerID: 2, Name: "devs"}, nil).Once()
	groupRepo.On("IsMember", mock.Anything, 5, 1).Return(true, nil).Once()
	messageRepo.On("CreateGroupMessage", mock.Anything, 5, 1, "standup", "notes").
		Return(models.GroupMessage{ID: 3, GroupID: 5, SenderID: 1, Subject: "standup", Body: "notes"}, nil).Once()

	body := bytes.NewBufferString(`{"subject":"standup","message":"notes"}`)
	req := httptest.NewRequest(http.MethodPost, "/groups/5/messages", body)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code)
	groupRepo.AssertExpectations(t)
	messageRepo.AssertExpectations(t)
}

func TestPostGroupMessageForbiddenForNonMember(t *testing.T) {
	groupRepo := new(mocks.GroupRepositoryMock)
	messageRepo := new(mocks.GroupMessageRepositoryMock)
	handler := NewGroupHandler(groupRepo, messageRepo, new(mocks.UserRepositoryMock), nil)
	router := setupGroupRouter(handler)

	groupRepo.On("GetGroup", mock.Anything, 5).
		Return(models.Group{ID: 5, OwnerID: 2, Name: "devs"}, nil).Once()
	groupRepo.On("IsMember", mock.Anything, 5, 1).Return(false, nil).Once()

	body := bytes.NewBufferString(`{"subject":"standup","message":"notes"}`)
	req := httptest.NewRequest(http.MethodPost, "/groups/5/messages", body)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusForbidden, rec.Code)
	messageRepo.AssertNotCalled(t, "CreateGroupMessage", mock.Anything, 5, 1, "standup", "notes")
	groupRepo.AssertExpectations(t)
}

func TestPostGroupMessageGroupNotFound(t *testing.T) {
	groupRepo := new(mocks.GroupRepositoryMock)
	messageRepo := new(mocks.GroupMessageRepositoryMock)
	handler := NewGroupHandler(groupRepo, messageRepo, new(mocks.UserRepositoryMock), nil)
	router := setupGroupRouter(handler)

	groupRepo.On("GetGroup", mock.Anything, 42).
		Return(models.Group{}, repositories.ErrGroupNotFound).Once()

	body := bytes.NewBufferString(`{"subject":"standup","message":"notes"}`)
	req := httptest.NewRequest(http.MethodPost, "/groups/42/messages", body)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "Group with id 42 does not exist")
	groupRepo.AssertNotCalled(t, "IsMember", mock.Anything, 42, 1)
	groupRepo.AssertExpectations(t)
}

func TestGetGroupMessagesGroupNotFound(t *testing.T) {
	groupRepo := new(mocks.GroupRepositoryMock)
	handler := NewGroupHandler(groupRepo, new(mocks.GroupMessageRepositoryMock), new(mocks.UserRepositoryMock), nil)
	router := setupGroupRouter(handler)

	groupRepo.On("GetGroup", mock.Anything, 42).
		Return(models.Group{}, repositories.ErrGroupNotFound).Once()

	req := httptest.NewRequest(http.MethodGet, "/groups/42/messages", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "Group with id 42 does not exist")
	groupRepo.AssertNotCalled(t, "IsMember", mock.Anything, 42, 1)
	groupRepo.AssertExpectations(t)
}

func TestGetGroupMessagesAsMember(t *testing.T) {
	groupRepo := new(mocks.GroupRepositoryMock)
	messageRepo := new(mocks.GroupMessageRepositoryMock)
	handler := NewGroupHandler(groupRepo, messageRepo, new(mocks.UserRepositoryMock), nil)
	router := setupGroupRouter(handler)

	groupRepo.On("GetGroup", mock.Anything, 5).
		Return(models.Group{ID: 5, OwnerID: 2, Name: "devs"}, nil).Once()
	groupRepo.On("IsMember", mock.Anything, 5, 1).Return(true, nil).Once()
	messageRepo.On("ListGroupMessages", mock.Anything, 5).
		Return([]models.GroupMessage{{ID: 3, GroupID: 5, SenderID: 2, Subject: "standup"}}, nil).Once()

	req := httptest.NewRequest(http.MethodGet, "/groups/5/messages", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	groupRepo.AssertExpectations(t)
	messageRepo.AssertExpectations(t)
}

func TestGroupRoutesInvalidID(t *testing.T) {
	handler := NewGroupHandler(new(mocks.GroupRepositoryMock), new(mocks.GroupMessageRepositoryMock), new(mocks.UserRepositoryMock), nil)
	router := setupGroupRouter(handler)

	req := httptest.NewRequest(http.MethodGet, "/groups/abc/messages", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
}
