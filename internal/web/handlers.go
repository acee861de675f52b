package web

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/CyberBoyAyush/TuduAI-sub001/internal/storage"
)

const (
	maxContentSize = 1 << 20  // 1MB
	maxInputSize   = 10 << 10 // 10KB
	maxTitleSize   = 10 << 10 // 10KB
)

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// Auth handlers

type registerRequest struct {
	Email    string `json:"email"`
	Name     string `json:"name"`
	Password string `json:"password"`
}

func (s *Server) handleRegister(c *gin.Context) {
	var req registerRequest
	if err := c.BindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error":   err.Error(),
		})
		return
	}

	user, sess, err := s.auth.Register(req.Email, req.Name, req.Password)
	if err != nil {
		fail(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"token":   sess.Token,
		"user":    user,
	})
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (s *Server) handleLogin(c *gin.Context) {
	var req loginRequest
	if err := c.BindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error":   err.Error(),
		})
		return
	}

	user, sess, err := s.auth.Login(req.Email, req.Password)
	if err != nil {
		fail(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"token":   sess.Token,
		"user":    user,
	})
}

func (s *Server) handleMe(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"user":    currentUser(c),
	})
}

func (s *Server) handleLogout(c *gin.Context) {
	token := bearerToken(c.GetHeader("Authorization"))
	if err := s.auth.Logout(token); err != nil {
		fail(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Logged out",
	})
}

// Workspace handlers

func (s *Server) handleListWorkspaces(c *gin.Context) {
	user := currentUser(c)

	// Heal duplicate defaults before listing, like the app did on load
	if _, err := s.store.EnsureDefaultWorkspace(user.ID); err != nil {
		fail(c, err)
		return
	}

	workspaces, err := s.store.ListWorkspaces(user.ID)
	if err != nil {
		fail(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":    true,
		"workspaces": workspaces,
		"count":      len(workspaces),
	})
}

type workspaceRequest struct {
	Name string `json:"name"`
	Icon string `json:"icon"`
}

func (s *Server) handleCreateWorkspace(c *gin.Context) {
	user := currentUser(c)

	var req workspaceRequest
	if err := c.BindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error":   err.Error(),
		})
		return
	}
	if req.Name == "" {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error":   "workspace name required",
		})
		return
	}

	now := time.Now()
	ws := &storage.Workspace{
		ID:        storage.GenerateID(),
		UserID:    user.ID,
		Name:      req.Name,
		Icon:      req.Icon,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.store.CreateWorkspace(ws); err != nil {
		fail(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success":   true,
		"workspace": ws,
	})
}

func (s *Server) handleUpdateWorkspace(c *gin.Context) {
	ws, ok := s.ownedWorkspace(c)
	if !ok {
		return
	}

	var req workspaceRequest
	if err := c.BindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error":   err.Error(),
		})
		return
	}

	if req.Name != "" {
		ws.Name = req.Name
	}
	ws.Icon = req.Icon

	if err := s.store.UpdateWorkspace(ws); err != nil {
		fail(c, err)
		return
	}
	s.boards.invalidate(ws.ID)

	c.JSON(http.StatusOK, gin.H{
		"success":   true,
		"workspace": ws,
	})
}

func (s *Server) handleDeleteWorkspace(c *gin.Context) {
	ws, ok := s.ownedWorkspace(c)
	if !ok {
		return
	}

	if err := s.store.DeleteWorkspace(ws.ID); err != nil {
		fail(c, err)
		return
	}
	s.boards.invalidate(ws.ID)

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Workspace deleted",
	})
}

type memberRequest struct {
	Email string `json:"email"`
	Role  string `json:"role"`
}

func (s *Server) handleAddMember(c *gin.Context) {
	ws, ok := s.ownedWorkspace(c)
	if !ok {
		return
	}

	var req memberRequest
	if err := c.BindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error":   err.Error(),
		})
		return
	}

	// Only the two roles the schema knows about
	if req.Role != "" && req.Role != "member" && req.Role != "owner" {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error":   fmt.Sprintf("invalid role '%s'", req.Role),
		})
		return
	}

	member, err := s.store.GetUserByEmail(req.Email)
	if err != nil {
		fail(c, err)
		return
	}

	if err := s.store.AddMember(ws.ID, member.ID, req.Role); err != nil {
		fail(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"message": "Member added",
	})
}

func (s *Server) handleBoard(c *gin.Context) {
	wsID := c.Param("id")
	if !s.requireMembership(c, wsID) {
		return
	}

	if columns, ok := s.boards.get(wsID); ok {
		c.JSON(http.StatusOK, gin.H{
			"success": true,
			"columns": columns,
			"cached":  true,
		})
		return
	}

	tasks, err := s.store.ListTasks(wsID)
	if err != nil {
		fail(c, err)
		return
	}

	columns := buildBoard(tasks)
	s.boards.put(wsID, columns)

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"columns": columns,
	})
}

// ownedWorkspace loads the :id workspace and verifies the caller owns it
func (s *Server) ownedWorkspace(c *gin.Context) (*storage.Workspace, bool) {
	user := currentUser(c)

	ws, err := s.store.GetWorkspace(c.Param("id"))
	if err != nil {
		fail(c, err)
		return nil, false
	}
	if ws.UserID != user.ID {
		c.JSON(http.StatusForbidden, gin.H{
			"success": false,
			"error":   "only the workspace owner can do that",
		})
		return nil, false
	}
	return ws, true
}

// requireMembership verifies the caller can access the workspace
func (s *Server) requireMembership(c *gin.Context, workspaceID string) bool {
	user := currentUser(c)

	ok, err := s.store.IsMember(workspaceID, user.ID)
	if err != nil {
		fail(c, err)
		return false
	}
	if !ok {
		c.JSON(http.StatusForbidden, gin.H{
			"success": false,
			"error":   "not a member of this workspace",
		})
		return false
	}
	return true
}
