package web

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/CyberBoyAyush/TuduAI-sub001/internal/auth"
	"github.com/CyberBoyAyush/TuduAI-sub001/internal/nlparse"
	"github.com/CyberBoyAyush/TuduAI-sub001/internal/storage"
)

// Parser turns a free-text task description into structured fields
type Parser interface {
	Parse(ctx context.Context, input string) (*nlparse.ParsedTask, error)
}

// Server is the TuduAI API server
type Server struct {
	store  *storage.Store
	auth   *auth.Service
	parser Parser
	boards *boardCache
	router *gin.Engine
}

// NewServer creates the API server and registers all routes
func NewServer(store *storage.Store, authSvc *auth.Service, parser Parser) *Server {
	router := gin.Default()

	s := &Server{
		store:  store,
		auth:   authSvc,
		parser: parser,
		boards: newBoardCache(boardCacheTTL),
		router: router,
	}

	router.GET("/healthz", s.handleHealth)

	api := router.Group("/api")
	{
		api.POST("/auth/register", s.handleRegister)
		api.POST("/auth/login", s.handleLogin)

		authed := api.Group("")
		authed.Use(s.requireAuth)
		{
			authed.GET("/auth/me", s.handleMe)
			authed.POST("/auth/logout", s.handleLogout)

			authed.GET("/workspaces", s.handleListWorkspaces)
			authed.POST("/workspaces", s.handleCreateWorkspace)
			authed.PUT("/workspaces/:id", s.handleUpdateWorkspace)
			authed.DELETE("/workspaces/:id", s.handleDeleteWorkspace)
			authed.POST("/workspaces/:id/members", s.handleAddMember)
			authed.GET("/workspaces/:id/board", s.handleBoard)
			authed.GET("/workspaces/:id/tasks", s.handleListTasks)
			authed.POST("/workspaces/:id/tasks", s.handleCreateTask)

			authed.GET("/tasks/:id", s.handleGetTask)
			authed.PUT("/tasks/:id", s.handleUpdateTask)
			authed.DELETE("/tasks/:id", s.handleDeleteTask)
			authed.POST("/tasks/:id/move", s.handleMoveTask)
			authed.POST("/tasks/:id/complete", s.handleCompleteTask)

			authed.POST("/parse", s.handleParse)

			authed.GET("/tasks/:id/comments", s.handleListComments)
			authed.POST("/tasks/:id/comments", s.handleCreateComment)
			authed.DELETE("/comments/:id", s.handleDeleteComment)

			authed.GET("/tasks/:id/reminders", s.handleListReminders)
			authed.POST("/tasks/:id/reminders", s.handleCreateReminder)
			authed.DELETE("/reminders/:id", s.handleDeleteReminder)
		}
	}

	return s
}

// Run starts the API server
func (s *Server) Run(addr string) error {
	return s.router.Run(addr)
}

// RunContext starts the API server and drains in-flight requests when
// the context is cancelled.
func (s *Server) RunContext(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:    addr,
		Handler: s.router,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}

	if err := <-errCh; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
