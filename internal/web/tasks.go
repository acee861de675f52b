package web

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/CyberBoyAyush/TuduAI-sub001/internal/storage"
)

// Task handlers

func (s *Server) handleListTasks(c *gin.Context) {
	wsID := c.Param("id")
	if !s.requireMembership(c, wsID) {
		return
	}

	tasks, err := s.store.ListTasks(wsID)
	if err != nil {
		fail(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"tasks":   tasks,
		"count":   len(tasks),
	})
}

type taskRequest struct {
	Title   string     `json:"title"`
	Notes   string     `json:"notes"`
	DueDate *time.Time `json:"due_date"`
	Urgency float64    `json:"urgency"`
	Column  string     `json:"column"`
}

func (s *Server) handleCreateTask(c *gin.Context) {
	user := currentUser(c)
	wsID := c.Param("id")
	if !s.requireMembership(c, wsID) {
		return
	}

	var req taskRequest
	if err := c.BindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error":   err.Error(),
		})
		return
	}
	if req.Title == "" {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error":   "task title required",
		})
		return
	}
	if len(req.Title) > maxTitleSize {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error":   "title exceeds maximum size of 10KB",
		})
		return
	}
	if len(req.Notes) > maxContentSize {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error":   "notes exceed maximum size of 1MB",
		})
		return
	}
	if req.Column != "" && !validColumn(req.Column) {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error":   "unknown column",
		})
		return
	}

	urgency := req.Urgency
	if urgency == 0 {
		urgency = 3
	}

	now := time.Now()
	task := &storage.Task{
		ID:          storage.GenerateID(),
		WorkspaceID: wsID,
		UserID:      user.ID,
		Title:       req.Title,
		Notes:       req.Notes,
		DueDate:     req.DueDate,
		Urgency:     urgency,
		Column:      req.Column,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.store.CreateTask(task); err != nil {
		fail(c, err)
		return
	}
	s.boards.invalidate(wsID)

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"task":    task,
	})
}

func (s *Server) handleGetTask(c *gin.Context) {
	task, ok := s.taskForUser(c)
	if !ok {
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"task":    task,
	})
}

// updateTaskRequest distinguishes absent fields from explicit values
// so a partial update leaves untouched fields alone. due_date is raw
// JSON: absent keeps the current date, null clears it.
type updateTaskRequest struct {
	Title   *string         `json:"title"`
	Notes   *string         `json:"notes"`
	DueDate json.RawMessage `json:"due_date"`
	Urgency *float64        `json:"urgency"`
}

func (s *Server) handleUpdateTask(c *gin.Context) {
	task, ok := s.taskForUser(c)
	if !ok {
		return
	}

	var req updateTaskRequest
	if err := c.BindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error":   err.Error(),
		})
		return
	}

	if req.Title != nil {
		if *req.Title == "" {
			c.JSON(http.StatusBadRequest, gin.H{
				"success": false,
				"error":   "task title required",
			})
			return
		}
		if len(*req.Title) > maxTitleSize {
			c.JSON(http.StatusBadRequest, gin.H{
				"success": false,
				"error":   "title exceeds maximum size of 10KB",
			})
			return
		}
		task.Title = *req.Title
	}
	if req.Notes != nil {
		if len(*req.Notes) > maxContentSize {
			c.JSON(http.StatusBadRequest, gin.H{
				"success": false,
				"error":   "notes exceed maximum size of 1MB",
			})
			return
		}
		task.Notes = *req.Notes
	}
	if req.Urgency != nil {
		task.Urgency = *req.Urgency
	}
	if len(req.DueDate) > 0 {
		if string(req.DueDate) == "null" {
			task.DueDate = nil
		} else {
			var due time.Time
			if err := json.Unmarshal(req.DueDate, &due); err != nil {
				c.JSON(http.StatusBadRequest, gin.H{
					"success": false,
					"error":   "invalid due_date",
				})
				return
			}
			task.DueDate = &due
		}
	}

	if err := s.store.UpdateTask(task); err != nil {
		fail(c, err)
		return
	}
	s.boards.invalidate(task.WorkspaceID)

	updated, err := s.store.GetTask(task.ID)
	if err != nil {
		fail(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"task":    updated,
	})
}

func (s *Server) handleDeleteTask(c *gin.Context) {
	task, ok := s.taskForUser(c)
	if !ok {
		return
	}

	if err := s.store.DeleteTask(task.ID); err != nil {
		fail(c, err)
		return
	}
	s.boards.invalidate(task.WorkspaceID)

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Task deleted",
	})
}

type moveRequest struct {
	Column   string `json:"column"`
	Position int    `json:"position"`
}

func (s *Server) handleMoveTask(c *gin.Context) {
	task, ok := s.taskForUser(c)
	if !ok {
		return
	}

	var req moveRequest
	if err := c.BindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error":   err.Error(),
		})
		return
	}
	if !validColumn(req.Column) {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error":   "unknown column",
		})
		return
	}

	if err := s.store.MoveTask(task.ID, req.Column, req.Position); err != nil {
		fail(c, err)
		return
	}
	s.boards.invalidate(task.WorkspaceID)

	moved, err := s.store.GetTask(task.ID)
	if err != nil {
		fail(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"task":    moved,
	})
}

type completeRequest struct {
	Completed bool `json:"completed"`
}

func (s *Server) handleCompleteTask(c *gin.Context) {
	task, ok := s.taskForUser(c)
	if !ok {
		return
	}

	var req completeRequest
	if err := c.BindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error":   err.Error(),
		})
		return
	}

	updated, err := s.store.SetTaskCompleted(task.ID, req.Completed)
	if err != nil {
		fail(c, err)
		return
	}
	s.boards.invalidate(task.WorkspaceID)

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"task":    updated,
	})
}

// Parse handler

type parseRequest struct {
	Input string `json:"input"`
}

func (s *Server) handleParse(c *gin.Context) {
	var req parseRequest
	if err := c.BindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error":   err.Error(),
		})
		return
	}
	if req.Input == "" {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error":   "input required",
		})
		return
	}
	if len(req.Input) > maxInputSize {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error":   "input exceeds maximum size of 10KB",
		})
		return
	}

	parsed, err := s.parser.Parse(c.Request.Context(), req.Input)
	if err != nil {
		fail(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"parsed":  parsed,
	})
}

// Comment handlers

func (s *Server) handleListComments(c *gin.Context) {
	task, ok := s.taskForUser(c)
	if !ok {
		return
	}

	comments, err := s.store.ListComments(task.ID)
	if err != nil {
		fail(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":  true,
		"comments": comments,
		"count":    len(comments),
	})
}

type commentRequest struct {
	Content string `json:"content"`
}

func (s *Server) handleCreateComment(c *gin.Context) {
	user := currentUser(c)
	task, ok := s.taskForUser(c)
	if !ok {
		return
	}

	var req commentRequest
	if err := c.BindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error":   err.Error(),
		})
		return
	}
	if req.Content == "" {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error":   "comment content required",
		})
		return
	}
	if len(req.Content) > maxContentSize {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error":   "content exceeds maximum size of 1MB",
		})
		return
	}

	comment := &storage.Comment{
		ID:        storage.GenerateID(),
		TaskID:    task.ID,
		UserID:    user.ID,
		Content:   req.Content,
		CreatedAt: time.Now(),
	}
	if err := s.store.CreateComment(comment); err != nil {
		fail(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"comment": comment,
	})
}

func (s *Server) handleDeleteComment(c *gin.Context) {
	comment, err := s.store.GetComment(c.Param("id"))
	if err != nil {
		fail(c, err)
		return
	}
	if _, ok := s.memberTask(c, comment.TaskID); !ok {
		return
	}

	if err := s.store.DeleteComment(comment.ID); err != nil {
		fail(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Comment deleted",
	})
}

// Reminder handlers

func (s *Server) handleListReminders(c *gin.Context) {
	task, ok := s.taskForUser(c)
	if !ok {
		return
	}

	reminders, err := s.store.ListReminders(task.ID)
	if err != nil {
		fail(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":   true,
		"reminders": reminders,
		"count":     len(reminders),
	})
}

type reminderRequest struct {
	RemindAt time.Time `json:"remind_at"`
}

func (s *Server) handleCreateReminder(c *gin.Context) {
	user := currentUser(c)
	task, ok := s.taskForUser(c)
	if !ok {
		return
	}

	var req reminderRequest
	if err := c.BindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error":   err.Error(),
		})
		return
	}
	if req.RemindAt.IsZero() {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error":   "remind_at required",
		})
		return
	}

	reminder := &storage.Reminder{
		ID:        storage.GenerateID(),
		TaskID:    task.ID,
		UserID:    user.ID,
		RemindAt:  req.RemindAt,
		CreatedAt: time.Now(),
	}
	if err := s.store.CreateReminder(reminder); err != nil {
		fail(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success":  true,
		"reminder": reminder,
	})
}

func (s *Server) handleDeleteReminder(c *gin.Context) {
	reminder, err := s.store.GetReminder(c.Param("id"))
	if err != nil {
		fail(c, err)
		return
	}
	if _, ok := s.memberTask(c, reminder.TaskID); !ok {
		return
	}

	if err := s.store.DeleteReminder(reminder.ID); err != nil {
		fail(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Reminder deleted",
	})
}

// taskForUser loads the :id task and verifies workspace membership
func (s *Server) taskForUser(c *gin.Context) (*storage.Task, bool) {
	return s.memberTask(c, c.Param("id"))
}

// memberTask loads a task by ID and verifies workspace membership
func (s *Server) memberTask(c *gin.Context, taskID string) (*storage.Task, bool) {
	task, err := s.store.GetTask(taskID)
	if err != nil {
		fail(c, err)
		return nil, false
	}
	if !s.requireMembership(c, task.WorkspaceID) {
		return nil, false
	}
	return task, true
}

func validColumn(name string) bool {
	for _, col := range storage.Columns {
		if col == name {
			return true
		}
	}
	return false
}
