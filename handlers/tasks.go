package handlers

import (
	"crypto/subtle"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"student/models"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// TaskDispatcher schedules a round in the background and returns its run id
type TaskDispatcher interface {
	Dispatch(req models.TaskRequest) string
}

// TaskHandler serves the evaluator webhook
type TaskHandler struct {
	secret     string
	dispatcher TaskDispatcher
	logger     logrus.FieldLogger
}

func NewTaskHandler(secret string, dispatcher TaskDispatcher, logger logrus.FieldLogger) *TaskHandler {
	return &TaskHandler{secret: secret, dispatcher: dispatcher, logger: logger}
}

// ReceiveTask handles POST /student-task and POST /api/tasks.
// Every outcome except syntactically invalid JSON is answered with 200:
// the secret is checked first, then the round is classified, and only then
// are the remaining fields read, leniently.
func (h *TaskHandler) ReceiveTask(c *gin.Context) {
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		c.JSON(http.StatusBadRequest, models.APIResponse{
			Success: false,
			Message: "Failed to read request body",
			Error:   err.Error(),
		})
		return
	}

	var raw any
	if err := json.Unmarshal(body, &raw); err != nil {
		c.JSON(http.StatusBadRequest, models.APIResponse{
			Success: false,
			Message: "Invalid request body",
			Error:   err.Error(),
		})
		return
	}
	data, _ := raw.(map[string]any)

	task := stringField(data, "task")
	secret, _ := data["secret"].(string)
	if !h.validSecret(secret) {
		h.logger.WithField("task", task).Warn("Rejected task with invalid secret")
		c.JSON(http.StatusOK, models.TaskRejected{Error: "Invalid secret"})
		return
	}

	round, ok := actionableRound(data["round"])
	if !ok {
		h.logger.WithFields(logrus.Fields{"task": task, "round": data["round"]}).Info("Task received without actionable round")
		delete(data, "secret")
		if data == nil {
			data = map[string]any{}
		}
		c.JSON(http.StatusOK, models.TaskEcho{Message: "Task received", Data: data})
		return
	}

	req := taskFromMap(data, round)
	req.Secret = secret
	runID := h.dispatcher.Dispatch(req)
	c.JSON(http.StatusOK, models.TaskAccepted{
		Message: fmt.Sprintf("Round %d tasks initiated", req.Round),
		Status:  "processing",
		RunID:   runID,
	})
}

// validSecret compares in constant time; an unset secret accepts nothing
func (h *TaskHandler) validSecret(given string) bool {
	if h.secret == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(given), []byte(h.secret)) == 1
}

// actionableRound accepts a JSON number equal to 1 or 2
func actionableRound(v any) (int, bool) {
	n, ok := v.(float64)
	if !ok {
		return 0, false
	}
	switch n {
	case models.RoundCreate:
		return models.RoundCreate, true
	case models.RoundRevise:
		return models.RoundRevise, true
	}
	return 0, false
}

// taskFromMap reads the optional fields, dropping values of the wrong shape
func taskFromMap(data map[string]any, round int) models.TaskRequest {
	req := models.TaskRequest{
		Task:          stringField(data, "task"),
		Round:         round,
		Nonce:         data["nonce"],
		Brief:         stringField(data, "brief"),
	}
	req.EvaluationURL, _ = data["evaluation_url"].(string)

	switch checks := data["checks"].(type) {
	case string:
		if checks != "" {
			req.Checks = []string{checks}
		}
	case []any:
		for _, check := range checks {
			if s, ok := check.(string); ok && s != "" {
				req.Checks = append(req.Checks, s)
			}
		}
	}

	if attachments, ok := data["attachments"].([]any); ok {
		for _, item := range attachments {
			att, ok := item.(map[string]any)
			if !ok {
				continue
			}
			req.Attachments = append(req.Attachments, models.Attachment{
				Name: stringField(att, "name"),
				URL:  stringField(att, "url"),
			})
		}
	}

	return req
}

// stringField returns strings as-is and renders numbers and booleans; anything else is ""
func stringField(data map[string]any, key string) string {
	switch v := data[key].(type) {
	case string:
		return v
	case float64, bool:
		return fmt.Sprint(v)
	default:
		return ""
	}
}
