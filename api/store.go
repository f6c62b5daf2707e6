package api

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

// TaskStore defines persistence operations for detection tasks.
type TaskStore interface {
	CreateTask(task *DetectionTask) error
	GetTask(id string) (*DetectionTask, error)
	UpdateTask(task *DetectionTask) error
	PushToQueue(taskID string) error
	PopFromQueue() (string, error)
}

// ErrTaskNotFound indicates the requested task doesn't exist in the store.
var ErrTaskNotFound = errors.New("task not found")

const queueKey = "detections:queue"

// RedisStore implements TaskStore using Redis as backend, exactly as the
// teacher's store does: one hash per task, one list as the work queue.
type RedisStore struct {
	client *redis.Client
}

func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

func (s *RedisStore) taskKey(id string) string {
	return fmt.Sprintf("detection:%s", id)
}

func (s *RedisStore) CreateTask(task *DetectionTask) error {
	data := serializeTask(task)
	return s.client.HSet(context.Background(), s.taskKey(task.ID), data).Err()
}

func (s *RedisStore) GetTask(id string) (*DetectionTask, error) {
	res, err := s.client.HGetAll(context.Background(), s.taskKey(id)).Result()
	if err != nil {
		return nil, err
	}
	if len(res) == 0 {
		return nil, ErrTaskNotFound
	}
	return deserializeTask(res)
}

func (s *RedisStore) UpdateTask(task *DetectionTask) error {
	data := serializeTask(task)
	return s.client.HSet(context.Background(), s.taskKey(task.ID), data).Err()
}

func (s *RedisStore) PushToQueue(taskID string) error {
	return s.client.LPush(context.Background(), queueKey, taskID).Err()
}

func (s *RedisStore) PopFromQueue() (string, error) {
	res, err := s.client.BRPop(context.Background(), 0, queueKey).Result()
	if err != nil {
		return "", err
	}
	if len(res) != 2 {
		return "", errors.New("unexpected response size from BRPOP")
	}
	return res[1], nil
}

func serializeTask(task *DetectionTask) map[string]interface{} {
	createdAt := task.CreatedAt.Format(time.RFC3339Nano)
	completedAt := ""
	if task.CompletedAt != nil {
		completedAt = task.CompletedAt.Format(time.RFC3339Nano)
	}

	return map[string]interface{}{
		"id":           task.ID,
		"status":       task.Status,
		"host":         task.Host,
		"port":         strconv.FormatUint(uint64(task.Port), 10),
		"protocol":     task.Protocol,
		"service":      task.Service,
		"banner":       task.Banner,
		"created_at":   createdAt,
		"completed_at": completedAt,
		"error":        task.Error,
	}
}

func deserializeTask(data map[string]string) (*DetectionTask, error) {
	var port uint64
	if raw, ok := data["port"]; ok && raw != "" {
		p, err := strconv.ParseUint(raw, 10, 16)
		if err != nil {
			return nil, fmt.Errorf("api: invalid stored port %q: %w", raw, err)
		}
		port = p
	}

	createdAt := time.Time{}
	if raw, ok := data["created_at"]; ok && raw != "" {
		t, err := time.Parse(time.RFC3339Nano, raw)
		if err != nil {
			return nil, err
		}
		createdAt = t
	}

	var completedAt *time.Time
	if raw, ok := data["completed_at"]; ok && raw != "" {
		t, err := time.Parse(time.RFC3339Nano, raw)
		if err != nil {
			return nil, err
		}
		completedAt = &t
	}

	return &DetectionTask{
		ID:          data["id"],
		Status:      data["status"],
		Host:        data["host"],
		Port:        uint16(port),
		Protocol:    data["protocol"],
		Service:     data["service"],
		Banner:      data["banner"],
		CreatedAt:   createdAt,
		CompletedAt: completedAt,
		Error:       data["error"],
	}, nil
}
