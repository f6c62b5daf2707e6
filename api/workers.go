package api

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/corvidscan/svcprobe/scanner"
)

// StartWorkers launches background goroutines that drain the detection
// queue and run the probe engine against each task's target. sink may be
// nil, in which case no metrics are exported.
func StartWorkers(store TaskStore, logger *slog.Logger, sink *MetricsSink, numWorkers int) {
	for i := 0; i < numWorkers; i++ {
		go workerLoop(store, logger, sink)
	}
}

func workerLoop(store TaskStore, logger *slog.Logger, sink *MetricsSink) {
	for {
		taskID, err := store.PopFromQueue()
		if err != nil {
			logger.Error("worker: failed to pop task", "error", err)
			time.Sleep(time.Second)
			continue
		}

		task, err := store.GetTask(taskID)
		if err != nil {
			if err == ErrTaskNotFound {
				logger.Warn("worker: task disappeared", "task_id", taskID)
				continue
			}
			logger.Error("worker: failed to load task", "task_id", taskID, "error", err)
			continue
		}

		task.Status = "running"
		task.Error = ""
		task.CompletedAt = nil
		if err := store.UpdateTask(task); err != nil {
			logger.Error("worker: failed to mark task running", "task_id", taskID, "error", err)
			continue
		}

		protocol, ok := parseProtocol(task.Protocol)
		if !ok {
			failTask(task, store, logger, fmt.Errorf("unsupported protocol %q", task.Protocol))
			continue
		}

		addr := fmt.Sprintf("%s:%d", task.Host, task.Port)
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		start := time.Now()
		svc, found := scanner.Detect(ctx, addr, protocol)
		latency := time.Since(start)
		cancel()

		task.Status = "completed"
		now := time.Now().UTC()
		task.CompletedAt = &now
		if found {
			task.Service = svc.Name()
		} else {
			task.Service = ""
		}

		if err := store.UpdateTask(task); err != nil {
			logger.Error("worker: failed to persist completed task", "task_id", task.ID, "error", err)
		}

		sink.RecordDetection(task, latency)
	}
}

func failTask(task *DetectionTask, store TaskStore, logger *slog.Logger, err error) {
	logger.Error("worker: task failed", "task_id", task.ID, "error", err)
	task.Status = "failed"
	task.Error = err.Error()
	now := time.Now().UTC()
	task.CompletedAt = &now
	if updateErr := store.UpdateTask(task); updateErr != nil {
		logger.Error("worker: failed to persist failed task", "task_id", task.ID, "error", updateErr)
	}
}
