package service

import "task_manager/internal/domain"

// EventPublisher fans task events out to live subscribers. Publish must not block.
type EventPublisher interface {
	Publish(ev domain.TaskEvent)
}

type noopPublisher struct{}

func (noopPublisher) Publish(domain.TaskEvent) {}
