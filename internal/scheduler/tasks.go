// Package scheduler runs background work through an asynq queue: the
// personalized audio pipeline runs off the request path so a slow
// synthesis or upload never blocks an HTTP response.
package scheduler

import (
	"encoding/json"

	"github.com/hibiken/asynq"
)

const TaskAudioAutomation = "audio.personalized.send"

type AudioAutomationPayload struct {
	LeadID string `json:"leadId"`
}

func NewAudioAutomationTask(payload AudioAutomationPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskAudioAutomation, data), nil
}

func ParseAudioAutomationPayload(task *asynq.Task) (AudioAutomationPayload, error) {
	var payload AudioAutomationPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return AudioAutomationPayload{}, err
	}
	return payload, nil
}
