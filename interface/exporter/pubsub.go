package exporter

import (
	"context"
	"encoding/json"
	"fmt"

	"cloud.google.com/go/pubsub"
	"github.com/airbusgeo/scene-exporter/common"
	"github.com/airbusgeo/scene-exporter/dispatcher"
	"github.com/airbusgeo/scene-exporter/service"
	"google.golang.org/api/option"
)

// PubSub publishes the export tasks on a topic, as JSON-encoded common.ExportTaskPayload.
// It implements dispatcher.Exporter (a downstream worker runs the export)
// and dispatcher.Notifier.
type PubSub struct {
	client *pubsub.Client
	topic  *pubsub.Topic
}

// NewPubSub connects to the topic. The topic must exist.
func NewPubSub(ctx context.Context, project, topic string, opts ...option.ClientOption) (*PubSub, error) {
	client, err := pubsub.NewClient(ctx, project, opts...)
	if err != nil {
		return nil, fmt.Errorf("NewPubSub: %w", err)
	}
	t := client.Topic(topic)
	ok, err := t.Exists(ctx)
	if err != nil {
		client.Close()
		return nil, fmt.Errorf("NewPubSub.Exists: %w", err)
	}
	if !ok {
		client.Close()
		return nil, fmt.Errorf("NewPubSub: topic %s/%s does not exist", project, topic)
	}
	return &PubSub{client: client, topic: t}, nil
}

// Export implements dispatcher.Exporter. It returns the id of the published message.
func (p *PubSub) Export(ctx context.Context, task dispatcher.ExportTask) (string, error) {
	payload, err := task.Payload(common.StatusSUBMITTED, "", "")
	if err != nil {
		return "", fmt.Errorf("Export.%w", err)
	}
	id, err := p.publish(ctx, payload)
	if err != nil {
		return "", fmt.Errorf("Export.%w", err)
	}
	return "pubsub/" + id, nil
}

// Notify implements dispatcher.Notifier
func (p *PubSub) Notify(ctx context.Context, payload common.ExportTaskPayload) error {
	if _, err := p.publish(ctx, payload); err != nil {
		return fmt.Errorf("Notify.%w", err)
	}
	return nil
}

func (p *PubSub) publish(ctx context.Context, payload common.ExportTaskPayload) (string, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("publish.Marshal: %w", err)
	}
	res := p.topic.Publish(ctx, &pubsub.Message{
		Data: data,
		Attributes: map[string]string{
			common.TagBand:       payload.Band,
			common.TagExportName: payload.Name,
			"status":             payload.Status.String(),
		},
	})
	id, err := res.Get(ctx)
	if err != nil {
		return "", service.MakeTemporary(fmt.Errorf("publish[%s]: %w", payload.Name, err))
	}
	return id, nil
}

// Stop flushes the pending messages and closes the connection
func (p *PubSub) Stop() {
	p.topic.Stop()
	p.client.Close()
}
