// Package events provides NATS event publishing for production-tracking-service
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
	"github.com/sirupsen/logrus"

	"production-tracking-service/internal/models"
)

const (
	StreamImports          = "IMPORTS"
	SubjectImportCompleted = "imports.completed"
)

// ImportCompletedEvent is published after every applied or previewed import
type ImportCompletedEvent struct {
	EventType            string    `json:"eventType"`
	Timestamp            time.Time `json:"timestamp"`
	RunID                string    `json:"runId"`
	Kind                 string    `json:"kind"`
	Status               string    `json:"status"`
	Filename             string    `json:"filename"`
	Sheet                string    `json:"sheet"`
	ImportedUnique       int       `json:"importedUnique,omitempty"`
	POsEncontrados       int       `json:"posEncontrados,omitempty"`
	LineasActualizadas   int       `json:"lineasActualizadas,omitempty"`
	MuestrasActualizadas int       `json:"muestrasActualizadas,omitempty"`
	Nuevos               int       `json:"nuevos"`
	Modificados          int       `json:"modificados"`
	SinCambios           int       `json:"sinCambios"`
	Avisos               int       `json:"avisos"`
	Errores              int       `json:"errores"`
	SourceURL            string    `json:"sourceUrl,omitempty"`
}

// NewImportCompletedEvent summarises an import run
func NewImportCompletedEvent(run *models.ImportRun) ImportCompletedEvent {
	return ImportCompletedEvent{
		EventType:            SubjectImportCompleted,
		Timestamp:            time.Now().UTC(),
		RunID:                run.ID.String(),
		Kind:                 string(run.Kind),
		Status:               string(run.Status),
		Filename:             run.Filename,
		Sheet:                run.Sheet,
		ImportedUnique:       run.ImportedUnique,
		POsEncontrados:       run.POsEncontrados,
		LineasActualizadas:   run.LineasActualizadas,
		MuestrasActualizadas: run.MuestrasActualizadas,
		Nuevos:               run.Nuevos,
		Modificados:          run.Modificados,
		SinCambios:           run.SinCambios,
		Avisos:               len(run.Avisos),
		Errores:              len(run.Errores),
		SourceURL:            run.SourceURL,
	}
}

// Publisher announces finished imports
type Publisher interface {
	PublishImportCompleted(ctx context.Context, run *models.ImportRun) error
}

// streamPublisher is the subset of jetstream.JetStream used for publishing
type streamPublisher interface {
	Publish(ctx context.Context, subject string, payload []byte, opts ...jetstream.PublishOpt) (*jetstream.PubAck, error)
}

// ImportEventPublisher publishes import events to NATS JetStream
type ImportEventPublisher struct {
	nc     *nats.Conn
	js     streamPublisher
	logger *logrus.Entry
}

// NewImportEventPublisher connects to NATS and ensures the imports stream exists
func NewImportEventPublisher(natsURL string, logger *logrus.Logger) (*ImportEventPublisher, error) {
	if natsURL == "" {
		return nil, fmt.Errorf("NATS URL is required")
	}

	log := logger
	if log == nil {
		log = logrus.StandardLogger()
	}
	entry := log.WithField("component", "import-events")

	nc, err := nats.Connect(natsURL,
		nats.Name("production-tracking-service-publisher"),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2*time.Second),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			entry.WithField("url", nc.ConnectedUrl()).Info("Reconnected to NATS")
		}),
		nats.DisconnectErrHandler(func(nc *nats.Conn, err error) {
			entry.WithError(err).Warn("Disconnected from NATS")
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}

	js, err := jetstream.New(nc)
	if err != nil {
		nc.Close()
		return nil, fmt.Errorf("failed to create JetStream context: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	_, err = js.CreateOrUpdateStream(ctx, jetstream.StreamConfig{
		Name:      StreamImports,
		Subjects:  []string{"imports.>"},
		Retention: jetstream.LimitsPolicy,
		MaxAge:    24 * time.Hour * 30,
		Storage:   jetstream.FileStorage,
		Replicas:  1,
	})
	if err != nil {
		entry.WithError(err).Warn("Failed to ensure imports stream exists")
	}

	return &ImportEventPublisher{nc: nc, js: js, logger: entry}, nil
}

// PublishImportCompleted publishes an imports.completed event.
// The run id is the message id so redeliveries are dropped by the stream.
func (p *ImportEventPublisher) PublishImportCompleted(ctx context.Context, run *models.ImportRun) error {
	event := NewImportCompletedEvent(run)
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	if _, err := p.js.Publish(ctx, SubjectImportCompleted, data, jetstream.WithMsgID(event.RunID)); err != nil {
		p.logger.WithFields(logrus.Fields{
			"runId": event.RunID,
			"kind":  event.Kind,
		}).WithError(err).Error("Failed to publish imports.completed event")
		return err
	}

	p.logger.WithFields(logrus.Fields{
		"runId":   event.RunID,
		"kind":    event.Kind,
		"status":  event.Status,
		"errores": event.Errores,
	}).Info("Published imports.completed event")
	return nil
}

func (p *ImportEventPublisher) Close() {
	if p.nc != nil {
		p.nc.Close()
	}
}

// NoopPublisher is used when NATS is not configured
type NoopPublisher struct{}

func (NoopPublisher) PublishImportCompleted(ctx context.Context, run *models.ImportRun) error {
	return nil
}
