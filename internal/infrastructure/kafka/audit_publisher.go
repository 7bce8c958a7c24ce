package kafka

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/IBM/sarama"

	"github.com/jhoicas/distribucion-api/internal/application/distribution"
	"github.com/jhoicas/distribucion-api/internal/domain/entity"
	"github.com/jhoicas/distribucion-api/pkg/logger"
)

// Ensure AuditPublisher implements distribution.AuditSink.
var _ distribution.AuditSink = (*AuditPublisher)(nil)

// AuditPublisher publica entradas de auditoría como eventos JSON en un topic
// de Kafka. Productor síncrono e idempotente: acks de todas las réplicas y
// reintentos sin duplicar mensajes.
type AuditPublisher struct {
	producer sarama.SyncProducer
	topic    string
	log      *logger.Logger
}

// NewAuditPublisher construye el publicador contra los brokers dados.
func NewAuditPublisher(brokers []string, topic string, log *logger.Logger) (*AuditPublisher, error) {
	cfg := sarama.NewConfig()
	cfg.Producer.RequiredAcks = sarama.WaitForAll
	cfg.Producer.Retry.Max = 5
	cfg.Producer.Return.Successes = true
	cfg.Producer.Compression = sarama.CompressionSnappy
	cfg.Producer.Idempotent = true
	cfg.Net.MaxOpenRequests = 1 // requerido por el modo idempotente

	producer, err := sarama.NewSyncProducer(brokers, cfg)
	if err != nil {
		return nil, fmt.Errorf("crear productor kafka: %w", err)
	}
	return &AuditPublisher{producer: producer, topic: topic, log: log}, nil
}

// auditEvent forma serializada del evento de auditoría.
type auditEvent struct {
	ID        string          `json:"id"`
	TenantID  string          `json:"tenant_id"`
	ActorID   string          `json:"actor_id"`
	Action    string          `json:"action"`
	Entity    string          `json:"entity"`
	RecordID  string          `json:"record_id"`
	Payload   json.RawMessage `json:"payload,omitempty"`
	IPAddress string          `json:"ip_address,omitempty"`
	UserAgent string          `json:"user_agent,omitempty"`
	CreatedAt string          `json:"created_at"`
}

// Publish envía la entrada al topic, con el tenant como key para mantener el
// orden por tienda.
func (p *AuditPublisher) Publish(_ context.Context, entry *entity.AuditLog) error {
	data, err := json.Marshal(auditEvent{
		ID:        entry.ID,
		TenantID:  entry.TenantID,
		ActorID:   entry.ActorID,
		Action:    entry.Action,
		Entity:    entry.Entity,
		RecordID:  entry.RecordID,
		Payload:   entry.Payload,
		IPAddress: entry.IPAddress,
		UserAgent: entry.UserAgent,
		CreatedAt: entry.CreatedAt.UTC().Format("2006-01-02T15:04:05.000Z07:00"),
	})
	if err != nil {
		return fmt.Errorf("serializar evento de auditoría: %w", err)
	}
	partition, offset, err := p.producer.SendMessage(&sarama.ProducerMessage{
		Topic: p.topic,
		Key:   sarama.StringEncoder(entry.TenantID),
		Value: sarama.ByteEncoder(data),
	})
	if err != nil {
		return fmt.Errorf("enviar evento de auditoría: %w", err)
	}
	p.log.Debug().
		Str("topic", p.topic).
		Int32("partition", partition).
		Int64("offset", offset).
		Str("action", entry.Action).
		Msg("evento de auditoría publicado")
	return nil
}

// Close cierra el productor.
func (p *AuditPublisher) Close() error {
	if err := p.producer.Close(); err != nil {
		return fmt.Errorf("cerrar productor kafka: %w", err)
	}
	return nil
}
