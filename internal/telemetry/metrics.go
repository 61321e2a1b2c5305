package telemetry

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Metrics holds all application metrics
type Metrics struct {
	RequestCounter     metric.Int64Counter
	RequestDuration    metric.Float64Histogram
	DocumentsIngested  metric.Int64Counter
	ChunksStored       metric.Int64Counter
	EmbeddingDuration  metric.Float64Histogram
	CompletionDuration metric.Float64Histogram
}

// InitMetrics initializes all application metrics
func InitMetrics() (*Metrics, error) {
	meter := otel.Meter("local-llm-chatbot")

	requestCounter, err := meter.Int64Counter(
		"http.requests.total",
		metric.WithDescription("Total HTTP requests"),
	)
	if err != nil {
		return nil, err
	}

	requestDuration, err := meter.Float64Histogram(
		"http.request.duration",
		metric.WithDescription("HTTP request duration in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, err
	}

	documentsIngested, err := meter.Int64Counter(
		"rag.documents.ingested",
		metric.WithDescription("Total documents added to the knowledge base"),
	)
	if err != nil {
		return nil, err
	}

	chunksStored, err := meter.Int64Counter(
		"rag.chunks.stored",
		metric.WithDescription("Total chunks inserted into the vector store"),
	)
	if err != nil {
		return nil, err
	}

	embeddingDuration, err := meter.Float64Histogram(
		"ai.embedding.duration",
		metric.WithDescription("Embedding call duration in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, err
	}

	completionDuration, err := meter.Float64Histogram(
		"ai.completion.duration",
		metric.WithDescription("Chat completion duration in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, err
	}

	return &Metrics{
		RequestCounter:     requestCounter,
		RequestDuration:    requestDuration,
		DocumentsIngested:  documentsIngested,
		ChunksStored:       chunksStored,
		EmbeddingDuration:  embeddingDuration,
		CompletionDuration: completionDuration,
	}, nil
}

// RecordRequest records HTTP request metrics
func (m *Metrics) RecordRequest(method, path, status string, duration float64) {
	attrs := []attribute.KeyValue{
		attribute.String("http.method", method),
		attribute.String("http.path", path),
		attribute.String("http.status", status),
	}

	m.RequestCounter.Add(context.Background(), 1, metric.WithAttributes(attrs...))
	m.RequestDuration.Record(context.Background(), duration, metric.WithAttributes(attrs...))
}

// RecordIngest records document ingest metrics
func (m *Metrics) RecordIngest(fileType string, chunks int64) {
	attrs := []attribute.KeyValue{
		attribute.String("file.type", fileType),
	}

	m.DocumentsIngested.Add(context.Background(), 1, metric.WithAttributes(attrs...))
	m.ChunksStored.Add(context.Background(), chunks, metric.WithAttributes(attrs...))
}

// RecordEmbedding records embedding call duration
func (m *Metrics) RecordEmbedding(model string, duration float64) {
	m.EmbeddingDuration.Record(context.Background(), duration,
		metric.WithAttributes(attribute.String("ai.model", model)))
}

// RecordCompletion records chat completion duration
func (m *Metrics) RecordCompletion(model string, duration float64) {
	m.CompletionDuration.Record(context.Background(), duration,
		metric.WithAttributes(attribute.String("ai.model", model)))
}
