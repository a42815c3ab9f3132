// Package messaging publishes application events to a message broker.
//
// The Publisher interface hides the broker. Drivers:
//
//   - kafka: segmentio/kafka-go writer, one per topic, keyed messages.
//   - nats: core NATS publish followed by a flush.
//   - nsq: go-nsq producer.
//   - google-pubsub: Pub/Sub v2 publisher, waits for the server id.
//   - memory: keeps messages in process; used by tests and local runs.
//   - noop: drops everything.
//
// Publishing is fire-and-report: the caller decides whether a failure matters.
package messaging
