package app

import (
	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/cafepos/internal/messaging/kafka"
)

const kafkaClientID = "pos-terminal"

// initKafkaProducer создаёт producer, если брокеры заданы.
// Без брокеров возвращает nil, nil: терминал работает, записи outbox копятся в pending.
func initKafkaProducer(brokers []string, logger *log.Entry) (*kafka.Producer, error) {
	if len(brokers) == 0 {
		return nil, nil
	}

	producer, err := kafka.NewProducer(brokers, kafkaClientID)
	if err != nil {
		logger.WithError(err).Warn("failed to create kafka producer, continuing without kafka")
		return nil, err
	}

	logger.WithField("brokers", brokers).Info("kafka producer initialized")
	return producer, nil
}

// closeKafka закрывает Kafka producer если он не nil.
func closeKafka(producer *kafka.Producer, logger *log.Entry) {
	if producer == nil {
		return
	}

	if err := producer.Close(); err != nil {
		logger.WithError(err).Warn("failed to close kafka producer")
	} else {
		logger.Info("kafka producer closed")
	}
}
