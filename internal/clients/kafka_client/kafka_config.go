package kafka_client

import (
	"github.com/confluentinc/confluent-kafka-go/kafka"
	"github.com/spacesedan/sentiboard/config"
)

func consumerConfigMap(cfg config.KafkaConfig) *kafka.ConfigMap {
	return &kafka.ConfigMap{
		"bootstrap.servers":  cfg.Broker,
		"group.id":           cfg.GroupID,
		"auto.offset.reset":  "earliest",
		"enable.auto.commit": false,
		"isolation.level":    "read_committed",
	}
}

func producerConfigMap(cfg config.KafkaConfig) *kafka.ConfigMap {
	return &kafka.ConfigMap{
		"bootstrap.servers":                     cfg.Broker,
		"enable.idempotence":                    true,
		"acks":                                  "all",
		"max.in.flight.requests.per.connection": 1,
		"transactional.id":                      cfg.GroupID + "-results",
	}
}
