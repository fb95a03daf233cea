package store

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/IBM/sarama"
	"github.com/roadpulse/roadpulse/internal/models"
)

// KafkaStore publishes each observation record as a JSON message on a
// per-city topic, preserving per-city ordering through the record ID key
// and a single sync producer.
type KafkaStore struct {
	producer    sarama.SyncProducer
	topicPrefix string
}

func NewKafkaStore(config models.KafkaConfig) (*KafkaStore, error) {
	saramaConfig := sarama.NewConfig()
	saramaConfig.Producer.RequiredAcks = sarama.WaitForAll
	saramaConfig.Producer.Return.Successes = true // Must be true for SyncProducer
	saramaConfig.Net.DialTimeout = 30 * time.Second
	saramaConfig.Net.ReadTimeout = 30 * time.Second
	saramaConfig.Net.WriteTimeout = 30 * time.Second

	brokerList := strings.Split(config.BrokerList, ",")

	producer, err := sarama.NewSyncProducer(brokerList, saramaConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create Sarama producer: %w", err)
	}

	return &KafkaStore{producer: producer, topicPrefix: config.TopicPrefix}, nil
}

func (s *KafkaStore) Append(_ context.Context, city string, rec *models.ObservationRecord) error {
	msg, err := json.Marshal(newRow(rec))
	if err != nil {
		return &StoreError{Kind: IOFailure, City: city, Err: err}
	}

	topic := fmt.Sprintf("%s.%s", s.topicPrefix, CityKey(city))
	_, _, err = s.producer.SendMessage(&sarama.ProducerMessage{
		Topic: topic,
		Key:   sarama.StringEncoder(rec.RecordID),
		Value: sarama.ByteEncoder(msg),
	})
	if err != nil {
		return &StoreError{Kind: IOFailure, City: city, Err: err}
	}
	return nil
}

func (s *KafkaStore) Close() error {
	if s.producer != nil {
		return s.producer.Close()
	}
	return nil
}
