package messaging

import (
	"context"
	"encoding/json"
	"fmt"
	"os/exec"
	"runtime"
	"time"

	"github.com/nikolayk812/storefront/internal/port"
	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

var (
	_ port.MessagingChannel = (*BrowserChannel)(nil)
	_ port.MessagingChannel = (*KafkaChannel)(nil)
	_ port.MessagingChannel = (*LogChannel)(nil)
)

// BrowserChannel opens the chat deep link with the OS URL handler and does not wait for it.
type BrowserChannel struct {
	start func(link string) error
}

func NewBrowserChannel() *BrowserChannel {
	return &BrowserChannel{start: openURL}
}

func (c *BrowserChannel) Open(_ context.Context, destination, payload string) error {
	link := DeepLink(destination, payload)
	if err := c.start(link); err != nil {
		return fmt.Errorf("openURL: %w", err)
	}
	return nil
}

func openURL(link string) error {
	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("open", link)
	case "windows":
		cmd = exec.Command("rundll32", "url.dll,FileProtocolHandler", link)
	default:
		cmd = exec.Command("xdg-open", link)
	}
	if err := cmd.Start(); err != nil {
		return err
	}
	go func() { _ = cmd.Wait() }()
	return nil
}

type kafkaWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaChannel publishes the message for an operator-side consumer.
type KafkaChannel struct {
	writer kafkaWriter
}

type operatorMessage struct {
	Destination string    `json:"destination"`
	Text        string    `json:"text"`
	Link        string    `json:"link"`
	CreatedAt   time.Time `json:"created_at"`
}

func NewKafkaChannel(brokers []string, topic string, logger *zap.Logger) *KafkaChannel {
	if logger == nil {
		logger = zap.NewNop()
	}
	sugar := logger.Sugar()

	return &KafkaChannel{
		writer: &kafka.Writer{
			Addr:         kafka.TCP(brokers...),
			Topic:        topic,
			Balancer:     &kafka.Hash{},
			RequiredAcks: kafka.RequireOne,
			Async:        true,
			ErrorLogger:  kafka.LoggerFunc(sugar.Errorf),
		},
	}
}

func (c *KafkaChannel) Open(ctx context.Context, destination, payload string) error {
	data, err := json.Marshal(operatorMessage{
		Destination: destination,
		Text:        payload,
		Link:        DeepLink(destination, payload),
		CreatedAt:   time.Now().UTC(),
	})
	if err != nil {
		return fmt.Errorf("json.Marshal: %w", err)
	}

	if err := c.writer.WriteMessages(ctx, kafka.Message{Key: []byte(destination), Value: data}); err != nil {
		return fmt.Errorf("writer.WriteMessages: %w", err)
	}
	return nil
}

func (c *KafkaChannel) Close() error {
	return c.writer.Close()
}

// LogChannel only records the deep link. Used when no interactive surface is available.
type LogChannel struct {
	logger *zap.Logger
}

func NewLogChannel(logger *zap.Logger) *LogChannel {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LogChannel{logger: logger}
}

func (c *LogChannel) Open(_ context.Context, destination, payload string) error {
	c.logger.Info("operator message", zap.String("link", DeepLink(destination, payload)))
	return nil
}
