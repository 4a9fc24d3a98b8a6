package whatsapp

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/mamadbah2/importados/internal/config"
	"github.com/mamadbah2/importados/internal/domain/models"
	"github.com/mamadbah2/importados/internal/service/commands"
	client "github.com/mamadbah2/importados/pkg/clients/whatsapp"
)

const (
	sendTimeout = 10 * time.Second
	// Queries older than this are redeliveries after downtime; the numbers would be stale.
	staleAfter = 15 * time.Minute
)

// MessagingService describes the operations the HTTP layer and the scheduler can perform.
type MessagingService interface {
	VerifyWebhookToken(mode, verifyToken, challenge string) (string, error)
	HandleWebhook(ctx context.Context, payload models.WebhookPayload) error
	SendOutbound(ctx context.Context, msg models.OutboundMessage) error
}

// MetaWhatsAppService is the production implementation backed by WhatsApp Cloud API.
// Only the configured owner number gets answers; stock and profit are private.
type MetaWhatsAppService struct {
	cfg        config.WhatsAppConfig
	client     client.Client
	dispatcher commands.Dispatcher
	logger     *zap.Logger
	now        func() time.Time
}

// NewMetaWhatsAppService wires a new service instance.
func NewMetaWhatsAppService(cfg config.WhatsAppConfig, client client.Client, dispatcher commands.Dispatcher, logger *zap.Logger) *MetaWhatsAppService {
	svc := &MetaWhatsAppService{
		cfg:        cfg,
		client:     client,
		dispatcher: dispatcher,
		logger:     logger,
		now:        time.Now,
	}
	if svc.logger == nil {
		svc.logger = zap.NewNop()
	}
	return svc
}

// VerifyWebhookToken validates the callback verification token.
func (s *MetaWhatsAppService) VerifyWebhookToken(mode, verifyToken, challenge string) (string, error) {
	if mode == "" || verifyToken == "" {
		return "", errors.New("missing mode or verify token")
	}

	if !strings.EqualFold(mode, "subscribe") {
		return "", fmt.Errorf("unsupported hub.mode %s", mode)
	}

	if verifyToken != s.cfg.VerifyToken {
		return "", errors.New("invalid verify token")
	}

	return challenge, nil
}

// HandleWebhook answers every text query in the payload and returns the first failure.
func (s *MetaWhatsAppService) HandleWebhook(ctx context.Context, payload models.WebhookPayload) error {
	var firstErr error
	for _, msg := range payload.Messages() {
		if err := s.handleInboundMessage(ctx, msg); err != nil {
			s.logger.Error("failed to handle inbound message", zap.Error(err), zap.String("message_id", msg.ID))
			if firstErr == nil {
				firstErr = err
			}
		}
	}
	return firstErr
}

func (s *MetaWhatsAppService) handleInboundMessage(ctx context.Context, msg models.InboundMessage) error {
	if msg.From != s.cfg.RecipientID {
		s.logger.Warn("ignoring message from unknown sender", zap.String("from", msg.From))
		return nil
	}

	text := msg.Query()
	if text == "" {
		s.logger.Debug("skipping message without text", zap.String("type", msg.Type))
		return nil
	}
	if sentAt, ok := msg.SentAt(); ok && s.now().Sub(sentAt) > staleAfter {
		s.logger.Info("skipping stale query", zap.String("message_id", msg.ID), zap.Time("sent_at", sentAt))
		return nil
	}

	cmd := models.ParseCommand(text)
	s.logger.Info("parsed inbound command",
		zap.String("from", msg.From),
		zap.String("command", string(cmd.Type)),
		zap.Strings("args", cmd.Args))

	reply, err := s.dispatcher.HandleCommand(ctx, cmd, msg.From)
	var dispatchErr error
	switch {
	case errors.Is(err, commands.ErrUnsupportedCommand):
		reply = "Unknown command.\n" + commands.HelpText
	case errors.Is(err, commands.ErrInvalidArguments):
		reply = "Could not read that command.\n" + commands.HelpText
	case err != nil:
		reply = "Stock data is unavailable right now, please try again later."
		dispatchErr = fmt.Errorf("dispatch %s: %w", cmd.Type, err)
	}

	if err := s.SendOutbound(ctx, models.OutboundMessage{To: msg.From, Message: reply}); err != nil {
		return err
	}
	return dispatchErr
}

// SendOutbound pushes a text message, used for replies and the weekly summary.
func (s *MetaWhatsAppService) SendOutbound(ctx context.Context, msg models.OutboundMessage) error {
	ctxWithTimeout, cancel := context.WithTimeout(ctx, sendTimeout)
	defer cancel()

	_, err := s.client.SendTextMessage(ctxWithTimeout, client.SendTextMessageRequest{
		To:         msg.To,
		Body:       msg.Message,
		PreviewURL: msg.PreviewURL,
	})
	return err
}

// NoopMessagingService drops outbound messages when WhatsApp is not configured.
type NoopMessagingService struct {
	Logger *zap.Logger
}

// VerifyWebhookToken always fails: there is no webhook without credentials.
func (NoopMessagingService) VerifyWebhookToken(string, string, string) (string, error) {
	return "", errors.New("whatsapp is not configured")
}

// HandleWebhook ignores the payload.
func (NoopMessagingService) HandleWebhook(context.Context, models.WebhookPayload) error { return nil }

// SendOutbound logs the message instead of sending it.
func (n NoopMessagingService) SendOutbound(_ context.Context, msg models.OutboundMessage) error {
	if n.Logger != nil {
		n.Logger.Info("whatsapp disabled, message not sent", zap.Int("length", len(msg.Message)))
	}
	return nil
}
