// Package pipeline runs one inbound message end to end: credential
// interception, session lookup, classification, dispatch and formatting.
package pipeline

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"

	events "productif-agent/contracts/mq"
	"productif-agent/internal/dispatch"
	"productif-agent/internal/intent"
	"productif-agent/internal/model"
	"productif-agent/internal/reply"
	"productif-agent/internal/session"
	"productif-agent/pkg/logger"
	"productif-agent/pkg/trace"
	"productif-agent/pkg/util"
)

// TokenValidator checks a credential against the Domain API.
type TokenValidator interface {
	ValidateToken(ctx context.Context, credential string) (bool, error)
}

// EventPublisher publishes agent events. Publishing is best effort.
type EventPublisher interface {
	Publish(ctx context.Context, routingKey string, payload any) error
}

type nopPublisher struct{}

func (nopPublisher) Publish(context.Context, string, any) error { return nil }

type Pipeline struct {
	sessions   session.Store
	classifier *intent.Classifier
	dispatcher *dispatch.Dispatcher
	validator  TokenValidator
	events     EventPublisher
	now        func() time.Time
	logger     *zap.Logger
}

// New wires a pipeline. A nil publisher disables events.
func New(
	sessions session.Store,
	classifier *intent.Classifier,
	dispatcher *dispatch.Dispatcher,
	validator TokenValidator,
	publisher EventPublisher,
	logger *zap.Logger,
) *Pipeline {
	if publisher == nil {
		publisher = nopPublisher{}
	}
	return &Pipeline{
		sessions:   sessions,
		classifier: classifier,
		dispatcher: dispatcher,
		validator:  validator,
		events:     publisher,
		now:        time.Now,
		logger:     logger,
	}
}

// Handle returns the reply for msg. The reply is always a user-facing text;
// the error is for logging and metrics only and never replaces the reply.
func (p *Pipeline) Handle(ctx context.Context, msg model.InboundMessage) (string, error) {
	ctx, traceID := trace.Ensure(ctx)
	log := logger.WithUser(logger.WithTrace(ctx, p.logger), msg.UserID)
	text := strings.TrimSpace(msg.Text)

	sess, found, err := p.sessions.Load(ctx, msg.UserID)
	if err != nil {
		log.Error("failed to load session", zap.Error(err))
		return reply.GenericError, err
	}
	if !found {
		at := p.now()
		sess = model.Session{UserID: msg.UserID, CreatedAt: at, UpdatedAt: at}
		if !LooksLikeToken(text) {
			if err := p.sessions.Save(ctx, sess); err != nil {
				log.Error("failed to save new session", zap.Error(err))
				return reply.GenericError, err
			}
			log.Info("new user")
			return reply.Welcome, nil
		}
	}

	if LooksLikeToken(text) {
		return p.authenticate(ctx, log, traceID, sess, text)
	}

	c := p.classifier.Classify(ctx, text)
	res, dispatchErr := p.dispatcher.Dispatch(ctx, sess, c.Intent)

	if prefs, ok := c.Intent.(intent.UpdatePreferences); ok && dispatchErr == nil {
		sess.Preferences = mergePreferences(sess.Preferences, prefs.Preferences)
		sess.UpdatedAt = p.now()
		if err := p.sessions.Save(ctx, sess); err != nil {
			log.Warn("failed to save preferences", zap.Error(err))
		}
	}

	log.Info("message handled",
		zap.String("intent", string(c.Intent.Kind())),
		zap.String("source", string(c.Source)),
		zap.Int("succeeded", len(res.Outcome.Succeeded)),
		zap.Int("not_found", len(res.Outcome.NotFound)),
		zap.Int("already_done", len(res.Outcome.AlreadyDone)),
		zap.Int("failed", len(res.Outcome.Errors)),
		zap.String("error_type", errorType(dispatchErr)))

	p.publish(ctx, log, events.RoutingDispatchCompleted, events.DispatchCompletedPayload{
		TraceID:     traceID,
		MessageID:   msg.ID,
		User:        logger.MaskUser(msg.UserID),
		Intent:      string(c.Intent.Kind()),
		Source:      string(c.Source),
		Succeeded:   len(res.Outcome.Succeeded),
		NotFound:    len(res.Outcome.NotFound),
		AlreadyDone: len(res.Outcome.AlreadyDone),
		Failed:      len(res.Outcome.Errors),
		Error:       errorType(dispatchErr),
		CompletedAt: p.now(),
	})

	return reply.Format(res, dispatchErr), dispatchErr
}

// authenticate 处理用户直接发送的凭证。会话只会从未认证变为已认证。
func (p *Pipeline) authenticate(ctx context.Context, log *zap.Logger, traceID string, sess model.Session, token string) (string, error) {
	at := p.now()
	if tokenExpired(token, at) {
		log.Info("rejected expired credential")
		return reply.TokenExpired, dispatch.ErrInvalidCredential
	}

	ok, err := p.validator.ValidateToken(ctx, token)
	if err != nil {
		log.Warn("credential validation failed", zap.String("error_type", util.ClassifyError(err)), zap.Error(err))
		return reply.TokenCheckErr, err
	}
	if !ok {
		log.Info("rejected invalid credential")
		return reply.TokenRejected, dispatch.ErrInvalidCredential
	}

	wasAuthenticated := sess.Authenticated
	sess.Authenticate(token, at)
	if err := p.sessions.Save(ctx, sess); err != nil {
		log.Error("failed to save authenticated session", zap.Error(err))
		return reply.GenericError, err
	}

	if !wasAuthenticated {
		log.Info("session authenticated")
		p.publish(ctx, log, events.RoutingSessionAuthenticated, events.SessionAuthenticatedPayload{
			TraceID:         traceID,
			User:            logger.MaskUser(sess.UserID),
			AuthenticatedAt: at,
		})
	}
	return reply.TokenAccepted, nil
}

func (p *Pipeline) publish(ctx context.Context, log *zap.Logger, routingKey string, payload any) {
	if err := p.events.Publish(ctx, routingKey, payload); err != nil {
		log.Warn("failed to publish event", zap.String("routing_key", routingKey), zap.Error(err))
	}
}

func mergePreferences(current, update model.Preferences) model.Preferences {
	if update.WakeUpTime != "" {
		current.WakeUpTime = update.WakeUpTime
	}
	if update.FocusPeriod != "" {
		current.FocusPeriod = update.FocusPeriod
	}
	return current
}

// errorType 错误在日志和事件中的稳定标签
func errorType(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, dispatch.ErrAuthenticationRequired):
		return "authentication_required"
	case errors.Is(err, dispatch.ErrMissingEntity):
		return "missing_entity"
	case errors.Is(err, dispatch.ErrNoMatchFound):
		return "no_match"
	default:
		return util.ClassifyError(err)
	}
}
