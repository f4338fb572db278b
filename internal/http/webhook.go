package http

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"runtime/debug"

	"warikan/internal/bot"
	"warikan/internal/line"
	applog "warikan/internal/log"
)

const maxWebhookBody = 1 << 20

// handleWebhook processes the first event of a platform callback. Once the
// body is accepted the platform always gets 200; failures are relayed to
// the chat instead.
func (s *Server) handleWebhook(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := applog.FromContext(ctx).WithComponent(applog.ComponentWebhook)

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxWebhookBody))
	if err != nil {
		logger.WarnContext(ctx, "Failed to read webhook body", applog.FieldError, err)
		http.Error(w, "invalid body", http.StatusBadRequest)
		return
	}

	if s.channelSecret != "" && !line.VerifySignature(s.channelSecret, body, r.Header.Get(line.SignatureHeader)) {
		logger.WarnContext(ctx, "Webhook signature mismatch")
		http.Error(w, "invalid signature", http.StatusUnauthorized)
		return
	}

	req, err := line.ParseWebhook(body)
	if err != nil {
		logger.WarnContext(ctx, "Malformed webhook payload", applog.FieldError, err)
		http.Error(w, "malformed payload", http.StatusBadRequest)
		return
	}

	if ev := req.FirstEvent(); ev != nil {
		s.handleEvent(ctx, logger, ev)
	}
	w.WriteHeader(http.StatusOK)
}

func (s *Server) handleEvent(ctx context.Context, logger *applog.Logger, ev *line.Event) {
	reply, stack, err := s.dispatch(ctx, ev.Text())
	if err != nil {
		applog.NewStructuredLogger(logger).LogError(ctx, "Failed to handle chat message", err, applog.ComponentWebhook, applog.OpDispatch, nil)
		s.sendReply(ctx, logger, ev.ReplyToken, bot.ErrorReply(err, stack))
		return
	}
	if !reply.OK {
		return
	}
	s.sendReply(ctx, logger, ev.ReplyToken, reply.Text)
}

// dispatch runs the dispatcher, converting a panic into an error plus the
// goroutine stack.
func (s *Server) dispatch(ctx context.Context, text string) (reply bot.Reply, stack string, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("panic: %v", rec)
			stack = string(debug.Stack())
		}
	}()
	reply, err = s.dispatcher.Dispatch(ctx, text)
	return reply, "", err
}

func (s *Server) sendReply(ctx context.Context, logger *applog.Logger, token, text string) {
	if s.replier == nil {
		logger.WarnContext(ctx, "Chat replies are disabled, dropping reply")
		return
	}
	if err := s.replier.Reply(ctx, token, text); err != nil {
		logger.ErrorContext(ctx, "Failed to send chat reply", applog.FieldError, err, applog.FieldTarget, "line")
	}
}
