package service

import (
	"context"
	"errors"

	"github.com/nexstore/storefront/internal/apiclient"
	"github.com/nexstore/storefront/internal/mutation"
	"github.com/nexstore/storefront/pkg/logger"
	"go.uber.org/zap"
)

type Outcome int

const (
	OutcomeSuccess Outcome = iota
	// OutcomeRejected is a business-rule refusal with a message for the user.
	OutcomeRejected
	// OutcomeInvalid carries per-field messages in FieldErrors.
	OutcomeInvalid
	// OutcomeUnauthorized means the session is missing or expired; Redirect
	// points at the login page.
	OutcomeUnauthorized
	OutcomeFailed
	// OutcomeBusy refuses a second submission of an action still in flight.
	OutcomeBusy
)

func (o Outcome) String() string {
	switch o {
	case OutcomeSuccess:
		return "success"
	case OutcomeRejected:
		return "rejected"
	case OutcomeInvalid:
		return "invalid"
	case OutcomeUnauthorized:
		return "unauthorized"
	case OutcomeFailed:
		return "failed"
	case OutcomeBusy:
		return "busy"
	default:
		return "unknown"
	}
}

const (
	LoginPath = "/login"

	MessageInvalidFields = "Invalid fields"
	MessageBusy          = "Request already in progress"
	MessageEmptyCart     = "Your cart is empty"
	MessageLoginRequired = "Please log in"
)

// Result is what every cart, order and auth operation returns. Failures
// the user can act on are values here, never Go errors.
type Result[T any] struct {
	Data        T
	Outcome     Outcome
	Message     string
	FieldErrors map[string]string
	Redirect    string
}

func (r Result[T]) OK() bool {
	return r.Outcome == OutcomeSuccess
}

func success[T any](data T) Result[T] {
	return Result[T]{Data: data, Outcome: OutcomeSuccess}
}

func invalid[T any](fields map[string]string) Result[T] {
	return Result[T]{Outcome: OutcomeInvalid, Message: MessageInvalidFields, FieldErrors: fields}
}

func rejected[T any](msg string) Result[T] {
	return Result[T]{Outcome: OutcomeRejected, Message: msg}
}

func busy[T any]() Result[T] {
	return Result[T]{Outcome: OutcomeBusy, Message: MessageBusy}
}

func unauthorized[T any](msg string) Result[T] {
	return Result[T]{Outcome: OutcomeUnauthorized, Message: msg, Redirect: LoginPath}
}

// failure maps an API error onto a Result.
func failure[T any](err error) Result[T] {
	var apiErr *apiclient.Error
	if !errors.As(err, &apiErr) {
		return Result[T]{Outcome: OutcomeFailed, Message: apiclient.GenericMessage}
	}

	switch apiclient.KindOf(err) {
	case apiclient.KindUnauthorized:
		return unauthorized[T](apiErr.Message)
	case apiclient.KindValidation:
		return Result[T]{Outcome: OutcomeInvalid, Message: apiErr.Message, FieldErrors: apiErr.Fields}
	case apiclient.KindRejected:
		return rejected[T](apiErr.Message)
	default:
		return Result[T]{Outcome: OutcomeFailed, Message: apiclient.GenericMessage}
	}
}

// track starts action for the visitor key. The returned func settles the
// machine; the caller's response is the acknowledgement, so it goes straight
// back to Idle.
func track(ctx context.Context, t *mutation.Tracker, log *zap.Logger, key string, action mutation.Action) (func(succeeded bool), error) {
	if err := t.Begin(key, action); err != nil {
		logger.Info(ctx, log, "mutation refused", zap.String("action", string(action)), zap.Error(err))
		return nil, err
	}
	return func(succeeded bool) {
		err := t.Finish(key, action, succeeded)
		if err == nil {
			err = t.Acknowledge(key, action)
		}
		if err != nil {
			logger.Error(ctx, log, "mutation state", zap.String("action", string(action)), zap.Error(err))
		}
	}, nil
}
