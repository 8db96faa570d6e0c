package service

import (
	"context"

	"github.com/nexstore/storefront/internal/apiclient"
	"github.com/nexstore/storefront/internal/domain"
	"github.com/nexstore/storefront/internal/mutation"
	"github.com/nexstore/storefront/internal/session"
	"github.com/nexstore/storefront/internal/validation"
	"github.com/nexstore/storefront/pkg/logger"
	"go.uber.org/zap"
)

// Backend error codes with friendlier text.
var authMessages = map[string]string{
	"LOGIN_BAD_CREDENTIALS":        "Invalid email or password",
	"REGISTER_USER_ALREADY_EXISTS": "User with this email already exists",
}

type AuthService struct {
	api     AuthAPI
	tracker *mutation.Tracker
	logger  *zap.Logger
}

func NewAuthService(api AuthAPI, tracker *mutation.Tracker, logger *zap.Logger) *AuthService {
	return &AuthService{api: api, tracker: tracker, logger: logger}
}

// Login stores the bearer token in the session. Data is the logged-in user
// when the profile could be read, nil otherwise.
func (s *AuthService) Login(ctx context.Context, sess *session.Context, email, password string) Result[*domain.User] {
	if errs := validation.Validate(validation.LoginForm{Email: email, Password: password}); len(errs) > 0 {
		return invalid[*domain.User](validation.FieldErrors(errs))
	}

	done, err := track(ctx, s.tracker, s.logger, sess.Key(), mutation.ActionLogin)
	if err != nil {
		return busy[*domain.User]()
	}
	res := s.login(ctx, sess, email, password)
	done(res.OK())
	return res
}

func (s *AuthService) login(ctx context.Context, sess *session.Context, email, password string) Result[*domain.User] {
	tok, err := s.api.Login(ctx, email, password)
	if err != nil {
		logger.Info(ctx, s.logger, "login failed", zap.Error(err))
		return authFailure[*domain.User](err)
	}
	sess.SetToken(tok.AccessToken)

	user, err := s.api.Me(ctx, tok.AccessToken)
	if err != nil {
		logger.Warn(ctx, s.logger, "read profile after login failed", zap.Error(err))
		return success[*domain.User](nil)
	}
	return success(user)
}

// Register creates the account and logs straight in. When the follow-up
// login fails the registration still succeeds and Message asks the user to
// log in.
func (s *AuthService) Register(ctx context.Context, sess *session.Context, form validation.RegisterForm) Result[*domain.User] {
	if errs := validation.Validate(form); len(errs) > 0 {
		return invalid[*domain.User](validation.FieldErrors(errs))
	}

	user, err := s.api.Register(ctx, apiclient.RegisterRequest{
		Email:     form.Email,
		Password:  form.Password,
		FirstName: form.FirstName,
		LastName:  form.LastName,
	})
	if err != nil {
		logger.Info(ctx, s.logger, "register failed", zap.Error(err))
		return authFailure[*domain.User](err)
	}

	tok, err := s.api.Login(ctx, form.Email, form.Password)
	if err != nil {
		logger.Warn(ctx, s.logger, "login after register failed", zap.String("user_id", user.ID), zap.Error(err))
		res := success(user)
		res.Message = "Registration successful. Please login."
		return res
	}
	sess.SetToken(tok.AccessToken)
	return success(user)
}

func (s *AuthService) Me(ctx context.Context, sess *session.Context) Result[*domain.User] {
	if !sess.Authenticated() {
		return unauthorized[*domain.User](MessageLoginRequired)
	}
	user, err := s.api.Me(ctx, sess.Token)
	if err != nil {
		return failure[*domain.User](err)
	}
	return success(user)
}

func (s *AuthService) Logout(sess *session.Context) Result[struct{}] {
	sess.ClearToken()
	return success(struct{}{})
}

func authFailure[T any](err error) Result[T] {
	res := failure[T](err)
	if msg, ok := authMessages[res.Message]; ok {
		res.Message = msg
	}
	return res
}
