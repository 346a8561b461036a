package service

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/behnamfe76/user-auth-service/internal/auth"
	"github.com/behnamfe76/user-auth-service/internal/config"
	"github.com/behnamfe76/user-auth-service/internal/domain"
	"github.com/behnamfe76/user-auth-service/internal/events"
	"github.com/behnamfe76/user-auth-service/internal/repository"
	apperrors "github.com/behnamfe76/user-auth-service/pkg/util/errorutil"
)

// dummyPassword is hashed once at startup so logins for unknown usernames
// spend the same bcrypt time as real ones.
const dummyPassword = "timing-equalizer"

// TokenIssuer issues signed access tokens.
type TokenIssuer interface {
	Issue(username string, role domain.Role) (string, auth.Claims, error)
}

// SignUpCommand carries the fields needed to create an account.
type SignUpCommand struct {
	Username string
	Password string
	Nickname string
}

// LoginCommand carries login credentials.
type LoginCommand struct {
	Username string
	Password string
}

// LoginResult is returned on successful login.
type LoginResult struct {
	User      *domain.User
	Token     string
	ExpiresAt time.Time
}

// UserDependencies encapsulates collaborators for the user service.
type UserDependencies struct {
	UserRepo         repository.UserRepository
	LoginAttemptRepo repository.LoginAttemptRepository
	Hasher           auth.PasswordHasher
	Tokens           TokenIssuer
	Dispatcher       events.Dispatcher
	Logger           *zap.Logger
}

// UserService coordinates signup, login and role grants.
type UserService struct {
	users         repository.UserRepository
	attempts      repository.LoginAttemptRepository
	hasher        auth.PasswordHasher
	tokens        TokenIssuer
	dispatcher    events.Dispatcher
	logger        *zap.Logger
	maxAttempts   int
	attemptWindow time.Duration
	dummyHash     string
}

// NewUserService builds the service.
func NewUserService(cfg config.AuthConfig, deps UserDependencies) *UserService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	s := &UserService{
		users:         deps.UserRepo,
		attempts:      deps.LoginAttemptRepo,
		hasher:        deps.Hasher,
		tokens:        deps.Tokens,
		dispatcher:    deps.Dispatcher,
		logger:        logger,
		maxAttempts:   cfg.LoginMaxAttempts,
		attemptWindow: cfg.LoginAttemptWindow(),
	}
	if hash, err := s.hasher.Hash(dummyPassword); err == nil {
		s.dummyHash = hash
	} else {
		logger.Warn("failed to prepare dummy password hash", zap.Error(err))
	}
	return s
}

// SignUp creates a USER account. Username and nickname must both be unused.
func (s *UserService) SignUp(ctx context.Context, cmd SignUpCommand) (*domain.User, error) {
	taken, err := s.users.ExistsByUsername(ctx, cmd.Username)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	if taken {
		return nil, apperrors.NewUserAlreadyExists()
	}

	taken, err = s.users.ExistsByNickname(ctx, cmd.Nickname)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	if taken {
		return nil, apperrors.NewUserAlreadyExists()
	}

	hash, err := s.hasher.Hash(cmd.Password)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}

	user := &domain.User{
		Username:     cmd.Username,
		PasswordHash: hash,
		Nickname:     cmd.Nickname,
		Role:         domain.RoleUser,
	}
	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrUserExists) {
			return nil, apperrors.NewUserAlreadyExists()
		}
		return nil, apperrors.NewInternalError(err)
	}

	s.publish(ctx, events.New(events.EventUserSignedUp, events.Actor{}, events.UserSignedUpPayload{
		UserID:   user.ID,
		Username: user.Username,
		Nickname: user.Nickname,
	}))
	return user, nil
}

// Login verifies credentials and issues a token. Unknown usernames and wrong
// passwords produce the same error.
func (s *UserService) Login(ctx context.Context, cmd LoginCommand) (*LoginResult, error) {
	if err := s.checkThrottle(ctx, cmd.Username); err != nil {
		return nil, err
	}

	user, err := s.users.GetByUsername(ctx, cmd.Username)
	if err != nil {
		if !errors.Is(err, repository.ErrUserNotFound) {
			return nil, apperrors.NewInternalError(err)
		}
		if s.dummyHash != "" {
			_ = s.hasher.Compare(s.dummyHash, cmd.Password)
		}
		s.recordFailure(ctx, cmd.Username, "unknown_username")
		return nil, apperrors.NewInvalidCredentials()
	}

	if err := s.hasher.Compare(user.PasswordHash, cmd.Password); err != nil {
		s.recordFailure(ctx, cmd.Username, "wrong_password")
		return nil, apperrors.NewInvalidCredentials()
	}

	token, claims, err := s.tokens.Issue(user.Username, user.Role)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	s.resetAttempts(ctx, cmd.Username)

	expiresAt := claims.ExpiresAtTime()
	s.publish(ctx, events.New(events.EventUserLoggedIn,
		events.Actor{Username: user.Username, Role: user.Role},
		events.UserLoggedInPayload{Username: user.Username, Role: user.Role, ExpiresAt: expiresAt},
	))
	return &LoginResult{User: user, Token: token, ExpiresAt: expiresAt}, nil
}

// GrantAdminRole promotes the target account to ADMIN. The route guard has
// already authorized the caller; a missing target is USER_NOT_FOUND. Tokens
// the target already holds keep their old role until they expire.
func (s *UserService) GrantAdminRole(ctx context.Context, userID int64) (*domain.User, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, apperrors.NewUserNotFound()
		}
		return nil, apperrors.NewInternalError(err)
	}

	previous := user.Role
	if previous != domain.RoleAdmin {
		if err := s.users.UpdateRole(ctx, user.ID, domain.RoleAdmin); err != nil {
			if errors.Is(err, repository.ErrUserNotFound) {
				return nil, apperrors.NewUserNotFound()
			}
			return nil, apperrors.NewInternalError(err)
		}
		user.Role = domain.RoleAdmin
	}

	actor := events.Actor{}
	if principal, ok := auth.PrincipalFromContext(ctx); ok {
		actor = events.Actor{Username: principal.Username, Role: principal.Role}
	}
	s.publish(ctx, events.New(events.EventAdminRoleGranted, actor, events.AdminRoleGrantedPayload{
		TargetUserID:   user.ID,
		TargetUsername: user.Username,
		PreviousRole:   previous,
	}))
	return user, nil
}

func (s *UserService) throttleEnabled() bool {
	return s.attempts != nil && s.maxAttempts > 0
}

func (s *UserService) checkThrottle(ctx context.Context, username string) error {
	if !s.throttleEnabled() {
		return nil
	}
	count, err := s.attempts.Count(ctx, username)
	if err != nil {
		s.logger.Warn("login attempt lookup failed", zap.Error(err))
		return nil
	}
	if count >= int64(s.maxAttempts) {
		s.publish(ctx, events.New(events.EventLoginFailed, events.Actor{}, events.LoginFailedPayload{
			Username: username,
			Reason:   "throttled",
			Attempts: count,
		}))
		return apperrors.NewTooManyLoginAttempts()
	}
	return nil
}

func (s *UserService) recordFailure(ctx context.Context, username, reason string) {
	var attempts int64
	if s.throttleEnabled() {
		n, err := s.attempts.RecordFailure(ctx, username, s.attemptWindow)
		if err != nil {
			s.logger.Warn("login attempt record failed", zap.Error(err))
		}
		attempts = n
	}
	s.publish(ctx, events.New(events.EventLoginFailed, events.Actor{}, events.LoginFailedPayload{
		Username: username,
		Reason:   reason,
		Attempts: attempts,
	}))
}

func (s *UserService) resetAttempts(ctx context.Context, username string) {
	if !s.throttleEnabled() {
		return
	}
	if err := s.attempts.Reset(ctx, username); err != nil {
		s.logger.Warn("login attempt reset failed", zap.Error(err))
	}
}

func (s *UserService) publish(ctx context.Context, event events.Event) {
	if s.dispatcher == nil {
		return
	}
	if err := s.dispatcher.Publish(ctx, event); err != nil {
		s.logger.Warn("event handler failed", zap.String("event_type", string(event.Type)), zap.Error(err))
	}
}
