package service

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"time"

	"protonshop/internal/model"
	"protonshop/internal/repository"
	"protonshop/internal/ws"
	"protonshop/pkg/jwt"
	"protonshop/pkg/validator"

	"github.com/google/uuid"
	"github.com/pkg/errors"
)

type AuthEventType string

const (
	AuthSignedUp  AuthEventType = "SIGNED_UP"
	AuthSignedIn  AuthEventType = "SIGNED_IN"
	AuthSignedOut AuthEventType = "SIGNED_OUT"
)

// AuthEvent is delivered to subscribers whenever a session changes.
type AuthEvent struct {
	Type AuthEventType      `json:"type"`
	User model.UserResponse `json:"user"`
	At   time.Time          `json:"at"`
}

type AuthListener func(AuthEvent)

type SignUpRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
	FullName string `json:"full_name" validate:"max=255"`
}

type SignInRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// Session is a signed-in user with its bearer token.
type Session struct {
	Token string             `json:"token"`
	User  model.UserResponse `json:"user"`
}

type AuthService interface {
	SignUp(ctx context.Context, req SignUpRequest) (*Session, error)
	SignIn(ctx context.Context, req SignInRequest) (*Session, error)
	SignOut(ctx context.Context, userID uuid.UUID) error
	Session(ctx context.Context, token string) (*model.User, error)
	Subscribe(listener AuthListener) (unsubscribe func())
	EnsureAdmin(ctx context.Context, email, password string) error
}

type authService struct {
	userRepo  repository.UserRepository
	publisher ws.Publisher
	log       *slog.Logger

	mu        sync.RWMutex
	listeners map[int]AuthListener
	nextID    int
}

func NewAuthService(userRepo repository.UserRepository, publisher ws.Publisher, log *slog.Logger) AuthService {
	return &authService{
		userRepo:  userRepo,
		publisher: publisher,
		log:       log,
		listeners: make(map[int]AuthListener),
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// SignUp creates a customer account and signs it in.
func (s *authService) SignUp(ctx context.Context, req SignUpRequest) (*Session, error) {
	req.Email = normalizeEmail(req.Email)
	req.FullName = strings.TrimSpace(req.FullName)
	if err := validator.Validate(&req); err != nil {
		return nil, err
	}

	user := &model.User{
		Email:        req.Email,
		FullName:     req.FullName,
		Role:         model.RoleCustomer,
		TokenVersion: uuid.New().String(),
	}
	if err := user.SetPassword(req.Password); err != nil {
		return nil, errors.Wrap(err, "hash password")
	}
	now := time.Now()
	user.LastSignInAt = &now

	if err := s.userRepo.Create(ctx, user); err != nil {
		if repository.IsUniqueViolation(err) {
			return nil, ErrEmailTaken
		}
		return nil, err
	}

	session, err := s.session(user)
	if err != nil {
		return nil, err
	}
	s.log.InfoContext(ctx, "auth.signed_up", slog.String("user_id", user.ID.String()))
	s.emit(AuthSignedUp, user)
	return session, nil
}

// SignIn rotates the token version, so the previous session on any other
// device stops validating.
func (s *authService) SignIn(ctx context.Context, req SignInRequest) (*Session, error) {
	req.Email = normalizeEmail(req.Email)
	if err := validator.Validate(&req); err != nil {
		return nil, err
	}

	user, err := s.userRepo.FindByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if !user.CheckPassword(req.Password) {
		return nil, ErrInvalidCredentials
	}

	now := time.Now()
	user.TokenVersion = uuid.New().String()
	user.LastSignInAt = &now
	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, errors.Wrap(err, "update session")
	}

	session, err := s.session(user)
	if err != nil {
		return nil, err
	}
	s.log.InfoContext(ctx, "auth.signed_in", slog.String("user_id", user.ID.String()))
	s.emit(AuthSignedIn, user)
	return session, nil
}

func (s *authService) SignOut(ctx context.Context, userID uuid.UUID) error {
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return notFound(err, ErrUserNotFound)
	}
	user.TokenVersion = uuid.New().String()
	if err := s.userRepo.Update(ctx, user); err != nil {
		return errors.Wrap(err, "rotate token version")
	}
	s.log.InfoContext(ctx, "auth.signed_out", slog.String("user_id", user.ID.String()))
	s.emit(AuthSignedOut, user)
	return nil
}

// Session resolves a bearer token to its user. Tokens issued before the
// latest sign-in or sign-out are rejected.
func (s *authService) Session(ctx context.Context, token string) (*model.User, error) {
	claims, err := jwt.ValidateToken(token)
	if err != nil {
		return nil, err
	}
	user, err := s.userRepo.FindByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrSessionExpired
		}
		return nil, err
	}
	if user.TokenVersion != claims.TokenVersion {
		return nil, ErrSessionExpired
	}
	return user, nil
}

func (s *authService) Subscribe(listener AuthListener) func() {
	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.listeners[id] = listener
	s.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			delete(s.listeners, id)
			s.mu.Unlock()
		})
	}
}

// EnsureAdmin creates the store admin account, or promotes an existing one.
func (s *authService) EnsureAdmin(ctx context.Context, email, password string) error {
	email = normalizeEmail(email)
	if email == "" || password == "" {
		return nil
	}

	user, err := s.userRepo.FindByEmail(ctx, email)
	switch {
	case err == nil:
		if user.IsAdmin() {
			return nil
		}
		user.Role = model.RoleAdmin
		return s.userRepo.Update(ctx, user)
	case !errors.Is(err, repository.ErrNotFound):
		return err
	}

	admin := &model.User{
		Email:        email,
		FullName:     "Administrador",
		Role:         model.RoleAdmin,
		TokenVersion: uuid.New().String(),
	}
	if err := admin.SetPassword(password); err != nil {
		return errors.Wrap(err, "hash admin password")
	}
	if err := s.userRepo.Create(ctx, admin); err != nil {
		return err
	}
	s.log.InfoContext(ctx, "auth.admin_seeded", slog.String("email", email))
	return nil
}

func (s *authService) session(user *model.User) (*Session, error) {
	token, err := jwt.GenerateToken(user.ID, user.Email, user.FullName, user.Role, user.TokenVersion)
	if err != nil {
		return nil, errors.Wrap(err, "generate token")
	}
	return &Session{Token: token, User: user.ToResponse()}, nil
}

func (s *authService) emit(t AuthEventType, user *model.User) {
	event := AuthEvent{Type: t, User: user.ToResponse(), At: time.Now()}

	s.mu.RLock()
	listeners := make([]AuthListener, 0, len(s.listeners))
	for _, l := range s.listeners {
		listeners = append(listeners, l)
	}
	s.mu.RUnlock()

	for _, l := range listeners {
		l(event)
	}
	s.publisher.PublishToUser(user.ID.String(), ws.EventAuth, event)
}
