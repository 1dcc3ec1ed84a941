package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"vidtube/internal/domain"
	"vidtube/internal/repository"
	"vidtube/internal/storage"
	"vidtube/internal/token"
)

// MediaFile is one uploaded file as handed over by the HTTP layer.
type MediaFile struct {
	Filename    string
	ContentType string
	Body        io.Reader
}

// RegisterInput carries the registration form.
type RegisterInput struct {
	FullName   string
	Email      string
	Username   string
	Password   string
	Avatar     *MediaFile
	CoverImage *MediaFile
}

// LoginInput identifies a user by username or email plus password.
type LoginInput struct {
	Username string
	Email    string
	Password string
}

// MediaConfig tells the service where uploaded media lives.
type MediaConfig struct {
	Bucket    string
	KeyPrefix string
}

// SessionService manages the credential lifecycle: registration, login,
// refresh-token rotation and logout.
type SessionService interface {
	Register(ctx context.Context, in RegisterInput) (*domain.PublicUser, error)
	Login(ctx context.Context, in LoginInput) (*domain.PublicUser, token.Pair, error)
	Logout(ctx context.Context, userID string) error
	Refresh(ctx context.Context, refreshToken string) (*domain.PublicUser, token.Pair, error)
	GetByID(ctx context.Context, id string) (*domain.PublicUser, error)
}

type sessionService struct {
	users  repository.UserRepository
	signer *token.Signer
	media  storage.Service
	cfg    MediaConfig
}

func NewSessionService(users repository.UserRepository, signer *token.Signer, media storage.Service, cfg MediaConfig) SessionService {
	return &sessionService{
		users:  users,
		signer: signer,
		media:  media,
		cfg:    cfg,
	}
}

func (s *sessionService) Register(ctx context.Context, in RegisterInput) (*domain.PublicUser, error) {
	fullName := strings.TrimSpace(in.FullName)
	email := strings.TrimSpace(in.Email)
	username := strings.ToLower(strings.TrimSpace(in.Username))
	password := strings.TrimSpace(in.Password)

	if fullName == "" || email == "" || username == "" || password == "" {
		return nil, fmt.Errorf("all fields are required: %w", domain.ErrValidation)
	}
	if in.Avatar == nil {
		return nil, fmt.Errorf("avatar file is required: %w", domain.ErrValidation)
	}

	if _, err := s.users.GetByUsernameOrEmail(ctx, username, email); err == nil {
		return nil, fmt.Errorf("user with email or username %w", domain.ErrConflict)
	} else if !errors.Is(err, domain.ErrNotFound) {
		return nil, fmt.Errorf("check existing user: %w", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	avatarURL, avatarKey, err := s.uploadMedia(ctx, "avatars", in.Avatar)
	if err != nil {
		return nil, fmt.Errorf("upload avatar: %w", err)
	}

	var coverURL, coverKey string
	if in.CoverImage != nil {
		coverURL, coverKey, err = s.uploadMedia(ctx, "covers", in.CoverImage)
		if err != nil {
			s.removeMedia(ctx, avatarKey)
			return nil, fmt.Errorf("upload cover image: %w", err)
		}
	}

	user := &domain.User{
		ID:            uuid.NewString(),
		Username:      username,
		Email:         email,
		FullName:      fullName,
		PasswordHash:  string(hash),
		AvatarURL:     avatarURL,
		CoverImageURL: coverURL,
	}

	if err := s.users.Create(ctx, user); err != nil {
		s.removeMedia(ctx, avatarKey)
		s.removeMedia(ctx, coverKey)
		return nil, err
	}

	created, err := s.users.GetByID(ctx, user.ID)
	if err != nil {
		// deliberately not wrapped: a vanished just-created record is a
		// server fault, not a client-visible not-found
		return nil, fmt.Errorf("something went wrong while registering the user: %v", err)
	}
	return created.Public(), nil
}

func (s *sessionService) Login(ctx context.Context, in LoginInput) (*domain.PublicUser, token.Pair, error) {
	username := strings.ToLower(strings.TrimSpace(in.Username))
	email := strings.TrimSpace(in.Email)
	password := strings.TrimSpace(in.Password)

	if username == "" && email == "" {
		return nil, token.Pair{}, fmt.Errorf("username or email is required: %w", domain.ErrValidation)
	}
	if password == "" {
		return nil, token.Pair{}, fmt.Errorf("password is required: %w", domain.ErrValidation)
	}

	// either identifier may match either column
	lookup := username
	if lookup == "" {
		lookup = email
	}
	if email == "" {
		email = username
	}

	user, err := s.users.GetByUsernameOrEmail(ctx, lookup, email)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, token.Pair{}, fmt.Errorf("user does not exist: %w", domain.ErrNotFound)
		}
		return nil, token.Pair{}, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, token.Pair{}, fmt.Errorf("invalid user credentials: %w", domain.ErrUnauthorized)
	}

	pair, err := s.signer.IssuePair(user.ID, user.Username, user.Email)
	if err != nil {
		return nil, token.Pair{}, fmt.Errorf("issue token pair: %w", err)
	}

	// unconditional overwrite: a fresh login invalidates any refresh
	// token issued earlier (single active session per user)
	if err := s.users.SetRefreshToken(ctx, user.ID, pair.RefreshToken); err != nil {
		return nil, token.Pair{}, err
	}

	return user.Public(), pair, nil
}

func (s *sessionService) Logout(ctx context.Context, userID string) error {
	return s.users.SetRefreshToken(ctx, userID, "")
}

func (s *sessionService) Refresh(ctx context.Context, refreshToken string) (*domain.PublicUser, token.Pair, error) {
	refreshToken = strings.TrimSpace(refreshToken)
	if refreshToken == "" {
		return nil, token.Pair{}, fmt.Errorf("refresh token is required: %w", domain.ErrUnauthorized)
	}

	userID, err := s.signer.VerifyRefresh(refreshToken)
	if err != nil {
		return nil, token.Pair{}, fmt.Errorf("invalid refresh token: %w", domain.ErrUnauthorized)
	}

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, token.Pair{}, fmt.Errorf("user does not exist: %w", domain.ErrNotFound)
		}
		return nil, token.Pair{}, err
	}

	pair, err := s.signer.IssuePair(user.ID, user.Username, user.Email)
	if err != nil {
		return nil, token.Pair{}, fmt.Errorf("issue token pair: %w", err)
	}

	// single conditional update at the store; a concurrent refresh or a
	// logout between verify and here makes this fail, never double-rotate
	if err := s.users.RotateRefreshToken(ctx, user.ID, refreshToken, pair.RefreshToken); err != nil {
		return nil, token.Pair{}, err
	}

	return user.Public(), pair, nil
}

func (s *sessionService) GetByID(ctx context.Context, id string) (*domain.PublicUser, error) {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return user.Public(), nil
}

func (s *sessionService) uploadMedia(ctx context.Context, kind string, file *MediaFile) (url, key string, err error) {
	key = fmt.Sprintf("%s/%s%s", kind, uuid.NewString(), path.Ext(file.Filename))
	if prefix := strings.Trim(s.cfg.KeyPrefix, "/"); prefix != "" {
		key = prefix + "/" + key
	}

	url, err = s.media.Upload(ctx, storage.UploadInput{
		Bucket:      s.cfg.Bucket,
		Key:         key,
		ContentType: file.ContentType,
		Body:        file.Body,
	})
	if err != nil {
		return "", "", err
	}
	if url == "" {
		return "", "", fmt.Errorf("upload yielded no object url")
	}
	return url, key, nil
}

// removeMedia is best effort cleanup for a half-finished registration.
func (s *sessionService) removeMedia(ctx context.Context, key string) {
	if key == "" {
		return
	}
	_ = s.media.DeleteObject(ctx, s.cfg.Bucket, key)
}
