package usecase

import (
	"context"
	"errors"
	"fmt"

	"github.com/zengarv/StockInsightAPI/internal/auth"
	"github.com/zengarv/StockInsightAPI/internal/domain/models"
	"github.com/zengarv/StockInsightAPI/internal/domain/repository"
	"github.com/zengarv/StockInsightAPI/pkg/logger"
)

// AuthUseCase handles registration, login and credential resolution.
type AuthUseCase struct {
	users  repository.UserStore
	jwt    *auth.JWTManager
	hasher *auth.Hasher
	log    *logger.Logger
}

func NewAuthUseCase(users repository.UserStore, jwt *auth.JWTManager, hasher *auth.Hasher, log *logger.Logger) *AuthUseCase {
	return &AuthUseCase{users: users, jwt: jwt, hasher: hasher, log: log}
}

// Register creates a user on the requested tier (default free).
func (uc *AuthUseCase) Register(ctx context.Context, req *models.RegisterRequest) (*models.UserResponse, error) {
	tier := models.Tier(req.Tier)
	if req.Tier == "" {
		tier = models.TierFree
	}
	if !models.ValidTier(tier) {
		return nil, models.NewDomainErrorf(models.ErrCodeInvalidParameter, "unknown tier %q", req.Tier)
	}

	hash, err := uc.hasher.Hash(req.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	u := &models.User{
		Username:     req.Username,
		Email:        req.Email,
		PasswordHash: hash,
		Tier:         tier,
		IsActive:     true,
	}
	if err := uc.users.CreateUser(ctx, u); err != nil {
		return nil, err
	}

	uc.log.Info("user registered",
		logger.String("username", u.Username),
		logger.String("tier", string(u.Tier)))
	return models.NewUserResponse(u), nil
}

// Login verifies credentials and issues an access token. Unknown users and
// wrong passwords return the same error.
func (uc *AuthUseCase) Login(ctx context.Context, req *models.LoginRequest) (*models.TokenResponse, error) {
	invalid := models.NewDomainError(models.ErrCodeInvalidCredentials, "invalid username or password")

	u, err := uc.users.GetUserByUsername(ctx, req.Username)
	if err != nil {
		var de *models.DomainError
		if errors.As(err, &de) && de.Code == models.ErrCodeInvalidCredentials {
			return nil, invalid
		}
		return nil, err
	}
	if !u.IsActive || !uc.hasher.Compare(u.PasswordHash, req.Password) {
		return nil, invalid
	}

	token, expiresIn, err := uc.jwt.Issue(u)
	if err != nil {
		return nil, err
	}
	return &models.TokenResponse{
		AccessToken: token,
		TokenType:   "bearer",
		ExpiresIn:   expiresIn,
		Tier:        string(u.Tier),
	}, nil
}

// Me returns the authenticated user's profile.
func (uc *AuthUseCase) Me(ctx context.Context, id models.Identity) (*models.UserResponse, error) {
	u, err := uc.users.GetUserByID(ctx, id.UserID)
	if err != nil {
		return nil, err
	}
	return models.NewUserResponse(u), nil
}

// CreateAPIKey mints a key for the user. The plain key appears in the
// response and is never stored.
func (uc *AuthUseCase) CreateAPIKey(ctx context.Context, id models.Identity, req *models.CreateAPIKeyRequest) (*models.APIKeyResponse, error) {
	plain, prefix, err := auth.GenerateAPIKey()
	if err != nil {
		return nil, err
	}
	hash, err := uc.hasher.Hash(plain)
	if err != nil {
		return nil, fmt.Errorf("hash api key: %w", err)
	}

	k := &models.APIKey{
		UserID:   id.UserID,
		Name:     req.Name,
		Prefix:   prefix,
		Hash:     hash,
		IsActive: true,
	}
	if err := uc.users.CreateAPIKey(ctx, k); err != nil {
		return nil, err
	}

	uc.log.Info("api key created",
		logger.Int64("user_id", id.UserID),
		logger.String("prefix", prefix))
	return &models.APIKeyResponse{
		ID:        k.ID,
		Name:      k.Name,
		APIKey:    plain,
		Prefix:    prefix,
		CreatedAt: k.CreatedAt,
	}, nil
}

// ListAPIKeys returns the user's active keys. Only the lookup prefix
// identifies each key; neither the plain key nor its hash ever leaves the
// store.
func (uc *AuthUseCase) ListAPIKeys(ctx context.Context, id models.Identity) (*models.APIKeyListResponse, error) {
	keys, err := uc.users.GetAPIKeysByUser(ctx, id.UserID)
	if err != nil {
		return nil, err
	}

	res := &models.APIKeyListResponse{Keys: make([]*models.APIKeyResponse, 0, len(keys))}
	for _, k := range keys {
		item := &models.APIKeyResponse{
			ID:        k.ID,
			Name:      k.Name,
			Prefix:    k.Prefix,
			CreatedAt: k.CreatedAt,
		}
		if !k.LastUsedAt.IsZero() {
			t := k.LastUsedAt
			item.LastUsedAt = &t
		}
		res.Keys = append(res.Keys, item)
	}
	res.Count = len(res.Keys)
	return res, nil
}

// ResolveToken turns a bearer token into an identity.
func (uc *AuthUseCase) ResolveToken(_ context.Context, token string) (models.Identity, error) {
	claims, err := uc.jwt.Verify(token)
	if err != nil {
		return models.Identity{}, models.WrapDomainError(models.ErrCodeUnauthorized,
			"invalid or expired token", err)
	}
	return models.Identity{UserID: claims.UserID, Tier: models.Tier(claims.Tier)}, nil
}

// ResolveAPIKey turns a presented API key into an identity. Candidates are
// narrowed by prefix, then bcrypt-compared; the winning key's last-used
// time is updated best-effort.
func (uc *AuthUseCase) ResolveAPIKey(ctx context.Context, key string) (models.Identity, error) {
	unauthorized := models.NewDomainError(models.ErrCodeUnauthorized, "invalid api key")

	prefix, ok := auth.KeyPrefix(key)
	if !ok {
		return models.Identity{}, unauthorized
	}
	candidates, err := uc.users.GetAPIKeysByPrefix(ctx, prefix)
	if err != nil {
		return models.Identity{}, err
	}
	for _, k := range candidates {
		if !uc.hasher.Compare(k.Hash, key) {
			continue
		}
		u, err := uc.users.GetUserByID(ctx, k.UserID)
		if err != nil {
			return models.Identity{}, err
		}
		if !u.IsActive {
			return models.Identity{}, unauthorized
		}
		if err := uc.users.TouchAPIKey(ctx, k.ID); err != nil {
			uc.log.Warn("touch api key failed", logger.Error(err))
		}
		return models.Identity{UserID: u.ID, Tier: u.Tier}, nil
	}
	return models.Identity{}, unauthorized
}
