package services

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/Kirkidoo/Qualipieces/internal/clients/orchestra"
	"github.com/Kirkidoo/Qualipieces/internal/clients/shopify"
	"github.com/Kirkidoo/Qualipieces/internal/config"
	"github.com/Kirkidoo/Qualipieces/internal/encryption"
	"github.com/Kirkidoo/Qualipieces/internal/models"
	"github.com/Kirkidoo/Qualipieces/internal/repository"
	"github.com/Kirkidoo/Qualipieces/internal/secrets"
)

// ClientProvider supplies the current source and target clients. Settings
// updates invalidate the cached clients so the next call picks up the new
// credentials.
type ClientProvider interface {
	Fetcher(ctx context.Context) (ItemFetcher, error)
	Creator(ctx context.Context) (ProductCreator, error)
}

// ConnectionService owns the bridge's connection settings and builds the
// outbound clients from them. Stored settings override environment defaults;
// secrets come from GCP Secret Manager when a reference is set, otherwise
// from the encrypted columns, otherwise from the environment.
type ConnectionService struct {
	repo          *repository.ConnectionRepository
	encryptor     *encryption.CredentialEncryptor
	secretManager *secrets.GCPSecretManager
	cfg           *config.Config
	logger        *zap.Logger

	mu        sync.Mutex
	orchestra *orchestra.Client
	shopify   *shopify.Client
}

// NewConnectionService creates a new connection service. encryptor and
// secretManager may be nil when the corresponding features are not
// configured.
func NewConnectionService(
	repo *repository.ConnectionRepository,
	encryptor *encryption.CredentialEncryptor,
	secretManager *secrets.GCPSecretManager,
	cfg *config.Config,
	logger *zap.Logger,
) *ConnectionService {
	return &ConnectionService{
		repo:          repo,
		encryptor:     encryptor,
		secretManager: secretManager,
		cfg:           cfg,
		logger:        logger,
	}
}

// ResolvedSettings are the effective connection values after merging the
// stored settings over the environment defaults and resolving secrets.
type ResolvedSettings struct {
	OrchestraIdentityURL  string
	OrchestraBaseURL      string
	OrchestraClientID     string
	OrchestraClientSecret string
	ShopifyStoreURL       string
	ShopifyAccessToken    string
}

// SettingsView is the operator-facing settings representation. Secrets are
// reduced to presence flags.
type SettingsView struct {
	OrchestraIdentityURL string `json:"orchestraIdentityUrl"`
	OrchestraBaseURL     string `json:"orchestraBaseUrl"`
	OrchestraClientID    string `json:"orchestraClientId"`
	HasClientSecret      bool   `json:"hasClientSecret"`
	ShopifyStoreURL      string `json:"shopifyStoreUrl"`
	HasAccessToken       bool   `json:"hasAccessToken"`
}

// UpdateSettingsRequest carries an operator settings change. Empty secret
// fields leave the stored secrets untouched.
type UpdateSettingsRequest struct {
	OrchestraIdentityURL  string `json:"orchestraIdentityUrl" binding:"required"`
	OrchestraBaseURL      string `json:"orchestraBaseUrl" binding:"required"`
	OrchestraClientID     string `json:"orchestraClientId" binding:"required"`
	OrchestraClientSecret string `json:"orchestraClientSecret,omitempty"`
	ShopifyStoreURL       string `json:"shopifyStoreUrl" binding:"required"`
	ShopifyAccessToken    string `json:"shopifyAccessToken,omitempty"`
}

// Settings returns the effective settings with secrets redacted.
func (s *ConnectionService) Settings(ctx context.Context) (*SettingsView, error) {
	resolved, err := s.resolve(ctx)
	if err != nil {
		return nil, err
	}
	return &SettingsView{
		OrchestraIdentityURL: resolved.OrchestraIdentityURL,
		OrchestraBaseURL:     resolved.OrchestraBaseURL,
		OrchestraClientID:    resolved.OrchestraClientID,
		HasClientSecret:      resolved.OrchestraClientSecret != "",
		ShopifyStoreURL:      resolved.ShopifyStoreURL,
		HasAccessToken:       resolved.ShopifyAccessToken != "",
	}, nil
}

// Update persists new settings and drops the cached clients so the next
// operation uses the new connection values.
func (s *ConnectionService) Update(ctx context.Context, req *UpdateSettingsRequest) error {
	settings := &models.ConnectionSettings{
		OrchestraIdentityURL: req.OrchestraIdentityURL,
		OrchestraBaseURL:     req.OrchestraBaseURL,
		OrchestraClientID:    req.OrchestraClientID,
		ShopifyStoreURL:      req.ShopifyStoreURL,
	}

	existing, err := s.repo.Get(ctx)
	if err != nil {
		return err
	}
	if existing != nil {
		settings.OrchestraSecretEnc = existing.OrchestraSecretEnc
		settings.ShopifyTokenEnc = existing.ShopifyTokenEnc
		settings.SecretReference = existing.SecretReference
	}

	if req.OrchestraClientSecret != "" {
		enc, err := s.encryptSecret(req.OrchestraClientSecret)
		if err != nil {
			return err
		}
		settings.OrchestraSecretEnc = enc
	}
	if req.ShopifyAccessToken != "" {
		enc, err := s.encryptSecret(req.ShopifyAccessToken)
		if err != nil {
			return err
		}
		settings.ShopifyTokenEnc = enc
	}

	if err := s.repo.Save(ctx, settings); err != nil {
		return fmt.Errorf("failed to save settings: %w", err)
	}

	s.mu.Lock()
	s.orchestra = nil
	s.shopify = nil
	s.mu.Unlock()

	s.logger.Info("connection settings updated")
	return nil
}

// Fetcher returns the Orchestra client built from the current settings.
func (s *ConnectionService) Fetcher(ctx context.Context) (ItemFetcher, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.orchestra != nil {
		return s.orchestra, nil
	}

	resolved, err := s.resolve(ctx)
	if err != nil {
		return nil, err
	}
	if resolved.OrchestraClientID == "" || resolved.OrchestraClientSecret == "" {
		return nil, fmt.Errorf("orchestra client credentials are not configured")
	}

	s.orchestra = orchestra.NewClient(orchestra.Config{
		IdentityURL:  resolved.OrchestraIdentityURL,
		BaseURL:      resolved.OrchestraBaseURL,
		ClientID:     resolved.OrchestraClientID,
		ClientSecret: resolved.OrchestraClientSecret,
		Timeout:      s.cfg.HTTPTimeout,
	}, s.logger)
	return s.orchestra, nil
}

// Creator returns the Shopify client built from the current settings.
func (s *ConnectionService) Creator(ctx context.Context) (ProductCreator, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.shopify != nil {
		return s.shopify, nil
	}

	resolved, err := s.resolve(ctx)
	if err != nil {
		return nil, err
	}
	if resolved.ShopifyStoreURL == "" || resolved.ShopifyAccessToken == "" {
		return nil, fmt.Errorf("shopify store connection is not configured")
	}

	s.shopify = shopify.NewClient(
		resolved.ShopifyStoreURL,
		resolved.ShopifyAccessToken,
		s.cfg.HTTPTimeout,
		s.cfg.ShopifyRateLimit,
		s.logger,
	)
	return s.shopify, nil
}

func (s *ConnectionService) encryptSecret(plaintext string) (string, error) {
	if s.encryptor == nil {
		return "", fmt.Errorf("SETTINGS_ENCRYPTION_KEY must be set to store secrets")
	}
	return s.encryptor.Encrypt(plaintext)
}

func (s *ConnectionService) resolve(ctx context.Context) (*ResolvedSettings, error) {
	resolved := &ResolvedSettings{
		OrchestraIdentityURL:  s.cfg.OrchestraIdentityURL,
		OrchestraBaseURL:      s.cfg.OrchestraBaseURL,
		OrchestraClientID:     s.cfg.OrchestraClientID,
		OrchestraClientSecret: s.cfg.OrchestraClientSecret,
		ShopifyStoreURL:       s.cfg.ShopifyStoreURL,
		ShopifyAccessToken:    s.cfg.ShopifyAccessToken,
	}

	stored, err := s.repo.Get(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load settings: %w", err)
	}
	if stored == nil {
		return resolved, nil
	}

	if stored.OrchestraIdentityURL != "" {
		resolved.OrchestraIdentityURL = stored.OrchestraIdentityURL
	}
	if stored.OrchestraBaseURL != "" {
		resolved.OrchestraBaseURL = stored.OrchestraBaseURL
	}
	if stored.OrchestraClientID != "" {
		resolved.OrchestraClientID = stored.OrchestraClientID
	}
	if stored.ShopifyStoreURL != "" {
		resolved.ShopifyStoreURL = stored.ShopifyStoreURL
	}

	if stored.SecretReference != "" && s.secretManager != nil {
		secret, err := s.secretManager.GetBridgeSecret(ctx, stored.SecretReference)
		if err != nil {
			return nil, err
		}
		if secret.OrchestraClientSecret != "" {
			resolved.OrchestraClientSecret = secret.OrchestraClientSecret
		}
		if secret.ShopifyAccessToken != "" {
			resolved.ShopifyAccessToken = secret.ShopifyAccessToken
		}
		return resolved, nil
	}

	if stored.OrchestraSecretEnc != "" && s.encryptor != nil {
		plain, err := s.encryptor.Decrypt(stored.OrchestraSecretEnc)
		if err != nil {
			return nil, err
		}
		resolved.OrchestraClientSecret = plain
	}
	if stored.ShopifyTokenEnc != "" && s.encryptor != nil {
		plain, err := s.encryptor.Decrypt(stored.ShopifyTokenEnc)
		if err != nil {
			return nil, err
		}
		resolved.ShopifyAccessToken = plain
	}
	return resolved, nil
}
