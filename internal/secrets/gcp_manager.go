package secrets

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	secretmanager "cloud.google.com/go/secretmanager/apiv1"
	secretmanagerpb "cloud.google.com/go/secretmanager/apiv1/secretmanagerpb"
)

// BridgeSecret is the structure of the bridge credentials stored in GCP
// Secret Manager: the ERP client secret and the Shopify admin token.
type BridgeSecret struct {
	OrchestraClientSecret string `json:"orchestra_client_secret"`
	ShopifyAccessToken    string `json:"shopify_access_token"`
}

// cacheEntry represents a cached secret with expiration
type cacheEntry struct {
	secret    *BridgeSecret
	expiresAt time.Time
}

// GCPSecretManager resolves bridge credentials from Google Cloud Secret
// Manager. Used when the operator prefers not to keep secrets in the
// database or environment.
type GCPSecretManager struct {
	client    *secretmanager.Client
	projectID string
	cache     map[string]*cacheEntry
	cacheMu   sync.RWMutex
	cacheTTL  time.Duration
}

// NewGCPSecretManager creates a new GCP Secret Manager client
func NewGCPSecretManager(ctx context.Context, projectID string) (*GCPSecretManager, error) {
	client, err := secretmanager.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create secret manager client: %w", err)
	}

	return &GCPSecretManager{
		client:    client,
		projectID: projectID,
		cache:     make(map[string]*cacheEntry),
		cacheTTL:  5 * time.Minute,
	}, nil
}

// Close closes the Secret Manager client
func (sm *GCPSecretManager) Close() error {
	if sm.client != nil {
		return sm.client.Close()
	}
	return nil
}

// SecretName constructs the fully qualified secret version name for a bridge
// secret reference.
func (sm *GCPSecretManager) SecretName(reference string) string {
	return fmt.Sprintf("projects/%s/secrets/%s/versions/latest", sm.projectID, reference)
}

// GetBridgeSecret fetches and caches the bridge credentials stored under the
// given secret reference.
func (sm *GCPSecretManager) GetBridgeSecret(ctx context.Context, reference string) (*BridgeSecret, error) {
	sm.cacheMu.RLock()
	if cached, ok := sm.cache[reference]; ok && time.Now().Before(cached.expiresAt) {
		sm.cacheMu.RUnlock()
		return cached.secret, nil
	}
	sm.cacheMu.RUnlock()

	req := &secretmanagerpb.AccessSecretVersionRequest{
		Name: sm.SecretName(reference),
	}
	result, err := sm.client.AccessSecretVersion(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("failed to access secret %s: %w", reference, err)
	}

	var secret BridgeSecret
	if err := json.Unmarshal(result.Payload.Data, &secret); err != nil {
		return nil, fmt.Errorf("failed to parse secret %s: %w", reference, err)
	}

	sm.cacheMu.Lock()
	sm.cache[reference] = &cacheEntry{
		secret:    &secret,
		expiresAt: time.Now().Add(sm.cacheTTL),
	}
	sm.cacheMu.Unlock()

	return &secret, nil
}
