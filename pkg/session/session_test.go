package session

import (
	"errors"
	"path/filepath"
	"testing"
	"time"
)

func TestCredentialManager(t *testing.T) {
	manager, mockStore := NewMockManager()

	account := &Account{
		Username:  "testuser",
		SessionID: "test_session_id_12345",
		CSRFToken: "test_csrf_token_67890",
		UserAgent: "TestAgent/1.0",
	}

	if err := manager.Store(account); err != nil {
		t.Errorf("Failed to store account: %v", err)
	}
	if mockStore.Count() != 1 {
		t.Errorf("Expected 1 stored account, got %d", mockStore.Count())
	}

	retrieved, err := manager.Retrieve("testuser")
	if err != nil {
		t.Fatalf("Failed to retrieve account: %v", err)
	}
	if retrieved.SessionID != account.SessionID {
		t.Errorf("SessionID mismatch: got %s, want %s", retrieved.SessionID, account.SessionID)
	}
	if retrieved.LastModified.IsZero() {
		t.Error("Store should stamp LastModified")
	}

	accounts, err := manager.List()
	if err != nil {
		t.Errorf("Failed to list accounts: %v", err)
	}
	if len(accounts) != 1 {
		t.Errorf("Expected 1 account in list, got %d", len(accounts))
	}

	if err := manager.Delete("testuser"); err != nil {
		t.Errorf("Failed to delete account: %v", err)
	}
	if mockStore.Exists("testuser") {
		t.Error("Account should be gone after delete")
	}
}

func TestManagerValidation(t *testing.T) {
	manager, _ := NewMockManager()

	tests := []struct {
		name    string
		account *Account
	}{
		{"missing username", &Account{SessionID: "s", CSRFToken: "c"}},
		{"missing session id", &Account{Username: "u", CSRFToken: "c"}},
		{"missing csrf token", &Account{Username: "u", SessionID: "s"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := manager.Store(tt.account); err == nil {
				t.Error("Expected validation error")
			}
		})
	}
}

func TestManagerFallbackChain(t *testing.T) {
	broken := NewMockStore()
	broken.StoreError = errors.New("backend down")
	broken.RetrieveError = errors.New("backend down")
	working := NewMockStore()

	manager := NewManagerWithStores(broken, working)

	account := &Account{Username: "fallback", SessionID: "sid", CSRFToken: "tok"}
	if err := manager.Store(account); err != nil {
		t.Fatalf("Store should fall through to working store: %v", err)
	}
	if !working.Exists("fallback") {
		t.Error("Expected account in fallback store")
	}

	retrieved, err := manager.Retrieve("fallback")
	if err != nil {
		t.Fatalf("Retrieve should fall through: %v", err)
	}
	if retrieved.Username != "fallback" {
		t.Errorf("Unexpected account: %s", retrieved.Username)
	}
}

func TestManagerListPrefersNewest(t *testing.T) {
	older := NewMockStore()
	newer := NewMockStore()

	older.accounts["dup"] = &Account{Username: "dup", SessionID: "old", LastModified: time.Now().Add(-time.Hour)}
	newer.accounts["dup"] = &Account{Username: "dup", SessionID: "new", LastModified: time.Now()}

	manager := NewManagerWithStores(older, newer)

	accounts, err := manager.List()
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(accounts) != 1 {
		t.Fatalf("Expected deduplication, got %d accounts", len(accounts))
	}
	if accounts[0].SessionID != "new" {
		t.Errorf("Expected newest version, got session %s", accounts[0].SessionID)
	}
}

func TestEnvironmentStore(t *testing.T) {
	t.Setenv("SCANAGRAM_SESSION_ID", "env_session")
	t.Setenv("SCANAGRAM_CSRF_TOKEN", "env_csrf")

	store := NewEnvironmentStore()
	if !store.Exists("") {
		t.Error("Expected environment credentials to exist")
	}

	account, err := store.Retrieve("")
	if err != nil {
		t.Fatalf("Retrieve failed: %v", err)
	}
	if account.Username != "default" {
		t.Errorf("Expected default username, got %s", account.Username)
	}
	if account.SessionID != "env_session" {
		t.Errorf("Unexpected session id: %s", account.SessionID)
	}

	if err := store.Store(account); err != ErrStoreUnavailable {
		t.Errorf("Store should be unsupported, got %v", err)
	}
	if err := store.Delete("default"); err != ErrStoreUnavailable {
		t.Errorf("Delete should be unsupported, got %v", err)
	}
}

func TestEncryptedFileStore(t *testing.T) {
	tempDir := t.TempDir()
	t.Setenv("SCANAGRAM_PASSPHRASE", "test-passphrase")

	storePath := filepath.Join(tempDir, "credentials.enc")
	store, err := NewEncryptedFileStore(storePath)
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}

	account := &Account{
		Username:     "encuser",
		SessionID:    "secret_session",
		CSRFToken:    "secret_csrf",
		LastModified: time.Now(),
	}
	if err := store.Store(account); err != nil {
		t.Fatalf("Failed to store: %v", err)
	}

	// Fresh store instance must decrypt with the same passphrase
	reopened, err := NewEncryptedFileStore(storePath)
	if err != nil {
		t.Fatalf("Failed to reopen store: %v", err)
	}

	retrieved, err := reopened.Retrieve("encuser")
	if err != nil {
		t.Fatalf("Failed to retrieve: %v", err)
	}
	if retrieved.SessionID != "secret_session" {
		t.Errorf("SessionID mismatch: %s", retrieved.SessionID)
	}

	accounts, err := reopened.List()
	if err != nil || len(accounts) != 1 {
		t.Errorf("Expected 1 account, got %d (err %v)", len(accounts), err)
	}

	if err := reopened.Delete("encuser"); err != nil {
		t.Fatalf("Failed to delete: %v", err)
	}
	if reopened.Exists("encuser") {
		t.Error("Account should be gone")
	}

	if _, err := reopened.Retrieve("encuser"); err != ErrCredentialsNotFound {
		t.Errorf("Expected ErrCredentialsNotFound, got %v", err)
	}
}

func TestEncryptedStoreWrongPassphrase(t *testing.T) {
	tempDir := t.TempDir()
	storePath := filepath.Join(tempDir, "credentials.enc")

	t.Setenv("SCANAGRAM_PASSPHRASE", "right")
	store, err := NewEncryptedFileStore(storePath)
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}
	if err := store.Store(&Account{Username: "u", SessionID: "s", CSRFToken: "c"}); err != nil {
		t.Fatalf("Failed to store: %v", err)
	}

	t.Setenv("SCANAGRAM_PASSPHRASE", "wrong")
	badStore, err := NewEncryptedFileStore(storePath)
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}
	if _, err := badStore.Retrieve("u"); err == nil {
		t.Error("Expected decryption failure with wrong passphrase")
	}
}

func TestAccountHeaders(t *testing.T) {
	account := &Account{
		Username:  "u",
		SessionID: "sid",
		CSRFToken: "tok",
		UserAgent: "Agent/1.0",
	}

	headers := account.Headers()
	if headers["Cookie"] != "sessionid=sid; csrftoken=tok" {
		t.Errorf("Unexpected cookie header: %s", headers["Cookie"])
	}
	if headers["X-CSRFToken"] != "tok" {
		t.Errorf("Unexpected csrf header: %s", headers["X-CSRFToken"])
	}
	if headers["User-Agent"] != "Agent/1.0" {
		t.Errorf("Unexpected user agent: %s", headers["User-Agent"])
	}

	account.UserAgent = ""
	if _, ok := account.Headers()["User-Agent"]; ok {
		t.Error("User-Agent should be omitted when empty")
	}
}

func TestSanitizeAccount(t *testing.T) {
	account := &Account{
		Username:  "u",
		SessionID: "very_long_session_identifier",
		CSRFToken: "short",
	}

	sanitized := SanitizeAccount(account)
	if sanitized.SessionID == account.SessionID {
		t.Error("SessionID should be masked")
	}
	if sanitized.SessionID != "very...fier" {
		t.Errorf("Unexpected mask: %s", sanitized.SessionID)
	}
	if sanitized.CSRFToken != "********" {
		t.Errorf("Short secrets should be fully masked, got %s", sanitized.CSRFToken)
	}
	if SanitizeAccount(nil) != nil {
		t.Error("Sanitizing nil should return nil")
	}
}
