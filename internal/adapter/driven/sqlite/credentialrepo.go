package sqlite

import (
	"context"
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"database/sql"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/ericfisherdev/checkoutrelay/internal/domain/model"
	"github.com/ericfisherdev/checkoutrelay/internal/domain/port/driven"
)

// sealedPrefix marks a secret_key value sealed with AES-256-GCM.
const sealedPrefix = "enc:"

// Compile-time interface satisfaction check.
var _ driven.CredentialStore = (*CredentialRepo)(nil)

// CredentialRepo is the SQLite implementation of the CredentialStore port.
// When constructed with a key, secret keys are sealed with AES-256-GCM before
// write. Rows written without a key remain readable either way.
type CredentialRepo struct {
	db  *DB
	key []byte // 32-byte AES-256 key; nil stores secrets as plaintext.
	now func() time.Time
}

// NewCredentialRepo creates a new CredentialRepo. key must be 32 bytes, or nil
// to store secret keys unencrypted.
func NewCredentialRepo(db *DB, key []byte) *CredentialRepo {
	return &CredentialRepo{db: db, key: key, now: time.Now}
}

// Upsert stores or replaces the credential for cred.TenantID.
func (r *CredentialRepo) Upsert(ctx context.Context, cred model.Credential) error {
	secret, err := r.seal(cred.SecretKey)
	if err != nil {
		return err
	}

	const query = `
		INSERT INTO credentials (tenant_id, secret_key, public_key, account_id, updated_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(tenant_id) DO UPDATE SET
			secret_key = excluded.secret_key,
			public_key = excluded.public_key,
			account_id = excluded.account_id,
			updated_at = excluded.updated_at`

	updatedAt := r.now().UTC().Format(time.RFC3339)
	_, err = r.db.Writer.ExecContext(ctx, query, cred.TenantID, secret, cred.PublicKey, cred.AccountID, updatedAt)
	if err != nil {
		return fmt.Errorf("upsert credential %q: %w", cred.TenantID, err)
	}
	return nil
}

// Get retrieves the credential for tenantID. Returns (nil, nil) if none exists.
func (r *CredentialRepo) Get(ctx context.Context, tenantID string) (*model.Credential, error) {
	const query = `SELECT tenant_id, secret_key, public_key, account_id, updated_at FROM credentials WHERE tenant_id = ?`

	cred, err := r.scan(r.db.Reader.QueryRowContext(ctx, query, tenantID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get credential %q: %w", tenantID, err)
	}
	return &cred, nil
}

// List returns every stored credential ordered by tenant id.
func (r *CredentialRepo) List(ctx context.Context) ([]model.Credential, error) {
	const query = `SELECT tenant_id, secret_key, public_key, account_id, updated_at FROM credentials ORDER BY tenant_id`
	rows, err := r.db.Reader.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list credentials: %w", err)
	}
	defer rows.Close()

	creds := []model.Credential{}
	for rows.Next() {
		cred, err := r.scan(rows)
		if err != nil {
			return nil, fmt.Errorf("scan credential: %w", err)
		}
		creds = append(creds, cred)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate credentials: %w", err)
	}

	return creds, nil
}

// Delete removes the credential for tenantID.
func (r *CredentialRepo) Delete(ctx context.Context, tenantID string) error {
	const query = `DELETE FROM credentials WHERE tenant_id = ?`
	if _, err := r.db.Writer.ExecContext(ctx, query, tenantID); err != nil {
		return fmt.Errorf("delete credential %q: %w", tenantID, err)
	}
	return nil
}

// DeleteAll removes every stored credential.
func (r *CredentialRepo) DeleteAll(ctx context.Context) error {
	if _, err := r.db.Writer.ExecContext(ctx, `DELETE FROM credentials`); err != nil {
		return fmt.Errorf("delete all credentials: %w", err)
	}
	return nil
}

// Ping checks the reader pool.
func (r *CredentialRepo) Ping(ctx context.Context) error {
	return r.db.Ping(ctx)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func (r *CredentialRepo) scan(row rowScanner) (model.Credential, error) {
	var cred model.Credential
	var secret, updatedAt string
	if err := row.Scan(&cred.TenantID, &secret, &cred.PublicKey, &cred.AccountID, &updatedAt); err != nil {
		return model.Credential{}, err
	}

	plaintext, err := r.open(secret)
	if err != nil {
		return model.Credential{}, fmt.Errorf("decrypt secret for %q: %w", cred.TenantID, err)
	}
	cred.SecretKey = plaintext

	cred.UpdatedAt, err = parseTime(updatedAt)
	if err != nil {
		return model.Credential{}, fmt.Errorf("parse updated_at for %q: %w", cred.TenantID, err)
	}
	return cred, nil
}

// seal encrypts plaintext with AES-256-GCM and returns sealedPrefix followed by
// base64(nonce || ciphertext || tag). Without a key the value is returned as is.
func (r *CredentialRepo) seal(plaintext string) (string, error) {
	if r.key == nil {
		return plaintext, nil
	}

	gcm, err := newGCM(r.key)
	if err != nil {
		return "", err
	}

	nonce := make([]byte, gcm.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return "", fmt.Errorf("rand nonce: %w", err)
	}

	ciphertext := gcm.Seal(nonce, nonce, []byte(plaintext), nil)
	return sealedPrefix + base64.StdEncoding.EncodeToString(ciphertext), nil
}

// open reverses seal. Values without sealedPrefix are returned unchanged.
func (r *CredentialRepo) open(stored string) (string, error) {
	encoded, ok := strings.CutPrefix(stored, sealedPrefix)
	if !ok {
		return stored, nil
	}
	if r.key == nil {
		return "", driven.ErrEncryptionKeyNotSet
	}

	data, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return "", fmt.Errorf("base64 decode: %w", err)
	}

	gcm, err := newGCM(r.key)
	if err != nil {
		return "", err
	}

	nonceSize := gcm.NonceSize()
	if len(data) < nonceSize {
		return "", errors.New("ciphertext too short")
	}

	nonce, ciphertext := data[:nonceSize], data[nonceSize:]
	plaintext, err := gcm.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return "", fmt.Errorf("gcm.Open: %w", err)
	}

	return string(plaintext), nil
}

func newGCM(key []byte) (cipher.AEAD, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("aes.NewCipher: %w", err)
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("cipher.NewGCM: %w", err)
	}
	return gcm, nil
}

// parseTime accepts both the RFC 3339 timestamps this repo writes and the
// SQLite strftime default.
func parseTime(s string) (time.Time, error) {
	formats := []string{
		time.RFC3339,
		"2006-01-02T15:04:05Z",
		"2006-01-02 15:04:05",
	}

	for _, format := range formats {
		if t, err := time.Parse(format, s); err == nil {
			return t, nil
		}
	}

	return time.Time{}, fmt.Errorf("unrecognized time format: %s", s)
}
