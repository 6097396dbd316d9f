package keygen

import (
	"crypto/ed25519"
	"crypto/rand"
	"encoding/pem"
	"fmt"
	"os"
	"path/filepath"

	"golang.org/x/crypto/ssh"
)

// KeyPair holds an SSH key pair in ready-to-use formats.
type KeyPair struct {
	// PrivateKey is the private key in PEM-encoded OpenSSH format.
	PrivateKey []byte
	// PublicKey is the public key in OpenSSH authorized_keys format.
	PublicKey []byte
}

// GenerateEd25519 generates a new ed25519 key pair. comment is embedded in the
// private key and usually names the machine the key is meant for.
func GenerateEd25519(comment string) (*KeyPair, error) {
	pub, priv, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		return nil, fmt.Errorf("failed to generate ed25519 key: %w", err)
	}

	block, err := ssh.MarshalPrivateKey(priv, comment)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal private key: %w", err)
	}

	sshPub, err := ssh.NewPublicKey(pub)
	if err != nil {
		return nil, fmt.Errorf("failed to create SSH public key: %w", err)
	}

	return &KeyPair{
		PrivateKey: pem.EncodeToMemory(block),
		PublicKey:  ssh.MarshalAuthorizedKey(sshPub),
	}, nil
}

// AuthorizedKey returns the public key as a single line without the trailing newline.
func (kp *KeyPair) AuthorizedKey() string {
	n := len(kp.PublicKey)
	if n > 0 && kp.PublicKey[n-1] == '\n' {
		return string(kp.PublicKey[:n-1])
	}
	return string(kp.PublicKey)
}

// WriteFiles stores the pair as <path> (0600) and <path>.pub (0644).
func (kp *KeyPair) WriteFiles(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("failed to create key directory: %w", err)
	}
	if err := os.WriteFile(path, kp.PrivateKey, 0o600); err != nil {
		return fmt.Errorf("failed to write private key: %w", err)
	}
	if err := os.WriteFile(path+".pub", kp.PublicKey, 0o644); err != nil {
		return fmt.Errorf("failed to write public key: %w", err)
	}
	return nil
}
