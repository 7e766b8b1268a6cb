package imapsocket

import (
	"crypto/tls"
	"crypto/x509"
	"encoding/pem"
	"fmt"
	"os"

	"github.com/youmark/pkcs8"
)

// LoadClientCertificate loads a client certificate and its (optionally
// passphrase-encrypted) PKCS#8 private key for mutual-TLS secure-socket
// connections. Most IMAP deployments never need this, but the ones that
// gate access on a client certificate ship the key encrypted, which
// crypto/tls cannot decrypt on its own.
func LoadClientCertificate(certFile, keyFile, passphrase string) (tls.Certificate, error) {
	certPEM, err := os.ReadFile(certFile)
	if err != nil {
		return tls.Certificate{}, fmt.Errorf("imapsocket: read cert: %w", err)
	}
	keyPEM, err := os.ReadFile(keyFile)
	if err != nil {
		return tls.Certificate{}, fmt.Errorf("imapsocket: read key: %w", err)
	}

	if passphrase == "" {
		cert, err := tls.X509KeyPair(certPEM, keyPEM)
		if err != nil {
			return tls.Certificate{}, fmt.Errorf("imapsocket: parse key pair: %w", err)
		}
		return cert, nil
	}

	block, _ := pem.Decode(keyPEM)
	if block == nil {
		return tls.Certificate{}, fmt.Errorf("imapsocket: no PEM block found in %s", keyFile)
	}

	key, err := pkcs8.ParsePKCS8PrivateKey(block.Bytes, []byte(passphrase))
	if err != nil {
		return tls.Certificate{}, fmt.Errorf("imapsocket: decrypt PKCS#8 key: %w", err)
	}

	certBlock, _ := pem.Decode(certPEM)
	if certBlock == nil {
		return tls.Certificate{}, fmt.Errorf("imapsocket: no PEM block found in %s", certFile)
	}
	leaf, err := x509.ParseCertificate(certBlock.Bytes)
	if err != nil {
		return tls.Certificate{}, fmt.Errorf("imapsocket: parse certificate: %w", err)
	}

	return tls.Certificate{
		Certificate: [][]byte{certBlock.Bytes},
		PrivateKey:  key,
		Leaf:        leaf,
	}, nil
}
