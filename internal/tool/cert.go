package tool

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/x509"
	"crypto/x509/pkix"
	"encoding/pem"
	"fmt"
	"math/big"
	"net"
	"os"
	"time"
)

// CertificateRequest describes a self-signed server certificate.
type CertificateRequest struct {
	Organization string
	CommonName   string
	// Hostnames become IP or DNS subject alternative names.
	Hostnames []string
	Validity  time.Duration
}

// GenerateTlsCertificate writes a P-256 key and a self-signed certificate
// for req as PEM files.
func GenerateTlsCertificate(req CertificateRequest, keyFilename, certFilename string) error {
	key, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	if err != nil {
		return err
	}

	serialNumber, err := rand.Int(rand.Reader, new(big.Int).Lsh(big.NewInt(1), 128))
	if err != nil {
		return err
	}

	validity := req.Validity
	if validity <= 0 {
		validity = 10 * 365 * 24 * time.Hour
	}
	notBefore := time.Now()

	template := x509.Certificate{
		SerialNumber: serialNumber,
		Subject: pkix.Name{
			Organization: []string{req.Organization},
			CommonName:   req.CommonName,
		},
		NotBefore:             notBefore,
		NotAfter:              notBefore.Add(validity),
		KeyUsage:              x509.KeyUsageDigitalSignature | x509.KeyUsageKeyEncipherment,
		ExtKeyUsage:           []x509.ExtKeyUsage{x509.ExtKeyUsageServerAuth},
		BasicConstraintsValid: true,
	}
	for _, h := range req.Hostnames {
		if ip := net.ParseIP(h); ip != nil {
			template.IPAddresses = append(template.IPAddresses, ip)
		} else if h != "" {
			template.DNSNames = append(template.DNSNames, h)
		}
	}

	der, err := x509.CreateCertificate(rand.Reader, &template, &template, &key.PublicKey, key)
	if err != nil {
		return err
	}
	rawKey, err := x509.MarshalECPrivateKey(key)
	if err != nil {
		return err
	}

	if err = writePEM(keyFilename, "EC PRIVATE KEY", rawKey, 0600); err != nil {
		return err
	}
	return writePEM(certFilename, "CERTIFICATE", der, 0644)
}

func writePEM(filename string, blockType string, data []byte, perm os.FileMode) error {
	raw := pem.EncodeToMemory(&pem.Block{Type: blockType, Bytes: data})
	if err := os.WriteFile(filename, raw, perm); err != nil {
		return fmt.Errorf("unable to write %s: %w", filename, err)
	}
	return nil
}
