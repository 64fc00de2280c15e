// Command authcore-keygen generates the RSA keypair an authcore deployment
// signs and verifies access tokens with. It writes private.pem and
// public.pem into the output directory and refuses to overwrite existing
// files unless -force is given.
package main

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"flag"
	"fmt"
	"os"
	"path/filepath"
)

func main() {
	var (
		bits  = flag.Int("bits", 2048, "RSA key size in bits (minimum 2048)")
		dir   = flag.String("dir", ".", "output directory for private.pem and public.pem")
		force = flag.Bool("force", false, "overwrite existing key files")
	)
	flag.Parse()

	if *bits < 2048 {
		fmt.Fprintln(os.Stderr, "key size must be at least 2048 bits")
		os.Exit(2)
	}

	privatePath := filepath.Join(*dir, "private.pem")
	publicPath := filepath.Join(*dir, "public.pem")

	if !*force {
		for _, p := range []string{privatePath, publicPath} {
			if _, err := os.Stat(p); err == nil {
				fmt.Fprintf(os.Stderr, "%s already exists (use -force to overwrite)\n", p)
				os.Exit(1)
			}
		}
	}

	key, err := rsa.GenerateKey(rand.Reader, *bits)
	if err != nil {
		fmt.Fprintf(os.Stderr, "generate key: %v\n", err)
		os.Exit(1)
	}

	privatePEM := pem.EncodeToMemory(&pem.Block{
		Type:  "RSA PRIVATE KEY",
		Bytes: x509.MarshalPKCS1PrivateKey(key),
	})

	pubDER, err := x509.MarshalPKIXPublicKey(&key.PublicKey)
	if err != nil {
		fmt.Fprintf(os.Stderr, "marshal public key: %v\n", err)
		os.Exit(1)
	}
	publicPEM := pem.EncodeToMemory(&pem.Block{Type: "PUBLIC KEY", Bytes: pubDER})

	if err := os.WriteFile(privatePath, privatePEM, 0o600); err != nil {
		fmt.Fprintf(os.Stderr, "write %s: %v\n", privatePath, err)
		os.Exit(1)
	}
	if err := os.WriteFile(publicPath, publicPEM, 0o644); err != nil {
		fmt.Fprintf(os.Stderr, "write %s: %v\n", publicPath, err)
		os.Exit(1)
	}

	fmt.Printf("wrote %s and %s (%d bits)\n", privatePath, publicPath, *bits)
}
