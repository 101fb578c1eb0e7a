package key

import (
	"os"
	"path/filepath"

	"github.com/kochabx/webpush/errors"
)

// FileOption contains options for writing a key pair to disk.
type FileOption struct {
	Dirpath            string
	PrivateKeyFilename string
	PublicKeyFilename  string
}

func defaultFileOption() *FileOption {
	return &FileOption{
		Dirpath:            ".",
		PrivateKeyFilename: "private.pem",
		PublicKeyFilename:  "public.pem",
	}
}

// WithDirpath sets the directory the key files are written to.
func WithDirpath(dirpath string) func(*FileOption) {
	return func(o *FileOption) {
		o.Dirpath = dirpath
	}
}

// WithPrivateKeyFilename sets the filename of the private key.
func WithPrivateKeyFilename(filename string) func(*FileOption) {
	return func(o *FileOption) {
		o.PrivateKeyFilename = filename
	}
}

// WithPublicKeyFilename sets the filename of the public key.
func WithPublicKeyFilename(filename string) func(*FileOption) {
	return func(o *FileOption) {
		o.PublicKeyFilename = filename
	}
}

// SavePEM writes the private key as PKCS #8 PEM and its public key as X.509 PEM.
// It returns the paths of the written files.
func SavePEM(priv *PrivateKey, opts ...func(*FileOption)) (privatePath, publicPath string, err error) {
	if priv == nil {
		return "", "", errors.Precondition("private key must not be nil")
	}

	option := defaultFileOption()
	for _, opt := range opts {
		opt(option)
	}

	privateText, err := priv.PEM()
	if err != nil {
		return "", "", err
	}

	privatePath = filepath.Join(option.Dirpath, option.PrivateKeyFilename)
	if err := os.WriteFile(privatePath, []byte(privateText), 0o600); err != nil {
		return "", "", errors.Internal("failed to write private key file %s", privatePath).WithCause(err)
	}

	publicPath = filepath.Join(option.Dirpath, option.PublicKeyFilename)
	if err := os.WriteFile(publicPath, []byte(priv.Public().PEM()), 0o644); err != nil {
		return "", "", errors.Internal("failed to write public key file %s", publicPath).WithCause(err)
	}

	return privatePath, publicPath, nil
}
