package app

import (
	"context"
	"errors"
	"io/fs"
	"os"

	"github.com/specialistvlad/nativeapk/internal/apkerr"
	"github.com/specialistvlad/nativeapk/internal/ctxlog"
	"github.com/specialistvlad/nativeapk/internal/deploy"
	"github.com/specialistvlad/nativeapk/internal/tools"
)

func (a *App) stages() deploy.Stages {
	return deploy.Stages{Toolchain: a.model.Toolchain, APK: a.model.Output.APK, Package: a.model.App.PackageName}
}

// Sign signs the configured archive in place.
func (a *App) Sign(ctx context.Context) error {
	ctx = a.context(ctx)
	apk := a.model.Output.APK
	if _, err := os.Stat(apk); err != nil {
		return apkerr.IO("sign", apk, err)
	}
	unlock, err := a.locker.Lock(ctx, apk)
	if err != nil {
		return err
	}
	defer unlock()

	ks := a.model.Toolchain.KeyStore
	if _, err := tools.Run(ctx, tools.Sign(a.model.Toolchain.Tool("jarsigner"), ks.File, ks.Password, apk, ks.Alias)); err != nil {
		return err
	}
	ctxlog.FromContext(ctx).Info("Archive signed.", "path", apk)
	return nil
}

// Align writes the aligned copy of the configured archive.
func (a *App) Align(ctx context.Context) (string, error) {
	return a.stages().Align(a.context(ctx))
}

// Install installs apk, or the configured archive when apk is empty.
func (a *App) Install(ctx context.Context, apk string) error {
	if apk == "" {
		apk = a.model.Output.APK
	}
	return a.stages().Install(a.context(ctx), apk)
}

// Launch starts the application on the connected device.
func (a *App) Launch(ctx context.Context) error {
	return a.stages().Launch(a.context(ctx))
}

// GenerateKeyStore creates the configured signing key unless the key store
// file already exists. It reports whether a key was generated.
func (a *App) GenerateKeyStore(ctx context.Context) (bool, error) {
	ctx = a.context(ctx)
	ks := a.model.Toolchain.KeyStore
	if _, err := os.Stat(ks.File); err == nil {
		ctxlog.FromContext(ctx).Info("Key store already exists.", "path", ks.File)
		return false, nil
	} else if !errors.Is(err, fs.ErrNotExist) {
		return false, apkerr.IO("keystore", ks.File, err)
	}

	cmd := tools.KeyStore(a.model.Toolchain.Tool("keytool"), tools.KeyStoreArgs{
		File:     ks.File,
		Alias:    ks.Alias,
		Password: ks.Password,
	})
	if _, err := tools.Run(ctx, cmd); err != nil {
		return false, err
	}
	ctxlog.FromContext(ctx).Info("Key store generated.", "path", ks.File, "alias", ks.Alias)
	return true, nil
}
