package tools

import (
	"os/exec"
	"strconv"
)

// PackageArgs describes one invocation of the resource packager.
type PackageArgs struct {
	APK         string
	PlatformJar string
	Manifest    string
	// ResourceDirs are passed as -S in order. aapt takes the first match
	// left to right, so later directories only add resources the earlier
	// ones lack.
	ResourceDirs []string
	Assets       []string
	TargetSDK    int
}

// Package builds `aapt package`, producing the unsigned base archive.
func Package(aapt string, a PackageArgs) *exec.Cmd {
	args := []string{"package", "-f", "-F", a.APK, "-I", a.PlatformJar, "-M", a.Manifest}
	for _, dir := range a.ResourceDirs {
		args = append(args, "-S", dir)
	}
	if len(a.ResourceDirs) > 1 {
		args = append(args, "--auto-add-overlay")
	}
	for _, asset := range a.Assets {
		args = append(args, "-A", asset)
	}
	args = append(args, "--target-sdk-version", strconv.Itoa(a.TargetSDK))
	return exec.Command(aapt, args...)
}

// Sign builds the jarsigner invocation signing apk in place with alias.
func Sign(jarsigner, keystore, password, apk, alias string) *exec.Cmd {
	return exec.Command(jarsigner,
		"-sigalg", "SHA1withRSA",
		"-digestalg", "SHA1",
		"-keystore", keystore,
		"-storepass", password,
		apk, alias,
	)
}

// ZipAlign builds a 4-byte alignment of in into out.
func ZipAlign(zipalign, in, out string) *exec.Cmd {
	return exec.Command(zipalign, "-v", "4", in, out)
}

// Install builds `adb install <apk>`.
func Install(adb, apk string) *exec.Cmd {
	return exec.Command(adb, "install", apk)
}

// Launch starts the native activity of pkg on the connected device.
func Launch(adb, pkg string) *exec.Cmd {
	return exec.Command(adb, "shell", "am", "start", "-n", pkg+"/android.app.NativeActivity")
}

// KeyStoreArgs describes a key to generate.
type KeyStoreArgs struct {
	File     string
	Alias    string
	Password string
	KeyAlg   string
	KeySize  int
	Validity int
	DName    string
}

const (
	DefaultKeyAlg   = "RSA"
	DefaultKeySize  = 2048
	DefaultValidity = 10000
)

// KeyStore builds a keytool -genkey invocation. Unset fields take the
// defaults RSA, 2048 bits, 10000 days and CN=<alias>.
func KeyStore(keytool string, a KeyStoreArgs) *exec.Cmd {
	if a.KeyAlg == "" {
		a.KeyAlg = DefaultKeyAlg
	}
	if a.KeySize == 0 {
		a.KeySize = DefaultKeySize
	}
	if a.Validity == 0 {
		a.Validity = DefaultValidity
	}
	if a.DName == "" {
		a.DName = "CN=" + a.Alias
	}
	return exec.Command(keytool,
		"-genkey",
		"-keystore", a.File,
		"-alias", a.Alias,
		"-keyalg", a.KeyAlg,
		"-keysize", strconv.Itoa(a.KeySize),
		"-validity", strconv.Itoa(a.Validity),
		"-storepass", a.Password,
		"-keypass", a.Password,
		"-dname", a.DName,
	)
}
