package encoder

import (
	"io"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func quietLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

func writeExecutable(t *testing.T, path, body string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(body), 0o755))
}

func TestResolveConfiguredPath(t *testing.T) {
	dir := t.TempDir()
	ffmpeg := filepath.Join(dir, "ffmpeg")
	writeExecutable(t, ffmpeg, "#!/bin/sh\n")

	r, err := Resolve(quietLogger(), ffmpeg, false)
	require.NoError(t, err)
	assert.Equal(t, ffmpeg, r.FFmpeg)
	assert.Equal(t, SourceConfigured, r.Source)
}

func TestResolveConfiguredMissingIsFatal(t *testing.T) {
	// A valid binary on the search path must not rescue a bad configured path.
	dir := t.TempDir()
	writeExecutable(t, filepath.Join(dir, binaryName("ffmpeg")), "#!/bin/sh\n")
	t.Setenv("PATH", dir)

	_, err := Resolve(quietLogger(), filepath.Join(dir, "missing-ffmpeg"), false)
	var rerr *ResolutionError
	require.ErrorAs(t, err, &rerr)
	assert.NotEmpty(t, rerr.Configured)
}

func TestResolveSearchPathFallback(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("PATH fixture uses a shell script")
	}
	dir := t.TempDir()
	writeExecutable(t, filepath.Join(dir, "ffmpeg"), "#!/bin/sh\n")
	t.Setenv("PATH", dir)

	r, err := Resolve(quietLogger(), "", false)
	require.NoError(t, err)
	assert.Equal(t, SourceSearchPath, r.Source)
	assert.Equal(t, filepath.Join(dir, "ffmpeg"), r.FFmpeg)
}

func TestResolveNothingFound(t *testing.T) {
	t.Setenv("PATH", t.TempDir())

	_, err := Resolve(quietLogger(), "", false)
	var rerr *ResolutionError
	require.ErrorAs(t, err, &rerr)
	assert.Empty(t, rerr.Configured)
}

func TestResolveFFprobeSibling(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("fixture uses shell scripts")
	}
	dir := t.TempDir()
	ffmpeg := filepath.Join(dir, "ffmpeg")
	ffprobe := filepath.Join(dir, "ffprobe")
	writeExecutable(t, ffmpeg, "#!/bin/sh\n")
	writeExecutable(t, ffprobe, "#!/bin/sh\n")

	r, err := Resolve(quietLogger(), ffmpeg, false)
	require.NoError(t, err)
	assert.Equal(t, ffprobe, r.FFprobe, "ffprobe beside the chosen ffmpeg wins over the search path")
}

func TestVerifySignature(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("fixture uses shell scripts")
	}
	dir := t.TempDir()

	good := filepath.Join(dir, "good")
	writeExecutable(t, good, "#!/bin/sh\necho 'ffmpeg version 6.1.1 Copyright (c) 2000-2023'\n")
	assert.NoError(t, VerifySignature(good))

	impostor := filepath.Join(dir, "impostor")
	writeExecutable(t, impostor, "#!/bin/sh\necho 'totally not an encoder'\n")
	assert.Error(t, VerifySignature(impostor))
}
