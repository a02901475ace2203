package main

import (
	"errors"
	"net"
	"net/http"
	"os"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func quietLogger() *logrus.Logger {
	log := logrus.New()
	log.SetLevel(logrus.PanicLevel)
	return log
}

func serve(server *http.Server) <-chan error {
	serverErr := make(chan error, 1)
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()
	return serverErr
}

func TestWaitForShutdown_PortInUse(t *testing.T) {
	busy, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer busy.Close()

	server := &http.Server{Addr: busy.Addr().String(), Handler: http.NotFoundHandler()}
	stop := make(chan os.Signal, 1)

	err = waitForShutdown(server, serve(server), stop, quietLogger())
	assert.Error(t, err)
}

func TestWaitForShutdown_Signal(t *testing.T) {
	free, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := free.Addr().String()
	require.NoError(t, free.Close())

	server := &http.Server{Addr: addr, Handler: http.NotFoundHandler()}
	serverErr := serve(server)

	stop := make(chan os.Signal, 1)
	stop <- os.Interrupt

	done := make(chan error, 1)
	go func() { done <- waitForShutdown(server, serverErr, stop, quietLogger()) }()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(shutdownTimeout):
		t.Fatal("shutdown did not complete")
	}
}

func TestNewLogger_FallsBackToInfo(t *testing.T) {
	assert.Equal(t, logrus.InfoLevel, newLogger("chatty").GetLevel())
	assert.Equal(t, logrus.DebugLevel, newLogger("debug").GetLevel())
}

func TestLoadModel_MissingFileDegrades(t *testing.T) {
	assert.Nil(t, loadModel(t.TempDir()+"/missing.json", quietLogger()))
}
