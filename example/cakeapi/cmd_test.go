package main

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/donutnomad/gormskipper/example/cakeapi/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestServeShutsDown(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	a := &app{
		cfg: &config.Config{API: config.APIConfig{Host: "127.0.0.1", Port: 0}},
		log: zap.NewNop(),
	}

	done := make(chan error, 1)
	go func() {
		done <- serve(ctx, a, http.NotFoundHandler())
	}()
	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(shutdownTimeout):
		t.Fatal("server did not shut down")
	}
}

func TestRootCmd(t *testing.T) {
	root := NewRootCmd()

	names := make([]string, 0)
	for _, c := range root.Commands() {
		names = append(names, c.Name())
	}
	assert.ElementsMatch(t, []string{"serve", "migrate"}, names)

	for _, flag := range []string{"config", "port", "db-host", "log-level"} {
		assert.NotNil(t, root.PersistentFlags().Lookup(flag), flag)
	}

	serve, _, err := root.Find([]string{"serve"})
	require.NoError(t, err)
	assert.NotNil(t, serve.Flags().Lookup("see-other-on-duplicate"))
}
