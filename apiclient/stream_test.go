package apiclient_test

import (
	"context"
	"testing"
	"time"

	apiclient "github.com/Alia5/viashift/apiclient"
	api "github.com/Alia5/viashift/internal/server/api"
	handler "github.com/Alia5/viashift/internal/server/api/handler"
	htesting "github.com/Alia5/viashift/internal/testing"
	"github.com/Alia5/viashift/keys"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpenKeyStream_NotSupportedWithMockTransport(t *testing.T) {
	c := testClient(map[string]string{}, nil)
	_, err := c.OpenKeyStream(context.Background())
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "not supported with mock transport")
}

func TestKeyStream(t *testing.T) {
	tests := []struct {
		name     string
		password string
	}{
		{name: "plain"},
		{name: "authenticated", password: "stream-pass"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sub := htesting.NewSubmissions(nil)
			addr, done := htesting.StartAPIServerWithConfig(t, api.ServerConfig{Password: tt.password}, func(r *api.Router, _ *api.Server) {
				r.RegisterStream(apiclient.KeyStreamPath, handler.KeyStream(sub, nil))
			})
			defer done()

			c := apiclient.NewWithPassword(addr, tt.password)
			stream, err := c.OpenKeyStream(context.Background())
			require.NoError(t, err)

			require.NoError(t, stream.TypeKey(keys.Key{Code: keys.Key1, Mods: keys.ModLeftShift}))
			require.True(t, sub.WaitFor(4, 2*time.Second))

			got := sub.Transitions()
			require.Len(t, got, 4)
			assert.Equal(t, keys.LeftShift.Code, got[0].Key.Code)
			assert.True(t, got[0].Key.Modifier)
			assert.True(t, got[0].Down)
			assert.Equal(t, keys.Key1, got[1].Key.Code)
			assert.Equal(t, keys.ModLeftShift, got[1].Key.Mods)
			assert.False(t, got[3].Down)

			require.NoError(t, stream.Close())
			require.NoError(t, stream.Close())
			assert.ErrorIs(t, stream.Send(keys.Press(keys.Plain(keys.KeyA))), apiclient.ErrStreamClosed)
		})
	}
}
