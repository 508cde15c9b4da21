package viewer

import (
	"bytes"
	"errors"
	"testing"
	"time"

	"github.com/MeKo-Tech/signalglobe/internal/globe"
	"github.com/MeKo-Tech/signalglobe/internal/noise"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNoiseShaderMatchesField(t *testing.T) {
	src := NoiseShader()
	require.NotEmpty(t, src)

	assert.True(t, bytes.HasPrefix(src, []byte("//go:build ignore")))
	assert.Contains(t, string(src), "//kage:unit pixels")
	for _, c := range []string{"127.1, 311.7, 74.7", "269.5, 183.3, 246.1", "113.5, 271.9, 124.6", "43758.5453"} {
		assert.Contains(t, string(src), c, "hash constant %s", c)
	}
	assert.Contains(t, string(src), "func Fragment(")
}

func TestNoiseUniforms(t *testing.T) {
	f := noise.DefaultField()
	u := NoiseUniforms(f, 30*time.Second)

	assert.InDelta(t, f.Time(30), float64(u["Time"].(float32)), 1e-5)
	assert.Equal(t, float32(f.GridSize), u["GridSize"])
	assert.Equal(t, float32(f.Period), u["Period"])

	ai := u["AI"].([]float32)
	require.Len(t, ai, 3)
	assert.InDelta(t, f.AI.R, float64(ai[0]), 1e-6)
	assert.Len(t, u["Human"], 3)
}

func TestConfigValidate(t *testing.T) {
	ok := Config{Demo: "noise", Width: 10, Height: 10, Field: noise.DefaultField()}
	assert.NoError(t, ok.Validate())

	spike := Config{Demo: "spike", Width: 10, Height: 10, Globe: globe.SpikeConfig()}
	assert.NoError(t, spike.Validate())

	bad := ok
	bad.Demo = "cube"
	assert.Error(t, bad.Validate())

	bad = ok
	bad.Width = 0
	assert.Error(t, bad.Validate())

	bad = spike
	bad.Globe = globe.Config{}
	assert.Error(t, bad.Validate())
}

func TestShaderErrorKeepsSource(t *testing.T) {
	cause := errors.New("unexpected token")
	err := error(&ShaderError{Name: "noise", Source: []byte("package main"), Err: cause})

	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "noise")

	var se *ShaderError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, "package main", string(se.Source))
}
