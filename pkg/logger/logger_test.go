package logger

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	assert.Equal(t, zerolog.DebugLevel, ParseLevel("DEBUG"))
	assert.Equal(t, zerolog.WarnLevel, ParseLevel("warning"))
	assert.Equal(t, zerolog.InfoLevel, ParseLevel("desconocido"))
}

func TestLogger_ComponentAgregaCampos(t *testing.T) {
	var buf bytes.Buffer
	l := newWithWriter(&buf, Config{Level: "info", Service: "backoffice"})

	l.Component("sync").Info().Str("run", "r1").Msg("listo")

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "backoffice", line["service"])
	assert.Equal(t, "sync", line["component"])
	assert.Equal(t, "r1", line["run"])
	assert.Equal(t, "listo", line["message"])
}

func TestLogger_NivelFiltra(t *testing.T) {
	var buf bytes.Buffer
	l := newWithWriter(&buf, Config{Level: "error"})
	l.Info().Msg("no debe salir")
	assert.Zero(t, buf.Len())
}
