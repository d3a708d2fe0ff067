package logging

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest"

	errs "github.com/turtacn/dockrmsd/pkg/errors"
)

// newTestLogger creates a logger that writes JSON to a buffer for verification.
func newTestLogger(t *testing.T, lvl zapcore.Level) (*zapLogger, *zaptest.Buffer) {
	t.Helper()
	buf := &zaptest.Buffer{}
	encoderConfig := zap.NewProductionEncoderConfig()
	encoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	atom := zap.NewAtomicLevelAt(lvl)
	core := zapcore.NewCore(zapcore.NewJSONEncoder(encoderConfig), buf, atom)
	return &zapLogger{z: zap.New(core), level: atom}, buf
}

func TestNewLogger_JSONFormat(t *testing.T) {
	l, err := NewLogger(LogConfig{Level: LevelInfo, Format: "json", OutputPaths: []string{"stdout"}})
	require.NoError(t, err)
	assert.NotNil(t, l)
}

func TestNewLogger_ConsoleFormat(t *testing.T) {
	l, err := NewLogger(LogConfig{Level: LevelDebug, Format: "console"})
	require.NoError(t, err)
	assert.NotNil(t, l)
}

func TestNewLogger_EmptyOutputPaths(t *testing.T) {
	l, err := NewLogger(LogConfig{OutputPaths: []string{}})
	assert.Error(t, err)
	assert.Nil(t, l)
}

func TestNewLogger_UnknownLevel(t *testing.T) {
	_, err := NewLogger(LogConfig{Level: "verbose"})
	assert.Error(t, err)
}

func TestNewDefaultAndDevelopmentLogger_NotNil(t *testing.T) {
	assert.NotNil(t, NewDefaultLogger())
	assert.NotNil(t, NewDevelopmentLogger())
}

func TestNopLogger_AllMethodsNoOp(t *testing.T) {
	l := NewNopLogger()
	assert.NotPanics(t, func() {
		l.Debug("msg")
		l.Info("msg")
		l.Warn("msg")
		l.Error("msg")
	})
	assert.Equal(t, l, l.With(String("k", "v")))
	assert.Equal(t, l, l.Named("x"))
}

func TestZapLogger_Levels(t *testing.T) {
	cases := []struct {
		name  string
		write func(Logger)
		want  string
	}{
		{"debug", func(l Logger) { l.Debug("debug msg") }, `"level":"debug"`},
		{"info", func(l Logger) { l.Info("info msg") }, `"level":"info"`},
		{"warn", func(l Logger) { l.Warn("warn msg") }, `"level":"warn"`},
		{"error", func(l Logger) { l.Error("error msg") }, `"level":"error"`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			l, buf := newTestLogger(t, zapcore.DebugLevel)
			tc.write(l)
			assert.Contains(t, buf.String(), tc.name+" msg")
			assert.Contains(t, buf.String(), tc.want)
		})
	}
}

func TestZapLogger_FieldTypes(t *testing.T) {
	l, buf := newTestLogger(t, zapcore.DebugLevel)
	l.With(String("stage", "solve")).Info("scored",
		Int("atoms", 24),
		Float64("rmsd", 1.5),
		Bool("cached", true),
		Err(errors.New("boom")),
	)
	out := buf.String()
	assert.Contains(t, out, `"stage":"solve"`)
	assert.Contains(t, out, `"atoms":24`)
	assert.Contains(t, out, `"rmsd":1.5`)
	assert.Contains(t, out, `"cached":true`)
	assert.Contains(t, out, `"error":"boom"`)
}

func TestErrCode_ExtractsAppErrorCode(t *testing.T) {
	l, buf := newTestLogger(t, zapcore.DebugLevel)
	err := errs.NewCardinalityError(3, 4)
	l.Error("score failed", Err(err), ErrCode(err))
	assert.Contains(t, buf.String(), `"error_code":"RMSD_002"`)

	assert.Equal(t, "UNKNOWN", ErrCode(errors.New("plain")).Value)
	assert.Equal(t, "<nil>", Err(nil).Value)
}

func TestZapLogger_SetLevel(t *testing.T) {
	l, buf := newTestLogger(t, zapcore.InfoLevel)
	child := l.Named("scoring")

	child.Debug("hidden")
	assert.NotContains(t, buf.String(), "hidden")

	require.NoError(t, l.SetLevel(LevelDebug))
	child.Debug("visible")
	assert.Contains(t, buf.String(), "visible")

	assert.Error(t, l.SetLevel("loud"))
}

func TestValidLevel(t *testing.T) {
	assert.True(t, ValidLevel("DEBUG"))
	assert.True(t, ValidLevel(""))
	assert.True(t, ValidLevel("warning"))
	assert.False(t, ValidLevel("trace"))
}

func TestSetDefault_UpdatesGlobal(t *testing.T) {
	orig := Default()
	defer SetDefault(orig)

	l := NewDevelopmentLogger()
	SetDefault(l)
	assert.Equal(t, l, Default())

	SetDefault(nil)
	assert.Equal(t, l, Default(), "nil must not replace the default")
}

//Personal.AI order the ending
