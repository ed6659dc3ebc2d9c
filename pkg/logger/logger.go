package logger

import (
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Loggers holds the named loggers used across the application.
type Loggers struct {
	Error    *zap.Logger
	Audit    *zap.Logger
	Request  *zap.Logger
	Security *zap.Logger
	System   *zap.Logger
}

func newLogger(ws zapcore.WriteSyncer, level zapcore.Level) *zap.Logger {
	encoderCfg := zap.NewProductionEncoderConfig()
	encoderCfg.TimeKey = "timestamp"
	encoderCfg.EncodeTime = zapcore.ISO8601TimeEncoder

	core := zapcore.NewCore(
		zapcore.NewJSONEncoder(encoderCfg),
		ws,
		level,
	)
	return zap.New(core)
}

func fileSyncer(dir, name string) (zapcore.WriteSyncer, error) {
	file, err := os.OpenFile(filepath.Join(dir, name), os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return nil, err
	}
	return zapcore.AddSync(file), nil
}

// New builds the logger set. With an empty dir every logger writes to
// stdout; otherwise each one appends to its own file under dir.
func New(dir string) (*Loggers, error) {
	if dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create log dir: %w", err)
		}
	}

	l := &Loggers{}
	specs := []struct {
		target **zap.Logger
		name   string
		level  zapcore.Level
	}{
		{&l.Error, "errors", zapcore.WarnLevel},
		{&l.Audit, "audit", zapcore.InfoLevel},
		{&l.Request, "request", zapcore.InfoLevel},
		{&l.Security, "security", zapcore.WarnLevel},
		{&l.System, "system", zapcore.InfoLevel},
	}

	for _, spec := range specs {
		ws := zapcore.AddSync(os.Stdout)
		if dir != "" {
			var err error
			ws, err = fileSyncer(dir, spec.name+".log")
			if err != nil {
				return nil, fmt.Errorf("cannot create %s logger: %w", spec.name, err)
			}
		}
		*spec.target = newLogger(ws, spec.level).Named(spec.name)
	}

	return l, nil
}

// Nop returns a logger set that discards everything.
func Nop() *Loggers {
	return &Loggers{
		Error:    zap.NewNop(),
		Audit:    zap.NewNop(),
		Request:  zap.NewNop(),
		Security: zap.NewNop(),
		System:   zap.NewNop(),
	}
}

func (l *Loggers) Sync() {
	_ = l.Error.Sync()
	_ = l.Audit.Sync()
	_ = l.Request.Sync()
	_ = l.Security.Sync()
	_ = l.System.Sync()
}
