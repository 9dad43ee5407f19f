package logger

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// leveledCore is a zapcore.Core gated by its own level instead of the wrapped one.
type leveledCore struct {
	zapcore.Core

	// enabler decides which entries reach the wrapped core.
	enabler zapcore.LevelEnabler
}

// Enabled reports whether entries at l are written.
func (c *leveledCore) Enabled(l zapcore.Level) bool {
	return c.enabler.Enabled(l)
}

// Check adds the core to ce when the entry level is enabled.
// The wrapped core is not asked, so entries below its level still get written.
//
//nolint:gocritic // AddCore requires ent to be passed by value.
func (c *leveledCore) Check(ent zapcore.Entry, ce *zapcore.CheckedEntry) *zapcore.CheckedEntry {
	if !c.Enabled(ent.Level) {
		return ce
	}

	return ce.AddCore(ent, c)
}

// With keeps the level on the derived core.
//
//nolint:ireturn,nolintlint // Returning zapcore.Core is intended for zap integration.
func (c *leveledCore) With(fields []zapcore.Field) zapcore.Core {
	return &leveledCore{Core: c.Core.With(fields), enabler: c.enabler}
}

// WithLevel replaces the level of the logger core with enabler.
// The simulator uses it to write debug lines to its log file while the shared
// level stays at the configured value.
//
//nolint:ireturn,nolintlint // Returning zap.Option is intended for zap integration.
func WithLevel(enabler zapcore.LevelEnabler) zap.Option {
	return zap.WrapCore(func(core zapcore.Core) zapcore.Core {
		return &leveledCore{Core: core, enabler: enabler}
	})
}
