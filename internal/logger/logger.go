package logger

import "go.uber.org/zap"

// Log is the process-wide logger. It is a no-op until Init is called so
// packages can log safely from tests.
var Log = zap.NewNop()

// Init builds the process logger for the given environment.
func Init(env string) {
	if env == "development" {
		Log = zap.Must(zap.NewDevelopment())
		return
	}
	Log = zap.Must(zap.NewProduction())
}

func Sugar() *zap.SugaredLogger {
	return Log.Sugar()
}
