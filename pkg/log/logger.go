// Package log is a thin context-tagged facade over zap. Server-side
// code hands it a Loggable carrying the connection and statement ids
// in its context, so every line is tagged with where it came from.
package log

import (
	"context"
	"fmt"

	"go.uber.org/zap"
)

type ctxKey string

const (
	ConnIDKey ctxKey = "ConnID"
	StmtIDKey ctxKey = "StmtID"
)

type Loggable interface {
	Ctx() context.Context
}

var logger *zap.SugaredLogger

func init() {
	base, err := zap.NewDevelopment(zap.WithCaller(false))
	if err != nil {
		panic(err)
	}
	logger = base.Sugar()
}

// SetLogger swaps the backing logger; tests use it to install a nop.
func SetLogger(l *zap.Logger) {
	logger = l.Sugar()
}

func ctxFields(ctx context.Context) []interface{} {
	var fields []interface{}
	if connID := ctx.Value(ConnIDKey); connID != nil {
		fields = append(fields, "conn", connID)
	}
	if stmtID := ctx.Value(StmtIDKey); stmtID != nil {
		fields = append(fields, "stmt", stmtID)
	}
	return fields
}

func Println(l Loggable, args ...interface{}) {
	logger.With(ctxFields(l.Ctx())...).Info(fmt.Sprint(args...))
}

func Printf(l Loggable, format string, args ...interface{}) {
	logger.With(ctxFields(l.Ctx())...).Infof(format, args...)
}

// Infof logs outside any connection context (startup, shutdown).
func Infof(format string, args ...interface{}) {
	logger.Infof(format, args...)
}

func Fatalf(format string, args ...interface{}) {
	logger.Fatalf(format, args...)
}
