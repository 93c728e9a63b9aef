package logging_test

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/specei/recall/pkg/utils/logging"
)

func TestNewLevels(t *testing.T) {
	testCases := []struct {
		level     string
		wantDebug bool
		wantInfo  bool
	}{
		{"debug", true, true},
		{"info", false, true},
		{"warn", false, false},
		{"WARNING", false, false},
		{"bogus", false, true}, // falls back to info
	}

	for _, tc := range testCases {
		t.Run(tc.level, func(t *testing.T) {
			buf := &bytes.Buffer{}
			l := logging.New(tc.level, buf)
			gt.V(t, l).NotNil()

			l.Debug("debug line")
			l.Info("info line")

			out := buf.String()
			gt.Equal(t, strings.Contains(out, "debug line"), tc.wantDebug)
			gt.Equal(t, strings.Contains(out, "info line"), tc.wantInfo)
		})
	}
}

func TestContextLogger(t *testing.T) {
	buf := &bytes.Buffer{}
	l := logging.New("debug", buf)

	ctx := logging.With(context.Background(), l)
	gt.Equal(t, logging.From(ctx), l)

	logging.From(ctx).Info("from context")
	gt.S(t, buf.String()).Contains("from context")
}

func TestFromFallsBackToDefault(t *testing.T) {
	gt.V(t, logging.From(context.Background())).NotNil()
}
