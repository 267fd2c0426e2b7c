package logging

import (
	"testing"

	"go.uber.org/zap"
)

func TestFromZapImplementsL(t *testing.T) {
	base, err := zap.NewDevelopment()
	if err != nil {
		t.Fatalf("zap.NewDevelopment: %v", err)
	}
	defer base.Sync() //nolint:errcheck

	l := FromZap(base.Sugar())
	l.Infof("stream writer opened codec=%s", "zlib")
	l.Warnf("rescheduling stalled item (attempt %d)", 1)
}

func TestFromZapNilReturnsNop(t *testing.T) {
	if FromZap(nil) != Nop {
		t.Fatalf("expected FromZap(nil) to return Nop")
	}
}

func TestMustReturnsNopForNilLogger(t *testing.T) {
	if Must(nil) != Nop {
		t.Fatalf("expected Must(nil) to return Nop")
	}
}
