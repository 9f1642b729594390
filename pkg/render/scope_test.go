package render_test

import (
	"errors"
	"testing"

	"github.com/goliatone/go-viewbuffer/pkg/buffer"
	"github.com/goliatone/go-viewbuffer/pkg/render"
	"github.com/goliatone/go-viewbuffer/pkg/testsupport"
)

func TestNewScope_RequiresPool(t *testing.T) {
	if _, err := render.NewScope(nil); !errors.Is(err, buffer.ErrNilPool) {
		t.Fatalf("error mismatch\nwant: %v\n got: %v", buffer.ErrNilPool, err)
	}
}

func TestRun_ReturnsEveryPage(t *testing.T) {
	pool := testsupport.NewRecordingPool()

	err := render.Run(pool, func(scope *render.Scope) error {
		out, err := scope.NewOutput(nil)
		if err != nil {
			return err
		}
		for i := 0; i < 40; i++ {
			if err := out.WriteRaw("x"); err != nil {
				return err
			}
		}
		if pool.Outstanding() == 0 {
			t.Fatalf("expected pages to be leased during the render")
		}
		return nil
	}, render.WithPageSize(8), render.WithMinimumSegmentSize(1))
	if err != nil {
		t.Fatalf("run: %v", err)
	}

	if pool.Outstanding() != 0 {
		t.Fatalf("outstanding arrays after run: %d", pool.Outstanding())
	}
	if pool.Uncleared() != 0 || pool.DoubleReturns() != 0 {
		t.Fatalf("bad returns: uncleared=%d double=%d", pool.Uncleared(), pool.DoubleReturns())
	}
}

func TestRun_ClosesOnError(t *testing.T) {
	pool := testsupport.NewRecordingPool()
	boom := errors.New("template failed")

	var scope *render.Scope
	err := render.Run(pool, func(s *render.Scope) error {
		scope = s
		buf, err := s.NewBuffer()
		if err != nil {
			return err
		}
		_ = buf.Append("partial")
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("error mismatch\nwant: %v\n got: %v", boom, err)
	}
	if !scope.Allocator().Closed() {
		t.Fatalf("scope left open after error")
	}
	if pool.Outstanding() != 0 {
		t.Fatalf("outstanding arrays: %d", pool.Outstanding())
	}
	if _, err := scope.NewBuffer(); !errors.Is(err, buffer.ErrScopeClosed) {
		t.Fatalf("closed scope\nwant: %v\n got: %v", buffer.ErrScopeClosed, err)
	}
}

func TestRun_ClosesOnPanic(t *testing.T) {
	pool := testsupport.NewRecordingPool()

	func() {
		defer func() {
			if recover() == nil {
				t.Fatalf("expected panic to propagate")
			}
		}()
		_ = render.Run(pool, func(s *render.Scope) error {
			buf, err := s.NewBuffer()
			if err != nil {
				return err
			}
			_ = buf.Append("partial")
			panic("render exploded")
		})
	}()

	if pool.Outstanding() != 0 {
		t.Fatalf("outstanding arrays after panic: %d", pool.Outstanding())
	}
}

func TestScope_CloseIsIdempotent(t *testing.T) {
	pool := testsupport.NewRecordingPool()
	scope, err := render.NewScope(pool)
	if err != nil {
		t.Fatalf("new scope: %v", err)
	}
	buf, _ := scope.NewBuffer()
	_ = buf.Append("a")

	if err := scope.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	if err := scope.Close(); err != nil {
		t.Fatalf("second close: %v", err)
	}
	if pool.Returns() != 1 || pool.DoubleReturns() != 0 {
		t.Fatalf("returns=%d double=%d", pool.Returns(), pool.DoubleReturns())
	}
}

func TestScope_EncoderOption(t *testing.T) {
	scope, err := render.NewScope(testsupport.NewRecordingPool(), render.WithEncoder(render.NopEncoder{}))
	if err != nil {
		t.Fatalf("new scope: %v", err)
	}
	defer scope.Close()

	if scope.Encoder().Name() != render.EncoderNone {
		t.Fatalf("encoder mismatch: %s", scope.Encoder().Name())
	}

	def, _ := render.NewScope(testsupport.NewRecordingPool())
	defer def.Close()
	if def.Encoder().Name() != render.EncoderHTML {
		t.Fatalf("default encoder mismatch: %s", def.Encoder().Name())
	}
}
