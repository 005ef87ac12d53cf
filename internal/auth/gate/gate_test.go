package gate

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/puntadaestudio/puntada-backend/internal/auth"
	pkgerrors "github.com/puntadaestudio/puntada-backend/pkg/errors"
)

func TestWaitReturnsResolvedIdentity(t *testing.T) {
	t.Parallel()

	g := New()
	want := &auth.Identity{ID: uuid.New(), Email: "lucia@example.com"}

	go func() {
		time.Sleep(10 * time.Millisecond)
		g.Resolve(want)
	}()

	got, err := g.Wait(context.Background())
	if err != nil {
		t.Fatalf("Wait returned error: %v", err)
	}
	if got == nil || got.ID != want.ID {
		t.Fatalf("expected identity %v, got %v", want, got)
	}
}

func TestDismissRejectsWaiter(t *testing.T) {
	t.Parallel()

	g := New()
	go func() {
		time.Sleep(10 * time.Millisecond)
		g.Dismiss()
	}()

	_, err := g.Wait(context.Background())
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeUnauthorized {
		t.Fatalf("expected UNAUTHORIZED on dismissal, got %v", err)
	}
}

func TestWaitHonorsContextCancellation(t *testing.T) {
	t.Parallel()

	g := New()
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := g.Wait(ctx)
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeUnauthorized {
		t.Fatalf("expected UNAUTHORIZED on cancellation, got %v", err)
	}
}

func TestSecondSettleIsNoop(t *testing.T) {
	t.Parallel()

	g := New()
	want := &auth.Identity{ID: uuid.New()}
	g.Resolve(want)
	g.Dismiss()

	got, err := g.Wait(context.Background())
	if err != nil {
		t.Fatalf("Wait returned error: %v", err)
	}
	if got == nil || got.ID != want.ID {
		t.Fatal("expected the first settle to win")
	}
}

func TestMultipleWaitersAllReleased(t *testing.T) {
	t.Parallel()

	g := New()
	want := &auth.Identity{ID: uuid.New()}
	results := make(chan error, 3)

	for i := 0; i < 3; i++ {
		go func() {
			_, err := g.Wait(context.Background())
			results <- err
		}()
	}

	time.Sleep(10 * time.Millisecond)
	g.Resolve(want)

	for i := 0; i < 3; i++ {
		select {
		case err := <-results:
			if err != nil {
				t.Fatalf("waiter returned error: %v", err)
			}
		case <-time.After(time.Second):
			t.Fatal("timed out waiting for waiter release")
		}
	}
}
