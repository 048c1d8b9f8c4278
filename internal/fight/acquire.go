package fight

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rcliao/turnfarm/internal/combat"
	"github.com/rcliao/turnfarm/internal/game"
)

// ErrAcquisitionTimeout is returned when a copy request is not fulfilled within
// the retry budget. It is fatal to the run.
var ErrAcquisitionTimeout = errors.New("acquisition timed out")

// Sleeper waits for d or until ctx is done.
type Sleeper func(ctx context.Context, d time.Duration) error

// Sleep is the real-time Sleeper.
func Sleep(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// Fax acquires a photocopy of the target from a fax peer.
type Fax struct {
	Game    game.Client
	Target  combat.Monster
	Peer    string
	Item    string
	Prop    string
	Used    string
	Retries int
	Backoff time.Duration
	Sleep   Sleeper
}

// NewFax returns a Fax with the standard peer, 3 polls and 10s backoff.
func NewFax(g game.Client, target combat.Monster) *Fax {
	return &Fax{
		Game:    g,
		Target:  target,
		Peer:    "cheesefax",
		Item:    "photocopied monster",
		Prop:    "photocopyMonster",
		Used:    "_photocopyUsed",
		Retries: 3,
		Backoff: 10 * time.Second,
		Sleep:   Sleep,
	}
}

func (f *Fax) check(ctx context.Context) (bool, error) {
	if !game.Have(f.Game, f.Item) {
		if err := f.Game.Exec(ctx, "fax receive"); err != nil {
			return false, err
		}
	}
	if f.Game.Prop(f.Prop) == f.Target.Name {
		return true, nil
	}
	if game.Have(f.Game, f.Item) {
		if err := f.Game.Exec(ctx, "fax send"); err != nil {
			return false, err
		}
	}
	return false, nil
}

// Acquire makes sure a photocopy of the target is in inventory. It is a no-op
// once today's photocopy is used.
func (f *Fax) Acquire(ctx context.Context) error {
	if f.Game.Counter(f.Used) > 0 {
		return nil
	}
	ok, err := f.check(ctx)
	if err != nil || ok {
		return err
	}
	if err := f.Game.Chat(ctx, f.Peer, f.Target.Name); err != nil {
		return fmt.Errorf("request fax: %w", err)
	}
	for i := 0; i < f.Retries; i++ {
		if err := f.Sleep(ctx, f.Backoff); err != nil {
			return err
		}
		ok, err := f.check(ctx)
		if err != nil {
			return err
		}
		if ok {
			return nil
		}
	}
	return fmt.Errorf("%w: photocopied %s after %d polls", ErrAcquisitionTimeout, f.Target.Name, f.Retries)
}
