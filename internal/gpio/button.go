package gpio

import (
	"context"
	"log"
	"time"

	"github.com/sweeney/devpanel/internal/events"
	"github.com/sweeney/devpanel/internal/logic"
)

// RunButton classifies edges from src into gestures and sets the matching
// key bits. tick drives the classifier's timeouts (single-click window and
// long press while held); now supplies the time for those ticks.
// It returns when ctx is done or the edge channel is closed.
func RunButton(ctx context.Context, src EdgeSource, c *logic.Classifier, keys *events.Group, tick <-chan time.Time, now func() time.Time) {
	edges := src.Edges()
	for {
		var g logic.Gesture
		select {
		case <-ctx.Done():
			return
		case e, ok := <-edges:
			if !ok {
				return
			}
			g = c.Edge(e)
		case <-tick:
			g = c.Tick(now())
		}
		if g != logic.GestureNone {
			log.Printf("gpio: gesture %s", g)
			events.Emit(keys, g)
		}
	}
}
