// Package atomic implements the per-frame simulation core of atomsim.
//
// A [World] owns a fixed collection of [Particle] values ("atoms") and
// advances them one tick at a time:
//
//   - clear the per-tick transient sets
//   - apply the pointer effect (repulsion snap, burst)
//   - resolve pairwise collisions
//   - detect proximity links ("arms")
//   - integrate motion and reflect off the world bounds
//
// Every call to [World.Step] returns an ordered, replayable slice of
// [DrawCommand]: all link segments for the tick followed by one disc per
// particle. The core never draws anything itself; a frame driver replays
// the commands onto a [Surface].
//
// # Example
//
//	cfg := atomic.DefaultConfig()
//	w, err := atomic.New(cfg, rand.New(rand.NewSource(1)))
//	if err != nil {
//	    return err
//	}
//	cmds := w.Step(0.1, atomic.PointerSample{})
//	atomic.Replay(cmds, surface)
//
// # Determinism
//
// Randomness is only used by [New] to place the particles. After that a
// World is a pure function of its state, the timestep and the pointer
// samples it is given, so identical inputs give bit-identical trajectories.
//
// # Thread Safety
//
// World instances are NOT thread-safe. A single frame driver goroutine
// must own the World and call Step sequentially.
package atomic
